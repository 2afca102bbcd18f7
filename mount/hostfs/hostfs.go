// go-sdspi
// Copyright (c) 2026 The go-sdspi Authors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-sdspi.
//
// go-sdspi is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-sdspi is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-sdspi; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package hostfs implements the mount.Filesystem contract over a host
// directory. It stands in for the FAT layer during development and in
// controller integration tests; it is not a FAT implementation.
package hostfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/embedworks/go-sdspi/mount"
)

// Filesystem maps the mount.Filesystem contract onto a directory tree
// rooted at a host path.
type Filesystem struct {
	root    string
	mounted bool
}

// New creates a host filesystem rooted at dir.
func New(dir string) *Filesystem {
	return &Filesystem{root: dir}
}

// Mount verifies the root directory is reachable.
func (h *Filesystem) Mount() error {
	info, err := os.Stat(h.root)
	if err != nil {
		return mapErr("mount", err)
	}
	if !info.IsDir() {
		return &mount.FSError{Op: "mount", Code: mount.FSNoFilesystem}
	}
	h.mounted = true
	return nil
}

// Unmount marks the volume unmounted.
func (h *Filesystem) Unmount() error {
	h.mounted = false
	return nil
}

// Open opens a file under the root.
func (h *Filesystem) Open(path string, mode mount.OpenMode) (mount.File, error) {
	if !h.mounted {
		return nil, &mount.FSError{Op: "open", Code: mount.FSNotEnabled}
	}
	f, err := os.OpenFile(h.resolve(path), osFlags(mode), 0o644)
	if err != nil {
		return nil, mapErr("open", err)
	}
	return &file{f: f}, nil
}

// Mkdir creates a directory under the root.
func (h *Filesystem) Mkdir(path string) error {
	if !h.mounted {
		return &mount.FSError{Op: "mkdir", Code: mount.FSNotEnabled}
	}
	if err := os.Mkdir(h.resolve(path), 0o755); err != nil {
		return mapErr("mkdir", err)
	}
	return nil
}

// Remove deletes a file under the root.
func (h *Filesystem) Remove(path string) error {
	if !h.mounted {
		return &mount.FSError{Op: "remove", Code: mount.FSNotEnabled}
	}
	if err := os.Remove(h.resolve(path)); err != nil {
		return mapErr("remove", err)
	}
	return nil
}

// Stat probes for a file under the root.
func (h *Filesystem) Stat(path string) error {
	if !h.mounted {
		return &mount.FSError{Op: "stat", Code: mount.FSNotEnabled}
	}
	if _, err := os.Stat(h.resolve(path)); err != nil {
		return mapErr("stat", err)
	}
	return nil
}

// Label reports the root directory name as the volume label.
func (h *Filesystem) Label() (string, error) {
	if !h.mounted {
		return "", &mount.FSError{Op: "label", Code: mount.FSNotEnabled}
	}
	return filepath.Base(h.root), nil
}

// FreeSpace reports the capacity of the volume holding the root.
func (h *Filesystem) FreeSpace() (free, total uint64, err error) {
	if !h.mounted {
		return 0, 0, &mount.FSError{Op: "freespace", Code: mount.FSNotEnabled}
	}
	return diskSpace(h.root)
}

func (h *Filesystem) resolve(path string) string {
	return filepath.Join(h.root, filepath.FromSlash(path))
}

func osFlags(mode mount.OpenMode) int {
	var flags int
	switch {
	case mode&mount.ModeRead != 0 && mode&mount.ModeWrite != 0:
		flags = os.O_RDWR
	case mode&mount.ModeWrite != 0:
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}
	switch {
	case mode&mount.ModeOpenAppend == mount.ModeOpenAppend:
		flags |= os.O_CREATE | os.O_APPEND
	case mode&mount.ModeOpenAlways != 0:
		flags |= os.O_CREATE
	case mode&mount.ModeCreateAlways != 0:
		flags |= os.O_CREATE | os.O_TRUNC
	case mode&mount.ModeCreateNew != 0:
		flags |= os.O_CREATE | os.O_EXCL
	}
	return flags
}

// mapErr converts an os error into the filesystem result-code model.
func mapErr(op string, err error) error {
	var code mount.FSCode
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = mount.FSNoFile
	case errors.Is(err, fs.ErrExist):
		code = mount.FSExist
	case errors.Is(err, fs.ErrPermission):
		code = mount.FSDenied
	default:
		code = mount.FSDiskErr
	}
	return &mount.FSError{Op: op, Code: code}
}

// file adapts *os.File to mount.File, tracking end of file.
type file struct {
	f   *os.File
	eof bool
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.f.Read(p)
	if errors.Is(err, io.EOF) {
		f.eof = true
	}
	return n, err
}

func (f *file) Write(p []byte) (int, error) {
	return f.f.Write(p)
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	f.eof = false
	return f.f.Seek(offset, whence)
}

func (f *file) Close() error {
	return f.f.Close()
}

func (f *file) EOF() bool {
	return f.eof
}
