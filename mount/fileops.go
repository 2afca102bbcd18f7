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

package mount

import (
	"errors"
	"fmt"
	"io"
)

// File operations are thin wrappers around the filesystem layer that
// resolve names against root and sub-directory, enforce the single
// open file, and latch fault bits for any non-success result.

// Open opens the named file in the working directory. Only one file may
// be open at a time; a second open is refused without touching the
// filesystem layer.
func (c *Controller) Open(name string, mode OpenMode) error {
	if c.openFile {
		return &FSError{Op: "open", Code: FSTooManyOpenFiles}
	}
	f, err := c.fs.Open(c.fullPath(name), mode)
	if err != nil {
		c.latch(FaultOpen, err)
		return err
	}
	c.file = f
	c.openFile = true
	return nil
}

// Close closes the open file and refreshes the free-space snapshot.
// Closing with no open file is a no-op.
func (c *Controller) Close() error {
	if !c.openFile {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	c.openFile = false
	if err != nil {
		c.latch(FaultClose, err)
		return err
	}
	c.refreshSpace()
	return nil
}

// Write writes p to the open file.
func (c *Controller) Write(p []byte) error {
	if !c.openFile {
		return &FSError{Op: "write", Code: FSInvalidObject}
	}
	if _, err := c.file.Write(p); err != nil {
		c.latch(FaultWrite, err)
		return err
	}
	return nil
}

// WriteString writes s to the open file.
func (c *Controller) WriteString(s string) error {
	return c.Write([]byte(s))
}

// WriteFormatted formats value with format and writes the result.
func (c *Controller) WriteFormatted(format string, value int) error {
	return c.WriteString(fmt.Sprintf(format, value))
}

// Read fills p from the open file and returns the byte count. Reaching
// end of file is not a fault.
func (c *Controller) Read(p []byte) (int, error) {
	if !c.openFile {
		return 0, &FSError{Op: "read", Code: FSInvalidObject}
	}
	n, err := c.file.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		c.latch(FaultRead, err)
		return n, err
	}
	return n, nil
}

// ReadLine fills p up to and including the next newline, the end of p,
// or end of file, and returns the byte count.
func (c *Controller) ReadLine(p []byte) (int, error) {
	if !c.openFile {
		return 0, &FSError{Op: "read", Code: FSInvalidObject}
	}
	n := 0
	for n < len(p) {
		var b [1]byte
		r, err := c.file.Read(b[:])
		if r > 0 {
			p[n] = b[0]
			n++
			if b[0] == '\n' {
				break
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			c.latch(FaultRead, err)
			return n, err
		}
	}
	return n, nil
}

// Seek moves the read/write position to the absolute offset.
func (c *Controller) Seek(offset int64) error {
	if !c.openFile {
		return &FSError{Op: "seek", Code: FSInvalidObject}
	}
	if _, err := c.file.Seek(offset, io.SeekStart); err != nil {
		c.latch(FaultSeek, err)
		return err
	}
	return nil
}

// EndOfFile reports whether the open file's read position reached the
// end. With no file open it reports false.
func (c *Controller) EndOfFile() bool {
	return c.openFile && c.file.EOF()
}

// Mkdir creates a directory in the working directory. An existing
// directory is not an error.
func (c *Controller) Mkdir(name string) error {
	err := c.fs.Mkdir(c.fullPath(name))
	if err != nil && !isCode(err, FSExist) {
		c.latch(FaultDir, err)
		return err
	}
	return nil
}

// Delete removes the named file from the working directory.
func (c *Controller) Delete(name string) error {
	if err := c.fs.Remove(c.fullPath(name)); err != nil {
		c.latch(FaultDir, err)
		return err
	}
	return nil
}

// Exists probes for the named file. A missing file is not a fault;
// any other failure latches the communication fault bit.
func (c *Controller) Exists(name string) bool {
	err := c.fs.Stat(c.fullPath(name))
	if err == nil {
		return true
	}
	if !isCode(err, FSNoFile) && !isCode(err, FSNoPath) {
		c.latch(FaultComms, err)
	}
	return false
}
