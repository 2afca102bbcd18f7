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
	"fmt"
)

// FSCode is the result code reported by the filesystem layer. The
// numbering mirrors the FAT layer's native result set so codes can be
// latched verbatim into the fault-mode bitmap.
type FSCode int

const (
	// FSOK means the operation succeeded.
	FSOK FSCode = iota
	// FSDiskErr means a hard error in the block device layer.
	FSDiskErr
	// FSIntErr means an internal consistency error.
	FSIntErr
	// FSNotReady means the drive has not been initialized.
	FSNotReady
	// FSNoFile means the file was not found.
	FSNoFile
	// FSNoPath means the path was not found.
	FSNoPath
	// FSInvalidName means the path format is invalid.
	FSInvalidName
	// FSDenied means access was denied or the volume is full.
	FSDenied
	// FSExist means the object already exists.
	FSExist
	// FSInvalidObject means the file or directory object is invalid.
	FSInvalidObject
	// FSWriteProtected means the medium is write protected.
	FSWriteProtected
	// FSInvalidDrive means the drive number is invalid.
	FSInvalidDrive
	// FSNotEnabled means the volume has no work area.
	FSNotEnabled
	// FSNoFilesystem means no valid volume was found.
	FSNoFilesystem
	// FSMkfsAborted means volume creation was aborted.
	FSMkfsAborted
	// FSTimeout means the operation timed out waiting for access.
	FSTimeout
	// FSLocked means the object is locked by another operation.
	FSLocked
	// FSNotEnoughCore means a work buffer could not be allocated.
	FSNotEnoughCore
	// FSTooManyOpenFiles means the open-file limit was reached.
	FSTooManyOpenFiles
	// FSInvalidParameter means a parameter was invalid.
	FSInvalidParameter
)

func (c FSCode) String() string {
	names := [...]string{
		"ok", "disk error", "internal error", "not ready", "no file",
		"no path", "invalid name", "denied", "exists", "invalid object",
		"write protected", "invalid drive", "not enabled", "no filesystem",
		"mkfs aborted", "timeout", "locked", "not enough core",
		"too many open files", "invalid parameter",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("code %d", int(c))
}

// FSError carries a filesystem-layer result code through the error
// chain so the controller can latch it into the fault-mode bitmap.
type FSError struct {
	Op   string
	Code FSCode
}

func (e *FSError) Error() string {
	return fmt.Sprintf("fs %s: %s", e.Op, e.Code)
}

// OpenMode selects the access and disposition flags for Open.
type OpenMode byte

const (
	// ModeRead opens for reading.
	ModeRead OpenMode = 0x01
	// ModeWrite opens for writing.
	ModeWrite OpenMode = 0x02
	// ModeOpenExisting fails if the file does not exist (default).
	ModeOpenExisting OpenMode = 0x00
	// ModeCreateNew creates a new file, failing if it exists.
	ModeCreateNew OpenMode = 0x04
	// ModeCreateAlways creates the file, truncating an existing one.
	ModeCreateAlways OpenMode = 0x08
	// ModeOpenAlways opens the file, creating it if absent.
	ModeOpenAlways OpenMode = 0x10
	// ModeOpenAppend opens for writing at the end of the file.
	ModeOpenAppend OpenMode = 0x30
)

// File is an open file handle issued by the filesystem layer.
type File interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Close() error
	// EOF reports whether the read position reached the end of file.
	EOF() bool
}

// Filesystem is the external FAT layer the controller drives. The layer
// owns the on-disk format; this package only sequences mount/unmount
// and wraps file operations with fault accounting. Implementations
// report failures as *FSError so result codes survive the error chain.
type Filesystem interface {
	Mount() error
	Unmount() error
	Open(path string, mode OpenMode) (File, error)
	Mkdir(path string) error
	Remove(path string) error
	// Stat probes for existence; FSNoFile reports a missing object.
	Stat(path string) error
	// Label returns the volume label.
	Label() (string, error)
	// FreeSpace returns the free and total volume capacity in bytes.
	FreeSpace() (free, total uint64, err error)
}
