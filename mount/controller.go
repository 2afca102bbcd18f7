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

// Package mount implements the polled state machine that owns the
// lifecycle of the storage volume: mount/unmount timing, presence
// detection, fault latching and the application-triggered eject and
// reset protocol.
package mount

import (
	"errors"
	"path"
)

// State identifies the controller's operational state.
type State int

const (
	// StateInit attempts to mount the volume.
	StateInit State = iota
	// StateNotReady polls for card presence until the medium returns.
	StateNotReady
	// StateAccess is the idle state in which the application drives
	// file operations.
	StateAccess
	// StateAccessCheck is Access plus per-tick presence polling.
	StateAccessCheck
	// StateEject closes any open file and unmounts.
	StateEject
	// StateFault latches until an explicit reset.
	StateFault
	// StateReset clears all trackers and unmounts.
	StateReset
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateNotReady:
		return "not-ready"
	case StateAccess:
		return "access"
	case StateAccessCheck:
		return "access-check"
	case StateEject:
		return "eject"
	case StateFault:
		return "fault"
	case StateReset:
		return "reset"
	default:
		return "invalid"
	}
}

// FaultCode is a bitmap of operation categories that have failed.
type FaultCode uint16

const (
	// FaultDir marks directory operation failures.
	FaultDir FaultCode = 1 << iota
	// FaultOpen marks open failures.
	FaultOpen
	// FaultClose marks close failures.
	FaultClose
	// FaultWrite marks write failures.
	FaultWrite
	// FaultRead marks read failures.
	FaultRead
	// FaultSeek marks seek failures.
	FaultSeek
	// FaultFree marks free-space query failures.
	FaultFree
	// FaultComms marks volume metadata and communication failures.
	FaultComms
)

// Prober reports whether the storage medium answers on the bus.
// *sdspi.Card satisfies it.
type Prober interface {
	Present() bool
}

// Controller sequences the volume lifecycle. It is polled: each Tick
// runs the current state's action once and applies one transition.
// The application owns the check/eject/reset request flags; the
// controller clears them only where the state actions say so.
//
// Controller is not safe for concurrent use; tick it from the same
// goroutine that performs file operations.
type Controller struct {
	prober Prober
	fs     Filesystem

	state   State
	startup bool

	faultCode FaultCode
	faultMode uint32

	mounted  bool
	notReady bool
	check    bool
	eject    bool
	reset    bool

	file     File
	openFile bool

	rootPath string
	subDir   string

	label      string
	freeSpace  uint64
	totalSpace uint64
}

// NewController creates a controller over a card prober and the
// filesystem layer. rootPath is the application's working directory on
// the volume, created at mount time if missing.
func NewController(prober Prober, fs Filesystem, rootPath string) *Controller {
	return &Controller{
		prober:   prober,
		fs:       fs,
		state:    StateInit,
		startup:  true,
		rootPath: rootPath,
	}
}

// State returns the current controller state.
func (c *Controller) State() State { return c.state }

// FaultCode returns the latched fault category bitmap.
func (c *Controller) FaultCode() FaultCode { return c.faultCode }

// FaultMode returns the latched filesystem result-code bitmap.
func (c *Controller) FaultMode() uint32 { return c.faultMode }

// Mounted reports whether the volume is currently mounted.
func (c *Controller) Mounted() bool { return c.mounted }

// IsOpen reports whether a file is currently open.
func (c *Controller) IsOpen() bool { return c.openFile }

// Label returns the volume label captured at mount time.
func (c *Controller) Label() string { return c.label }

// Space returns the most recent free/total capacity snapshot, refreshed
// after mount and after every file close.
func (c *Controller) Space() (free, total uint64) {
	return c.freeSpace, c.totalSpace
}

// RequestCheck asks the controller to enter the presence-checking
// access state.
func (c *Controller) RequestCheck() { c.check = true }

// ClearCheck returns the controller to plain access.
func (c *Controller) ClearCheck() { c.check = false }

// RequestEject asks the controller to close and unmount the volume so
// the card can be removed.
func (c *Controller) RequestEject() { c.eject = true }

// ClearEject allows remounting after an eject.
func (c *Controller) ClearEject() { c.eject = false }

// RequestReset asks the controller to clear all fault state and
// remount from scratch.
func (c *Controller) RequestReset() { c.reset = true }

// SetDirectory sets the sub-directory under the root path that file
// names are resolved against.
func (c *Controller) SetDirectory(dir string) { c.subDir = dir }

// Tick runs one controller step: the current state's action, then a
// single transition. It returns the state after the transition.
func (c *Controller) Tick() State {
	switch c.state {
	case StateInit:
		c.state = c.tickInit()
	case StateNotReady:
		c.state = c.tickNotReady()
	case StateAccess:
		c.state = c.tickAccess()
	case StateAccessCheck:
		c.state = c.tickAccessCheck()
	case StateEject:
		c.state = c.tickEject()
	case StateFault:
		c.state = c.tickFault()
	case StateReset:
		c.state = c.tickReset()
	}
	return c.state
}

func (c *Controller) tickInit() State {
	c.startup = false
	c.reset = false
	c.bringUp()

	switch {
	case c.faultCode != 0:
		return StateFault
	case c.mounted && c.check:
		return StateAccessCheck
	case c.mounted:
		return StateAccess
	default:
		return StateNotReady
	}
}

func (c *Controller) tickNotReady() State {
	if c.prober.Present() {
		c.notReady = false
	}

	switch {
	case c.reset:
		return StateReset
	case !c.notReady && !c.eject:
		return StateInit
	default:
		return StateNotReady
	}
}

func (c *Controller) tickAccess() State {
	switch {
	case c.faultCode != 0:
		return StateFault
	case c.reset:
		return StateReset
	case c.eject:
		return StateEject
	case c.check:
		return StateAccessCheck
	default:
		return StateAccess
	}
}

func (c *Controller) tickAccessCheck() State {
	if !c.prober.Present() {
		c.notReady = true
	}

	switch {
	case c.faultCode != 0:
		return StateFault
	case c.reset:
		return StateReset
	case c.notReady || c.eject:
		return StateEject
	case !c.check:
		return StateAccess
	default:
		return StateAccessCheck
	}
}

func (c *Controller) tickEject() State {
	c.closeQuietly()
	_ = c.fs.Unmount()
	c.mounted = false
	c.notReady = true
	return StateNotReady
}

func (c *Controller) tickFault() State {
	switch {
	case c.reset:
		return StateReset
	case c.eject:
		return StateEject
	default:
		return StateFault
	}
}

func (c *Controller) tickReset() State {
	c.closeQuietly()
	c.subDir = ""
	_ = c.fs.Unmount()
	c.mounted = false
	c.faultCode = 0
	c.faultMode = 0
	c.notReady = false
	c.eject = false
	c.reset = false
	return StateInit
}

// bringUp mounts the volume and bootstraps the working directory.
// Metadata failures after a successful mount latch fault bits but do
// not abort the mount.
func (c *Controller) bringUp() {
	if err := c.fs.Mount(); err != nil {
		c.notReady = true
		c.mounted = false
		_ = c.fs.Unmount()
		return
	}
	c.mounted = true
	c.notReady = false

	if label, err := c.fs.Label(); err != nil {
		c.latch(FaultComms, err)
	} else {
		c.label = label
	}
	c.refreshSpace()
	c.ensureDir(c.rootPath)
}

func (c *Controller) ensureDir(dir string) {
	if dir == "" {
		return
	}
	err := c.fs.Stat(dir)
	if err == nil {
		return
	}
	if !isCode(err, FSNoFile) && !isCode(err, FSNoPath) {
		c.latch(FaultDir, err)
		return
	}
	if err := c.fs.Mkdir(dir); err != nil && !isCode(err, FSExist) {
		c.latch(FaultDir, err)
	}
}

func (c *Controller) refreshSpace() {
	free, total, err := c.fs.FreeSpace()
	if err != nil {
		c.latch(FaultFree, err)
		return
	}
	c.freeSpace, c.totalSpace = free, total
}

func (c *Controller) closeQuietly() {
	if c.openFile {
		_ = c.file.Close()
		c.file = nil
		c.openFile = false
	}
}

// latch records a failed operation category and the underlying
// filesystem result code. Fault state persists until an explicit reset.
func (c *Controller) latch(bit FaultCode, err error) {
	c.faultCode |= bit
	var fe *FSError
	if errors.As(err, &fe) {
		c.faultMode |= 1 << uint(fe.Code)
	}
}

func isCode(err error, code FSCode) bool {
	var fe *FSError
	return errors.As(err, &fe) && fe.Code == code
}

// fullPath resolves a file name against the root path and the current
// sub-directory.
func (c *Controller) fullPath(name string) string {
	return path.Join(c.rootPath, c.subDir, name)
}
