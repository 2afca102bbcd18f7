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

package sdspi

import (
	"errors"
)

// Result is the outcome code of a block-device contract call.
type Result int

const (
	// ResOK means the call succeeded.
	ResOK Result = iota
	// ResError means a protocol or bus error.
	ResError
	// ResWriteProtected means a write to protected media was refused.
	ResWriteProtected
	// ResNotReady means the drive has not been initialized.
	ResNotReady
	// ResParamError means an invalid parameter; the bus was not touched.
	ResParamError
)

func (r Result) String() string {
	switch r {
	case ResOK:
		return "OK"
	case ResError:
		return "error"
	case ResWriteProtected:
		return "write protected"
	case ResNotReady:
		return "not ready"
	case ResParamError:
		return "parameter error"
	default:
		return "invalid result"
	}
}

// IoctlCmd selects a control operation on the block device.
type IoctlCmd int

// Generic ioctl commands.
const (
	CtrlSync       IoctlCmd = 0
	GetSectorCount IoctlCmd = 1
	GetSectorSize  IoctlCmd = 2
	GetBlockSize   IoctlCmd = 3 // unsupported
	CtrlTrim       IoctlCmd = 4 // unsupported
)

// Drive-oriented ioctl commands.
const (
	CtrlPower  IoctlCmd = 5
	CtrlLock   IoctlCmd = 6 // unsupported
	CtrlEject  IoctlCmd = 7 // unsupported
	CtrlFormat IoctlCmd = 8 // unsupported
)

// MMC/SDC-specific ioctl commands.
const (
	MMCGetType   IoctlCmd = 10
	MMCGetCSD    IoctlCmd = 11
	MMCGetCID    IoctlCmd = 12
	MMCGetOCR    IoctlCmd = 13
	MMCGetSDStat IoctlCmd = 14 // unsupported
)

// ATA-specific ioctl commands, all unsupported on card media.
const (
	ATAGetRev    IoctlCmd = 20
	ATAGetModel  IoctlCmd = 21
	ATAGetSN     IoctlCmd = 22
)

// PowerOp selects the CtrlPower sub-operation.
type PowerOp int

const (
	// PowerOpOff powers the logical session down.
	PowerOpOff PowerOp = iota
	// PowerOpOn powers the session up and re-runs negotiation.
	PowerOpOn
	// PowerOpGet queries the current power flag.
	PowerOpGet
)

// PowerRequest is the CtrlPower ioctl buffer.
type PowerRequest struct {
	Op    PowerOp
	State PowerState // filled by PowerOpGet
}

// Disk adapts a Card to the drive-indexed block-device contract the
// filesystem layer consumes. Only drive 0 exists in this design; any
// other index is a parameter error.
type Disk struct {
	card *Card
}

// NewDisk wraps a card session in the block-device contract.
func NewDisk(card *Card) *Disk {
	return &Disk{card: card}
}

// Initialize brings the drive up and returns the resulting status.
func (d *Disk) Initialize(drive byte) DiskStatus {
	if drive != 0 {
		return StatusNoInit
	}
	_ = d.card.Init()
	return d.card.Status()
}

// Status returns the drive status bitmask.
func (d *Disk) Status(drive byte) DiskStatus {
	if drive != 0 {
		return StatusNoInit
	}
	return d.card.Status()
}

// Read reads count sectors into buf.
func (d *Disk) Read(drive byte, buf []byte, sector uint32, count int) Result {
	if drive != 0 || count == 0 || buf == nil {
		return ResParamError
	}
	return resultFor(d.card.ReadSectors(sector, count, buf))
}

// Write writes count sectors from buf.
func (d *Disk) Write(drive byte, buf []byte, sector uint32, count int) Result {
	if drive != 0 || count == 0 || buf == nil {
		return ResParamError
	}
	return resultFor(d.card.WriteSectors(sector, count, buf))
}

// Ioctl performs a control operation. The buffer type depends on the
// command: *uint32 for GetSectorCount and GetSectorSize, *CSD, *CID and
// *[4]byte for the register dumps, *PowerRequest for CtrlPower.
//
// CtrlPower is the only command allowed before a successful mount.
func (d *Disk) Ioctl(drive byte, cmd IoctlCmd, buf any) Result {
	if drive != 0 {
		return ResParamError
	}

	if cmd == CtrlPower {
		return d.ctrlPower(buf)
	}
	if !d.card.Status().Ready() {
		return ResNotReady
	}

	switch cmd {
	case CtrlSync:
		// writes are synchronous; ensure the card left its busy state
		d.card.transport.Select()
		err := d.card.waitReady()
		d.card.release()
		return resultFor(err)

	case GetSectorCount:
		out, ok := buf.(*uint32)
		if !ok {
			return ResParamError
		}
		n, err := d.card.SectorCount()
		if err != nil {
			return resultFor(err)
		}
		*out = n
		return ResOK

	case GetSectorSize:
		out, ok := buf.(*uint32)
		if !ok {
			return ResParamError
		}
		*out = SectorSize
		return ResOK

	case MMCGetType:
		out, ok := buf.(*CardType)
		if !ok {
			return ResParamError
		}
		*out = d.card.Type()
		return ResOK

	case MMCGetCSD:
		out, ok := buf.(*CSD)
		if !ok {
			return ResParamError
		}
		csd, err := d.card.ReadCSD()
		if err != nil {
			return resultFor(err)
		}
		*out = csd
		return ResOK

	case MMCGetCID:
		out, ok := buf.(*CID)
		if !ok {
			return ResParamError
		}
		cid, err := d.card.ReadCID()
		if err != nil {
			return resultFor(err)
		}
		*out = cid
		return ResOK

	case MMCGetOCR:
		out, ok := buf.(*[4]byte)
		if !ok {
			return ResParamError
		}
		ocr, err := d.card.ReadOCR()
		if err != nil {
			return resultFor(err)
		}
		*out = ocr
		return ResOK

	default:
		// GetBlockSize, CtrlTrim, CtrlLock, CtrlEject, CtrlFormat,
		// MMCGetSDStat and the ATA commands are not supported
		return ResParamError
	}
}

func (d *Disk) ctrlPower(buf any) Result {
	req, ok := buf.(*PowerRequest)
	if !ok {
		return ResParamError
	}
	switch req.Op {
	case PowerOpOff:
		d.card.power = PowerOff
		return ResOK
	case PowerOpOn:
		return resultFor(d.card.Init())
	case PowerOpGet:
		req.State = d.card.Power()
		return ResOK
	default:
		return ResParamError
	}
}

// resultFor maps a driver error to the contract result code.
func resultFor(err error) Result {
	switch {
	case err == nil:
		return ResOK
	case errors.Is(err, ErrInvalidParam):
		return ResParamError
	case errors.Is(err, ErrNotReady):
		return ResNotReady
	case errors.Is(err, ErrWriteProtected):
		return ResWriteProtected
	default:
		return ResError
	}
}
