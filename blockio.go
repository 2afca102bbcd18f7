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
	"context"
)

// scaleAddress maps a sector number to the wire address: block-addressed
// cards take the sector number as-is, byte-addressed cards take
// sector*512.
func (c *Card) scaleAddress(sector uint32) uint32 {
	if c.cardType.BlockAddressed() {
		return sector
	}
	return sector * SectorSize
}

func (c *Card) checkAccess(count, bufLen int) error {
	if count <= 0 || bufLen < count*SectorSize {
		return ErrInvalidParam
	}
	if !c.status.Ready() {
		return ErrNotReady
	}
	return nil
}

// ReadSectors reads count sectors starting at sector into dst.
func (c *Card) ReadSectors(sector uint32, count int, dst []byte) error {
	return c.ReadSectorsContext(context.Background(), sector, count, dst)
}

// ReadSectorsContext reads count sectors starting at sector into dst.
// A single sector uses CMD17; more use CMD18 terminated by CMD12. The
// chip is always deselected and given one dummy clock afterward,
// regardless of outcome. The context is checked between sectors; a
// transfer already in flight runs to its packet boundary.
func (c *Card) ReadSectorsContext(ctx context.Context, sector uint32, count int, dst []byte) error {
	if err := c.checkAccess(count, len(dst)); err != nil {
		return err
	}

	addr := c.scaleAddress(sector)
	c.transport.Select()
	defer c.release()

	if count == 1 {
		r1, err := c.sendCommand(cmdReadSingleBlock, addr, crcStuff)
		if err != nil {
			return err
		}
		if r1 != r1Ready {
			return &CommandError{Cmd: cmdReadSingleBlock, R1: r1}
		}
		return c.readDataPacket(dst[:SectorSize])
	}

	r1, err := c.sendCommand(cmdReadMultipleBlock, addr, crcStuff)
	if err != nil {
		return err
	}
	if r1 != r1Ready {
		return &CommandError{Cmd: cmdReadMultipleBlock, R1: r1}
	}

	var readErr error
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			readErr = err
			break
		}
		off := i * SectorSize
		if err := c.readDataPacket(dst[off : off+SectorSize]); err != nil {
			readErr = err
			break
		}
	}

	// the stream must be stopped even after a packet error
	r1, stopErr := c.sendCommand(cmdStopTransmission, 0, crcStuff)
	if readErr != nil {
		return readErr
	}
	if stopErr != nil {
		return stopErr
	}
	if r1 != r1Ready {
		return &CommandError{Cmd: cmdStopTransmission, R1: r1}
	}
	return nil
}

// WriteSectors writes count sectors starting at sector from src.
func (c *Card) WriteSectors(sector uint32, count int, src []byte) error {
	return c.WriteSectorsContext(context.Background(), sector, count, src)
}

// WriteSectorsContext writes count sectors starting at sector from src.
// A single sector uses CMD24; more use CMD25 with multi-write tokens
// and a trailing stop token. On SDC v1 cards the sector count is
// hinted ahead via ACMD23 so the card can pre-erase.
func (c *Card) WriteSectorsContext(ctx context.Context, sector uint32, count int, src []byte) error {
	if err := c.checkAccess(count, len(src)); err != nil {
		return err
	}
	if c.status&StatusProtect != 0 {
		return ErrWriteProtected
	}

	addr := c.scaleAddress(sector)
	c.transport.Select()
	defer c.release()

	if count == 1 {
		r1, err := c.sendCommand(cmdWriteBlock, addr, crcStuff)
		if err != nil {
			return err
		}
		if r1 != r1Ready {
			return &CommandError{Cmd: cmdWriteBlock, R1: r1}
		}
		if err := c.writeDataPacket(src[:SectorSize], tokenData); err != nil {
			return err
		}
		return c.waitReady()
	}

	if c.cardType == CardSD1 && c.config.PreErase {
		// best-effort pre-erase hint; failure here does not abort the write
		_, _ = c.sendAppCommand(cmdSetWrBlkEraseCount, uint32(count))
	}

	r1, err := c.sendCommand(cmdWriteMultipleBlock, addr, crcStuff)
	if err != nil {
		return err
	}
	if r1 != r1Ready {
		return &CommandError{Cmd: cmdWriteMultipleBlock, R1: r1}
	}

	var writeErr error
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			writeErr = err
			break
		}
		off := i * SectorSize
		if err := c.writeDataPacket(src[off:off+SectorSize], tokenMultiWrite); err != nil {
			writeErr = err
			break
		}
	}

	// the stop token is owed to the card even after a rejected packet
	stopErr := c.writeDataPacket(nil, tokenStopTran)
	busyErr := c.waitReady()

	if writeErr != nil {
		return writeErr
	}
	if stopErr != nil {
		return stopErr
	}
	return busyErr
}

// EraseSectors erases the inclusive sector range [first, last] via
// CMD32/CMD33/CMD38.
func (c *Card) EraseSectors(first, last uint32) error {
	if first > last {
		return ErrInvalidParam
	}
	if !c.status.Ready() {
		return ErrNotReady
	}
	if c.status&StatusProtect != 0 {
		return ErrWriteProtected
	}

	c.transport.Select()
	defer c.release()

	for _, step := range []struct {
		cmd byte
		arg uint32
	}{
		{cmdEraseWrBlkStart, c.scaleAddress(first)},
		{cmdEraseWrBlkEnd, c.scaleAddress(last)},
		{cmdErase, 0},
	} {
		r1, err := c.sendCommand(step.cmd, step.arg, crcStuff)
		if err != nil {
			return err
		}
		if r1 != r1Ready {
			return &CommandError{Cmd: step.cmd, R1: r1}
		}
	}
	return c.waitReady()
}
