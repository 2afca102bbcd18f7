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
	"encoding/binary"
	"fmt"
	"strings"
)

// CSD is the 16-byte card-specific data register in transmission order.
// Fields are exposed through explicit accessors rather than packed
// bit-field structs.
type CSD [16]byte

// Version returns the CSD structure version: 0 for v1 (MMC and SDC v1),
// 1 for v2 (SDC v2), 2 for the unsupported v3.
func (c CSD) Version() int {
	return int(c[0] >> 6)
}

// ReadBlLen returns the READ_BL_LEN exponent (v1 layout).
func (c CSD) ReadBlLen() uint {
	return uint(c[5] & 0x0F)
}

// CSize returns the raw C_SIZE field. The v1 layout spreads it across
// bytes 6-8; the v2 layout holds it contiguously in bytes 7-9.
func (c CSD) CSize() uint32 {
	if c.Version() == 0 {
		return uint32(c[6]&0x03)<<10 | uint32(c[7])<<2 | uint32(c[8])>>6
	}
	return uint32(c[7]&0x3F)<<16 | uint32(c[8])<<8 | uint32(c[9])
}

// CSizeMult returns the C_SIZE_MULT exponent (v1 layout only).
func (c CSD) CSizeMult() uint {
	return uint(c[9]&0x03)<<1 | uint(c[10])>>7
}

// SectorCount computes the card capacity in 512-byte sectors using the
// version-specific formula. CSD v3 is not supported and returns
// ErrInvalidParam.
func (c CSD) SectorCount() (uint32, error) {
	switch c.Version() {
	case 0:
		n := c.ReadBlLen() + c.CSizeMult() + 2
		return (c.CSize() + 1) << (n - 9), nil
	case 1:
		return (c.CSize() + 1) << 10, nil
	default:
		return 0, fmt.Errorf("CSD version %d: %w", c.Version(), ErrInvalidParam)
	}
}

// CID is the 16-byte card identification register in transmission order.
type CID [16]byte

// ManufacturerID returns the MID byte.
func (c CID) ManufacturerID() byte {
	return c[0]
}

// OEMID returns the two-character OEM/application ID.
func (c CID) OEMID() string {
	return string(c[1:3])
}

// ProductName returns the five-character product name, trimmed.
func (c CID) ProductName() string {
	return strings.TrimRight(string(c[3:8]), " \x00")
}

// ProductRevision returns the major and minor revision digits.
func (c CID) ProductRevision() (major, minor byte) {
	return c[8] >> 4, c[8] & 0x0F
}

// SerialNumber returns the 32-bit product serial number.
func (c CID) SerialNumber() uint32 {
	return binary.BigEndian.Uint32(c[9:13])
}

// readRegister issues cmd and reads an n-byte register as a data packet.
func (c *Card) readRegister(cmd byte, dst []byte) error {
	if !c.status.Ready() {
		return ErrNotReady
	}
	c.transport.Select()
	defer c.release()

	r1, err := c.sendCommand(cmd, 0, crcStuff)
	if err != nil {
		return err
	}
	if r1 != r1Ready {
		return &CommandError{Cmd: cmd, R1: r1}
	}
	return c.readDataPacket(dst)
}

// ReadCSD reads the card-specific data register via CMD9.
func (c *Card) ReadCSD() (CSD, error) {
	var csd CSD
	err := c.readRegister(cmdSendCSD, csd[:])
	return csd, err
}

// ReadCID reads the card identification register via CMD10.
func (c *Card) ReadCID() (CID, error) {
	var cid CID
	err := c.readRegister(cmdSendCID, cid[:])
	return cid, err
}

// ReadOCR reads the operating-conditions register via CMD58. The four
// bytes follow the R1 directly, not wrapped in a data packet.
func (c *Card) ReadOCR() ([4]byte, error) {
	var ocr [4]byte
	if !c.status.Ready() {
		return ocr, ErrNotReady
	}
	c.transport.Select()
	defer c.release()

	r1, err := c.sendCommand(cmdReadOCR, 0, crcStuff)
	if err != nil {
		return ocr, err
	}
	if r1 != r1Ready {
		return ocr, &CommandError{Cmd: cmdReadOCR, R1: r1}
	}
	err = readBytes(c.transport, ocr[:])
	return ocr, err
}

// SectorCount reads the CSD and returns the card capacity in sectors.
func (c *Card) SectorCount() (uint32, error) {
	csd, err := c.ReadCSD()
	if err != nil {
		return 0, err
	}
	return csd.SectorCount()
}

// SectorSize returns the fixed sector size. No bus access.
func (*Card) SectorSize() int {
	return SectorSize
}
