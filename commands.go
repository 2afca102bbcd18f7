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

// SectorSize is the fixed addressable unit of the block device. The
// driver performs no partial-sector I/O.
const SectorSize = 512

// SD/MMC command indices (SPI mode)
const (
	cmdGoIdleState        = 0  // software reset
	cmdSendOpCond         = 1  // initiate (MMC)
	cmdSendIfCond         = 8  // voltage range probe
	cmdSendCSD            = 9
	cmdSendCID            = 10
	cmdStopTransmission   = 12
	cmdSetBlocklen        = 16
	cmdReadSingleBlock    = 17
	cmdReadMultipleBlock  = 18
	cmdSetWrBlkEraseCount = 23 // ACMD23, pre-erase hint
	cmdWriteBlock         = 24
	cmdWriteMultipleBlock = 25
	cmdEraseWrBlkStart    = 32
	cmdEraseWrBlkEnd      = 33
	cmdErase              = 38
	cmdAppSendOpCond      = 41 // ACMD41, initiate (SDC)
	cmdAppCmd             = 55
	cmdReadOCR            = 58
)

// Data tokens
const (
	tokenData       = 0xFE // single read/write and multi read
	tokenMultiWrite = 0xFC // multi-sector write start
	tokenStopTran   = 0xFD // multi-sector write stop
)

// R1 response bits. A recognized response has the top bit clear.
const (
	r1Ready          byte = 0x00
	r1IdleState      byte = 1 << 0
	r1EraseReset     byte = 1 << 1
	r1IllegalCommand byte = 1 << 2
	r1CRCError       byte = 1 << 3
	r1EraseSeqError  byte = 1 << 4
	r1AddressError   byte = 1 << 5
	r1ParamError     byte = 1 << 6
)

// Data response codes, low 5 bits of the byte following a write packet.
const (
	dataAccepted   = 0x05
	dataCRCError   = 0x0B
	dataWriteError = 0x0D
)

// Fixed CRC bytes. CMD0 and CMD8 are issued while the card still checks
// CRCs; everything after runs with CRC disabled and takes a stuffed one.
const (
	crcGoIdleState = 0x95
	crcSendIfCond  = 0x87
	crcStuff       = 0x01
)

const (
	// CMD8 argument: 2.7-3.6V range, 0xAA check pattern.
	sendIfCondArg = 0x000001AA
	// HCS bit in the ACMD41 argument.
	acmd41HCS = 0x40000000
	// CCS bit (30) of the OCR: card is block addressed.
	ocrCCS = 0x40
)

const idleByte byte = 0xFF
