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

// Package testutil provides a simulated SD/MMC card for driver tests.
package testutil

import (
	"encoding/binary"

	sdspi "github.com/embedworks/go-sdspi"
)

// Flavor selects the card generation the virtual card impersonates.
type Flavor int

const (
	// FlavorSD2Block is a block-addressed SDC v2 (OCR bit 30 set).
	FlavorSD2Block Flavor = iota
	// FlavorSD2Byte is a byte-addressed SDC v2.
	FlavorSD2Byte
	// FlavorSD1 is an SDC v1 (rejects CMD8).
	FlavorSD1
	// FlavorMMC is an MMC (rejects CMD8 and ACMD41, accepts CMD1).
	FlavorMMC
)

// Register fixtures returned by the virtual card for CMD9/CMD10. The
// CSD values decode to the sector counts below via the version-specific
// formulas.
var (
	// CSDv2Fixture: C_SIZE 0x76B2 -> (0x76B2+1)<<10 = 31116288 sectors.
	CSDv2Fixture = [16]byte{
		0x40, 0x0E, 0x00, 0x32, 0x5B, 0x59, 0x00, 0x00,
		0x76, 0xB2, 0x7F, 0x80, 0x0A, 0x40, 0x00, 0x01,
	}
	// CSDv2SectorCount is the capacity encoded in CSDv2Fixture.
	CSDv2SectorCount = uint32(31116288)

	// CSDv1Fixture: READ_BL_LEN 9, C_SIZE 494, C_SIZE_MULT 7
	// -> (494+1)<<(9+7+2-9) = 253440 sectors.
	CSDv1Fixture = [16]byte{
		0x00, 0x2F, 0x00, 0x32, 0x5F, 0x59, 0x80, 0x7B,
		0x80, 0x03, 0xB6, 0xFF, 0x9F, 0x96, 0x40, 0x01,
	}
	// CSDv1SectorCount is the capacity encoded in CSDv1Fixture.
	CSDv1SectorCount = uint32(253440)

	// CIDFixture decodes to manufacturer 0x03, OEM "SD", name "VCARD",
	// revision 1.0, serial 0x12345678.
	CIDFixture = [16]byte{
		0x03, 'S', 'D', 'V', 'C', 'A', 'R', 'D',
		0x10, 0x12, 0x34, 0x56, 0x78, 0x01, 0x6F, 0x01,
	}
)

// protocol states, one command or data transfer at a time
const (
	stateIdle = iota
	stateCommand
	stateWriteSingle
	stateWriteMulti
)

// VirtualCard simulates an SD/MMC card in SPI mode behind the
// sdspi.Transport interface. Responses are queued as the command frame
// completes and clocked out on subsequent transfers, matching the
// response latency of real cards.
//
// Failure injection fields let tests script protocol faults. The card
// is not safe for concurrent use, mirroring the single-owner bus model.
type VirtualCard struct {
	sectors map[uint32][]byte

	// Absent makes the card answer nothing (data line stays idle).
	Absent bool
	// FailVoltageEcho corrupts the CMD8 check-pattern echo.
	FailVoltageEcho bool
	// FailInitiate keeps ACMD41/CMD1 reporting idle forever.
	FailInitiate bool
	// SuppressReadToken withholds the data-start token after CMD17/18.
	SuppressReadToken bool
	// RejectWritePacket rejects the Nth (1-based) data packet of the
	// current transfer with a write-error response. Zero disables.
	RejectWritePacket int
	// CorruptWrites acknowledges writes but flips the first byte of the
	// stored data, simulating media that silently drops writes.
	CorruptWrites bool

	// WritePacketsReceived counts data packets offered since reset,
	// including the rejected one.
	WritePacketsReceived int
	// StopTokenSeen records that a multi-write stop token arrived.
	StopTokenSeen bool

	flavor       Flavor
	state        int
	cmdBuf       [6]byte
	cmdLen       int
	appCmd       bool
	initiated    bool
	initiatePoll int
	// InitiateAfter is the number of initiate polls answered idle
	// before the card reports ready. Defaults to 1.
	InitiateAfter int

	readBuf  []byte
	readPos  int
	multiRd  bool
	multiPos uint32

	writeBuf  []byte
	writeAddr uint32
	writeIdx  uint32
	awaitTok  bool

	selected bool
	closed   bool
}

// NewVirtualCard creates a virtual card of the given flavor with empty
// (zeroed) media.
func NewVirtualCard(flavor Flavor) *VirtualCard {
	return &VirtualCard{
		flavor:        flavor,
		sectors:       make(map[uint32][]byte),
		InitiateAfter: 1,
	}
}

// LoadSector pre-loads media content at the given sector.
func (v *VirtualCard) LoadSector(sector uint32, data []byte) {
	buf := make([]byte, sdspi.SectorSize)
	copy(buf, data)
	v.sectors[sector] = buf
}

// SectorData returns the current media content of a sector.
func (v *VirtualCard) SectorData(sector uint32) []byte {
	buf := make([]byte, sdspi.SectorSize)
	copy(buf, v.sectors[sector])
	return buf
}

// Write implements sdspi.Transport.
func (v *VirtualCard) Write(data []byte) error {
	for _, b := range data {
		v.clock(b)
	}
	return nil
}

// Transfer implements sdspi.Transport.
func (v *VirtualCard) Transfer(b byte) (byte, error) {
	return v.clock(b), nil
}

// Select implements sdspi.Transport.
func (v *VirtualCard) Select() {
	v.selected = true
}

// Deselect implements sdspi.Transport.
func (v *VirtualCard) Deselect() {
	v.selected = false
}

// Close implements sdspi.Transport.
func (v *VirtualCard) Close() error {
	v.closed = true
	return nil
}

// Type implements sdspi.Transport.
func (*VirtualCard) Type() sdspi.TransportType {
	return sdspi.TransportMock
}

// Closed reports whether Close was called.
func (v *VirtualCard) Closed() bool {
	return v.closed
}

// clock exchanges one byte: the response byte is popped first, then the
// incoming byte advances the protocol state machine. Responses queued
// while processing a byte therefore appear on the next clock, exactly
// one byte of latency like silicon.
func (v *VirtualCard) clock(in byte) byte {
	out := v.pop()
	if v.Absent || !v.selected {
		return 0xFF
	}
	v.consume(in)
	return out
}

func (v *VirtualCard) pop() byte {
	if v.Absent || !v.selected {
		return 0xFF
	}
	if v.readPos < len(v.readBuf) {
		b := v.readBuf[v.readPos]
		v.readPos++
		return b
	}
	if v.multiRd {
		// CMD18 stream: the next packet follows as soon as the host
		// keeps clocking
		v.readBuf = v.readBuf[:0]
		v.readPos = 0
		v.queueDataPacket(v.sectorData(v.multiPos))
		v.multiPos++
		return v.pop()
	}
	return 0xFF
}

func (v *VirtualCard) queue(bytes ...byte) {
	if v.readPos >= len(v.readBuf) {
		v.readBuf = v.readBuf[:0]
		v.readPos = 0
	}
	v.readBuf = append(v.readBuf, bytes...)
}

func (v *VirtualCard) queueDataPacket(data []byte) {
	v.queue(0xFE)
	v.queue(data...)
	v.queue(0x00, 0x00) // CRC, unused in SPI mode
}

func (v *VirtualCard) consume(in byte) {
	switch v.state {
	case stateIdle:
		if in&0xC0 == 0x40 {
			v.cmdBuf[0] = in
			v.cmdLen = 1
			v.state = stateCommand
		}
	case stateCommand:
		v.cmdBuf[v.cmdLen] = in
		v.cmdLen++
		if v.cmdLen == len(v.cmdBuf) {
			v.state = stateIdle
			v.execute()
		}
	case stateWriteSingle, stateWriteMulti:
		v.consumeWrite(in)
	}
}

// r1 returns the idle-aware status byte for recognized commands.
func (v *VirtualCard) r1() byte {
	if v.initiated {
		return 0x00
	}
	return 0x01
}

func (v *VirtualCard) execute() {
	cmd := v.cmdBuf[0] & 0x3F
	arg := binary.BigEndian.Uint32(v.cmdBuf[1:5])
	app := v.appCmd
	v.appCmd = false

	switch cmd {
	case 0: // GO_IDLE_STATE
		v.initiated = false
		v.initiatePoll = 0
		v.multiRd = false
		v.queue(0x01)

	case 8: // SEND_IF_COND
		if v.flavor == FlavorSD1 || v.flavor == FlavorMMC {
			v.queue(v.r1() | 0x04) // illegal command
			return
		}
		v.queue(v.r1())
		if v.FailVoltageEcho {
			v.queue(0x00, 0x00, 0x01, 0x55)
		} else {
			v.queue(0x00, 0x00, 0x01, 0xAA)
		}

	case 55: // APP_CMD
		if v.flavor == FlavorMMC {
			v.queue(v.r1() | 0x04)
			return
		}
		v.appCmd = true
		v.queue(v.r1())

	case 41: // APP_SEND_OP_COND
		if !app || v.flavor == FlavorMMC {
			v.queue(v.r1() | 0x04)
			return
		}
		v.queue(v.initiateStep())

	case 1: // SEND_OP_COND
		if v.flavor != FlavorMMC {
			v.queue(v.r1() | 0x04)
			return
		}
		v.queue(v.initiateStep())

	case 58: // READ_OCR
		v.queue(v.r1())
		switch v.flavor {
		case FlavorSD2Block:
			v.queue(0xC0, 0xFF, 0x80, 0x00)
		default:
			v.queue(0x80, 0xFF, 0x80, 0x00)
		}

	case 16: // SET_BLOCKLEN
		v.queue(v.r1())

	case 9: // SEND_CSD
		v.queue(v.r1())
		v.queueDataPacket(v.csd())

	case 10: // SEND_CID
		v.queue(v.r1())
		cid := CIDFixture
		v.queueDataPacket(cid[:])

	case 17: // READ_SINGLE_BLOCK
		v.queue(v.r1())
		if !v.SuppressReadToken {
			v.queueDataPacket(v.sectorData(v.sectorIndex(arg)))
		}

	case 18: // READ_MULTIPLE_BLOCK
		v.queue(v.r1())
		if !v.SuppressReadToken {
			v.multiRd = true
			v.multiPos = v.sectorIndex(arg)
		}

	case 12: // STOP_TRANSMISSION
		v.multiRd = false
		v.readBuf = v.readBuf[:0]
		v.readPos = 0
		v.queue(0xFF, v.r1()) // stuffing byte, then R1

	case 24: // WRITE_BLOCK
		v.queue(v.r1())
		v.startWrite(stateWriteSingle, v.sectorIndex(arg))

	case 25: // WRITE_MULTIPLE_BLOCK
		v.queue(v.r1())
		v.startWrite(stateWriteMulti, v.sectorIndex(arg))

	case 23: // SET_WR_BLK_ERASE_COUNT (via CMD55)
		v.queue(v.r1())

	case 32, 33: // ERASE_WR_BLK_START / END
		v.queue(v.r1())

	case 38: // ERASE
		v.queue(v.r1(), 0x00, 0xFF) // short busy, then idle

	default:
		v.queue(v.r1() | 0x04)
	}
}

func (v *VirtualCard) initiateStep() byte {
	if v.FailInitiate {
		return 0x01
	}
	v.initiatePoll++
	if v.initiatePoll > v.InitiateAfter {
		v.initiated = true
		return 0x00
	}
	return 0x01
}

func (v *VirtualCard) startWrite(state int, sector uint32) {
	v.state = state
	v.writeAddr = sector
	v.writeIdx = 0
	v.awaitTok = true
	v.writeBuf = v.writeBuf[:0]
	v.WritePacketsReceived = 0
	v.StopTokenSeen = false
}

func (v *VirtualCard) consumeWrite(in byte) {
	if v.awaitTok {
		switch {
		case in == 0xFD && v.state == stateWriteMulti:
			v.StopTokenSeen = true
			v.state = stateIdle
			v.queue(0x00, 0xFF) // busy, then released
		case in == 0xFE && v.state == stateWriteSingle,
			in == 0xFC && v.state == stateWriteMulti:
			v.awaitTok = false
			v.writeBuf = v.writeBuf[:0]
		}
		return
	}

	v.writeBuf = append(v.writeBuf, in)
	// 512 data bytes plus two CRC bytes complete the packet
	if len(v.writeBuf) < sdspi.SectorSize+2 {
		return
	}

	v.WritePacketsReceived++
	if v.RejectWritePacket != 0 && v.WritePacketsReceived == v.RejectWritePacket {
		v.queue(0x0D, 0x00, 0xFF) // write error, short busy
	} else {
		sector := make([]byte, sdspi.SectorSize)
		copy(sector, v.writeBuf[:sdspi.SectorSize])
		if v.CorruptWrites {
			sector[0] = ^sector[0]
		}
		v.sectors[v.writeAddr+v.writeIdx] = sector
		v.queue(0x05, 0x00, 0xFF) // accepted, short busy
	}

	if v.state == stateWriteSingle {
		v.state = stateIdle
	} else {
		v.writeIdx++
		v.awaitTok = true
	}
}

func (v *VirtualCard) sectorIndex(arg uint32) uint32 {
	if v.flavor == FlavorSD2Block {
		return arg
	}
	return arg / sdspi.SectorSize
}

func (v *VirtualCard) sectorData(sector uint32) []byte {
	if data, ok := v.sectors[sector]; ok {
		return data
	}
	return make([]byte, sdspi.SectorSize)
}

func (v *VirtualCard) csd() []byte {
	var csd [16]byte
	switch v.flavor {
	case FlavorSD2Block, FlavorSD2Byte:
		csd = CSDv2Fixture
	default:
		csd = CSDv1Fixture
	}
	return csd[:]
}
