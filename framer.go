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

// waitReady clocks the bus until the card releases the data line with
// an all-ones idle byte. The poll is bounded; exhaustion returns
// ErrBusBusy wrapped in a TransportError.
func (c *Card) waitReady() error {
	for i := 0; i < c.config.RetryConfig.BusReadyPolls; i++ {
		b, err := c.transport.Transfer(idleByte)
		if err != nil {
			return NewTransportError("waitReady", c.transportType(), err, ErrorTypeTransient)
		}
		if b == idleByte {
			return nil
		}
	}
	return NewTransportError("waitReady", c.transportType(), ErrBusBusy, ErrorTypeTimeout)
}

// sendCommand transmits one 6-byte command frame and polls for the R1
// status: command index OR-ed with the 0x40 marker, four big-endian
// argument bytes, one CRC byte.
//
// A timed-out response poll returns ErrResponseTimeout rather than the
// last byte observed, so callers can never mistake an exhausted poll
// for a matching status.
func (c *Card) sendCommand(cmd byte, arg uint32, crc byte) (byte, error) {
	// CMD12 interrupts an active read stream, so the bus is not idle.
	if cmd != cmdStopTransmission {
		if err := c.waitReady(); err != nil {
			return idleByte, err
		}
	}

	frame := [6]byte{
		0x40 | cmd,
		byte(arg >> 24),
		byte(arg >> 16),
		byte(arg >> 8),
		byte(arg),
		crc,
	}
	if err := c.transport.Write(frame[:]); err != nil {
		return idleByte, NewTransportError("sendCommand", c.transportType(), err, ErrorTypeTransient)
	}

	if cmd == cmdStopTransmission {
		// discard the stuffing byte that precedes the R1
		if _, err := c.transport.Transfer(idleByte); err != nil {
			return idleByte, NewTransportError("sendCommand", c.transportType(), err, ErrorTypeTransient)
		}
	}

	// A recognized response has the top bit clear.
	for i := 0; i < c.config.RetryConfig.ResponsePolls; i++ {
		b, err := c.transport.Transfer(idleByte)
		if err != nil {
			return idleByte, NewTransportError("sendCommand", c.transportType(), err, ErrorTypeTransient)
		}
		if b&0x80 == 0 {
			debugf("CMD%d arg=%#08x -> R1 %#02x", cmd, arg, b)
			return b, nil
		}
	}
	debugf("CMD%d arg=%#08x -> no response", cmd, arg)
	return idleByte, NewTransportError("sendCommand", c.transportType(), ErrResponseTimeout, ErrorTypeTimeout)
}

// sendAppCommand wraps an application-specific command in CMD55.
func (c *Card) sendAppCommand(cmd byte, arg uint32) (byte, error) {
	r1, err := c.sendCommand(cmdAppCmd, 0, crcStuff)
	if err != nil {
		return r1, err
	}
	if r1 > r1IdleState {
		return r1, &CommandError{Cmd: cmdAppCmd, R1: r1}
	}
	return c.sendCommand(cmd, arg, crcStuff)
}
