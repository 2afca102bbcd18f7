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

// readDataPacket waits for the data-start token, then fills dst and
// discards the two trailing CRC bytes. The token poll is bounded by
// TokenPolls; exhaustion returns ErrTokenTimeout.
func (c *Card) readDataPacket(dst []byte) error {
	token := idleByte
	for i := 0; i < c.config.RetryConfig.TokenPolls; i++ {
		b, err := c.transport.Transfer(idleByte)
		if err != nil {
			return NewTransportError("readDataPacket", c.transportType(), err, ErrorTypeTransient)
		}
		if b != idleByte {
			token = b
			break
		}
	}
	if token != tokenData {
		return NewTransportError("readDataPacket", c.transportType(), ErrTokenTimeout, ErrorTypeTimeout)
	}

	if err := readBytes(c.transport, dst); err != nil {
		return NewTransportError("readDataPacket", c.transportType(), err, ErrorTypeTransient)
	}

	// two CRC bytes, unused in SPI mode
	for i := 0; i < 2; i++ {
		if _, err := c.transport.Transfer(idleByte); err != nil {
			return NewTransportError("readDataPacket", c.transportType(), err, ErrorTypeTransient)
		}
	}
	return nil
}

// writeDataPacket waits for card-not-busy, sends the token and, for
// data tokens, the 512-byte payload with two dummy CRC bytes, then
// checks the data response. A stop token carries no payload.
func (c *Card) writeDataPacket(src []byte, token byte) error {
	if err := c.waitReady(); err != nil {
		return err
	}

	if _, err := c.transport.Transfer(token); err != nil {
		return NewTransportError("writeDataPacket", c.transportType(), err, ErrorTypeTransient)
	}
	if token == tokenStopTran {
		return nil
	}

	if err := c.transport.Write(src); err != nil {
		return NewTransportError("writeDataPacket", c.transportType(), err, ErrorTypeTransient)
	}
	// dummy CRC
	for i := 0; i < 2; i++ {
		if _, err := c.transport.Transfer(idleByte); err != nil {
			return NewTransportError("writeDataPacket", c.transportType(), err, ErrorTypeTransient)
		}
	}

	resp, err := c.transport.Transfer(idleByte)
	if err != nil {
		return NewTransportError("writeDataPacket", c.transportType(), err, ErrorTypeTransient)
	}
	if resp&0x1F != dataAccepted {
		return &DataResponseError{Code: resp & 0x1F}
	}
	return nil
}
