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

// Transport defines the interface to the byte-level serial bus carrying
// the SD SPI-mode protocol. This can be implemented by a native SPI
// controller, a USB bridge, or a simulated card.
//
// The chip select line is driven explicitly by the caller: one logical
// card transaction spans Select through Deselect and owns the bus for
// its whole duration.
type Transport interface {
	// Write clocks data out on the bus; input clocked in during the
	// transfer is discarded.
	Write(data []byte) error

	// Transfer clocks one byte out and returns the byte clocked in.
	Transfer(b byte) (byte, error)

	// Select asserts the chip select line.
	Select()

	// Deselect deasserts the chip select line.
	Deselect()

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents a native SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportSerial represents a serial SPI bridge transport.
	TransportSerial TransportType = "serial"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// readBytes fills dst by clocking idle bytes on the bus.
func readBytes(t Transport, dst []byte) error {
	for i := range dst {
		b, err := t.Transfer(idleByte)
		if err != nil {
			return err
		}
		dst[i] = b
	}
	return nil
}
