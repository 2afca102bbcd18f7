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

// Package serial provides the SPI bridge transport for USB serial
// adapters running the go-sdspi bridge firmware.
//
// The bridge wire protocol is byte oriented: 'S' asserts chip select,
// 'D' deasserts it, and 'X' followed by a 16-bit big-endian length and
// that many payload bytes performs a full-duplex exchange; the bridge
// answers with the same number of bytes clocked in.
package serial

import (
	"fmt"
	"time"

	sdspi "github.com/embedworks/go-sdspi"
	"go.bug.st/serial"
)

// Bridge opcodes.
const (
	opSelect   = 'S'
	opDeselect = 'D'
	opExchange = 'X'
)

// maxExchange is the largest single bridge exchange; larger transfers
// are split.
const maxExchange = 1024

// Transport implements the sdspi.Transport interface over a serial SPI
// bridge.
type Transport struct {
	port     serial.Port
	portName string
	baudRate int
	timeout  time.Duration
	scratch  [maxExchange]byte
}

// Option is a functional option for configuring the transport
type Option func(*Transport)

// WithBaudRate sets the serial baud rate (default 921600).
func WithBaudRate(baud int) Option {
	return func(t *Transport) {
		t.baudRate = baud
	}
}

// WithReadTimeout sets the read timeout for bridge responses
// (default 500ms).
func WithReadTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		t.timeout = timeout
	}
}

// New opens the named serial port and prepares the bridge.
func New(portName string, opts ...Option) (*Transport, error) {
	t := &Transport{
		portName: portName,
		baudRate: 921600,
		timeout:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(t)
	}

	mode := &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(t.timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	t.port = port
	return t, nil
}

// exchange performs one full-duplex bridge transfer. rx may be nil to
// discard the clocked-in bytes.
func (t *Transport) exchange(tx, rx []byte) error {
	for len(tx) > 0 {
		n := len(tx)
		if n > maxExchange {
			n = maxExchange
		}
		hdr := [3]byte{opExchange, byte(n >> 8), byte(n)}
		if _, err := t.port.Write(hdr[:]); err != nil {
			return fmt.Errorf("bridge write failed: %w", err)
		}
		if _, err := t.port.Write(tx[:n]); err != nil {
			return fmt.Errorf("bridge write failed: %w", err)
		}

		dst := t.scratch[:n]
		if rx != nil {
			dst = rx[:n]
		}
		if err := t.readFull(dst); err != nil {
			return err
		}

		tx = tx[n:]
		if rx != nil {
			rx = rx[n:]
		}
	}
	return nil
}

// readFull reads exactly len(dst) bytes, looping over short reads.
// A zero-byte read means the port timeout expired.
func (t *Transport) readFull(dst []byte) error {
	for read := 0; read < len(dst); {
		n, err := t.port.Read(dst[read:])
		if err != nil {
			return fmt.Errorf("bridge read failed: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("bridge read: %w", sdspi.ErrTransportTimeout)
		}
		read += n
	}
	return nil
}

// Write clocks data out on the bus.
func (t *Transport) Write(data []byte) error {
	return t.exchange(data, nil)
}

// Transfer clocks one byte out and returns the byte clocked in.
func (t *Transport) Transfer(b byte) (byte, error) {
	var rx [1]byte
	if err := t.exchange([]byte{b}, rx[:]); err != nil {
		return 0xFF, err
	}
	return rx[0], nil
}

// Select asserts the chip select line.
func (t *Transport) Select() {
	_, _ = t.port.Write([]byte{opSelect})
}

// Deselect deasserts the chip select line.
func (t *Transport) Deselect() {
	_, _ = t.port.Write([]byte{opDeselect})
}

// Close closes the serial port.
func (t *Transport) Close() error {
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.portName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() sdspi.TransportType {
	return sdspi.TransportSerial
}
