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

// Package spidev provides the native SPI transport for SD/MMC cards
// via periph.io.
//
// The chip select is a plain GPIO pin driven by the driver rather than
// the controller's hardware CS: card bring-up requires clocking the bus
// with the card deselected, which hardware CS cannot express.
package spidev

import (
	"fmt"

	sdspi "github.com/embedworks/go-sdspi"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// InitClockFreq is the bus speed during card bring-up. The SD spec caps
// the identification phase at 400 kHz.
const InitClockFreq = 400 * physic.KiloHertz

// DefaultClockFreq is the bus speed for data transfer after a
// successful Init.
const DefaultClockFreq = 20 * physic.MegaHertz

// Transport implements the sdspi.Transport interface over a Linux
// spidev port with a GPIO chip select.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	cs       gpio.PinIO
	portName string
	freq     physic.Frequency
}

// New opens the named SPI port (e.g. "SPI0.0") with the named GPIO pin
// (e.g. "GPIO22") as chip select, clocked at the identification speed.
// Call Reclock after a successful card Init to raise the bus speed.
func New(portName, csName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	cs := gpioreg.ByName(csName)
	if cs == nil {
		return nil, fmt.Errorf("chip select pin %q not found", csName)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("failed to drive chip select %q: %w", csName, err)
	}

	t := &Transport{
		cs:       cs,
		portName: portName,
	}
	if err := t.connect(InitClockFreq); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transport) connect(freq physic.Frequency) error {
	port, err := spireg.Open(t.portName)
	if err != nil {
		return fmt.Errorf("failed to open SPI port %s: %w", t.portName, err)
	}
	// hardware CS disabled; the GPIO pin owns the line
	conn, err := port.Connect(freq, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("failed to connect SPI port %s: %w", t.portName, err)
	}
	t.port = port
	t.conn = conn
	t.freq = freq
	return nil
}

// Reclock reopens the port at the given bus speed. Zero selects
// DefaultClockFreq.
func (t *Transport) Reclock(freq physic.Frequency) error {
	if freq == 0 {
		freq = DefaultClockFreq
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port %s: %w", t.portName, err)
	}
	return t.connect(freq)
}

// Write clocks data out on the bus.
func (t *Transport) Write(data []byte) error {
	return t.conn.Tx(data, nil)
}

// Transfer clocks one byte out and returns the byte clocked in.
func (t *Transport) Transfer(b byte) (byte, error) {
	var rx [1]byte
	if err := t.conn.Tx([]byte{b}, rx[:]); err != nil {
		return 0xFF, err
	}
	return rx[0], nil
}

// Select asserts the chip select line.
func (t *Transport) Select() {
	_ = t.cs.Out(gpio.Low)
}

// Deselect deasserts the chip select line.
func (t *Transport) Deselect() {
	_ = t.cs.Out(gpio.High)
}

// Close releases the chip select and the port.
func (t *Transport) Close() error {
	_ = t.cs.Out(gpio.High)
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port %s: %w", t.portName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() sdspi.TransportType {
	return sdspi.TransportSPI
}
