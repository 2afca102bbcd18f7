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

// Package detection discovers candidate buses a card reader may be
// attached to: native spidev ports and serial SPI bridges.
package detection

import (
	"fmt"
	"path/filepath"

	"go.bug.st/serial/enumerator"
)

// DeviceInfo describes a candidate bus.
type DeviceInfo struct {
	// Path is the device path to pass to the matching transport.
	Path string
	// Transport is "spi" or "serial".
	Transport string
	// Description is a human-readable hint about the device.
	Description string
}

// SPIPorts lists native spidev ports.
func SPIPorts() []DeviceInfo {
	matches, err := filepath.Glob("/dev/spidev*")
	if err != nil {
		return nil
	}
	devices := make([]DeviceInfo, 0, len(matches))
	for _, m := range matches {
		devices = append(devices, DeviceInfo{
			Path:        m,
			Transport:   "spi",
			Description: "spidev port",
		})
	}
	return devices
}

// SerialBridges lists serial ports that may carry an SPI bridge. USB
// ports are listed with their VID:PID so known bridge adapters can be
// told apart.
func SerialBridges() ([]DeviceInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	devices := make([]DeviceInfo, 0, len(ports))
	for _, p := range ports {
		desc := "serial port"
		if p.IsUSB {
			desc = fmt.Sprintf("USB serial %s:%s", p.VID, p.PID)
			if p.Product != "" {
				desc += " " + p.Product
			}
		}
		devices = append(devices, DeviceInfo{
			Path:        p.Name,
			Transport:   "serial",
			Description: desc,
		})
	}
	return devices, nil
}

// All lists every candidate bus on the system.
func All() ([]DeviceInfo, error) {
	devices := SPIPorts()
	bridges, err := SerialBridges()
	if err != nil {
		return devices, err
	}
	return append(devices, bridges...), nil
}
