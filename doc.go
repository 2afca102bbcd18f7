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

/*
Package sdspi provides a pure Go driver for SD and MMC memory cards
operated in SPI mode.

The driver speaks the SD SPI-mode command protocol directly over a
byte-level serial bus: 6-byte command frames, R1/R3/R7 responses,
512-byte data packets framed by start tokens, and the power-on
negotiation sequence that resolves the attached card to one of the
supported card generations (MMC, SDC v1, SDC v2 byte-addressed, SDC v2
block-addressed). On top of the raw protocol it exposes single and
multi sector block I/O, the card register set (CSD, CID, OCR), and the
drive-indexed block-device contract a FAT filesystem layer consumes.

Basic Usage:

	import (
	    "github.com/embedworks/go-sdspi"
	    "github.com/embedworks/go-sdspi/transport/spidev"
	)

	// Open an SPI port with a GPIO chip select
	transport, err := spidev.New("SPI0.0", "GPIO22")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Create the card session and run power-on negotiation
	card, err := sdspi.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	if err := card.Init(); err != nil {
	    log.Fatal(err)
	}

	fmt.Printf("card: %s\n", card.Type())

	// Read the first sector
	buf := make([]byte, sdspi.SectorSize)
	if err := card.ReadSectors(0, 1, buf); err != nil {
	    log.Fatal(err)
	}

Transport Selection:

The byte-level bus is abstracted behind the Transport interface:

  - transport/spidev: Linux spidev via periph.io with a GPIO chip select
  - transport/serial: USB serial SPI bridge adapters

Mount Controller:

The mount package layers a polled state machine over the driver that
owns mount/unmount timing, card presence detection, fault latching and
the application-triggered eject/reset protocol.

Error Handling:

All operations return result errors that can be inspected:

	if errors.Is(err, sdspi.ErrNotReady) {
	    // Card not negotiated yet
	}

Thread Safety:

Card operations are not thread-safe. The chip select line and the bus
are exclusively owned for the duration of one logical transaction; if
you need concurrent access, serialize it in your application.
*/
package sdspi
