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

// sdtool exercises an SD card over SPI: detect candidate buses, show
// card identity, read sectors, and measure throughput.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	sdspi "github.com/embedworks/go-sdspi"
	"github.com/embedworks/go-sdspi/detection"
	"github.com/embedworks/go-sdspi/transport/serial"
	"github.com/embedworks/go-sdspi/transport/spidev"
)

type config struct {
	devicePath *string
	csPin      *string
	baudRate   *int
	debug      *bool
}

func parseFlags() *config {
	cfg := &config{
		devicePath: flag.String("device", "",
			"Device path (e.g., /dev/spidev0.0 or /dev/ttyUSB0)"),
		csPin:    flag.String("cs", "GPIO8", "Chip-select pin name for spidev transports"),
		baudRate: flag.Int("baud", 921600, "Baud rate for serial bridge transports"),
		debug:    flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()

	if *cfg.debug {
		sdspi.SetDebugLogger(log.New(os.Stderr, "sdspi: ", log.Lmicroseconds))
	}

	return cfg
}

func usage() {
	_, _ = fmt.Fprintln(os.Stderr, "usage: sdtool [flags] <command>")
	_, _ = fmt.Fprintln(os.Stderr, "commands:")
	_, _ = fmt.Fprintln(os.Stderr, "  detect              list candidate buses")
	_, _ = fmt.Fprintln(os.Stderr, "  info                show card identity and capacity")
	_, _ = fmt.Fprintln(os.Stderr, "  read <sector>       hex dump one sector")
	_, _ = fmt.Fprintln(os.Stderr, "  dump <start> <n>    hex dump n sectors")
	_, _ = fmt.Fprintln(os.Stderr, "  bench               measure sequential read throughput")
	flag.PrintDefaults()
}

// newTransport creates a transport from a device path. Paths containing
// "spi" get the native spidev transport, everything else is treated as
// a serial bridge.
func newTransport(cfg *config) (sdspi.Transport, error) {
	path := *cfg.devicePath
	if path == "" {
		return nil, fmt.Errorf("no device specified (use -device)")
	}

	if strings.Contains(strings.ToLower(path), "spi") {
		transport, err := spidev.New(path, *cfg.csPin)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	}

	transport, err := serial.New(path, serial.WithBaudRate(*cfg.baudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create serial transport: %w", err)
	}
	return transport, nil
}

func openCard(cfg *config) (*sdspi.Card, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	card, err := sdspi.New(transport)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	if err := card.Init(); err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("card init failed: %w", err)
	}

	// Negotiation runs at the slow bring-up clock; shift up for data.
	if spi, ok := transport.(*spidev.Transport); ok {
		if err := spi.Reclock(spidev.DefaultClockFreq); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "warning: reclock failed: %v\n", err)
		}
	}

	return card, nil
}

func runDetect() error {
	devices, err := detection.All()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if len(devices) == 0 {
		_, _ = fmt.Println("No candidate buses found")
		return nil
	}
	for _, d := range devices {
		_, _ = fmt.Printf("%-8s %-20s %s\n", d.Transport, d.Path, d.Description)
	}
	return nil
}

func runInfo(card *sdspi.Card) error {
	_, _ = fmt.Printf("Card type:    %s\n", card.Type())

	cid, err := card.ReadCID()
	if err != nil {
		return fmt.Errorf("failed to read CID: %w", err)
	}
	major, minor := cid.ProductRevision()
	_, _ = fmt.Printf("Manufacturer: 0x%02X\n", cid.ManufacturerID())
	_, _ = fmt.Printf("OEM:          %s\n", cid.OEMID())
	_, _ = fmt.Printf("Product:      %s rev %d.%d\n", cid.ProductName(), major, minor)
	_, _ = fmt.Printf("Serial:       0x%08X\n", cid.SerialNumber())

	count, err := card.SectorCount()
	if err != nil {
		return fmt.Errorf("failed to read capacity: %w", err)
	}
	_, _ = fmt.Printf("Capacity:     %d sectors (%d MiB)\n",
		count, uint64(count)*sdspi.SectorSize/(1024*1024))
	return nil
}

func runDump(card *sdspi.Card, start uint32, count int) error {
	buf := make([]byte, sdspi.SectorSize)
	for i := 0; i < count; i++ {
		sector := start + uint32(i)
		if err := card.ReadSectors(sector, 1, buf); err != nil {
			return fmt.Errorf("failed to read sector %d: %w", sector, err)
		}
		_, _ = fmt.Printf("--- sector %d ---\n", sector)
		_, _ = fmt.Print(hex.Dump(buf))
	}
	return nil
}

func runBench(card *sdspi.Card) error {
	const batch = 64
	const rounds = 16

	buf := make([]byte, batch*sdspi.SectorSize)
	begin := time.Now()
	for i := 0; i < rounds; i++ {
		if err := card.ReadSectors(uint32(i*batch), batch, buf); err != nil {
			return fmt.Errorf("read failed at sector %d: %w", i*batch, err)
		}
	}
	elapsed := time.Since(begin)

	total := rounds * batch * sdspi.SectorSize
	_, _ = fmt.Printf("Read %d KiB in %s (%.1f KiB/s)\n",
		total/1024, elapsed.Round(time.Millisecond),
		float64(total)/1024/elapsed.Seconds())
	return nil
}

func parseSector(arg string) (uint32, error) {
	n, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid sector %q: %w", arg, err)
	}
	return uint32(n), nil
}

func run(cfg *config) error {
	args := flag.Args()
	if len(args) == 0 {
		usage()
		return fmt.Errorf("no command given")
	}

	if args[0] == "detect" {
		return runDetect()
	}

	card, err := openCard(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = card.Transport().Close() }()

	switch args[0] {
	case "info":
		return runInfo(card)
	case "read":
		if len(args) != 2 {
			return fmt.Errorf("read requires a sector number")
		}
		sector, err := parseSector(args[1])
		if err != nil {
			return err
		}
		return runDump(card, sector, 1)
	case "dump":
		if len(args) != 3 {
			return fmt.Errorf("dump requires a start sector and a count")
		}
		start, err := parseSector(args[1])
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(args[2])
		if err != nil || count < 1 {
			return fmt.Errorf("invalid count %q", args[2])
		}
		return runDump(card, start, count)
	case "bench":
		return runBench(card)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "sdtool: %v\n", err)
		os.Exit(1)
	}
}
