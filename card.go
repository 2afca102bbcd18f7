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

import (
	"time"
)

// CardType identifies the card generation resolved by negotiation.
// It governs address scaling (byte vs block addressing) and pre-erase
// hinting, and is read-only once Init returns.
type CardType int

const (
	// CardUnknown means negotiation has not run or failed.
	CardUnknown CardType = iota
	// CardMMC is a MultiMediaCard (CMD1 initiate).
	CardMMC
	// CardSD1 is an SDC version 1 card.
	CardSD1
	// CardSD2Byte is a byte-addressed SDC version 2 card.
	CardSD2Byte
	// CardSD2Block is a block-addressed (high capacity) SDC version 2 card.
	CardSD2Block
)

func (t CardType) String() string {
	switch t {
	case CardMMC:
		return "MMC"
	case CardSD1:
		return "SDCv1"
	case CardSD2Byte:
		return "SDCv2 (byte addressed)"
	case CardSD2Block:
		return "SDCv2 (block addressed)"
	default:
		return "unknown"
	}
}

// BlockAddressed returns true if sector numbers go on the wire
// unscaled; byte-addressed cards take sector*512 instead.
func (t CardType) BlockAddressed() bool {
	return t == CardSD2Block
}

// DiskStatus is the bitmask gating block-device access.
type DiskStatus byte

const (
	// StatusNoInit is set until negotiation succeeds.
	StatusNoInit DiskStatus = 0x01
	// StatusNoDisk is set while no medium is present.
	StatusNoDisk DiskStatus = 0x02
	// StatusProtect is set for write protected media.
	StatusProtect DiskStatus = 0x04
)

// Ready reports whether read/write/ioctl access is permitted.
func (s DiskStatus) Ready() bool {
	return s&(StatusNoInit|StatusNoDisk) == 0
}

// PowerState is the advisory power flag consumed by the filesystem
// layer's power-control ioctl. It does not gate operations itself.
type PowerState byte

const (
	// PowerOff marks the logical session powered down.
	PowerOff PowerState = iota
	// PowerOn marks the logical session powered up.
	PowerOn
)

// RetryConfig bounds the busy-polling loops of the protocol. Every wait
// in the driver is a bounded poll, never an unbounded spin.
type RetryConfig struct {
	// BusReadyPolls bounds the wait for the card to release the data
	// line (all-ones idle byte) before a command or write.
	BusReadyPolls int
	// ResponsePolls bounds the wait for a valid R1 after a command.
	ResponsePolls int
	// TokenPolls bounds the wait for a data-start token.
	TokenPolls int
	// ResetAttempts bounds the CMD0 software reset loop.
	ResetAttempts int
	// InitiatePolls bounds the ACMD41/CMD1 initiate loop.
	InitiatePolls int
	// PollDelay is slept between initiate and reset attempts.
	PollDelay time.Duration
}

// DefaultRetryConfig returns the poll budgets used on real hardware.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		BusReadyPolls: 8191,
		ResponsePolls: 10,
		TokenPolls:    1000,
		ResetAttempts: 100,
		InitiatePolls: 1000,
		PollDelay:     time.Millisecond,
	}
}

// CardConfig contains configuration options for a card session
type CardConfig struct {
	// RetryConfig bounds the protocol polling loops.
	RetryConfig *RetryConfig
	// PreErase enables the ACMD23 pre-erase hint before multi-sector
	// writes on SDC v1 cards.
	PreErase bool
}

// DefaultCardConfig returns default session configuration
func DefaultCardConfig() *CardConfig {
	return &CardConfig{
		RetryConfig: DefaultRetryConfig(),
		PreErase:    true,
	}
}

// Card is one SD/MMC session over an exclusively owned transport.
//
// Thread Safety: Card is NOT thread-safe. The chip select line and the
// bus are owned for the duration of one logical transaction; callers
// needing concurrent access must serialize externally.
type Card struct {
	transport Transport
	config    *CardConfig
	delay     func(time.Duration)
	cardType  CardType
	status    DiskStatus
	power     PowerState
}

// New creates a new card session on the given transport. The session
// starts uninitialized; run Init to negotiate with the card.
func New(transport Transport, opts ...Option) (*Card, error) {
	card := &Card{
		transport: transport,
		config:    DefaultCardConfig(),
		delay:     time.Sleep,
		status:    StatusNoInit,
		power:     PowerOff,
	}

	for _, opt := range opts {
		if err := opt(card); err != nil {
			return nil, err
		}
	}

	return card, nil
}

// Transport returns the underlying transport.
func (c *Card) Transport() Transport {
	return c.transport
}

// Type returns the card generation resolved by the last negotiation.
func (c *Card) Type() CardType {
	return c.cardType
}

// Status returns the current disk status bitmask.
func (c *Card) Status() DiskStatus {
	return c.status
}

// Power returns the advisory power flag.
func (c *Card) Power() PowerState {
	return c.power
}

// Present probes whether a card answers on the bus without running
// negotiation: select, poll for the idle pattern, deselect.
func (c *Card) Present() bool {
	c.transport.Select()
	defer c.release()
	return c.waitReady() == nil
}

// release deselects the card and clocks one dummy byte so the card
// releases the shared data line. Some controllers need the extra clock
// after deselect.
func (c *Card) release() {
	c.transport.Deselect()
	_, _ = c.transport.Transfer(idleByte)
}

func (c *Card) transportType() string {
	return string(c.transport.Type())
}
