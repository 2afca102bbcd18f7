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
	"context"
	"time"

	"github.com/embedworks/go-sdspi/internal/poll"
)

// Init runs the power-on and card-type negotiation sequence.
func (c *Card) Init() error {
	return c.InitContext(context.Background())
}

// InitContext runs the power-on and card-type negotiation sequence:
// idle pulse train, software reset, voltage probe, iterative initiate,
// OCR inspection and block-length fix-up. On success the session leaves
// the uninitialized state; on failure the card type is Unknown and the
// logical session is powered off.
//
// The sequence order is required for protocol correctness and must not
// be rearranged.
func (c *Card) InitContext(ctx context.Context) error {
	c.cardType = CardUnknown
	c.status |= StatusNoInit
	c.power = PowerOn

	// let the supply stabilize, then force native serial mode: at least
	// 74 clocks at idle level with the card deselected
	c.delay(time.Millisecond)
	c.transport.Deselect()
	for i := 0; i < 10; i++ {
		if _, err := c.transport.Transfer(idleByte); err != nil {
			c.power = PowerOff
			return NewTransportError("init", c.transportType(), err, ErrorTypeTransient)
		}
	}

	c.transport.Select()
	ty := c.negotiate(ctx)
	c.release()

	c.cardType = ty
	if ty == CardUnknown {
		c.power = PowerOff
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrNoCard
	}
	c.status &^= StatusNoInit
	debugf("negotiated card type: %s", ty)
	return nil
}

// negotiate resolves the attached card to a supported generation, or
// CardUnknown. The chip is selected on entry and stays selected.
func (c *Card) negotiate(ctx context.Context) CardType {
	if !c.reset(ctx) {
		return CardUnknown
	}

	r1, err := c.sendCommand(cmdSendIfCond, sendIfCondArg, crcSendIfCond)
	switch {
	case err == nil && r1 == r1IdleState:
		return c.negotiateV2(ctx)
	case err == nil && r1&r1IllegalCommand != 0:
		// the card predates CMD8
		return c.negotiateLegacy(ctx)
	default:
		return CardUnknown
	}
}

// reset issues CMD0 until the card reports idle.
func (c *Card) reset(ctx context.Context) bool {
	err := poll.Attempts(ctx, c.config.RetryConfig.ResetAttempts, c.config.RetryConfig.PollDelay, c.delay,
		func() (bool, error) {
			r1, err := c.sendCommand(cmdGoIdleState, 0, crcGoIdleState)
			return err == nil && r1 == r1IdleState, nil
		})
	return err == nil
}

// negotiateV2 handles cards that answered CMD8: SDC version 2 or later.
func (c *Card) negotiateV2(ctx context.Context) CardType {
	// R7 trailer: 4 bytes echoing the voltage range and check pattern
	var echo [4]byte
	if err := readBytes(c.transport, echo[:]); err != nil {
		return CardUnknown
	}
	if echo[2]&0x0F != 0x01 || echo[3] != 0xAA {
		return CardUnknown
	}

	// initiate with host high-capacity support flagged
	if ok, _ := c.initiate(ctx, cmdAppSendOpCond, acmd41HCS, true); !ok {
		return CardUnknown
	}

	r1, err := c.sendCommand(cmdReadOCR, 0, crcStuff)
	if err != nil || r1 != r1Ready {
		return CardUnknown
	}
	var ocr [4]byte
	if err := readBytes(c.transport, ocr[:]); err != nil {
		return CardUnknown
	}
	if ocr[0]&ocrCCS != 0 {
		return CardSD2Block
	}

	// byte addressed: pin the block length to one sector
	if !c.forceBlockLen() {
		return CardUnknown
	}
	return CardSD2Byte
}

// negotiateLegacy handles cards that rejected CMD8: SDC version 1,
// falling back to MMC.
func (c *Card) negotiateLegacy(ctx context.Context) CardType {
	ty := CardSD1
	ok, _ := c.initiate(ctx, cmdAppSendOpCond, 0, true)
	if !ok {
		ty = CardMMC
		if ok, _ = c.initiate(ctx, cmdSendOpCond, 0, false); !ok {
			return CardUnknown
		}
	}
	if !c.forceBlockLen() {
		return CardUnknown
	}
	return ty
}

// initiate repeatedly issues the designated op-cond command until the
// card reports ready or the attempt budget runs out. It returns the
// success flag and the last R1 observed.
func (c *Card) initiate(ctx context.Context, cmd byte, arg uint32, app bool) (bool, byte) {
	last := idleByte
	err := poll.Attempts(ctx, c.config.RetryConfig.InitiatePolls, c.config.RetryConfig.PollDelay, c.delay,
		func() (bool, error) {
			var (
				r1  byte
				err error
			)
			if app {
				r1, err = c.sendAppCommand(cmd, arg)
			} else {
				r1, err = c.sendCommand(cmd, arg, crcStuff)
			}
			if err == nil {
				last = r1
			}
			return err == nil && r1 == r1Ready, nil
		})
	return err == nil, last
}

func (c *Card) forceBlockLen() bool {
	r1, err := c.sendCommand(cmdSetBlocklen, SectorSize, crcStuff)
	return err == nil && r1 == r1Ready
}
