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

// Option is a functional option for configuring a Card
type Option func(*Card) error

// WithRetryConfig sets the poll budgets for the session
func WithRetryConfig(config *RetryConfig) Option {
	return func(c *Card) error {
		if config == nil {
			config = DefaultRetryConfig()
		}
		c.config.RetryConfig = config
		return nil
	}
}

// WithPreErase enables or disables the ACMD23 pre-erase hint before
// multi-sector writes on SDC v1 cards
func WithPreErase(enable bool) Option {
	return func(c *Card) error {
		c.config.PreErase = enable
		return nil
	}
}

// WithDelayFunc replaces the blocking sleep used between poll attempts.
// Tests substitute a no-op to run the bounded loops at full speed.
func WithDelayFunc(delay func(time.Duration)) Option {
	return func(c *Card) error {
		if delay == nil {
			delay = time.Sleep
		}
		c.delay = delay
		return nil
	}
}
