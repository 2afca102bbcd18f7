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

// Package poll provides the bounded busy-polling primitives the driver
// waits with. Every wait has an explicit ceiling so loops terminate.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned when a poll budget runs out before the
// condition became true.
var ErrExhausted = errors.New("poll budget exhausted")

// Fn is one poll attempt. It reports whether the condition is met.
// A non-nil error stops polling immediately.
type Fn func() (done bool, err error)

// Attempts runs fn up to attempts times, sleeping delay between runs
// with the provided sleep function (nil means time.Sleep). The context
// is checked between attempts.
func Attempts(ctx context.Context, attempts int, delay time.Duration, sleep func(time.Duration), fn Fn) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	for i := 0; i < attempts; i++ {
		done, err := fn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if delay > 0 && i < attempts-1 {
			sleep(delay)
		}
	}
	return ErrExhausted
}

// Until runs fn until it reports done or the deadline passes, sleeping
// interval between runs.
func Until(ctx context.Context, timeout, interval time.Duration, fn Fn) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		done, err := fn()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
	return ErrExhausted
}
