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

package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptsSucceedsWhenConditionMet(t *testing.T) {
	t.Parallel()
	calls := 0

	err := Attempts(context.Background(), 10, 0, nil, func() (bool, error) {
		calls++
		return calls == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestAttemptsExhausted(t *testing.T) {
	t.Parallel()
	calls := 0

	err := Attempts(context.Background(), 5, 0, nil, func() (bool, error) {
		calls++
		return false, nil
	})

	require.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 5, calls)
}

func TestAttemptsStopsOnError(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("bus fault")
	calls := 0

	err := Attempts(context.Background(), 5, 0, nil, func() (bool, error) {
		calls++
		return false, sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestAttemptsHonorsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := Attempts(ctx, 5, 0, nil, func() (bool, error) {
		calls++
		return false, nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestAttemptsSleepsBetweenRuns(t *testing.T) {
	t.Parallel()
	var sleeps []time.Duration
	sleep := func(d time.Duration) { sleeps = append(sleeps, d) }

	err := Attempts(context.Background(), 3, time.Millisecond, sleep, func() (bool, error) {
		return false, nil
	})

	require.ErrorIs(t, err, ErrExhausted)
	// no sleep after the last attempt
	assert.Len(t, sleeps, 2)
	assert.Equal(t, time.Millisecond, sleeps[0])
}

func TestUntilSucceeds(t *testing.T) {
	t.Parallel()
	calls := 0

	err := Until(context.Background(), time.Second, 0, func() (bool, error) {
		calls++
		return calls == 2, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUntilDeadlineExpires(t *testing.T) {
	t.Parallel()

	err := Until(context.Background(), 0, 0, func() (bool, error) {
		return false, nil
	})

	require.ErrorIs(t, err, ErrExhausted)
}
