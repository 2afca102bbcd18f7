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

package sdspi_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdspi "github.com/embedworks/go-sdspi"
	"github.com/embedworks/go-sdspi/internal/testutil"
)

func TestInitCardTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		flavor        testutil.Flavor
		wantType      sdspi.CardType
		wantBlockAddr bool
	}{
		{
			name:          "high capacity SDC v2",
			flavor:        testutil.FlavorSD2Block,
			wantType:      sdspi.CardSD2Block,
			wantBlockAddr: true,
		},
		{
			name:          "standard capacity SDC v2",
			flavor:        testutil.FlavorSD2Byte,
			wantType:      sdspi.CardSD2Byte,
			wantBlockAddr: false,
		},
		{
			name:          "SDC v1",
			flavor:        testutil.FlavorSD1,
			wantType:      sdspi.CardSD1,
			wantBlockAddr: false,
		},
		{
			name:          "MMC",
			flavor:        testutil.FlavorMMC,
			wantType:      sdspi.CardMMC,
			wantBlockAddr: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			card, _ := newTestCard(t, tt.flavor)

			require.NoError(t, card.Init())

			assert.Equal(t, tt.wantType, card.Type())
			assert.Equal(t, tt.wantBlockAddr, card.Type().BlockAddressed())
			assert.True(t, card.Status().Ready())
			assert.Equal(t, sdspi.PowerOn, card.Power())
		})
	}
}

func TestInitNoCard(t *testing.T) {
	t.Parallel()
	card, vc := newTestCard(t, testutil.FlavorSD2Block)
	vc.Absent = true

	err := card.Init()

	require.ErrorIs(t, err, sdspi.ErrNoCard)
	assert.Equal(t, sdspi.CardUnknown, card.Type())
	assert.False(t, card.Status().Ready())
	assert.Equal(t, sdspi.PowerOff, card.Power())
}

func TestInitBadVoltageEcho(t *testing.T) {
	t.Parallel()
	card, vc := newTestCard(t, testutil.FlavorSD2Block)
	vc.FailVoltageEcho = true

	err := card.Init()

	require.ErrorIs(t, err, sdspi.ErrNoCard)
	assert.Equal(t, sdspi.CardUnknown, card.Type())
}

func TestInitInitiateTimeout(t *testing.T) {
	t.Parallel()
	retry := sdspi.DefaultRetryConfig()
	retry.InitiatePolls = 10
	retry.PollDelay = 0
	card, vc := newTestCard(t, testutil.FlavorSD2Block, sdspi.WithRetryConfig(retry))
	vc.FailInitiate = true

	err := card.Init()

	require.ErrorIs(t, err, sdspi.ErrNoCard)
	assert.False(t, card.Status().Ready())
}

func TestInitContextCanceled(t *testing.T) {
	t.Parallel()
	card, _ := newTestCard(t, testutil.FlavorSD2Block)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := card.InitContext(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sdspi.CardUnknown, card.Type())
	assert.Equal(t, sdspi.PowerOff, card.Power())
}

func TestReinitAfterFailure(t *testing.T) {
	t.Parallel()
	card, vc := newTestCard(t, testutil.FlavorSD1)
	vc.Absent = true
	require.Error(t, card.Init())

	// card inserted
	vc.Absent = false

	require.NoError(t, card.Init())
	assert.Equal(t, sdspi.CardSD1, card.Type())
	assert.True(t, card.Status().Ready())
}
