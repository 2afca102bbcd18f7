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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdspi "github.com/embedworks/go-sdspi"
	"github.com/embedworks/go-sdspi/internal/testutil"
)

func TestCardTypeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want string
		ty   sdspi.CardType
	}{
		{ty: sdspi.CardUnknown, want: "unknown"},
		{ty: sdspi.CardMMC, want: "MMC"},
		{ty: sdspi.CardSD1, want: "SDCv1"},
		{ty: sdspi.CardSD2Byte, want: "SDCv2 (byte addressed)"},
		{ty: sdspi.CardSD2Block, want: "SDCv2 (block addressed)"},
	}

	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.want, tt.ty.String())
	}
}

func TestCardTypeBlockAddressed(t *testing.T) {
	t.Parallel()

	assert.True(t, sdspi.CardSD2Block.BlockAddressed())
	assert.False(t, sdspi.CardSD2Byte.BlockAddressed())
	assert.False(t, sdspi.CardSD1.BlockAddressed())
	assert.False(t, sdspi.CardMMC.BlockAddressed())
	assert.False(t, sdspi.CardUnknown.BlockAddressed())
}

func TestDiskStatusReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status sdspi.DiskStatus
		want   bool
	}{
		{name: "clear", status: 0, want: true},
		{name: "no init", status: sdspi.StatusNoInit, want: false},
		{name: "no disk", status: sdspi.StatusNoDisk, want: false},
		{name: "protected only", status: sdspi.StatusProtect, want: true},
		{name: "no init and protected", status: sdspi.StatusNoInit | sdspi.StatusProtect, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.status.Ready())
		})
	}
}

func TestNewCardDefaults(t *testing.T) {
	t.Parallel()
	vc := testutil.NewVirtualCard(testutil.FlavorSD2Block)

	card, err := sdspi.New(vc)
	require.NoError(t, err)

	assert.Equal(t, sdspi.CardUnknown, card.Type())
	assert.False(t, card.Status().Ready())
	assert.Equal(t, sdspi.PowerOff, card.Power())
	assert.Equal(t, sdspi.TransportMock, card.Transport().Type())
}

func TestPresent(t *testing.T) {
	t.Parallel()
	card, _ := initTestCard(t, testutil.FlavorSD2Block)

	assert.True(t, card.Present())
}
