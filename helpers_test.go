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
	"time"

	"github.com/stretchr/testify/require"

	sdspi "github.com/embedworks/go-sdspi"
	"github.com/embedworks/go-sdspi/internal/testutil"
)

// newTestCard creates an uninitialized session over a virtual card with
// sleeps disabled so polls run at full speed.
func newTestCard(t *testing.T, flavor testutil.Flavor, opts ...sdspi.Option) (*sdspi.Card, *testutil.VirtualCard) {
	t.Helper()
	vc := testutil.NewVirtualCard(flavor)
	all := append([]sdspi.Option{sdspi.WithDelayFunc(func(time.Duration) {})}, opts...)
	card, err := sdspi.New(vc, all...)
	require.NoError(t, err)
	return card, vc
}

// initTestCard creates a session and runs negotiation to completion.
func initTestCard(t *testing.T, flavor testutil.Flavor, opts ...sdspi.Option) (*sdspi.Card, *testutil.VirtualCard) {
	t.Helper()
	card, vc := newTestCard(t, flavor, opts...)
	require.NoError(t, card.Init())
	return card, vc
}

// sectorPattern fills one sector with a recognizable per-sector pattern.
func sectorPattern(seed byte) []byte {
	buf := make([]byte, sdspi.SectorSize)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return buf
}
