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

func TestCSDDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         [16]byte
		wantVersion int
		wantCount   uint32
	}{
		{
			name:        "v1 layout",
			raw:         testutil.CSDv1Fixture,
			wantVersion: 0,
			wantCount:   testutil.CSDv1SectorCount,
		},
		{
			name:        "v2 layout",
			raw:         testutil.CSDv2Fixture,
			wantVersion: 1,
			wantCount:   testutil.CSDv2SectorCount,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			csd := sdspi.CSD(tt.raw)

			assert.Equal(t, tt.wantVersion, csd.Version())
			count, err := csd.SectorCount()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestCSDVersion3Unsupported(t *testing.T) {
	t.Parallel()
	var raw [16]byte
	raw[0] = 0x80 // structure version 2, the v3 layout

	csd := sdspi.CSD(raw)

	_, err := csd.SectorCount()
	require.ErrorIs(t, err, sdspi.ErrInvalidParam)
}

func TestCSDv1Fields(t *testing.T) {
	t.Parallel()
	csd := sdspi.CSD(testutil.CSDv1Fixture)

	assert.Equal(t, uint(9), csd.ReadBlLen())
	assert.Equal(t, uint32(494), csd.CSize())
	assert.Equal(t, uint(7), csd.CSizeMult())
}

func TestReadCSDFromCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flavor    testutil.Flavor
		wantCount uint32
	}{
		{name: "SDC v2", flavor: testutil.FlavorSD2Block, wantCount: testutil.CSDv2SectorCount},
		{name: "SDC v1", flavor: testutil.FlavorSD1, wantCount: testutil.CSDv1SectorCount},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			card, _ := initTestCard(t, tt.flavor)

			count, err := card.SectorCount()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestReadCID(t *testing.T) {
	t.Parallel()
	card, _ := initTestCard(t, testutil.FlavorSD2Block)

	cid, err := card.ReadCID()
	require.NoError(t, err)

	assert.Equal(t, byte(0x03), cid.ManufacturerID())
	assert.Equal(t, "SD", cid.OEMID())
	assert.Equal(t, "VCARD", cid.ProductName())
	major, minor := cid.ProductRevision()
	assert.Equal(t, byte(1), major)
	assert.Equal(t, byte(0), minor)
	assert.Equal(t, uint32(0x12345678), cid.SerialNumber())
}

func TestReadOCR(t *testing.T) {
	t.Parallel()
	card, _ := initTestCard(t, testutil.FlavorSD2Block)

	ocr, err := card.ReadOCR()
	require.NoError(t, err)

	// CCS set on high-capacity cards
	assert.NotZero(t, ocr[0]&0x40)
}

func TestRegistersBeforeInit(t *testing.T) {
	t.Parallel()
	card, _ := newTestCard(t, testutil.FlavorSD2Block)

	_, err := card.ReadCSD()
	assert.ErrorIs(t, err, sdspi.ErrNotReady)
	_, err = card.ReadCID()
	assert.ErrorIs(t, err, sdspi.ErrNotReady)
	_, err = card.ReadOCR()
	assert.ErrorIs(t, err, sdspi.ErrNotReady)
}

func TestSectorSizeFixed(t *testing.T) {
	t.Parallel()
	card, _ := newTestCard(t, testutil.FlavorSD2Block)

	assert.Equal(t, sdspi.SectorSize, card.SectorSize())
}
