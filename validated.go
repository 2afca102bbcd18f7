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
	"bytes"
	"time"
)

// ValidationConfig holds configuration for write verification
type ValidationConfig struct {
	// RetryDelay specifies delay between retry attempts
	RetryDelay time.Duration

	// WriteRetries specifies max number of write retries on verification failure
	WriteRetries int

	// EnableWriteVerification enables automatic read-back after writes
	EnableWriteVerification bool
}

// DefaultValidationConfig returns default validation configuration
func DefaultValidationConfig() *ValidationConfig {
	return &ValidationConfig{
		EnableWriteVerification: true,
		WriteRetries:            3,
		RetryDelay:              50 * time.Millisecond,
	}
}

// ValidationMetrics tracks verification statistics
type ValidationMetrics struct {
	LastValidation      time.Time
	TotalWrites         uint64
	FailedVerifications uint64
}

// ValidatedCard wraps a Card with read-back verification of sector
// writes. Media that silently drops writes (worn cards, marginal bus
// wiring) surfaces as ErrVerificationFailed instead of corrupt data.
type ValidatedCard struct {
	*Card
	config  *ValidationConfig
	metrics ValidationMetrics
}

// NewValidatedCard creates a card wrapper with verification features
func NewValidatedCard(card *Card, config *ValidationConfig) *ValidatedCard {
	if config == nil {
		config = DefaultValidationConfig()
	}
	return &ValidatedCard{
		Card:   card,
		config: config,
	}
}

// WriteSectors writes count sectors and, when verification is enabled,
// reads them back and retries the write on a mismatch.
func (v *ValidatedCard) WriteSectors(sector uint32, count int, src []byte) error {
	v.metrics.TotalWrites++

	for attempt := 0; ; attempt++ {
		if err := v.Card.WriteSectors(sector, count, src); err != nil {
			return err
		}
		if !v.config.EnableWriteVerification {
			return nil
		}

		readBack := make([]byte, count*SectorSize)
		if err := v.Card.ReadSectors(sector, count, readBack); err != nil {
			return err
		}
		v.metrics.LastValidation = time.Now()
		if bytes.Equal(readBack, src[:count*SectorSize]) {
			return nil
		}

		v.metrics.FailedVerifications++
		if attempt >= v.config.WriteRetries {
			return ErrVerificationFailed
		}
		v.delay(v.config.RetryDelay)
	}
}

// Metrics returns a copy of the verification statistics.
func (v *ValidatedCard) Metrics() ValidationMetrics {
	return v.metrics
}
