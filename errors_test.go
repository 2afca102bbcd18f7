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
	"errors"
	"strings"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()
	tests := getIsRetryableTestCases()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IsRetryable(tt.err)
			if got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func getIsRetryableTestCases() []struct {
	err  error
	name string
	want bool
} {
	return []struct {
		err  error
		name string
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "transport timeout retryable",
			err:  ErrTransportTimeout,
			want: true,
		},
		{
			name: "transport read retryable",
			err:  ErrTransportRead,
			want: true,
		},
		{
			name: "transport write retryable",
			err:  ErrTransportWrite,
			want: true,
		},
		{
			name: "bus busy retryable",
			err:  ErrBusBusy,
			want: true,
		},
		{
			name: "response timeout retryable",
			err:  ErrResponseTimeout,
			want: true,
		},
		{
			name: "token timeout retryable",
			err:  ErrTokenTimeout,
			want: true,
		},
		{
			name: "rejected data packet retryable",
			err:  &DataResponseError{Code: dataCRCError},
			want: true,
		},
		{
			name: "no card not retryable",
			err:  ErrNoCard,
			want: false,
		},
		{
			name: "unsupported card not retryable",
			err:  ErrUnsupportedCard,
			want: false,
		},
		{
			name: "invalid parameter not retryable",
			err:  ErrInvalidParam,
			want: false,
		},
		{
			name: "write protected not retryable",
			err:  ErrWriteProtected,
			want: false,
		},
		{
			name: "transient transport error retryable",
			err:  NewTransportError("read", "mock", ErrTransportRead, ErrorTypeTransient),
			want: true,
		},
		{
			name: "permanent transport error not retryable",
			err:  NewTransportError("read", "mock", ErrNoCard, ErrorTypePermanent),
			want: false,
		},
		{
			name: "timeout error retryable",
			err:  NewTimeoutError("waitReady", "mock"),
			want: true,
		},
		{
			name: "wrapped retryable error",
			err:  errors.New("outer: " + ErrTransportTimeout.Error()),
			want: false,
		},
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{
			name: "nil error permanent",
			err:  nil,
			want: ErrorTypePermanent,
		},
		{
			name: "response timeout",
			err:  ErrResponseTimeout,
			want: ErrorTypeTimeout,
		},
		{
			name: "token timeout",
			err:  ErrTokenTimeout,
			want: ErrorTypeTimeout,
		},
		{
			name: "bus busy",
			err:  ErrBusBusy,
			want: ErrorTypeTimeout,
		},
		{
			name: "rejected packet transient",
			err:  &DataResponseError{Code: dataWriteError},
			want: ErrorTypeTransient,
		},
		{
			name: "no card permanent",
			err:  ErrNoCard,
			want: ErrorTypePermanent,
		},
		{
			name: "transport error carries its type",
			err:  NewTransportError("write", "spi", ErrTransportWrite, ErrorTypeTransient),
			want: ErrorTypeTransient,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetErrorType(tt.err); got != tt.want {
				t.Errorf("GetErrorType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransportErrorMessage(t *testing.T) {
	t.Parallel()
	err := NewTransportError("sendCommand", "serial", ErrResponseTimeout, ErrorTypeTimeout)

	msg := err.Error()
	if !strings.Contains(msg, "sendCommand") || !strings.Contains(msg, "serial") {
		t.Errorf("message missing context: %q", msg)
	}
	if !errors.Is(err, ErrResponseTimeout) {
		t.Error("TransportError should unwrap to its cause")
	}
}

func TestDataResponseErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code byte
		want string
	}{
		{name: "crc error", code: dataCRCError, want: "CRC"},
		{name: "write error", code: dataWriteError, want: "write error"},
		{name: "unknown code", code: 0x1F, want: "0x1f"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := &DataResponseError{Code: tt.code}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error() = %q, want substring %q", err.Error(), tt.want)
			}
			if !errors.Is(err, ErrDataRejected) {
				t.Error("DataResponseError should unwrap to ErrDataRejected")
			}
		})
	}
}

func TestCommandErrorMessage(t *testing.T) {
	t.Parallel()
	err := &CommandError{Cmd: 17, R1: 0x04}

	if !strings.Contains(err.Error(), "CMD17") {
		t.Errorf("message missing command index: %q", err.Error())
	}
}
