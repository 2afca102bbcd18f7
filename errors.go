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
	"fmt"
)

// Sentinel errors returned by driver operations.
var (
	// ErrNoCard indicates no card answered the software reset.
	ErrNoCard = errors.New("no card detected")
	// ErrUnsupportedCard indicates negotiation could not resolve the card
	// to a supported generation.
	ErrUnsupportedCard = errors.New("unsupported card")
	// ErrNotReady indicates the session has not completed negotiation.
	ErrNotReady = errors.New("card not ready")
	// ErrWriteProtected indicates a write to a protected card.
	ErrWriteProtected = errors.New("card is write protected")
	// ErrInvalidParam indicates a rejected call parameter; the bus was
	// not touched.
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrBusBusy indicates the card held the data line low past the
	// bus-ready poll budget.
	ErrBusBusy = errors.New("busy wait exhausted")
	// ErrResponseTimeout indicates no valid R1 arrived within the
	// response poll budget. It is distinct from any observed status
	// byte, so a timed-out poll can never be mistaken for success.
	ErrResponseTimeout = errors.New("no response within poll budget")
	// ErrTokenTimeout indicates the data-start token never arrived.
	ErrTokenTimeout = errors.New("data token did not arrive")
	// ErrDataRejected indicates the card rejected a data packet.
	ErrDataRejected = errors.New("data packet rejected")

	// ErrTransportRead indicates a failed bus read.
	ErrTransportRead = errors.New("transport read failed")
	// ErrTransportWrite indicates a failed bus write.
	ErrTransportWrite = errors.New("transport write failed")
	// ErrTransportTimeout indicates a transport-level timeout.
	ErrTransportTimeout = errors.New("transport timeout")

	// ErrVerificationFailed indicates a read-back verify mismatch.
	ErrVerificationFailed = errors.New("write verification failed")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypeTransient marks errors that may clear on retry.
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent marks errors that will not clear on retry.
	ErrorTypePermanent
	// ErrorTypeTimeout marks poll or transport deadline expiry.
	ErrorTypeTimeout
)

// TransportError wraps a bus-level failure with operation context
type TransportError struct {
	Err       error
	Op        string
	Transport string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sdspi %s (%s): %v", e.Op, e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError with retryability derived
// from the error type
func NewTransportError(op, transport string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Transport: transport,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a TransportError for a timed-out operation
func NewTimeoutError(op, transport string) *TransportError {
	return NewTransportError(op, transport, ErrTransportTimeout, ErrorTypeTimeout)
}

// CommandError reports an unexpected R1 status for a command. The R1
// byte is the last byte observed on the bus; commands that timed out
// waiting for a response return ErrResponseTimeout instead.
type CommandError struct {
	Cmd byte
	R1  byte
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("CMD%d returned R1 %#02x", e.Cmd, e.R1)
}

// DataResponseError reports a rejected data packet. Code holds the low
// five bits of the data response byte.
type DataResponseError struct {
	Code byte
}

func (e *DataResponseError) Error() string {
	switch e.Code {
	case dataCRCError:
		return "data packet rejected: CRC error"
	case dataWriteError:
		return "data packet rejected: write error"
	default:
		return fmt.Sprintf("data packet rejected: response %#02x", e.Code)
	}
}

func (*DataResponseError) Unwrap() error {
	return ErrDataRejected
}

// IsRetryable returns true if the error may clear on retry
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrBusBusy),
		errors.Is(err, ErrResponseTimeout),
		errors.Is(err, ErrTokenTimeout),
		errors.Is(err, ErrDataRejected):
		return true
	}
	return false
}

// GetErrorType classifies an error for retry decisions
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrBusBusy),
		errors.Is(err, ErrResponseTimeout),
		errors.Is(err, ErrTokenTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrDataRejected):
		return ErrorTypeTransient
	}
	return ErrorTypePermanent
}
