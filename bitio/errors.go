// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Maxim Levchenko (WoozyMasta)
// Source: github.com/woozymasta/lzh

package bitio

import (
	"fmt"

	"github.com/pkg/errors"
)

// Package errors. Protocol errors wrap ErrProtocolViolation so callers can test them with errors.Is.
var (
	ErrEndOfData         = errors.New("bitio: end of data")
	ErrInsufficientBits  = errors.New("bitio: insufficient bits for lookahead")
	ErrProtocolViolation = errors.New("bitio: protocol violation")
	ErrBitCount          = errors.New("bitio: bit count must be in 1..32")
	ErrMarkUnsupported   = errors.New("bitio: source does not support mark/reset")

	ErrNoMark          = errors.WithMessage(ErrProtocolViolation, "reset without mark")
	ErrMarkInvalidated = errors.WithMessage(ErrProtocolViolation, "read limit exceeded since mark")
	ErrClosed          = errors.WithMessage(ErrProtocolViolation, "use after close")
)

// InsufficientBitsError is returned by PeekBits when fewer bits than requested exist.
// No stream position was consumed.
type InsufficientBitsError struct {
	Requested int // Bits asked for.
	Available int // Bits that could be buffered before the source ran dry.
}

// Error implements error.
func (e *InsufficientBitsError) Error() string {
	return fmt.Sprintf("%v: requested=%d available=%d", ErrInsufficientBits, e.Requested, e.Available)
}

// Is reports whether target is ErrInsufficientBits.
func (e *InsufficientBitsError) Is(target error) bool {
	return target == ErrInsufficientBits
}
