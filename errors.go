// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Maxim Levchenko (WoozyMasta)
// Source: github.com/woozymasta/lzh

package lzh

import (
	"github.com/pkg/errors"

	"github.com/woozymasta/lzh/bitio"
	"github.com/woozymasta/lzh/huffman"
)

// Package errors. Bit stream and Huffman failures are re-exported so callers only need
// this package; test them with errors.Is.
var (
	ErrEndOfData         = bitio.ErrEndOfData
	ErrInsufficientBits  = bitio.ErrInsufficientBits
	ErrProtocolViolation = bitio.ErrProtocolViolation
	ErrInvalidLengths    = huffman.ErrInvalidLengths
	ErrInvalidCode       = huffman.ErrInvalidCode
	ErrMarkUnsupported   = bitio.ErrMarkUnsupported
	ErrNoMark            = bitio.ErrNoMark
	ErrMarkInvalidated   = bitio.ErrMarkInvalidated

	ErrUnknownMethod = errors.New("unknown compression method")
	ErrInvalidToken  = errors.New("token outside format limits")
	ErrNilReader     = errors.New("reader is nil")
	ErrNilWriter     = errors.New("writer is nil")
	ErrNilDecoder    = errors.New("decoder is nil")
	ErrNegativeLen   = errors.New("output length must be non-negative")
)
