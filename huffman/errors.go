// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Maxim Levchenko (WoozyMasta)
// Source: github.com/woozymasta/lzh

package huffman

import "github.com/pkg/errors"

// Package errors.
var (
	ErrInvalidLengths = errors.New("huffman: code lengths do not form a prefix code")
	ErrInvalidCode    = errors.New("huffman: bit pattern is not assigned to any symbol")
	ErrSymbolRange    = errors.New("huffman: symbol out of range")
	ErrUnusedSymbol   = errors.New("huffman: symbol has no leaf")
	ErrLeafExists     = errors.New("huffman: symbol already has a leaf")
)

// BitReader is the bit source the decoders pull from.
type BitReader interface {
	ReadBit() (bool, error)
	PeekBits(k uint) (uint32, error)
	SkipBits(k uint) error
}

// BitWriter is the bit sink the encoders push to.
type BitWriter interface {
	WriteBits(count uint, value uint32) error
}
