package lzh

import (
	"bytes"

	"github.com/pkg/errors"
)

// CompressTokens encodes tokens, already chosen by a match finder, as a method stream.
// Options nil means DefaultOptions.
func CompressTokens(m Method, tokens []Token, opts *Options) ([]byte, error) {
	var out bytes.Buffer

	enc, err := NewEncoder(m, &out, opts)
	if err != nil {
		return nil, err
	}
	if err := EncodeTokens(enc, tokens); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// EncodeTokens writes tokens to e without closing it.
func EncodeTokens(e Encoder, tokens []Token) error {
	for i, t := range tokens {
		if err := WriteToken(e, t); err != nil {
			return errors.WithMessagef(err, "token %d (%s)", i, t)
		}
	}

	return nil
}
