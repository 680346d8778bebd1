package lzh

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Decompress expands src, a method stream, into a new buffer of length outLen.
// Options nil means DefaultOptions.
func Decompress(m Method, src []byte, outLen int, opts *Options) ([]byte, error) {
	return DecompressFromReader(m, bytes.NewReader(src), outLen, opts)
}

// DecompressFromReader expands outLen bytes of a method stream read from r.
// Readers without ReadByte are buffered, so r may be read past the end of the stream.
func DecompressFromReader(m Method, r io.Reader, outLen int, opts *Options) ([]byte, error) {
	if outLen < 0 {
		return nil, ErrNegativeLen
	}

	dec, err := NewDecoder(m, r, opts)
	if err != nil {
		return nil, err
	}
	defer dec.Close() //nolint:errcheck // only fails on double close

	out := make([]byte, outLen)
	if _, err := io.ReadFull(NewReader(dec, int64(outLen), opts), out); err != nil {
		return nil, errors.Wrapf(err, "%s: expand %d bytes", m, outLen)
	}

	return out, nil
}
