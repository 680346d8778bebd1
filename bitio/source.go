package bitio

import (
	"bufio"
	"io"
)

// Marker is implemented by byte sources that can return to a remembered position,
// valid for at most readLimit bytes read after Mark.
type Marker interface {
	Mark(readLimit int)
	Reset() error
}

// byteSource reads single bytes and counts them. Seekable and Marker sources are read
// unbuffered so that their own position stays in step with the count.
type byteSource struct {
	base  io.ByteReader // The byte reader to read from.
	raw   io.Reader     // Original source, used for capability checks.
	count int64         // Bytes consumed from raw.
}

// singleByteReader adapts an io.Reader without buffering ahead of the caller.
type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func newByteSource(r io.Reader) *byteSource {
	s := &byteSource{raw: r}
	switch v := r.(type) {
	case io.ByteReader:
		s.base = v
	case Marker, io.Seeker:
		s.base = &singleByteReader{r: r}
	default:
		s.base = bufio.NewReader(r)
	}

	return s
}

// ReadByte reads a byte and increments the count.
func (s *byteSource) ReadByte() (byte, error) {
	b, err := s.base.ReadByte()
	if err != nil {
		return 0, err
	}

	s.count++

	return b, nil
}

// buffered is a best-effort count of bytes readable without blocking.
func (s *byteSource) buffered() int {
	switch v := s.base.(type) {
	case interface{ Len() int }:
		return v.Len()
	case interface{ Buffered() int }:
		return v.Buffered()
	}

	return 0
}

// ReadByte reads exactly one byte.
func (r *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
		return 0, err
	}

	return r.buf[0], nil
}
