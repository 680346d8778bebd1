package bitio

import (
	"io"

	"github.com/pkg/errors"
)

// MaxBits is the largest bit group a single read or write can carry.
const MaxBits = 32

// Reader reads MSB-first bit groups from a byte source.
//
// A request for k bits either returns exactly k bits or fails without consuming any:
// bytes pulled from the source while trying stay in the accumulator for the next call.
type Reader struct {
	src    *byteSource
	acc    uint64 // Low n bits are valid, oldest bit highest.
	n      uint
	mark   *checkpoint
	closed bool
}

// checkpoint captures the accumulator together with the source position.
type checkpoint struct {
	acc   uint64
	n     uint
	pos   int64 // Source byte count at mark time.
	seek  int64 // Seek offset at mark time (io.Seeker sources only).
	limit int
}

// NewReader returns a Reader over r.
// Mark/Reset are available when r implements Marker or io.Seeker.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: newByteSource(r)}
}

// fill buffers at least k bits. On io.EOF the bytes already read are kept.
func (r *Reader) fill(k uint) error {
	for r.n < k {
		b, err := r.src.ReadByte()
		if err != nil {
			return err
		}

		r.acc = r.acc<<8 | uint64(b)
		r.n += 8
	}

	return nil
}

func (r *Reader) check(k uint) error {
	if r.closed {
		return ErrClosed
	}
	if k == 0 || k > MaxBits {
		return ErrBitCount
	}

	return nil
}

func (r *Reader) top(k uint) uint32 {
	return uint32((r.acc >> (r.n - k)) & (1<<k - 1)) // #nosec G115 -- k <= 32
}

// ReadBits consumes and returns the next k bits (1..32).
// It fails with ErrEndOfData if the source ends first; no bits are consumed then.
func (r *Reader) ReadBits(k uint) (uint32, error) {
	if err := r.check(k); err != nil {
		return 0, err
	}
	if err := r.fill(k); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, ErrEndOfData
		}

		return 0, err
	}

	v := r.top(k)
	r.n -= k

	return v, nil
}

// ReadBit consumes one bit.
func (r *Reader) ReadBit() (bool, error) {
	v, err := r.ReadBits(1)

	return v == 1, err
}

// PeekBits returns the next k bits without consuming them.
// When fewer than k bits exist it returns an *InsufficientBitsError.
func (r *Reader) PeekBits(k uint) (uint32, error) {
	if err := r.check(k); err != nil {
		return 0, err
	}
	if err := r.fill(k); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, &InsufficientBitsError{Requested: int(k), Available: int(r.n)}
		}

		return 0, err
	}

	return r.top(k), nil
}

// SkipBits consumes k bits (1..32).
func (r *Reader) SkipBits(k uint) error {
	_, err := r.ReadBits(k)

	return err
}

// AvailableBits is a lower bound of bits readable without blocking.
// Zero does not mean the source is exhausted.
func (r *Reader) AvailableBits() int {
	if r.closed {
		return 0
	}

	return int(r.n) + 8*r.src.buffered()
}

// Mark remembers the current position. Reset is valid while at most readLimit
// bytes have been pulled from the source since the mark.
func (r *Reader) Mark(readLimit int) error {
	if r.closed {
		return ErrClosed
	}

	cp := &checkpoint{acc: r.acc, n: r.n, pos: r.src.count, limit: readLimit}
	switch v := r.src.raw.(type) {
	case Marker:
		v.Mark(readLimit)
	case io.Seeker:
		off, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		cp.seek = off
	default:
		return ErrMarkUnsupported
	}

	r.mark = cp

	return nil
}

// Reset returns to the last mark. The mark is consumed: a second Reset fails with ErrNoMark.
func (r *Reader) Reset() error {
	if r.closed {
		return ErrClosed
	}

	cp := r.mark
	if cp == nil {
		return ErrNoMark
	}
	r.mark = nil

	if r.src.count-cp.pos > int64(cp.limit) {
		return ErrMarkInvalidated
	}

	switch v := r.src.raw.(type) {
	case Marker:
		if err := v.Reset(); err != nil {
			return err
		}
	case io.Seeker:
		if _, err := v.Seek(cp.seek, io.SeekStart); err != nil {
			return err
		}
	}

	r.acc, r.n = cp.acc, cp.n
	r.src.count = cp.pos

	return nil
}

// Close releases the reader. The underlying source is left open.
func (r *Reader) Close() error {
	if r.closed {
		return ErrClosed
	}

	r.closed = true
	r.mark = nil
	r.acc, r.n = 0, 0

	return nil
}
