package lzh

import (
	"io"

	"github.com/pkg/errors"
)

// Reader expands a token stream into bytes through a sliding window.
//
// The window starts filled with Filler (plus the LArc preset for -lz5-), so matches may
// reach before the first output byte. Read returns io.EOF after exactly outLen bytes and
// io.ErrUnexpectedEOF when the tokens end before that.
type Reader struct {
	dec     Decoder
	sum     Checksum
	ring    []byte
	mask    int
	pos     int   // Ring index of the next output byte.
	from    int   // Ring index of the next byte of the current match.
	pending int   // Bytes of the current match still to copy.
	remain  int64 // Output bytes still to produce.
	err     error
}

// NewReader returns a Reader producing outLen bytes from dec. When opts carries a
// Checksum it is reset and fed every produced byte.
func NewReader(dec Decoder, outLen int64, opts *Options) *Reader {
	opts = normalize(opts)

	r := &Reader{dec: dec, sum: opts.Checksum, remain: outLen}
	switch {
	case dec == nil:
		r.err = ErrNilDecoder
	case outLen < 0:
		r.err = ErrNegativeLen
	default:
		d := dec.Descriptor()
		r.ring = newWindow(d.DictionarySize, dec.Method() == MethodLZ5)
		r.mask = d.DictionarySize - 1
	}

	if r.sum != nil {
		r.sum.Reset()
	}

	return r
}

// Remaining returns the number of bytes still to be produced.
func (r *Reader) Remaining() int64 {
	return r.remain
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && r.remain > 0 && r.err == nil {
		if r.pending == 0 {
			lit, ok, err := r.next()
			if err != nil {
				r.err = err

				break
			}
			if ok {
				p[n] = r.put(lit)
				n++
			}

			continue
		}

		p[n] = r.put(r.ring[r.from])
		r.from = (r.from + 1) & r.mask
		r.pending--
		n++
	}

	if r.sum != nil {
		r.sum.UpdateBytes(p[:n])
	}

	switch {
	case n > 0:
		return n, nil
	case r.err != nil:
		return 0, r.err
	case r.remain == 0:
		return 0, io.EOF
	default:
		return 0, nil
	}
}

// next reads one token. A literal is returned directly; a match arms the copy state.
func (r *Reader) next() (byte, bool, error) {
	t, err := ReadToken(r.dec)
	if err != nil {
		if errors.Is(err, ErrEndOfData) {
			return 0, false, io.ErrUnexpectedEOF
		}

		return 0, false, err
	}

	if !t.IsMatch() {
		return t.Literal, true, nil
	}

	r.from = (r.pos - t.Offset - 1) & r.mask
	r.pending = t.Length

	return 0, false, nil
}

// put stores b in the window and counts it as produced.
func (r *Reader) put(b byte) byte {
	r.ring[r.pos] = b
	r.pos = (r.pos + 1) & r.mask
	r.remain--
	if r.remain == 0 {
		r.pending = 0
	}

	return b
}

// newWindow returns the initial window contents.
func newWindow(size int, larc bool) []byte {
	ring := make([]byte, size)
	for i := range ring {
		ring[i] = Filler
	}
	if !larc {
		return ring
	}

	// 13 copies of every byte value, an ascending and a descending run of all values,
	// 128 zero bytes; the spaces around them come from the fill above.
	p := 18
	for v := 0; v < 256; v++ {
		for j := 0; j < 13; j++ {
			ring[p] = byte(v)
			p++
		}
	}
	for v := 0; v < 256; v++ {
		ring[p+v] = byte(v)
		ring[p+256+v] = byte(255 - v)
	}
	p += 512
	for j := 0; j < 128; j++ {
		ring[p+j] = 0
	}

	return ring
}
