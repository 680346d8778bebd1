package lzh

import (
	"io"

	"github.com/woozymasta/lzh/bitio"
)

const (
	lz5GroupSize  = 8    // Tokens sharing one flag byte.
	lz5BufferSize = 1024 // Bytes batched before a write.
)

// LZ5Encoder writes -lz5- streams: a flag byte (bit set = literal, LSB first) ahead of
// each group of 8 tokens; literals take one byte, matches two.
type LZ5Encoder struct {
	stream
	w    io.Writer
	buf  []byte
	flag int // Index of the flag byte of the group being filled.
	slot uint
}

// NewLZ5Encoder returns an -lz5- encoder writing to w.
func NewLZ5Encoder(w io.Writer, opts *Options) *LZ5Encoder {
	return &LZ5Encoder{
		stream: newStream(MethodLZ5, opts),
		w:      w,
		buf:    make([]byte, 0, lz5BufferSize+3),
	}
}

// Buffered reports how many bytes wait to be written.
func (e *LZ5Encoder) Buffered() int {
	return len(e.buf)
}

// WriteCode writes a literal; match codes are held until WriteOffset.
func (e *LZ5Encoder) WriteCode(code int) error {
	if err := e.acceptCode(code); err != nil {
		return err
	}

	if code < LiteralCodes {
		if err := e.put(true, byte(code)); err != nil { // #nosec G115 -- literal
			return err
		}
	}
	e.advance(code)

	return nil
}

// WriteOffset writes the pending match.
func (e *LZ5Encoder) WriteOffset(offset int) error {
	if err := e.acceptOffset(offset); err != nil {
		return err
	}

	stored := e.desc.ringOffset(e.ring(), offset)
	// #nosec G115 -- 12-bit address, 4-bit length
	lo, hi := byte(stored), byte(stored>>4)&0xF0|byte(e.length-e.desc.Threshold)
	if err := e.put(false, lo, hi); err != nil {
		return err
	}
	e.matched()

	return nil
}

// put appends one token to the current group.
func (e *LZ5Encoder) put(literal bool, payload ...byte) error {
	if e.slot == 0 {
		e.flag = len(e.buf)
		e.buf = append(e.buf, 0)
	}
	if literal {
		e.buf[e.flag] |= 1 << e.slot
	}
	e.buf = append(e.buf, payload...)

	e.slot++
	if e.slot < lz5GroupSize {
		return nil
	}

	e.slot = 0
	if len(e.buf) >= lz5BufferSize {
		return e.emit(len(e.buf))
	}

	return nil
}

// emit writes the first n buffered bytes and keeps the rest at the buffer start.
func (e *LZ5Encoder) emit(n int) error {
	if n == 0 {
		return nil
	}

	if _, err := e.w.Write(e.buf[:n]); err != nil {
		return err
	}

	rest := copy(e.buf, e.buf[n:])
	e.buf = e.buf[:rest]
	e.flag -= n

	return nil
}

// Flush writes every complete group. A started group stays buffered at the start of
// the buffer so later tokens keep filling its flag byte.
func (e *LZ5Encoder) Flush() error {
	if err := e.expectCode("flush"); err != nil {
		return err
	}

	n := len(e.buf)
	if e.slot > 0 {
		n = e.flag
	}
	if err := e.emit(n); err != nil {
		return err
	}

	e.log.WithField("pending", len(e.buf)).Debug("encoder flushed")

	return flushSink(e.w)
}

// Close writes everything, including a partial group.
func (e *LZ5Encoder) Close() error {
	if err := e.shut(); err != nil {
		return err
	}

	e.log.WithField("position", e.position).Debug("encoder closed")
	if err := e.emit(len(e.buf)); err != nil {
		return err
	}
	e.slot = 0

	return flushSink(e.w)
}

// flushSink flushes w when it buffers on its own.
func flushSink(w io.Writer) error {
	if f, ok := w.(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}

// LZ5Decoder reads -lz5- streams.
type LZ5Decoder struct {
	stream
	r      *bitio.Reader
	flags  int // Remaining flag bits of the current group, next bit lowest.
	left   int // Tokens left in the current group.
	stored int // Ring address read with the last match code.
	saved  *checkpoint
}

// NewLZ5Decoder returns an -lz5- decoder reading from r.
func NewLZ5Decoder(r io.Reader, opts *Options) *LZ5Decoder {
	return &LZ5Decoder{
		stream: newStream(MethodLZ5, opts),
		r:      bitio.NewReader(r),
	}
}

// ReadCode reads a token. For matches both bytes are read here and the ring address
// is returned by ReadOffset.
func (d *LZ5Decoder) ReadCode() (int, error) {
	if err := d.expectCode("read code"); err != nil {
		return 0, err
	}

	if d.left == 0 {
		f, err := d.r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		d.flags, d.left = int(f), lz5GroupSize
	}

	var code int
	if d.flags&1 != 0 {
		b, err := d.r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		code = int(b)
	} else {
		v, err := d.r.ReadBits(16)
		if err != nil {
			return 0, err
		}
		lo, hi := int(v>>8), int(v&0xFF)
		d.stored = lo | (hi&0xF0)<<4
		code = LiteralCodes + hi&0x0F
	}
	d.flags >>= 1
	d.left--
	d.advance(code)

	return code, nil
}

// ReadOffset returns the offset of the match returned by the last ReadCode.
func (d *LZ5Decoder) ReadOffset() (int, error) {
	if err := d.expectOffset("read offset"); err != nil {
		return 0, err
	}

	offset := d.desc.ringOffset(d.ring(), d.stored)
	d.matched()

	return offset, nil
}

// Mark saves the decoder state together with the byte position.
func (d *LZ5Decoder) Mark(readLimit int) error {
	if err := d.r.Mark(readLimit); err != nil {
		return err
	}

	d.saved = d.save()
	d.saved.extra = [3]int{d.flags, d.left, d.stored}

	return nil
}

// Reset returns to the last mark.
func (d *LZ5Decoder) Reset() error {
	cp, err := d.takeMark(&d.saved)
	if err != nil {
		return err
	}
	if err := d.r.Reset(); err != nil {
		return err
	}

	d.restore(cp)
	d.flags, d.left, d.stored = cp.extra[0], cp.extra[1], cp.extra[2]

	return nil
}

// Close releases the decoder. The source is left open.
func (d *LZ5Decoder) Close() error {
	if err := d.shutDecoder(); err != nil {
		return err
	}
	d.saved = nil

	return d.r.Close()
}
