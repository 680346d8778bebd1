package lzh

import (
	"io"

	"github.com/woozymasta/lzh/bitio"
)

// LZSEncoder writes -lzs- streams. Each token starts with a flag bit: 1 and 8 literal
// bits, or 0, an 11-bit ring address and a 4-bit length.
type LZSEncoder struct {
	stream
	w *bitio.Writer
}

// NewLZSEncoder returns an -lzs- encoder writing to w.
func NewLZSEncoder(w io.Writer, opts *Options) *LZSEncoder {
	return &LZSEncoder{
		stream: newStream(MethodLZS, opts),
		w:      bitio.NewWriter(w),
	}
}

// WriteCode writes a literal; match codes are held until WriteOffset.
func (e *LZSEncoder) WriteCode(code int) error {
	if err := e.acceptCode(code); err != nil {
		return err
	}

	if code < LiteralCodes {
		if err := e.w.WriteBits(9, 1<<8|uint32(code)); err != nil { // #nosec G115 -- literal
			return err
		}
	}
	e.advance(code)

	return nil
}

// WriteOffset writes the pending match.
func (e *LZSEncoder) WriteOffset(offset int) error {
	if err := e.acceptOffset(offset); err != nil {
		return err
	}

	stored := e.desc.ringOffset(e.ring(), offset)
	if err := e.w.WriteBits(1+e.desc.offsetBits(), uint32(stored)); err != nil { // #nosec G115 -- 11 bits
		return err
	}
	if err := e.w.WriteBits(e.desc.lengthBits(), uint32(e.length-e.desc.Threshold)); err != nil { // #nosec G115 -- 4 bits
		return err
	}
	e.matched()

	return nil
}

// Flush writes all complete bytes. The partial byte stays pending.
func (e *LZSEncoder) Flush() error {
	if err := e.expectCode("flush"); err != nil {
		return err
	}

	return e.w.Flush()
}

// Close pads the last byte and writes everything.
func (e *LZSEncoder) Close() error {
	if err := e.shut(); err != nil {
		return err
	}

	e.log.WithField("position", e.position).Debug("encoder closed")

	return e.w.Close()
}

// LZSDecoder reads -lzs- streams.
type LZSDecoder struct {
	stream
	r      *bitio.Reader
	stored int // Ring address read with the last match code.
	saved  *checkpoint
}

// NewLZSDecoder returns an -lzs- decoder reading from r.
func NewLZSDecoder(r io.Reader, opts *Options) *LZSDecoder {
	return &LZSDecoder{
		stream: newStream(MethodLZS, opts),
		r:      bitio.NewReader(r),
	}
}

// ReadCode reads a token. For matches the ring address is read here, ahead of the
// length, and returned by ReadOffset.
func (d *LZSDecoder) ReadCode() (int, error) {
	if err := d.expectCode("read code"); err != nil {
		return 0, err
	}

	literal, err := d.r.ReadBit()
	if err != nil {
		return 0, err
	}

	var code int
	if literal {
		b, err := d.r.ReadBits(8)
		if err != nil {
			return 0, err
		}
		code = int(b)
	} else {
		stored, err := d.r.ReadBits(d.desc.offsetBits())
		if err != nil {
			return 0, err
		}
		length, err := d.r.ReadBits(d.desc.lengthBits())
		if err != nil {
			return 0, err
		}
		d.stored = int(stored)
		code = LiteralCodes + int(length)
	}
	d.advance(code)

	return code, nil
}

// ReadOffset returns the offset of the match returned by the last ReadCode.
func (d *LZSDecoder) ReadOffset() (int, error) {
	if err := d.expectOffset("read offset"); err != nil {
		return 0, err
	}

	offset := d.desc.ringOffset(d.ring(), d.stored)
	d.matched()

	return offset, nil
}

// Mark saves the decoder state together with the bit position.
func (d *LZSDecoder) Mark(readLimit int) error {
	if err := d.r.Mark(readLimit); err != nil {
		return err
	}

	d.saved = d.save()
	d.saved.extra[0] = d.stored

	return nil
}

// Reset returns to the last mark.
func (d *LZSDecoder) Reset() error {
	cp, err := d.takeMark(&d.saved)
	if err != nil {
		return err
	}
	if err := d.r.Reset(); err != nil {
		return err
	}

	d.restore(cp)
	d.stored = cp.extra[0]

	return nil
}

// Close releases the decoder. The source is left open.
func (d *LZSDecoder) Close() error {
	if err := d.shutDecoder(); err != nil {
		return err
	}
	d.saved = nil

	return d.r.Close()
}
