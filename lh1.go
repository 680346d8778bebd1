package lzh

import (
	"io"

	"github.com/woozymasta/lzh/bitio"
	"github.com/woozymasta/lzh/huffman"
)

// lh1CodeSymbols covers the literals and every match length of -lh1-.
const lh1CodeSymbols = 314

// lh1Offsets codes the high 6 bits of -lh1- offsets: one 3-bit code, three of 4 bits,
// then 8 of 5, 12 of 6, 24 of 7 and 16 of 8 bits.
var lh1Offsets = mustTable(huffman.FixedLengths(64, 3, 0x01, 0x04, 0x0C, 0x18, 0x30))

// LH1Encoder writes -lh1- streams: adaptive Huffman codes and statically coded offsets.
type LH1Encoder struct {
	stream
	w     *bitio.Writer
	codes *huffman.Tree
}

// NewLH1Encoder returns an -lh1- encoder writing to w.
func NewLH1Encoder(w io.Writer, opts *Options) *LH1Encoder {
	return &LH1Encoder{
		stream: newStream(MethodLH1, opts),
		w:      bitio.NewWriter(w),
		codes:  huffman.NewTree(lh1CodeSymbols, lh1CodeSymbols),
	}
}

// WriteCode writes a literal or match code.
func (e *LH1Encoder) WriteCode(code int) error {
	if err := e.acceptCode(code); err != nil {
		return err
	}

	before := e.codes.Rebuilds()
	if err := e.codes.Encode(e.w, code); err != nil {
		return err
	}
	e.traceRebuild("code", e.codes, before)
	e.advance(code)

	return nil
}

// WriteOffset writes the offset of the pending match.
func (e *LH1Encoder) WriteOffset(offset int) error {
	if err := e.acceptOffset(offset); err != nil {
		return err
	}

	if err := lh1Offsets.Encode(e.w, offset>>offsetLowBits); err != nil {
		return err
	}
	if err := e.w.WriteBits(offsetLowBits, uint32(offset)); err != nil { // #nosec G115 -- offset < 4096
		return err
	}
	e.matched()

	return nil
}

// Flush writes all complete bytes. The partial byte stays pending.
func (e *LH1Encoder) Flush() error {
	if err := e.expectCode("flush"); err != nil {
		return err
	}

	return e.w.Flush()
}

// Close pads the last byte and writes everything.
func (e *LH1Encoder) Close() error {
	if err := e.shut(); err != nil {
		return err
	}

	e.log.WithField("position", e.position).Debug("encoder closed")

	return e.w.Close()
}

// LH1Decoder reads -lh1- streams.
type LH1Decoder struct {
	stream
	r     *bitio.Reader
	codes *huffman.Tree
	saved *checkpoint
}

// NewLH1Decoder returns an -lh1- decoder reading from r.
func NewLH1Decoder(r io.Reader, opts *Options) *LH1Decoder {
	return &LH1Decoder{
		stream: newStream(MethodLH1, opts),
		r:      bitio.NewReader(r),
		codes:  huffman.NewTree(lh1CodeSymbols, lh1CodeSymbols),
	}
}

// ReadCode reads a literal or match code.
func (d *LH1Decoder) ReadCode() (int, error) {
	if err := d.expectCode("read code"); err != nil {
		return 0, err
	}

	before := d.codes.Rebuilds()
	code, err := d.codes.Decode(d.r)
	if err != nil {
		return 0, err
	}
	d.traceRebuild("code", d.codes, before)
	d.advance(code)

	return code, nil
}

// ReadOffset reads the offset of the match returned by the last ReadCode.
func (d *LH1Decoder) ReadOffset() (int, error) {
	if err := d.expectOffset("read offset"); err != nil {
		return 0, err
	}

	high, err := lh1Offsets.Decode(d.r)
	if err != nil {
		return 0, err
	}
	low, err := d.r.ReadBits(offsetLowBits)
	if err != nil {
		return 0, err
	}
	d.matched()

	return high<<offsetLowBits | int(low), nil
}

// Mark saves the decoder state together with the bit position.
func (d *LH1Decoder) Mark(readLimit int) error {
	if err := d.r.Mark(readLimit); err != nil {
		return err
	}

	d.saved = d.save(d.codes)

	return nil
}

// Reset returns to the last mark.
func (d *LH1Decoder) Reset() error {
	cp, err := d.takeMark(&d.saved)
	if err != nil {
		return err
	}
	if err := d.r.Reset(); err != nil {
		return err
	}

	d.restore(cp, d.codes)

	return nil
}

// Close releases the decoder. The source is left open.
func (d *LH1Decoder) Close() error {
	if err := d.shutDecoder(); err != nil {
		return err
	}
	d.saved = nil

	return d.r.Close()
}
