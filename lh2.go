package lzh

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/woozymasta/lzh/bitio"
	"github.com/woozymasta/lzh/huffman"
)

const (
	lh2CodeSymbols   = 286
	lh2Escape        = lh2CodeSymbols - 1 // Codes from here on carry 8 raw bits.
	lh2EscapeBits    = 8
	lh2OffsetSymbols = 8192 >> offsetLowBits
	lh2Bucket        = 1 << offsetLowBits
)

// lh2Window is the growable offset alphabet of -lh2-. A high-bits symbol gets a leaf
// once the output has grown past its 64-byte bucket.
type lh2Window struct {
	tree *huffman.Tree
	next int // Position at which the next bucket becomes reachable.
}

func newLH2Window() lh2Window {
	return lh2Window{
		tree: huffman.NewTree(lh2OffsetSymbols, 1),
		next: lh2Bucket,
	}
}

// grow adds the buckets reachable from the current position.
func (o *lh2Window) grow(s *stream) error {
	from := o.tree.Leaves()
	for s.position > int64(o.next) && o.next < s.desc.DictionarySize {
		if err := o.tree.AddLeaf(o.next >> offsetLowBits); err != nil {
			return err
		}
		o.next += lh2Bucket
	}

	if o.tree.Leaves() != from {
		s.log.WithFields(logrus.Fields{
			"position": s.position,
			"symbols":  o.tree.Leaves(),
		}).Debug("offset alphabet grown")
	}

	return nil
}

// LH2Encoder writes -lh2- streams: adaptive Huffman codes and adaptive offsets.
type LH2Encoder struct {
	stream
	w       *bitio.Writer
	codes   *huffman.Tree
	offsets lh2Window
}

// NewLH2Encoder returns an -lh2- encoder writing to w.
func NewLH2Encoder(w io.Writer, opts *Options) *LH2Encoder {
	return &LH2Encoder{
		stream:  newStream(MethodLH2, opts),
		w:       bitio.NewWriter(w),
		codes:   huffman.NewTree(lh2CodeSymbols, lh2CodeSymbols),
		offsets: newLH2Window(),
	}
}

// WriteCode writes a literal or match code. Codes past the tree alphabet are sent as
// the escape symbol followed by 8 raw bits.
func (e *LH2Encoder) WriteCode(code int) error {
	if err := e.acceptCode(code); err != nil {
		return err
	}

	symbol := min(code, lh2Escape)
	before := e.codes.Rebuilds()
	if err := e.codes.Encode(e.w, symbol); err != nil {
		return err
	}
	e.traceRebuild("code", e.codes, before)

	if symbol == lh2Escape {
		if err := e.w.WriteBits(lh2EscapeBits, uint32(code-lh2Escape)); err != nil { // #nosec G115 -- below 256
			return err
		}
	}
	e.advance(code)

	return nil
}

// WriteOffset writes the offset of the pending match. The offset must lie inside the
// output written so far.
func (e *LH2Encoder) WriteOffset(offset int) error {
	if err := e.acceptOffset(offset); err != nil {
		return err
	}

	before := e.offsets.tree.Rebuilds()
	if err := e.offsets.grow(&e.stream); err != nil {
		return err
	}

	high := offset >> offsetLowBits
	if !e.offsets.tree.Has(high) {
		return errors.Wrapf(ErrInvalidToken, "offset %d beyond the %d bytes written", offset, e.position)
	}
	if err := e.offsets.tree.Encode(e.w, high); err != nil {
		return err
	}
	e.traceRebuild("offset", e.offsets.tree, before)

	if err := e.w.WriteBits(offsetLowBits, uint32(offset)); err != nil { // #nosec G115 -- offset < 8192
		return err
	}
	e.matched()

	return nil
}

// Flush writes all complete bytes. The partial byte stays pending.
func (e *LH2Encoder) Flush() error {
	if err := e.expectCode("flush"); err != nil {
		return err
	}

	return e.w.Flush()
}

// Close pads the last byte and writes everything.
func (e *LH2Encoder) Close() error {
	if err := e.shut(); err != nil {
		return err
	}

	e.log.WithField("position", e.position).Debug("encoder closed")

	return e.w.Close()
}

// LH2Decoder reads -lh2- streams.
type LH2Decoder struct {
	stream
	r       *bitio.Reader
	codes   *huffman.Tree
	offsets lh2Window
	saved   *checkpoint
}

// NewLH2Decoder returns an -lh2- decoder reading from r.
func NewLH2Decoder(r io.Reader, opts *Options) *LH2Decoder {
	return &LH2Decoder{
		stream:  newStream(MethodLH2, opts),
		r:       bitio.NewReader(r),
		codes:   huffman.NewTree(lh2CodeSymbols, lh2CodeSymbols),
		offsets: newLH2Window(),
	}
}

// ReadCode reads a literal or match code.
func (d *LH2Decoder) ReadCode() (int, error) {
	if err := d.expectCode("read code"); err != nil {
		return 0, err
	}

	before := d.codes.Rebuilds()
	code, err := d.codes.Decode(d.r)
	if err != nil {
		return 0, err
	}
	d.traceRebuild("code", d.codes, before)

	if code == lh2Escape {
		extra, err := d.r.ReadBits(lh2EscapeBits)
		if err != nil {
			return 0, err
		}

		code += int(extra)
		if code > d.desc.MaxCode() {
			return 0, errors.Wrapf(ErrInvalidCode, "escaped code %d", code)
		}
	}
	d.advance(code)

	return code, nil
}

// ReadOffset reads the offset of the match returned by the last ReadCode.
func (d *LH2Decoder) ReadOffset() (int, error) {
	if err := d.expectOffset("read offset"); err != nil {
		return 0, err
	}

	before := d.offsets.tree.Rebuilds()
	if err := d.offsets.grow(&d.stream); err != nil {
		return 0, err
	}

	high, err := d.offsets.tree.Decode(d.r)
	if err != nil {
		return 0, err
	}
	d.traceRebuild("offset", d.offsets.tree, before)

	low, err := d.r.ReadBits(offsetLowBits)
	if err != nil {
		return 0, err
	}
	d.matched()

	return high<<offsetLowBits | int(low), nil
}

// Mark saves the decoder state together with the bit position.
func (d *LH2Decoder) Mark(readLimit int) error {
	if err := d.r.Mark(readLimit); err != nil {
		return err
	}

	d.saved = d.save(d.codes, d.offsets.tree)
	d.saved.extra[0] = d.offsets.next

	return nil
}

// Reset returns to the last mark.
func (d *LH2Decoder) Reset() error {
	cp, err := d.takeMark(&d.saved)
	if err != nil {
		return err
	}
	if err := d.r.Reset(); err != nil {
		return err
	}

	d.restore(cp, d.codes, d.offsets.tree)
	d.offsets.next = cp.extra[0]

	return nil
}

// Close releases the decoder. The source is left open.
func (d *LH2Decoder) Close() error {
	if err := d.shutDecoder(); err != nil {
		return err
	}
	d.saved = nil

	return d.r.Close()
}
