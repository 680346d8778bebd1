package bitio

import "io"

// BufferSize is the number of whole bytes a Writer batches before writing to its sink.
const BufferSize = 1024

// Writer packs MSB-first bit groups into bytes.
type Writer struct {
	w      io.Writer
	acc    uint64 // Low n bits are pending, oldest bit highest.
	n      uint
	buf    []byte // Whole bytes not yet written to w.
	closed bool
}

// NewWriter returns a Writer over w. Close pads the last byte but does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, BufferSize)}
}

// WriteBits appends the low count bits of value (count 1..32), most significant first.
func (w *Writer) WriteBits(count uint, value uint32) error {
	if w.closed {
		return ErrClosed
	}
	if count == 0 || count > MaxBits {
		return ErrBitCount
	}

	w.acc = w.acc<<count | uint64(value)&(1<<count-1)
	w.n += count
	for w.n >= 8 {
		w.n -= 8
		w.buf = append(w.buf, byte(w.acc>>w.n))
	}

	if len(w.buf) >= BufferSize {
		return w.drain()
	}

	return nil
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(bit bool) error {
	var v uint32
	if bit {
		v = 1
	}

	return w.WriteBits(1, v)
}

// PendingBits reports how many bits wait for a byte boundary.
func (w *Writer) PendingBits() int {
	return int(w.n)
}

// Buffered reports whole bytes held for the sink.
func (w *Writer) Buffered() int {
	return len(w.buf)
}

func (w *Writer) drain() error {
	if len(w.buf) == 0 {
		return nil
	}

	_, err := w.w.Write(w.buf)
	w.buf = w.buf[:0]

	return err
}

// Flush writes all whole bytes. A partial byte stays pending so later writes keep
// their alignment. Sinks with a Flush method are flushed as well.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if err := w.drain(); err != nil {
		return err
	}
	if f, ok := w.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}

	return nil
}

// Close pads the pending bits with zeros to a byte boundary, flushes, and
// makes the writer unusable.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}

	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc<<(8-w.n)))
		w.n = 0
	}

	err := w.Flush()
	w.closed = true
	w.buf = nil

	return err
}
