package lzh

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/woozymasta/lzh/huffman"
)

// Encoder writes a code/offset token stream in one format.
//
// A code is a literal byte (0..255) or LiteralCodes+length-Threshold for a match.
// Every match code must be followed by exactly one WriteOffset before the next
// WriteCode, Flush or Close; other orders fail with ErrProtocolViolation.
type Encoder interface {
	Method() Method
	Descriptor() Descriptor
	WriteCode(code int) error
	WriteOffset(offset int) error
	// Flush emits every complete unit without losing the state later writes depend on.
	Flush() error
	// Close pads to a byte boundary and emits everything. The sink is not closed.
	Close() error
}

// Decoder reads a code/offset token stream in one format.
// ReadOffset must follow exactly the match codes returned by ReadCode.
type Decoder interface {
	// Method selects the initial window of a Reader.
	Method() Method
	Descriptor() Descriptor
	ReadCode() (int, error)
	ReadOffset() (int, error)
	// Mark saves the decoder state; Reset returns to it once, as long as at most
	// readLimit source bytes were consumed in between.
	Mark(readLimit int) error
	Reset() error
	Close() error
}

// NewEncoder returns the encoder of method m writing to w.
func NewEncoder(m Method, w io.Writer, opts *Options) (Encoder, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	switch m {
	case MethodLH1:
		return NewLH1Encoder(w, opts), nil
	case MethodLH2:
		return NewLH2Encoder(w, opts), nil
	case MethodLZS:
		return NewLZSEncoder(w, opts), nil
	case MethodLZ5:
		return NewLZ5Encoder(w, opts), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMethod, "%q", string(m))
	}
}

// NewDecoder returns the decoder of method m reading from r.
func NewDecoder(m Method, r io.Reader, opts *Options) (Decoder, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	switch m {
	case MethodLH1:
		return NewLH1Decoder(r, opts), nil
	case MethodLH2:
		return NewLH2Decoder(r, opts), nil
	case MethodLZS:
		return NewLZSDecoder(r, opts), nil
	case MethodLZ5:
		return NewLZ5Decoder(r, opts), nil
	default:
		return nil, errors.Wrapf(ErrUnknownMethod, "%q", string(m))
	}
}

// phase is the position of a codec in the code/offset protocol.
type phase int

const (
	awaitingCode phase = iota
	awaitingOffset
	closed
)

// stream holds the protocol state and output position shared by all codecs.
type stream struct {
	desc     Descriptor
	method   Method
	log      logrus.FieldLogger
	phase    phase
	length   int   // Length of the match whose offset is pending.
	position int64 // Output bytes represented by the tokens so far.
}

func newStream(m Method, opts *Options) stream {
	return stream{
		desc:   descriptors[m],
		method: m,
		log:    normalize(opts).logger(m),
	}
}

// Descriptor returns the format parameters.
func (s *stream) Descriptor() Descriptor { return s.desc }

// Method returns the format identifier.
func (s *stream) Method() Method { return s.method }

// Position returns the number of output bytes the processed tokens represent.
func (s *stream) Position() int64 { return s.position }

// ring returns the position reduced to the dictionary.
func (s *stream) ring() int {
	return int(s.position & int64(s.desc.DictionarySize-1))
}

// expectCode fails unless a code may be processed now.
func (s *stream) expectCode(op string) error {
	switch s.phase {
	case awaitingCode:
		return nil
	case awaitingOffset:
		return errors.Wrapf(ErrProtocolViolation, "%s: offset of a %d-byte match is pending", op, s.length)
	default:
		return errors.Wrapf(ErrProtocolViolation, "%s after close", op)
	}
}

// expectOffset fails unless the previous code was a match.
func (s *stream) expectOffset(op string) error {
	switch s.phase {
	case awaitingOffset:
		return nil
	case awaitingCode:
		return errors.Wrapf(ErrProtocolViolation, "%s without a preceding match code", op)
	default:
		return errors.Wrapf(ErrProtocolViolation, "%s after close", op)
	}
}

// acceptCode validates a code about to be written.
func (s *stream) acceptCode(code int) error {
	if err := s.expectCode("write code"); err != nil {
		return err
	}

	return s.desc.checkCode(code)
}

// acceptOffset validates an offset about to be written.
func (s *stream) acceptOffset(offset int) error {
	if err := s.expectOffset("write offset"); err != nil {
		return err
	}

	return s.desc.checkOffset(offset)
}

// advance records a processed code.
func (s *stream) advance(code int) {
	if code < LiteralCodes {
		s.position++

		return
	}

	s.length = s.desc.MatchLength(code)
	s.phase = awaitingOffset
}

// matched records the offset of the pending match.
func (s *stream) matched() {
	s.position += int64(s.length)
	s.length = 0
	s.phase = awaitingCode
}

// shut moves to the closed phase. It fails if the codec is already closed or a match
// offset is missing; the codec is closed either way.
func (s *stream) shut() error {
	err := s.expectCode("close")
	s.phase = closed

	return err
}

// shutDecoder closes a decoder. Only a second close fails.
func (s *stream) shutDecoder() error {
	if s.phase == closed {
		return errors.WithMessage(ErrProtocolViolation, "close after close")
	}
	s.phase = closed

	return nil
}

// traceRebuild logs a rescale of t that happened since it had before rebuilds.
func (s *stream) traceRebuild(name string, t *huffman.Tree, before int) {
	if t.Rebuilds() == before {
		return
	}

	s.log.WithFields(logrus.Fields{
		"tree":     name,
		"position": s.position,
		"rebuilds": t.Rebuilds(),
	}).Debug("adaptive tree rescaled")
}

// checkpoint is the decoder state captured by Mark.
type checkpoint struct {
	stream stream
	trees  []*huffman.Snapshot
	extra  [3]int // Format state outside the trees.
}

// save captures the stream and trees.
func (s *stream) save(trees ...*huffman.Tree) *checkpoint {
	cp := &checkpoint{stream: *s, trees: make([]*huffman.Snapshot, len(trees))}
	for i, t := range trees {
		cp.trees[i] = t.Snapshot()
	}

	return cp
}

// restore returns the stream and trees to cp.
func (s *stream) restore(cp *checkpoint, trees ...*huffman.Tree) {
	*s = cp.stream
	for i, t := range trees {
		t.Restore(cp.trees[i])
	}
}

// takeMark validates a Reset and hands out the saved checkpoint, consuming it.
func (s *stream) takeMark(saved **checkpoint) (*checkpoint, error) {
	if s.phase == closed {
		return nil, errors.WithMessage(ErrProtocolViolation, "reset after close")
	}

	cp := *saved
	*saved = nil
	if cp == nil {
		return nil, ErrNoMark
	}

	return cp, nil
}

func invalidLength(d Descriptor, length int) error {
	return errors.Wrapf(ErrInvalidToken, "match length %d not in %d..%d", length, d.Threshold, d.MaxMatch)
}

func mustTable(lengths []int) *huffman.Table {
	t, err := huffman.NewTable(lengths)
	if err != nil {
		panic(err)
	}

	return t
}
