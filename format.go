package lzh

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Method is an LHA compression method identifier as stored in archive headers.
type Method string

// Supported methods.
const (
	MethodLH1 Method = "-lh1-" // 4 KiB window, adaptive Huffman codes, fixed offset table.
	MethodLH2 Method = "-lh2-" // 8 KiB window, adaptive Huffman codes and offsets.
	MethodLZS Method = "-lzs-" // LArc 2 KiB window, fixed-width bit fields.
	MethodLZ5 Method = "-lz5-" // LArc 4 KiB window, byte-aligned flag groups.
)

// Methods lists the supported methods.
var Methods = []Method{MethodLH1, MethodLH2, MethodLZS, MethodLZ5}

// Constants shared by all formats.
const (
	LiteralCodes  = 256  // Codes 0..255 are literal bytes; match codes start here.
	Filler        = 0x20 // Initial window contents.
	offsetLowBits = 6    // Raw low bits of lh1/lh2 offsets.
)

// Descriptor holds the fixed parameters of a method.
type Descriptor struct {
	DictionarySize int // Sliding window size; offsets are below it.
	MaxMatch       int // Longest match length.
	Threshold      int // Shortest match length.
}

var descriptors = map[Method]Descriptor{
	MethodLH1: {DictionarySize: 4096, MaxMatch: 60, Threshold: 3},
	MethodLH2: {DictionarySize: 8192, MaxMatch: 256, Threshold: 3},
	MethodLZS: {DictionarySize: 2048, MaxMatch: 17, Threshold: 2},
	MethodLZ5: {DictionarySize: 4096, MaxMatch: 18, Threshold: 3},
}

// DescriptorOf returns the parameters of m.
func DescriptorOf(m Method) (Descriptor, error) {
	d, ok := descriptors[m]
	if !ok {
		return Descriptor{}, errors.Wrapf(ErrUnknownMethod, "%q", string(m))
	}

	return d, nil
}

// MaxCode is the largest code: the match code of MaxMatch.
func (d Descriptor) MaxCode() int {
	return LiteralCodes + d.MaxMatch - d.Threshold
}

// MatchCode returns the code of a match of length.
func (d Descriptor) MatchCode(length int) int {
	return LiteralCodes + length - d.Threshold
}

// MatchLength returns the length carried by a match code.
func (d Descriptor) MatchLength(code int) int {
	return code - LiteralCodes + d.Threshold
}

// offsetBits is the width of a fixed offset field.
func (d Descriptor) offsetBits() uint {
	return uint(bits.Len(uint(d.DictionarySize - 1))) // #nosec G115
}

// lengthBits is the width of a fixed length field.
func (d Descriptor) lengthBits() uint {
	return uint(bits.Len(uint(d.MaxMatch - d.Threshold))) // #nosec G115
}

// checkCode validates a code against the descriptor.
func (d Descriptor) checkCode(code int) error {
	if code < 0 || code > d.MaxCode() {
		return errors.Wrapf(ErrInvalidToken, "code %d not in 0..%d", code, d.MaxCode())
	}

	return nil
}

// checkOffset validates an offset against the descriptor.
func (d Descriptor) checkOffset(offset int) error {
	if offset < 0 || offset >= d.DictionarySize {
		return errors.Wrapf(ErrInvalidToken, "offset %d not in 0..%d", offset, d.DictionarySize-1)
	}

	return nil
}

// ringOffset converts between an offset and the LArc ring address stored by -lzs- and
// -lz5-. The transform is its own inverse modulo the dictionary size.
func (d Descriptor) ringOffset(position, v int) int {
	return (position - v - 1 - d.MaxMatch) & (d.DictionarySize - 1)
}
