package huffman

import (
	"github.com/pkg/errors"

	"github.com/woozymasta/lzh/bitio"
)

// MaxCodeLen bounds static code lengths; the lookup table has 1<<maxLen entries.
const MaxCodeLen = 16

// noSymbol marks lookup slots no code reaches.
const noSymbol = -1

// Table is an immutable canonical Huffman code built from per-symbol code lengths.
type Table struct {
	lengths []uint8
	codes   []uint32
	maxLen  uint
	lookup  []int32 // Indexed by a maxLen-bit prefix.
}

// NewTable builds a canonical code from lengths (index = symbol, 0 = symbol unused).
// Codes of equal length are consecutive in symbol order.
//
// Over-subscribed lengths fail with ErrInvalidLengths. Incomplete codes are accepted:
// the unassigned prefixes decode to ErrInvalidCode.
func NewTable(lengths []int) (*Table, error) {
	if len(lengths) == 0 {
		return nil, errors.Wrap(ErrInvalidLengths, "empty length list")
	}

	var count [MaxCodeLen + 1]int
	maxLen := 0
	for sym, l := range lengths {
		if l < 0 || l > MaxCodeLen {
			return nil, errors.Wrapf(ErrInvalidLengths, "symbol %d has length %d", sym, l)
		}
		if l > 0 {
			count[l]++
		}
		maxLen = max(maxLen, l)
	}
	if maxLen == 0 {
		return nil, errors.Wrap(ErrInvalidLengths, "no symbol has a code")
	}

	// Kraft inequality, counted in units of the longest code.
	left := 1
	for l := 1; l <= maxLen; l++ {
		left = left<<1 - count[l]
		if left < 0 {
			return nil, errors.Wrapf(ErrInvalidLengths, "over-subscribed at length %d", l)
		}
	}

	var next [MaxCodeLen + 2]uint32
	code := uint32(0)
	for l := 1; l <= maxLen; l++ {
		code = (code + uint32(count[l-1])) << 1 // #nosec G115 -- count <= len(lengths)
		next[l] = code
	}

	t := &Table{
		lengths: make([]uint8, len(lengths)),
		codes:   make([]uint32, len(lengths)),
		maxLen:  uint(maxLen),
		lookup:  make([]int32, 1<<maxLen),
	}
	for i := range t.lookup {
		t.lookup[i] = noSymbol
	}

	for sym, l := range lengths {
		if l == 0 {
			continue
		}

		c := next[l]
		next[l]++
		t.lengths[sym] = uint8(l) // #nosec G115 -- l <= MaxCodeLen
		t.codes[sym] = c

		shift := uint(maxLen - l)
		start := c << shift
		for j := uint32(0); j < 1<<shift; j++ {
			t.lookup[start+j] = int32(sym) // #nosec G115
		}
	}

	return t, nil
}

// FixedLengths expands an LHA breakpoint description into n code lengths: the first
// symbol gets length start, and the length grows by one at every breakpoint index.
func FixedLengths(n, start int, breakpoints ...int) []int {
	lengths := make([]int, n)
	l, bp := start, 0
	for i := range lengths {
		for bp < len(breakpoints) && breakpoints[bp] == i {
			l++
			bp++
		}
		lengths[i] = l
	}

	return lengths
}

// Len returns the alphabet size.
func (t *Table) Len() int { return len(t.lengths) }

// MaxLen returns the longest code length, which is also the lookup prefix width.
func (t *Table) MaxLen() uint { return t.maxLen }

// Code returns the code and its length for symbol. A zero length means the symbol is unused.
func (t *Table) Code(symbol int) (code uint32, length uint) {
	if symbol < 0 || symbol >= len(t.lengths) {
		return 0, 0
	}

	return t.codes[symbol], uint(t.lengths[symbol])
}

// Lookup maps a MaxLen-bit prefix to its symbol and code length.
func (t *Table) Lookup(prefix uint32) (symbol int, length uint, ok bool) {
	if prefix >= uint32(len(t.lookup)) { // #nosec G115
		return 0, 0, false
	}

	s := t.lookup[prefix]
	if s == noSymbol {
		return 0, 0, false
	}

	return int(s), uint(t.lengths[s]), true
}

// Encode writes the code of symbol.
func (t *Table) Encode(w BitWriter, symbol int) error {
	code, length := t.Code(symbol)
	if length == 0 {
		return errors.Wrapf(ErrUnusedSymbol, "symbol %d", symbol)
	}

	return w.WriteBits(length, code)
}

// Decode reads one symbol: it peeks MaxLen bits, looks them up and skips the code length.
// Near the end of data a shorter peek is used when the code fits in the remaining bits.
func (t *Table) Decode(r BitReader) (int, error) {
	prefix, err := r.PeekBits(t.maxLen)
	avail := t.maxLen
	if err != nil {
		var ib *bitio.InsufficientBitsError
		if !errors.As(err, &ib) {
			return 0, err
		}
		if ib.Available == 0 {
			return 0, bitio.ErrEndOfData
		}

		avail = uint(ib.Available) // #nosec G115
		if prefix, err = r.PeekBits(avail); err != nil {
			return 0, err
		}
		prefix <<= t.maxLen - avail
	}

	sym, length, ok := t.Lookup(prefix)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidCode, "prefix %0*b", int(t.maxLen), prefix)
	}
	if length > avail {
		return 0, bitio.ErrEndOfData
	}
	if err := r.SkipBits(length); err != nil {
		return 0, err
	}

	return sym, nil
}
