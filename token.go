package lzh

import "fmt"

// Token is one LZSS unit: a literal byte or a back-reference.
// Offset counts back from the byte before the current position: 0 repeats the last byte.
type Token struct {
	Length  int // 0 for a literal.
	Offset  int
	Literal byte
}

// Literal returns a literal token.
func Literal(b byte) Token {
	return Token{Literal: b}
}

// Match returns a back-reference of length bytes at distance offset+1.
func Match(length, offset int) Token {
	return Token{Length: length, Offset: offset}
}

// IsMatch reports whether t is a back-reference.
func (t Token) IsMatch() bool {
	return t.Length > 0
}

// Size returns the number of output bytes t represents.
func (t Token) Size() int {
	if t.IsMatch() {
		return t.Length
	}

	return 1
}

func (t Token) String() string {
	if t.IsMatch() {
		return fmt.Sprintf("match(%d,%d)", t.Length, t.Offset)
	}

	return fmt.Sprintf("literal(%#02x)", t.Literal)
}

// WriteToken writes t as a code followed, for matches, by its offset.
// A token with no length and a non-zero offset is rejected rather than written as a
// literal.
func WriteToken(e Encoder, t Token) error {
	d := e.Descriptor()
	if t.Length < 0 || (t.Length == 0 && t.Offset != 0) {
		return invalidLength(d, t.Length)
	}
	if !t.IsMatch() {
		return e.WriteCode(int(t.Literal))
	}

	if t.Length < d.Threshold || t.Length > d.MaxMatch {
		return invalidLength(d, t.Length)
	}
	if err := d.checkOffset(t.Offset); err != nil {
		return err
	}

	if err := e.WriteCode(d.MatchCode(t.Length)); err != nil {
		return err
	}

	return e.WriteOffset(t.Offset)
}

// ReadToken reads one code and, for match codes, its offset.
func ReadToken(d Decoder) (Token, error) {
	code, err := d.ReadCode()
	if err != nil {
		return Token{}, err
	}
	if code < LiteralCodes {
		return Literal(byte(code)), nil // #nosec G115 -- code < 256
	}

	offset, err := d.ReadOffset()
	if err != nil {
		return Token{}, err
	}

	return Match(d.Descriptor().MatchLength(code), offset), nil
}
