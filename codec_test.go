package lzh

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptors(t *testing.T) {
	cases := map[Method]Descriptor{
		MethodLH1: {4096, 60, 3},
		MethodLH2: {8192, 256, 3},
		MethodLZS: {2048, 17, 2},
		MethodLZ5: {4096, 18, 3},
	}
	for m, want := range cases {
		assert.Equal(t, want, descriptor(t, m), string(m))
	}

	_, err := DescriptorOf("-lh5-")
	assert.ErrorIs(t, err, ErrUnknownMethod)

	d := descriptor(t, MethodLZS)
	assert.Equal(t, uint(11), d.offsetBits())
	assert.Equal(t, uint(4), d.lengthBits())
	assert.Equal(t, 256, d.MatchCode(2))
	assert.Equal(t, 17, d.MatchLength(d.MaxCode()))
}

func TestUnknownMethod(t *testing.T) {
	_, err := NewEncoder("-lh5-", &bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = NewDecoder("-pm0-", bytes.NewReader(nil), nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = NewEncoder(MethodLH1, nil, nil)
	assert.ErrorIs(t, err, ErrNilWriter)

	_, err = NewDecoder(MethodLH1, nil, nil)
	assert.ErrorIs(t, err, ErrNilReader)
}

func TestTokenRoundTrip(t *testing.T) {
	for i, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(i) + 10))
			tokens, _ := randomTokens(rng, descriptor(t, m), 3000)

			enc, err := CompressTokens(m, tokens, nil)
			require.NoError(t, err)

			assert.Equal(t, tokens, readTokens(t, m, enc, len(tokens)))
		})
	}
}

func TestGreedyTokensRoundTrip(t *testing.T) {
	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			tokens := greedyTokens(sampleText, descriptor(t, m), 4096)

			enc, err := CompressTokens(m, tokens, nil)
			require.NoError(t, err)

			out, err := Decompress(m, enc, len(sampleText), nil)
			require.NoError(t, err)
			assert.Equal(t, sampleText, out)
		})
	}
}

func TestLZSKnownStream(t *testing.T) {
	tokens := []Token{Literal('A'), Match(2, 0)}

	enc, err := CompressTokens(MethodLZS, tokens, nil)
	require.NoError(t, err)

	// 1 01000001 | 0 11111101111 0000: ring address (1-0-1-17)&0x7FF = 0x7EF.
	assert.Equal(t, []byte{0xA0, 0xBF, 0x78, 0x00}, enc)
	assert.Equal(t, tokens, readTokens(t, MethodLZS, enc, 2))

	out, err := Decompress(MethodLZS, enc, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("AAA"), out)
}

func TestLZ5KnownStream(t *testing.T) {
	tokens := []Token{Literal('A'), Match(3, 0)}

	enc, err := CompressTokens(MethodLZ5, tokens, nil)
	require.NoError(t, err)

	// Flags 0b01, literal, then address (1-0-1-18)&0xFFF = 0xFEE split as EE, F0|0.
	assert.Equal(t, []byte{0x01, 0x41, 0xEE, 0xF0}, enc)

	out, err := Decompress(MethodLZ5, enc, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("AAAA"), out)
}

func TestLZ5FlushCompleteGroup(t *testing.T) {
	var sink bytes.Buffer
	enc := NewLZ5Encoder(&sink, nil)

	for _, b := range []byte("abcdefgh") {
		require.NoError(t, enc.WriteCode(int(b)))
	}
	require.NoError(t, enc.Flush())
	assert.Equal(t, 9, sink.Len())
	assert.Equal(t, 0, enc.Buffered())
	assert.Equal(t, byte(0xFF), sink.Bytes()[0])

	// A started group stays buffered until Close.
	require.NoError(t, enc.WriteCode('x'))
	require.NoError(t, enc.WriteCode(enc.Descriptor().MatchCode(3)))
	require.NoError(t, enc.WriteOffset(0))
	require.NoError(t, enc.Flush())
	assert.Equal(t, 9, sink.Len())
	assert.Equal(t, 4, enc.Buffered())

	require.NoError(t, enc.WriteCode('y'))
	require.NoError(t, enc.Close())
	assert.Equal(t, 14, sink.Len())
	assert.Equal(t, byte(0b101), sink.Bytes()[9])

	out, err := Decompress(MethodLZ5, sink.Bytes(), 13, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdefghxxxxy"), out)
}

func TestLZ5BufferBatching(t *testing.T) {
	var sink bytes.Buffer
	enc := NewLZ5Encoder(&sink, nil)

	// 9 bytes per group of literals: nothing reaches the sink before 1024 bytes.
	for i := 0; i < 113*8; i++ {
		require.NoError(t, enc.WriteCode(i&0xFF))
	}
	assert.Zero(t, sink.Len())

	for i := 0; i < 8; i++ {
		require.NoError(t, enc.WriteCode(i))
	}
	assert.Equal(t, 114*9, sink.Len())
	assert.Zero(t, enc.Buffered())
}

func TestProtocolViolations(t *testing.T) {
	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			d := descriptor(t, m)

			enc, err := NewEncoder(m, &bytes.Buffer{}, nil)
			require.NoError(t, err)

			assert.ErrorIs(t, enc.WriteOffset(0), ErrProtocolViolation)
			require.NoError(t, enc.WriteCode('a'))
			require.NoError(t, enc.WriteCode(d.MatchCode(d.Threshold)))
			assert.ErrorIs(t, enc.WriteCode('b'), ErrProtocolViolation)
			assert.ErrorIs(t, enc.Flush(), ErrProtocolViolation)
			require.NoError(t, enc.WriteOffset(0))
			assert.ErrorIs(t, enc.WriteOffset(0), ErrProtocolViolation)
			require.NoError(t, enc.Close())
			assert.ErrorIs(t, enc.WriteCode('c'), ErrProtocolViolation)
			assert.ErrorIs(t, enc.Close(), ErrProtocolViolation)
		})
	}
}

func TestReadOffsetTwice(t *testing.T) {
	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			src, err := CompressTokens(m, []Token{Literal('a'), Match(3, 0), Literal('b')}, nil)
			require.NoError(t, err)

			dec, err := NewDecoder(m, bytes.NewReader(src), nil)
			require.NoError(t, err)

			_, err = dec.ReadOffset()
			assert.ErrorIs(t, err, ErrProtocolViolation)

			code, err := dec.ReadCode()
			require.NoError(t, err)
			assert.Equal(t, 'a', rune(code))

			code, err = dec.ReadCode()
			require.NoError(t, err)
			assert.Equal(t, dec.Descriptor().MatchCode(3), code)

			_, err = dec.ReadCode()
			assert.ErrorIs(t, err, ErrProtocolViolation)

			off, err := dec.ReadOffset()
			require.NoError(t, err)
			assert.Zero(t, off)

			_, err = dec.ReadOffset()
			assert.ErrorIs(t, err, ErrProtocolViolation)

			require.NoError(t, dec.Close())
			_, err = dec.ReadCode()
			assert.ErrorIs(t, err, ErrProtocolViolation)
			assert.ErrorIs(t, dec.Close(), ErrProtocolViolation)
		})
	}
}

func TestInvalidTokens(t *testing.T) {
	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			d := descriptor(t, m)
			enc, err := NewEncoder(m, &bytes.Buffer{}, nil)
			require.NoError(t, err)

			assert.ErrorIs(t, enc.WriteCode(-1), ErrInvalidToken)
			assert.ErrorIs(t, enc.WriteCode(d.MaxCode()+1), ErrInvalidToken)
			assert.ErrorIs(t, WriteToken(enc, Match(d.MaxMatch+1, 0)), ErrInvalidToken)
			assert.ErrorIs(t, WriteToken(enc, Match(d.Threshold, d.DictionarySize)), ErrInvalidToken)
			assert.ErrorIs(t, WriteToken(enc, Match(0, 5)), ErrInvalidToken)
			assert.ErrorIs(t, WriteToken(enc, Match(-1, 0)), ErrInvalidToken)
			require.NoError(t, WriteToken(enc, Match(0, 0)))

			require.NoError(t, enc.WriteCode('a'))
			require.NoError(t, enc.WriteCode(d.MaxCode()))
			assert.ErrorIs(t, enc.WriteOffset(-1), ErrInvalidToken)
			require.NoError(t, enc.WriteOffset(0))
			require.NoError(t, enc.Close())
		})
	}
}

func TestLH2EscapedCodes(t *testing.T) {
	d := descriptor(t, MethodLH2)
	tokens := []Token{Literal('z')}
	for _, length := range []int{d.MaxMatch, 31, 32, 33, 200, d.Threshold} {
		tokens = append(tokens, Match(length, 0))
	}

	enc, err := CompressTokens(MethodLH2, tokens, nil)
	require.NoError(t, err)
	assert.Equal(t, tokens, readTokens(t, MethodLH2, enc, len(tokens)))
}

func TestLH2OffsetAlphabetGrowth(t *testing.T) {
	var sink bytes.Buffer
	enc := NewLH2Encoder(&sink, nil)
	assert.Equal(t, 1, enc.offsets.tree.Leaves())

	for i := 0; i < 200; i++ {
		require.NoError(t, enc.WriteCode(i&0x7F))
	}
	require.NoError(t, WriteToken(enc, Match(3, 150)))
	assert.Equal(t, 4, enc.offsets.tree.Leaves())

	// Bucket 4 starts at offset 256, past the 203 bytes written.
	err := WriteToken(enc, Match(3, 300))
	assert.ErrorIs(t, err, ErrInvalidToken)
	require.NoError(t, enc.WriteOffset(0))

	for i := 0; i < 9000; i++ {
		require.NoError(t, enc.WriteCode(i&0x7F))
	}
	require.NoError(t, enc.WriteCode(enc.Descriptor().MatchCode(3)))
	require.NoError(t, enc.WriteOffset(8191))
	assert.Equal(t, lh2OffsetSymbols, enc.offsets.tree.Leaves())
	require.NoError(t, enc.Close())

	dec := NewLH2Decoder(bytes.NewReader(sink.Bytes()), nil)
	for i := 0; i < 200; i++ {
		_, err := dec.ReadCode()
		require.NoError(t, err)
	}
	tok, err := ReadToken(dec)
	require.NoError(t, err)
	assert.Equal(t, Match(3, 150), tok)
	assert.Equal(t, 4, dec.offsets.tree.Leaves())
}

func TestLongStreamAcrossRescaling(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts := &Options{Logger: logger}

	for _, m := range []Method{MethodLH1, MethodLH2} {
		t.Run(string(m), func(t *testing.T) {
			hook.Reset()
			rng := rand.New(rand.NewSource(99))
			d := descriptor(t, m)
			d.MaxMatch = min(d.MaxMatch, 40) // Keep the expanded output small.
			tokens, want := randomTokens(rng, d, 60000)

			var sink bytes.Buffer
			enc, err := NewEncoder(m, &sink, opts)
			require.NoError(t, err)
			require.NoError(t, EncodeTokens(enc, tokens))
			require.NoError(t, enc.Close())

			rescaled := 0
			for _, e := range hook.AllEntries() {
				if e.Message == "adaptive tree rescaled" {
					rescaled++
					assert.Equal(t, string(m), e.Data["method"])
				}
			}
			assert.Positive(t, rescaled)

			out, err := Decompress(m, sink.Bytes(), len(want), opts)
			require.NoError(t, err)
			assert.Equal(t, want, out)
		})
	}
}

func TestDecoderMarkReset(t *testing.T) {
	for i, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			rng := rand.New(rand.NewSource(int64(i) + 20))
			tokens, _ := randomTokens(rng, descriptor(t, m), 600)

			src, err := CompressTokens(m, tokens, nil)
			require.NoError(t, err)

			dec, err := NewDecoder(m, bytes.NewReader(src), nil)
			require.NoError(t, err)

			assert.ErrorIs(t, dec.Reset(), ErrNoMark)

			for j := 0; j < 101; j++ {
				tok, err := ReadToken(dec)
				require.NoError(t, err)
				require.Equal(t, tokens[j], tok)
			}

			// Mark between a match code and its offset too.
			code, err := dec.ReadCode()
			require.NoError(t, err)
			require.NoError(t, dec.Mark(len(src)))

			var first []Token
			if code >= LiteralCodes {
				off, err := dec.ReadOffset()
				require.NoError(t, err)
				first = append(first, Match(dec.Descriptor().MatchLength(code), off))
			}
			for j := 0; j < 250; j++ {
				tok, err := ReadToken(dec)
				require.NoError(t, err)
				first = append(first, tok)
			}

			require.NoError(t, dec.Reset())
			assert.ErrorIs(t, dec.Reset(), ErrNoMark)

			var again []Token
			if code >= LiteralCodes {
				off, err := dec.ReadOffset()
				require.NoError(t, err)
				again = append(again, Match(dec.Descriptor().MatchLength(code), off))
			}
			for j := 0; j < 250; j++ {
				tok, err := ReadToken(dec)
				require.NoError(t, err)
				again = append(again, tok)
			}
			assert.Equal(t, first, again)

			for j := 352; j < len(tokens); j++ {
				tok, err := ReadToken(dec)
				require.NoError(t, err)
				require.Equal(t, tokens[j], tok, "token %d", j)
			}
		})
	}
}

func TestDecoderMarkUnsupported(t *testing.T) {
	src, err := CompressTokens(MethodLH1, []Token{Literal('a')}, nil)
	require.NoError(t, err)

	dec, err := NewDecoder(MethodLH1, io.MultiReader(bytes.NewReader(src)), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, dec.Mark(16), ErrMarkUnsupported)
}

func TestDecoderEndOfData(t *testing.T) {
	for _, m := range Methods {
		t.Run(string(m), func(t *testing.T) {
			dec, err := NewDecoder(m, bytes.NewReader(nil), nil)
			require.NoError(t, err)

			_, err = dec.ReadCode()
			assert.ErrorIs(t, err, ErrEndOfData)
		})
	}
}
