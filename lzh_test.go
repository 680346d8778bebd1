package lzh

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomTokens returns n tokens whose matches stay inside the bytes produced so far,
// together with the bytes they expand to.
func randomTokens(rng *rand.Rand, d Descriptor, n int) ([]Token, []byte) {
	tokens := make([]Token, 0, n)
	var out []byte

	for len(tokens) < n {
		if len(out) == 0 || rng.Intn(3) == 0 {
			b := byte('a' + rng.Intn(8))
			tokens = append(tokens, Literal(b))
			out = append(out, b)

			continue
		}

		length := d.Threshold + rng.Intn(d.MaxMatch-d.Threshold+1)
		offset := rng.Intn(min(len(out), d.DictionarySize))
		tokens = append(tokens, Match(length, offset))
		for i := 0; i < length; i++ {
			out = append(out, out[len(out)-offset-1])
		}
	}

	return tokens, out
}

// greedyTokens splits src into literals and the longest earlier matches found within
// limit bytes back.
func greedyTokens(src []byte, d Descriptor, limit int) []Token {
	limit = min(limit, d.DictionarySize)

	var tokens []Token
	for i := 0; i < len(src); {
		bestLen, bestOff := 0, 0
		for dist := 1; dist <= min(i, limit); dist++ {
			n := 0
			for n < d.MaxMatch && i+n < len(src) && src[i+n-dist] == src[i+n] {
				n++
			}
			if n > bestLen {
				bestLen, bestOff = n, dist-1
				if n == d.MaxMatch {
					break
				}
			}
		}

		if bestLen >= d.Threshold {
			tokens = append(tokens, Match(bestLen, bestOff))
			i += bestLen
		} else {
			tokens = append(tokens, Literal(src[i]))
			i++
		}
	}

	return tokens
}

// readTokens decodes n tokens from src.
func readTokens(t *testing.T, m Method, src []byte, n int) []Token {
	t.Helper()

	dec, err := NewDecoder(m, bytes.NewReader(src), nil)
	require.NoError(t, err)

	out := make([]Token, 0, n)
	for i := 0; i < n; i++ {
		tok, err := ReadToken(dec)
		require.NoError(t, err, "token %d", i)
		out = append(out, tok)
	}
	require.NoError(t, dec.Close())

	return out
}

func descriptor(t testing.TB, m Method) Descriptor {
	t.Helper()

	d, err := DescriptorOf(m)
	require.NoError(t, err)

	return d
}

var sampleText = []byte("The LHA archiver compresses files with sliding window methods. " +
	"The sliding window methods replace repeated strings with references to earlier text. " +
	"Earlier text is kept in a window of a few kilobytes; references carry a length and a distance.")
