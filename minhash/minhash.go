// Package minhash builds fixed-length MinHash signatures over character
// n-grams, word n-grams, and token-id n-grams, deterministic in
// (content, ngram, permute, seed).
//
// The shingle hashing follows mebo's internal/hash package (xxHash64 as the
// single base hash of a byte-addressable key); the per-lane derivation is a
// splitmix64-style finalizer, the same family of "multiply-xorshift" mixers
// mebo's collision tracker documents for its own hash dispersion.
package minhash

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/dleemiller/RagFile/errs"
	"github.com/dleemiller/RagFile/internal/hash"
	"github.com/dleemiller/RagFile/internal/pool"
)

// oddC is the fixed odd constant used to derive independent per-lane seeds
// from a single base hash, per the lane recurrence in spec §4.2.
const oddC uint64 = 0x9E3779B97F4A7C15

// shingleSep is the single-byte separator joined between shingle elements.
// In text shingles 0x00 appears only if the text itself contains U+0000. In
// token shingles the elements are fixed 4-byte words, so element boundaries
// are unambiguous even though the words themselves may contain 0x00 bytes.
const shingleSep = 0x00

// mix is a splitmix64-style 64-bit finalizer: a high-quality multiply-xorshift
// avalanche used to turn a biased input into a well-distributed 64-bit value.
func mix(z uint64) uint64 {
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}

// Signature is a fixed-length vector of per-lane hash minima.
type Signature []uint64

// newAllMax allocates a signature of the given length with every lane set to
// math.MaxUint64 — the identity element for elementwise min, and the value an
// empty input must yield (spec §4.2).
func newAllMax(permute int) Signature {
	sig := make(Signature, permute)
	for i := range sig {
		sig[i] = math.MaxUint64
	}
	return sig
}

// absorb derives permute lane hashes from a single shingle base hash h and
// seed, folding each into the running per-lane minimum of sig.
func absorb(sig Signature, h uint64, seed uint64) {
	for i := range sig {
		lane := mix(h ^ (seed + uint64(i)*oddC))
		if lane < sig[i] {
			sig[i] = lane
		}
	}
}

// Char computes a MinHash signature over character n-grams of text.
//
// Characters are counted as Unicode code points, not bytes, so ngram=3 means
// three runes per shingle regardless of UTF-8 width.
func Char(text string, ngram, permute int, seed uint64) Signature {
	sig := newAllMax(permute)
	if text == "" {
		return sig
	}
	runes := []rune(text)
	if len(runes) < ngram {
		return sig
	}

	buf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(buf)

	for i := 0; i+ngram <= len(runes); i++ {
		buf.Reset()
		for j := 0; j < ngram; j++ {
			if j > 0 {
				buf.MustWrite([]byte{shingleSep})
			}
			var rb [utf8.UTFMax]byte
			n := utf8.EncodeRune(rb[:], runes[i+j])
			buf.MustWrite(rb[:n])
		}
		absorb(sig, hash.Bytes(buf.Bytes()), seed)
	}
	return sig
}

// Word computes a MinHash signature over word n-grams of text, where a word
// is a maximal run of non-whitespace runes (spec §4.2).
func Word(text string, ngram, permute int, seed uint64) Signature {
	sig := newAllMax(permute)
	words := splitWords(text)
	if len(words) < ngram {
		return sig
	}

	buf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(buf)

	for i := 0; i+ngram <= len(words); i++ {
		buf.Reset()
		for j := 0; j < ngram; j++ {
			if j > 0 {
				buf.MustWrite([]byte{shingleSep})
			}
			buf.MustWrite([]byte(words[i+j]))
		}
		absorb(sig, hash.Bytes(buf.Bytes()), seed)
	}
	return sig
}

// splitWords splits text on runs of Unicode whitespace, discarding empty
// fields, without the allocation overhead of strings.Fields' closures.
func splitWords(text string) []string {
	var words []string
	runes := []rune(text)
	start := -1
	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, string(runes[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, string(runes[start:]))
	}
	return words
}

// Tokens computes a MinHash signature over n-grams of a token-id sequence.
// Each token id contributes its little-endian u32 encoding to the shingle,
// per spec §4.2.
func Tokens(tokenIDs []uint32, ngram, permute int, seed uint64) Signature {
	sig := newAllMax(permute)
	if len(tokenIDs) < ngram {
		return sig
	}

	buf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(buf)

	for i := 0; i+ngram <= len(tokenIDs); i++ {
		buf.Reset()
		for j := 0; j < ngram; j++ {
			if j > 0 {
				buf.MustWrite([]byte{shingleSep})
			}
			var tb [4]byte
			binary.LittleEndian.PutUint32(tb[:], tokenIDs[i+j])
			buf.MustWrite(tb[:])
		}
		absorb(sig, hash.Bytes(buf.Bytes()), seed)
	}
	return sig
}

// Merge computes the elementwise minimum of two equal-length signatures.
// Merge is associative, commutative, and idempotent (spec §8, property 3).
func Merge(a, b Signature) (Signature, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("minhash: merge %d vs %d lanes: %w", len(a), len(b), errs.ErrDimensionMismatch)
	}
	out := make(Signature, len(a))
	for i := range a {
		if a[i] < b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out, nil
}
