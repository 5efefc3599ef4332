// Package similarity implements the three kernels RagFile scores candidates
// with: Jaccard over MinHash signatures, Hamming over bit-packed scan
// vectors, and Cosine over dense (f32 or f16) vectors (spec §4.4).
//
// Every kernel returns a value in [0.0, 1.0] and is a pure function safe for
// concurrent use on disjoint inputs (spec §5). There is no per-CPU kernel
// dispatch: Hamming counts bits byte by byte with math/bits.OnesCount8, and
// Cosine is a plain scalar loop.
package similarity

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/dleemiller/RagFile/errs"
	"github.com/dleemiller/RagFile/float16"
	"github.com/dleemiller/RagFile/format"
	"github.com/dleemiller/RagFile/minhash"
)

// Jaccard estimates set-Jaccard similarity from two MinHash signatures: the
// fraction of lanes at which the two signatures agree (spec §4.4).
func Jaccard(a, b minhash.Signature) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("similarity: jaccard %d vs %d lanes: %w", len(a), len(b), errs.ErrDimensionMismatch)
	}
	if len(a) == 0 {
		return 0, nil
	}
	agree := 0
	for i := range a {
		if a[i] == b[i] {
			agree++
		}
	}
	return float64(agree) / float64(len(a)), nil
}

// Hamming computes similarity over two bit-packed scan vectors of the same
// dimension (in bits): 1 - popcount(a XOR b)/dim (spec §4.4).
func Hamming(a, b []byte, dim uint32) (float64, error) {
	wantLen := int((dim + 7) / 8)
	if len(a) != wantLen || len(b) != wantLen {
		return 0, fmt.Errorf("similarity: hamming vectors do not match dim %d: %w", dim, errs.ErrDimensionMismatch)
	}
	if dim == 0 {
		return 0, nil
	}
	diff := 0
	for i := range a {
		diff += bits.OnesCount8(a[i] ^ b[i])
	}
	return 1 - float64(diff)/float64(dim), nil
}

// Cosine computes cosine similarity between two equal-length f32 vectors,
// clamped to 0 when negative, 0 if either norm is zero (spec §4.4).
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("similarity: cosine %d vs %d dims: %w", len(a), len(b), errs.ErrDimensionMismatch)
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, nil
		}
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos < 0 {
		return 0, nil
	}
	return cos, nil
}

// CosineF16 computes cosine similarity between two equal-length f16-encoded
// vectors by decoding to f32 and delegating to Cosine, per spec §4.4's
// requirement that f16 cosine be computed in f32.
func CosineF16(a, b []uint16) (float64, error) {
	return Cosine(float16.DecodeSlice(a), float16.DecodeSlice(b))
}

// CosineReduce scores a single query vector against each row of an
// embeddings matrix and reduces the per-row scores according to mode
// (spec §4.4, §9 open question ii).
func CosineReduce(query []float32, rows [][]float32, mode format.CosineMode) (float64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	switch mode {
	case format.CosineMax:
		best := 0.0
		for i, row := range rows {
			s, err := Cosine(query, row)
			if err != nil {
				return 0, err
			}
			if i == 0 || s > best {
				best = s
			}
		}
		return best, nil
	case format.CosineAvg:
		sum := 0.0
		for _, row := range rows {
			s, err := Cosine(query, row)
			if err != nil {
				return 0, err
			}
			sum += s
		}
		return sum / float64(len(rows)), nil
	default:
		return 0, fmt.Errorf("similarity: unknown cosine mode %v: %w", mode, errs.ErrInvalidArgument)
	}
}
