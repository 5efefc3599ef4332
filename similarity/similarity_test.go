package similarity

import (
	"testing"

	"github.com/dleemiller/RagFile/format"
	"github.com/dleemiller/RagFile/minhash"
	"github.com/stretchr/testify/require"
)

func TestJaccardIdentical(t *testing.T) {
	sig := minhash.Char("some text to hash", 3, 128, 42)
	j, err := Jaccard(sig, sig)
	require.NoError(t, err)
	require.Equal(t, 1.0, j)
}

func TestJaccardDimensionMismatch(t *testing.T) {
	_, err := Jaccard(make(minhash.Signature, 64), make(minhash.Signature, 128))
	require.Error(t, err)
}

func TestHammingIdentical(t *testing.T) {
	v := []byte{0xff, 0x0f}
	h, err := Hamming(v, v, 16)
	require.NoError(t, err)
	require.Equal(t, 1.0, h)
}

func TestHammingOpposite(t *testing.T) {
	a := []byte{0xff}
	b := []byte{0x00}
	h, err := Hamming(a, b, 8)
	require.NoError(t, err)
	require.Equal(t, 0.0, h)
}

func TestCosineIdentical(t *testing.T) {
	v := []float32{0.1, 0.2, 0.3, 0.4}
	c, err := Cosine(v, v)
	require.NoError(t, err)
	require.InDelta(t, 1.0, c, 1e-9)
}

func TestCosineZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{1, 2, 3}
	c, err := Cosine(a, b)
	require.NoError(t, err)
	require.Equal(t, 0.0, c)
}

func TestCosineNaNPropagatesToZero(t *testing.T) {
	a := []float32{float32(nan()), 1}
	b := []float32{1, 1}
	c, err := Cosine(a, b)
	require.NoError(t, err)
	require.Equal(t, 0.0, c)
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestCosineReduceMax(t *testing.T) {
	query := []float32{1, 0}
	rows := [][]float32{{0, 1}, {1, 0}, {0.5, 0.5}}
	s, err := CosineReduce(query, rows, format.CosineMax)
	require.NoError(t, err)
	require.InDelta(t, 1.0, s, 1e-9)
}

func TestCosineReduceAvg(t *testing.T) {
	query := []float32{1, 0}
	rows := [][]float32{{1, 0}, {1, 0}}
	s, err := CosineReduce(query, rows, format.CosineAvg)
	require.NoError(t, err)
	require.InDelta(t, 1.0, s, 1e-9)
}

func TestRangeIsZeroToOne(t *testing.T) {
	sig1 := minhash.Char("alpha", 2, 64, 1)
	sig2 := minhash.Char("beta", 2, 64, 1)
	j, err := Jaccard(sig1, sig2)
	require.NoError(t, err)
	require.GreaterOrEqual(t, j, 0.0)
	require.LessOrEqual(t, j, 1.0)
}
