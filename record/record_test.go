package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidRecord(t *testing.T) {
	r, err := New("Sample text", []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "tok-1", "emb-1", 1, nil)
	require.NoError(t, err)
	require.Equal(t, "Sample text", r.Text)
	require.Len(t, r.Minhash, DefaultPermute)
	require.Equal(t, 8, len(r.ScanVector)) // rounded up to 64 bits
}

func TestNewRejectsEmptyText(t *testing.T) {
	_, err := New("", []uint32{1, 2, 3}, []float32{0.1}, "t", "e", 1, nil)
	require.Error(t, err)
}

func TestNewRejectsShortTokenIDs(t *testing.T) {
	_, err := New("text", []uint32{1, 2}, []float32{0.1}, "t", "e", 1, nil)
	require.Error(t, err)
}

func TestNewRejectsEmptyEmbedding(t *testing.T) {
	_, err := New("text", []uint32{1, 2, 3}, nil, "t", "e", 1, nil)
	require.Error(t, err)
}

func TestNewFromAnyRejectsNonNumericTokens(t *testing.T) {
	_, err := NewFromAny("text", []any{"a", "b", "c"}, []any{0.1, 0.2}, "t", "e", 1, nil)
	require.Error(t, err)
}

func TestNewFromAnyAcceptsMixedNumeric(t *testing.T) {
	r, err := NewFromAny("text", []any{1, 2, 3}, []any{0.1, 0.2, 0.3}, "t", "e", 1, nil)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3}, r.TokenIDs)
}

func TestToHeaderRoundTripFields(t *testing.T) {
	r, err := New("Sample text", []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "tok-1", "emb-1", 1, []byte("meta"))
	require.NoError(t, err)

	h := r.ToHeader()
	require.Equal(t, "tok-1", h.TokenizerID)
	require.True(t, h.HasDenseF16())
	require.True(t, h.HasScanVector())
	require.EqualValues(t, 4, h.DenseVectorDim)
}

func TestNewWithEmbeddingsRejectsRagged(t *testing.T) {
	_, err := NewWithEmbeddings("text", []uint32{1, 2, 3}, [][]float32{{0.1, 0.2}, {0.3}}, nil, "t", "e", 1, nil)
	require.Error(t, err)
}

func TestNewWithEmbeddingsUsesFirstRowAsPooled(t *testing.T) {
	r, err := NewWithEmbeddings("text", []uint32{1, 2, 3}, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, nil, "t", "e", 1, nil)
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2}, r.DenseVector)
	require.Len(t, r.Embeddings, 2)
}

func TestWithScanVectorCustom(t *testing.T) {
	custom := make([]byte, 8)
	r, err := New("text", []uint32{1, 2, 3}, []float32{0.1, 0.2}, "t", "e", 1, nil, WithScanVector(custom))
	require.NoError(t, err)
	require.Equal(t, custom, r.ScanVector)
}
