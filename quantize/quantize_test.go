package quantize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignBasic(t *testing.T) {
	v := []float32{1, -1, 0, -0.5, 2, -2, 3, -3, 0.1}
	packed := Sign(v)
	require.Len(t, packed, 2)

	want := byte(0)
	for i, x := range v[:8] {
		if x >= 0 {
			want |= 1 << (7 - uint(i))
		}
	}
	require.Equal(t, want, packed[0])
	require.Equal(t, byte(1<<7), packed[1])
}

func TestSignIdempotentOnZeroOne(t *testing.T) {
	v := []float32{0, 1, 0, 1, 1, 0, 1, 1}
	first := Sign(v)

	// Re-derive a {0,1}-valued float vector from the packed bits and re-quantize.
	reconstructed := make([]float32, len(v))
	for i := range v {
		bit := (first[i/8] >> (7 - uint(i%8))) & 1
		reconstructed[i] = float32(bit)
	}
	second := Sign(reconstructed)
	require.Equal(t, first, second)
}
