package minhash

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCharLength(t *testing.T) {
	sig := Char("this is a test text", 3, 128, 42)
	require.Len(t, sig, 128)
}

func TestWordLength(t *testing.T) {
	sig := Word("this is a test text", 2, 256, 42)
	require.Len(t, sig, 256)
}

func TestEmptyInputIsAllMax(t *testing.T) {
	sig := Char("", 3, 64, 42)
	require.Len(t, sig, 64)
	for _, v := range sig {
		require.Equal(t, uint64(math.MaxUint64), v)
	}
}

func TestDeterminism(t *testing.T) {
	a := Char("repeatable content", 3, 128, 42)
	b := Char("repeatable content", 3, 128, 42)
	require.Equal(t, a, b)
}

func TestTokensLength(t *testing.T) {
	sig := Tokens([]uint32{1, 2, 3, 4, 5}, 2, 64, 7)
	require.Len(t, sig, 64)
}

func TestMergeLengthAndMin(t *testing.T) {
	a := make(Signature, 128)
	b := make(Signature, 128)
	for i := range a {
		a[i] = uint64(i)
		b[i] = uint64(i + 128)
	}
	merged, err := Merge(a, b)
	require.NoError(t, err)
	require.Len(t, merged, 128)
	for i := range merged {
		require.Equal(t, a[i], merged[i])
	}
}

func TestMergeLaws(t *testing.T) {
	a := Char("alpha beta gamma", 3, 64, 1)
	b := Char("delta epsilon zeta", 3, 64, 1)
	c := Char("eta theta iota", 3, 64, 1)

	ab, err := Merge(a, b)
	require.NoError(t, err)
	ba, err := Merge(b, a)
	require.NoError(t, err)
	require.Equal(t, ab, ba)

	aa, err := Merge(a, a)
	require.NoError(t, err)
	require.Equal(t, a, aa)

	abC, err := Merge(ab, c)
	require.NoError(t, err)
	bc, err := Merge(b, c)
	require.NoError(t, err)
	aBC, err := Merge(a, bc)
	require.NoError(t, err)
	require.Equal(t, abC, aBC)
}

func TestMergeDimensionMismatch(t *testing.T) {
	_, err := Merge(make(Signature, 64), make(Signature, 128))
	require.Error(t, err)
}
