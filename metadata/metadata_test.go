package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v, err := SerializeV1([]uint16{1, 2, 3}, "my-dataset", "row-42", "the quick brown fox", "doc.txt", 7, now)
	require.NoError(t, err)

	raw := v.Bytes()
	require.Len(t, raw, Size)

	got, err := DeserializeV1(raw)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestSourcefileHashMatchesSHA256(t *testing.T) {
	sourceText := "the quick brown fox jumps over the lazy dog"
	v, err := SerializeV1(nil, "ds", "row", sourceText, "f.txt", 0, time.Unix(0, 0))
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(sourceText))
	want := hex.EncodeToString(sum[:])[:64]
	require.Equal(t, want, v.SourcefileHash)
}

func TestChunkNumberPreserved(t *testing.T) {
	v, err := SerializeV1(nil, "ds", "row", "text", "f.txt", 42, time.Unix(0, 0))
	require.NoError(t, err)
	require.EqualValues(t, 42, v.ChunkNumber)
}

func TestBase64RoundTrip(t *testing.T) {
	v, err := SerializeV1([]uint16{9}, "ds", "row", "text", "f.txt", 1, time.Unix(1000, 0))
	require.NoError(t, err)

	encoded := Base64Encode(v)
	got, err := Base64Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestTooManyLabelsRejected(t *testing.T) {
	labels := make([]uint16, 17)
	_, err := SerializeV1(labels, "ds", "row", "text", "f.txt", 0, time.Unix(0, 0))
	require.Error(t, err)
}

func TestDeserializeRejectsWrongSize(t *testing.T) {
	_, err := DeserializeV1(make([]byte, Size-1))
	require.Error(t, err)
}
