package header

import (
	"bytes"
	"testing"

	"github.com/dleemiller/RagFile/errs"
	"github.com/stretchr/testify/require"
)

func sampleHeader() *Header {
	return &Header{
		Version:         CurrentVersion,
		Flags:           FlagDenseF16 | FlagScanVector,
		TokenizerID:     "bert-base-uncased",
		EmbeddingID:     "text-embedding-3-small",
		MetadataVersion: 1,
		MinhashPermute:  64,
		Minhash:         make([]uint64, 64),
		ScanVectorDim:   64,
		ScanVector:      make([]byte, 8),
		DenseVectorDim:  4,
		DenseVectorF16:  []uint16{0x3c00, 0x4000, 0x4200, 0x4400},
		ExtendedMeta:    []byte("hello"),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := sampleHeader()
	var buf bytes.Buffer
	require.NoError(t, h.Encode(&buf))

	got, err := Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("XXXX")))
	require.ErrorIs(t, err, errs.ErrMagicMismatch)
}

func TestDecodeRejectsTruncation(t *testing.T) {
	h := sampleHeader()
	var buf bytes.Buffer
	require.NoError(t, h.Encode(&buf))

	truncated := buf.Bytes()[:10]
	_, err := Decode(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	h := sampleHeader()
	h.Version = 99
	var buf bytes.Buffer
	require.NoError(t, h.Encode(&buf))

	_, err := Decode(&buf)
	require.Error(t, err)
}
