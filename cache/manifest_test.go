package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dleemiller/RagFile/format"
	"github.com/dleemiller/RagFile/header"
	"github.com/stretchr/testify/require"
)

func sampleHeader() *header.Header {
	return &header.Header{
		Version:        header.CurrentVersion,
		Flags:          header.FlagDenseF16,
		TokenizerID:    "tok",
		EmbeddingID:    "emb",
		MinhashPermute: 64,
		Minhash:        make([]uint64, 64),
		DenseVectorDim: 2,
		DenseVectorF16: []uint16{0x3c00, 0x4000},
	}
}

func TestManifestGetMissThenHit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ragf")
	var buf bytes.Buffer
	require.NoError(t, sampleHeader().Encode(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	m, err := NewManifest(format.CompressionZstd)
	require.NoError(t, err)

	_, ok := m.Get(path, info)
	require.False(t, ok)

	require.NoError(t, m.Put(path, info, sampleHeader()))

	got, ok := m.Get(path, info)
	require.True(t, ok)
	require.Equal(t, sampleHeader(), got)
}

func TestManifestMissOnStatMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ragf")
	var buf bytes.Buffer
	require.NoError(t, sampleHeader().Encode(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	m, err := NewManifest(format.CompressionNone)
	require.NoError(t, err)
	require.NoError(t, m.Put(path, info, sampleHeader()))

	require.NoError(t, os.WriteFile(path, append(buf.Bytes(), 'x'), 0o644))
	staleInfo, err := os.Stat(path)
	require.NoError(t, err)
	// The rewritten file is one byte longer, so the size half of the
	// fingerprint differs even if the filesystem's mtime resolution didn't
	// advance between writes.
	_, ok := m.Get(path, staleInfo)
	require.False(t, ok)
}

func TestManifestInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ragf")
	var buf bytes.Buffer
	require.NoError(t, sampleHeader().Encode(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	m, err := NewManifest(format.CompressionS2)
	require.NoError(t, err)
	require.NoError(t, m.Put(path, info, sampleHeader()))
	m.Invalidate(path)

	_, ok := m.Get(path, info)
	require.False(t, ok)
}
