package scan

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dleemiller/RagFile/cache"
	"github.com/dleemiller/RagFile/format"
	"github.com/dleemiller/RagFile/ragfileio"
	"github.com/dleemiller/RagFile/record"
	"github.com/stretchr/testify/require"
)

type memOpener struct {
	files map[string][]byte
}

func (m memOpener) open(identifier string) (io.ReadCloser, error) {
	data, ok := m.files[identifier]
	if !ok {
		return nil, os_ErrNotExist(identifier)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func os_ErrNotExist(identifier string) error {
	return &fileNotFoundError{identifier}
}

type fileNotFoundError struct{ identifier string }

func (e *fileNotFoundError) Error() string { return "not found: " + e.identifier }

func buildAndDump(t *testing.T, text string) []byte {
	t.Helper()
	r, err := record.New(text, []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "t", "e", 1, nil)
	require.NoError(t, err)
	data, err := ragfileio.Dumps(r)
	require.NoError(t, err)
	return data
}

func seqOf(ids ...string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

func TestMatchReturnsTopK(t *testing.T) {
	opener := memOpener{files: map[string][]byte{
		"a": buildAndDump(t, "alpha beta gamma"),
		"b": buildAndDump(t, "delta epsilon zeta"),
		"c": buildAndDump(t, "alpha beta gamma delta"),
	}}

	query, err := record.New("alpha beta gamma", []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "t", "e", 1, nil)
	require.NoError(t, err)

	results, err := Match(context.Background(), query, seqOf("a", "b", "c"), 2, format.MethodJaccard, opener.open, nil, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, len(results), 2)
	for i := 1; i < len(results); i++ {
		require.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestMatchSkipsUnreadableCandidate(t *testing.T) {
	opener := memOpener{files: map[string][]byte{
		"good": buildAndDump(t, "alpha beta gamma"),
	}}

	query, err := record.New("alpha beta gamma", []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "t", "e", 1, nil)
	require.NoError(t, err)

	results, err := Match(context.Background(), query, seqOf("missing", "good"), 5, format.MethodJaccard, opener.open, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "good", results[0].Identifier)
}

func TestMatchRespectsCancellation(t *testing.T) {
	opener := memOpener{files: map[string][]byte{
		"a": buildAndDump(t, "alpha beta gamma"),
	}}
	query, err := record.New("alpha beta gamma", []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "t", "e", 1, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Match(ctx, query, seqOf("a", "a", "a"), 5, format.MethodJaccard, opener.open, nil, nil)
	require.Error(t, err)
	require.Empty(t, results)
}

// countingOpener wraps OpenFile and counts how many times it was actually
// invoked, so a test can prove a cache hit skipped reopening the file.
type countingOpener struct {
	opens int
}

func (c *countingOpener) open(identifier string) (io.ReadCloser, error) {
	c.opens++
	return OpenFile(identifier)
}

func TestMatchReusesCachedHeaderOnSecondPass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.ragfile")

	r, err := record.New("alpha beta gamma", []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "t", "e", 1, nil)
	require.NoError(t, err)
	data, err := ragfileio.Dumps(r)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	query, err := record.New("alpha beta gamma", []uint32{1, 2, 3, 4}, []float32{0.1, 0.2, 0.3, 0.4}, "t", "e", 1, nil)
	require.NoError(t, err)

	manifest, err := cache.NewManifest(format.CompressionNone)
	require.NoError(t, err)
	opener := &countingOpener{}

	_, err = Match(context.Background(), query, seqOf(path), 1, format.MethodJaccard, opener.open, manifest, nil)
	require.NoError(t, err)
	require.Equal(t, 1, opener.opens, "first pass must populate the cache by opening the file")

	results, err := Match(context.Background(), query, seqOf(path), 1, format.MethodJaccard, opener.open, manifest, nil)
	require.NoError(t, err)
	require.Equal(t, 1, opener.opens, "second pass must score from the cached header without reopening the file")
	require.Len(t, results, 1)
	require.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestMatchRejectsNonPositiveTopK(t *testing.T) {
	query, err := record.New("text", []uint32{1, 2, 3}, []float32{0.1}, "t", "e", 1, nil)
	require.NoError(t, err)
	_, err = Match(context.Background(), query, seqOf(), 0, format.MethodJaccard, nil, nil, nil)
	require.Error(t, err)
}
