package cache

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/dleemiller/RagFile/format"
	"github.com/dleemiller/RagFile/header"
	"github.com/dleemiller/RagFile/internal/hash"
)

// entry is one cached, compressed header plus the stat fingerprint it was
// captured under.
type entry struct {
	modUnixNano int64
	size        int64
	compressed  []byte
}

// Manifest is an in-process header cache keyed by file path. It never backs
// correctness: Get reports a miss whenever the file's current mtime/size
// fingerprint disagrees with what was cached, and callers always fall back
// to header.Decode against the live file on a miss (SPEC_FULL.md §E).
type Manifest struct {
	mu      sync.RWMutex
	codec   Codec
	algo    format.CompressionType
	byPath  map[string]entry
	tracker *pathTracker
}

// NewManifest creates a Manifest compressing cached headers with algo.
func NewManifest(algo format.CompressionType) (*Manifest, error) {
	codec, err := GetCodec(algo)
	if err != nil {
		return nil, err
	}
	return &Manifest{codec: codec, algo: algo, byPath: make(map[string]entry), tracker: newPathTracker()}, nil
}

// Get returns the cached header for path if present and its fingerprint
// (mtime, size) still matches info.
func (m *Manifest) Get(path string, info os.FileInfo) (*header.Header, bool) {
	m.mu.RLock()
	e, ok := m.byPath[path]
	m.mu.RUnlock()
	if !ok || e.modUnixNano != info.ModTime().UnixNano() || e.size != info.Size() {
		return nil, false
	}

	raw, err := m.codec.Decompress(e.compressed)
	if err != nil {
		// A corrupt cache entry is never fatal: treat it as a miss.
		return nil, false
	}
	h, err := header.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, false
	}
	return h, true
}

// Put stores h for path under info's fingerprint. It reports
// errs.ErrHashCollision, without storing the entry, if path's 64-bit Key
// already names a different path — the same disposition mebo's collision
// tracker gives a colliding metric-name hash, reapplied to cache routing
// instead of metric identity.
func (m *Manifest) Put(path string, info os.FileInfo, h *header.Header) error {
	var buf bytes.Buffer
	if err := h.Encode(&buf); err != nil {
		return err
	}
	compressed, err := m.codec.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("cache: compress header for %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.tracker.track(path); err != nil {
		return fmt.Errorf("cache: put %s: %w", path, err)
	}
	m.byPath[path] = entry{
		modUnixNano: info.ModTime().UnixNano(),
		size:        info.Size(),
		compressed:  compressed,
	}
	return nil
}

// Invalidate removes any cached entry for path.
func (m *Manifest) Invalidate(path string) {
	m.mu.Lock()
	delete(m.byPath, path)
	m.tracker.forget(path)
	m.mu.Unlock()
}

// Key produces the stable cache key a sharded manifest implementation would
// use to route path to a shard, via the same base hash minhash uses for
// n-gram shingles.
func Key(path string) uint64 {
	return hash.ID(path)
}
