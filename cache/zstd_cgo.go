//go:build nobuild

package cache

// Opt-in cgo Zstd path, disabled by the nobuild tag the same way the
// teacher disables it — gozstd is faster than the pure-Go encoder/decoder
// in zstd_pure.go but requires a C toolchain this sandbox doesn't carry.

import (
	"github.com/valyala/gozstd"
)

// Compress compresses data with cgo zstd at a moderate level, trading some
// ratio for encode speed on the Manifest.Put hot path.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress reverses Compress.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
