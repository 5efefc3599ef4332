package cache

// ZstdCompressor is the best-ratio codec for cached headers, at the cost of
// slower encode/decode than S2 or LZ4 (see the build-tagged
// implementations in zstd_cgo.go/zstd_pure.go). Worth it for a manifest that
// stays warm across many scan runs, where ratio matters more than the cost
// of any single Put.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor returns a Zstd Codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
