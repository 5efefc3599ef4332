package cache

// NoOpCompressor stores cached headers uncompressed. Useful when the
// manifest is short-lived (a single scan process) and the cost of a
// compress/decompress round trip isn't worth paying for headers that are
// already a few hundred bytes.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor returns a Codec that passes data through unchanged.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data unchanged. The returned slice aliases data; callers
// must not mutate data afterward if they still hold the result.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
