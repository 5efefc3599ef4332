// Package quantize binarizes a dense embedding vector into a compact,
// bit-packed scan vector via sign quantization (spec §4.3), the
// representation the similarity package's Hamming kernel pre-filters on.
package quantize

// Sign bit-packs v into ⌈len(v)/8⌉ bytes: bit i is 1 iff v[i] >= 0, MSB-first
// within each byte. Tail bits of the final byte, if any, are zero.
func Sign(v []float32) []byte {
	out := make([]byte, (len(v)+7)/8)
	for i, x := range v {
		if x >= 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}
