// Package hash provides the single 64-bit base hash used throughout RagFile:
// MinHash shingle hashing (minhash package) and header-cache keys (cache package)
// both reduce to xxHash64, exactly as mebo's internal/hash package reduces metric
// names to lookup keys.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of the given byte slice.
//
// This is the base hash h(g) for a MinHash n-gram shingle (spec §4.2): shingles are
// built as byte slices (UTF-8 text fragments or little-endian token-id words) and
// hashed directly, avoiding a string allocation per shingle.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
