// Package cache implements an optional in-process header cache: compressed,
// encoded RagFileHeader values held in memory and keyed by file path, mtime,
// and size, so a top-k scan
// (scan.Match) over the same paths twice does not re-parse unchanged
// headers. scan.Match accepts a *Manifest directly — a jaccard or hamming
// candidate that hits the cache never opens its file at all.
//
// The Compressor/Decompressor/Codec interfaces and the four codec
// implementations below (NoOp, S2, LZ4, Zstd) follow mebo's compress
// package's split of one small wrapper type per algorithm behind a shared
// Codec interface, repointed at format.CompressionType — this module's
// version of the same enum — and at caching RagFileHeader bytes instead of
// mebo's blob payloads. A cache miss or a corrupt/stale entry always falls
// back to re-reading and re-parsing the source file (SPEC_FULL.md §E): the
// cache never participates in correctness, only in avoiding repeat work.
//
// # Supported codecs
//
//   - None: no compression, for small headers where codec overhead dominates.
//   - Zstd: best ratio.
//   - S2: fast, for cache writes on a latency-sensitive path.
//   - LZ4: fastest decompression, offered as a third option in the registry.
//
// cgo Zstd (valyala/gozstd) is kept disabled via the same "//go:build nobuild"
// tag the teacher uses in zstd_cgo.go; zstd_pure.go ("!nobuild") is the
// default and is compiled whether or not cgo is enabled.
package cache
