// Package ragfile provides a self-contained binary file format and library
// for persisting the artifacts retrieval-augmented generation needs per text
// chunk: the original text, tokenizer output, a dense embedding vector, a
// MinHash signature for approximate Jaccard similarity, a compact scan
// vector for coarse pre-filtering, and a small fixed-size metadata record.
//
// This package provides convenient top-level wrappers — New, Dump/Dumps,
// Load/Loads, the Jaccard/Hamming/Cosine similarity functions, and Match —
// around the record, ragfileio, similarity, and scan packages, the same role
// mebo.go plays as a thin facade over mebo's blob package. The builder
// options, a custom scan Opener, and a header cache can all be passed through
// these wrappers; lower-level pieces such as minhash.Merge or
// similarity.CosineF16 are only in their own packages.
package ragfile

import (
	"context"
	"io"
	"iter"

	"github.com/dleemiller/RagFile/cache"
	"github.com/dleemiller/RagFile/format"
	"github.com/dleemiller/RagFile/ragfileio"
	"github.com/dleemiller/RagFile/record"
	"github.com/dleemiller/RagFile/scan"
	"github.com/dleemiller/RagFile/similarity"
	"go.uber.org/zap"
)

// Record is the in-memory RagFile record.
type Record = record.Record

// Option configures New/NewWithEmbeddings (spec §6's builder options).
type Option = record.Option

// Re-exported builder options, so callers need only import this package for
// the common path.
var (
	WithMinhashNgram     = record.WithMinhashNgram
	WithMinhashPermute   = record.WithMinhashPermute
	WithMinhashSeed      = record.WithMinhashSeed
	WithScanVector       = record.WithScanVector
	WithStoreDenseAsF16  = record.WithStoreDenseAsF16
)

// New constructs a Record from embedder outputs (spec §6).
func New(text string, tokenIDs []uint32, embedding []float32, tokenizerID, embeddingID string, metadataVersion uint16, extendedMeta []byte, opts ...Option) (*Record, error) {
	return record.New(text, tokenIDs, embedding, tokenizerID, embeddingID, metadataVersion, extendedMeta, opts...)
}

// NewWithEmbeddings constructs a Record carrying a full per-chunk embeddings
// matrix in its body, in addition to the header's pooled dense vector.
func NewWithEmbeddings(text string, tokenIDs []uint32, embeddings [][]float32, pooled []float32, tokenizerID, embeddingID string, metadataVersion uint16, extendedMeta []byte, opts ...Option) (*Record, error) {
	return record.NewWithEmbeddings(text, tokenIDs, embeddings, pooled, tokenizerID, embeddingID, metadataVersion, extendedMeta, opts...)
}

// NewFromAny is New for callers above a host-language binding boundary that
// cannot guarantee tokenIDs/embedding arrive as typed Go slices.
func NewFromAny(text string, tokenIDs, embedding any, tokenizerID, embeddingID string, metadataVersion uint16, extendedMeta []byte, opts ...Option) (*Record, error) {
	return record.NewFromAny(text, tokenIDs, embedding, tokenizerID, embeddingID, metadataVersion, extendedMeta, opts...)
}

// Dump serializes r to w (spec §4.5).
func Dump(r *Record, w io.Writer) error { return ragfileio.Dump(r, w) }

// Dumps serializes r and returns the bytes.
func Dumps(r *Record) ([]byte, error) { return ragfileio.Dumps(r) }

// Load deserializes a Record from src.
func Load(src io.Reader) (*Record, error) { return ragfileio.Load(src) }

// Loads deserializes a Record from an in-memory byte slice.
func Loads(data []byte) (*Record, error) { return ragfileio.Loads(data) }

// Jaccard computes Jaccard similarity between r and other's MinHash
// signatures (spec §4.4).
func Jaccard(r, other *Record) (float64, error) {
	return similarity.Jaccard(r.Minhash, other.Minhash)
}

// Hamming computes Hamming similarity between r and other's scan vectors.
// Both records must carry equal-dimension scan vectors.
func Hamming(r, other *Record) (float64, error) {
	dim := uint32(len(r.ScanVector) * 8)
	return similarity.Hamming(r.ScanVector, other.ScanVector, dim)
}

// Cosine computes cosine similarity between r and other's dense vectors. If
// other stores a multi-row embeddings matrix, mode selects how the matrix is
// reduced against r's dense vector (spec §4.4, §9 open question ii).
func Cosine(r, other *Record, mode format.CosineMode) (float64, error) {
	if len(other.Embeddings) > 0 {
		return similarity.CosineReduce(r.DenseVector, other.Embeddings, mode)
	}
	return similarity.Cosine(r.DenseVector, other.DenseVector)
}

// Match runs a top-k streaming scan of query against paths (spec §4.6).
// manifest, if non-nil, lets repeated scans over the same paths skip
// re-reading headers that have not changed on disk (see scan.Match).
func Match(ctx context.Context, query *Record, paths iter.Seq[string], topK int, method format.SimilarityMethod, opener scan.Opener, manifest *cache.Manifest, logger *zap.Logger) ([]scan.Candidate, error) {
	return scan.Match(ctx, query, paths, topK, method, opener, manifest, logger)
}
