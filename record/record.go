// Package record implements the in-memory RagFile record, its builder, and
// the construction invariants of spec §3/§4.5.
//
// The builder is a functional-option-configured value (spec §9, "Dynamic
// kwargs in the builder") built on internal/options, the same generic
// plumbing mebo's blob encoders configure themselves with.
package record

import (
	"fmt"
	"reflect"
	"time"

	"github.com/dleemiller/RagFile/errs"
	"github.com/dleemiller/RagFile/float16"
	"github.com/dleemiller/RagFile/header"
	"github.com/dleemiller/RagFile/internal/options"
	"github.com/dleemiller/RagFile/minhash"
	"github.com/dleemiller/RagFile/quantize"
)

// Defaults for builder configuration not otherwise supplied (spec §6).
const (
	DefaultCharNgram  = 3
	DefaultWordNgram  = 2
	DefaultTokenNgram = 2
	DefaultPermute    = 128
	DefaultSeed       = 42
)

// config holds the builder's resolved options (spec §6's recognized set).
type config struct {
	minhashNgram     int
	minhashPermute   int
	minhashSeed      uint64
	scanVector       []byte // nil means: derive via quantize.Sign(dense vector)
	storeDenseAsF16  bool
}

func defaultConfig() *config {
	return &config{
		minhashNgram:    DefaultCharNgram,
		minhashPermute:  DefaultPermute,
		minhashSeed:     DefaultSeed,
		storeDenseAsF16: true,
	}
}

// Option configures a Record builder.
type Option = options.Option[*config]

// WithMinhashNgram overrides the n-gram width used for MinHash construction.
func WithMinhashNgram(n int) Option {
	return options.NoError(func(c *config) { c.minhashNgram = n })
}

// WithMinhashPermute overrides the MinHash signature length.
func WithMinhashPermute(p int) Option {
	return options.NoError(func(c *config) { c.minhashPermute = p })
}

// WithMinhashSeed overrides the MinHash seed.
func WithMinhashSeed(seed uint64) Option {
	return options.NoError(func(c *config) { c.minhashSeed = seed })
}

// WithScanVector supplies a precomputed scan vector instead of deriving one
// by sign-quantizing the dense vector.
func WithScanVector(v []byte) Option {
	return options.NoError(func(c *config) { c.scanVector = v })
}

// WithStoreDenseAsF16 overrides whether the dense vector is stored as
// float16 (default true).
func WithStoreDenseAsF16(v bool) Option {
	return options.NoError(func(c *config) { c.storeDenseAsF16 = v })
}

// Record is an immutable, fully constructed RagFile record.
type Record struct {
	TokenizerID     string
	EmbeddingID     string
	MetadataVersion uint16
	ExtendedMeta    []byte

	Text     string
	TokenIDs []uint32

	// DenseVector is the record's pooled/primary embedding.
	DenseVector []float32
	StoreAsF16  bool

	// Embeddings is the optional per-chunk matrix (spec §3's body section);
	// nil when the record was built from a single vector.
	Embeddings [][]float32

	Minhash    minhash.Signature
	ScanVector []byte
}

var validPermutes = map[int]bool{64: true, 128: true, 256: true, 512: true}

// New constructs a Record from embedder outputs, applying the RagFile
// invariants of spec §3 at construction. It never partially constructs: on
// any invariant violation, the zero value is returned alongside an error
// wrapping errs.ErrInvalidArgument.
func New(text string, tokenIDs []uint32, embedding []float32, tokenizerID, embeddingID string, metadataVersion uint16, extendedMeta []byte, opts ...Option) (*Record, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if err := validateInvariants(text, tokenIDs, embedding, cfg, extendedMeta); err != nil {
		return nil, err
	}

	r := &Record{
		TokenizerID:     tokenizerID,
		EmbeddingID:     embeddingID,
		MetadataVersion: metadataVersion,
		ExtendedMeta:    extendedMeta,
		Text:            text,
		TokenIDs:        append([]uint32(nil), tokenIDs...),
		DenseVector:     append([]float32(nil), embedding...),
		StoreAsF16:      cfg.storeDenseAsF16,
	}

	r.Minhash = buildSignature(text, tokenIDs, cfg)

	if cfg.scanVector != nil {
		r.ScanVector = cfg.scanVector
	} else {
		r.ScanVector = padScanVectorTo64Bits(quantize.Sign(embedding))
	}

	return r, nil
}

// NewWithEmbeddings is New, additionally storing a full per-chunk embeddings
// matrix in the body (spec §3); row 0 becomes the header's pooled
// DenseVector unless a distinct pooled vector is supplied via pooled.
func NewWithEmbeddings(text string, tokenIDs []uint32, embeddings [][]float32, pooled []float32, tokenizerID, embeddingID string, metadataVersion uint16, extendedMeta []byte, opts ...Option) (*Record, error) {
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("record: embeddings matrix empty: %w", errs.ErrInvalidArgument)
	}
	cols := len(embeddings[0])
	for _, row := range embeddings {
		if len(row) != cols {
			return nil, fmt.Errorf("record: ragged embeddings matrix: %w", errs.ErrDimensionMismatch)
		}
	}
	if pooled == nil {
		pooled = embeddings[0]
	}
	if len(pooled) != cols {
		return nil, fmt.Errorf("record: pooled vector dim %d != embeddings cols %d: %w", len(pooled), cols, errs.ErrDimensionMismatch)
	}

	r, err := New(text, tokenIDs, pooled, tokenizerID, embeddingID, metadataVersion, extendedMeta, opts...)
	if err != nil {
		return nil, err
	}
	r.Embeddings = make([][]float32, len(embeddings))
	for i, row := range embeddings {
		r.Embeddings[i] = append([]float32(nil), row...)
	}
	return r, nil
}

// padScanVectorTo64Bits rounds a sign-quantized scan vector's byte length up
// to the next multiple of 8 bytes (64 bits), per spec §3 invariant 2:
// scan_vector_dim must be a multiple of 64, with the original dense-vector
// bits populated and every tail bit (including this padding) zero.
func padScanVectorTo64Bits(v []byte) []byte {
	rem := len(v) % 8
	if rem == 0 {
		return v
	}
	return append(v, make([]byte, 8-rem)...)
}

func buildSignature(text string, tokenIDs []uint32, cfg *config) minhash.Signature {
	textSig := minhash.Char(text, cfg.minhashNgram, cfg.minhashPermute, cfg.minhashSeed)
	tokenNgram := cfg.minhashNgram
	if tokenNgram == DefaultCharNgram {
		tokenNgram = DefaultTokenNgram
	}
	tokenSig := minhash.Tokens(tokenIDs, tokenNgram, cfg.minhashPermute, cfg.minhashSeed)
	merged, err := minhash.Merge(textSig, tokenSig)
	if err != nil {
		// Both signatures share cfg.minhashPermute lanes by construction.
		panic(err)
	}
	return merged
}

func validateInvariants(text string, tokenIDs []uint32, embedding []float32, cfg *config, extendedMeta []byte) error {
	if text == "" {
		return fmt.Errorf("record: text must be non-empty: %w", errs.ErrInvalidArgument)
	}
	if len(tokenIDs) < 3 {
		return fmt.Errorf("record: token_ids length %d < 3: %w", len(tokenIDs), errs.ErrInvalidArgument)
	}
	if len(embedding) < 1 {
		return fmt.Errorf("record: dense_vector_dim must be >= 1: %w", errs.ErrInvalidArgument)
	}
	if !validPermutes[cfg.minhashPermute] {
		return fmt.Errorf("record: minhash_permute %d invalid: %w", cfg.minhashPermute, errs.ErrInvalidArgument)
	}
	if len(extendedMeta) > 64*1024 {
		return fmt.Errorf("record: extended_metadata_len %d exceeds 64KiB: %w", len(extendedMeta), errs.ErrInvalidArgument)
	}
	if cfg.scanVector != nil {
		if len(cfg.scanVector)%8 != 0 {
			return fmt.Errorf("record: scan_vector length %d not a multiple of 8 bytes: %w", len(cfg.scanVector), errs.ErrInvalidArgument)
		}
		if len(cfg.scanVector)*8 < len(embedding) {
			return fmt.Errorf("record: scan_vector too short for dense dim %d: %w", len(embedding), errs.ErrInvalidArgument)
		}
	}
	return nil
}

// ToHeader projects r into the wire-format Header (spec §3), ready for
// header.Encode.
func (r *Record) ToHeader() *header.Header {
	h := &header.Header{
		Version:         1,
		TokenizerID:     r.TokenizerID,
		EmbeddingID:     r.EmbeddingID,
		MetadataVersion: r.MetadataVersion,
		MinhashPermute:  uint16(len(r.Minhash)),
		Minhash:         r.Minhash,
		ScanVectorDim:   uint32(len(r.ScanVector) * 8),
		ScanVector:      r.ScanVector,
		DenseVectorDim:  uint32(len(r.DenseVector)),
		ExtendedMeta:    r.ExtendedMeta,
	}
	h.Flags |= header.FlagScanVector
	if len(r.Embeddings) > 0 {
		h.Flags |= header.FlagEmbeddingsBody
	}
	if r.StoreAsF16 {
		h.Flags |= header.FlagDenseF16
		h.DenseVectorF16 = float16.EncodeSlice(r.DenseVector)
	} else {
		h.DenseVectorF32 = r.DenseVector
	}
	return h
}

// ParseTokenIDs converts a dynamically-typed token-id sequence (as a
// host-language binding layer would hand across an FFI boundary, spec §1's
// "host-language binding layer" collaborator) into a []uint32, returning
// errs.ErrTypeMismatch if any element is not an integer (spec §8, S8).
func ParseTokenIDs(v any) ([]uint32, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("record: token_ids must be a sequence, got %T: %w", v, errs.ErrTypeMismatch)
	}
	out := make([]uint32, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		switch elem.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = uint32(elem.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out[i] = uint32(elem.Uint())
		default:
			return nil, fmt.Errorf("record: token_ids[%d] has type %s: %w", i, elem.Kind(), errs.ErrTypeMismatch)
		}
	}
	return out, nil
}

// ParseFloat32Slice converts a dynamically-typed numeric sequence into a
// []float32, mirroring ParseTokenIDs for embedding vectors.
func ParseFloat32Slice(v any) ([]float32, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("record: vector must be a sequence, got %T: %w", v, errs.ErrTypeMismatch)
	}
	out := make([]float32, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		switch elem.Kind() {
		case reflect.Float32, reflect.Float64:
			out[i] = float32(elem.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float32(elem.Int())
		default:
			return nil, fmt.Errorf("record: vector[%d] has type %s: %w", i, elem.Kind(), errs.ErrTypeMismatch)
		}
	}
	return out, nil
}

// NewFromAny is New, but accepts tokenIDs and embedding as dynamically typed
// values (spec §8, S8's "token_ids=\"invalid\" fails with TypeMismatch"),
// for callers sitting above a host-language binding boundary.
func NewFromAny(text string, tokenIDsAny, embeddingAny any, tokenizerID, embeddingID string, metadataVersion uint16, extendedMeta []byte, opts ...Option) (*Record, error) {
	tokenIDs, err := ParseTokenIDs(tokenIDsAny)
	if err != nil {
		return nil, err
	}
	embedding, err := ParseFloat32Slice(embeddingAny)
	if err != nil {
		return nil, err
	}
	return New(text, tokenIDs, embedding, tokenizerID, embeddingID, metadataVersion, extendedMeta, opts...)
}

// BuildTimestamp is the default creation time source used by callers that
// stamp a Metadata V1 record alongside a Record; exposed so tests can pin it.
var BuildTimestamp = time.Now
