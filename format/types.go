// Package format defines the small tagged-value enums shared across RagFile's
// subsystems: the codec used by the optional header cache, which similarity kernel
// a scan or pairwise comparison uses, and how a multi-vector cosine comparison
// reduces per-chunk scores to one.
//
// The scan/comparison tags play the role mebo's EncodingType/CompressionType play
// for its blob encoders: a scan is configured by passing one of these tags, not by
// subclassing — see the "Polymorphism over similarity methods" design note in
// SPEC_FULL.md.
package format

type (
	// CompressionType selects the codec used by the header cache (cache package).
	// It has no bearing on the RagFile wire format itself, which carries no
	// compressed sections.
	CompressionType uint8

	// SimilarityMethod selects the kernel a top-k scan scores candidates with.
	SimilarityMethod uint8

	// CosineMode selects how a query vector is reduced against a record's
	// embeddings matrix (one row per chunk) when the record stores more than a
	// single dense vector.
	CosineMode uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

const (
	MethodJaccard SimilarityMethod = 0x1 // Jaccard similarity over MinHash signatures.
	MethodHamming SimilarityMethod = 0x2 // Hamming similarity over bit-packed scan vectors.
	MethodCosine  SimilarityMethod = 0x3 // Cosine similarity over dense embedding vectors.
)

const (
	CosineMax CosineMode = 0x1 // Best-matching chunk.
	CosineAvg CosineMode = 0x2 // Mean over all chunks.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (m SimilarityMethod) String() string {
	switch m {
	case MethodJaccard:
		return "Jaccard"
	case MethodHamming:
		return "Hamming"
	case MethodCosine:
		return "Cosine"
	default:
		return "Unknown"
	}
}

func (c CosineMode) String() string {
	switch c {
	case CosineMax:
		return "Max"
	case CosineAvg:
		return "Avg"
	default:
		return "Unknown"
	}
}
