// Package header implements the RagFileHeader: the fixed-field-order,
// little-endian, zero-padding-exact prefix of every RagFile (spec §3, §6).
//
// Unlike mebo's section package, whose NumericHeader/TextHeader are
// fixed-size and parsed from one pre-sliced byte range, RagFileHeader is
// variable-length (its minhash signature, scan vector, dense vector, and
// extended metadata blob are all length-prefixed). Encode/Decode therefore
// read and write sequentially against an io.Writer/io.Reader rather than a
// fixed byte slice, the same "hand-written (de)serializer, not
// compiler-dependent struct layout" discipline spec §9 calls for, adapted to
// a streaming shape.
package header

import (
	"fmt"
	"io"
	"math"

	"github.com/dleemiller/RagFile/endian"
	"github.com/dleemiller/RagFile/errs"
)

// Magic is the four-byte ASCII magic every RagFile begins with.
var Magic = [4]byte{'R', 'A', 'G', 'F'}

// CurrentVersion is the only header version this package can decode.
const CurrentVersion uint16 = 1

// Flag bits within Header.Flags.
const (
	FlagDenseF16       uint16 = 1 << 0 // dense vector stored as float16 (else f32)
	FlagScanVector     uint16 = 1 << 1 // scan vector section present
	FlagEmbeddingsBody uint16 = 1 << 2 // body carries an embeddings matrix
)

const (
	tokenizerIDLen = 128
	embeddingIDLen = 128
	maxMetadataLen = 64 * 1024
)

// validPermutes enumerates the only signature lengths spec §3 allows.
var validPermutes = map[uint16]bool{64: true, 128: true, 256: true, 512: true}

// Header is the in-memory, fully decoded form of RagFileHeader.
type Header struct {
	Version         uint16
	Flags           uint16
	TokenizerID     string
	EmbeddingID     string
	MetadataVersion uint16
	MinhashPermute  uint16
	Minhash         []uint64
	ScanVectorDim   uint32
	ScanVector      []byte
	DenseVectorDim  uint32
	// DenseVectorF16/DenseVectorF32 is populated depending on FlagDenseF16;
	// exactly one of the two is non-nil after a successful Decode.
	DenseVectorF16 []uint16
	DenseVectorF32 []float32
	ExtendedMeta   []byte
}

// HasDenseF16 reports whether the dense vector is stored as float16.
func (h *Header) HasDenseF16() bool { return h.Flags&FlagDenseF16 != 0 }

// HasScanVector reports whether a scan vector section is present.
func (h *Header) HasScanVector() bool { return h.Flags&FlagScanVector != 0 }

// HasEmbeddingsBody reports whether the body carries an embeddings matrix.
func (h *Header) HasEmbeddingsBody() bool { return h.Flags&FlagEmbeddingsBody != 0 }

func putFixedString(b []byte, s string) {
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
}

func getFixedString(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// Encode writes h to w in the exact wire layout of spec §3.
func (h *Header) Encode(w io.Writer) error {
	engine := endian.GetLittleEndianEngine()

	if _, err := w.Write(Magic[:]); err != nil {
		return fmt.Errorf("header: write magic: %w", errs.ErrIO)
	}

	buf := make([]byte, 4)
	engine.PutUint16(buf[:2], h.Version)
	if _, err := w.Write(buf[:2]); err != nil {
		return fmt.Errorf("header: write version: %w", errs.ErrIO)
	}
	engine.PutUint16(buf[:2], h.Flags)
	if _, err := w.Write(buf[:2]); err != nil {
		return fmt.Errorf("header: write flags: %w", errs.ErrIO)
	}

	idBuf := make([]byte, tokenizerIDLen)
	putFixedString(idBuf, h.TokenizerID)
	if _, err := w.Write(idBuf); err != nil {
		return fmt.Errorf("header: write tokenizer_id: %w", errs.ErrIO)
	}
	embBuf := make([]byte, embeddingIDLen)
	putFixedString(embBuf, h.EmbeddingID)
	if _, err := w.Write(embBuf); err != nil {
		return fmt.Errorf("header: write embedding_id: %w", errs.ErrIO)
	}

	engine.PutUint16(buf[:2], h.MetadataVersion)
	if _, err := w.Write(buf[:2]); err != nil {
		return fmt.Errorf("header: write metadata_version: %w", errs.ErrIO)
	}

	engine.PutUint16(buf[:2], h.MinhashPermute)
	if _, err := w.Write(buf[:2]); err != nil {
		return fmt.Errorf("header: write minhash_permute: %w", errs.ErrIO)
	}
	mhBuf := make([]byte, 8*len(h.Minhash))
	for i, v := range h.Minhash {
		engine.PutUint64(mhBuf[i*8:], v)
	}
	if _, err := w.Write(mhBuf); err != nil {
		return fmt.Errorf("header: write minhash: %w", errs.ErrIO)
	}

	engine.PutUint32(buf, h.ScanVectorDim)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("header: write scan_vector_dim: %w", errs.ErrIO)
	}
	if _, err := w.Write(h.ScanVector); err != nil {
		return fmt.Errorf("header: write scan_vector: %w", errs.ErrIO)
	}

	engine.PutUint32(buf, h.DenseVectorDim)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("header: write dense_vector_dim: %w", errs.ErrIO)
	}
	if h.HasDenseF16() {
		dv := make([]byte, 2*len(h.DenseVectorF16))
		for i, v := range h.DenseVectorF16 {
			engine.PutUint16(dv[i*2:], v)
		}
		if _, err := w.Write(dv); err != nil {
			return fmt.Errorf("header: write dense_vector: %w", errs.ErrIO)
		}
	} else {
		dv := make([]byte, 4*len(h.DenseVectorF32))
		for i, v := range h.DenseVectorF32 {
			engine.PutUint32(dv[i*4:], math.Float32bits(v))
		}
		if _, err := w.Write(dv); err != nil {
			return fmt.Errorf("header: write dense_vector: %w", errs.ErrIO)
		}
	}

	engine.PutUint32(buf, uint32(len(h.ExtendedMeta)))
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("header: write extended_metadata_len: %w", errs.ErrIO)
	}
	if _, err := w.Write(h.ExtendedMeta); err != nil {
		return fmt.Errorf("header: write extended_metadata: %w", errs.ErrIO)
	}

	return nil
}

// Decode reads a Header from r, validating magic, version, and every length
// field against the bytes actually available (spec §4.5).
func Decode(r io.Reader) (*Header, error) {
	engine := endian.GetLittleEndianEngine()

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, truncatedOrIO(err)
	}
	if magic != Magic {
		return nil, errs.ErrMagicMismatch
	}

	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf[:2]); err != nil {
		return nil, truncatedOrIO(err)
	}
	version := engine.Uint16(buf[:2])
	if version != CurrentVersion {
		return nil, fmt.Errorf("header: version %d: %w", version, errs.ErrVersionMismatch)
	}

	h := &Header{Version: version}

	if _, err := io.ReadFull(r, buf[:2]); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.Flags = engine.Uint16(buf[:2])
	if h.Flags&^(FlagDenseF16|FlagScanVector|FlagEmbeddingsBody) != 0 {
		return nil, fmt.Errorf("header: reserved flag bits set: %w", errs.ErrInvalidArgument)
	}

	idBuf := make([]byte, tokenizerIDLen)
	if _, err := io.ReadFull(r, idBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.TokenizerID = getFixedString(idBuf)

	embBuf := make([]byte, embeddingIDLen)
	if _, err := io.ReadFull(r, embBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.EmbeddingID = getFixedString(embBuf)

	if _, err := io.ReadFull(r, buf[:2]); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.MetadataVersion = engine.Uint16(buf[:2])

	if _, err := io.ReadFull(r, buf[:2]); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.MinhashPermute = engine.Uint16(buf[:2])
	if !validPermutes[h.MinhashPermute] {
		return nil, fmt.Errorf("header: minhash_permute %d: %w", h.MinhashPermute, errs.ErrInvalidArgument)
	}
	mhBuf := make([]byte, 8*int(h.MinhashPermute))
	if _, err := io.ReadFull(r, mhBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.Minhash = make([]uint64, h.MinhashPermute)
	for i := range h.Minhash {
		h.Minhash[i] = engine.Uint64(mhBuf[i*8:])
	}

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.ScanVectorDim = engine.Uint32(buf)
	if h.ScanVectorDim%64 != 0 {
		return nil, fmt.Errorf("header: scan_vector_dim %d not a multiple of 64: %w", h.ScanVectorDim, errs.ErrInvalidArgument)
	}
	scanLen := int((h.ScanVectorDim + 7) / 8)
	if scanLen > 0 {
		h.ScanVector = make([]byte, scanLen)
		if _, err := io.ReadFull(r, h.ScanVector); err != nil {
			return nil, truncatedOrIO(err)
		}
	}

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncatedOrIO(err)
	}
	h.DenseVectorDim = engine.Uint32(buf)

	if h.HasDenseF16() {
		dv := make([]byte, 2*int(h.DenseVectorDim))
		if _, err := io.ReadFull(r, dv); err != nil {
			return nil, truncatedOrIO(err)
		}
		h.DenseVectorF16 = make([]uint16, h.DenseVectorDim)
		for i := range h.DenseVectorF16 {
			h.DenseVectorF16[i] = engine.Uint16(dv[i*2:])
		}
	} else {
		dv := make([]byte, 4*int(h.DenseVectorDim))
		if _, err := io.ReadFull(r, dv); err != nil {
			return nil, truncatedOrIO(err)
		}
		h.DenseVectorF32 = make([]float32, h.DenseVectorDim)
		for i := range h.DenseVectorF32 {
			h.DenseVectorF32[i] = math.Float32frombits(engine.Uint32(dv[i*4:]))
		}
	}

	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncatedOrIO(err)
	}
	metaLen := engine.Uint32(buf)
	if metaLen > maxMetadataLen {
		return nil, fmt.Errorf("header: extended_metadata_len %d exceeds %d: %w", metaLen, maxMetadataLen, errs.ErrInvalidArgument)
	}
	if metaLen > 0 {
		h.ExtendedMeta = make([]byte, metaLen)
		if _, err := io.ReadFull(r, h.ExtendedMeta); err != nil {
			return nil, truncatedOrIO(err)
		}
	}

	return h, nil
}

func truncatedOrIO(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("header: %w", errs.ErrTruncated)
	}
	return fmt.Errorf("header: %w: %w", errs.ErrIO, err)
}
