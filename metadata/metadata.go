// Package metadata implements Metadata V1, the fixed-size packed record
// conventionally carried as a RagFileHeader's extended_metadata blob
// (spec §3).
//
// It is grounded on _examples/original_source/ragfile/metadata/metadata_v1.py,
// the ctypes packed struct this library's predecessor serialized the same
// way: SHA-256 of the full source text for provenance, a timestamp, and a
// base64 wrapping for transport in text contexts. Per spec §9 Open Question
// (i), this module fixes the richer variant — dataset_name/dataset_row_id in
// place of the original's model_id/tokenizer_id (tokenizer_id now lives on
// the RagFileHeader itself, so duplicating it here would be redundant).
package metadata

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dleemiller/RagFile/endian"
	"github.com/dleemiller/RagFile/errs"
)

const (
	numLabels        = 16
	datasetNameLen   = 128
	datasetRowIDLen  = 16
	sourcefileNameLn = 128
	sourcefileHashLn = 64

	// Size is the exact packed length of a serialized V1 record.
	Size = 2*numLabels + datasetNameLen + datasetRowIDLen + sourcefileNameLn + sourcefileHashLn + 4 + 8
)

// V1 is the in-memory form of Metadata V1 (spec §3).
type V1 struct {
	Labels           [numLabels]uint16
	DatasetName      string
	DatasetRowID     string
	SourcefileName   string
	SourcefileHash   string // lowercase hex, truncated to 64 chars
	ChunkNumber      int32
	CreationTimestamp uint64 // unix seconds
}

func putFixed(b []byte, s string) {
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
}

func getFixed(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

// SerializeV1 builds a packed Metadata V1 record. sourceText is the full
// document (not the chunk); sourcefile_hash is SHA-256 of sourceText,
// matching huggingface.py's per-document hashing of the whole source
// before stamping every chunk's metadata with the same hash.
func SerializeV1(labels []uint16, datasetName, datasetRowID, sourceText, sourcefileName string, chunkNumber int32, now time.Time) (*V1, error) {
	if len(labels) > numLabels {
		return nil, fmt.Errorf("metadata: %d labels exceeds max %d: %w", len(labels), numLabels, errs.ErrInvalidArgument)
	}

	v := &V1{
		DatasetName:       datasetName,
		DatasetRowID:      datasetRowID,
		SourcefileName:    sourcefileName,
		ChunkNumber:       chunkNumber,
		CreationTimestamp: uint64(now.Unix()),
	}
	copy(v.Labels[:], labels)

	sum := sha256.Sum256([]byte(sourceText))
	v.SourcefileHash = hex.EncodeToString(sum[:])[:sourcefileHashLn]

	return v, nil
}

// Bytes packs v into the fixed-size Metadata V1 wire layout.
func (v *V1) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()
	out := make([]byte, Size)
	off := 0

	for _, l := range v.Labels {
		engine.PutUint16(out[off:], l)
		off += 2
	}

	putFixed(out[off:off+datasetNameLen], v.DatasetName)
	off += datasetNameLen

	putFixed(out[off:off+datasetRowIDLen], v.DatasetRowID)
	off += datasetRowIDLen

	putFixed(out[off:off+sourcefileNameLn], v.SourcefileName)
	off += sourcefileNameLn

	putFixed(out[off:off+sourcefileHashLn], v.SourcefileHash)
	off += sourcefileHashLn

	engine.PutUint32(out[off:], uint32(v.ChunkNumber))
	off += 4

	engine.PutUint64(out[off:], v.CreationTimestamp)
	off += 8

	return out
}

// DeserializeV1 unpacks a raw Metadata V1 byte slice.
func DeserializeV1(data []byte) (*V1, error) {
	if len(data) != Size {
		return nil, fmt.Errorf("metadata: got %d bytes, want %d: %w", len(data), Size, errs.ErrTruncated)
	}
	engine := endian.GetLittleEndianEngine()
	v := &V1{}
	off := 0

	for i := range v.Labels {
		v.Labels[i] = engine.Uint16(data[off:])
		off += 2
	}

	v.DatasetName = getFixed(data[off : off+datasetNameLen])
	off += datasetNameLen

	v.DatasetRowID = getFixed(data[off : off+datasetRowIDLen])
	off += datasetRowIDLen

	v.SourcefileName = getFixed(data[off : off+sourcefileNameLn])
	off += sourcefileNameLn

	v.SourcefileHash = getFixed(data[off : off+sourcefileHashLn])
	off += sourcefileHashLn

	v.ChunkNumber = int32(engine.Uint32(data[off:]))
	off += 4

	v.CreationTimestamp = engine.Uint64(data[off:])
	off += 8

	return v, nil
}

// Base64Encode is the convenience transport wrapping for embedding a V1
// record in a text context; the canonical form inside a RagFile remains the
// raw packed bytes (spec §9).
func Base64Encode(v *V1) string {
	return base64.StdEncoding.EncodeToString(v.Bytes())
}

// Base64Decode reverses Base64Encode.
func Base64Decode(s string) (*V1, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("metadata: invalid base64: %w", errs.ErrInvalidArgument)
	}
	return DeserializeV1(data)
}
