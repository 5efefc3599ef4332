// Package ragfileio serializes and deserializes Record values to/from the
// RagFile byte stream: header then body, little-endian throughout, magic and
// version and every length field validated on load (spec §4.5, §6).
package ragfileio

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/dleemiller/RagFile/endian"
	"github.com/dleemiller/RagFile/errs"
	"github.com/dleemiller/RagFile/float16"
	"github.com/dleemiller/RagFile/header"
	"github.com/dleemiller/RagFile/record"
)

// Dump writes r to w: header (spec §3) followed by the body (text,
// token_ids, optional embeddings matrix).
func Dump(r *record.Record, w io.Writer) error {
	h := r.ToHeader()
	if err := h.Encode(w); err != nil {
		return err
	}

	engine := endian.GetLittleEndianEngine()
	lenBuf := make([]byte, 4)

	engine.PutUint32(lenBuf, uint32(len(r.Text)))
	if _, err := w.Write(lenBuf); err != nil {
		return fmt.Errorf("ragfileio: write text_len: %w", errs.ErrIO)
	}
	if _, err := io.WriteString(w, r.Text); err != nil {
		return fmt.Errorf("ragfileio: write text: %w", errs.ErrIO)
	}

	engine.PutUint32(lenBuf, uint32(len(r.TokenIDs)))
	if _, err := w.Write(lenBuf); err != nil {
		return fmt.Errorf("ragfileio: write token_ids_len: %w", errs.ErrIO)
	}
	tokBuf := make([]byte, 4*len(r.TokenIDs))
	for i, id := range r.TokenIDs {
		engine.PutUint32(tokBuf[i*4:], id)
	}
	if _, err := w.Write(tokBuf); err != nil {
		return fmt.Errorf("ragfileio: write token_ids: %w", errs.ErrIO)
	}

	rows := uint32(len(r.Embeddings))
	cols := uint32(0)
	if rows > 0 {
		cols = uint32(len(r.Embeddings[0]))
	}
	engine.PutUint32(lenBuf, rows)
	if _, err := w.Write(lenBuf); err != nil {
		return fmt.Errorf("ragfileio: write embeddings_rows: %w", errs.ErrIO)
	}
	engine.PutUint32(lenBuf, cols)
	if _, err := w.Write(lenBuf); err != nil {
		return fmt.Errorf("ragfileio: write embeddings_cols: %w", errs.ErrIO)
	}
	for _, row := range r.Embeddings {
		if r.StoreAsF16 {
			enc := float16.EncodeSlice(row)
			rb := make([]byte, 2*len(enc))
			for i, v := range enc {
				engine.PutUint16(rb[i*2:], v)
			}
			if _, err := w.Write(rb); err != nil {
				return fmt.Errorf("ragfileio: write embeddings row: %w", errs.ErrIO)
			}
		} else {
			rb := make([]byte, 4*len(row))
			for i, v := range row {
				engine.PutUint32(rb[i*4:], math.Float32bits(v))
			}
			if _, err := w.Write(rb); err != nil {
				return fmt.Errorf("ragfileio: write embeddings row: %w", errs.ErrIO)
			}
		}
	}

	return nil
}

// Dumps is Dump, returning the serialized bytes directly.
func Dumps(r *record.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Dump(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads a Record from src.
func Load(src io.Reader) (*record.Record, error) {
	h, err := header.Decode(src)
	if err != nil {
		return nil, err
	}
	return LoadBody(h, src)
}

// LoadBody reads a Record's body (text, token ids, optional embeddings
// matrix) from src given an already-decoded header h, picking up exactly
// where header.Decode left off. Exported so a caller that must inspect the
// header before deciding whether to read the body at all (the top-k
// scanner's cosine path, spec §4.6 step iv) can reuse the body parser
// directly instead of re-encoding the header to replay it through Load.
func LoadBody(h *header.Header, src io.Reader) (*record.Record, error) {
	engine := endian.GetLittleEndianEngine()
	lenBuf := make([]byte, 4)

	if _, err := io.ReadFull(src, lenBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	textLen := engine.Uint32(lenBuf)
	textBuf := make([]byte, textLen)
	if _, err := io.ReadFull(src, textBuf); err != nil {
		return nil, truncatedOrIO(err)
	}

	if _, err := io.ReadFull(src, lenBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	tokenIDsLen := engine.Uint32(lenBuf)
	tokIDsBuf := make([]byte, 4*tokenIDsLen)
	if _, err := io.ReadFull(src, tokIDsBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	tokenIDs := make([]uint32, tokenIDsLen)
	for i := range tokenIDs {
		tokenIDs[i] = engine.Uint32(tokIDsBuf[i*4:])
	}

	if _, err := io.ReadFull(src, lenBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	rows := engine.Uint32(lenBuf)
	if _, err := io.ReadFull(src, lenBuf); err != nil {
		return nil, truncatedOrIO(err)
	}
	cols := engine.Uint32(lenBuf)

	var embeddings [][]float32
	if rows > 0 {
		embeddings = make([][]float32, rows)
		for i := range embeddings {
			row := make([]float32, cols)
			if h.HasDenseF16() {
				rb := make([]byte, 2*cols)
				if _, err := io.ReadFull(src, rb); err != nil {
					return nil, truncatedOrIO(err)
				}
				raw := make([]uint16, cols)
				for j := range raw {
					raw[j] = engine.Uint16(rb[j*2:])
				}
				copy(row, float16.DecodeSlice(raw))
			} else {
				rb := make([]byte, 4*cols)
				if _, err := io.ReadFull(src, rb); err != nil {
					return nil, truncatedOrIO(err)
				}
				for j := range row {
					row[j] = math.Float32frombits(engine.Uint32(rb[j*4:]))
				}
			}
			embeddings[i] = row
		}
	}

	dense := h.DenseVectorF32
	if h.HasDenseF16() {
		dense = float16.DecodeSlice(h.DenseVectorF16)
	}

	r := &record.Record{
		TokenizerID:     h.TokenizerID,
		EmbeddingID:     h.EmbeddingID,
		MetadataVersion: h.MetadataVersion,
		ExtendedMeta:    h.ExtendedMeta,
		Text:            string(textBuf),
		TokenIDs:        tokenIDs,
		DenseVector:     dense,
		StoreAsF16:      h.HasDenseF16(),
		Embeddings:      embeddings,
		Minhash:         h.Minhash,
		ScanVector:      h.ScanVector,
	}
	return r, nil
}

// Loads is Load over an in-memory byte slice.
func Loads(data []byte) (*record.Record, error) {
	return Load(bytes.NewReader(data))
}

func truncatedOrIO(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("ragfileio: %w", errs.ErrTruncated)
	}
	return fmt.Errorf("ragfileio: %w: %w", errs.ErrIO, err)
}
