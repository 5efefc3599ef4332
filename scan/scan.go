// Package scan implements the top-k streaming scan (spec §4.6): it walks a
// pull-based sequence of file identifiers, scores each against a query
// record, and keeps the best k in a bounded min-heap.
//
// Per-candidate failures (I/O, bad magic, truncation) are logged and
// skipped rather than aborting the scan (spec §7); the logger is an
// injectable *zap.Logger collaborator, following the pattern
// other_examples/rag-core.go uses for its RAG core (a logger passed in, not
// a package global), defaulting to zap.NewNop() so callers who don't care
// about diagnostics pay nothing for them.
package scan

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/dleemiller/RagFile/cache"
	"github.com/dleemiller/RagFile/errs"
	"github.com/dleemiller/RagFile/format"
	"github.com/dleemiller/RagFile/header"
	"github.com/dleemiller/RagFile/internal/hash"
	"github.com/dleemiller/RagFile/ragfileio"
	"github.com/dleemiller/RagFile/record"
	"github.com/dleemiller/RagFile/similarity"
	"go.uber.org/zap"
)

// Candidate is one scored result from a top-k scan.
type Candidate struct {
	Score      float64
	Identifier string
}

// Opener opens a candidate identifier (typically a file path) for reading.
// The default, OpenFile, treats identifiers as filesystem paths; callers
// sourcing identifiers from another medium (object storage, a database BLOB
// column) supply their own.
type Opener func(identifier string) (io.ReadCloser, error)

// OpenFile opens identifier as a filesystem path.
func OpenFile(identifier string) (io.ReadCloser, error) {
	f, err := os.Open(identifier)
	if err != nil {
		return nil, fmt.Errorf("scan: open %s: %w", identifier, errs.ErrIO)
	}
	return f, nil
}

// heapItem augments a Candidate with its insertion sequence, so ties break
// by stable insertion order (spec §4.6).
type heapItem struct {
	Candidate
	seq int
}

// minHeap is a bounded min-heap over heapItem, keyed by score ascending.
type minHeap []heapItem

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	// Among equal scores the later insertion ranks lower, so it is evicted
	// first and listed after earlier ones in the descending result.
	return h[i].seq > h[j].seq
}
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Match scores every identifier yielded by paths against query using method,
// keeping the top-k results in a bounded min-heap (spec §4.6). It returns
// the results sorted descending by score.
//
// manifest, if non-nil, is consulted before opening each candidate: on a
// fingerprint hit for a jaccard/hamming scan, the cached header is scored
// directly and the file is never opened (spec §4.6 step ii, "reads the
// header only" — here satisfied from the cache instead of the disk); a miss
// falls back to opener and the decoded header is stored back for next time.
// The cosine path always reads the body, so a cache hit there still saves
// nothing and is treated as a miss. manifest is a pure performance
// side-channel (SPEC_FULL.md §E): a nil manifest, a stat failure, or a
// corrupt cache entry all just mean "read the file."
//
// logger, if nil, defaults to zap.NewNop(). ctx is checked between
// candidates for cooperative cancellation (spec §5); on cancellation the
// partial heap (sorted) is returned alongside ctx.Err().
func Match(ctx context.Context, query *record.Record, paths iter.Seq[string], topK int, method format.SimilarityMethod, opener Opener, manifest *cache.Manifest, logger *zap.Logger) ([]Candidate, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("scan: top_k must be positive: %w", errs.ErrInvalidArgument)
	}
	if opener == nil {
		opener = OpenFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &minHeap{}
	heap.Init(h)
	seq := 0
	var iterErr error

	paths(func(identifier string) bool {
		seq++
		select {
		case <-ctx.Done():
			return false
		default:
		}

		score, err := scoreOne(query, identifier, method, opener, manifest)
		if err != nil {
			if errors.Is(err, errs.ErrScanAborted) {
				iterErr = err
				return false
			}
			logger.Warn("scan: skipping candidate",
				zap.String("identifier", identifier),
				zap.Error(err),
			)
			return true
		}

		item := heapItem{Candidate: Candidate{Score: score, Identifier: identifier}, seq: seq}
		if h.Len() < topK {
			heap.Push(h, item)
		} else if item.Score > (*h)[0].Score {
			heap.Pop(h)
			heap.Push(h, item)
		}
		return true
	})

	if iterErr != nil {
		return sortedDescending(h), iterErr
	}
	if err := ctx.Err(); err != nil {
		return sortedDescending(h), err
	}
	return sortedDescending(h), nil
}

func sortedDescending(h *minHeap) []Candidate {
	items := make([]heapItem, h.Len())
	copy(items, *h)
	out := make([]Candidate, len(items))
	// Repeated Pop on a copy yields ascending order; fill from the back for descending.
	tmp := minHeap(items)
	heap.Init(&tmp)
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&tmp).(heapItem).Candidate
	}
	return out
}

// scoreOne opens identifier, reads only what method requires (spec §4.6
// steps ii-iv), and scores it against query. When manifest is non-nil and
// identifier names a file whose mtime/size still matches a cached entry,
// the jaccard/hamming paths score directly from the cached header and skip
// opener entirely.
func scoreOne(query *record.Record, identifier string, method format.SimilarityMethod, opener Opener, manifest *cache.Manifest) (float64, error) {
	var info os.FileInfo
	if manifest != nil && method != format.MethodCosine {
		if fi, statErr := os.Stat(identifier); statErr == nil {
			info = fi
			if cached, ok := manifest.Get(identifier, fi); ok {
				return scoreHeader(query, cached, method)
			}
		}
	}

	rc, err := opener(identifier)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	h, err := header.Decode(rc)
	if err != nil {
		return 0, err
	}
	if manifest != nil && info != nil {
		// Best-effort: a cache write failure (e.g. a path-hash collision) never
		// fails the candidate, since the cache is a pure performance side
		// channel and this candidate's header was already read successfully.
		_ = manifest.Put(identifier, info, h)
	}

	switch method {
	case format.MethodJaccard, format.MethodHamming:
		return scoreHeader(query, h, method)
	case format.MethodCosine:
		candidate, err := ragfileio.LoadBody(h, rc)
		if err != nil {
			return 0, err
		}
		rows := candidate.Embeddings
		if len(rows) == 0 {
			rows = [][]float32{candidate.DenseVector}
		}
		return similarity.CosineReduce(query.DenseVector, rows, format.CosineMax)
	default:
		return 0, fmt.Errorf("scan: unknown method %v: %w", method, errs.ErrInvalidArgument)
	}
}

// scoreHeader scores a header alone against query for the two methods that
// never need the body (spec §4.6 step iii).
func scoreHeader(query *record.Record, h *header.Header, method format.SimilarityMethod) (float64, error) {
	switch method {
	case format.MethodJaccard:
		return similarity.Jaccard(query.Minhash, h.Minhash)
	case format.MethodHamming:
		return similarity.Hamming(query.ScanVector, h.ScanVector, h.ScanVectorDim)
	default:
		return 0, fmt.Errorf("scan: unknown method %v: %w", method, errs.ErrInvalidArgument)
	}
}

// IdentifierHash produces a stable 64-bit identifier hash, used by callers
// that need to deduplicate paths across shards before merging heaps
// (spec §5's "shard the path iterator externally and merge heaps").
func IdentifierHash(identifier string) uint64 {
	return hash.ID(identifier)
}
