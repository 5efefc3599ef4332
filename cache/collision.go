package cache

import (
	"fmt"

	"github.com/dleemiller/RagFile/errs"
)

// pathTracker detects collisions in the 64-bit path hash Key produces, the
// same role mebo's internal/collision.Tracker plays for metric-name hashes:
// a map keyed by the narrow hash plus an ordered list of the paths that have
// been seen, so a collision can be reported with both paths involved instead
// of silently overwriting a manifest entry.
type pathTracker struct {
	byKey   map[uint64]string
	ordered []string
}

func newPathTracker() *pathTracker {
	return &pathTracker{byKey: make(map[uint64]string)}
}

// track records path under its Key() hash. It returns ErrHashCollision,
// wrapping the colliding path's identity, if a different path already
// occupies that hash.
func (t *pathTracker) track(path string) error {
	key := Key(path)
	if existing, ok := t.byKey[key]; ok {
		if existing == path {
			return nil
		}
		return fmt.Errorf("%s collides with %s: %w", path, existing, errs.ErrHashCollision)
	}
	t.byKey[key] = path
	t.ordered = append(t.ordered, path)
	return nil
}

// forget removes path's hash entry, if present, so a later Invalidate can be
// followed by a fresh Put for a different path without a stale collision.
func (t *pathTracker) forget(path string) {
	key := Key(path)
	if t.byKey[key] != path {
		return
	}
	delete(t.byKey, key)
	for i, p := range t.ordered {
		if p == path {
			t.ordered = append(t.ordered[:i], t.ordered[i+1:]...)
			break
		}
	}
}
