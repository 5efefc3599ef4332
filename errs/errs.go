// Package errs defines the sentinel errors returned by every RagFile subsystem.
//
// Callers compare against these with errors.Is; the concrete error returned from
// a public function is usually one of these sentinels wrapped with fmt.Errorf("%w")
// for extra context, following the same "small exported sentinel vars" convention
// mebo's section package uses (ErrInvalidHeaderSize, ErrHashCollision, ...).
package errs

import "errors"

var (
	// ErrInvalidArgument is returned when a value supplied to a constructor violates
	// one of the RagFile record invariants (empty text, too-short token sequence,
	// zero-length dense vector, malformed flags, ...).
	ErrInvalidArgument = errors.New("ragfile: invalid argument")

	// ErrTypeMismatch is returned when a dynamically-typed input (as accepted by the
	// host-binding-shaped entry points) contains an element of the wrong type.
	ErrTypeMismatch = errors.New("ragfile: type mismatch")

	// ErrVersionMismatch is returned when a file declares a header version this
	// library does not know how to read.
	ErrVersionMismatch = errors.New("ragfile: version mismatch")

	// ErrTruncated is returned when a byte stream ends before a declared length
	// field is satisfied.
	ErrTruncated = errors.New("ragfile: truncated input")

	// ErrMagicMismatch is returned when the leading four bytes of a stream are not
	// the RagFile magic "RAGF".
	ErrMagicMismatch = errors.New("ragfile: magic mismatch")

	// ErrDimensionMismatch is returned when a similarity kernel is called on two
	// records whose relevant dimensions (signature length, scan vector bits, dense
	// vector length) disagree.
	ErrDimensionMismatch = errors.New("ragfile: dimension mismatch")

	// ErrIO wraps an underlying read/write failure from the platform.
	ErrIO = errors.New("ragfile: io error")

	// ErrScanAborted is returned when a top-k scan's input iterator fails
	// catastrophically, as opposed to a single candidate failing (which is
	// recovered and skipped).
	ErrScanAborted = errors.New("ragfile: scan aborted")

	// ErrHashCollision is returned when two distinct path identifiers hash to
	// the same 64-bit cache key with no way to disambiguate them.
	ErrHashCollision = errors.New("ragfile: hash collision")
)
