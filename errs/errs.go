// Package errs collects the sentinel errors returned by the bvgraph core so
// callers can distinguish failure kinds with errors.Is rather than parsing
// messages.
package errs

import "errors"

// Format errors: the bit stream or a supporting file did not have the shape
// the reader expected. These are never recoverable; they surface to the caller
// and any iterator that produced one must not be used again.
var (
	ErrTruncatedStream      = errors.New("bvgraph: bit stream truncated")
	ErrInvalidCode          = errors.New("bvgraph: invalid code word")
	ErrOutdegreeOverflow    = errors.New("bvgraph: outdegree exceeds maximum list length")
	ErrReferenceOutOfRange  = errors.New("bvgraph: reference points before node 0 or beyond window")
	ErrResidualCountMismatch = errors.New("bvgraph: residual count does not match outdegree")
	ErrMissingPropertyKey   = errors.New("bvgraph: required property key missing")
	ErrInvalidPropertyValue = errors.New("bvgraph: property value malformed")
	ErrUnknownGraphClass    = errors.New("bvgraph: unknown graphclass")
	ErrInvalidOffsets       = errors.New("bvgraph: offsets stream inconsistent with node count")
	ErrDuplicateTarget      = errors.New("bvgraph: adjacency list contains a repeated target")
	ErrUnsortedTargets      = errors.New("bvgraph: adjacency list is not strictly ascending")
)

// Capability errors: a method was invoked on a graph or iterator that does not
// support it. These signal a programming contract violation, not a data
// problem; callers should gate the call on the relevant capability query
// first (RandomAccess, HasCopiableIterators, ...).
var (
	ErrNotRandomAccess   = errors.New("bvgraph: graph does not support random access")
	ErrOffsetsUnavailable = errors.New("bvgraph: offsets not loaded (OFFLINE mode)")
	ErrNotCopiable       = errors.New("bvgraph: graph does not support flyweight copy")
	ErrStreamExhausted   = errors.New("bvgraph: ONCE-mode stream already consumed")
)

// Argument errors: caller-supplied values are out of the valid domain.
var (
	ErrNodeOutOfRange  = errors.New("bvgraph: node id out of range")
	ErrInvalidSplit    = errors.New("bvgraph: split count must be >= 1")
	ErrNodeOverflow32  = errors.New("bvgraph: node id exceeds 32-bit adapter range")
	ErrInvalidWindow   = errors.New("bvgraph: window size must be >= 0")
	ErrInvalidRefCount = errors.New("bvgraph: maxrefcount must be >= 0")
)

// I/O errors: the underlying byte source failed independent of format.
var (
	ErrClosed = errors.New("bvgraph: operation on a closed graph")
)
