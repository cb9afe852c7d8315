// Package label implements the arc-labelled overlay: a per-arc payload
// stored in a bit stream parallel to an underlying Graph's adjacency
// stream. The core only requires that a label can serialize itself to and
// deserialize itself from a bitio stream; it never inspects a label's
// concrete type.
package label

import (
	"fmt"
	"sync"

	"github.com/webgraph-go/bvgraph/bitio"
	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/graph"
)

// Label is the capability every arc payload implements. A label is handed
// back to callers reused across successive iterator advances: callers that
// want to retain one past the next call must Copy it first. ReadFrom
// and WriteTo both receive the arc's source node, since some label
// specs (gamma labels, in the upstream design) scale their width with the
// source's own degree.
type Label interface {
	// BitLength returns the number of bits WriteTo would write for
	// source, without writing them.
	BitLength(source int64) int
	// WriteTo serializes the label for an arc leaving source.
	WriteTo(w *bitio.Writer, source int64) error
	// ReadFrom deserializes a label for an arc leaving source, overwriting
	// the receiver's own state.
	ReadFrom(r *bitio.Reader, source int64) error
	// Copy returns an independent label with the same value, safe to keep
	// across subsequent iterator advances.
	Copy() Label
}

// Constructor builds a fresh, zero-valued Label for a labelspec string's
// parameters. It is the registry's replacement for reflective
// instantiation of a label class by name.
type Constructor func(params string) (Label, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{
		"fixedwidthintlabel": func(params string) (Label, error) { return NewFixedWidthLabelFromParams(params) },
	}
)

// RegisterSpec adds or replaces the constructor used for a labelspec class
// name (the part of labelspec before any parameters).
func RegisterSpec(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// NewFromSpec parses a labelspec string of the form "classname(params)" or
// bare "classname" and dispatches to the registered Constructor.
func NewFromSpec(spec string) (Label, error) {
	name, params := spec, ""
	if i := indexByte(spec, '('); i >= 0 && spec[len(spec)-1] == ')' {
		name = spec[:i]
		params = spec[i+1 : len(spec)-1]
	}

	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: labelspec %q", errs.ErrUnknownGraphClass, spec)
	}

	return ctor(params)
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}

	return -1
}

// LabelledSuccessorIterator pairs each successor with its label. Advancing
// it yields the next (target, label) pair in the order the underlying
// graph's SuccessorIterator produces targets; the returned Label is reused
// across calls per the zero-allocation protocol documented on Label.
type LabelledSuccessorIterator interface {
	// Next returns the next target and its label, or ok=false once
	// exhausted. The Label value is only valid until the next call.
	Next() (target int64, lbl Label, ok bool)
}

// labelledSuccessorIterator composes an underlying graph.SuccessorIterator
// with a label bit-stream reader positioned at the arc's starting bit.
type labelledSuccessorIterator struct {
	succ   graph.SuccessorIterator
	r      *bitio.Reader
	source int64
	lbl    Label
	err    error
}

func (it *labelledSuccessorIterator) Next() (int64, Label, bool) {
	if it.err != nil {
		return 0, nil, false
	}

	target, ok := it.succ.Next()
	if !ok {
		return 0, nil, false
	}

	if err := it.lbl.ReadFrom(it.r, it.source); err != nil {
		it.err = err

		return 0, nil, false
	}

	return target, it.lbl, true
}
