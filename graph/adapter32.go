package graph

import (
	"math"

	"github.com/webgraph-go/bvgraph/errs"
)

// Int32SuccessorIterator is the 32-bit-id view of SuccessorIterator.
type Int32SuccessorIterator interface {
	Next() (target int32, ok bool)
}

// Adapter32 wraps a Graph for callers restricted to 32-bit node ids, the
// "wrapping adapter" variant named among the capability-interface
// implementations in spec.md's §4.6/§9 design notes. It is a thin
// translation layer: every call validates the 32-bit domain and delegates
// to the wrapped Graph unchanged.
//
// The boundary check is applied consistently at the node id itself (x),
// never at a derived value such as x-1, resolving spec.md §9's open
// question about the two inconsistent boundary checks observed in the
// original source.
type Adapter32 struct {
	g Graph
}

// NewAdapter32 wraps g for 32-bit callers.
func NewAdapter32(g Graph) *Adapter32 {
	return &Adapter32{g: g}
}

// checkRange32 validates x against the 32-bit adapter's domain, [0, 2^31).
func checkRange32(x int64) error {
	if x < 0 || x >= 1<<31 {
		return errs.ErrNodeOverflow32
	}

	return nil
}

// NumNodes returns the number of nodes. Returns errs.ErrNodeOverflow32 if
// the underlying graph has more nodes than an int32 can hold.
func (a *Adapter32) NumNodes() (int32, error) {
	n := a.g.NumNodes()
	if n < 0 || n > math.MaxInt32 {
		return 0, errs.ErrNodeOverflow32
	}

	return int32(n), nil
}

// NumArcs returns the total arc count, or -1 if unknown.
func (a *Adapter32) NumArcs() int64 { return a.g.NumArcs() }

// RandomAccess reports whether Outdegree/Successors/Copy are supported.
func (a *Adapter32) RandomAccess() bool { return a.g.RandomAccess() }

// Outdegree returns the outdegree of node x.
func (a *Adapter32) Outdegree(x int32) (int64, error) {
	if err := checkRange32(int64(x)); err != nil {
		return 0, err
	}

	return a.g.Outdegree(int64(x))
}

// Successors returns an iterator over node x's successors, translated to
// 32-bit targets. Returns errs.ErrNodeOverflow32 if any successor does not
// fit in 32 bits.
func (a *Adapter32) Successors(x int32) (Int32SuccessorIterator, error) {
	if err := checkRange32(int64(x)); err != nil {
		return nil, err
	}

	it, err := a.g.Successors(int64(x))
	if err != nil {
		return nil, err
	}

	return &int32SuccessorIterator{it: it}, nil
}

// Copy returns an independent flyweight sharing the wrapped graph's
// immutable backing storage.
func (a *Adapter32) Copy() (*Adapter32, error) {
	cp, err := a.g.Copy()
	if err != nil {
		return nil, err
	}

	return &Adapter32{g: cp}, nil
}

type int32SuccessorIterator struct {
	it  SuccessorIterator
	err error
}

func (i *int32SuccessorIterator) Next() (int32, bool) {
	if i.err != nil {
		return 0, false
	}

	v, ok := i.it.Next()
	if !ok {
		return 0, false
	}

	if err := checkRange32(v); err != nil {
		i.err = err
		return 0, false
	}

	return int32(v), true
}

// Err returns the first error encountered during iteration, if any (e.g. a
// target outside the 32-bit domain).
func (i *int32SuccessorIterator) Err() error { return i.err }
