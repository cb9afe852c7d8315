// Package graph implements the BV adjacency codec: the encoder and decoder
// for the referentially-compressed bit stream described by the .graph,
// .offsets, and .properties file trio, plus the capability interface every
// graph source (compressed, in-memory, wrapped) implements so algorithms
// never need to know which kind of graph they were handed.
package graph

import (
	"github.com/webgraph-go/bvgraph/errs"
)

// SuccessorIterator yields one node's successors in strictly ascending
// order. Next returns ok=false once exhausted; it must not be called again
// afterwards.
type SuccessorIterator interface {
	Next() (target int64, ok bool)
}

// NodeIterator walks nodes in strictly ascending id order.
type NodeIterator interface {
	// HasNext reports whether another node remains.
	HasNext() bool
	// Next returns the next node id and advances the cursor.
	Next() (int64, error)
	// Outdegree returns the outdegree of the node last returned by Next.
	Outdegree() int64
	// Successors returns a fresh iterator over the successors of the node
	// last returned by Next.
	Successors() SuccessorIterator
	// Copy returns an independent iterator over [current, upperBound),
	// sharing immutable backing storage. Only valid when the source graph's
	// HasCopiableIterators() is true.
	Copy(upperBound int64) (NodeIterator, error)
}

// Graph is the capability interface every graph source implements.
// Algorithms depend only on this contract; the concrete source may be a
// compressed BV graph, an in-memory adjacency list, or a wrapping adapter.
type Graph interface {
	// NumNodes returns the number of nodes, a non-negative 64-bit count.
	NumNodes() int64
	// NumArcs returns the total arc count, or -1 if unknown.
	NumArcs() int64
	// RandomAccess reports whether Outdegree/Successors/Copy are supported.
	RandomAccess() bool
	// Outdegree returns the outdegree of node x. Returns
	// errs.ErrNotRandomAccess if RandomAccess() is false.
	Outdegree(x int64) (int64, error)
	// Successors returns an iterator over node x's successors. Returns
	// errs.ErrNotRandomAccess if RandomAccess() is false.
	Successors(x int64) (SuccessorIterator, error)
	// NodeIterator returns a sequential iterator starting at node from.
	NodeIterator(from int64) (NodeIterator, error)
	// HasCopiableIterators reports whether NodeIterator.Copy is supported.
	HasCopiableIterators() bool
	// SplitNodeIterators partitions [0, NumNodes()) into k node iterators
	// whose concatenation, in order, equals NodeIterator(0). Trailing empty
	// iterators are permitted when k exceeds what the graph can usefully
	// split into.
	SplitNodeIterators(k int) ([]NodeIterator, error)
	// Copy returns an independent flyweight sharing immutable backing
	// storage. Required when RandomAccess() is true; returns
	// errs.ErrNotCopiable otherwise.
	Copy() (Graph, error)
}

// drainSuccessors collects a SuccessorIterator into a sorted slice; used by
// callers (tests, the encoder's in-memory path) that want the whole list
// rather than streaming it.
func drainSuccessors(it SuccessorIterator) []int64 {
	var out []int64
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// checkNodeRange validates x against [0, n).
func checkNodeRange(x, n int64) error {
	if x < 0 || x >= n {
		return errs.ErrNodeOutOfRange
	}

	return nil
}
