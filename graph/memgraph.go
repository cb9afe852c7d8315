package graph

import (
	"sort"

	"github.com/webgraph-go/bvgraph/errs"
)

// MemGraph is a random-access, fully in-memory Graph. It is the reference
// implementation used by tests and as the encoder's source when the input
// graph already lives in memory rather than arriving from a sequential
// iterator (e.g. the ASCII/edge-list reader this core treats as an external
// collaborator).
type MemGraph struct {
	adj [][]int64 // adj[x] is the sorted, deduplicated successor list of x
}

var _ Graph = (*MemGraph)(nil)

// NewMemGraph builds a MemGraph over adjacency lists. Each list is copied
// and sorted; duplicate targets are an error since a single adjacency list
// may not contain multi-edges.
func NewMemGraph(adjacency [][]int64) (*MemGraph, error) {
	adj := make([][]int64, len(adjacency))
	for i, list := range adjacency {
		cp := append([]int64(nil), list...)
		sort.Slice(cp, func(a, b int) bool { return cp[a] < cp[b] })
		for j := 1; j < len(cp); j++ {
			if cp[j] == cp[j-1] {
				return nil, errs.ErrDuplicateTarget
			}
		}
		adj[i] = cp
	}

	return &MemGraph{adj: adj}, nil
}

func (g *MemGraph) NumNodes() int64 { return int64(len(g.adj)) }

func (g *MemGraph) NumArcs() int64 {
	var total int64
	for _, list := range g.adj {
		total += int64(len(list))
	}

	return total
}

func (g *MemGraph) RandomAccess() bool { return true }

func (g *MemGraph) Outdegree(x int64) (int64, error) {
	if err := checkNodeRange(x, g.NumNodes()); err != nil {
		return 0, err
	}

	return int64(len(g.adj[x])), nil
}

func (g *MemGraph) Successors(x int64) (SuccessorIterator, error) {
	if err := checkNodeRange(x, g.NumNodes()); err != nil {
		return nil, err
	}

	return &sliceSuccessorIterator{targets: g.adj[x]}, nil
}

func (g *MemGraph) NodeIterator(from int64) (NodeIterator, error) {
	if from < 0 || from > g.NumNodes() {
		return nil, errs.ErrNodeOutOfRange
	}

	return &memNodeIterator{g: g, cur: from - 1, upper: g.NumNodes()}, nil
}

func (g *MemGraph) HasCopiableIterators() bool { return true }

func (g *MemGraph) SplitNodeIterators(k int) ([]NodeIterator, error) {
	if k < 1 {
		return nil, errs.ErrInvalidSplit
	}

	n := g.NumNodes()
	chunk := (n + int64(k) - 1) / int64(k)
	iters := make([]NodeIterator, k)
	for i := 0; i < k; i++ {
		lo := int64(i) * chunk
		hi := lo + chunk
		if lo > n {
			lo = n
		}
		if hi > n {
			hi = n
		}
		iters[i] = &memNodeIterator{g: g, cur: lo - 1, upper: hi}
	}

	return iters, nil
}

func (g *MemGraph) Copy() (Graph, error) {
	return g, nil // backing adjacency slices are never mutated after construction
}

type sliceSuccessorIterator struct {
	targets []int64
	idx     int
}

func (it *sliceSuccessorIterator) Next() (int64, bool) {
	if it.idx >= len(it.targets) {
		return 0, false
	}
	v := it.targets[it.idx]
	it.idx++

	return v, true
}

type memNodeIterator struct {
	g     *MemGraph
	cur   int64
	upper int64
}

func (it *memNodeIterator) HasNext() bool { return it.cur+1 < it.upper }

func (it *memNodeIterator) Next() (int64, error) {
	if !it.HasNext() {
		return 0, errs.ErrNodeOutOfRange
	}
	it.cur++

	return it.cur, nil
}

func (it *memNodeIterator) Outdegree() int64 {
	return int64(len(it.g.adj[it.cur]))
}

func (it *memNodeIterator) Successors() SuccessorIterator {
	return &sliceSuccessorIterator{targets: it.g.adj[it.cur]}
}

func (it *memNodeIterator) Copy(upperBound int64) (NodeIterator, error) {
	if upperBound > it.upper {
		upperBound = it.upper
	}

	return &memNodeIterator{g: it.g, cur: it.cur, upper: upperBound}, nil
}
