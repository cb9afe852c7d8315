package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-go/bvgraph/errs"
)

func TestMemGraph_BasicAccess(t *testing.T) {
	g, err := NewMemGraph([][]int64{{2, 1}, {2}, {}})
	require.NoError(t, err)

	require.Equal(t, int64(3), g.NumNodes())
	require.Equal(t, int64(3), g.NumArcs())
	require.True(t, g.RandomAccess())

	od, err := g.Outdegree(0)
	require.NoError(t, err)
	require.Equal(t, int64(2), od)

	succ, err := g.Successors(0)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, drainSuccessors(succ))
}

func TestMemGraph_DuplicateTargetRejected(t *testing.T) {
	_, err := NewMemGraph([][]int64{{1, 1}})
	require.ErrorIs(t, err, errs.ErrDuplicateTarget)
}

func TestMemGraph_OutOfRange(t *testing.T) {
	g, err := NewMemGraph([][]int64{{0}})
	require.NoError(t, err)

	_, err = g.Outdegree(5)
	require.ErrorIs(t, err, errs.ErrNodeOutOfRange)
}

func TestMemGraph_NodeIteratorMatchesAdjacency(t *testing.T) {
	adj := [][]int64{{1, 2}, {2}, {0}, {}}
	g, err := NewMemGraph(adj)
	require.NoError(t, err)

	it, err := g.NodeIterator(0)
	require.NoError(t, err)

	var got [][]int64
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		got = append(got, drainSuccessors(it.Successors()))
	}
	require.Equal(t, adj, got)
}

func TestMemGraph_SplitNodeIteratorsCoverAll(t *testing.T) {
	adj := make([][]int64, 10)
	for i := range adj {
		adj[i] = []int64{}
	}
	g, err := NewMemGraph(adj)
	require.NoError(t, err)

	iters, err := g.SplitNodeIterators(3)
	require.NoError(t, err)
	require.Len(t, iters, 3)

	var seen []int64
	for _, it := range iters {
		for it.HasNext() {
			x, err := it.Next()
			require.NoError(t, err)
			seen = append(seen, x)
		}
	}
	require.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
}

func TestMemGraph_SplitInvalidCount(t *testing.T) {
	g, err := NewMemGraph([][]int64{{}})
	require.NoError(t, err)

	_, err = g.SplitNodeIterators(0)
	require.ErrorIs(t, err, errs.ErrInvalidSplit)
}

func TestMemGraph_CopyIsFlyweight(t *testing.T) {
	g, err := NewMemGraph([][]int64{{0}})
	require.NoError(t, err)

	cp, err := g.Copy()
	require.NoError(t, err)
	require.Same(t, g, cp.(*MemGraph))
}
