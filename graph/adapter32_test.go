package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-go/bvgraph/errs"
)

func TestAdapter32_BasicAccess(t *testing.T) {
	g, err := NewMemGraph([][]int64{{2, 1}, {2}, {}})
	require.NoError(t, err)

	a := NewAdapter32(g)

	n, err := a.NumNodes()
	require.NoError(t, err)
	require.Equal(t, int32(3), n)
	require.True(t, a.RandomAccess())

	od, err := a.Outdegree(0)
	require.NoError(t, err)
	require.Equal(t, int64(2), od)

	succ, err := a.Successors(0)
	require.NoError(t, err)

	var got []int32
	for {
		v, ok := succ.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.NoError(t, succ.(*int32SuccessorIterator).Err())
	require.Equal(t, []int32{1, 2}, got)
}

func TestAdapter32_NegativeNodeRejected(t *testing.T) {
	g, err := NewMemGraph([][]int64{{0}})
	require.NoError(t, err)

	a := NewAdapter32(g)

	_, err = a.Outdegree(-1)
	require.ErrorIs(t, err, errs.ErrNodeOverflow32)
}

func TestCheckRange32_UpperBound(t *testing.T) {
	require.NoError(t, checkRange32(1<<31-1))
	require.ErrorIs(t, checkRange32(1<<31), errs.ErrNodeOverflow32)
}

func TestAdapter32_CopyIsFlyweight(t *testing.T) {
	g, err := NewMemGraph([][]int64{{0}})
	require.NoError(t, err)

	a := NewAdapter32(g)
	cp, err := a.Copy()
	require.NoError(t, err)
	require.Same(t, g, cp.g.(*MemGraph))
}
