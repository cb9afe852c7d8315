package label

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-go/bvgraph/format"
	"github.com/webgraph-go/bvgraph/graph"
)

// buildLabelledFixture encodes a cycle graph of n nodes plus a
// FixedWidthIntLabel(value = source*1000+target) for every arc, writing
// both the underlying .graph trio and the overlay .labels trio under the
// same temp directory.
func buildLabelledFixture(t *testing.T, n int) (base string, adj [][]int64, wantLabels [][]uint64) {
	t.Helper()

	adj = make([][]int64, n)
	wantLabels = make([][]uint64, n)
	for i := 0; i < n; i++ {
		next := int64((i + 1) % n)
		adj[i] = []int64{next}
		wantLabels[i] = []uint64{uint64(i)*1000 + uint64(next)}
	}

	src, err := graph.NewMemGraph(adj)
	require.NoError(t, err)

	dir := t.TempDir()
	graphBase := filepath.Join(dir, "g")
	require.NoError(t, graph.NewEncoder(graph.DefaultEncoderConfig()).EncodeToFiles(src, graphBase))

	labels := &MemLabelling{Labels: make([][]Label, n)}
	for i := range wantLabels {
		labels.Labels[i] = make([]Label, len(wantLabels[i]))
		for j, v := range wantLabels[i] {
			labels.Labels[i][j] = &FixedWidthIntLabel{Width: 24, Value: v}
		}
	}

	labelBase := filepath.Join(dir, "gl")
	require.NoError(t, NewEncoder().EncodeToFiles(src, labels, "fixedwidthintlabel(bits=24)", "g", labelBase))

	return labelBase, adj, wantLabels
}

func drainLabelled(t *testing.T, it LabelledSuccessorIterator) ([]int64, []uint64) {
	t.Helper()
	var targets []int64
	var values []uint64
	for {
		target, lbl, ok := it.Next()
		if !ok {
			break
		}
		targets = append(targets, target)
		values = append(values, lbl.(*FixedWidthIntLabel).Value)
	}

	return targets, values
}

func TestLabelledGraph_RandomAccessRoundTrip(t *testing.T) {
	base, adj, wantLabels := buildLabelledFixture(t, 10)

	g, err := OpenFiles(base)
	require.NoError(t, err)
	require.True(t, g.RandomAccess())
	require.Equal(t, int64(10), g.NumNodes())

	for x := 0; x < len(adj); x++ {
		it, err := g.LabelledSuccessors(int64(x))
		require.NoError(t, err)
		targets, values := drainLabelled(t, it)
		require.Equal(t, adj[x], targets)
		require.Equal(t, wantLabels[x], values)
	}
}

func TestLabelledGraph_MappedModeMatches(t *testing.T) {
	base, adj, wantLabels := buildLabelledFixture(t, 16)

	g, err := OpenFiles(base, WithLoadMode(format.Mapped), WithUnderlyingOptions(graph.WithLoadMode(format.Mapped)))
	require.NoError(t, err)

	for x := 0; x < len(adj); x++ {
		it, err := g.LabelledSuccessors(int64(x))
		require.NoError(t, err)
		targets, values := drainLabelled(t, it)
		require.Equal(t, adj[x], targets)
		require.Equal(t, wantLabels[x], values)
	}
}

func TestLabelledGraph_SequentialIteratorMatchesRandomAccess(t *testing.T) {
	base, adj, wantLabels := buildLabelledFixture(t, 25)

	g, err := OpenFiles(base)
	require.NoError(t, err)

	it, err := g.LabelledNodeIterator(0)
	require.NoError(t, err)

	var gotTargets [][]int64
	var gotLabels [][]uint64
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		targets, values := drainLabelled(t, it.LabelledSuccessors())
		gotTargets = append(gotTargets, targets)
		gotLabels = append(gotLabels, values)
	}

	require.Equal(t, adj, gotTargets)
	require.Equal(t, wantLabels, gotLabels)
}

func TestLabelledGraph_OfflineModeSequentialFromZero(t *testing.T) {
	base, adj, wantLabels := buildLabelledFixture(t, 14)

	g, err := OpenFiles(base, WithLoadMode(format.Offline), WithUnderlyingOptions(graph.WithLoadMode(format.Offline)))
	require.NoError(t, err)
	require.False(t, g.RandomAccess())

	it, err := g.LabelledNodeIterator(0)
	require.NoError(t, err)

	var gotTargets [][]int64
	var gotLabels [][]uint64
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		targets, values := drainLabelled(t, it.LabelledSuccessors())
		gotTargets = append(gotTargets, targets)
		gotLabels = append(gotLabels, values)
	}

	require.Equal(t, adj, gotTargets)
	require.Equal(t, wantLabels, gotLabels)
}

func TestLabelledGraph_RandomOrderMatchesSequentialOrder(t *testing.T) {
	base, adj, _ := buildLabelledFixture(t, 50)

	g, err := OpenFiles(base)
	require.NoError(t, err)

	order := rand.New(rand.NewSource(3)).Perm(len(adj))
	for _, x := range order {
		it, err := g.LabelledSuccessors(int64(x))
		require.NoError(t, err)
		targets, _ := drainLabelled(t, it)
		require.Equal(t, adj[x], targets)
	}
}
