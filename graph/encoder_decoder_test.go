package graph

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/format"
)

func cycleAdjacency(n int) [][]int64 {
	adj := make([][]int64, n)
	for i := range adj {
		if n == 1 {
			adj[i] = []int64{}
			continue
		}
		next := int64((i + 1) % n)
		prev := int64((i - 1 + n) % n)
		if next == prev {
			adj[i] = []int64{next}
		} else if next < prev {
			adj[i] = []int64{next, prev}
		} else {
			adj[i] = []int64{prev, next}
		}
	}

	return adj
}

// binaryInTreeAdjacency builds a complete binary tree of the given depth with
// every edge pointing from child to parent, then symmetrises it so every arc
// also appears in the reverse direction.
func binaryInTreeAdjacency(depth int) [][]int64 {
	n := (1 << uint(depth+1)) - 1
	adj := make([]map[int64]struct{}, n)
	for i := range adj {
		adj[i] = map[int64]struct{}{}
	}
	for i := 1; i < n; i++ {
		parent := int64((i - 1) / 2)
		child := int64(i)
		adj[parent][child] = struct{}{}
		adj[child][parent] = struct{}{}
	}

	out := make([][]int64, n)
	for i, set := range adj {
		for v := range set {
			out[i] = append(out[i], v)
		}
	}

	return out
}

func erdosRenyiAdjacency(n int, p float64, seed int64) [][]int64 {
	r := rand.New(rand.NewSource(seed))
	adj := make([][]int64, n)
	for i := range adj {
		adj[i] = []int64{}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if r.Float64() < p {
				adj[i] = append(adj[i], int64(j))
			}
		}
	}

	return adj
}

func encodeToTempFiles(t *testing.T, src Graph, cfg EncoderConfig) string {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "g")

	enc := NewEncoder(cfg)
	require.NoError(t, enc.EncodeToFiles(src, base))

	return base
}

// assertMatchesSource checks dec's random-access view against src for every
// node, then checks a full sequential walk against the same adjacency.
func assertMatchesSource(t *testing.T, dec *Decoder, src *MemGraph) {
	t.Helper()

	require.Equal(t, src.NumNodes(), dec.NumNodes())
	require.Equal(t, src.NumArcs(), dec.NumArcs())

	for x := int64(0); x < src.NumNodes(); x++ {
		wantOD, err := src.Outdegree(x)
		require.NoError(t, err)
		gotOD, err := dec.Outdegree(x)
		require.NoError(t, err)
		require.Equal(t, wantOD, gotOD, "outdegree mismatch at node %d", x)

		wantIt, err := src.Successors(x)
		require.NoError(t, err)
		gotIt, err := dec.Successors(x)
		require.NoError(t, err)
		require.Equal(t, drainSuccessors(wantIt), drainSuccessors(gotIt), "successors mismatch at node %d", x)
	}

	seqIt, err := dec.NodeIterator(0)
	require.NoError(t, err)
	var got [][]int64
	for seqIt.HasNext() {
		_, err := seqIt.Next()
		require.NoError(t, err)
		got = append(got, drainSuccessors(seqIt.Successors()))
	}
	srcIt, err := src.NodeIterator(0)
	require.NoError(t, err)
	var want [][]int64
	for srcIt.HasNext() {
		_, err := srcIt.Next()
		require.NoError(t, err)
		want = append(want, drainSuccessors(srcIt.Successors()))
	}
	require.Equal(t, want, got)
}

func runRoundTripCase(t *testing.T, name string, adj [][]int64, cfg EncoderConfig) {
	t.Run(name, func(t *testing.T) {
		src, err := NewMemGraph(adj)
		require.NoError(t, err)

		base := encodeToTempFiles(t, src, cfg)

		dec, err := OpenFiles(base)
		require.NoError(t, err)
		assertMatchesSource(t, dec, src)

		mapped, err := OpenFiles(base, WithLoadMode(format.Mapped))
		require.NoError(t, err)
		assertMatchesSource(t, mapped, src)
	})
}

func TestEncodeDecode_ConcreteScenarios(t *testing.T) {
	cfg := DefaultEncoderConfig()

	runRoundTripCase(t, "empty_graph", [][]int64{}, cfg)
	runRoundTripCase(t, "single_node", [][]int64{{}}, cfg)
	runRoundTripCase(t, "bidirectional_cycle_40", cycleAdjacency(40), cfg)
	runRoundTripCase(t, "binary_in_tree_depth_10_symmetrised", binaryInTreeAdjacency(10), cfg)
	runRoundTripCase(t, "erdos_renyi_1000_0.001", erdosRenyiAdjacency(1000, 0.001, 1), cfg)
}

func TestEncodeDecode_OfflineModeSequentialOnly(t *testing.T) {
	adj := cycleAdjacency(40)
	src, err := NewMemGraph(adj)
	require.NoError(t, err)

	base := encodeToTempFiles(t, src, DefaultEncoderConfig())

	dec, err := OpenFiles(base, WithLoadMode(format.Offline))
	require.NoError(t, err)

	_, err = dec.Outdegree(0)
	require.ErrorIs(t, err, errs.ErrOffsetsUnavailable)

	it, err := dec.NodeIterator(0)
	require.NoError(t, err)
	var got [][]int64
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		got = append(got, drainSuccessors(it.Successors()))
	}
	require.Equal(t, adj, got)

	_, err = dec.NodeIterator(5)
	require.ErrorIs(t, err, errs.ErrOffsetsUnavailable)
}

func TestEncodeDecode_OnceModeSingleUse(t *testing.T) {
	adj := cycleAdjacency(12)
	src, err := NewMemGraph(adj)
	require.NoError(t, err)

	var graphBuf, offsetsBuf bytes.Buffer
	enc := NewEncoder(DefaultEncoderConfig())
	props, err := enc.EncodeStreams(src, &graphBuf, &offsetsBuf)
	require.NoError(t, err)

	dec := OpenOnce(props, &graphBuf, nil)
	it, err := dec.NodeIterator(0)
	require.NoError(t, err)

	var got [][]int64
	for it.HasNext() {
		_, err := it.Next()
		require.NoError(t, err)
		got = append(got, drainSuccessors(it.Successors()))
	}
	require.Equal(t, adj, got)

	_, err = dec.NodeIterator(0)
	require.ErrorIs(t, err, errs.ErrStreamExhausted)
}

func TestEncodeDecode_SplitNodeIteratorsCoverWholeGraph(t *testing.T) {
	adj := erdosRenyiAdjacency(200, 0.02, 7)
	src, err := NewMemGraph(adj)
	require.NoError(t, err)

	base := encodeToTempFiles(t, src, DefaultEncoderConfig())
	dec, err := OpenFiles(base)
	require.NoError(t, err)

	iters, err := dec.SplitNodeIterators(4)
	require.NoError(t, err)

	var got [][]int64
	for _, it := range iters {
		for it.HasNext() {
			_, err := it.Next()
			require.NoError(t, err)
			got = append(got, drainSuccessors(it.Successors()))
		}
	}
	require.Equal(t, adj, got)
}
