// Package bvgraph re-exports the entry points most callers need — opening
// and encoding a BV-compressed graph and its optional arc-labelled overlay
// — so a simple program can depend on one import instead of reaching into
// bitio, succinct, graph, and label directly. Callers that need the full
// surface (custom ByteSource backings, the succinct structures standalone,
// registering a new graph or label class) still import those packages
// themselves; nothing here is hidden behind this convenience layer.
package bvgraph

import (
	"github.com/webgraph-go/bvgraph/format"
	"github.com/webgraph-go/bvgraph/graph"
	"github.com/webgraph-go/bvgraph/label"
)

// Load modes, re-exported so callers configuring Open rarely need the
// format package directly.
const (
	Standard = format.Standard
	Mapped   = format.Mapped
	Offline  = format.Offline
	Once     = format.Once
)

// Graph is the capability interface every graph source implements.
type Graph = graph.Graph

// OpenOption configures Open.
type OpenOption = graph.OpenOption

// WithLoadMode selects STANDARD/MAPPED/OFFLINE/ONCE loading.
func WithLoadMode(mode format.LoadMode) OpenOption { return graph.WithLoadMode(mode) }

// Open opens a compressed graph from basePath+".graph"/".offsets"/".properties",
// dispatching on the graphclass recorded in .properties via graph.Open's
// registry.
func Open(basePath string, opts ...OpenOption) (Graph, error) {
	return graph.Open(basePath, opts...)
}

// EncoderConfig parameterizes the BV adjacency encoder.
type EncoderConfig = graph.EncoderConfig

// DefaultEncoderConfig returns WebGraph's own reference defaults: W=7, R=3,
// L=4, K=3, residuals under ζ_3.
func DefaultEncoderConfig() EncoderConfig { return graph.DefaultEncoderConfig() }

// NewMemGraph builds an in-memory random-access Graph from adjacency lists,
// the usual source for Encode when the graph isn't already a streaming
// node iterator.
func NewMemGraph(adjacency [][]int64) (*graph.MemGraph, error) {
	return graph.NewMemGraph(adjacency)
}

// Encode writes src as a BV-compressed graph at basePath+".graph"/".offsets"/
// ".properties", using cfg's window size, max reference count, minimum
// interval length, and residual code.
func Encode(src Graph, basePath string, cfg EncoderConfig) error {
	return graph.NewEncoder(cfg).EncodeToFiles(src, basePath)
}

// LabelledGraph composes a Graph with a parallel per-arc label bit stream.
type LabelledGraph = label.LabelledGraph

// LabelOpenOption configures OpenLabelled.
type LabelOpenOption = label.OpenOption

// WithLabelLoadMode selects STANDARD/MAPPED/OFFLINE loading for the label
// overlay (ONCE is the overlay's "stream once" mode, see label.OpenOnce).
func WithLabelLoadMode(mode format.LoadMode) LabelOpenOption { return label.WithLoadMode(mode) }

// OpenLabelled opens an arc-labelled overlay from basePath+".labels"/
// ".labeloffsets"/".properties", resolving and opening the underlying graph
// named by the properties' underlyinggraph key.
func OpenLabelled(basePath string, opts ...LabelOpenOption) (*LabelledGraph, error) {
	return label.OpenFiles(basePath, opts...)
}

// Int32Graph is the 32-bit-id view of Graph, for callers restricted to
// int32 node ids.
type Int32Graph = graph.Adapter32

// NewInt32Graph wraps g for 32-bit callers.
func NewInt32Graph(g Graph) *Int32Graph { return graph.NewAdapter32(g) }

// MemLabelling is an in-memory per-arc label source for EncodeLabelled.
type MemLabelling = label.MemLabelling

// EncodeLabelled writes labels for underlying's arcs, in full sequential
// traversal order, to basePath+".labels"/".labeloffsets"/".properties".
// underlyingBasename is recorded as the overlay's underlyinggraph property,
// resolved relative to basePath's directory on load.
func EncodeLabelled(underlying Graph, labels *MemLabelling, labelSpec, underlyingBasename, basePath string) error {
	return label.NewEncoder().EncodeToFiles(underlying, labels, labelSpec, underlyingBasename, basePath)
}
