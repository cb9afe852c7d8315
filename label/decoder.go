package label

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/webgraph-go/bvgraph/bitio"
	"github.com/webgraph-go/bvgraph/cache"
	"github.com/webgraph-go/bvgraph/endian"
	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/format"
	"github.com/webgraph-go/bvgraph/graph"
	"github.com/webgraph-go/bvgraph/internal/options"
	"github.com/webgraph-go/bvgraph/succinct"
)

// OpenConfig collects LabelledGraph.Open's tunables, mirroring
// graph.OpenConfig: the load mode (governing both the label stream and, by
// default, the underlying graph), the cache compression algorithm for a
// missing .labelobl, the byte order for cache headers, the logger for
// best-effort cache-miss warnings, and any extra options forwarded to the
// underlying graph's own Open call.
type OpenConfig struct {
	Mode             format.LoadMode
	CacheCompression format.CacheCompressionType
	Endian           endian.EndianEngine
	Logger           *slog.Logger
	UnderlyingOpts   []graph.OpenOption
}

// OpenOption configures Open.
type OpenOption = options.Option[*OpenConfig]

func defaultOpenConfig() *OpenConfig {
	return &OpenConfig{
		Mode:             format.Standard,
		CacheCompression: format.CacheCompressionZstd,
		Endian:           endian.GetLittleEndianEngine(),
		Logger:           slog.Default(),
	}
}

// WithLoadMode selects STANDARD/MAPPED/OFFLINE loading for the label stream.
// ONCE is reused here for the overlay's own "SEQUENTIAL, stream-once"
// mode from spec.md §4.7, since it carries the identical non-restartable
// contract as the underlying graph's ONCE mode.
func WithLoadMode(mode format.LoadMode) OpenOption {
	return options.NoError(func(c *OpenConfig) { c.Mode = mode })
}

// WithCacheCompression selects the algorithm used when (re)writing a
// .labelobl cache file.
func WithCacheCompression(t format.CacheCompressionType) OpenOption {
	return options.NoError(func(c *OpenConfig) { c.CacheCompression = t })
}

// WithLogger overrides the logger used for best-effort cache-miss warnings.
func WithLogger(l *slog.Logger) OpenOption {
	return options.NoError(func(c *OpenConfig) { c.Logger = l })
}

// WithUnderlyingOptions forwards extra graph.OpenOptions to the underlying
// graph's own Open call (e.g. a different load mode than the overlay's).
func WithUnderlyingOptions(opts ...graph.OpenOption) OpenOption {
	return options.NoError(func(c *OpenConfig) { c.UnderlyingOpts = append(c.UnderlyingOpts, opts...) })
}

// LabelledGraph composes an underlying graph.Graph with a parallel per-arc
// label bit stream. It implements graph.Graph by delegating every method to
// the underlying graph unchanged, and adds LabelledSuccessors /
// LabelledNodeIterator for callers that want the labels too.
type LabelledGraph struct {
	props      *Properties
	mode       format.LoadMode
	logger     *slog.Logger
	underlying graph.Graph

	labelSrc     bitio.ByteSource     // nil in OFFLINE and ONCE modes
	labelOffsets succinct.OffsetTable // nil in OFFLINE and ONCE modes

	basePath string

	onceUsed bool
}

var _ graph.Graph = (*LabelledGraph)(nil)

// OpenFiles opens a labelled overlay from basePath+".labels",
// ".labeloffsets", and ".properties", resolving and opening the underlying
// graph named by the properties' underlyinggraph key.
func OpenFiles(basePath string, opts ...OpenOption) (*LabelledGraph, error) {
	cfg := defaultOpenConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	propsFile, err := os.Open(basePath + ".properties")
	if err != nil {
		return nil, err
	}
	defer propsFile.Close()

	props, err := ParseProperties(propsFile, basePath)
	if err != nil {
		return nil, err
	}
	if _, err := NewFromSpec(props.LabelSpec); err != nil {
		return nil, err
	}

	underlyingOpts := cfg.UnderlyingOpts
	if cfg.Mode != format.Once {
		underlyingOpts = append([]graph.OpenOption{graph.WithLoadMode(cfg.Mode)}, cfg.UnderlyingOpts...)
	}
	underlying, err := graph.Open(props.UnderlyingGraph, underlyingOpts...)
	if err != nil {
		return nil, fmt.Errorf("label: opening underlying graph %s: %w", props.UnderlyingGraph, err)
	}

	g := &LabelledGraph{props: props, mode: cfg.Mode, logger: cfg.Logger, underlying: underlying, basePath: basePath}

	switch cfg.Mode {
	case format.Offline:
		return g, nil
	case format.Once:
		return nil, fmt.Errorf("label: OPEN-from-stream constructor required for ONCE/SEQUENTIAL mode")
	}

	labelOffsets, err := g.loadOffsets(basePath, cfg)
	if err != nil {
		return nil, err
	}
	g.labelOffsets = labelOffsets

	switch cfg.Mode {
	case format.Standard:
		data, err := os.ReadFile(basePath + ".labels")
		if err != nil {
			return nil, err
		}
		g.labelSrc = bitio.NewByteArraySource(data)
	case format.Mapped:
		mm, err := bitio.OpenMMapSource(basePath + ".labels")
		if err != nil {
			return nil, err
		}
		g.labelSrc = mm
	default:
		return nil, fmt.Errorf("label: unsupported load mode %s", cfg.Mode)
	}

	return g, nil
}

// OpenOnce wraps a single-use stream pair (underlying graph node iterator
// plus label bit stream) for ONCE/SEQUENTIAL-mode decoding: both are
// consumed exactly once, in lockstep, as the returned LabelledGraph's
// single LabelledNodeIterator is walked.
func OpenOnce(props *Properties, underlying graph.Graph, labelsR io.Reader, logger *slog.Logger) *LabelledGraph {
	if logger == nil {
		logger = slog.Default()
	}

	return &LabelledGraph{props: props, mode: format.Once, logger: logger, underlying: underlying, labelSrc: &labelOnceSource{r: labelsR}}
}

func (g *LabelledGraph) loadOffsets(basePath string, cfg *OpenConfig) (succinct.OffsetTable, error) {
	fingerprint := cache.Fingerprint(g.props.Text())

	if oblFile, err := os.Open(basePath + ".labelobl"); err == nil {
		defer oblFile.Close()
		values, err := cache.LoadOBL(oblFile, cfg.Endian, fingerprint)
		if err == nil {
			return succinct.BuildOffsetTable(values, succinct.DirectOffsetThreshold)
		}
		g.logger.Warn("bvgraph/label: .labelobl cache miss, reconstructing offsets", "path", basePath+".labelobl", "error", err)
	}

	return g.rebuildOffsets(basePath, cfg)
}

func (g *LabelledGraph) rebuildOffsets(basePath string, cfg *OpenConfig) (succinct.OffsetTable, error) {
	offFile, err := os.Open(basePath + ".labeloffsets")
	if err != nil {
		return nil, err
	}
	defer offFile.Close()

	data, err := io.ReadAll(offFile)
	if err != nil {
		return nil, err
	}

	n := g.underlying.NumNodes()
	r := bitio.NewReader(bitio.NewByteArraySource(data))
	values := make([]uint64, n+1)
	var cur uint64
	for i := range values {
		delta, err := r.ReadGamma()
		if err != nil {
			return nil, fmt.Errorf("%w: reading labeloffsets entry %d: %v", errs.ErrInvalidOffsets, i, err)
		}
		cur += delta
		values[i] = cur
	}

	table, err := succinct.BuildOffsetTable(values, succinct.DirectOffsetThreshold)
	if err != nil {
		return nil, err
	}

	if oblFile, err := os.Create(basePath + ".labelobl"); err == nil {
		defer oblFile.Close()
		fingerprint := cache.Fingerprint(g.props.Text())
		if err := cache.SaveOBL(oblFile, cfg.Endian, values, fingerprint, cfg.CacheCompression); err != nil {
			g.logger.Warn("bvgraph/label: failed to write .labelobl cache", "path", basePath+".labelobl", "error", err)
		}
	}

	return table, nil
}

func (g *LabelledGraph) NumNodes() int64               { return g.underlying.NumNodes() }
func (g *LabelledGraph) NumArcs() int64                 { return g.underlying.NumArcs() }
func (g *LabelledGraph) RandomAccess() bool             { return g.underlying.RandomAccess() && g.labelSrc != nil && g.labelOffsets != nil }
func (g *LabelledGraph) Outdegree(x int64) (int64, error) { return g.underlying.Outdegree(x) }
func (g *LabelledGraph) HasCopiableIterators() bool     { return false }

// Successors returns the underlying graph's plain (unlabelled) successor
// iterator, so a LabelledGraph still satisfies graph.Graph for callers that
// only want adjacency. Use LabelledSuccessors for the labelled view.
func (g *LabelledGraph) Successors(x int64) (graph.SuccessorIterator, error) {
	return g.underlying.Successors(x)
}

// LabelledSuccessors returns an iterator over node x's (target, label)
// pairs. Requires RandomAccess(); the label reader seeks to
// labelOffsets.Get(x) and decodes in lockstep with the underlying
// successor iterator, so only labels actually visited are decoded.
func (g *LabelledGraph) LabelledSuccessors(x int64) (LabelledSuccessorIterator, error) {
	if !g.RandomAccess() {
		return nil, errs.ErrOffsetsUnavailable
	}

	succ, err := g.underlying.Successors(x)
	if err != nil {
		return nil, err
	}

	lbl, err := NewFromSpec(g.props.LabelSpec)
	if err != nil {
		return nil, err
	}

	r := bitio.NewReader(g.labelSrc)
	r.SeekBit(int64(g.labelOffsets.Get(x)))

	return &labelledSuccessorIterator{succ: succ, r: r, source: x, lbl: lbl}, nil
}

func (g *LabelledGraph) NodeIterator(from int64) (graph.NodeIterator, error) {
	return g.underlying.NodeIterator(from)
}

// LabelledNodeIterator returns a sequential iterator starting at node from,
// pairing the underlying graph's node iterator with a label bit-stream
// reader. In STANDARD/MAPPED mode the reader seeks directly to
// labelOffsets.Get(from); OFFLINE only supports from == 0, reading the
// .labels file from its start; ONCE consumes the wrapped single-use reader
// from wherever OpenOnce left it, exactly once.
func (g *LabelledGraph) LabelledNodeIterator(from int64) (*LabelledNodeIterator, error) {
	underlyingIt, err := g.underlying.NodeIterator(from)
	if err != nil {
		return nil, err
	}

	switch g.mode {
	case format.Offline:
		if from != 0 {
			return nil, errs.ErrOffsetsUnavailable
		}
		src, err := bitio.OpenFileSource(g.basePath + ".labels")
		if err != nil {
			return nil, err
		}

		return &LabelledNodeIterator{underlying: underlyingIt, r: bitio.NewReader(src), lbl: mustLabel(g.props.LabelSpec), closeSrc: src}, nil
	case format.Once:
		if from != 0 {
			return nil, errs.ErrOffsetsUnavailable
		}
		if g.onceUsed {
			return nil, errs.ErrStreamExhausted
		}
		g.onceUsed = true

		return &LabelledNodeIterator{underlying: underlyingIt, r: bitio.NewReader(g.labelSrc), lbl: mustLabel(g.props.LabelSpec)}, nil
	default:
		if !g.RandomAccess() {
			return nil, errs.ErrOffsetsUnavailable
		}
		r := bitio.NewReader(g.labelSrc)
		r.SeekBit(int64(g.labelOffsets.Get(from)))

		return &LabelledNodeIterator{underlying: underlyingIt, r: r, lbl: mustLabel(g.props.LabelSpec)}, nil
	}
}

func mustLabel(spec string) Label {
	lbl, err := NewFromSpec(spec)
	if err != nil {
		// OpenFiles validates labelspec before returning; a failure here
		// means an OpenOnce caller supplied an unresolvable labelspec or
		// the registry changed underfoot.
		panic(fmt.Sprintf("label: re-resolving labelspec %q: %v", spec, err))
	}

	return lbl
}

func (g *LabelledGraph) SplitNodeIterators(k int) ([]graph.NodeIterator, error) {
	return g.underlying.SplitNodeIterators(k)
}

func (g *LabelledGraph) Copy() (graph.Graph, error) {
	if !g.RandomAccess() {
		return nil, errs.ErrNotCopiable
	}
	underlyingCopy, err := g.underlying.Copy()
	if err != nil {
		return nil, err
	}

	return &LabelledGraph{props: g.props, mode: g.mode, logger: g.logger, underlying: underlyingCopy, labelSrc: g.labelSrc, labelOffsets: g.labelOffsets, basePath: g.basePath}, nil
}

// LabelledNodeIterator walks nodes in ascending id order, pairing each
// node's underlying successors with labels decoded from a label bit-stream
// reader advancing in lockstep.
type LabelledNodeIterator struct {
	underlying graph.NodeIterator
	r          *bitio.Reader
	lbl        Label
	closeSrc   bitio.ByteSource
	cur        int64
}

func (it *LabelledNodeIterator) HasNext() bool {
	hasNext := it.underlying.HasNext()
	if !hasNext && it.closeSrc != nil {
		it.closeSrc.Close()
		it.closeSrc = nil
	}

	return hasNext
}

// Next advances to the next node, returning its id.
func (it *LabelledNodeIterator) Next() (int64, error) {
	x, err := it.underlying.Next()
	if err != nil {
		return 0, err
	}
	it.cur = x

	return x, nil
}

// Outdegree returns the outdegree of the node last returned by Next.
func (it *LabelledNodeIterator) Outdegree() int64 { return it.underlying.Outdegree() }

// LabelledSuccessors returns an iterator over the current node's (target,
// label) pairs, decoding labels from the shared sequential reader.
func (it *LabelledNodeIterator) LabelledSuccessors() LabelledSuccessorIterator {
	return &labelledSuccessorIterator{succ: it.underlying.Successors(), r: it.r, source: it.cur, lbl: it.lbl}
}

// labelOnceSource adapts a single-use io.Reader to bitio.ByteSource,
// mirroring graph.onceSource: only forward-continuous reads are accepted.
type labelOnceSource struct {
	r   io.Reader
	pos int64
}

func (s *labelOnceSource) ReadAt(p []byte, off int64) error {
	if off != s.pos {
		return errs.ErrStreamExhausted
	}
	if _, err := io.ReadFull(s.r, p); err != nil {
		return err
	}
	s.pos += int64(len(p))

	return nil
}

func (s *labelOnceSource) Len() int64 { return -1 }

func (s *labelOnceSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
