package graph

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
	"github.com/webgraph-go/bvgraph/internal/options"
	"github.com/webgraph-go/bvgraph/succinct"
)

// OpenConfig collects Open's tunables: the load mode, the cache compression
// algorithm to try when writing a missing .obl, the byte order for cache
// headers, and the logger used for best-effort warnings (a stale .obl is a
// cache miss, not a load failure, and gets logged once rather than silently
// swallowed or propagated as an error).
type OpenConfig struct {
	Mode             format.LoadMode
	CacheCompression format.CacheCompressionType
	Endian           endian.EndianEngine
	Logger           *slog.Logger
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

// WithLoadMode selects STANDARD/MAPPED/OFFLINE/ONCE loading.
func WithLoadMode(mode format.LoadMode) OpenOption {
	return options.NoError(func(c *OpenConfig) { c.Mode = mode })
}

// WithCacheCompression selects the algorithm used when (re)writing a .obl
// cache file alongside a graph opened without one.
func WithCacheCompression(t format.CacheCompressionType) OpenOption {
	return options.NoError(func(c *OpenConfig) { c.CacheCompression = t })
}

// WithLogger overrides the logger used for best-effort cache-miss warnings.
func WithLogger(l *slog.Logger) OpenOption {
	return options.NoError(func(c *OpenConfig) { c.Logger = l })
}

// Decoder provides random and sequential access to a BV-compressed graph
// backed by a .graph/.offsets/.properties file trio.
type Decoder struct {
	props  *Properties
	mode   format.LoadMode
	logger *slog.Logger

	src     bitio.ByteSource     // nil in OFFLINE and ONCE modes
	offsets succinct.OffsetTable // nil in OFFLINE and ONCE modes

	basePath string // retained for OFFLINE's fresh-file-handle sequential path

	onceUsed bool // ONCE mode: NodeIterator may be obtained exactly once
}

var _ Graph = (*Decoder)(nil)

// OpenFiles opens a graph from basePath+".graph", ".offsets", and
// ".properties". STANDARD and MAPPED modes load (or reconstruct) the offsets
// table eagerly; OFFLINE defers everything to NodeIterator(0).
func OpenFiles(basePath string, opts ...OpenOption) (*Decoder, error) {
	cfg := defaultOpenConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	propsFile, err := os.Open(basePath + ".properties")
	if err != nil {
		return nil, err
	}
	defer propsFile.Close()

	props, err := ParseProperties(propsFile)
	if err != nil {
		return nil, err
	}

	d := &Decoder{props: props, mode: cfg.Mode, logger: cfg.Logger, basePath: basePath}

	switch cfg.Mode {
	case format.Offline:
		return d, nil
	case format.Once:
		return nil, fmt.Errorf("bvgraph: OFFLINE/ONCE-specific constructor required for ONCE mode")
	}

	offsets, err := d.loadOffsets(basePath, props, cfg)
	if err != nil {
		return nil, err
	}
	d.offsets = offsets

	switch cfg.Mode {
	case format.Standard:
		data, err := os.ReadFile(basePath + ".graph")
		if err != nil {
			return nil, err
		}
		d.src = bitio.NewByteArraySource(data)
	case format.Mapped:
		mm, err := bitio.OpenMMapSource(basePath + ".graph")
		if err != nil {
			return nil, err
		}
		d.src = mm
	default:
		return nil, fmt.Errorf("bvgraph: unsupported load mode %s", cfg.Mode)
	}

	return d, nil
}

// OpenOnce wraps a single-use stream over the .graph bit stream for ONCE-mode
// sequential decoding. r is consumed as the returned Decoder's single
// NodeIterator is walked; it supports no random access and no restart.
func OpenOnce(props *Properties, r io.Reader, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}

	return &Decoder{props: props, mode: format.Once, logger: logger, src: &onceSource{r: r}}
}

// loadOffsets tries the cached .obl first, falling back to reconstructing
// the offsets table from the .offsets gamma-delta stream on any cache miss
// (missing file, fingerprint mismatch, or corrupt payload).
func (d *Decoder) loadOffsets(basePath string, props *Properties, cfg *OpenConfig) (succinct.OffsetTable, error) {
	fingerprint := cache.Fingerprint(props.Text())

	if oblFile, err := os.Open(basePath + ".obl"); err == nil {
		defer oblFile.Close()
		values, err := cache.LoadOBL(oblFile, cfg.Endian, fingerprint)
		if err == nil {
			return succinct.BuildOffsetTable(values, succinct.DirectOffsetThreshold)
		}
		d.logger.Warn("bvgraph: .obl cache miss, reconstructing offsets", "path", basePath+".obl", "error", err)
	}

	return d.rebuildOffsets(basePath, props, cfg)
}

// rebuildOffsets reads the .offsets gamma-delta stream and integrates it into
// an absolute-bit-offset array, then persists a fresh .obl best-effort (a
// failure to write the cache is not a load failure).
func (d *Decoder) rebuildOffsets(basePath string, props *Properties, cfg *OpenConfig) (succinct.OffsetTable, error) {
	offFile, err := os.Open(basePath + ".offsets")
	if err != nil {
		return nil, err
	}
	defer offFile.Close()

	data, err := io.ReadAll(offFile)
	if err != nil {
		return nil, err
	}

	r := bitio.NewReader(bitio.NewByteArraySource(data))
	values := make([]uint64, props.Nodes+1)
	var cur uint64
	for i := range values {
		delta, err := r.ReadGamma()
		if err != nil {
			return nil, fmt.Errorf("%w: reading offsets entry %d: %v", errs.ErrInvalidOffsets, i, err)
		}
		cur += delta
		values[i] = cur
	}

	table, err := succinct.BuildOffsetTable(values, succinct.DirectOffsetThreshold)
	if err != nil {
		return nil, err
	}

	if oblFile, err := os.Create(basePath + ".obl"); err == nil {
		defer oblFile.Close()
		fingerprint := cache.Fingerprint(props.Text())
		if err := cache.SaveOBL(oblFile, cfg.Endian, values, fingerprint, cfg.CacheCompression); err != nil {
			d.logger.Warn("bvgraph: failed to write .obl cache", "path", basePath+".obl", "error", err)
		}
	}

	return table, nil
}

func (d *Decoder) NumNodes() int64 { return d.props.Nodes }
func (d *Decoder) NumArcs() int64  { return d.props.Arcs }

func (d *Decoder) RandomAccess() bool { return d.offsets != nil && d.src != nil }

// Outdegree seeks directly to node x's bit offset and reads its leading γ
// outdegree field; it never needs reference-chain resolution.
func (d *Decoder) Outdegree(x int64) (int64, error) {
	if !d.RandomAccess() {
		return 0, errs.ErrOffsetsUnavailable
	}
	if err := checkNodeRange(x, d.props.Nodes); err != nil {
		return 0, err
	}

	r := bitio.NewReader(d.src)
	r.SeekBit(int64(d.offsets.Get(x)))
	v, err := r.ReadGamma()
	if err != nil {
		return 0, err
	}

	return int64(v), nil
}

// Successors resolves x's full adjacency list, following its reference chain
// iteratively (bounded by however many hops the stream actually encodes; the
// encoder's MaxRefCount limits runs of consecutive referencing nodes, not the
// length of a chain).
func (d *Decoder) Successors(x int64) (SuccessorIterator, error) {
	if !d.RandomAccess() {
		return nil, errs.ErrOffsetsUnavailable
	}
	if err := checkNodeRange(x, d.props.Nodes); err != nil {
		return nil, err
	}

	successors, err := d.decodeRandomAccess(x)
	if err != nil {
		return nil, err
	}

	return &sliceSuccessorIterator{targets: successors}, nil
}

// chainFrame is one node's parsed-but-not-yet-expanded fields, collected
// while walking a reference chain from x back to the first node with no
// reference (ref == 0).
type chainFrame struct {
	node      int64
	outdegree int64
	ref       int
	blocks    []int64
	intervals []interval
	residual  []int64
}

// decodeRandomAccess resolves node x's successors from a cold seek,
// collecting the reference chain on an explicit slice-backed stack (never
// recursion) and expanding it bottom-up.
func (d *Decoder) decodeRandomAccess(x int64) ([]int64, error) {
	var stack []chainFrame

	cur := x
	for {
		r := bitio.NewReader(d.src)
		r.SeekBit(int64(d.offsets.Get(cur)))

		frame, err := d.readFrame(r, cur)
		if err != nil {
			return nil, err
		}
		stack = append(stack, frame)
		if frame.ref == 0 {
			break
		}
		cur -= int64(frame.ref)
	}

	var successors []int64
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		successors = expandFrame(f, successors)
	}

	if int64(len(successors)) != stack[0].outdegree {
		return nil, fmt.Errorf("%w: node %d decoded %d successors, want %d", errs.ErrResidualCountMismatch, x, len(successors), stack[0].outdegree)
	}

	return successors, nil
}

// readFrame parses one node's fields (outdegree, reference, copy blocks,
// intervals, residuals) from r positioned at the node's bit offset, without
// expanding the copy list.
func (d *Decoder) readFrame(r *bitio.Reader, node int64) (chainFrame, error) {
	outdeg, err := r.ReadGamma()
	if err != nil {
		return chainFrame{}, err
	}

	ref := 0
	if d.props.WindowSize > 0 {
		rv, err := r.ReadGamma()
		if err != nil {
			return chainFrame{}, err
		}
		ref = int(rv)
		if ref > d.props.WindowSize || int64(ref) > node {
			return chainFrame{}, errs.ErrReferenceOutOfRange
		}
	}

	var blocks []int64
	if ref > 0 {
		blocks, err = readBlocks(r)
		if err != nil {
			return chainFrame{}, err
		}
	}

	intervals, err := readIntervals(r, node, d.props.MinIntervalLength)
	if err != nil {
		return chainFrame{}, err
	}

	residual, err := readResiduals(r, node, d.props.CodeFor(PositionResiduals), d.props.ZetaK)
	if err != nil {
		return chainFrame{}, err
	}

	return chainFrame{node: node, outdegree: int64(outdeg), ref: ref, blocks: blocks, intervals: intervals, residual: residual}, nil
}

// expandFrame combines a frame's copy list (against base, the already
// expanded successors of the node it references) with its own intervals and
// residuals to produce the frame's full successor list.
func expandFrame(f chainFrame, base []int64) []int64 {
	var copied []int64
	if f.ref > 0 {
		mask := expandRunLengths(f.blocks, len(base))
		copied = make([]int64, 0, len(base))
		for i, b := range mask {
			if b {
				copied = append(copied, base[i])
			}
		}
	}

	remaining := mergeSorted(expandIntervals(f.intervals), f.residual)

	return mergeSorted(copied, remaining)
}

func expandIntervals(intervals []interval) []int64 {
	var out []int64
	for _, iv := range intervals {
		for k := int64(0); k < iv.Length; k++ {
			out = append(out, iv.Left+k)
		}
	}

	return out
}

// mergeSorted merges two ascending, disjoint slices into one ascending slice.
func mergeSorted(a, b []int64) []int64 {
	out := make([]int64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)

	return out
}

func readBlocks(r *bitio.Reader) ([]int64, error) {
	numBlocks, err := r.ReadGamma()
	if err != nil {
		return nil, err
	}
	if numBlocks == 0 {
		return nil, nil
	}

	blocks := make([]int64, numBlocks)
	for i := range blocks {
		v, err := r.ReadGamma()
		if err != nil {
			return nil, err
		}
		blocks[i] = int64(v)
	}

	return blocks, nil
}

func readIntervals(r *bitio.Reader, x int64, minLength int) ([]interval, error) {
	numIntervals, err := r.ReadGamma()
	if err != nil {
		return nil, err
	}
	if numIntervals == 0 {
		return nil, nil
	}

	intervals := make([]interval, numIntervals)
	prevEnd := x
	for i := range intervals {
		foldedGap, err := r.ReadGamma()
		if err != nil {
			return nil, err
		}
		var left int64
		if i == 0 {
			left = x + unfoldSignedGap(foldedGap)
		} else {
			left = prevEnd + unfoldSignedGap(foldedGap)
		}

		lengthMinusL, err := r.ReadGamma()
		if err != nil {
			return nil, err
		}
		length := int64(lengthMinusL) + int64(minLength)

		intervals[i] = interval{Left: left, Length: length}
		prevEnd = left + length
	}

	return intervals, nil
}

func readResiduals(r *bitio.Reader, x int64, code format.CodeType, zetaK uint) ([]int64, error) {
	count, err := r.ReadGamma()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	readVal := func() (uint64, error) {
		switch code {
		case format.CodeDelta:
			return r.ReadDelta()
		case format.CodeZeta:
			return r.ReadZeta(zetaK)
		default:
			return r.ReadGamma()
		}
	}

	residual := make([]int64, count)
	for i := range residual {
		v, err := readVal()
		if err != nil {
			return nil, err
		}
		if i == 0 {
			residual[i] = x + unfoldSignedGap(v)
		} else {
			residual[i] = residual[i-1] + int64(v) + 1
		}
	}

	return residual, nil
}

// NodeIterator returns a sequential decoder starting at node from. STANDARD
// and MAPPED graphs may start anywhere (the bit offset comes from the
// offsets table); OFFLINE and ONCE graphs only support from == 0, since
// neither keeps an offsets table to seek with.
func (d *Decoder) NodeIterator(from int64) (NodeIterator, error) {
	switch d.mode {
	case format.Offline:
		if from != 0 {
			return nil, errs.ErrOffsetsUnavailable
		}
		src, err := bitio.OpenFileSource(d.basePath + ".graph")
		if err != nil {
			return nil, err
		}

		return &decoderNodeIterator{d: d, r: bitio.NewReader(src), win: newWindow(d.props.WindowSize), cur: -1, upper: d.props.Nodes, closeSrc: src}, nil
	case format.Once:
		if from != 0 {
			return nil, errs.ErrOffsetsUnavailable
		}
		if d.onceUsed {
			return nil, errs.ErrStreamExhausted
		}
		d.onceUsed = true

		return &decoderNodeIterator{d: d, r: bitio.NewReader(d.src), win: newWindow(d.props.WindowSize), cur: -1, upper: d.props.Nodes}, nil
	default:
		if from < 0 || from > d.props.Nodes {
			return nil, errs.ErrNodeOutOfRange
		}
		r := bitio.NewReader(d.src)
		r.SeekBit(int64(d.offsets.Get(from)))

		return &decoderNodeIterator{d: d, r: r, win: newWindow(d.props.WindowSize), cur: from - 1, upper: d.props.Nodes}, nil
	}
}

func (d *Decoder) HasCopiableIterators() bool { return false }

func (d *Decoder) SplitNodeIterators(k int) ([]NodeIterator, error) {
	if k < 1 {
		return nil, errs.ErrInvalidSplit
	}
	if !d.RandomAccess() {
		return nil, errs.ErrOffsetsUnavailable
	}

	n := d.props.Nodes
	chunk := (n + int64(k) - 1) / int64(k)
	iters := make([]NodeIterator, k)
	for i := 0; i < k; i++ {
		lo := int64(i) * chunk
		if lo > n {
			lo = n
		}
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		it, err := d.NodeIterator(lo)
		if err != nil {
			return nil, err
		}
		if dit, ok := it.(*decoderNodeIterator); ok {
			dit.upper = hi
		}
		iters[i] = it
	}

	return iters, nil
}

func (d *Decoder) Copy() (Graph, error) {
	if !d.RandomAccess() {
		return nil, errs.ErrNotCopiable
	}

	return &Decoder{props: d.props, mode: d.mode, logger: d.logger, src: d.src, offsets: d.offsets, basePath: d.basePath}, nil
}

// decoderNodeIterator walks nodes in ascending order, decoding each one
// through the sliding window rather than resolving a fresh reference chain
// per node: a node's reference, when present, points within the window of
// already-decoded nodes this iterator itself just produced, except for a
// reference to a node before the iterator's starting node, which is
// resolved through random access.
type decoderNodeIterator struct {
	d        *Decoder
	r        *bitio.Reader
	win      *window
	cur      int64
	upper    int64
	outdeg   int64
	succ     []int64
	closeSrc bitio.ByteSource
}

func (it *decoderNodeIterator) HasNext() bool {
	hasNext := it.cur+1 < it.upper
	if !hasNext && it.closeSrc != nil {
		it.closeSrc.Close()
		it.closeSrc = nil
	}

	return hasNext
}

func (it *decoderNodeIterator) Next() (int64, error) {
	if !it.HasNext() {
		return 0, errs.ErrNodeOutOfRange
	}
	it.cur++

	outdeg, err := it.r.ReadGamma()
	if err != nil {
		return 0, err
	}
	it.outdeg = int64(outdeg)

	ref := 0
	if it.d.props.WindowSize > 0 {
		rv, err := it.r.ReadGamma()
		if err != nil {
			return 0, err
		}
		ref = int(rv)
	}

	var blocks []int64
	var base []int64
	if ref > 0 {
		var inWindow bool
		base, inWindow = it.win.get(it.cur - int64(ref))
		if !inWindow && it.d.RandomAccess() {
			if base, err = it.d.decodeRandomAccess(it.cur - int64(ref)); err != nil {
				return 0, err
			}
		}
		blocks, err = readBlocks(it.r)
		if err != nil {
			return 0, err
		}
	}

	intervals, err := readIntervals(it.r, it.cur, it.d.props.MinIntervalLength)
	if err != nil {
		return 0, err
	}
	residual, err := readResiduals(it.r, it.cur, it.d.props.CodeFor(PositionResiduals), it.d.props.ZetaK)
	if err != nil {
		return 0, err
	}

	it.succ = expandFrame(chainFrame{ref: ref, blocks: blocks, intervals: intervals, residual: residual}, base)
	if int64(len(it.succ)) != it.outdeg {
		return 0, fmt.Errorf("%w: node %d decoded %d successors, want %d", errs.ErrResidualCountMismatch, it.cur, len(it.succ), it.outdeg)
	}
	it.win.put(it.cur, it.succ)

	return it.cur, nil
}

func (it *decoderNodeIterator) Outdegree() int64 { return it.outdeg }

func (it *decoderNodeIterator) Successors() SuccessorIterator {
	return &sliceSuccessorIterator{targets: it.succ}
}

func (it *decoderNodeIterator) Copy(upperBound int64) (NodeIterator, error) {
	return nil, errs.ErrNotCopiable
}

// onceSource adapts a single-use io.Reader to bitio.ByteSource, accepting
// only reads that continue exactly where the last one left off: the access
// pattern a forward-only sequential decode produces.
type onceSource struct {
	r   io.Reader
	pos int64
}

func (s *onceSource) ReadAt(p []byte, off int64) error {
	if off != s.pos {
		return errs.ErrStreamExhausted
	}
	if _, err := io.ReadFull(s.r, p); err != nil {
		return err
	}
	s.pos += int64(len(p))

	return nil
}

func (s *onceSource) Len() int64 { return -1 }

func (s *onceSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
