package graph

import (
	"io"
	"os"
	"path/filepath"

	"github.com/webgraph-go/bvgraph/bitio"
	"github.com/webgraph-go/bvgraph/format"
	"github.com/webgraph-go/bvgraph/internal/pool"
)

// EncoderConfig parameterizes the BV adjacency encoder: window size W,
// max reference run R, minimum interval length L, zeta parameter K, and the
// code used for residuals.
type EncoderConfig struct {
	WindowSize        int
	MaxRefCount       int
	MinIntervalLength int
	ZetaK             uint
	ResidualCode      format.CodeType
}

// DefaultEncoderConfig mirrors the values WebGraph's own reference
// implementation ships as defaults: W=7, R=3, L=4, K=3, residuals under ζ_3.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{
		WindowSize:        7,
		MaxRefCount:       3,
		MinIntervalLength: 4,
		ZetaK:             3,
		ResidualCode:      format.CodeZeta,
	}
}

// Encoder writes a source Graph's adjacency lists as a BV-compressed bit
// stream plus a parallel offsets stream.
type Encoder struct {
	cfg EncoderConfig
}

// NewEncoder builds an Encoder with the given configuration.
func NewEncoder(cfg EncoderConfig) *Encoder {
	return &Encoder{cfg: cfg}
}

// EncodeStreams encodes src's adjacency lists to graphW and the matching
// offsets to offsetsW, returning the Properties describing the encoding
// (nodes, arcs, and the configured parameters; compressionflags records
// the residual code actually used).
func (e *Encoder) EncodeStreams(src Graph, graphW, offsetsW io.Writer) (*Properties, error) {
	gw := bitio.NewWriter(graphW)
	ow := bitio.NewWriter(offsetsW)

	w := newWindow(e.cfg.WindowSize)
	refRun := 0

	n := src.NumNodes()
	it, err := src.NodeIterator(0)
	if err != nil {
		return nil, err
	}

	var totalArcs int64
	prevBits := int64(0)
	if err := ow.WriteGamma(0); err != nil { // sentinel seeding the delta stream
		return nil, err
	}

	for it.HasNext() {
		x, err := it.Next()
		if err != nil {
			return nil, err
		}
		successors := drainSuccessors(it.Successors())
		totalArcs += int64(len(successors))

		r := e.chooseReference(w, x, successors, refRun)
		if r > 0 {
			refRun++
		} else {
			refRun = 0
		}

		if err := gw.WriteGamma(uint64(len(successors))); err != nil {
			return nil, err
		}
		if e.cfg.WindowSize > 0 {
			if err := gw.WriteGamma(uint64(r)); err != nil {
				return nil, err
			}
		}

		remaining := successors
		if r > 0 {
			referenced, _ := w.get(x - int64(r))
			mask := copyMask(referenced, successors)
			blocks := runLengths(mask)
			if err := writeBlocks(gw, blocks); err != nil {
				return nil, err
			}
			remaining = subtractCopied(referenced, mask, successors)
		}

		intervals, residual, cleanup := extractIntervals(remaining, e.cfg.MinIntervalLength)
		if err := writeIntervals(gw, x, intervals, e.cfg.MinIntervalLength); err != nil {
			cleanup()
			return nil, err
		}
		if err := writeResiduals(gw, x, residual, e.cfg.ResidualCode, e.cfg.ZetaK); err != nil {
			cleanup()
			return nil, err
		}
		cleanup()

		endBits := gw.Position()
		if err := ow.WriteGamma(uint64(endBits - prevBits)); err != nil {
			return nil, err
		}
		prevBits = endBits

		w.put(x, successors)
	}

	if err := gw.Flush(); err != nil {
		return nil, err
	}
	if err := ow.Flush(); err != nil {
		return nil, err
	}

	props := &Properties{
		GraphClass:        format.ClassBVGraph,
		Nodes:             n,
		Arcs:              totalArcs,
		WindowSize:        e.cfg.WindowSize,
		MaxRefCount:       e.cfg.MaxRefCount,
		MinIntervalLength: e.cfg.MinIntervalLength,
		ZetaK:             e.cfg.ZetaK,
		CompressionFlags: map[StreamPosition]format.CodeType{
			PositionResiduals: e.cfg.ResidualCode,
		},
	}
	if n > 0 {
		props.AvgGap = float64(totalArcs) / float64(n)
	}

	return props, nil
}

// EncodeToFiles encodes src to basePath+".graph", basePath+".offsets", and
// basePath+".properties", writing each via a temp file renamed into place
// on success so a partial run never leaves a corrupt artifact visible.
func (e *Encoder) EncodeToFiles(src Graph, basePath string) (err error) {
	graphTmp, err := os.CreateTemp(filepath.Dir(basePath), filepath.Base(basePath)+".graph.*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(graphTmp.Name())
		}
	}()

	offsetsTmp, err := os.CreateTemp(filepath.Dir(basePath), filepath.Base(basePath)+".offsets.*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(offsetsTmp.Name())
		}
	}()

	props, err := e.EncodeStreams(src, graphTmp, offsetsTmp)
	if err != nil {
		return err
	}

	if err = graphTmp.Sync(); err != nil {
		return err
	}
	if err = offsetsTmp.Sync(); err != nil {
		return err
	}
	if err = graphTmp.Close(); err != nil {
		return err
	}
	if err = offsetsTmp.Close(); err != nil {
		return err
	}

	propsTmp, err := os.CreateTemp(filepath.Dir(basePath), filepath.Base(basePath)+".properties.*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(propsTmp.Name())
		}
	}()
	if err = props.Write(propsTmp); err != nil {
		return err
	}
	if err = propsTmp.Sync(); err != nil {
		return err
	}
	if err = propsTmp.Close(); err != nil {
		return err
	}

	if err = os.Rename(graphTmp.Name(), basePath+".graph"); err != nil {
		return err
	}
	if err = os.Rename(offsetsTmp.Name(), basePath+".offsets"); err != nil {
		return err
	}

	return os.Rename(propsTmp.Name(), basePath+".properties")
}

// chooseReference picks the reference r in [0, min(W, x)] minimizing an
// estimated bit cost, subject to the R constraint: once refRun (the number of
// consecutive preceding nodes written with r>0) reaches MaxRefCount, r=0 is
// forced.
func (e *Encoder) chooseReference(w *window, x int64, successors []int64, refRun int) int {
	if e.cfg.WindowSize == 0 || refRun >= e.cfg.MaxRefCount {
		return 0
	}

	maxR := e.cfg.WindowSize
	if int64(maxR) > x {
		maxR = int(x)
	}

	best, bestCost := 0, len(successors)
	for r := 1; r <= maxR; r++ {
		referenced, ok := w.get(x - int64(r))
		if !ok {
			continue
		}

		mask, cleanup := pool.GetBoolSlice(len(referenced))
		fillCopyMask(mask, referenced, successors)
		copied := 0
		for _, b := range mask {
			if b {
				copied++
			}
		}
		cost := len(successors) - copied + numRuns(mask)
		cleanup()
		if cost < bestCost {
			best, bestCost = r, cost
		}
	}

	return best
}

func numRuns(mask []bool) int {
	if len(mask) == 0 {
		return 0
	}
	runs := 1
	for i := 1; i < len(mask); i++ {
		if mask[i] != mask[i-1] {
			runs++
		}
	}

	return runs
}

// subtractCopied returns successors with every target marked copied in mask
// (over referenced) removed, preserving ascending order.
func subtractCopied(referenced []int64, mask []bool, successors []int64) []int64 {
	copiedSet := make(map[int64]struct{})
	for i, b := range mask {
		if b {
			copiedSet[referenced[i]] = struct{}{}
		}
	}

	remaining := make([]int64, 0, len(successors))
	for _, v := range successors {
		if _, ok := copiedSet[v]; !ok {
			remaining = append(remaining, v)
		}
	}

	return remaining
}

func writeBlocks(w *bitio.Writer, blocks []int64) error {
	if err := w.WriteGamma(uint64(len(blocks))); err != nil {
		return err
	}
	for _, b := range blocks {
		if err := w.WriteGamma(uint64(b)); err != nil {
			return err
		}
	}

	return nil
}

func writeIntervals(w *bitio.Writer, x int64, intervals []interval, minLength int) error {
	if err := w.WriteGamma(uint64(len(intervals))); err != nil {
		return err
	}

	prevEnd := x
	for i, iv := range intervals {
		var gap int64
		if i == 0 {
			gap = iv.Left - x
		} else {
			gap = iv.Left - prevEnd
		}
		if err := w.WriteGamma(foldSignedGap(gap)); err != nil {
			return err
		}
		if err := w.WriteGamma(uint64(iv.Length - int64(minLength))); err != nil {
			return err
		}
		prevEnd = iv.Left + iv.Length
	}

	return nil
}

func writeResiduals(w *bitio.Writer, x int64, residual []int64, code format.CodeType, zetaK uint) error {
	if err := w.WriteGamma(uint64(len(residual))); err != nil {
		return err
	}

	writeVal := func(v uint64) error {
		switch code {
		case format.CodeDelta:
			return w.WriteDelta(v)
		case format.CodeZeta:
			return w.WriteZeta(v, zetaK)
		default:
			return w.WriteGamma(v)
		}
	}

	for i, v := range residual {
		var folded uint64
		if i == 0 {
			folded = foldSignedGap(v - x)
		} else {
			folded = uint64(v - residual[i-1] - 1)
		}
		if err := writeVal(folded); err != nil {
			return err
		}
	}

	return nil
}
