package label

import (
	"io"
	"os"
	"path/filepath"

	"github.com/webgraph-go/bvgraph/bitio"
	"github.com/webgraph-go/bvgraph/format"
	"github.com/webgraph-go/bvgraph/graph"
)

// MemLabelling is an in-memory per-arc label source, mirroring the
// MemGraph convention in graph.MemGraph: Labels[x][i] is the label of the
// i-th arc leaving node x, in the same order graph.SuccessorIterator would
// produce x's targets. It is the reference labelling used by tests and by
// Encoder when the labels already live in memory rather than arriving from
// a streaming source.
type MemLabelling struct {
	Labels [][]Label
}

// Encoder writes a source graph's arcs' labels, in full sequential
// traversal order, as a labelled-overlay bit stream plus a parallel
// label-offsets stream.
type Encoder struct{}

// NewEncoder returns an Encoder. It carries no configuration of its own;
// every parameter the labelled overlay needs (bit layout per arc) comes
// from the Label implementation itself.
func NewEncoder() *Encoder { return &Encoder{} }

// EncodeStreams traverses underlying sequentially from node 0, writing, for
// each node's successors in order, labels.Labels[x][i].WriteTo to labelsW,
// and the per-node bit count as a γ delta to labelOffsetsW. It returns the
// Properties describing the result (underlyinggraph is left blank; callers
// fill it in relative to the eventual basePath).
func (e *Encoder) EncodeStreams(underlying graph.Graph, labels *MemLabelling, labelSpec string, labelsW, labelOffsetsW io.Writer) (*Properties, error) {
	lw := bitio.NewWriter(labelsW)
	ow := bitio.NewWriter(labelOffsetsW)

	if err := ow.WriteGamma(0); err != nil { // sentinel seeding the delta stream
		return nil, err
	}

	it, err := underlying.NodeIterator(0)
	if err != nil {
		return nil, err
	}

	prevBits := int64(0)
	for it.HasNext() {
		x, err := it.Next()
		if err != nil {
			return nil, err
		}

		i := 0
		succ := it.Successors()
		for {
			_, ok := succ.Next()
			if !ok {
				break
			}
			if err := labels.Labels[x][i].WriteTo(lw, x); err != nil {
				return nil, err
			}
			i++
		}

		endBits := lw.Position()
		if err := ow.WriteGamma(uint64(endBits - prevBits)); err != nil {
			return nil, err
		}
		prevBits = endBits
	}

	if err := lw.Flush(); err != nil {
		return nil, err
	}
	if err := ow.Flush(); err != nil {
		return nil, err
	}

	return &Properties{
		GraphClass: format.ClassArcLabelledGraph,
		LabelSpec:  labelSpec,
	}, nil
}

// EncodeToFiles encodes to basePath+".labels", ".labeloffsets", and
// ".properties", writing each via a temp file renamed into place on
// success, matching the underlying graph encoder's atomic-write discipline.
// underlyingBasename is stored as the "underlyinggraph" property, resolved
// relative to basePath's directory on load.
func (e *Encoder) EncodeToFiles(underlying graph.Graph, labels *MemLabelling, labelSpec, underlyingBasename, basePath string) (err error) {
	labelsTmp, err := os.CreateTemp(filepath.Dir(basePath), filepath.Base(basePath)+".labels.*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(labelsTmp.Name())
		}
	}()

	offsetsTmp, err := os.CreateTemp(filepath.Dir(basePath), filepath.Base(basePath)+".labeloffsets.*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(offsetsTmp.Name())
		}
	}()

	props, err := e.EncodeStreams(underlying, labels, labelSpec, labelsTmp, offsetsTmp)
	if err != nil {
		return err
	}
	props.UnderlyingGraph = underlyingBasename

	if err = labelsTmp.Sync(); err != nil {
		return err
	}
	if err = offsetsTmp.Sync(); err != nil {
		return err
	}
	if err = labelsTmp.Close(); err != nil {
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

	if err = os.Rename(labelsTmp.Name(), basePath+".labels"); err != nil {
		return err
	}
	if err = os.Rename(offsetsTmp.Name(), basePath+".labeloffsets"); err != nil {
		return err
	}

	return os.Rename(propsTmp.Name(), basePath+".properties")
}
