package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/format"
)

func TestProperties_TextParseRoundTrip(t *testing.T) {
	p := &Properties{
		GraphClass:        format.ClassBVGraph,
		Nodes:             100,
		Arcs:              250,
		WindowSize:        7,
		MaxRefCount:       3,
		MinIntervalLength: 4,
		ZetaK:             3,
		CompressionFlags: map[StreamPosition]format.CodeType{
			PositionResiduals: format.CodeZeta,
		},
		AvgGap: 2.5,
	}

	got, err := ParseProperties(strings.NewReader(p.Text()))
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestParseProperties_MissingKey(t *testing.T) {
	_, err := ParseProperties(strings.NewReader("graphclass=bvgraph\nnodes=1\n"))
	require.ErrorIs(t, err, errs.ErrMissingPropertyKey)
}

func TestParseProperties_InvalidValue(t *testing.T) {
	text := "graphclass=bvgraph\nnodes=notanumber\narcs=0\nwindowsize=7\n" +
		"maxrefcount=3\nminintervallength=4\nzetak=3\ncompressionflags=\n"
	_, err := ParseProperties(strings.NewReader(text))
	require.ErrorIs(t, err, errs.ErrInvalidPropertyValue)
}

func TestParseProperties_NormalizesClassName(t *testing.T) {
	text := "graphclass=class it.unimi.dsi.webgraph.BVGraph\nnodes=0\narcs=0\n" +
		"windowsize=0\nmaxrefcount=0\nminintervallength=0\nzetak=3\ncompressionflags=\n"
	p, err := ParseProperties(strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, "bvgraph", p.GraphClass)
}

func TestProperties_CodeForFallsBackToDefault(t *testing.T) {
	p := &Properties{CompressionFlags: map[StreamPosition]format.CodeType{}}
	require.Equal(t, format.CodeGamma, p.CodeFor(PositionOutdegrees))
	require.Equal(t, format.CodeZeta, p.CodeFor(PositionResiduals))
}
