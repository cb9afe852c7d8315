package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeClassName(t *testing.T) {
	cases := map[string]string{
		"bvgraph":                                "bvgraph",
		"BVGraph":                                 "bvgraph",
		"class bvgraph":                           "bvgraph",
		"it.unimi.dsi.webgraph.BVGraph":           "bvgraph",
		"it.unimi.dsi.webgraph.BVGraph32":         "bvgraph32",
		"class it.unimi.dsi.webgraph.ArcLabelledImmutableGraph": "arclabelledimmutablegraph",
		"  arclabelledgraph  ":                    "arclabelledgraph",
	}
	for raw, want := range cases {
		require.Equal(t, want, NormalizeClassName(raw), "raw=%q", raw)
	}
}

func TestCodeType_StringAndParseRoundTrip(t *testing.T) {
	codes := []CodeType{CodeDelta, CodeGamma, CodeGolomb, CodeSkewedGolomb, CodeUnary, CodeZeta, CodeNibble}
	for _, c := range codes {
		parsed, ok := ParseCodeType(c.String())
		require.True(t, ok, "code %d", c)
		require.Equal(t, c, parsed)
	}
}

func TestParseCodeType_UnknownIsRejected(t *testing.T) {
	_, ok := ParseCodeType("NOT_A_CODE")
	require.False(t, ok)
}

func TestLoadMode_String(t *testing.T) {
	require.Equal(t, "STANDARD", Standard.String())
	require.Equal(t, "MAPPED", Mapped.String())
	require.Equal(t, "OFFLINE", Offline.String())
	require.Equal(t, "ONCE", Once.String())
}
