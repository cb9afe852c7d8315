package label

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-go/bvgraph/bitio"
)

func TestFixedWidthIntLabel_WriteReadRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 7, 255, 1<<20 - 1}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	for _, v := range values {
		l := NewFixedWidthLabel(20)
		l.Value = v
		require.NoError(t, l.WriteTo(w, 0))
	}
	require.NoError(t, w.Flush())

	r := bitio.NewReader(bitio.NewByteArraySource(buf.Bytes()))
	for _, want := range values {
		l := NewFixedWidthLabel(20)
		require.NoError(t, l.ReadFrom(r, 0))
		require.Equal(t, want, l.Value)
	}
}

func TestFixedWidthIntLabel_CopyIsIndependent(t *testing.T) {
	l := NewFixedWidthLabel(8)
	l.Value = 42

	cp := l.Copy().(*FixedWidthIntLabel)
	l.Value = 7

	require.Equal(t, uint64(42), cp.Value)
	require.Equal(t, uint64(7), l.Value)
}

func TestNewFixedWidthLabelFromParams(t *testing.T) {
	l, err := NewFixedWidthLabelFromParams("bits=16")
	require.NoError(t, err)
	require.Equal(t, uint(16), l.(*FixedWidthIntLabel).Width)

	l, err = NewFixedWidthLabelFromParams("")
	require.NoError(t, err)
	require.Equal(t, uint(32), l.(*FixedWidthIntLabel).Width)

	_, err = NewFixedWidthLabelFromParams("bits=0")
	require.Error(t, err)

	_, err = NewFixedWidthLabelFromParams("bits=65")
	require.Error(t, err)
}

func TestNewFromSpec_FixedWidth(t *testing.T) {
	l, err := NewFromSpec("fixedwidthintlabel(bits=12)")
	require.NoError(t, err)
	require.Equal(t, uint(12), l.(*FixedWidthIntLabel).Width)
}

func TestNewFromSpec_Unknown(t *testing.T) {
	_, err := NewFromSpec("nosuchlabel")
	require.Error(t, err)
}
