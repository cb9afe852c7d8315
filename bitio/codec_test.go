package bitio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// roundTripUint64 writes values with write, then reads them back with read over a
// fresh buffer, asserting both the decoded values and that the writer's
// reported bit position matches the reader's after consuming everything.
func roundTripUint64(t *testing.T, values []uint64, write func(w *Writer, v uint64) error, read func(r *Reader) (uint64, error)) {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range values {
		require.NoError(t, write(w, v))
	}
	wantBits := w.Position()
	require.NoError(t, w.Flush())

	r := NewReader(NewByteArraySource(buf.Bytes()))
	for i, want := range values {
		got, err := read(r)
		require.NoError(t, err, "value %d", i)
		require.Equal(t, want, got, "value %d", i)
	}
	require.Equal(t, wantBits, r.Position())
}

func TestUnary_RoundTrip(t *testing.T) {
	roundTripUint64(t, []uint64{0, 1, 2, 3, 7, 15, 100, 1000},
		func(w *Writer, v uint64) error { return w.WriteUnary(v) },
		func(r *Reader) (uint64, error) { return r.ReadUnary() })
}

func TestGamma_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 7, 8, 15, 16, 255, 256, 1 << 20, 1<<32 - 1}
	roundTripUint64(t, values,
		func(w *Writer, v uint64) error { return w.WriteGamma(v) },
		func(r *Reader) (uint64, error) { return r.ReadGamma() })
}

func TestDelta_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 3, 4, 255, 65535, 1 << 20, 1<<40 - 1}
	roundTripUint64(t, values,
		func(w *Writer, v uint64) error { return w.WriteDelta(v) },
		func(r *Reader) (uint64, error) { return r.ReadDelta() })
}

func TestZeta_RoundTrip(t *testing.T) {
	for _, k := range []uint{1, 2, 3, 5} {
		values := []uint64{0, 1, 2, 3, 4, 7, 8, 100, 1000, 1 << 16}
		roundTripUint64(t, values,
			func(w *Writer, v uint64) error { return w.WriteZeta(v, k) },
			func(r *Reader) (uint64, error) { return r.ReadZeta(k) })
	}
}

func TestNibble_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 7, 8, 63, 64, 511, 512, 1 << 20, 1<<40 - 1}
	roundTripUint64(t, values,
		func(w *Writer, v uint64) error { return w.WriteNibble(v) },
		func(r *Reader) (uint64, error) { return r.ReadNibble() })
}

func TestGolomb_RoundTrip(t *testing.T) {
	for _, b := range []uint64{1, 2, 3, 5, 7, 16, 100} {
		values := []uint64{0, 1, 2, b - 1, b, b + 1, 2 * b, 1000}
		roundTripUint64(t, values,
			func(w *Writer, v uint64) error { return w.WriteGolomb(v, b) },
			func(r *Reader) (uint64, error) { return r.ReadGolomb(b) })
	}
}

func TestSkewedGolomb_RoundTrip(t *testing.T) {
	for _, b := range []uint64{1, 2, 3, 7, 16} {
		values := []uint64{0, 1, 2, b, b + 1, 3 * b, 10 * b, 1000 * b}
		roundTripUint64(t, values,
			func(w *Writer, v uint64) error { return w.WriteSkewedGolomb(v, b) },
			func(r *Reader) (uint64, error) { return r.ReadSkewedGolomb(b) })
	}
}

func TestMinimalBinary_RoundTrip(t *testing.T) {
	for _, b := range []uint64{1, 2, 3, 5, 7, 8, 100} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		var values []uint64
		for x := uint64(0); x < b; x++ {
			values = append(values, x)
			require.NoError(t, w.WriteMinimalBinary(x, b))
		}
		require.NoError(t, w.Flush())

		r := NewReader(NewByteArraySource(buf.Bytes()))
		for _, want := range values {
			got, err := r.ReadMinimalBinary(b)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	}
}

func TestWriter_PositionTracksFlushedBits(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteGamma(0)) // 1 bit
	require.Equal(t, int64(1), w.Position())
	require.NoError(t, w.WriteGamma(7)) // 2*3+1 = 7 bits
	require.Equal(t, int64(8), w.Position())
	require.NoError(t, w.Flush())
	require.Equal(t, int64(8), w.Position())
	require.Len(t, buf.Bytes(), 1)
}

func TestReader_Copy_IndependentCursors(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteGamma(3))
	require.NoError(t, w.WriteGamma(9))
	require.NoError(t, w.Flush())

	src := NewByteArraySource(buf.Bytes())
	r1 := NewReader(src)
	v1, err := r1.ReadGamma()
	require.NoError(t, err)
	require.Equal(t, uint64(3), v1)

	r2 := r1.Copy()
	v2a, err := r2.ReadGamma()
	require.NoError(t, err)
	require.Equal(t, uint64(9), v2a)

	// r1 is unaffected by r2's read.
	v2b, err := r1.ReadGamma()
	require.NoError(t, err)
	require.Equal(t, uint64(9), v2b)
}

func TestReader_SeekBitAndSkip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteGamma(5))
	require.NoError(t, w.WriteGamma(6))
	require.NoError(t, w.Flush())

	r := NewReader(NewByteArraySource(buf.Bytes()))
	first, err := r.ReadGamma()
	require.NoError(t, err)
	require.Equal(t, uint64(5), first)
	pos := r.Position()

	_, err = r.ReadGamma()
	require.NoError(t, err)

	r.SeekBit(pos)
	second, err := r.ReadGamma()
	require.NoError(t, err)
	require.Equal(t, uint64(6), second)

	r.SeekBit(0)
	r.Skip(int64(pos))
	third, err := r.ReadGamma()
	require.NoError(t, err)
	require.Equal(t, uint64(6), third)
}

func TestReader_TruncatedStreamIsError(t *testing.T) {
	r := NewReader(NewByteArraySource(nil))
	_, err := r.ReadGamma()
	require.Error(t, err)
}
