package cache

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webgraph-go/bvgraph/format"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		name string
		typ  format.CacheCompressionType
	}{
		{"none", format.CacheCompressionNone},
		{"zstd", format.CacheCompressionZstd},
		{"s2", format.CacheCompressionS2},
		{"lz4", format.CacheCompressionLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := CreateCodec(tt.typ, "obl cache")
			require.NoError(t, err)
			require.NotNil(t, codec)
		})
	}

	_, err := CreateCodec(format.CacheCompressionType(0xFF), "obl cache")
	require.Error(t, err)
}

func TestGetCodec(t *testing.T) {
	codec, err := GetCodec(format.CacheCompressionZstd)
	require.NoError(t, err)
	require.NotNil(t, codec)

	_, err = GetCodec(format.CacheCompressionType(0xFF))
	require.Error(t, err)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

// offsetDeltas builds a payload shaped like a cached offset table: an
// ascending sequence of bit offsets, byte-packed as varints. This is the
// realistic input these codecs compress in production.
func offsetDeltas(n int) []byte {
	var buf bytes.Buffer
	var prev uint64
	for i := 0; i < n; i++ {
		prev += uint64(7 + i%13)
		var tmp [10]byte
		m := 0
		v := prev
		for v >= 0x80 {
			tmp[m] = byte(v) | 0x80
			v >>= 7
			m++
		}
		tmp[m] = byte(v)
		buf.Write(tmp[:m+1])
	}

	return buf.Bytes()
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"small_text":       []byte("hello, offset cache"),
		"repeated_pattern": bytes.Repeat([]byte("ABCD"), 100),
		"single_byte":      {0x42},
		"offset_deltas":    offsetDeltas(10_000),
		"zeros_1mb":        make([]byte, 1024*1024),
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for name, data := range cases {
				t.Run(name, func(t *testing.T) {
					compressed, err := codec.Compress(data)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, data, decompressed)
				})
			}
		})
	}
}

func TestNoOpCompressor_SharesMemory(t *testing.T) {
	compressor := NewNoOpCompressor()
	data := []byte("hello world")

	compressed, err := compressor.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])
}

func TestAllCodecs_InterfaceCompliance(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			var _ Codec = codec
			require.NotNil(t, codec)
		})
	}
}

func TestAllCodecs_ProgressiveDataSizes(t *testing.T) {
	sizes := []int{1, 10, 100, 1024, 16384, 262144}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, size := range sizes {
				t.Run(fmt.Sprintf("%d_bytes", size), func(t *testing.T) {
					data := make([]byte, size)
					for i := range data {
						data[i] = byte(i % 256)
					}

					compressed, err := codec.Compress(data)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, data, decompressed)
				})
			}
		})
	}
}
