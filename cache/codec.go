package cache

import (
	"fmt"

	"github.com/webgraph-go/bvgraph/format"
)

// Compressor compresses a serialized succinct structure before it is
// written to a .obl or .labelobl cache file.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// The returned slice is newly allocated and owned by the caller; data is
	// not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor's transform when a cache file is read
// back at graph-load time.
type Decompressor interface {
	// Decompress decompresses data and returns the original result.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec constructs a Codec for the given cache compression algorithm.
// target names the caller for error messages (e.g. "obl cache").
func CreateCodec(compressionType format.CacheCompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CacheCompressionNone:
		return NewNoOpCompressor(), nil
	case format.CacheCompressionZstd:
		return NewZstdCompressor(), nil
	case format.CacheCompressionS2:
		return NewS2Compressor(), nil
	case format.CacheCompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s cache compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CacheCompressionType]Codec{
	format.CacheCompressionNone: NewNoOpCompressor(),
	format.CacheCompressionZstd: NewZstdCompressor(),
	format.CacheCompressionS2:   NewS2Compressor(),
	format.CacheCompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a shared built-in Codec for the given compression type.
func GetCodec(compressionType format.CacheCompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported cache compression type: %s", compressionType)
}
