package cache

// ZstdCompressor compresses a cache payload with Zstandard. It favors ratio
// over speed, making it the default for archived or cold-storage caches
// that are read far less often than they are written.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
