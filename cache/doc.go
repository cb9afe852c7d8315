// Package cache provides compression codecs for the on-disk succinct
// structure caches (.obl and .labelobl files) that let a graph skip
// reconstructing its offset tables from the γ-coded offsets stream on every
// load.
//
// # Overview
//
// A cache file stores the absolute bit offsets of an offset table, one
// uint64 per entry, alongside a fingerprint of the .properties file it was
// built from. Loading a graph in STANDARD or MAPPED mode reads the cache,
// verifies the fingerprint, decompresses the values, and hands them to
// succinct.BuildOffsetTable; a fingerprint mismatch is treated as a cache
// miss and the offsets are rebuilt from the offsets stream instead of
// failing the load.
//
// The cache payload itself is general-purpose compressed, since a decoded
// offset array is an ascending sequence of bit positions whose deltas
// compress well under any general-purpose byte compressor. This package
// supports four algorithms, selected per cache file by
// format.CacheCompressionType:
//
//   - None: no compression, fastest to read
//   - Zstd: best ratio, used for cold or archival caches
//   - S2: Snappy-derived, balances ratio and decompression speed
//   - LZ4: fastest decompression, smallest memory footprint
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// CreateCodec and GetCodec construct or look up a Codec for a given
// format.CacheCompressionType; callers building or reading a .obl file
// never need to reference the algorithm-specific types directly.
package cache
