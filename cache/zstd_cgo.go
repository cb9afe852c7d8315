//go:build nobuild

package cache

import (
	"github.com/valyala/gozstd"
)

// Compress compresses data using cgo-backed Zstandard. Disabled by default
// (see the nobuild tag) so the module stays pure Go; kept as the faster
// alternative for deployments that can afford a cgo dependency.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
