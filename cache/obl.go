package cache

import (
	"fmt"
	"io"

	"github.com/webgraph-go/bvgraph/endian"
	"github.com/webgraph-go/bvgraph/errs"
	"github.com/webgraph-go/bvgraph/format"
	"github.com/webgraph-go/bvgraph/internal/hash"
	"github.com/webgraph-go/bvgraph/internal/pool"
)

// oblMagic identifies a cached offsets big-list file (.obl / .labelobl).
const oblMagic uint32 = 0x4f424c31 // "OBL1"

// oblHeaderSize is the fixed-size header preceding the compressed payload:
// magic(4) + version(2) + compression(1) + reserved(1) + fingerprint(8) + count(8).
const oblHeaderSize = 4 + 2 + 1 + 1 + 8 + 8

const oblVersion uint16 = 1

// Fingerprint computes the identity xxHash64 used to validate a cache file
// against the .properties it was built from. A graph's properties text
// (graphclass, nodes, arcs, windowsize, ...) is the canonical input so any
// change invalidates every dependent cache deterministically.
func Fingerprint(propertiesText string) uint64 {
	return hash.ID(propertiesText)
}

// SaveOBL writes a cached offsets big-list: a header carrying the source
// fingerprint and element count, followed by values compressed with
// compression. values must hold one uint64 per table entry, in order. The
// uncompressed serialization scratch is drawn from the blob-set tier of
// internal/pool (sized for whole-file buffers, not per-node blocks), since a
// graph with billions of nodes can make this buffer many megabytes wide.
func SaveOBL(w io.Writer, eng endian.EndianEngine, values []uint64, fingerprint uint64, compression format.CacheCompressionType) error {
	codec, err := CreateCodec(compression, ".obl")
	if err != nil {
		return err
	}

	bb := pool.GetBlobSetBuffer()
	defer pool.PutBlobSetBuffer(bb)
	bb.Reset()
	bb.ExtendOrGrow(len(values) * 8)
	raw := bb.Bytes()
	for i, v := range values {
		eng.PutUint64(raw[i*8:], v)
	}

	compressed, err := codec.Compress(raw)
	if err != nil {
		return fmt.Errorf("cache: compressing obl payload: %w", err)
	}

	header := make([]byte, oblHeaderSize)
	eng.PutUint32(header[0:4], oblMagic)
	eng.PutUint16(header[4:6], oblVersion)
	header[6] = byte(compression)
	header[7] = 0
	eng.PutUint64(header[8:16], fingerprint)
	eng.PutUint64(header[16:24], uint64(len(values)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(compressed)

	return err
}

// LoadOBL reads back a cache file written by SaveOBL. If wantFingerprint
// does not match the stored fingerprint, LoadOBL returns
// errs.ErrInvalidPropertyValue wrapped with context; callers should treat
// this as a cache miss (per the format's best-effort cache-validation
// contract) and fall back to reconstructing offsets from the bit stream
// rather than failing the graph load.
func LoadOBL(r io.Reader, eng endian.EndianEngine, wantFingerprint uint64) ([]uint64, error) {
	header := make([]byte, oblHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("cache: reading obl header: %w", err)
	}

	if got := eng.Uint32(header[0:4]); got != oblMagic {
		return nil, fmt.Errorf("cache: bad obl magic %x", got)
	}
	if v := eng.Uint16(header[4:6]); v != oblVersion {
		return nil, fmt.Errorf("cache: unsupported obl version %d", v)
	}

	compression := format.CacheCompressionType(header[6])
	fingerprint := eng.Uint64(header[8:16])
	count := eng.Uint64(header[16:24])

	if fingerprint != wantFingerprint {
		return nil, fmt.Errorf("%w: obl fingerprint %x does not match properties %x", errs.ErrInvalidPropertyValue, fingerprint, wantFingerprint)
	}

	codec, err := CreateCodec(compression, ".obl")
	if err != nil {
		return nil, err
	}

	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cache: reading obl payload: %w", err)
	}

	raw, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("cache: decompressing obl payload: %w", err)
	}
	if uint64(len(raw)) != count*8 {
		return nil, fmt.Errorf("cache: obl payload length %d does not match count %d", len(raw), count)
	}

	values := make([]uint64, count)
	for i := range values {
		values[i] = eng.Uint64(raw[i*8:])
	}

	return values, nil
}
