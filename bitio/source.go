// Package bitio implements the bit-level codec shared by every on-disk
// artifact in the graph engine: unary, γ (gamma), δ (delta), ζ_k (zeta),
// Golomb, skewed Golomb, nibble, and minimal-binary codes over an abstract
// big-endian (MSB-first) bit stream.
//
// A Reader is built over a ByteSource, an abstraction that lets the same
// decoding logic run against a plain byte array, a chunked in-memory stream
// (for payloads beyond 2^31 bytes), a memory-mapped region, or a file -
// exactly the four backings the engine's load modes require.
package bitio

import (
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ByteSource is a random-access, read-only view over a byte sequence. All
// four on-disk representations the engine supports implement it, so the
// Reader's decode logic never needs to know which one it is talking to.
type ByteSource interface {
	// ReadAt fills p starting at absolute byte offset off, exactly like
	// io.ReaderAt except short reads at EOF are always an error: the bit
	// codec never tolerates a truncated source.
	ReadAt(p []byte, off int64) error
	// Len returns the total number of bytes in the source.
	Len() int64
	// Close releases any resources (file descriptors, mappings) the source
	// holds. Sources backed by a plain slice are no-ops.
	Close() error
}

// ByteArraySource is a ByteSource over an in-memory byte slice. It is the
// backing for STANDARD-mode graphs once the whole .graph file has been read.
type ByteArraySource struct {
	data []byte
}

// NewByteArraySource wraps data without copying it; callers must not mutate
// data afterwards since the source is shared by every flyweight copy.
func NewByteArraySource(data []byte) *ByteArraySource {
	return &ByteArraySource{data: data}
}

func (s *ByteArraySource) ReadAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(s.data)) {
		return io.ErrUnexpectedEOF
	}
	copy(p, s.data[off:off+int64(len(p))])

	return nil
}

func (s *ByteArraySource) Len() int64 { return int64(len(s.data)) }
func (s *ByteArraySource) Close() error { return nil }

// ChunkedSource splits a logically contiguous byte stream across multiple
// fixed-size chunks, so graphs whose .graph file exceeds the 2^31-byte limit
// of a single Go slice index can still be addressed with a plain int64
// offset. Every chunk but the last must be exactly chunkSize bytes.
type ChunkedSource struct {
	chunks    [][]byte
	chunkSize int64
	total     int64
}

// NewChunkedSource builds a ChunkedSource from pre-split chunks. chunkSize
// must equal len(chunks[i]) for every i < len(chunks)-1.
func NewChunkedSource(chunks [][]byte, chunkSize int64) (*ChunkedSource, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("bitio: chunk size must be positive")
	}

	var total int64
	for i, c := range chunks {
		if i != len(chunks)-1 && int64(len(c)) != chunkSize {
			return nil, fmt.Errorf("bitio: chunk %d has length %d, want %d", i, len(c), chunkSize)
		}
		total += int64(len(c))
	}

	return &ChunkedSource{chunks: chunks, chunkSize: chunkSize, total: total}, nil
}

func (s *ChunkedSource) ReadAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > s.total {
		return io.ErrUnexpectedEOF
	}

	for len(p) > 0 {
		idx := off / s.chunkSize
		within := off % s.chunkSize
		chunk := s.chunks[idx]
		n := copy(p, chunk[within:])
		p = p[n:]
		off += int64(n)
	}

	return nil
}

func (s *ChunkedSource) Len() int64  { return s.total }
func (s *ChunkedSource) Close() error { return nil }

// MMapSource is a ByteSource over a read-only memory-mapped file, backing
// MAPPED-mode graphs. The mapping is shared read-only across every flyweight
// copy; only the Reader built on top owns a private cursor.
type MMapSource struct {
	file *os.File
	mm   mmap.MMap
}

// OpenMMapSource memory-maps the whole of path for reading.
func OpenMMapSource(path string) (*MMapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &MMapSource{file: f, mm: m}, nil
}

func (s *MMapSource) ReadAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(s.mm)) {
		return io.ErrUnexpectedEOF
	}
	copy(p, s.mm[off:off+int64(len(p))])

	return nil
}

func (s *MMapSource) Len() int64 { return int64(len(s.mm)) }

func (s *MMapSource) Close() error {
	if err := s.mm.Unmap(); err != nil {
		s.file.Close()
		return err
	}

	return s.file.Close()
}

// FileSource is a ByteSource over an open file, read directly with pread-style
// positioned reads and no caching. It backs OFFLINE/ONCE-style cold access
// where the engine deliberately avoids materializing the whole file.
type FileSource struct {
	file *os.File
	size int64
}

// OpenFileSource opens path for positioned reads.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	return &FileSource{file: f, size: fi.Size()}, nil
}

func (s *FileSource) ReadAt(p []byte, off int64) error {
	_, err := s.file.ReadAt(p, off)
	if err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}

		return err
	}

	return nil
}

func (s *FileSource) Len() int64   { return s.size }
func (s *FileSource) Close() error { return s.file.Close() }
