// Package succinct implements the space-efficient structures the graph
// engine uses for O(1) random access over monotone sequences: an Elias-Fano
// encoding of the node offsets and of the cumulative outdegree list.
package succinct

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/webgraph-go/bvgraph/bitio"
)

// EliasFano stores a monotone non-decreasing sequence of n uint64 values in
// roughly 2 + ceil(log2(U/n)) bits per element, where U is the largest
// stored value, while still answering Get(i) in O(1).
//
// The low ⌊log2(U/n)⌋ bits of every value are packed into a bit array
// (reusing the bit codec's writer/reader so there is exactly one bit-packing
// implementation in the module). The high bits are stored as a unary-coded
// bit vector with a sampled select1 index.
type EliasFano struct {
	count   int64
	lowBits uint
	lowSrc  *bitio.ByteArraySource
	high    *bitVector
}

// Build constructs an EliasFano over values, which must be non-decreasing.
func Build(values []uint64) (*EliasFano, error) {
	count := int64(len(values))
	if count == 0 {
		return &EliasFano{}, nil
	}

	u := values[count-1]
	for i := int64(1); i < count; i++ {
		if values[i] < values[i-1] {
			return nil, fmt.Errorf("succinct: values must be non-decreasing at index %d", i)
		}
	}

	lowBits := uint(0)
	if count > 0 {
		target := u / uint64(count)
		if target > 0 {
			lowBits = uint(bits.Len64(target) - 1)
		}
	}

	var lowBuf bytes.Buffer
	lw := bitio.NewWriter(&lowBuf)
	highLen := count + int64(u>>lowBits) + 1
	high := newBitVector(highLen)

	var prevHigh uint64
	for i, v := range values {
		if lowBits > 0 {
			if err := lw.WriteBits(v&((uint64(1)<<lowBits)-1), lowBits); err != nil {
				return nil, err
			}
		}
		h := v >> lowBits
		gap := h - prevHigh
		pos := int64(i) + int64(prevHigh) + int64(gap) // position of this value's terminating one bit
		high.set(pos)
		prevHigh = h
	}
	high.buildSelectIndex()

	if err := lw.Flush(); err != nil {
		return nil, err
	}

	return &EliasFano{
		count:   count,
		lowBits: lowBits,
		lowSrc:  bitio.NewByteArraySource(lowBuf.Bytes()),
		high:    high,
	}, nil
}

// Len returns the number of stored values.
func (ef *EliasFano) Len() int64 { return ef.count }

// Get returns the i-th stored value in O(1).
func (ef *EliasFano) Get(i int64) uint64 {
	pos := ef.high.select1(i)
	highVal := uint64(pos - i)

	if ef.lowBits == 0 {
		return highVal
	}

	r := bitio.NewReader(ef.lowSrc)
	r.SeekBit(i * int64(ef.lowBits))
	low, err := r.ReadBits(ef.lowBits)
	if err != nil {
		// The low-bit array is sized exactly for count*lowBits bits by
		// construction; a read failure here means a bug, not bad input.
		panic(fmt.Sprintf("succinct: low-bit read failed at index %d: %v", i, err))
	}

	return (highVal << ef.lowBits) | low
}

// Iterator returns a sequential cursor over the stored values, used for
// streaming consumption (e.g. reconstructing node offsets one at a time).
func (ef *EliasFano) Iterator() *Iterator {
	return &Iterator{ef: ef}
}

// Iterator sequentially walks an EliasFano sequence.
type Iterator struct {
	ef  *EliasFano
	idx int64
}

// HasNext reports whether another value remains.
func (it *Iterator) HasNext() bool { return it.idx < it.ef.count }

// Next returns the next value and advances the cursor.
func (it *Iterator) Next() uint64 {
	v := it.ef.Get(it.idx)
	it.idx++

	return v
}
