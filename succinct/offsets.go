package succinct

import "fmt"

// OffsetTable maps a node id to the bit offset, within the compressed
// .graph stream, where that node's successor list begins. Index numNodes
// (one past the last node) stores the length of the stream, so Get(i+1) -
// Get(i) is always a valid span even for the last node.
type OffsetTable interface {
	Get(i int64) uint64
	Len() int64
}

// DirectOffsets is a plain in-memory array of offsets. BuildOffsetTable
// uses it for sequences small enough that the succinct encoding isn't worth
// the random-access indirection, whether the values came from a .obl cache
// file or from the offsets stream.
type DirectOffsets struct {
	values []uint64
}

// NewDirectOffsets wraps a precomputed offset array.
func NewDirectOffsets(values []uint64) *DirectOffsets {
	return &DirectOffsets{values: values}
}

func (d *DirectOffsets) Get(i int64) uint64 { return d.values[i] }
func (d *DirectOffsets) Len() int64         { return int64(len(d.values)) }

// EliasFanoOffsets is the succinct representation BuildOffsetTable uses for
// longer sequences, whether loaded from a .obl cache file or rebuilt from
// the offsets stream: it answers each Get from the monotone sequence with
// no decompression step, at the cost of one select1 per Get.
type EliasFanoOffsets struct {
	ef *EliasFano
}

// NewEliasFanoOffsets builds a succinct offset table over a monotone
// sequence of bit offsets (values[0] is conventionally 0).
func NewEliasFanoOffsets(values []uint64) (*EliasFanoOffsets, error) {
	ef, err := Build(values)
	if err != nil {
		return nil, fmt.Errorf("succinct: building offset table: %w", err)
	}

	return &EliasFanoOffsets{ef: ef}, nil
}

func (e *EliasFanoOffsets) Get(i int64) uint64 { return e.ef.Get(i) }
func (e *EliasFanoOffsets) Len() int64         { return e.ef.Len() }

// DirectOffsetThreshold is the default node-count below which
// BuildOffsetTable prefers a DirectOffsets over the succinct encoding: below
// this size the flat array is smaller, or close enough, that the extra
// select1 indirection of Elias-Fano buys nothing.
const DirectOffsetThreshold = 1024

// BuildOffsetTable picks a backing representation for values based on size:
// short sequences get a DirectOffsets for branch-free access, longer ones
// fall back to the succinct EliasFanoOffsets so resident memory stays
// proportional to entropy rather than to node count.
func BuildOffsetTable(values []uint64, directThreshold int) (OffsetTable, error) {
	if directThreshold <= 0 {
		directThreshold = DirectOffsetThreshold
	}
	if len(values) <= directThreshold {
		return NewDirectOffsets(values), nil
	}

	return NewEliasFanoOffsets(values)
}
