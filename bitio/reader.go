package bitio

import (
	"math/bits"

	"github.com/webgraph-go/bvgraph/errs"
)

// Reader decodes a big-endian (MSB-first) bit stream positioned over a
// ByteSource. A Reader is cheap to create and holds only a one-byte cache
// plus a bit cursor, so random-access decoding creates one Reader per cursor
// rather than sharing a single mutable stream across goroutines.
//
// A Reader is not safe for concurrent use; see Copy for the flyweight
// pattern callers should use across threads.
type Reader struct {
	src ByteSource

	bitPos int64 // absolute position of the next unread bit

	curByteIdx int64 // byte index currently cached in curByte, -1 if none
	curByte    byte
}

// NewReader returns a Reader over src starting at bit position 0.
func NewReader(src ByteSource) *Reader {
	return &Reader{src: src, curByteIdx: -1}
}

// Copy returns an independent Reader over the same immutable ByteSource,
// positioned at the same bit. The two readers share no mutable state; this
// is the primitive flyweight copy() relies on.
func (r *Reader) Copy() *Reader {
	return &Reader{src: r.src, bitPos: r.bitPos, curByteIdx: -1}
}

// Position returns the current absolute bit position.
func (r *Reader) Position() int64 { return r.bitPos }

// SeekBit repositions the reader to an absolute bit offset.
func (r *Reader) SeekBit(pos int64) {
	r.bitPos = pos
	r.curByteIdx = -1
}

// Skip advances the reader by n bits without decoding them.
func (r *Reader) Skip(n int64) { r.SeekBit(r.bitPos + n) }

func (r *Reader) fillByte(idx int64) error {
	if idx == r.curByteIdx {
		return nil
	}

	var b [1]byte
	if err := r.src.ReadAt(b[:], idx); err != nil {
		return errs.ErrTruncatedStream
	}
	r.curByte = b[0]
	r.curByteIdx = idx

	return nil
}

// ReadBit reads a single bit, MSB first within each byte.
func (r *Reader) ReadBit() (uint, error) {
	byteIdx := r.bitPos >> 3
	if err := r.fillByte(byteIdx); err != nil {
		return 0, err
	}
	shift := uint(7 - (r.bitPos & 7))
	r.bitPos++

	return uint((r.curByte >> shift) & 1), nil
}

// ReadBits reads the next n bits (0 <= n <= 64) as an unsigned integer, MSB
// first: the first bit read becomes the most significant bit of the result.
func (r *Reader) ReadBits(n uint) (uint64, error) {
	var v uint64
	for i := uint(0); i < n; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v = (v << 1) | uint64(bit)
	}

	return v, nil
}

// ReadUnary reads a unary code: a run of zero bits terminated by a one bit,
// returning the count of zero bits.
func (r *Reader) ReadUnary() (uint64, error) {
	var n uint64
	for {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			return n, nil
		}
		n++
	}
}

// ReadGamma reads a γ code and returns the decoded non-negative integer.
func (r *Reader) ReadGamma() (uint64, error) {
	msb, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	if msb == 0 {
		return 0, nil
	}
	low, err := r.ReadBits(uint(msb))
	if err != nil {
		return 0, err
	}

	return ((uint64(1) << msb) | low) - 1, nil
}

// ReadDelta reads a δ code and returns the decoded non-negative integer.
func (r *Reader) ReadDelta() (uint64, error) {
	msbLen, err := r.ReadGamma()
	if err != nil {
		return 0, err
	}
	if msbLen == 0 {
		return 0, nil
	}
	low, err := r.ReadBits(uint(msbLen))
	if err != nil {
		return 0, err
	}

	return ((uint64(1) << msbLen) | low) - 1, nil
}

// ReadMinimalBinary reads a truncated-binary ("minimal binary") code for a
// value known to lie in [0, b). It borrows one extra bit for values in the
// upper half of the range, so the expected code length is the standard
// ceil(log2(b)) rather than always rounding up.
func (r *Reader) ReadMinimalBinary(b uint64) (uint64, error) {
	if b <= 1 {
		return 0, nil
	}
	log2b := uint(bits.Len64(b) - 1)
	thresh := (uint64(1) << (log2b + 1)) - b

	v, err := r.ReadBits(log2b)
	if err != nil {
		return 0, err
	}
	if v < thresh {
		return v, nil
	}

	extra, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	full := (v << 1) | uint64(extra)

	return full - thresh, nil
}

// ReadZeta reads a ζ_k code for parameter k >= 1.
func (r *Reader) ReadZeta(k uint) (uint64, error) {
	h, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	left := uint64(1) << (uint(h) * k)
	m := (left << k) - left
	rem, err := r.ReadMinimalBinary(m)
	if err != nil {
		return 0, err
	}

	return left + rem - 1, nil
}

// ReadGolomb reads a Golomb code with divisor b >= 1: a unary quotient
// followed by a minimal-binary remainder in [0, b).
func (r *Reader) ReadGolomb(b uint64) (uint64, error) {
	q, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}
	rem, err := r.ReadMinimalBinary(b)
	if err != nil {
		return 0, err
	}

	return q*b + rem, nil
}

// ReadSkewedGolomb reads a skewed Golomb code: like Golomb, but the divisor
// doubles after every unary step, so values in the first zone [0, b) cost
// exactly what a fixed-divisor Golomb code charges them while large outliers
// terminate in O(log n) unary steps instead of O(n/b).
func (r *Reader) ReadSkewedGolomb(b uint64) (uint64, error) {
	zone, err := r.ReadUnary()
	if err != nil {
		return 0, err
	}

	var offset, size uint64 = 0, b
	for i := uint64(0); i < zone; i++ {
		offset += size
		size *= 2
	}

	rem, err := r.ReadMinimalBinary(size)
	if err != nil {
		return 0, err
	}

	return offset + rem, nil
}

// ReadNibble reads a nibble code: groups of 4 bits, the top bit of each
// group a continuation flag and the low 3 bits data, most significant group
// first.
func (r *Reader) ReadNibble() (uint64, error) {
	var v uint64
	for {
		group, err := r.ReadBits(4)
		if err != nil {
			return 0, err
		}
		v = (v << 3) | (group & 0x7)
		if group&0x8 == 0 {
			return v, nil
		}
	}
}
