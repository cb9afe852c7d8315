package succinct

import "fmt"

// CumulativeOutdegree stores the prefix sums of every node's outdegree as a
// succinct monotone sequence: CumulativeAt(i) is the total number of arcs
// contributed by nodes [0, i). This is the structure node-iterator splitting
// walks to find mask-aligned partition boundaries without decoding the
// degree of every intervening node.
type CumulativeOutdegree struct {
	ef           *EliasFano
	currentIndex int64
}

// BuildCumulativeOutdegree computes prefix sums over per-node outdegrees and
// encodes them as an EliasFano sequence of length len(outdegrees)+1.
func BuildCumulativeOutdegree(outdegrees []uint64) (*CumulativeOutdegree, error) {
	prefix := make([]uint64, len(outdegrees)+1)
	for i, d := range outdegrees {
		prefix[i+1] = prefix[i] + d
	}

	ef, err := Build(prefix)
	if err != nil {
		return nil, fmt.Errorf("succinct: building cumulative outdegree: %w", err)
	}

	return &CumulativeOutdegree{ef: ef, currentIndex: -1}, nil
}

// NumNodes returns the number of nodes the structure was built over.
func (c *CumulativeOutdegree) NumNodes() int64 { return c.ef.Len() - 1 }

// CumulativeAt returns the total arc count contributed by nodes [0, i).
func (c *CumulativeOutdegree) CumulativeAt(i int64) uint64 { return c.ef.Get(i) }

// Outdegree returns the outdegree of node i.
func (c *CumulativeOutdegree) Outdegree(i int64) uint64 {
	return c.ef.Get(i+1) - c.ef.Get(i)
}

// CurrentIndex returns the node index the forward-only cursor last stopped
// at, or -1 if SkipTo has never been called.
func (c *CumulativeOutdegree) CurrentIndex() int64 { return c.currentIndex }

// SkipTo advances the cursor forward from its current position to the
// smallest node index j such that CumulativeAt(j) >= a AND (j & mask) == 0,
// mask being a power-of-two-minus-one bitmask (0, 1, 3, 7, ...) rather than
// a divisor: μ = 2^k-1 forces j to a multiple of 2^k, one bit test per
// candidate rather than a division. Because CumulativeAt is non-decreasing,
// the first index overall with cumulative >= a bounds where an aligned
// answer can start, so the scan never needs to look behind it. The cursor
// never moves backwards: calling SkipTo with a smaller a than a previous
// call returns the same position as before without rescanning.
//
// It returns the mask-aligned node index, the cumulative arc count at that
// index, and false once the cursor has reached the last node without
// finding one at or past a.
func (c *CumulativeOutdegree) SkipTo(a uint64, mask uint64) (index int64, cumulative uint64, ok bool) {
	n := c.NumNodes()
	start := c.currentIndex
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}

	for i := start; i <= n; i++ {
		if c.ef.Get(i) < a {
			continue
		}

		aligned := i
		for aligned <= n && (aligned&int64(mask)) != 0 {
			aligned++
		}
		if aligned > n {
			break
		}
		c.currentIndex = aligned

		return aligned, c.ef.Get(aligned), true
	}

	c.currentIndex = n

	return n, c.ef.Get(n), false
}
