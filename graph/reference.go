package graph

import "github.com/webgraph-go/bvgraph/internal/pool"

// foldSignedGap maps a signed gap to a non-negative integer: 2n for n >= 0,
// 2|n|-1 for n < 0. unfoldSignedGap is its inverse.
func foldSignedGap(n int64) uint64 {
	if n >= 0 {
		return uint64(n) * 2
	}

	return uint64(-n)*2 - 1
}

func unfoldSignedGap(v uint64) int64 {
	if v%2 == 0 {
		return int64(v / 2)
	}

	return -int64((v + 1) / 2)
}

// interval is a maximal run of consecutive targets [Left, Left+Length).
type interval struct {
	Left   int64
	Length int64
}

// extractIntervals finds every maximal run of consecutive integers of
// length >= minLength in the sorted, duplicate-free slice targets. It
// returns the intervals (in ascending order) and the remaining targets not
// covered by any interval. residual's backing array is drawn from
// internal/pool's int64 slice pool, sized to the worst case (every target
// ends up a residual) the way chooseReference draws its copy mask from the
// bool slice pool; the caller must invoke cleanup once done with residual.
func extractIntervals(targets []int64, minLength int) (intervals []interval, residual []int64, cleanup func()) {
	residualBuf, cleanup := pool.GetInt64Slice(len(targets))
	residual = residualBuf[:0]

	i := 0
	for i < len(targets) {
		j := i
		for j+1 < len(targets) && targets[j+1] == targets[j]+1 {
			j++
		}
		runLen := j - i + 1
		if runLen >= minLength && minLength > 0 {
			intervals = append(intervals, interval{Left: targets[i], Length: int64(runLen)})
		} else {
			residual = append(residual, targets[i:j+1]...)
		}
		i = j + 1
	}

	return intervals, residual, cleanup
}

// copyMask returns, for each index in referenced, whether that target is
// reused by x's adjacency list (referenced and target are both sorted
// ascending).
func copyMask(referenced, target []int64) []bool {
	mask := make([]bool, len(referenced))
	fillCopyMask(mask, referenced, target)

	return mask
}

// fillCopyMask is copyMask's logic over a caller-supplied (typically
// pooled) destination slice, for the candidate-reference search in
// chooseReference where a fresh mask would otherwise be allocated on every
// trial.
func fillCopyMask(mask []bool, referenced, target []int64) {
	ti := 0
	for i, v := range referenced {
		for ti < len(target) && target[ti] < v {
			ti++
		}
		if ti < len(target) && target[ti] == v {
			mask[i] = true
			ti++
		}
	}
}

// runLengths converts a copy mask into the BV run-length encoding: a
// sequence of block lengths alternating copied/not-copied, the first block
// always assumed copied (length 0 if the mask starts with a not-copied
// run). A wholly copied mask needs no blocks; any other mask, including a
// wholly uncopied one, yields at least one block.
func runLengths(mask []bool) []int64 {
	if len(mask) == 0 {
		return nil
	}

	allSame := true
	for _, b := range mask {
		if b != mask[0] {
			allSame = false
			break
		}
	}
	if allSame && mask[0] {
		return nil // wholly copied: zero blocks, decoder infers "copy everything"
	}

	var blocks []int64
	cur := mask[0]
	if !cur {
		blocks = append(blocks, 0) // empty leading "copied" run
	}
	run := int64(0)
	for _, b := range mask {
		if b == cur {
			run++
			continue
		}
		blocks = append(blocks, run)
		cur = b
		run = 1
	}
	blocks = append(blocks, run)

	return blocks
}

// expandRunLengths reconstructs a copy mask of length n from block lengths,
// mirroring runLengths. An empty blocks slice is the "wholly copied"
// degenerate case runLengths produces for an all-true mask.
func expandRunLengths(blocks []int64, n int) []bool {
	mask := make([]bool, n)
	if len(blocks) == 0 {
		for i := range mask {
			mask[i] = true
		}

		return mask
	}

	cur := true
	pos := 0
	for _, run := range blocks {
		for k := int64(0); k < run; k++ {
			if pos >= n {
				break
			}
			mask[pos] = cur
			pos++
		}
		cur = !cur
	}

	return mask
}
