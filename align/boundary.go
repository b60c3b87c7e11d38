package align

import (
	"fmt"
	"sort"
)

// SelectBoundaries reduces or expands onset candidates to a boundary set
// of exactly k+1 strictly increasing sample indices, with first element 0
// and last element totalSamples, for k non-space transcript characters.
//
// When more candidates exist than needed, the k-1 strongest are kept
// (ties broken by earlier frame) and re-sorted by time. When fewer exist,
// the shortfall is synthesized by uniformly subdividing the largest gaps
// between the boundaries already placed; with zero candidates this
// degenerates to a pure uniform partition into k equal parts.
func SelectBoundaries(candidates []OnsetCandidate, hopSize, totalSamples, k int) ([]int, error) {
	if k < 0 {
		return nil, invariantf("boundary selection", nil, "negative character count %d", k)
	}
	if k == 0 {
		return []int{0, totalSamples}, nil
	}
	if totalSamples < k {
		// Cannot place k strictly increasing segments into fewer samples
		return nil, fmt.Errorf("%w: %d spoken samples for %d characters", ErrNoAlignableContent, totalSamples, k)
	}

	need := k - 1

	// Candidates that map onto the signal edges can never be interior
	// boundaries and must not consume a selection slot
	usable := make([]OnsetCandidate, 0, len(candidates))
	for _, c := range candidates {
		if s := c.Frame * hopSize; s > 0 && s < totalSamples {
			usable = append(usable, c)
		}
	}

	selected := usable
	if len(usable) > need {
		sort.SliceStable(usable, func(i, j int) bool {
			if usable[i].Strength != usable[j].Strength {
				return usable[i].Strength > usable[j].Strength
			}
			return usable[i].Frame < usable[j].Frame
		})
		selected = usable[:need]
	}

	// Convert to interior sample indices, sorted and deduplicated.
	// Near-simultaneous candidates that collapse to one sample index are
	// merged by dropping the later duplicate; the resulting shortfall is
	// refilled below.
	interior := make([]int, 0, len(selected))
	for _, c := range selected {
		interior = append(interior, c.Frame*hopSize)
	}
	sort.Ints(interior)
	interior = dedupeSorted(interior)

	boundaries := make([]int, 0, k+1)
	boundaries = append(boundaries, 0)
	boundaries = append(boundaries, interior...)
	boundaries = append(boundaries, totalSamples)

	if shortfall := need - len(interior); shortfall > 0 {
		boundaries = fillLargestGaps(boundaries, shortfall)
	}

	if len(boundaries) != k+1 {
		return nil, invariantf("boundary selection", boundaries,
			"got %d boundaries, want %d", len(boundaries), k+1)
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return nil, invariantf("boundary selection", boundaries,
				"not strictly increasing at index %d", i)
		}
	}

	return boundaries, nil
}

// fillLargestGaps inserts shortfall synthesized boundaries by subdividing
// the existing gaps. Each gap receives a share proportional to its length
// (largest remainder, ties to the earlier gap), capped so a gap of g
// samples never takes more than g-1 boundaries; inserted boundaries split
// their gap into equal parts. Deterministic for identical input.
func fillLargestGaps(boundaries []int, shortfall int) []int {
	numGaps := len(boundaries) - 1
	gapLen := make([]int, numGaps)
	totalLen := 0
	for i := 0; i < numGaps; i++ {
		gapLen[i] = boundaries[i+1] - boundaries[i]
		totalLen += gapLen[i]
	}
	if totalLen <= 0 {
		return boundaries
	}

	// Proportional quotas, capped by gap capacity
	quota := make([]int, numGaps)
	assigned := 0
	for i := 0; i < numGaps; i++ {
		q := shortfall * gapLen[i] / totalLen
		if maxQ := gapLen[i] - 1; q > maxQ {
			q = maxQ
		}
		quota[i] = q
		assigned += q
	}

	// Hand out the remainder one at a time to the gap whose sub-segments
	// would currently be largest, earliest gap on ties
	for assigned < shortfall {
		best := -1
		bestSize := 0
		for i := 0; i < numGaps; i++ {
			if quota[i] >= gapLen[i]-1 {
				continue
			}
			size := gapLen[i] / (quota[i] + 2)
			if size > bestSize {
				bestSize = size
				best = i
			}
		}
		if best < 0 {
			break
		}
		quota[best]++
		assigned++
	}

	// Materialize the subdivided boundary list
	filled := make([]int, 0, len(boundaries)+shortfall)
	for i := 0; i < numGaps; i++ {
		start := boundaries[i]
		filled = append(filled, start)
		n := quota[i]
		for j := 1; j <= n; j++ {
			filled = append(filled, start+gapLen[i]*j/(n+1))
		}
	}
	filled = append(filled, boundaries[len(boundaries)-1])

	return filled
}

// dedupeSorted removes duplicates from a sorted slice in place
func dedupeSorted(xs []int) []int {
	if len(xs) < 2 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
