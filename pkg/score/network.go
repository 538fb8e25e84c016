package score

import (
	"math"
	"sort"
)

// binOffsets expands the configured mass differences into the sorted, unique
// set of bin offsets a query bin may be shifted by to find candidate
// reference bins. Each base diff (and its negation) is combined recursively
// across ReactSteps, then widened by the tolerance window so that two bins
// match iff their discretized distance from some networked diff is at most
// ceil(tolerance / binWidth).
func binOffsets(p Params, binWidth float64) []int64 {
	diffs := make(map[int64]struct{})
	for _, d := range p.MassDiffs {
		bins := int64(math.Round(math.Abs(d) / binWidth))
		diffs[bins] = struct{}{}
		diffs[-bins] = struct{}{}
	}
	if len(diffs) == 0 {
		diffs[0] = struct{}{}
	}

	base := setToSlice(diffs)
	steps := p.ReactSteps
	if steps < 1 {
		steps = 1
	}
	reacted := react(base, steps)

	window := int64(math.Ceil(p.Tolerance / binWidth))
	offsets := make(map[int64]struct{})
	for _, d := range reacted {
		for w := -window; w <= window; w++ {
			offsets[d+w] = struct{}{}
		}
	}

	out := setToSlice(offsets)
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// react combines diffs by outer summation across the given number of steps.
func react(diffs []int64, steps int) []int64 {
	if steps <= 1 {
		return diffs
	}
	prev := react(diffs, steps-1)
	seen := make(map[int64]struct{}, len(prev)*len(diffs))
	for _, a := range diffs {
		for _, b := range prev {
			seen[a+b] = struct{}{}
		}
	}
	return setToSlice(seen)
}

func setToSlice(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}
