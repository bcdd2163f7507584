// Package intervals implements the interval arithmetic behind negative-window
// sampling: computing the free complement of a set of occupied time ranges
// and drawing fixed-duration windows from the remaining space.
package intervals

import (
	"math/rand"
	"sort"
)

// Interval is a half-open time range [Start, End) in seconds.
type Interval struct {
	Start float64
	End   float64
}

func (iv Interval) Length() float64 {
	return iv.End - iv.Start
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Free returns the maximal disjoint regions of [0, total) not covered by any
// occupied interval, sorted by start time. Occupied intervals may arrive
// unsorted and overlapping; they are merged first. Intervals reaching outside
// [0, total) are clamped.
func Free(occupied []Interval, total float64) []Interval {
	if total <= 0 {
		return nil
	}

	merged := merge(occupied, total)

	free := make([]Interval, 0, len(merged)+1)
	cursor := 0.0

	for _, iv := range merged {
		if iv.Start > cursor {
			free = append(free, Interval{Start: cursor, End: iv.Start})
		}

		cursor = iv.End
	}

	if cursor < total {
		free = append(free, Interval{Start: cursor, End: total})
	}

	return free
}

// merge clamps the intervals to [0, total), sorts them by start and collapses
// overlapping or touching neighbours.
func merge(occupied []Interval, total float64) []Interval {
	clamped := make([]Interval, 0, len(occupied))

	for _, iv := range occupied {
		if iv.End <= 0 || iv.Start >= total {
			continue
		}

		start := max(iv.Start, 0)

		end := min(iv.End, total)
		if start >= end {
			continue
		}

		clamped = append(clamped, Interval{Start: start, End: end})
	}

	sort.Slice(clamped, func(i, j int) bool {
		return clamped[i].Start < clamped[j].Start
	})

	merged := make([]Interval, 0, len(clamped))

	for _, iv := range clamped {
		if len(merged) == 0 || iv.Start > merged[len(merged)-1].End {
			merged = append(merged, iv)
			continue
		}

		if iv.End > merged[len(merged)-1].End {
			merged[len(merged)-1].End = iv.End
		}
	}

	return merged
}

// SampleFree draws one interval of the given duration from the free regions:
// first a uniform choice among the regions long enough to hold it, then a
// uniform start offset within the chosen region. The second return value is
// false when no region can hold the duration; that is the normal depletion
// signal of the sampling loop, not an error.
func SampleFree(rng *rand.Rand, free []Interval, duration float64) (Interval, bool) {
	if duration <= 0 {
		return Interval{}, false
	}

	eligible := make([]Interval, 0, len(free))

	for _, iv := range free {
		if iv.Length() >= duration {
			eligible = append(eligible, iv)
		}
	}

	if len(eligible) == 0 {
		return Interval{}, false
	}

	region := eligible[rng.Intn(len(eligible))]
	start := region.Start + rng.Float64()*(region.Length()-duration)

	return Interval{Start: start, End: start + duration}, true
}
