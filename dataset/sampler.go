package dataset

import (
	"math/rand"
	"sort"

	"github.com/motifdet/leitmotif/annotation"
	"github.com/motifdet/leitmotif/intervals"
)

type positiveWindow struct {
	motif    string
	startSec float64
}

// positiveWindows derives one fixed-duration window per annotated instance,
// anchored at the instance onset and shifted back only as far as needed to
// stay inside the recording. Deterministic: no randomness on the positive
// side.
func positiveWindows(instances []annotation.Instance, durationSec, totalSec float64) []positiveWindow {
	windows := make([]positiveWindow, 0, len(instances))

	for _, inst := range instances {
		start := inst.StartSec
		if start+durationSec > totalSec {
			start = totalSec - durationSec
		}

		if start < 0 {
			start = 0
		}

		windows = append(windows, positiveWindow{motif: inst.Motif, startSec: start})
	}

	return windows
}

// negativeStarts greedily draws non-overlapping windows from the space left
// free by the annotated instances. Every accepted window joins the occupied
// set before the next draw, so the free space strictly shrinks and the loop
// terminates once no region can hold another window. That depletion is the
// normal stop condition, not an error. Starts are returned sorted for
// reproducible ordering.
func negativeStarts(
	rng *rand.Rand,
	instances []annotation.Instance,
	totalSec, durationSec float64,
) []float64 {
	occupied := make([]intervals.Interval, 0, len(instances))

	for _, inst := range instances {
		occupied = append(occupied, intervals.Interval{Start: inst.StartSec, End: inst.EndSec})
	}

	var starts []float64

	for {
		free := intervals.Free(occupied, totalSec)

		window, ok := intervals.SampleFree(rng, free, durationSec)
		if !ok {
			break
		}

		occupied = append(occupied, window)
		starts = append(starts, window.Start)
	}

	sort.Float64s(starts)

	return starts
}
