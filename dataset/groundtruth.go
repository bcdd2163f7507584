package dataset

import (
	"fmt"

	"github.com/motifdet/leitmotif/annotation"
	"github.com/motifdet/leitmotif/cqt"
	"github.com/motifdet/leitmotif/motif"
	"gonum.org/v1/gonum/mat"
)

// buildGroundTruth rasterizes the annotated instances of one recording onto
// the frame grid: a (num_frames, K) binary matrix where simultaneous motifs
// may overlap, and the last column marks frames no motif covers. Per frame
// the "none" column is the complement of the motif columns, never set
// independently.
func buildGroundTruth(
	numFrames int,
	instances []annotation.Instance,
	vocab *motif.Vocabulary,
) (*mat.Dense, error) {
	gt := mat.NewDense(numFrames, vocab.Size(), nil)

	for _, inst := range instances {
		col, ok := vocab.Index(inst.Motif)
		if !ok {
			return nil, fmt.Errorf("%w: %q", annotation.ErrUnknownMotif, inst.Motif)
		}

		start := cqt.SecondsToFrame(inst.StartSec)
		if start < 0 {
			start = 0
		}

		end := cqt.SecondsToFrame(inst.EndSec)
		if end > numFrames {
			end = numFrames
		}

		for f := start; f < end; f++ {
			gt.Set(f, col, 1)
		}
	}

	noneCol := vocab.NoneIndex()

	for f := range numFrames {
		covered := 0.0

		for c := range noneCol {
			if gt.At(f, c) > covered {
				covered = gt.At(f, c)
			}
		}

		gt.Set(f, noneCol, 1-covered)
	}

	return gt, nil
}
