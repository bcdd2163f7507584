package dataset

import (
	"github.com/motifdet/leitmotif/cqt"
	"github.com/motifdet/leitmotif/recording"
)

// MotifMatch locates one positive sample of a queried motif.
type MotifMatch struct {
	Index     int
	Recording recording.ID
	StartSec  int
	EndSec    int
}

// QueryMotif returns every positive sample labeled with the given motif, in
// index order. A motif with no samples yields nil: an empty result, not an
// error.
func (d *Dataset) QueryMotif(label string) []MotifMatch {
	var matches []MotifMatch

	for i, s := range d.samples {
		if s.Motif != label {
			continue
		}

		matches = append(matches, MotifMatch{
			Index:     i,
			Recording: s.Recording,
			StartSec:  cqt.FrameToSeconds(s.StartFrame),
			EndSec:    cqt.FrameToSeconds(s.EndFrame),
		})
	}

	return matches
}
