package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrIndexOutOfRange = errors.New("global sample index out of range")

// Item is one training example: a CQT window and its label window, both with
// the dataset's uniform number of frame rows.
type Item struct {
	CQT    *mat.Dense
	Labels *mat.Dense
}

// Get resolves a global index to its (spectral window, label window) pair.
// Indices below the positive count address positive samples and slice the
// recording's ground-truth tensor; the rest address negative samples, whose
// label window is all zeros; the reserved "none" column is only ever
// populated inside the full ground-truth tensors, not here.
//
// Get touches no I/O and is safe for concurrent use once construction is
// done.
func (d *Dataset) Get(idx int) (Item, error) {
	if idx < 0 || idx >= d.Len() {
		return Item{}, fmt.Errorf("%w: %d with %d samples", ErrIndexOutOfRange, idx, d.Len())
	}

	if idx < len(d.samples) {
		s := d.samples[idx]

		return Item{
			CQT:    window(d.spectra[s.Recording], s.StartFrame, s.EndFrame),
			Labels: window(d.groundTruth[s.Recording], s.StartFrame, s.EndFrame),
		}, nil
	}

	s := d.noneSamples[idx-len(d.samples)]

	return Item{
		CQT:    window(d.spectra[s.Recording], s.StartFrame, s.EndFrame),
		Labels: mat.NewDense(s.EndFrame-s.StartFrame, d.vocab.Size(), nil),
	}, nil
}

// window slices rows [start, end) of a matrix without copying.
func window(m *mat.Dense, start, end int) *mat.Dense {
	_, cols := m.Dims()

	return m.Slice(start, end, 0, cols).(*mat.Dense)
}
