package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PeakNormalize scales each bin column of a frame-major magnitude matrix so
// its maximum absolute value over time is 1. All-zero columns are left
// untouched. This matches the artifact contract: normalization happens once,
// at conversion time.
func PeakNormalize(m *mat.Dense) {
	rows, cols := m.Dims()

	for j := range cols {
		peak := 0.0
		for i := range rows {
			peak = math.Max(peak, math.Abs(m.At(i, j)))
		}

		if peak == 0 {
			continue
		}

		for i := range rows {
			m.Set(i, j, m.At(i, j)/peak)
		}
	}
}

// Convert runs the full conversion step for one recording: constant-Q
// transform followed by per-bin peak normalization.
func Convert(samples []float64, sampleRate int) *mat.Dense {
	m := CQT(samples, sampleRate)
	PeakNormalize(m)

	return m
}
