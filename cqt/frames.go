// Package cqt stores and serves the per-recording constant-Q magnitude
// matrices and owns the fixed frame grid shared by every consumer.
package cqt

import "math"

// Fixed analysis parameters of the corpus. These are part of the artifact
// contract: labels and windows are only comparable across runs if every
// producer and consumer agrees on them.
const (
	SampleRate = 22050
	HopLength  = 512
	NumBins    = 84
)

// FrameRate is the number of CQT frames per second (~43.07).
const FrameRate = float64(SampleRate) / float64(HopLength)

// SecondsToFrame converts a boundary in seconds to a frame index. The
// rounding here is the single definition used everywhere; converting the same
// boundary twice must always land on the same frame.
func SecondsToFrame(sec float64) int {
	return int(math.Round(sec * SampleRate / HopLength))
}

// FrameToSeconds converts a frame index to whole seconds, truncating. This is
// the inverse used for reporting and waveform addressing; it deliberately
// floors so a frame maps into the second it starts in.
func FrameToSeconds(frame int) int {
	return frame * HopLength / SampleRate
}
