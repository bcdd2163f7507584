package dataset

import (
	"fmt"
	"path/filepath"

	"github.com/motifdet/leitmotif/audio"
	"github.com/motifdet/leitmotif/cqt"
	"github.com/motifdet/leitmotif/motif"
	"github.com/motifdet/leitmotif/recording"
	"gonum.org/v1/gonum/mat"
)

// Preview is the inspection view of one sample: identity, the raw waveform
// window at the recording's native rate, and the label window.
type Preview struct {
	Recording   recording.ID
	Motif       string
	Samples     []float64
	SampleRate  int
	StartSec    int
	GroundTruth *mat.Dense
}

// PreviewIndex resolves a global index back to its recording and slices the
// matching window out of the raw waveform. It reads the WAV file on every
// call; it exists for listening and debugging and is deliberately kept off
// the I/O-free training accessor.
func (d *Dataset) PreviewIndex(idx int) (*Preview, error) {
	if idx < 0 || idx >= d.Len() {
		return nil, fmt.Errorf("%w: %d with %d samples", ErrIndexOutOfRange, idx, d.Len())
	}

	var (
		id          recording.ID
		label       string
		startFrame  int
		groundTruth *mat.Dense
	)

	if idx < len(d.samples) {
		s := d.samples[idx]
		id = s.Recording
		label = s.Motif
		startFrame = s.StartFrame
		groundTruth = window(d.groundTruth[id], s.StartFrame, s.EndFrame)
	} else {
		s := d.noneSamples[idx-len(d.samples)]
		id = s.Recording
		label = motif.NoneLabel
		startFrame = s.StartFrame
		groundTruth = mat.NewDense(s.EndFrame-s.StartFrame, d.vocab.Size(), nil)
	}

	startSec := cqt.FrameToSeconds(startFrame)
	path := filepath.Join(d.opts.AudioDir, id.String()+".wav")

	samples, sampleRate, err := audio.LoadWAV(path)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Recording:   id,
		Motif:       label,
		Samples:     audio.Slice(samples, sampleRate, startSec, d.opts.DurationSec),
		SampleRate:  sampleRate,
		StartSec:    startSec,
		GroundTruth: groundTruth,
	}, nil
}
