// Package dataset assembles fixed-length leitmotif training examples from
// cached CQT matrices and annotated occurrence tables. A Dataset is built
// once, synchronously, and is read-only afterward, so any number of loader
// goroutines may call Get concurrently.
package dataset

import (
	"math/rand"

	"github.com/motifdet/leitmotif/annotation"
	"github.com/motifdet/leitmotif/config"
	"github.com/motifdet/leitmotif/cqt"
	"github.com/motifdet/leitmotif/logging"
	"github.com/motifdet/leitmotif/motif"
	"github.com/motifdet/leitmotif/recording"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultWindowFrames is the uniform sample length: 646 CQT frames,
	// just over 15 seconds at the corpus frame rate.
	DefaultWindowFrames = 646

	// DefaultDurationSec is the window length on the seconds axis used for
	// interval sampling and waveform slicing.
	DefaultDurationSec = 15.0
)

// PositiveSample is one training window that contains an annotated leitmotif
// occurrence.
type PositiveSample struct {
	Recording  recording.ID
	Motif      string
	StartFrame int
	EndFrame   int
}

// NegativeSample is one training window guaranteed not to overlap any
// annotated occurrence in its recording.
type NegativeSample struct {
	Recording  recording.ID
	StartFrame int
	EndFrame   int
}

type Options struct {
	// DurationSec and WindowFrames describe the same window length on the
	// two time axes; both default to the corpus standard.
	DurationSec  float64
	WindowFrames int

	// Seed drives negative-window sampling. Same seed, same artifacts,
	// same dataset.
	Seed int64

	// AudioDir holds the raw per-recording WAV files for the preview path.
	AudioDir string

	ShowProgress bool
}

func (o Options) withDefaults() Options {
	if o.DurationSec == 0 {
		o.DurationSec = DefaultDurationSec
	}

	if o.WindowFrames == 0 {
		o.WindowFrames = DefaultWindowFrames
	}

	return o
}

// FromConfig maps the loaded process configuration onto Options.
func FromConfig() Options {
	return Options{
		DurationSec:  config.Conf.DurationSec,
		WindowFrames: config.Conf.WindowFrames,
		Seed:         config.Conf.Seed,
		AudioDir:     config.Conf.AudioDir,
		ShowProgress: config.Conf.ShowProgress,
	}
}

// Dataset indexes every positive and negative sample of the corpus. Global
// indices address positives first, then negatives, split at the positive
// count.
type Dataset struct {
	spectra     map[recording.ID]*mat.Dense
	groundTruth map[recording.ID]*mat.Dense
	samples     []PositiveSample
	noneSamples []NegativeSample
	vocab       *motif.Vocabulary
	opts        Options
}

// New builds the dataset index over every recording the cache knows,
// in lexicographic recording order so sample indices are reproducible.
// Any recording with a missing or inconsistent artifact or annotation table
// fails construction outright.
func New(
	cache *cqt.Cache,
	annotations *annotation.Repository,
	vocab *motif.Vocabulary,
	opts Options,
) (*Dataset, error) {
	opts = opts.withDefaults()

	keys, err := cache.Keys()
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("Creating dataset", zap.Int("recordings", len(keys)))

	d := &Dataset{
		spectra:     make(map[recording.ID]*mat.Dense, len(keys)),
		groundTruth: make(map[recording.ID]*mat.Dense, len(keys)),
		vocab:       vocab,
		opts:        opts,
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	var (
		progress *mpb.Progress
		bar      *mpb.Bar
	)

	if opts.ShowProgress {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(int64(len(keys)),
			mpb.PrependDecorators(
				decor.Name("Recordings: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
			),
		)
	}

	for _, id := range keys {
		err = d.addRecording(id, cache, annotations, rng)
		if err != nil {
			return nil, err
		}

		if bar != nil {
			bar.Increment()
		}
	}

	if progress != nil {
		progress.Wait()
	}

	logging.Logger.Info("Dataset created",
		zap.Int("positive_samples", len(d.samples)),
		zap.Int("negative_samples", len(d.noneSamples)),
	)

	return d, nil
}

// NewFromConfig wires a dataset from the loaded process configuration.
func NewFromConfig(vocab *motif.Vocabulary) (*Dataset, error) {
	cache, err := cqt.Open(config.Conf.CQTDir)
	if err != nil {
		return nil, err
	}

	annotations := annotation.NewRepository(config.Conf.AnnotationDir, vocab)

	return New(cache, annotations, vocab, FromConfig())
}

func (d *Dataset) addRecording(
	id recording.ID,
	cache *cqt.Cache,
	annotations *annotation.Repository,
	rng *rand.Rand,
) error {
	m, err := cache.Load(id)
	if err != nil {
		return err
	}

	instances, err := annotations.Instances(id)
	if err != nil {
		return err
	}

	numFrames, _ := m.Dims()
	totalSec := float64(cqt.FrameToSeconds(numFrames))

	gt, err := buildGroundTruth(numFrames, instances, d.vocab)
	if err != nil {
		return err
	}

	d.spectra[id] = m
	d.groundTruth[id] = gt

	if numFrames < d.opts.WindowFrames {
		logging.Logger.Warn("Recording shorter than the sample window, no samples drawn",
			zap.String("recording", id.String()),
			zap.Int("num_frames", numFrames),
		)

		return nil
	}

	for _, w := range positiveWindows(instances, d.opts.DurationSec, totalSec) {
		start := clampWindow(cqt.SecondsToFrame(w.startSec), d.opts.WindowFrames, numFrames)

		d.samples = append(d.samples, PositiveSample{
			Recording:  id,
			Motif:      w.motif,
			StartFrame: start,
			EndFrame:   start + d.opts.WindowFrames,
		})
	}

	for _, startSec := range negativeStarts(rng, instances, totalSec, d.opts.DurationSec) {
		start := clampWindow(cqt.SecondsToFrame(startSec), d.opts.WindowFrames, numFrames)

		d.noneSamples = append(d.noneSamples, NegativeSample{
			Recording:  id,
			StartFrame: start,
			EndFrame:   start + d.opts.WindowFrames,
		})
	}

	logging.Logger.Debug("Recording indexed",
		zap.String("recording", id.String()),
		zap.Int("instances", len(instances)),
	)

	return nil
}

// clampWindow keeps a window of the given length inside [0, numFrames).
func clampWindow(start, windowFrames, numFrames int) int {
	if start+windowFrames > numFrames {
		start = numFrames - windowFrames
	}

	if start < 0 {
		start = 0
	}

	return start
}

// Len is the total number of addressable samples, positives then negatives.
func (d *Dataset) Len() int {
	return len(d.samples) + len(d.noneSamples)
}

// Positives returns the positive sample index in construction order.
func (d *Dataset) Positives() []PositiveSample {
	return d.samples
}

// Negatives returns the negative sample index in construction order.
func (d *Dataset) Negatives() []NegativeSample {
	return d.noneSamples
}

// GroundTruth returns the full (num_frames, K) ground-truth tensor of one
// recording, or nil if the recording is unknown.
func (d *Dataset) GroundTruth(id recording.ID) *mat.Dense {
	return d.groundTruth[id]
}
