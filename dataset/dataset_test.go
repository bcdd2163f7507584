package dataset

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/motifdet/leitmotif/annotation"
	"github.com/motifdet/leitmotif/cqt"
	"github.com/motifdet/leitmotif/motif"
	"github.com/motifdet/leitmotif/recording"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// sixtySecFrames is the artifact length whose frame bookkeeping yields a
// 60 second recording (2584 * 512 / 22050 truncates to 60).
const sixtySecFrames = 2584

type fixture struct {
	cacheDir string
	annDir   string
	audioDir string
	vocab    *motif.Vocabulary
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	return &fixture{
		cacheDir: t.TempDir(),
		annDir:   t.TempDir(),
		audioDir: t.TempDir(),
		vocab:    motif.NewVocabulary(),
	}
}

func (f *fixture) addRecording(t *testing.T, id recording.ID, numFrames int, annotationRows string) {
	t.Helper()

	cache, err := cqt.Open(f.cacheDir)
	require.NoError(t, err)

	data := make([]float64, numFrames*cqt.NumBins)
	for i := range data {
		data[i] = float64(i%11) / 10
	}

	require.NoError(t, cache.Save(id, mat.NewDense(numFrames, cqt.NumBins, data)))

	versionDir := filepath.Join(f.annDir, "P-"+id.Version)
	require.NoError(t, os.MkdirAll(versionDir, 0o755))

	body := "motif;start_sec;end_sec\n" + annotationRows
	require.NoError(t, os.WriteFile(filepath.Join(versionDir, id.Act+".csv"), []byte(body), 0o644))
}

func (f *fixture) addWaveform(t *testing.T, id recording.ID, durationSec int) {
	t.Helper()

	file, err := os.Create(filepath.Join(f.audioDir, id.String()+".wav"))
	require.NoError(t, err)

	encoder := wav.NewEncoder(file, cqt.SampleRate, 16, 1, 1)

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: cqt.SampleRate},
		Data:           make([]int, durationSec*cqt.SampleRate),
		SourceBitDepth: 16,
	}

	require.NoError(t, encoder.Write(buf))
	require.NoError(t, encoder.Close())
	require.NoError(t, file.Close())
}

func (f *fixture) build(t *testing.T, seed int64) *Dataset {
	t.Helper()

	cache, err := cqt.Open(f.cacheDir)
	require.NoError(t, err)

	repo := annotation.NewRepository(f.annDir, f.vocab)

	ds, err := New(cache, repo, f.vocab, Options{
		Seed:     seed,
		AudioDir: f.audioDir,
	})
	require.NoError(t, err)

	return ds
}

func TestSingleAnnotationEndToEnd(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\n")

	ds := f.build(t, 1)

	positives := ds.Positives()
	require.Len(t, positives, 1)
	require.Equal(t, id, positives[0].Recording)
	require.Equal(t, "Schwert", positives[0].Motif)
	require.Equal(t, cqt.SecondsToFrame(10), positives[0].StartFrame)
	require.Equal(t, positives[0].StartFrame+DefaultWindowFrames, positives[0].EndFrame)

	// Free space is [0,10) and [20,60): only the second region can hold a
	// 15 s window, and at most twice.
	negatives := ds.Negatives()
	require.GreaterOrEqual(t, len(negatives), 1)
	require.LessOrEqual(t, len(negatives), 2)

	annStart := cqt.SecondsToFrame(10)
	annEnd := cqt.SecondsToFrame(20)

	for _, neg := range negatives {
		require.Equal(t, id, neg.Recording)
		require.Equal(t, DefaultWindowFrames, neg.EndFrame-neg.StartFrame)
		require.False(t, neg.StartFrame < annEnd && annStart < neg.EndFrame,
			"negative [%d, %d) overlaps annotation [%d, %d)",
			neg.StartFrame, neg.EndFrame, annStart, annEnd)
	}
}

func TestNegativesSortedAndDeterministic(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\n")

	first := f.build(t, 42)
	second := f.build(t, 42)

	require.Equal(t, first.Positives(), second.Positives())
	require.Equal(t, first.Negatives(), second.Negatives())

	negatives := first.Negatives()
	for i := 1; i < len(negatives); i++ {
		require.Less(t, negatives[i-1].StartFrame, negatives[i].StartFrame)
	}
}

func TestGroundTruthComplement(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\nRing;15.0;25.0\n")

	ds := f.build(t, 1)

	gt := ds.GroundTruth(id)
	require.NotNil(t, gt)

	rows, cols := gt.Dims()
	require.Equal(t, sixtySecFrames, rows)
	require.Equal(t, motif.NumClasses, cols)

	noneCol := f.vocab.NoneIndex()

	for frame := range rows {
		covered := false

		for c := range noneCol {
			if gt.At(frame, c) == 1 {
				covered = true
			}
		}

		if covered {
			require.Zero(t, gt.At(frame, noneCol), "frame %d", frame)
		} else {
			require.Equal(t, 1.0, gt.At(frame, noneCol), "frame %d", frame)
		}
	}

	// Simultaneous motifs co-occur on the overlap.
	schwert, _ := f.vocab.Index("Schwert")
	ring, _ := f.vocab.Index("Ring")
	overlapFrame := cqt.SecondsToFrame(17)
	require.Equal(t, 1.0, gt.At(overlapFrame, schwert))
	require.Equal(t, 1.0, gt.At(overlapFrame, ring))
}

func TestGetWindows(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\n")

	ds := f.build(t, 1)
	require.Greater(t, ds.Len(), 1)

	item, err := ds.Get(0)
	require.NoError(t, err)

	rows, cols := item.CQT.Dims()
	require.Equal(t, DefaultWindowFrames, rows)
	require.Equal(t, cqt.NumBins, cols)

	labelRows, labelCols := item.Labels.Dims()
	require.Equal(t, DefaultWindowFrames, labelRows)
	require.Equal(t, motif.NumClasses, labelCols)

	// Every frame of a positive window is labeled with something, the motif
	// or the none class.
	for frame := range labelRows {
		sum := 0.0
		for c := range labelCols {
			sum += item.Labels.At(frame, c)
		}

		require.GreaterOrEqual(t, sum, 1.0, "frame %d", frame)
	}

	// Negative windows carry all-zero labels.
	negative, err := ds.Get(len(ds.Positives()))
	require.NoError(t, err)

	labelRows, labelCols = negative.Labels.Dims()
	require.Equal(t, DefaultWindowFrames, labelRows)

	for frame := range labelRows {
		for c := range labelCols {
			require.Zero(t, negative.Labels.At(frame, c))
		}
	}
}

func TestGetOutOfRange(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\n")

	ds := f.build(t, 1)

	_, err := ds.Get(ds.Len())
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = ds.Get(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSubsetIndices(t *testing.T) {
	f := newFixture(t)
	f.addRecording(t, recording.ID{Version: "Ka", Act: "A"}, sixtySecFrames, "Schwert;10.0;20.0\n")
	f.addRecording(t, recording.ID{Version: "Bo", Act: "B"}, sixtySecFrames, "Ring;5.0;12.0\n")

	ds := f.build(t, 1)

	all := ds.SubsetIndices(nil, nil)
	require.Len(t, all, ds.Len())

	for i, idx := range all {
		require.Equal(t, i, idx)
	}

	ka := ds.SubsetIndices([]string{"Ka"}, nil)
	require.NotEmpty(t, ka)

	for _, idx := range ka {
		item, err := ds.Get(idx)
		require.NoError(t, err)
		require.NotNil(t, item.CQT)
	}

	require.Len(t, ds.SubsetIndices([]string{"Ka"}, []string{"B"}), 0)
	require.Len(t, ds.SubsetIndices([]string{"Xx"}, nil), 0)

	actOnly := ds.SubsetIndices(nil, []string{"B"})
	require.NotEmpty(t, actOnly)
	require.Equal(t, len(all), len(ka)+len(actOnly))

	sub := NewSubset(ds, ka)
	require.Equal(t, len(ka), sub.Len())

	_, err := sub.Get(0)
	require.NoError(t, err)

	_, err = sub.Get(sub.Len())
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestQueryMotif(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\n")

	ds := f.build(t, 1)

	matches := ds.QueryMotif("Schwert")
	require.Len(t, matches, 1)
	require.Equal(t, 0, matches[0].Index)
	require.Equal(t, id, matches[0].Recording)
	require.Equal(t, 10, matches[0].StartSec)

	require.Nil(t, ds.QueryMotif("Ring"))
}

func TestFullyAnnotatedRecordingHasNoNegatives(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Ring;0.0;60.0\n")

	ds := f.build(t, 1)

	require.Len(t, ds.Positives(), 1)
	require.Empty(t, ds.Negatives())

	// The instance outlives the window; the window is clamped inside the
	// recording.
	positive := ds.Positives()[0]
	require.GreaterOrEqual(t, positive.StartFrame, 0)
	require.LessOrEqual(t, positive.EndFrame, sixtySecFrames)
}

func TestCollate(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\n")

	ds := f.build(t, 1)

	first, err := ds.Get(0)
	require.NoError(t, err)

	second, err := ds.Get(ds.Len() - 1)
	require.NoError(t, err)

	batch, err := Collate([]Item{first, second})
	require.NoError(t, err)
	require.Equal(t, 2, batch.Len())

	for i := range batch.Len() {
		rows, cols := batch.CQT[i].Dims()
		require.Equal(t, DefaultWindowFrames, rows)
		require.Equal(t, cqt.NumBins, cols)

		labelRows, labelCols := batch.Labels[i].Dims()
		require.Equal(t, DefaultWindowFrames, labelRows)
		require.Equal(t, motif.NumClasses, labelCols)
	}

	// Mismatched window lengths must fail loudly.
	odd := Item{
		CQT:    mat.NewDense(10, cqt.NumBins, nil),
		Labels: mat.NewDense(10, motif.NumClasses, nil),
	}

	_, err = Collate([]Item{first, odd})
	require.ErrorIs(t, err, ErrShapeMismatch)

	empty, err := Collate(nil)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())
}

func TestPreviewIndex(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}
	f.addRecording(t, id, sixtySecFrames, "Schwert;10.0;20.0\n")
	f.addWaveform(t, id, 60)

	ds := f.build(t, 1)

	preview, err := ds.PreviewIndex(0)
	require.NoError(t, err)
	require.Equal(t, id, preview.Recording)
	require.Equal(t, "Schwert", preview.Motif)
	require.Equal(t, cqt.SampleRate, preview.SampleRate)
	require.Equal(t, 10, preview.StartSec)
	require.Len(t, preview.Samples, 15*cqt.SampleRate)

	rows, cols := preview.GroundTruth.Dims()
	require.Equal(t, DefaultWindowFrames, rows)
	require.Equal(t, motif.NumClasses, cols)

	negative, err := ds.PreviewIndex(len(ds.Positives()))
	require.NoError(t, err)
	require.Equal(t, motif.NoneLabel, negative.Motif)

	// Negative previews carry the all-zero label window.
	require.Equal(t, 0.0, mat.Sum(negative.GroundTruth))

	_, err = ds.PreviewIndex(ds.Len())
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestMissingAnnotationTableIsFatal(t *testing.T) {
	f := newFixture(t)
	id := recording.ID{Version: "Ka", Act: "A"}

	cache, err := cqt.Open(f.cacheDir)
	require.NoError(t, err)
	require.NoError(t, cache.Save(id, mat.NewDense(sixtySecFrames, cqt.NumBins, nil)))

	repo := annotation.NewRepository(f.annDir, f.vocab)

	_, err = New(cache, repo, f.vocab, Options{Seed: 1})
	require.Error(t, err)
}
