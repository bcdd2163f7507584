package cqt

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/motifdet/leitmotif/logging"
	"github.com/motifdet/leitmotif/recording"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

const artifactExt = ".cqt"

// Static errors for cache operations
var (
	ErrBinCount    = errors.New("artifact bin count does not match the corpus contract")
	ErrEmptyMatrix = errors.New("artifact has no frames")
)

// artifact is the gob payload of one recording's magnitude matrix, stored
// frame-major. Columns are peak-normalized by the producer; the cache never
// renormalizes.
type artifact struct {
	NumFrames int
	NumBins   int
	Data      []float64
}

// Cache is a read-through store of per-recording CQT matrices. Load errors
// are fatal for the recording in question; a recording is never served in a
// partial or degraded state.
type Cache struct {
	Dir    string
	loaded map[recording.ID]*mat.Dense
}

// Open attaches a cache to a directory of artifacts and validates the
// directory manifest against the corpus parameters.
func Open(dir string) (*Cache, error) {
	err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	return &Cache{
		Dir:    dir,
		loaded: make(map[recording.ID]*mat.Dense),
	}, nil
}

// Keys lists the recordings with an artifact present, sorted by file stem so
// downstream construction order is reproducible.
func (c *Cache) Keys() ([]recording.ID, error) {
	paths, err := filepath.Glob(filepath.Join(c.Dir, "*"+artifactExt))
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifact dir %s: %w", c.Dir, err)
	}

	sort.Strings(paths)

	ids := make([]recording.ID, 0, len(paths))

	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), artifactExt)

		id, err := recording.Parse(stem)
		if err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// Load returns the magnitude matrix for a recording, shape
// (num_frames, NumBins), reading it from disk on first access.
func (c *Cache) Load(id recording.ID) (*mat.Dense, error) {
	m, ok := c.loaded[id]
	if ok {
		return m, nil
	}

	path := c.path(id)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact for %s: %w", id, err)
	}
	defer file.Close()

	var art artifact

	err = gob.NewDecoder(file).Decode(&art)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}

	if art.NumBins != NumBins {
		return nil, fmt.Errorf("%w: %s has %d bins", ErrBinCount, path, art.NumBins)
	}

	if art.NumFrames == 0 || len(art.Data) != art.NumFrames*art.NumBins {
		return nil, fmt.Errorf("%w: %s", ErrEmptyMatrix, path)
	}

	m = mat.NewDense(art.NumFrames, art.NumBins, art.Data)
	c.loaded[id] = m

	logging.Logger.Debug("Loaded CQT artifact",
		zap.String("recording", id.String()),
		zap.Int("num_frames", art.NumFrames),
	)

	return m, nil
}

// Save writes a recording's magnitude matrix as an artifact and records it in
// the manifest.
func (c *Cache) Save(id recording.ID, m *mat.Dense) error {
	numFrames, numBins := m.Dims()
	if numBins != NumBins {
		return fmt.Errorf("%w: got %d bins", ErrBinCount, numBins)
	}

	path := c.path(id)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact for %s: %w", id, err)
	}

	art := artifact{
		NumFrames: numFrames,
		NumBins:   numBins,
		Data:      flatten(m),
	}

	err = gob.NewEncoder(file).Encode(&art)
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode artifact for %s: %w", id, err)
	}

	err = file.Close()
	if err != nil {
		return fmt.Errorf("failed to close artifact for %s: %w", id, err)
	}

	c.loaded[id] = m

	return writeManifest(c.Dir, id)
}

func (c *Cache) path(id recording.ID) string {
	return filepath.Join(c.Dir, id.String()+artifactExt)
}

// flatten copies the matrix row-major, independent of any internal stride.
func flatten(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)

	for i := range rows {
		data = append(data, m.RawRowView(i)...)
	}

	return data
}
