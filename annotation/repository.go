// Package annotation loads the hand-annotated leitmotif occurrence tables.
// One ';'-delimited table exists per recording, at
// <dir>/P-<version>/<act>.csv, with a header row and columns
// motif;start_sec;end_sec.
package annotation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/motifdet/leitmotif/motif"
	"github.com/motifdet/leitmotif/recording"
)

// Static errors for annotation loading
var (
	ErrColumnCount     = errors.New("annotation row must have exactly 3 columns")
	ErrInvalidInterval = errors.New("annotation interval must have start < end")
	ErrUnknownMotif    = errors.New("annotation motif is not in the vocabulary")
)

// Instance is one annotated occurrence of a leitmotif. Instances are
// immutable once loaded.
type Instance struct {
	Motif    string
	StartSec float64
	EndSec   float64
}

// Repository reads occurrence tables for recordings from a directory tree.
type Repository struct {
	Dir   string
	vocab *motif.Vocabulary
}

func NewRepository(dir string, vocab *motif.Vocabulary) *Repository {
	return &Repository{
		Dir:   dir,
		vocab: vocab,
	}
}

// Path returns the occurrence-table location for a recording.
func (r *Repository) Path(id recording.ID) string {
	return filepath.Join(r.Dir, "P-"+id.Version, id.Act+".csv")
}

// Instances loads and validates all annotated occurrences for one recording.
// A missing or malformed table is a fatal error for that recording; every
// recording with a spectral artifact must have a consistent table.
func (r *Repository) Instances(id recording.ID) ([]Instance, error) {
	path := r.Path(id)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation table for %s: %w", id, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	// Header row
	_, err = reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read annotation header for %s: %w", id, err)
	}

	var instances []Instance

	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read annotation row %s:%d: %w", path, line, err)
		}

		instance, err := parseRow(row, r.vocab)
		if err != nil {
			return nil, fmt.Errorf("invalid annotation row %s:%d: %w", path, line, err)
		}

		instances = append(instances, instance)
	}

	return instances, nil
}

func parseRow(row []string, vocab *motif.Vocabulary) (Instance, error) {
	if len(row) != 3 {
		return Instance{}, fmt.Errorf("%w: got %d", ErrColumnCount, len(row))
	}

	label := row[0]

	_, ok := vocab.Index(label)
	if !ok || label == motif.NoneLabel {
		return Instance{}, fmt.Errorf("%w: %q", ErrUnknownMotif, label)
	}

	start, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return Instance{}, fmt.Errorf("failed to parse start_sec: %w", err)
	}

	end, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return Instance{}, fmt.Errorf("failed to parse end_sec: %w", err)
	}

	if start >= end {
		return Instance{}, fmt.Errorf("%w: [%v, %v)", ErrInvalidInterval, start, end)
	}

	return Instance{Motif: label, StartSec: start, EndSec: end}, nil
}
