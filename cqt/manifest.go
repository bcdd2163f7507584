package cqt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/motifdet/leitmotif/recording"
)

const manifestName = "manifest.json"

var ErrManifestParams = errors.New("artifact manifest was produced with different analysis parameters")

// Manifest records the analysis parameters an artifact directory was produced
// with, so a cache refuses to mix artifacts from incompatible conversion runs.
type Manifest struct {
	SampleRate int       `json:"sample_rate"`
	HopLength  int       `json:"hop_length"`
	NumBins    int       `json:"num_bins"`
	UpdatedAt  time.Time `json:"updated_at"`
	Recordings []string  `json:"recordings"`
}

func readManifest(dir string) error {
	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		// Legacy artifact dirs carry no manifest; trust them.
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read artifact manifest: %w", err)
	}

	var manifest Manifest

	err = json.Unmarshal(raw, &manifest)
	if err != nil {
		return fmt.Errorf("failed to parse artifact manifest: %w", err)
	}

	if manifest.SampleRate != SampleRate || manifest.HopLength != HopLength || manifest.NumBins != NumBins {
		return fmt.Errorf("%w: sr=%d hop=%d bins=%d",
			ErrManifestParams, manifest.SampleRate, manifest.HopLength, manifest.NumBins)
	}

	return nil
}

func writeManifest(dir string, id recording.ID) error {
	path := filepath.Join(dir, manifestName)

	manifest := Manifest{
		SampleRate: SampleRate,
		HopLength:  HopLength,
		NumBins:    NumBins,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		err = json.Unmarshal(raw, &manifest)
		if err != nil {
			return fmt.Errorf("failed to parse artifact manifest: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read artifact manifest: %w", err)
	}

	stem := id.String()

	found := false

	for _, existing := range manifest.Recordings {
		if existing == stem {
			found = true
			break
		}
	}

	if !found {
		manifest.Recordings = append(manifest.Recordings, stem)
		sort.Strings(manifest.Recordings)
	}

	manifest.UpdatedAt = time.Now().UTC()

	out, err := json.MarshalIndent(&manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact manifest: %w", err)
	}

	err = os.WriteFile(path, out, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write artifact manifest: %w", err)
	}

	return nil
}
