// Package audio loads raw waveforms for the preview and conversion paths.
// The training-facing accessor never touches it.
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

var ErrNotPCMWav = errors.New("file is not a decodable PCM WAV")

// LoadWAV decodes a PCM WAV file into mono float64 samples in [-1, 1] and
// returns the file's native sample rate. Multi-channel input is downmixed by
// averaging.
func LoadWAV(path string) ([]float64, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open waveform %s: %w", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)

	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotPCMWav, path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode waveform %s: %w", path, err)
	}

	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotPCMWav, path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	scale := float64(int(1) << (decoder.BitDepth - 1))
	numFrames := len(buf.Data) / channels
	samples := make([]float64, numFrames)

	for i := range numFrames {
		sum := 0.0
		for c := range channels {
			sum += float64(buf.Data[i*channels+c])
		}

		samples[i] = sum / float64(channels) / scale
	}

	return samples, buf.Format.SampleRate, nil
}

// Slice cuts the window starting at startSec with the given duration out of a
// waveform, clamped to the waveform's end.
func Slice(samples []float64, sampleRate int, startSec int, durationSec float64) []float64 {
	start := startSec * sampleRate
	if start < 0 {
		start = 0
	}

	if start > len(samples) {
		start = len(samples)
	}

	end := start + int(durationSec*float64(sampleRate))
	if end > len(samples) {
		end = len(samples)
	}

	return samples[start:end]
}
