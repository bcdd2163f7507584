// Package spectral computes the constant-Q magnitude representation the
// dataset trains on. The transform is a pure function of the waveform; the
// result is cached per recording by the cqt package.
package spectral

import (
	"math"
	"math/cmplx"

	"github.com/motifdet/leitmotif/cqt"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

const (
	// BinsPerOctave at 84 bins spans 7 octaves upward from MinFrequency.
	BinsPerOctave = 12

	// MinFrequency is C1, the lowest analyzed pitch.
	MinFrequency = 32.703195662574764

	// kernelSparsity drops spectral-kernel coefficients below this fraction
	// of the kernel's peak magnitude.
	kernelSparsity = 0.01
)

// sparseEntry is one retained coefficient of a spectral kernel, stored
// conjugated so frame analysis is a plain multiply-accumulate.
type sparseEntry struct {
	index int
	conj  complex128
}

// CQT computes the constant-Q transform of a mono waveform, one frame every
// cqt.HopLength samples, frames centered on their hop position. The result
// has shape (num_frames, cqt.NumBins) and holds raw magnitudes; callers
// wanting the cache contract apply PeakNormalize before saving.
//
// Implementation follows the spectral-kernel method: the windowed complex
// exponential for each bin is transformed once, sparsified, and every frame
// is then a single FFT plus a sparse inner product per bin.
func CQT(samples []float64, sampleRate int) *mat.Dense {
	quality := 1.0 / (math.Pow(2, 1.0/BinsPerOctave) - 1)

	maxKernelLen := int(math.Ceil(quality * float64(sampleRate) / MinFrequency))
	fftSize := nextPow2(maxKernelLen)
	fft := fourier.NewCmplxFFT(fftSize)

	kernels := buildKernels(fft, fftSize, sampleRate, quality)

	numFrames := 1 + len(samples)/cqt.HopLength
	out := mat.NewDense(numFrames, cqt.NumBins, nil)

	frame := make([]complex128, fftSize)
	spectrum := make([]complex128, fftSize)

	for t := range numFrames {
		center := t * cqt.HopLength

		for i := range frame {
			idx := center - fftSize/2 + i
			if idx >= 0 && idx < len(samples) {
				frame[i] = complex(samples[idx], 0)
			} else {
				frame[i] = 0
			}
		}

		spectrum = fft.Coefficients(spectrum, frame)

		for k, kernel := range kernels {
			var sum complex128

			for _, entry := range kernel {
				sum += spectrum[entry.index] * entry.conj
			}

			out.Set(t, k, cmplx.Abs(sum)/float64(fftSize))
		}
	}

	return out
}

// buildKernels transforms and sparsifies the per-bin analysis kernels.
func buildKernels(fft *fourier.CmplxFFT, fftSize, sampleRate int, quality float64) [][]sparseEntry {
	kernels := make([][]sparseEntry, cqt.NumBins)

	timeKernel := make([]complex128, fftSize)
	freqKernel := make([]complex128, fftSize)

	for k := range cqt.NumBins {
		freq := MinFrequency * math.Pow(2, float64(k)/BinsPerOctave)

		kernelLen := int(math.Ceil(quality * float64(sampleRate) / freq))
		if kernelLen > fftSize {
			kernelLen = fftSize
		}

		for i := range timeKernel {
			timeKernel[i] = 0
		}

		offset := (fftSize - kernelLen) / 2
		for i := range kernelLen {
			phase := 2 * math.Pi * freq * float64(i) / float64(sampleRate)
			weight := hann(i, kernelLen) / float64(kernelLen)
			timeKernel[offset+i] = complex(weight, 0) * cmplx.Exp(complex(0, phase))
		}

		freqKernel = fft.Coefficients(freqKernel, timeKernel)

		peak := 0.0
		for _, c := range freqKernel {
			peak = math.Max(peak, cmplx.Abs(c))
		}

		threshold := peak * kernelSparsity

		var entries []sparseEntry

		for i, c := range freqKernel {
			if cmplx.Abs(c) >= threshold {
				entries = append(entries, sparseEntry{index: i, conj: cmplx.Conj(c)})
			}
		}

		kernels[k] = entries
	}

	return kernels
}

func hann(i, n int) float64 {
	if n == 1 {
		return 1
	}

	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
}

func nextPow2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}
