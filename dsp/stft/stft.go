package stft

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

const minBlockLength = 2

// Transform converts blocks of BlockLength samples to and from the
// Bins() = FFTSize()/2+1 non-negative frequency bins.
type Transform struct {
	blockLength int
	fftSize     int
	bins        int

	plan *algofft.Plan[complex128]

	analysis  []float64
	synthesis []float64

	windowed []float64
	frame    []float64
	time     []complex128
	freq     []complex128
	re       []float64
	im       []float64
}

// New returns a transform for blocks of blockLength samples. analysis and
// synthesis must both hold blockLength coefficients.
func New(blockLength int, analysis, synthesis []float64) (*Transform, error) {
	if blockLength < minBlockLength {
		return nil, fmt.Errorf("stft block length must be >= %d: %d", minBlockLength, blockLength)
	}

	if len(analysis) != blockLength || len(synthesis) != blockLength {
		return nil, fmt.Errorf("stft windows must have %d coefficients: analysis=%d synthesis=%d",
			blockLength, len(analysis), len(synthesis))
	}

	fftSize := core.NextPowerOf2(blockLength)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("stft: failed to create FFT plan: %w", err)
	}

	bins := fftSize/2 + 1

	return &Transform{
		blockLength: blockLength,
		fftSize:     fftSize,
		bins:        bins,
		plan:        plan,
		analysis:    append([]float64(nil), analysis...),
		synthesis:   append([]float64(nil), synthesis...),
		windowed:    make([]float64, blockLength),
		frame:       make([]float64, blockLength),
		time:        make([]complex128, fftSize),
		freq:        make([]complex128, fftSize),
		re:          make([]float64, bins),
		im:          make([]float64, bins),
	}, nil
}

// BlockLength returns the number of time-domain samples per block.
func (t *Transform) BlockLength() int { return t.blockLength }

// FFTSize returns the zero-padded transform length.
func (t *Transform) FFTSize() int { return t.fftSize }

// Bins returns the number of non-negative frequency bins.
func (t *Transform) Bins() int { return t.bins }

// BinFrequency returns the nominal angular frequency of bin k in radians
// per sample.
func (t *Transform) BinFrequency(k int) float64 {
	return 2 * math.Pi * float64(k) / float64(t.fftSize)
}

// Analyze windows block, zero-pads it and writes its Bins() bins to dst.
func (t *Transform) Analyze(dst []complex128, block []float64) {
	vecmath.MulBlock(t.windowed, block[:t.blockLength], t.analysis)

	for i, v := range t.windowed {
		t.time[i] = complex(v, 0)
	}

	for i := t.blockLength; i < t.fftSize; i++ {
		t.time[i] = 0
	}

	mustFFT(t.plan.Forward(t.freq, t.time))
	copy(dst[:t.bins], t.freq[:t.bins])
}

// Synthesize inverse transforms a half spectrum and writes the first
// BlockLength samples, weighted by the synthesis window, to dst.
func (t *Transform) Synthesize(dst []float64, bins []complex128) {
	t.Inverse(t.frame, bins)
	vecmath.MulBlock(dst[:t.blockLength], t.frame, t.synthesis)
}

// Inverse writes the first len(dst) samples of the real signal whose half
// spectrum is bins. len(dst) must not exceed FFTSize().
func (t *Transform) Inverse(dst []float64, bins []complex128) {
	half := t.fftSize / 2

	t.freq[0] = complex(real(bins[0]), 0)
	for k := 1; k < half; k++ {
		v := bins[k]
		t.freq[k] = v
		t.freq[t.fftSize-k] = complex(real(v), -imag(v))
	}

	t.freq[half] = complex(real(bins[half]), 0)

	mustFFT(t.plan.Inverse(t.time, t.freq))

	for i := range dst {
		dst[i] = real(t.time[i])
	}
}

// Polar splits bins into magnitudes and phases.
func (t *Transform) Polar(mag, phase []float64, bins []complex128) {
	n := min(len(bins), t.bins)
	re, im := t.re[:n], t.im[:n]

	for k, v := range bins[:n] {
		re[k] = real(v)
		im[k] = imag(v)
	}

	vecmath.Magnitude(mag[:n], re, im)

	for k := range n {
		phase[k] = math.Atan2(im[k], re[k])
	}
}

// Power writes the squared magnitude of each bin to dst.
func (t *Transform) Power(dst []float64, bins []complex128) {
	n := min(len(bins), t.bins)
	re, im := t.re[:n], t.im[:n]

	for k, v := range bins[:n] {
		re[k] = real(v)
		im[k] = imag(v)
	}

	vecmath.Power(dst[:n], re, im)
}

// mustFFT panics on FFT failure. Plans are sized at construction, so an error
// here means the transform's buffers were corrupted.
func mustFFT(err error) {
	if err != nil {
		panic(fmt.Sprintf("stft: %v", err))
	}
}
