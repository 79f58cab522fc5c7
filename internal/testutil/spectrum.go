package testutil

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// DominantFrequency returns the frequency in Hz of the strongest spectral
// peak of data. The peak position is refined by parabolic interpolation of
// the log magnitude.
func DominantFrequency(data []float64, sampleRate float64) (float64, error) {
	mag, size, err := magnitudeSpectrum(data)
	if err != nil {
		return 0, fmt.Errorf("dominant frequency: %w", err)
	}

	half := size / 2
	peak := 1
	for k := 1; k < half; k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}

	pos := float64(peak)
	if peak > 1 && peak < half-1 {
		a := math.Log(mag[peak-1] + 1e-30)
		b := math.Log(mag[peak] + 1e-30)
		c := math.Log(mag[peak+1] + 1e-30)
		if den := a - 2*b + c; den != 0 {
			pos += 0.5 * (a - c) / den
		}
	}

	return pos * sampleRate / float64(size), nil
}

// SpectralCentroid returns the power-weighted mean frequency of data in Hz.
func SpectralCentroid(data []float64, sampleRate float64) (float64, error) {
	mag, size, err := magnitudeSpectrum(data)
	if err != nil {
		return 0, fmt.Errorf("spectral centroid: %w", err)
	}

	sum, weighted := 0.0, 0.0
	for k := 0; k <= size/2; k++ {
		p := mag[k] * mag[k]
		sum += p
		weighted += p * float64(k)
	}
	if sum == 0 {
		return 0, nil
	}

	return weighted / sum * sampleRate / float64(size), nil
}

// ToneLevel returns the amplitude of the freqHz component of data, measured
// with a Hann-windowed Goertzel filter. A sine of amplitude a at freqHz reads
// about a.
func ToneLevel(data []float64, freqHz, sampleRate float64) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}

	coeff := 2 * math.Cos(2*math.Pi*freqHz/sampleRate)
	s0, s1, gain := 0.0, 0.0, 0.0

	for i, x := range data {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		gain += w

		s := x*w + coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	power := s0*s0 + s1*s1 - coeff*s0*s1
	if power <= 0 || gain == 0 {
		return 0
	}

	return 2 * math.Sqrt(power) / gain
}

// magnitudeSpectrum returns the magnitudes of the Hann-windowed data,
// zero-padded to a power of two, and the transform size.
func magnitudeSpectrum(data []float64) ([]float64, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("need at least 4 samples: %d", len(data))
	}

	size := 1
	for size < len(data) {
		size <<= 1
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, 0, err
	}

	in := make([]complex128, size)
	for i, v := range data {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(len(data)))
		in[i] = complex(v*w, 0)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, err
	}

	mag := make([]float64, size/2+1)
	for k := range mag {
		mag[k] = cmplx.Abs(out[k])
	}

	return mag, size, nil
}
