package stretch

import (
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/interp"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// defaultFormantBase is used when no fundamental is detected.
	defaultFormantBase = 200.0
	minFundamental     = 50.0
	maxFundamental     = 1000.0
	// voicedThreshold is the normalized autocorrelation a block needs at
	// its period to count as voiced.
	voicedThreshold = 0.25
	maxFormantGain  = 100.0
	envelopeFloor   = 1e-6
)

// formantShifter rescales the remapped magnitudes so the spectral envelope
// sits where the formant factor puts it, independent of the bin remapping
// done for transposition.
type formantShifter struct {
	// source holds the source bin position each output bin was read from.
	source []float64

	envelope []float64
	gain     []float64
	peak     []float64
	smooth   []float64
	prefix   []float64
	energy   []float64
	total    []float64
	power    []complex128
	acf      []float64
}

func newFormantShifter(channels, bins, fftSize int) formantShifter {
	return formantShifter{
		source:   make([]float64, bins),
		envelope: make([]float64, channels*bins),
		gain:     make([]float64, bins),
		peak:     make([]float64, channels),
		smooth:   make([]float64, bins),
		prefix:   make([]float64, bins+1),
		energy:   make([]float64, bins),
		total:    make([]float64, bins),
		power:    make([]complex128, bins),
		acf:      make([]float64, fftSize/2),
	}
}

// formantTarget returns the envelope scale factor: the formant factor on top
// of the transposition, or the formant factor alone when pitch is
// compensated.
func (s *Stretch) formantTarget() float64 {
	if s.compensate {
		return s.formant
	}

	return s.formant * s.transpose
}

// apply scales s.mapMag by env(k/target) / env(source[k]) per channel. When
// the envelope would move exactly with the transposition nothing changes.
func (f *formantShifter) apply(s *Stretch) {
	target := s.formantTarget()
	if target == s.transpose {
		return
	}

	width := f.baseFrequency(s) / s.binHz()
	f.computeEnvelopes(s, width)

	b := s.bins
	last := float64(b - 1)

	for ch := range s.channels {
		env := f.envelope[ch*b : (ch+1)*b]
		floor := f.peak[ch]*envelopeFloor + math.SmallestNonzeroFloat64

		for k := range b {
			src := f.source[k]
			if src > last {
				f.gain[k] = 1
				continue
			}

			want := interp.At(env, float64(k)/target)
			have := math.Max(interp.At(env, src), floor)
			f.gain[k] = math.Min(want/have, maxFormantGain)
		}

		vecmath.MulBlockInPlace(s.mapMag[ch*b:(ch+1)*b], f.gain)
	}
}

// computeEnvelopes smooths each channel's energy spectrum with a triangular
// kernel about width bins wide and stores its square root.
func (f *formantShifter) computeEnvelopes(s *Stretch, width float64) {
	b := s.bins
	radius := max(int(math.Round(width/2)), 1)

	for ch := range s.channels {
		env := f.envelope[ch*b : (ch+1)*b]
		s.transform.Power(env, s.spectrum[ch*b:(ch+1)*b])

		// Two box passes make a triangle.
		f.boxSmooth(env, radius)
		f.boxSmooth(env, radius)

		for k, e := range env {
			env[k] = envelopeSqrt(math.Max(e, 0))
		}

		f.peak[ch] = vecmath.MaxAbs(env)
	}
}

// boxSmooth replaces x with its moving average over 2*radius+1 bins,
// averaging only the bins inside the spectrum at the edges.
func (f *formantShifter) boxSmooth(x []float64, radius int) {
	n := len(x)
	prefix := f.prefix[:n+1]

	prefix[0] = 0
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}

	for i := range x {
		lo := max(i-radius, 0)
		hi := min(i+radius+1, n)
		f.smooth[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}

	copy(x, f.smooth[:n])
}

// baseFrequency returns the configured formant base, or the fundamental
// estimated from the autocorrelation of the current block, falling back to
// defaultFormantBase for unvoiced blocks.
func (f *formantShifter) baseFrequency(s *Stretch) float64 {
	if hz, ok := s.formantBase.Hz(); ok {
		return hz
	}

	b := s.bins
	core.Zero(f.total)

	for ch := range s.channels {
		s.transform.Power(f.energy, s.spectrum[ch*b:(ch+1)*b])
		vecmath.AddBlockInPlace(f.total, f.energy)
	}

	for k, p := range f.total {
		f.power[k] = complex(p, 0)
	}

	s.transform.Inverse(f.acf, f.power)

	energy := f.acf[0]
	if !(energy > 0) {
		return defaultFormantBase
	}

	minLag := max(int(s.sampleRate/maxFundamental), 2)
	maxLag := min(int(s.sampleRate/minFundamental), len(f.acf)-2)

	best := 0
	for lag := minLag; lag <= maxLag; lag++ {
		v := f.acf[lag]
		if v <= f.acf[lag-1] || v < f.acf[lag+1] {
			continue
		}

		if best == 0 || v > f.acf[best] {
			best = lag
		}
	}

	if best == 0 || f.acf[best]/energy < voicedThreshold {
		return defaultFormantBase
	}

	return s.sampleRate / float64(best)
}
