package stretch

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-stretch/internal/testutil"
)

// resonantTone sums harmonics of f0 weighted by a resonance at peak Hz.
func resonantTone(f0, peak, sampleRate float64, length int) []float64 {
	out := make([]float64, length)

	for h := 1; float64(h)*f0 < sampleRate/2; h++ {
		freq := float64(h) * f0

		gain := math.Exp(-math.Pow((freq-peak)/(0.5*peak), 2))
		if gain < 1e-4 {
			continue
		}

		for i := range out {
			out[i] += 0.2 * gain * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		}
	}

	return out
}

func TestFormantTarget(t *testing.T) {
	tests := []struct {
		transpose  float64
		formant    float64
		compensate bool
		want       float64
	}{
		{transpose: 1, formant: 1, want: 1},
		{transpose: 2, formant: 1, want: 2},
		{transpose: 2, formant: 1, compensate: true, want: 1},
		{transpose: 0.5, formant: 1.5, want: 0.75},
		{transpose: 0.5, formant: 1.5, compensate: true, want: 1.5},
	}

	s := mustNew(t, 1, 1024, 256)
	for _, tt := range tests {
		_ = s.SetTransposeFactor(tt.transpose, NoTonalityLimit)
		_ = s.SetFormantFactor(tt.formant, tt.compensate)

		if got := s.formantTarget(); got != tt.want {
			t.Fatalf("formantTarget(T=%v, F=%v, comp=%v) = %v, want %v",
				tt.transpose, tt.formant, tt.compensate, got, tt.want)
		}
	}
}

func TestAutoFormantBase(t *testing.T) {
	const sr = 48000.0

	s := mustNew(t, 1, 4096, 1024, WithSampleRate(sr))

	voiced := resonantTone(220, 800, sr, 3*4096)
	processEqual(s, testutil.Interleave(voiced), []int{512})

	if got := s.formants.baseFrequency(s); math.Abs(got-220) > 5 {
		t.Fatalf("base for 220 Hz tone = %v, want about 220", got)
	}

	s.Reset()
	processEqual(s, testutil.Interleave(testutil.DeterministicNoise(2, 0.5, 3*4096)), []int{512})

	if got := s.formants.baseFrequency(s); got != defaultFormantBase {
		t.Fatalf("base for noise = %v, want %v", got, defaultFormantBase)
	}

	s.Reset()
	processEqual(s, make([]float32, 3*4096), []int{512})

	if got := s.formants.baseFrequency(s); got != defaultFormantBase {
		t.Fatalf("base for silence = %v, want %v", got, defaultFormantBase)
	}

	_ = s.SetFormantBase(FormantBaseHz(150))
	if got := s.formants.baseFrequency(s); got != 150 {
		t.Fatalf("fixed base = %v, want 150", got)
	}
}

func TestFormantShiftRaisesCentroid(t *testing.T) {
	const sr = 48000.0

	input := resonantTone(150, 600, sr, 12*4096)

	s := mustNew(t, 1, 4096, 1024, WithSampleRate(sr))
	_ = s.SetFormantBase(FormantBaseHz(150))
	_ = s.SetFormantFactor(2, true)

	out := testutil.Channel(processEqual(s, testutil.Interleave(input), []int{1024}), 1, 0)
	testutil.RequireFinite(t, out)

	before, err := testutil.SpectralCentroid(input[4*4096:], sr)
	if err != nil {
		t.Fatalf("SpectralCentroid() error = %v", err)
	}

	after, err := testutil.SpectralCentroid(out[4*4096:], sr)
	if err != nil {
		t.Fatalf("SpectralCentroid() error = %v", err)
	}

	if after < 1.4*before {
		t.Fatalf("centroid moved from %v to %v Hz, want at least 1.4x", before, after)
	}
}

func TestCompensatePitchKeepsEnvelope(t *testing.T) {
	const sr = 48000.0

	input := resonantTone(150, 1000, sr, 12*4096)

	before, err := testutil.SpectralCentroid(input[4*4096:], sr)
	if err != nil {
		t.Fatalf("SpectralCentroid() error = %v", err)
	}

	centroid := func(compensate bool) float64 {
		s := mustNew(t, 1, 4096, 1024, WithSampleRate(sr))
		_ = s.SetTransposeFactor(1.5, NoTonalityLimit)
		_ = s.SetFormantBase(FormantBaseHz(150))
		_ = s.SetFormantFactor(1, compensate)

		out := testutil.Channel(processEqual(s, testutil.Interleave(input), []int{1024}), 1, 0)

		c, err := testutil.SpectralCentroid(out[4*4096:], sr)
		if err != nil {
			t.Fatalf("SpectralCentroid() error = %v", err)
		}

		return c
	}

	plain := centroid(false)
	kept := centroid(true)

	if plain < 1.3*before {
		t.Fatalf("plain transposition centroid = %v Hz, want above %v", plain, 1.3*before)
	}

	if math.Abs(kept-before) >= math.Abs(plain-before) {
		t.Fatalf("compensated centroid %v Hz is no closer to %v Hz than %v Hz", kept, before, plain)
	}
}
