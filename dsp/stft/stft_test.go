package stft

import (
	"math"
	"math/cmplx"
	"strconv"
	"testing"

	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-stretch/internal/testutil"
)

func newTransform(t testing.TB, n, hop int) *Transform {
	t.Helper()

	wa := window.Generate(window.TypeHann, n, window.WithPeriodic())

	ws, err := window.Synthesis(wa, hop)
	if err != nil {
		t.Fatalf("window.Synthesis() error = %v", err)
	}

	tr, err := New(n, wa, ws)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return tr
}

func TestNewValidation(t *testing.T) {
	w := make([]float64, 8)

	tests := []struct {
		name      string
		n         int
		analysis  []float64
		synthesis []float64
	}{
		{name: "too short", n: 1, analysis: w[:1], synthesis: w[:1]},
		{name: "analysis length", n: 8, analysis: w[:4], synthesis: w},
		{name: "synthesis length", n: 8, analysis: w, synthesis: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.n, tt.analysis, tt.synthesis); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	tr := newTransform(t, 1000, 250)

	if tr.BlockLength() != 1000 || tr.FFTSize() != 1024 || tr.Bins() != 513 {
		t.Fatalf("geometry = (%d, %d, %d), want (1000, 1024, 513)",
			tr.BlockLength(), tr.FFTSize(), tr.Bins())
	}

	if got := tr.BinFrequency(512); math.Abs(got-math.Pi) > 1e-12 {
		t.Fatalf("BinFrequency(512) = %v, want pi", got)
	}
}

func TestAnalyzePeakBin(t *testing.T) {
	const n = 1024

	tr := newTransform(t, n, n/4)

	// 64 cycles per block puts the sinusoid on bin 64.
	block := testutil.DeterministicSine(64*48000.0/n, 48000, 1, n)
	bins := make([]complex128, tr.Bins())
	tr.Analyze(bins, block)

	peak := 0
	for k := range bins {
		if cmplx.Abs(bins[k]) > cmplx.Abs(bins[peak]) {
			peak = k
		}
	}

	if peak != 64 {
		t.Fatalf("peak bin = %d, want 64", peak)
	}

	mag := make([]float64, tr.Bins())
	phase := make([]float64, tr.Bins())
	tr.Polar(mag, phase, bins)

	if math.Abs(mag[64]-cmplx.Abs(bins[64])) > 1e-9 {
		t.Fatalf("Polar magnitude = %v, want %v", mag[64], cmplx.Abs(bins[64]))
	}

	if math.Abs(phase[64]-cmplx.Phase(bins[64])) > 1e-12 {
		t.Fatalf("Polar phase = %v, want %v", phase[64], cmplx.Phase(bins[64]))
	}

	power := make([]float64, tr.Bins())
	tr.Power(power, bins)

	if math.Abs(power[64]-mag[64]*mag[64]) > 1e-6*power[64] {
		t.Fatalf("Power = %v, want %v", power[64], mag[64]*mag[64])
	}
}

func TestOverlapAddRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		n    int
		hop  int
	}{
		{name: "pow2/4", n: 512, hop: 128},
		{name: "padded/2.5", n: 600, hop: 240},
		{name: "pow2/8", n: 256, hop: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTransform(t, tt.n, tt.hop)

			signal := testutil.DeterministicNoise(7, 0.5, 8*tt.n)
			out := make([]float64, len(signal)+tt.n)
			bins := make([]complex128, tr.Bins())
			frame := make([]float64, tt.n)

			for pos := -tt.n; pos < len(signal); pos += tt.hop {
				block := make([]float64, tt.n)
				for i := range block {
					if idx := pos + i; idx >= 0 && idx < len(signal) {
						block[i] = signal[idx]
					}
				}

				tr.Analyze(bins, block)
				tr.Synthesize(frame, bins)

				for i, v := range frame {
					if idx := pos + i; idx >= 0 && idx < len(out) {
						out[idx] += v
					}
				}
			}

			diff, err := testutil.MaxAbsDiff(out[:len(signal)], signal)
			if err != nil {
				t.Fatalf("MaxAbsDiff() error = %v", err)
			}

			if diff > 1e-9 {
				t.Fatalf("round trip max diff = %g", diff)
			}
		})
	}
}

func TestInverseAutocorrelation(t *testing.T) {
	const n = 256

	tr := newTransform(t, n, n/4)

	bins := make([]complex128, tr.Bins())
	for k := range bins {
		bins[k] = 1
	}

	// A flat power spectrum is the transform of an impulse at lag zero.
	out := make([]float64, 8)
	tr.Inverse(out, bins)

	if math.Abs(out[0]-1) > 1e-12 {
		t.Fatalf("lag 0 = %v, want 1", out[0])
	}

	for i := 1; i < len(out); i++ {
		if math.Abs(out[i]) > 1e-12 {
			t.Fatalf("lag %d = %v, want 0", i, out[i])
		}
	}
}

func BenchmarkAnalyzeSynthesize(b *testing.B) {
	for _, n := range []int{1024, 4096} {
		tr := newTransform(b, n, n/4)
		block := testutil.DeterministicNoise(1, 1, n)
		bins := make([]complex128, tr.Bins())
		frame := make([]float64, n)

		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				tr.Analyze(bins, block)
				tr.Synthesize(frame, bins)
			}
		})
	}
}
