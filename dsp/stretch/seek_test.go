package stretch

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-stretch/internal/testutil"
)

func TestSeekMatchesFullRun(t *testing.T) {
	const (
		block = 512
		hop   = 128
	)

	signal := testutil.DeterministicNoise(11, 0.8, 8*block)
	input := testutil.Interleave(signal)

	ref := mustNew(t, 1, block, hop)
	want := processEqual(ref, input, []int{256})

	// Short pre-rolls are replayed whole, long ones only their tail.
	for _, preRoll := range []int{37, 4*block + 37, 5 * block} {
		s := mustNew(t, 1, block, hop)
		s.Seek(input[:preRoll], 1)

		got := processEqual(s, input[preRoll:], []int{100})

		for i := range got {
			if math.Abs(float64(got[i]-want[preRoll+i])) > 1e-5 {
				t.Fatalf("pre-roll %d: sample %d = %v, want %v", preRoll, i, got[i], want[preRoll+i])
			}
		}
	}
}

func TestSeekWithPitchShiftIsPrimed(t *testing.T) {
	const (
		sr      = 48000.0
		block   = 1024
		hop     = 256
		preRoll = 6000
	)

	signal := testutil.DeterministicSine(500, sr, 0.5, 16000)
	input := testutil.Interleave(signal)

	ref := mustNew(t, 1, block, hop, WithSampleRate(sr))
	_ = ref.SetTransposeFactor(1.5, NoTonalityLimit)
	want := testutil.Channel(processEqual(ref, input, []int{256}), 1, 0)

	s := mustNew(t, 1, block, hop, WithSampleRate(sr))
	_ = s.SetTransposeFactor(1.5, NoTonalityLimit)
	s.Seek(input[:preRoll], 1)
	got := testutil.Channel(processEqual(s, input[preRoll:], []int{256}), 1, 0)

	// Without priming the first block of output would fade in from silence.
	head, refHead := testutil.RMS(got[:block]), testutil.RMS(want[preRoll:preRoll+block])
	if head < 0.8*refHead || head > 1.25*refHead {
		t.Fatalf("RMS after seek = %v, want about %v", head, refHead)
	}

	freq, err := testutil.DominantFrequency(got, sr)
	if err != nil {
		t.Fatalf("DominantFrequency() error = %v", err)
	}

	if math.Abs(freq-750) > 7.5 {
		t.Fatalf("dominant frequency after seek = %v Hz, want about 750 Hz", freq)
	}
}

// processAtRate feeds input through s in inChunk-frame pieces, producing
// outChunk frames for each, and returns the mono output.
func processAtRate(s *Stretch, input []float32, inChunk, outChunk int) []float64 {
	var output []float32

	for pos := 0; pos+inChunk <= len(input); pos += inChunk {
		out := make([]float32, outChunk)
		s.Process(input[pos:pos+inChunk], out)
		output = append(output, out...)
	}

	return testutil.Channel(output, 1, 0)
}

func TestSeekAtRateIsPrimed(t *testing.T) {
	const (
		sr       = 48000.0
		block    = 1024
		hop      = 256
		outChunk = 256
		preRoll  = 6144
	)

	signal := testutil.DeterministicSine(500, sr, 0.5, 32768)
	input := testutil.Interleave(signal)

	for _, rate := range []float64{2, 0.5} {
		inChunk := int(outChunk * rate)

		ref := mustNew(t, 1, block, hop, WithSampleRate(sr))
		want := processAtRate(ref, input, inChunk, outChunk)

		s := mustNew(t, 1, block, hop, WithSampleRate(sr))
		s.Seek(input[:preRoll], rate)
		got := processAtRate(s, input[preRoll:], inChunk, outChunk)

		// The seek lands where the full run had produced preRoll/rate frames.
		offset := int(preRoll / rate)
		head, refHead := testutil.RMS(got[:block]), testutil.RMS(want[offset:offset+block])

		if refHead < 0.2 {
			t.Fatalf("rate %v: reference RMS = %v, want a settled tone", rate, refHead)
		}

		if head < 0.8*refHead || head > 1.25*refHead {
			t.Fatalf("rate %v: RMS after seek = %v, want about %v", rate, head, refHead)
		}

		freq, err := testutil.DominantFrequency(got, sr)
		if err != nil {
			t.Fatalf("DominantFrequency() error = %v", err)
		}

		if math.Abs(freq-500) > 5 {
			t.Fatalf("rate %v: dominant frequency after seek = %v Hz, want about 500 Hz", rate, freq)
		}
	}
}

func TestSeekRateAlignsSynthesisGrid(t *testing.T) {
	const frames = 4000

	s := mustNew(t, 1, 256, 64)
	input := testutil.Interleave(testutil.DeterministicNoise(5, 1, frames))

	tests := []struct {
		rate float64
		want float64
	}{
		{rate: 2, want: 2},
		{rate: 0.75, want: 0.75},
		{rate: 1, want: 1},
		{rate: math.NaN(), want: 1},
		{rate: -3, want: 1},
		{rate: math.Inf(1), want: 1},
	}

	for _, tt := range tests {
		s.Seek(input, tt.rate)

		// The next step lands where a full run producing the same number of
		// output frames would place it.
		produced := int(math.Round(frames / tt.want))
		want := (s.Interval() - produced%s.Interval()) % s.Interval()

		if s.untilStep != want {
			t.Fatalf("rate %v: untilStep = %d, want %d", tt.rate, s.untilStep, want)
		}
	}
}
