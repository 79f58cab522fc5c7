package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Interleave packs equal-length planar channels into an interleaved float32
// buffer.
func Interleave(channels ...[]float64) []float32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for ch, data := range channels {
		for i, v := range data {
			out[i*len(channels)+ch] = float32(v)
		}
	}
	return out
}

// Channel extracts one channel of an interleaved float32 buffer.
func Channel(buf []float32, channels, channel int) []float64 {
	frames := len(buf) / channels
	out := make([]float64, frames)
	for i := range out {
		out[i] = float64(buf[i*channels+channel])
	}
	return out
}
