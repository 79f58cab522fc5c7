package stretch

import (
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/interp"
)

// step analyses the block ending at input frame end (relative to the current
// call), remaps it and overlap-adds one synthesized frame at s.outPos.
func (s *Stretch) step(input []float32, end int) {
	first := !s.havePrev
	hop := end - s.prevEnd

	if !first && (hop <= 0 || hop > s.interval) {
		// The previous block is too far away (or ahead of us) for a reliable
		// phase difference; measure against a block just before this one.
		hop = max(min(s.interval, s.blockLength/4), 1)
		s.analyse(input, end-hop, s.prevPhase)
	}

	s.analyse(input, end, s.phase)
	s.estimateFrequencies(float64(hop), first)
	copy(s.prevPhase, s.phase)

	s.prevEnd = end
	s.havePrev = true

	s.remap()
	s.formants.apply(s)
	s.locker.lock(s, first)
	s.synthesize()
}

// analyse transforms the block ending at end for every channel, leaving the
// spectrum and magnitudes in s.spectrum and s.magnitude and the phases in
// phase.
func (s *Stretch) analyse(input []float32, end int, phase []float64) {
	b := s.bins

	for ch := range s.channels {
		spec := s.spectrum[ch*b : (ch+1)*b]

		s.readBlock(input, ch, end)
		s.transform.Analyze(spec, s.block)
		s.transform.Polar(s.magnitude[ch*b:(ch+1)*b], phase[ch*b:(ch+1)*b], spec)
	}
}

// estimateFrequencies derives the instantaneous frequency of every bin, in
// radians per sample, from the phase advance over hop samples.
func (s *Stretch) estimateFrequencies(hop float64, first bool) {
	b := s.bins

	for ch := range s.channels {
		for k := range b {
			idx := ch*b + k
			if first {
				s.frequency[idx] = s.omega[k]
				continue
			}

			dev := core.WrapPhase(s.phase[idx] - s.prevPhase[idx] - s.omega[k]*hop)
			s.frequency[idx] = s.omega[k] + dev/hop
		}
	}
}

// remap moves source bins to output bins for the transpose factor. Output bin
// k reads source position k/transpose, interpolating magnitude and frequency
// linearly and taking the phase of the nearest source bin. Above the tonality
// limit the map continues as a constant offset: a source frequency f past the
// limit lands at f + (transpose-1)*limit, so nothing is duplicated or skipped
// at the boundary. mapSlope[k] is the source phase step between the bins
// around output bins k and k+1, which keeps each spectral peak's time
// alignment when its lobe is stretched or squeezed.
func (s *Stretch) remap() {
	b := s.bins
	last := float64(b - 1)
	t := s.transpose
	source := s.formants.source

	limitBin, shift := math.Inf(1), 0.0
	if hz, ok := s.tonalityLimit.Hz(); ok {
		limitBin = hz / s.binHz()
		shift = 2 * math.Pi * (t - 1) * hz / s.sampleRate
	}

	for k := range b {
		pos := float64(k)
		source[k] = pos / t
		s.sourceMult[k] = t
		s.sourceShift[k] = 0

		if source[k] > limitBin {
			source[k] = pos - (t-1)*limitBin
			s.sourceMult[k] = 1
			s.sourceShift[k] = shift
		}
	}

	for ch := range s.channels {
		base := ch * b
		mag := s.magnitude[base : base+b]
		phase := s.phase[base : base+b]
		freq := s.frequency[base : base+b]

		for k := range b {
			idx := base + k
			src := source[k]

			if src > last {
				s.mapMag[idx] = 0
				s.mapPhase[idx] = 0
				s.mapFreq[idx] = s.omega[k]
				s.mapSlope[idx] = 0

				continue
			}

			lo, frac := interp.Split(src, b)

			nearest := lo
			if frac >= 0.5 {
				nearest = lo + 1
			}

			s.mapMag[idx] = interp.Linear2(frac, mag[lo], mag[lo+1])
			s.mapPhase[idx] = phase[nearest]
			s.mapFreq[idx] = interp.Linear2(frac, freq[lo], freq[lo+1])*s.sourceMult[k] + s.sourceShift[k]

			s.mapSlope[idx] = 0
			if k+1 < b {
				j := min(int((src+source[k+1])/2), b-2)
				s.mapSlope[idx] = core.WrapPhase(phase[j+1] - phase[j])
			}
		}
	}
}

// synthesize builds each channel's output spectrum from the remapped
// magnitudes and locked phases and overlap-adds it at the current output
// position.
func (s *Stretch) synthesize() {
	b := s.bins

	for ch := range s.channels {
		spec := s.spectrum[ch*b : (ch+1)*b]

		for k := range b {
			idx := ch*b + k
			sin, cos := math.Sincos(s.newPhase[idx])
			spec[k] = complex(s.mapMag[idx]*cos, s.mapMag[idx]*sin)
			s.outPhase[idx] = core.WrapPhase(s.newPhase[idx])
		}

		s.transform.Synthesize(s.frame, spec)
		s.ola.Add(ch, s.outPos, s.frame)
	}
}
