package stretch

import (
	"fmt"
	"math"
)

// TonalityLimit is the frequency above which transposition becomes a
// constant frequency offset instead of a ratio.
// The zero value is NoTonalityLimit.
type TonalityLimit struct {
	hz float64
}

// NoTonalityLimit transposes the whole spectrum.
var NoTonalityLimit = TonalityLimit{}

// TonalityLimitHz limits transposition to source frequencies up to hz.
// Content above it is moved by the same offset the limit itself moves,
// (transpose-1)*hz, so harmonics stay harmonic below the limit and the
// noisy top end keeps its spacing. TonalityLimitHz(0) equals NoTonalityLimit.
func TonalityLimitHz(hz float64) TonalityLimit {
	return TonalityLimit{hz: hz}
}

// Hz returns the limit and whether one is set.
func (l TonalityLimit) Hz() (float64, bool) {
	return l.hz, l.hz != 0
}

func (l TonalityLimit) String() string {
	if hz, ok := l.Hz(); ok {
		return fmt.Sprintf("%g Hz", hz)
	}

	return "none"
}

func (l TonalityLimit) validate() error {
	if math.IsNaN(l.hz) || math.IsInf(l.hz, 0) || l.hz < 0 {
		return fmt.Errorf("%w: tonality limit must be finite and >= 0: %f", ErrInvalidFrequency, l.hz)
	}

	return nil
}

// FormantBase is the fundamental frequency used to size the spectral
// envelope smoothing. The zero value is AutoFormantBase.
type FormantBase struct {
	hz float64
}

// AutoFormantBase estimates the fundamental of every block.
var AutoFormantBase = FormantBase{}

// FormantBaseHz fixes the formant base frequency. FormantBaseHz(0) equals
// AutoFormantBase.
func FormantBaseHz(hz float64) FormantBase {
	return FormantBase{hz: hz}
}

// Hz returns the fixed base frequency and whether one is set.
func (b FormantBase) Hz() (float64, bool) {
	return b.hz, b.hz != 0
}

func (b FormantBase) String() string {
	if hz, ok := b.Hz(); ok {
		return fmt.Sprintf("%g Hz", hz)
	}

	return "auto"
}

func (b FormantBase) validate() error {
	if math.IsNaN(b.hz) || math.IsInf(b.hz, 0) || b.hz < 0 {
		return fmt.Errorf("%w: formant base must be finite and >= 0: %f", ErrInvalidFrequency, b.hz)
	}

	return nil
}
