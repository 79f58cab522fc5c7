package core

import "math"

// denormalThreshold is the magnitude below which FlushDenormals zeroes values.
const denormalThreshold = 1e-30

// FlushDenormals sets values smaller in magnitude than 1e-30 to exact zero.
// This keeps decaying tails from lingering in the denormal range, where
// arithmetic is slow on many CPUs.
func FlushDenormals(x []float64) {
	for i, v := range x {
		if v > -denormalThreshold && v < denormalThreshold {
			x[i] = 0
		}
	}
}

// IsFinitePositive reports whether x is a finite value > 0.
func IsFinitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}

// IsFinite reports whether x is neither NaN nor ±Inf.
func IsFinite(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x)
}

// SemitonesToRatio converts a pitch interval in semitones to a frequency ratio.
func SemitonesToRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12)
}

// WrapPhase maps x to the principal value in [-pi, pi).
func WrapPhase(x float64) float64 {
	if x >= -math.Pi && x < math.Pi {
		return x
	}

	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}

	return x - math.Pi
}

// NextPowerOf2 returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

// NearestPowerOf2 returns the power of two closest to x on a log scale.
// Values below 1 return 1.
func NearestPowerOf2(x float64) int {
	if !(x > 1) || math.IsInf(x, 0) {
		return 1
	}

	return 1 << int(math.Round(math.Log2(x)))
}
