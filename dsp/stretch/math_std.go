//go:build !fastmath

package stretch

import "math"

// envelopeSqrt computes sqrt(x) using standard library.
func envelopeSqrt(x float64) float64 {
	return math.Sqrt(x)
}
