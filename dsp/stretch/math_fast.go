//go:build fastmath

package stretch

import "github.com/meko-christian/algo-approx"

// envelopeSqrt computes sqrt(x) using fast approximation.
func envelopeSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
