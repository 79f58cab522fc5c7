package window

import "github.com/cwbudde/algo-vecmath"

// synthesisFloor is the smallest overlapped energy treated as non-zero.
const synthesisFloor = 1e-9

// Synthesis returns the least-squares synthesis window for an analysis window
// applied every hop samples:
//
//	ws[n] = wa[n] / sum_m wa[n+m*hop]^2
//
// With this choice the product wa*ws overlap-adds to exactly one at every
// position whose overlapped energy is non-zero. Positions with no energy get a
// zero coefficient.
func Synthesis(analysis []float64, hop int) ([]float64, error) {
	if len(analysis) == 0 {
		return nil, errEmptyCoeffs
	}

	if hop <= 0 || hop > len(analysis) {
		return nil, invalidHop(hop, len(analysis))
	}

	n := len(analysis)
	energy := make([]float64, hop)

	for i, w := range analysis {
		energy[i%hop] += w * w
	}

	out := make([]float64, n)
	for i, w := range analysis {
		den := energy[i%hop]
		if den < synthesisFloor {
			continue
		}

		out[i] = w / den
	}

	return out, nil
}

// OverlapGain returns the minimum and maximum of sum_m wa[n+m*hop]*ws[n+m*hop]
// over one hop period, i.e. the reconstruction gain of an analysis/synthesis
// pair overlapped every hop samples. A perfect pair returns (1, 1).
func OverlapGain(analysis, synthesis []float64, hop int) (lo, hi float64, err error) {
	if len(analysis) == 0 {
		return 0, 0, errEmptyCoeffs
	}

	if len(analysis) != len(synthesis) {
		return 0, 0, errMismatchedLength
	}

	if hop <= 0 || hop > len(analysis) {
		return 0, 0, invalidHop(hop, len(analysis))
	}

	product := make([]float64, len(analysis))
	vecmath.MulBlock(product, analysis, synthesis)

	gain := make([]float64, hop)
	for i, v := range product {
		gain[i%hop] += v
	}

	lo, hi = gain[0], gain[0]
	for _, g := range gain[1:] {
		lo = min(lo, g)
		hi = max(hi, g)
	}

	return lo, hi, nil
}
