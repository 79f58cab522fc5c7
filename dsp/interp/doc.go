// Package interp provides fractional-index reads over sampled data, used by
// the spectral bin remapping and envelope lookups of the stretch engine.
package interp
