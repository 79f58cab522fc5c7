// Package buffer provides the fixed-size multi-channel rings used by
// block-based spectral processors: a History of the most recent input frames
// and an OverlapAdd accumulator for synthesized output. Both are sized once at
// construction and never allocate afterwards.
package buffer
