// Package stft implements the short-time Fourier transform framing used by
// the stretch engine: windowed forward transforms of one block into its
// half spectrum, and real inverse transforms weighted by a synthesis window.
//
// Blocks need not be a power of two; they are zero-padded to the next power
// of two before the FFT. A Transform owns all of its scratch memory and never
// allocates after New.
package stft
