// Command stretch time-stretches and pitch-shifts raw interleaved float32
// PCM streams.
//
// Usage:
//
//	stretch process [flags] <input> <output>
//	stretch info [flags]
//
// Use "-" for stdin or stdout.
//
// Examples:
//
//	stretch process --rate 1.25 --semitones -2 in.f32 out.f32
//	stretch process --channels 1 --sample-rate 44100 --formant-compensate --semitones 5 - -
//	stretch info --sample-rate 96000 --window kaiser
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
