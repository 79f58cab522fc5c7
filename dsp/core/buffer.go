package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ZeroFloat32 sets all values in buf to 0.
func ZeroFloat32(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

// Frames returns the number of whole interleaved frames in a buffer of n samples.
func Frames(n, channels int) int {
	if channels <= 0 {
		return 0
	}

	return n / channels
}

// Deinterleave copies frames [start, start+len(dst)) of one channel of an
// interleaved float32 buffer into dst. Frames outside src read as zero.
func Deinterleave(dst []float64, src []float32, channels, channel, start int) {
	frames := Frames(len(src), channels)
	for i := range dst {
		f := start + i
		if f < 0 || f >= frames {
			dst[i] = 0
			continue
		}

		dst[i] = float64(src[f*channels+channel])
	}
}

// Interleave writes src into one channel of an interleaved float32 buffer,
// starting at frame start. Frames that do not fit are dropped.
func Interleave(dst []float32, src []float64, channels, channel, start int) {
	frames := Frames(len(dst), channels)
	for i, v := range src {
		f := start + i
		if f < 0 || f >= frames {
			continue
		}

		dst[f*channels+channel] = float32(v)
	}
}
