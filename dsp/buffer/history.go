package buffer

import "fmt"

// History keeps the most recent Size() frames of a multi-channel stream.
// Each channel is stored in its own circular region so that reads return
// planar float64 data.
type History struct {
	channels int
	size     int
	data     []float64
	writePos int
}

// NewHistory returns a zeroed history of size frames per channel.
func NewHistory(channels, size int) (*History, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("history channels must be > 0: %d", channels)
	}

	if size <= 0 {
		return nil, fmt.Errorf("history size must be > 0: %d", size)
	}

	return &History{
		channels: channels,
		size:     size,
		data:     make([]float64, channels*size),
	}, nil
}

// Size returns the capacity in frames per channel.
func (h *History) Size() int {
	return h.size
}

// WriteInterleaved appends frames from an interleaved float32 buffer. A nil
// src appends frames of silence. Only the newest Size() frames are retained.
func (h *History) WriteInterleaved(src []float32, frames int) {
	if frames <= 0 {
		return
	}

	skip := 0
	if frames > h.size {
		skip = frames - h.size
	}

	for f := skip; f < frames; f++ {
		for ch := 0; ch < h.channels; ch++ {
			v := 0.0
			if src != nil {
				v = float64(src[f*h.channels+ch])
			}

			h.data[ch*h.size+h.writePos] = v
		}

		h.writePos++
		if h.writePos >= h.size {
			h.writePos = 0
		}
	}
}

// Read copies len(dst) consecutive frames of one channel into dst, oldest
// first. dst[0] is the frame written delay frames ago, so delay 1 addresses
// the newest frame. Frames older than the capacity read as zero.
func (h *History) Read(dst []float64, channel, delay int) {
	base := channel * h.size
	for i := range dst {
		age := delay - i
		if age <= 0 || age > h.size {
			dst[i] = 0
			continue
		}

		pos := h.writePos - age
		if pos < 0 {
			pos += h.size
		}

		dst[i] = h.data[base+pos]
	}
}

// Reset clears all frames.
func (h *History) Reset() {
	for i := range h.data {
		h.data[i] = 0
	}

	h.writePos = 0
}
