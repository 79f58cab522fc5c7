package buffer

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// OverlapAdd accumulates overlapping synthesis frames. Positions are absolute
// frame indices of the output stream; the ring keeps Size() frames per
// channel, so a frame added at position p may extend up to p+Size()-1 as long
// as every position before p has already been taken.
type OverlapAdd struct {
	channels int
	size     int
	data     []float64
}

// NewOverlapAdd returns an empty accumulator of size frames per channel.
func NewOverlapAdd(channels, size int) (*OverlapAdd, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("overlap-add channels must be > 0: %d", channels)
	}

	if size <= 0 {
		return nil, fmt.Errorf("overlap-add size must be > 0: %d", size)
	}

	return &OverlapAdd{
		channels: channels,
		size:     size,
		data:     make([]float64, channels*size),
	}, nil
}

// Size returns the capacity in frames per channel.
func (o *OverlapAdd) Size() int {
	return o.size
}

// Add sums src into one channel starting at absolute position pos.
// len(src) must not exceed Size().
func (o *OverlapAdd) Add(channel int, pos int64, src []float64) {
	ring := o.data[channel*o.size : (channel+1)*o.size]
	start := int(pos % int64(o.size))

	first := min(len(src), o.size-start)
	vecmath.AddBlockInPlace(ring[start:start+first], src[:first])

	if rest := src[first:]; len(rest) > 0 {
		vecmath.AddBlockInPlace(ring[:len(rest)], rest)
	}
}

// Take moves len(dst) frames of one channel starting at absolute position pos
// into dst and clears them in the ring.
func (o *OverlapAdd) Take(dst []float64, channel int, pos int64) {
	ring := o.data[channel*o.size : (channel+1)*o.size]
	start := int(pos % int64(o.size))

	for i := range dst {
		idx := start + i
		for idx >= o.size {
			idx -= o.size
		}

		dst[i] = ring[idx]
		ring[idx] = 0
	}
}

// Reset clears all accumulated frames.
func (o *OverlapAdd) Reset() {
	for i := range o.data {
		o.data[i] = 0
	}
}
