package stretch

import (
	"math"

	"github.com/cwbudde/algo-stretch/dsp/core"
)

// minSeekRate bounds the pre-roll output a Seek may synthesize.
const minSeekRate = 1.0 / 1024

// Process consumes len(input)/Channels() frames and produces
// len(output)/Channels() frames. The ratio of the two is the playback rate
// for this call.
func (s *Stretch) Process(input, output []float32) {
	checkFrames("input", len(input), s.channels)
	checkFrames("output", len(output), s.channels)

	s.process(input, core.Frames(len(input), s.channels), output, core.Frames(len(output), s.channels))
}

// Seek restarts the stream at the end of input. The engine is reset and then
// primed with the last frames of input, consumed at playbackRate input frames
// per output frame on the same synthesis grid a full run over input would
// use. No output is produced; the next Process continues as if all of input
// had been processed. Rates that are not positive and finite count as 1.
func (s *Stretch) Seek(input []float32, playbackRate float64) {
	checkFrames("seek input", len(input), s.channels)

	rate := playbackRate
	if !core.IsFinitePositive(rate) {
		rate = 1
	}

	rate = max(rate, minSeekRate)

	s.Reset()

	frames := core.Frames(len(input), s.channels)
	tail := min(frames, 2*s.blockLength+s.interval)
	tailOut := int(math.Round(float64(tail) / rate))
	skipOut := max(int(math.Round(float64(frames)/rate))-tailOut, 0)

	s.untilStep = (s.interval - skipOut%s.interval) % s.interval

	start := (frames - tail) * s.channels
	s.process(input[start:start+tail*s.channels], tail, nil, tailOut)
}

// Flush writes the remaining output of the stream to output, as if silence
// followed the last input, and resets the engine. A buffer of
// OutputLatency() frames receives the tail; frames beyond BlockLength() are
// silent. When output is shorter than the tail, the rest is folded back onto
// its end with inverted sign so it fades out instead of being cut off.
func (s *Stretch) Flush(output []float32) {
	checkFrames("flush output", len(output), s.channels)

	n := s.blockLength
	s.process(nil, n, s.tail, n)

	frames := core.Frames(len(output), s.channels)
	plain := min(frames, n)
	copy(output[:plain*s.channels], s.tail[:plain*s.channels])
	core.ZeroFloat32(output[plain*s.channels : frames*s.channels])

	folded := min(plain, n-plain)
	for i := range folded {
		dst := (frames - 1 - i) * s.channels
		src := (plain + i) * s.channels

		for ch := range s.channels {
			output[dst+ch] -= s.tail[src+ch]
		}
	}

	s.Reset()
}

// process runs the scheduler over inFrames input frames (silence when input
// is nil) and outFrames output frames (discarded when output is nil).
func (s *Stretch) process(input []float32, inFrames int, output []float32, outFrames int) {
	for j := 0; j < outFrames; {
		if s.untilStep == 0 {
			// Block end for output frame j, rounded to the nearest input frame.
			end := (2*j*inFrames + outFrames) / (2 * outFrames)
			s.step(input, end)
			s.untilStep = s.interval
		}

		n := min(s.untilStep, outFrames-j)
		s.drain(output, j, n)

		j += n
		s.untilStep -= n
		s.outPos += int64(n)
	}

	s.history.WriteInterleaved(input, inFrames)

	s.prevEnd -= inFrames
	if limit := -s.history.Size() - 1; s.prevEnd < limit {
		s.prevEnd = limit
	}
}

// drain moves n finished frames from the overlap-add ring to output at
// frame offset. Denormal residue is flushed to zero on the way out.
func (s *Stretch) drain(output []float32, offset, n int) {
	emit := s.emit[:n]

	for ch := range s.channels {
		s.ola.Take(emit, ch, s.outPos)
		core.FlushDenormals(emit)

		if output != nil {
			core.Interleave(output, emit, s.channels, ch, offset)
		}
	}
}

// readBlock fills s.block with the channel's input frames [end-BlockLength,
// end), relative to the current call. Negative frames come from history.
func (s *Stretch) readBlock(input []float32, channel, end int) {
	start := end - s.blockLength
	split := min(max(-start, 0), s.blockLength)

	if split > 0 {
		s.history.Read(s.block[:split], channel, -start)
	}

	if split < s.blockLength {
		core.Deinterleave(s.block[split:], input, s.channels, channel, start+split)
	}
}
