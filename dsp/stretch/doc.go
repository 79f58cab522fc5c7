// Package stretch implements a real-time phase-vocoder time-stretch and
// pitch/formant-shift engine for interleaved multi-channel float32 audio.
//
// A Stretch consumes and produces independent numbers of frames per call:
// the ratio of input to output frames of a Process call is the playback rate
// for that call, and may change from call to call. Pitch (transpose) and
// formant shifts are independent of the playback rate.
//
// Every analysis step windows the most recent input, estimates the
// instantaneous frequency of each bin from its phase advance, remaps bins for
// the transpose and formant factors, and rebuilds a coherent output phase by
// propagating phase from the loudest bins outwards (phase locking). Frames
// are overlap-added with a least-squares synthesis window, so at unity
// settings the output equals the input delayed by InputLatency() +
// OutputLatency() frames.
//
// Process, Seek, Flush and Reset never allocate and never fail. Buffers whose
// length is not a multiple of the channel count are a caller bug: builds with
// the stretchdebug tag panic, release builds ignore the trailing partial
// frame.
//
// A Stretch is not safe for concurrent use.
package stretch
