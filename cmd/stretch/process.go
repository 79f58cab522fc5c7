package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/internal/pcm"
	goaudio "github.com/go-audio/audio"
	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <input> <output>",
		Short: "Stretch a raw float32 PCM stream",
		Long: "Reads interleaved little-endian float32 samples, applies the playback rate,\n" +
			"pitch and formant settings, and writes the result in the same format.\n" +
			"The output is aligned with the input and round(frames/rate) frames long.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			s, err := newEngine(cfg)
			if err != nil {
				return err
			}

			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := createOutput(cmd, args[1])
			if err != nil {
				return err
			}

			format := &goaudio.Format{NumChannels: cfg.Audio.Channels, SampleRate: cfg.Audio.SampleRate}

			r, err := pcm.NewReader(in, format)
			if err != nil {
				_ = out.Close()
				return err
			}

			w, err := pcm.NewWriter(out, cfg.Audio.Channels)
			if err != nil {
				_ = out.Close()
				return err
			}

			slog.Info("stretching",
				"channels", s.Channels(),
				"sample_rate", s.SampleRate(),
				"block", s.BlockLength(),
				"interval", s.Interval(),
				"input_latency", s.InputLatency(),
				"output_latency", s.OutputLatency(),
				"rate", cfg.Engine.Rate,
				"transpose", s.TransposeFactor(),
				"formant", s.FormantFactor(),
			)

			st := newStreamer(s, r, w, cfg.Engine.Rate, cfg.Audio.Chunk)

			runErr := st.run(cmd.Context())
			if err := out.Close(); err != nil && runErr == nil {
				runErr = fmt.Errorf("close output: %w", err)
			}

			if runErr != nil {
				return runErr
			}

			slog.Info("done", "in_frames", st.inFrames, "out_frames", st.written)

			return nil
		},
	}
}

// streamer runs a whole stream through the engine: the first InputLatency
// frames prime it through Seek, the rest is processed in chunks, followed by
// InputLatency frames of silence and a Flush of OutputLatency frames. The
// first OutputLatency output frames are dropped so output frame i lines up
// with input frame i*rate, and the output is cut to round(frames/rate).
type streamer struct {
	s    *stretch.Stretch
	r    *pcm.Reader
	w    *pcm.Writer
	rate float64

	inChunk int
	in      *goaudio.Float32Buffer
	out     []float32

	// inFrames counts the real input frames read.
	inFrames int
	// consumed and produced count frames through Process after the seek.
	consumed int
	produced int

	skip    int
	limit   int
	written int
}

func newStreamer(s *stretch.Stretch, r *pcm.Reader, w *pcm.Writer, rate float64, chunk int) *streamer {
	ch := s.Channels()
	inChunk := max(int(math.Round(float64(chunk)*rate)), 1)
	outCap := int(math.Ceil(float64(inChunk)/rate)) + 1

	return &streamer{
		s:       s,
		r:       r,
		w:       w,
		rate:    rate,
		inChunk: inChunk,
		in:      pcm.NewBuffer(r.Format(), max(inChunk, s.InputLatency())),
		out:     make([]float32, max(outCap, s.OutputLatency())*ch),
		skip:    s.OutputLatency(),
		limit:   math.MaxInt,
	}
}

func (st *streamer) run(ctx context.Context) error {
	ch := st.s.Channels()
	latency := st.s.InputLatency()

	// Prime with the first InputLatency frames, padded when the stream is
	// shorter.
	preRoll := st.in.Data[:latency*ch]

	n, eof, err := st.read(preRoll)
	if err != nil {
		return err
	}

	clear(preRoll[n*ch:])
	st.s.Seek(preRoll, st.rate)

	for !eof {
		if err := ctx.Err(); err != nil {
			return err
		}

		buf := st.in.Data[:st.inChunk*ch]

		n, eof, err = st.read(buf)
		if err != nil {
			return err
		}

		if err := st.process(buf[:n*ch]); err != nil {
			return err
		}
	}

	st.limit = int(math.Round(float64(st.inFrames) / st.rate))

	// Silence pushes the last input frames past the input latency.
	silence := st.in.Data[:st.inChunk*ch]
	clear(silence)

	for left := latency; left > 0; {
		n := min(left, st.inChunk)
		if err := st.process(silence[:n*ch]); err != nil {
			return err
		}

		left -= n
	}

	tail := st.out[:st.s.OutputLatency()*ch]
	st.s.Flush(tail)

	if err := st.emit(tail); err != nil {
		return err
	}

	return st.w.Flush()
}

// read fills buf with whole frames and reports whether the stream ended.
func (st *streamer) read(buf []float32) (int, bool, error) {
	ch := st.s.Channels()

	n, err := st.r.Read(&goaudio.Float32Buffer{Data: buf})
	if errors.Is(err, io.EOF) {
		return 0, true, nil
	}

	if err != nil {
		return 0, false, err
	}

	frames := n / ch
	st.inFrames += frames

	return frames, frames*ch < len(buf), nil
}

// process runs input through the engine, producing output so the total
// stays at round(consumed/rate).
func (st *streamer) process(input []float32) error {
	ch := st.s.Channels()

	st.consumed += len(input) / ch
	target := int(math.Round(float64(st.consumed) / st.rate))
	n := target - st.produced
	st.produced = target

	output := st.out[:n*ch]
	st.s.Process(input, output)

	slog.Debug("chunk", "in_frames", len(input)/ch, "out_frames", n)

	return st.emit(output)
}

// emit writes output after dropping the leading latency, up to the limit.
func (st *streamer) emit(output []float32) error {
	ch := st.s.Channels()
	frames := len(output) / ch

	drop := min(st.skip, frames)
	st.skip -= drop

	keep := min(frames-drop, st.limit-st.written)
	if keep <= 0 {
		return nil
	}

	st.written += keep

	return st.w.WriteSamples(output[drop*ch : (drop+keep)*ch])
}
