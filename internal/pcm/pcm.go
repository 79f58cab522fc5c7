// Package pcm streams raw interleaved little-endian float32 samples, the
// headerless format the stretch command reads and writes.
package pcm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
)

// BitDepth is the sample size of the raw stream.
const BitDepth = 32

const bytesPerSample = BitDepth / 8

var (
	// ErrInvalidFormat is returned for formats without channels or sample rate.
	ErrInvalidFormat = errors.New("pcm: invalid format")
	// ErrPartialFrame is returned when a stream or buffer ends inside a frame.
	ErrPartialFrame = errors.New("pcm: partial frame")
)

func validFormat(f *goaudio.Format) error {
	if f == nil {
		return fmt.Errorf("%w: nil", ErrInvalidFormat)
	}

	if f.NumChannels < 1 {
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, f.NumChannels)
	}

	if f.SampleRate < 1 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}

	return nil
}

// NewBuffer returns a buffer holding frames frames of format.
func NewBuffer(format *goaudio.Format, frames int) *goaudio.Float32Buffer {
	return &goaudio.Float32Buffer{
		Data:           make([]float32, frames*format.NumChannels),
		Format:         format,
		SourceBitDepth: BitDepth,
	}
}

// Reader decodes a raw float32 stream.
type Reader struct {
	r      *bufio.Reader
	format *goaudio.Format
	raw    []byte
}

// NewReader returns a Reader for a stream of the given format.
func NewReader(r io.Reader, format *goaudio.Format) (*Reader, error) {
	if err := validFormat(format); err != nil {
		return nil, err
	}

	return &Reader{r: bufio.NewReader(r), format: format}, nil
}

// Format returns the stream format.
func (r *Reader) Format() *goaudio.Format { return r.format }

// Read fills buf.Data with whole frames and returns the number of samples
// read. At the end of the stream it returns 0 and io.EOF.
func (r *Reader) Read(buf *goaudio.Float32Buffer) (int, error) {
	ch := r.format.NumChannels
	frames := len(buf.Data) / ch
	need := frames * ch * bytesPerSample

	if cap(r.raw) < need {
		r.raw = make([]byte, need)
	}

	raw := r.raw[:need]

	n, err := io.ReadFull(r.r, raw)
	switch {
	case errors.Is(err, io.EOF):
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		if n%(ch*bytesPerSample) != 0 {
			return 0, fmt.Errorf("%w: %d trailing bytes", ErrPartialFrame, n%(ch*bytesPerSample))
		}
	case err != nil:
		return 0, fmt.Errorf("read pcm: %w", err)
	}

	samples := n / bytesPerSample
	for i := range samples {
		buf.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*bytesPerSample:]))
	}

	buf.Format = r.format
	buf.SourceBitDepth = BitDepth

	return samples, nil
}

// Writer encodes a raw float32 stream. Output is buffered until Flush.
type Writer struct {
	w        *bufio.Writer
	channels int
	raw      []byte
}

// NewWriter returns a Writer for channels interleaved channels.
func NewWriter(w io.Writer, channels int) (*Writer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFormat, channels)
	}

	return &Writer{w: bufio.NewWriter(w), channels: channels}, nil
}

// Write encodes all samples of buf.
func (w *Writer) Write(buf *goaudio.Float32Buffer) error {
	if buf.Format != nil && buf.Format.NumChannels != w.channels {
		return fmt.Errorf("%w: buffer has %d channels, stream %d", ErrInvalidFormat, buf.Format.NumChannels, w.channels)
	}

	return w.WriteSamples(buf.Data)
}

// WriteSamples encodes interleaved samples.
func (w *Writer) WriteSamples(samples []float32) error {
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrPartialFrame, len(samples), w.channels)
	}

	need := len(samples) * bytesPerSample
	if cap(w.raw) < need {
		w.raw = make([]byte, need)
	}

	raw := w.raw[:need]
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*bytesPerSample:], math.Float32bits(s))
	}

	if _, err := w.w.Write(raw); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}

	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush pcm: %w", err)
	}

	return nil
}
