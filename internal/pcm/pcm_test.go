package pcm

import (
	"bytes"
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

func stereo() *goaudio.Format {
	return &goaudio.Format{NumChannels: 2, SampleRate: 48000}
}

func TestRoundTrip(t *testing.T) {
	var stream bytes.Buffer

	w, err := NewWriter(&stream, 2)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	in := []float32{0, 1, -1, 0.5, 0.25, -0.125, 3.5, -7}
	if err := w.Write(&goaudio.Float32Buffer{Data: in, Format: stereo()}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if stream.Len() != len(in)*4 {
		t.Fatalf("stream length = %d, want %d", stream.Len(), len(in)*4)
	}

	r, err := NewReader(&stream, stereo())
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	// Three frames per read: the second read comes back short.
	buf := NewBuffer(r.Format(), 3)

	var got []float32

	for {
		n, err := r.Read(buf)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}

		got = append(got, buf.Data[:n]...)
	}

	if len(got) != len(in) {
		t.Fatalf("read %d samples, want %d", len(got), len(in))
	}

	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], in[i])
		}
	}

	if buf.SourceBitDepth != BitDepth || buf.Format.NumChannels != 2 {
		t.Fatalf("buffer format = %+v depth %d", buf.Format, buf.SourceBitDepth)
	}
}

func TestReadPartialFrame(t *testing.T) {
	// One stereo frame plus half of the next.
	r, err := NewReader(bytes.NewReader(make([]byte, 12)), stereo())
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	_, err = r.Read(NewBuffer(r.Format(), 4))
	if !errors.Is(err, ErrPartialFrame) {
		t.Fatalf("Read() error = %v, want %v", err, ErrPartialFrame)
	}
}

func TestReadEmpty(t *testing.T) {
	r, err := NewReader(bytes.NewReader(nil), stereo())
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	n, err := r.Read(NewBuffer(r.Format(), 4))
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("Read() = %d, %v, want 0, EOF", n, err)
	}
}

func TestValidation(t *testing.T) {
	formats := []*goaudio.Format{
		nil,
		{NumChannels: 0, SampleRate: 48000},
		{NumChannels: 1, SampleRate: 0},
	}

	for _, f := range formats {
		if _, err := NewReader(bytes.NewReader(nil), f); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("NewReader(%+v) error = %v, want %v", f, err, ErrInvalidFormat)
		}
	}

	if _, err := NewWriter(io.Discard, 0); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("NewWriter(0) error = %v, want %v", err, ErrInvalidFormat)
	}

	w, err := NewWriter(io.Discard, 2)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.WriteSamples(make([]float32, 3)); !errors.Is(err, ErrPartialFrame) {
		t.Fatalf("WriteSamples(3) error = %v, want %v", err, ErrPartialFrame)
	}

	mono := &goaudio.Float32Buffer{Data: make([]float32, 2), Format: &goaudio.Format{NumChannels: 1, SampleRate: 48000}}
	if err := w.Write(mono); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("Write(mono) error = %v, want %v", err, ErrInvalidFormat)
	}
}
