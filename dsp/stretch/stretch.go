package stretch

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/buffer"
	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/stft"
	"github.com/cwbudde/algo-stretch/dsp/window"
)

// MinBlockLength is the smallest supported analysis block.
const MinBlockLength = 16

// Stretch is a streaming time-stretch and pitch/formant-shift engine.
type Stretch struct {
	channels    int
	blockLength int
	interval    int
	sampleRate  float64
	windowType  window.Type

	transpose     float64
	tonalityLimit TonalityLimit
	formant       float64
	compensate    bool
	formantBase   FormantBase

	transform *stft.Transform
	bins      int
	omega     []float64

	history *buffer.History
	ola     *buffer.OverlapAdd

	// Scheduler state. prevEnd is the end of the last analysed block,
	// relative to the first frame of the next Process call.
	outPos    int64
	untilStep int
	prevEnd   int
	havePrev  bool

	// Per channel and bin, indexed channel*bins + bin.
	spectrum  []complex128
	magnitude []float64
	phase     []float64
	prevPhase []float64
	frequency []float64
	outPhase  []float64

	// Remapped output bins, indexed like spectrum.
	mapMag   []float64
	mapPhase []float64
	mapFreq  []float64
	mapSlope []float64
	newPhase []float64

	sourceMult  []float64
	sourceShift []float64

	locker   phaseLocker
	formants formantShifter

	block []float64
	frame []float64
	emit  []float64
	tail  []float32
}

// New returns an engine for channels interleaved channels that analyses
// blocks of blockLength frames every interval output frames.
func New(channels, blockLength, interval int, opts ...Option) (*Stretch, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: must be > 0: %d", ErrInvalidChannels, channels)
	}

	if blockLength < MinBlockLength {
		return nil, fmt.Errorf("%w: must be >= %d: %d", ErrInvalidBlockLength, MinBlockLength, blockLength)
	}

	if interval < 1 || interval > blockLength {
		return nil, fmt.Errorf("%w: must be in [1, %d]: %d", ErrInvalidInterval, blockLength, interval)
	}

	cfg := applyOptions(opts)
	if !core.IsFinitePositive(cfg.sampleRate) {
		return nil, fmt.Errorf("%w: must be positive and finite: %f", ErrInvalidSampleRate, cfg.sampleRate)
	}

	if !validWindow(cfg.window) {
		return nil, fmt.Errorf("stretch: unsupported window type: %d", cfg.window)
	}

	analysis := window.Generate(cfg.window, blockLength, window.WithPeriodic())

	synthesis, err := window.Synthesis(analysis, interval)
	if err != nil {
		return nil, fmt.Errorf("stretch: synthesis window: %w", err)
	}

	transform, err := stft.New(blockLength, analysis, synthesis)
	if err != nil {
		return nil, fmt.Errorf("stretch: %w", err)
	}

	history, err := buffer.NewHistory(channels, blockLength+interval)
	if err != nil {
		return nil, fmt.Errorf("stretch: %w", err)
	}

	ola, err := buffer.NewOverlapAdd(channels, blockLength)
	if err != nil {
		return nil, fmt.Errorf("stretch: %w", err)
	}

	bins := transform.Bins()
	size := channels * bins

	s := &Stretch{
		channels:    channels,
		blockLength: blockLength,
		interval:    interval,
		sampleRate:  cfg.sampleRate,
		windowType:  cfg.window,
		transpose:   1,
		formant:     1,
		transform:   transform,
		bins:        bins,
		omega:       make([]float64, bins),
		history:     history,
		ola:         ola,
		spectrum:    make([]complex128, size),
		magnitude:   make([]float64, size),
		phase:       make([]float64, size),
		prevPhase:   make([]float64, size),
		frequency:   make([]float64, size),
		outPhase:    make([]float64, size),
		mapMag:      make([]float64, size),
		mapPhase:    make([]float64, size),
		mapFreq:     make([]float64, size),
		mapSlope:    make([]float64, size),
		sourceMult:  make([]float64, bins),
		sourceShift: make([]float64, bins),
		newPhase:    make([]float64, size),
		locker:      newPhaseLocker(bins),
		formants:    newFormantShifter(channels, bins, transform.FFTSize()),
		block:       make([]float64, blockLength),
		frame:       make([]float64, blockLength),
		emit:        make([]float64, blockLength),
		tail:        make([]float32, channels*blockLength),
	}

	for k := range s.omega {
		s.omega[k] = transform.BinFrequency(k)
	}

	return s, nil
}

// NewPresetDefault returns an engine with a block of about 120 ms at
// sampleRate and four-fold overlap.
func NewPresetDefault(channels int, sampleRate float64, opts ...Option) (*Stretch, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: must be positive and finite: %f", ErrInvalidSampleRate, sampleRate)
	}

	block := max(core.NearestPowerOf2(0.12*sampleRate), MinBlockLength)

	return New(channels, block, block/4, append(opts, WithSampleRate(sampleRate))...)
}

// NewPresetCheaper returns an engine with a block of about 100 ms at
// sampleRate and 2.5-fold overlap, trading quality for CPU.
func NewPresetCheaper(channels int, sampleRate float64, opts ...Option) (*Stretch, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("%w: must be positive and finite: %f", ErrInvalidSampleRate, sampleRate)
	}

	block := max(core.NearestPowerOf2(0.1*sampleRate), MinBlockLength)

	return New(channels, block, 2*block/5, append(opts, WithSampleRate(sampleRate))...)
}

func validWindow(t window.Type) bool {
	for _, v := range window.Types() {
		if v == t {
			return true
		}
	}

	return false
}

// Channels returns the interleaved channel count.
func (s *Stretch) Channels() int { return s.channels }

// BlockLength returns the analysis block length in frames.
func (s *Stretch) BlockLength() int { return s.blockLength }

// Interval returns the synthesis hop in frames.
func (s *Stretch) Interval() int { return s.interval }

// SampleRate returns the configured sample rate in Hz.
func (s *Stretch) SampleRate() float64 { return s.sampleRate }

// Window returns the analysis window type.
func (s *Stretch) Window() window.Type { return s.windowType }

// FFTSize returns the zero-padded transform size.
func (s *Stretch) FFTSize() int { return s.transform.FFTSize() }

// InputLatency returns the delay in frames between a sample entering Process
// and the centre of the block it influences.
func (s *Stretch) InputLatency() int { return s.blockLength / 2 }

// OutputLatency returns the delay in frames between the centre of a block and
// the corresponding output of Process.
func (s *Stretch) OutputLatency() int { return s.blockLength - s.blockLength/2 }

// TransposeFactor returns the frequency multiplier.
func (s *Stretch) TransposeFactor() float64 { return s.transpose }

// TonalityLimit returns the configured tonality limit.
func (s *Stretch) TonalityLimit() TonalityLimit { return s.tonalityLimit }

// FormantFactor returns the formant multiplier.
func (s *Stretch) FormantFactor() float64 { return s.formant }

// CompensatePitch reports whether the formant shift ignores transposition.
func (s *Stretch) CompensatePitch() bool { return s.compensate }

// FormantBase returns the configured formant base.
func (s *Stretch) FormantBase() FormantBase { return s.formantBase }

// SetTransposeFactor sets the frequency multiplier and tonality limit. They
// take effect from the next analysis step.
func (s *Stretch) SetTransposeFactor(multiplier float64, limit TonalityLimit) error {
	if !core.IsFinitePositive(multiplier) {
		return fmt.Errorf("%w: transpose must be positive and finite: %f", ErrInvalidFactor, multiplier)
	}

	if err := limit.validate(); err != nil {
		return err
	}

	s.transpose = multiplier
	s.tonalityLimit = limit

	return nil
}

// SetTransposeSemitones sets the frequency multiplier in semitones.
func (s *Stretch) SetTransposeSemitones(semitones float64, limit TonalityLimit) error {
	if !core.IsFinite(semitones) {
		return fmt.Errorf("%w: transpose semitones must be finite: %f", ErrInvalidFactor, semitones)
	}

	return s.SetTransposeFactor(core.SemitonesToRatio(semitones), limit)
}

// SetFormantFactor sets the spectral envelope multiplier. With compensate the
// envelope is scaled by multiplier alone, so transposition leaves formants in
// place; without it, formants move with the transposition and multiplier
// applies on top.
func (s *Stretch) SetFormantFactor(multiplier float64, compensate bool) error {
	if !core.IsFinitePositive(multiplier) {
		return fmt.Errorf("%w: formant must be positive and finite: %f", ErrInvalidFactor, multiplier)
	}

	s.formant = multiplier
	s.compensate = compensate

	return nil
}

// SetFormantSemitones sets the spectral envelope multiplier in semitones.
func (s *Stretch) SetFormantSemitones(semitones float64, compensate bool) error {
	if !core.IsFinite(semitones) {
		return fmt.Errorf("%w: formant semitones must be finite: %f", ErrInvalidFactor, semitones)
	}

	return s.SetFormantFactor(core.SemitonesToRatio(semitones), compensate)
}

// SetFormantBase sets the fundamental used to smooth the spectral envelope.
func (s *Stretch) SetFormantBase(base FormantBase) error {
	if err := base.validate(); err != nil {
		return err
	}

	s.formantBase = base

	return nil
}

// Reset clears all stream state. Parameters are kept.
func (s *Stretch) Reset() {
	s.history.Reset()
	s.ola.Reset()

	s.outPos = 0
	s.untilStep = 0
	s.prevEnd = 0
	s.havePrev = false

	core.Zero(s.prevPhase)
	core.Zero(s.outPhase)
}

// binHz returns the width of one bin in Hz.
func (s *Stretch) binHz() float64 {
	return s.sampleRate / float64(s.transform.FFTSize())
}
