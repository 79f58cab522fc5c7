package main

import (
	"fmt"

	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-stretch/internal/config"
)

// newEngine builds an engine from the preset, window, pitch and formant
// settings of cfg.
func newEngine(cfg config.Config) (*stretch.Stretch, error) {
	wt, err := window.ParseType(cfg.Engine.Window)
	if err != nil {
		return nil, err
	}

	ctor := stretch.NewPresetDefault
	if cfg.Engine.Preset == config.PresetCheaper {
		ctor = stretch.NewPresetCheaper
	}

	s, err := ctor(cfg.Audio.Channels, float64(cfg.Audio.SampleRate), stretch.WithWindow(wt))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	limit := stretch.NoTonalityLimit
	if cfg.Engine.TonalityLimit > 0 {
		limit = stretch.TonalityLimitHz(cfg.Engine.TonalityLimit)
	}

	if err := s.SetTransposeSemitones(cfg.Engine.Semitones, limit); err != nil {
		return nil, err
	}

	if err := s.SetFormantSemitones(cfg.Engine.FormantSemitones, cfg.Engine.FormantCompensate); err != nil {
		return nil, err
	}

	base := stretch.AutoFormantBase
	if cfg.Engine.FormantBase > 0 {
		base = stretch.FormantBaseHz(cfg.Engine.FormantBase)
	}

	if err := s.SetFormantBase(base); err != nil {
		return nil, err
	}

	return s, nil
}
