// Package config loads the stretch command configuration from defaults,
// an optional config file, STRETCH_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-stretch/dsp/core"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Preset names accepted by Engine.Preset.
const (
	PresetDefault = "default"
	PresetCheaper = "cheaper"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Audio     AudioConfig  `mapstructure:"audio"`
	Engine    EngineConfig `mapstructure:"engine"`
	LogLevel  string       `mapstructure:"log_level"`
	LogFormat string       `mapstructure:"log_format"`
}

// AudioConfig describes the raw PCM stream.
type AudioConfig struct {
	Channels   int `mapstructure:"channels"`
	SampleRate int `mapstructure:"sample_rate"`
	// Chunk is the number of output frames per Process call.
	Chunk int `mapstructure:"chunk"`
}

type EngineConfig struct {
	Preset    string  `mapstructure:"preset"`
	Window    string  `mapstructure:"window"`
	Rate      float64 `mapstructure:"rate"`
	Semitones float64 `mapstructure:"semitones"`
	// TonalityLimit in Hz; 0 disables the limit.
	TonalityLimit     float64 `mapstructure:"tonality_limit"`
	FormantSemitones  float64 `mapstructure:"formant_semitones"`
	FormantCompensate bool    `mapstructure:"formant_compensate"`
	// FormantBase in Hz; 0 selects automatic detection.
	FormantBase float64 `mapstructure:"formant_base"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps flag names to config keys.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"channels", "audio.channels"},
	{"sample-rate", "audio.sample_rate"},
	{"chunk", "audio.chunk"},
	{"preset", "engine.preset"},
	{"window", "engine.window"},
	{"rate", "engine.rate"},
	{"semitones", "engine.semitones"},
	{"tonality-limit", "engine.tonality_limit"},
	{"formant-semitones", "engine.formant_semitones"},
	{"formant-compensate", "engine.formant_compensate"},
	{"formant-base", "engine.formant_base"},
	{"log-level", "log_level"},
	{"log-format", "log_format"},
}

func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{
			Channels:   2,
			SampleRate: 48000,
			Chunk:      1024,
		},
		Engine: EngineConfig{
			Preset:            PresetDefault,
			Window:            window.TypeHann.String(),
			Rate:              1,
			Semitones:         0,
			TonalityLimit:     0,
			FormantSemitones:  0,
			FormantCompensate: false,
			FormantBase:       0,
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.Int("channels", defaults.Audio.Channels, "Interleaved channels in the raw stream")
	fs.Int("sample-rate", defaults.Audio.SampleRate, "Sample rate of the stream in Hz")
	fs.Int("chunk", defaults.Audio.Chunk, "Output frames per processing call")
	fs.String("preset", defaults.Engine.Preset, "Engine preset (default|cheaper)")
	fs.String("window", defaults.Engine.Window, "Analysis window (hann|blackman-harris|kaiser)")
	fs.Float64("rate", defaults.Engine.Rate, "Playback rate: input frames per output frame")
	fs.Float64("semitones", defaults.Engine.Semitones, "Pitch shift in semitones")
	fs.Float64("tonality-limit", defaults.Engine.TonalityLimit, "Frequency in Hz above which bins are not transposed (0 = none)")
	fs.Float64("formant-semitones", defaults.Engine.FormantSemitones, "Formant shift in semitones")
	fs.Bool("formant-compensate", defaults.Engine.FormantCompensate, "Keep formants in place when transposing")
	fs.Float64("formant-base", defaults.Engine.FormantBase, "Formant base frequency in Hz (0 = detect)")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("log-format", defaults.LogFormat, "Log format (json|text)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("STRETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("stretch")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// bindFlags binds every registered flag to its config key. Flags missing
// from fs are skipped.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}

		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", fk.flag, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("audio.channels", c.Audio.Channels)
	v.SetDefault("audio.sample_rate", c.Audio.SampleRate)
	v.SetDefault("audio.chunk", c.Audio.Chunk)
	v.SetDefault("engine.preset", c.Engine.Preset)
	v.SetDefault("engine.window", c.Engine.Window)
	v.SetDefault("engine.rate", c.Engine.Rate)
	v.SetDefault("engine.semitones", c.Engine.Semitones)
	v.SetDefault("engine.tonality_limit", c.Engine.TonalityLimit)
	v.SetDefault("engine.formant_semitones", c.Engine.FormantSemitones)
	v.SetDefault("engine.formant_compensate", c.Engine.FormantCompensate)
	v.SetDefault("engine.formant_base", c.Engine.FormantBase)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_format", c.LogFormat)
}

// Validate reports the first setting the stretch command cannot use.
func (c Config) Validate() error {
	switch {
	case c.Audio.Channels < 1:
		return fmt.Errorf("%w: channels %d", ErrInvalidConfig, c.Audio.Channels)
	case c.Audio.SampleRate < 1:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.Audio.SampleRate)
	case c.Audio.Chunk < 1:
		return fmt.Errorf("%w: chunk %d", ErrInvalidConfig, c.Audio.Chunk)
	case c.Engine.Preset != PresetDefault && c.Engine.Preset != PresetCheaper:
		return fmt.Errorf("%w: preset %q (want %s|%s)", ErrInvalidConfig, c.Engine.Preset, PresetDefault, PresetCheaper)
	case !core.IsFinitePositive(c.Engine.Rate):
		return fmt.Errorf("%w: rate %g", ErrInvalidConfig, c.Engine.Rate)
	case c.Engine.TonalityLimit < 0:
		return fmt.Errorf("%w: tonality limit %g", ErrInvalidConfig, c.Engine.TonalityLimit)
	case c.Engine.FormantBase < 0:
		return fmt.Errorf("%w: formant base %g", ErrInvalidConfig, c.Engine.FormantBase)
	case c.LogFormat != "json" && c.LogFormat != "text":
		return fmt.Errorf("%w: log format %q (want json|text)", ErrInvalidConfig, c.LogFormat)
	}

	if _, err := window.ParseType(c.Engine.Window); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
