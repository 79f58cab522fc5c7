package stretch

import "github.com/cwbudde/algo-stretch/dsp/window"

const defaultSampleRate = 48000.0

// Option configures a Stretch at construction.
type Option func(*config)

type config struct {
	sampleRate float64
	window     window.Type
}

func defaultConfig() config {
	return config{
		sampleRate: defaultSampleRate,
		window:     window.TypeHann,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// WithSampleRate sets the sample rate in Hz used to interpret the tonality
// limit and formant base. Defaults to 48000.
func WithSampleRate(hz float64) Option {
	return func(c *config) {
		c.sampleRate = hz
	}
}

// WithWindow selects the analysis window. Defaults to window.TypeHann.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.window = t
	}
}
