package synth

import (
	"fmt"

	"github.com/cwbudde/algo-websynth/dsp/core"
	"github.com/cwbudde/algo-websynth/dsp/signal"
)

type config struct {
	proc      core.ProcessorConfig
	preset    Preset
	waveforms [NumVoicedChannels]Waveform
	unit      DetuneUnit
	tap       Tap
	tapPoint  TapPoint
	color     signal.NoiseColor
	seed      int64
	err       error
}

func defaultConfig() config {
	cfg := config{
		proc:   core.DefaultProcessorConfig(),
		preset: DefaultPreset(),
		seed:   1,
	}
	copy(cfg.waveforms[:], Waveforms[:NumVoicedChannels])
	return cfg
}

// Option configures a Controller.
type Option func(*config)

// WithSampleRate sets the render sample rate. Non-positive rates make
// NewController fail with ErrInvalidSampleRate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *config) {
		cfg.proc.SampleRate = sampleRate
	}
}

// WithBlockSize sets the render quantum. Non-positive sizes are ignored.
func WithBlockSize(n int) Option {
	return func(cfg *config) {
		core.WithBlockSize(n)(&cfg.proc)
	}
}

// WithPreset sets the initial parameters.
func WithPreset(p Preset) Option {
	return func(cfg *config) {
		cfg.preset = p
	}
}

// WithPresetName selects a built-in preset as initial parameters.
func WithPresetName(name string) Option {
	return func(cfg *config) {
		p, err := LookupPreset(name)
		if err != nil {
			cfg.err = err
			return
		}
		cfg.preset = p
	}
}

// WithWaveforms assigns the sources of the four voiced channels. Every
// entry must be periodic.
func WithWaveforms(ws ...Waveform) Option {
	return func(cfg *config) {
		if len(ws) != NumVoicedChannels {
			cfg.err = fmt.Errorf("%w: %d voiced waveforms, want %d", ErrInvalidWaveform, len(ws), NumVoicedChannels)
			return
		}
		copy(cfg.waveforms[:], ws)
	}
}

// WithDetuneUnit selects cents or Hz for the unison spread.
func WithDetuneUnit(unit DetuneUnit) Option {
	return func(cfg *config) {
		cfg.unit = unit
	}
}

// WithTap installs a monitor tap at the given point.
func WithTap(t Tap, p TapPoint) Option {
	return func(cfg *config) {
		cfg.tap = t
		cfg.tapPoint = p
	}
}

// WithNoiseColor selects the color of the noise channel.
func WithNoiseColor(c signal.NoiseColor) Option {
	return func(cfg *config) {
		cfg.color = c
	}
}

// WithSeed seeds the noise channel.
func WithSeed(seed int64) Option {
	return func(cfg *config) {
		cfg.seed = seed
	}
}
