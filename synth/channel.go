package synth

import (
	"fmt"

	"github.com/cwbudde/algo-websynth/dsp/core"
	"github.com/cwbudde/algo-websynth/dsp/signal"
)

type channelConfig struct {
	unit   DetuneUnit
	color  signal.NoiseColor
	seed   int64
	gain   float64
	voices int
	spread float64
	cutoff float64
	q      float64
}

// Channel is one voice channel: a unison bank (or a noise source) feeding a
// filter and a gain stage. Its setters are total; out-of-range input is
// clamped.
type Channel struct {
	kind  Waveform
	bank  *UnisonBank
	noise *signal.Noise

	filter *channelFilter

	gain    float64
	gainNow float64
}

func newChannel(kind Waveform, sampleRate float64, cfg channelConfig) (*Channel, error) {
	if kind < Sine || kind > Noise {
		return nil, fmt.Errorf("channel: %w: %d", ErrInvalidWaveform, int(kind))
	}
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("channel: %w: %v", ErrInvalidSampleRate, sampleRate)
	}

	ch := &Channel{
		kind:   kind,
		filter: newChannelFilter(sampleRate, cfg.cutoff, cfg.q),
	}
	if kind == Noise {
		ch.noise = signal.NewNoise(cfg.color, cfg.seed)
	} else {
		bank, err := NewUnisonBank(kind, sampleRate,
			WithBankDetuneUnit(cfg.unit),
			WithBankVoices(cfg.voices, cfg.spread))
		if err != nil {
			return nil, err
		}
		ch.bank = bank
	}
	ch.SetGain(cfg.gain)
	ch.gainNow = ch.gain
	return ch, nil
}

// SetGain sets the channel level in [0, 1]. The change is ramped over the
// next rendered block.
func (c *Channel) SetGain(level float64) {
	c.gain = core.Clamp(level, 0, 1)
}

// SetFilter sets cutoff (Hz) and resonance (Q).
func (c *Channel) SetFilter(cutoff, resonance float64) {
	c.filter.set(cutoff, resonance)
}

// FilterResponse returns the filter magnitude in dB at each frequency.
func (c *Channel) FilterResponse(freqs []float64) []float64 {
	db := make([]float64, len(freqs))
	c.filter.response(db, freqs)
	return db
}

// SetFilterType selects the filter response. Unknown types are ignored.
func (c *Channel) SetFilterType(t FilterType) {
	c.filter.setType(t)
}

// SetRolloff selects the filter slope. Unknown slopes are ignored.
func (c *Channel) SetRolloff(r Rolloff) {
	c.filter.setRolloff(r)
}

// SetVoiceCount changes the unison size. No-op on the noise channel.
func (c *Channel) SetVoiceCount(n int) {
	if c.bank == nil {
		return
	}
	c.bank.Configure(n, c.bank.Spread())
}

// SetSpread changes the unison detune spread. No-op on the noise channel.
func (c *Channel) SetSpread(s float64) {
	if c.bank == nil {
		return
	}
	c.bank.Configure(c.bank.VoiceCount(), s)
}

// SetFrequency retunes the bank. No-op on the noise channel.
func (c *Channel) SetFrequency(hz float64) {
	if c.bank == nil {
		return
	}
	c.bank.SetFrequency(hz)
}

// Kind returns the channel source waveform.
func (c *Channel) Kind() Waveform { return c.kind }

// Gain returns the target gain in [0, 1].
func (c *Channel) Gain() float64 { return c.gain }

// Bank returns the unison bank, or nil for the noise channel.
func (c *Channel) Bank() *UnisonBank { return c.bank }

// Process overwrites dst with one block of channel output.
func (c *Channel) Process(dst []float64) {
	clear(dst)
	if c.bank != nil {
		c.bank.Process(dst)
	} else {
		c.noise.Add(dst, 1)
	}
	c.filter.process(dst)
	rampScale(dst, c.gainNow, c.gain)
	c.gainNow = c.gain
}
