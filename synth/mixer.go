package synth

import (
	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/algo-websynth/dsp/core"
)

// DefaultMasterVolume is the master level of a new controller.
const DefaultMasterVolume = 0.5

// TapPoint selects where the monitor tap observes the signal.
type TapPoint int

const (
	// TapPostEnvelope observes the master output.
	TapPostEnvelope TapPoint = iota
	// TapPreEnvelope observes the channel sum before the envelope.
	TapPreEnvelope
)

// Tap receives every rendered block. Write must not retain samples.
type Tap interface {
	Write(samples []float64)
}

// Mixer sums the channels, applies the shared envelope and the master
// volume, and feeds the tap.
type Mixer struct {
	channels []*Channel
	env      *Envelope

	master    float64
	masterNow float64

	tap      Tap
	tapPoint TapPoint

	scratch []float64
}

func newMixer(channels []*Channel, env *Envelope) *Mixer {
	return &Mixer{
		channels:  channels,
		env:       env,
		master:    DefaultMasterVolume,
		masterNow: DefaultMasterVolume,
	}
}

// SetMasterVolume sets the output level in [0, 1].
func (m *Mixer) SetMasterVolume(v float64) {
	m.master = core.Clamp(v, 0, 1)
}

// MasterVolume returns the output level in [0, 1].
func (m *Mixer) MasterVolume() float64 { return m.master }

// SetTap installs t at point p. A nil tap disables monitoring.
func (m *Mixer) SetTap(t Tap, p TapPoint) {
	m.tap = t
	m.tapPoint = p
}

// Process overwrites dst with one block of master output.
func (m *Mixer) Process(dst []float64) {
	clear(dst)
	m.scratch = core.EnsureLen(m.scratch, len(dst))
	for _, ch := range m.channels {
		ch.Process(m.scratch)
		vecmath.AddBlockInPlace(dst, m.scratch)
	}

	if m.tap != nil && m.tapPoint == TapPreEnvelope {
		m.tap.Write(dst)
	}

	m.env.Process(dst)
	rampScale(dst, m.masterNow, m.master)
	m.masterNow = m.master

	if m.tap != nil && m.tapPoint == TapPostEnvelope {
		m.tap.Write(dst)
	}
}

// rampScale multiplies dst by a gain moving linearly from `from` to `to`
// across the block.
func rampScale(dst []float64, from, to float64) {
	if len(dst) == 0 {
		return
	}
	if from == to {
		vecmath.ScaleBlockInPlace(dst, to)
		return
	}
	step := (to - from) / float64(len(dst))
	g := from
	for i := range dst {
		g += step
		dst[i] *= g
	}
}
