package synth

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-websynth/dsp/core"
	"github.com/cwbudde/algo-websynth/dsp/filter/biquad"
	"github.com/cwbudde/algo-websynth/dsp/filter/design"
)

const (
	minCutoff    = 20.0
	maxCutoffFS  = 0.49
	maxResonance = 30.0
)

// FilterType is the response of a channel filter.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
	Notch
)

// ParseFilterType maps a filter name to a FilterType.
func ParseFilterType(name string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lowpass", "lp":
		return Lowpass, nil
	case "highpass", "hp":
		return Highpass, nil
	case "bandpass", "bp":
		return Bandpass, nil
	case "notch":
		return Notch, nil
	default:
		return 0, fmt.Errorf("unsupported filter type: %q", name)
	}
}

func (t FilterType) String() string {
	switch t {
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Notch:
		return "notch"
	default:
		return "lowpass"
	}
}

// Rolloff is the filter slope in dB per octave.
type Rolloff int

const (
	Rolloff12 Rolloff = -12
	Rolloff24 Rolloff = -24
	Rolloff48 Rolloff = -48
)

// sections returns the number of cascaded biquads realizing the slope.
// Unknown slopes fall back to a single section.
func (r Rolloff) sections() int {
	switch r {
	case Rolloff24:
		return 2
	case Rolloff48:
		return 4
	default:
		return 1
	}
}

func (r Rolloff) valid() bool {
	return r == Rolloff12 || r == Rolloff24 || r == Rolloff48
}

// channelFilter is the biquad cascade of one channel.
type channelFilter struct {
	sampleRate float64
	typ        FilterType
	rolloff    Rolloff
	cutoff     float64
	q          float64
	chain      *biquad.Chain
}

func newChannelFilter(sampleRate, cutoff, q float64) *channelFilter {
	f := &channelFilter{
		sampleRate: sampleRate,
		typ:        Lowpass,
		rolloff:    Rolloff12,
		chain:      biquad.NewChain(nil),
	}
	f.set(cutoff, q)
	return f
}

func (f *channelFilter) set(cutoff, q float64) {
	f.cutoff = core.Clamp(cutoff, minCutoff, maxCutoffFS*f.sampleRate)
	f.q = core.Clamp(q, 0, maxResonance)
	f.update()
}

func (f *channelFilter) setType(t FilterType) {
	if t < Lowpass || t > Notch || t == f.typ {
		return
	}
	f.typ = t
	f.update()
}

func (f *channelFilter) setRolloff(r Rolloff) {
	if !r.valid() || r == f.rolloff {
		return
	}
	f.rolloff = r
	f.update()
}

// update recomputes coefficients. The chain keeps its delay-line state
// while the section count is unchanged.
func (f *channelFilter) update() {
	var c biquad.Coefficients
	switch f.typ {
	case Highpass:
		c = design.Highpass(f.cutoff, f.q, f.sampleRate)
	case Bandpass:
		c = design.Bandpass(f.cutoff, f.q, f.sampleRate)
	case Notch:
		c = design.Notch(f.cutoff, f.q, f.sampleRate)
	default:
		c = design.Lowpass(f.cutoff, f.q, f.sampleRate)
	}
	f.chain.UpdateCoefficients(design.Cascade(c, f.rolloff.sections()))
}

// response writes the cascade magnitude in dB at each frequency of freqs.
func (f *channelFilter) response(dst, freqs []float64) {
	for i, hz := range freqs[:min(len(dst), len(freqs))] {
		dst[i] = f.chain.MagnitudeDB(hz, f.sampleRate)
	}
}

func (f *channelFilter) process(buf []float64) {
	f.chain.ProcessBlock(buf)
}
