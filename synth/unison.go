package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-websynth/dsp/core"
	"github.com/cwbudde/algo-websynth/dsp/signal"
)

const (
	// MaxVoices is the largest unison size a bank accepts.
	MaxVoices = 16
	// MaxSpread is the largest detune spread, in cents or Hz.
	MaxSpread = 1200.0
)

// DetuneUnit selects how member offsets are applied to the base frequency.
type DetuneUnit int

const (
	// DetuneCents detunes multiplicatively: f = base * 2^(offset/1200).
	DetuneCents DetuneUnit = iota
	// DetuneHz detunes additively: f = base + offset.
	DetuneHz
)

func (u DetuneUnit) String() string {
	if u == DetuneHz {
		return "hz"
	}
	return "cents"
}

type bankConfig struct {
	unit   DetuneUnit
	voices int
	spread float64
}

// BankOption configures a UnisonBank at construction.
type BankOption func(*bankConfig)

// WithBankDetuneUnit selects the detune unit of the bank.
func WithBankDetuneUnit(unit DetuneUnit) BankOption {
	return func(cfg *bankConfig) {
		cfg.unit = unit
	}
}

// WithBankVoices sets the initial voice count and spread.
func WithBankVoices(voices int, spread float64) BankOption {
	return func(cfg *bankConfig) {
		cfg.voices = voices
		cfg.spread = spread
	}
}

type unisonMember struct {
	osc    *signal.Oscillator
	offset float64
}

// UnisonBank is a set of detuned oscillators of one waveform sounding a
// single pitch. A bank is not safe for concurrent use; the Controller
// serializes access to it.
type UnisonBank struct {
	waveform   Waveform
	shape      signal.Shape
	sampleRate float64
	unit       DetuneUnit

	voices int
	spread float64
	base   float64
	norm   float64

	members []unisonMember
}

// NewUnisonBank creates a bank for a periodic waveform. Noise and unknown
// waveforms are rejected with ErrInvalidWaveform.
func NewUnisonBank(w Waveform, sampleRate float64, opts ...BankOption) (*UnisonBank, error) {
	shape, ok := w.shape()
	if !ok {
		return nil, fmt.Errorf("unison bank for %s: %w", w, ErrInvalidWaveform)
	}
	if !validSampleRate(sampleRate) {
		return nil, fmt.Errorf("unison bank: %w: %v", ErrInvalidSampleRate, sampleRate)
	}

	cfg := bankConfig{voices: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	b := &UnisonBank{
		waveform:   w,
		shape:      shape,
		sampleRate: sampleRate,
		unit:       cfg.unit,
		base:       core.ConcertA,
	}
	b.rebuild(clampVoices(cfg.voices), clampSpread(cfg.spread))
	return b, nil
}

// Configure sets the voice count and spread. Out-of-range values are
// clamped. Calling it with the current values leaves the bank untouched.
func (b *UnisonBank) Configure(voiceCount int, spread float64) {
	voiceCount = clampVoices(voiceCount)
	spread = clampSpread(spread)
	if voiceCount == b.voices && spread == b.spread {
		return
	}
	b.rebuild(voiceCount, spread)
}

// rebuild prepares the complete member set before installing it, so a
// render never sees a partially built bank. Surviving members keep their
// phase; new ones are staggered evenly across the cycle.
func (b *UnisonBank) rebuild(voiceCount int, spread float64) {
	offsets := unisonOffsets(voiceCount, spread)
	members := make([]unisonMember, voiceCount)
	for i, off := range offsets {
		var osc *signal.Oscillator
		if i < len(b.members) {
			osc = signal.NewOscillator(b.shape, b.sampleRate, b.members[i].osc.Phase())
		} else {
			osc = signal.NewOscillator(b.shape, b.sampleRate, float64(i)/float64(voiceCount))
		}
		osc.SetFrequency(b.memberFrequency(off))
		members[i] = unisonMember{osc: osc, offset: off}
	}

	b.members = members
	b.voices = voiceCount
	b.spread = spread
	b.norm = 1 / math.Sqrt(float64(voiceCount))
}

// SetFrequency retunes every member around baseHz without rebuilding.
func (b *UnisonBank) SetFrequency(baseHz float64) {
	if math.IsNaN(baseHz) || baseHz < 0 {
		baseHz = 0
	}
	b.base = baseHz
	for _, m := range b.members {
		m.osc.SetFrequency(b.memberFrequency(m.offset))
	}
}

func (b *UnisonBank) memberFrequency(offset float64) float64 {
	if b.unit == DetuneHz {
		return math.Max(0, b.base+offset)
	}
	return b.base * core.CentsToRatio(offset)
}

// Process adds the bank output to dst. Members are summed and scaled by
// 1/sqrt(N) so changing the voice count keeps the loudness comparable.
func (b *UnisonBank) Process(dst []float64) {
	for _, m := range b.members {
		m.osc.Add(dst, b.norm)
	}
}

// Offsets returns the member detune offsets in member order.
func (b *UnisonBank) Offsets() []float64 {
	out := make([]float64, len(b.members))
	for i, m := range b.members {
		out[i] = m.offset
	}
	return out
}

// Frequencies returns the current member frequencies in Hz.
func (b *UnisonBank) Frequencies() []float64 {
	out := make([]float64, len(b.members))
	for i, m := range b.members {
		out[i] = m.osc.Frequency()
	}
	return out
}

func (b *UnisonBank) phases() []float64 {
	out := make([]float64, len(b.members))
	for i, m := range b.members {
		out[i] = m.osc.Phase()
	}
	return out
}

// VoiceCount returns the number of members.
func (b *UnisonBank) VoiceCount() int { return b.voices }

// Spread returns the outermost detune offset, in the bank's DetuneUnit.
func (b *UnisonBank) Spread() float64 { return b.spread }

// Waveform returns the waveform shared by all members.
func (b *UnisonBank) Waveform() Waveform { return b.waveform }

// DetuneUnit reports how offsets are applied to the base frequency.
func (b *UnisonBank) DetuneUnit() DetuneUnit { return b.unit }

// BaseFrequency returns the frequency set by SetFrequency.
func (b *UnisonBank) BaseFrequency() float64 { return b.base }

// unisonOffsets spaces n offsets evenly across [-spread, +spread]. The
// result is exactly antisymmetric and carries an exact zero in the middle
// for odd n.
func unisonOffsets(n int, spread float64) []float64 {
	out := make([]float64, n)
	if n == 1 {
		return out
	}
	den := float64(n - 1)
	for i := range out {
		out[i] = spread * float64(2*i-(n-1)) / den
	}
	return out
}

func clampVoices(n int) int {
	return core.ClampInt(n, 1, MaxVoices)
}

func clampSpread(s float64) float64 {
	return core.Clamp(s, 0, MaxSpread)
}

func validSampleRate(sr float64) bool {
	return sr > 0 && !math.IsInf(sr, 0) && !math.IsNaN(sr)
}
