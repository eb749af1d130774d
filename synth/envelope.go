package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-websynth/dsp/core"
)

// maxStageSeconds caps every envelope time.
const maxStageSeconds = 60.0

// Stage is the envelope state.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ADSR holds envelope times in seconds and the sustain level in [0, 1].
type ADSR struct {
	Attack  float64 `json:"attack"`
	Decay   float64 `json:"decay"`
	Sustain float64 `json:"sustain"`
	Release float64 `json:"release"`
}

func (p ADSR) clamped() ADSR {
	return ADSR{
		Attack:  core.Clamp(p.Attack, 0, maxStageSeconds),
		Decay:   core.Clamp(p.Decay, 0, maxStageSeconds),
		Sustain: core.Clamp(p.Sustain, 0, 1),
		Release: core.Clamp(p.Release, 0, maxStageSeconds),
	}
}

// Envelope is a linear ADSR envelope shared by all channels.
//
// A new attack ramps from the current level, so retriggering during a
// release does not click. Parameter changes apply from the next trigger.
type Envelope struct {
	sampleRate float64
	pending    ADSR
	active     ADSR

	stage     Stage
	level     float64
	target    float64
	step      float64
	remaining int
}

// NewEnvelope returns an idle envelope with zero times and full sustain.
func NewEnvelope(sampleRate float64) *Envelope {
	return &Envelope{
		sampleRate: sampleRate,
		pending:    ADSR{Sustain: 1},
		active:     ADSR{Sustain: 1},
	}
}

// SetADSR stores new parameters, clamped to their valid ranges.
func (e *Envelope) SetADSR(attack, decay, sustain, release float64) {
	e.pending = ADSR{Attack: attack, Decay: decay, Sustain: sustain, Release: release}.clamped()
}

// ADSR returns the parameters used by the next trigger.
func (e *Envelope) ADSR() ADSR {
	return e.pending
}

// TriggerAttack starts the attack stage from the current level.
func (e *Envelope) TriggerAttack() {
	e.active = e.pending
	e.stage = StageAttack
	if !e.ramp(1, e.active.Attack) {
		e.enterDecay()
	}
}

// TriggerRelease starts the release stage. It is a no-op while idle.
func (e *Envelope) TriggerRelease() {
	if e.stage == StageIdle {
		return
	}
	e.active.Release = e.pending.Release
	e.stage = StageRelease
	if !e.ramp(0, e.active.Release) {
		e.stage = StageIdle
	}
}

func (e *Envelope) enterDecay() {
	e.stage = StageDecay
	if !e.ramp(e.active.Sustain, e.active.Decay) {
		e.stage = StageSustain
	}
}

// ramp sets up a linear segment to target lasting the given time. It
// returns false, with the level already at target, when the segment is
// shorter than one sample.
func (e *Envelope) ramp(target, seconds float64) bool {
	n := int(math.Round(seconds * e.sampleRate))
	if n < 1 || e.level == target {
		e.level = target
		e.remaining = 0
		return false
	}
	e.target = target
	e.remaining = n
	e.step = (target - e.level) / float64(n)
	return true
}

// Reset returns the envelope to idle at zero level.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.step = 0
	e.remaining = 0
}

// Stage returns the current envelope stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Level returns the most recent envelope output.
func (e *Envelope) Level() float64 { return e.level }

// Next advances the envelope by one sample and returns the new level.
func (e *Envelope) Next() float64 {
	switch e.stage {
	case StageAttack, StageDecay, StageRelease:
		e.level += e.step
		e.remaining--
		if e.remaining > 0 {
			break
		}
		e.level = e.target
		switch e.stage {
		case StageAttack:
			e.enterDecay()
		case StageDecay:
			e.stage = StageSustain
		default:
			e.stage = StageIdle
		}
	case StageSustain:
		e.level = e.active.Sustain
	default:
		e.level = 0
	}
	return e.level
}

// Process multiplies buf by the envelope, sample by sample.
func (e *Envelope) Process(buf []float64) {
	if e.stage == StageIdle {
		clear(buf)
		return
	}
	for i := range buf {
		buf[i] *= e.Next()
	}
}
