package signal

import (
	"fmt"
	"math"
)

// Shape is the waveform of a periodic oscillator.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeSawtooth
	ShapeSquare
	ShapeTriangle
)

// String returns the lowercase name of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeSine:
		return "sine"
	case ShapeSawtooth:
		return "sawtooth"
	case ShapeSquare:
		return "square"
	case ShapeTriangle:
		return "triangle"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	return s >= ShapeSine && s <= ShapeTriangle
}

// Oscillator is a phase accumulator producing one Shape. Phase is kept
// normalized to [0, 1) so retuning never causes a discontinuity.
type Oscillator struct {
	shape      Shape
	sampleRate float64
	phase      float64
	step       float64
}

// NewOscillator returns an oscillator starting at the given normalized phase.
func NewOscillator(shape Shape, sampleRate, phase float64) *Oscillator {
	o := &Oscillator{shape: shape, sampleRate: sampleRate}
	o.SetPhase(phase)
	return o
}

// SetFrequency changes the oscillator frequency without touching its phase.
func (o *Oscillator) SetFrequency(hz float64) {
	if o.sampleRate <= 0 || math.IsNaN(hz) {
		o.step = 0
		return
	}
	o.step = hz / o.sampleRate
}

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 {
	return o.step * o.sampleRate
}

// Phase returns the normalized phase in [0, 1).
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// SetPhase sets the normalized phase, wrapping into [0, 1).
func (o *Oscillator) SetPhase(p float64) {
	p -= math.Floor(p)
	if math.IsNaN(p) {
		p = 0
	}
	o.phase = p
}

// Next returns the current sample and advances the phase.
func (o *Oscillator) Next() float64 {
	y := ShapeAt(o.shape, o.phase)
	o.phase += o.step
	if o.phase >= 1 || o.phase < 0 {
		o.phase -= math.Floor(o.phase)
	}
	return y
}

// Add accumulates gain * oscillator output into dst.
func (o *Oscillator) Add(dst []float64, gain float64) {
	for i := range dst {
		dst[i] += gain * o.Next()
	}
}

// ShapeAt evaluates a shape at normalized phase p in [0, 1). Every shape
// starts at zero (or its rising edge) so all banks begin phase-aligned.
func ShapeAt(s Shape, p float64) float64 {
	switch s {
	case ShapeSawtooth:
		if p < 0.5 {
			return 2 * p
		}
		return 2*p - 2
	case ShapeSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case ShapeTriangle:
		switch {
		case p < 0.25:
			return 4 * p
		case p < 0.75:
			return 2 - 4*p
		default:
			return 4*p - 4
		}
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
