package synth

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-websynth/dsp/signal"
)

// Waveform is the sound source of a channel.
type Waveform int

const (
	Sine Waveform = iota
	Sawtooth
	Square
	Triangle
	Noise
)

// Waveforms lists the channel sources in channel order.
var Waveforms = [NumChannels]Waveform{Sine, Sawtooth, Square, Triangle, Noise}

// ParseWaveform maps a waveform name to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine":
		return Sine, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "square":
		return Square, nil
	case "triangle":
		return Triangle, nil
	case "noise":
		return Noise, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidWaveform, name)
	}
}

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("waveform(%d)", int(w))
	}
}

// Periodic reports whether w can drive a unison bank.
func (w Waveform) Periodic() bool {
	_, ok := w.shape()
	return ok
}

func (w Waveform) shape() (signal.Shape, bool) {
	switch w {
	case Sine:
		return signal.ShapeSine, true
	case Sawtooth:
		return signal.ShapeSawtooth, true
	case Square:
		return signal.ShapeSquare, true
	case Triangle:
		return signal.ShapeTriangle, true
	default:
		return 0, false
	}
}
