package synth

import "errors"

var (
	// ErrInvalidWaveform is returned for unknown waveform names or when a
	// unison bank is requested for noise.
	ErrInvalidWaveform = errors.New("synth: invalid waveform")
	// ErrInvalidSampleRate is returned for non-positive or non-finite rates.
	ErrInvalidSampleRate = errors.New("synth: invalid sample rate")
	// ErrInvalidPreset is returned for unknown preset names and presets
	// whose channel tables have the wrong shape.
	ErrInvalidPreset = errors.New("synth: invalid preset")
	// ErrUnknownChannel is returned when a channel index is out of range.
	ErrUnknownChannel = errors.New("synth: unknown channel")
	// ErrAlreadyStarted is returned by Start when key listeners are attached.
	ErrAlreadyStarted = errors.New("synth: already started")
)
