package core

import "math"

const (
	// ConcertA is the reference tuning of MIDI note 69 (A4) in Hz.
	ConcertA = 440.0
	// ConcertANote is the MIDI note number of A4.
	ConcertANote = 69
)

// MIDIToFrequency returns the equal-tempered frequency of a MIDI note.
func MIDIToFrequency(note int) float64 {
	return ConcertA * math.Pow(2, float64(note-ConcertANote)/12)
}

// CentsToRatio converts a pitch offset in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Pow(2, cents/1200)
}
