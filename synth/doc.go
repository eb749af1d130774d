// Package synth implements a keyboard-driven subtractive synthesizer.
//
// Four voiced channels each run a unison bank of detuned oscillators
// through a biquad filter and a gain stage; a fifth channel carries noise.
// The channels are summed, shaped by one shared ADSR envelope and scaled by
// a master volume. A Controller owns the whole graph, accepts parameter and
// note events from any goroutine and renders mono PCM on demand.
package synth
