// Package signal provides the streaming sound sources of the synth graph:
// naive periodic oscillators and seeded coloured noise.
package signal
