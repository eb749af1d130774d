// Package audio plays a Renderer on the host sound device.
//
// The backend is chosen at build time: oto by default, PortAudio with
// -tags portaudio, and a silent real-time clock with -tags headless.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
)

// DefaultBufferFrames is the device buffer length in frames.
const DefaultBufferFrames = 512

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("audio: output closed")

// Renderer produces mono PCM in [-1, 1]. synth.Controller implements it.
type Renderer interface {
	Render(dst []float32)
}

// Config selects the device format.
type Config struct {
	SampleRate   int
	BufferFrames int
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 48000
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = DefaultBufferFrames
	}
	return c
}

// Output is an open audio device pulling from a Renderer.
type Output interface {
	// Start begins playback. Starting a playing output does nothing.
	Start() error
	// Close stops playback and releases the device.
	Close() error
	// Backend names the implementation, e.g. "oto".
	Backend() string
}

// Open opens the build's default backend for r.
func Open(r Renderer, cfg Config) (Output, error) {
	return openBackend(r, cfg.withDefaults())
}

// pullReader adapts a Renderer to io.Reader in float32 little-endian.
type pullReader struct {
	r   Renderer
	buf []float32
}

func (p *pullReader) Read(b []byte) (int, error) {
	n := len(b) / 4
	if n == 0 {
		return 0, nil
	}
	if cap(p.buf) < n {
		p.buf = make([]float32, n)
	}
	samples := p.buf[:n]
	p.r.Render(samples)
	return encodeFloat32LE(b, samples), nil
}

// encodeFloat32LE writes src into dst and returns the number of bytes
// written.
func encodeFloat32LE(dst []byte, src []float32) int {
	n := min(len(dst)/4, len(src))
	for i := range n {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(src[i]))
	}
	return 4 * n
}
