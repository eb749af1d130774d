package signal

import (
	"fmt"
	"math/rand"
	"strings"
)

// NoiseColor selects the spectral tilt of a Noise source.
type NoiseColor int

const (
	NoiseWhite NoiseColor = iota
	NoisePink
	NoiseBrown
)

// ParseNoiseColor maps "white", "pink" or "brown" to a NoiseColor.
func ParseNoiseColor(name string) (NoiseColor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "white":
		return NoiseWhite, nil
	case "pink":
		return NoisePink, nil
	case "brown", "brownian", "red":
		return NoiseBrown, nil
	default:
		return 0, fmt.Errorf("unsupported noise color: %q", name)
	}
}

// String returns the lowercase name of the color.
func (c NoiseColor) String() string {
	switch c {
	case NoisePink:
		return "pink"
	case NoiseBrown:
		return "brown"
	default:
		return "white"
	}
}

// Noise is a deterministic, seeded noise source with output in [-1, 1].
type Noise struct {
	color NoiseColor
	rng   *rand.Rand

	// pink filter state (Paul Kellet's economy method)
	b0, b1, b2 float64
	// brown integrator state
	last float64
}

// NewNoise returns a noise source of the given color seeded with seed.
func NewNoise(color NoiseColor, seed int64) *Noise {
	return &Noise{
		color: color,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Color returns the noise color.
func (n *Noise) Color() NoiseColor {
	return n.color
}

// Next returns the next noise sample.
func (n *Noise) Next() float64 {
	white := n.rng.Float64()*2 - 1

	switch n.color {
	case NoisePink:
		n.b0 = 0.99765*n.b0 + white*0.0990460
		n.b1 = 0.96300*n.b1 + white*0.2965164
		n.b2 = 0.57000*n.b2 + white*1.0526913
		return clampUnit((n.b0 + n.b1 + n.b2 + white*0.1848) * 0.2)
	case NoiseBrown:
		n.last = (n.last + 0.02*white) / 1.02
		return clampUnit(n.last * 3.5)
	default:
		return white
	}
}

// Add accumulates gain * noise into dst.
func (n *Noise) Add(dst []float64, gain float64) {
	for i := range dst {
		dst[i] += gain * n.Next()
	}
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
