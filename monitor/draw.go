package monitor

import (
	"image/color"
	"math"
)

// VFill is the fraction of the canvas height used by the waveform.
const VFill = 0.9

// Gradient colors spectrum bars from quiet (index 0) to loud (index 11).
var Gradient = [12]color.RGBA{
	{0x33, 0xff, 0x99, 0xff},
	{0x4c, 0xf2, 0x8a, 0xff},
	{0x66, 0xe5, 0x7a, 0xff},
	{0x80, 0xd9, 0x6b, 0xff},
	{0x99, 0xcc, 0x5c, 0xff},
	{0xb2, 0xbf, 0x4d, 0xff},
	{0xcc, 0xb2, 0x3d, 0xff},
	{0xd9, 0x99, 0x33, 0xff},
	{0xe5, 0x80, 0x2e, 0xff},
	{0xf2, 0x66, 0x29, 0xff},
	{0xf2, 0x4c, 0x26, 0xff},
	{0xff, 0x33, 0x22, 0xff},
}

// Point is a canvas coordinate.
type Point struct {
	X, Y float64
}

// Bar is one spectrum bar. Y is the top edge.
type Bar struct {
	X, Y, Width, Height float64
	Color               color.RGBA
}

// WaveformY maps a sample in [-1, 1] to a canvas y coordinate:
// 1 maps to height*VFill and -1 maps to 0.
func WaveformY(v, height float64) float64 {
	return height * VFill * (v + 1) / 2
}

// WaveformPoints returns the polyline of a waveform snapshot.
func WaveformPoints(s Snapshot, width, height float64) []Point {
	n := len(s.Values)
	pts := make([]Point, n)
	for i, v := range s.Values {
		pts[i] = Point{X: width * float64(i) / float64(n), Y: WaveformY(v, height)}
	}
	return pts
}

// Weight maps a dB value to [0, 1]: 0 at floorDB and below, 1 at 0 dB and
// above.
func Weight(valueDB, floorDB float64) float64 {
	if floorDB >= 0 {
		return 0
	}
	w := (floorDB - valueDB) / floorDB
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return math.Min(w, 1)
}

// GradientIndex returns the Gradient entry for a dB value.
func GradientIndex(valueDB, floorDB float64) int {
	idx := int(math.Floor(Weight(valueDB, floorDB) * float64(len(Gradient))))
	return min(idx, len(Gradient)-1)
}

// SpectrumBars lays out one bar per bin. Bar height grows with level:
// a bin at 0 dB fills the canvas, a bin at floorDB has zero height.
func SpectrumBars(s Snapshot, width, height, floorDB float64) []Bar {
	n := len(s.Values)
	bw := width / float64(n)
	bars := make([]Bar, n)
	for i, v := range s.Values {
		h := height * Weight(v, floorDB)
		bars[i] = Bar{
			X:      bw * float64(i),
			Y:      height - h,
			Width:  bw,
			Height: h,
			Color:  Gradient[GradientIndex(v, floorDB)],
		}
	}
	return bars
}
