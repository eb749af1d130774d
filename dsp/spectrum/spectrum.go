package spectrum

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-websynth/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// MagnitudeInto writes |X[k]| for the first len(dst) bins of in.
// Scratch buffers are pooled, so steady-state calls do not allocate.
func MagnitudeInto(dst []float64, in []complex128) error {
	if len(in) < len(dst) {
		return fmt.Errorf("spectrum has %d bins, need %d", len(in), len(dst))
	}
	if len(dst) == 0 {
		return nil
	}

	re, im, buf := getScratch(len(dst))
	defer putScratch(buf)

	for i := range dst {
		re[i] = real(in[i])
		im[i] = imag(in[i])
	}

	vecmath.Magnitude(dst, re, im)
	return nil
}

// ToDecibels converts linear magnitudes in place to 20*log10(mag/norm),
// flooring every value at floorDB. norm <= 0 is treated as 1.
func ToDecibels(mags []float64, norm, floorDB float64) {
	if norm <= 0 {
		norm = 1
	}
	for i, m := range mags {
		db := core.LinearToDB(m / norm)
		if db < floorDB || math.IsNaN(db) {
			db = floorDB
		}
		mags[i] = db
	}
}

// Smooth blends next into prev with the given time constant in [0, 1):
// prev = tc*prev + (1-tc)*next. A time constant of 0 copies next.
func Smooth(prev, next []float64, tc float64) {
	tc = math.Max(0, math.Min(tc, 0.99))
	n := min(len(prev), len(next))
	for i := range n {
		prev[i] = tc*prev[i] + (1-tc)*next[i]
	}
}
