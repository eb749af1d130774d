package spectrum

import (
	"math"
	"testing"
)

func TestMagnitudeInto(t *testing.T) {
	in := []complex128{3 + 4i, -1, 2i, 5}
	dst := make([]float64, 3)
	if err := MagnitudeInto(dst, in); err != nil {
		t.Fatalf("MagnitudeInto: %v", err)
	}
	want := []float64{5, 1, 2}
	for i := range want {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
	if err := MagnitudeInto(make([]float64, 8), in); err == nil {
		t.Fatal("expected error when dst is longer than the spectrum")
	}
}

func TestToDecibels(t *testing.T) {
	mags := []float64{1, 0.1, 0, 1e-20}
	ToDecibels(mags, 1, -180)
	want := []float64{0, -20, -180, -180}
	for i := range want {
		if math.Abs(mags[i]-want[i]) > 1e-9 {
			t.Fatalf("mags[%d] = %v, want %v", i, mags[i], want[i])
		}
	}

	norm := []float64{0.5}
	ToDecibels(norm, 0.5, -100)
	if math.Abs(norm[0]) > 1e-12 {
		t.Fatalf("normalized = %v, want 0", norm[0])
	}
}

func TestSmooth(t *testing.T) {
	prev := []float64{0, -100}
	Smooth(prev, []float64{10, -50}, 0.8)
	if math.Abs(prev[0]-2) > 1e-12 || math.Abs(prev[1]+90) > 1e-12 {
		t.Fatalf("smoothed = %v, want [2 -90]", prev)
	}

	Smooth(prev, []float64{7, 7}, 0)
	if prev[0] != 7 || prev[1] != 7 {
		t.Fatalf("tc=0 should copy, got %v", prev)
	}
}
