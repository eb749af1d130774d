package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSine(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1.0, 48)
	if len(s) != 48 {
		t.Fatalf("len = %d, want 48", len(s))
	}
	if math.Abs(s[0]) > 1e-15 {
		t.Fatalf("s[0] = %v, want 0", s[0])
	}
	RequireBounded(t, s, -1, 1)
}

func TestDC(t *testing.T) {
	d := DC(0.5, 4)
	for i, v := range d {
		if v != 0.5 {
			t.Fatalf("DC[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestRMS(t *testing.T) {
	RequireNearlyEqual(t, RMS(DC(-0.5, 10)), 0.5, 1e-12)
	RequireNearlyEqual(t, RMS(DeterministicSine(100, 48000, 1, 48000)), 1/math.Sqrt2, 1e-6)
	if RMS(nil) != 0 {
		t.Fatal("RMS(nil) should be 0")
	}
}

func TestEstimateFrequency(t *testing.T) {
	for _, f := range []float64{55, 130.8127826502993, 440, 1234.5} {
		got := EstimateFrequency(DeterministicSine(f, 48000, 1, 48000), 48000)
		RequireNearlyEqual(t, got, f, f*1e-4)
	}
	if EstimateFrequency(DC(1, 100), 48000) != 0 {
		t.Fatal("DC should have no crossings")
	}
}
