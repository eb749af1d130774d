package design

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-websynth/dsp/filter/biquad"
)

const sr = 48000.0

func TestLowpass_Response(t *testing.T) {
	c := Lowpass(1000, 0, sr)

	if db := c.MagnitudeDB(10, sr); math.Abs(db) > 0.01 {
		t.Errorf("DC gain = %v dB, want ~0", db)
	}
	// A Butterworth section is 3 dB down at the cutoff.
	if db := c.MagnitudeDB(1000, sr); math.Abs(db+3.0103) > 0.01 {
		t.Errorf("cutoff gain = %v dB, want -3.01", db)
	}
	if db := c.MagnitudeDB(10000, sr); db > -35 {
		t.Errorf("stopband gain = %v dB, want < -35", db)
	}
}

func TestHighpass_Response(t *testing.T) {
	c := Highpass(1000, defaultQ, sr)
	if db := c.MagnitudeDB(20000, sr); math.Abs(db) > 0.1 {
		t.Errorf("HF gain = %v dB, want ~0", db)
	}
	if db := c.MagnitudeDB(50, sr); db > -40 {
		t.Errorf("LF gain = %v dB, want < -40", db)
	}
}

func TestBandpass_PeakAtCenter(t *testing.T) {
	c := Bandpass(2000, 4, sr)
	if db := c.MagnitudeDB(2000, sr); math.Abs(db) > 0.01 {
		t.Errorf("center gain = %v dB, want 0", db)
	}
	if db := c.MagnitudeDB(200, sr); db > -15 {
		t.Errorf("off-center gain = %v dB, want < -15", db)
	}
}

func TestNotch_RejectsCenter(t *testing.T) {
	c := Notch(1000, 2, sr)
	if db := c.MagnitudeDB(1000, sr); db > -60 {
		t.Errorf("center gain = %v dB, want < -60", db)
	}
}

func TestResonanceRaisesCutoffPeak(t *testing.T) {
	flat := Lowpass(1000, 0, sr)
	res := Lowpass(1000, 8, sr)
	if res.MagnitudeDB(1000, sr) <= flat.MagnitudeDB(1000, sr)+10 {
		t.Fatalf("Q=8 should boost the cutoff region well above the flat response")
	}
}

func TestInvalidFrequencyIsPassthrough(t *testing.T) {
	for _, f := range []float64{0, -10, sr / 2, math.NaN()} {
		if c := Lowpass(f, 1, sr); c != biquad.Passthrough() {
			t.Errorf("Lowpass(%v) = %+v, want passthrough", f, c)
		}
	}
	if c := Lowpass(1000, 1, 0); c != biquad.Passthrough() {
		t.Errorf("zero sample rate = %+v, want passthrough", c)
	}
}

func TestCascade(t *testing.T) {
	c := Lowpass(500, 0, sr)
	got := Cascade(c, 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i := range got {
		if got[i] != c {
			t.Fatalf("section %d differs", i)
		}
	}
	if len(Cascade(c, 0)) != 1 {
		t.Fatal("Cascade(c, 0) should yield one section")
	}
}
