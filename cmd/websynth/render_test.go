package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/algo-websynth/monitor"
	"github.com/cwbudde/algo-websynth/synth"
)

func gridLines(t *testing.T, out string, height int) []string {
	t.Helper()
	if !strings.HasPrefix(out, "\x1b[H") {
		t.Fatalf("output does not home the cursor: %q", out[:min(len(out), 8)])
	}
	lines := strings.Split(strings.TrimPrefix(out, "\x1b[H"), "\r\n")
	if len(lines) < height+1 {
		t.Fatalf("got %d lines, want at least %d", len(lines), height+1)
	}
	return lines
}

func TestRenderASCII_WaveformSilence(t *testing.T) {
	fr := monitor.Frame{Snapshot: monitor.Snapshot{Mode: monitor.ModeWaveform}}
	out := renderASCII(fr, 8, 5, -180, synth.State{Note: -1, Stage: "idle"})
	lines := gridLines(t, out, 5)

	// 0 sits at (5-1)*0.9/2 = 1.8 rows above the bottom.
	for row := range 5 {
		want := strings.Repeat(" ", 8)
		if row == 3 {
			want = strings.Repeat("*", 8)
		}
		if lines[row] != want {
			t.Errorf("row %d = %q, want %q", row, lines[row], want)
		}
	}
	if !strings.Contains(lines[5], "waveform") || !strings.Contains(lines[5], "stage idle") {
		t.Errorf("status line = %q", lines[5])
	}
}

func TestRenderASCII_WaveformClipsRows(t *testing.T) {
	var s monitor.Snapshot
	for i := range s.Values {
		s.Values[i] = 4
	}
	out := renderASCII(monitor.Frame{Snapshot: s}, 4, 3, -180, synth.State{Note: -1})
	lines := gridLines(t, out, 3)
	if lines[0] != "****" {
		t.Errorf("top row = %q, want clipped trace", lines[0])
	}
}

func TestRenderASCII_Spectrum(t *testing.T) {
	s := monitor.Snapshot{Mode: monitor.ModeSpectrum}
	half := len(s.Values) / 2
	for i := range s.Values {
		if i < half {
			s.Values[i] = 0
		} else {
			s.Values[i] = -180
		}
	}
	out := renderASCII(monitor.Frame{Snapshot: s}, 4, 4, -180,
		synth.State{Octave: 4, Note: 69, Frequency: 440, Stage: "sustain"})
	lines := gridLines(t, out, 4)

	for row := range 4 {
		if lines[row] != "@@  " {
			t.Errorf("row %d = %q, want %q", row, lines[row], "@@  ")
		}
	}
	if !strings.Contains(lines[4], "69 (440.00 Hz)") || !strings.Contains(lines[4], "spectrum") {
		t.Errorf("status line = %q", lines[4])
	}
}

type fixedState synth.State

func (f fixedState) State() synth.State { return synth.State(f) }

func TestScreenDraw(t *testing.T) {
	var buf bytes.Buffer
	scr := newScreen(&buf, 2, 1, -180, fixedState{Note: -1})
	if scr.width != 8 || scr.height != 3 {
		t.Fatalf("size = %dx%d, want minimum 8x3", scr.width, scr.height)
	}
	scr.Draw(monitor.Frame{})
	if strings.Count(buf.String(), "\r\n") != 4 {
		t.Errorf("frame = %q, want 3 grid rows and a status line", buf.String())
	}
	buf.Reset()
	scr.clear()
	if buf.String() != "\x1b[2J\x1b[H" {
		t.Errorf("clear wrote %q", buf.String())
	}
}

func TestControllerOptions(t *testing.T) {
	if _, err := controllerOptions(48000, "default", "cents", "pink"); err != nil {
		t.Fatalf("valid flags: %v", err)
	}
	if _, err := controllerOptions(48000, "default", "semitones", "white"); err == nil {
		t.Error("unknown detune unit accepted")
	}
	if _, err := controllerOptions(48000, "default", "hz", "purple"); err == nil {
		t.Error("unknown noise color accepted")
	}

	opts, err := controllerOptions(44100, "supersaw", "hz", "brown")
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := synth.NewController(opts...)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	st := ctrl.State()
	if st.SampleRate != 44100 || st.DetuneUnit != "hz" {
		t.Errorf("state = rate %v unit %q", st.SampleRate, st.DetuneUnit)
	}
}

func TestPrintKeymap(t *testing.T) {
	var buf bytes.Buffer
	printKeymap(&buf, 4)
	out := buf.String()
	for _, want := range []string{"KEY", "130.81", "black", "octave down", "octave up"} {
		if !strings.Contains(out, want) {
			t.Errorf("keymap missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 16 {
		t.Errorf("keymap has %d lines, want 16", got)
	}
}
