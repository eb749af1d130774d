package synth

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-websynth/internal/testutil"
)

func newTestController(t *testing.T, opts ...Option) *Controller {
	t.Helper()

	c, err := NewController(opts...)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestNewController_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want error
	}{
		{"zero sample rate", []Option{WithSampleRate(0)}, ErrInvalidSampleRate},
		{"NaN sample rate", []Option{WithSampleRate(math.NaN())}, ErrInvalidSampleRate},
		{"unknown preset", []Option{WithPresetName("nope")}, ErrInvalidPreset},
		{"short preset", []Option{WithPreset(Preset{Gain: []float64{1}})}, ErrInvalidPreset},
		{"noise in voiced table", []Option{WithWaveforms(Sine, Noise, Square, Triangle)}, ErrInvalidWaveform},
		{"short waveform table", []Option{WithWaveforms(Sine)}, ErrInvalidWaveform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewController(tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestController_DefaultState(t *testing.T) {
	c := newTestController(t)
	s := c.State()

	if s.Octave != 4 || s.Note != -1 || s.Gate || s.Stage != "idle" {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if s.ADSR != (ADSR{Attack: 0.1, Decay: 0.2, Sustain: 1, Release: 0.8}) {
		t.Fatalf("ADSR = %+v", s.ADSR)
	}
	if len(s.Channels) != NumChannels {
		t.Fatalf("channels = %d", len(s.Channels))
	}
	wantGain := []float64{1, 1, 1, 1, 0}
	for i, ch := range s.Channels {
		if ch.Gain != wantGain[i] || ch.Cutoff != 1000 || ch.FilterType != "lowpass" {
			t.Errorf("channel %d: %+v", i, ch)
		}
		if i < NumVoicedChannels {
			if ch.Voices != 3 || ch.Spread != 40 {
				t.Errorf("channel %d: voices=%d spread=%v", i, ch.Voices, ch.Spread)
			}
			testutil.RequireSliceNearlyEqual(t, ch.Offsets, []float64{-40, 0, 40}, 0)
		}
	}
	if s.Channels[NoiseChannel].Waveform != "noise" {
		t.Fatalf("last channel = %q, want noise", s.Channels[NoiseChannel].Waveform)
	}
}

func TestController_NoteFrequencies(t *testing.T) {
	c := newTestController(t)

	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{48, 130.8127826502993},
	}
	for _, tt := range tests {
		c.NoteOn(tt.note)
		s := c.State()
		testutil.RequireNearlyEqual(t, s.Frequency, tt.want, 1e-9)
		for i := range NumVoicedChannels {
			testutil.RequireNearlyEqual(t, c.channels[i].bank.BaseFrequency(), tt.want, 1e-9)
		}
	}
}

func TestController_NoteOnClampsMIDI(t *testing.T) {
	c := newTestController(t)
	c.NoteOn(500)
	if c.State().Note != 127 {
		t.Fatalf("note = %d, want 127", c.State().Note)
	}
	c.NoteOn(-4)
	if c.State().Note != 0 {
		t.Fatalf("note = %d, want 0", c.State().Note)
	}
}

func TestController_TunesMutedChannels(t *testing.T) {
	c := newTestController(t)
	if err := c.SetGain(2, 0); err != nil {
		t.Fatal(err)
	}
	c.NoteOn(69)
	testutil.RequireNearlyEqual(t, c.channels[2].bank.BaseFrequency(), 440, 1e-9)
}

func TestController_SetOctaveBounds(t *testing.T) {
	c := newTestController(t)

	tests := []struct {
		in   int
		ok   bool
		want int
	}{
		{0, true, 0},
		{8, true, 8},
		{9, false, 8},
		{-1, false, 8},
		{5, true, 5},
	}
	for _, tt := range tests {
		if ok := c.SetOctave(tt.in); ok != tt.ok || c.Octave() != tt.want {
			t.Errorf("SetOctave(%d) = %v, octave %d; want %v, %d", tt.in, ok, c.Octave(), tt.ok, tt.want)
		}
	}
}

func TestController_OctaveKeysClamp(t *testing.T) {
	c := newTestController(t)
	c.SetOctave(0)
	c.KeyDown("z")
	if c.Octave() != 0 {
		t.Fatalf("octave = %d after z at 0", c.Octave())
	}
	c.SetOctave(8)
	c.KeyDown("X")
	if c.Octave() != 8 {
		t.Fatalf("octave = %d after x at 8", c.Octave())
	}
	c.KeyDown("z")
	if c.Octave() != 7 {
		t.Fatalf("octave = %d, want 7", c.Octave())
	}
}

func TestController_KeyboardEndToEnd(t *testing.T) {
	c := newTestController(t)
	var bus KeyBus
	if err := c.Start(&bus); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Stop()

	bus.Press("a")
	s := c.State()
	if s.Note != 48 || !s.Gate || s.Stage != "attack" {
		t.Fatalf("after key-down: note=%d gate=%v stage=%s", s.Note, s.Gate, s.Stage)
	}
	for i := range NumVoicedChannels {
		testutil.RequireNearlyEqual(t, s.Channels[i].Frequencies[1], 130.8127826502993, 1e-6)
	}

	// Attack is 0.1 s = 4800 samples and sustain is 1, so the envelope
	// sustains right after the attack unless the repeat restarted it.
	c.Render(make([]float32, 2400))
	bus.Press("a")
	c.Render(make([]float32, 2500))
	if s := c.State(); s.Stage != "sustain" {
		t.Fatalf("key repeat retriggered the attack: stage=%s", s.Stage)
	}

	// Release is 0.8 s = 38400 samples. Duplicate and stray key-ups must
	// not restart it, so the envelope is idle right after one release.
	bus.Release("a")
	if s := c.State(); s.Gate || s.Stage != "release" {
		t.Fatalf("after key-up: gate=%v stage=%s", s.Gate, s.Stage)
	}
	c.Render(make([]float32, 19200))
	bus.Release("a")
	bus.Release("q")
	c.NoteOff()
	c.Render(make([]float32, 19200+1))
	if s := c.State(); s.Stage != "idle" {
		t.Fatalf("release restarted: stage=%s level=%v", s.Stage, s.Level)
	}
}

func TestController_LastNotePriority(t *testing.T) {
	c := newTestController(t)

	c.KeyDown("a")
	c.KeyDown("S")
	if c.State().Note != 50 {
		t.Fatalf("note = %d, want 50", c.State().Note)
	}

	c.KeyUp("a")
	if !c.State().Gate {
		t.Fatal("releasing an older key ended the note")
	}
	c.KeyUp("s")
	if s := c.State(); s.Gate || s.Stage != "release" {
		t.Fatalf("gate=%v stage=%s after releasing the sounding key", s.Gate, s.Stage)
	}
}

func TestController_NoteOffWhileIdle(t *testing.T) {
	c := newTestController(t)
	c.NoteOff()
	if s := c.State(); s.Stage != "idle" || s.Level != 0 {
		t.Fatalf("stage=%s level=%v", s.Stage, s.Level)
	}
}

func TestController_FilterResponse(t *testing.T) {
	c := newTestController(t)
	freqs := []float64{100, 1000, 10000}

	db, err := c.FilterResponse(0, freqs)
	if err != nil {
		t.Fatal(err)
	}
	if len(db) != len(freqs) {
		t.Fatalf("len = %d, want %d", len(db), len(freqs))
	}
	if math.Abs(db[0]) > 0.1 || math.Abs(db[1]+3.0103) > 0.05 || db[2] > -35 {
		t.Fatalf("lowpass response = %v", db)
	}

	_ = c.SetRolloff(0, Rolloff24)
	db, _ = c.FilterResponse(0, freqs)
	if math.Abs(db[1]+6.0206) > 0.1 {
		t.Fatalf("24 dB/oct response at cutoff = %v, want -6.02", db[1])
	}

	_ = c.SetFilterType(1, Highpass)
	db, _ = c.FilterResponse(1, freqs)
	if db[0] > -30 || math.Abs(db[2]) > 0.1 {
		t.Fatalf("highpass response = %v", db)
	}

	if _, err := c.FilterResponse(NumChannels, freqs); !errors.Is(err, ErrUnknownChannel) {
		t.Fatalf("err = %v, want ErrUnknownChannel", err)
	}
}

func TestController_NoteOffWhileReleasing(t *testing.T) {
	c := newTestController(t, WithSampleRate(1000))
	c.SetADSR(0, 0, 1, 0.1)
	c.NoteOn(60)
	c.NoteOff()

	buf := make([]float64, 50)
	c.RenderFloat64(buf)
	c.NoteOff()
	c.RenderFloat64(buf[:50])
	if s := c.State(); s.Stage != "idle" {
		t.Fatalf("second NoteOff restarted the release: stage=%s level=%v", s.Stage, s.Level)
	}
}

func TestController_StartStop(t *testing.T) {
	c := newTestController(t)
	var bus KeyBus

	if err := c.Start(&bus); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(&bus); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start err = %v", err)
	}
	if bus.Subscribers() != 1 {
		t.Fatalf("subscribers = %d", bus.Subscribers())
	}

	bus.Press("k")
	c.Stop()
	if bus.Subscribers() != 0 {
		t.Fatal("Stop left handlers attached")
	}
	if s := c.State(); s.Gate || s.Started {
		t.Fatalf("after Stop: gate=%v started=%v", s.Gate, s.Started)
	}

	bus.Press("a")
	if s := c.State(); s.Gate || s.Note != 60 {
		t.Fatalf("detached controller received a key: gate=%v note=%d", s.Gate, s.Note)
	}
	c.Stop()

	if err := c.Start(&bus); err != nil {
		t.Fatalf("restart: %v", err)
	}
	c.Stop()
}

func TestController_UnknownChannel(t *testing.T) {
	c := newTestController(t)
	checks := []error{
		c.SetGain(5, 1),
		c.SetGain(-1, 1),
		c.SetVoiceCount(7, 2),
		c.SetSpread(99, 2),
		c.SetFilter(5, 100, 1),
		c.SetFilterType(5, Highpass),
		c.SetRolloff(-2, Rolloff24),
	}
	for i, err := range checks {
		if !errors.Is(err, ErrUnknownChannel) {
			t.Errorf("check %d: err = %v, want ErrUnknownChannel", i, err)
		}
	}
}

func TestController_SettersClamp(t *testing.T) {
	c := newTestController(t)
	_ = c.SetGain(0, 1.5)
	_ = c.SetGain(1, -0.2)
	_ = c.SetVoiceCount(2, 0)
	_ = c.SetSpread(3, -10)
	_ = c.SetVoiceCount(NoiseChannel, 9)

	s := c.State()
	if s.Channels[0].Gain != 1 || s.Channels[1].Gain != 0 {
		t.Fatalf("gains = %v, %v", s.Channels[0].Gain, s.Channels[1].Gain)
	}
	if s.Channels[2].Voices != 1 || s.Channels[3].Spread != 0 {
		t.Fatalf("voices=%d spread=%v", s.Channels[2].Voices, s.Channels[3].Spread)
	}
	if s.Channels[NoiseChannel].Voices != 1 {
		t.Fatal("noise channel accepted a voice count")
	}
}

func TestController_RenderSilenceWhenIdle(t *testing.T) {
	c := newTestController(t)
	buf := make([]float32, 1000)
	c.Render(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v, want silence", i, v)
		}
	}
	if !c.Silent() {
		t.Fatal("idle controller not silent")
	}
}

func TestController_RenderPitch(t *testing.T) {
	c := newTestController(t, WithPresetName("init"))
	c.NoteOn(69)

	buf := make([]float64, 48000+4800)
	c.RenderFloat64(buf)
	testutil.RequireFinite(t, buf)
	testutil.RequireNearlyEqual(t, testutil.EstimateFrequency(buf[4800:], 48000), 440, 0.5)
}

func TestController_RenderBoundedAndReleases(t *testing.T) {
	c := newTestController(t, WithBlockSize(64))
	c.SetADSR(0.001, 0.01, 1, 0.01)
	c.SetMasterVolume(1)
	c.NoteOn(60)

	buf := make([]float32, 4800)
	c.Render(buf)
	var peak float32
	for _, v := range buf {
		if v > 1 || v < -1 {
			t.Fatalf("sample %v not clipped", v)
		}
		peak = max(peak, v)
	}
	if peak == 0 {
		t.Fatal("note produced silence")
	}

	c.NoteOff()
	c.Render(buf)
	c.Render(buf)
	if !c.Silent() {
		t.Fatalf("stage = %s after release", c.State().Stage)
	}
	for _, v := range buf {
		if v != 0 {
			t.Fatal("output after release is not silent")
		}
	}
}

type recordingTap struct {
	samples []float64
}

func (r *recordingTap) Write(s []float64) {
	r.samples = append(r.samples, s...)
}

func TestController_TapSeesMasterOutput(t *testing.T) {
	tap := &recordingTap{}
	c := newTestController(t, WithTap(tap, TapPostEnvelope))
	c.NoteOn(64)

	out := make([]float64, 1000)
	c.RenderFloat64(out)
	testutil.RequireSliceNearlyEqual(t, tap.samples, out, 0)
}

func TestController_TapPreEnvelope(t *testing.T) {
	tap := &recordingTap{}
	c := newTestController(t, WithTap(tap, TapPreEnvelope))

	out := make([]float64, 512)
	c.RenderFloat64(out)
	if testutil.RMS(out) != 0 {
		t.Fatal("idle output not silent")
	}
	if testutil.RMS(tap.samples) == 0 {
		t.Fatal("pre-envelope tap saw silence")
	}
}

func TestController_ApplyPreset(t *testing.T) {
	c := newTestController(t)
	for _, name := range PresetNames() {
		p, err := LookupPreset(name)
		if err != nil {
			t.Fatalf("LookupPreset(%q): %v", name, err)
		}
		if err := c.ApplyPreset(p); err != nil {
			t.Fatalf("ApplyPreset(%q): %v", name, err)
		}
		s := c.State()
		if s.Octave != p.Octave || s.ADSR != p.ADSR {
			t.Fatalf("%s: octave=%d adsr=%+v", name, s.Octave, s.ADSR)
		}
		for i := range NumVoicedChannels {
			if s.Channels[i].Voices != p.Voices[i] {
				t.Fatalf("%s: channel %d voices=%d, want %d", name, i, s.Channels[i].Voices, p.Voices[i])
			}
		}
	}

	bad := DefaultPreset()
	bad.Spread = bad.Spread[:2]
	if err := c.ApplyPreset(bad); !errors.Is(err, ErrInvalidPreset) {
		t.Fatalf("err = %v, want ErrInvalidPreset", err)
	}
}

func TestController_DetuneHz(t *testing.T) {
	c := newTestController(t, WithDetuneUnit(DetuneHz))
	c.NoteOn(69)
	testutil.RequireSliceNearlyEqual(t, c.State().Channels[0].Frequencies, []float64{400, 440, 480}, 1e-9)
}

func TestController_ConcurrentUse(t *testing.T) {
	c := newTestController(t)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		buf := make([]float32, 256)
		for range 50 {
			c.Render(buf)
		}
	}()
	go func() {
		defer wg.Done()
		for i := range 50 {
			c.NoteOn(40 + i%12)
			_ = c.SetVoiceCount(i%NumVoicedChannels, 1+i%7)
			_ = c.SetFilter(i%NumChannels, 200+float64(i)*50, 1)
			c.State()
			c.NoteOff()
		}
	}()
	wg.Wait()
}

func BenchmarkControllerRender(b *testing.B) {
	c, err := NewController()
	if err != nil {
		b.Fatal(err)
	}
	c.NoteOn(60)
	buf := make([]float32, 128)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		c.Render(buf)
	}
}
