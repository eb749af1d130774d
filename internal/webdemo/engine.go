// Package webdemo wires the synth controller and the signal monitor into
// the engine driven by the browser host.
package webdemo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/cwbudde/algo-websynth/monitor"
	"github.com/cwbudde/algo-websynth/synth"
)

// Engine is the browser-facing synth: a controller rendering audio on
// demand and a monitor sampled once per animation frame.
type Engine struct {
	synth    *synth.Controller
	analyser *monitor.Analyser
	monitor  *monitor.Monitor
	frame    []float32
}

// NewEngine creates a configured engine. The monitor taps the master
// output.
func NewEngine(sampleRate float64, opts ...synth.Option) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}

	analyser, err := monitor.NewAnalyser()
	if err != nil {
		return nil, fmt.Errorf("create analyser: %w", err)
	}

	opts = append([]synth.Option{
		synth.WithSampleRate(sampleRate),
		synth.WithTap(analyser, synth.TapPostEnvelope),
	}, opts...)
	ctrl, err := synth.NewController(opts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		synth:    ctrl,
		analyser: analyser,
		monitor:  monitor.New(analyser),
		frame:    make([]float32, monitor.SnapshotLen),
	}, nil
}

// Synth returns the controller for parameter and note events.
func (e *Engine) Synth() *synth.Controller {
	return e.synth
}

// Start attaches keyboard input from src.
func (e *Engine) Start(src synth.KeySource) error {
	return e.synth.Start(src)
}

// Stop detaches keyboard input and releases the sounding note.
func (e *Engine) Stop() {
	e.synth.Stop()
}

// Render fills dst with mono PCM samples in [-1, 1].
func (e *Engine) Render(dst []float32) {
	e.synth.Render(dst)
}

// SetMode switches the visualization by name.
func (e *Engine) SetMode(name string) error {
	m, err := monitor.ParseMode(name)
	if err != nil {
		return err
	}
	e.monitor.SetMode(m)
	return nil
}

// Mode returns the active visualization name.
func (e *Engine) Mode() string {
	return e.monitor.Mode().String()
}

// FloorDB returns the bottom of the spectrum scale.
func (e *Engine) FloorDB() float64 {
	return e.analyser.FloorDB()
}

// Frame samples the monitor once. The returned slice is reused by the
// next call.
func (e *Engine) Frame() []float32 {
	fr := e.monitor.Tick()
	for i, v := range fr.Snapshot.Values {
		e.frame[i] = float32(v)
	}
	return e.frame
}

// FilterResponse returns the filter curve of channel ch at the spectrum
// bin frequencies, floored like the spectrum so both share one scale.
func (e *Engine) FilterResponse(ch int) ([]float32, error) {
	freqs := make([]float64, monitor.SnapshotLen)
	for k := range freqs {
		freqs[k] = float64(k) * e.synth.SampleRate() / monitor.FFTSize
	}
	db, err := e.synth.FilterResponse(ch, freqs)
	if err != nil {
		return nil, err
	}
	floor := e.analyser.FloorDB()
	out := make([]float32, len(db))
	for k, v := range db {
		if v < floor || math.IsNaN(v) {
			v = floor
		}
		out[k] = float32(v)
	}
	return out, nil
}

// LoadPreset applies a built-in preset by name.
func (e *Engine) LoadPreset(name string) error {
	p, err := synth.LookupPreset(name)
	if err != nil {
		return err
	}
	return e.synth.ApplyPreset(p)
}

// StateJSON returns the controller snapshot plus the monitor mode as JSON.
func (e *Engine) StateJSON() (string, error) {
	payload := struct {
		synth.State
		Mode string `json:"mode"`
	}{
		State: e.synth.State(),
		Mode:  e.Mode(),
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return string(b), nil
}
