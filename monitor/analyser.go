package monitor

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-websynth/dsp/core"
	"github.com/cwbudde/algo-websynth/dsp/spectrum"
	"github.com/cwbudde/algo-websynth/dsp/window"
)

const (
	// FFTSize is the analysis length of the spectrum view.
	FFTSize = 512
	// SnapshotLen is the number of values in every snapshot.
	SnapshotLen = FFTSize / 2

	DefaultSmoothing = 0.8
	DefaultFloorDB   = -180.0
)

// Snapshot is one frame of analysis data: SnapshotLen samples in [-1, 1]
// for ModeWaveform, or SnapshotLen dB magnitudes for ModeSpectrum.
type Snapshot struct {
	Mode   Mode
	Values [SnapshotLen]float64
}

type analyserConfig struct {
	smoothing float64
	floorDB   float64
}

// AnalyserOption configures an Analyser.
type AnalyserOption func(*analyserConfig)

// WithSmoothing sets the spectrum time constant in [0, 0.99].
func WithSmoothing(tc float64) AnalyserOption {
	return func(cfg *analyserConfig) {
		cfg.smoothing = core.Clamp(tc, 0, 0.99)
	}
}

// WithFloorDB sets the lowest reported magnitude. Values >= 0 are ignored.
func WithFloorDB(db float64) AnalyserOption {
	return func(cfg *analyserConfig) {
		if db < 0 {
			cfg.floorDB = db
		}
	}
}

// Analyser buffers the latest FFTSize samples written by the renderer and
// derives waveform and spectrum snapshots from them. Write and the
// snapshot methods may be called from different goroutines.
type Analyser struct {
	mu     sync.Mutex
	ring   [FFTSize]float64
	write  int
	filled int

	specMu    sync.Mutex
	smoothing float64
	floorDB   float64
	win       []float64
	norm      float64
	plan      *algofft.Plan[complex128]
	frame     []float64
	in, out   []complex128
	mags      []float64
	db        []float64
	primed    bool
}

// NewAnalyser prepares the window and FFT plan.
func NewAnalyser(opts ...AnalyserOption) (*Analyser, error) {
	cfg := analyserConfig{smoothing: DefaultSmoothing, floorDB: DefaultFloorDB}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	win, err := window.BlackmanHarris(FFTSize, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("analyser window: %w", err)
	}
	gain, err := window.CoherentGain(win)
	if err != nil {
		return nil, fmt.Errorf("analyser window: %w", err)
	}
	plan, err := algofft.NewPlan64(FFTSize)
	if err != nil {
		return nil, fmt.Errorf("analyser fft plan: %w", err)
	}

	a := &Analyser{
		smoothing: cfg.smoothing,
		floorDB:   cfg.floorDB,
		win:       win,
		// one-sided amplitude spectrum of a full-scale sine reads 0 dB
		norm:  float64(FFTSize) * gain / 2,
		plan:  plan,
		frame: make([]float64, FFTSize),
		in:    make([]complex128, FFTSize),
		out:   make([]complex128, FFTSize),
		mags:  make([]float64, SnapshotLen),
		db:    make([]float64, SnapshotLen),
	}
	for i := range a.db {
		a.db[i] = cfg.floorDB
	}
	return a, nil
}

// FloorDB returns the lowest magnitude the spectrum reports.
func (a *Analyser) FloorDB() float64 {
	return a.floorDB
}

// Write appends samples to the ring buffer. It implements synth.Tap.
func (a *Analyser) Write(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(samples) > FFTSize {
		samples = samples[len(samples)-FFTSize:]
	}
	for _, s := range samples {
		a.ring[a.write] = s
		a.write = (a.write + 1) % FFTSize
	}
	a.filled = min(a.filled+len(samples), FFTSize)
}

// Reset clears the buffered signal and the smoothed spectrum.
func (a *Analyser) Reset() {
	a.mu.Lock()
	a.ring = [FFTSize]float64{}
	a.write = 0
	a.filled = 0
	a.mu.Unlock()

	a.specMu.Lock()
	for i := range a.db {
		a.db[i] = a.floorDB
	}
	a.primed = false
	a.specMu.Unlock()
}

// copyLatest copies the newest len(dst) samples, oldest first.
func (a *Analyser) copyLatest(dst []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := a.write - len(dst)
	if start < 0 {
		start += FFTSize
	}
	n := copy(dst, a.ring[start:])
	copy(dst[n:], a.ring[:])
}

// Waveform returns the latest SnapshotLen samples, oldest first.
func (a *Analyser) Waveform() Snapshot {
	s := Snapshot{Mode: ModeWaveform}
	a.copyLatest(s.Values[:])
	return s
}

// Spectrum returns the smoothed magnitude spectrum of the latest FFTSize
// samples in dB, floored at FloorDB. If the transform fails the previous
// spectrum is returned unchanged.
func (a *Analyser) Spectrum() Snapshot {
	a.specMu.Lock()
	defer a.specMu.Unlock()

	if err := a.analyse(); err == nil {
		if a.primed {
			spectrum.Smooth(a.db, a.mags, a.smoothing)
		} else {
			copy(a.db, a.mags)
			a.primed = true
		}
	}

	s := Snapshot{Mode: ModeSpectrum}
	copy(s.Values[:], a.db)
	return s
}

// analyse fills mags with the dB spectrum of the current frame.
func (a *Analyser) analyse() error {
	a.copyLatest(a.frame)
	if err := window.ApplyCoefficients(a.frame, a.frame, a.win); err != nil {
		return err
	}
	for i, v := range a.frame {
		a.in[i] = complex(v, 0)
	}
	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("analyser fft: %w", err)
	}
	if err := spectrum.MagnitudeInto(a.mags, a.out); err != nil {
		return err
	}
	spectrum.ToDecibels(a.mags, a.norm, a.floorDB)
	return nil
}
