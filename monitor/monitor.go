package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// DefaultFrameRate is the sampling rate of Run, matching a display refresh.
const DefaultFrameRate = 60.0

// MaxFrameRate bounds WithFrameRate.
const MaxFrameRate = 1000.0

// ErrRunning is returned by Start when the loop is already running.
var ErrRunning = errors.New("monitor: already running")

// Mode selects what a Monitor samples.
type Mode int

const (
	ModeWaveform Mode = iota
	ModeSpectrum
)

// ParseMode maps "waveform" or "spectrum" to a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "waveform", "wave", "scope":
		return ModeWaveform, nil
	case "spectrum", "fft":
		return ModeSpectrum, nil
	default:
		return 0, fmt.Errorf("unsupported monitor mode: %q", name)
	}
}

func (m Mode) String() string {
	if m == ModeSpectrum {
		return "spectrum"
	}
	return "waveform"
}

// Source produces snapshots. Analyser is the Source used by the synth.
type Source interface {
	Waveform() Snapshot
	Spectrum() Snapshot
}

// Frame is one sampled snapshot with its sequence number.
type Frame struct {
	Seq      uint64
	Time     time.Time
	Snapshot Snapshot
}

// Sink consumes frames produced by Run.
type Sink interface {
	Draw(Frame)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Frame)

// Draw implements Sink.
func (f SinkFunc) Draw(fr Frame) { f(fr) }

type config struct {
	frameRate float64
	mode      Mode
	sink      Sink
}

// Option configures a Monitor.
type Option func(*config)

// WithFrameRate sets the Run loop rate in frames per second.
// Non-positive and NaN rates are ignored; rates above MaxFrameRate clamp.
func WithFrameRate(fps float64) Option {
	return func(cfg *config) {
		if fps > 0 {
			cfg.frameRate = math.Min(fps, MaxFrameRate)
		}
	}
}

// WithMode sets the initial mode.
func WithMode(m Mode) Option {
	return func(cfg *config) {
		cfg.mode = m
	}
}

// WithSink sets the frame consumer of Run.
func WithSink(s Sink) Option {
	return func(cfg *config) {
		cfg.sink = s
	}
}

// Monitor samples a Source once per frame in the active mode. It only
// reads the source, so the sampling loop never waits on note events.
type Monitor struct {
	src      Source
	interval time.Duration
	sink     Sink

	mu   sync.Mutex
	mode Mode
	seq  uint64

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a Monitor reading src.
func New(src Source, opts ...Option) *Monitor {
	cfg := config{frameRate: DefaultFrameRate, mode: ModeWaveform}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Monitor{
		src:      src,
		interval: time.Duration(float64(time.Second) / cfg.frameRate),
		sink:     cfg.sink,
		mode:     cfg.mode,
	}
}

// SetMode switches the sampled mode from the next tick on. It reports
// whether the mode changed; selecting the active mode does nothing.
func (m *Monitor) SetMode(mode Mode) bool {
	if mode != ModeWaveform && mode != ModeSpectrum {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode == m.mode {
		return false
	}
	m.mode = mode
	return true
}

// Mode returns the active mode.
func (m *Monitor) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Interval returns the time between two frames of Run.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Tick samples the source once in the active mode.
func (m *Monitor) Tick() Frame {
	m.mu.Lock()
	mode := m.mode
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	var s Snapshot
	if mode == ModeSpectrum {
		s = m.src.Spectrum()
	} else {
		s = m.src.Waveform()
	}
	return Frame{Seq: seq, Time: time.Now(), Snapshot: s}
}

// Run ticks at the configured frame rate and delivers every frame to the
// sink until ctx is done. It returns ctx.Err().
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fr := m.Tick()
			if m.sink != nil {
				m.sink.Draw(fr)
			}
		}
	}
}

// Start runs the loop on a new goroutine until Stop or ctx cancellation.
func (m *Monitor) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.done != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	return nil
}

// Stop cancels a loop started with Start and waits for it to exit.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
