//go:build headless

package audio

import (
	"sync"
	"time"
)

// headlessOutput pulls from the renderer at the device rate and discards
// the samples, so the monitor and envelope timing behave as with a
// sound card.
type headlessOutput struct {
	r        Renderer
	buf      []float32
	interval time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
	closed  bool
}

func openBackend(r Renderer, cfg Config) (Output, error) {
	return &headlessOutput{
		r:        r,
		buf:      make([]float32, cfg.BufferFrames),
		interval: time.Duration(cfg.BufferFrames) * time.Second / time.Duration(cfg.SampleRate),
	}, nil
}

func (o *headlessOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.started {
		return nil
	}
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	o.started = true

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				o.r.Render(o.buf)
			}
		}
	}(o.stop, o.done)
	return nil
}

func (o *headlessOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	if o.started {
		close(o.stop)
		<-o.done
		o.started = false
	}
	return nil
}

func (o *headlessOutput) Backend() string { return "headless" }
