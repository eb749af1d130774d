//go:build portaudio && !headless

package audio

import (
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
)

type portaudioOutput struct {
	r      Renderer
	stream *pa.Stream
	buf    []float32

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
	closed  bool
}

func openBackend(r Renderer, cfg Config) (Output, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: portaudio init: %w", err)
	}

	o := &portaudioOutput{
		r:   r,
		buf: make([]float32, cfg.BufferFrames),
	}
	stream, err := pa.OpenDefaultStream(0, 1, float64(cfg.SampleRate), cfg.BufferFrames, &o.buf)
	if err != nil {
		_ = pa.Terminate()
		return nil, fmt.Errorf("audio: portaudio stream: %w", err)
	}
	o.stream = stream
	return o, nil
}

func (o *portaudioOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if o.started {
		return nil
	}
	if err := o.stream.Start(); err != nil {
		return fmt.Errorf("audio: portaudio start: %w", err)
	}
	o.stop = make(chan struct{})
	o.done = make(chan struct{})
	o.started = true
	go o.loop(o.stop, o.done)
	return nil
}

// loop renders one device buffer at a time; Write blocks until the
// device has room, which paces rendering.
func (o *portaudioOutput) loop(stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		o.r.Render(o.buf)
		if err := o.stream.Write(); err != nil {
			return
		}
	}
}

func (o *portaudioOutput) Close() error {
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
		_ = o.stream.Stop()
	}
	err := o.stream.Close()
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	if err != nil {
		return fmt.Errorf("audio: portaudio close: %w", err)
	}
	return nil
}

func (o *portaudioOutput) Backend() string { return "portaudio" }
