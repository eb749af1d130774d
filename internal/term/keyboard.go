// Package term turns a raw-mode terminal into a synth key source.
//
// Terminals report key presses but not releases. A held key produces
// auto-repeat presses, so a key counts as released once no press has
// arrived for the hold timeout.
package term

import (
	"errors"
	"sync"
	"time"
)

// DefaultHoldTimeout covers the initial auto-repeat delay of common
// terminals.
const DefaultHoldTimeout = 600 * time.Millisecond

const (
	keyCtrlC = 0x03
	keyEsc   = 0x1b
)

// ErrNotTerminal is returned by Start when stdin is not a terminal.
var ErrNotTerminal = errors.New("term: stdin is not a terminal")

// Keyboard implements synth.KeySource on top of terminal input.
type Keyboard struct {
	hold time.Duration

	mu       sync.Mutex
	down, up func(string)
	held     map[string]*keyHold

	quit     chan struct{}
	quitOnce sync.Once

	raw rawInput
}

// keyHold is the release timer of one held key. A firing timer only
// releases the key while its hold is still the current one.
type keyHold struct {
	timer *time.Timer
}

// Option configures a Keyboard.
type Option func(*Keyboard)

// WithHoldTimeout sets how long a key counts as held after its last press.
func WithHoldTimeout(d time.Duration) Option {
	return func(k *Keyboard) {
		if d > 0 {
			k.hold = d
		}
	}
}

// NewKeyboard returns a keyboard that is not yet reading input.
func NewKeyboard(opts ...Option) *Keyboard {
	k := &Keyboard{
		hold: DefaultHoldTimeout,
		held: make(map[string]*keyHold),
		quit: make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(k)
		}
	}
	return k
}

// Subscribe implements synth.KeySource. A new subscription replaces the
// previous one.
func (k *Keyboard) Subscribe(down, up func(key string)) func() {
	k.mu.Lock()
	k.down, k.up = down, up
	k.mu.Unlock()

	return func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		k.down, k.up = nil, nil
		for key, h := range k.held {
			h.timer.Stop()
			delete(k.held, key)
		}
	}
}

// Quit is closed when the user presses Ctrl-C or Esc.
func (k *Keyboard) Quit() <-chan struct{} {
	return k.quit
}

// feed handles one input byte.
func (k *Keyboard) feed(b byte) {
	if b == keyCtrlC || b == keyEsc {
		k.quitOnce.Do(func() { close(k.quit) })
		return
	}
	if b < 0x20 || b > 0x7e {
		return
	}
	key := string(rune(b))

	k.mu.Lock()
	down := k.down
	if h, ok := k.held[key]; ok {
		if h.timer.Stop() {
			h.timer.Reset(k.hold)
			k.mu.Unlock()
			return
		}
		// The timer already fired and its release is waiting on mu. The
		// key is still held, so it gets a fresh hold and the stale
		// release becomes a no-op.
		k.startHold(key)
		k.mu.Unlock()
		return
	}
	k.startHold(key)
	k.mu.Unlock()

	if down != nil {
		down(key)
	}
}

// startHold arms the release timer of key. k.mu must be held.
func (k *Keyboard) startHold(key string) {
	h := &keyHold{}
	h.timer = time.AfterFunc(k.hold, func() { k.release(key, h) })
	k.held[key] = h
}

func (k *Keyboard) release(key string, h *keyHold) {
	k.mu.Lock()
	if k.held[key] != h {
		k.mu.Unlock()
		return
	}
	delete(k.held, key)
	up := k.up
	k.mu.Unlock()

	if up != nil {
		up(key)
	}
}
