package synth

import (
	"sort"
	"strings"
	"sync"
)

const (
	MinOctave     = 0
	MaxOctave     = 8
	DefaultOctave = 4

	// OctaveDownKey and OctaveUpKey shift the keyboard by one octave.
	OctaveDownKey = "z"
	OctaveUpKey   = "x"
)

// noteKeys is the piano layout on the home row: white keys on a s d f g
// h j k, black keys on w e t y u.
var noteKeys = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12,
}

// KeyBinding is one entry of the note keyboard.
type KeyBinding struct {
	Key      string
	Semitone int
}

// KeyMap returns the note keys in ascending pitch order.
func KeyMap() []KeyBinding {
	out := make([]KeyBinding, 0, len(noteKeys))
	for k, s := range noteKeys {
		out = append(out, KeyBinding{Key: k, Semitone: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Semitone < out[j].Semitone })
	return out
}

// KeySemitone returns the semitone of a note key. Keys are case-insensitive.
func KeySemitone(key string) (int, bool) {
	s, ok := noteKeys[normalizeKey(key)]
	return s, ok
}

// IsBlackKey reports whether a semitone falls on a black piano key.
func IsBlackKey(semitone int) bool {
	switch ((semitone % 12) + 12) % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// NoteNumber returns the MIDI note of a semitone in an octave.
func NoteNumber(octave, semitone int) int {
	return 12*octave + semitone
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// KeySource delivers key-down and key-up events. Subscribe returns a
// function that detaches both handlers.
type KeySource interface {
	Subscribe(down, up func(key string)) (unsubscribe func())
}

type keySubscription struct {
	down, up func(string)
}

// KeyBus is an in-process KeySource. Hosts push events with Press and
// Release; handlers run on the caller's goroutine.
type KeyBus struct {
	mu   sync.Mutex
	next int
	subs map[int]keySubscription
}

// Subscribe implements KeySource.
func (b *KeyBus) Subscribe(down, up func(key string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]keySubscription)
	}
	id := b.next
	b.next++
	b.subs[id] = keySubscription{down: down, up: up}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Press delivers a key-down event.
func (b *KeyBus) Press(key string) {
	for _, s := range b.snapshot() {
		if s.down != nil {
			s.down(key)
		}
	}
}

// Release delivers a key-up event.
func (b *KeyBus) Release(key string) {
	for _, s := range b.snapshot() {
		if s.up != nil {
			s.up(key)
		}
	}
}

// Subscribers returns the number of attached handler pairs.
func (b *KeyBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *KeyBus) snapshot() []keySubscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]keySubscription, 0, len(b.subs))
	for _, s := range b.subs {
		out = append(out, s)
	}
	return out
}
