package synth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-websynth/dsp/core"
)

const (
	// NumChannels is the number of voice channels, the noise channel last.
	NumChannels = 5
	// NumVoicedChannels is the number of channels with a unison bank.
	NumVoicedChannels = NumChannels - 1
	// NoiseChannel is the index of the noise channel.
	NoiseChannel = NumChannels - 1
)

// Controller owns the synth graph. All methods are safe for concurrent
// use: parameter changes and note events take the controller lock briefly,
// and Render holds it for one block, so changes become audible at the next
// block boundary.
type Controller struct {
	mu sync.Mutex

	sampleRate float64
	blockSize  int
	unit       DetuneUnit

	channels [NumChannels]*Channel
	env      *Envelope
	mixer    *Mixer

	octave int
	note   int
	gate   bool

	held     map[string]struct{}
	sounding string

	unsubscribe func()
	started     bool

	block []float64
}

// NewController builds the graph. It fails on an invalid sample rate,
// waveform table or preset.
func NewController(opts ...Option) (*Controller, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.err != nil {
		return nil, fmt.Errorf("synth: %w", cfg.err)
	}
	if !validSampleRate(cfg.proc.SampleRate) {
		return nil, fmt.Errorf("synth: %w: %v", ErrInvalidSampleRate, cfg.proc.SampleRate)
	}
	if err := cfg.preset.Validate(); err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	c := &Controller{
		sampleRate: cfg.proc.SampleRate,
		blockSize:  cfg.proc.BlockSize,
		unit:       cfg.unit,
		env:        NewEnvelope(cfg.proc.SampleRate),
		note:       -1,
		held:       make(map[string]struct{}),
		block:      make([]float64, cfg.proc.BlockSize),
	}

	p := cfg.preset
	for i := range NumChannels {
		kind := Noise
		if i < NumVoicedChannels {
			kind = cfg.waveforms[i]
			if !kind.Periodic() {
				return nil, fmt.Errorf("synth: channel %d: %w: %s", i, ErrInvalidWaveform, kind)
			}
		}
		chCfg := channelConfig{
			unit:   cfg.unit,
			color:  cfg.color,
			seed:   cfg.seed,
			gain:   p.Gain[i],
			cutoff: p.Filter[i].Cutoff,
			q:      p.Filter[i].Q,
			voices: 1,
		}
		if i < NumVoicedChannels {
			chCfg.voices = p.Voices[i]
			chCfg.spread = p.Spread[i]
		}
		ch, err := newChannel(kind, cfg.proc.SampleRate, chCfg)
		if err != nil {
			return nil, fmt.Errorf("synth: channel %d: %w", i, err)
		}
		c.channels[i] = ch
	}

	c.env.SetADSR(p.ADSR.Attack, p.ADSR.Decay, p.ADSR.Sustain, p.ADSR.Release)
	c.octave = p.Octave
	c.mixer = newMixer(c.channels[:], c.env)
	c.mixer.SetTap(cfg.tap, cfg.tapPoint)
	return c, nil
}

// SampleRate returns the render sample rate in Hz.
func (c *Controller) SampleRate() float64 { return c.sampleRate }

// BlockSize returns the render quantum in samples.
func (c *Controller) BlockSize() int { return c.blockSize }

// NoteOn tunes every voiced channel to the MIDI note and starts the
// envelope attack from its current level. Repeating the sounding note
// while the gate is open does nothing.
func (c *Controller) NoteOn(midi int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteOnLocked(midi)
}

func (c *Controller) noteOnLocked(midi int) {
	midi = core.ClampInt(midi, 0, 127)
	if c.gate && midi == c.note {
		return
	}
	freq := core.MIDIToFrequency(midi)
	for _, ch := range c.channels[:NumVoicedChannels] {
		ch.SetFrequency(freq)
	}
	c.note = midi
	c.gate = true
	c.env.TriggerAttack()
}

// NoteOff releases the envelope. It is a no-op unless a note is held, so
// a repeated NoteOff never restarts a running release.
func (c *Controller) NoteOff() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteOffLocked()
}

func (c *Controller) noteOffLocked() {
	if !c.gate {
		return
	}
	c.gate = false
	c.env.TriggerRelease()
}

// SetOctave sets the keyboard octave. Values outside [MinOctave,
// MaxOctave] are ignored and reported with false.
func (c *Controller) SetOctave(v int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOctaveLocked(v)
}

func (c *Controller) setOctaveLocked(v int) bool {
	if v < MinOctave || v > MaxOctave {
		return false
	}
	c.octave = v
	return true
}

// ShiftOctave moves the keyboard by delta octaves if the result is in range.
func (c *Controller) ShiftOctave(delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOctaveLocked(c.octave + delta)
}

// Octave returns the keyboard octave.
func (c *Controller) Octave() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.octave
}

func (c *Controller) channel(i int) (*Channel, error) {
	if i < 0 || i >= NumChannels {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, i)
	}
	return c.channels[i], nil
}

// withChannel runs fn on channel i under the controller lock.
func (c *Controller) withChannel(i int, fn func(*Channel)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, err := c.channel(i)
	if err != nil {
		return err
	}
	fn(ch)
	return nil
}

// SetGain sets the level of channel i in [0, 1].
func (c *Controller) SetGain(i int, level float64) error {
	return c.withChannel(i, func(ch *Channel) { ch.SetGain(level) })
}

// SetVoiceCount sets the unison size of channel i. No-op for noise.
func (c *Controller) SetVoiceCount(i, n int) error {
	return c.withChannel(i, func(ch *Channel) { ch.SetVoiceCount(n) })
}

// SetSpread sets the unison spread of channel i. No-op for noise.
func (c *Controller) SetSpread(i int, spread float64) error {
	return c.withChannel(i, func(ch *Channel) { ch.SetSpread(spread) })
}

// SetFilter sets cutoff and resonance of channel i.
func (c *Controller) SetFilter(i int, cutoff, resonance float64) error {
	return c.withChannel(i, func(ch *Channel) { ch.SetFilter(cutoff, resonance) })
}

// FilterResponse returns the magnitude response of channel i's filter in
// dB at each frequency of freqs.
func (c *Controller) FilterResponse(i int, freqs []float64) ([]float64, error) {
	var db []float64
	err := c.withChannel(i, func(ch *Channel) { db = ch.FilterResponse(freqs) })
	return db, err
}

// SetFilterType sets the filter response of channel i.
func (c *Controller) SetFilterType(i int, t FilterType) error {
	return c.withChannel(i, func(ch *Channel) { ch.SetFilterType(t) })
}

// SetRolloff sets the filter slope of channel i.
func (c *Controller) SetRolloff(i int, r Rolloff) error {
	return c.withChannel(i, func(ch *Channel) { ch.SetRolloff(r) })
}

// SetADSR sets the envelope. The new values apply from the next trigger.
func (c *Controller) SetADSR(attack, decay, sustain, release float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.env.SetADSR(attack, decay, sustain, release)
}

// SetMasterVolume sets the output level in [0, 1].
func (c *Controller) SetMasterVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mixer.SetMasterVolume(v)
}

// SetTap replaces the monitor tap.
func (c *Controller) SetTap(t Tap, p TapPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mixer.SetTap(t, p)
}

// ApplyPreset replaces every parameter with the preset's values. A
// sounding note keeps sounding at the new settings.
func (c *Controller) ApplyPreset(p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.env.SetADSR(p.ADSR.Attack, p.ADSR.Decay, p.ADSR.Sustain, p.ADSR.Release)
	c.octave = p.Octave
	for i, ch := range c.channels {
		ch.SetGain(p.Gain[i])
		ch.SetFilter(p.Filter[i].Cutoff, p.Filter[i].Q)
		if i < NumVoicedChannels {
			ch.bank.Configure(p.Voices[i], p.Spread[i])
		}
	}
	return nil
}

// KeyDown handles a key press. Note keys start a note at the current
// octave; z and x shift the octave. Repeats of a held key are ignored.
func (c *Controller) KeyDown(key string) {
	key = normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case OctaveDownKey:
		c.setOctaveLocked(c.octave - 1)
		return
	case OctaveUpKey:
		c.setOctaveLocked(c.octave + 1)
		return
	}

	semitone, ok := noteKeys[key]
	if !ok {
		return
	}
	if _, held := c.held[key]; held {
		return
	}
	c.held[key] = struct{}{}
	c.sounding = key
	c.noteOnLocked(NoteNumber(c.octave, semitone))
}

// KeyUp handles a key release. Only releasing the most recently pressed
// note key ends the note.
func (c *Controller) KeyUp(key string) {
	key = normalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, held := c.held[key]; !held {
		return
	}
	delete(c.held, key)
	if key != c.sounding {
		return
	}
	c.sounding = ""
	c.noteOffLocked()
}

// Start attaches the key handlers to src until Stop is called.
func (c *Controller) Start(src KeySource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}
	if src == nil {
		return errors.New("synth: nil key source")
	}
	c.unsubscribe = src.Subscribe(c.KeyDown, c.KeyUp)
	c.started = true
	return nil
}

// Stop detaches the key handlers and releases a sounding note. Stopping
// a stopped controller does nothing.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.started = false
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.held)
	c.sounding = ""
	c.noteOffLocked()
}

// Render fills dst with mono PCM, hard-clipped to [-1, 1].
func (c *Controller) Render(dst []float32) {
	for off := 0; off < len(dst); off += c.blockSize {
		n := min(c.blockSize, len(dst)-off)
		c.mu.Lock()
		c.mixer.Process(c.block[:n])
		core.ToFloat32(dst[off:off+n], c.block[:n])
		c.mu.Unlock()
	}
}

// RenderFloat64 fills dst with unclipped mono output.
func (c *Controller) RenderFloat64(dst []float64) {
	for off := 0; off < len(dst); off += c.blockSize {
		n := min(c.blockSize, len(dst)-off)
		c.mu.Lock()
		c.mixer.Process(dst[off : off+n])
		c.mu.Unlock()
	}
}

// ChannelState is a snapshot of one channel.
type ChannelState struct {
	Waveform    string    `json:"waveform"`
	Gain        float64   `json:"gain"`
	Voices      int       `json:"voices"`
	Spread      float64   `json:"spread"`
	Cutoff      float64   `json:"cutoff"`
	Resonance   float64   `json:"resonance"`
	FilterType  string    `json:"filterType"`
	Rolloff     int       `json:"rolloff"`
	Offsets     []float64 `json:"offsets,omitempty"`
	Frequencies []float64 `json:"frequencies,omitempty"`
}

// State is a read-only snapshot of the controller.
type State struct {
	SampleRate   float64        `json:"sampleRate"`
	Octave       int            `json:"octave"`
	Note         int            `json:"note"`
	Gate         bool           `json:"gate"`
	Frequency    float64        `json:"frequency"`
	Stage        string         `json:"stage"`
	Level        float64        `json:"level"`
	ADSR         ADSR           `json:"adsr"`
	MasterVolume float64        `json:"masterVolume"`
	DetuneUnit   string         `json:"detuneUnit"`
	Started      bool           `json:"started"`
	Channels     []ChannelState `json:"channels"`
}

// State returns a snapshot of every parameter. Note is -1 before the first
// note.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		SampleRate:   c.sampleRate,
		Octave:       c.octave,
		Note:         c.note,
		Gate:         c.gate,
		Stage:        c.env.Stage().String(),
		Level:        c.env.Level(),
		ADSR:         c.env.ADSR(),
		MasterVolume: c.mixer.MasterVolume(),
		DetuneUnit:   c.unit.String(),
		Started:      c.started,
		Channels:     make([]ChannelState, 0, NumChannels),
	}
	if c.note >= 0 {
		s.Frequency = core.MIDIToFrequency(c.note)
	}
	for _, ch := range c.channels {
		cs := ChannelState{
			Waveform:   ch.kind.String(),
			Gain:       ch.gain,
			Voices:     1,
			Cutoff:     ch.filter.cutoff,
			Resonance:  ch.filter.q,
			FilterType: ch.filter.typ.String(),
			Rolloff:    int(ch.filter.rolloff),
		}
		if ch.bank != nil {
			cs.Voices = ch.bank.VoiceCount()
			cs.Spread = ch.bank.Spread()
			cs.Offsets = ch.bank.Offsets()
			cs.Frequencies = ch.bank.Frequencies()
		}
		s.Channels = append(s.Channels, cs)
	}
	return s
}

// Silent reports whether the envelope is idle, so output is exact silence.
func (c *Controller) Silent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.env.Stage() == StageIdle
}
