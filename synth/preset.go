package synth

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// FilterSettings is the cutoff and resonance of one channel filter.
type FilterSettings struct {
	Cutoff float64 `json:"freq"`
	Q      float64 `json:"q"`
}

// Preset is a complete parameter set. Gain and Filter have one entry per
// channel; Voices and Spread one per voiced channel.
type Preset struct {
	Name   string           `json:"name"`
	ADSR   ADSR             `json:"adsr"`
	Octave int              `json:"octave"`
	Gain   []float64        `json:"gain"`
	Filter []FilterSettings `json:"filter"`
	Voices []int            `json:"voices"`
	Spread []float64        `json:"spread"`
}

// Validate checks the shape of the channel tables and rejects NaN values.
// Out-of-range numbers are accepted; they are clamped when applied.
func (p Preset) Validate() error {
	switch {
	case len(p.Gain) != NumChannels:
		return fmt.Errorf("%w: %d gains, want %d", ErrInvalidPreset, len(p.Gain), NumChannels)
	case len(p.Filter) != NumChannels:
		return fmt.Errorf("%w: %d filters, want %d", ErrInvalidPreset, len(p.Filter), NumChannels)
	case len(p.Voices) != NumVoicedChannels:
		return fmt.Errorf("%w: %d voice counts, want %d", ErrInvalidPreset, len(p.Voices), NumVoicedChannels)
	case len(p.Spread) != NumVoicedChannels:
		return fmt.Errorf("%w: %d spreads, want %d", ErrInvalidPreset, len(p.Spread), NumVoicedChannels)
	case p.Octave < MinOctave || p.Octave > MaxOctave:
		return fmt.Errorf("%w: octave %d", ErrInvalidPreset, p.Octave)
	}

	vals := []float64{p.ADSR.Attack, p.ADSR.Decay, p.ADSR.Sustain, p.ADSR.Release}
	vals = append(vals, p.Gain...)
	vals = append(vals, p.Spread...)
	for _, f := range p.Filter {
		vals = append(vals, f.Cutoff, f.Q)
	}
	for _, v := range vals {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: NaN parameter", ErrInvalidPreset)
		}
	}
	return nil
}

// DefaultPreset returns the start-up sound: four detuned oscillators at
// full gain, noise muted, a 1 kHz lowpass on every channel.
func DefaultPreset() Preset {
	return Preset{
		Name:   "default",
		ADSR:   ADSR{Attack: 0.1, Decay: 0.2, Sustain: 1.0, Release: 0.8},
		Octave: DefaultOctave,
		Gain:   []float64{1, 1, 1, 1, 0},
		Filter: uniformFilters(1000, 0),
		Voices: []int{3, 3, 3, 3},
		Spread: []float64{40, 40, 40, 40},
	}
}

func uniformFilters(cutoff, q float64) []FilterSettings {
	out := make([]FilterSettings, NumChannels)
	for i := range out {
		out[i] = FilterSettings{Cutoff: cutoff, Q: q}
	}
	return out
}

var builtinPresets = map[string]func() Preset{
	"default": DefaultPreset,
	"init": func() Preset {
		return Preset{
			Name:   "init",
			ADSR:   ADSR{Attack: 0.01, Decay: 0.1, Sustain: 1, Release: 0.3},
			Octave: DefaultOctave,
			Gain:   []float64{1, 0, 0, 0, 0},
			Filter: uniformFilters(20000, 0),
			Voices: []int{1, 1, 1, 1},
			Spread: []float64{0, 0, 0, 0},
		}
	},
	"supersaw": func() Preset {
		return Preset{
			Name:   "supersaw",
			ADSR:   ADSR{Attack: 0.01, Decay: 0.3, Sustain: 0.8, Release: 0.5},
			Octave: DefaultOctave,
			Gain:   []float64{0, 1, 0, 0, 0},
			Filter: uniformFilters(4000, 1),
			Voices: []int{1, 7, 1, 1},
			Spread: []float64{0, 25, 0, 0},
		}
	},
	"pad": func() Preset {
		return Preset{
			Name:   "pad",
			ADSR:   ADSR{Attack: 1.2, Decay: 1, Sustain: 0.7, Release: 2.5},
			Octave: 3,
			Gain:   []float64{0.6, 0.4, 0, 0.5, 0.05},
			Filter: uniformFilters(1800, 0.7),
			Voices: []int{5, 5, 1, 5},
			Spread: []float64{15, 15, 0, 15},
		}
	},
}

// LookupPreset returns a built-in preset by name.
func LookupPreset(name string) (Preset, error) {
	fn, ok := builtinPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidPreset, name)
	}
	return fn(), nil
}

// PresetNames lists the built-in presets in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(builtinPresets))
	for name := range builtinPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
