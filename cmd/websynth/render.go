package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cwbudde/algo-websynth/monitor"
	"github.com/cwbudde/algo-websynth/synth"
)

// levelRamp maps monitor gradient indices to characters, quiet to loud.
const levelRamp = ".,:;-=+*x#%@"

type stateSource interface {
	State() synth.State
}

// screen draws monitor frames as text.
type screen struct {
	mu      sync.Mutex
	w       io.Writer
	width   int
	height  int
	floorDB float64
	state   stateSource
}

func newScreen(w io.Writer, width, height int, floorDB float64, state stateSource) *screen {
	return &screen{w: w, width: max(width, 8), height: max(height, 3), floorDB: floorDB, state: state}
}

func (s *screen) Draw(fr monitor.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, renderASCII(fr, s.width, s.height, s.floorDB, s.state.State()))
}

func (s *screen) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, "\x1b[2J\x1b[H")
}

// renderASCII draws one frame into a width x height grid followed by a
// status line. The cursor is homed first so frames overwrite each other.
func renderASCII(fr monitor.Frame, width, height int, floorDB float64, st synth.State) string {
	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
	}

	values := fr.Snapshot.Values[:]
	switch fr.Snapshot.Mode {
	case monitor.ModeSpectrum:
		for x := range width {
			v := values[x*len(values)/width]
			w := monitor.Weight(v, floorDB)
			rows := int(w*float64(height) + 0.5)
			ch := levelRamp[monitor.GradientIndex(v, floorDB)]
			for r := height - rows; r < height; r++ {
				grid[r][x] = ch
			}
		}
	default:
		for x := range width {
			v := values[x*len(values)/width]
			row := height - 1 - int(monitor.WaveformY(v, float64(height-1)))
			row = min(max(row, 0), height-1)
			grid[row][x] = '*'
		}
	}

	var b strings.Builder
	b.WriteString("\x1b[H")
	for _, line := range grid {
		b.Write(line)
		b.WriteString("\r\n")
	}
	note := "-"
	if st.Note >= 0 {
		note = fmt.Sprintf("%d (%.2f Hz)", st.Note, st.Frequency)
	}
	fmt.Fprintf(&b, "%-8s octave %d  note %-18s stage %-7s\x1b[K\r\n", fr.Snapshot.Mode, st.Octave, note, st.Stage)
	return b.String()
}
