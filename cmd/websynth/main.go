// Command websynth plays the synth from the terminal keyboard.
//
// Usage:
//
//	websynth [flags]
//
// Keys a w s e d f t g y h u j k play one octave, z and x shift the
// octave, Esc or Ctrl-C quits. The terminal shows the live waveform or
// spectrum of the output.
//
// Examples:
//
//	websynth
//	websynth -preset supersaw -mode spectrum
//	websynth -detune hz -noise pink
//	websynth -keymap
//	websynth -presets
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-websynth/dsp/core"
	dspsignal "github.com/cwbudde/algo-websynth/dsp/signal"
	"github.com/cwbudde/algo-websynth/internal/audio"
	"github.com/cwbudde/algo-websynth/internal/term"
	"github.com/cwbudde/algo-websynth/monitor"
	"github.com/cwbudde/algo-websynth/synth"
)

func main() {
	rate := flag.Int("rate", 48000, "output sample rate in Hz")
	buffer := flag.Int("buffer", audio.DefaultBufferFrames, "device buffer length in frames")
	preset := flag.String("preset", "default", "initial preset (see -presets)")
	detune := flag.String("detune", "cents", "unison spread unit: cents or hz")
	noise := flag.String("noise", "white", "noise channel color: white, pink or brown")
	mode := flag.String("mode", "waveform", "monitor view: waveform or spectrum")
	fps := flag.Float64("fps", 30, "monitor frames per second")
	hold := flag.Duration("hold", term.DefaultHoldTimeout, "time a key counts as held after its last repeat")
	keymap := flag.Bool("keymap", false, "print the keyboard layout and exit")
	presets := flag.Bool("presets", false, "list built-in presets and exit")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: websynth [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays a detuned subtractive synth from the terminal keyboard.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  websynth -preset supersaw -mode spectrum\n")
		fmt.Fprintf(os.Stderr, "  websynth -keymap\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *keymap {
		printKeymap(os.Stdout, synth.DefaultOctave)
		return
	}
	if *presets {
		for _, name := range synth.PresetNames() {
			fmt.Println(name)
		}
		return
	}

	opts, err := controllerOptions(*rate, *preset, *detune, *noise)
	if err != nil {
		logger.Error("invalid flags", "err", err)
		os.Exit(2)
	}
	monMode, err := monitor.ParseMode(*mode)
	if err != nil {
		logger.Error("invalid flags", "err", err)
		os.Exit(2)
	}

	if err := run(logger, opts, audio.Config{SampleRate: *rate, BufferFrames: *buffer}, monMode, *fps, *hold); err != nil {
		logger.Error("websynth failed", "err", err)
		os.Exit(1)
	}
}

func controllerOptions(rate int, preset, detune, noise string) ([]synth.Option, error) {
	opts := []synth.Option{
		synth.WithSampleRate(float64(rate)),
		synth.WithPresetName(preset),
	}

	switch strings.ToLower(detune) {
	case "cents":
		opts = append(opts, synth.WithDetuneUnit(synth.DetuneCents))
	case "hz":
		opts = append(opts, synth.WithDetuneUnit(synth.DetuneHz))
	default:
		return nil, fmt.Errorf("unsupported detune unit: %q", detune)
	}

	color, err := dspsignal.ParseNoiseColor(noise)
	if err != nil {
		return nil, err
	}
	opts = append(opts, synth.WithNoiseColor(color), synth.WithSeed(time.Now().UnixNano()))
	return opts, nil
}

func run(logger *slog.Logger, opts []synth.Option, audioCfg audio.Config, mode monitor.Mode, fps float64, hold time.Duration) error {
	analyser, err := monitor.NewAnalyser()
	if err != nil {
		return err
	}
	ctrl, err := synth.NewController(append(opts, synth.WithTap(analyser, synth.TapPostEnvelope))...)
	if err != nil {
		return err
	}

	out, err := audio.Open(ctrl, audioCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn("close audio", "err", err)
		}
	}()
	logger.Debug("audio ready", "backend", out.Backend(), "rate", audioCfg.SampleRate, "buffer", audioCfg.BufferFrames)

	keys := term.NewKeyboard(term.WithHoldTimeout(hold))
	if err := keys.Start(); err != nil {
		return err
	}
	defer keys.Stop()

	if err := ctrl.Start(keys); err != nil {
		return err
	}
	defer ctrl.Stop()

	if err := out.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	screen := newScreen(os.Stdout, term.Width(80), 16, analyser.FloorDB(), ctrl)
	defer screen.clear()
	mon := monitor.New(analyser,
		monitor.WithMode(mode),
		monitor.WithFrameRate(fps),
		monitor.WithSink(screen))
	if err := mon.Start(ctx); err != nil {
		return err
	}
	defer mon.Stop()

	select {
	case <-ctx.Done():
	case <-keys.Quit():
	}
	logger.Debug("shutting down")
	return nil
}

func printKeymap(w io.Writer, octave int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSEMITONE\tMIDI\tFREQ (Hz)\tCOLOR")
	for _, kb := range synth.KeyMap() {
		note := synth.NoteNumber(octave, kb.Semitone)
		color := "white"
		if synth.IsBlackKey(kb.Semitone) {
			color = "black"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%s\n", kb.Key, kb.Semitone, note, core.MIDIToFrequency(note), color)
	}
	fmt.Fprintf(tw, "%s\toctave down\t\t\t\n", synth.OctaveDownKey)
	fmt.Fprintf(tw, "%s\toctave up\t\t\t\n", synth.OctaveUpKey)
	_ = tw.Flush()
}
