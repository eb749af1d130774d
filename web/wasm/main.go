//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cwbudde/algo-websynth/internal/webdemo"
	"github.com/cwbudde/algo-websynth/synth"
)

var (
	engine *webdemo.Engine
	funcs  []js.Func
	done   = make(chan struct{})
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		var opts []synth.Option
		if len(args) > 1 && args[1].Type() == js.TypeString {
			opts = append(opts, synth.WithPresetName(args[1].String()))
		}
		e, err := webdemo.NewEngine(sr, opts...)
		if err != nil {
			return err.Error()
		}
		if engine != nil {
			engine.Stop()
		}
		engine = e
		return js.Null()
	}))

	api.Set("start", export(func(args []js.Value) any {
		if engine == nil {
			return "engine not initialized"
		}
		if err := engine.Start(documentKeys{}); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("stop", export(func(args []js.Value) any {
		if engine != nil {
			engine.Stop()
		}
		return js.Null()
	}))

	api.Set("noteOn", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		engine.Synth().NoteOn(args[0].Int())
		return js.Null()
	}))

	api.Set("noteOff", export(func(args []js.Value) any {
		if engine != nil {
			engine.Synth().NoteOff()
		}
		return js.Null()
	}))

	api.Set("setOctave", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return false
		}
		return engine.Synth().SetOctave(args[0].Int())
	}))

	api.Set("setGain", export(channelCall(func(s *synth.Controller, ch int, args []js.Value) error {
		return s.SetGain(ch, args[0].Float())
	})))

	api.Set("setVoices", export(channelCall(func(s *synth.Controller, ch int, args []js.Value) error {
		return s.SetVoiceCount(ch, args[0].Int())
	})))

	api.Set("setSpread", export(channelCall(func(s *synth.Controller, ch int, args []js.Value) error {
		return s.SetSpread(ch, args[0].Float())
	})))

	api.Set("setFilter", export(func(args []js.Value) any {
		if engine == nil || len(args) < 3 {
			return js.Null()
		}
		if err := engine.Synth().SetFilter(args[0].Int(), args[1].Float(), args[2].Float()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("setFilterType", export(channelCall(func(s *synth.Controller, ch int, args []js.Value) error {
		t, err := synth.ParseFilterType(args[0].String())
		if err != nil {
			return err
		}
		return s.SetFilterType(ch, t)
	})))

	api.Set("setRolloff", export(channelCall(func(s *synth.Controller, ch int, args []js.Value) error {
		return s.SetRolloff(ch, synth.Rolloff(args[0].Int()))
	})))

	api.Set("setADSR", export(func(args []js.Value) any {
		if engine == nil || len(args) < 4 {
			return js.Null()
		}
		engine.Synth().SetADSR(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float())
		return js.Null()
	}))

	api.Set("setMasterVolume", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		engine.Synth().SetMasterVolume(args[0].Float())
		return js.Null()
	}))

	api.Set("loadPreset", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		if err := engine.LoadPreset(args[0].String()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("setMode", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}
		if err := engine.SetMode(args[0].String()); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("mode", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		return engine.Mode()
	}))

	api.Set("render", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		buf := make([]float32, n)
		engine.Render(buf)
		return float32Array(buf)
	}))

	api.Set("frame", export(func(args []js.Value) any {
		if engine == nil {
			return js.Global().Get("Float32Array").New(0)
		}
		return float32Array(engine.Frame())
	}))

	api.Set("filterResponse", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		db, err := engine.FilterResponse(args[0].Int())
		if err != nil {
			return err.Error()
		}
		return float32Array(db)
	}))

	api.Set("state", export(func(args []js.Value) any {
		if engine == nil {
			return js.Null()
		}
		s, err := engine.StateJSON()
		if err != nil {
			return err.Error()
		}
		return s
	}))

	api.Set("destroy", export(func(args []js.Value) any {
		if engine != nil {
			engine.Stop()
			engine = nil
		}
		js.Global().Delete("WebSynth")
		select {
		case <-done:
		default:
			close(done)
		}
		return js.Null()
	}))

	js.Global().Set("WebSynth", api)
	<-done
	for _, f := range funcs {
		f.Release()
	}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}

// channelCall adapts a per-channel setter taking (channel, value...) from JS.
func channelCall(fn func(*synth.Controller, int, []js.Value) error) func([]js.Value) any {
	return func(args []js.Value) any {
		if engine == nil || len(args) < 2 {
			return js.Null()
		}
		if err := fn(engine.Synth(), args[0].Int(), args[1:]); err != nil {
			return err.Error()
		}
		return js.Null()
	}
}

func float32Array(buf []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(buf))
	for i, v := range buf {
		arr.SetIndex(i, v)
	}
	return arr
}

// documentKeys delivers keydown and keyup events of the page. Each
// subscription owns its listener funcs and releases them on unsubscribe.
type documentKeys struct{}

func (documentKeys) Subscribe(down, up func(key string)) func() {
	doc := js.Global().Get("document")
	onDown := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := args[0]
		if ev.Get("repeat").Bool() || isTextInput(ev.Get("target")) {
			return nil
		}
		down(ev.Get("key").String())
		return nil
	})
	onUp := js.FuncOf(func(_ js.Value, args []js.Value) any {
		up(args[0].Get("key").String())
		return nil
	})
	doc.Call("addEventListener", "keydown", onDown)
	doc.Call("addEventListener", "keyup", onUp)

	return func() {
		doc.Call("removeEventListener", "keydown", onDown)
		doc.Call("removeEventListener", "keyup", onUp)
		onDown.Release()
		onUp.Release()
	}
}

func isTextInput(target js.Value) bool {
	if target.IsUndefined() || target.IsNull() {
		return false
	}
	switch target.Get("tagName").String() {
	case "INPUT", "TEXTAREA", "SELECT":
		return true
	}
	return false
}
