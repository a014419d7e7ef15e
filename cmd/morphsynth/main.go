// Command morphsynth renders, inspects and plays the spectral-morphing
// synthesizer.
//
// Usage:
//
//	morphsynth render [flags] [note ...]
//	morphsynth model [flags] [preset-or-file ...]
//	morphsynth play [flags]
//
// Examples:
//
//	morphsynth render -kind resonator -models saw,square -morph-x 0.5 57 60 64
//	morphsynth render -analyze 69
//	morphsynth model -list
//	morphsynth model -preset bell -o bell.json
//	morphsynth play -device 3
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/synth/engine"
	"github.com/cwbudde/algo-morph/synth/model"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("morphsynth: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(interruptContext(), args)
	case "model":
		err = runModel(args)
	case "play":
		err = runPlay(interruptContext(), args)
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		die("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: morphsynth <render|model|play> [flags]\n\n")
	fmt.Fprintf(os.Stderr, "  render  render notes to WAV files\n")
	fmt.Fprintf(os.Stderr, "  model   list, export and inspect spectral models\n")
	fmt.Fprintf(os.Stderr, "  play    play from a MIDI input device\n\n")
	fmt.Fprintf(os.Stderr, "Run 'morphsynth <command> -h' for command flags.\n")
}

func die(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(1)
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}

// resolveModel returns a built-in preset by name, or loads a model file.
func resolveModel(name string) (model.SpectralModel, error) {
	if m, err := model.Preset(name); err == nil {
		return m, nil
	}
	return model.LoadFile(name)
}

// engineFlags are shared by render and play.
type engineFlags struct {
	kind       string
	models     string
	sampleRate float64
	blockSize  int
	polyphony  int
	seed       uint
	morphX     float64
	morphY     float64
	resonance  float64
	reverb     float64
	delay      float64
}

func (f *engineFlags) newEngine() (*engine.Engine, error) {
	kind, err := engine.ParseKind(f.kind)
	if err != nil {
		return nil, err
	}
	var models []model.SpectralModel
	if f.models != "" {
		for _, name := range strings.Split(f.models, ",") {
			m, err := resolveModel(strings.TrimSpace(name))
			if err != nil {
				return nil, fmt.Errorf("model %q: %w", name, err)
			}
			models = append(models, m)
		}
	}
	e, err := engine.New(kind,
		engine.WithProcessor(
			core.WithSampleRate(f.sampleRate),
			core.WithBlockSize(f.blockSize),
			core.WithSeed(uint32(f.seed)),
		),
		engine.WithPolyphony(f.polyphony),
		engine.WithModels(models...),
	)
	if err != nil {
		return nil, err
	}
	vp := e.VoiceParams()
	vp.MorphX, vp.MorphY, vp.FilterResonance = f.morphX, f.morphY, f.resonance
	e.SetVoiceParams(vp)
	gp := e.GlobalParams()
	gp.ReverbMix, gp.DelayMix = f.reverb, f.delay
	e.SetGlobalParams(gp)
	return e, nil
}
