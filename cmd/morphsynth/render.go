package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-morph/synth/analysis"
	"github.com/cwbudde/algo-morph/synth/output"
)

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	outDir := fs.String("o", ".", "output directory")
	length := fs.Duration("length", time.Second, "note length")
	tail := fs.Duration("tail", output.DefaultTail, "release tail after note-off")
	velocity := fs.Int("velocity", 100, "MIDI velocity (1..127)")
	analyze := fs.Bool("analyze", false, "print the dominant frequency of each render")
	if err := fs.Parse(args); err != nil {
		return err
	}

	keys, err := parseKeys(fs.Args())
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		keys = []int{60}
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	// One engine per note; engines are not safe for concurrent rendering.
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := ef.newEngine()
			if err != nil {
				return err
			}
			samples := output.Render(e, *tail, output.Note{Key: key, Velocity: *velocity, Length: *length})

			path := filepath.Join(*outDir, fmt.Sprintf("%s-%03d.wav", e.Kind(), key))
			if err := writeWAV(path, samples, e.SampleRate()); err != nil {
				return err
			}
			if *analyze {
				n := min(len(samples), int(length.Seconds()*e.SampleRate()))
				f, err := analysis.DominantFrequency(samples[:n], e.SampleRate())
				if err != nil {
					return fmt.Errorf("note %d: %w", key, err)
				}
				fmt.Printf("%s: note %d dominant %.2f Hz rms %.4f\n", path, key, f, analysis.RMS(samples))
			} else {
				fmt.Println(path)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeWAV(path string, samples []float64, sampleRate float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return output.EncodeWAV(f, samples, sampleRate)
}

func parseKeys(args []string) ([]int, error) {
	keys := make([]int, 0, len(args))
	for _, a := range args {
		k, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("note %q: %w", a, err)
		}
		if k < 0 || k > 127 {
			return nil, errors.New("note must be in [0, 127]: " + a)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
