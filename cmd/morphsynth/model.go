package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-morph/synth/model"
)

func runModel(args []string) error {
	fs := flag.NewFlagSet("model", flag.ContinueOnError)
	list := fs.Bool("list", false, "list built-in presets")
	preset := fs.String("preset", "", "export the named preset")
	out := fs.String("o", "", "output file for -preset (default stdout)")
	normalize := fs.Bool("normalize", false, "scale exported amplitudes to a peak of 1")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *list:
		for _, name := range model.PresetNames() {
			fmt.Println(name)
		}
		return nil
	case *preset != "":
		m, err := model.Preset(*preset)
		if err != nil {
			return err
		}
		if *normalize {
			m.Normalize()
		}
		if *out == "" {
			return model.Encode(os.Stdout, m)
		}
		return model.SaveFile(*out, m)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("nothing to do")
	}
	for _, name := range fs.Args() {
		m, err := resolveModel(name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		printModel(name, m)
	}
	return nil
}

func printModel(source string, m model.SpectralModel) {
	fmt.Printf("%s: %q %s\n", source, m.Name, m.Description)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "partial\tamplitude\toffset Hz\t")
	for i := range model.NumPartials {
		if m.Amplitudes[i] == 0 && m.FrequencyOffsets[i] == 0 {
			continue
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%.2f\t\n", i+1, m.Amplitudes[i], m.FrequencyOffsets[i])
	}
	tw.Flush()
}
