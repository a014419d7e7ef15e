package main

import "flag"

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.kind, "kind", "additive", "voice kind: additive or resonator")
	fs.StringVar(&f.models, "models", "", "comma-separated presets or model files for morph slots A,B,C,D")
	fs.Float64Var(&f.sampleRate, "sample-rate", 48000, "sample rate in Hz")
	fs.IntVar(&f.blockSize, "block-size", 512, "engine block size in samples")
	fs.IntVar(&f.polyphony, "polyphony", 16, "active-voice limit (1..32)")
	fs.UintVar(&f.seed, "seed", 1, "seed for noise, jitter and sample-and-hold")
	fs.Float64Var(&f.morphX, "morph-x", 0, "morph position between slots A/B and C/D")
	fs.Float64Var(&f.morphY, "morph-y", 0, "morph position between rows AB and CD")
	fs.Float64Var(&f.resonance, "resonance", 0.3, "filter or resonator-bank resonance (0..1)")
	fs.Float64Var(&f.reverb, "reverb", 0, "reverb mix (0..1)")
	fs.Float64Var(&f.delay, "delay", 0, "delay mix (0..1)")
}
