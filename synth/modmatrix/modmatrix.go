// Package modmatrix implements the four-slot modulation matrix: routes
// from control sources to synthesis destinations, resolved through a
// dispatch table that each engine variant builds once.
package modmatrix

import (
	"fmt"

	"github.com/cwbudde/algo-morph/dsp/core"
)

// NumRoutes is the number of concurrent routes per engine.
const NumRoutes = 4

// Source is a modulation source.
type Source int

const (
	SourceOff Source = iota
	SourceLFO1
	SourceLFO2
	SourcePitchBend
	SourceModWheel
	SourceAftertouch

	NumSources = int(SourceAftertouch) + 1
)

var sourceNames = [NumSources]string{
	"off", "lfo1", "lfo2", "pitch-bend", "mod-wheel", "aftertouch",
}

// String returns the source name.
func (s Source) String() string {
	if s.Valid() {
		return sourceNames[s]
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool { return s >= SourceOff && int(s) < NumSources }

// Destination is a modulation target.
type Destination int

const (
	DestOff Destination = iota
	DestLevel
	DestAmpAttack
	DestAmpDecay
	DestAmpSustain
	DestAmpRelease
	DestFilterAttack
	DestFilterDecay
	DestFilterSustain
	DestFilterRelease
	DestFilterCutoff
	DestFilterResonance
	DestFilterEnvAmount
	DestMorphX
	DestMorphY
	DestInharmonicity
	DestRoughness
	DestNoiseLevel
	DestNoiseColor
	DestImpulseMix
	DestParity
	DestShift
	DestRollOff
	DestUnisonDetune
	DestUnisonSpread
	DestPitch
	DestSaturation
	DestDelayTime
	DestDelayFeedback
	DestChorusMix
	DestReverbMix
	DestMasterLevel

	NumDestinations = int(DestMasterLevel) + 1
)

var destinationNames = [NumDestinations]string{
	"off", "level",
	"amp-attack", "amp-decay", "amp-sustain", "amp-release",
	"filter-attack", "filter-decay", "filter-sustain", "filter-release",
	"filter-cutoff", "filter-resonance", "filter-env-amount",
	"morph-x", "morph-y", "inharmonicity", "roughness",
	"noise-level", "noise-color", "impulse-mix",
	"parity", "shift", "roll-off", "unison-detune", "unison-spread",
	"pitch", "saturation", "delay-time", "delay-feedback",
	"chorus-mix", "reverb-mix", "master-level",
}

// String returns the destination name.
func (d Destination) String() string {
	if d.Valid() {
		return destinationNames[d]
	}
	return fmt.Sprintf("destination(%d)", int(d))
}

// Valid reports whether d is a known destination.
func (d Destination) Valid() bool { return d >= DestOff && int(d) < NumDestinations }

// ParseDestination returns the destination with the given name.
func ParseDestination(name string) (Destination, bool) {
	for i, n := range destinationNames {
		if n == name {
			return Destination(i), true
		}
	}
	return DestOff, false
}

// ParseSource returns the source with the given name.
func ParseSource(name string) (Source, bool) {
	for i, n := range sourceNames {
		if n == name {
			return Source(i), true
		}
	}
	return SourceOff, false
}

// Route is one row of the matrix.
type Route struct {
	Source      Source
	Destination Destination
	Amount      float64 // [-1, 1]
}

// Active reports whether r can contribute anything.
func (r Route) Active() bool {
	return r.Source != SourceOff && r.Destination != DestOff &&
		r.Source.Valid() && r.Destination.Valid() && r.Amount != 0
}

// Sanitized returns r with unknown enums mapped to Off and the amount
// clamped to [-1, 1].
func (r Route) Sanitized() Route {
	if !r.Source.Valid() {
		r.Source = SourceOff
	}
	if !r.Destination.Valid() {
		r.Destination = DestOff
	}
	r.Amount = core.Sanitize(r.Amount, -1, 1, 0)
	return r
}

// Sources holds the instantaneous source values. Unipolar sources are in
// [0, 1], bipolar ones in [-1, 1]. The Off slot is ignored.
type Sources [NumSources]float64

// Accumulators holds one summed contribution per destination in units of
// "fraction of the destination range".
type Accumulators [NumDestinations]float64

// Reset zeroes every accumulator.
func (a *Accumulators) Reset() { *a = Accumulators{} }

// Target tells which side of the engine owns a destination.
type Target uint8

const (
	TargetNone Target = iota
	TargetVoice
	TargetGlobal
)

// Table maps destinations to their owner. Destinations a variant does not
// implement have no entry and are skipped during evaluation.
type Table struct {
	targets [NumDestinations]Target
}

// NewTable builds a table from the destinations handled per voice and
// those handled by the global effects section.
func NewTable(voice, global []Destination) *Table {
	t := &Table{}
	for _, d := range voice {
		if d.Valid() && d != DestOff {
			t.targets[d] = TargetVoice
		}
	}
	for _, d := range global {
		if d.Valid() && d != DestOff {
			t.targets[d] = TargetGlobal
		}
	}
	return t
}

// Target returns the owner of d.
func (t *Table) Target(d Destination) Target {
	if !d.Valid() {
		return TargetNone
	}
	return t.targets[d]
}

// Destinations returns the destinations owned by target, in enum order.
func (t *Table) Destinations(target Target) []Destination {
	var out []Destination
	for i, tg := range t.targets {
		if tg == target && target != TargetNone {
			out = append(out, Destination(i))
		}
	}
	return out
}

// EvaluateTarget adds value·amount of every active route whose destination
// belongs to target into acc. acc is not cleared first.
func (t *Table) EvaluateTarget(routes *[NumRoutes]Route, src *Sources, target Target, acc *Accumulators) {
	for _, r := range routes {
		if !r.Active() || t.targets[r.Destination] != target {
			continue
		}
		acc[r.Destination] += src[r.Source] * r.Amount
	}
}

// Evaluate adds the contribution of every active route with a supported
// destination into acc.
func (t *Table) Evaluate(routes *[NumRoutes]Route, src *Sources, acc *Accumulators) {
	for _, r := range routes {
		if !r.Active() || t.targets[r.Destination] == TargetNone {
			continue
		}
		acc[r.Destination] += src[r.Source] * r.Amount
	}
}
