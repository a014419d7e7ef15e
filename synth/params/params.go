// Package params defines the per-voice and global parameter snapshots the
// engine latches once per block, together with the range table that
// validates every externally settable value.
package params

import (
	"math"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/effects"
	"github.com/cwbudde/algo-morph/dsp/envelope"
	"github.com/cwbudde/algo-morph/dsp/filter"
	"github.com/cwbudde/algo-morph/dsp/lfo"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
)

// Range is the valid interval and fallback of one parameter.
type Range struct {
	Min, Max, Default float64
}

// Sanitize clamps v into r, returning Default for non-finite input.
func (r Range) Sanitize(v float64) float64 {
	return core.Sanitize(v, r.Min, r.Max, r.Default)
}

// Limit clamps v to r without the debug assertion.
func (r Range) Limit(v float64) float64 {
	return core.Limit(v, r.Min, r.Max, r.Default)
}

// Span returns Max-Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// VelocityCurve shapes note-on velocity.
type VelocityCurve int

const (
	VelocityLinear VelocityCurve = iota
	VelocitySoft                 // v²
	VelocityHard                 // √v
)

// Apply maps a velocity in [0, 1] through the curve.
func (c VelocityCurve) Apply(v float64) float64 {
	v = core.Sanitize(v, 0, 1, 0)
	switch c {
	case VelocitySoft:
		return v * v
	case VelocityHard:
		return math.Sqrt(v)
	default:
		return v
	}
}

// String returns the curve name.
func (c VelocityCurve) String() string {
	switch c {
	case VelocitySoft:
		return "soft"
	case VelocityHard:
		return "hard"
	default:
		return "linear"
	}
}

// VoiceParams is the snapshot every voice reads. Times are milliseconds.
type VoiceParams struct {
	Level float64

	AmpAttack, AmpDecay, AmpSustain, AmpRelease             float64
	FilterAttack, FilterDecay, FilterSustain, FilterRelease float64
	FilterEnvAmount                                         float64 // octaves/6, bipolar

	FilterCutoff    float64 // Hz
	FilterResonance float64
	FilterMode      filter.Mode

	MorphX, MorphY float64

	Inharmonicity float64 // additive partial stretch
	Roughness     float64 // additive entropy jitter

	NoiseLevel float64 // resonator excitation
	NoiseColor float64
	ImpulseMix float64

	Parity  float64
	Shift   float64 // Hz
	RollOff float64

	UnisonDetune float64
	UnisonSpread float64

	VelocityCurve  VelocityCurve
	PitchBendRange float64 // semitones at full wheel deflection
}

// LFOConfig is the global configuration of one LFO.
type LFOConfig struct {
	Rate     float64 // Hz, ignored when Sync is set
	Waveform lfo.Waveform
	Sync     bool
	Division lfo.Division
	Depth    float64
}

// GlobalParams is the engine-wide snapshot.
type GlobalParams struct {
	MasterLevel   float64
	Saturation    float64
	DelayTime     float64 // seconds
	DelayFeedback float64
	DelayMix      float64
	ChorusMix     float64
	ReverbMix     float64
	Tempo         float64 // BPM

	LFO1, LFO2 LFOConfig
	Routes     [modmatrix.NumRoutes]modmatrix.Route
}

var destinationRanges = [modmatrix.NumDestinations]Range{
	modmatrix.DestLevel:           {0, 1, 0.8},
	modmatrix.DestAmpAttack:       {0, 10000, 10},
	modmatrix.DestAmpDecay:        {0, 10000, 200},
	modmatrix.DestAmpSustain:      {0, 1, 0.7},
	modmatrix.DestAmpRelease:      {0, 10000, 300},
	modmatrix.DestFilterAttack:    {0, 10000, 5},
	modmatrix.DestFilterDecay:     {0, 10000, 300},
	modmatrix.DestFilterSustain:   {0, 1, 0.5},
	modmatrix.DestFilterRelease:   {0, 10000, 300},
	modmatrix.DestFilterCutoff:    {20, 20000, 8000},
	modmatrix.DestFilterResonance: {0, 1, 0.3},
	modmatrix.DestFilterEnvAmount: {-1, 1, 0},
	modmatrix.DestMorphX:          {0, 1, 0},
	modmatrix.DestMorphY:          {0, 1, 0},
	modmatrix.DestInharmonicity:   {0, 1, 0},
	modmatrix.DestRoughness:       {0, 1, 0},
	modmatrix.DestNoiseLevel:      {0, 1, 0.5},
	modmatrix.DestNoiseColor:      {0, 1, 0.5},
	modmatrix.DestImpulseMix:      {0, 1, 0.5},
	modmatrix.DestParity:          {-1, 1, 0},
	modmatrix.DestShift:           {-1000, 1000, 0},
	modmatrix.DestRollOff:         {0, 1, 0},
	modmatrix.DestUnisonDetune:    {0, 0.1, 0},
	modmatrix.DestUnisonSpread:    {0, 1, 0},
	modmatrix.DestPitch:           {-12, 12, 0},
	modmatrix.DestSaturation:      {0, 1, 0},
	modmatrix.DestDelayTime:       {0.001, 2, 0.25},
	modmatrix.DestDelayFeedback:   {0, 0.95, 0.35},
	modmatrix.DestChorusMix:       {0, 1, 0},
	modmatrix.DestReverbMix:       {0, 1, 0},
	modmatrix.DestMasterLevel:     {0, 2, 0.8},
}

// Ranges of parameters that are not modulation destinations.
var (
	PitchBendRange = Range{0, 48, 48}
	DelayMix       = Range{0, 1, 0}
	Tempo          = Range{20, 300, 120}
	LFORate        = Range{0.01, 50, 1}
	LFODepth       = Range{0, 1, 1}
)

// DestinationRange returns the range of the parameter behind d. DestOff
// and unknown destinations return the zero Range.
func DestinationRange(d modmatrix.Destination) Range {
	if !d.Valid() {
		return Range{}
	}
	return destinationRanges[d]
}

// Modulated returns base offset by acc times the span of d, clamped to the
// range of d.
func Modulated(d modmatrix.Destination, base, acc float64) float64 {
	r := DestinationRange(d)
	if acc == 0 {
		return base
	}
	return r.Limit(base + acc*r.Span())
}

var voiceFields = [modmatrix.NumDestinations]func(*VoiceParams) *float64{
	modmatrix.DestLevel:           func(p *VoiceParams) *float64 { return &p.Level },
	modmatrix.DestAmpAttack:       func(p *VoiceParams) *float64 { return &p.AmpAttack },
	modmatrix.DestAmpDecay:        func(p *VoiceParams) *float64 { return &p.AmpDecay },
	modmatrix.DestAmpSustain:      func(p *VoiceParams) *float64 { return &p.AmpSustain },
	modmatrix.DestAmpRelease:      func(p *VoiceParams) *float64 { return &p.AmpRelease },
	modmatrix.DestFilterAttack:    func(p *VoiceParams) *float64 { return &p.FilterAttack },
	modmatrix.DestFilterDecay:     func(p *VoiceParams) *float64 { return &p.FilterDecay },
	modmatrix.DestFilterSustain:   func(p *VoiceParams) *float64 { return &p.FilterSustain },
	modmatrix.DestFilterRelease:   func(p *VoiceParams) *float64 { return &p.FilterRelease },
	modmatrix.DestFilterCutoff:    func(p *VoiceParams) *float64 { return &p.FilterCutoff },
	modmatrix.DestFilterResonance: func(p *VoiceParams) *float64 { return &p.FilterResonance },
	modmatrix.DestFilterEnvAmount: func(p *VoiceParams) *float64 { return &p.FilterEnvAmount },
	modmatrix.DestMorphX:          func(p *VoiceParams) *float64 { return &p.MorphX },
	modmatrix.DestMorphY:          func(p *VoiceParams) *float64 { return &p.MorphY },
	modmatrix.DestInharmonicity:   func(p *VoiceParams) *float64 { return &p.Inharmonicity },
	modmatrix.DestRoughness:       func(p *VoiceParams) *float64 { return &p.Roughness },
	modmatrix.DestNoiseLevel:      func(p *VoiceParams) *float64 { return &p.NoiseLevel },
	modmatrix.DestNoiseColor:      func(p *VoiceParams) *float64 { return &p.NoiseColor },
	modmatrix.DestImpulseMix:      func(p *VoiceParams) *float64 { return &p.ImpulseMix },
	modmatrix.DestParity:          func(p *VoiceParams) *float64 { return &p.Parity },
	modmatrix.DestShift:           func(p *VoiceParams) *float64 { return &p.Shift },
	modmatrix.DestRollOff:         func(p *VoiceParams) *float64 { return &p.RollOff },
	modmatrix.DestUnisonDetune:    func(p *VoiceParams) *float64 { return &p.UnisonDetune },
	modmatrix.DestUnisonSpread:    func(p *VoiceParams) *float64 { return &p.UnisonSpread },
}

var globalFields = [modmatrix.NumDestinations]func(*GlobalParams) *float64{
	modmatrix.DestSaturation:    func(p *GlobalParams) *float64 { return &p.Saturation },
	modmatrix.DestDelayTime:     func(p *GlobalParams) *float64 { return &p.DelayTime },
	modmatrix.DestDelayFeedback: func(p *GlobalParams) *float64 { return &p.DelayFeedback },
	modmatrix.DestChorusMix:     func(p *GlobalParams) *float64 { return &p.ChorusMix },
	modmatrix.DestReverbMix:     func(p *GlobalParams) *float64 { return &p.ReverbMix },
	modmatrix.DestMasterLevel:   func(p *GlobalParams) *float64 { return &p.MasterLevel },
}

// Field returns a pointer to the field behind d, or nil when d is not a
// voice parameter.
func (p *VoiceParams) Field(d modmatrix.Destination) *float64 {
	if !d.Valid() || voiceFields[d] == nil {
		return nil
	}
	return voiceFields[d](p)
}

// Field returns a pointer to the field behind d, or nil when d is not a
// global parameter.
func (p *GlobalParams) Field(d modmatrix.Destination) *float64 {
	if !d.Valid() || globalFields[d] == nil {
		return nil
	}
	return globalFields[d](p)
}

// DefaultVoiceParams returns every voice field at its default.
func DefaultVoiceParams() VoiceParams {
	p := VoiceParams{
		FilterMode:     filter.ModeLowPass,
		VelocityCurve:  VelocityLinear,
		PitchBendRange: PitchBendRange.Default,
	}
	for d, field := range voiceFields {
		if field != nil {
			*field(&p) = destinationRanges[d].Default
		}
	}
	return p
}

// DefaultGlobalParams returns a dry global section with two 1 Hz sine LFOs
// and an empty matrix.
func DefaultGlobalParams() GlobalParams {
	p := GlobalParams{
		DelayMix: DelayMix.Default,
		Tempo:    Tempo.Default,
		LFO1:     defaultLFO(),
		LFO2:     defaultLFO(),
	}
	for d, field := range globalFields {
		if field != nil {
			*field(&p) = destinationRanges[d].Default
		}
	}
	return p
}

func defaultLFO() LFOConfig {
	return LFOConfig{
		Rate:     LFORate.Default,
		Waveform: lfo.Sine,
		Division: lfo.Quarter,
		Depth:    LFODepth.Default,
	}
}

// Sanitize clamps every field into its range in place.
func (p *VoiceParams) Sanitize() {
	for d, field := range voiceFields {
		if field != nil {
			f := field(p)
			*f = destinationRanges[d].Sanitize(*f)
		}
	}
	if !p.FilterMode.Valid() {
		p.FilterMode = filter.ModeLowPass
	}
	if p.VelocityCurve < VelocityLinear || p.VelocityCurve > VelocityHard {
		p.VelocityCurve = VelocityLinear
	}
	p.PitchBendRange = PitchBendRange.Sanitize(p.PitchBendRange)
}

// Sanitize clamps every field into its range in place.
func (p *GlobalParams) Sanitize() {
	for d, field := range globalFields {
		if field != nil {
			f := field(p)
			*f = destinationRanges[d].Sanitize(*f)
		}
	}
	p.DelayMix = DelayMix.Sanitize(p.DelayMix)
	p.Tempo = Tempo.Sanitize(p.Tempo)
	p.LFO1.sanitize()
	p.LFO2.sanitize()
	for i := range p.Routes {
		p.Routes[i] = p.Routes[i].Sanitized()
	}
}

func (c *LFOConfig) sanitize() {
	c.Rate = LFORate.Sanitize(c.Rate)
	c.Depth = LFODepth.Sanitize(c.Depth)
	if !c.Waveform.Valid() {
		c.Waveform = lfo.Sine
	}
	if !c.Division.Valid() {
		c.Division = lfo.Quarter
	}
}

// Settings converts c into LFO settings at the given tempo.
func (c LFOConfig) Settings(tempo float64) lfo.Settings {
	return lfo.Settings{
		RateHz:   c.Rate,
		Waveform: c.Waveform,
		Sync:     c.Sync,
		Division: c.Division,
		Tempo:    tempo,
		Depth:    c.Depth,
	}
}

// AmpEnvelope returns the amplitude envelope settings.
func (p *VoiceParams) AmpEnvelope() envelope.Settings {
	return envelope.Settings{
		AttackMs:  p.AmpAttack,
		DecayMs:   p.AmpDecay,
		Sustain:   p.AmpSustain,
		ReleaseMs: p.AmpRelease,
	}
}

// FilterEnvelope returns the filter envelope settings.
func (p *VoiceParams) FilterEnvelope() envelope.Settings {
	return envelope.Settings{
		AttackMs:  p.FilterAttack,
		DecayMs:   p.FilterDecay,
		Sustain:   p.FilterSustain,
		ReleaseMs: p.FilterRelease,
	}
}

// Effects returns the effects chain settings.
func (p *GlobalParams) Effects() effects.Settings {
	return effects.Settings{
		Saturation:    p.Saturation,
		ChorusMix:     p.ChorusMix,
		DelayTime:     p.DelayTime,
		DelayFeedback: p.DelayFeedback,
		DelayMix:      p.DelayMix,
		ReverbMix:     p.ReverbMix,
		MasterLevel:   p.MasterLevel,
	}
}
