// Package engine implements the polyphonic synthesizer: a fixed pool of
// voices, MIDI routing, the modulation matrix, two global LFOs and the
// global effects chain.
//
// Control goroutines talk to an Engine through SetGlobalParams,
// SetVoiceParams, SetPolyphony, LoadModel and the telemetry getters. Every
// other method belongs to the audio goroutine.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-morph/dsp/core"
	"github.com/cwbudde/algo-morph/dsp/effects"
	"github.com/cwbudde/algo-morph/dsp/lfo"
	"github.com/cwbudde/algo-morph/synth/midi"
	"github.com/cwbudde/algo-morph/synth/model"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
	"github.com/cwbudde/algo-morph/synth/params"
	"github.com/cwbudde/algo-morph/synth/voice"
	"github.com/cwbudde/algo-vecmath"
)

const (
	// MaxVoices is the fixed size of the voice pool.
	MaxVoices = 32
	// DefaultPolyphony is the active-voice limit of a new engine.
	DefaultPolyphony = 16
	// NumSlots is the number of morph model slots.
	NumSlots = 4

	numChannels = 16
	seedStride  = 0x9E3779B9
)

// Kind selects the synthesis strategy of every voice in an engine.
type Kind int

const (
	KindAdditive Kind = iota
	KindResonator
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAdditive:
		return "additive"
	case KindResonator:
		return "resonator"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "additive":
		return KindAdditive, nil
	case "resonator":
		return KindResonator, nil
	default:
		return 0, fmt.Errorf("engine: unknown kind %q", name)
	}
}

var (
	// ErrInvalidSlot is returned by LoadModel for slots outside [0, 3].
	ErrInvalidSlot = errors.New("engine: model slot must be in [0, 3]")
	// ErrInvalidSampleRate is returned by Prepare for non-positive rates.
	ErrInvalidSampleRate = errors.New("engine: sample rate must be > 0")
	// ErrInvalidBlockSize is returned by Prepare for non-positive sizes.
	ErrInvalidBlockSize = errors.New("engine: block size must be > 0")
)

// globalDestinations are handled by the effects section in every variant.
var globalDestinations = []modmatrix.Destination{
	modmatrix.DestSaturation,
	modmatrix.DestDelayTime,
	modmatrix.DestDelayFeedback,
	modmatrix.DestChorusMix,
	modmatrix.DestReverbMix,
	modmatrix.DestMasterLevel,
}

// Engine is a polyphonic spectral-morphing synthesizer.
type Engine struct {
	kind       Kind
	sampleRate float64
	blockSize  int
	seed       uint32

	voices [MaxVoices]voice.Voice
	gate   [MaxVoices]bool // key held (note-on seen, no note-off yet)
	held   [MaxVoices]bool // note-off deferred by the sustain pedal
	limit  int
	table  *modmatrix.Table

	globalIn  *core.Snapshot[params.GlobalParams]
	voiceIn   *core.Snapshot[params.VoiceParams]
	global    *core.Reader[params.GlobalParams]
	voicePar  *core.Reader[params.VoiceParams]
	polyIn    atomic.Int32
	modelsIn  [NumSlots]*core.Snapshot[model.SpectralModel]
	modelsCur [NumSlots]*core.Reader[model.SpectralModel]

	lfos *lfo.Pair
	fx   *effects.Chain

	// MIDI controller state.
	modWheel  float64
	bend      [numChannels]float64 // wheel position in [-1, 1]
	pressure  [numChannels]float64
	sustain   bool
	lastVoice int

	scratch []float64
	totals  modmatrix.Accumulators

	telemetry telemetry
}

// New returns an engine of the given kind, prepared for the configured
// sample rate and block size.
func New(kind Kind, opts ...Option) (*Engine, error) {
	if kind != KindAdditive && kind != KindResonator {
		return nil, fmt.Errorf("engine: unknown kind %d", int(kind))
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := &Engine{
		kind:     kind,
		seed:     cfg.Seed,
		limit:    cfg.polyphony,
		globalIn: core.NewSnapshot(params.DefaultGlobalParams()),
		voiceIn:  core.NewSnapshot(params.DefaultVoiceParams()),
		lfos:     lfo.NewPair(cfg.SampleRate, cfg.Seed),
	}
	e.global = core.NewReader(e.globalIn)
	e.voicePar = core.NewReader(e.voiceIn)
	e.polyIn.Store(int32(cfg.polyphony))

	var dests []modmatrix.Destination
	for i := range e.voices {
		switch kind {
		case KindAdditive:
			e.voices[i] = voice.NewAdditive(cfg.SampleRate)
			dests = voice.AdditiveDestinations
		case KindResonator:
			e.voices[i] = voice.NewResonator(cfg.SampleRate)
			dests = voice.ResonatorDestinations
		}
		e.voices[i].SetSeed(e.voiceSeed(i))
	}
	e.table = modmatrix.NewTable(dests, globalDestinations)

	sine := model.Sine()
	for slot := range e.modelsIn {
		m := sine
		if slot < len(cfg.models) {
			m = cfg.models[slot]
		}
		e.modelsIn[slot] = core.NewSnapshot(m)
		e.modelsCur[slot] = core.NewReader(e.modelsIn[slot])
		e.loadSlot(slot)
	}

	if err := e.Prepare(cfg.SampleRate, cfg.BlockSize); err != nil {
		return nil, err
	}
	return e, nil
}

// NewAdditive returns an engine whose voices use the additive partial bank.
func NewAdditive(opts ...Option) (*Engine, error) { return New(KindAdditive, opts...) }

// NewResonator returns an engine whose voices use the resonator filter
// bank.
func NewResonator(opts ...Option) (*Engine, error) { return New(KindResonator, opts...) }

func (e *Engine) voiceSeed(i int) uint32 {
	s := e.seed + uint32(i)*seedStride
	if s == 0 {
		s = 1
	}
	return s
}

// Kind returns the synthesis strategy.
func (e *Engine) Kind() Kind { return e.kind }

// SampleRate returns the prepared sample rate.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// BlockSize returns the prepared block size.
func (e *Engine) BlockSize() int { return e.blockSize }

// Prepare configures every module for a new sample rate and maximum block
// size and clears all audio state. It allocates and must not be called
// while rendering.
func (e *Engine) Prepare(sampleRate float64, blockSize int) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if blockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	fx, err := effects.NewChain(sampleRate)
	if err != nil {
		return fmt.Errorf("engine: effects: %w", err)
	}

	e.sampleRate = sampleRate
	e.blockSize = blockSize
	e.fx = fx
	e.scratch = make([]float64, blockSize)
	e.lfos.SetSampleRate(sampleRate)
	for _, v := range e.voices {
		v.Prepare(sampleRate, blockSize)
	}
	e.Reset()
	return nil
}

// Reset silences every voice, clears effect tails, restarts the LFOs and
// forgets controller state.
func (e *Engine) Reset() {
	for i, v := range e.voices {
		v.Reset()
		v.SetSeed(e.voiceSeed(i))
		v.SetPitchBend(0)
		v.SetPressure(0)
		v.SetTimbre(0)
		e.gate[i] = false
		e.held[i] = false
	}
	e.fx.Reset()
	e.lfos.Reset()
	e.modWheel = 0
	e.bend = [numChannels]float64{}
	e.pressure = [numChannels]float64{}
	e.sustain = false
	e.lastVoice = 0
	e.UpdateParameters()
	e.publishTelemetry()
}

// SetGlobalParams publishes a global parameter snapshot. Safe for
// concurrent use; the audio goroutine picks it up at the next block.
func (e *Engine) SetGlobalParams(p params.GlobalParams) {
	p.Sanitize()
	e.globalIn.Store(p)
}

// GlobalParams returns the most recently published global snapshot.
func (e *Engine) GlobalParams() params.GlobalParams { return e.globalIn.Load() }

// SetVoiceParams publishes a voice parameter snapshot. Safe for concurrent
// use.
func (e *Engine) SetVoiceParams(p params.VoiceParams) {
	p.Sanitize()
	e.voiceIn.Store(p)
}

// VoiceParams returns the most recently published voice snapshot.
func (e *Engine) VoiceParams() params.VoiceParams { return e.voiceIn.Load() }

// UpdateGlobalParams applies fn to the current global snapshot and
// publishes the result. Safe for concurrent use.
func (e *Engine) UpdateGlobalParams(fn func(*params.GlobalParams)) {
	e.globalIn.Update(func(p *params.GlobalParams) {
		fn(p)
		p.Sanitize()
	})
}

// UpdateVoiceParams applies fn to the current voice snapshot and publishes
// the result. Safe for concurrent use.
func (e *Engine) UpdateVoiceParams(fn func(*params.VoiceParams)) {
	e.voiceIn.Update(func(p *params.VoiceParams) {
		fn(p)
		p.Sanitize()
	})
}

// SetPolyphony sets the active-voice limit, clamped to [1, MaxVoices].
// Safe for concurrent use; voices above a lowered limit are silenced at
// the next block.
func (e *Engine) SetPolyphony(n int) {
	e.polyIn.Store(int32(clampPolyphony(n)))
}

// Polyphony returns the active-voice limit in effect for the current block.
func (e *Engine) Polyphony() int { return e.limit }

// LoadModel publishes m into a morph slot. Safe for concurrent use; voices
// receive it at the next block.
func (e *Engine) LoadModel(m model.SpectralModel, slot int) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	e.modelsIn[slot].Store(m)
	return nil
}

func (e *Engine) loadSlot(slot int) {
	m := &e.modelsCur[slot].Value
	for _, v := range e.voices {
		// Slot is in range, so LoadModel cannot fail.
		_ = v.LoadModel(slot, m)
	}
}

// UpdateParameters latches pending parameters, polyphony and models, then
// re-evaluates the modulation matrix from scratch. RenderNextBlock calls
// it once per block.
func (e *Engine) UpdateParameters() {
	e.global.Latch()
	e.voicePar.Latch()
	for slot, r := range e.modelsCur {
		if r.Latch() {
			e.loadSlot(slot)
		}
	}

	if limit := int(e.polyIn.Load()); limit != e.limit {
		for i := limit; i < e.limit; i++ {
			e.voices[i].Reset()
			e.gate[i] = false
			e.held[i] = false
		}
		e.limit = limit
	}

	g := &e.global.Value
	e.lfos.SetSettings(g.LFO1.Settings(g.Tempo), g.LFO2.Settings(g.Tempo))
	lfoValues := e.lfos.ProcessBlock(0)

	var src modmatrix.Sources
	src[modmatrix.SourceLFO1] = lfoValues[0]
	src[modmatrix.SourceLFO2] = lfoValues[1]
	src[modmatrix.SourceModWheel] = e.modWheel

	// Global destinations see the omni channel's wheel and pressure.
	src[modmatrix.SourcePitchBend] = e.bend[0]
	src[modmatrix.SourceAftertouch] = e.pressure[0]
	var fxMod modmatrix.Accumulators
	e.table.EvaluateTarget(&g.Routes, &src, modmatrix.TargetGlobal, &fxMod)
	e.totals.Reset()
	e.table.Evaluate(&g.Routes, &src, &e.totals)

	fx := *g
	for _, d := range globalDestinations {
		if f := fx.Field(d); f != nil {
			*f = params.Modulated(d, *f, fxMod[d])
		}
	}
	e.fx.SetSettings(fx.Effects())

	vp := &e.voicePar.Value
	for i, v := range e.voices {
		mod := v.Mod()
		mod.Reset()
		if i < e.limit {
			ch := v.Channel()
			src[modmatrix.SourcePitchBend] = e.bend[ch]
			src[modmatrix.SourceAftertouch] = v.Pressure()
			e.table.EvaluateTarget(&g.Routes, &src, modmatrix.TargetVoice, mod)
		}
		v.ApplyParams(vp)
	}
}

// RenderNextBlock renders len(out) samples into out, applying each event
// at its sample offset. Events must be ordered by offset; offsets outside
// the block are clamped to it.
func (e *Engine) RenderNextBlock(out []float64, events []midi.Event) {
	e.UpdateParameters()

	pos := 0
	for _, ev := range events {
		at := min(max(ev.Offset, pos), len(out))
		e.renderVoices(out[pos:at])
		pos = at
		e.HandleMidiMessage(ev.Msg)
	}
	e.renderVoices(out[pos:])

	e.fx.Process(out)
	e.lfos.ProcessBlock(len(out))
	e.publishTelemetry()
}

// renderVoices overwrites seg with the sum of every active voice below the
// polyphony limit.
func (e *Engine) renderVoices(seg []float64) {
	core.Zero(seg)
	for len(seg) > 0 {
		n := min(len(seg), len(e.scratch))
		buf := e.scratch[:n]
		for i := range e.limit {
			v := e.voices[i]
			if !v.IsActive() {
				continue
			}
			v.Render(buf)
			vecmath.AddBlockInPlace(seg[:n], buf)
		}
		seg = seg[n:]
	}
}
