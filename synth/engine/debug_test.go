//go:build synthdebug

package engine

import (
	"testing"

	"github.com/cwbudde/algo-morph/dsp/lfo"
	"github.com/cwbudde/algo-morph/internal/testutil"
	"github.com/cwbudde/algo-morph/synth/midi"
	"github.com/cwbudde/algo-morph/synth/modmatrix"
	"github.com/cwbudde/algo-morph/synth/params"
)

// Modulation that overshoots a destination range is clamped on the render
// path; debug assertions only guard values handed in through the API.
func TestOvershootingModulationDoesNotAssert(t *testing.T) {
	for _, kind := range []Kind{KindAdditive, KindResonator} {
		t.Run(kind.String(), func(t *testing.T) {
			e := newTestEngine(t, kind)
			e.UpdateVoiceParams(func(p *params.VoiceParams) {
				p.MorphX = 0.5
				p.FilterCutoff = 18000
				p.FilterEnvAmount = 1
			})
			e.UpdateGlobalParams(func(g *params.GlobalParams) {
				g.LFO1.Waveform = lfo.Square
				g.LFO1.Rate = 20
				g.Routes[0] = modmatrix.Route{Source: modmatrix.SourceLFO1, Destination: modmatrix.DestMorphX, Amount: 1}
				g.Routes[1] = modmatrix.Route{Source: modmatrix.SourceLFO1, Destination: modmatrix.DestPitch, Amount: 1}
				g.Routes[2] = modmatrix.Route{Source: modmatrix.SourceLFO1, Destination: modmatrix.DestMasterLevel, Amount: 1}
			})
			// Note 127 bent and pitch-modulated up lands above Nyquist.
			out := render(e, 8*blockSize,
				at(0, midi.PitchBend(0, 1)),
				at(0, midi.NoteOn(0, 127, 100)),
				at(0, midi.NoteOn(0, 60, 100)))
			testutil.RequireFinite(t, out)
		})
	}
}
