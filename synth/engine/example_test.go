package engine_test

import (
	"fmt"

	"github.com/cwbudde/algo-morph/synth/engine"
	"github.com/cwbudde/algo-morph/synth/midi"
)

func ExampleEngine_RenderNextBlock() {
	e, err := engine.NewAdditive(engine.WithPolyphony(4))
	if err != nil {
		fmt.Println(err)
		return
	}
	out := make([]float64, e.BlockSize())
	e.RenderNextBlock(out, []midi.Event{
		{Offset: 0, Msg: midi.NoteOn(0, 60, 100)},
		{Offset: 64, Msg: midi.NoteOn(0, 64, 100)},
	})
	fmt.Println(e.ActiveVoices(), e.Polyphony())
	// Output: 2 4
}
