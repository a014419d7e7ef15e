package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rakyll/portmidi"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-morph/synth/midi"
	"github.com/cwbudde/algo-morph/synth/output"
)

const midiPollInterval = 2 * time.Millisecond

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	device := fs.Int("device", -1, "MIDI input device id (default: system default)")
	listDevices := fs.Bool("list-devices", false, "list MIDI devices and exit")
	latency := fs.Duration("latency", 50*time.Millisecond, "speaker buffer length")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := portmidi.Initialize(); err != nil {
		return fmt.Errorf("portmidi: %w", err)
	}
	defer portmidi.Terminate()

	if *listDevices {
		for id := range portmidi.CountDevices() {
			info := portmidi.Info(portmidi.DeviceID(id))
			if info == nil {
				continue
			}
			fmt.Printf("%d\t%s\t%s\tinput=%v output=%v\n", id, info.Interface, info.Name, info.IsInputAvailable, info.IsOutputAvailable)
		}
		return nil
	}

	id := portmidi.DeviceID(*device)
	if *device < 0 {
		id = portmidi.DefaultInputDeviceID()
	}
	in, err := portmidi.NewInputStream(id, 1024)
	if err != nil {
		return fmt.Errorf("open MIDI device %d: %w", id, err)
	}
	defer in.Close()

	e, err := ef.newEngine()
	if err != nil {
		return err
	}
	streamer := output.NewStreamer(e, output.DefaultInboxSize)

	sr := beep.SampleRate(int(e.SampleRate()))
	if err := speaker.Init(sr, sr.N(*latency)); err != nil {
		return fmt.Errorf("speaker: %w", err)
	}
	defer speaker.Close()
	speaker.Play(streamer)
	log.Printf("playing %s engine from MIDI device %d, interrupt to stop", e.Kind(), id)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.NewTicker(midiPollInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				streamer.Stop()
				return nil
			case <-t.C:
			}
			events, err := in.Read(1024)
			if err != nil {
				return fmt.Errorf("read MIDI: %w", err)
			}
			for _, ev := range events {
				msg := midi.Message{Status: byte(ev.Status), Data1: byte(ev.Data1), Data2: byte(ev.Data2)}
				if msg.Status < 0x80 || msg.Status >= 0xF0 {
					continue
				}
				if !streamer.Send(msg) {
					log.Printf("MIDI inbox full, dropped %v", msg)
				}
			}
		}
	})
	return g.Wait()
}
