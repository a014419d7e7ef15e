package envelope

import (
	"math"
	"testing"
)

const sampleRate = 48000.0

func newTestEnvelope(s Settings) *Envelope {
	e := New(sampleRate)
	e.SetSettings(s)
	return e
}

func TestAttackMonotonicAndReachesUnity(t *testing.T) {
	e := newTestEnvelope(Settings{AttackMs: 10, DecayMs: 100, Sustain: 0.7, ReleaseMs: 500})
	e.NoteOn()

	prev := 0.0
	for i := 0; i < int(sampleRate); i++ {
		level := e.ProcessSample()
		if e.Stage() != StageAttack {
			if level != 1 {
				t.Fatalf("attack ended at level %v, want exactly 1", level)
			}
			return
		}
		if level < prev {
			t.Fatalf("attack decreased at sample %d: %v < %v", i, level, prev)
		}
		prev = level
	}
	t.Fatal("attack never completed")
}

func TestReleaseMonotonicAndReachesZero(t *testing.T) {
	e := newTestEnvelope(Settings{AttackMs: 1, DecayMs: 1, Sustain: 0.7, ReleaseMs: 50})
	e.NoteOn()
	for i := 0; i < 4800; i++ {
		e.ProcessSample()
	}
	if e.Stage() != StageSustain {
		t.Fatalf("stage = %v, want sustain", e.Stage())
	}

	e.NoteOff()
	prev := e.Level()
	for i := 0; i < int(sampleRate)*2; i++ {
		level := e.ProcessSample()
		if level > prev {
			t.Fatalf("release increased at sample %d: %v > %v", i, level, prev)
		}
		prev = level
		if e.Stage() == StageIdle {
			if level != 0 {
				t.Fatalf("idle level = %v, want exactly 0", level)
			}
			return
		}
	}
	t.Fatal("release never reached idle")
}

func TestAttackScenario(t *testing.T) {
	e := newTestEnvelope(Settings{AttackMs: 10, DecayMs: 100, Sustain: 0.7, ReleaseMs: 500})
	e.NoteOn()

	n := int(math.Ceil(math.Log(10)*10*0.001*sampleRate)) + 1
	var level float64
	for i := 0; i < n; i++ {
		level = e.ProcessSample()
	}
	if math.Abs(level-1) > 0.01 {
		t.Fatalf("level after %d samples = %v, want within 1%% of 1", n, level)
	}
}

func TestReleaseScenario(t *testing.T) {
	const releaseMs = 500.0
	e := newTestEnvelope(Settings{AttackMs: 10, DecayMs: 100, Sustain: 0.7, ReleaseMs: releaseMs})
	e.NoteOn()
	for i := 0; i < int(sampleRate); i++ {
		e.ProcessSample()
	}

	e.NoteOff()
	releaseSamples := releaseMs * 0.001 * sampleRate
	limit := int(3 * math.Log(0.7/0.0001) * releaseSamples)
	for i := 0; i < limit; i++ {
		if e.ProcessSample() < 0.01 {
			return
		}
	}
	t.Fatalf("level did not fall below 0.01 within %d samples", limit)
}

func TestDecaySettlesOnSustain(t *testing.T) {
	e := newTestEnvelope(Settings{AttackMs: 0, DecayMs: 5, Sustain: 0.4, ReleaseMs: 5})
	e.NoteOn()
	for i := 0; i < 4800; i++ {
		e.ProcessSample()
	}
	if e.Stage() != StageSustain || e.Level() != 0.4 {
		t.Fatalf("stage=%v level=%v, want sustain at 0.4", e.Stage(), e.Level())
	}
}

func TestDecayGlidesUpToRaisedSustain(t *testing.T) {
	e := newTestEnvelope(Settings{AttackMs: 0, DecayMs: 100, Sustain: 0.2, ReleaseMs: 5})
	e.NoteOn()
	for e.Level() == 0 || e.Level() > 0.5 {
		e.ProcessSample()
		if e.Stage() != StageDecay && e.Stage() != StageAttack {
			t.Fatalf("left decay early in stage %v", e.Stage())
		}
	}

	e.SetSustain(0.9)
	prev := e.Level()
	got := e.ProcessSample()
	if e.Stage() != StageDecay || got <= prev || got-prev > 0.01 {
		t.Fatalf("after raising sustain: stage=%v level %v -> %v, want a small rise", e.Stage(), prev, got)
	}
	for range int(sampleRate) {
		e.ProcessSample()
	}
	if e.Stage() != StageSustain || e.Level() != 0.9 {
		t.Fatalf("stage=%v level=%v, want sustain at 0.9", e.Stage(), e.Level())
	}
}

func TestZeroTimesJump(t *testing.T) {
	e := newTestEnvelope(Settings{AttackMs: 0, DecayMs: 0, Sustain: 0.5, ReleaseMs: 0})
	e.NoteOn()
	if got := e.ProcessSample(); got != 1 {
		t.Fatalf("first sample = %v, want 1", got)
	}
	if got := e.ProcessSample(); got != 0.5 {
		t.Fatalf("second sample = %v, want 0.5", got)
	}
	e.NoteOff()
	if got := e.ProcessSample(); got != 0 || e.IsActive() {
		t.Fatalf("after release: level=%v active=%v", got, e.IsActive())
	}
}

func TestPublishIsLatchedLazily(t *testing.T) {
	e := New(sampleRate)
	e.Publish(Settings{AttackMs: 0, DecayMs: 0, Sustain: 0.25, ReleaseMs: 0})

	if e.Settings().Sustain == 0.25 {
		t.Fatal("settings applied before the audio goroutine latched them")
	}

	e.NoteOn()
	e.ProcessSample()
	e.ProcessSample()
	if e.Settings().Sustain != 0.25 || e.Level() != 0.25 {
		t.Fatalf("sustain=%v level=%v, want 0.25", e.Settings().Sustain, e.Level())
	}
}

func TestSanitizedSettings(t *testing.T) {
	got := Settings{AttackMs: math.NaN(), DecayMs: -1, Sustain: 3, ReleaseMs: math.Inf(1)}.Sanitized()
	want := Settings{AttackMs: defaultAttackMs, DecayMs: 0, Sustain: 1, ReleaseMs: defaultReleaseMs}
	if got != want {
		t.Fatalf("Sanitized() = %+v, want %+v", got, want)
	}
}

func TestResetIdempotent(t *testing.T) {
	e := New(sampleRate)
	e.NoteOn()
	for i := 0; i < 100; i++ {
		e.ProcessSample()
	}

	e.Reset()
	stage, level := e.Stage(), e.Level()
	e.Reset()
	if e.Stage() != stage || e.Level() != level {
		t.Fatalf("second reset changed state")
	}
	if stage != StageIdle || level != 0 {
		t.Fatalf("after reset stage=%v level=%v", stage, level)
	}
}
