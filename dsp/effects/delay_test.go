package effects

import (
	"errors"
	"math"
	"testing"
)

func TestNewDelayValidation(t *testing.T) {
	if _, err := NewDelay(math.NaN()); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("err = %v, want ErrInvalidSampleRate", err)
	}
}

func TestDelayImpulse(t *testing.T) {
	const sr = 1000.0
	d, err := NewDelay(sr)
	if err != nil {
		t.Fatal(err)
	}
	d.SetTime(0.01) // 10 samples
	d.Reset()
	d.SetFeedback(0.5)
	d.SetMix(1)

	out := make([]float64, 40)
	out[0] = 1
	d.ProcessInPlace(out)

	for i, want := range map[int]float64{10: 1, 20: 0.5, 30: 0.25} {
		if math.Abs(out[i]-want) > 1e-12 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
	if out[5] != 0 {
		t.Fatalf("out[5] = %v, want 0", out[5])
	}
}

func TestDelayClampsSettings(t *testing.T) {
	d, err := NewDelay(48000)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		set  func()
		get  func() float64
		want float64
	}{
		{"time high", func() { d.SetTime(10) }, d.Time, maxDelayTimeSeconds},
		{"time low", func() { d.SetTime(0) }, d.Time, minDelayTimeSeconds},
		{"time nan", func() { d.SetTime(math.NaN()) }, d.Time, defaultDelayTimeSeconds},
		{"feedback", func() { d.SetFeedback(1.5) }, d.Feedback, maxDelayFeedback},
		{"mix", func() { d.SetMix(-1) }, d.Mix, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set()
			if got := tt.get(); got != tt.want {
				t.Fatalf("got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelayMaxTimeStaysInBuffer(t *testing.T) {
	d, err := NewDelay(48000)
	if err != nil {
		t.Fatal(err)
	}
	d.SetTime(maxDelayTimeSeconds)
	d.Reset()
	d.SetMix(1)
	buf := make([]float64, 96001)
	buf[0] = 1
	d.ProcessInPlace(buf)
	if math.Abs(buf[96000]-1) > 1e-12 {
		t.Fatalf("echo at 2 s = %v, want 1", buf[96000])
	}
}
