package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float64
		want    float64
		wantErr bool
	}{
		{"identical", []float64{1, 2}, []float64{1, 2}, 0, false},
		{"offset", []float64{1, 2, 3}, []float64{1, 2.5, 2}, 1, false},
		{"mismatch", []float64{1}, []float64{1, 2}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaxAbsDiff(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequireHelpersPass(t *testing.T) {
	data := []float64{0, 1e-9, -1e-9}
	RequireFinite(t, data)
	RequireSilent(t, data, 1e-6)
	RequireIdentical(t, data, []float64{0, 1e-9, -1e-9})
	RequireSliceNearlyEqual(t, data, []float64{0, 0, 0}, 1e-6)
	if math.IsNaN(Peak(data)) {
		t.Fatal("Peak returned NaN")
	}
}
