//go:build amd64 && !purego

package resonator

import (
	"testing"

	"github.com/cwbudde/algo-morph/synth/resonator/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func TestKernelDispatch_AMD64Modes(t *testing.T) {
	tests := []struct {
		name     string
		features cpu.Features
		wantImpl string
	}{
		{
			name:     "generic-forced",
			features: cpu.Features{ForceGeneric: true, Architecture: "amd64"},
			wantImpl: "generic",
		},
		{
			name:     "sse2",
			features: cpu.Features{HasSSE2: true, Architecture: "amd64"},
			wantImpl: "lanes4",
		},
		{
			name:     "avx2",
			features: cpu.Features{HasSSE2: true, HasAVX2: true, Architecture: "amd64"},
			wantImpl: "lanes4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu.SetForcedFeatures(tt.features)
			defer cpu.ResetDetection()

			entry := registry.Global.Lookup(cpu.DetectFeatures())
			if entry == nil {
				t.Fatal("no kernel selected")
			}
			if entry.Name != tt.wantImpl {
				t.Fatalf("kernel = %q, want %q", entry.Name, tt.wantImpl)
			}
		})
	}
}
