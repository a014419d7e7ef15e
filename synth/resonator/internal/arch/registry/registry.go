// Package registry holds the resonator-bank kernels available on this
// platform and picks the best one for the running CPU.
package registry

import (
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// NumLanes is the number of band-pass filters in a bank.
const NumLanes = 128

// Lanes stores every filter of a bank as struct-of-arrays so kernels can
// walk several filters per iteration. Each lane is a constant-peak RBJ
// band-pass (B1 = 0) in Direct Form II Transposed.
type Lanes struct {
	B0, B2 [NumLanes]float64
	A1, A2 [NumLanes]float64
	Z1, Z2 [NumLanes]float64
	Gain   [NumLanes]float64
}

// ProcessSampleFn feeds excitation x to the first n lanes and returns their
// gain-weighted sum. n is a multiple of 4.
type ProcessSampleFn func(l *Lanes, x float64, n int) float64

// OpEntry is one registered kernel implementation.
type OpEntry struct {
	Name          string
	SIMDLevel     cpu.SIMDLevel
	Priority      int
	ProcessSample ProcessSampleFn
}

// OpRegistry stores available implementations.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
	sorted  bool
}

// Global is the default kernel registry.
var Global = &OpRegistry{}

// Register adds an implementation entry.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	r.sorted = false
}

// Lookup returns the highest-priority implementation supported by features.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sorted {
		r.sortByPriority()
		r.sorted = true
	}

	for i := range r.entries {
		entry := &r.entries[i]
		if cpu.Supports(features, entry.SIMDLevel) {
			return entry
		}
	}
	return nil
}

// ListEntries returns a copy of entries for tests/debugging.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]OpEntry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

func (r *OpRegistry) sortByPriority() {
	for i := 1; i < len(r.entries); i++ {
		key := r.entries[i]
		j := i - 1
		for j >= 0 && r.entries[j].Priority < key.Priority {
			r.entries[j+1] = r.entries[j]
			j--
		}
		r.entries[j+1] = key
	}
}
