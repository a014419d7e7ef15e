// Package model defines the spectral model: 64 partial amplitudes and
// frequency offsets describing one timbre, and its JSON file format.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// NumPartials is the number of partials described by a model.
const NumPartials = 64

// ErrInvalidModel is returned when a model file is malformed.
var ErrInvalidModel = errors.New("model: invalid spectral model")

// SpectralModel is one timbre snapshot. Amplitudes are conventionally in
// [0, 1]; frequency offsets are in Hz and added to each partial's
// harmonic frequency. A zero SpectralModel is silent and not Valid.
type SpectralModel struct {
	Amplitudes       [NumPartials]float64
	FrequencyOffsets [NumPartials]float64
	Name             string
	Description      string
	Valid            bool
}

type fileModel struct {
	Amplitudes       []float64 `json:"amplitudes"`
	FrequencyOffsets []float64 `json:"frequencyOffsets"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
}

// Decode reads a JSON model. Arrays shorter than NumPartials are
// zero-padded.
func Decode(r io.Reader) (SpectralModel, error) {
	var f fileModel
	dec := json.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return SpectralModel{}, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	var m SpectralModel
	if err := fill(&m.Amplitudes, f.Amplitudes, "amplitudes", true); err != nil {
		return SpectralModel{}, err
	}
	if err := fill(&m.FrequencyOffsets, f.FrequencyOffsets, "frequencyOffsets", false); err != nil {
		return SpectralModel{}, err
	}
	m.Name = f.Name
	m.Description = f.Description
	m.Valid = true
	return m, nil
}

func fill(dst *[NumPartials]float64, src []float64, field string, nonNegative bool) error {
	if len(src) > NumPartials {
		return fmt.Errorf("%w: %s has %d entries, max %d", ErrInvalidModel, field, len(src), NumPartials)
	}
	for i, v := range src {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d] is not finite", ErrInvalidModel, field, i)
		}
		if nonNegative && v < 0 {
			return fmt.Errorf("%w: %s[%d] must be >= 0: %f", ErrInvalidModel, field, i, v)
		}
		dst[i] = v
	}
	return nil
}

// Encode writes m as indented JSON.
func Encode(w io.Writer, m SpectralModel) error {
	f := fileModel{
		Amplitudes:       m.Amplitudes[:],
		FrequencyOffsets: m.FrequencyOffsets[:],
		Name:             m.Name,
		Description:      m.Description,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("model: encode %q: %w", m.Name, err)
	}
	return nil
}

// LoadFile decodes the model stored at path.
func LoadFile(path string) (SpectralModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return SpectralModel{}, fmt.Errorf("model: %w", err)
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return SpectralModel{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SaveFile writes m to path, replacing any existing file.
func SaveFile(path string, m SpectralModel) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("model: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("model: %w", cerr)
		}
	}()
	return Encode(f, m)
}

// Peak returns the largest amplitude in m.
func (m *SpectralModel) Peak() float64 {
	var peak float64
	for _, a := range m.Amplitudes {
		peak = max(peak, a)
	}
	return peak
}

// Normalize scales the amplitudes so the largest is 1. Silent models are
// left unchanged.
func (m *SpectralModel) Normalize() {
	peak := m.Peak()
	if peak == 0 {
		return
	}
	for i := range m.Amplitudes {
		m.Amplitudes[i] /= peak
	}
}
