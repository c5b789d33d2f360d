// Package scaler applies the per-feature standardization fitted at training
// time and loads the scaler artifact that records it.
package scaler

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/phishlens/internal/engine/assembler"
)

// DimensionError reports a vector whose length does not match the scaler.
// It indicates the schema and scaler are out of sync and is never
// recoverable per request.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("scaler: vector length %d != scaler length %d", e.Got, e.Want)
}

// Scaler holds fitted (mean, scale) pairs indexed by schema position.
// It is immutable after construction and safe for concurrent use.
type Scaler struct {
	schema assembler.Schema
	mean   []float64
	scale  []float64
}

// New validates and builds a Scaler. A zero scale is stored as 1 so constant
// training columns pass through centred but unscaled.
func New(schema assembler.Schema, mean, scale []float64) (*Scaler, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	if len(mean) != len(schema) || len(scale) != len(schema) {
		return nil, fmt.Errorf("scaler: %d names, %d means, %d scales", len(schema), len(mean), len(scale))
	}

	s := &Scaler{
		schema: append(assembler.Schema(nil), schema...),
		mean:   make([]float64, len(mean)),
		scale:  make([]float64, len(scale)),
	}
	for i := range mean {
		if !finite(mean[i]) || !finite(scale[i]) {
			return nil, fmt.Errorf("scaler: non-finite parameter for %q", schema[i])
		}
		s.mean[i] = mean[i]
		s.scale[i] = scale[i]
		if s.scale[i] == 0 {
			s.scale[i] = 1
		}
	}
	return s, nil
}

// Schema returns a copy of the feature order recorded when the scaler was fit.
func (s *Scaler) Schema() assembler.Schema {
	return append(assembler.Schema(nil), s.schema...)
}

// Len returns the number of features the scaler expects.
func (s *Scaler) Len() int {
	return len(s.mean)
}

// Transform standardizes vec: out[i] = (vec[i] - mean[i]) / scale[i].
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.mean) {
		return nil, &DimensionError{Got: len(vec), Want: len(s.mean)}
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// artifact is the on-disk scaler layout. Field names follow the fitted
// attributes of a standard scaler.
type artifact struct {
	FeatureNames []string  `json:"feature_names_in" yaml:"feature_names_in"`
	Mean         []float64 `json:"mean" yaml:"mean"`
	Scale        []float64 `json:"scale" yaml:"scale"`
}

// Load reads a scaler artifact from a .json, .yaml or .yml file.
func Load(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	s, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return s, nil
}

// Parse decodes a scaler artifact. format is "json" or "yaml".
func Parse(data []byte, format string) (*Scaler, error) {
	var a artifact
	switch format {
	case "json":
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("scaler: failed to parse JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("scaler: failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("scaler: unsupported format %q", format)
	}
	return New(a.FeatureNames, a.Mean, a.Scale)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
