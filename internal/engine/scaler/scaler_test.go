package scaler

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/phishlens/internal/engine/assembler"
)

func TestTransform(t *testing.T) {
	s, err := New(assembler.Schema{"a", "b", "c"}, []float64{1, 2, 3}, []float64{2, 4, 0})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Transform([]float64{3, 2, 10})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 0, 7} // zero scale behaves as 1
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestTransform_LengthMismatch(t *testing.T) {
	s, err := New(assembler.Schema{"a", "b"}, []float64{0, 0}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, vec := range [][]float64{{1}, {1, 2, 3}, nil} {
		_, err := s.Transform(vec)
		var de *DimensionError
		if !errors.As(err, &de) {
			t.Fatalf("Transform(%v): expected DimensionError, got %v", vec, err)
		}
		if de.Want != 2 || de.Got != len(vec) {
			t.Fatalf("DimensionError = %+v", de)
		}
	}
}

func TestTransform_DoesNotMutateInput(t *testing.T) {
	s, _ := New(assembler.Schema{"a"}, []float64{1}, []float64{2})
	in := []float64{5}
	s.Transform(in)
	if in[0] != 5 {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		schema assembler.Schema
		mean   []float64
		scale  []float64
	}{
		{"empty", nil, nil, nil},
		{"short mean", assembler.Schema{"a", "b"}, []float64{1}, []float64{1, 1}},
		{"short scale", assembler.Schema{"a", "b"}, []float64{1, 1}, []float64{1}},
		{"duplicate names", assembler.Schema{"a", "a"}, []float64{1, 1}, []float64{1, 1}},
		{"nan mean", assembler.Schema{"a"}, []float64{math.NaN()}, []float64{1}},
		{"inf scale", assembler.Schema{"a"}, []float64{0}, []float64{math.Inf(1)}},
	}
	for _, tt := range tests {
		if _, err := New(tt.schema, tt.mean, tt.scale); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestSchemaIsCopied(t *testing.T) {
	schema := assembler.Schema{"a", "b"}
	s, _ := New(schema, []float64{0, 0}, []float64{1, 1})
	schema[0] = "mutated"
	got := s.Schema()
	if got[0] != "a" {
		t.Fatalf("scaler schema aliased caller slice: %v", got)
	}
	got[1] = "mutated"
	if s.Schema()[1] != "b" {
		t.Fatal("Schema() exposed internal slice")
	}
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.json")
	os.WriteFile(path, []byte(`{
		"feature_names_in": ["length_url", "qty_slash_url"],
		"mean": [40.5, 3.2],
		"scale": [20.0, 1.5]
	}`), 0644)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if s.Schema()[1] != "qty_slash_url" {
		t.Fatalf("Schema = %v", s.Schema())
	}
	out, _ := s.Transform([]float64{60.5, 3.2})
	if out[0] != 1 || out[1] != 0 {
		t.Fatalf("out = %v, want [1 0]", out)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.yaml")
	os.WriteFile(path, []byte(`feature_names_in:
  - length_url
  - domain_length
mean: [10, 5]
scale: [2, 0.5]
`), 0644)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	out, err := s.Transform([]float64{12, 6})
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != 1 || out[1] != 2 {
		t.Fatalf("out = %v, want [1 2]", out)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.json")
	os.WriteFile(path, []byte(`{"feature_names_in": ["a"], "mean": [1, 2]`), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestLoad_LengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.json")
	os.WriteFile(path, []byte(`{"feature_names_in": ["a", "b"], "mean": [1, 2], "scale": [1]}`), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	if _, err := Parse([]byte("{}"), "toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
