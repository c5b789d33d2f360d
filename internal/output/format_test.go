package output

import (
	"encoding/json"
	"testing"

	"github.com/crimson-sun/phishlens/internal/model"
)

func basePrediction() model.Prediction {
	return model.Prediction{
		URL:                 "http://example.com/a/b.php?x=1",
		IsPhishing:          true,
		PhishingProbability: 0.93,
		Features: model.FeatureSet{
			model.LengthURL:    30,
			model.TimeResponse: model.Sentinel,
		},
	}
}

func TestFormatPredictionMinimal(t *testing.T) {
	p := FormatPrediction(basePrediction(), Minimal)

	if p.Features != nil {
		t.Fatal("Features should be dropped at Minimal")
	}
	if p.URL == "" || !p.IsPhishing || p.PhishingProbability != 0.93 {
		t.Fatalf("decision fields should be preserved, got %+v", p)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := m["features"]; ok {
		t.Fatal("features should be omitted from minimal JSON")
	}
}

func TestFormatPredictionStandard(t *testing.T) {
	p := FormatPrediction(basePrediction(), Standard)

	if len(p.Features) != 2 {
		t.Fatalf("Features should be preserved at Standard, got %v", p.Features)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"url", "is_phishing", "phishing_probability", "features"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in output", key)
		}
	}
	features := m["features"].(map[string]any)
	if features[model.TimeResponse] != float64(-1) {
		t.Errorf("time_response = %v, want -1", features[model.TimeResponse])
	}
}

func TestFormatPredictionDoesNotMutate(t *testing.T) {
	orig := basePrediction()
	_ = FormatPrediction(orig, Minimal)
	if orig.Features == nil {
		t.Fatal("FormatPrediction modified its argument")
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in   string
		want Verbosity
	}{
		{"minimal", Minimal},
		{"MINIMAL", Minimal},
		{"standard", Standard},
		{"", Standard},
		{"full", Standard},
	}
	for _, tt := range tests {
		if got := ParseVerbosity(tt.in); got != tt.want {
			t.Errorf("ParseVerbosity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
