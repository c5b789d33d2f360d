package assembler

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/crimson-sun/phishlens/internal/model"
)

// trainingOrder is the column order used by the scaler shipped with the
// original service.
var trainingOrder = Schema{
	"directory_length", "time_domain_activation", "qty_dollar_directory",
	"qty_slash_directory", "qty_dot_file", "length_url", "ttl_hostname",
	"time_response", "asn_ip", "qty_slash_url", "qty_dot_directory",
	"qty_hyphen_directory", "qty_at_directory", "qty_and_directory",
	"qty_comma_directory", "qty_percent_directory", "qty_dollar_file",
	"file_length", "time_domain_expiration", "domain_length",
}

func TestAssemble_FollowsSchemaOrder(t *testing.T) {
	fs := model.FeatureSet{"b": 2, "a": 1, "c": 3}
	vec := Assemble(fs, Schema{"c", "a", "b"})
	want := []float64{3, 1, 2}
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("vec = %v, want %v", vec, want)
		}
	}
}

func TestAssemble_MissingIsZero(t *testing.T) {
	fs := model.FeatureSet{"a": 5}
	vec := Assemble(fs, Schema{"a", "missing", "also_missing"})
	if len(vec) != 3 {
		t.Fatalf("len = %d, want 3", len(vec))
	}
	if vec[0] != 5 || vec[1] != 0 || vec[2] != 0 {
		t.Fatalf("vec = %v, want [5 0 0]", vec)
	}
}

func TestAssemble_ExtraNamesIgnored(t *testing.T) {
	fs := model.FeatureSet{"a": 1, "extra": 99}
	vec := Assemble(fs, Schema{"a"})
	if len(vec) != 1 || vec[0] != 1 {
		t.Fatalf("vec = %v, want [1]", vec)
	}
}

func TestAssemble_EmptyFeatureSet(t *testing.T) {
	vec := Assemble(nil, trainingOrder)
	if len(vec) != len(trainingOrder) {
		t.Fatalf("len = %d, want %d", len(vec), len(trainingOrder))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("vec[%d] = %v, want 0", i, v)
		}
	}
}

func TestAssembleStrict(t *testing.T) {
	fs := model.FeatureSet{"a": 1}
	_, err := AssembleStrict(fs, Schema{"a", "qty_dollar_file"})
	var mfe *MissingFeaturesError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFeaturesError, got %v", err)
	}
	if len(mfe.Names) != 1 || mfe.Names[0] != "qty_dollar_file" {
		t.Fatalf("Names = %v, want [qty_dollar_file]", mfe.Names)
	}

	vec, err := AssembleStrict(model.FeatureSet{"a": 1, "b": 2}, Schema{"b", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec[0] != 2 || vec[1] != 1 {
		t.Fatalf("vec = %v, want [2 1]", vec)
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	fs := make(model.FeatureSet, len(trainingOrder))
	for _, name := range trainingOrder {
		fs[name] = r.Float64()*100 - 50
	}

	got := Decode(Assemble(fs, trainingOrder), trainingOrder)
	for name, v := range fs {
		if got[name] != v {
			t.Errorf("%s: got %v, want %v", name, got[name], v)
		}
	}
}

func TestRoundTrip_PositionMatchesIndex(t *testing.T) {
	fs := make(model.FeatureSet)
	for i, name := range trainingOrder {
		fs[name] = float64(i)
	}
	vec := Assemble(fs, trainingOrder)
	for _, name := range trainingOrder {
		if vec[trainingOrder.Index(name)] != fs[name] {
			t.Errorf("%s drifted from its schema position", name)
		}
	}
}

func TestDecode_LengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Decode([]float64{1, 2}, Schema{"a"})
}

func TestSchemaValidate(t *testing.T) {
	if err := trainingOrder.Validate(); err != nil {
		t.Fatalf("training order should be valid: %v", err)
	}
	if err := (Schema{}).Validate(); err == nil {
		t.Error("expected error for empty schema")
	}
	if err := (Schema{"a", "a"}).Validate(); err == nil {
		t.Error("expected error for duplicate names")
	}
	if err := (Schema{"a", ""}).Validate(); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestUnknown(t *testing.T) {
	if u := Unknown(trainingOrder); len(u) != 0 {
		t.Fatalf("training order should be fully covered by the vocabulary, unknown: %v", u)
	}
	u := Unknown(Schema{"length_url", "qty_tld_url"})
	if len(u) != 1 || u[0] != "qty_tld_url" {
		t.Fatalf("Unknown = %v, want [qty_tld_url]", u)
	}
}
