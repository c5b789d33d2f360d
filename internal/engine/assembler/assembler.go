// Package assembler maps named feature sets onto the ordered numeric vectors
// a trained model expects.
package assembler

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/phishlens/internal/model"
)

// Schema is the ordered list of feature names that defines vector column
// positions. It is fixed when the model is trained and never reordered.
type Schema []string

// Index returns the position of name in the schema, or -1.
func (s Schema) Index(name string) int {
	for i, n := range s {
		if n == name {
			return i
		}
	}
	return -1
}

// Validate checks that the schema is non-empty and free of duplicates.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("assembler: empty schema")
	}
	seen := make(map[string]bool, len(s))
	for _, n := range s {
		if n == "" {
			return fmt.Errorf("assembler: schema contains an empty name")
		}
		if seen[n] {
			return fmt.Errorf("assembler: duplicate schema name %q", n)
		}
		seen[n] = true
	}
	return nil
}

// MissingFeaturesError lists schema names absent from a feature set.
type MissingFeaturesError struct {
	Names []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("assembler: feature set lacks schema names: %s", strings.Join(e.Names, ", "))
}

// Assemble builds a vector in schema order. Names absent from fs become 0;
// names in fs but not in the schema are ignored.
func Assemble(fs model.FeatureSet, schema Schema) []float64 {
	vec := make([]float64, len(schema))
	for i, name := range schema {
		vec[i] = fs[name]
	}
	return vec
}

// AssembleStrict is Assemble but fails when any schema name is absent.
func AssembleStrict(fs model.FeatureSet, schema Schema) ([]float64, error) {
	if missing := Missing(fs, schema); len(missing) > 0 {
		return nil, &MissingFeaturesError{Names: missing}
	}
	return Assemble(fs, schema), nil
}

// Missing returns the schema names absent from fs, in schema order.
func Missing(fs model.FeatureSet, schema Schema) []string {
	var missing []string
	for _, name := range schema {
		if _, ok := fs[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Unknown returns the schema names the extractor never produces. A non-empty
// result means the model was trained on features this build cannot compute
// and those columns will always be zero-filled.
func Unknown(schema Schema) []string {
	var unknown []string
	for _, name := range schema {
		if !model.InVocabulary(name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Decode maps a vector back to names using the same schema. It panics if the
// lengths differ, since that can only be a programming error.
func Decode(vec []float64, schema Schema) model.FeatureSet {
	if len(vec) != len(schema) {
		panic(fmt.Sprintf("assembler: decode length %d != schema length %d", len(vec), len(schema)))
	}
	fs := make(model.FeatureSet, len(schema))
	for i, name := range schema {
		fs[name] = vec[i]
	}
	return fs
}
