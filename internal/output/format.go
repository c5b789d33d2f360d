package output

import (
	"strings"

	"github.com/crimson-sun/phishlens/internal/model"
)

// Verbosity controls how much of a prediction is written.
type Verbosity int

const (
	// Standard writes the prediction with its extracted features.
	Standard Verbosity = iota
	// Minimal writes only url, is_phishing and phishing_probability.
	Minimal
)

// ParseVerbosity maps "minimal" to Minimal and anything else to Standard.
func ParseVerbosity(s string) Verbosity {
	if strings.EqualFold(s, "minimal") {
		return Minimal
	}
	return Standard
}

// FormatPrediction returns a copy of p with fields stripped according to
// verbosity. At Minimal the feature map is dropped (omitted from JSON via
// omitempty).
func FormatPrediction(p model.Prediction, verbosity Verbosity) model.Prediction {
	if verbosity == Minimal {
		p.Features = nil
	}
	return p
}
