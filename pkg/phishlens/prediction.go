package phishlens

import "github.com/crimson-sun/phishlens/internal/model"

// Features maps feature names to values. Features that could not be
// computed hold -1.
type Features map[string]float64

// Prediction is the verdict for one URL.
type Prediction struct {
	URL         string   `json:"url"`
	IsPhishing  bool     `json:"is_phishing"`
	Probability float64  `json:"phishing_probability"` // 0..1, phishing iff >= threshold
	Features    Features `json:"features,omitempty"`
}

// FeatureNames returns every feature name the extractor computes.
func FeatureNames() []string {
	out := make([]string, len(model.Vocabulary))
	copy(out, model.Vocabulary)
	return out
}

func predictionFromModel(p model.Prediction) Prediction {
	return Prediction{
		URL:         p.URL,
		IsPhishing:  p.IsPhishing,
		Probability: p.PhishingProbability,
		Features:    Features(p.Features),
	}
}
