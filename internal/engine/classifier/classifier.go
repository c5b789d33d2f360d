package classifier

import (
	"errors"
	"fmt"
	"math"

	"github.com/crimson-sun/phishlens/internal/engine/inference"
)

// DefaultThreshold is the decision threshold applied to the phishing-class
// probability.
const DefaultThreshold = 0.5

// ErrBadProbability reports a model output outside [0, 1].
var ErrBadProbability = errors.New("classifier: probability outside [0, 1]")

// Result holds the outcome of classifying a single scaled feature vector.
type Result struct {
	IsPhishing  bool
	Probability float64
}

// Label returns 1 for phishing and 0 for legitimate.
func (r Result) Label() int {
	if r.IsPhishing {
		return 1
	}
	return 0
}

// Classifier applies a decision threshold to a model's phishing probability.
type Classifier struct {
	Threshold float64
	model     inference.Model
}

// New creates a Classifier over m with the given threshold.
func New(m inference.Model, threshold float64) *Classifier {
	return &Classifier{Threshold: threshold, model: m}
}

// InputDim is the vector length the underlying model expects.
func (c *Classifier) InputDim() int {
	return c.model.InputDim()
}

// Classify scores vec and labels it phishing when the probability reaches
// the threshold.
func (c *Classifier) Classify(vec []float64) (Result, error) {
	p, err := c.model.PredictProba(vec)
	if err != nil {
		return Result{}, fmt.Errorf("classifier: %w", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Result{}, fmt.Errorf("%w: got %v", ErrBadProbability, p)
	}
	return Result{IsPhishing: p >= c.Threshold, Probability: p}, nil
}

// Close releases the underlying model.
func (c *Classifier) Close() error {
	return c.model.Close()
}
