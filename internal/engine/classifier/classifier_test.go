package classifier

import (
	"errors"
	"math"
	"testing"
)

// fixedModel returns the same probability for every input.
type fixedModel struct {
	p   float64
	err error
	dim int
}

func (m fixedModel) PredictProba([]float64) (float64, error) { return m.p, m.err }
func (m fixedModel) InputDim() int { return m.dim }
func (m fixedModel) Close() error { return nil }

func TestClassify_Threshold(t *testing.T) {
	tests := []struct {
		p     float64
		label int
	}{
		{0, 0},
		{0.49999, 0},
		{0.5, 1},
		{0.93, 1},
		{1, 1},
	}
	for _, tt := range tests {
		c := New(fixedModel{p: tt.p, dim: 3}, DefaultThreshold)
		res, err := c.Classify([]float64{0, 0, 0})
		if err != nil {
			t.Fatalf("p=%v: Classify() error: %v", tt.p, err)
		}
		if res.Label() != tt.label {
			t.Errorf("p=%v: label = %d, want %d", tt.p, res.Label(), tt.label)
		}
		if res.Probability != tt.p {
			t.Errorf("p=%v: probability = %v", tt.p, res.Probability)
		}
	}
}

func TestClassify_CustomThreshold(t *testing.T) {
	c := New(fixedModel{p: 0.7}, 0.8)
	res, err := c.Classify(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsPhishing {
		t.Error("0.7 should not reach threshold 0.8")
	}
}

func TestClassify_RejectsBadProbability(t *testing.T) {
	for _, p := range []float64{-0.1, 1.5, math.NaN(), math.Inf(1)} {
		c := New(fixedModel{p: p}, DefaultThreshold)
		_, err := c.Classify(nil)
		if !errors.Is(err, ErrBadProbability) {
			t.Errorf("p=%v: err = %v, want ErrBadProbability", p, err)
		}
	}
}

func TestClassify_ModelError(t *testing.T) {
	boom := errors.New("boom")
	c := New(fixedModel{err: boom}, DefaultThreshold)
	_, err := c.Classify(nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestInputDim(t *testing.T) {
	c := New(fixedModel{dim: 20}, DefaultThreshold)
	if c.InputDim() != 20 {
		t.Errorf("InputDim() = %d, want 20", c.InputDim())
	}
}
