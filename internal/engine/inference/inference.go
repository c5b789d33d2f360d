// Package inference loads trained classifier artifacts and evaluates them on
// scaled feature vectors.
package inference

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Model scores one scaled feature vector. Implementations are safe for
// concurrent use.
type Model interface {
	// PredictProba returns the probability of the positive (phishing) class.
	PredictProba(vec []float64) (float64, error)
	// InputDim is the vector length the model was trained on.
	InputDim() int
	Close() error
}

type options struct {
	runtimeLib string
}

// Option configures model loading.
type Option func(*options)

// WithRuntimeLibrary sets the ONNX Runtime shared library path. Defaults to
// libonnxruntime.so next to the model file.
func WithRuntimeLibrary(path string) Option {
	return func(o *options) {
		o.runtimeLib = path
	}
}

// Load opens a model artifact, choosing the backend from the file extension:
// ".onnx" runs through ONNX Runtime, ".json" is a serialized tree ensemble.
func Load(path string, opts ...Option) (Model, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".onnx":
		lib := o.runtimeLib
		if lib == "" {
			lib = filepath.Join(filepath.Dir(path), "libonnxruntime.so")
		}
		m, err := newONNXModel(path, lib)
		if err != nil {
			return nil, fmt.Errorf("inference: %w", err)
		}
		return m, nil
	case ".json":
		m, err := LoadForest(path)
		if err != nil {
			return nil, fmt.Errorf("inference: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("inference: unsupported model format %q", filepath.Ext(path))
	}
}
