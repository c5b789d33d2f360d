package phishlens

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/crimson-sun/phishlens/internal/engine/classifier"
	"github.com/crimson-sun/phishlens/internal/engine/probe"
)

type options struct {
	modelDir     string
	modelPath    string
	scalerPath   string
	runtimeLib   string
	threshold    float64
	strictSchema bool
	probeTimeout time.Duration
	maxRedirects int
	blockPrivate bool
	logger       *slog.Logger
	prober       probe.Prober
}

// Option configures a Detector.
type Option func(*options)

// WithModelDir sets the directory holding model.onnx and scaler.json.
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithModelPath sets an explicit model file. A .onnx file runs through ONNX
// Runtime; a .json file is read as a tree ensemble.
func WithModelPath(path string) Option {
	return func(o *options) {
		o.modelPath = path
	}
}

// WithScalerPath sets an explicit scaler file (.json or .yaml).
func WithScalerPath(path string) Option {
	return func(o *options) {
		o.scalerPath = path
	}
}

// WithRuntimeLibrary sets the ONNX Runtime shared library. Defaults to
// libonnxruntime.so next to the model.
func WithRuntimeLibrary(path string) Option {
	return func(o *options) {
		o.runtimeLib = path
	}
}

// WithThreshold sets the phishing decision threshold, in [0, 1].
// Default: 0.5.
func WithThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = t
	}
}

// WithStrictSchema makes scoring fail when a feature the model expects is
// missing, instead of filling it with 0.
func WithStrictSchema(strict bool) Option {
	return func(o *options) {
		o.strictSchema = strict
	}
}

// WithProbeTimeout bounds the response-time probe made by Check. Must be
// positive. Default: 5s.
func WithProbeTimeout(d time.Duration) Option {
	return func(o *options) {
		o.probeTimeout = d
	}
}

// WithMaxRedirects caps the redirects the probe follows. Default: 10.
func WithMaxRedirects(n int) Option {
	return func(o *options) {
		o.maxRedirects = n
	}
}

// WithBlockPrivate stops the probe from connecting to loopback and private
// addresses. Use it when checking URLs submitted by untrusted users.
func WithBlockPrivate(block bool) Option {
	return func(o *options) {
		o.blockPrivate = block
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// withProber replaces the HTTP prober. Tests only.
func withProber(p probe.Prober) Option {
	return func(o *options) {
		o.prober = p
	}
}

func defaultOptions() options {
	return options{
		threshold:    classifier.DefaultThreshold,
		probeTimeout: probe.DefaultTimeout,
		maxRedirects: probe.DefaultMaxRedirects,
		logger:       slog.Default(),
	}
}

// resolvePaths picks the model and scaler files. Explicit paths take
// precedence over modelDir.
func resolvePaths(o options) (model, scaler string) {
	dir := o.modelDir
	if dir == "" {
		dir = "models"
	}
	model, scaler = o.modelPath, o.scalerPath
	if model == "" {
		model = filepath.Join(dir, "model.onnx")
	}
	if scaler == "" {
		scaler = filepath.Join(dir, "scaler.json")
	}
	return model, scaler
}

// validate reports option values New cannot honor. All problems are
// reported together.
func (o options) validate() error {
	var errs []error
	if math.IsNaN(o.threshold) || o.threshold < 0 || o.threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold must be in [0, 1], got %v", o.threshold))
	}
	if o.probeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("probe timeout must be positive, got %v", o.probeTimeout))
	}
	if o.maxRedirects < 0 {
		errs = append(errs, fmt.Errorf("max redirects must not be negative, got %d", o.maxRedirects))
	}
	return errors.Join(errs...)
}
