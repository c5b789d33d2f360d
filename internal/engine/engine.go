package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/crimson-sun/phishlens/internal/engine/assembler"
	"github.com/crimson-sun/phishlens/internal/engine/classifier"
	"github.com/crimson-sun/phishlens/internal/engine/extractor"
	"github.com/crimson-sun/phishlens/internal/engine/inference"
	"github.com/crimson-sun/phishlens/internal/engine/scaler"
	"github.com/crimson-sun/phishlens/internal/model"
)

// ErrEmptyURL is returned by Process for a blank URL.
var ErrEmptyURL = errors.New("engine: URL is required")

// ErrClassification wraps a model failure for a single request.
var ErrClassification = errors.New("engine: classification failed")

// ConfigError reports artifacts that cannot serve predictions: a file that
// fails to load, or a scaler and model that disagree on dimensions. It is
// fatal to the process.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Option configures an Engine.
type Option func(*Engine)

// WithStrictSchema makes a FeatureSet missing a schema name an error instead
// of a zero-filled position.
func WithStrictSchema(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine orchestrates the extract → assemble → scale → classify pipeline.
// Its configuration is immutable after New and it is safe for concurrent use.
type Engine struct {
	extractor  *extractor.Extractor
	scaler     *scaler.Scaler
	classifier *classifier.Classifier
	schema     assembler.Schema
	unknown    map[string]bool
	strict     bool
	logger     *slog.Logger
	warned     sync.Map // zero-filled names already logged
}

// New creates an Engine from loaded components. The scaler's schema becomes
// the feature order; its length must equal the model's input dimension.
func New(ext *extractor.Extractor, sc *scaler.Scaler, cls *classifier.Classifier, opts ...Option) (*Engine, error) {
	e := &Engine{
		extractor:  ext,
		scaler:     sc,
		classifier: cls,
		schema:     sc.Schema(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	if got, want := sc.Len(), cls.InputDim(); got != want {
		return nil, &ConfigError{
			Op:  "validate artifacts",
			Err: &scaler.DimensionError{Got: got, Want: want},
		}
	}

	unknown := assembler.Unknown(e.schema)
	if len(unknown) > 0 {
		if e.strict {
			return nil, &ConfigError{
				Op:  "validate schema",
				Err: &assembler.MissingFeaturesError{Names: unknown},
			}
		}
		e.logger.Warn("schema names unknown to the extractor will always be zero",
			"names", unknown)
	}
	e.unknown = make(map[string]bool, len(unknown))
	for _, name := range unknown {
		e.unknown[name] = true
	}

	return e, nil
}

// Schema returns a copy of the feature order.
func (e *Engine) Schema() assembler.Schema {
	out := make(assembler.Schema, len(e.schema))
	copy(out, e.schema)
	return out
}

// Threshold is the decision threshold applied to the phishing probability.
func (e *Engine) Threshold() float64 {
	return e.classifier.Threshold
}

// Process extracts features from url and classifies them. Leading and
// trailing whitespace is ignored.
func (e *Engine) Process(ctx context.Context, url string) (model.Prediction, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return model.Prediction{}, ErrEmptyURL
	}

	fs := e.extractor.Extract(ctx, url)
	pred, err := e.Score(fs)
	if err != nil {
		return model.Prediction{}, err
	}
	pred.URL = url
	return pred, nil
}

// Score classifies an already extracted FeatureSet. No network access.
func (e *Engine) Score(fs model.FeatureSet) (model.Prediction, error) {
	vec, err := e.assemble(fs)
	if err != nil {
		return model.Prediction{}, err
	}

	scaled, err := e.scaler.Transform(vec)
	if err != nil {
		return model.Prediction{}, &ConfigError{Op: "scale", Err: err}
	}

	res, err := e.classifier.Classify(scaled)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	return model.Prediction{
		IsPhishing:          res.IsPhishing,
		PhishingProbability: res.Probability,
		Features:            fs,
	}, nil
}

func (e *Engine) assemble(fs model.FeatureSet) ([]float64, error) {
	if e.strict {
		return assembler.AssembleStrict(fs, e.schema)
	}

	var filled []string
	for _, name := range assembler.Missing(fs, e.schema) {
		// Unknown schema names were reported once at startup.
		if e.unknown[name] {
			continue
		}
		if _, seen := e.warned.LoadOrStore(name, true); !seen {
			filled = append(filled, name)
		}
	}
	if len(filled) > 0 {
		e.logger.Warn("features missing from input, using 0; not reported again", "names", filled)
	}
	return assembler.Assemble(fs, e.schema), nil
}

// Close releases the model.
func (e *Engine) Close() error {
	return e.classifier.Close()
}

// LoadArtifacts reads the scaler and model files. Any failure is a
// *ConfigError.
func LoadArtifacts(scalerPath, modelPath string, opts ...inference.Option) (*scaler.Scaler, inference.Model, error) {
	sc, err := scaler.Load(scalerPath)
	if err != nil {
		return nil, nil, &ConfigError{Op: "load scaler", Err: err}
	}
	m, err := inference.Load(modelPath, opts...)
	if err != nil {
		return nil, nil, &ConfigError{Op: "load model", Err: err}
	}
	return sc, m, nil
}
