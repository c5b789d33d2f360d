package phishlens

import (
	"context"
	"log/slog"

	"github.com/crimson-sun/phishlens/internal/engine"
	"github.com/crimson-sun/phishlens/internal/engine/classifier"
	"github.com/crimson-sun/phishlens/internal/engine/extractor"
	"github.com/crimson-sun/phishlens/internal/engine/inference"
	"github.com/crimson-sun/phishlens/internal/engine/probe"
	"github.com/crimson-sun/phishlens/internal/model"
)

var (
	// ErrEmptyURL is returned by Check for a blank URL.
	ErrEmptyURL = engine.ErrEmptyURL

	// ErrClassification wraps a model failure on one URL. Other URLs may
	// still succeed.
	ErrClassification = engine.ErrClassification
)

// ConfigError reports unusable model or scaler artifacts. New returns it;
// Check and Score return it if the artifacts turn out inconsistent.
type ConfigError = engine.ConfigError

// Detector classifies URLs as phishing or legitimate.
// Safe for concurrent use.
type Detector struct {
	engine *engine.Engine
}

// New validates the options, loads the scaler and model and checks that
// they agree on the number of features. Any failure is a *ConfigError.
func New(opts ...Option) (*Detector, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, &ConfigError{Op: "validate options", Err: err}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	modelPath, scalerPath := resolvePaths(o)

	var infOpts []inference.Option
	if o.runtimeLib != "" {
		infOpts = append(infOpts, inference.WithRuntimeLibrary(o.runtimeLib))
	}
	sc, m, err := engine.LoadArtifacts(scalerPath, modelPath, infOpts...)
	if err != nil {
		return nil, err
	}

	p := o.prober
	if p == nil {
		p = probe.New(
			probe.WithTimeout(o.probeTimeout),
			probe.WithMaxRedirects(o.maxRedirects),
			probe.WithBlockPrivate(o.blockPrivate),
		)
	}

	eng, err := engine.New(
		extractor.New(p, o.logger),
		sc,
		classifier.New(m, o.threshold),
		engine.WithStrictSchema(o.strictSchema),
		engine.WithLogger(o.logger),
	)
	if err != nil {
		m.Close()
		return nil, err
	}
	return &Detector{engine: eng}, nil
}

// Check extracts features from url, including one timed HTTP request, and
// classifies them.
func (d *Detector) Check(ctx context.Context, url string) (Prediction, error) {
	p, err := d.engine.Process(ctx, url)
	if err != nil {
		return Prediction{}, err
	}
	return predictionFromModel(p), nil
}

// Score classifies features computed elsewhere. The returned Prediction has
// no URL.
func (d *Detector) Score(features Features) (Prediction, error) {
	fs := make(model.FeatureSet, len(features))
	for k, v := range features {
		fs[k] = v
	}
	p, err := d.engine.Score(fs)
	if err != nil {
		return Prediction{}, err
	}
	return predictionFromModel(p), nil
}

// Schema returns the feature order the model was trained on.
func (d *Detector) Schema() []string {
	return d.engine.Schema()
}

// Threshold returns the decision threshold in use.
func (d *Detector) Threshold() float64 {
	return d.engine.Threshold()
}

// Close releases model resources. Must be called when the Detector is no
// longer needed.
func (d *Detector) Close() error {
	return d.engine.Close()
}
