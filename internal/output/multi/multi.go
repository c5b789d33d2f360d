package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/phishlens/internal/model"
	"github.com/crimson-sun/phishlens/internal/output"
)

// Multi tees each prediction to several outputs, e.g. stdout and an NDJSON
// file. A failing output does not stop delivery to the others.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over outputs, written in the given order.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

func (m *Multi) Write(ctx context.Context, p model.Prediction) error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Write(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every output and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for i, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// PhishingOnly wraps o so that it only receives predictions flagged as
// phishing. Used for a separate alerts stream next to the full output.
func PhishingOnly(o output.Output) output.Output {
	return phishingOnly{o}
}

type phishingOnly struct {
	output.Output
}

func (f phishingOnly) Write(ctx context.Context, p model.Prediction) error {
	if !p.IsPhishing {
		return nil
	}
	return f.Output.Write(ctx, p)
}
