package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/phishlens/internal/engine"
	"github.com/crimson-sun/phishlens/internal/model"
	"github.com/crimson-sun/phishlens/internal/output"
)

// Processor scores a single URL. *engine.Engine satisfies it.
type Processor interface {
	Process(ctx context.Context, url string) (model.Prediction, error)
}

// Summary counts the outcome of a batch run.
type Summary struct {
	Written  int
	Phishing int
	Skipped  int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency bounds how many URLs are processed at once. Values below 1
// mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Pipeline runs a batch of URLs through a processor and writes predictions
// to an output in input order.
type Pipeline struct {
	proc        Processor
	out         output.Output
	concurrency int
	logger      *slog.Logger
	skipped     atomic.Int64
}

// New creates a Pipeline from the given components.
func New(proc Processor, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		proc:   proc,
		out:    out,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.concurrency < 1 {
		p.concurrency = runtime.GOMAXPROCS(0)
	}
	return p
}

type result struct {
	pred model.Prediction
	err  error
}

// Run processes urls with bounded concurrency. A URL whose classification
// fails is logged and skipped; any other processing error, an output error
// or cancellation of ctx stops the run.
func (p *Pipeline) Run(ctx context.Context, urls []string) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]chan result, len(urls))
	for i := range results {
		results[i] = make(chan result, 1)
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, url := range urls {
			i, url := i, url
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					results[i] <- result{err: err}
					return nil
				}
				pred, err := p.proc.Process(ctx, url)
				results[i] <- result{pred: pred, err: err}
				return nil
			})
		}
		g.Wait()
	}()

	var sum Summary
	var runErr error
	for i, ch := range results {
		r := <-ch
		if r.err != nil {
			if errors.Is(r.err, engine.ErrClassification) {
				p.skipped.Add(1)
				sum.Skipped++
				p.logger.Warn("skipping url", "url", urls[i], "error", r.err)
				continue
			}
			runErr = fmt.Errorf("pipeline process: %w", r.err)
			break
		}
		if err := p.out.Write(ctx, r.pred); err != nil {
			runErr = fmt.Errorf("pipeline output: %w", err)
			break
		}
		sum.Written++
		if r.pred.IsPhishing {
			sum.Phishing++
		}
	}

	cancel()
	<-done
	return sum, runErr
}

// Close shuts down the output, reporting how many URLs were skipped.
func (p *Pipeline) Close() error {
	if n := p.skipped.Load(); n > 0 {
		p.logger.Info("pipeline closed with skipped urls", "skipped", n)
	}
	return p.out.Close()
}
