package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimson-sun/phishlens/internal/config"
	"github.com/crimson-sun/phishlens/internal/engine"
	"github.com/crimson-sun/phishlens/internal/engine/classifier"
	"github.com/crimson-sun/phishlens/internal/engine/extractor"
	"github.com/crimson-sun/phishlens/internal/engine/inference"
	"github.com/crimson-sun/phishlens/internal/engine/probe"
	"github.com/crimson-sun/phishlens/internal/logging"
	"github.com/crimson-sun/phishlens/internal/output"
	"github.com/crimson-sun/phishlens/internal/output/file"
	"github.com/crimson-sun/phishlens/internal/output/multi"
	"github.com/crimson-sun/phishlens/internal/output/stdout"
	"github.com/crimson-sun/phishlens/internal/pipeline"
	"github.com/crimson-sun/phishlens/internal/server"
)

const usage = `usage: phishlens <command> [flags]

commands:
  serve    serve POST /predict over HTTP
  check    classify URLs from arguments, a file or stdin
  version  print the version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Set up graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, cfg)
	case "check":
		err = runCheck(ctx, cfg, os.Args[2:], os.Stdin)
	case "version":
		fmt.Println("phishlens", config.Version)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		var cfgErr *engine.ConfigError
		if errors.As(err, &cfgErr) {
			slog.Error("fatal configuration error", "op", cfgErr.Op, "error", cfgErr.Err)
		} else {
			slog.Error("phishlens failed", "error", err)
		}
		stop()
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.Init(true, logging.ParseLevel(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return &engine.ConfigError{Op: "validate config", Err: err}
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	srv := server.New(eng,
		server.WithLogger(logger),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
		server.WithVersion(config.Version),
	)
	logger.Info("phishlens starting",
		"version", config.Version,
		"model", cfg.Engine.ModelPath,
		"features", len(eng.Schema()),
		"threshold", eng.Threshold(),
	)
	return srv.Run(ctx, cfg.Server.Addr, cfg.ShutdownTimeout)
}

func runCheck(ctx context.Context, cfg config.Config, args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	inPath := fs.String("f", "", "read URLs from file, one per line (- for stdin)")
	outPath := fs.String("o", "", "append NDJSON predictions to this file instead of stdout")
	tee := fs.Bool("tee", false, "with -o, also write predictions to stdout")
	alertsPath := fs.String("alerts", "", "also append phishing predictions to this file")
	pretty := fs.Bool("pretty", cfg.Output.Pretty, "indent stdout JSON")
	minimal := fs.Bool("minimal", false, "omit extracted features from output")
	concurrency := fs.Int("concurrency", 0, "URLs processed in parallel (0 = GOMAXPROCS)")
	fs.Parse(args)

	// Predictions go to stdout, so logs are JSON on stderr.
	logger := logging.Init(true, logging.ParseLevel(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return &engine.ConfigError{Op: "validate config", Err: err}
	}

	urls, err := collectURLs(fs.Args(), *inPath, stdin)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return errors.New("no URLs given")
	}

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	verbosity := output.Standard
	if *minimal {
		verbosity = output.Minimal
	}
	out, err := buildOutput(*outPath, *alertsPath, *tee, *pretty, verbosity)
	if err != nil {
		return err
	}

	p := pipeline.New(eng, out,
		pipeline.WithConcurrency(*concurrency),
		pipeline.WithLogger(logger),
	)
	sum, runErr := p.Run(ctx, urls)
	closeErr := p.Close()
	logger.Info("check finished",
		"written", sum.Written,
		"phishing", sum.Phishing,
		"skipped", sum.Skipped,
	)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return closeErr
}

// collectURLs merges positional URLs with those read from inPath. With no
// positional URLs and no file, URLs are read from stdin.
func collectURLs(args []string, inPath string, stdin io.Reader) ([]string, error) {
	urls := append([]string(nil), args...)

	switch {
	case inPath == "-" || (inPath == "" && len(args) == 0):
		read, err := pipeline.ReadURLs(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		urls = append(urls, read...)
	case inPath != "":
		f, err := os.Open(inPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		read, err := pipeline.ReadURLs(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", inPath, err)
		}
		urls = append(urls, read...)
	}
	return urls, nil
}

// buildOutput assembles the prediction sinks: stdout unless -o is given
// (both with -tee), plus an alerts file that only receives phishing
// predictions.
func buildOutput(path, alertsPath string, tee, pretty bool, verbosity output.Verbosity) (output.Output, error) {
	var outs []output.Output
	if path != "" {
		f, err := file.New(path, verbosity)
		if err != nil {
			return nil, err
		}
		outs = append(outs, f)
	}
	if path == "" || tee {
		outs = append(outs, stdout.New(verbosity, pretty))
	}
	if alertsPath != "" {
		a, err := file.New(alertsPath, verbosity)
		if err != nil {
			multi.New(outs...).Close()
			return nil, err
		}
		outs = append(outs, multi.PhishingOnly(a))
	}

	if len(outs) == 1 {
		return outs[0], nil
	}
	return multi.New(outs...), nil
}

// buildEngine loads the artifacts and wires extractor, scaler and
// classifier together.
func buildEngine(cfg config.Config, logger *slog.Logger) (*engine.Engine, error) {
	var infOpts []inference.Option
	if cfg.Engine.RuntimeLib != "" {
		infOpts = append(infOpts, inference.WithRuntimeLibrary(cfg.Engine.RuntimeLib))
	}
	sc, m, err := engine.LoadArtifacts(cfg.Engine.ScalerPath, cfg.Engine.ModelPath, infOpts...)
	if err != nil {
		return nil, err
	}

	prober := probe.New(
		probe.WithTimeout(cfg.Probe.Timeout),
		probe.WithMaxRedirects(cfg.Probe.MaxRedirects),
		probe.WithBlockPrivate(cfg.Probe.BlockPrivate),
	)

	eng, err := engine.New(
		extractor.New(prober, logger),
		sc,
		classifier.New(m, cfg.Engine.Threshold),
		engine.WithStrictSchema(cfg.Engine.StrictSchema),
		engine.WithLogger(logger),
	)
	if err != nil {
		m.Close()
		return nil, err
	}
	return eng, nil
}
