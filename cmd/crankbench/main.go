package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/torosent/crankbench/internal/backend"
	"github.com/torosent/crankbench/internal/config"
	"github.com/torosent/crankbench/internal/output"
	"github.com/torosent/crankbench/internal/results"
	"github.com/torosent/crankbench/internal/runner"
	"github.com/torosent/crankbench/internal/scenario"
	"github.com/torosent/crankbench/internal/threshold"
	"github.com/torosent/crankbench/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	var thresholds []threshold.Threshold
	if len(cfg.Thresholds) > 0 {
		thresholds, err = threshold.ParseMultiple(cfg.Thresholds)
		if err != nil {
			return err
		}
	}

	// Read the baseline before saving so --baseline may name the output file.
	var baseline []byte
	if cfg.Baseline != "" {
		baseline, err = output.LoadBaseline(cfg.Baseline)
		if err != nil {
			return err
		}
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "err", err)
		}
	}()

	r := runner.New(runner.Options{
		Registry:    backend.DefaultRegistry(),
		Catalog:     scenario.DefaultCatalog(cfg.TaskSpawn, cfg.IOBound, cfg.Cancellation, logger),
		Libraries:   cfg.Libraries,
		Benchmarks:  cfg.Benchmarks,
		Repetitions: cfg.Repetitions,
		Logger:      logger,
		Progress:    stdout,
		Tracer:      provider.Tracer(),
	})

	logger.Info("starting run",
		"benchmarks", cfg.Benchmarks,
		"libraries", cfg.Libraries,
		"repetitions", cfg.Repetitions,
		"tracing", provider.Enabled(),
	)

	doc, err := r.Run(ctx)
	if err != nil {
		return err
	}

	if err := results.Save(cfg.Output, doc, cfg.ResultFormat()); err != nil {
		return err
	}
	logger.Info("results saved", "path", cfg.Output, "run_id", doc.Meta.RunID, "results", len(doc.Results))

	if !cfg.Quiet {
		output.PrintReport(stdout, doc)
	}

	if baseline != nil {
		deltas, err := output.Compare(doc, baseline)
		if err != nil {
			return err
		}
		output.PrintComparison(stdout, deltas)
	}

	if len(thresholds) > 0 {
		evaluated := threshold.NewEvaluator(thresholds).Evaluate(doc)
		output.PrintThresholdResults(stdout, evaluated)
		if !threshold.Passed(evaluated) {
			return fmt.Errorf("thresholds failed")
		}
	}

	return nil
}
