package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/torosent/crankbench/internal/backend"
	"github.com/torosent/crankbench/internal/output"
	"github.com/torosent/crankbench/internal/results"
	"github.com/torosent/crankbench/internal/scenario"
	"github.com/torosent/crankbench/internal/tracing"
)

// Runner executes the selected benchmark matrix one combination at a time.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run executes every (library, scenario, repetition) combination in that
// nesting order and returns the collected document. The first failure
// aborts the matrix; no partial document is returned.
func (r *Runner) Run(ctx context.Context) (*results.Document, error) {
	libraries, err := r.opt.Registry.Resolve(r.opt.Libraries)
	if err != nil {
		return nil, err
	}
	benchmarks, err := r.opt.Catalog.Resolve(r.opt.Benchmarks)
	if err != nil {
		return nil, err
	}

	reps := r.opt.Repetitions
	doc := &results.Document{
		Results: make([]results.Result, 0, len(libraries)*len(benchmarks)*reps),
	}

	for _, lib := range libraries {
		b, _ := r.opt.Registry.Lookup(lib)
		logger := r.opt.Logger.With(slog.String("library", lib))

		for _, name := range benchmarks {
			s, _ := r.opt.Catalog.Lookup(name)

			for rep := 1; rep <= reps; rep++ {
				if err := context.Cause(ctx); err != nil {
					return nil, err
				}

				logger.DebugContext(ctx, "benchmark starting",
					slog.String("scenario", name),
					slog.Int("rep", rep),
				)
				res, err := r.runOne(ctx, b, s, rep)
				if err != nil {
					return nil, fmt.Errorf("%s on %s (rep %d): %w", name, lib, rep, err)
				}
				doc.Results = append(doc.Results, res)

				output.WriteProgress(r.opt.Progress, res)
				logger.DebugContext(ctx, "benchmark finished",
					slog.String("scenario", name),
					slog.Int("rep", rep),
					slog.Float64("duration_s", res.DurationS),
				)
			}
		}
	}

	doc.Meta = results.NewMeta(r.opt.Now(), benchmarks, libraries, reps)
	return doc, nil
}

func (r *Runner) runOne(ctx context.Context, b backend.Backend, s scenario.Scenario, rep int) (results.Result, error) {
	ctx, span := tracing.StartBenchmarkSpan(ctx, r.opt.Tracer, b.Name(), s.Name(), rep)

	params := s.Params()
	start := time.Now()
	value, err := b.Run(ctx, func(ctx context.Context, b backend.Backend) (any, error) {
		return s.Run(ctx, b)
	})
	elapsed := time.Since(start)
	if err != nil {
		tracing.EndSpan(span, err)
		return results.Result{}, err
	}

	m, ok := value.(scenario.Metrics)
	if !ok {
		err := fmt.Errorf("scenario returned %T, want scenario.Metrics", value)
		tracing.EndSpan(span, err)
		return results.Result{}, err
	}

	tracing.EndSpan(span, nil, tracing.MetricAttributes(m)...)
	return results.Result{
		Library:   b.Name(),
		Scenario:  s.Name(),
		Params:    params,
		Rep:       rep,
		DurationS: elapsed.Seconds(),
		Metrics:   m,
	}, nil
}
