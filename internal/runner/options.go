package runner

import (
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/crankbench/internal/backend"
	"github.com/torosent/crankbench/internal/scenario"
)

// Options configure the Runner.
type Options struct {
	Registry    *backend.Registry // available backends (default: backend.DefaultRegistry())
	Catalog     *scenario.Catalog // available scenarios (default: built-ins with default params)
	Libraries   []string          // backends to run, in order (empty means all)
	Benchmarks  []string          // scenarios to run, in order (empty means all)
	Repetitions int               // runs per (library, scenario) pair, at least 1
	Logger      *slog.Logger      // optional
	Progress    io.Writer         // receives one line per finished benchmark (nil discards)
	Tracer      trace.Tracer      // optional span source
	Now         func() time.Time  // clock for the meta timestamp
}

func (o *Options) normalize() {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Registry == nil {
		o.Registry = backend.DefaultRegistry()
	}
	if o.Catalog == nil {
		o.Catalog = scenario.DefaultCatalog(
			scenario.DefaultTaskSpawnParams(),
			scenario.DefaultIOBoundParams(),
			scenario.DefaultCancellationParams(),
			o.Logger,
		)
	}
	if o.Repetitions <= 0 {
		o.Repetitions = 1
	}
	if o.Progress == nil {
		o.Progress = io.Discard
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("crankbench")
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
