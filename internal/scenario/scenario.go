// Package scenario implements the benchmark workloads. Each scenario is a
// pure algorithm over a backend.Backend and an immutable parameter value.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/torosent/crankbench/internal/backend"
)

const (
	NameTaskSpawn    = "task_spawn"
	NameIOBound      = "io_bound"
	NameCancellation = "cancellation"
)

// Names lists the built-in scenarios in their canonical order.
func Names() []string {
	return []string{NameTaskSpawn, NameIOBound, NameCancellation}
}

// Metrics is the scenario-specific measurement set of one run.
type Metrics map[string]float64

// Scenario is one benchmark workload bound to its parameters.
type Scenario interface {
	Name() string
	// Params returns a fresh snapshot of the bound parameters.
	Params() map[string]any
	Run(ctx context.Context, b backend.Backend) (Metrics, error)
}

// Catalog maps scenario names to scenarios. It is immutable once built.
type Catalog struct {
	names  []string
	byName map[string]Scenario
}

// NewCatalog builds a catalog preserving the given order.
func NewCatalog(scenarios ...Scenario) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Scenario, len(scenarios))}
	for i, s := range scenarios {
		if s == nil {
			return nil, fmt.Errorf("scenario[%d] is nil", i)
		}
		if _, dup := c.byName[s.Name()]; dup {
			return nil, fmt.Errorf("scenario %q registered twice", s.Name())
		}
		c.names = append(c.names, s.Name())
		c.byName[s.Name()] = s
	}
	return c, nil
}

// DefaultCatalog binds the built-in scenarios to the given parameters.
// logger may be nil.
func DefaultCatalog(ts TaskSpawnParams, io IOBoundParams, cp CancellationParams, logger *slog.Logger) *Catalog {
	c, err := NewCatalog(NewTaskSpawn(ts), NewIOBound(io), NewCancellation(cp).WithLogger(logger))
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *Catalog) Lookup(name string) (Scenario, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Resolve validates a selection of names. An empty selection means all.
func (c *Catalog) Resolve(names []string) ([]string, error) {
	if len(names) == 0 {
		return c.Names(), nil
	}
	var unknown []string
	for _, name := range names {
		if _, ok := c.byName[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown benchmarks %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(c.names, ", "))
	}
	return append([]string(nil), names...), nil
}

// perSecond reports a throughput, or 0 when nothing measurable elapsed.
func perSecond(n int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / elapsed.Seconds()
}

// batchError separates tolerated unit failures from errors that must abort
// the run: caller cancellation and anything the backend itself reported.
func batchError(ctx context.Context, err error) error {
	if ctxErr := context.Cause(ctx); ctxErr != nil {
		return ctxErr
	}
	if err == nil {
		return nil
	}
	var unitErr *backend.UnitError
	if errors.As(err, &unitErr) {
		return nil
	}
	return err
}
