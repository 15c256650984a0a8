// Package backend adapts structured-concurrency toolkits to one contract so
// that benchmark scenarios can drive each of them identically.
//
// Three implementations are provided:
//   - [GoroutineBackend]: bare goroutines joined by a sync.WaitGroup; every
//     unit owns a child context of the cancel scope.
//   - [ErrgroupBackend]: golang.org/x/sync/errgroup groups used as nurseries;
//     the group context is the lexical cancel scope.
//   - [ConcBackend]: github.com/sourcegraph/conc context pools, which reuse
//     idle goroutines between units.
//
// All three apply the same wait-for-all policy in [Backend.SpawnMany]: a
// failing unit never cancels its siblings, and the call returns only once
// every unit has finished.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Entrypoint is the top-level computation executed by [Backend.Run].
type Entrypoint func(ctx context.Context, b Backend) (any, error)

// UnitFunc is the body of one concurrent unit. index is the launch index.
type UnitFunc func(ctx context.Context, index int) (any, error)

// Outcome is what a single unit produced.
type Outcome struct {
	Value any
	Err   error
}

// StormResult summarizes a settled cancellation storm.
type StormResult struct {
	Cancelled  int            // units that exited because of the storm signal
	Exceptions int            // units that exited with any other error or a panic
	Settle     time.Duration  // signal issued -> last unit exited
	Failures   map[string]int // friendly error kind -> count, for Exceptions only
}

// Backend is the capability set every concurrency runtime adapter exposes.
type Backend interface {
	// Name identifies the backend in results and on the command line.
	Name() string

	// Run opens a fresh scheduling scope for exactly one top-level
	// computation and returns its result. It is not reentrant.
	Run(ctx context.Context, entry Entrypoint) (any, error)

	// Sleep suspends the calling unit for at least d. It returns early only
	// when ctx is cancelled, yielding context.Cause(ctx).
	Sleep(ctx context.Context, d time.Duration) error

	// SpawnMany runs fn for every index in [0, count) concurrently and waits
	// for all of them. outcomes[i] always belongs to fn(i).
	SpawnMany(ctx context.Context, count int, fn UnitFunc) ([]Outcome, error)

	// CancellationStorm launches taskCount units, cancels all of them with a
	// single signal after cancelAfter, and waits until every unit has exited.
	CancellationStorm(ctx context.Context, taskCount int, cancelAfter time.Duration, fn UnitFunc) (StormResult, error)
}

var (
	// ErrUnsupported reports an operation a backend cannot express.
	ErrUnsupported = errors.New("backend: operation not supported")
	// ErrReentrant is returned by Run when the backend is already running.
	ErrReentrant = errors.New("backend: run is not reentrant")
	// ErrStormCancelled is the cancellation cause delivered to storm units.
	ErrStormCancelled = errors.New("backend: cancelled by storm")
	// ErrInvalidCount rejects negative unit counts.
	ErrInvalidCount = errors.New("backend: unit count must be >= 0")
)

// UnitError ties a unit failure to its launch index.
type UnitError struct {
	Index int
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unit %d: %v", e.Index, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// Collect is a typed wrapper around SpawnMany. Units that failed leave the
// zero value of T in their slot.
func Collect[T any](ctx context.Context, b Backend, count int, fn func(ctx context.Context, index int) (T, error)) ([]T, error) {
	outcomes, err := b.SpawnMany(ctx, count, func(ctx context.Context, index int) (any, error) {
		return fn(ctx, index)
	})
	values := make([]T, len(outcomes))
	for i, o := range outcomes {
		if v, ok := o.Value.(T); ok {
			values[i] = v
		}
	}
	return values, err
}
