package backend

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// ConcBackend runs units on an unbounded conc context pool. Idle pool
// goroutines pick up queued units before new goroutines are started, so the
// spawn path differs from one-goroutine-per-unit even without a limit.
type ConcBackend struct {
	guard runGuard
}

// NewConcBackend returns a ready ConcBackend.
func NewConcBackend() *ConcBackend {
	return &ConcBackend{}
}

func (b *ConcBackend) Name() string { return "conc" }

func (b *ConcBackend) Run(ctx context.Context, entry Entrypoint) (any, error) {
	if !b.guard.enter() {
		return nil, ErrReentrant
	}
	defer b.guard.exit()

	p := pool.New().WithContext(ctx)
	var out Outcome
	p.Go(func(ctx context.Context) error {
		out = invoke(ctx, func(ctx context.Context, _ int) (any, error) {
			return entry(ctx, b)
		}, 0)
		return out.Err
	})
	err := p.Wait()
	return out.Value, err
}

func (b *ConcBackend) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (b *ConcBackend) SpawnMany(ctx context.Context, count int, fn UnitFunc) ([]Outcome, error) {
	if count < 0 {
		return nil, ErrInvalidCount
	}

	outcomes := make([]Outcome, count)
	p := pool.New().WithContext(ctx)
	for i := 0; i < count; i++ {
		p.Go(func(ctx context.Context) error {
			outcomes[i] = invoke(ctx, fn, i)
			return nil
		})
	}
	_ = p.Wait()

	return outcomes, joinFailures(outcomes)
}

func (b *ConcBackend) CancellationStorm(ctx context.Context, taskCount int, cancelAfter time.Duration, fn UnitFunc) (StormResult, error) {
	if taskCount < 0 {
		return StormResult{}, ErrInvalidCount
	}

	scope, cancel := stormScope(ctx)
	defer cancel(nil)

	tally := newStormTally()
	p := pool.New().WithContext(scope)
	for i := 0; i < taskCount; i++ {
		p.Go(func(ctx context.Context) error {
			tally.observe(invoke(ctx, fn, i))
			return nil
		})
	}

	waitErr := awaitSignal(ctx, b, cancelAfter, tally, cancel)
	_ = p.Wait()

	return tally.settle(), waitErr
}
