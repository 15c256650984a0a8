package backend

import (
	"context"
	"sync"
	"time"
)

// GoroutineBackend drives units with bare go statements and joins them with a
// sync.WaitGroup. In a storm every unit runs under its own child context, so
// the single scope cancellation fans out through one context per unit.
type GoroutineBackend struct {
	guard runGuard
}

// NewGoroutineBackend returns a ready GoroutineBackend.
func NewGoroutineBackend() *GoroutineBackend {
	return &GoroutineBackend{}
}

func (b *GoroutineBackend) Name() string { return "goroutine" }

func (b *GoroutineBackend) Run(ctx context.Context, entry Entrypoint) (any, error) {
	if !b.guard.enter() {
		return nil, ErrReentrant
	}
	defer b.guard.exit()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		done <- invoke(ctx, func(ctx context.Context, _ int) (any, error) {
			return entry(ctx, b)
		}, 0)
	}()
	out := <-done
	return out.Value, out.Err
}

func (b *GoroutineBackend) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (b *GoroutineBackend) SpawnMany(ctx context.Context, count int, fn UnitFunc) ([]Outcome, error) {
	if count < 0 {
		return nil, ErrInvalidCount
	}

	outcomes := make([]Outcome, count)
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer wg.Done()
			outcomes[i] = invoke(ctx, fn, i)
		}()
	}
	wg.Wait()

	return outcomes, joinFailures(outcomes)
}

func (b *GoroutineBackend) CancellationStorm(ctx context.Context, taskCount int, cancelAfter time.Duration, fn UnitFunc) (StormResult, error) {
	if taskCount < 0 {
		return StormResult{}, ErrInvalidCount
	}

	scope, cancel := stormScope(ctx)
	defer cancel(nil)

	tally := newStormTally()
	var wg sync.WaitGroup
	wg.Add(taskCount)
	for i := 0; i < taskCount; i++ {
		unitCtx, unitCancel := context.WithCancel(scope)
		go func() {
			defer wg.Done()
			defer unitCancel()
			tally.observe(invoke(unitCtx, fn, i))
		}()
	}

	waitErr := awaitSignal(ctx, b, cancelAfter, tally, cancel)
	wg.Wait()

	return tally.settle(), waitErr
}
