package backend

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrgroupBackend treats an errgroup.Group as a nursery: the group context is
// the cancel scope shared by every unit and Wait is the join point.
//
// Units never hand their error to the group. Returning one would make the
// group cancel its context on the first failure, which would both break the
// wait-for-all policy and deliver a second, uncoordinated cancellation.
type ErrgroupBackend struct {
	guard runGuard
}

// NewErrgroupBackend returns a ready ErrgroupBackend.
func NewErrgroupBackend() *ErrgroupBackend {
	return &ErrgroupBackend{}
}

func (b *ErrgroupBackend) Name() string { return "errgroup" }

func (b *ErrgroupBackend) Run(ctx context.Context, entry Entrypoint) (any, error) {
	if !b.guard.enter() {
		return nil, ErrReentrant
	}
	defer b.guard.exit()

	g, gctx := errgroup.WithContext(ctx)
	var out Outcome
	g.Go(func() error {
		out = invoke(gctx, func(ctx context.Context, _ int) (any, error) {
			return entry(ctx, b)
		}, 0)
		return out.Err
	})
	err := g.Wait()
	return out.Value, err
}

func (b *ErrgroupBackend) Sleep(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func (b *ErrgroupBackend) SpawnMany(ctx context.Context, count int, fn UnitFunc) ([]Outcome, error) {
	if count < 0 {
		return nil, ErrInvalidCount
	}

	outcomes := make([]Outcome, count)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			outcomes[i] = invoke(gctx, fn, i)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes, joinFailures(outcomes)
}

func (b *ErrgroupBackend) CancellationStorm(ctx context.Context, taskCount int, cancelAfter time.Duration, fn UnitFunc) (StormResult, error) {
	if taskCount < 0 {
		return StormResult{}, ErrInvalidCount
	}

	scope, cancel := stormScope(ctx)
	defer cancel(nil)

	tally := newStormTally()
	g, gctx := errgroup.WithContext(scope)
	for i := 0; i < taskCount; i++ {
		g.Go(func() error {
			tally.observe(invoke(gctx, fn, i))
			return nil
		})
	}

	waitErr := awaitSignal(ctx, b, cancelAfter, tally, cancel)
	_ = g.Wait()

	return tally.settle(), waitErr
}
