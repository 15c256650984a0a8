package backend

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"
)

// runGuard rejects nested Run calls on the same backend value.
type runGuard struct {
	active atomic.Bool
}

func (g *runGuard) enter() bool {
	return g.active.CompareAndSwap(false, true)
}

func (g *runGuard) exit() {
	g.active.Store(false)
}

// invoke runs one unit, converting a panic into that unit's error.
func invoke(ctx context.Context, fn UnitFunc, index int) Outcome {
	var out Outcome
	if r := panics.Try(func() { out.Value, out.Err = fn(ctx, index) }); r != nil {
		return Outcome{Err: r.AsError()}
	}
	return out
}

// joinFailures folds every failed outcome into one error, in launch order.
func joinFailures(outcomes []Outcome) error {
	var errs []error
	for i, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, &UnitError{Index: i, Err: o.Err})
		}
	}
	return errors.Join(errs...)
}

// sleep blocks the calling goroutine only; other units keep running.
// A non-positive d still yields to the scheduler so it remains a suspension
// point where cancellation is observed.
func sleep(ctx context.Context, d time.Duration) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	if d <= 0 {
		runtime.Gosched()
		return context.Cause(ctx)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}

// stormScope derives the context a storm's units run under. It is detached
// from the caller's cancellation so that the storm signal is the only way a
// unit gets cancelled; caller cancellation is forwarded through the signal.
func stormScope(ctx context.Context) (context.Context, context.CancelCauseFunc) {
	return context.WithCancelCause(context.WithoutCancel(ctx))
}
