package backend

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/torosent/crankbench/internal/metrics"
)

// StormPhase is the lifecycle state of a cancellation storm.
type StormPhase int32

const (
	PhaseRunning StormPhase = iota
	PhaseCancelRequested
	PhaseDraining
	PhaseSettled
)

func (p StormPhase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseCancelRequested:
		return "cancel-requested"
	case PhaseDraining:
		return "draining"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("StormPhase(%d)", int32(p))
	}
}

// stormTally is the accumulator shared by every unit of one storm. Counters
// are atomic; the failure breakdown is guarded by mu.
type stormTally struct {
	cancelled  atomic.Int64
	exceptions atomic.Int64
	phase      atomic.Int32

	signal   sync.Once
	cancelAt time.Time

	mu       sync.Mutex
	failures map[string]int
}

func newStormTally() *stormTally {
	return &stormTally{failures: make(map[string]int)}
}

// observe classifies how a unit exited.
func (t *stormTally) observe(out Outcome) {
	switch {
	case out.Err == nil:
	case errors.Is(out.Err, ErrStormCancelled):
		t.cancelled.Add(1)
	default:
		t.exceptions.Add(1)
		kind := metrics.FriendlyErrorName(fmt.Sprintf("%T", out.Err))
		t.mu.Lock()
		t.failures[kind]++
		t.mu.Unlock()
	}
}

// requestCancel issues the storm signal. Only the first call has any effect.
func (t *stormTally) requestCancel(cancel context.CancelCauseFunc) {
	t.signal.Do(func() {
		t.phase.Store(int32(PhaseCancelRequested))
		t.cancelAt = time.Now()
		cancel(ErrStormCancelled)
		t.phase.Store(int32(PhaseDraining))
	})
}

// settle must be called after every unit has exited.
func (t *stormTally) settle() StormResult {
	settle := time.Since(t.cancelAt)
	t.phase.Store(int32(PhaseSettled))

	t.mu.Lock()
	defer t.mu.Unlock()
	return StormResult{
		Cancelled:  int(t.cancelled.Load()),
		Exceptions: int(t.exceptions.Load()),
		Settle:     settle,
		Failures:   maps.Clone(t.failures),
	}
}

func (t *stormTally) Phase() StormPhase {
	return StormPhase(t.phase.Load())
}

// awaitSignal waits cancelAfter on the backend's own sleep, then fires the
// storm signal. Caller cancellation fires it early and is reported back.
func awaitSignal(ctx context.Context, b Backend, cancelAfter time.Duration, tally *stormTally, cancel context.CancelCauseFunc) error {
	err := b.Sleep(ctx, cancelAfter)
	tally.requestCancel(cancel)
	return err
}
