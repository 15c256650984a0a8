package scenario

import (
	"context"
	"log/slog"
	"time"

	"github.com/torosent/crankbench/internal/backend"
)

// stuckInterval is how long a storm unit sleeps per loop iteration.
const stuckInterval = time.Second

// Cancellation launches many units that never finish on their own and
// cancels them all at once to measure teardown cost.
type Cancellation struct {
	params CancellationParams
	logger *slog.Logger
}

func NewCancellation(p CancellationParams) Cancellation {
	return Cancellation{params: p}
}

// WithLogger returns a copy that reports unit failure kinds at debug level.
func (s Cancellation) WithLogger(logger *slog.Logger) Cancellation {
	s.logger = logger
	return s
}

func (s Cancellation) Name() string { return NameCancellation }

func (s Cancellation) Params() map[string]any { return s.params.Snapshot() }

func (s Cancellation) Run(ctx context.Context, b backend.Backend) (Metrics, error) {
	p := s.params

	launched := time.Now()
	res, err := b.CancellationStorm(ctx, p.TaskCount, p.CancelAfter, stuckUnit(b))
	total := time.Since(launched)
	if err != nil {
		return nil, err
	}

	if s.logger != nil && len(res.Failures) > 0 {
		s.logger.DebugContext(ctx, "storm unit failures",
			slog.String("library", b.Name()),
			slog.Any("kinds", res.Failures),
		)
	}

	return Metrics{
		"cancelled":      float64(res.Cancelled),
		"exceptions":     float64(res.Exceptions),
		"settle_s":       res.Settle.Seconds(),
		"tasks":          float64(p.TaskCount),
		"cancel_after_s": p.CancelAfter.Seconds(),
		"duration_s":     total.Seconds(),
	}, nil
}

// stuckUnit simulates a long-running unit: it only ever exits when its sleep
// is interrupted.
func stuckUnit(b backend.Backend) backend.UnitFunc {
	return func(ctx context.Context, _ int) (any, error) {
		for {
			if err := b.Sleep(ctx, stuckInterval); err != nil {
				return nil, err
			}
		}
	}
}
