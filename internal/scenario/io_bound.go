package scenario

import (
	"context"
	"math/rand"
	"time"

	"github.com/torosent/crankbench/internal/backend"
	"github.com/torosent/crankbench/internal/metrics"
)

// IOBound runs a fixed number of workers that each perform a sequence of
// simulated I/O waits with exponentially distributed delays.
type IOBound struct {
	params IOBoundParams
}

func NewIOBound(p IOBoundParams) IOBound {
	return IOBound{params: p}
}

func (s IOBound) Name() string { return NameIOBound }

func (s IOBound) Params() map[string]any { return s.params.Snapshot() }

// DelaySchedule draws every simulated I/O delay up front, worker by worker,
// from a generator seeded with p.Seed. The same parameters always produce the
// same schedule regardless of how a backend interleaves its workers.
func DelaySchedule(p IOBoundParams) [][]time.Duration {
	rng := rand.New(rand.NewSource(p.Seed))
	mean := p.MeanDelayMs * float64(time.Millisecond)

	schedule := make([][]time.Duration, p.Concurrency)
	for w := range schedule {
		row := make([]time.Duration, p.OpsPerWorker)
		for i := range row {
			row[i] = time.Duration(rng.ExpFloat64() * mean)
		}
		schedule[w] = row
	}
	return schedule
}

func (s IOBound) Run(ctx context.Context, b backend.Backend) (Metrics, error) {
	p := s.params
	schedule := DelaySchedule(p)
	totalOps := p.Concurrency * p.OpsPerWorker
	latencies := metrics.NewCollectorWithCapacity(totalOps)

	started := time.Now()
	_, err := b.SpawnMany(ctx, p.Concurrency, func(ctx context.Context, worker int) (any, error) {
		for _, delay := range schedule[worker] {
			start := time.Now()
			err := b.Sleep(ctx, delay)
			latencies.Record(time.Since(start), err)
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	elapsed := time.Since(started)
	if err := batchError(ctx, err); err != nil {
		return nil, err
	}

	st := latencies.Stats()
	return Metrics{
		"workers":         float64(p.Concurrency),
		"ops_per_worker":  float64(p.OpsPerWorker),
		"mean_delay_ms":   p.MeanDelayMs,
		"duration_s":      elapsed.Seconds(),
		"ops":             float64(totalOps),
		"ops_per_sec":     perSecond(totalOps, elapsed),
		"latency_mean_ms": metrics.Milliseconds(st.MeanLatency),
		"latency_p95_ms":  metrics.Milliseconds(st.P95Latency),
		"latency_p99_ms":  metrics.Milliseconds(st.P99Latency),
		"latency_p999_ms": metrics.Milliseconds(st.P999Latency),
	}, nil
}
