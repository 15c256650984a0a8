package scenario

import (
	"context"
	"time"

	"github.com/torosent/crankbench/internal/backend"
	"github.com/torosent/crankbench/internal/metrics"
)

// TaskSpawn spawns many short-lived units that each sleep once, measuring
// spawn/teardown throughput.
type TaskSpawn struct {
	params TaskSpawnParams
}

func NewTaskSpawn(p TaskSpawnParams) TaskSpawn {
	return TaskSpawn{params: p}
}

func (s TaskSpawn) Name() string { return NameTaskSpawn }

func (s TaskSpawn) Params() map[string]any { return s.params.Snapshot() }

func (s TaskSpawn) Run(ctx context.Context, b backend.Backend) (Metrics, error) {
	p := s.params
	latencies := metrics.NewCollectorWithCapacity(p.TaskCount)

	started := time.Now()
	_, err := b.SpawnMany(ctx, p.TaskCount, func(ctx context.Context, _ int) (any, error) {
		start := time.Now()
		err := b.Sleep(ctx, p.PayloadSleep)
		latencies.Record(time.Since(start), err)
		return nil, err
	})
	elapsed := time.Since(started)
	if err := batchError(ctx, err); err != nil {
		return nil, err
	}

	st := latencies.Stats()
	return Metrics{
		"tasks":           float64(p.TaskCount),
		"payload_sleep_s": p.PayloadSleep.Seconds(),
		"duration_s":      elapsed.Seconds(),
		"tasks_per_sec":   perSecond(p.TaskCount, elapsed),
		"latency_p50_ms":  metrics.Milliseconds(st.P50Latency),
		"latency_p95_ms":  metrics.Milliseconds(st.P95Latency),
		"latency_max_ms":  metrics.Milliseconds(st.MaxLatency),
		"failures":        float64(st.Failures),
	}, nil
}
