package scenario

import (
	"fmt"
	"time"
)

// TaskSpawnParams configures the task-spawn scenario.
type TaskSpawnParams struct {
	TaskCount    int
	PayloadSleep time.Duration
}

// IOBoundParams configures the simulated I/O scenario.
type IOBoundParams struct {
	Concurrency  int
	OpsPerWorker int
	MeanDelayMs  float64
	Seed         int64
}

// CancellationParams configures the cancellation-storm scenario.
type CancellationParams struct {
	TaskCount   int
	CancelAfter time.Duration
}

func DefaultTaskSpawnParams() TaskSpawnParams {
	return TaskSpawnParams{TaskCount: 20_000, PayloadSleep: 500 * time.Microsecond}
}

func DefaultIOBoundParams() IOBoundParams {
	return IOBoundParams{Concurrency: 200, OpsPerWorker: 200, MeanDelayMs: 5, Seed: 1337}
}

func DefaultCancellationParams() CancellationParams {
	return CancellationParams{TaskCount: 5000, CancelAfter: 50 * time.Millisecond}
}

// Snapshot returns the parameters as recorded in the result document.
func (p TaskSpawnParams) Snapshot() map[string]any {
	return map[string]any{
		"task_count":    p.TaskCount,
		"payload_sleep": p.PayloadSleep.Seconds(),
	}
}

func (p TaskSpawnParams) Validate() []string {
	var issues []string
	if p.TaskCount < 0 {
		issues = append(issues, "task_spawn: task_count must be >= 0")
	}
	if p.PayloadSleep < 0 {
		issues = append(issues, "task_spawn: payload_sleep must be >= 0")
	}
	return issues
}

func (p IOBoundParams) Snapshot() map[string]any {
	return map[string]any{
		"concurrency":    p.Concurrency,
		"ops_per_worker": p.OpsPerWorker,
		"mean_delay_ms":  p.MeanDelayMs,
		"seed":           p.Seed,
	}
}

func (p IOBoundParams) Validate() []string {
	var issues []string
	if p.Concurrency < 0 {
		issues = append(issues, "io_bound: concurrency must be >= 0")
	}
	if p.OpsPerWorker < 0 {
		issues = append(issues, "io_bound: ops_per_worker must be >= 0")
	}
	if p.MeanDelayMs < 0 {
		issues = append(issues, fmt.Sprintf("io_bound: mean_delay_ms must be >= 0, got %g", p.MeanDelayMs))
	}
	return issues
}

func (p CancellationParams) Snapshot() map[string]any {
	return map[string]any{
		"task_count":     p.TaskCount,
		"cancel_after_s": p.CancelAfter.Seconds(),
	}
}

func (p CancellationParams) Validate() []string {
	var issues []string
	if p.TaskCount < 0 {
		issues = append(issues, "cancellation: task_count must be >= 0")
	}
	if p.CancelAfter < 0 {
		issues = append(issues, "cancellation: cancel_after must be >= 0")
	}
	return issues
}
