// Package metrics collects per-unit latency measurements during a benchmark.
//
// A [Collector] is shared by every concurrent unit of one benchmark
// invocation. Units call [Collector.Record] when they finish; the scenario
// calls [Collector.Stats] once the batch has been joined:
//
//	latencies := metrics.NewCollectorWithCapacity(n)
//	latencies.Record(time.Since(start), err)
//	stats := latencies.Stats()
//
// # Statistics
//
// [Stats] carries min/max/mean and exact p50/p95/p99 computed by linear
// interpolation over the raw sample (see package stats). The HDR histogram
// backing the collector provides the p99.9 tail, where exact order
// statistics over a small sample are too noisy to be useful.
//
// # Thread Safety
//
// Record serializes updates behind a mutex so no sample is lost when
// thousands of units finish at once.
//
// # Error Names
//
// [FriendlyErrorName] turns Go error type names into short labels used when
// tallying unit failures by kind.
package metrics
