package metrics

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/crankbench/internal/stats"
)

// Collector records per-unit latencies in a thread-safe manner.
type Collector struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	samples      []time.Duration
	successes    int64
	failures     int64
	minLatency   time.Duration
	maxLatency   time.Duration
	sumLatency   time.Duration
	errorsByType map[string]int64
}

// Stats represents aggregated latency metrics.
type Stats struct {
	Total       int64
	Successes   int64
	Failures    int64
	MinLatency  time.Duration
	MaxLatency  time.Duration
	MeanLatency time.Duration
	P50Latency  time.Duration
	P95Latency  time.Duration
	P99Latency  time.Duration
	// P999Latency comes from the HDR histogram rather than the raw sample.
	P999Latency time.Duration
	Errors      map[string]int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return NewCollectorWithCapacity(0)
}

// NewCollectorWithCapacity preallocates room for n samples so recording does
// not grow the backing slice during a measurement.
func NewCollectorWithCapacity(n int) *Collector {
	if n < 0 {
		n = 0
	}
	// Track latencies from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:         h,
		samples:      make([]time.Duration, 0, n),
		errorsByType: make(map[string]int64),
	}
}

// Record records a single unit's latency and error state.
func (c *Collector) Record(latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.samples = append(c.samples, latency)
	c.sumLatency += latency

	if len(c.samples) == 1 || latency < c.minLatency {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	if err == nil {
		c.successes++
		return
	}
	c.failures++
	c.errorsByType[FriendlyErrorName(fmt.Sprintf("%T", err))]++
}

// Stats computes aggregated statistics over everything recorded so far.
// Percentiles up to p99 are exact (linear interpolation over the raw sample).
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	out := Stats{
		Total:      total,
		Successes:  c.successes,
		Failures:   c.failures,
		MinLatency: c.minLatency,
		MaxLatency: c.maxLatency,
	}
	if total == 0 {
		return out
	}

	out.MeanLatency = time.Duration(int64(c.sumLatency) / total)

	seconds := stats.Seconds(c.samples)
	out.P50Latency = fromSeconds(stats.Percentile(seconds, 50))
	out.P95Latency = fromSeconds(stats.Percentile(seconds, 95))
	out.P99Latency = fromSeconds(stats.Percentile(seconds, 99))

	if c.hist.TotalCount() > 0 {
		out.P999Latency = time.Duration(c.hist.ValueAtQuantile(99.9)) * time.Microsecond
	}

	if len(c.errorsByType) > 0 {
		out.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			out.Errors[k] = int(v)
		}
	}
	return out
}

// Samples returns a copy of the recorded latencies in recording order.
func (c *Collector) Samples() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.samples...)
}

// Milliseconds converts a duration into fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
