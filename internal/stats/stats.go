// Package stats computes summary statistics over fully materialized samples.
package stats

import (
	"math"
	"slices"
	"time"
)

// Percentile returns the pct-th percentile of values using linear interpolation
// between the two closest order statistics. An empty sample yields 0.
// The input slice is not modified.
func Percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	k := float64(len(sorted)-1) * (pct / 100)
	if k <= 0 {
		return sorted[0]
	}
	if k >= float64(len(sorted)-1) {
		return sorted[len(sorted)-1]
	}

	lo := math.Floor(k)
	hi := math.Ceil(k)
	if lo == hi {
		return sorted[int(k)]
	}
	return sorted[int(lo)]*(hi-k) + sorted[int(hi)]*(k-lo)
}

// Mean returns the arithmetic mean of values, or 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Seconds converts durations to float64 seconds.
func Seconds(values []time.Duration) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.Seconds()
	}
	return out
}
