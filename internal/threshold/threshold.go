package threshold

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/torosent/crankbench/internal/results"
	"github.com/torosent/crankbench/internal/scenario"
	"github.com/torosent/crankbench/internal/stats"
)

// Threshold is a pass/fail assertion over one scenario metric.
type Threshold struct {
	Scenario  string  // e.g., "task_spawn", "cancellation"
	Metric    string  // e.g., "tasks_per_sec", "settle_s"
	Aggregate string  // aggregation across repetitions, e.g., "avg", "p95", "max"
	Operator  string  // e.g., "<", "<=", ">", ">=", "=="
	Value     float64 // The threshold value to compare against
	Raw       string  // Original threshold string for display
}

// Result is the outcome of one threshold for one library.
type Result struct {
	Threshold Threshold
	Library   string
	Actual    float64
	Pass      bool
	Message   string
}

var pattern = regexp.MustCompile(`^([a-z_]+)\.([a-z0-9_]+):([a-z0-9]+)\s*([<>=!]+)\s*(-?[0-9.]+(?:[eE][-+]?[0-9]+)?)$`)

var (
	validAggregates = []string{"p50", "p90", "p95", "p99", "avg", "mean", "min", "max", "count"}
	validOperators  = []string{"<", "<=", ">", ">=", "=="}
)

// Evaluator evaluates thresholds against a result document.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks every threshold against every library in doc, in the
// order the libraries were run.
func (e *Evaluator) Evaluate(doc *results.Document) []Result {
	if len(e.thresholds) == 0 || doc == nil {
		return nil
	}

	libraries := doc.Meta.Libraries
	if len(libraries) == 0 {
		for _, r := range doc.Results {
			if !slices.Contains(libraries, r.Library) {
				libraries = append(libraries, r.Library)
			}
		}
	}

	out := make([]Result, 0, len(e.thresholds)*len(libraries))
	for _, t := range e.thresholds {
		for _, lib := range libraries {
			values := results.MetricValues(doc.Filter(lib, t.Scenario), t.Metric)
			out = append(out, evaluateOne(t, lib, values))
		}
	}
	return out
}

// Passed reports whether every result passed.
func Passed(rs []Result) bool {
	for _, r := range rs {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, library string, values []float64) Result {
	if len(values) == 0 {
		return Result{
			Threshold: t,
			Library:   library,
			Message:   fmt.Sprintf("✗ %s [%s]: no %s.%s samples", t.Raw, library, t.Scenario, t.Metric),
		}
	}

	actual := aggregate(t.Aggregate, values)
	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	return Result{
		Threshold: t,
		Library:   library,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s [%s]: %.4g %s %.4g", status, t.Raw, library, actual, t.Operator, t.Value),
	}
}

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "task_spawn.tasks_per_sec:avg > 10000"   (mean over repetitions)
// - "io_bound.latency_p99_ms:max < 50"       (worst repetition)
// - "cancellation.settle_s:p95 <= 0.25"      (percentile over repetitions)
// - "cancellation.exceptions:max == 0"
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := pattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: scenario.metric:aggregate operator value, e.g., 'task_spawn.tasks_per_sec:avg > 10000')", s)
	}

	scenarioName := matches[1]
	metric := matches[2]
	agg := matches[3]
	operator := matches[4]
	valueStr := matches[5]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !slices.Contains(scenario.Names(), scenarioName) {
		return Threshold{}, fmt.Errorf("unsupported scenario: %q (supported: %s)", scenarioName, strings.Join(scenario.Names(), ", "))
	}
	if !slices.Contains(validAggregates, agg) {
		return Threshold{}, fmt.Errorf("unsupported aggregate: %q (supported: %s)", agg, strings.Join(validAggregates, ", "))
	}
	if !slices.Contains(validOperators, operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: %s)", operator, strings.Join(validOperators, ", "))
	}

	return Threshold{
		Scenario:  scenarioName,
		Metric:    metric,
		Aggregate: agg,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

func aggregate(agg string, values []float64) float64 {
	switch agg {
	case "p50":
		return stats.Percentile(values, 50)
	case "p90":
		return stats.Percentile(values, 90)
	case "p95":
		return stats.Percentile(values, 95)
	case "p99":
		return stats.Percentile(values, 99)
	case "min":
		return slices.Min(values)
	case "max":
		return slices.Max(values)
	case "count":
		return float64(len(values))
	default:
		return stats.Mean(values)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
