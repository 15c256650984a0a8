package threshold

import (
	"strings"
	"testing"

	"github.com/torosent/crankbench/internal/results"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "throughput floor",
			input: "task_spawn.tasks_per_sec:avg > 10000",
			want: Threshold{
				Scenario:  "task_spawn",
				Metric:    "tasks_per_sec",
				Aggregate: "avg",
				Operator:  ">",
				Value:     10000,
				Raw:       "task_spawn.tasks_per_sec:avg > 10000",
			},
		},
		{
			name:  "settle ceiling with <=",
			input: "cancellation.settle_s:p95 <= 0.25",
			want: Threshold{
				Scenario:  "cancellation",
				Metric:    "settle_s",
				Aggregate: "p95",
				Operator:  "<=",
				Value:     0.25,
				Raw:       "cancellation.settle_s:p95 <= 0.25",
			},
		},
		{
			name:  "metric with digits",
			input: "io_bound.latency_p999_ms:max<100",
			want: Threshold{
				Scenario:  "io_bound",
				Metric:    "latency_p999_ms",
				Aggregate: "max",
				Operator:  "<",
				Value:     100,
				Raw:       "io_bound.latency_p999_ms:max<100",
			},
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  cancellation.exceptions:max == 0  ",
			want: Threshold{
				Scenario:  "cancellation",
				Metric:    "exceptions",
				Aggregate: "max",
				Operator:  "==",
				Value:     0,
				Raw:       "cancellation.exceptions:max == 0",
			},
		},
		{name: "empty string", input: "", wantError: true},
		{name: "missing scenario", input: "tasks_per_sec:avg > 1", wantError: true},
		{name: "unknown scenario", input: "pingpong.rtt:avg < 1", wantError: true},
		{name: "unknown aggregate", input: "task_spawn.tasks_per_sec:rate > 1", wantError: true},
		{name: "unknown operator", input: "task_spawn.tasks_per_sec:avg != 1", wantError: true},
		{name: "bad value", input: "task_spawn.tasks_per_sec:avg > 1.2.3", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	got, err := ParseMultiple([]string{
		"task_spawn.tasks_per_sec:avg > 1",
		"cancellation.cancelled:min >= 5000",
	})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ParseMultiple() returned %d thresholds, want 2", len(got))
	}

	_, err = ParseMultiple([]string{"task_spawn.tasks_per_sec:avg > 1", "bogus", "also bogus"})
	if err == nil {
		t.Fatal("ParseMultiple() expected error")
	}
	if !strings.Contains(err.Error(), "threshold[1]") || !strings.Contains(err.Error(), "threshold[2]") {
		t.Errorf("error should name every bad entry, got %v", err)
	}

	none, err := ParseMultiple(nil)
	if err != nil || none != nil {
		t.Errorf("ParseMultiple(nil) = %v, %v; want nil, nil", none, err)
	}
}

func testDocument() *results.Document {
	entry := func(lib string, rep int, settle float64) results.Result {
		return results.Result{
			Library:  lib,
			Scenario: "cancellation",
			Rep:      rep,
			Metrics:  map[string]float64{"settle_s": settle, "cancelled": 100},
		}
	}
	return &results.Document{
		Meta: results.Meta{Libraries: []string{"goroutine", "conc"}},
		Results: []results.Result{
			entry("goroutine", 1, 0.1),
			entry("goroutine", 2, 0.3),
			entry("goroutine", 3, 0.2),
			entry("conc", 1, 0.9),
		},
	}
}

func TestEvaluatePerLibrary(t *testing.T) {
	tests := []struct {
		threshold  string
		wantActual map[string]float64
		wantPass   map[string]bool
	}{
		{
			threshold:  "cancellation.settle_s:max < 0.5",
			wantActual: map[string]float64{"goroutine": 0.3, "conc": 0.9},
			wantPass:   map[string]bool{"goroutine": true, "conc": false},
		},
		{
			threshold:  "cancellation.settle_s:avg <= 0.2",
			wantActual: map[string]float64{"goroutine": 0.2, "conc": 0.9},
			wantPass:   map[string]bool{"goroutine": true, "conc": false},
		},
		{
			threshold:  "cancellation.settle_s:min >= 0.1",
			wantActual: map[string]float64{"goroutine": 0.1, "conc": 0.9},
			wantPass:   map[string]bool{"goroutine": true, "conc": true},
		},
		{
			threshold:  "cancellation.settle_s:p50 == 0.2",
			wantActual: map[string]float64{"goroutine": 0.2, "conc": 0.9},
			wantPass:   map[string]bool{"goroutine": true, "conc": false},
		},
		{
			threshold:  "cancellation.cancelled:count == 3",
			wantActual: map[string]float64{"goroutine": 3, "conc": 1},
			wantPass:   map[string]bool{"goroutine": true, "conc": false},
		},
	}

	doc := testDocument()
	for _, tt := range tests {
		t.Run(tt.threshold, func(t *testing.T) {
			th, err := Parse(tt.threshold)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got := NewEvaluator([]Threshold{th}).Evaluate(doc)
			if len(got) != 2 {
				t.Fatalf("Evaluate() returned %d results, want 2", len(got))
			}
			if got[0].Library != "goroutine" || got[1].Library != "conc" {
				t.Fatalf("results not in library order: %s, %s", got[0].Library, got[1].Library)
			}
			for _, r := range got {
				if diff := r.Actual - tt.wantActual[r.Library]; diff > 1e-9 || diff < -1e-9 {
					t.Errorf("%s actual = %g, want %g", r.Library, r.Actual, tt.wantActual[r.Library])
				}
				if r.Pass != tt.wantPass[r.Library] {
					t.Errorf("%s pass = %v, want %v (%s)", r.Library, r.Pass, tt.wantPass[r.Library], r.Message)
				}
			}
		})
	}
}

func TestEvaluateMissingMetricFails(t *testing.T) {
	th, err := Parse("task_spawn.tasks_per_sec:avg > 1")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := NewEvaluator([]Threshold{th}).Evaluate(testDocument())
	for _, r := range got {
		if r.Pass {
			t.Errorf("%s passed without samples", r.Library)
		}
		if !strings.Contains(r.Message, "no task_spawn.tasks_per_sec samples") {
			t.Errorf("unexpected message %q", r.Message)
		}
	}
	if Passed(got) {
		t.Error("Passed() = true, want false")
	}
}

func TestEvaluateFallsBackToResultLibraries(t *testing.T) {
	doc := testDocument()
	doc.Meta.Libraries = nil

	th, _ := Parse("cancellation.cancelled:min >= 100")
	got := NewEvaluator([]Threshold{th}).Evaluate(doc)
	if len(got) != 2 {
		t.Fatalf("Evaluate() returned %d results, want 2", len(got))
	}
	if !Passed(got) {
		t.Errorf("Passed() = false, want true: %+v", got)
	}
}

func TestEvaluateWithoutThresholds(t *testing.T) {
	if got := NewEvaluator(nil).Evaluate(testDocument()); got != nil {
		t.Errorf("Evaluate() = %v, want nil", got)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		actual   float64
		op       string
		expected float64
		want     bool
	}{
		{1, "<", 2, true},
		{2, "<", 2, false},
		{2, "<=", 2, true},
		{3, ">", 2, true},
		{2, ">=", 2 + 1e-12, true},
		{0.1 + 0.2, "==", 0.3, true},
		{1, "!=", 2, false},
	}
	for _, tt := range tests {
		if got := compareValues(tt.actual, tt.op, tt.expected); got != tt.want {
			t.Errorf("compareValues(%g %s %g) = %v, want %v", tt.actual, tt.op, tt.expected, got, tt.want)
		}
	}
}
