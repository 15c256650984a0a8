package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/torosent/crankbench/internal/results"
	"github.com/torosent/crankbench/internal/threshold"
)

func sampleDocument() *results.Document {
	return &results.Document{
		Meta: results.Meta{
			RunID:       "01HZZZZZZZZZZZZZZZZZZZZZZZ",
			Platform:    "linux-amd64-go1.25.0",
			Benchmarks:  []string{"task_spawn", "cancellation"},
			Libraries:   []string{"goroutine", "conc"},
			Repetitions: 2,
		},
		Results: []results.Result{
			{Library: "goroutine", Scenario: "task_spawn", Rep: 1, DurationS: 0.2, Metrics: map[string]float64{"tasks_per_sec": 1000, "latency_p95_ms": 2}},
			{Library: "goroutine", Scenario: "task_spawn", Rep: 2, DurationS: 0.4, Metrics: map[string]float64{"tasks_per_sec": 3000, "latency_p95_ms": 4}},
			{Library: "goroutine", Scenario: "cancellation", Rep: 1, DurationS: 0.1, Metrics: map[string]float64{"settle_s": 0.01, "cancelled": 10, "exceptions": 0}},
			{Library: "conc", Scenario: "task_spawn", Rep: 1, DurationS: 0.5, Metrics: map[string]float64{"tasks_per_sec": 500, "latency_p95_ms": 8}},
		},
	}
}

func TestWriteProgress(t *testing.T) {
	var buf bytes.Buffer
	WriteProgress(&buf, results.Result{
		Library:  "errgroup",
		Scenario: "io_bound",
		Rep:      3,
		Metrics:  map[string]float64{"ops_per_sec": 1234.5, "ops": 40, "duration_s": 0.25},
	})

	want := "io_bound on errgroup (rep 3) -> duration_s=0.25 ops=40 ops_per_sec=1234.5\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteProgress() = %q, want %q", got, want)
	}

	// A nil writer is a no-op.
	WriteProgress(nil, results.Result{})
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleDocument())
	out := buf.String()

	for _, want := range []string{
		"Benchmark Results",
		"01HZZZZZZZZZZZZZZZZZZZZZZZ",
		"tasks_per_sec=2000 latency_p95_ms=3",
		"settle_s=0.01 cancelled=10 exceptions=0",
		"tasks_per_sec=500",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	// Rows are grouped by scenario first.
	goroutineSpawn := strings.Index(out, "task_spawn    goroutine")
	concSpawn := strings.Index(out, "task_spawn    conc")
	cancellation := strings.Index(out, "cancellation  goroutine")
	if goroutineSpawn < 0 || concSpawn < 0 || cancellation < 0 {
		t.Fatalf("unexpected table layout:\n%s", out)
	}
	if !(goroutineSpawn < concSpawn && concSpawn < cancellation) {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestPrintReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, &results.Document{})
	if !strings.Contains(buf.String(), "No results.") {
		t.Errorf("expected empty marker, got %q", buf.String())
	}
}

func TestPrintThresholdResults(t *testing.T) {
	var buf bytes.Buffer
	PrintThresholdResults(&buf, []threshold.Result{
		{Pass: true, Message: "✓ a"},
		{Pass: false, Message: "✗ b"},
	})
	out := buf.String()
	if !strings.Contains(out, "✓ a") || !strings.Contains(out, "✗ b") {
		t.Errorf("messages missing: %q", out)
	}
	if !strings.Contains(out, "Thresholds: 1/2 passed") {
		t.Errorf("tally missing: %q", out)
	}

	buf.Reset()
	PrintThresholdResults(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output without thresholds, got %q", buf.String())
	}
}

func TestCompare(t *testing.T) {
	baseline := []byte(`{
		"meta": {"platform": "old"},
		"results": [
			{"library": "goroutine", "scenario": "task_spawn", "rep": 1, "metrics": {"tasks_per_sec": 1000, "legacy_metric": 1}},
			{"library": "goroutine", "scenario": "task_spawn", "rep": 2, "metrics": {"tasks_per_sec": 3000, "latency_p95_ms": 0}},
			{"library": "trio", "scenario": "task_spawn", "rep": 1, "metrics": {"tasks_per_sec": 10}}
		]
	}`)

	deltas, err := Compare(sampleDocument(), baseline)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(deltas) != 2 {
		t.Fatalf("Compare() returned %d deltas, want 2: %+v", len(deltas), deltas)
	}

	byMetric := map[string]Delta{}
	for _, d := range deltas {
		if d.Library != "goroutine" || d.Scenario != "task_spawn" {
			t.Errorf("unexpected delta %+v", d)
		}
		byMetric[d.Metric] = d
	}

	tps := byMetric["tasks_per_sec"]
	if tps.Baseline != 2000 || tps.Current != 2000 || tps.Percent != 0 {
		t.Errorf("tasks_per_sec delta = %+v", tps)
	}
	// Zero baseline yields no percentage.
	if p95 := byMetric["latency_p95_ms"]; p95.Baseline != 0 || p95.Current != 3 || p95.Percent != 0 {
		t.Errorf("latency_p95_ms delta = %+v", p95)
	}
}

func TestComparePercent(t *testing.T) {
	baseline := []byte(`{"results": [{"library": "conc", "scenario": "task_spawn", "metrics": {"tasks_per_sec": 400}}]}`)
	deltas, err := Compare(sampleDocument(), baseline)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(deltas) != 1 || deltas[0].Percent != 25 {
		t.Errorf("Compare() = %+v, want a single +25%% delta", deltas)
	}

	var buf bytes.Buffer
	PrintComparison(&buf, deltas)
	if !strings.Contains(buf.String(), "+25.0%") {
		t.Errorf("comparison table missing delta: %q", buf.String())
	}
}

func TestCompareRejectsInvalidJSON(t *testing.T) {
	if _, err := Compare(sampleDocument(), []byte("{not json")); !errors.Is(err, ErrInvalidBaseline) {
		t.Errorf("Compare() error = %v, want ErrInvalidBaseline", err)
	}
}

func TestLoadBaseline(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "base.json")
	if err := results.Save(jsonPath, sampleDocument(), results.FormatJSON); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	yamlPath := filepath.Join(dir, "base.yaml")
	if err := results.Save(yamlPath, sampleDocument(), results.FormatYAML); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		data, err := LoadBaseline(path)
		if err != nil {
			t.Fatalf("LoadBaseline(%s) error = %v", path, err)
		}
		deltas, err := Compare(sampleDocument(), data)
		if err != nil {
			t.Fatalf("Compare() error = %v", err)
		}
		for _, d := range deltas {
			if d.Percent != 0 {
				t.Errorf("%s: self comparison produced %+v", path, d)
			}
		}
		if len(deltas) == 0 {
			t.Errorf("%s: expected deltas", path)
		}
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBaseline(bad); !errors.Is(err, ErrInvalidBaseline) {
		t.Errorf("LoadBaseline(bad) error = %v, want ErrInvalidBaseline", err)
	}
}
