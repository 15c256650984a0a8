package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/torosent/crankbench/internal/config"
	"github.com/torosent/crankbench/internal/results"
)

func TestLoadDefaults(t *testing.T) {
	loader := config.NewLoader()

	cfg, err := loader.Load([]string{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Benchmarks) != 0 {
		t.Errorf("Benchmarks = %v, want empty (all)", cfg.Benchmarks)
	}
	if len(cfg.Libraries) != 0 {
		t.Errorf("Libraries = %v, want empty (all)", cfg.Libraries)
	}
	if cfg.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", cfg.Repetitions)
	}
	if cfg.Output != "results/latest.json" {
		t.Errorf("Output = %q, want results/latest.json", cfg.Output)
	}
	if cfg.TaskSpawn.TaskCount != 20000 || cfg.TaskSpawn.PayloadSleep != 500*time.Microsecond {
		t.Errorf("TaskSpawn = %+v", cfg.TaskSpawn)
	}
	if cfg.IOBound.Concurrency != 200 || cfg.IOBound.OpsPerWorker != 200 || cfg.IOBound.MeanDelayMs != 5 || cfg.IOBound.Seed != 1337 {
		t.Errorf("IOBound = %+v", cfg.IOBound)
	}
	if cfg.Cancellation.TaskCount != 5000 || cfg.Cancellation.CancelAfter != 50*time.Millisecond {
		t.Errorf("Cancellation = %+v", cfg.Cancellation)
	}
	if cfg.Tracing.Enabled() {
		t.Error("Tracing.Enabled() = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("Load(--help) error = %v, want ErrHelpRequested", err)
	}
}

func TestLoadRejectsPositionalArguments(t *testing.T) {
	if _, err := config.NewLoader().Load([]string{"task_spawn"}); err == nil {
		t.Fatal("Load() expected error for positional argument")
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{
		"benchmarks": ["task_spawn", "io_bound"],
		"libraries": ["goroutine", "errgroup"],
		"repetitions": 5,
		"output": "out/run.json",
		"task_spawn": {"task_count": 1000, "payload_sleep": 0.001},
		"io_bound": {"concurrency": 10, "ops_per_worker": 20, "mean_delay_ms": 2, "seed": 99},
		"thresholds": ["task_spawn.tasks_per_sec:avg > 1"]
	}`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load([]string{"--config", path, "--repetitions", "2", "--io-seed", "5"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
	if strings.Join(cfg.Benchmarks, ",") != "task_spawn,io_bound" {
		t.Errorf("Benchmarks = %v", cfg.Benchmarks)
	}
	if strings.Join(cfg.Libraries, ",") != "goroutine,errgroup" {
		t.Errorf("Libraries = %v", cfg.Libraries)
	}
	// Flags win over the file.
	if cfg.Repetitions != 2 {
		t.Errorf("Repetitions = %d, want 2", cfg.Repetitions)
	}
	if cfg.IOBound.Seed != 5 {
		t.Errorf("IOBound.Seed = %d, want 5", cfg.IOBound.Seed)
	}
	if cfg.IOBound.Concurrency != 10 || cfg.IOBound.OpsPerWorker != 20 || cfg.IOBound.MeanDelayMs != 2 {
		t.Errorf("IOBound = %+v", cfg.IOBound)
	}
	if cfg.Output != "out/run.json" {
		t.Errorf("Output = %q, want out/run.json", cfg.Output)
	}
	if cfg.TaskSpawn.TaskCount != 1000 || cfg.TaskSpawn.PayloadSleep != time.Millisecond {
		t.Errorf("TaskSpawn = %+v", cfg.TaskSpawn)
	}
	if len(cfg.Thresholds) != 1 {
		t.Errorf("Thresholds = %v", cfg.Thresholds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"benchmarks: [cancellation]",
		"format: yaml",
		"quiet: true",
		"cancellation:",
		"  task_count: 50",
		"  cancel_after: 10ms",
		"tracing:",
		"  endpoint: localhost:4318",
		"  protocol: http",
		"  sample_rate: 0.5",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Benchmarks) != 1 || cfg.Benchmarks[0] != "cancellation" {
		t.Errorf("Benchmarks = %v", cfg.Benchmarks)
	}
	if !cfg.Quiet {
		t.Error("Quiet = false, want true")
	}
	if cfg.ResultFormat() != results.FormatYAML {
		t.Errorf("ResultFormat() = %q, want yaml", cfg.ResultFormat())
	}
	if cfg.Cancellation.TaskCount != 50 || cfg.Cancellation.CancelAfter != 10*time.Millisecond {
		t.Errorf("Cancellation = %+v", cfg.Cancellation)
	}
	if !cfg.Tracing.Enabled() || cfg.Tracing.Protocol != "http" || cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Fatal("Load() expected error for missing config file")
	}
}

func TestValidateAggregatesIssues(t *testing.T) {
	cfg := config.Default()
	cfg.Benchmarks = []string{"task_spawn", "pingpong", "task_spawn"}
	cfg.Libraries = []string{"trio"}
	cfg.Repetitions = 0
	cfg.Output = " "
	cfg.Format = "csv"
	cfg.TaskSpawn.TaskCount = -1
	cfg.Cancellation.CancelAfter = -time.Second
	cfg.Thresholds = []string{"nonsense"}
	cfg.LogLevel = "loud"
	cfg.Tracing.Protocol = "thrift"
	cfg.Tracing.SampleRate = 2

	err := cfg.Validate()
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want ValidationError", err)
	}

	wantFragments := []string{
		`benchmarks: unknown name "pingpong"`,
		`benchmarks: "task_spawn" listed twice`,
		`libraries: unknown name "trio"`,
		"repetitions must be >= 1",
		"output path is required",
		"unsupported result format",
		"task_spawn: task_count must be >= 0",
		"cancellation: cancel_after must be >= 0",
		"threshold[0]",
		`log level "loud" is invalid`,
		`tracing protocol "thrift" is invalid`,
		"tracing sample_rate must be between 0.0 and 1.0",
	}
	issues := strings.Join(verr.Issues(), "\n")
	for _, want := range wantFragments {
		if !strings.Contains(issues, want) {
			t.Errorf("issues missing %q:\n%s", want, issues)
		}
	}
	if len(verr.Issues()) != len(wantFragments) {
		t.Errorf("got %d issues, want %d:\n%s", len(verr.Issues()), len(wantFragments), issues)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	if got := (config.ValidationError{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestResultFormat(t *testing.T) {
	cfg := config.Default()
	if cfg.ResultFormat() != results.FormatJSON {
		t.Errorf("default ResultFormat() = %q, want json", cfg.ResultFormat())
	}
	cfg.Output = "results/latest.yml"
	if cfg.ResultFormat() != results.FormatYAML {
		t.Errorf("ResultFormat() for .yml = %q, want yaml", cfg.ResultFormat())
	}
	cfg.Format = "json"
	if cfg.ResultFormat() != results.FormatJSON {
		t.Errorf("explicit format ignored: %q", cfg.ResultFormat())
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := config.Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
