package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/torosent/crankbench/internal/backend"
	"github.com/torosent/crankbench/internal/results"
	"github.com/torosent/crankbench/internal/scenario"
	"github.com/torosent/crankbench/internal/threshold"
)

type Config struct {
	Benchmarks   []string                    `mapstructure:"benchmarks"`
	Libraries    []string                    `mapstructure:"libraries"`
	Repetitions  int                         `mapstructure:"repetitions"`
	Output       string                      `mapstructure:"output"`
	Format       string                      `mapstructure:"format"`
	TaskSpawn    scenario.TaskSpawnParams    `mapstructure:"task_spawn"`
	IOBound      scenario.IOBoundParams      `mapstructure:"io_bound"`
	Cancellation scenario.CancellationParams `mapstructure:"cancellation"`
	Thresholds   []string                    `mapstructure:"thresholds"`
	Baseline     string                      `mapstructure:"baseline"`
	LogLevel     string                      `mapstructure:"log_level"`
	Quiet        bool                        `mapstructure:"quiet"`
	ConfigFile   string                      `mapstructure:"-"`
	Tracing      TracingConfig               `mapstructure:"tracing"`
}

// TracingConfig selects where benchmark spans are exported.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector host:port
	Protocol    string  `mapstructure:"protocol"`     // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"` // resource service.name
	Insecure    bool    `mapstructure:"insecure"`     // plaintext transport
	SampleRate  float64 `mapstructure:"sample_rate"`  // 0.0 to 1.0
}

// Enabled reports whether an endpoint was configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// Default returns the configuration used when neither a config file nor
// flags override anything.
func Default() Config {
	return Config{
		Repetitions:  1,
		Output:       results.DefaultPath,
		TaskSpawn:    scenario.DefaultTaskSpawnParams(),
		IOBound:      scenario.DefaultIOBoundParams(),
		Cancellation: scenario.DefaultCancellationParams(),
		LogLevel:     "info",
		Tracing: TracingConfig{
			Protocol:    "grpc",
			ServiceName: "crankbench",
			SampleRate:  1.0,
		},
	}
}

// ResultFormat resolves the output encoding, inferring it from the output
// path when Format is empty.
func (c Config) ResultFormat() results.Format {
	if f, err := results.ParseFormat(c.Format); err == nil && f != "" {
		return f
	}
	return results.FormatFromPath(c.Output)
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	issues = append(issues, validateSelection("benchmarks", c.Benchmarks, scenario.Names())...)
	issues = append(issues, validateSelection("libraries", c.Libraries, backend.DefaultRegistry().Names())...)

	if c.Repetitions < 1 {
		issues = append(issues, "repetitions must be >= 1")
	}
	if strings.TrimSpace(c.Output) == "" {
		issues = append(issues, "output path is required")
	}
	if _, err := results.ParseFormat(c.Format); err != nil {
		issues = append(issues, err.Error())
	}

	issues = append(issues, c.TaskSpawn.Validate()...)
	issues = append(issues, c.IOBound.Validate()...)
	issues = append(issues, c.Cancellation.Validate()...)

	if _, err := threshold.ParseMultiple(c.Thresholds); err != nil {
		issues = append(issues, err.Error())
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		issues = append(issues, fmt.Sprintf("log level %q is invalid (use debug, info, warn or error)", c.LogLevel))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func validateSelection(field string, names, available []string) []string {
	var issues []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		switch {
		case strings.TrimSpace(name) == "":
			issues = append(issues, fmt.Sprintf("%s: empty name", field))
		case seen[name]:
			issues = append(issues, fmt.Sprintf("%s: %q listed twice", field, name))
		case !slices.Contains(available, name):
			issues = append(issues, fmt.Sprintf("%s: unknown name %q (available: %s)", field, name, strings.Join(available, ", ")))
		}
		seen[name] = true
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol %q is invalid (use grpc or http)", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
