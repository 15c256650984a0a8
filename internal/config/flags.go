package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crankbench",
		Short:         "Compare task spawning, simulated I/O and cancellation across Go concurrency toolkits",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	def := Default()

	// Selection flags
	flags.StringSlice("benchmarks", nil, "Benchmarks to run (task_spawn, io_bound, cancellation); default all")
	flags.StringSlice("libraries", nil, "Backends to run (goroutine, errgroup, conc); default all")
	flags.IntP("repetitions", "n", def.Repetitions, "Repetitions per (library, benchmark) pair")

	// Output flags
	flags.StringP("output", "o", def.Output, "Result document path (parent directories are created)")
	flags.String("format", "", "Result format: json or yaml (default inferred from --output)")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.String("baseline", "", "Previous result document to compare against")
	flags.Bool("quiet", false, "Suppress the summary table")
	flags.String("log-level", def.LogLevel, "Log level: debug, info, warn or error")

	// Task-spawn flags
	flags.Int("task-count", def.TaskSpawn.TaskCount, "task_spawn: number of units to spawn")
	flags.Float64("payload-sleep", def.TaskSpawn.PayloadSleep.Seconds(), "task_spawn: seconds each unit sleeps")

	// I/O-bound flags
	flags.Int("concurrency", def.IOBound.Concurrency, "io_bound: number of workers")
	flags.Int("ops-per-worker", def.IOBound.OpsPerWorker, "io_bound: simulated calls per worker")
	flags.Float64("mean-io-ms", def.IOBound.MeanDelayMs, "io_bound: mean simulated I/O delay in milliseconds")
	flags.Int64("io-seed", def.IOBound.Seed, "io_bound: random seed for the delay schedule")

	// Cancellation flags
	flags.Int("cancel-tasks", def.Cancellation.TaskCount, "cancellation: number of units in the storm")
	flags.Float64("cancel-after", def.Cancellation.CancelAfter.Seconds(), "cancellation: seconds before the cancel signal")

	// Threshold flags
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g., 'task_spawn.tasks_per_sec:avg > 10000')")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (host:port); tracing is off when empty")
	flags.String("tracing-protocol", def.Tracing.Protocol, "OTLP protocol: grpc or http")
	flags.Bool("tracing-insecure", false, "Use a plaintext connection to the collector")
	flags.Float64("tracing-sample-rate", def.Tracing.SampleRate, "Fraction of benchmark spans to sample (0.0 to 1.0)")
	flags.String("tracing-service-name", def.Tracing.ServiceName, "service.name resource attribute")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	if cmd.Short != "" {
		fmt.Fprintf(out, "%s\n\n", cmd.Short)
	}
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("benchmarks") {
		val, err := fs.GetStringSlice("benchmarks")
		if err != nil {
			return err
		}
		cfg.Benchmarks = trimAll(val)
	}
	if fs.Changed("libraries") {
		val, err := fs.GetStringSlice("libraries")
		if err != nil {
			return err
		}
		cfg.Libraries = trimAll(val)
	}
	if fs.Changed("repetitions") {
		val, err := fs.GetInt("repetitions")
		if err != nil {
			return err
		}
		cfg.Repetitions = val
	}
	if fs.Changed("output") {
		val, err := fs.GetString("output")
		if err != nil {
			return err
		}
		cfg.Output = strings.TrimSpace(val)
	}
	if fs.Changed("format") {
		val, err := fs.GetString("format")
		if err != nil {
			return err
		}
		cfg.Format = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("baseline") {
		val, err := fs.GetString("baseline")
		if err != nil {
			return err
		}
		cfg.Baseline = strings.TrimSpace(val)
	}
	if fs.Changed("quiet") {
		val, err := fs.GetBool("quiet")
		if err != nil {
			return err
		}
		cfg.Quiet = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	if fs.Changed("task-count") {
		val, err := fs.GetInt("task-count")
		if err != nil {
			return err
		}
		cfg.TaskSpawn.TaskCount = val
	}
	if fs.Changed("payload-sleep") {
		val, err := fs.GetFloat64("payload-sleep")
		if err != nil {
			return err
		}
		cfg.TaskSpawn.PayloadSleep = secondsToDuration(val)
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.IOBound.Concurrency = val
	}
	if fs.Changed("ops-per-worker") {
		val, err := fs.GetInt("ops-per-worker")
		if err != nil {
			return err
		}
		cfg.IOBound.OpsPerWorker = val
	}
	if fs.Changed("mean-io-ms") {
		val, err := fs.GetFloat64("mean-io-ms")
		if err != nil {
			return err
		}
		cfg.IOBound.MeanDelayMs = val
	}
	if fs.Changed("io-seed") {
		val, err := fs.GetInt64("io-seed")
		if err != nil {
			return err
		}
		cfg.IOBound.Seed = val
	}
	if fs.Changed("cancel-tasks") {
		val, err := fs.GetInt("cancel-tasks")
		if err != nil {
			return err
		}
		cfg.Cancellation.TaskCount = val
	}
	if fs.Changed("cancel-after") {
		val, err := fs.GetFloat64("cancel-after")
		if err != nil {
			return err
		}
		cfg.Cancellation.CancelAfter = secondsToDuration(val)
	}

	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}

	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}

	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
