package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Values are layered: built-in defaults, then the config file, then
// explicitly set flags.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(&cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(&cfg, flagSet); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "benchmarks"); ok {
		val, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("benchmarks: %w", err)
		}
		cfg.Benchmarks = trimAll(val)
	}

	if raw, ok := lookupSetting(settings, "libraries"); ok {
		val, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("libraries: %w", err)
		}
		cfg.Libraries = trimAll(val)
	}

	if raw, ok := lookupSetting(settings, "repetitions"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("repetitions: %w", err)
		}
		cfg.Repetitions = val
	}

	if raw, ok := lookupSetting(settings, "output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		if val = strings.TrimSpace(val); val != "" {
			cfg.Output = val
		}
	}

	if raw, ok := lookupSetting(settings, "format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		cfg.Format = strings.ToLower(strings.TrimSpace(val))
	}

	if raw, ok := lookupSetting(settings, "baseline"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		cfg.Baseline = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "quiet"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("quiet: %w", err)
		}
		cfg.Quiet = val
	}

	if raw, ok := lookupSetting(settings, "loglevel", "log_level", "log-level"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		thresholds, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = thresholds
	}

	if raw, ok := lookupSetting(settings, "taskspawn", "task_spawn", "task-spawn"); ok {
		if err := applyTaskSpawnSettings(cfg, raw); err != nil {
			return fmt.Errorf("task_spawn: %w", err)
		}
	}

	if raw, ok := lookupSetting(settings, "iobound", "io_bound", "io-bound"); ok {
		if err := applyIOBoundSettings(cfg, raw); err != nil {
			return fmt.Errorf("io_bound: %w", err)
		}
	}

	if raw, ok := lookupSetting(settings, "cancellation"); ok {
		if err := applyCancellationSettings(cfg, raw); err != nil {
			return fmt.Errorf("cancellation: %w", err)
		}
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(cfg, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func applyTaskSpawnSettings(cfg *Config, value interface{}) error {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}

	if raw, ok := lookupSetting(settings, "taskcount", "task_count", "task-count"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("task_count: %w", err)
		}
		cfg.TaskSpawn.TaskCount = val
	}
	if raw, ok := lookupSetting(settings, "payloadsleep", "payload_sleep", "payload-sleep"); ok {
		val, err := asSeconds(raw)
		if err != nil {
			return fmt.Errorf("payload_sleep: %w", err)
		}
		cfg.TaskSpawn.PayloadSleep = val
	}
	return nil
}

func applyIOBoundSettings(cfg *Config, value interface{}) error {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.IOBound.Concurrency = val
	}
	if raw, ok := lookupSetting(settings, "opsperworker", "ops_per_worker", "ops-per-worker"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("ops_per_worker: %w", err)
		}
		cfg.IOBound.OpsPerWorker = val
	}
	if raw, ok := lookupSetting(settings, "meandelayms", "mean_delay_ms", "mean-delay-ms", "mean_io_ms"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("mean_delay_ms: %w", err)
		}
		cfg.IOBound.MeanDelayMs = val
	}
	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.IOBound.Seed = val
	}
	return nil
}

func applyCancellationSettings(cfg *Config, value interface{}) error {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}

	if raw, ok := lookupSetting(settings, "taskcount", "task_count", "task-count"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("task_count: %w", err)
		}
		cfg.Cancellation.TaskCount = val
	}
	if raw, ok := lookupSetting(settings, "cancelafter", "cancel_after", "cancel-after"); ok {
		val, err := asSeconds(raw)
		if err != nil {
			return fmt.Errorf("cancel_after: %w", err)
		}
		cfg.Cancellation.CancelAfter = val
	}
	return nil
}

func applyTracingSettings(cfg *Config, value interface{}) error {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}

	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("service_name: %w", err)
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		cfg.Tracing.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		cfg.Tracing.SampleRate = val
	}
	return nil
}
