// Package config defines the application configuration and its resolution
// from command-line flags, CPUSTRESS_ environment variables and an optional
// TOML file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"time"

	apperrors "github.com/agbru/cpustress/internal/errors"
)

// EnvPrefix prefixes every environment variable read by the application.
const EnvPrefix = "CPUSTRESS_"

// DefaultDurationSeconds is the run length used when nothing overrides it.
const DefaultDurationSeconds = 5

// MaxDurationSeconds is the longest run whose length fits in a time.Duration.
const MaxDurationSeconds = math.MaxInt64 / int64(time.Second)

// AppConfig holds the resolved configuration of a stress run.
//
// Resolution priority: CLI flags > environment variables > TOML file > defaults.
type AppConfig struct {
	// Duration is the requested run length in seconds. Must be positive.
	Duration int `toml:"duration"`
	// Workers overrides the worker count. 0 means one per logical CPU.
	Workers int `toml:"workers"`
	// Interruptible lets long tasks observe the stop signal between rounds.
	Interruptible bool `toml:"interruptible"`
	// PinThreads pins each worker thread to a CPU (Linux only).
	PinThreads bool `toml:"pin"`
	// Quiet disables the progress spinner and lowers logging to warnings.
	Quiet bool `toml:"quiet"`
	// Verbose enables debug logs and post-run diagnostics.
	Verbose bool `toml:"verbose"`
	// NoColor disables ANSI colors on stderr.
	NoColor bool `toml:"no_color"`
	// Theme selects the stderr color theme: "dark" or "light". Empty means dark.
	Theme string `toml:"theme"`
	// MetricsAddr, when set, serves Prometheus metrics during the run.
	MetricsAddr string `toml:"metrics_addr"`
	// ConfigFile is the TOML file the configuration was layered from.
	ConfigFile string `toml:"-"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() AppConfig {
	return AppConfig{Duration: DefaultDurationSeconds}
}

// Validate checks the configuration and returns a ConfigError describing
// the first problem found.
func (c AppConfig) Validate() error {
	if c.Duration <= 0 {
		return apperrors.NewConfigError("duration must be a positive number of seconds, got %d", c.Duration)
	}
	if int64(c.Duration) > MaxDurationSeconds {
		return apperrors.NewConfigError("duration must be at most %d seconds, got %d", MaxDurationSeconds, c.Duration)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("workers must be zero (auto) or positive, got %d", c.Workers)
	}
	switch c.Theme {
	case "", "dark", "light":
	default:
		return apperrors.NewConfigError("unknown theme %q (valid: dark, light)", c.Theme)
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

// ParseConfig parses command-line arguments, layers the TOML file and the
// environment beneath them, and validates the result.
//
// Parameters:
//   - programName: The name shown in usage messages.
//   - args: The command-line arguments, without the program name.
//   - errWriter: Where usage and parse errors are written.
//
// Returns:
//   - AppConfig: The resolved configuration.
//   - error: flag.ErrHelp when help was requested, or a ConfigError.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := DefaultConfig()
	fs.IntVar(&cfg.Duration, "duration", cfg.Duration, "Run length in seconds.")
	fs.IntVar(&cfg.Duration, "d", cfg.Duration, "Run length in seconds (shorthand).")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of workers (0 = one per logical CPU).")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "Number of workers (shorthand).")
	fs.BoolVar(&cfg.Interruptible, "interruptible", cfg.Interruptible, "Let long tasks stop early when the run ends.")
	fs.BoolVar(&cfg.PinThreads, "pin", cfg.PinThreads, "Pin each worker thread to a CPU (Linux).")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Only print the summary line.")
	fs.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "Only print the summary line (shorthand).")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable debug logs and post-run diagnostics.")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable debug logs (shorthand).")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output.")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "Color theme for stderr output: dark or light.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address during the run.")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "TOML configuration file.")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n\n", programName)
		fmt.Fprintf(fs.Output(), "Runs one CPU-bound worker per logical processor for a fixed duration\n")
		fmt.Fprintf(fs.Output(), "and prints the aggregate throughput.\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nEvery flag can also be set through a %s<NAME> environment variable.\n", EnvPrefix)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, apperrors.NewConfigError("invalid arguments: %v", err)
	}
	if fs.NArg() > 0 {
		return cfg, apperrors.NewConfigError("unexpected arguments: %v", fs.Args())
	}

	if !isFlagSet(fs, "config") {
		cfg.ConfigFile = getEnvString("CONFIG", cfg.ConfigFile)
	}
	if cfg.ConfigFile != "" {
		if err := applyFileOverrides(&cfg, fs, cfg.ConfigFile); err != nil {
			return cfg, err
		}
	}
	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
