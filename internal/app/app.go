// Package app wires configuration, the stress harness, the reporter and the
// optional metrics server into the cpustress command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/cpustress/internal/cli"
	"github.com/agbru/cpustress/internal/config"
	apperrors "github.com/agbru/cpustress/internal/errors"
	"github.com/agbru/cpustress/internal/logging"
	"github.com/agbru/cpustress/internal/metrics"
	"github.com/agbru/cpustress/internal/report"
	"github.com/agbru/cpustress/internal/server"
	"github.com/agbru/cpustress/internal/stress"
	"github.com/agbru/cpustress/internal/sysmon"
	"github.com/agbru/cpustress/internal/tasks"
	"github.com/agbru/cpustress/internal/ui"
)

// Application represents the cpustress application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	harnessOptions []stress.HarnessOption
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithHarnessOptions passes extra options to the stress harness, e.g. a
// custom task registry.
func WithHarnessOptions(opts ...stress.HarnessOption) AppOption {
	return func(a *Application) { a.harnessOptions = append(a.harnessOptions, opts...) }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "cpustress"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes one stress run, prints its summary line to out and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor, a.Config.Theme)
	logger := a.newLogger()

	if a.Config.PinThreads && !stress.PinSupported {
		return a.fail(apperrors.NewConfigError("--pin is only supported on Linux"))
	}

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	m := metrics.NewMetrics()
	harnessOpts := append([]stress.HarnessOption{stress.WithLogger(logger), stress.WithMetrics(m)}, a.harnessOptions...)
	h := stress.NewHarness(stress.Options{
		Workers:       a.Config.Workers,
		Interruptible: a.Config.Interruptible,
		PinThreads:    a.Config.PinThreads,
	}, harnessOpts...)

	if a.Config.MetricsAddr != "" {
		srv := server.New(a.Config.MetricsAddr, m, logger)
		if err := srv.Start(ctx); err != nil {
			return a.fail(apperrors.NewConfigError("cannot serve metrics: %v", err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	duration := time.Duration(a.Config.Duration) * time.Second
	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, h.WorkerCount(), versionString(), a.ErrWriter)
	}

	memBefore := metrics.NewMemoryCollector().Snapshot()
	err := a.runWithProgress(ctx, h, duration)

	code := apperrors.ExitCodeFor(err)
	if code == apperrors.ExitSuccess || code == apperrors.ExitErrorCanceled {
		summary, werr := report.NewReporter(h).PrintResults(out)
		if werr != nil {
			logger.Error("failed to write results", werr)
			return apperrors.ExitErrorGeneric
		}
		m.RecordSummary(summary.OpsPerSec, summary.CPUScore)
	}

	run := h.Snapshot()
	if a.Config.Verbose {
		logDiagnostics(logger, run, memBefore)
	}
	if a.Config.Quiet {
		return code
	}
	return cli.DisplayOutcome(err, run.Failures, a.ErrWriter)
}

// runWithProgress runs the harness while the countdown spinner is shown.
func (a *Application) runWithProgress(ctx context.Context, h *stress.Harness, duration time.Duration) error {
	if a.Config.Quiet {
		return h.RunStressTest(ctx, duration)
	}

	progressCtx, cancelProgress := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Go(func() { cli.DisplayProgress(progressCtx, duration, a.ErrWriter) })

	err := h.RunStressTest(ctx, duration)
	cancelProgress()
	wg.Wait()
	return err
}

// newLogger builds the stderr logger: debug when verbose, warn when quiet.
func (a *Application) newLogger() logging.Logger {
	level := zerolog.InfoLevel
	switch {
	case a.Config.Verbose:
		level = zerolog.DebugLevel
	case a.Config.Quiet:
		level = zerolog.WarnLevel
	}
	noColor := ui.GetCurrentTheme().Name == ui.NoColorTheme.Name
	return logging.NewTerminalLogger(a.ErrWriter, "cpustress", level, noColor)
}

// fail reports an error that prevented the run from starting.
func (a *Application) fail(err error) int {
	fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
	return apperrors.ExitCodeFor(err)
}

// logDiagnostics logs per-task counts, GC activity and system usage.
func logDiagnostics(logger logging.Logger, run stress.Run, memBefore metrics.MemorySnapshot) {
	for _, k := range tasks.AllKinds() {
		logger.Debug("task operations",
			logging.String("task", k.String()),
			logging.Int64("operations", run.PerKind[k]))
	}
	logger.Debug("run totals",
		logging.Int64("operations", run.Operations),
		logging.Int64("failed_tasks", run.Failures),
		logging.Int64("contributions", run.Contributions))

	after := metrics.NewMemoryCollector().Snapshot()
	gcCycles, pauseNs := after.Delta(memBefore)
	fields := append(after.Fields(),
		logging.Int("gc_cycles_during_run", int(gcCycles)),
		logging.Uint64("gc_pause_ns_during_run", pauseNs))
	logger.Debug("memory", fields...)

	st := sysmon.Sample()
	logger.Debug("system usage",
		logging.Float64("cpu_percent", st.CPUPercent),
		logging.Float64("mem_percent", st.MemPercent),
		logging.Int("logical_cpus", sysmon.LogicalCPUs()))
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
