package stress

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/cpustress/internal/errors"
	"github.com/agbru/cpustress/internal/logging"
	"github.com/agbru/cpustress/internal/metrics"
	"github.com/agbru/cpustress/internal/sysmon"
	"github.com/agbru/cpustress/internal/tasks"
)

const tracerName = "github.com/agbru/cpustress/internal/stress"

// Options tunes a Harness.
type Options struct {
	// Workers overrides the worker count; 0 means one per logical CPU.
	Workers int
	// Interruptible hands tasks a context canceled at stop time.
	Interruptible bool
	// PinThreads pins each worker thread to a CPU.
	PinThreads bool
}

// Run is the outcome of the last RunStressTest call.
type Run struct {
	Start         time.Time
	Threads       int
	Operations    int64
	Failures      int64
	Contributions int64
	PerKind       map[tasks.Kind]int64
}

// Harness is the orchestrator of stress runs.
type Harness struct {
	opts      Options
	registry  *tasks.Registry
	logger    logging.Logger
	metrics   *metrics.Metrics
	countCPUs func() int

	state   *RunState
	start   time.Time
	threads int
}

// HarnessOption configures a Harness during construction.
type HarnessOption func(*Harness)

// WithRegistry replaces the default task registry.
func WithRegistry(r *tasks.Registry) HarnessOption {
	return func(h *Harness) { h.registry = r }
}

// WithLogger sets the logger used by the harness and its workers.
func WithLogger(l logging.Logger) HarnessOption {
	return func(h *Harness) { h.logger = l }
}

// WithMetrics sets the Prometheus collectors updated during runs.
func WithMetrics(m *metrics.Metrics) HarnessOption {
	return func(h *Harness) { h.metrics = m }
}

// WithCPUCounter replaces logical processor discovery.
func WithCPUCounter(fn func() int) HarnessOption {
	return func(h *Harness) { h.countCPUs = fn }
}

// NewHarness creates a Harness with the default registry, a no-op logger,
// private metrics and gopsutil-based CPU discovery unless overridden.
func NewHarness(opts Options, options ...HarnessOption) *Harness {
	h := &Harness{opts: opts, state: NewRunState()}
	for _, opt := range options {
		opt(h)
	}
	if h.registry == nil {
		h.registry = tasks.NewDefaultRegistry()
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	if h.metrics == nil {
		h.metrics = metrics.NewMetrics()
	}
	if h.countCPUs == nil {
		h.countCPUs = sysmon.LogicalCPUs
	}
	return h
}

// State exposes the shared run state.
func (h *Harness) State() *RunState { return h.state }

// WorkerCount returns the number of workers a run launches.
func (h *Harness) WorkerCount() int {
	if h.opts.Workers > 0 {
		return h.opts.Workers
	}
	if n := h.countCPUs(); n > 0 {
		return n
	}
	return 1
}

// RunStressTest launches the workers, lets them run for duration, then
// stops and joins all of them. The join has no timeout: a worker in the
// middle of a long task delays the return until that task completes.
//
// A non-positive duration is a ConfigError returned before anything starts.
// A worker that fails to start aborts the whole run and its WorkerError is
// returned. When ctx is canceled the run stops early, workers are joined,
// counters stay valid and the context error is returned wrapped.
func (h *Harness) RunStressTest(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return apperrors.NewConfigError("duration must be positive, got %s", duration)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "RunStressTest")
	defer span.End()

	h.start = time.Now()
	h.state.Start()
	h.threads = h.WorkerCount()
	h.metrics.RunStarted()

	span.SetAttributes(
		attribute.Int("cpustress.workers", h.threads),
		attribute.String("cpustress.duration", duration.String()),
		attribute.Bool("cpustress.interruptible", h.opts.Interruptible),
	)
	h.logger.Info("stress run started",
		logging.Int("workers", h.threads),
		logging.Duration("duration", duration),
		logging.Int("task_kinds", len(h.registry.List())))

	g, gctx := errgroup.WithContext(ctx)
	for i := range h.threads {
		w := newWorker(i, h)
		g.Go(w.Run)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-gctx.Done():
	}

	h.state.Stop()
	h.logger.Debug("stop signal raised, joining workers", logging.Duration("since_start", time.Since(h.start)))

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "worker start failure")
		h.logger.Error("stress run aborted", err)
		return err
	}
	span.SetAttributes(attribute.Int64("cpustress.operations", h.state.Operations()))

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "interrupted")
		h.logger.Warn("stress run interrupted", logging.Duration("elapsed", time.Since(h.start)))
		return apperrors.WrapError(err, "stress run interrupted")
	}
	h.logger.Info("stress run finished",
		logging.Int64("operations", h.state.Operations()),
		logging.Int64("failed_tasks", h.state.Failures()))
	return nil
}

// Snapshot returns the data of the last run. Call it after RunStressTest
// has returned.
func (h *Harness) Snapshot() Run {
	perKind := make(map[tasks.Kind]int64, tasks.NumKinds)
	for _, k := range tasks.AllKinds() {
		perKind[k] = h.state.KindOperations(k)
	}
	return Run{
		Start:         h.start,
		Threads:       h.threads,
		Operations:    h.state.Operations(),
		Failures:      h.state.Failures(),
		Contributions: h.state.Contributions(),
		PerKind:       perKind,
	}
}
