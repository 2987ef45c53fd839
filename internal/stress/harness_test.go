package stress

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/agbru/cpustress/internal/errors"
	"github.com/agbru/cpustress/internal/metrics"
	"github.com/agbru/cpustress/internal/tasks"
)

// cheapRegistry binds every kind to a short task and counts invocations.
func cheapRegistry(invocations *atomic.Int64) *tasks.Registry {
	r := tasks.NewRegistry()
	for _, k := range tasks.AllKinds() {
		r.Register(k, func(context.Context) error {
			tasks.Fibonacci(tasks.DefaultFibonacciN)
			if invocations != nil {
				invocations.Add(1)
			}
			return nil
		})
	}
	return r
}

func fixedCPUs(n int) func() int { return func() int { return n } }

func TestRunStressTest_RejectsNonPositiveDuration(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	h := NewHarness(Options{}, WithRegistry(cheapRegistry(&calls)))

	for _, d := range []time.Duration{0, -time.Second} {
		err := h.RunStressTest(context.Background(), d)
		var configErr apperrors.ConfigError
		if !errors.As(err, &configErr) {
			t.Fatalf("RunStressTest(%s): expected ConfigError, got %v", d, err)
		}
	}
	if calls.Load() != 0 || h.State().Contributions() != 0 {
		t.Error("no worker should start for an invalid duration")
	}
}

func TestRunStressTest_EveryWorkerContributesOnce(t *testing.T) {
	t.Parallel()
	const cores = 4
	const duration = 100 * time.Millisecond
	var calls atomic.Int64
	h := NewHarness(Options{}, WithRegistry(cheapRegistry(&calls)), WithCPUCounter(fixedCPUs(cores)))

	begin := time.Now()
	if err := h.RunStressTest(context.Background(), duration); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(begin)

	run := h.Snapshot()
	if run.Threads != cores {
		t.Errorf("Threads = %d, want %d", run.Threads, cores)
	}
	if run.Contributions != cores {
		t.Errorf("Contributions = %d, want %d", run.Contributions, cores)
	}
	if run.Operations <= 0 {
		t.Errorf("Operations = %d, want > 0", run.Operations)
	}
	if run.Operations != calls.Load() {
		t.Errorf("Operations = %d, but %d tasks ran", run.Operations, calls.Load())
	}
	var sum int64
	for _, n := range run.PerKind {
		sum += n
	}
	if sum != run.Operations {
		t.Errorf("per-kind sum = %d, want %d", sum, run.Operations)
	}
	if elapsed < duration {
		t.Errorf("RunStressTest returned after %s, before the %s duration", elapsed, duration)
	}
	if run.Start.IsZero() || run.Start.After(begin.Add(time.Millisecond*50)) {
		t.Errorf("unexpected start timestamp %v", run.Start)
	}
}

func TestHarness_WorkerCount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opts Options
		cpus int
		want int
	}{
		{"one per cpu", Options{}, 8, 8},
		{"override", Options{Workers: 3}, 8, 3},
		{"undeterminable falls back to one", Options{}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewHarness(tt.opts, WithCPUCounter(fixedCPUs(tt.cpus)))
			if got := h.WorkerCount(); got != tt.want {
				t.Errorf("WorkerCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunStressTest_CountsResetBetweenRuns(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	h := NewHarness(Options{Workers: 2}, WithRegistry(cheapRegistry(&calls)))

	for round := range 2 {
		calls.Store(0)
		if err := h.RunStressTest(context.Background(), 50*time.Millisecond); err != nil {
			t.Fatalf("round %d: unexpected error: %v", round, err)
		}
		run := h.Snapshot()
		if run.Operations != calls.Load() {
			t.Errorf("round %d: Operations = %d, want %d (counts must not accumulate)", round, run.Operations, calls.Load())
		}
		if run.Contributions != 2 {
			t.Errorf("round %d: Contributions = %d, want 2", round, run.Contributions)
		}
	}
}

func TestRunStressTest_TaskFailuresAreIsolated(t *testing.T) {
	t.Parallel()
	r := cheapRegistry(nil)
	r.Register(tasks.KindMatrixMultiply, func(context.Context) error {
		_, err := tasks.MatrixMultiply(tasks.NewMatrix(2, 3), tasks.NewMatrix(2, 3))
		return err
	})
	r.Register(tasks.KindFibonacci, func(context.Context) error {
		panic("boom")
	})
	m := metrics.NewMetrics()
	h := NewHarness(Options{Workers: 2}, WithRegistry(r), WithMetrics(m))

	if err := h.RunStressTest(context.Background(), 100*time.Millisecond); err != nil {
		t.Fatalf("task failures must not fail the run: %v", err)
	}
	run := h.Snapshot()
	if run.Failures == 0 {
		t.Error("expected failed task iterations to be counted")
	}
	if run.PerKind[tasks.KindMatrixMultiply] != 0 || run.PerKind[tasks.KindFibonacci] != 0 {
		t.Errorf("failed kinds must not count as operations: %v", run.PerKind)
	}
	if run.Operations == 0 {
		t.Error("healthy kinds should still complete operations")
	}
	count, err := testutil.GatherAndCount(m.Registry(), "cpustress_task_failures_total")
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	if count != 2 {
		t.Errorf("failure series = %d, want one per failing kind", count)
	}
}

func TestRunStressTest_ParentCancellation(t *testing.T) {
	t.Parallel()
	h := NewHarness(Options{Workers: 3}, WithRegistry(cheapRegistry(nil)))
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	begin := time.Now()
	err := h.RunStressTest(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(begin) > 10*time.Second {
		t.Error("cancellation did not stop the run promptly")
	}
	if run := h.Snapshot(); run.Contributions != 3 {
		t.Errorf("Contributions = %d, want 3 after interruption", run.Contributions)
	}
}

func TestRunStressTest_InterruptibleBoundsOverrun(t *testing.T) {
	t.Parallel()
	r := tasks.NewRegistry()
	for _, k := range tasks.AllKinds() {
		r.Register(k, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Minute):
				return nil
			}
		})
	}
	h := NewHarness(Options{Workers: 2, Interruptible: true}, WithRegistry(r))

	begin := time.Now()
	if err := h.RunStressTest(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > 10*time.Second {
		t.Errorf("interruptible run took %s", elapsed)
	}
	run := h.Snapshot()
	if run.Operations != 0 || run.Failures != 0 {
		t.Errorf("interrupted tasks must not be counted: ops=%d failures=%d", run.Operations, run.Failures)
	}
	if run.Contributions != 2 {
		t.Errorf("Contributions = %d, want 2", run.Contributions)
	}
}

func TestRunStressTest_DefaultRegistry(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the real task library")
	}
	t.Parallel()
	h := NewHarness(Options{Workers: 2, Interruptible: true})
	if err := h.RunStressTest(context.Background(), 300*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	run := h.Snapshot()
	if run.Failures != 0 {
		t.Errorf("default tasks should never fail, got %d failures", run.Failures)
	}
	if run.Contributions != 2 {
		t.Errorf("Contributions = %d, want 2", run.Contributions)
	}
}

func TestRunStressTest_PinnedWorkers(t *testing.T) {
	if !PinSupported {
		t.Skip("thread pinning unsupported on this platform")
	}
	t.Parallel()
	h := NewHarness(Options{Workers: 2, PinThreads: true}, WithRegistry(cheapRegistry(nil)))
	err := h.RunStressTest(context.Background(), 50*time.Millisecond)
	var workerErr apperrors.WorkerError
	if errors.As(err, &workerErr) {
		t.Skipf("affinity not permitted here: %v", err)
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run := h.Snapshot(); run.Contributions != 2 {
		t.Errorf("Contributions = %d, want 2", run.Contributions)
	}
}
