package stress

import (
	"context"
	"math/rand/v2"
	"runtime"
	"time"

	apperrors "github.com/agbru/cpustress/internal/errors"
	"github.com/agbru/cpustress/internal/logging"
	"github.com/agbru/cpustress/internal/metrics"
	"github.com/agbru/cpustress/internal/tasks"
)

// WorkerState is the state of a worker loop.
type WorkerState int

const (
	StateRunning WorkerState = iota
	StateStopping
)

func (s WorkerState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// Worker executes random tasks until the run state stops.
type Worker struct {
	id            int
	state         *RunState
	registry      *tasks.Registry
	rng           *rand.Rand
	logger        logging.Logger
	metrics       *metrics.Metrics
	interruptible bool
	pin           bool

	current WorkerState
}

func newWorker(id int, h *Harness) *Worker {
	return &Worker{
		id:            id,
		state:         h.state,
		registry:      h.registry,
		rng:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:        h.logger,
		metrics:       h.metrics,
		interruptible: h.opts.Interruptible,
		pin:           h.opts.PinThreads,
		current:       StateRunning,
	}
}

// State returns the loop state. It is only meaningful once Run has returned.
func (w *Worker) State() WorkerState { return w.current }

// Run owns one OS thread for the lifetime of the loop. It returns a
// WorkerError only when the worker could not start; task failures never
// end the loop.
func (w *Worker) Run() error {
	runtime.LockOSThread()
	if w.pin {
		// A pinned thread is not handed back to the scheduler; it exits
		// with the goroutine.
		if err := pinToCPU(w.id); err != nil {
			return apperrors.WorkerError{Worker: w.id, Cause: err}
		}
	} else {
		defer runtime.UnlockOSThread()
	}

	w.metrics.WorkerStarted()
	defer w.metrics.WorkerStopped()

	var t tally
	defer func() { w.state.contribute(t) }()

	taskCtx := context.Background()
	if w.interruptible {
		taskCtx = w.state.StopContext()
	}

	for w.state.Running() {
		kind := tasks.Pick(w.rng)
		start := time.Now()
		err := w.registry.Invoke(taskCtx, kind)
		if err != nil && apperrors.IsContextError(err) {
			// Interrupted by the stop signal: neither an operation nor a failure.
			break
		}
		w.metrics.ObserveTask(kind.String(), time.Since(start), err)
		if err != nil {
			t.failures++
			w.logger.Error("task aborted", err, logging.Int("worker", w.id), logging.String("task", kind.String()))
			continue
		}
		t.operations++
		t.perKind[kind]++
	}
	w.current = StateStopping
	w.logger.Debug("worker stopped", logging.Int("worker", w.id), logging.Int64("operations", t.operations))
	return nil
}
