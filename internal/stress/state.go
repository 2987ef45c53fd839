package stress

import (
	"context"
	"sync/atomic"

	"github.com/agbru/cpustress/internal/tasks"
)

// RunState is the cross-worker state of one run.
type RunState struct {
	running       atomic.Bool
	operations    atomic.Int64
	failures      atomic.Int64
	contributions atomic.Int64
	perKind       [tasks.NumKinds + 1]atomic.Int64

	// stopCtx is canceled on Stop; interruptible tasks observe it.
	stopCtx context.Context
	cancel  context.CancelFunc
}

// NewRunState returns a stopped RunState.
func NewRunState() *RunState {
	s := &RunState{}
	s.stopCtx, s.cancel = context.WithCancel(context.Background())
	s.cancel()
	return s
}

// Start resets every counter and raises the running flag. It must not be
// called while workers of a previous run are still active.
func (s *RunState) Start() {
	s.operations.Store(0)
	s.failures.Store(0)
	s.contributions.Store(0)
	for i := range s.perKind {
		s.perKind[i].Store(0)
	}
	s.stopCtx, s.cancel = context.WithCancel(context.Background())
	s.running.Store(true)
}

// Stop lowers the running flag and cancels the stop context.
func (s *RunState) Stop() {
	s.running.Store(false)
	s.cancel()
}

// Running reports whether workers should keep looping.
func (s *RunState) Running() bool { return s.running.Load() }

// StopContext returns a context canceled when the run stops.
func (s *RunState) StopContext() context.Context { return s.stopCtx }

// Operations returns the aggregate operation count contributed so far.
func (s *RunState) Operations() int64 { return s.operations.Load() }

// Failures returns the aggregate count of aborted task iterations.
func (s *RunState) Failures() int64 { return s.failures.Load() }

// Contributions returns how many workers have added their tally.
func (s *RunState) Contributions() int64 { return s.contributions.Load() }

// KindOperations returns the completed operations of one task kind.
func (s *RunState) KindOperations(kind tasks.Kind) int64 {
	if !kind.Valid() {
		return 0
	}
	return s.perKind[kind].Load()
}

// contribute adds a worker's local tally into the aggregate.
func (s *RunState) contribute(t tally) {
	s.operations.Add(t.operations)
	s.failures.Add(t.failures)
	for k, n := range t.perKind {
		if n != 0 {
			s.perKind[k].Add(n)
		}
	}
	s.contributions.Add(1)
}

// tally is the worker-local counterpart of the aggregate counters.
type tally struct {
	operations int64
	failures   int64
	perKind    [tasks.NumKinds + 1]int64
}
