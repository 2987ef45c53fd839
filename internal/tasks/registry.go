package tasks

import (
	"context"
	"runtime"
	"slices"
	"sync"

	apperrors "github.com/agbru/cpustress/internal/errors"
)

// Func is one dispatchable task invocation. It returns a non-nil error only
// when the iteration was aborted: an InvariantError, or the context error
// for tasks that honor cancellation.
type Func func(ctx context.Context) error

// Registry is the dispatch table from task kind to task function.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[Kind]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[Kind]Func)}
}

// NewDefaultRegistry returns a registry binding the five task kinds to the
// fixed default parameters.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindPrimeSum, func(context.Context) error {
		runtime.KeepAlive(PrimeSum(DefaultPrimeLimit))
		return nil
	})
	r.Register(KindMatrixMultiply, func(context.Context) error {
		a := GenerateRandomMatrix(DefaultMatrixSize, DefaultMatrixSize)
		b := GenerateRandomMatrix(DefaultMatrixSize, DefaultMatrixSize)
		c, err := MatrixMultiply(a, b)
		runtime.KeepAlive(c)
		return err
	})
	r.Register(KindMath, func(context.Context) error {
		runtime.KeepAlive(IntensiveMath(DefaultMathIterations))
		return nil
	})
	r.Register(KindFibonacci, func(context.Context) error {
		runtime.KeepAlive(Fibonacci(DefaultFibonacciN))
		return nil
	})
	r.Register(KindSort, func(ctx context.Context) error {
		return IntensiveSortContext(ctx, DefaultSortSize)
	})
	return r
}

// Register binds fn to kind, replacing any previous binding.
func (r *Registry) Register(kind Kind, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[kind] = fn
}

// Get returns the function bound to kind.
func (r *Registry) Get(kind Kind) (Func, error) {
	r.mu.RLock()
	fn, ok := r.tasks[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewInvariantError("dispatch", "no task registered for %s", kind)
	}
	return fn, nil
}

// List returns the registered kinds in ascending order.
func (r *Registry) List() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.tasks))
	for k := range r.tasks {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Invoke dispatches one task of the given kind. A panic inside the task is
// recovered and reported as an InvariantError so that only this iteration
// is lost.
func (r *Registry) Invoke(ctx context.Context, kind Kind) (err error) {
	fn, err := r.Get(kind)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			err = apperrors.NewInvariantError(kind.String(), "panic: %v", p)
		}
	}()
	return fn(ctx)
}
