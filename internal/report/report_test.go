package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/cpustress/internal/stress"
	"github.com/agbru/cpustress/internal/tasks"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestSummarize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		run     stress.Run
		elapsed time.Duration
		want    Summary
	}{
		{
			name:    "exact rates",
			run:     stress.Run{Operations: 1000, Threads: 4},
			elapsed: 5 * time.Second,
			want:    Summary{Elapsed: 5 * time.Second, Operations: 1000, OpsPerSec: 200, Threads: 4, CPUScore: 50},
		},
		{
			name:    "truncation",
			run:     stress.Run{Operations: 1001, Threads: 3},
			elapsed: 5002 * time.Millisecond,
			// 1001 / 5.002 = 200.1199..., / 3 = 66.7066...
			want: Summary{Elapsed: 5002 * time.Millisecond, Operations: 1001, OpsPerSec: 200, Threads: 3, CPUScore: 66},
		},
		{
			name:    "elapsed truncated to milliseconds",
			run:     stress.Run{Operations: 10, Threads: 1},
			elapsed: time.Second + 999*time.Microsecond,
			want:    Summary{Elapsed: time.Second, Operations: 10, OpsPerSec: 10, Threads: 1, CPUScore: 10},
		},
		{
			name:    "zero elapsed is guarded",
			run:     stress.Run{Operations: 10, Threads: 2},
			elapsed: 500 * time.Microsecond,
			want:    Summary{Elapsed: 0, Operations: 10, Threads: 2},
		},
		{
			name:    "zero threads is guarded",
			run:     stress.Run{Operations: 10},
			elapsed: time.Second,
			want:    Summary{Elapsed: time.Second, Operations: 10, OpsPerSec: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.run.Start = epoch
			if got := Summarize(tt.run, epoch.Add(tt.elapsed)); got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		summary Summary
		want    string
	}{
		{
			Summary{Elapsed: 5002 * time.Millisecond, Operations: 1234, OpsPerSec: 246, Threads: 8, CPUScore: 30},
			"Duration: 5.002s | Operations: 1234 | Ops/sec: 246 | Threads: 8 | CPU Score: 30",
		},
		{
			Summary{Elapsed: 5 * time.Second, Operations: 0, Threads: 1},
			"Duration: 5s | Operations: 0 | Ops/sec: 0 | Threads: 1 | CPU Score: 0",
		},
		{
			Summary{Elapsed: 1050 * time.Millisecond, Operations: 21, OpsPerSec: 20, Threads: 2, CPUScore: 10},
			"Duration: 1.05s | Operations: 21 | Ops/sec: 20 | Threads: 2 | CPU Score: 10",
		},
	}
	for _, tt := range tests {
		if got := FormatLine(tt.summary); got != tt.want {
			t.Errorf("FormatLine() = %q, want %q", got, tt.want)
		}
	}
}

// TestSummarize_PropertyBased checks the truncation rules for arbitrary runs.
func TestSummarize_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("rates are truncated quotients", prop.ForAll(
		func(ops int64, millis int64, threads int) bool {
			run := stress.Run{Start: epoch, Operations: ops, Threads: threads}
			elapsed := time.Duration(millis) * time.Millisecond
			s := Summarize(run, epoch.Add(elapsed))
			rate := float64(ops) / elapsed.Seconds()
			return s.OpsPerSec == int64(rate) &&
				s.CPUScore == int64(rate/float64(threads)) &&
				s.CPUScore <= s.OpsPerSec
		},
		gen.Int64Range(0, 1_000_000_000),
		gen.Int64Range(1, 3_600_000),
		gen.IntRange(1, 512),
	))

	properties.TestingRun(t)
}

type fakeSource struct{ run stress.Run }

func (f fakeSource) Snapshot() stress.Run { return f.run }

func TestReporter_PrintResults(t *testing.T) {
	t.Parallel()
	r := NewReporter(fakeSource{stress.Run{Start: epoch, Operations: 600, Threads: 6}})
	r.now = func() time.Time { return epoch.Add(3 * time.Second) }

	var out bytes.Buffer
	s, err := r.PrintResults(&out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Duration: 3s | Operations: 600 | Ops/sec: 200 | Threads: 6 | CPU Score: 33\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Error("exactly one line must be written")
	}
	if s.OpsPerSec != 200 || s.CPUScore != 33 {
		t.Errorf("returned summary = %+v", s)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestReporter_PrintResultsWriteError(t *testing.T) {
	t.Parallel()
	r := NewReporter(fakeSource{stress.Run{Start: epoch, Threads: 1}})
	if _, err := r.PrintResults(failingWriter{}); err == nil {
		t.Fatal("expected the write error to be returned")
	}
}

func TestReporter_ElapsedMeasuredAtCall(t *testing.T) {
	t.Parallel()
	r := NewReporter(fakeSource{stress.Run{Start: epoch, Operations: 100, Threads: 1}})
	calls := 0
	r.now = func() time.Time {
		calls++
		return epoch.Add(time.Duration(calls) * time.Second)
	}
	first, second := r.Summary(), r.Summary()
	if first.Elapsed != time.Second || second.Elapsed != 2*time.Second {
		t.Errorf("elapsed must be measured per call: %s then %s", first.Elapsed, second.Elapsed)
	}
}

// TestReporter_RunsAreIndependent runs the same harness twice and checks the
// printed line reports only the operations of the latest run.
func TestReporter_RunsAreIndependent(t *testing.T) {
	t.Parallel()
	var calls atomic.Int64
	r := tasks.NewRegistry()
	for _, k := range tasks.AllKinds() {
		r.Register(k, func(context.Context) error {
			tasks.Fibonacci(tasks.DefaultFibonacciN)
			calls.Add(1)
			return nil
		})
	}
	h := stress.NewHarness(stress.Options{Workers: 2}, stress.WithRegistry(r))
	reporter := NewReporter(h)

	for round := range 2 {
		calls.Store(0)
		if err := h.RunStressTest(context.Background(), 50*time.Millisecond); err != nil {
			t.Fatalf("round %d: unexpected error: %v", round, err)
		}
		var buf bytes.Buffer
		s, err := reporter.PrintResults(&buf)
		if err != nil {
			t.Fatalf("round %d: PrintResults error: %v", round, err)
		}
		want := calls.Load()
		if s.Operations != want {
			t.Errorf("round %d: Operations = %d, want %d (counts must not accumulate)", round, s.Operations, want)
		}
		if s.Threads != 2 {
			t.Errorf("round %d: Threads = %d, want 2", round, s.Threads)
		}
		if !strings.Contains(buf.String(), fmt.Sprintf("Operations: %d |", want)) {
			t.Errorf("round %d: line %q should report %d operations", round, buf.String(), want)
		}
	}
}
