// Package report turns a completed stress run into the throughput summary
// and writes the one-line result.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/agbru/cpustress/internal/stress"
)

// Summary is the throughput of one run.
type Summary struct {
	// Elapsed is the wall-clock time from run start to reporting, truncated
	// to the millisecond.
	Elapsed    time.Duration
	Operations int64
	OpsPerSec  int64
	Threads    int
	// CPUScore is OpsPerSec normalized by thread count.
	CPUScore int64
}

// Seconds returns the elapsed time in seconds.
func (s Summary) Seconds() float64 { return s.Elapsed.Seconds() }

// Summarize computes the summary of run as observed at now.
//
// Rates are truncated toward zero. A zero elapsed time or thread count
// yields zero rates instead of an infinite or undefined value.
func Summarize(run stress.Run, now time.Time) Summary {
	s := Summary{
		Elapsed:    now.Sub(run.Start).Truncate(time.Millisecond),
		Operations: run.Operations,
		Threads:    run.Threads,
	}
	secs := s.Seconds()
	if secs <= 0 {
		return s
	}
	rate := float64(run.Operations) / secs
	s.OpsPerSec = int64(rate)
	if run.Threads > 0 {
		s.CPUScore = int64(rate / float64(run.Threads))
	}
	return s
}

// FormatLine renders the summary line:
//
//	Duration: <seconds>s | Operations: <count> | Ops/sec: <rate> | Threads: <n> | CPU Score: <rate_per_thread>
func FormatLine(s Summary) string {
	return fmt.Sprintf("Duration: %ss | Operations: %d | Ops/sec: %d | Threads: %d | CPU Score: %d",
		strconv.FormatFloat(s.Seconds(), 'f', -1, 64), s.Operations, s.OpsPerSec, s.Threads, s.CPUScore)
}

// RunSource is what the Reporter reads a run from.
type RunSource interface {
	Snapshot() stress.Run
}

// Reporter prints the result of the last run of a source.
type Reporter struct {
	source RunSource
	now    func() time.Time
}

// NewReporter creates a Reporter reading from source.
func NewReporter(source RunSource) *Reporter {
	return &Reporter{source: source, now: time.Now}
}

// Summary computes the summary at the current time.
func (r *Reporter) Summary() Summary {
	return Summarize(r.source.Snapshot(), r.now())
}

// PrintResults writes the summary line, elapsed time measured up to this
// call, to out. It returns the summary it printed.
func (r *Reporter) PrintResults(out io.Writer) (Summary, error) {
	s := r.Summary()
	if _, err := fmt.Fprintln(out, FormatLine(s)); err != nil {
		return s, err
	}
	return s, nil
}
