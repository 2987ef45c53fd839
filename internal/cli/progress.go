// Package cli renders the interactive parts of the command line on stderr:
// the startup banner, the countdown spinner and the run outcome.
//
// Display* functions write to an [io.Writer]; Format* functions are pure.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/cpustress/internal/format"
	"github.com/agbru/cpustress/internal/ui"
)

const (
	// ProgressRefreshRate is the refresh period of the countdown.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the countdown bar.
	ProgressBarWidth = 30
)

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(out io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, spinner.WithWriter(out))
	return &realSpinner{s}
}

// FormatCountdownSuffix renders the text shown after the spinner.
func FormatCountdownSuffix(elapsed, total time.Duration) string {
	return fmt.Sprintf(" Stressing %s%s%s %s remaining",
		ui.ColorPrimary(), format.FormatProgressBar(format.Elapsed(elapsed, total), ProgressBarWidth), ui.ColorReset(),
		format.FormatCountdown(total-elapsed))
}

// DisplayProgress shows a countdown spinner on out until total has elapsed
// or ctx is done, whichever comes first. It blocks until the spinner is
// stopped.
func DisplayProgress(ctx context.Context, total time.Duration, out io.Writer) {
	s := newSpinner(out)
	start := time.Now()
	s.UpdateSuffix(FormatCountdownSuffix(0, total))
	s.Start()
	defer s.Stop()

	deadline := time.NewTimer(total)
	defer deadline.Stop()
	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
			s.UpdateSuffix(FormatCountdownSuffix(time.Since(start), total))
		}
	}
}
