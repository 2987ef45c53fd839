// Package format holds pure string formatters shared by the CLI.
package format

import (
	"fmt"
	"strings"
	"time"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds below a millisecond, milliseconds below a second,
// and the default string representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// FormatCountdown renders the remaining time of a run rounded to a tenth
// of a second, clamped at zero, e.g. "3.2s".
func FormatCountdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%.1fs", remaining.Round(100*time.Millisecond).Seconds())
}

// FormatProgressBar renders progress (clamped to [0, 1]) as a bar of width
// runes.
func FormatProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(width))
	var builder strings.Builder
	builder.Grow(width * 3)
	for i := 0; i < width; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// Elapsed returns the fraction of total covered by elapsed, clamped to
// [0, 1]. A non-positive total counts as complete.
func Elapsed(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	return min(max(float64(elapsed)/float64(total), 0), 1)
}
