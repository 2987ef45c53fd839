package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/agbru/cpustress/internal/config"
	apperrors "github.com/agbru/cpustress/internal/errors"
	"github.com/agbru/cpustress/internal/format"
	"github.com/agbru/cpustress/internal/ui"
)

// PrintExecutionConfig writes the startup banner describing the run.
func PrintExecutionConfig(cfg config.AppConfig, workers int, version string, out io.Writer) {
	fields := []ui.BannerField{
		{Label: "Duration", Value: format.FormatExecutionDuration(time.Duration(cfg.Duration) * time.Second)},
		{Label: "Workers", Value: strconv.Itoa(workers)},
		{Label: "Interruptible", Value: strconv.FormatBool(cfg.Interruptible)},
		{Label: "Pinned", Value: strconv.FormatBool(cfg.PinThreads)},
	}
	if cfg.MetricsAddr != "" {
		fields = append(fields, ui.BannerField{Label: "Metrics", Value: "http://" + cfg.MetricsAddr + "/metrics"})
	}
	fmt.Fprintln(out, ui.Banner("cpustress "+version, fields...))
}

// DisplayOutcome writes a one-line colored status for a finished run and
// returns the exit code it maps to.
func DisplayOutcome(err error, failures int64, out io.Writer) int {
	code := apperrors.ExitCodeFor(err)
	switch code {
	case apperrors.ExitSuccess:
		if failures > 0 {
			fmt.Fprintf(out, "%s⚠ Run completed with %d aborted tasks%s\n", ui.ColorYellow(), failures, ui.ColorReset())
		} else {
			fmt.Fprintf(out, "%s✓ Run completed%s\n", ui.ColorGreen(), ui.ColorReset())
		}
	case apperrors.ExitErrorCanceled:
		fmt.Fprintf(out, "%s⚠ Run interrupted, partial results reported%s\n", ui.ColorYellow(), ui.ColorReset())
	default:
		fmt.Fprintf(out, "%s✗ %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
	return code
}
