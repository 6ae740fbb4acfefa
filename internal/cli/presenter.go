package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/orchestration"
	"github.com/agbru/bigconv/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// terminal spinner.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner until every decoder has finished.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numDecoders int, out io.Writer) {
	DisplayProgress(wg, progressChan, numDecoders, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for the
// terminal. Converter formats the agreed value; nil means number.Default().
type CLIResultPresenter struct {
	Converter *number.Converter
}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

func displayDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return FormatExecutionDuration(d)
}

// PresentComparisonTable displays every decoder's duration and status.
// Padding is computed by hand so ANSI color codes do not skew alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.DecodeResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	maxNameLen := len("Decoder")
	maxDurationLen := len("Duration")
	for _, res := range results {
		maxNameLen = max(maxNameLen, len(res.Name))
		maxDurationLen = max(maxDurationLen, len(displayDuration(res.Duration)))
	}

	fmt.Fprintf(out, "%sDecoder%s%s   %sDuration%s%s   %sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxNameLen-len("Decoder")),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxDurationLen-len("Duration")),
		ui.ColorUnderline(), ui.ColorReset())

	for _, res := range results {
		status := fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		duration := displayDuration(res.Duration)
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(), padRight("", maxNameLen-len(res.Name)),
			ui.ColorYellow(), duration, ui.ColorReset(), padRight("", maxDurationLen-len(duration)),
			status)
	}
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult formats the agreed value and displays it.
func (p CLIResultPresenter) PresentResult(result orchestration.DecodeResult, opts orchestration.PresentationOptions, out io.Writer) {
	c := p.Converter
	if c == nil {
		c = number.Default()
	}
	format := opts.Format
	if format == "" {
		format = "D"
	}
	text, err := c.Format(result.Value, format, opts.Info)
	if err != nil {
		fmt.Fprintf(out, "%sError formatting result: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	res := Result{Value: result.Value, Text: text, Format: format, Algorithm: result.Name, Duration: result.Duration}
	if opts.Quiet {
		DisplayQuietResult(out, res)
		return
	}
	DisplayResult(res, opts.Verbose, opts.Details, out)
}

// FormatDuration formats a duration the way the CLI displays it.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return FormatExecutionDuration(d)
}

// HandleError reports err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return HandleError(err, duration, out)
}

// HandleError prints err with a message matching its kind and returns the
// exit code for it.
func HandleError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	after := ""
	if duration > 0 {
		after = " after " + FormatExecutionDuration(duration)
	}
	code := apperrors.ExitCode(err)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sOperation canceled%s.%s\n", ui.ColorYellow(), after, ui.ColorReset())
	case code == apperrors.ExitErrorTimeout:
		fmt.Fprintf(out, "%sTimeout exceeded%s: %v%s\n", ui.ColorRed(), after, err, ui.ColorReset())
	case code == apperrors.ExitErrorMismatch:
		fmt.Fprintf(out, "%sCRITICAL: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
	return code
}

// DisplayMemoryStats shows the memory a conversion allocated.
func DisplayMemoryStats(delta metrics.MemoryDelta, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", FormatBytes(delta.PeakHeap))
	fmt.Fprintf(out, "  Total allocated: %s\n", FormatBytes(delta.AllocBytes))
	fmt.Fprintf(out, "  Allocations:     %d\n", delta.Mallocs)
	fmt.Fprintf(out, "  GC cycles:       %d\n", delta.NumGC)
}

// FormatBytes renders n bytes with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
