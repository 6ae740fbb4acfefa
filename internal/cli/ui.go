package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/bigconv/internal/orchestration"
	"github.com/agbru/bigconv/internal/ui"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// TruncationLimit is the length from which a result is truncated in
	// standard output to avoid cluttering the terminal.
	TruncationLimit = 100
	// DisplayEdges specifies the number of characters to display at the
	// beginning and end of a truncated decimal result.
	DisplayEdges = 25
	// HexDisplayEdges specifies the number of characters to display at the
	// beginning and end of a truncated hexadecimal result.
	HexDisplayEdges = 40
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 20
)

// Spinner abstracts a terminal spinner so that progress display can be
// tested without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// NewSpinner returns a spinner drawing on out. It stays silent when out is
// not a terminal.
func NewSpinner(out io.Writer) Spinner {
	return newSpinner(spinner.WithWriter(out), spinner.WithHiddenCursor(true))
}

// DisplayProgress shows a spinner with a bar of finished decoders until
// progressChan is closed.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numDecoders int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numDecoders)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := NewSpinner(out)
	s.UpdateSuffix(progressSuffix(0, 0, numDecoders))
	s.Start()
	defer s.Stop()

	for update := range progressChan {
		p := agg.Update(update)
		s.UpdateSuffix(progressSuffix(p.AverageProgress, p.Completed, numDecoders))
	}
}

func progressSuffix(progress float64, completed, total int) string {
	label := "Decoding"
	if total > 1 {
		label = "Comparing decoders"
	}
	return fmt.Sprintf(" %s %s%s%s %d/%d", label,
		ui.ColorCyan(), progressBar(progress, ProgressBarWidth), ui.ColorReset(), completed, total)
}

// progressBar renders progress, clamped to [0, 1], as a bar of the given
// width.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
