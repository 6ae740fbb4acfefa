package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/number"
)

// DecodeResult is the outcome of one decoder on the shared buffer. It is the
// domain type shared by the orchestration and presentation layers.
type DecodeResult struct {
	// Name identifies the decoder (e.g. "naive").
	Name string
	// Value is the decoded integer. It is bigint.Zero if an error occurred.
	Value bigint.Int
	// Duration is the time the decoder took.
	Duration time.Duration
	// Err is the decoder's error, if any.
	Err error
}

// ProgressUpdate reports that a decoder started (Value 0) or finished
// (Value 1).
type ProgressUpdate struct {
	DecoderIndex int
	Value        float64
}

// PresentationOptions configures how the agreed result is presented.
type PresentationOptions struct {
	// Format is the format specifier for the displayed value.
	Format string
	// Info supplies the symbols used when formatting. Nil means invariant.
	Info    *number.Info
	Verbose bool
	Details bool
	Quiet   bool
}

// ProgressReporter displays decoder progress. It decouples orchestration
// from the terminal.
type ProgressReporter interface {
	// DisplayProgress consumes progressChan until it is closed, then calls
	// wg.Done. It runs in its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numDecoders int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numDecoders int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numDecoders int, out io.Writer) {
	f(wg, progressChan, numDecoders, out)
}

// NullProgressReporter drains the progress channel without output.
type NullProgressReporter struct{}

// DisplayProgress drains the channel.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter presents comparison results.
type ResultPresenter interface {
	// PresentComparisonTable displays every decoder's duration and status.
	PresentComparisonTable(results []DecodeResult, out io.Writer)
	// PresentResult displays the value the decoders agreed on.
	PresentResult(result DecodeResult, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler reports a decoding error and returns its exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
