package tui

import (
	"io"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/bigconv/internal/cli"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/orchestration"
)

// Sink receives the messages a job reports. Send may be called from any
// goroutine.
type Sink interface {
	Send(msg tea.Msg)
}

// programRef is a shared reference to the tea.Program. bubbletea copies the
// model on every Update, so job goroutines hold this pointer instead.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the program messages are sent to.
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send forwards msg to the program. It is a no-op before SetProgram.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// generationSink tags every message with the run that produced it.
type generationSink struct {
	sink       Sink
	generation uint64
}

func (s generationSink) Send(msg tea.Msg) {
	s.sink.Send(jobMsg{generation: s.generation, msg: msg})
}

// TUIProgressReporter forwards decoder progress to the dashboard.
type TUIProgressReporter struct {
	sink Sink
}

var _ orchestration.ProgressReporter = (*TUIProgressReporter)(nil)

// DisplayProgress drains progressChan, sending one DecoderProgressMsg per
// update.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numDecoders int, _ io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numDecoders)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}
	for update := range progressChan {
		p := agg.Update(update)
		t.sink.Send(DecoderProgressMsg{
			DecoderIndex: p.DecoderIndex,
			Finished:     update.Value >= 1,
			Completed:    p.Completed,
			Total:        numDecoders,
		})
	}
}

// TUIResultPresenter sends comparison outcomes to the dashboard instead of
// writing them.
type TUIResultPresenter struct {
	sink      Sink
	converter *number.Converter
}

var (
	_ orchestration.ResultPresenter   = (*TUIResultPresenter)(nil)
	_ orchestration.DurationFormatter = (*TUIResultPresenter)(nil)
	_ orchestration.ErrorHandler      = (*TUIResultPresenter)(nil)
)

// PresentComparisonTable sends a copy of results.
func (t *TUIResultPresenter) PresentComparisonTable(results []orchestration.DecodeResult, _ io.Writer) {
	t.sink.Send(ComparisonResultsMsg{Results: slices.Clone(results)})
}

// PresentResult formats the agreed value and sends it.
func (t *TUIResultPresenter) PresentResult(result orchestration.DecodeResult, opts orchestration.PresentationOptions, _ io.Writer) {
	c := t.converter
	if c == nil {
		c = number.Default()
	}
	format := opts.Format
	if format == "" {
		format = "D"
	}
	text, err := c.Format(result.Value, format, opts.Info)
	if err != nil {
		t.sink.Send(ErrorMsg{Err: err})
		return
	}
	t.sink.Send(FinalResultMsg{Result: result, Text: text, Format: format})
}

// FormatDuration formats d like the command line does.
func (t *TUIResultPresenter) FormatDuration(d time.Duration) string {
	return cli.FormatExecutionDuration(d)
}

// HandleError sends err to the dashboard and returns its exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	t.sink.Send(ErrorMsg{Err: err, Duration: duration})
	return cli.HandleError(err, duration, io.Discard)
}
