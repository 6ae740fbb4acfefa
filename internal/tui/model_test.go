package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/bigconv/internal/calibration"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/orchestration"
)

func newTestModel(t *testing.T, rows ...string) Model {
	t.Helper()
	m := NewModel(context.Background(), fakeJob{rows: rows, release: make(chan struct{})}, "v1.2.3")
	t.Cleanup(func() { m.cancel() })
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func eventTexts(m Model) []string {
	texts := make([]string, 0, m.events.Len())
	for _, e := range m.events.entries {
		texts = append(texts, e.text)
	}
	return texts
}

func hasEvent(m Model, substr string) bool {
	for _, text := range eventTexts(m) {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

func TestModelDecoderProgress(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive", "reference")

	m, _ = update(t, m, jobMsg{msg: DecoderProgressMsg{DecoderIndex: 1, Total: 2}})
	if m.rows[1].state != rowRunning || m.rows[0].state != rowIdle {
		t.Fatalf("states = %v, %v", m.rows[0].state, m.rows[1].state)
	}
	m, _ = update(t, m, jobMsg{msg: DecoderProgressMsg{DecoderIndex: 1, Finished: true, Completed: 1, Total: 2}})
	if m.rows[1].state != rowDone || m.rows[1].fraction() != 1 {
		t.Errorf("row = %+v, want done", m.rows[1])
	}
	if !hasEvent(m, "reference finished (1/2)") {
		t.Errorf("events = %q", eventTexts(m))
	}
	m, _ = update(t, m, jobMsg{msg: DecoderProgressMsg{DecoderIndex: 9, Finished: true}})
	if m.rows[0].state != rowIdle {
		t.Error("an out of range index changed a row")
	}
}

func TestModelComparisonResults(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive", "reference")
	results := []orchestration.DecodeResult{
		{Name: "reference", Duration: 2 * time.Millisecond},
		{Name: "naive", Err: errors.New("digit overflow")},
	}
	m, _ = update(t, m, jobMsg{msg: ComparisonResultsMsg{Results: results}})
	if m.rows[0].state != rowFailed || m.rows[0].note != "digit overflow" {
		t.Errorf("naive row = %+v", m.rows[0])
	}
	if m.rows[1].note == "" {
		t.Error("reference row has no duration")
	}
	if !hasEvent(m, "naive failed: digit overflow") {
		t.Errorf("events = %q", eventTexts(m))
	}

	m, _ = update(t, m, jobMsg{msg: FinalResultMsg{Text: strings.Repeat("7", 200), Format: "D"}})
	if !hasEvent(m, "all decoders agree (D): 777") {
		t.Errorf("events = %q", eventTexts(m))
	}
	for _, text := range eventTexts(m) {
		if len([]rune(text)) > 100 {
			t.Errorf("event not truncated: %d runes", len([]rune(text)))
		}
	}

	m, _ = update(t, m, jobMsg{msg: MemoryDeltaMsg{Delta: metrics.MemoryDelta{AllocBytes: 2048, Mallocs: 3}}})
	if m.metrics.lastRun == nil || m.metrics.lastRun.Mallocs != 3 {
		t.Errorf("run delta = %+v", m.metrics.lastRun)
	}
}

func TestModelCalibrationSteps(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, string(calibration.PhaseCrossover), string(calibration.PhaseParallel))

	step := calibration.Step{Phase: calibration.PhaseCrossover, Index: 1, Total: 2, Digits: 50}
	m, _ = update(t, m, jobMsg{msg: CalibrationStepMsg{Step: step}})
	if r := m.rows[0]; r.state != rowRunning || r.done != 1 || r.total != 2 || r.note != step.Describe() {
		t.Errorf("crossover row = %+v", r)
	}
	step.Index = 2
	m, _ = update(t, m, jobMsg{msg: CalibrationStepMsg{Step: step}})
	if m.rows[0].state != rowDone {
		t.Errorf("crossover row = %+v, want done", m.rows[0])
	}

	profile := &calibration.CalibrationProfile{OptimalNaiveThreshold: 400, OptimalParallelThreshold: 64}
	m, _ = update(t, m, jobMsg{msg: CalibrationDoneMsg{Profile: profile, Path: "/tmp/profile.json"}})
	if m.rows[1].state != rowDone {
		t.Errorf("parallel row = %+v, want done", m.rows[1])
	}
	for _, want := range []string{"naive up to 400 digits, parallel merges from 64 limbs", "profile saved to /tmp/profile.json"} {
		if !hasEvent(m, want) {
			t.Errorf("missing event %q in %q", want, eventTexts(m))
		}
	}

	m, _ = update(t, m, jobMsg{msg: CalibrationDoneMsg{Profile: profile, SaveErr: errors.New("read-only")}})
	if !hasEvent(m, "profile not saved: read-only") {
		t.Errorf("events = %q", eventTexts(m))
	}
}

func TestModelErrorMarksRunningRows(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive", "reference")
	m, _ = update(t, m, jobMsg{msg: DecoderProgressMsg{DecoderIndex: 0}})
	m, _ = update(t, m, jobMsg{msg: ErrorMsg{Err: errors.New("timed out")}})
	if !m.failed || m.rows[0].state != rowFailed || m.rows[1].state != rowIdle {
		t.Errorf("failed = %v, rows = %+v", m.failed, m.rows)
	}
}

func TestModelJobComplete(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		code       int
		wantStatus string
	}{
		{"success", apperrors.ExitSuccess, "DONE"},
		{"mismatch", apperrors.ExitErrorMismatch, "FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newTestModel(t, "naive")
			m, cmd := update(t, m, JobCompleteMsg{ExitCode: tt.code})
			if cmd != nil {
				t.Error("completion closed the dashboard")
			}
			if !m.done || m.ExitCode() != tt.code || m.status() != tt.wantStatus {
				t.Errorf("done = %v, code = %d, status = %s", m.done, m.ExitCode(), m.status())
			}
			if _, cmd := update(t, m, TickMsg(time.Now())); cmd != nil {
				t.Error("a finished dashboard kept sampling")
			}
		})
	}
}

func TestModelDropsStaleGenerations(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive")
	m.generation = 2

	m, _ = update(t, m, jobMsg{generation: 1, msg: ErrorMsg{Err: errors.New("old run")}})
	m, _ = update(t, m, JobCompleteMsg{ExitCode: apperrors.ExitErrorGeneric, Generation: 1})
	m, cmd := update(t, m, ContextCancelledMsg{Err: context.Canceled, Generation: 1})
	if m.failed || m.done || cmd != nil {
		t.Errorf("stale messages applied: failed = %v, done = %v, cmd = %v", m.failed, m.done, cmd != nil)
	}
}

func TestModelQuit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		finished bool
		want     int
	}{
		{"while running", false, apperrors.ExitErrorCanceled},
		{"after the job", true, apperrors.ExitErrorMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newTestModel(t, "naive")
			if tt.finished {
				m, _ = update(t, m, JobCompleteMsg{ExitCode: apperrors.ExitErrorMismatch})
			}
			ctx := m.ctx
			m, cmd := update(t, m, runes("q"))
			if cmd == nil {
				t.Fatal("quit returned no command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("quit command does not quit")
			}
			if ctx.Err() == nil {
				t.Error("quitting left the job running")
			}
			if m.ExitCode() != tt.want {
				t.Errorf("ExitCode() = %d, want %d", m.ExitCode(), tt.want)
			}
		})
	}
}

func TestModelContextCancelled(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive")
	m, cmd := update(t, m, ContextCancelledMsg{Err: context.Canceled})
	if cmd == nil {
		t.Fatal("no command after cancellation")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("cancellation does not quit")
	}
	if !m.done || m.ExitCode() != apperrors.ExitErrorCanceled {
		t.Errorf("done = %v, code = %d", m.done, m.ExitCode())
	}
}

func TestModelPauseFreezesSampling(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive")
	m, _ = update(t, m, runes("p"))
	if !m.paused || m.status() != "PAUSED" {
		t.Fatalf("paused = %v, status = %s", m.paused, m.status())
	}
	m, _ = update(t, m, MemStatsMsg{NumGoroutine: 42})
	m, _ = update(t, m, SysStatsMsg{CPUPercent: 90})
	if m.metrics.goroutines != 0 || m.chart.cpu.Len() != 0 {
		t.Error("a paused dashboard recorded samples")
	}
	if _, cmd := update(t, m, TickMsg(time.Now())); cmd == nil {
		t.Error("pausing stopped the ticker")
	}

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, MemStatsMsg{NumGoroutine: 42})
	m, _ = update(t, m, SysStatsMsg{CPUPercent: 90})
	if m.metrics.goroutines != 42 || m.chart.cpu.Last() != 90 {
		t.Errorf("goroutines = %d, cpu = %v", m.metrics.goroutines, m.chart.cpu.Last())
	}
}

func TestModelRestart(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive")
	m, _ = update(t, m, jobMsg{msg: DecoderProgressMsg{DecoderIndex: 0, Finished: true, Completed: 1, Total: 1}})
	m, _ = update(t, m, SysStatsMsg{CPUPercent: 50})
	m, _ = update(t, m, JobCompleteMsg{ExitCode: apperrors.ExitErrorMismatch})
	oldCtx := m.ctx

	m, cmd := update(t, m, runes("r"))
	t.Cleanup(func() { m.cancel() })
	if cmd == nil {
		t.Fatal("restart started nothing")
	}
	if oldCtx.Err() == nil {
		t.Error("restart left the previous run going")
	}
	if m.ctx.Err() != nil {
		t.Error("the new run starts canceled")
	}
	if m.generation != 1 || m.done || m.failed || m.ExitCode() != apperrors.ExitSuccess {
		t.Errorf("generation = %d, done = %v, failed = %v, code = %d", m.generation, m.done, m.failed, m.ExitCode())
	}
	if m.rows[0].state != rowIdle || m.events.Len() != 1 || m.chart.cpu.Len() != 0 {
		t.Errorf("state kept across restart: row = %+v, events = %d", m.rows[0], m.events.Len())
	}

	m, _ = update(t, m, JobCompleteMsg{ExitCode: apperrors.ExitErrorGeneric, Generation: 0})
	if m.done {
		t.Error("the previous run's completion ended the new one")
	}
}

func TestModelScrollAndHelp(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive")
	for i := range 5 {
		m.events.Add(time.Duration(i), eventInfo, "line")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.events.scroll != 2 {
		t.Errorf("scroll = %d, want 2", m.events.scroll)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.events.scroll != 0 {
		t.Errorf("scroll = %d, want 0", m.events.scroll)
	}
	m, _ = update(t, m, runes("?"))
	if !m.help.ShowAll {
		t.Error("? did not expand the help")
	}
}

func TestEventLogIsBounded(t *testing.T) {
	t.Parallel()
	var l EventLog
	for range maxEvents + 10 {
		l.Add(0, eventInfo, "x")
	}
	if l.Len() != maxEvents {
		t.Errorf("Len() = %d, want %d", l.Len(), maxEvents)
	}
	l.Scroll(maxEvents * 2)
	if l.scroll != maxEvents-1 {
		t.Errorf("scroll = %d, want %d", l.scroll, maxEvents-1)
	}
	l.Add(0, eventInfo, "y")
	if l.scroll != maxEvents-1 {
		t.Errorf("scroll after Add = %d, want %d", l.scroll, maxEvents-1)
	}
	_ = l.render(newStyles(), 40, 5)
}

func TestModelView(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, "naive", "reference")
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() before sizing = %q", got)
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, MemStatsMsg{NumGoroutine: 12})
	view := m.View()
	for _, want := range []string{"bigconv v1.2.3", "fake job", "Progress", "naive", "reference", "Events", "Runtime", "Goroutines", "System load", "RUNNING", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q", want)
		}
	}

	dev := NewModel(context.Background(), fakeJob{rows: []string{"naive"}}, devVersion)
	defer dev.cancel()
	dev, _ = update(t, dev, tea.WindowSizeMsg{Width: 80, Height: 24})
	if strings.Contains(dev.View(), "bigconv dev") {
		t.Error("development builds show their version")
	}
}

func TestRunReturnsCanceledWhenContextEnds(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := Run(ctx, fakeJob{rows: []string{"naive"}, release: make(chan struct{})}, "dev",
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())
	if code != apperrors.ExitErrorCanceled {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestRunQuitsOnKey(t *testing.T) {
	t.Parallel()
	code := Run(context.Background(), fakeJob{rows: []string{"naive"}, release: make(chan struct{})}, "dev",
		tea.WithInput(strings.NewReader("q")), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())
	if code != apperrors.ExitErrorCanceled {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}
