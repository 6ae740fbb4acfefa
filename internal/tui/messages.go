package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/bigconv/internal/calibration"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/orchestration"
	"github.com/agbru/bigconv/internal/sysmon"
)

// TickMsg drives the periodic resource sampling.
type TickMsg time.Time

// MemStatsMsg carries a runtime memory reading.
type MemStatsMsg struct {
	Snapshot     metrics.MemorySnapshot
	NumGoroutine int
}

// SysStatsMsg carries a system-wide load reading.
type SysStatsMsg sysmon.Stats

// jobMsg is a message a job sent, tagged with the run that sent it. Runs
// replaced by a restart keep sending until they notice their context ended,
// and their messages are dropped.
type jobMsg struct {
	generation uint64
	msg        tea.Msg
}

// DecoderProgressMsg reports that a decoder started or finished.
type DecoderProgressMsg struct {
	DecoderIndex int
	Finished     bool
	Completed    int
	Total        int
}

// ComparisonResultsMsg carries every decoder's outcome, fastest first.
type ComparisonResultsMsg struct {
	Results []orchestration.DecodeResult
}

// FinalResultMsg carries the value every decoder agreed on.
type FinalResultMsg struct {
	Result orchestration.DecodeResult
	Text   string
	Format string
}

// MemoryDeltaMsg carries the allocations of a whole comparison.
type MemoryDeltaMsg struct {
	Delta metrics.MemoryDelta
}

// CalibrationStepMsg carries one calibration measurement.
type CalibrationStepMsg struct {
	Step calibration.Step
}

// CalibrationDoneMsg carries the measured profile and where it was saved.
type CalibrationDoneMsg struct {
	Profile *calibration.CalibrationProfile
	Path    string
	SaveErr error
}

// ErrorMsg reports that the job failed.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// JobCompleteMsg ends a job run.
type JobCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg reports that a run's context ended.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
