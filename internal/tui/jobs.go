package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/bigconv/internal/calibration"
	"github.com/agbru/bigconv/internal/config"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/number"
	"github.com/agbru/bigconv/internal/orchestration"
)

// Job is the work a dashboard session monitors.
type Job interface {
	// Title names the job in the header.
	Title() string
	// Rows names the lines of the progress panel.
	Rows() []string
	// Run does the work, reporting through sink, and returns the exit code.
	// It must return soon after ctx ends.
	Run(ctx context.Context, sink Sink) int
}

// CompareJob decodes one buffer with several decoders and checks that they
// agree.
type CompareJob struct {
	Converter *number.Converter
	Decoders  []orchestration.Decoder
	Buffer    *number.Buffer
	Options   orchestration.PresentationOptions
}

// Title implements Job.
func (j CompareJob) Title() string {
	return fmt.Sprintf("Comparing %d decoders on %d digits", len(j.Decoders), j.Buffer.Len())
}

// Rows implements Job: one row per decoder.
func (j CompareJob) Rows() []string {
	names := make([]string, len(j.Decoders))
	for i, d := range j.Decoders {
		names[i] = d.Name()
	}
	return names
}

// Run implements Job.
func (j CompareJob) Run(ctx context.Context, sink Sink) int {
	results, mem := orchestration.ExecuteDecodes(ctx, j.Decoders, j.Buffer, &TUIProgressReporter{sink: sink}, io.Discard)
	sink.Send(MemoryDeltaMsg{Delta: mem})
	presenter := &TUIResultPresenter{sink: sink, converter: j.Converter}
	return orchestration.AnalyzeComparisonResults(results, j.Options, presenter, presenter, io.Discard)
}

// CalibrationJob runs the full calibration and saves the profile.
type CalibrationJob struct {
	Config config.AppConfig
}

// Title implements Job.
func (j CalibrationJob) Title() string {
	return fmt.Sprintf("Calibrating the %s kernel", j.Config.Kernel)
}

// Rows implements Job: one row per measurement phase.
func (j CalibrationJob) Rows() []string {
	return []string{string(calibration.PhaseCrossover), string(calibration.PhaseParallel)}
}

// Run implements Job.
func (j CalibrationJob) Run(ctx context.Context, sink Sink) int {
	start := time.Now()
	p, err := calibration.Calibrate(ctx, j.Config, func(s calibration.Step) {
		sink.Send(CalibrationStepMsg{Step: s})
	})
	if err != nil {
		sink.Send(ErrorMsg{Err: err, Duration: time.Since(start)})
		return apperrors.ExitCode(err)
	}
	path := calibration.ProfilePath(j.Config)
	sink.Send(CalibrationDoneMsg{Profile: p, Path: path, SaveErr: p.SaveProfile(path)})
	return apperrors.ExitSuccess
}
