package cli

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/orchestration"
	"github.com/agbru/bigconv/internal/ui"
)

// MockSpinner for testing
type MockSpinner struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	suffixes []string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffixes = append(m.suffixes, suffix)
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDisplayResult(t *testing.T) {
	ui.InitTheme(true)

	long := strings.Repeat("1234567890", 20)
	tests := []struct {
		name        string
		res         Result
		verbose     bool
		details     bool
		contains    []string
		notContains []string
	}{
		{
			name:     "Summary",
			res:      Result{Value: bigint.FromInt64(12345), Text: "12345", Format: "D", Algorithm: "naive", Duration: time.Millisecond},
			contains: []string{"Conversion", "Format", "D", "Limbs", "12345", "naive"},
		},
		{
			name:     "Details",
			res:      Result{Value: bigint.FromInt64(-255), Text: "-255", Format: "D"},
			details:  true,
			contains: []string{"Detailed result analysis", "Bit length: 8", "[000000ff]"},
		},
		{
			name:     "Truncated Output",
			res:      Result{Value: bigint.FromInt64(1), Text: long, Format: "D"},
			contains: []string{long[:DisplayEdges] + "..." + long[len(long)-DisplayEdges:], "(truncated)", "Tip: use"},
		},
		{
			name:        "Verbose Output",
			res:         Result{Value: bigint.FromInt64(1), Text: long, Format: "D"},
			verbose:     true,
			contains:    []string{long},
			notContains: []string{"(truncated)"},
		},
		{
			name:     "Hex edges",
			res:      Result{Value: bigint.FromInt64(1), Text: long, Format: "X"},
			contains: []string{long[:HexDisplayEdges] + "..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			DisplayResult(tt.res, tt.verbose, tt.details, &buf)
			output := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(output, s) {
					t.Errorf("Expected output to contain %q, but got:\n%s", s, output)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(output, s) {
					t.Errorf("Expected output not to contain %q, but got:\n%s", s, output)
				}
			}
		})
	}
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	// Just verify these methods don't panic
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		full     int
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 5},
		{1, 10},
		{2, 10},
	}
	for _, tt := range tests {
		bar := progressBar(tt.progress, 10)
		if got := strings.Count(bar, "█"); got != tt.full {
			t.Errorf("progressBar(%v) has %d full cells, want %d", tt.progress, got, tt.full)
		}
		if got := len([]rune(bar)); got != 10 {
			t.Errorf("progressBar(%v) has width %d, want 10", tt.progress, got)
		}
	}
}

func TestDisplayProgress(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner {
		return mockS
	}

	var wg sync.WaitGroup
	wg.Add(1)

	progressChan := make(chan orchestration.ProgressUpdate)
	go func() {
		progressChan <- orchestration.ProgressUpdate{DecoderIndex: 0, Value: 0}
		progressChan <- orchestration.ProgressUpdate{DecoderIndex: 0, Value: 1}
		progressChan <- orchestration.ProgressUpdate{DecoderIndex: 1, Value: 1}
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 2, io.Discard)
	wg.Wait()

	if !mockS.started {
		t.Error("Spinner should have started")
	}
	if !mockS.stopped {
		t.Error("Spinner should have stopped")
	}
	last := mockS.suffixes[len(mockS.suffixes)-1]
	if !strings.Contains(last, "2/2") || !strings.Contains(last, "Comparing decoders") {
		t.Errorf("last suffix = %q, want completed comparison", last)
	}
}

func TestDisplayProgress_ZeroDecoders(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate, 1)
	progressChan <- orchestration.ProgressUpdate{}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
}
