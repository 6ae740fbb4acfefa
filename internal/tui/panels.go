package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigconv/internal/cli"
	"github.com/agbru/bigconv/internal/metrics"
)

// rowState is the lifecycle of one progress row.
type rowState int

const (
	rowIdle rowState = iota
	rowRunning
	rowDone
	rowFailed
)

func (s rowState) String() string {
	switch s {
	case rowRunning:
		return "RUN"
	case rowDone:
		return "OK"
	case rowFailed:
		return "ERR"
	}
	return "IDLE"
}

// progressRow is one decoder or calibration phase.
type progressRow struct {
	name  string
	done  int
	total int
	state rowState
	note  string
}

func (r progressRow) fraction() float64 {
	if r.total <= 0 {
		return 0
	}
	return float64(r.done) / float64(r.total)
}

func newRows(names []string) []progressRow {
	rows := make([]progressRow, len(names))
	for i, n := range names {
		rows[i] = progressRow{name: n}
	}
	return rows
}

// renderRows draws the progress table within width columns.
func renderRows(st styles, rows []progressRow, width int) string {
	nameWidth := 6
	for _, r := range rows {
		nameWidth = max(nameWidth, len(r.name))
	}
	barWidth := max(width-nameWidth-16, 4)

	var b strings.Builder
	b.WriteString(st.title.Render("Progress"))
	for _, r := range rows {
		filled := min(int(r.fraction()*float64(barWidth)), barWidth)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		state := st.dim
		switch r.state {
		case rowRunning:
			state = st.value
		case rowDone:
			state = st.success
		case rowFailed:
			state = st.failure
		}
		fmt.Fprintf(&b, "\n%s %s %s", st.label.Render(fmt.Sprintf("%-*s", nameWidth, r.name)),
			st.bar.Render(bar), state.Render(fmt.Sprintf("%4s", r.state)))
		if r.note != "" {
			fmt.Fprintf(&b, "\n%s %s", strings.Repeat(" ", nameWidth), st.dim.Render(truncate(r.note, width-nameWidth-1)))
		}
	}
	return b.String()
}

// eventKind colors an event line.
type eventKind int

const (
	eventInfo eventKind = iota
	eventSuccess
	eventFailure
)

type event struct {
	at   time.Duration
	kind eventKind
	text string
}

// maxEvents bounds the event log.
const maxEvents = 500

// EventLog is the scrollable list of what happened during a run.
type EventLog struct {
	entries []event
	// scroll counts lines hidden below the view; 0 follows the tail.
	scroll int
}

// Add appends an event at offset at from the run start.
func (l *EventLog) Add(at time.Duration, kind eventKind, text string) {
	l.entries = append(l.entries, event{at: at, kind: kind, text: text})
	if len(l.entries) > maxEvents {
		l.entries = l.entries[len(l.entries)-maxEvents:]
	}
	if l.scroll > 0 {
		l.scroll = min(l.scroll+1, len(l.entries)-1)
	}
}

// Scroll moves the view by delta lines; positive scrolls back in time.
func (l *EventLog) Scroll(delta int) {
	l.scroll = min(max(l.scroll+delta, 0), max(len(l.entries)-1, 0))
}

// Len returns the number of events held.
func (l *EventLog) Len() int { return len(l.entries) }

// Reset drops every event.
func (l *EventLog) Reset() {
	l.entries = nil
	l.scroll = 0
}

// render draws the newest height lines above the scroll position.
func (l *EventLog) render(st styles, width, height int) string {
	var b strings.Builder
	b.WriteString(st.title.Render("Events"))
	end := len(l.entries) - l.scroll
	start := max(end-max(height-1, 1), 0)
	for _, e := range l.entries[start:end] {
		style := st.value
		switch e.kind {
		case eventSuccess:
			style = st.success
		case eventFailure:
			style = st.failure
		}
		stamp := fmt.Sprintf("%8s ", cli.FormatExecutionDuration(e.at))
		b.WriteString("\n" + st.dim.Render(stamp) + style.Render(truncate(e.text, width-len(stamp))))
	}
	return b.String()
}

// MetricsModel shows the process's memory and scheduler state.
type MetricsModel struct {
	mem        metrics.MemorySnapshot
	goroutines int
	lastRun    *metrics.MemoryDelta
}

// Update records a memory reading.
func (m *MetricsModel) Update(msg MemStatsMsg) {
	m.mem = msg.Snapshot
	m.goroutines = msg.NumGoroutine
}

// SetRunDelta records the allocations of a finished comparison.
func (m *MetricsModel) SetRunDelta(d metrics.MemoryDelta) {
	m.lastRun = &d
}

func (m MetricsModel) render(st styles) string {
	line := func(label, value string) string {
		return "\n" + st.label.Render(fmt.Sprintf("%-12s", label)) + st.value.Render(value)
	}
	var b strings.Builder
	b.WriteString(st.title.Render("Runtime"))
	b.WriteString(line("Heap", cli.FormatBytes(m.mem.HeapAlloc)+" / "+cli.FormatBytes(m.mem.Sys)))
	b.WriteString(line("GC", fmt.Sprintf("%d (%.1fms paused)", m.mem.NumGC, float64(m.mem.PauseTotalNs)/1e6)))
	b.WriteString(line("Goroutines", fmt.Sprintf("%d", m.goroutines)))
	if m.lastRun != nil {
		b.WriteString(line("Run alloc", fmt.Sprintf("%s in %d objects", cli.FormatBytes(m.lastRun.AllocBytes), m.lastRun.Mallocs)))
	}
	return b.String()
}

// chartSamples is how many load samples the chart keeps.
const chartSamples = 120

// ChartModel plots system CPU and memory load over time.
type ChartModel struct {
	cpu *RingBuffer
	mem *RingBuffer
}

// NewChartModel creates an empty chart.
func NewChartModel() ChartModel {
	return ChartModel{cpu: NewRingBuffer(chartSamples), mem: NewRingBuffer(chartSamples)}
}

// Push records one load reading.
func (c ChartModel) Push(s SysStatsMsg) {
	c.cpu.Push(s.CPUPercent)
	c.mem.Push(s.MemPercent)
}

// Reset drops every reading.
func (c ChartModel) Reset() {
	c.cpu.Reset()
	c.mem.Reset()
}

func (c ChartModel) render(st styles, width int) string {
	sparkWidth := max(width-12, 1)
	row := func(label string, r *RingBuffer) string {
		return fmt.Sprintf("\n%s%s %s", st.label.Render(fmt.Sprintf("%-4s", label)),
			st.bar.Render(RenderSparkline(r.Values(), sparkWidth)), st.value.Render(fmt.Sprintf("%3.0f%%", r.Last())))
	}
	return st.title.Render("System load") + row("CPU", c.cpu) + row("MEM", c.mem)
}

// truncate cuts s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width == 1 || len(r) <= width {
		return string(r[:min(width, len(r))])
	}
	return string(r[:width-1]) + "…"
}
