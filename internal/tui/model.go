package tui

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/bigconv/internal/cli"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/metrics"
	"github.com/agbru/bigconv/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight        = 1
	footerHeight        = 1
	minEventLines       = 3
	eventsPanelWidthPct = 60
	tickInterval        = 500 * time.Millisecond
	resultPreviewRunes  = 60
	devVersion          = "dev"
)

// Model is the root bubbletea model of the dashboard.
type Model struct {
	job     Job
	keys    KeyMap
	help    help.Model
	st      styles
	version string

	rows    []progressRow
	events  EventLog
	metrics MetricsModel
	chart   ChartModel
	sampler *metrics.MemoryCollector

	parentCtx  context.Context
	ctx        context.Context
	cancel     context.CancelFunc
	ref        *programRef
	generation uint64

	start    time.Time
	end      time.Time
	done     bool
	failed   bool
	paused   bool
	exitCode int

	width  int
	height int
}

// NewModel creates a dashboard for job. The job's context derives from
// parentCtx.
func NewModel(parentCtx context.Context, job Job, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	m := Model{
		job:       job,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		st:        newStyles(),
		version:   version,
		rows:      newRows(job.Rows()),
		chart:     NewChartModel(),
		sampler:   metrics.NewMemoryCollector(),
		parentCtx: parentCtx,
		ctx:       ctx,
		cancel:    cancel,
		ref:       &programRef{},
		start:     time.Now(),
		exitCode:  apperrors.ExitSuccess,
	}
	m.events.Add(0, eventInfo, job.Title())
	return m
}

// Init starts the job, the sampling ticker and the context watcher.
func (m Model) Init() tea.Cmd {
	return m.startCmds()
}

func (m Model) startCmds() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		runJobCmd(m.ctx, m.ref, m.job, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles every incoming message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleMemStatsCmd(m.sampler), sampleSysStatsCmd(), tickCmd())

	case MemStatsMsg:
		if !m.paused {
			m.metrics.Update(msg)
		}
		return m, nil

	case SysStatsMsg:
		if !m.paused {
			m.chart.Push(msg)
		}
		return m, nil

	case jobMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.handleJob(msg.msg)
		return m, nil

	case JobCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.finish(msg.ExitCode)
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		if !m.done {
			m.events.Add(m.elapsed(), eventFailure, "stopped: "+msg.Err.Error())
			m.finish(apperrors.ExitCode(msg.Err))
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		m.cancel()
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)
		m.rows = newRows(m.job.Rows())
		m.events.Reset()
		m.metrics = MetricsModel{}
		m.chart.Reset()
		m.start, m.end = time.Now(), time.Time{}
		m.done, m.failed, m.paused = false, false, false
		m.exitCode = apperrors.ExitSuccess
		m.events.Add(0, eventInfo, m.job.Title())
		return m, m.startCmds()

	case key.Matches(msg, m.keys.Up):
		m.events.Scroll(1)
	case key.Matches(msg, m.keys.Down):
		m.events.Scroll(-1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleJob applies a message sent by the current run.
func (m *Model) handleJob(msg tea.Msg) {
	at := m.elapsed()
	switch msg := msg.(type) {
	case DecoderProgressMsg:
		if msg.DecoderIndex < 0 || msg.DecoderIndex >= len(m.rows) {
			return
		}
		r := &m.rows[msg.DecoderIndex]
		r.total = 1
		if !msg.Finished {
			r.state = rowRunning
			return
		}
		r.done, r.state = 1, rowDone
		m.events.Add(at, eventInfo, fmt.Sprintf("%s finished (%d/%d)", r.name, msg.Completed, msg.Total))

	case ComparisonResultsMsg:
		for _, res := range msg.Results {
			i := m.rowIndex(res.Name)
			if res.Err != nil {
				m.events.Add(at, eventFailure, fmt.Sprintf("%s failed: %v", res.Name, res.Err))
				if i >= 0 {
					m.rows[i].state, m.rows[i].note = rowFailed, res.Err.Error()
				}
				continue
			}
			if i >= 0 {
				m.rows[i].note = cli.FormatExecutionDuration(res.Duration)
			}
		}

	case FinalResultMsg:
		m.events.Add(at, eventSuccess, fmt.Sprintf("all decoders agree (%s): %s", msg.Format, truncate(msg.Text, resultPreviewRunes)))

	case MemoryDeltaMsg:
		m.metrics.SetRunDelta(msg.Delta)

	case CalibrationStepMsg:
		s := msg.Step
		kind := eventInfo
		i := m.rowIndex(string(s.Phase))
		if i >= 0 {
			r := &m.rows[i]
			r.done, r.total, r.note = s.Index, s.Total, s.Describe()
			r.state = rowRunning
			if s.Index >= s.Total {
				r.state = rowDone
			}
		}
		if s.Err != nil {
			kind = eventFailure
		}
		m.events.Add(at, kind, fmt.Sprintf("%s %s", s.Phase, s.Describe()))

	case CalibrationDoneMsg:
		for i := range m.rows {
			m.rows[i].state = rowDone
		}
		m.events.Add(at, eventSuccess, fmt.Sprintf("naive up to %d digits, parallel merges from %d limbs",
			msg.Profile.OptimalNaiveThreshold, msg.Profile.OptimalParallelThreshold))
		if msg.SaveErr != nil {
			m.events.Add(at, eventFailure, "profile not saved: "+msg.SaveErr.Error())
		} else {
			m.events.Add(at, eventSuccess, "profile saved to "+msg.Path)
		}

	case ErrorMsg:
		m.failed = true
		for i := range m.rows {
			if m.rows[i].state == rowRunning {
				m.rows[i].state = rowFailed
			}
		}
		m.events.Add(at, eventFailure, msg.Err.Error())
	}
}

func (m *Model) finish(code int) {
	m.done = true
	m.end = time.Now()
	m.exitCode = code
	if code != apperrors.ExitSuccess {
		m.failed = true
	}
	kind := eventSuccess
	if m.failed {
		kind = eventFailure
	}
	m.events.Add(m.elapsed(), kind, fmt.Sprintf("finished with exit code %d", code))
}

func (m Model) rowIndex(name string) int {
	for i, r := range m.rows {
		if r.name == name {
			return i
		}
	}
	return -1
}

func (m Model) elapsed() time.Duration {
	if !m.end.IsZero() {
		return m.end.Sub(m.start)
	}
	return time.Since(m.start)
}

// ExitCode returns the code the session ends with.
func (m Model) ExitCode() int { return m.exitCode }

// status names the state shown in the footer.
func (m Model) status() string {
	switch {
	case m.done && m.failed:
		return "FAILED"
	case m.done:
		return "DONE"
	case m.paused:
		return "PAUSED"
	}
	return "RUNNING"
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	st := m.st

	title := "bigconv"
	if m.version != "" && m.version != devVersion {
		title += " " + m.version
	}
	header := st.header.Render(truncate(fmt.Sprintf("%s │ %s │ %s", title, m.job.Title(), cli.FormatExecutionDuration(m.elapsed())), m.width-2))

	inner := max(m.width-2, 10)
	progress := st.panel.Width(inner).Render(renderRows(st, m.rows, inner))

	eventsWidth := m.width * eventsPanelWidthPct / 100
	rightWidth := max(m.width-eventsWidth-2, 10)
	right := lipgloss.JoinVertical(lipgloss.Left,
		st.panel.Width(rightWidth).Render(m.metrics.render(st)),
		st.panel.Width(rightWidth).Render(m.chart.render(st, rightWidth)),
	)
	available := m.height - headerHeight - footerHeight - lipgloss.Height(progress) - 2
	lines := max(min(available, lipgloss.Height(right)-2), minEventLines)
	events := st.panel.Width(max(eventsWidth-2, 10)).Height(lines).Render(m.events.render(st, eventsWidth-2, lines))
	body := lipgloss.JoinHorizontal(lipgloss.Top, events, right)

	statusStyle := st.value
	if m.failed {
		statusStyle = st.failure
	} else if m.done {
		statusStyle = st.success
	}
	footer := statusStyle.Render(m.status()) + "  " + m.help.View(m.keys)

	return lipgloss.JoinVertical(lipgloss.Left, header, progress, body, footer)
}

// Run shows the dashboard until the user quits and returns the job's exit
// code, or ExitErrorCanceled when the user quit before the job ended.
func Run(ctx context.Context, job Job, version string, opts ...tea.ProgramOption) int {
	model := NewModel(ctx, job, version)
	defer model.cancel()

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	model.ref.SetProgram(p)

	final, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	if m, ok := final.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// runJobCmd runs job in its own goroutine, reporting under gen.
func runJobCmd(ctx context.Context, sink Sink, job Job, gen uint64) tea.Cmd {
	return func() tea.Msg {
		code := job.Run(ctx, generationSink{sink: sink, generation: gen})
		return JobCompleteMsg{ExitCode: code, Generation: gen}
	}
}

// watchContextCmd reports when ctx ends.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd(c *metrics.MemoryCollector) tea.Cmd {
	return func() tea.Msg {
		return MemStatsMsg{Snapshot: c.Snapshot(), NumGoroutine: runtime.NumGoroutine()}
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(sysmon.Sample())
	}
}
