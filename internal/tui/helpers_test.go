package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/bigconv/internal/errors"
)

// recordingSink keeps every message a job sends.
type recordingSink struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSink) Send(msg tea.Msg) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
}

func (s *recordingSink) messages() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

// fakeJob is a Job whose Run blocks until its context ends or release is
// closed, returning code in the latter case.
type fakeJob struct {
	rows    []string
	code    int
	release chan struct{}
}

func (j fakeJob) Title() string  { return "fake job" }
func (j fakeJob) Rows() []string { return j.rows }

func (j fakeJob) Run(ctx context.Context, sink Sink) int {
	select {
	case <-ctx.Done():
		return apperrors.ExitCode(ctx.Err())
	case <-j.release:
		return j.code
	}
}
