package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/session"
)

// Backend is the part of session.Orchestrator the views drive
type Backend interface {
	Trigger(ctx context.Context) (*analysis.Result, error)
	Load(ctx context.Context, source session.Source) *analysis.Result
}

// Messages carry the generation they were started under so that the
// owning scope can drop stale completions.
type triggerDoneMsg struct {
	gen    uint64
	result *analysis.Result
	err    error
}

type resultsLoadedMsg struct {
	gen    uint64
	result *analysis.Result
}

type toastExpiredMsg struct {
	id int
}

func runTrigger(ctx context.Context, backend Backend, gen uint64) tea.Cmd {
	return func() tea.Msg {
		result, err := backend.Trigger(ctx)
		return triggerDoneMsg{gen: gen, result: result, err: err}
	}
}

func loadResults(ctx context.Context, backend Backend, source session.Source, gen uint64) tea.Cmd {
	return func() tea.Msg {
		return resultsLoadedMsg{gen: gen, result: backend.Load(ctx, source)}
	}
}

func expireToast(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}
