// Package ui is the interactive terminal front end: a trigger view that
// starts the analysis and a results view that presents it.
package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/TenderScope/internal/analysis"
	"github.com/yildizm/TenderScope/internal/emoji"
	"github.com/yildizm/TenderScope/internal/formatter"
	"github.com/yildizm/TenderScope/internal/render"
	"github.com/yildizm/TenderScope/internal/session"
)

// LoadingCopy is shown while the results view waits for data
const LoadingCopy = "Analyzing tenders..."

// DefaultToastDuration is how long a failure notification stays up
const DefaultToastDuration = 5 * time.Second

// View identifies the active screen
type View int

const (
	ViewTrigger View = iota
	ViewResults
)

// Options configure the TUI
type Options struct {
	Source         session.Source
	Columns        render.ColumnStrategy
	MaxColumnWidth int
	ToastDuration  time.Duration
}

type toast struct {
	id          int
	title       string
	description string
}

// Model is the root bubbletea model
type Model struct {
	ctx     context.Context
	backend Backend
	opts    Options
	styles  *Styles

	view       View
	trigger    *session.TriggerState
	results    *session.ResultState
	resultsGen uint64

	spin     spinner.Model
	viewport viewport.Model
	toast    *toast
	toastSeq int

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates the root model on the trigger view
func NewModel(ctx context.Context, backend Backend, opts Options) *Model {
	if opts.ToastDuration <= 0 {
		opts.ToastDuration = DefaultToastDuration
	}
	if opts.Source == "" {
		opts.Source = session.SourceRefetch
	}
	if opts.Columns == "" {
		opts.Columns = render.FirstRecord
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		ctx:      ctx,
		backend:  backend,
		opts:     opts,
		styles:   GetStyles(),
		view:     ViewTrigger,
		trigger:  session.NewTriggerState(),
		spin:     spin,
		viewport: viewport.New(80, 20),
	}
}

// Init starts the spinner clock
func (m *Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case triggerDoneMsg:
		return m.handleTriggerDone(msg)

	case resultsLoadedMsg:
		if m.results != nil && m.results.Complete(msg.gen, msg.result) {
			m.refreshContent()
		}
		return m, nil

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil
	}

	return m, nil
}

// CurrentView reports the active screen
func (m *Model) CurrentView() View {
	return m.view
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	// title + blank line above, help line below
	m.viewport.Width = msg.Width
	m.viewport.Height = max(1, msg.Height-4)
	m.refreshContent()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	}

	if m.view == ViewTrigger {
		switch msg.String() {
		case "enter", "r", " ":
			return m.startTrigger()
		}
		return m, nil
	}

	switch msg.String() {
	case "r":
		return m.reload()
	case "esc", "b":
		return m.back()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.trigger.Close()
	if m.results != nil {
		m.results.Close()
	}
	return m, tea.Quit
}

// startTrigger is a no-op while a run is in flight
func (m *Model) startTrigger() (tea.Model, tea.Cmd) {
	gen, ok := m.trigger.Begin()
	if !ok {
		return m, nil
	}
	m.toast = nil
	return m, runTrigger(m.ctx, m.backend, gen)
}

func (m *Model) handleTriggerDone(msg triggerDoneMsg) (tea.Model, tea.Cmd) {
	switch m.trigger.Complete(msg.gen, msg.err) {
	case session.OutcomeNotify:
		m.toastSeq++
		m.toast = &toast{
			id:          m.toastSeq,
			title:       session.FailureTitle,
			description: session.FailureDescription,
		}
		return m, expireToast(m.toastSeq, m.opts.ToastDuration)

	case session.OutcomeNavigate:
		m.trigger.Close()
		m.view = ViewResults
		m.results = session.NewResultState()
		m.resultsGen = 0
		return m.reload()
	}
	return m, nil
}

// reload starts a fresh load unless one is already running
func (m *Model) reload() (tea.Model, tea.Cmd) {
	if m.resultsGen > 0 && m.results.State == analysis.Loading {
		return m, nil
	}
	source := m.opts.Source
	if m.resultsGen > 0 {
		// the handoff slot is consumed by the first load
		source = session.SourceRefetch
	}
	m.resultsGen = m.results.Begin()
	m.viewport.SetContent("")
	return m, loadResults(m.ctx, m.backend, source, m.resultsGen)
}

func (m *Model) back() (tea.Model, tea.Cmd) {
	m.results.Close()
	m.results = nil
	m.resultsGen = 0
	m.trigger = session.NewTriggerState()
	m.view = ViewTrigger
	return m, nil
}

func (m *Model) refreshContent() {
	if m.results == nil || m.results.Result == nil {
		return
	}
	m.viewport.SetContent(m.resultsContent(m.results.Result))
	m.viewport.GotoTop()
}

// View renders the active screen
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return ""
	}

	if m.view == ViewResults {
		return m.renderResults()
	}
	return m.renderTrigger()
}

func (m *Model) renderTrigger() string {
	s := m.styles

	var b strings.Builder
	b.WriteString(s.Title.Render(emoji.GetEmoji("report") + " TenderScope"))
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Render("Run the tender analysis on the backend and review the results."))
	b.WriteString("\n\n")

	label := m.trigger.Label()
	if m.trigger.Enabled() {
		b.WriteString(s.Button.Render(emoji.GetEmoji("rocket") + " " + label))
	} else {
		b.WriteString(s.ButtonDisabled.Render(m.spin.View() + " " + label))
	}
	b.WriteString("\n\n")
	b.WriteString(s.Muted.Render("enter run • q quit"))

	if m.toast != nil {
		b.WriteString("\n\n")
		b.WriteString(m.renderToast())
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

func (m *Model) renderToast() string {
	s := m.styles
	body := s.Error.Render(emoji.GetEmoji("error")+" "+m.toast.title) + "\n" + m.toast.description
	return s.Toast.Render(body)
}

func (m *Model) renderResults() string {
	s := m.styles

	header := s.Title.Render(emoji.GetEmoji("report") + " " + formatter.ReportTitle)
	help := s.Muted.Render("r refresh • esc back • ↑/↓ scroll • q quit")

	if m.results.State == analysis.Loading {
		loading := m.spin.View() + " " + LoadingCopy
		body := lipgloss.Place(m.width, max(1, m.height-4), lipgloss.Center, lipgloss.Center, loading)
		return lipgloss.JoinVertical(lipgloss.Left, header, "", body, help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", m.viewport.View(), help)
}

// resultsContent lays out the technical, pricing and summary panels
func (m *Model) resultsContent(result *analysis.Result) string {
	s := m.styles
	textOpts := render.TextOptions{Rounded: true, MaxColumnWidth: m.opts.MaxColumnWidth}

	technical := s.Subheader.Render(emoji.GetEmoji("technical")+" "+formatter.TechnicalTitle(result.TechnicalCount)) +
		"\n" + render.Text(render.Build(result.TechnicalRecords, m.opts.Columns), textOpts)

	pricing := s.Subheader.Render(emoji.GetEmoji("pricing")+" "+formatter.PricingTitle(result.PricingCount)) +
		"\n" + render.Text(render.Build(result.PricingRecords, m.opts.Columns), textOpts)

	status := s.Success.Render(result.Status)
	if result.Failed() {
		status = s.Error.Render(result.Status)
	}
	summary := s.Panel.Render(
		s.Subheader.Render(emoji.GetEmoji("summary")+" Summary") + "\n" +
			"Status: " + status + "\n" +
			result.Message,
	)

	return strings.Join([]string{technical, pricing, summary}, "\n\n")
}

// Run starts the TUI and blocks until the user quits or ctx ends
func Run(ctx context.Context, backend Backend, opts Options) error {
	model := NewModel(ctx, backend, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// interrupted by a signal, not a failure
		return nil
	}
	return err
}
