package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wicket/internal/formatter"
	"github.com/desertthunder/wicket/internal/models"
	"github.com/desertthunder/wicket/internal/shared"
)

// ToastTTL is how long a stale-data toast stays up.
const ToastTTL = 5 * time.Second

// Engine is the consumer API of the sync engine.
type Engine interface {
	TriggerManualFetch(matchID string) bool
	SetAutoRefresh(enabled bool)
	AutoRefresh() bool
	MatchID() string
	MaxAttempts() int
	Next(ctx context.Context) (models.Outcome, bool)
}

// Model represents the dashboard state.
type Model struct {
	ctx    context.Context
	engine Engine
	width  int
	height int

	snapshot    *models.Snapshot
	lastUpdated time.Time
	innings     int

	fetching  bool
	status    string
	toast     string
	toastSeq  int
	failure   error
	notice    string
	rateNoted bool
	closed    bool

	editing bool
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a dashboard reading outcomes from engine.
func NewModel(ctx context.Context, engine Engine) *Model {
	input := textinput.New()
	input.Placeholder = "match id"
	input.CharLimit = 12
	input.Width = 16
	input.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return shared.ErrInvalidArgument
			}
		}
		return nil
	}

	return &Model{
		ctx:      ctx,
		engine:   engine,
		fetching: engine.MatchID() != "",
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts waiting for the first outcome.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForOutcome(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case m.editing:
			return m.handleInputKeys(msg)
		case m.failure != nil:
			return m.handlePanelKeys(msg)
		default:
			return m.handleKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgOutcome:
			cmd := m.apply(msg.data.(models.Outcome))
			return m, tea.Batch(cmd, m.waitForOutcome())
		case MsgToastExpired:
			if msg.data.(int) == m.toastSeq {
				m.toast = ""
			}
			return m, nil
		case MsgEngineClosed:
			m.closed = true
			m.fetching = false
			return m, nil
		}
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply folds one outcome into the visible state.
func (m *Model) apply(o models.Outcome) tea.Cmd {
	m.fetching = false

	var cmd tea.Cmd
	switch o.Kind {
	case models.OutcomeFresh:
		m.show(o.Snapshot)
		m.lastUpdated = o.At
		m.status = ""
		m.toast = ""
		m.notice = ""
		m.failure = nil
	case models.OutcomeStale:
		m.show(o.Snapshot)
		m.status = fmt.Sprintf("Network error (%d/%d)", o.Failures, m.engine.MaxAttempts())
		m.toast = "Showing cached data: " + o.Reason()
		m.toastSeq++
		seq := m.toastSeq
		cmd = tea.Tick(ToastTTL, func(time.Time) tea.Msg { return toastExpiredMsg(seq) })
	case models.OutcomeHardFailure:
		m.status = fmt.Sprintf("Network error (%d/%d)", o.Failures, m.engine.MaxAttempts())
		m.failure = o.Err
	}

	if o.RateLimited() && !m.rateNoted {
		m.rateNoted = true
		m.notice = "Rate limit reached. " + shared.RateLimitHint
	}
	return cmd
}

func (m *Model) show(s *models.Snapshot) {
	if s == nil {
		return
	}
	m.snapshot = s
	if m.innings >= len(s.Innings) {
		m.innings = max(len(s.Innings)-1, 0)
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		m.trigger("")
	case key.Matches(msg, m.keys.auto):
		enabled := !m.engine.AutoRefresh()
		m.engine.SetAutoRefresh(enabled)
		if enabled {
			m.status = "Auto-refresh on"
		} else {
			m.status = "Auto-refresh off"
		}
	case key.Matches(msg, m.keys.match):
		m.editing = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.next):
		if m.snapshot != nil && len(m.snapshot.Innings) > 0 {
			m.innings = (m.innings + 1) % len(m.snapshot.Innings)
		}
	}
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		id := strings.TrimSpace(m.input.Value())
		m.editing = false
		m.input.Blur()
		if id == "" || m.input.Err != nil {
			m.status = "Invalid match id"
			return m, nil
		}
		if id != m.engine.MatchID() {
			m.snapshot = nil
			m.innings = 0
			m.lastUpdated = time.Time{}
			m.rateNoted = false
		}
		m.trigger(id)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handlePanelKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.dismiss):
		m.failure = nil
	case key.Matches(msg, m.keys.refresh):
		m.failure = nil
		m.trigger("")
	}
	return m, nil
}

func (m *Model) trigger(matchID string) {
	if m.engine.TriggerManualFetch(matchID) {
		m.fetching = true
		m.status = "Fetching match " + m.engine.MatchID()
		return
	}
	if m.engine.MatchID() == "" {
		m.status = "No match selected"
		return
	}
	m.status = "A fetch is already running"
}

func (m *Model) waitForOutcome() tea.Cmd {
	return func() tea.Msg {
		o, ok := m.engine.Next(m.ctx)
		if !ok {
			return engineClosedMsg()
		}
		return outcomeMsg(o)
	}
}

// View renders the dashboard.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n\n")

	switch {
	case m.failure != nil:
		b.WriteString(m.renderFailure() + "\n")
	case m.snapshot == nil && m.engine.MatchID() == "":
		b.WriteString(styles.muted.Render("No match selected. Press m to choose one.") + "\n")
	case m.snapshot == nil:
		b.WriteString(styles.muted.Render("Waiting for match data...") + "\n")
	default:
		b.WriteString(renderInnings(m.snapshot, m.innings) + "\n")
		if progress := renderProgress(m.snapshot); progress != "" {
			b.WriteString(progress + "\n")
		}
	}

	if m.toast != "" {
		b.WriteString(styles.toast.Render(styles.warn.Render(m.toast)) + "\n")
	}
	if m.notice != "" {
		b.WriteString(styles.warn.Render(m.notice) + "\n")
	}
	if m.editing {
		b.WriteString("Match: " + m.input.View() + "\n")
	}

	b.WriteString("\n" + m.renderStatus() + "\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderHeader() string {
	if m.snapshot == nil {
		title := "wicket"
		if id := m.engine.MatchID(); id != "" {
			title += "  match " + id
		}
		return styles.title.Render(title)
	}

	h := m.snapshot.Header
	lines := []string{styles.title.Render(formatter.Title(m.snapshot))}
	for _, line := range []string{h.SeriesName, formatter.VenueLine(h.Venue), formatter.TossLine(h.Toss)} {
		if line != "" {
			lines = append(lines, styles.muted.Render(line))
		}
	}
	if h.Status != "" {
		lines = append(lines, styles.ok.Render(h.Status))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	parts := []string{}
	if m.fetching {
		parts = append(parts, m.spinner.View()+" fetching")
	}
	if !m.lastUpdated.IsZero() {
		parts = append(parts, "Last updated "+m.lastUpdated.Local().Format("15:04:05"))
	}
	if m.engine.AutoRefresh() {
		parts = append(parts, "auto")
	} else {
		parts = append(parts, "manual")
	}
	if m.closed {
		parts = append(parts, "stopped")
	}

	line := styles.muted.Render(strings.Join(parts, " | "))
	if m.status != "" {
		style := styles.muted
		if strings.HasPrefix(m.status, "Network error") {
			style = styles.err
		}
		line = style.Render(m.status) + "  " + line
	}
	return line
}

func (m *Model) renderFailure() string {
	body := fmt.Sprintf("Could not load match %s\n\n%v", m.engine.MatchID(), m.failure)
	if hint := shared.Hint(m.failure); hint != "" {
		body += "\n" + hint
	}
	body += "\n\n" + styles.help.Render("enter/esc dismiss, r retry, q quit")
	return styles.panel.Render(styles.err.Render("Error") + "\n\n" + body)
}
