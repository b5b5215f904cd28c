// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenbot-labs/zenbot-tui/internal/logging"
	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/session"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
)

const (
	inputPlaceholder = "Ask about steel specifications..."
	inputHeight      = 3
)

// Options configures rendering of the chat pane.
type Options struct {
	ShowEvaluation bool
	ShowTimestamps bool
	// Markdown renders completed replies; nil shows raw text.
	Markdown *components.MarkdownRenderer
	// ASCIISpinner uses the dots frames for terminals without Unicode.
	ASCIISpinner bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{ShowEvaluation: true}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat pane.
type Model struct {
	session *session.Session
	theme   *styles.Theme
	opts    Options
	keyMap  KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  components.Spinner
	welcome  components.Welcome

	width  int
	height int
}

// New creates the chat pane over sess.
func New(sess *session.Session, theme *styles.Theme, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = inputPlaceholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = DefaultKeyMap().Newline
	ta.Focus()

	m := Model{
		session:  sess,
		theme:    theme,
		opts:     opts,
		keyMap:   DefaultKeyMap(),
		viewport: viewport.New(80, 20),
		input:    ta,
		spinner:  components.NewSpinner(theme, opts.ASCIISpinner),
		welcome:  components.NewWelcome(theme, session.SampleQuestions),
	}
	m.SetSize(80, 24)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Session returns the underlying session.
func (m Model) Session() *session.Session {
	return m.session
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}

// Mode returns the mode the next submit will use.
func (m Model) Mode() model.Mode {
	return m.session.Mode()
}

// SetSize lays the pane out in width x height cells.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	m.input.SetWidth(width - 4)

	// input box (text + border) plus one spinner line
	vpHeight := height - (inputHeight + 2) - 1
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.welcome.SetSize(width, vpHeight)
	m.refresh()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case FrameMsg:
		return m.handleFrame(msg)

	case StreamEndMsg:
		return m.handleStreamEnd(msg)
	}

	// Spinner ticks and cursor blinks
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.ToggleMode):
		mode := m.session.ToggleMode()
		logging.Debugw("mode toggled", "mode", mode)
		return m, nil

	case key.Matches(msg, m.keyMap.Refresh):
		return m, refreshMetricsCmd

	case key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if i := m.keyMap.sampleIndex(msg.String()); i >= 0 {
		q, err := m.session.SelectSample(i)
		if err == nil {
			m.input.SetValue(q)
			m.input.CursorEnd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetInput(m.input.Value())
	return m, cmd
}

// submit starts a turn from the input. Blank input and a turn in flight
// are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.session.SetInput(m.input.Value())
	turn, err := m.session.Submit()
	if err != nil {
		if !errors.Is(err, session.ErrBlankInput) && !errors.Is(err, session.ErrTurnInFlight) {
			logging.Warnw("submit failed", "error", err)
		}
		return m, nil
	}

	m.input.Reset()
	spin := m.spinner.Start()
	m.refresh()

	req := StreamRequestMsg{TurnID: turn.ID, Request: turn.Request}
	return m, tea.Batch(spin, func() tea.Msg { return req })
}

// handleFrame reconciles one frame into the session.
func (m Model) handleFrame(msg FrameMsg) (tea.Model, tea.Cmd) {
	effect := m.session.ApplyFrame(msg.TurnID, msg.Frame)
	if m.session.Phase() != session.PhaseAwaiting {
		m.spinner.Stop()
	}
	m.refresh()
	if effect.RefreshMetrics {
		return m, refreshMetricsCmd
	}
	return m, nil
}

// handleStreamEnd closes the turn.
func (m Model) handleStreamEnd(msg StreamEndMsg) (tea.Model, tea.Cmd) {
	m.session.Finish(msg.TurnID, msg.Err)
	if !m.session.Loading() {
		m.spinner.Stop()
	}
	m.refresh()
	return m, nil
}

func refreshMetricsCmd() tea.Msg {
	return RefreshMetricsMsg{}
}
