// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenbot-labs/zenbot-tui/internal/logging"
	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/poller"
	"github.com/zenbot-labs/zenbot-tui/internal/session"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/chat"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/util"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

const (
	// dashboardWidth is the width of the metrics column in wide layouts.
	dashboardWidth = 40

	// healthTimeout bounds the single startup probe.
	healthTimeout = 10 * time.Second
)

// Backend is the part of the zenbot API the TUI uses.
type Backend interface {
	Health(ctx context.Context) (*zenbot.HealthResponse, error)
	Metrics(ctx context.Context) (*model.Metrics, error)
	chat.Streamer
}

// =============================================================================
// MESSAGES
// =============================================================================

// HealthResultMsg carries the outcome of the startup health probe.
type HealthResultMsg struct {
	Status model.HealthStatus
	Err    error
}

// MetricsMsg carries a freshly polled metrics snapshot.
type MetricsMsg struct {
	Metrics *model.Metrics
}

// Options configures the shell.
type Options struct {
	Mode         model.Mode
	PollInterval time.Duration
	Chat         chat.Options
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the top-level Bubble Tea model.
type Model struct {
	backend Backend
	theme   *styles.Theme

	header    *components.Header
	dashboard *components.MetricsDashboard
	statusBar *components.StatusBar
	chat      chat.Model

	poller *poller.Poller
	runner *chat.StreamRunner
	sender chat.Sender

	ctx    context.Context
	cancel context.CancelFunc
	stop   sync.Once

	quit key.Binding

	width  int
	height int
}

// New creates the shell. Attach must be called before Start.
func New(backend Backend, theme *styles.Theme, opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		backend:   backend,
		theme:     theme,
		header:    components.NewHeader(theme),
		dashboard: components.NewMetricsDashboard(theme),
		statusBar: components.NewStatusBar(theme),
		chat:      chat.New(session.New(opts.Mode), theme, opts.Chat),
		ctx:       ctx,
		cancel:    cancel,
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
	m.poller = poller.New("metrics", opts.PollInterval, m.fetchMetrics)
	return m
}

// Attach sets the program that receives asynchronous results.
func (m *Model) Attach(sender chat.Sender) {
	m.sender = sender
	m.runner = chat.NewStreamRunner(sender, m.backend)
}

// Start begins metrics polling.
func (m *Model) Start() error {
	if m.sender == nil {
		return fmt.Errorf("app: Start before Attach")
	}
	return m.poller.Start(m.ctx)
}

// Stop halts polling and cancels in-flight streams. It is idempotent; after
// it returns no further metrics request is issued.
func (m *Model) Stop() {
	m.stop.Do(func() {
		m.cancel()
		m.poller.Stop()
	})
}

// RefreshMetrics requests an immediate metrics fetch.
func (m *Model) RefreshMetrics() {
	m.poller.Trigger()
}

// Health returns the header's health status.
func (m *Model) Health() model.HealthStatus {
	return m.header.Health
}

// Metrics returns the latest metrics snapshot, or nil.
func (m *Model) Metrics() *model.Metrics {
	return m.dashboard.Metrics()
}

// Chat returns the chat pane.
func (m *Model) Chat() chat.Model {
	return m.chat
}

// fetchMetrics is the poller's fetch function.
func (m *Model) fetchMetrics(ctx context.Context) error {
	metrics, err := m.backend.Metrics(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.sender.Send(MetricsMsg{Metrics: metrics})
	return nil
}

// checkHealth probes the backend once.
func (m *Model) checkHealth() tea.Cmd {
	backend := m.backend
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, healthTimeout)
		defer cancel()
		if _, err := backend.Health(ctx); err != nil {
			logging.Warnw("health check failed", "error", err)
			return HealthResultMsg{Status: model.HealthUnhealthy, Err: err}
		}
		return HealthResultMsg{Status: model.HealthHealthy}
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.chat.Init(), m.checkHealth())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.quit) {
			// Only cancel here. The poller may be blocked sending to this
			// event loop; Run waits for it once the program has exited.
			m.cancel()
			return m, tea.Quit
		}

	case HealthResultMsg:
		m.header.SetHealth(msg.Status)
		return m, nil

	case MetricsMsg:
		m.dashboard.SetMetrics(msg.Metrics)
		return m, nil

	case chat.StreamRequestMsg:
		return m, m.stream(msg)

	case chat.RefreshMetricsMsg:
		m.RefreshMetrics()
		return m, nil
	}

	next, cmd := m.chat.Update(msg)
	m.chat = next.(chat.Model)
	return m, cmd
}

// stream runs one chat turn as a command. Frames reach Update through the
// attached sender.
func (m *Model) stream(msg chat.StreamRequestMsg) tea.Cmd {
	runner := m.runner
	ctx := m.ctx
	if runner == nil {
		return func() tea.Msg {
			return chat.StreamEndMsg{TurnID: msg.TurnID, Err: fmt.Errorf("app: no program attached")}
		}
	}
	return func() tea.Msg {
		runner.Run(ctx, msg.TurnID, msg.Request)
		return nil
	}
}

// showDashboard reports whether the metrics column fits beside the chat.
func (m *Model) showDashboard() bool {
	return m.theme.GetLayoutMode() != styles.LayoutNarrow && m.width >= 90
}

// layout distributes the terminal between the panes.
func (m *Model) layout(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)

	chatWidth := width
	if m.showDashboard() {
		chatWidth = width - dashboardWidth - 1
		m.dashboard.SetWidth(dashboardWidth)
	}

	// header (line + border) and status bar
	chatHeight := height - 2 - 1
	if chatHeight < 8 {
		chatHeight = 8
	}
	m.chat.SetSize(chatWidth, chatHeight)
}

// View implements tea.Model.
func (m *Model) View() string {
	m.header.SetMode(m.chat.Mode())
	m.statusBar.SetStatus(m.status())

	body := m.chat.View()
	if m.showDashboard() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.dashboard.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.statusBar.View())
}

// status summarizes the turn phase and first-token latency, plus metrics
// when the dashboard is hidden.
func (m *Model) status() string {
	status := m.chat.Mode().String()
	if turn := m.chat.Session().CurrentTurn(); turn != nil {
		status += " · " + turn.Phase.String()
		if ttft := turn.TimeToFirstToken(); turn.Phase == session.PhaseComplete && ttft > 0 {
			status += " · first token " + ttft.Round(time.Millisecond).String()
		}
	}
	if !m.showDashboard() {
		if metrics := m.dashboard.Metrics(); metrics != nil {
			status += " · " + strconv.Itoa(metrics.TotalQueries) + " queries · " +
				util.Percent(metrics.AvgOverallScore)
		}
	}
	return status
}

// =============================================================================
// RUN
// =============================================================================

// Run starts the TUI and blocks until the user quits.
func Run(backend Backend, theme *styles.Theme, opts Options) error {
	m := New(backend, theme, opts)
	logging.Infow("tui started", "mode", opts.Mode, "poll_interval", opts.PollInterval)
	return m.run(tea.NewProgram(m, tea.WithAltScreen()))
}

// run drives p until it exits, then stops polling.
func (m *Model) run(p *tea.Program) error {
	m.Attach(p)
	if err := m.Start(); err != nil {
		return err
	}
	defer m.Stop()

	_, err := p.Run()
	return err
}
