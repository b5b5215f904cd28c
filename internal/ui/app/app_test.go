// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/session"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/chat"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

type fakeBackend struct {
	healthErr    error
	metricsErr   error
	metricsCalls atomic.Int64
	frames       []zenbot.Frame
	streamErr    error
}

func (f *fakeBackend) Health(context.Context) (*zenbot.HealthResponse, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &zenbot.HealthResponse{Status: "healthy"}, nil
}

func (f *fakeBackend) Metrics(context.Context) (*model.Metrics, error) {
	n := f.metricsCalls.Add(1)
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	return &model.Metrics{TotalQueries: int(n), AvgOverallScore: 0.9}, nil
}

func (f *fakeBackend) ChatStream(_ context.Context, _ zenbot.ChatRequest, cb zenbot.StreamCallback) error {
	for _, fr := range f.frames {
		cb(fr)
	}
	return f.streamErr
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
}

func (s *recordingSender) drain() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.msgs
	s.msgs = nil
	return out
}

func newShell(t *testing.T, backend *fakeBackend, interval time.Duration) (*Model, *recordingSender) {
	t.Helper()
	m := New(backend, styles.NewTheme("dark"), Options{Mode: model.ModeFixed, PollInterval: interval, Chat: chat.DefaultOptions()})
	sender := &recordingSender{}
	m.Attach(sender)
	t.Cleanup(m.Stop)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m, sender
}

func countMetrics(msgs []tea.Msg) int {
	n := 0
	for _, msg := range msgs {
		if _, ok := msg.(MetricsMsg); ok {
			n++
		}
	}
	return n
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealthProbe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.HealthStatus
	}{
		{"healthy", nil, model.HealthHealthy},
		{"unreachable", errors.New("connection refused"), model.HealthUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newShell(t, &fakeBackend{healthErr: tc.err}, time.Hour)
			assert.Equal(t, model.HealthChecking, m.Health())
			assert.Contains(t, m.View(), "Connecting...")

			msg := m.checkHealth()()
			m.Update(msg)
			assert.Equal(t, tc.want, m.Health())
			assert.Contains(t, m.View(), tc.want.Label())
		})
	}
}

// =============================================================================
// METRICS POLLING
// =============================================================================

func TestStartBeforeAttach(t *testing.T) {
	m := New(&fakeBackend{}, styles.NewTheme("dark"), Options{})
	defer m.Stop()
	assert.Error(t, m.Start())
}

func TestPollingDeliversMetricsUntilStop(t *testing.T) {
	backend := &fakeBackend{}
	m, sender := newShell(t, backend, 10*time.Millisecond)
	require.NoError(t, m.Start())

	var got []tea.Msg
	assert.Eventually(t, func() bool {
		got = append(got, sender.drain()...)
		return countMetrics(got) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	m.Stop()
	calls := backend.metricsCalls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, backend.metricsCalls.Load(), "no requests after Stop")

	assert.Contains(t, m.View(), "Loading metrics...")
	for _, msg := range got {
		m.Update(msg)
	}
	require.NotNil(t, m.Metrics())
	assert.NotContains(t, m.View(), "Loading metrics...")
}

func TestPollFailureIsSilent(t *testing.T) {
	backend := &fakeBackend{metricsErr: errors.New("503")}
	m, sender := newShell(t, backend, 10*time.Millisecond)
	require.NoError(t, m.Start())

	assert.Eventually(t, func() bool { return backend.metricsCalls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	m.Stop()
	assert.Zero(t, countMetrics(sender.drain()))
	assert.Nil(t, m.Metrics())
	assert.Contains(t, m.View(), "Loading metrics...")
}

// =============================================================================
// CHAT ROUND TRIP
// =============================================================================

func tokenFrame(text string) zenbot.Frame {
	return zenbot.Frame{Type: zenbot.FrameToken, Content: []byte(`"` + text + `"`)}
}

func TestChatRoundTripRefreshesMetrics(t *testing.T) {
	backend := &fakeBackend{frames: []zenbot.Frame{
		tokenFrame("Fe 550D "),
		tokenFrame("yields 550 MPa"),
		{Type: zenbot.FrameDone},
	}}
	m, sender := newShell(t, backend, time.Hour)
	require.NoError(t, m.Start())
	assert.Eventually(t, func() bool { return backend.metricsCalls.Load() == 1 }, time.Second, 5*time.Millisecond)

	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	// Find the stream request in the submit batch and hand it to the shell.
	var req chat.StreamRequestMsg
	found := false
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if r, ok := c().(chat.StreamRequestMsg); ok {
				req, found = r, true
			}
		}
	}
	require.True(t, found)
	assert.Equal(t, session.SampleQuestions[0], req.Request.Message)

	_, streamCmd := m.Update(req)
	require.NotNil(t, streamCmd)
	assert.Nil(t, streamCmd())

	var refresh tea.Cmd
	for _, msg := range sender.drain() {
		if _, ok := msg.(MetricsMsg); ok {
			continue
		}
		_, c := m.Update(msg)
		if c != nil {
			refresh = c
		}
	}
	require.NotNil(t, refresh, "done frame should request a metrics refresh")
	m.Update(refresh())

	assert.Eventually(t, func() bool { return backend.metricsCalls.Load() == 2 }, time.Second, 5*time.Millisecond)
	last := m.Chat().Session().CurrentTurn().Assistant
	require.NotNil(t, last)
	assert.Equal(t, "Fe 550D yields 550 MPa", last.Content)
	assert.False(t, m.Chat().Session().Loading())
}

func TestQuitStopsPolling(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newShell(t, backend, 10*time.Millisecond)
	require.NoError(t, m.Start())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	calls := backend.metricsCalls.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, calls, backend.metricsCalls.Load())
}

// quittingBackend presses ctrl+c during its second metrics fetch and then
// answers, as when a response is already on its way as the user quits.
type quittingBackend struct {
	fakeBackend
	program *tea.Program
}

func (b *quittingBackend) Metrics(context.Context) (*model.Metrics, error) {
	if b.metricsCalls.Add(1) == 2 {
		b.program.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		time.Sleep(100 * time.Millisecond)
	}
	return &model.Metrics{TotalQueries: 1, AvgOverallScore: 0.9}, nil
}

func TestQuitDuringMetricsFetchExits(t *testing.T) {
	backend := &quittingBackend{}
	m := New(backend, styles.NewTheme("dark"), Options{
		Mode:         model.ModeFixed,
		PollInterval: 200 * time.Millisecond,
		Chat:         chat.DefaultOptions(),
	})
	p := tea.NewProgram(m, tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())
	backend.program = p

	done := make(chan error, 1)
	go func() { done <- m.run(p) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		p.Kill()
		t.Fatal("program still running after ctrl+c")
	}
	assert.Equal(t, int64(2), backend.metricsCalls.Load())
}

func TestNarrowLayoutHidesDashboard(t *testing.T) {
	m, _ := newShell(t, &fakeBackend{}, time.Hour)
	m.Update(MetricsMsg{Metrics: &model.Metrics{TotalQueries: 7, AvgOverallScore: 0.5}})
	assert.Contains(t, m.View(), "Quality Metrics")

	m.Update(tea.WindowSizeMsg{Width: 70, Height: 30})
	view := m.View()
	assert.NotContains(t, view, "Quality Metrics")
	assert.Contains(t, view, "7 queries")
}

func TestStatusShowsFirstTokenLatency(t *testing.T) {
	m, _ := newShell(t, &fakeBackend{}, time.Hour)
	s := m.Chat().Session()
	s.SetInput("q")
	turn, err := s.Submit()
	require.NoError(t, err)
	assert.Contains(t, m.View(), "awaiting")

	s.ApplyFrame(turn.ID, zenbot.Frame{Type: zenbot.FrameToken, Content: []byte(`"Fe"`)})
	s.Finish(turn.ID, nil)
	turn.StartedAt = turn.FirstTokenAt.Add(-250 * time.Millisecond)

	assert.Contains(t, m.View(), "complete · first token 250ms")
}
