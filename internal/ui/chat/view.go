// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	inputStyle := m.theme.InputContainer
	if m.input.Focused() {
		inputStyle = m.theme.InputFocused
	}
	input := inputStyle.Width(m.width - 2).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.spinner.View(),
		input,
	)
}

// refresh re-renders the transcript into the viewport and follows the tail.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// renderTranscript renders every message, or the welcome panel when there
// are none.
func (m *Model) renderTranscript() string {
	msgs := m.session.Messages()
	if len(msgs) == 0 {
		return m.welcome.View()
	}

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		b := components.NewMessageBubble(msg, m.theme)
		b.Width = m.width
		b.ShowEvaluation = m.opts.ShowEvaluation
		b.ShowTimestamp = m.opts.ShowTimestamps
		b.Markdown = m.opts.Markdown
		parts = append(parts, b.View())
	}
	return strings.Join(parts, "\n\n")
}
