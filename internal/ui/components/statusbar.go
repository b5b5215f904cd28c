// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// KeyHint is one key/description pair in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBar shows key hints on the left and a short status on the right.
type StatusBar struct {
	Hints  []KeyHint
	Status string
	Width  int
	theme  *styles.Theme
}

// NewStatusBar creates a status bar with the default chat hints.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Hints: []KeyHint{
			{"enter", "send"},
			{"alt+enter", "newline"},
			{"ctrl+t", "mode"},
			{"F1-F4", "samples"},
			{"ctrl+r", "refresh"},
			{"ctrl+c", "quit"},
		},
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus sets the right-hand status text.
func (s *StatusBar) SetStatus(status string) {
	s.Status = status
}

// View renders the status bar. Hints are dropped from the end until the
// line fits.
func (s *StatusBar) View() string {
	right := s.theme.Muted.Render(s.Status)
	avail := s.Width - 2 - lipgloss.Width(right) - 1

	hints := make([]string, 0, len(s.Hints))
	used := 0
	for _, h := range s.Hints {
		rendered := s.theme.HelpKey.Render(h.Key) + " " + s.theme.HelpDesc.Render(h.Desc)
		w := lipgloss.Width(rendered)
		if len(hints) > 0 {
			w += 2
		}
		if used+w > avail {
			break
		}
		hints = append(hints, rendered)
		used += w
	}

	left := strings.Join(hints, "  ")
	gap := s.Width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}
