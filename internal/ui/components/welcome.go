// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/util"
)

// =============================================================================
// WELCOME PANEL
// =============================================================================

// Welcome is shown in place of the transcript while no messages exist.
type Welcome struct {
	samples []string
	width   int
	height  int
	theme   *styles.Theme
}

// NewWelcome creates a welcome panel listing samples.
func NewWelcome(theme *styles.Theme, samples []string) Welcome {
	return Welcome{samples: samples, theme: theme}
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// View renders the welcome panel.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}

	boxWidth := width - 4
	if boxWidth > 72 {
		boxWidth = 72
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	var b strings.Builder
	b.WriteString(w.theme.HeaderTitle.Render("👋 Welcome to ZenBot!"))
	b.WriteString("\n")
	b.WriteString(w.theme.Muted.Render("Ask me about steel specifications, pricing, and delivery."))
	b.WriteString("\n\n")
	b.WriteString(w.theme.RoleLabel.Render("Try these questions:"))
	b.WriteString("\n")

	textWidth := boxWidth - 10
	for i, q := range w.samples {
		key := w.theme.SampleKey.Render("F" + strconv.Itoa(i+1))
		b.WriteString(key + "  " + w.theme.SampleText.Render(util.TruncateWidth(q, textWidth)))
		b.WriteString("\n")
	}

	box := w.theme.Card.Width(boxWidth).Render(strings.TrimRight(b.String(), "\n"))
	if w.height <= 0 {
		return box
	}
	return lipgloss.Place(width, w.height, lipgloss.Center, lipgloss.Center, box)
}
