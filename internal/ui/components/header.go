// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

const (
	headerTitle   = "🤖 ZenBot"
	headerTagline = "AI-Powered Steel Specifications Assistant"
)

// Header is the title bar: brand, tagline, health badge and mode.
type Header struct {
	Health model.HealthStatus
	Mode   model.Mode
	Width  int
	theme  *styles.Theme
}

// NewHeader creates a header in the checking state.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Health: model.HealthChecking,
		Mode:   model.ModeFixed,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetHealth updates the health badge.
func (h *Header) SetHealth(status model.HealthStatus) {
	h.Health = status
}

// SetMode updates the mode badge.
func (h *Header) SetMode(mode model.Mode) {
	h.Mode = mode
}

// HealthBadge renders the health status with a dot.
func (h *Header) HealthBadge() string {
	var style lipgloss.Style
	switch h.Health {
	case model.HealthHealthy:
		style = h.theme.HealthOnline
	case model.HealthUnhealthy:
		style = h.theme.HealthOffline
	default:
		style = h.theme.HealthChecking
	}
	return style.Render("● " + h.Health.Label())
}

// ModeBadge renders the current mode.
func (h *Header) ModeBadge() string {
	if h.Mode == model.ModeBuggy {
		return h.theme.ModeBuggy.Render(h.Mode.Label())
	}
	return h.theme.ModeFixed.Render(h.Mode.Label())
}

// View renders the header.
func (h *Header) View() string {
	if h.Width < 60 {
		return h.ViewCompact()
	}

	left := h.theme.HeaderTitle.Render(headerTitle) + "  " +
		h.theme.HeaderSubtitle.Render(headerTagline)
	right := h.ModeBadge() + " " + h.HealthBadge()

	inner := h.Width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return h.theme.Header.Width(h.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// ViewCompact renders a single line for narrow terminals.
func (h *Header) ViewCompact() string {
	parts := []string{
		h.theme.HeaderTitle.Render(headerTitle),
		h.ModeBadge(),
		h.HealthBadge(),
	}
	return strings.Join(parts, " ")
}
