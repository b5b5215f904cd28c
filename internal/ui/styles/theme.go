// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	HealthChecking lipgloss.Style
	HealthOnline   lipgloss.Style
	HealthOffline  lipgloss.Style

	ModeFixed lipgloss.Style
	ModeBuggy lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble        lipgloss.Style
	AssistantBubble   lipgloss.Style
	ApologyBubble     lipgloss.Style
	RoleLabel         lipgloss.Style
	Timestamp         lipgloss.Style
	InterruptedMarker lipgloss.Style
	EvalBadge         lipgloss.Style

	// ==========================================================================
	// DASHBOARD STYLES
	// ==========================================================================

	DashboardTitle lipgloss.Style
	Card           lipgloss.Style
	CardTitle      lipgloss.Style
	CardValue      lipgloss.Style
	CardDesc       lipgloss.Style
	Legend         lipgloss.Style

	// ==========================================================================
	// INPUT / STATUS STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputFocused   lipgloss.Style
	Spinner        lipgloss.Style
	StatusBar      lipgloss.Style
	HelpKey        lipgloss.Style
	HelpDesc       lipgloss.Style
	SampleKey      lipgloss.Style
	SampleText     lipgloss.Style
	Muted          lipgloss.Style
	ErrorText      lipgloss.Style
}

// NewTheme creates a theme. name is "dark", "light" or "auto"; auto
// asks the terminal.
func NewTheme(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(name) {
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Steel)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	t.HealthChecking = badge.Foreground(TextMuted)
	t.HealthOnline = badge.Foreground(Emerald)
	t.HealthOffline = badge.Foreground(Rose)

	t.ModeFixed = badge.Foreground(TextInverse).Background(Emerald)
	t.ModeBuggy = badge.Foreground(TextInverse).Background(Amber)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.ApologyBubble = t.AssistantBubble.
		Foreground(ApologyBubbleFg).
		BorderForeground(ApologyBubbleBorder)

	t.RoleLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InterruptedMarker = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.EvalBadge = lipgloss.NewStyle().
		Padding(0, 1).
		MarginRight(1)

	// Dashboard
	t.DashboardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Steel).
		MarginBottom(1)

	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.CardValue = lipgloss.NewStyle().
		Bold(true)

	t.CardDesc = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Legend = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Input and status
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputFocused = t.InputContainer.
		BorderForeground(Indigo)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.SampleKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Steel)

	t.SampleText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
