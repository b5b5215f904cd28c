// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the zenbot TUI.
//
// # Color System
//
// Colors are lipgloss.AdaptiveColor values that pick a light or dark
// variant from the terminal background:
//
//   - Steel: primary accent (header, assistant)
//   - Indigo: user messages and focus
//   - Emerald / Amber / Rose: high / medium / low score bands and health
//
// # Theme
//
// Theme bundles every lipgloss.Style the views use. Create one per program:
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	header := theme.HeaderTitle.Render("ZenBot")
//
// # Animations
//
// SpinnerConfig frame sets feed bubbles/spinner. RenderProgressBar and
// RenderSparkline draw the dashboard's score bars and recent-score trend.
package styles
