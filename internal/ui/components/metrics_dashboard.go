// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/util"
)

// =============================================================================
// SCORE CLASSIFICATION
// =============================================================================

// Band is the color band of a score.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ScoreBand classifies a [0,1] score: >=0.8 high, >=0.5 medium, else low.
func ScoreBand(score float64) Band {
	switch {
	case score >= 0.8:
		return BandHigh
	case score >= 0.5:
		return BandMedium
	default:
		return BandLow
	}
}

// ScoreEmoji picks the emoji shown next to a score.
func ScoreEmoji(score float64) string {
	switch {
	case score >= 0.9:
		return "🌟"
	case score >= 0.8:
		return "✅"
	case score >= 0.5:
		return "⚠️"
	default:
		return "❌"
	}
}

// BandColor returns the display color of a band.
func BandColor(b Band) lipgloss.AdaptiveColor {
	switch b {
	case BandHigh:
		return styles.ScoreHigh
	case BandMedium:
		return styles.ScoreMedium
	default:
		return styles.ScoreLow
	}
}

// =============================================================================
// METRICS DASHBOARD
// =============================================================================

// MetricsLoadingText is shown until the first successful poll.
const MetricsLoadingText = "Loading metrics..."

// metricCard describes one of the three score cards.
type metricCard struct {
	icon        string
	title       string
	description string
	score       func(*model.Metrics) float64
}

var metricCards = []metricCard{
	{"📊", "Spec Accuracy", "Accuracy of technical specifications",
		func(m *model.Metrics) float64 { return m.AvgSpecAccuracy }},
	{"💰", "Pricing Accuracy", "Correct pricing and cost information",
		func(m *model.Metrics) float64 { return m.AvgPricingAccuracy }},
	{"✨", "Hallucination Check", "Safety against false information",
		func(m *model.Metrics) float64 { return m.AvgHallucinationCheck }},
}

// MetricsDashboard renders the latest metrics snapshot. It holds no state
// beyond the snapshot; View is a pure function of it.
type MetricsDashboard struct {
	metrics *model.Metrics
	width   int
	theme   *styles.Theme
}

// NewMetricsDashboard creates a dashboard with no data.
func NewMetricsDashboard(theme *styles.Theme) *MetricsDashboard {
	return &MetricsDashboard{theme: theme, width: 36}
}

// SetMetrics replaces the snapshot. nil shows the loading placeholder.
func (md *MetricsDashboard) SetMetrics(m *model.Metrics) {
	md.metrics = m
}

// Metrics returns the current snapshot.
func (md *MetricsDashboard) Metrics() *model.Metrics {
	return md.metrics
}

// SetWidth updates the dashboard width.
func (md *MetricsDashboard) SetWidth(width int) {
	if width < 24 {
		width = 24
	}
	md.width = width
}

// View renders the dashboard.
func (md *MetricsDashboard) View() string {
	return RenderMetrics(md.theme, md.metrics, md.width)
}

// RenderMetrics renders a metrics snapshot at the given width.
func RenderMetrics(theme *styles.Theme, m *model.Metrics, width int) string {
	var b strings.Builder
	b.WriteString(theme.DashboardTitle.Render("📊 Quality Metrics"))
	b.WriteString("\n")

	if m == nil {
		b.WriteString(theme.Muted.Render(MetricsLoadingText))
		return b.String()
	}

	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	// Summary
	b.WriteString(renderSummaryLine(theme, "💬 Total Queries", strconv.Itoa(m.TotalQueries), inner))
	b.WriteString("\n")
	overall := theme.CardValue.Foreground(BandColor(ScoreBand(m.AvgOverallScore))).
		Render(util.Percent(m.AvgOverallScore))
	b.WriteString(renderSummaryLine(theme, "🎯 Overall Score", overall, inner))
	b.WriteString("\n\n")

	// Score cards
	for _, card := range metricCards {
		b.WriteString(renderCard(theme, card, card.score(m), width))
		b.WriteString("\n")
	}

	if len(m.RecentMetrics) > 0 {
		values := make([]float64, 0, len(m.RecentMetrics))
		for _, s := range m.RecentMetrics {
			values = append(values, s.OverallScore)
		}
		b.WriteString(theme.Legend.Render("Recent: "))
		b.WriteString(styles.RenderSparkline(values))
		if since, ok := m.RecentMetrics[0].Time(); ok {
			b.WriteString(theme.Legend.Render(" since " + since.Format("15:04")))
		}
		b.WriteString("\n")
	}

	b.WriteString(renderLegend(theme))
	return b.String()
}

// renderSummaryLine renders "label ..... value" across width.
func renderSummaryLine(theme *styles.Theme, label, value string, width int) string {
	gap := width - util.StringWidth(label) - lipgloss.Width(value)
	if gap < 1 {
		gap = 1
	}
	return theme.CardTitle.Render(label) + strings.Repeat(" ", gap) + value
}

// renderCard renders one score card.
func renderCard(theme *styles.Theme, card metricCard, score float64, width int) string {
	band := ScoreBand(score)
	color := BandColor(band)

	barWidth := width - 12
	if barWidth < 10 {
		barWidth = 10
	}

	title := theme.CardTitle.Render(card.icon + " " + card.title)
	value := ScoreEmoji(score) + " " + theme.CardValue.Foreground(color).Render(util.Percent(score))
	bar := lipgloss.NewStyle().Foreground(color).Render(styles.RenderProgressBar(barWidth, score*100))
	desc := theme.CardDesc.Render(card.description)

	content := lipgloss.JoinVertical(lipgloss.Left, title, value, bar, desc)
	return theme.Card.Width(width - 2).Render(content)
}

// renderLegend renders the band legend.
func renderLegend(theme *styles.Theme) string {
	dot := func(b Band) string {
		return lipgloss.NewStyle().Foreground(BandColor(b)).Render("●")
	}
	lines := []string{
		dot(BandHigh) + theme.Legend.Render(" Excellent (≥80%)"),
		dot(BandMedium) + theme.Legend.Render(" Good (50-79%)"),
		dot(BandLow) + theme.Legend.Render(" Needs Improvement (<50%)"),
	}
	return strings.Join(lines, "\n")
}
