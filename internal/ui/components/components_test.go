// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

// =============================================================================
// SCORE CLASSIFICATION
// =============================================================================

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{1.0, BandHigh},
		{0.8, BandHigh},
		{0.79, BandMedium},
		{0.5, BandMedium},
		{0.49, BandLow},
		{0, BandLow},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ScoreBand(tc.score), "score %v", tc.score)
	}
}

func TestScoreEmoji(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "🌟"},
		{0.9, "🌟"},
		{0.85, "✅"},
		{0.8, "✅"},
		{0.6, "⚠️"},
		{0.5, "⚠️"},
		{0.2, "❌"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ScoreEmoji(tc.score), "score %v", tc.score)
	}
}

func TestBandColor(t *testing.T) {
	assert.Equal(t, styles.ScoreHigh, BandColor(BandHigh))
	assert.Equal(t, styles.ScoreMedium, BandColor(BandMedium))
	assert.Equal(t, styles.ScoreLow, BandColor(BandLow))
}

// =============================================================================
// METRICS DASHBOARD
// =============================================================================

func TestMetricsDashboard_Loading(t *testing.T) {
	md := NewMetricsDashboard(testTheme())
	out := md.View()
	assert.Contains(t, out, MetricsLoadingText)
	assert.NotContains(t, out, "Spec Accuracy")
}

func TestMetricsDashboard_Render(t *testing.T) {
	md := NewMetricsDashboard(testTheme())
	md.SetWidth(60)
	md.SetMetrics(&model.Metrics{
		TotalQueries:          12345,
		AvgSpecAccuracy:       0.92,
		AvgPricingAccuracy:    0.65,
		AvgHallucinationCheck: 0.3,
		AvgOverallScore:       0.856,
	})
	out := md.View()

	for _, want := range []string{
		"12345", // verbatim, no separators
		"86%",
		"Spec Accuracy", "92%", "🌟",
		"Pricing Accuracy", "65%", "⚠️",
		"Hallucination Check", "30%", "❌",
		"Accuracy of technical specifications",
		"Correct pricing and cost information",
		"Safety against false information",
		"Excellent (≥80%)", "Good (50-79%)", "Needs Improvement (<50%)",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, MetricsLoadingText)
	assert.NotContains(t, out, "Recent:")
}

func TestMetricsDashboard_RecentSparkline(t *testing.T) {
	out := RenderMetrics(testTheme(), &model.Metrics{
		RecentMetrics: []model.ScoreSample{{OverallScore: 0}, {OverallScore: 1}},
	}, 40)
	assert.Contains(t, out, "Recent: ▁█")
	assert.NotContains(t, out, "since", "no parseable timestamp")

	out = RenderMetrics(testTheme(), &model.Metrics{
		RecentMetrics: []model.ScoreSample{
			{Timestamp: "2025-01-15T10:30:00.123456", OverallScore: 0.2},
			{Timestamp: "2025-01-15T10:42:10", OverallScore: 0.9},
		},
	}, 40)
	assert.Contains(t, out, "since 10:30")
}

func TestMetricsDashboard_ReplacedWholesale(t *testing.T) {
	md := NewMetricsDashboard(testTheme())
	md.SetMetrics(&model.Metrics{TotalQueries: 3})
	md.SetMetrics(&model.Metrics{TotalQueries: 4})
	assert.Equal(t, 4, md.Metrics().TotalQueries)
	md.SetMetrics(nil)
	assert.Contains(t, md.View(), MetricsLoadingText)
}

// =============================================================================
// HEADER
// =============================================================================

func TestHeader_HealthBadge(t *testing.T) {
	h := NewHeader(testTheme())
	assert.Contains(t, h.HealthBadge(), "Connecting...")
	h.SetHealth(model.HealthHealthy)
	assert.Contains(t, h.HealthBadge(), "Online")
	h.SetHealth(model.HealthUnhealthy)
	assert.Contains(t, h.HealthBadge(), "Offline")
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(testTheme())
	h.SetWidth(120)
	h.SetMode(model.ModeBuggy)
	out := h.View()
	assert.Contains(t, out, "ZenBot")
	assert.Contains(t, out, "AI-Powered Steel Specifications Assistant")
	assert.Contains(t, out, "Outdated Docs")

	h.SetWidth(40)
	compact := h.View()
	assert.NotContains(t, compact, "AI-Powered")
	assert.Contains(t, compact, "Connecting...")
}

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

func TestMessageBubble_User(t *testing.T) {
	b := NewMessageBubble(model.NewUserMessage("What's the price of TMT 12mm?"), testTheme())
	out := b.View()
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "TMT 12mm")
}

func TestMessageBubble_StreamingAssistant(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.AppendToken("Fe 550D ")
	msg.AppendToken("yield")
	out := NewMessageBubble(msg, testTheme()).View()
	assert.Contains(t, out, "ZenBot")
	assert.Contains(t, out, "Fe 550D yield▌")
}

func TestMessageBubble_EvaluationAndInterrupted(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.AppendToken("partial")
	require.NoError(t, msg.AttachEvaluation(model.Evaluation{
		SpecAccuracy: 0.9, PricingAccuracy: 0.4, HallucinationCheck: 0.75,
	}))
	msg.Interrupted = true
	msg.Finalize()

	b := NewMessageBubble(msg, testTheme())
	out := b.View()
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, InterruptedText)
	assert.Contains(t, out, "Spec: 90%")
	assert.Contains(t, out, "Price: 40%")
	assert.Contains(t, out, "Safety: 75%")

	b.ShowEvaluation = false
	assert.NotContains(t, b.View(), "Spec: 90%")
}

func TestMessageBubble_Apology(t *testing.T) {
	out := NewMessageBubble(model.NewApologyMessage(), testTheme()).View()
	assert.Contains(t, out, "Sorry, I encountered an error.")
}

func TestMessageBubble_Nil(t *testing.T) {
	assert.Empty(t, NewMessageBubble(nil, testTheme()).View())
}

func TestMarkdownRenderer(t *testing.T) {
	r := NewMarkdownRenderer("notty")
	out := r.Render("Fe 550D yield strength", 60)
	assert.Contains(t, out, "yield strength")
	assert.False(t, strings.HasPrefix(out, "\n"))

	// Renderers are cached per width.
	_ = r.Render("again", 60)
	assert.Len(t, r.renderers, 1)
}

// =============================================================================
// WELCOME / SPINNER / STATUS BAR
// =============================================================================

func TestWelcome_ListsSamples(t *testing.T) {
	samples := []string{"What's the yield strength of Fe 550D 16mm?", "What's the delivery time to Ranchi?"}
	w := NewWelcome(testTheme(), samples)
	w.SetSize(100, 0)
	out := w.View()
	assert.Contains(t, out, "Welcome to ZenBot!")
	assert.Contains(t, out, "F1")
	assert.Contains(t, out, "F2")
	assert.Contains(t, out, "delivery time to Ranchi?")
}

func TestSpinner_Lifecycle(t *testing.T) {
	s := NewSpinner(testTheme(), true)
	assert.Empty(t, s.View())
	assert.NotNil(t, s.Start())
	assert.True(t, s.IsActive())
	assert.Contains(t, s.View(), "ZenBot is thinking...")
	s.Stop()
	assert.Empty(t, s.View())
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0s", formatElapsed(0))
	assert.Equal(t, "1m 05s", formatElapsed(65e9))
}

func TestStatusBar_DropsHintsToFit(t *testing.T) {
	sb := NewStatusBar(testTheme())
	sb.SetWidth(200)
	sb.SetStatus("fixed")
	wide := sb.View()
	assert.Contains(t, wide, "ctrl+c")
	assert.Contains(t, wide, "fixed")

	sb.SetWidth(40)
	narrow := sb.View()
	assert.Contains(t, narrow, "enter")
	assert.NotContains(t, narrow, "ctrl+c")
	assert.False(t, strings.Contains(narrow, "\n"))
}
