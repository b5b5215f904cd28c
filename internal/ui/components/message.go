// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// InterruptedText marks a reply the server cut short with an error frame.
const InterruptedText = "⚠ response interrupted"

// MessageBubble renders one chat message.
type MessageBubble struct {
	Message        *model.Message
	Width          int
	ShowTimestamp  bool
	ShowEvaluation bool
	Markdown       *MarkdownRenderer
	theme          *styles.Theme
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:        msg,
		Width:          80,
		ShowEvaluation: true,
		theme:          theme,
	}
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message == nil {
		return ""
	}
	if b.Message.Role == model.RoleUser {
		return b.renderUser()
	}
	return b.renderAssistant()
}

func (b *MessageBubble) contentWidth() int {
	w := b.Width - 10
	if w < 20 {
		w = 20
	}
	return w
}

func (b *MessageBubble) header() string {
	msg := b.Message
	parts := []string{b.theme.RoleLabel.Render(msg.Role.Avatar() + " " + msg.Role.DisplayName())}
	if b.ShowTimestamp && !msg.Timestamp.IsZero() {
		parts = append(parts, b.theme.Timestamp.Render(msg.Timestamp.Format("15:04")))
	}
	return strings.Join(parts, " ")
}

func (b *MessageBubble) renderUser() string {
	width := b.contentWidth()
	bubble := b.theme.UserBubble.Width(width).Render(b.Message.GetDisplayContent())
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().MarginLeft(4).Render(b.header()), bubble)
}

func (b *MessageBubble) renderAssistant() string {
	msg := b.Message
	width := b.contentWidth()

	style := b.theme.AssistantBubble
	if msg.IsApology {
		style = b.theme.ApologyBubble
	}

	content := msg.GetDisplayContent()
	switch {
	case msg.IsStreaming:
		content += "▌"
	case b.Markdown != nil && !msg.IsApology && !msg.IsEmpty():
		content = b.Markdown.Render(content, width-2)
	}

	lines := []string{style.Width(width).Render(content)}
	if msg.Interrupted {
		lines = append(lines, b.theme.InterruptedMarker.Render(InterruptedText))
	}
	if b.ShowEvaluation && msg.Evaluation != nil {
		lines = append(lines, RenderEvaluationBadges(b.theme, msg.Evaluation))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{b.header()}, lines...)...)
}

// RenderEvaluationBadges renders the per-message score badges.
func RenderEvaluationBadges(theme *styles.Theme, eval *model.Evaluation) string {
	if eval == nil {
		return ""
	}
	badge := func(icon, label string, score float64) string {
		return theme.EvalBadge.
			Foreground(BandColor(ScoreBand(score))).
			Render(icon + " " + label + ": " + util.Percent(score))
	}
	return badge("📊", "Spec", eval.SpecAccuracy) +
		badge("💰", "Price", eval.PricingAccuracy) +
		badge("✨", "Safety", eval.HallucinationCheck)
}

// =============================================================================
// MARKDOWN
// =============================================================================

// MarkdownRenderer renders completed replies through glamour. Renderers are
// cached per wrap width.
type MarkdownRenderer struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer using a glamour standard style
// ("dark", "light", "notty"). An empty style follows the terminal.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// Render renders content wrapped at width. On failure the raw text is
// returned.
func (r *MarkdownRenderer) Render(content string, width int) string {
	tr, err := r.renderer(width)
	if err != nil {
		return content
	}
	out, err := tr.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func (r *MarkdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr, ok := r.renderers[width]; ok {
		return tr, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if r.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	r.renderers[width] = tr
	return tr, nil
}
