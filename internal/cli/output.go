// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/session"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/components"
	"github.com/zenbot-labs/zenbot-tui/internal/ui/styles"
	"github.com/zenbot-labs/zenbot-tui/internal/util"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// =============================================================================
// LINE-MODE TURNS
// =============================================================================

// streamer is the part of the client a line-mode turn uses.
type streamer interface {
	ChatStream(ctx context.Context, req zenbot.ChatRequest, callback zenbot.StreamCallback) error
}

// turnResult summarizes a finished line-mode turn.
type turnResult struct {
	Turn *session.Turn
	// RefreshMetrics is set when the server sent its done frame.
	RefreshMetrics bool
}

// runTurn submits the session's pending input and streams the answer to w
// token by token. It returns once the stream has ended and the session has
// been finished; err is only a submit error.
func runTurn(ctx context.Context, w io.Writer, theme *styles.Theme, client streamer,
	sess *session.Session, showEval bool) (turnResult, error) {

	turn, err := sess.Submit()
	if err != nil {
		return turnResult{}, err
	}

	var res turnResult
	wrote := false
	streamErr := client.ChatStream(ctx, turn.Request, func(f zenbot.Frame) {
		if sess.ApplyFrame(turn.ID, f).RefreshMetrics {
			res.RefreshMetrics = true
		}
		if f.Type == zenbot.FrameToken && !f.Malformed() {
			fmt.Fprint(w, f.Text())
			wrote = true
		}
	})
	sess.Finish(turn.ID, streamErr)
	res.Turn = turn

	if wrote {
		fmt.Fprintln(w)
	}
	if a := turn.Assistant; a != nil {
		if a.Interrupted {
			fmt.Fprintln(w, theme.InterruptedMarker.Render(components.InterruptedText))
		}
		if showEval && a.Evaluation != nil {
			fmt.Fprintln(w, components.RenderEvaluationBadges(theme, a.Evaluation))
		}
	}
	if turn.Phase == session.PhaseFailed {
		fmt.Fprintln(w, theme.ErrorText.Render(model.ApologyText))
	}
	return res, nil
}

// =============================================================================
// FORMATTING
// =============================================================================

// metricsSummary is the one-line metrics readout, e.g. "📊 12 queries · 87%".
func metricsSummary(m *model.Metrics) string {
	if m == nil {
		return components.MetricsLoadingText
	}
	return fmt.Sprintf("📊 %s queries · %s", util.FormatCount(m.TotalQueries), util.Percent(m.AvgOverallScore))
}

// evaluationLine renders an evaluation as plain text for non-badge output.
func evaluationLine(eval *model.Evaluation) string {
	if eval == nil {
		return ""
	}
	return fmt.Sprintf("%s Spec %s · Price %s · Safety %s · Overall %s",
		components.ScoreEmoji(eval.OverallScore),
		util.Percent(eval.SpecAccuracy),
		util.Percent(eval.PricingAccuracy),
		util.Percent(eval.HallucinationCheck),
		util.Percent(eval.OverallScore))
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
