// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// =============================================================================
// PROGRAM RUNNER FOR STREAMING
// =============================================================================

// Sender posts messages into a running Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// Streamer performs a streaming chat request.
type Streamer interface {
	ChatStream(ctx context.Context, req zenbot.ChatRequest, cb zenbot.StreamCallback) error
}

// StreamRunner runs streaming requests and posts their frames to a program.
type StreamRunner struct {
	sender Sender
	client Streamer
}

// NewStreamRunner creates a new stream runner.
func NewStreamRunner(sender Sender, client Streamer) *StreamRunner {
	return &StreamRunner{sender: sender, client: client}
}

// Run streams turnID. Every frame is posted as a FrameMsg in arrival order,
// then exactly one StreamEndMsg. It blocks until the stream ends.
func (r *StreamRunner) Run(ctx context.Context, turnID int, req zenbot.ChatRequest) {
	err := r.client.ChatStream(ctx, req, func(f zenbot.Frame) {
		r.sender.Send(FrameMsg{TurnID: turnID, Frame: f})
	})
	r.sender.Send(StreamEndMsg{TurnID: turnID, Err: err})
}
