// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamRequestMsg asks the shell to start streaming turn TurnID.
type StreamRequestMsg struct {
	TurnID  int
	Request zenbot.ChatRequest
}

// FrameMsg delivers one decoded frame of turn TurnID.
type FrameMsg struct {
	TurnID int
	Frame  zenbot.Frame
}

// StreamEndMsg signals the end of the stream for turn TurnID. Err is nil on
// a clean EOF.
type StreamEndMsg struct {
	TurnID int
	Err    error
}

// =============================================================================
// SHELL REQUESTS
// =============================================================================

// RefreshMetricsMsg asks the shell to refresh metrics now.
type RefreshMetricsMsg struct{}
