// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view of the zenbot TUI.

# Key Components

## Model (model.go)

Model is the Bubble Tea model for the chat pane. It owns the input
textarea, the transcript viewport and the typing spinner, and drives a
session.Session for all chat state.

## Messages (messages.go)

The chat pane never touches the network. Submitting emits StreamRequestMsg;
the shell runs the request and feeds back one FrameMsg per decoded frame
followed by a StreamEndMsg. A done frame makes the pane emit
RefreshMetricsMsg.

## Streaming (stream.go)

StreamRunner performs one streaming request and posts its frames through a
Sender, which *tea.Program satisfies:

	runner := chat.NewStreamRunner(program, client)
	go runner.Run(ctx, turnID, req)

# Keys

	Enter        send
	Alt+Enter    newline
	Ctrl+T       toggle current/outdated docs
	F1..F4       fill the input with a sample question (Alt+1..4 also work)
	PgUp/PgDn    scroll the transcript
*/
package chat
