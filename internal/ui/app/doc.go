// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the top-level Bubble Tea model of the zenbot TUI.
//
// The shell probes backend health once, owns the metrics poller, runs chat
// streams on behalf of the chat pane and lays out header, chat pane,
// metrics dashboard and status bar. Network results arrive as messages:
//
//	HealthResultMsg   one per program, from Init
//	MetricsMsg        one per successful poll
//	chat.FrameMsg     one per decoded stream frame
//	chat.StreamEndMsg one per turn
//
// Run wires a program, starts the poller and stops it on exit.
package app
