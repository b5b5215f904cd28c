// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the render-only building blocks of the zenbot
// TUI. Components hold display state but never perform I/O.
//
// # Components
//
//   - Header: brand, tagline, health badge and mode badge
//   - MetricsDashboard: summary, three score cards and legend
//   - MessageBubble: one transcript entry with evaluation badges
//   - Spinner: typing indicator while a reply is awaited
//   - Welcome: greeting with numbered sample questions
//   - StatusBar: key hints and turn status
//
// # Score Bands
//
// ScoreBand and ScoreEmoji classify [0,1] scores the same way everywhere a
// score is shown:
//
//	ScoreBand(0.85)  // "high"
//	ScoreEmoji(0.85) // "✅"
package components
