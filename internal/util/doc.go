// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the zenbot packages.
//
// # Key Functions
//
// Display width (backed by go-runewidth):
//   - StringWidth: terminal column count of a string
//   - TruncateWidth: width-aware truncation with ellipsis
//   - PadRight: width-aware right padding
//
// Formatting:
//   - Percent: score in [0,1] rendered as a whole percentage
//   - FormatCount: integer with thousands separators (golang.org/x/text)
//
// File Operations:
//   - WritePrivateFile: owner-only, all-or-nothing file replacement
//
// # Usage
//
//	label := util.PadRight(util.TruncateWidth(title, 20), 20)
//	fmt.Println(label, util.Percent(0.856)) // "... 86%"
package util
