// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"
)

// =============================================================================
// SPINNERS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// BrailleSpinner is the default loading indicator.
var BrailleSpinner = SpinnerConfig{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    12,
}

// DotsSpinner is the ASCII fallback for terminals without Unicode.
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// =============================================================================
// PROGRESS INDICATORS
// =============================================================================

// ProgressBar characters for score bars.
var (
	ProgressFull    = "█"
	ProgressEmpty   = "░"
	ProgressPartial = []string{"▏", "▎", "▍", "▌", "▋", "▊", "▉"}
)

// RenderProgressBar creates a progress bar string.
// width: total width of the bar in characters
// percent: 0-100 percentage complete
func RenderProgressBar(width int, percent float64) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filledWidth := float64(width) * percent / 100
	fullBlocks := int(filledWidth)
	partialIndex := int((filledWidth - float64(fullBlocks)) * float64(len(ProgressPartial)+1))

	var sb strings.Builder
	sb.Grow(width * 3)

	for i := 0; i < fullBlocks && i < width; i++ {
		sb.WriteString(ProgressFull)
	}
	if fullBlocks < width && partialIndex > 0 {
		sb.WriteString(ProgressPartial[partialIndex-1])
		fullBlocks++
	}
	for i := fullBlocks; i < width; i++ {
		sb.WriteString(ProgressEmpty)
	}
	return sb.String()
}

// SparkChars are the eight levels of a sparkline.
var SparkChars = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline maps values in [0,1] onto SparkChars. Out-of-range values
// are clamped.
func RenderSparkline(values []float64) string {
	var sb strings.Builder
	top := len(SparkChars) - 1
	for _, v := range values {
		if v != v || v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		sb.WriteRune(SparkChars[int(v*float64(top)+0.5)])
	}
	return sb.String()
}
