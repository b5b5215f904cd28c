// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// MODE
// =============================================================================

// Mode selects the documentation set the backend answers from.
type Mode string

const (
	// ModeFixed answers from the current documentation.
	ModeFixed Mode = "fixed"
	// ModeBuggy answers from deliberately outdated documentation, used to
	// test hallucination resistance.
	ModeBuggy Mode = "buggy"
)

// ParseMode parses a mode name. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeFixed):
		return ModeFixed, nil
	case string(ModeBuggy):
		return ModeBuggy, nil
	default:
		return "", fmt.Errorf("invalid mode %q, must be one of: fixed, buggy", s)
	}
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeBuggy {
		return ModeFixed
	}
	return ModeBuggy
}

// Label returns the toggle button label.
func (m Mode) Label() string {
	if m == ModeBuggy {
		return "❌ Outdated Docs"
	}
	return "✅ Current Docs"
}

func (m Mode) String() string {
	return string(m)
}

// =============================================================================
// HEALTH STATUS
// =============================================================================

// HealthStatus is the tri-state backend health shown in the header.
type HealthStatus int

const (
	HealthChecking HealthStatus = iota
	HealthHealthy
	HealthUnhealthy
)

// String returns the status name.
func (h HealthStatus) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return "checking"
	}
}

// Label returns the badge text.
func (h HealthStatus) Label() string {
	switch h {
	case HealthHealthy:
		return "Online"
	case HealthUnhealthy:
		return "Offline"
	default:
		return "Connecting..."
	}
}
