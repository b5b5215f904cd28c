// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the chat pane.
type KeyMap struct {
	Submit     key.Binding
	Newline    key.Binding
	ToggleMode key.Binding
	Refresh    key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Samples    []key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "newline"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle docs"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh metrics"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "scroll down"),
		),
		Samples: []key.Binding{
			key.NewBinding(key.WithKeys("f1", "alt+1"), key.WithHelp("F1", "sample 1")),
			key.NewBinding(key.WithKeys("f2", "alt+2"), key.WithHelp("F2", "sample 2")),
			key.NewBinding(key.WithKeys("f3", "alt+3"), key.WithHelp("F3", "sample 3")),
			key.NewBinding(key.WithKeys("f4", "alt+4"), key.WithHelp("F4", "sample 4")),
		},
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Newline, k.ToggleMode, k.Refresh}
}

// sampleIndex returns the sample bound to msg, or -1.
func (k KeyMap) sampleIndex(msg string) int {
	for i, b := range k.Samples {
		for _, keyName := range b.Keys() {
			if keyName == msg {
				return i
			}
		}
	}
	return -1
}
