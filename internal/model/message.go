// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "ZenBot"
	default:
		return string(r)
	}
}

// Avatar returns the glyph shown next to messages of this role.
func (r Role) Avatar() string {
	if r == RoleUser {
		return "👤"
	}
	return "🤖"
}

// ApologyText is the static reply appended when a turn fails.
const ApologyText = "Sorry, I encountered an error. Please try again."

// ErrEvaluationAlreadySet is returned when a second evaluation is attached
// to the same message.
var ErrEvaluationAlreadySet = errors.New("evaluation already attached")

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages are always handled by pointer; the streaming builder must not be copied.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Streaming state
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Evaluation is attached at most once, after the answer is complete.
	Evaluation *Evaluation `json:"evaluation,omitempty"`

	// Interrupted is set when the backend signalled an error mid-answer.
	Interrupted bool `json:"interrupted,omitempty"`

	// IsApology marks the static reply appended after a failed turn.
	IsApology bool `json:"is_apology,omitempty"`

	// ConversationID is the backend's history id, reported by the done frame.
	ConversationID int `json:"conversation_id,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message in streaming state.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewApologyMessage creates the static assistant reply used after a failed turn.
func NewApologyMessage() *Message {
	msg := NewMessage(RoleAssistant, ApologyText)
	msg.IsApology = true
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendToken appends a token to a streaming message.
// Tokens arriving after Finalize are dropped.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// AttachEvaluation sets the message's evaluation. It fails if one is
// already attached.
func (m *Message) AttachEvaluation(eval Evaluation) error {
	if m.Evaluation != nil {
		return ErrEvaluationAlreadySet
	}
	normalized := eval.Normalize()
	m.Evaluation = &normalized
	return nil
}

// Finalize completes streaming. Content is immutable afterwards.
func (m *Message) Finalize() {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.GetDisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique, time-ordered message ID.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "msg_" + uuid.NewString()
	}
	return "msg_" + id.String()
}
