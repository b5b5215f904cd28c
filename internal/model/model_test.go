// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_StreamingLifecycle(t *testing.T) {
	msg := NewAssistantMessage()
	require.True(t, msg.IsStreaming)
	assert.True(t, msg.IsEmpty())

	for _, tok := range []string{"Fe 550D ", "has ", "550 MPa"} {
		msg.AppendToken(tok)
	}
	assert.Equal(t, "Fe 550D has 550 MPa", msg.GetDisplayContent())
	assert.Empty(t, msg.Content, "content is only committed on finalize")

	msg.Finalize()
	assert.False(t, msg.IsStreaming)
	assert.Equal(t, "Fe 550D has 550 MPa", msg.Content)

	msg.AppendToken(" ignored")
	assert.Equal(t, "Fe 550D has 550 MPa", msg.GetDisplayContent())

	// Finalize is idempotent.
	msg.Finalize()
	assert.Equal(t, "Fe 550D has 550 MPa", msg.Content)
}

func TestMessage_AttachEvaluationOnce(t *testing.T) {
	msg := NewAssistantMessage()
	msg.Finalize()

	require.NoError(t, msg.AttachEvaluation(Evaluation{OverallScore: 0.9}))
	err := msg.AttachEvaluation(Evaluation{OverallScore: 0.1})
	assert.ErrorIs(t, err, ErrEvaluationAlreadySet)
	assert.InDelta(t, 0.9, msg.Evaluation.OverallScore, 1e-9)
}

func TestMessage_AttachEvaluationClamps(t *testing.T) {
	msg := NewAssistantMessage()
	require.NoError(t, msg.AttachEvaluation(Evaluation{
		SpecAccuracy:       1.7,
		PricingAccuracy:    -0.2,
		HallucinationCheck: math.NaN(),
		OverallScore:       0.5,
	}))
	assert.Equal(t, 1.0, msg.Evaluation.SpecAccuracy)
	assert.Equal(t, 0.0, msg.Evaluation.PricingAccuracy)
	assert.Equal(t, 0.0, msg.Evaluation.HallucinationCheck)
	assert.Equal(t, 0.5, msg.Evaluation.OverallScore)
}

func TestMessage_IDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := NewUserMessage("q").ID
		require.True(t, strings.HasPrefix(id, "msg_"))
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestApologyMessage(t *testing.T) {
	msg := NewApologyMessage()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, ApologyText, msg.Content)
	assert.True(t, msg.IsApology)
	assert.False(t, msg.IsStreaming)
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"unicode", "स्टील की कीमत", 5, "स्..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewUserMessage(tc.content)
			assert.Equal(t, tc.want, msg.Preview(tc.maxLen))
		})
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendPreservesOrder(t *testing.T) {
	conv := NewConversation()
	assert.Zero(t, conv.Len())

	q := NewUserMessage("What's the delivery time to Ranchi?")
	a := NewAssistantMessage()
	conv.Append(q)
	conv.Append(a)
	conv.Append(nil)

	require.Equal(t, 2, conv.Len())
	msgs := conv.Messages()
	assert.Same(t, q, msgs[0])
	assert.Same(t, a, msgs[1])
}

func TestConversation_MessagesReturnsCopy(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("one"))

	msgs := conv.Messages()
	msgs[0] = NewUserMessage("two")

	assert.Equal(t, "one", conv.Messages()[0].Content)
}

func TestConversation_MutationByIdentity(t *testing.T) {
	conv := NewConversation()
	a := NewAssistantMessage()
	conv.Append(a)

	a.AppendToken("partial")
	assert.Equal(t, "partial", conv.Messages()[0].GetDisplayContent())
}

// =============================================================================
// MODE AND HEALTH TESTS
// =============================================================================

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"fixed", ModeFixed, false},
		{"BUGGY", ModeBuggy, false},
		{" fixed ", ModeFixed, false},
		{"broken", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMode_Toggle(t *testing.T) {
	assert.Equal(t, ModeBuggy, ModeFixed.Toggle())
	assert.Equal(t, ModeFixed, ModeBuggy.Toggle())
	assert.Contains(t, ModeFixed.Label(), "Current Docs")
	assert.Contains(t, ModeBuggy.Label(), "Outdated Docs")
}

func TestHealthStatus_Label(t *testing.T) {
	assert.Equal(t, "Connecting...", HealthChecking.Label())
	assert.Equal(t, "Online", HealthHealthy.Label())
	assert.Equal(t, "Offline", HealthUnhealthy.Label())
	assert.Equal(t, "unhealthy", HealthUnhealthy.String())
}

func TestScoreSample_Time(t *testing.T) {
	s := ScoreSample{Timestamp: "2025-01-15T10:30:00.123456"}
	ts, ok := s.Time()
	require.True(t, ok)
	assert.Equal(t, 2025, ts.Year())

	_, ok = ScoreSample{Timestamp: "yesterday"}.Time()
	assert.False(t, ok)
}
