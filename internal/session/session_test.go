// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// =============================================================================
// HELPERS
// =============================================================================

func token(s string) zenbot.Frame {
	raw, _ := json.Marshal(s)
	return zenbot.Frame{Type: zenbot.FrameToken, Content: raw}
}

func evaluation(score float64) zenbot.Frame {
	raw, _ := json.Marshal(model.Evaluation{
		SpecAccuracy:       score,
		PricingAccuracy:    score,
		HallucinationCheck: score,
		OverallScore:       score,
	})
	return zenbot.Frame{Type: zenbot.FrameEvaluation, Content: raw}
}

func done(id int) zenbot.Frame {
	return zenbot.Frame{Type: zenbot.FrameDone, ConversationID: id}
}

func errFrame(msg string) zenbot.Frame {
	raw, _ := json.Marshal(msg)
	return zenbot.Frame{Type: zenbot.FrameError, Content: raw}
}

func submit(t *testing.T, s *Session, text string) *Turn {
	t.Helper()
	s.SetInput(text)
	turn, err := s.Submit()
	require.NoError(t, err)
	return turn
}

func countApologies(msgs []*model.Message) int {
	n := 0
	for _, m := range msgs {
		if m.IsApology {
			n++
		}
	}
	return n
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_RejectsBlankInput(t *testing.T) {
	s := New(model.ModeFixed)
	for _, in := range []string{"", "   ", "\n\t"} {
		s.SetInput(in)
		_, err := s.Submit()
		assert.ErrorIs(t, err, ErrBlankInput)
	}
	assert.Zero(t, s.Conversation().Len())
	assert.False(t, s.Loading())
}

func TestSubmit_RejectsWhileLoading(t *testing.T) {
	s := New(model.ModeFixed)
	submit(t, s, "first")

	s.SetInput("second")
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrTurnInFlight)
	assert.Equal(t, "second", s.Input(), "rejected input is kept")
	assert.Equal(t, 1, s.Conversation().Len())
}

func TestSubmit_AppendsUserMessageAndClearsInput(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "  What's the delivery time to Ranchi?  ")

	assert.Equal(t, "", s.Input())
	assert.True(t, s.Loading())
	assert.Equal(t, PhaseAwaiting, s.Phase())

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "  What's the delivery time to Ranchi?  ", msgs[0].Content)
	assert.Equal(t, "  What's the delivery time to Ranchi?  ", turn.Request.Message, "input is sent untrimmed")
}

func TestSubmit_CapturesModeAtSubmitTime(t *testing.T) {
	s := New(model.ModeFixed)
	assert.Equal(t, model.ModeBuggy, s.ToggleMode())
	turn := submit(t, s, "q")

	s.ToggleMode()
	assert.Equal(t, model.ModeBuggy, turn.Request.Mode)
	assert.Equal(t, model.ModeFixed, s.Mode())
}

func TestNew_DefaultsToFixed(t *testing.T) {
	assert.Equal(t, model.ModeFixed, New("").Mode())
}

// =============================================================================
// SAMPLE QUESTION TESTS
// =============================================================================

func TestSelectSample_PopulatesInputVerbatim(t *testing.T) {
	s := New(model.ModeFixed)
	for i, want := range SampleQuestions {
		got, err := s.SelectSample(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want, s.Input())
	}
	assert.Zero(t, s.Conversation().Len(), "selecting a sample sends nothing")
	assert.False(t, s.Loading())
}

func TestSelectSample_OutOfRange(t *testing.T) {
	s := New(model.ModeFixed)
	s.SetInput("keep")
	_, err := s.SelectSample(len(SampleQuestions))
	assert.ErrorIs(t, err, ErrNoSuchSample)
	_, err = s.SelectSample(-1)
	assert.ErrorIs(t, err, ErrNoSuchSample)
	assert.Equal(t, "keep", s.Input())
}

// =============================================================================
// STREAM RECONCILIATION TESTS
// =============================================================================

func TestApplyFrame_TokensConcatenateInOrder(t *testing.T) {
	tokens := []string{"The ", "yield ", "strength ", "is ", "550 ", "N/mm²"}
	s := New(model.ModeFixed)
	turn := submit(t, s, "What's the yield strength of Fe 550D 16mm?")

	for _, tok := range tokens {
		s.ApplyFrame(turn.ID, token(tok))
		assert.Equal(t, PhaseStreaming, s.Phase())
	}
	s.Finish(turn.ID, nil)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, strings.Join(tokens, ""), msgs[1].Content)
	assert.Equal(t, PhaseComplete, s.Phase())
	assert.False(t, s.Loading())
	assert.False(t, msgs[1].IsStreaming)
}

func TestApplyFrame_AssistantCreatedLazily(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	assert.Nil(t, turn.Assistant)
	assert.Equal(t, 1, s.Conversation().Len())

	s.ApplyFrame(turn.ID, token("a"))
	require.NotNil(t, turn.Assistant)
	assert.Equal(t, 2, s.Conversation().Len())

	s.ApplyFrame(turn.ID, token("b"))
	assert.Equal(t, 2, s.Conversation().Len(), "later tokens reuse the same message")
}

func TestApplyFrame_EvaluationAttachesToStreamedMessage(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")

	for i := 0; i < 3; i++ {
		s.ApplyFrame(turn.ID, token("x"))
	}
	streamed := turn.Assistant
	s.ApplyFrame(turn.ID, evaluation(0.85))
	s.ApplyFrame(turn.ID, done(4))
	s.Finish(turn.ID, nil)

	require.NotNil(t, streamed.Evaluation)
	assert.InDelta(t, 0.85, streamed.Evaluation.OverallScore, 1e-9)
	assert.Same(t, streamed, s.Messages()[1])
	assert.Equal(t, 4, streamed.ConversationID)

	// Only the streamed message carries an evaluation.
	for _, m := range s.Messages() {
		if m != streamed {
			assert.Nil(t, m.Evaluation)
		}
	}
}

func TestApplyFrame_SecondEvaluationIgnored(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.ApplyFrame(turn.ID, token("x"))
	s.ApplyFrame(turn.ID, evaluation(0.9))
	s.ApplyFrame(turn.ID, evaluation(0.1))
	assert.InDelta(t, 0.9, turn.Assistant.Evaluation.OverallScore, 1e-9)
}

func TestApplyFrame_EvaluationAcrossTurns(t *testing.T) {
	s := New(model.ModeFixed)
	first := submit(t, s, "one")
	s.ApplyFrame(first.ID, token("a"))
	s.Finish(first.ID, nil)

	second := submit(t, s, "two")
	s.ApplyFrame(second.ID, token("b"))
	s.ApplyFrame(second.ID, evaluation(0.6))

	assert.Nil(t, first.Assistant.Evaluation)
	require.NotNil(t, second.Assistant.Evaluation)
}

func TestApplyFrame_DoneRequestsRefresh(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")

	assert.False(t, s.ApplyFrame(turn.ID, token("a")).RefreshMetrics)
	assert.True(t, s.ApplyFrame(turn.ID, done(1)).RefreshMetrics)
	assert.True(t, s.Loading(), "done does not end the turn; EOF does")
}

func TestApplyFrame_MalformedSkipped(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")

	s.ApplyFrame(turn.ID, token("a"))
	s.ApplyFrame(turn.ID, zenbot.Frame{Raw: "data: {", Err: zenbot.ErrMalformedFrame})
	s.ApplyFrame(turn.ID, zenbot.Frame{Type: zenbot.FrameEvaluation, Content: []byte(`"nope"`)})
	s.ApplyFrame(turn.ID, token("b"))
	s.Finish(turn.ID, nil)

	assert.Equal(t, 2, turn.MalformedFrames)
	assert.Equal(t, "ab", turn.Assistant.Content)
	assert.Nil(t, turn.Assistant.Evaluation)
	assert.Equal(t, PhaseComplete, turn.Phase)
}

func TestApplyFrame_StaleTurnIgnored(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.ApplyFrame(turn.ID, token("a"))
	s.Finish(turn.ID, nil)

	s.ApplyFrame(turn.ID, token("late"))
	s.ApplyFrame(turn.ID+1, token("wrong"))
	s.Finish(turn.ID, errors.New("late failure"))

	assert.Equal(t, "a", turn.Assistant.Content)
	assert.Equal(t, 2, s.Conversation().Len())
	assert.Equal(t, PhaseComplete, turn.Phase)
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func TestFinish_TransportFailureBeforeTokens(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.Finish(turn.ID, errors.New("connection refused"))

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsApology)
	assert.Equal(t, model.ApologyText, msgs[1].Content)
	assert.False(t, s.Loading())
	assert.Equal(t, PhaseFailed, s.Phase())
}

func TestFinish_TransportFailureMidStream(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.ApplyFrame(turn.ID, token("partial "))
	s.ApplyFrame(turn.ID, token("answer"))
	s.Finish(turn.ID, errors.New("read stream: connection reset"))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "partial answer", msgs[1].Content)
	assert.False(t, msgs[1].IsStreaming, "partial message is finalized")
	assert.Equal(t, 1, countApologies(msgs))
	assert.False(t, s.Loading())
}

func TestFinish_ExactlyOneApology(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.Finish(turn.ID, errors.New("first"))
	s.Finish(turn.ID, errors.New("second"))
	assert.Equal(t, 1, countApologies(s.Messages()))
}

func TestErrorFrame_KeepsPartialAndFlagsIt(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.ApplyFrame(turn.ID, token("Fe 550D "))
	s.ApplyFrame(turn.ID, errFrame("retrieval failed"))
	s.Finish(turn.ID, nil)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Fe 550D ", msgs[1].Content)
	assert.True(t, msgs[1].Interrupted)
	assert.True(t, msgs[2].IsApology)
	assert.Equal(t, "retrieval failed", turn.ErrorText)
	assert.Equal(t, PhaseFailed, turn.Phase)
}

func TestErrorFrame_BeforeAnyToken(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.ApplyFrame(turn.ID, errFrame("boom"))
	s.Finish(turn.ID, nil)

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsApology)
	assert.Nil(t, turn.Assistant)
}

func TestErrorFrame_FollowedByDoneIsComplete(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.ApplyFrame(turn.ID, token("a"))
	s.ApplyFrame(turn.ID, errFrame("minor"))
	s.ApplyFrame(turn.ID, done(2))
	s.Finish(turn.ID, nil)

	assert.Equal(t, PhaseComplete, turn.Phase)
	assert.Zero(t, countApologies(s.Messages()))
	assert.True(t, turn.Assistant.Interrupted)
}

func TestFinish_AllowsNextSubmit(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	s.Finish(turn.ID, errors.New("x"))

	next := submit(t, s, "again")
	assert.Equal(t, turn.ID+1, next.ID)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "awaiting", PhaseAwaiting.String())
	assert.Equal(t, "streaming", PhaseStreaming.String())
	assert.Equal(t, "complete", PhaseComplete.String())
	assert.Equal(t, "failed", PhaseFailed.String())
	assert.True(t, PhaseAwaiting.InFlight())
	assert.False(t, PhaseComplete.InFlight())
}

func TestTimeToFirstToken(t *testing.T) {
	s := New(model.ModeFixed)
	turn := submit(t, s, "q")
	assert.Zero(t, turn.TimeToFirstToken(), "no token yet")

	s.ApplyFrame(turn.ID, token("a"))
	require.False(t, turn.FirstTokenAt.IsZero())
	first := turn.FirstTokenAt

	s.ApplyFrame(turn.ID, token("b"))
	assert.Equal(t, first, turn.FirstTokenAt, "later tokens keep the first timestamp")

	turn.StartedAt = first.Add(-300 * time.Millisecond)
	assert.Equal(t, 300*time.Millisecond, turn.TimeToFirstToken())
}
