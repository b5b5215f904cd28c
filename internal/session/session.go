// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zenbot-labs/zenbot-tui/internal/logging"
	"github.com/zenbot-labs/zenbot-tui/internal/model"
	"github.com/zenbot-labs/zenbot-tui/internal/zenbot"
)

// SampleQuestions are the canned prompts offered to new users.
var SampleQuestions = []string{
	"What's the yield strength of Fe 550D 16mm?",
	"What's the current price of TMT 12mm?",
	"What's the delivery time to Ranchi?",
	"What's the difference between Fe 500 and Fe 550D?",
}

// submitPreviewLen bounds the message text written to the debug log.
const submitPreviewLen = 60

var (
	// ErrBlankInput is returned by Submit when the input is empty or whitespace.
	ErrBlankInput = errors.New("input is blank")

	// ErrTurnInFlight is returned by Submit while a previous turn is loading.
	ErrTurnInFlight = errors.New("a response is still loading")

	// ErrNoSuchSample is returned by SelectSample for an out-of-range index.
	ErrNoSuchSample = errors.New("no such sample question")
)

// =============================================================================
// PHASE
// =============================================================================

// Phase is the lifecycle state of a turn.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaiting
	PhaseStreaming
	PhaseComplete
	PhaseFailed
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAwaiting:
		return "awaiting"
	case PhaseStreaming:
		return "streaming"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// InFlight reports whether the phase is awaiting or streaming.
func (p Phase) InFlight() bool {
	return p == PhaseAwaiting || p == PhaseStreaming
}

// =============================================================================
// TURN
// =============================================================================

// Turn is one request/response exchange.
type Turn struct {
	ID      int
	Request zenbot.ChatRequest

	User      *model.Message
	Assistant *model.Message

	Phase Phase

	MalformedFrames int
	SawError        bool
	SawDone         bool
	ErrorText       string
	Err             error

	StartedAt    time.Time
	FirstTokenAt time.Time
	EndedAt      time.Time
}

// TimeToFirstToken returns the latency of the first token, or zero.
func (t *Turn) TimeToFirstToken() time.Duration {
	if t.FirstTokenAt.IsZero() {
		return 0
	}
	return t.FirstTokenAt.Sub(t.StartedAt)
}

// Effect tells the caller what a frame requires beyond re-rendering.
type Effect struct {
	// RefreshMetrics is set for the done frame.
	RefreshMetrics bool
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the chat state. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	conv  *model.Conversation
	mode  model.Mode
	input string

	turn   *Turn
	nextID int
}

// New creates a session in the given mode. An empty mode means fixed.
func New(mode model.Mode) *Session {
	if mode == "" {
		mode = model.ModeFixed
	}
	return &Session{
		conv: model.NewConversation(),
		mode: mode,
	}
}

// Conversation returns the underlying conversation.
func (s *Session) Conversation() *model.Conversation {
	return s.conv
}

// Messages returns the ordered messages.
func (s *Session) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Messages()
}

// =============================================================================
// INPUT AND MODE
// =============================================================================

// Input returns the pending input.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the pending input.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// SelectSample copies sample question i (0-based) into the input verbatim.
// Nothing is sent.
func (s *Session) SelectSample(i int) (string, error) {
	if i < 0 || i >= len(SampleQuestions) {
		return "", fmt.Errorf("%w: %d", ErrNoSuchSample, i+1)
	}
	q := SampleQuestions[i]
	s.SetInput(q)
	return q, nil
}

// Mode returns the mode the next submit will use.
func (s *Session) Mode() model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode sets the mode for subsequent submits. A turn in flight keeps the
// mode it was submitted with.
func (s *Session) SetMode(mode model.Mode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
}

// ToggleMode flips the mode and returns the new value.
func (s *Session) ToggleMode() model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.mode.Toggle()
	return s.mode
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// Loading reports whether a turn is awaiting or streaming.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn != nil && s.turn.Phase.InFlight()
}

// Phase returns the phase of the latest turn, or idle.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn == nil {
		return PhaseIdle
	}
	return s.turn.Phase
}

// CurrentTurn returns the latest turn, or nil.
func (s *Session) CurrentTurn() *Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Submit starts a turn from the pending input. The user message is appended,
// the input is cleared and the current mode is captured into the request.
// The text is sent as typed; whitespace only decides whether it is blank.
func (s *Session) Submit() (*Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := s.input
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlankInput
	}
	if s.turn != nil && s.turn.Phase.InFlight() {
		return nil, ErrTurnInFlight
	}

	s.nextID++
	user := model.NewUserMessage(text)
	s.conv.Append(user)
	s.input = ""

	s.turn = &Turn{
		ID:        s.nextID,
		Request:   zenbot.ChatRequest{Message: text, Mode: s.mode},
		User:      user,
		Phase:     PhaseAwaiting,
		StartedAt: time.Now(),
	}
	logging.Debugw("turn submitted", "turn", s.turn.ID, "mode", s.mode,
		"messages", s.conv.Len(), "preview", user.Preview(submitPreviewLen))
	return s.turn, nil
}

// ApplyFrame reconciles one frame into turn turnID. Frames for any other
// turn, or arriving after Finish, are ignored.
func (s *Session) ApplyFrame(turnID int, f zenbot.Frame) Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.activeTurn(turnID)
	if t == nil {
		return Effect{}
	}

	if f.Malformed() {
		t.MalformedFrames++
		logging.Warnw("skipping malformed frame", "turn", t.ID, "line", f.Raw, "error", f.Err)
		return Effect{}
	}

	switch f.Type {
	case zenbot.FrameToken:
		s.ensureAssistant(t).AppendToken(f.Text())
		if t.Phase == PhaseAwaiting {
			t.Phase = PhaseStreaming
			t.FirstTokenAt = time.Now()
		}

	case zenbot.FrameEvaluation:
		eval, err := f.Evaluation()
		if err != nil {
			t.MalformedFrames++
			logging.Warnw("skipping malformed evaluation", "turn", t.ID, "error", err)
			return Effect{}
		}
		if err := s.ensureAssistant(t).AttachEvaluation(eval); err != nil {
			logging.Warnw("ignoring evaluation", "turn", t.ID, "error", err)
		}

	case zenbot.FrameDone:
		t.SawDone = true
		if t.Assistant != nil && f.ConversationID != 0 {
			t.Assistant.ConversationID = f.ConversationID
		}
		return Effect{RefreshMetrics: true}

	case zenbot.FrameError:
		t.SawError = true
		t.ErrorText = f.Text()
		if t.Assistant != nil {
			t.Assistant.Interrupted = true
		}
		logging.Warnw("server reported error", "turn", t.ID, "error", t.ErrorText)
	}
	return Effect{}
}

// Finish closes turn turnID. err is the transport result of the stream.
//
// Any partial assistant message is finalized. A transport error, or an
// error frame with no later done frame, appends exactly one apology.
func (s *Session) Finish(turnID int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.activeTurn(turnID)
	if t == nil {
		return
	}
	if t.Assistant != nil {
		t.Assistant.Finalize()
	}
	t.EndedAt = time.Now()
	t.Err = err

	switch {
	case err != nil:
		t.Phase = PhaseFailed
		logging.Errorw("chat stream failed", "turn", t.ID, "error", err)
	case t.SawError && !t.SawDone:
		t.Phase = PhaseFailed
	default:
		t.Phase = PhaseComplete
		logging.Infow("turn complete", "turn", t.ID,
			"duration", t.EndedAt.Sub(t.StartedAt), "first_token", t.TimeToFirstToken(),
			"malformed", t.MalformedFrames)
		return
	}
	s.conv.Append(model.NewApologyMessage())
}

// activeTurn returns the turn with id if it is still in flight.
func (s *Session) activeTurn(id int) *Turn {
	if s.turn == nil || s.turn.ID != id || !s.turn.Phase.InFlight() {
		return nil
	}
	return s.turn
}

// ensureAssistant creates the turn's assistant message on first use.
func (s *Session) ensureAssistant(t *Turn) *model.Message {
	if t.Assistant == nil {
		t.Assistant = model.NewAssistantMessage()
		s.conv.Append(t.Assistant)
	}
	return t.Assistant
}
