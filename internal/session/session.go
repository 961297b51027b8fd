// Package session orchestrates one chat session: it owns the workbook and
// conversation, drives the gateway → engine → store pipeline, and enforces
// the one-in-flight-request rule.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"sheetpilot/internal/engine"
	"sheetpilot/internal/intent"
	"sheetpilot/internal/logging"
	"sheetpilot/internal/retry"
	"sheetpilot/internal/types"
)

// ErrBusy is returned when a send arrives while another is still in
// flight. The caller should surface it and let the user retry.
var ErrBusy = errors.New("a request is already in progress")

// Feedback tags a conversation turn after the fact.
const (
	FeedbackHelpful   = "helpful"
	FeedbackUnhelpful = "unhelpful"
)

// Session holds the state of one interactive session. Not safe for
// concurrent HandleInput calls by design: the semaphore rejects overlap
// instead of serializing it, so a stale-context mutation can never slip
// in behind an in-flight one.
type Session struct {
	ID       string
	Workbook types.Workbook

	gateway  *intent.Gateway
	history  types.HistoryStore
	usage    types.UsageRecorder
	prompts  types.PromptRecorder
	provider string

	turns    []types.ConversationTurn
	inFlight *semaphore.Weighted

	// OnRetry, when set, observes scheduled retries so the render surface
	// can show a "retrying..." notice.
	OnRetry retry.OnRetry
}

// New creates a session over an initial workbook.
func New(gw *intent.Gateway, wb types.Workbook, history types.HistoryStore, usage types.UsageRecorder, prompts types.PromptRecorder, provider string) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Workbook: wb,
		gateway:  gw,
		history:  history,
		usage:    usage,
		prompts:  prompts,
		provider: provider,
		inFlight: semaphore.NewWeighted(1),
	}
	logging.Session("session %s started (%d sheets)", s.ID, len(wb.Sheets))
	return s
}

// TurnResult is what one HandleInput call hands back to the render
// surface. Failure is non-nil when the LLM round trip was exhausted or
// terminal; Reply always carries something printable.
type TurnResult struct {
	Reply    string
	Workbook types.Workbook
	Chart    *types.ChartDescriptor
	Failure  *retry.Failure
	NoOp     bool
}

// HandleInput processes one user utterance end to end. A second call
// while one is pending returns ErrBusy immediately.
func (s *Session) HandleInput(ctx context.Context, userInput string) (TurnResult, error) {
	if !s.inFlight.TryAcquire(1) {
		return TurnResult{}, ErrBusy
	}
	defer s.inFlight.Release(1)

	convoCtx := s.promptContext()
	res, err := s.gateway.Interpret(ctx, userInput, s.Workbook.ActiveSheet().Data, convoCtx, s.OnRetry)

	if res.NoOp {
		return TurnResult{NoOp: true, Workbook: s.Workbook}, nil
	}

	s.appendTurn(types.ConversationTurn{
		Role:      types.RoleUser,
		Content:   userInput,
		Timestamp: time.Now(),
	})
	s.recordPrompt(ctx, userInput)

	if res.Model != "" {
		s.recordUsage(ctx, res)
	}

	var failure *retry.Failure
	if err != nil {
		if errors.As(err, &failure) {
			reply := fmt.Sprintf("%s (%s)", failure.Explanation, failure.Technical)
			s.appendTurn(types.ConversationTurn{
				Role:      types.RoleAssistant,
				Content:   reply,
				Timestamp: time.Now(),
			})
			return TurnResult{Reply: reply, Workbook: s.Workbook, Failure: failure}, nil
		}
		// Validation or unknown-tool errors: the action was rejected but
		// the session continues.
		reply := fmt.Sprintf("I couldn't apply that: %v", err)
		s.appendTurn(types.ConversationTurn{
			Role:      types.RoleAssistant,
			Content:   reply,
			Timestamp: time.Now(),
		})
		return TurnResult{Reply: reply, Workbook: s.Workbook}, nil
	}

	if res.Action == nil {
		s.appendTurn(types.ConversationTurn{
			Role:      types.RoleAssistant,
			Content:   res.Text,
			Timestamp: time.Now(),
		})
		return TurnResult{Reply: res.Text, Workbook: s.Workbook}, nil
	}

	outcome, err := engine.Apply(s.Workbook, res.Action)
	if err != nil {
		reply := fmt.Sprintf("I couldn't apply that: %v", err)
		s.appendTurn(types.ConversationTurn{
			Role:      types.RoleAssistant,
			Content:   reply,
			Action:    res.Action,
			Timestamp: time.Now(),
		})
		return TurnResult{Reply: reply, Workbook: s.Workbook}, nil
	}

	s.Workbook = outcome.Workbook
	s.appendTurn(types.ConversationTurn{
		Role:      types.RoleAssistant,
		Content:   outcome.Confirmation,
		Action:    res.Action,
		Timestamp: time.Now(),
	})
	s.logHistory(ctx, outcome)

	return TurnResult{
		Reply:    outcome.Confirmation,
		Workbook: s.Workbook,
		Chart:    outcome.Chart,
	}, nil
}

// Turns returns a copy of the conversation so far.
func (s *Session) Turns() []types.ConversationTurn {
	out := make([]types.ConversationTurn, len(s.turns))
	copy(out, s.turns)
	return out
}

// TagFeedback marks an existing turn as helpful or unhelpful. Tagging
// mutates in place; it never reorders or deletes.
func (s *Session) TagFeedback(turnIndex int, feedback string) error {
	if turnIndex < 0 || turnIndex >= len(s.turns) {
		return fmt.Errorf("turn index %d out of range (have %d turns)", turnIndex, len(s.turns))
	}
	if feedback != FeedbackHelpful && feedback != FeedbackUnhelpful && feedback != "" {
		return fmt.Errorf("invalid feedback %q", feedback)
	}
	s.turns[turnIndex].Feedback = feedback
	logging.SessionDebug("turn %d tagged %s", turnIndex, feedback)
	return nil
}

func (s *Session) appendTurn(turn types.ConversationTurn) {
	s.turns = append(s.turns, turn)
}

// promptContext extracts the continuity window for the system prompt:
// the most recent actions and the last user query.
func (s *Session) promptContext() intent.Context {
	var ctx intent.Context
	for _, turn := range s.turns {
		if turn.Action != nil {
			ctx.RecentActions = append(ctx.RecentActions, turn.Action)
		}
		if turn.Role == types.RoleUser {
			ctx.LastQuery = turn.Content
		}
	}
	return ctx
}

func (s *Session) recordPrompt(ctx context.Context, prompt string) {
	if s.prompts == nil {
		return
	}
	if err := s.prompts.AppendPrompt(ctx, s.ID, prompt); err != nil {
		logging.SessionDebug("prompt append failed: %v", err)
	}
}

func (s *Session) recordUsage(ctx context.Context, res intent.Result) {
	if s.usage == nil {
		return
	}
	event := types.UsageEvent{
		SessionID:    s.ID,
		Model:        res.Model,
		Provider:     s.provider,
		InputTokens:  res.Usage.InputTokens,
		OutputTokens: res.Usage.OutputTokens,
		Timestamp:    time.Now(),
	}
	if err := s.usage.RecordUsage(ctx, event); err != nil {
		logging.SessionDebug("usage record failed: %v", err)
	}
}

func (s *Session) logHistory(ctx context.Context, outcome engine.Outcome) {
	if s.history == nil {
		return
	}
	entry := types.HistoryEntry{
		SessionID:   s.ID,
		ActionName:  outcome.ActionName,
		Description: outcome.Description,
		Timestamp:   time.Now(),
	}
	if err := s.history.AppendHistory(ctx, entry); err != nil {
		logging.SessionDebug("history append failed: %v", err)
	}
}
