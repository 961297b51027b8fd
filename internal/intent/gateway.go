package intent

import (
	"context"
	"fmt"
	"strings"

	"sheetpilot/internal/logging"
	"sheetpilot/internal/retry"
	"sheetpilot/internal/types"
)

// Gateway translates free-form user requests into typed actions by way of
// a single function-calling LLM round trip. It owns the model selection
// policy and the cheap guard clauses that avoid a network call entirely.
type Gateway struct {
	client       types.LLMClient
	fastModel    string
	capableModel string
}

func NewGateway(client types.LLMClient, fastModel, capableModel string) *Gateway {
	return &Gateway{
		client:       client,
		fastModel:    fastModel,
		capableModel: capableModel,
	}
}

// Result is the gateway's answer for one utterance. Exactly one of
// Text-only, Text+Action is populated; NoOp means the input produced no
// work at all (blank utterance).
type Result struct {
	// Text is the assistant reply to surface to the user. When Action is
	// non-nil this is a short processing note; the engine supplies the
	// real confirmation afterwards.
	Text   string
	Action types.Action
	Usage  types.UsageMetadata
	Model  string
	NoOp   bool
}

// Interpret maps one utterance to a Result. The LLM call is wrapped in
// the retry policy; onRetry (optional) observes each scheduled retry.
func (g *Gateway) Interpret(ctx context.Context, userInput string, ds types.Dataset, convo Context, onRetry retry.OnRetry) (Result, error) {
	trimmed := strings.TrimSpace(userInput)
	if trimmed == "" {
		return Result{NoOp: true}, nil
	}

	if NeedsChartClarification(trimmed) {
		logging.Intent("chart clarification requested, no model call")
		return Result{
			Text: "What kind of chart would you like? I can generate a bar, line, or pie chart.",
		}, nil
	}

	model := SelectModel(trimmed, g.fastModel, g.capableModel)
	g.client.SetModel(model)
	logging.IntentDebug("model selected: %s (complex=%v, len=%d)", model, IsComplexQuery(trimmed), len(trimmed))

	system := BuildSystemInstruction(ds, convo)
	tools := Catalog()

	resp, failure := retry.Do(ctx, func(ctx context.Context) (*types.LLMToolResponse, error) {
		return g.client.CompleteWithTools(ctx, system, trimmed, tools)
	}, onRetry)
	if failure != nil {
		logging.IntentError("interpretation failed after %d attempt(s): %s", failure.Attempts, failure.Technical)
		return Result{Model: model}, failure
	}

	res := Result{
		Text:  strings.TrimSpace(resp.Text),
		Usage: resp.Usage,
		Model: model,
	}

	if len(resp.ToolCalls) == 0 {
		if res.Text == "" {
			res.Text = "I wasn't able to map that request to a spreadsheet operation. Could you rephrase it?"
		}
		return res, nil
	}

	// Only the first call is honored; the catalog prompts for one
	// operation per turn and extra calls are noise.
	call := resp.ToolCalls[0]
	if len(resp.ToolCalls) > 1 {
		logging.IntentDebug("model returned %d tool calls, using %q", len(resp.ToolCalls), call.Name)
	}

	action, err := DecodeToolCall(call)
	if err != nil {
		logging.IntentError("tool call %q rejected: %v", call.Name, err)
		return res, err
	}

	res.Action = action
	// On the action path the reply is always the processing placeholder;
	// the engine's confirmation is the real answer. Any model prose
	// alongside the call is dropped.
	res.Text = fmt.Sprintf("Processing: %s", action.Describe())
	logging.Intent("decoded %s for input %q", action.Name(), truncate(trimmed, 80))
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
