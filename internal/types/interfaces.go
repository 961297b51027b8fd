package types

import (
	"context"
	"time"
)

// LLMClient defines the interface for LLM backends. The gateway talks only
// to this; concrete providers live in internal/provider.
type LLMClient interface {
	// CompleteWithTools sends a prompt with tool definitions and returns the
	// model's text plus any tool calls it chose to make.
	CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, tools []ToolDefinition) (*LLMToolResponse, error)
	// SetModel switches the backend model for the next call. Model choice is
	// a dispatch policy decided per utterance by the gateway.
	SetModel(model string)
}

// ToolDefinition describes a tool the LLM can invoke.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"` // JSON Schema for parameters
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// UsageMetadata captures token usage metrics from the LLM.
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// LLMToolResponse contains both the text response and tool calls.
type LLMToolResponse struct {
	Text       string        `json:"text"`
	ToolCalls  []ToolCall    `json:"tool_calls"`
	StopReason string        `json:"stop_reason"` // "end_turn", "tool_use", ...
	Usage      UsageMetadata `json:"usage"`
}

// HistoryEntry is one append-only audit record.
type HistoryEntry struct {
	SessionID   string    `json:"session_id"`
	ActionName  string    `json:"action_name"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryStore is the append-only history half of the storage surface.
// The core writes entries; read-back is for display only.
type HistoryStore interface {
	AppendHistory(ctx context.Context, entry HistoryEntry) error
}

// UsageEvent records one LLM round trip for analytics.
type UsageEvent struct {
	SessionID    string    `json:"session_id"`
	Model        string    `json:"model"`
	Provider     string    `json:"provider"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Timestamp    time.Time `json:"timestamp"`
}

// UsageRecorder is the analytics half of the storage surface.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, event UsageEvent) error
}

// PromptRecorder keeps the raw utterances of a session for recall.
type PromptRecorder interface {
	AppendPrompt(ctx context.Context, sessionID, prompt string) error
}
