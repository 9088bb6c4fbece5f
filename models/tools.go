package models

import "encoding/json"

// StopReason explains why the model stopped generating
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// ToolSchema declares a tool the model may invoke. InputSchema is a JSON
// Schema object describing the tool's arguments.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolCall is a single tool invocation requested by the model
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolCompletionResult is the outcome of a tool-enabled completion.
// Content may accompany tool calls; ToolCalls is empty when the model
// answered directly.
type ToolCompletionResult struct {
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	StopReason   StopReason `json:"stop_reason"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	InputTokens  int        `json:"input_tokens"`
	OutputTokens int        `json:"output_tokens"`
	CostCents    float64    `json:"cost_cents"`
	LatencyMs    int64      `json:"latency_ms"`
}
