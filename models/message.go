package models

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single turn in a chat transcript
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage builds a user-role message
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewSystemMessage builds a system-role message
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewAssistantMessage builds an assistant-role message
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// CallOptions carries per-call knobs for a completion request.
// The zero value asks for provider and gateway defaults throughout.
type CallOptions struct {
	// MaxTokens caps the completion length. Zero means the gateway default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature overrides the provider's default sampling temperature
	// when non-nil. It participates in the response cache key.
	Temperature *float64 `json:"temperature,omitempty"`

	// Model overrides the provider's configured default model.
	Model string `json:"model,omitempty"`

	// Provider names the preferred provider for this call. The fallback
	// chain starts there when the provider is registered and healthy.
	Provider string `json:"provider,omitempty"`

	// NoCache bypasses the response cache for both lookup and write-through.
	NoCache bool `json:"no_cache,omitempty"`

	// TenantID scopes rate limiting. Calls without a tenant are not limited.
	TenantID string `json:"tenant_id,omitempty"`

	// UserID scopes the per-user rate bucket. Ignored for system calls.
	UserID string `json:"user_id,omitempty"`

	// IsSystemCall marks background work (scheduled digests, reports).
	// System calls skip the user bucket and count against the system bucket.
	IsSystemCall bool `json:"is_system_call,omitempty"`

	// JSONMode asks the provider for a JSON-only response, natively where
	// supported and via a system instruction otherwise.
	JSONMode bool `json:"json_mode,omitempty"`
}

// CompletionResult is the normalized outcome of a completion call
type CompletionResult struct {
	Content      string  `json:"content"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostCents    float64 `json:"cost_cents"`
	LatencyMs    int64   `json:"latency_ms"`

	// Cached is true when the result was served from the response cache.
	// Cached results report a latency of zero.
	Cached bool `json:"cached"`
}
