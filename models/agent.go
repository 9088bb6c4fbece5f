package models

// RouteRequest asks the agent router to deliver a message to a capability
type RouteRequest struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Message  string `json:"message"`

	// AgentType pins the message to a specific capability. When it names
	// a registered agent the intent classifier is skipped entirely.
	AgentType string `json:"agent_type,omitempty"`

	// ConversationID threads multi-turn exchanges. A new one is assigned
	// when empty.
	ConversationID string `json:"conversation_id,omitempty"`
}

// AgentResponse is the routed agent's answer plus call metadata
type AgentResponse struct {
	AgentType      string  `json:"agent_type"`
	Content        string  `json:"content"`
	ConversationID string  `json:"conversation_id"`
	Provider       string  `json:"provider,omitempty"`
	Model          string  `json:"model,omitempty"`
	CostCents      float64 `json:"cost_cents,omitempty"`
	LatencyMs      int64   `json:"latency_ms,omitempty"`
	Cached         bool    `json:"cached,omitempty"`
}
