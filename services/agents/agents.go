// Package agents provides the registered capabilities behind the agent
// router. Each one is a system prompt over the completion gateway;
// business data assembly stays with the caller.
package agents

import (
	"context"

	"github.com/peakform/ai-gateway/models"
)

// DefaultType is the capability used when routing cannot resolve a
// better one.
const DefaultType = "general_assistant"

// ChatService is the slice of the gateway agents depend on.
type ChatService interface {
	Chat(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error)
}

// Agent is a registered capability the router can deliver messages to.
type Agent interface {
	// Type is the stable registry key, for example "goal_coach".
	Type() string

	// Description is a one-line summary for status surfaces and the
	// classifier prompt.
	Description() string

	// Handle answers one routed message.
	Handle(ctx context.Context, req models.RouteRequest) (*models.AgentResponse, error)
}

// PromptAgent is a capability defined entirely by its system prompt.
type PromptAgent struct {
	agentType   string
	description string
	prompt      string
	chat        ChatService
}

// NewPromptAgent builds a capability from a type name, description and
// system prompt.
func NewPromptAgent(agentType, description, prompt string, chat ChatService) *PromptAgent {
	return &PromptAgent{
		agentType:   agentType,
		description: description,
		prompt:      prompt,
		chat:        chat,
	}
}

func (a *PromptAgent) Type() string        { return a.agentType }
func (a *PromptAgent) Description() string { return a.description }

// Handle issues one completion with the agent's system prompt on the
// requester's tenant and user accounts.
func (a *PromptAgent) Handle(ctx context.Context, req models.RouteRequest) (*models.AgentResponse, error) {
	result, err := a.chat.Chat(ctx, []models.Message{
		models.NewSystemMessage(a.prompt),
		models.NewUserMessage(req.Message),
	}, models.CallOptions{
		TenantID: req.TenantID,
		UserID:   req.UserID,
	})
	if err != nil {
		return nil, err
	}

	return &models.AgentResponse{
		AgentType:      a.agentType,
		Content:        result.Content,
		ConversationID: req.ConversationID,
		Provider:       result.Provider,
		Model:          result.Model,
		CostCents:      result.CostCents,
		LatencyMs:      result.LatencyMs,
		Cached:         result.Cached,
	}, nil
}

// NewGoalCoach helps employees draft and refine measurable goals.
func NewGoalCoach(chat ChatService) *PromptAgent {
	return NewPromptAgent(
		"goal_coach",
		"Drafts and refines measurable goals and key results",
		"You are a goal-setting coach inside a performance management platform. "+
			"Help the user draft clear, measurable goals with a concrete time frame "+
			"and success criteria. Prefer outcomes over activities. Keep answers "+
			"short and actionable.",
		chat)
}

// NewReviewAssistant helps write performance reviews and self-assessments.
func NewReviewAssistant(chat ChatService) *PromptAgent {
	return NewPromptAgent(
		"review_assistant",
		"Helps write performance reviews and self-assessments",
		"You are a performance review assistant. Help the user structure and "+
			"phrase review feedback or a self-assessment: specific, balanced, "+
			"grounded in observed behavior, and free of biased language.",
		chat)
}

// NewFeedbackAnalyst interprets feedback themes and sentiment.
func NewFeedbackAnalyst(chat ChatService) *PromptAgent {
	return NewPromptAgent(
		"feedback_analyst",
		"Summarizes feedback themes and sentiment",
		"You are a feedback analyst. Given workplace feedback, identify the key "+
			"themes, the overall sentiment, and concrete follow-up suggestions. "+
			"Quote the feedback sparingly and never invent content that is not there.",
		chat)
}

// NewPerformanceAnalyst interprets performance metrics and trends.
func NewPerformanceAnalyst(chat ChatService) *PromptAgent {
	return NewPromptAgent(
		"performance_analyst",
		"Explains performance metrics and trends",
		"You are a performance analyst. Help the user interpret performance "+
			"metrics, benchmarks and trends. Be precise about what the data does "+
			"and does not support, and flag small sample sizes.",
		chat)
}

// NewGeneralAssistant answers anything the specialized agents do not cover.
func NewGeneralAssistant(chat ChatService) *PromptAgent {
	return NewPromptAgent(
		DefaultType,
		"Answers general workplace questions",
		"You are a helpful assistant inside a performance management platform. "+
			"Answer the user's question clearly and concisely. If the question "+
			"needs data you do not have, say so instead of guessing.",
		chat)
}

// All returns the standard capability set in registration order, the
// default agent last.
func All(chat ChatService) []*PromptAgent {
	return []*PromptAgent{
		NewGoalCoach(chat),
		NewReviewAssistant(chat),
		NewFeedbackAnalyst(chat),
		NewPerformanceAnalyst(chat),
		NewGeneralAssistant(chat),
	}
}
