// Package router delivers user messages to the registered agent
// capability, classifying intent when the caller does not name one.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/internal/observability"
	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services"
	"github.com/peakform/ai-gateway/services/agents"
)

// Classifier resolves a message to an agent type. It never fails; the
// fallback type stands in for every failure mode.
type Classifier interface {
	Classify(ctx context.Context, message, tenantID, userID string) string
}

// Router owns the capability registry and the routing decision.
type Router struct {
	capabilities map[string]agents.Agent
	order        []string
	defaultType  string
	classifier   Classifier
	logger       *zap.Logger
}

// New creates an empty router. Capabilities are added with Register;
// defaultType names the agent used when resolution fails and must be
// registered before the first RouteMessage call.
func New(classifier Classifier, defaultType string, logger *zap.Logger) *Router {
	return &Router{
		capabilities: make(map[string]agents.Agent),
		defaultType:  defaultType,
		classifier:   classifier,
		logger:       logger,
	}
}

// Register adds a capability. Registering the same type twice is a
// wiring bug and fails loudly.
func (r *Router) Register(agent agents.Agent) error {
	name := agent.Type()
	if name == "" {
		return fmt.Errorf("agent type cannot be empty")
	}
	if _, exists := r.capabilities[name]; exists {
		return fmt.Errorf("agent %q already registered", name)
	}

	r.capabilities[name] = agent
	r.order = append(r.order, name)

	r.logger.Info("agent registered",
		zap.String("agent_type", name),
		zap.String("description", agent.Description()))
	return nil
}

// Types returns the registered agent types in registration order.
func (r *Router) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// RouteMessage resolves the capability for one message and invokes it.
// An explicit registered type is honored without consulting the
// classifier. Unknown resolutions land on the default agent. A missing
// conversation ID is assigned here so every response threads.
func (r *Router) RouteMessage(ctx context.Context, req models.RouteRequest) (*models.AgentResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, services.ErrEmptyMessage
	}

	resolved := ""
	classified := false
	if req.AgentType != "" {
		if _, ok := r.capabilities[req.AgentType]; ok {
			resolved = req.AgentType
		}
	}
	if resolved == "" {
		resolved = r.classifier.Classify(ctx, req.Message, req.TenantID, req.UserID)
		classified = true
	}

	agent, ok := r.capabilities[resolved]
	if !ok {
		resolved = r.defaultType
		agent, ok = r.capabilities[resolved]
		if !ok {
			return nil, services.WrapInternal(
				fmt.Sprintf("default agent %q is not registered", r.defaultType), nil)
		}
	}

	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	r.logger.Info("message routed",
		observability.RequestIDField(ctx),
		zap.String("tenant_id", req.TenantID),
		zap.String("user_id", req.UserID),
		zap.String("requested_type", req.AgentType),
		zap.String("resolved_type", resolved),
		zap.Bool("classified", classified),
		zap.String("conversation_id", req.ConversationID))

	return agent.Handle(ctx, req)
}
