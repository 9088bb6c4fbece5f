package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/internal/observability"
	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/utils"
)

// AgentMessageRequest is the body for POST /api/v1/agent/messages
type AgentMessageRequest struct {
	TenantID       string `json:"tenant_id" validate:"required"`
	UserID         string `json:"user_id" validate:"required"`
	Message        string `json:"message" validate:"required"`
	AgentType      string `json:"agent_type,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// RouterService defines the routing operation the handler depends on
type RouterService interface {
	RouteMessage(ctx context.Context, req models.RouteRequest) (*models.AgentResponse, error)
}

// AgentHandler handles agent message HTTP requests
type AgentHandler struct {
	router RouterService
	logger *zap.Logger
}

// NewAgentHandler creates a new AgentHandler
func NewAgentHandler(router RouterService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		router: router,
		logger: logger,
	}
}

// HandleMessage handles POST /api/v1/agent/messages
func (h *AgentHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AgentMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body",
			observability.RequestIDField(ctx),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			observability.RequestIDField(ctx),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	resp, err := h.router.RouteMessage(ctx, models.RouteRequest{
		TenantID:       req.TenantID,
		UserID:         req.UserID,
		Message:        req.Message,
		AgentType:      req.AgentType,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		h.logger.Error("failed to route agent message",
			observability.RequestIDField(ctx),
			zap.String("tenant_id", req.TenantID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("agent message handled",
		observability.RequestIDField(ctx),
		zap.String("tenant_id", req.TenantID),
		zap.String("agent_type", resp.AgentType),
		zap.String("conversation_id", resp.ConversationID),
		zap.Bool("cached", resp.Cached))

	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write response",
			observability.RequestIDField(ctx),
			zap.Error(err))
	}
}
