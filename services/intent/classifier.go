// Package intent maps free-form user messages onto the registered agent
// types with a single low-temperature completion.
package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/internal/observability"
	"github.com/peakform/ai-gateway/models"
)

// classifyMaxTokens bounds the completion; the answer is one label.
const classifyMaxTokens = 16

// labelPattern strips everything a valid agent type cannot contain.
var labelPattern = regexp.MustCompile(`[^a-z_]+`)

// ChatService is the slice of the gateway the classifier needs.
type ChatService interface {
	Chat(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error)
}

// Classifier resolves a message to one of a closed set of agent types.
// It never returns an error: any failure resolves to the fallback type.
type Classifier struct {
	chat     ChatService
	types    []string
	typeSet  map[string]struct{}
	fallback string
	prompt   string
	metrics  observability.Metrics
	logger   *zap.Logger
}

// NewClassifier builds a classifier over the registered agent types.
// fallback is returned whenever classification cannot produce a member
// of the set.
func NewClassifier(chat ChatService, registered []string, fallback string, metrics observability.Metrics, logger *zap.Logger) *Classifier {
	typeSet := make(map[string]struct{}, len(registered))
	for _, t := range registered {
		typeSet[t] = struct{}{}
	}

	return &Classifier{
		chat:     chat,
		types:    registered,
		typeSet:  typeSet,
		fallback: fallback,
		prompt:   buildPrompt(registered),
		metrics:  metrics,
		logger:   logger,
	}
}

// Classify resolves message to a registered agent type. The completion
// is issued on the caller's tenant and user accounts; identical messages
// hit the response cache.
func (c *Classifier) Classify(ctx context.Context, message, tenantID, userID string) string {
	if strings.TrimSpace(message) == "" {
		return c.resolveFallback(ctx, "empty message", nil)
	}

	temperature := 0.0
	result, err := c.chat.Chat(ctx, []models.Message{
		models.NewSystemMessage(c.prompt),
		models.NewUserMessage(message),
	}, models.CallOptions{
		MaxTokens:   classifyMaxTokens,
		Temperature: &temperature,
		TenantID:    tenantID,
		UserID:      userID,
	})
	if err != nil {
		return c.resolveFallback(ctx, "classification call failed", err)
	}

	label := sanitizeLabel(result.Content)
	if _, ok := c.typeSet[label]; !ok {
		c.logger.Warn("classifier produced unknown agent type",
			observability.RequestIDField(ctx),
			zap.String("raw", result.Content),
			zap.String("sanitized", label))
		c.metrics.RecordClassification(ctx, c.fallback, true)
		return c.fallback
	}

	c.metrics.RecordClassification(ctx, label, false)
	return label
}

// Types returns the registered agent types in registration order.
func (c *Classifier) Types() []string {
	out := make([]string, len(c.types))
	copy(out, c.types)
	return out
}

// Fallback returns the type used when classification fails.
func (c *Classifier) Fallback() string {
	return c.fallback
}

func (c *Classifier) resolveFallback(ctx context.Context, reason string, err error) string {
	c.logger.Warn("intent classification fell back to default",
		observability.RequestIDField(ctx),
		zap.String("reason", reason),
		zap.String("fallback", c.fallback),
		zap.Error(err))
	c.metrics.RecordClassification(ctx, c.fallback, true)
	return c.fallback
}

// sanitizeLabel normalizes model output into candidate label form:
// trimmed, lowercased, stripped of everything outside [a-z_].
func sanitizeLabel(raw string) string {
	return labelPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
}

func buildPrompt(registered []string) string {
	return fmt.Sprintf(
		"You are an intent classifier for a performance management assistant. "+
			"Classify the user's message into exactly one of these agent types: %s. "+
			"Respond with only the agent type, nothing else.",
		strings.Join(registered, ", "))
}
