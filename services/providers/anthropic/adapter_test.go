package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services/providers"
)

func TestNew_WithoutAPIKey(t *testing.T) {
	a := New(Config{}, zap.NewNop())

	assert.False(t, a.Available())
	assert.Equal(t, "anthropic", a.Name())
	assert.True(t, a.SupportsNativeTools())

	_, err := a.Complete(context.Background(), []models.Message{models.NewUserMessage("hi")}, models.CallOptions{})
	assert.True(t, providers.IsNotConfigured(err))
}

func TestBuildParams(t *testing.T) {
	a := New(Config{APIKey: "test-key", Model: "claude-3-5-haiku-20241022"}, zap.NewNop())

	temp := 0.7
	params := a.buildParams([]models.Message{
		models.NewSystemMessage("You are a coach."),
		models.NewUserMessage("Help me set a goal."),
		models.NewAssistantMessage("Happy to."),
	}, models.CallOptions{MaxTokens: 512, Temperature: &temp})

	assert.Equal(t, "claude-3-5-haiku-20241022", string(params.Model))
	assert.Equal(t, int64(512), params.MaxTokens)
	assert.True(t, params.Temperature.Valid())
	assert.Equal(t, 0.7, params.Temperature.Value)

	// System turns travel as a top-level parameter, not messages.
	require.Len(t, params.Messages, 2)
	require.Len(t, params.System, 1)
	assert.Equal(t, "You are a coach.", params.System[0].Text)
}

func TestBuildParams_Defaults(t *testing.T) {
	a := New(Config{APIKey: "test-key"}, zap.NewNop())

	params := a.buildParams([]models.Message{models.NewUserMessage("hi")}, models.CallOptions{})

	assert.Equal(t, defaultModel, string(params.Model))
	assert.Equal(t, int64(fallbackMaxTokens), params.MaxTokens)
	assert.False(t, params.Temperature.Valid())
	assert.Empty(t, params.System)
}

func TestBuildParams_JSONMode(t *testing.T) {
	a := New(Config{APIKey: "test-key"}, zap.NewNop())

	params := a.buildParams([]models.Message{
		models.NewSystemMessage("You are a classifier."),
		models.NewUserMessage("hi"),
	}, models.CallOptions{JSONMode: true})

	require.Len(t, params.System, 1)
	assert.Contains(t, params.System[0].Text, "You are a classifier.")
	assert.Contains(t, params.System[0].Text, "valid JSON object")
}

func TestConvertTools_RequiredCoercion(t *testing.T) {
	tools := convertTools([]models.ToolSchema{
		{
			Name:        "create_goal",
			Description: "Creates a performance goal",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"title": map[string]any{"type": "string"}},
				"required":   []any{"title"},
			},
		},
	})

	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "create_goal", tools[0].OfTool.Name)
	assert.Equal(t, []string{"title"}, tools[0].OfTool.InputSchema.Required)
}

func TestMapStopReason(t *testing.T) {
	assert.Equal(t, models.StopReasonToolUse, mapStopReason("tool_use"))
	assert.Equal(t, models.StopReasonMaxTokens, mapStopReason("max_tokens"))
	assert.Equal(t, models.StopReasonEndTurn, mapStopReason("end_turn"))
	assert.Equal(t, models.StopReasonEndTurn, mapStopReason("stop_sequence"))
}
