package openai

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services/providers"
)

func TestNew_WithoutAPIKey(t *testing.T) {
	a := New(Config{}, zap.NewNop())

	assert.False(t, a.Available())
	assert.Equal(t, "openai", a.Name())
	assert.True(t, a.SupportsNativeTools())

	_, err := a.Complete(context.Background(), []models.Message{models.NewUserMessage("hi")}, models.CallOptions{})
	assert.True(t, providers.IsNotConfigured(err))

	_, err = a.CompleteWithTools(context.Background(), nil, nil, models.CallOptions{})
	assert.True(t, providers.IsNotConfigured(err))
}

func TestBuildRequest(t *testing.T) {
	a := New(Config{APIKey: "test-key", Model: "gpt-4o"}, zap.NewNop())

	temp := 0.2
	req := a.buildRequest([]models.Message{
		models.NewSystemMessage("be brief"),
		models.NewUserMessage("hello"),
	}, models.CallOptions{MaxTokens: 256, Temperature: &temp, JSONMode: true})

	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, 256, req.MaxTokens)
	assert.Equal(t, float32(0.2), req.Temperature)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)

	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
}

func TestBuildRequest_ModelOverride(t *testing.T) {
	a := New(Config{APIKey: "test-key"}, zap.NewNop())

	req := a.buildRequest(nil, models.CallOptions{Model: "gpt-4o-mini"})
	assert.Equal(t, "gpt-4o-mini", req.Model)

	req = a.buildRequest(nil, models.CallOptions{})
	assert.Equal(t, defaultModel, req.Model)
	assert.Nil(t, req.ResponseFormat)
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]models.ToolSchema{
		{
			Name:        "create_goal",
			Description: "Creates a performance goal",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{"title": map[string]any{"type": "string"}},
			},
		},
	})

	require.Len(t, tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, tools[0].Type)
	require.NotNil(t, tools[0].Function)
	assert.Equal(t, "create_goal", tools[0].Function.Name)
}

func TestMapFinishReason(t *testing.T) {
	assert.Equal(t, models.StopReasonToolUse, mapFinishReason(openai.FinishReasonToolCalls))
	assert.Equal(t, models.StopReasonMaxTokens, mapFinishReason(openai.FinishReasonLength))
	assert.Equal(t, models.StopReasonEndTurn, mapFinishReason(openai.FinishReasonStop))
	assert.Equal(t, models.StopReasonEndTurn, mapFinishReason(openai.FinishReason("")))
}

func TestWrapError_APIStatusClassification(t *testing.T) {
	a := New(Config{APIKey: "test-key"}, zap.NewNop())

	throttled := a.wrapError(&openai.APIError{HTTPStatusCode: 429, Message: "rate limited"})
	assert.Equal(t, providers.ErrCodeRateLimited, providers.ErrorCode(throttled))
	assert.True(t, providers.IsRetryable(throttled))

	rejected := a.wrapError(&openai.APIError{HTTPStatusCode: 401, Message: "bad key"})
	assert.True(t, providers.IsNotConfigured(rejected))

	network := a.wrapError(assert.AnError)
	assert.Equal(t, providers.ErrCodeNetwork, providers.ErrorCode(network))
	assert.True(t, providers.IsRetryable(network))
}
