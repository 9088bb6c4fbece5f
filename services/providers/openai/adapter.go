// Package openai adapts the OpenAI chat completion API to the gateway's
// provider contract.
package openai

import (
	"context"
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services/providers"
)

// ProviderName identifies this adapter in registries and results
const ProviderName = "openai"

const defaultModel = "gpt-4o-mini"

// Config holds the OpenAI connection settings
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Adapter implements providers.Adapter for OpenAI
type Adapter struct {
	client     *openai.Client
	model      string
	configured bool
	logger     *zap.Logger
}

// New creates an OpenAI adapter. Without an API key the adapter reports
// itself unavailable and every call returns NOT_CONFIGURED.
func New(cfg Config, logger *zap.Logger) *Adapter {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	a := &Adapter{
		model:      model,
		configured: cfg.APIKey != "",
		logger:     logger,
	}
	if !a.configured {
		return a
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	a.client = openai.NewClientWithConfig(clientCfg)
	return a
}

// Name returns the provider identifier
func (a *Adapter) Name() string {
	return ProviderName
}

// Available reports whether an API key is configured
func (a *Adapter) Available() bool {
	return a.configured
}

// SupportsNativeTools is true: OpenAI accepts tool schemas on the wire
func (a *Adapter) SupportsNativeTools() bool {
	return true
}

// Complete runs a chat completion
func (a *Adapter) Complete(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error) {
	if !a.configured {
		return nil, providers.NewNotConfiguredError(ProviderName)
	}

	req := a.buildRequest(messages, opts)
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, a.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, providers.NewProviderError(ProviderName, providers.ErrCodeBadResponse,
			"response contained no choices", 0, true, nil)
	}

	return &models.CompletionResult{
		Content:      resp.Choices[0].Message.Content,
		Provider:     ProviderName,
		Model:        responseModel(resp.Model, req.Model),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// CompleteWithTools runs a tool-enabled chat completion
func (a *Adapter) CompleteWithTools(ctx context.Context, messages []models.Message, tools []models.ToolSchema, opts models.CallOptions) (*models.ToolCompletionResult, error) {
	if !a.configured {
		return nil, providers.NewNotConfiguredError(ProviderName)
	}

	req := a.buildRequest(messages, opts)
	req.Tools = convertTools(tools)

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, a.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, providers.NewProviderError(ProviderName, providers.ErrCodeBadResponse,
			"response contained no choices", 0, true, nil)
	}

	choice := resp.Choices[0]
	calls := make([]models.ToolCall, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, models.ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: json.RawMessage(tc.Function.Arguments),
		})
	}

	return &models.ToolCompletionResult{
		Content:      choice.Message.Content,
		ToolCalls:    calls,
		StopReason:   mapFinishReason(choice.FinishReason),
		Provider:     ProviderName,
		Model:        responseModel(resp.Model, req.Model),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (a *Adapter) buildRequest(messages []models.Message, opts models.CallOptions) openai.ChatCompletionRequest {
	model := opts.Model
	if model == "" {
		model = a.model
	}

	req := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  convertMessages(messages),
		MaxTokens: opts.MaxTokens,
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return req
}

func (a *Adapter) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return providers.ClassifyError(ProviderName, apiErr.HTTPStatusCode, err)
	}
	return providers.ClassifyError(ProviderName, 0, err)
}

func convertMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

func convertRole(role models.Role) string {
	switch role {
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

func convertTools(tools []models.ToolSchema) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}

func mapFinishReason(reason openai.FinishReason) models.StopReason {
	switch reason {
	case openai.FinishReasonToolCalls:
		return models.StopReasonToolUse
	case openai.FinishReasonLength:
		return models.StopReasonMaxTokens
	default:
		return models.StopReasonEndTurn
	}
}

func responseModel(got, requested string) string {
	if got != "" {
		return got
	}
	return requested
}
