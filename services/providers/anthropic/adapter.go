// Package anthropic adapts the Anthropic Messages API to the gateway's
// provider contract.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services/providers"
)

// ProviderName identifies this adapter in registries and results
const ProviderName = "anthropic"

const defaultModel = "claude-sonnet-4-20250514"

// The Messages API requires max_tokens; this guards direct adapter use
// when the gateway default did not apply.
const fallbackMaxTokens = 1024

const jsonModeInstruction = "Respond with a single valid JSON object and nothing else. No prose, no markdown fences."

// Config holds the Anthropic connection settings
type Config struct {
	APIKey string
	Model  string
}

// Adapter implements providers.Adapter for Anthropic
type Adapter struct {
	client     anthropic.Client
	model      string
	configured bool
	logger     *zap.Logger
}

// New creates an Anthropic adapter. Without an API key the adapter
// reports itself unavailable and every call returns NOT_CONFIGURED.
func New(cfg Config, logger *zap.Logger) *Adapter {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Adapter{
		client:     anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      model,
		configured: cfg.APIKey != "",
		logger:     logger,
	}
}

// Name returns the provider identifier
func (a *Adapter) Name() string {
	return ProviderName
}

// Available reports whether an API key is configured
func (a *Adapter) Available() bool {
	return a.configured
}

// SupportsNativeTools is true: Anthropic accepts tool schemas on the wire
func (a *Adapter) SupportsNativeTools() bool {
	return true
}

// Complete runs a chat completion
func (a *Adapter) Complete(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error) {
	if !a.configured {
		return nil, providers.NewNotConfiguredError(ProviderName)
	}

	params := a.buildParams(messages, opts)
	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, a.wrapError(err)
	}

	content, _ := collectBlocks(message)
	return &models.CompletionResult{
		Content:      content,
		Provider:     ProviderName,
		Model:        string(params.Model),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// CompleteWithTools runs a tool-enabled chat completion
func (a *Adapter) CompleteWithTools(ctx context.Context, messages []models.Message, tools []models.ToolSchema, opts models.CallOptions) (*models.ToolCompletionResult, error) {
	if !a.configured {
		return nil, providers.NewNotConfiguredError(ProviderName)
	}

	params := a.buildParams(messages, opts)
	params.Tools = convertTools(tools)

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, a.wrapError(err)
	}

	content, calls := collectBlocks(message)
	return &models.ToolCompletionResult{
		Content:      content,
		ToolCalls:    calls,
		StopReason:   mapStopReason(string(message.StopReason)),
		Provider:     ProviderName,
		Model:        string(params.Model),
		InputTokens:  int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (a *Adapter) buildParams(messages []models.Message, opts models.CallOptions) anthropic.MessageNewParams {
	model := opts.Model
	if model == "" {
		model = a.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = fallbackMaxTokens
	}

	msgs, system := convertMessages(messages)
	if opts.JSONMode {
		if system != "" {
			system += "\n\n"
		}
		system += jsonModeInstruction
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(*opts.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}
	return params
}

func (a *Adapter) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return providers.ClassifyError(ProviderName, apiErr.StatusCode, err)
	}
	return providers.ClassifyError(ProviderName, 0, err)
}

// convertMessages splits system turns out of the transcript; Anthropic
// takes them as a top-level parameter rather than in-band messages.
func convertMessages(messages []models.Message) ([]anthropic.MessageParam, string) {
	msgs := make([]anthropic.MessageParam, 0, len(messages))
	var system []string

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			system = append(system, msg.Content)
		case models.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return msgs, strings.Join(system, "\n\n")
}

func convertTools(tools []models.ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		properties := t.InputSchema["properties"]
		var required []string
		if raw, ok := t.InputSchema["required"].([]string); ok {
			required = raw
		} else if raw, ok := t.InputSchema["required"].([]any); ok {
			for _, r := range raw {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
		}

		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return out
}

func collectBlocks(message *anthropic.Message) (string, []models.ToolCall) {
	var content string
	var calls []models.ToolCall

	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += variant.Text
		case anthropic.ToolUseBlock:
			inputJSON, err := json.Marshal(variant.Input)
			if err != nil {
				inputJSON = []byte("{}")
			}
			calls = append(calls, models.ToolCall{
				ID:    variant.ID,
				Name:  variant.Name,
				Input: inputJSON,
			})
		}
	}

	return content, calls
}

func mapStopReason(reason string) models.StopReason {
	switch reason {
	case "tool_use":
		return models.StopReasonToolUse
	case "max_tokens":
		return models.StopReasonMaxTokens
	default:
		return models.StopReasonEndTurn
	}
}
