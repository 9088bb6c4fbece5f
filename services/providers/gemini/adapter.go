// Package gemini adapts the Google Gemini API to the gateway's provider
// contract. Gemini is wired without native tool support, so tool calls
// flow through the gateway's prompt-embedding fallback.
package gemini

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/peakform/ai-gateway/internal/tokens"
	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services/providers"
)

// ProviderName identifies this adapter in registries and results
const ProviderName = "gemini"

const defaultModel = "gemini-2.0-flash"

// Config holds the Gemini connection settings
type Config struct {
	APIKey string
	Model  string
}

// Adapter implements providers.Adapter for Gemini
type Adapter struct {
	client     *genai.Client
	initErr    error
	model      string
	configured bool
	estimator  *tokens.Estimator
	logger     *zap.Logger
}

// New creates a Gemini adapter. Client construction can fail; the error
// is held and surfaced as NOT_CONFIGURED on first use rather than
// aborting startup.
func New(cfg Config, logger *zap.Logger) *Adapter {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	a := &Adapter{
		model:      model,
		configured: cfg.APIKey != "",
		estimator:  tokens.NewEstimator(),
		logger:     logger,
	}
	if !a.configured {
		return a
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		a.initErr = err
		return a
	}
	a.client = client
	return a
}

// Name returns the provider identifier
func (a *Adapter) Name() string {
	return ProviderName
}

// Available reports whether the adapter holds a working client
func (a *Adapter) Available() bool {
	return a.configured && a.initErr == nil
}

// SupportsNativeTools is false: tool schemas are embedded in the prompt
func (a *Adapter) SupportsNativeTools() bool {
	return false
}

// Complete runs a chat completion
func (a *Adapter) Complete(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error) {
	if !a.configured || a.client == nil {
		err := providers.NewNotConfiguredError(ProviderName)
		err.Cause = a.initErr
		return nil, err
	}

	model := opts.Model
	if model == "" {
		model = a.model
	}

	contents, system := convertMessages(messages)
	config := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*opts.Temperature))
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := a.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, a.wrapError(err)
	}

	content := resp.Text()
	inputTokens, outputTokens := a.usage(resp, messages, content)

	return &models.CompletionResult{
		Content:      content,
		Provider:     ProviderName,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}

// CompleteWithTools is unreachable through the gateway, which routes
// providers without native tools through the prompt-embedding path.
func (a *Adapter) CompleteWithTools(context.Context, []models.Message, []models.ToolSchema, models.CallOptions) (*models.ToolCompletionResult, error) {
	return nil, providers.NewProviderError(ProviderName, providers.ErrCodeUnsupported,
		"native tool calling not supported", 0, false, nil)
}

// usage prefers reported counts and falls back to estimation; Gemini
// omits usage metadata on some responses.
func (a *Adapter) usage(resp *genai.GenerateContentResponse, messages []models.Message, content string) (int, int) {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.PromptTokenCount), int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return a.estimator.EstimateMessages(messages), a.estimator.EstimateText(content)
}

func (a *Adapter) wrapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.ClassifyError(ProviderName, apiErr.Code, err)
	}
	return providers.ClassifyError(ProviderName, 0, err)
}

// convertMessages maps the transcript to Gemini contents. System turns
// become the system instruction; assistant turns use the model role.
func convertMessages(messages []models.Message) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(messages))
	var system []string

	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			system = append(system, msg.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	return contents, strings.Join(system, "\n\n")
}
