// Package gateway implements the resilient completion pipeline: fixed
// window rate limiting, response caching, circuit-aware provider
// fallback, and tool calling over both native and prompt-embedded
// transports.
package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/internal/observability"
	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services"
	"github.com/peakform/ai-gateway/services/cache"
	"github.com/peakform/ai-gateway/services/circuit"
	"github.com/peakform/ai-gateway/services/providers"
	"github.com/peakform/ai-gateway/services/ratelimit"
)

const defaultMaxTokens = 1024

// Config carries the gateway level tunables.
type Config struct {
	// DefaultProvider is tried first when a call names no provider.
	DefaultProvider string
	// DefaultMaxTokens caps completions whose options leave MaxTokens unset.
	DefaultMaxTokens int
}

// Service orchestrates a single completion across the registered
// providers. All resilience decisions live here; adapters only talk to
// their vendor API.
type Service struct {
	registry *providers.Registry
	chain    *ChainBuilder
	breaker  *circuit.Breaker
	limiter  *ratelimit.Service
	cache    *cache.ResponseCache
	metrics  observability.Metrics
	logger   *zap.Logger

	maxTokens int
}

func NewService(
	registry *providers.Registry,
	breaker *circuit.Breaker,
	limiter *ratelimit.Service,
	respCache *cache.ResponseCache,
	cfg Config,
	metrics observability.Metrics,
	logger *zap.Logger,
) *Service {
	maxTokens := cfg.DefaultMaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Service{
		registry:  registry,
		chain:     NewChainBuilder(registry, breaker, cfg.DefaultProvider),
		breaker:   breaker,
		limiter:   limiter,
		cache:     respCache,
		metrics:   metrics,
		logger:    logger,
		maxTokens: maxTokens,
	}
}

// Chat runs the full pipeline for a plain completion: rate limit check,
// cache lookup, then the fallback chain. A rate limit violation returns
// immediately and never falls back. Successful completions are written
// through to the cache unless the caller opted out.
func (s *Service) Chat(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error) {
	if len(messages) == 0 {
		return nil, services.ErrEmptyMessages
	}
	opts = s.withDefaults(opts)

	if err := s.limiter.Check(ctx, opts); err != nil {
		return nil, err
	}

	var cacheKey string
	if !opts.NoCache {
		cacheKey = cache.Key(messages, opts.Model, opts.Provider, opts.Temperature)
		if result, ok := s.cache.Get(ctx, cacheKey); ok {
			s.logger.Debug("serving cached completion",
				observability.RequestIDField(ctx),
				zap.String("provider", result.Provider),
				zap.String("model", result.Model))
			return result, nil
		}
	}

	result, err := s.complete(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	if !opts.NoCache {
		s.cache.Set(ctx, cacheKey, result)
	}
	return result, nil
}

// ChatWithTools runs the fallback chain with tool schemas attached.
// Providers with native tool support receive the schemas on the wire;
// the rest get them embedded in the system prompt and their reply is
// scanned for the fenced tool-call block. Tool completions are never
// cached: the same transcript legitimately produces different calls.
func (s *Service) ChatWithTools(ctx context.Context, messages []models.Message, tools []models.ToolSchema, opts models.CallOptions) (*models.ToolCompletionResult, error) {
	if len(messages) == 0 {
		return nil, services.ErrEmptyMessages
	}
	opts = s.withDefaults(opts)

	if err := s.limiter.Check(ctx, opts); err != nil {
		return nil, err
	}

	chain := s.chain.Build(opts.Provider)
	if len(chain) == 0 {
		return nil, services.NewAllProvidersExhaustedError("no providers available", nil)
	}

	var firstErr error
	for _, adapter := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		var result *models.ToolCompletionResult
		var err error
		if adapter.SupportsNativeTools() {
			result, err = adapter.CompleteWithTools(ctx, messages, tools, opts)
		} else {
			result, err = s.completeWithEmbeddedTools(ctx, adapter, messages, tools, opts)
		}
		latency := time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			firstErr = s.recordFailure(ctx, adapter.Name(), err, firstErr)
			continue
		}

		result.LatencyMs = latency.Milliseconds()
		result.CostCents = estimateCostCents(result.Model, result.InputTokens, result.OutputTokens)
		s.recordSuccess(ctx, result.Provider, result.Model, result.InputTokens, result.OutputTokens, latency, result.CostCents)
		return result, nil
	}

	return nil, s.exhausted(ctx, chain, firstErr)
}

// GenerateText is the single prompt convenience wrapper over Chat.
func (s *Service) GenerateText(ctx context.Context, prompt string, opts models.CallOptions) (*models.CompletionResult, error) {
	if prompt == "" {
		return nil, services.ErrEmptyMessage
	}
	return s.Chat(ctx, []models.Message{models.NewUserMessage(prompt)}, opts)
}

// Providers returns the names of all registered providers in
// registration order, for the status surface.
func (s *Service) Providers() []string {
	return s.registry.Names()
}

// complete walks the fallback chain until a provider answers. The first
// failure is kept verbatim: it names the root cause, later failures are
// usually downstream noise.
func (s *Service) complete(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error) {
	chain := s.chain.Build(opts.Provider)
	if len(chain) == 0 {
		return nil, services.NewAllProvidersExhaustedError("no providers available", nil)
	}

	var firstErr error
	for _, adapter := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		result, err := adapter.Complete(ctx, messages, opts)
		latency := time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			firstErr = s.recordFailure(ctx, adapter.Name(), err, firstErr)
			continue
		}

		result.LatencyMs = latency.Milliseconds()
		result.CostCents = estimateCostCents(result.Model, result.InputTokens, result.OutputTokens)
		s.recordSuccess(ctx, result.Provider, result.Model, result.InputTokens, result.OutputTokens, latency, result.CostCents)
		return result, nil
	}

	return nil, s.exhausted(ctx, chain, firstErr)
}

// completeWithEmbeddedTools drives the prompt-embedding path: schemas go
// into the system prompt, the reply is scanned for the tool-call block.
// An unreadable block downgrades to a plain text answer, never an error.
func (s *Service) completeWithEmbeddedTools(ctx context.Context, adapter providers.Adapter, messages []models.Message, tools []models.ToolSchema, opts models.CallOptions) (*models.ToolCompletionResult, error) {
	completion, err := adapter.Complete(ctx, embedToolPrompt(messages, tools), opts)
	if err != nil {
		return nil, err
	}

	content, calls, parseErr := parseEmbeddedToolCalls(completion.Content)
	if parseErr != nil {
		s.logger.Debug("embedded tool block unreadable, treating reply as text",
			observability.RequestIDField(ctx),
			zap.String("provider", adapter.Name()),
			zap.Error(parseErr))
	}

	stopReason := models.StopReasonEndTurn
	if len(calls) > 0 {
		stopReason = models.StopReasonToolUse
	}

	return &models.ToolCompletionResult{
		Content:      content,
		ToolCalls:    calls,
		StopReason:   stopReason,
		Provider:     completion.Provider,
		Model:        completion.Model,
		InputTokens:  completion.InputTokens,
		OutputTokens: completion.OutputTokens,
	}, nil
}

// recordFailure books a provider failure and keeps the first error of
// the chain. A NOT_CONFIGURED rejection excludes the provider for the
// process lifetime instead of counting against its circuit: retrying a
// missing credential cannot help.
func (s *Service) recordFailure(ctx context.Context, provider string, err error, firstErr error) error {
	if providers.IsNotConfigured(err) {
		s.registry.MarkUnavailable(provider)
	} else {
		s.breaker.RecordFailure(provider)
		s.metrics.RecordRequest(ctx, observability.RequestLabels{Provider: provider, Status: "error"})
	}

	s.logger.Warn("provider call failed, trying next in chain",
		observability.RequestIDField(ctx),
		zap.String("provider", provider),
		zap.String("error_code", providers.ErrorCode(err)),
		zap.Bool("retryable", providers.IsRetryable(err)),
		zap.Error(err))

	if firstErr == nil {
		return err
	}
	return firstErr
}

func (s *Service) recordSuccess(ctx context.Context, provider, model string, inputTokens, outputTokens int, latency time.Duration, costCents float64) {
	s.breaker.RecordSuccess(provider)

	labels := observability.RequestLabels{Provider: provider, Model: model, Status: "success"}
	s.metrics.RecordRequest(ctx, labels)
	s.metrics.RecordLatency(ctx, latency.Seconds(), labels)
	s.metrics.RecordTokens(ctx, inputTokens, outputTokens, labels)
	s.metrics.RecordCost(ctx, costCents, labels)

	s.logger.Info("completion served",
		observability.RequestIDField(ctx),
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Int("input_tokens", inputTokens),
		zap.Int("output_tokens", outputTokens),
		zap.Int64("latency_ms", latency.Milliseconds()),
		zap.Float64("cost_cents", costCents))
}

func (s *Service) exhausted(ctx context.Context, chain []providers.Adapter, firstErr error) error {
	message := "all providers failed"
	if firstErr != nil {
		message = firstErr.Error()
	}

	s.logger.Error("fallback chain exhausted",
		observability.RequestIDField(ctx),
		zap.Int("attempted", len(chain)),
		zap.Error(firstErr))

	return services.NewAllProvidersExhaustedError(message, firstErr).
		WithDetail("attempted", len(chain))
}

func (s *Service) withDefaults(opts models.CallOptions) models.CallOptions {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = s.maxTokens
	}
	return opts
}
