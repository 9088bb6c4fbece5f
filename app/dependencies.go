package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/config"
	"github.com/peakform/ai-gateway/internal/observability"
	"github.com/peakform/ai-gateway/internal/store"
	"github.com/peakform/ai-gateway/services/agents"
	"github.com/peakform/ai-gateway/services/cache"
	"github.com/peakform/ai-gateway/services/circuit"
	"github.com/peakform/ai-gateway/services/gateway"
	"github.com/peakform/ai-gateway/services/intent"
	"github.com/peakform/ai-gateway/services/providers"
	"github.com/peakform/ai-gateway/services/providers/anthropic"
	"github.com/peakform/ai-gateway/services/providers/gemini"
	"github.com/peakform/ai-gateway/services/providers/openai"
	"github.com/peakform/ai-gateway/services/ratelimit"
	"github.com/peakform/ai-gateway/services/router"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	Store  store.Store

	// Observability
	Metrics *observability.PrometheusMetrics

	// Gateway stack
	Registry      *providers.Registry
	Breaker       *circuit.Breaker
	RateLimiter   *ratelimit.Service
	ResponseCache *cache.ResponseCache
	Gateway       *gateway.Service

	// Agent routing
	Classifier  *intent.Classifier
	AgentRouter *router.Router
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewPrometheusMetrics(),
	}

	if err := deps.initStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	deps.initProviders(cfg)
	deps.initGateway(cfg)
	deps.initAgents()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initStore connects to Redis when an address is configured and falls
// back to the in-process store otherwise. A Redis that is configured
// but unreachable is a startup error, not a silent downgrade.
func (d *Dependencies) initStore(ctx context.Context, cfg *config.Config) error {
	if cfg.Redis.Addr == "" {
		d.Store = store.NewMemoryStore(0)
		d.Logger.Info("using in-process store, no redis address configured")
		return nil
	}

	rs := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := rs.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	d.Store = rs
	d.Logger.Info("redis connection established", zap.String("addr", cfg.Redis.Addr))
	return nil
}

// initProviders registers an adapter for every provider with an API key.
func (d *Dependencies) initProviders(cfg *config.Config) {
	registry := providers.NewRegistry(d.Logger)

	if cfg.Providers.Anthropic.APIKey != "" {
		registry.Register(anthropic.New(anthropic.Config{
			APIKey: cfg.Providers.Anthropic.APIKey,
			Model:  cfg.Providers.Anthropic.Model,
		}, d.Logger))
	}

	if cfg.Providers.OpenAI.APIKey != "" {
		registry.Register(openai.New(openai.Config{
			APIKey:  cfg.Providers.OpenAI.APIKey,
			BaseURL: cfg.Providers.OpenAI.BaseURL,
			Model:   cfg.Providers.OpenAI.Model,
		}, d.Logger))
	}

	if cfg.Providers.Gemini.APIKey != "" {
		registry.Register(gemini.New(gemini.Config{
			APIKey: cfg.Providers.Gemini.APIKey,
			Model:  cfg.Providers.Gemini.Model,
		}, d.Logger))
	}

	if registry.Count() == 0 {
		d.Logger.Warn("no LLM providers configured, completion requests will fail")
	}

	d.Registry = registry
}

// initGateway builds the resilience stack around the registry: circuit
// breaker, rate limiter, response cache, and the gateway service that
// orchestrates them.
func (d *Dependencies) initGateway(cfg *config.Config) {
	d.Breaker = circuit.NewBreaker(cfg.Circuit.FailureThreshold, cfg.Circuit.Cooldown, d.Metrics, d.Logger)

	d.RateLimiter = ratelimit.NewService(d.Store, ratelimit.Limits{
		Window:    cfg.RateLimits.Window,
		TenantMax: cfg.RateLimits.TenantMax,
		UserMax:   cfg.RateLimits.UserMax,
		SystemMax: cfg.RateLimits.SystemMax,
	}, d.Metrics, d.Logger)

	d.ResponseCache = cache.NewResponseCache(d.Store, cfg.Gateway.CacheTTL, d.Metrics, d.Logger)

	d.Gateway = gateway.NewService(
		d.Registry,
		d.Breaker,
		d.RateLimiter,
		d.ResponseCache,
		gateway.Config{
			DefaultProvider:  cfg.Gateway.PreferredProvider,
			DefaultMaxTokens: cfg.Gateway.DefaultMaxTokens,
		},
		d.Metrics,
		d.Logger,
	)
}

// initAgents registers the standard agent set and the classifier that
// routes free-form messages to one of them.
func (d *Dependencies) initAgents() {
	caps := agents.All(d.Gateway)

	names := make([]string, 0, len(caps))
	for _, a := range caps {
		names = append(names, a.Type())
	}

	d.Classifier = intent.NewClassifier(d.Gateway, names, agents.DefaultType, d.Metrics, d.Logger)
	d.AgentRouter = router.New(d.Classifier, agents.DefaultType, d.Logger)

	for _, a := range caps {
		if err := d.AgentRouter.Register(a); err != nil {
			d.Logger.Error("agent registration failed", zap.String("agent_type", a.Type()), zap.Error(err))
		}
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		} else {
			d.Logger.Info("store closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
