package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects application metrics.
type Metrics interface {
	RecordRequest(ctx context.Context, labels RequestLabels)
	RecordLatency(ctx context.Context, seconds float64, labels RequestLabels)
	RecordTokens(ctx context.Context, input, output int, labels RequestLabels)
	RecordCost(ctx context.Context, costCents float64, labels RequestLabels)
	RecordCacheLookup(ctx context.Context, hit bool)
	RecordRateLimitRejection(ctx context.Context, bucket string)
	RecordCircuitTransition(ctx context.Context, provider, state string)
	RecordClassification(ctx context.Context, agentType string, fallback bool)
}

// RequestLabels contains metric dimensions. Tenant and user stay out of
// the label set to keep cardinality bounded; they live in log fields.
type RequestLabels struct {
	Provider string
	Model    string
	Status   string
}

// PrometheusMetrics implements Metrics on a private Prometheus registry
type PrometheusMetrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	tokens          *prometheus.CounterVec
	cost            *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
	circuit         *prometheus.CounterVec
	classifications *prometheus.CounterVec
}

// NewPrometheusMetrics creates all collectors on a fresh registry, so
// repeated construction in tests never collides.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_requests_total",
			Help: "Completion attempts by provider, model and outcome.",
		}, []string{"provider", "model", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ai_gateway_request_duration_seconds",
			Help:    "Provider completion latency in seconds.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider", "model"}),
		tokens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_tokens_total",
			Help: "Tokens consumed, split by direction.",
		}, []string{"provider", "model", "direction"}),
		cost: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_cost_cents_total",
			Help: "Estimated spend in cents.",
		}, []string{"provider", "model"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_cache_lookups_total",
			Help: "Response cache lookups by result.",
		}, []string{"result"}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_rate_limited_total",
			Help: "Requests rejected by rate limiting, by bucket.",
		}, []string{"bucket"}),
		circuit: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_circuit_transitions_total",
			Help: "Circuit breaker transitions by provider and new state.",
		}, []string{"provider", "state"}),
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ai_gateway_intent_classifications_total",
			Help: "Intent classifications by resolved agent type and outcome.",
		}, []string{"agent_type", "outcome"}),
	}
}

// Handler exposes the registry for the /metrics endpoint
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PrometheusMetrics) RecordRequest(_ context.Context, labels RequestLabels) {
	m.requests.WithLabelValues(labels.Provider, labels.Model, labels.Status).Inc()
}

func (m *PrometheusMetrics) RecordLatency(_ context.Context, seconds float64, labels RequestLabels) {
	m.latency.WithLabelValues(labels.Provider, labels.Model).Observe(seconds)
}

func (m *PrometheusMetrics) RecordTokens(_ context.Context, input, output int, labels RequestLabels) {
	m.tokens.WithLabelValues(labels.Provider, labels.Model, "input").Add(float64(input))
	m.tokens.WithLabelValues(labels.Provider, labels.Model, "output").Add(float64(output))
}

func (m *PrometheusMetrics) RecordCost(_ context.Context, costCents float64, labels RequestLabels) {
	m.cost.WithLabelValues(labels.Provider, labels.Model).Add(costCents)
}

func (m *PrometheusMetrics) RecordCacheLookup(_ context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *PrometheusMetrics) RecordRateLimitRejection(_ context.Context, bucket string) {
	m.rateLimited.WithLabelValues(bucket).Inc()
}

func (m *PrometheusMetrics) RecordCircuitTransition(_ context.Context, provider, state string) {
	m.circuit.WithLabelValues(provider, state).Inc()
}

func (m *PrometheusMetrics) RecordClassification(_ context.Context, agentType string, fallback bool) {
	outcome := "classified"
	if fallback {
		outcome = "fallback"
	}
	m.classifications.WithLabelValues(agentType, outcome).Inc()
}

// NopMetrics discards every observation. Handy default for tests.
type NopMetrics struct{}

// NewNopMetrics creates a Metrics implementation that records nothing
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

func (*NopMetrics) RecordRequest(context.Context, RequestLabels)            {}
func (*NopMetrics) RecordLatency(context.Context, float64, RequestLabels)   {}
func (*NopMetrics) RecordTokens(context.Context, int, int, RequestLabels)   {}
func (*NopMetrics) RecordCost(context.Context, float64, RequestLabels)      {}
func (*NopMetrics) RecordCacheLookup(context.Context, bool)                 {}
func (*NopMetrics) RecordRateLimitRejection(context.Context, string)        {}
func (*NopMetrics) RecordCircuitTransition(context.Context, string, string) {}
func (*NopMetrics) RecordClassification(context.Context, string, bool)      {}
