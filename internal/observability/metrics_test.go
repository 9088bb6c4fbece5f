package observability

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Exposition(t *testing.T) {
	ctx := context.Background()
	m := NewPrometheusMetrics()

	labels := RequestLabels{Provider: "anthropic", Model: "claude-sonnet-4-20250514", Status: "success"}
	m.RecordRequest(ctx, labels)
	m.RecordLatency(ctx, 0.42, labels)
	m.RecordTokens(ctx, 120, 80, labels)
	m.RecordCost(ctx, 0.156, labels)
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)
	m.RecordRateLimitRejection(ctx, "tenant")
	m.RecordCircuitTransition(ctx, "openai", "open")
	m.RecordClassification(ctx, "goal_coach", false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ai_gateway_requests_total{model="claude-sonnet-4-20250514",provider="anthropic",status="success"} 1`)
	assert.Contains(t, body, `ai_gateway_tokens_total{direction="input",model="claude-sonnet-4-20250514",provider="anthropic"} 120`)
	assert.Contains(t, body, `ai_gateway_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, body, `ai_gateway_rate_limited_total{bucket="tenant"} 1`)
	assert.Contains(t, body, `ai_gateway_circuit_transitions_total{provider="openai",state="open"} 1`)
	assert.Contains(t, body, `ai_gateway_intent_classifications_total{agent_type="goal_coach",outcome="classified"} 1`)
}

func TestPrometheusMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on collector registration.
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()

	a.RecordCacheLookup(context.Background(), true)

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.False(t, strings.Contains(rec.Body.String(), `result="hit"} 1`))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		production bool
		wantErr    bool
	}{
		{"production json", "info", true, false},
		{"development console", "debug", false, false},
		{"empty level uses config default", "", true, false},
		{"invalid level", "shouty", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.level, tt.production)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Debug("probe")
		})
	}
}
