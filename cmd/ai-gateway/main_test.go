package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/peakform/ai-gateway/app"
	"github.com/peakform/ai-gateway/config"
	"github.com/peakform/ai-gateway/routes"
)

func TestMain(m *testing.M) {
	os.Setenv("ENVIRONMENT", "test")
	os.Setenv("LOG_LEVEL", "error")

	code := m.Run()

	os.Exit(code)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Providers: config.ProvidersConfig{
			Anthropic: config.AnthropicConfig{APIKey: "test-key", Model: "claude-sonnet-4-20250514"},
			OpenAI:    config.OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"},
		},
		Gateway: config.GatewayConfig{
			PreferredProvider: "anthropic",
			DefaultMaxTokens:  1024,
			CacheTTL:          time.Hour,
		},
		RateLimits: config.RateLimitConfig{
			Window:    time.Minute,
			TenantMax: 100,
			UserMax:   20,
			SystemMax: 50,
		},
		Circuit: config.CircuitConfig{
			FailureThreshold: 3,
			Cooldown:         time.Minute,
		},
		Observability: config.ObservabilityConfig{LogLevel: "error"},
	}
}

func testServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	deps, err := app.NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close(context.Background()) })

	ts := httptest.NewServer(routes.SetupRoutes(deps))
	t.Cleanup(ts.Close)
	return ts
}

func TestApplicationStartup(t *testing.T) {
	ts := testServer(t, testConfig(t))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthEndpoints(t *testing.T) {
	ts := testServer(t, testConfig(t))

	t.Run("health check returns ok", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	})

	t.Run("readiness check passes with store and providers", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/readyz")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("status endpoint returns gateway state", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/status")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Contains(t, body, "version")
		assert.Contains(t, body, "environment")
		assert.Contains(t, body, "providers")
		assert.Contains(t, body, "agents")
	})

	t.Run("metrics endpoint responds", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestReadinessCheckWithoutProviders(t *testing.T) {
	cfg := testConfig(t)
	cfg.Providers = config.ProvidersConfig{}
	ts := testServer(t, cfg)

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "not_ready", body["status"])
}

func TestAPIEndpoints(t *testing.T) {
	ts := testServer(t, testConfig(t))

	testCases := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"agent message with invalid body", "POST", "/api/v1/agent/messages", "not json", http.StatusBadRequest},
		{"agent message with missing fields", "POST", "/api/v1/agent/messages", "{}", http.StatusBadRequest},
		{"unknown api route", "GET", "/api/v1/nonexistent", "", http.StatusNotFound},
		{"unknown root route", "GET", "/nonexistent", "", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			var err error
			if tc.body != "" {
				req, err = http.NewRequest(tc.method, ts.URL+tc.path, strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req, err = http.NewRequest(tc.method, ts.URL+tc.path, nil)
			}
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "endpoint: %s %s", tc.method, tc.path)
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	ts := testServer(t, testConfig(t))

	req, err := http.NewRequest("OPTIONS", ts.URL+"/api/v1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
