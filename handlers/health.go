package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/app"
)

// HealthCheck returns a simple liveness handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// ReadinessCheck reports whether the gateway can serve traffic: the
// key-value store answers and at least one provider is registered.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response := map[string]interface{}{
			"status": "ready",
			"checks": map[string]string{},
		}
		checks := response["checks"].(map[string]string)

		if err := deps.Store.Ping(ctx); err != nil {
			response["status"] = "not_ready"
			checks["store"] = "unhealthy"
			deps.Logger.Error("store health check failed", zap.Error(err))
		} else {
			checks["store"] = "healthy"
		}

		if deps.Registry.Count() == 0 {
			response["status"] = "not_ready"
			checks["providers"] = "none_configured"
		} else {
			checks["providers"] = "configured"
		}

		w.Header().Set("Content-Type", "application/json")
		if response["status"] == "ready" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

// ProviderStatus is one provider's entry in the status response
type ProviderStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// StatusHandler reports gateway state: registered providers and their
// availability, circuit snapshots, rate limits, cache TTL and agents.
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := deps.Registry.Names()
		providers := make([]ProviderStatus, 0, len(names))
		for _, name := range names {
			providers = append(providers, ProviderStatus{
				Name:      name,
				Available: deps.Registry.IsAvailable(name),
			})
		}

		response := map[string]interface{}{
			"version":     "0.1.0",
			"environment": deps.Config.Environment,
			"providers":   providers,
			"circuits":    deps.Breaker.Snapshot(),
			"rate_limits": deps.RateLimiter.Describe(),
			"cache_ttl":   deps.ResponseCache.TTL().String(),
			"agents":      deps.AgentRouter.Types(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
