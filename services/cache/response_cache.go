// Package cache provides the response cache for identical completion
// requests. Keys are content hashes, so any two calls with the same
// transcript and knobs share an entry across instances.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/internal/observability"
	"github.com/peakform/ai-gateway/internal/store"
	"github.com/peakform/ai-gateway/models"
)

const keyPrefix = "llm:cache:"

// Key derives the deterministic cache key for a completion request. The
// hash covers the full transcript plus the model, provider and
// temperature options; changing any one of them changes the key.
func Key(messages []models.Message, model, provider string, temperature *float64) string {
	payload := struct {
		Messages    []models.Message `json:"messages"`
		Model       string           `json:"model"`
		Provider    string           `json:"provider"`
		Temperature *float64         `json:"temperature"`
	}{
		Messages:    messages,
		Model:       model,
		Provider:    provider,
		Temperature: temperature,
	}

	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// ResponseCache stores completion results in the shared key-value store.
// Entries are immutable: they expire or get overwritten, never patched.
// Tool completions are never cached.
type ResponseCache struct {
	store   store.Store
	ttl     time.Duration
	metrics observability.Metrics
	logger  *zap.Logger

	// A dead store makes every call a miss, not a failure. Logged once.
	storeLogOnce sync.Once
}

// NewResponseCache creates a cache whose entries live for ttl
func NewResponseCache(st store.Store, ttl time.Duration, metrics observability.Metrics, logger *zap.Logger) *ResponseCache {
	return &ResponseCache{
		store:   st,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// Get looks up a cached completion. Hits come back flagged Cached with
// zero latency. Store errors and corrupt entries read as misses.
func (c *ResponseCache) Get(ctx context.Context, key string) (*models.CompletionResult, bool) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logStoreFailure("get", err)
		return nil, false
	}
	if !ok {
		c.metrics.RecordCacheLookup(ctx, false)
		return nil, false
	}

	var result models.CompletionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Debug("discarding unreadable cache entry",
			zap.String("key", key),
			zap.Error(err))
		c.metrics.RecordCacheLookup(ctx, false)
		return nil, false
	}

	result.Cached = true
	result.LatencyMs = 0
	c.metrics.RecordCacheLookup(ctx, true)
	return &result, true
}

// Set writes a completion through to the cache. Failures are swallowed;
// the caller already has its result.
func (c *ResponseCache) Set(ctx context.Context, key string, result *models.CompletionResult) {
	entry := *result
	entry.Cached = false

	data, err := json.Marshal(&entry)
	if err != nil {
		c.logger.Debug("failed to encode cache entry", zap.Error(err))
		return
	}

	if err := c.store.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logStoreFailure("set", err)
	}
}

// TTL reports the configured entry lifetime
func (c *ResponseCache) TTL() time.Duration {
	return c.ttl
}

func (c *ResponseCache) logStoreFailure(op string, err error) {
	c.storeLogOnce.Do(func() {
		c.logger.Error("response cache store unavailable, serving misses",
			zap.String("op", op),
			zap.Error(err))
	})
}
