// Package ratelimit enforces fixed-window request limits per tenant and
// per user on top of the shared key-value store.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/internal/observability"
	"github.com/peakform/ai-gateway/internal/store"
	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services"
)

// Key prefixes in the shared store
const (
	tenantKeyPrefix = "llm:rate:tenant:"
	userKeyPrefix   = "llm:rate:user:"
	systemKeyPrefix = "llm:rate:sys:"
)

// Limits configures the per-window maxima. A zero maximum disables that
// bucket. All buckets share one window length.
type Limits struct {
	Window    time.Duration
	TenantMax int
	UserMax   int
	SystemMax int
}

// bucket is one counter to increment and compare
type bucket struct {
	name string
	key  string
	max  int
}

// Service checks request budgets before any provider is attempted.
//
// Each counter is incremented atomically and then compared, so two
// concurrent requests can never both slip under the limit. The increment
// happens before the verdict: a denied request may consume a slot, which
// only errs toward allowing less, never more.
type Service struct {
	store   store.Store
	limits  Limits
	metrics observability.Metrics
	logger  *zap.Logger

	// Store outages must not take the gateway down with them. Degrade
	// open and say so once, not once per request.
	storeLogOnce sync.Once
}

// NewService creates a rate limiter backed by the shared store
func NewService(st store.Store, limits Limits, metrics observability.Metrics, logger *zap.Logger) *Service {
	return &Service{
		store:   st,
		limits:  limits,
		metrics: metrics,
		logger:  logger,
	}
}

// Check enforces every bucket that applies to the call, tenant first.
// The first violation aborts; remaining buckets are not consumed. A nil
// return means the request may proceed.
func (s *Service) Check(ctx context.Context, opts models.CallOptions) error {
	if opts.TenantID == "" {
		return nil
	}

	for _, b := range s.buckets(opts) {
		if b.max <= 0 {
			continue
		}

		count, err := s.store.Increment(ctx, b.key, s.limits.Window)
		if err != nil {
			s.storeLogOnce.Do(func() {
				s.logger.Error("rate limit store unavailable, degrading open",
					zap.String("bucket", b.name),
					zap.Error(services.NewStoreError("increment", err)))
			})
			continue
		}

		if count > int64(b.max) {
			s.metrics.RecordRateLimitRejection(ctx, b.name)
			s.logger.Warn("rate limit exceeded",
				zap.String("bucket", b.name),
				zap.String("key", b.key),
				zap.Int64("count", count),
				zap.Int("max", b.max))
			return services.NewRateLimitError(b.name, b.max, s.limits.Window)
		}
	}

	return nil
}

// buckets lists the counters a call consumes: the tenant bucket always,
// then either the system bucket (background work) or the user bucket.
func (s *Service) buckets(opts models.CallOptions) []bucket {
	out := []bucket{{
		name: "tenant",
		key:  tenantKeyPrefix + opts.TenantID,
		max:  s.limits.TenantMax,
	}}

	if opts.IsSystemCall {
		out = append(out, bucket{
			name: "system",
			key:  systemKeyPrefix + opts.TenantID,
			max:  s.limits.SystemMax,
		})
	} else if opts.UserID != "" {
		out = append(out, bucket{
			name: "user",
			key:  userKeyPrefix + opts.UserID,
			max:  s.limits.UserMax,
		})
	}

	return out
}

// Describe reports the configured limits for the status endpoint
func (s *Service) Describe() map[string]string {
	window := s.limits.Window.String()
	return map[string]string{
		"tenant": fmt.Sprintf("%d per %s", s.limits.TenantMax, window),
		"user":   fmt.Sprintf("%d per %s", s.limits.UserMax, window),
		"system": fmt.Sprintf("%d per %s", s.limits.SystemMax, window),
	}
}
