// Package circuit tracks per-provider failure state so the gateway can
// route around providers that keep failing.
//
// The breaker knows two states. CLOSED providers serve traffic; OPEN ones
// are skipped while a cooldown runs. There is no half-open probe: once
// the cooldown elapses the circuit closes outright on the next check,
// whatever the first call then does.
package circuit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/internal/observability"
)

// State is a point-in-time snapshot of one provider's circuit
type State struct {
	FailureCount int        `json:"failure_count"`
	Open         bool       `json:"open"`
	TrippedAt    *time.Time `json:"tripped_at,omitempty"`
}

type providerState struct {
	failureCount int
	trippedAt    time.Time
}

func (s *providerState) open() bool {
	return !s.trippedAt.IsZero()
}

// Breaker holds the circuit state for every provider. State is process
// local: it starts CLOSED on boot and is never persisted.
type Breaker struct {
	mu        sync.Mutex
	states    map[string]*providerState
	threshold int
	cooldown  time.Duration
	metrics   observability.Metrics
	logger    *zap.Logger

	now func() time.Time
}

// NewBreaker creates a breaker that trips a provider after threshold
// consecutive failures and closes it again after cooldown.
func NewBreaker(threshold int, cooldown time.Duration, metrics observability.Metrics, logger *zap.Logger) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{
		states:    make(map[string]*providerState),
		threshold: threshold,
		cooldown:  cooldown,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordFailure counts a failed call. Reaching the threshold trips the
// circuit OPEN and stamps the trip time.
func (b *Breaker) RecordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.stateFor(provider)
	if state.open() {
		return
	}

	state.failureCount++
	if state.failureCount < b.threshold {
		return
	}

	state.trippedAt = b.now()
	b.metrics.RecordCircuitTransition(context.Background(), provider, "open")
	b.logger.Warn("circuit opened",
		zap.String("provider", provider),
		zap.Int("failures", state.failureCount),
		zap.Duration("cooldown", b.cooldown))
}

// RecordSuccess resets the provider to a clean CLOSED state
func (b *Breaker) RecordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, exists := b.states[provider]
	if !exists || (state.failureCount == 0 && !state.open()) {
		return
	}

	wasOpen := state.open()
	state.failureCount = 0
	state.trippedAt = time.Time{}

	if wasOpen {
		b.metrics.RecordCircuitTransition(context.Background(), provider, "closed")
		b.logger.Info("circuit closed after success",
			zap.String("provider", provider))
	}
}

// IsOpen reports whether the provider should be skipped. A circuit whose
// cooldown has elapsed transitions back to CLOSED here, lazily, and its
// failure count starts over.
func (b *Breaker) IsOpen(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, exists := b.states[provider]
	if !exists || !state.open() {
		return false
	}

	if b.now().Sub(state.trippedAt) < b.cooldown {
		return true
	}

	state.failureCount = 0
	state.trippedAt = time.Time{}
	b.metrics.RecordCircuitTransition(context.Background(), provider, "closed")
	b.logger.Info("circuit closed after cooldown",
		zap.String("provider", provider))
	return false
}

// Snapshot returns a copy of every tracked circuit, keyed by provider
func (b *Breaker) Snapshot() map[string]State {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]State, len(b.states))
	for provider, state := range b.states {
		s := State{
			FailureCount: state.failureCount,
			Open:         state.open(),
		}
		if state.open() {
			trippedAt := state.trippedAt
			s.TrippedAt = &trippedAt
		}
		out[provider] = s
	}
	return out
}

func (b *Breaker) stateFor(provider string) *providerState {
	state, exists := b.states[provider]
	if !exists {
		state = &providerState{}
		b.states[provider] = state
	}
	return state
}
