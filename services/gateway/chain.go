package gateway

import (
	"github.com/peakform/ai-gateway/services/circuit"
	"github.com/peakform/ai-gateway/services/providers"
)

// ChainBuilder assembles the ordered list of providers to try for a
// single call. Order is decided per call because circuit state and the
// available set change at runtime.
type ChainBuilder struct {
	registry        *providers.Registry
	breaker         *circuit.Breaker
	defaultProvider string
}

func NewChainBuilder(registry *providers.Registry, breaker *circuit.Breaker, defaultProvider string) *ChainBuilder {
	return &ChainBuilder{
		registry:        registry,
		breaker:         breaker,
		defaultProvider: defaultProvider,
	}
}

// Build returns the fallback chain for one call: the preferred provider
// first when its circuit is closed, then the remaining available
// providers in registration order, skipping open circuits. When every
// circuit is open the full available list is returned anyway, preferred
// first, so a request still reaches a provider that may have recovered.
func (b *ChainBuilder) Build(preferred string) []providers.Adapter {
	if preferred == "" {
		preferred = b.defaultProvider
	}

	ordered := orderPreferredFirst(b.registry.Available(), preferred)

	chain := make([]providers.Adapter, 0, len(ordered))
	for _, adapter := range ordered {
		if b.breaker.IsOpen(adapter.Name()) {
			continue
		}
		chain = append(chain, adapter)
	}

	if len(chain) == 0 {
		return ordered
	}
	return chain
}

func orderPreferredFirst(available []providers.Adapter, preferred string) []providers.Adapter {
	out := make([]providers.Adapter, 0, len(available))
	for _, adapter := range available {
		if adapter.Name() == preferred {
			out = append(out, adapter)
			break
		}
	}
	for _, adapter := range available {
		if adapter.Name() != preferred {
			out = append(out, adapter)
		}
	}
	return out
}
