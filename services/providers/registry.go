package providers

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Registry errors
var (
	ErrAdapterNil               = errors.New("adapter cannot be nil")
	ErrAdapterNameEmpty         = errors.New("adapter name cannot be empty")
	ErrAdapterAlreadyRegistered = errors.New("adapter already registered")
	ErrAdapterNotFound          = errors.New("adapter not found")
)

// Registry holds the configured adapters in registration order. Order
// matters: fallback chains walk it. The registry also remembers adapters
// that turned out to be unusable at runtime, so a provider that rejects
// its credentials stays out of every later chain.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	adapters map[string]Adapter
	excluded map[string]struct{}
	logger   *zap.Logger
}

// NewRegistry creates an empty adapter registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		excluded: make(map[string]struct{}),
		logger:   logger,
	}
}

// Register adds an adapter. Registration order is preserved and defines
// fallback priority after the preferred provider.
func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return ErrAdapterNil
	}
	name := adapter.Name()
	if name == "" {
		return ErrAdapterNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return ErrAdapterAlreadyRegistered
	}

	r.adapters[name] = adapter
	r.order = append(r.order, name)

	r.logger.Info("provider registered",
		zap.String("provider", name),
		zap.Bool("native_tools", adapter.SupportsNativeTools()))
	return nil
}

// Get returns the adapter registered under name
func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, exists := r.adapters[name]
	return adapter, exists
}

// List returns every registered adapter in registration order
func (r *Registry) List() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// Available returns the adapters eligible for fallback chains, in
// registration order: credentialed and not excluded.
func (r *Registry) Available() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		if _, excluded := r.excluded[name]; excluded {
			continue
		}
		adapter := r.adapters[name]
		if !adapter.Available() {
			continue
		}
		out = append(out, adapter)
	}
	return out
}

// Names returns the registered provider names in registration order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Count returns the number of registered adapters
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.adapters)
}

// MarkUnavailable excludes a provider from all future chains. Used when a
// call fails with NOT_CONFIGURED; the exclusion lasts until restart.
func (r *Registry) MarkUnavailable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; !exists {
		return
	}
	if _, already := r.excluded[name]; already {
		return
	}

	r.excluded[name] = struct{}{}
	r.logger.Warn("provider permanently excluded",
		zap.String("provider", name))
}

// IsAvailable reports whether a provider may serve traffic
func (r *Registry) IsAvailable(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, excluded := r.excluded[name]; excluded {
		return false
	}
	adapter, exists := r.adapters[name]
	return exists && adapter.Available()
}
