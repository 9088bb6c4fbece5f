// Package providers defines the adapter contract the gateway speaks to
// every LLM vendor, plus the registry that tracks which adapters may
// serve traffic.
package providers

import (
	"context"
	"fmt"

	"github.com/peakform/ai-gateway/models"
)

// Adapter is the uniform surface over one LLM vendor. Implementations
// normalize requests, responses and failures so the gateway never sees
// vendor SDK types.
type Adapter interface {
	// Name returns the provider identifier, e.g. "anthropic".
	Name() string

	// Available reports whether the adapter holds credentials. Adapters
	// without credentials never enter a fallback chain.
	Available() bool

	// SupportsNativeTools reports whether the vendor accepts tool schemas
	// on the wire. When false, the gateway embeds the schemas into the
	// system prompt and parses the reply for an embedded tool-call block.
	SupportsNativeTools() bool

	// Complete runs a chat completion. Context cancellation must
	// propagate into the vendor call.
	Complete(ctx context.Context, messages []models.Message, opts models.CallOptions) (*models.CompletionResult, error)

	// CompleteWithTools runs a tool-enabled completion. Only called when
	// SupportsNativeTools is true.
	CompleteWithTools(ctx context.Context, messages []models.Message, tools []models.ToolSchema, opts models.CallOptions) (*models.ToolCompletionResult, error)
}

// Error codes returned by adapters
const (
	// ErrCodeNotConfigured means credentials are missing or rejected.
	// The provider is excluded from fallback for the life of the process
	// and the failure never counts against its circuit.
	ErrCodeNotConfigured = "NOT_CONFIGURED"

	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeServerError    = "SERVER_ERROR"
	ErrCodeBadResponse    = "BAD_RESPONSE"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeUnsupported    = "UNSUPPORTED"
	ErrCodeNetwork        = "NETWORK"
)

// ProviderError wraps a vendor failure with enough structure for the
// gateway to decide between fallback and permanent exclusion.
type ProviderError struct {
	// Provider is the name of the provider that generated the error
	Provider string

	// Code is a provider-agnostic error code
	Code string

	// Message is a human-readable error message
	Message string

	// StatusCode is the HTTP status code, when the vendor returned one
	StatusCode int

	// Retryable indicates the next provider in the chain may succeed
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying cause
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// NewNotConfiguredError reports missing or rejected credentials
func NewNotConfiguredError(provider string) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Code:      ErrCodeNotConfigured,
		Message:   "provider is not configured",
		Retryable: false,
	}
}
