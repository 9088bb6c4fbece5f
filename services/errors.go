package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation            ErrorType = "validation"
	ErrorTypeRateLimit             ErrorType = "rate_limit"
	ErrorTypeTransientProvider     ErrorType = "transient_provider"
	ErrorTypeProviderUnavailable   ErrorType = "provider_unavailable"
	ErrorTypeAllProvidersExhausted ErrorType = "all_providers_exhausted"
	ErrorTypeToolParse             ErrorType = "tool_parse"
	ErrorTypeStore                 ErrorType = "store"
	ErrorTypeInternal              ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Validation Errors
	ErrInvalidInput  = NewDomainError(ErrorTypeValidation, "invalid input", nil)
	ErrEmptyMessages = NewDomainError(ErrorTypeValidation, "messages cannot be empty", nil)
	ErrEmptyMessage  = NewDomainError(ErrorTypeValidation, "message cannot be empty", nil)

	// Rate Limit Errors
	ErrRateLimitExceeded = NewDomainError(ErrorTypeRateLimit, "rate limit exceeded", nil)

	// Provider Errors
	ErrProviderNotConfigured = NewDomainError(ErrorTypeProviderUnavailable, "provider not configured", nil)
	ErrProviderTimeout       = NewDomainError(ErrorTypeTransientProvider, "provider timeout", nil)
	ErrProviderError         = NewDomainError(ErrorTypeTransientProvider, "provider error", nil)
	ErrAllProvidersExhausted = NewDomainError(ErrorTypeAllProvidersExhausted, "all providers exhausted", nil)
	ErrNoProvidersRegistered = NewDomainError(ErrorTypeAllProvidersExhausted, "no providers registered", nil)

	// Internal Errors
	ErrInternal    = NewDomainError(ErrorTypeInternal, "internal server error", nil)
	ErrStoreFailed = NewDomainError(ErrorTypeStore, "store operation failed", nil)
)

// NewRateLimitError creates a rate limit rejection for a specific bucket.
// Never retried against another provider; surfaced to the caller as-is.
func NewRateLimitError(bucket string, limit int, window time.Duration) *DomainError {
	return NewDomainError(ErrorTypeRateLimit,
		fmt.Sprintf("rate limit exceeded for %s bucket", bucket), nil).
		WithDetail("bucket", bucket).
		WithDetail("limit", limit).
		WithDetail("window_seconds", int(window.Seconds()))
}

// NewAllProvidersExhaustedError reports that every provider in the fallback
// chain failed. The message carries the first failure observed, which is
// usually the most diagnostic one.
func NewAllProvidersExhaustedError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeAllProvidersExhausted, message, cause)
}

// NewProviderUnavailableError marks a provider as unusable for the life of
// the process, typically for missing or rejected credentials.
func NewProviderUnavailableError(provider string, cause error) *DomainError {
	return NewDomainError(ErrorTypeProviderUnavailable,
		fmt.Sprintf("provider %s is not configured", provider), cause).
		WithDetail("provider", provider)
}

// NewToolParseError wraps a failed parse of an embedded tool-call block.
// Callers swallow it: a completion with zero tool calls is not an error.
func NewToolParseError(cause error) *DomainError {
	return NewDomainError(ErrorTypeToolParse, "failed to parse embedded tool calls", cause)
}

// NewStoreError wraps a key-value store failure
func NewStoreError(op string, cause error) *DomainError {
	return NewDomainError(ErrorTypeStore, fmt.Sprintf("store %s failed", op), cause).
		WithDetail("op", op)
}

// Error type checking helper functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeValidation
	}
	return false
}

// IsRateLimitError checks if an error is a rate limit rejection
func IsRateLimitError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeRateLimit
	}
	return false
}

// IsTransientProviderError checks if an error is a retryable provider failure
func IsTransientProviderError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeTransientProvider
	}
	return false
}

// IsProviderUnavailableError checks if a provider is permanently unusable
func IsProviderUnavailableError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeProviderUnavailable
	}
	return false
}

// IsAllProvidersExhaustedError checks if every provider in a chain failed
func IsAllProvidersExhaustedError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeAllProvidersExhausted
	}
	return false
}

// IsToolParseError checks if an error is an embedded tool-call parse failure
func IsToolParseError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeToolParse
	}
	return false
}

// IsStoreError checks if an error is a key-value store failure
func IsStoreError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeStore
	}
	return false
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type == ErrorTypeInternal
	}
	return false
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapTransient wraps an error as a retryable provider failure
func WrapTransient(message string, err error) error {
	return NewDomainError(ErrorTypeTransientProvider, message, err)
}
