package providers

import (
	"context"
	"errors"
)

// ClassifyError normalizes a vendor failure into a ProviderError keyed off
// the HTTP status, when one is known. Credential rejections map to
// NOT_CONFIGURED; timeouts, throttling, 5xx and malformed responses are
// retryable against the next provider in the chain.
func ClassifyError(provider string, statusCode int, cause error) *ProviderError {
	switch {
	case statusCode == 401 || statusCode == 403:
		return &ProviderError{
			Provider:   provider,
			Code:       ErrCodeNotConfigured,
			Message:    "credentials rejected",
			StatusCode: statusCode,
			Retryable:  false,
			Cause:      cause,
		}
	case statusCode == 408:
		return &ProviderError{
			Provider:   provider,
			Code:       ErrCodeTimeout,
			Message:    "request timed out",
			StatusCode: statusCode,
			Retryable:  true,
			Cause:      cause,
		}
	case statusCode == 429:
		return &ProviderError{
			Provider:   provider,
			Code:       ErrCodeRateLimited,
			Message:    "provider throttled the request",
			StatusCode: statusCode,
			Retryable:  true,
			Cause:      cause,
		}
	case statusCode >= 500:
		return &ProviderError{
			Provider:   provider,
			Code:       ErrCodeServerError,
			Message:    "provider returned a server error",
			StatusCode: statusCode,
			Retryable:  true,
			Cause:      cause,
		}
	case statusCode >= 400:
		return &ProviderError{
			Provider:   provider,
			Code:       ErrCodeInvalidRequest,
			Message:    "provider rejected the request",
			StatusCode: statusCode,
			Retryable:  false,
			Cause:      cause,
		}
	case errors.Is(cause, context.DeadlineExceeded):
		return &ProviderError{
			Provider:  provider,
			Code:      ErrCodeTimeout,
			Message:   "request timed out",
			Retryable: true,
			Cause:     cause,
		}
	default:
		// No status means the call never completed: DNS, connect reset,
		// truncated body. All worth a try elsewhere.
		return &ProviderError{
			Provider:  provider,
			Code:      ErrCodeNetwork,
			Message:   "provider call failed",
			Retryable: true,
			Cause:     cause,
		}
	}
}

// IsNotConfigured checks whether an error marks missing or rejected
// credentials
func IsNotConfigured(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Code == ErrCodeNotConfigured
	}
	return false
}

// IsRetryable checks whether the next provider in the chain may succeed
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// ErrorCode extracts the provider-agnostic code, or empty for foreign
// errors
func ErrorCode(err error) string {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Code
	}
	return ""
}
