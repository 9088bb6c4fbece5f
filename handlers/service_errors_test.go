package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peakform/ai-gateway/services"
	"github.com/peakform/ai-gateway/utils"
)

func TestHandleServiceError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "validation error",
			err:            services.ErrInvalidInput,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
		},
		{
			name:           "rate limit error",
			err:            services.NewRateLimitError("tenant", 100, time.Minute),
			expectedStatus: http.StatusTooManyRequests,
			expectedError:  "rate_limit_exceeded",
		},
		{
			name:           "all providers exhausted",
			err:            services.NewAllProvidersExhaustedError("anthropic: timeout", nil),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "bad_gateway",
		},
		{
			name:           "provider unavailable",
			err:            services.NewProviderUnavailableError("openai", nil),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "bad_gateway",
		},
		{
			name:           "store error",
			err:            services.NewStoreError("get", errors.New("connection refused")),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
		{
			name:           "internal error",
			err:            services.ErrInternal,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
		{
			name:           "unknown error",
			err:            errors.New("some unknown error"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleServiceError(w, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response utils.ErrorResponse
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedError, response.Error)
			assert.NotEmpty(t, response.Message)
		})
	}
}

func TestHandleServiceErrorWithDetails(t *testing.T) {
	logger := zap.NewNop()

	err := services.NewRateLimitError("tenant", 100, time.Minute)

	w := httptest.NewRecorder()
	HandleServiceError(w, err, logger)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var response utils.ErrorResponse
	err2 := json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err2)

	assert.Equal(t, "rate_limit_exceeded", response.Error)
	assert.NotNil(t, response.Details)
	assert.Equal(t, "tenant", response.Details["bucket"])
	assert.Equal(t, float64(100), response.Details["limit"])
	assert.Equal(t, float64(60), response.Details["window_seconds"])
}

func TestHandleServiceErrorNil(t *testing.T) {
	logger := zap.NewNop()
	w := httptest.NewRecorder()

	HandleServiceError(w, nil, logger)

	// Should not write anything
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleValidationError(t *testing.T) {
	logger := zap.NewNop()

	t.Run("custom validation error", func(t *testing.T) {
		fields := map[string]string{
			"TenantID": "TenantID is required",
			"Message":  "Message is required",
		}
		err := &utils.ValidationError{
			Message: "Validation failed",
			Fields:  fields,
		}

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response utils.ErrorResponse
		err2 := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err2)

		assert.Equal(t, "bad_request", response.Error)
		assert.Equal(t, "Validation failed", response.Message)
		assert.NotNil(t, response.Details)
		assert.Equal(t, "TenantID is required", response.Details["TenantID"])
		assert.Equal(t, "Message is required", response.Details["Message"])
	})

	t.Run("generic error", func(t *testing.T) {
		err := errors.New("generic validation error")

		w := httptest.NewRecorder()
		HandleValidationError(w, err, logger)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response utils.ErrorResponse
		err2 := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err2)

		assert.Equal(t, "bad_request", response.Error)
		assert.Equal(t, "generic validation error", response.Message)
	})
}
