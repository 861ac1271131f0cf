package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError_Nil(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrorCategoryNetwork, "data", "fetch"))
}

func TestAppError_UnwrapAndMessage(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := NewNetworkError("yfinance", "fetch", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "[NETWORK:yfinance] fetch")
	assert.Contains(t, err.Error(), "dial tcp: refused")
	assert.True(t, err.IsRetryable())
	assert.False(t, err.IsFatal())
}

func TestConfigurationErrorIsFatal(t *testing.T) {
	err := NewConfigurationError("config", "data", "bad split")

	assert.True(t, err.IsFatal())
	assert.False(t, err.IsRetryable())
	assert.Equal(t, ErrorCategoryConfiguration, CategoryOf(err))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorCategory
	}{
		{"context deadline exceeded", ErrorCategoryTimeout},
		{"429 Too Many Requests", ErrorCategoryRateLimit},
		{"invalid api key", ErrorCategoryCredentials},
		{"connection reset by peer", ErrorCategoryNetwork},
		{"symbol not found", ErrorCategoryNotFound},
		{"unsupported timeframe", ErrorCategoryValidation},
		{"something odd", ErrorCategoryTemporary},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got := CategorizeError(fmt.Errorf("%s", tt.msg), "data", "fetch")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestCategorizeError_KeepsExistingAppError(t *testing.T) {
	orig := NewValidationError("data", "fetch", "bad bar")
	wrapped := fmt.Errorf("outer: %w", orig)

	assert.Same(t, orig, CategorizeError(wrapped, "other", "op"))
}

func TestNewHTTPStatusError(t *testing.T) {
	assert.Equal(t, ErrorCategoryCredentials, NewHTTPStatusError("alpaca", "bars", 403, "").Category)
	assert.Equal(t, ErrorCategoryRateLimit, NewHTTPStatusError("alpaca", "bars", 429, "").Category)
	assert.Equal(t, ErrorCategoryNotFound, NewHTTPStatusError("alpaca", "bars", 404, "").Category)
	assert.Equal(t, ErrorCategoryTemporary, NewHTTPStatusError("alpaca", "bars", 503, "").Category)

	err := NewHTTPStatusError("alpaca", "bars", 422, "bad timeframe")
	assert.Equal(t, ErrorCategoryValidation, err.Category)
	assert.Equal(t, 422, err.Context["status"])
	assert.Contains(t, err.Error(), "bad timeframe")
}

func TestCategoryOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCategory(""), CategoryOf(fmt.Errorf("plain")))
}
