package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Errors that should stop the process
	ErrorCategoryFatal         ErrorCategory = "FATAL"
	ErrorCategoryCredentials   ErrorCategory = "CREDENTIALS"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Errors raised while talking to a data source
	ErrorCategoryExchange   ErrorCategory = "EXCHANGE"
	ErrorCategoryNetwork    ErrorCategory = "NETWORK"
	ErrorCategoryTimeout    ErrorCategory = "TIMEOUT"
	ErrorCategoryRateLimit  ErrorCategory = "RATE_LIMIT"
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	ErrorCategoryNotFound   ErrorCategory = "NOT_FOUND"

	ErrorCategoryTemporary ErrorCategory = "TEMPORARY"
)

// AppError represents a categorized error with context
type AppError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error can be retried by the caller
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// IsFatal returns whether this error should stop the process
func (e *AppError) IsFatal() bool {
	return e.Category == ErrorCategoryFatal ||
		e.Category == ErrorCategoryCredentials ||
		e.Category == ErrorCategoryConfiguration
}

// NewAppError creates a new categorized error
func NewAppError(category ErrorCategory, component, operation, message string) *AppError {
	return &AppError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with category context
func WrapError(err error, category ErrorCategory, component, operation string) *AppError {
	if err == nil {
		return nil
	}

	return &AppError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable sets the retryable flag
func (e *AppError) WithRetryable(retryable bool) *AppError {
	e.Retryable = retryable
	return e
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryTemporary, ErrorCategoryRateLimit:
		return true
	default:
		return false
	}
}

// CategorizeError attempts to categorize a generic error by its message
func CategorizeError(err error, component, operation string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "context deadline exceeded"):
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	case strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "too many requests"):
		return WrapError(err, ErrorCategoryRateLimit, component, operation)
	case strings.Contains(errMsg, "api key") || strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "forbidden") || strings.Contains(errMsg, "authentication"):
		return WrapError(err, ErrorCategoryCredentials, component, operation)
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial"):
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	case strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "no data"):
		return WrapError(err, ErrorCategoryNotFound, component, operation)
	case strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "unsupported"):
		return WrapError(err, ErrorCategoryValidation, component, operation)
	}

	return WrapError(err, ErrorCategoryTemporary, component, operation)
}

// CategoryOf returns the category of err, or an empty category when err
// carries none.
func CategoryOf(err error) ErrorCategory {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Category
	}
	return ""
}

// Common error constructors
func NewNetworkError(component, operation string, err error) *AppError {
	return WrapError(err, ErrorCategoryNetwork, component, operation)
}

func NewExchangeError(component, operation string, err error) *AppError {
	return WrapError(err, ErrorCategoryExchange, component, operation)
}

func NewValidationError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryValidation, component, operation, message)
}

func NewConfigurationError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryConfiguration, component, operation, message)
}

func NewCredentialsError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryCredentials, component, operation, message)
}

func NewNotFoundError(component, operation, message string) *AppError {
	return NewAppError(ErrorCategoryNotFound, component, operation, message)
}

// NewHTTPStatusError maps an HTTP status code from a data API to a category.
func NewHTTPStatusError(component, operation string, status int, body string) *AppError {
	category := ErrorCategoryExchange
	switch {
	case status == 401 || status == 403:
		category = ErrorCategoryCredentials
	case status == 404:
		category = ErrorCategoryNotFound
	case status == 429:
		category = ErrorCategoryRateLimit
	case status == 400 || status == 422:
		category = ErrorCategoryValidation
	case status >= 500:
		category = ErrorCategoryTemporary
	}

	if len(body) > 200 {
		body = body[:200]
	}
	return NewAppError(category, component, operation, fmt.Sprintf("unexpected status %d: %s", status, body)).
		WithContext("status", status)
}
