package errors

import (
	stderrors "errors"
	"fmt"
)

// Error categories for structured error handling
const (
	CategoryConfig     = "config"
	CategoryValidation = "validation"
	CategoryRanking    = "ranking"
	CategoryServer     = "server"
)

// TunerankError represents a structured error with category and context
type TunerankError struct {
	Category string
	Code     string
	Message  string
	Cause    error
	Context  map[string]interface{}
}

func (e *TunerankError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

func (e *TunerankError) Unwrap() error {
	return e.Cause
}

func (e *TunerankError) WithContext(key string, value interface{}) *TunerankError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new TunerankError
func New(category, code, message string) *TunerankError {
	return &TunerankError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with TunerankError
func Wrap(err error, category, code, message string) *TunerankError {
	return &TunerankError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    err,
		Context:  make(map[string]interface{}),
	}
}

// Config errors
var (
	ErrInvalidPort         = New(CategoryConfig, "INVALID_PORT", "invalid port number")
	ErrInvalidLogLevel     = New(CategoryConfig, "INVALID_LOG_LEVEL", "invalid log level")
	ErrInvalidRateLimit    = New(CategoryConfig, "INVALID_RATE_LIMIT", "invalid rate limit configuration")
	ErrInvalidCatalogLimit = New(CategoryConfig, "INVALID_CATALOG_LIMIT", "invalid catalog size limit")
)

// Validation errors
var (
	ErrValidationFailed = New(CategoryValidation, "VALIDATION_FAILED", "validation failed")
	ErrInvalidInput     = New(CategoryValidation, "INVALID_INPUT", "invalid input")
	ErrMissingParameter = New(CategoryValidation, "MISSING_PARAMETER", "missing required parameter")
	ErrMalformedRequest = New(CategoryValidation, "MALFORMED_REQUEST", "malformed request body")
	ErrCatalogTooLarge  = New(CategoryValidation, "CATALOG_TOO_LARGE", "song catalog exceeds configured limit")
)

// Server errors
var (
	ErrServerStart    = New(CategoryServer, "START_FAILED", "server failed to start")
	ErrServerShutdown = New(CategoryServer, "SHUTDOWN_FAILED", "server shutdown failed")
	ErrEncodingFailed = New(CategoryServer, "RESPONSE_ENCODING_FAILED", "failed to encode response")
	ErrRateLimited    = New(CategoryServer, "RATE_LIMITED", "rate limit exceeded")
)

// Helper functions for common error patterns
func IsCategory(err error, category string) bool {
	var trErr *TunerankError
	if !stderrors.As(err, &trErr) {
		return false
	}
	return trErr.Category == category
}

func GetErrorCode(err error) string {
	var trErr *TunerankError
	if !stderrors.As(err, &trErr) {
		return ""
	}
	return trErr.Code
}

func GetErrorContext(err error) map[string]interface{} {
	var trErr *TunerankError
	if !stderrors.As(err, &trErr) {
		return nil
	}
	return trErr.Context
}
