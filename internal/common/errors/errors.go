// Package errors provides standardized error handling for the agent runtime
// and its tools.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeAmadeusAuthFailed   ErrorCode = "AMADEUS_AUTH_FAILED"
	ErrCodeAmadeusSearchFailed ErrorCode = "AMADEUS_SEARCH_FAILED"
	ErrCodeAmadeusTimeout      ErrorCode = "AMADEUS_TIMEOUT"

	ErrCodeLLMTimeout       ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRequestFailed ErrorCode = "LLM_REQUEST_FAILED"
	ErrCodeLLMEmptyResponse ErrorCode = "LLM_EMPTY_RESPONSE"

	ErrCodeToolNotFound    ErrorCode = "TOOL_NOT_FOUND"
	ErrCodeToolInvalidArgs ErrorCode = "TOOL_INVALID_ARGS"
	ErrCodeToolTimeout     ErrorCode = "TOOL_TIMEOUT"

	ErrCodeMaxStepsExceeded ErrorCode = "MAX_STEPS_EXCEEDED"

	ErrCodeCacheUnavailable       ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodePromptTemplateMissing  ErrorCode = "PROMPT_TEMPLATE_MISSING"
	ErrCodeInvalidTimezone        ErrorCode = "INVALID_TIMEZONE"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Error Constructors
// ==========================

// NewAmadeusAuthError creates a retryable token-endpoint error.
func NewAmadeusAuthError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAmadeusAuthFailed,
		Message:   "Failed to authenticate with the flight-offer API",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAmadeusSearchError creates a retryable search-endpoint error.
func NewAmadeusSearchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAmadeusSearchFailed,
		Message:   "Flight-offer search request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAmadeusTimeoutError creates a retryable timeout error.
func NewAmadeusTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAmadeusTimeout,
		Message:   "Flight-offer search timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable model-endpoint timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Model request timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMRequestError creates a retryable model-endpoint error.
func NewLLMRequestError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRequestFailed,
		Message:   "Model request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMEmptyResponseError is returned when the model produced no usable choice.
func NewLLMEmptyResponseError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMEmptyResponse,
		Message:   "Model returned an empty response",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolNotFoundError creates a non-retryable registry error.
func NewToolNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolNotFound,
		Message:   fmt.Sprintf("Tool %q is not registered", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolInvalidArgsError creates a non-retryable argument validation error.
func NewToolInvalidArgsError(name, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolInvalidArgs,
		Message:   fmt.Sprintf("Invalid arguments for tool %q", name),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMaxStepsExceededError is returned when the agent loop runs out of steps
// without producing a final answer.
func NewMaxStepsExceededError(maxSteps int) *StandardError {
	return &StandardError{
		Code:      ErrCodeMaxStepsExceeded,
		Message:   fmt.Sprintf("Agent did not produce a final answer within %d steps", maxSteps),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPromptTemplateMissingError creates a non-retryable configuration error.
func NewPromptTemplateMissingError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePromptTemplateMissing,
		Message:   fmt.Sprintf("Prompt templates could not be loaded from %s", path),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// IsRetryableErrorCode reports whether the error code is worth retrying.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeAmadeusAuthFailed, ErrCodeAmadeusSearchFailed, ErrCodeAmadeusTimeout,
		ErrCodeLLMTimeout, ErrCodeLLMRequestFailed, ErrCodeLLMEmptyResponse,
		ErrCodeCacheUnavailable:
		return true
	}
	return false
}

// GetRetryCount returns how many retries a given error code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLLMTimeout, ErrCodeLLMRequestFailed:
		return 1
	case ErrCodeAmadeusAuthFailed, ErrCodeAmadeusTimeout:
		return 2
	}
	return 0
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeAmadeusAuthFailed, ErrCodeAmadeusSearchFailed, ErrCodeAmadeusTimeout:
		return "flight_api"
	case ErrCodeLLMTimeout, ErrCodeLLMRequestFailed, ErrCodeLLMEmptyResponse:
		return "model"
	case ErrCodeToolNotFound, ErrCodeToolInvalidArgs, ErrCodeToolTimeout:
		return "tool"
	case ErrCodeCacheUnavailable:
		return "cache"
	}
	return "internal"
}
