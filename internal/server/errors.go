package server

import (
	"errors"
	"fmt"

	"github.com/joshdurbin/fitness-wrapped/internal/service"
)

// ErrorCode classifies MCP tool errors for structured error handling
type ErrorCode string

const (
	// ErrInvalidInput indicates invalid or malformed input parameters
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrNotFound indicates the requested year has no data
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrStorageError indicates reading or writing the local store failed
	ErrStorageError ErrorCode = "STORAGE_ERROR"
	// ErrInternalError indicates an unexpected internal error
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// ToolError represents a structured tool error with code, message, and optional details
type ToolError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ToolError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInputError creates an error for invalid input parameters
func NewInvalidInputError(msg string) *ToolError {
	return &ToolError{Code: ErrInvalidInput, Message: msg}
}

// NewInvalidInputErrorWithDetails creates an error for invalid input with additional details
func NewInvalidInputErrorWithDetails(msg, details string) *ToolError {
	return &ToolError{Code: ErrInvalidInput, Message: msg, Details: details}
}

// NewYearNotFoundError creates an error for a year without stored records
func NewYearNotFoundError(year int) *ToolError {
	return &ToolError{
		Code:    ErrNotFound,
		Message: "no activity or wellness data for year",
		Details: fmt.Sprintf("year=%d", year),
	}
}

// NewStorageError creates an error for store failures
func NewStorageError(operation string, err error) *ToolError {
	return &ToolError{
		Code:    ErrStorageError,
		Message: fmt.Sprintf("%s failed", operation),
		Details: err.Error(),
	}
}

// NewInternalErrorWithCause creates an internal error wrapping another error
func NewInternalErrorWithCause(msg string, err error) *ToolError {
	return &ToolError{
		Code:    ErrInternalError,
		Message: msg,
		Details: err.Error(),
	}
}

// summaryError maps a service failure for year onto a ToolError
func summaryError(year int, err error) *ToolError {
	if errors.Is(err, service.ErrNoData) {
		return NewYearNotFoundError(year)
	}
	return NewStorageError("computing summary", err)
}
