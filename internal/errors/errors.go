// Package errors provides structured error handling with stable error
// codes, context propagation, and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeInsufficientData indicates the analysis sample is below the
	// minimum; the caller must widen the timeframe or add subjects (HTTP 422).
	TypeInsufficientData ErrorType = "insufficient_data"
	// TypeInvalidConfiguration indicates a malformed analysis request;
	// the caller must fix the request, retrying is pointless (HTTP 400).
	TypeInvalidConfiguration ErrorType = "invalid_configuration"
	// TypeUnknownLevel indicates an unrecognized anonymization level.
	// Levels are validated at the edge, so reaching this is a programming
	// error (HTTP 500).
	TypeUnknownLevel ErrorType = "unknown_level"
	// TypeAuditPersistence indicates the audit trail could not be stored.
	// The anonymization result itself is still valid; this surfaces as a
	// compliance warning, never as a request failure.
	TypeAuditPersistence ErrorType = "audit_persistence"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates a collaborator failure such as a store
	// read/write, propagated unchanged (HTTP 502)
	TypeExternal ErrorType = "external"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeInsufficientData:
		return http.StatusUnprocessableEntity
	case TypeInvalidConfiguration:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeExternal:
		return http.StatusBadGateway
	case TypeUnknownLevel, TypeAuditPersistence, TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// InsufficientDataError creates an insufficient-data error (HTTP 422).
func InsufficientDataError(message string) *Error {
	return &Error{
		Type:    TypeInsufficientData,
		Message: message,
		Context: make(map[string]any),
	}
}

// InvalidConfigurationError creates an invalid-configuration error (HTTP 400).
func InvalidConfigurationError(message string) *Error {
	return &Error{
		Type:    TypeInvalidConfiguration,
		Message: message,
		Context: make(map[string]any),
	}
}

// UnknownLevelError creates an unknown-anonymization-level error (HTTP 500).
func UnknownLevelError(level string) *Error {
	return &Error{
		Type:    TypeUnknownLevel,
		Message: fmt.Sprintf("unknown anonymization level: %s", level),
		Context: make(map[string]any),
	}
}

// AuditPersistenceWarning creates a non-fatal audit persistence warning.
func AuditPersistenceWarning(message string, cause error) *Error {
	return &Error{
		Type:    TypeAuditPersistence,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{
		Type:    TypeNotFound,
		Message: message,
		Context: make(map[string]any),
	}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// ExternalError creates a new collaborator error (HTTP 502).
func ExternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeExternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithField is an alias for WithContext (chainable).
func (e *Error) WithField(key string, value any) *Error {
	return e.WithContext(key, value)
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}

// IsType reports whether err is a structured error of the given type.
func IsType(err error, t ErrorType) bool {
	var structuredErr *Error
	return errors.As(err, &structuredErr) && structuredErr.Type == t
}
