// Package errors provides application-level error types and utilities.
// It defines the payment error taxonomy (validation, gateway lookup, webhook
// authentication, transport, listener and scheduling failures) on top of the
// generic not found / conflict / internal errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeBadRequest   ErrorType = "bad_request"

	ErrorTypeGatewayNotFound       ErrorType = "gateway_not_found"
	ErrorTypeGatewayDisabled       ErrorType = "gateway_disabled"
	ErrorTypeWebhookAuthentication ErrorType = "webhook_authentication"
	ErrorTypeGatewayTransport      ErrorType = "gateway_transport"
	ErrorTypeListenerExecution     ErrorType = "listener_execution"
	ErrorTypeScheduling            ErrorType = "scheduling_error"
)

// FieldError describes a single invalid field, addressed by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType    `json:"type"`
	Message string       `json:"message"`
	Code    int          `json:"code"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`

	cause error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error for errors.Is/As chains.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewFieldValidationError creates a validation error carrying field paths.
func NewFieldValidationError(message string, fields ...FieldError) *AppError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String())
	}
	err := newAppError(ErrorTypeValidation, http.StatusBadRequest, message, []string{strings.Join(parts, "; ")})
	err.Fields = fields
	return err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// NewGatewayNotFoundError is returned when no gateway with the name exists in the catalog.
func NewGatewayNotFoundError(name string) *AppError {
	return newAppError(ErrorTypeGatewayNotFound, http.StatusNotFound, "payment gateway not found", []string{name})
}

// NewGatewayDisabledError is returned when the gateway exists but is not enabled.
func NewGatewayDisabledError(name string) *AppError {
	return newAppError(ErrorTypeGatewayDisabled, http.StatusConflict, "payment gateway is disabled", []string{name})
}

// NewWebhookAuthenticationError rejects a webhook whose signature could not be verified.
func NewWebhookAuthenticationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeWebhookAuthentication, http.StatusUnauthorized, message, details)
}

// NewGatewayTransportError wraps a network or timeout failure talking to a processor.
func NewGatewayTransportError(gateway string, cause error) *AppError {
	detail := gateway
	if cause != nil {
		detail = fmt.Sprintf("%s: %v", gateway, cause)
	}
	return newAppError(ErrorTypeGatewayTransport, http.StatusBadGateway, "payment gateway unreachable", []string{detail}).WithCause(cause)
}

// NewSchedulingError reports a failure to enqueue a notification job.
func NewSchedulingError(message string, cause error) *AppError {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return newAppError(ErrorTypeScheduling, http.StatusInternalServerError, message, []string{detail}).WithCause(cause)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsGatewayNotFoundError checks if the error is a gateway lookup failure
func IsGatewayNotFoundError(err error) bool {
	return IsType(err, ErrorTypeGatewayNotFound)
}

// IsWebhookAuthenticationError checks if the error is a signature failure
func IsWebhookAuthenticationError(err error) bool {
	return IsType(err, ErrorTypeWebhookAuthentication)
}

// IsGatewayTransportError checks if the error is a processor transport failure
func IsGatewayTransportError(err error) bool {
	return IsType(err, ErrorTypeGatewayTransport)
}

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// PostgreSQL unique violation
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "violates unique constraint") {
		return true
	}
	// SQLite unique violation
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	return false
}
