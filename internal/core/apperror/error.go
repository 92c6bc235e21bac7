// Package apperror provides structured error handling for the platform.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes, stable machine-readable identifiers
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Business rule violations (400/422)
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidStock      = "INVALID_STOCK"
	CodeDraftProcessed    = "DRAFT_ALREADY_PROCESSED"
	CodeCustomerRequired  = "CUSTOMER_REQUIRED"

	// Collaborator availability
	CodeOCRNotConfigured = "OCR_NOT_CONFIGURED"
	CodeUnsupportedAI    = "UNSUPPORTED_AI_PROVIDER"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productName string, requested, available float64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("Insufficient stock for %s", productName),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"product":   productName,
			"requested": requested,
			"available": available,
		},
	}
}

// NewInvalidStock is returned when a mutation would drive stock negative.
func NewInvalidStock(productName string, current, change float64) *AppError {
	return &AppError{
		Code:       CodeInvalidStock,
		Message:    fmt.Sprintf("Stock cannot go negative for %s", productName),
		HTTPStatus: http.StatusBadRequest,
		Details: map[string]any{
			"product": productName,
			"current": current,
			"change":  change,
		},
	}
}

// NewDraftProcessed is returned when approving or rejecting a non-draft draft.
// The message identifies the current terminal status.
func NewDraftProcessed(status string) *AppError {
	return &AppError{
		Code:       CodeDraftProcessed,
		Message:    fmt.Sprintf("Draft is already %s", status),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"status": status},
	}
}

// NewCustomerRequired is returned for wholesale operations with no customer.
func NewCustomerRequired() *AppError {
	return &AppError{
		Code:       CodeCustomerRequired,
		Message:    "Customer is required for wholesale sales",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewOCRNotConfigured signals the degraded-mode condition of the OCR collaborator.
func NewOCRNotConfigured(provider string) *AppError {
	return &AppError{
		Code:       CodeOCRNotConfigured,
		Message:    fmt.Sprintf("OCR provider %q is not configured", provider),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"provider": provider},
	}
}

// NewUnsupportedAIProvider creates a provider-selection validation error.
func NewUnsupportedAIProvider(provider string) *AppError {
	return &AppError{
		Code:       CodeUnsupportedAI,
		Message:    fmt.Sprintf("Unsupported AI provider: %s", provider),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"provider": provider},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsCode checks the machine code of an error.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
