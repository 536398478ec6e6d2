// Package apperror provides structured error handling for the billing engine.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by concern
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Draft rule violations (422)
	CodeDuplicateLine     = "DUPLICATE_LINE"
	CodeStockExceeded     = "STOCK_EXCEEDED"
	CodeEmptyDraft        = "EMPTY_DRAFT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"

	// Commit failures
	CodePersistence = "PERSISTENCE_ERROR"
	CodeSideEffect  = "SIDE_EFFECT_ERROR"

	// Authorization errors (401)
	CodeUnauthorized = "UNAUTHORIZED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the engine.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (offending lines, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Warning marks non-fatal, informational errors (rejected edit, failed
	// side effect). The operation they report on left state unchanged, or the
	// state change they report on already succeeded.
	Warning bool `json:"-"`

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

// NewInvalidInput creates a field-level input error (400)
func NewInvalidInput(field, reason string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    fmt.Sprintf("invalid %s", field),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"field": field, "reason": reason},
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

// NewDuplicateLine reports an attempted re-add of an item already in the draft.
// Quantity is changed via update, not re-add.
func NewDuplicateLine(itemID any) *AppError {
	return &AppError{
		Code:       CodeDuplicateLine,
		Message:    "Item is already in the draft. Change its quantity instead.",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"item_id": itemID},
	}
}

// NewStockExceeded reports a rejected quantity edit. The draft is unchanged;
// this is informational, not fatal.
func NewStockExceeded(itemID any, requested, available int) *AppError {
	return &AppError{
		Code:       CodeStockExceeded,
		Message:    "Requested quantity exceeds available stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Warning:    true,
		Details: map[string]any{
			"item_id":   itemID,
			"requested": requested,
			"available": available,
		},
	}
}

// NewEmptyDraft reports an operation that requires at least one line.
func NewEmptyDraft(operation string) *AppError {
	return &AppError{
		Code:       CodeEmptyDraft,
		Message:    fmt.Sprintf("Cannot %s an empty draft", operation),
		HTTPStatus: http.StatusUnprocessableEntity,
		Warning:    true,
		Details:    map[string]any{"operation": operation},
	}
}

// NewInsufficientStock creates a stock-gate error for commit validation.
func NewInsufficientStock(message string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewPersistence reports a failed invoice-create call. The commit is aborted
// and the draft stays active.
func NewPersistence(err error) *AppError {
	return &AppError{
		Code:       CodePersistence,
		Message:    "Failed to save the invoice. Nothing was committed.",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewSideEffect reports a failed post-commit call (stock update, return
// creation). The invoice stays committed; the failure is surfaced for manual
// reconciliation.
func NewSideEffect(task string, err error) *AppError {
	return &AppError{
		Code:       CodeSideEffect,
		Message:    fmt.Sprintf("Post-commit %s failed", task),
		HTTPStatus: http.StatusOK,
		Warning:    true,
		Details:    map[string]any{"task": task},
		Err:        err,
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

// IsWarning checks if error is non-fatal (rejected edit, failed side effect).
func IsWarning(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Warning
	}
	return false
}

// HasCode checks if error carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
