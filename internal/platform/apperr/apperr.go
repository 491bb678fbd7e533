// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for Librarium.

It provides a rich error type that bridges the gap between low-level domain and
storage errors and the JSON responses rendered by the HTTP layer.

Architecture:

  - AppError: A struct containing a machine-readable code and a client-safe message.
  - Mapping: Every code maps to exactly one HTTP status.
  - Domain kinds: BookUnavailable and AlreadyLentToOther describe lending conflicts,
    AlreadyInTrash and NotInTrash describe cascade state conflicts.

Every error that leaves the service layer should be an [AppError] so the API
responds consistently.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUnprocessable      = "UNPROCESSABLE"
	CodeBookUnavailable    = "BOOK_UNAVAILABLE"
	CodeAlreadyLentToOther = "ALREADY_LENT_TO_OTHER"
	CodeAlreadyInTrash     = "ALREADY_IN_TRASH"
	CodeNotInTrash         = "NOT_IN_TRASH"
	CodeStore              = "STORE_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// AppError is the canonical error type for the Librarium API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "BOOK_UNAVAILABLE").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Book") // Returns "Book not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for generic state conflicts.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// BookUnavailable creates a 409 [AppError] for operations targeting a trashed book.
func BookUnavailable(bookID int64) *AppError {
	return &AppError{
		Code:       CodeBookUnavailable,
		Message:    fmt.Sprintf("Book %d is in the trash and cannot be used", bookID),
		HTTPStatus: http.StatusConflict,
	}
}

// AlreadyLentToOther creates a 409 [AppError] naming the current borrower.
func AlreadyLentToOther(borrower string) *AppError {
	return &AppError{
		Code:       CodeAlreadyLentToOther,
		Message:    fmt.Sprintf("This book is already lent to %s", borrower),
		HTTPStatus: http.StatusConflict,
	}
}

// AlreadyInTrash creates a 409 [AppError] for deleting something already deleted.
func AlreadyInTrash(resource string) *AppError {
	return &AppError{
		Code:       CodeAlreadyInTrash,
		Message:    resource + " is already in the trash",
		HTTPStatus: http.StatusConflict,
	}
}

// NotInTrash creates a 409 [AppError] for restoring something that is not deleted.
func NotInTrash(resource string) *AppError {
	return &AppError{
		Code:       CodeNotInTrash,
		Message:    resource + " is not in the trash",
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unprocessable creates a 422 [AppError] for semantically invalid input.
func Unprocessable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnprocessable,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server Errors (5xx)

// Store creates a 500 [AppError] for a failed read or write against the store.
// The action is kept in the cause for logging only.
func Store(action string, cause error) *AppError {
	return &AppError{
		Code:       CodeStore,
		Message:    "The library store could not complete the request",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      fmt.Errorf("%s: %w", action, cause),
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	if ae := As(err); ae != nil {
		return ae.Code == code
	}
	return false
}
