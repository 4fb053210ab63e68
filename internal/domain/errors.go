package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a resource was not found or is soft-deleted.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input (malformed envelope or
	// request shape). Field-level findings travel separately as
	// ValidationIssue lists.
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure.
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure.
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is bridges the typed errors to their sentinels for errors.Is()
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrDuplicate    = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError represents a business-rule conflict: active folders
// blocking a deletion, an invalid status transition, a credit limit
// below the current balance.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (client, folder)
	ResourceID   string // ID of the conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// DuplicateError represents a uniqueness violation (email or business
// registration number already taken by a non-deleted record).
type DuplicateError struct {
	Message string
	Field   string // dotted field path of the duplicated value
}

func (e *DuplicateError) Error() string {
	return e.Message
}

func (e *DuplicateError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrDuplicate
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// UnprocessableError carries field-level validation findings for a
// request whose shape was well-formed but whose data was rejected.
// Maps to 422 so callers can distinguish it from envelope errors (400).
type UnprocessableError struct {
	Message string
	Issues  any // []models.ValidationIssue, kept loose to avoid an import cycle
}

func (e *UnprocessableError) Error() string {
	return e.Message
}

func (e *UnprocessableError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// Is allows errors.Is() to match against ErrValidation
func (e *UnprocessableError) Is(target error) bool {
	return target == ErrValidation
}
