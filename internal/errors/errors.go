package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a glossary error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrFileNotFound     ErrorCode = "FILE_NOT_FOUND"    // 404
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED" // 422
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrInternal         ErrorCode = "INTERNAL"          // 500
	ErrLookupFailed     ErrorCode = "LOOKUP_FAILED"     // 502
	ErrSyncFailed       ErrorCode = "SYNC_FAILED"       // 502
)

// GlossaryError represents a structured error with code, status, and details.
type GlossaryError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *GlossaryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *GlossaryError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *GlossaryError {
	return &GlossaryError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a row or setting that does not exist.
func NewNotFound(identifier string) *GlossaryError {
	return &GlossaryError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file on disk.
func NewFileNotFound(path string) *GlossaryError {
	return &GlossaryError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewValidationFailed creates a 422 error for a field value the validator rejected.
func NewValidationFailed(field, reason string) *GlossaryError {
	return &GlossaryError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: fmt.Sprintf("%s: %s", field, reason),
		Details: map[string]any{"field": field, "reason": reason},
	}
}

// NewCancelled creates a 499 error when the caller's context is done.
func NewCancelled(err error) *GlossaryError {
	return &GlossaryError{
		Code:    ErrCancelled,
		Status:  499,
		Message: "operation cancelled",
		cause:   err,
	}
}

// NewLookupFailed creates a 502 error when the definition service fails.
func NewLookupFailed(term string, err error) *GlossaryError {
	details := map[string]any{"term": term}
	if err != nil {
		details["cause"] = err.Error()
	}
	return &GlossaryError{
		Code:    ErrLookupFailed,
		Status:  502,
		Message: fmt.Sprintf("lookup failed for %q", term),
		Details: details,
		cause:   err,
	}
}

// NewSyncFailed creates a 502 error when the spreadsheet sink fails.
func NewSyncFailed(title string, err error) *GlossaryError {
	details := map[string]any{"title": title}
	if err != nil {
		details["cause"] = err.Error()
	}
	return &GlossaryError{
		Code:    ErrSyncFailed,
		Status:  502,
		Message: fmt.Sprintf("sync to %q failed", title),
		Details: details,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *GlossaryError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &GlossaryError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
		cause:   err,
	}
}

// Is checks if err (or anything it wraps) is a GlossaryError with the given code.
func Is(err error, code ErrorCode) bool {
	var gErr *GlossaryError
	if stderrors.As(err, &gErr) {
		return gErr.Code == code
	}
	return false
}

// As returns the GlossaryError in err's chain, if any.
func As(err error) (*GlossaryError, bool) {
	var gErr *GlossaryError
	if stderrors.As(err, &gErr) {
		return gErr, true
	}
	return nil, false
}
