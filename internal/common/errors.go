package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Whole-flow errors. These abort an import and return the session to the
// upload state; they are surfaced to the operator and never retried.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyDocument       = errors.New("document contains no text")
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrNoRecordsFound      = errors.New("no valid records found")
)

// Per-entity errors used by the store and direct edit operations.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateRollNumber = errors.New("roll number already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidState        = errors.New("invalid session state")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
