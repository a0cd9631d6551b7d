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

// Common application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrValidation     = errors.New("validation failed")
	ErrExtraction     = errors.New("extraction failed")
	ErrPersistence    = errors.New("persistence failure")
	ErrNotImplemented = errors.New("not implemented")
)

// Error codes carried by AppError.Code.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeValidation     = "VALIDATION_ERROR"
	CodeExtraction     = "EXTRACTION_ERROR"
	CodePersistence    = "PERSISTENCE_ERROR"
	CodeNotImplemented = "NOT_IMPLEMENTED"
	CodeConfig         = "CONFIG_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NotFound reports a missing entity, e.g. NotFound("blueprint", id).
func NotFound(entity, id string) *AppError {
	return NewAppError(CodeNotFound, fmt.Sprintf("%s %q not found", entity, id), ErrNotFound)
}

func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message, ErrValidation)
}

func Validationf(format string, args ...interface{}) *AppError {
	return Validation(fmt.Sprintf(format, args...))
}

func InvalidInput(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, ErrInvalidInput)
}

// Extraction wraps a document read failure. The cause, when given, stays
// reachable through errors.As/errors.Is next to ErrExtraction.
func Extraction(message string, cause error) *AppError {
	if cause == nil {
		return NewAppError(CodeExtraction, message, ErrExtraction)
	}
	return NewAppError(CodeExtraction, message, fmt.Errorf("%w: %w", ErrExtraction, cause))
}

// Persistence wraps a store failure for the named operation.
func Persistence(op string, cause error) *AppError {
	if cause == nil {
		return NewAppError(CodePersistence, op, ErrPersistence)
	}
	return NewAppError(CodePersistence, op, fmt.Errorf("%w: %w", ErrPersistence, cause))
}

func NotImplemented(message string) *AppError {
	return NewAppError(CodeNotImplemented, message, ErrNotImplemented)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound is shorthand for errors.Is(err, ErrNotFound).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
