package models

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeConstraintViolation = "CONSTRAINT_VIOLATION"
	CodeInvalidOperation    = "INVALID_OPERATION"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching. Any AppError with the same Code matches.
var (
	ErrValidation          = &AppError{Code: CodeValidation, Message: "validation failed"}
	ErrConstraintViolation = &AppError{Code: CodeConstraintViolation, Message: "constraint violation"}
	ErrInvalidOperation    = &AppError{Code: CodeInvalidOperation, Message: "invalid operation"}
	ErrUnauthorized        = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrNotFound            = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrInternal            = &AppError{Code: CodeInternal, Message: "internal error"}
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Code returns the AppError code found in err's chain, or CodeInternal.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewConstraintViolationError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeConstraintViolation,
		Message: message,
		Err:     err,
	}
}

func NewInvalidOperationError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidOperation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
