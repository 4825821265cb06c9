package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors with a stable code.
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

// Error taxonomy for the comparison pipeline.
//
// ErrInputValidation is fatal and raised before any model call.
// ErrInference covers transport/timeout/provider failures on model calls.
// ErrSchema marks hard structural contract violations; never absorbed.
//
// Malformed-but-recoverable model output is not an error at all: the decoder
// returns a Degraded value and stages rebuild deterministically from it.
var (
	ErrInputValidation = errors.New("input validation failed")
	ErrInference       = errors.New("inference call failed")
	ErrSchema          = errors.New("schema contract violated")
	ErrInvalidInput    = errors.New("invalid input")
)

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
