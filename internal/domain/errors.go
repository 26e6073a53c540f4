package domain

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeValidation      Code = "validation_failed"
	CodePoolExhausted   Code = "pool_exhausted"
	CodeExternalService Code = "external_service_error"
	CodeConflict        Code = "conflict"
)

// Error is returned by the session engine and summary pipeline
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so errors.Is(err, ErrConflict) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// Sentinels for errors.Is checks
var (
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrValidation      = &Error{Code: CodeValidation}
	ErrPoolExhausted   = &Error{Code: CodePoolExhausted}
	ErrExternalService = &Error{Code: CodeExternalService}
	ErrConflict        = &Error{Code: CodeConflict}
)

func NotFound(message string) error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Validation(message string) error {
	return &Error{Code: CodeValidation, Message: message}
}

func PoolExhausted(message string) error {
	return &Error{Code: CodePoolExhausted, Message: message}
}

func ExternalService(message string, err error) error {
	return &Error{Code: CodeExternalService, Message: message, Err: err}
}

func Conflict(message string, err error) error {
	return &Error{Code: CodeConflict, Message: message, Err: err}
}

// ErrorCode returns the code carried by err, or "" for untyped errors
func ErrorCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
