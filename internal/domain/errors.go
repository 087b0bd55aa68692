package domain

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidBlock    Code = "INVALID_BLOCK"
	ErrCodeInvalidTemplate Code = "INVALID_TEMPLATE"
	ErrCodeUnknownVariant  Code = "UNKNOWN_VARIANT"
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Field   string // offending field path, when known
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates an Error around an existing cause.
func WrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func fieldError(field, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidBlock, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of err, or "" if err is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
