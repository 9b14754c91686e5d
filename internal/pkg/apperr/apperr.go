package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Code classifies a failure for HTTP mapping and for callers that need to
// branch on failure class without string matching.
type Code string

const (
	CodeValidation          Code = "VALIDATION"
	CodeAuthorization       Code = "AUTHORIZATION"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeConsistency         Code = "CONSISTENCY"
)

// Error is the typed failure every service returns. Mutation errors abort
// the enclosing transaction; the handler layer maps Code to an HTTP status.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...interface{}) *Error {
	return &Error{Code: CodeAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func InsufficientBalance(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInsufficientBalance, Message: fmt.Sprintf(format, args...)}
}

// Consistency marks an internal invariant violation (e.g. missing
// general-cash fund). Unrecoverable: the enclosing transaction must abort.
func Consistency(cause error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeConsistency, Message: fmt.Sprintf(format, args...), Err: cause}
}

// CodeOf returns the Code of err, or "" for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatus maps a failure to its response status. Untyped errors are
// internal server errors.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeInsufficientBalance:
		return fiber.StatusBadRequest
	case CodeAuthorization:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
