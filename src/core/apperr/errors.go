// Package apperr carries the request error taxonomy through gin's error list.
// The centralized responder maps a Kind to an HTTP status.
package apperr

import (
	"errors"
	"net/http"
)

// Kind discriminates client faults from server faults
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Status HTTP status for the kind
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Validation error codes, stable for logs and tests
const (
	CodeMissingFile     = "MISSING_FILE"
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeUnexpectedField = "UNEXPECTED_FIELD"
	CodeFieldTooLong    = "FIELD_TOO_LONG"
	CodeMalformedBody   = "MALFORMED_BODY"
	CodeInvalidImage    = "INVALID_IMAGE"
	CodeInvalidToken    = "INVALID_TOKEN"
)

// Error is the single error type recorded on a request
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *Error) Unwrap() error { return e.Err }

// Validation client-caused failure, answered with 400
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Unauthorized missing or invalid credentials, answered with 401
func Unauthorized(message string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeInvalidToken, Message: message, Err: err}
}

// Internal wraps an unexpected failure, answered with 500
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf reports the kind of err; anything not produced by this package is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a client validation failure.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
