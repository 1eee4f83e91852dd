package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrorKind is the status class of a domain error.
type ErrorKind int

const (
	KindBadRequest ErrorKind = iota + 1
	KindUnauthorized
	KindNotFound
	KindConflict
	KindUpstream
)

// HTTPStatus maps the kind onto its HTTP status code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed domain error with a stable machine-readable code.
// Sentinels are compared by identity, so wrap them rather than copying.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsError returns the *Error at the root of err, if any.
func AsError(err error) (*Error, bool) {
	e, ok := errors.Cause(err).(*Error)
	return e, ok
}

// common errors
var (
	ErrInvalidToken      = NewError(KindUnauthorized, "INVALID_TOKEN", "authentication required")
	ErrInvalidPermission = NewError(KindUnauthorized, "INVALID_PERMISSION", "permission denied")
	ErrMailSendFailed    = NewError(KindUpstream, "MAIL_SEND_FAILED", "email could not be sent")
	ErrFileStorageFailed = NewError(KindUpstream, "FILE_STORAGE_FAILED", "file storage is unavailable")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return "invalid request"
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
