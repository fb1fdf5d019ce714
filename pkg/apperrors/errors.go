// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindForbidden        Kind = "FORBIDDEN"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindConflict         Kind = "CONFLICT"
	KindNoRecipients     Kind = "NO_RECIPIENTS"
	KindStorageFailure   Kind = "STORAGE_FAILURE"
	KindTransportFailure Kind = "TRANSPORT_FAILURE"
)

// GenericMessage is what callers see for infrastructure failures.
const GenericMessage = "Something went wrong on the server"

// AppError is a classified error carrying a caller-safe message.
type AppError struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound, KindNoRecipients:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show an external caller.
func (e *AppError) PublicMessage() string {
	if e.Infrastructure() {
		return GenericMessage
	}
	return e.Message
}

// Infrastructure reports whether the error came from storage or transport.
func (e *AppError) Infrastructure() bool {
	return e.Kind == KindStorageFailure || e.Kind == KindTransportFailure
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message)
}

func InvalidInput(message string) *AppError {
	return New(KindInvalidInput, message)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message)
}

func NoRecipients(message string) *AppError {
	return New(KindNoRecipients, message)
}

// Storage wraps a persistence error.
func Storage(err error, op string) *AppError {
	return Wrap(err, KindStorageFailure, op)
}

// Transport wraps a realtime delivery error.
func Transport(err error, op string) *AppError {
	return Wrap(err, KindTransportFailure, op)
}

// As extracts an AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
