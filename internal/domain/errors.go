package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures of core operations
type ErrorKind string

const (
	KindDataUnavailable     ErrorKind = "data_unavailable"
	KindNotFound            ErrorKind = "not_found"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindInsufficientStock   ErrorKind = "insufficient_stock"
	KindInternalConsistency ErrorKind = "internal_consistency"
	KindPersistence         ErrorKind = "persistence"
	KindValidation          ErrorKind = "validation"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrDataUnavailable     = &Error{Kind: KindDataUnavailable, Message: "data store unavailable"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrInsufficientStock   = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrInternalConsistency = &Error{Kind: KindInternalConsistency, Message: "internal consistency violation"}
	ErrPersistence         = &Error{Kind: KindPersistence, Message: "persistence failure"}
	ErrValidation          = &Error{Kind: KindValidation, Message: "validation failed"}
)

// Error is a typed failure carrying its kind, the operation and an optional cause
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a typed error
func NewError(kind ErrorKind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a typed error around a cause
func WrapError(kind ErrorKind, op string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error to the status code returned by the HTTP handlers
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindInsufficientStock:
		return http.StatusConflict
	case KindDataUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
