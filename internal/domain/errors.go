package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services either wraps one of these
// or is an unexpected persistence failure.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Error carries a client-facing message and the kind it belongs to.
type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds an error of kind ErrNotFound
func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}

// Invalid builds an error of kind ErrValidation
func Invalid(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

// Conflict builds an error of kind ErrConflict
func Conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, format, args...)
}

// OutOfStock builds an error of kind ErrInsufficientStock
func OutOfStock(format string, args ...interface{}) error {
	return newError(ErrInsufficientStock, format, args...)
}

// Message returns the client-facing message of a domain error, or "" if err
// is not one.
func Message(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}
