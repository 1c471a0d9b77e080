package service

import (
	"errors"
)

// Error kinds. Match with errors.Is; handlers map them to HTTP statuses.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")
	ErrPersistence         = errors.New("persistence failure")
)

// Error is a caller-facing failure. Message, Details and Fields are safe to return
// to clients; the underlying cause, if any, is only reachable through errors.Is/As.
type Error struct {
	Kind    error
	Message string
	// Details is a human-readable elaboration of Message.
	Details string
	// Fields carries the same facts in machine-readable form.
	Fields  map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

func validationError(msg, details string, fields map[string]interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Details: details, Fields: fields}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func unauthenticatedError() *Error {
	return &Error{Kind: ErrUnauthenticated, Message: "authentication required"}
}

func insufficientBalanceError(details string, fields map[string]interface{}) *Error {
	return &Error{Kind: ErrInsufficientBalance, Message: "insufficient balance", Details: details, Fields: fields}
}

func persistenceError(msg string, cause error) *Error {
	return &Error{Kind: ErrPersistence, Message: msg, cause: cause}
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
}
