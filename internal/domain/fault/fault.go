// Package fault defines the domain error taxonomy for the ledger service and the
// classifier that maps storage-layer failures onto it. Callers branch on the Kind;
// the raw cause is carried for operator-facing logs only and is never meant to be
// shown to API clients.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies a stable category of failure, independent of the storage provider.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindDuplicateKey      Kind = "DUPLICATE_KEY"
	KindConflict          Kind = "CONFLICT"
	KindUnavailable       Kind = "UNAVAILABLE"
	KindInternal          Kind = "INTERNAL"
)

// Error is a classified failure. Message is safe to expose to callers; the wrapped
// cause is not.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a classified error with a caller-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error that retains the underlying cause for logging.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the kind from an error chain, or KindInternal if the error was
// never classified.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// SafeMessage returns the caller-safe message from a classified error, or a generic
// message for anything unclassified.
func SafeMessage(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "an internal error occurred"
}
