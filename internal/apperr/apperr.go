// Package apperr defines the closed set of error kinds the service
// propagates across layers. Callers branch on Kind (via KindOf or
// errors.As), never on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and status mapping.
type Kind int

const (
	// KindUnknown is the zero value; treated as a storage/internal failure.
	KindUnknown Kind = iota
	// KindValidation marks bad input shape or a uniqueness violation.
	// Recoverable and user-correctable.
	KindValidation
	// KindNotFound marks a referenced entity that does not exist.
	KindNotFound
	// KindAuthentication marks rejected credentials or tokens. The
	// message must not disambiguate the cause to external callers.
	KindAuthentication
	// KindInvalidToken is the token-specific subset of authentication
	// failures. Matches KindAuthentication in Is comparisons.
	KindInvalidToken
	// KindStorage marks an underlying persistence failure. Logged with
	// detail, surfaced generically.
	KindStorage
)

// String returns the machine-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindInvalidToken:
		return "invalid_token"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is a kinded error carrying a human message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so sentinel-style comparisons work:
// errors.Is(err, apperr.Authentication("")) matches any authentication
// error. Invalid-token errors also match the authentication kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindInvalidToken && t.Kind == KindAuthentication
}

// Validation returns a validation-kinded error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound returns a not-found-kinded error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Authentication returns an authentication-kinded error.
func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// InvalidToken returns an invalid-token-kinded error.
func InvalidToken(msg string) *Error {
	return &Error{Kind: KindInvalidToken, Message: msg}
}

// Storage wraps an unexpected infrastructure failure.
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
