// Package apperr defines the error taxonomy shared by the server and the editor client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindAuthenticationRequired
	KindUnauthorized
	KindNotFound
	KindValidationFailed
	KindStoreFailure
	KindNetworkFailure
	// KindConflict marks a request dropped because another one is still running.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindValidationFailed:
		return "validation_failed"
	case KindStoreFailure:
		return "store_failure"
	case KindNetworkFailure:
		return "network_failure"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error carries a Kind, a message safe to show to users and, optionally,
// field-level details and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

var (
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired}
	ErrUnauthorized           = &Error{Kind: KindUnauthorized}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrValidationFailed       = &Error{Kind: KindValidationFailed}
	ErrStoreFailure           = &Error{Kind: KindStoreFailure}
	ErrNetworkFailure         = &Error{Kind: KindNetworkFailure}
	ErrConflict               = &Error{Kind: KindConflict}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func AuthenticationRequired(msg string) *Error { return New(KindAuthenticationRequired, msg) }
func Unauthorized(msg string) *Error           { return New(KindUnauthorized, msg) }
func NotFound(msg string) *Error               { return New(KindNotFound, msg) }

func ValidationFailed(msg string, details ...string) *Error {
	return &Error{Kind: KindValidationFailed, Message: msg, Details: details}
}

// StoreFailure hides err behind a generic message; err is kept for logging only.
func StoreFailure(msg string, err error) *Error { return Wrap(KindStoreFailure, msg, err) }

func NetworkFailure(msg string, err error) *Error { return Wrap(KindNetworkFailure, msg, err) }

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user facing message for err, falling back to fallback
// for anything that is not an *Error.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindAuthenticationRequired:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNetworkFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus rebuilds an *Error from an HTTP response.
func FromStatus(status int, msg string, details ...string) *Error {
	var kind Kind
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuthenticationRequired
	case status == http.StatusForbidden:
		kind = KindUnauthorized
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = KindValidationFailed
	case status == http.StatusConflict:
		kind = KindConflict
	case status == http.StatusTooManyRequests || status >= 500:
		kind = KindStoreFailure
	default:
		kind = KindUnknown
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: kind, Message: msg, Details: details}
}
