package apperr

import (
	"errors"
	"fmt"
)

// Kind is the stable classification an error carries across layers. Handlers
// map kinds to HTTP status codes without inspecting error text.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Error is a kinded error. All service-layer failures are one of these.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnknown if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Validationf reports malformed input.
func Validationf(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// Authorizationf reports an actor that does not match the required party.
func Authorizationf(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

// NotFoundf reports a missing report, officer, maintainer or user.
func NotFoundf(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflictf reports a transition that is illegal from the current state,
// including losing a race against a concurrent caller.
func Conflictf(format string, args ...any) *Error {
	return newf(KindConflict, format, args...)
}

// Infrastructure wraps a storage or delivery failure.
func Infrastructure(err error, msg string) *Error {
	return &Error{Kind: KindInfrastructure, Msg: msg, Err: err}
}
