// internal/domain/domainerr/domainerr.go
package domainerr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. Callers branch on the Kind, never on
// the message text.
type Kind uint8

const (
	KindUnknown Kind = iota
	InvalidStateTransition
	RateLimited
	NotFound
	Conflict
	Invalid
)

func (k Kind) String() string {
	switch k {
	case InvalidStateTransition:
		return "invalid_state_transition"
	case RateLimited:
		return "rate_limited"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is the tagged error returned by the domain and the stores.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "publish"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Op != "" && e.Msg != "":
		msg = e.Op + ": " + e.Msg
	case e.Op != "":
		msg = e.Op + ": " + e.Kind.String()
	case e.Msg != "":
		msg = e.Msg
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes every *Error match the sentinel of the same Kind, so
// errors.Is(err, domainerr.ErrNotFound) works regardless of Op/Msg.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidStateTransition = &Error{Kind: InvalidStateTransition}
	ErrRateLimited            = &Error{Kind: RateLimited}
	ErrNotFound               = &Error{Kind: NotFound}
	ErrConflict               = &Error{Kind: Conflict}
	ErrInvalid                = &Error{Kind: Invalid}
)

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func InvalidTransition(op, msg string) *Error {
	return &Error{Kind: InvalidStateTransition, Op: op, Msg: msg}
}

func RateLimit(op, msg string) *Error {
	return &Error{Kind: RateLimited, Op: op, Msg: msg}
}

// NotFoundf reports a lookup miss for entity by key.
func NotFoundf(entity, key string) *Error {
	return &Error{Kind: NotFound, Op: "find " + entity, Msg: fmt.Sprintf("no %s for %q", entity, key)}
}

// Invalidf reports an argument a store or domain function cannot accept.
func Invalidf(op, format string, args ...any) *Error {
	return &Error{Kind: Invalid, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(op, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}
