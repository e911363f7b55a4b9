package status

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error so transport layers can pick the
// right response without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and message, so errors.Is works against the
// stable error values below even when the chain was wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Errors that did not
// originate in this package report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Stable error values for conditions callers branch on.
var (
	ErrMissingFields     = &Error{Kind: KindValidation, Message: "missing required fields"}
	ErrSlotNotFound      = &Error{Kind: KindNotFound, Message: "slot not found"}
	ErrTicketNotFound    = &Error{Kind: KindNotFound, Message: "ticket not found"}
	ErrZoneNotFound      = &Error{Kind: KindNotFound, Message: "zone not found"}
	ErrCapacityExceeded  = &Error{Kind: KindConflict, Message: "not enough capacity remaining"}
	ErrInvalidTransition = &Error{Kind: KindConflict, Message: "invalid ticket transition"}
	ErrProofMismatch     = &Error{Kind: KindValidation, Message: "priority proof count does not match priority persons"}
	ErrSlotAlreadyExists = &Error{Kind: KindConflict, Message: "slot already exists for this date, time and darshan type"}
)
