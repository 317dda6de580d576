// Package gameerr defines the recoverable error kinds surfaced by game tools.
//
// Every failure a tool call can produce is reportable: handlers render the
// message (plus hints, when present) back to the caller instead of aborting.
// Unrecoverable store failures use KindInternal and are never conflated with
// user-facing validation errors.
package gameerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindParticipantNotFound indicates an attacker, target, character, or
	// template that could not be resolved.
	KindParticipantNotFound Kind = "PARTICIPANT_NOT_FOUND"
	// KindAlreadyExists indicates a duplicate spawn name or duplicate record creation.
	KindAlreadyExists Kind = "ALREADY_EXISTS"
	// KindWeaponUnavailable indicates weapon resolution exhausted every source.
	KindWeaponUnavailable Kind = "WEAPON_UNAVAILABLE"
	// KindInvalidArgument indicates a structurally invalid request, such as an
	// item flagged as a weapon without a damage formula.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	// KindInsufficientFunds indicates a money removal that would go below zero.
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	// KindInternal indicates store I/O failure or corruption. Fatal to the
	// request, never to the process.
	KindInternal Kind = "INTERNAL"
)

// Error is a categorized, reportable failure.
//
// Invariant: Kind is always one of the constants above; Message is non-empty.
type Error struct {
	Kind    Kind
	Message string
	// Hints lists valid alternatives when the failure has any, e.g. the item
	// names an attacker could have used as a weapon.
	Hints []string
	// Err is the wrapped cause, if any.
	Err error
}

// Error renders the message with hints appended.
func (e *Error) Error() string {
	if len(e.Hints) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s Available: %s.", e.Message, strings.Join(e.Hints, ", "))
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind.
//
// Precondition: kind must be one of the Kind constants; format must be non-empty.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithHints returns a copy of e carrying the given hint list.
func (e *Error) WithHints(hints ...string) *Error {
	out := *e
	out.Hints = hints
	return &out
}

// Wrap creates a KindInternal error around cause.
//
// Precondition: cause must be non-nil.
func Wrap(cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// KindOf extracts the Kind from err, or KindInternal when err is not a *Error.
//
// Postcondition: Returns KindInternal for nil-kind and foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HintsOf extracts the hint list from err, or nil when err carries none.
func HintsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hints
	}
	return nil
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
