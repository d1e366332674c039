// Package apperrors defines the structured error value analyze()
// propagates to callers. Every failure bubbles up as a single *Error with a
// Kind, a HumanMessage, and the offending model/date when known; there are
// no retries and no partial results (spec.md §7).
package apperrors

import (
	"fmt"
	"time"
)

// Kind enumerates the error kinds spec.md §7 specifies.
type Kind string

const (
	KindConfiguration   Kind = "ConfigurationError"
	KindOutOfTimeline   Kind = "OutOfTimelineError"
	KindDependencyCycle Kind = "DependencyCycleError"
	KindConvergence     Kind = "ConvergenceError"
	KindLedgerSealed    Kind = "LedgerSealedError"
	KindQuery           Kind = "QueryError"
)

// Error is the single structured error value returned from analyze().
type Error struct {
	Kind             Kind
	HumanMessage     string
	OffendingModelID string
	Date             *time.Time
	Cause            error
}

func (e *Error) Error() string {
	if e.OffendingModelID != "" {
		return fmt.Sprintf("[%s] %s (model=%s)", e.Kind, e.HumanMessage, e.OffendingModelID)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.HumanMessage)
}

// Unwrap supports errors.Is / errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, HumanMessage: message}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, HumanMessage: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, HumanMessage: message, Cause: err}
}

// WithModel annotates the error with the model that produced it.
func (e *Error) WithModel(modelID string) *Error {
	e.OffendingModelID = modelID
	return e
}

// WithDate annotates the error with the posting date that triggered it.
func (e *Error) WithDate(d time.Time) *Error {
	e.Date = &d
	return e
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
