// Package scoreerr defines the error categories shared by every layer of the
// scoring core.
//
// None of these errors are retryable. They report configuration mistakes
// (bad weights, joiner ordering, level-count mismatches), type mismatches
// between a constraint's match weight and the score holder, or a constraint
// graph that is out of sync with its weight configuration. Callers match on
// the category with errors.Is:
//
//	if errors.Is(err, scoreerr.ErrUnsupported) {
//	    // a constraint used a weigher type the score type cannot express
//	}
package scoreerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState reports a session, graph or holder that is in a state
	// the requested operation cannot run in.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument reports an argument that violates a documented bound
	// or type requirement.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupported reports an operation the receiver cannot perform for its
	// score representation.
	ErrUnsupported = errors.New("unsupported operation")
)

// InvalidState returns an error wrapping ErrInvalidState.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// InvalidArgument returns an error wrapping ErrInvalidArgument.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Unsupported returns an error wrapping ErrUnsupported.
func Unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

// Wrap returns an error in the given category that also carries cause, so
// both errors.Is(err, kind) and errors.Is(err, cause) hold.
func Wrap(kind, cause error, format string, args ...any) error {
	return &causeError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

type causeError struct {
	kind  error
	msg   string
	cause error
}

func (e *causeError) Error() string {
	return e.kind.Error() + ": " + e.msg + ": " + e.cause.Error()
}

func (e *causeError) Unwrap() []error {
	return []error{e.kind, e.cause}
}
