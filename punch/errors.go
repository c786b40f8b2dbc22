/*
errors.go - Centralized error types for the punch engine

ERROR CATEGORIES:
  1. Sequence errors - punch kind not allowed after the last one of the day
  2. Input errors - missing location, unknown kind, blank identity
  3. Integrity errors - events referencing unregistered people

Rejections are normal outcomes, not failures: callers check them with
errors.Is / errors.As and surface them to the user. Store errors are
wrapped with context and returned as-is.
*/
package punch

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSequence is returned when the requested kind is not allowed
	// after the last punch of the same person on the same day.
	ErrInvalidSequence = errors.New("invalid punch sequence")

	// ErrMissingLocation is returned when a punch arrives without coordinates.
	ErrMissingLocation = errors.New("location not captured")

	// ErrUnknownPerson is returned when an ID is not in the registry.
	ErrUnknownPerson = errors.New("unknown person")

	// ErrUnknownKind is returned for a kind outside the four punch types.
	ErrUnknownKind = errors.New("unknown punch kind")

	// ErrInvalidPerson is returned when registering with a blank ID or name.
	ErrInvalidPerson = errors.New("person requires id and name")

	// ErrDuplicateEvent is returned by a Store when an event ID is appended twice.
	ErrDuplicateEvent = errors.New("duplicate event id")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidSequenceError names the conflicting last kind for display.
type InvalidSequenceError struct {
	PersonID  PersonID
	Date      Date
	Last      Kind
	Requested Kind
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("invalid punch: last punch was %q, cannot register %q now",
		e.Last.Label(), e.Requested.Label())
}

func (e *InvalidSequenceError) Unwrap() error {
	return ErrInvalidSequence
}

// UnknownPersonError is a data-integrity failure: some record references an
// ID that was never registered.
type UnknownPersonError struct {
	PersonID PersonID
}

func (e *UnknownPersonError) Error() string {
	return fmt.Sprintf("unknown person: %s", e.PersonID)
}

func (e *UnknownPersonError) Unwrap() error {
	return ErrUnknownPerson
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSequence) ||
		errors.Is(err, ErrMissingLocation) ||
		errors.Is(err, ErrUnknownKind) ||
		errors.Is(err, ErrInvalidPerson)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownPerson)
}
