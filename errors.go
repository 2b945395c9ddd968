package hooter

import (
	"errors"
	"strconv"
)

// Sentinel errors for the bus.
var (
	// ErrNilEvent is returned when a nil envelope reaches the dispatch entry point.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrEmptyType is returned when an event type or registration type is empty.
	ErrEmptyType = errors.New("event type cannot be empty")

	// ErrEmptyPattern is returned when a hook pattern is empty.
	ErrEmptyPattern = errors.New("pattern cannot be empty")

	// ErrNilHook is returned when a nil hook function is provided.
	ErrNilHook = errors.New("hook cannot be nil")

	// ErrNilPredicate is returned when Filter is given a nil predicate.
	ErrNilPredicate = errors.New("predicate cannot be nil")

	// ErrEmptyPrefix is returned when Prefix is given an empty string.
	ErrEmptyPrefix = errors.New("prefix cannot be empty")

	// ErrUnknownMode is returned when a mode is not one of auto, asIs, sync, async.
	ErrUnknownMode = errors.New("unrecognized mode")

	// ErrModeOverride is returned when an emission supplies an explicit mode
	// for an event type that was registered with a fixed mode.
	ErrModeOverride = errors.New("mode must not be overridden for a registered event")

	// ErrAlreadyRegistered is returned when registering an event type twice.
	ErrAlreadyRegistered = errors.New("event type is already registered")
)

// ModeError reports an unrecognized mode value.
type ModeError struct {
	// Mode is the offending mode string.
	Mode string
}

// Error implements the error interface.
func (e *ModeError) Error() string {
	return "unrecognized mode " + strconv.Quote(e.Mode)
}

// Is allows errors.Is to match ModeError with ErrUnknownMode.
func (e *ModeError) Is(target error) bool {
	return target == ErrUnknownMode
}

// RegistrationError reports a conflict or override involving a registered event type.
type RegistrationError struct {
	// EventType is the registered event type involved.
	EventType string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	return e.Err.Error() + ": " + e.EventType
}

// Unwrap returns the underlying error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}
