package hooks

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is matched by every *MalformedInputError
	ErrMalformedInput = errors.New("malformed hook input")

	// ErrInvalidDecisionForEventKind is matched by every *InvalidDecisionError
	ErrInvalidDecisionForEventKind = errors.New("invalid decision for event kind")

	// ErrRequiresStructuredOutput is returned when a decision can only be expressed as JSON
	ErrRequiresStructuredOutput = errors.New("decision requires structured JSON output")

	// ErrInvalidExitCode is matched by every *InvalidExitCodeError
	ErrInvalidExitCode = errors.New("invalid exit code")
)

// MalformedInputError reports a hook input that is missing a required field or has one of the wrong type
type MalformedInputError struct {
	Event    HookEvent
	Field    string // empty when the payload itself is not a JSON object
	Expected string
	Got      string // "missing" when the field is absent
	Err      error  // underlying decode error, if any
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Field == "" && e.Err != nil:
		return fmt.Sprintf("malformed %s input: %v", e.Event, e.Err)
	case e.Field == "":
		return fmt.Sprintf("malformed %s input: payload must be a JSON object", e.Event)
	case e.Got == "missing":
		return fmt.Sprintf("malformed %s input: missing required field %q (%s)", e.Event, e.Field, e.Expected)
	default:
		return fmt.Sprintf("malformed %s input: field %q must be %s, got %s", e.Event, e.Field, e.Expected, e.Got)
	}
}

func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

func (e *MalformedInputError) Unwrap() error { return e.Err }

// InvalidDecisionError reports a control value the event kind cannot carry
type InvalidDecisionError struct {
	Event   HookEvent
	Control Control
}

func (e *InvalidDecisionError) Error() string {
	return fmt.Sprintf("%s hooks cannot respond with %q", e.Event, e.Control)
}

func (e *InvalidDecisionError) Is(target error) bool { return target == ErrInvalidDecisionForEventKind }

// InvalidExitCodeError reports an exit code reserved by the protocol or out of range
type InvalidExitCodeError struct {
	Code int
}

func (e *InvalidExitCodeError) Error() string {
	if e.Code == ExitSuccess || e.Code == ExitBlock {
		return fmt.Sprintf("invalid exit code %d: codes 0 and 2 are reserved", e.Code)
	}
	return fmt.Sprintf("invalid exit code %d: must be between 1 and 255", e.Code)
}

func (e *InvalidExitCodeError) Is(target error) bool { return target == ErrInvalidExitCode }
