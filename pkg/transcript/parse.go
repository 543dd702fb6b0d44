package transcript

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

var (
	// ErrNotObject is reported for lines holding valid JSON that is not an object
	ErrNotObject = errors.New("line is not a JSON object")

	// ErrMissingType is reported for objects without a string "type" field
	ErrMissingType = errors.New(`missing "type" discriminator`)

	// ErrUnknownType is wrapped by UnknownTypeError
	ErrUnknownType = errors.New("unknown entry type")

	// ErrMissingMessage is reported for user and assistant entries without a message object
	ErrMissingMessage = errors.New(`missing "message" field`)
)

// UnknownTypeError reports a "type" value this package does not model
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown entry type %q", e.Type)
}

func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownType }

// LineError is a recoverable failure confined to one transcript line
type LineError struct {
	LineNumber int    // 1-based
	RawText    string // the line as read, without its line terminator
	Err        error
	Truncated  bool // last line of the snapshot with no trailing newline
}

func (e *LineError) Error() string {
	if e.Truncated {
		return fmt.Sprintf("failed to parse transcript at line %d (truncated): %v", e.LineNumber, e.Err)
	}
	return fmt.Sprintf("failed to parse transcript at line %d: %v", e.LineNumber, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Outcome is the result of parsing one non-blank line: exactly one of Entry and Err is set
type Outcome struct {
	LineNumber int
	Entry      Entry
	Err        *LineError
}

// ParseLine parses a single transcript line. It returns false for blank lines,
// which are neither entries nor errors.
func ParseLine(lineNumber int, line string) (Outcome, bool) {
	if strings.TrimSpace(line) == "" {
		return Outcome{}, false
	}
	entry, err := decodeEntry(line)
	if err != nil {
		return Outcome{
			LineNumber: lineNumber,
			Err:        &LineError{LineNumber: lineNumber, RawText: line, Err: err},
		}, true
	}
	return Outcome{LineNumber: lineNumber, Entry: entry}, true
}

func decodeEntry(line string) (Entry, error) {
	if !gjson.Valid(line) {
		return nil, syntaxError(line)
	}
	root := gjson.Parse(line)
	if !root.IsObject() {
		return nil, ErrNotObject
	}
	// a repeated key keeps its last value, as sonic does when decoding
	var kind, message gjson.Result
	root.ForEach(func(key, value gjson.Result) bool {
		switch key.Str {
		case "type":
			kind = value
		case "message":
			message = value
		}
		return true
	})
	if kind.Type != gjson.String {
		return nil, ErrMissingType
	}

	switch EntryType(kind.Str) {
	case EntrySystem:
		return decodeAs[SystemEntry](line)
	case EntryUser:
		if !message.Exists() || message.Type == gjson.Null {
			return nil, ErrMissingMessage
		}
		return decodeAs[UserEntry](line)
	case EntryAssistant:
		if !message.Exists() || message.Type == gjson.Null {
			return nil, ErrMissingMessage
		}
		return decodeAs[AssistantEntry](line)
	case EntryResult:
		return decodeAs[ResultEntry](line)
	case EntrySummary:
		return decodeAs[SummaryEntry](line)
	}
	return nil, &UnknownTypeError{Type: kind.Str}
}

func decodeAs[T Entry](line string) (Entry, error) {
	var entry T
	if err := sonic.UnmarshalString(line, &entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// syntaxError produces a decoder message for a line gjson rejected
func syntaxError(line string) error {
	var v any
	if err := sonic.UnmarshalString(line, &v); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}
