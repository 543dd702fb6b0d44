package hooks

import (
	"github.com/tidwall/gjson"
)

// Classify interprets a finished hook invocation. It is the single source of
// truth for both hook libraries and harnesses and never fails: any stdout that
// is not exactly one JSON object is plain text.
//
// Exit 0 selects the structured path when stdout is a whole JSON object.
// Exit 2 blocks (or, for stop events, keeps the session going) with stderr as
// the message, except on Notification where it is a warning. Every other code
// is a non-blocking warning with stderr shown to the user.
func Classify(exitCode int, stdout, stderr []byte, kind HookEvent) Decision {
	if exitCode == ExitSuccess {
		if isSingleObject(stdout) {
			return classifyJSON(gjson.ParseBytes(stdout), kind)
		}
		return plainText(ControlPassthrough, "")
	}

	// stdout is never consulted on a nonzero exit
	if exitCode == ExitBlock && kind != Notification && kind.IsValid() {
		// for stop events a block refuses the stop; ContinueSession stays true
		return plainText(ControlBlock, string(stderr))
	}
	return plainText(ControlPassthrough, string(stderr))
}

func plainText(control Control, message string) Decision {
	return Decision{
		Path:            PathPlainText,
		Control:         control,
		Message:         message,
		ContinueSession: true,
	}
}

func classifyJSON(obj gjson.Result, kind HookEvent) Decision {
	d := Decision{
		Path:            PathStructuredJSON,
		Control:         ControlPassthrough,
		ContinueSession: true,
	}
	fields := topLevelFields(obj)

	if r := fields["decision"]; r.Type == gjson.String {
		if c, ok := parseControl(r.Str); ok && ControlAllowed(kind, c) {
			d.Control = c
			if reason := fields["reason"]; reason.Type == gjson.String {
				d.Message = reason.Str
			}
		}
	}
	if r := fields["continue"]; r.IsBool() {
		d.ContinueSession = r.Bool()
	}
	if r := fields["stopReason"]; r.Type == gjson.String && !d.ContinueSession {
		d.StopReason = r.Str
	}
	if r := fields["suppressOutput"]; r.IsBool() {
		d.SuppressOutput = r.Bool()
	}
	return d
}

func parseControl(s string) (Control, bool) {
	switch s {
	case "approve":
		return ControlApprove, true
	case "block":
		return ControlBlock, true
	}
	return "", false
}

// ControlAllowed reports whether kind can carry control. Passthrough is always allowed.
func ControlAllowed(kind HookEvent, c Control) bool {
	switch c {
	case ControlPassthrough:
		return kind.IsValid()
	case ControlApprove:
		return kind == PreToolUse
	case ControlBlock:
		return kind == PreToolUse || kind == PostToolUse || kind.IsStop()
	}
	return false
}
