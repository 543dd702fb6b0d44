// Package hooks implements the hook-facing side of the agent hook protocol:
// decoding stdin payloads, classifying hook output and encoding responses.
package hooks

import (
	"fmt"
	"strings"
)

// HookEvent represents a point in the host agent's lifecycle where hooks run
type HookEvent string

const (
	// PreToolUse fires before any tool execution
	PreToolUse HookEvent = "PreToolUse"

	// PostToolUse fires after tool execution completes
	PostToolUse HookEvent = "PostToolUse"

	// Notification fires when the host shows the user a notification
	Notification HookEvent = "Notification"

	// Stop fires when the main agent finishes responding
	Stop HookEvent = "Stop"

	// SubagentStop fires when a subagent finishes responding
	SubagentStop HookEvent = "SubagentStop"
)

// AllEvents lists every event kind in lifecycle order
var AllEvents = []HookEvent{PreToolUse, PostToolUse, Notification, Stop, SubagentStop}

// IsValid returns true if the event is a valid hook event
func (e HookEvent) IsValid() bool {
	switch e {
	case PreToolUse, PostToolUse, Notification, Stop, SubagentStop:
		return true
	}
	return false
}

// HasTool returns true if the event carries tool_name and tool_input
func (e HookEvent) HasTool() bool {
	return e == PreToolUse || e == PostToolUse
}

// IsStop returns true for Stop and SubagentStop
func (e HookEvent) IsStop() bool {
	return e == Stop || e == SubagentStop
}

// ShortName returns the lower-case command name used by the harness CLI
func (e HookEvent) ShortName() string {
	switch e {
	case PreToolUse:
		return "pretool"
	case PostToolUse:
		return "posttool"
	case Notification:
		return "notification"
	case Stop:
		return "stop"
	case SubagentStop:
		return "subagentstop"
	}
	return strings.ToLower(string(e))
}

// ParseEventName accepts canonical event names and harness short names, case-insensitively
func ParseEventName(name string) (HookEvent, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, e := range AllEvents {
		if n == strings.ToLower(string(e)) || n == e.ShortName() {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown event type: %s (must be one of: pretool, posttool, notification, stop, subagentstop)", name)
}
