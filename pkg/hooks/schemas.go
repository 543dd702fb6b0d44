package hooks

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Input is implemented by the per-event input records read from a hook's stdin
type Input interface {
	Event() HookEvent
	Common() CommonInput
}

// CommonInput contains fields common to all hook inputs
type CommonInput struct {
	SessionID      string    `json:"session_id"`                // Unique session identifier
	TranscriptPath string    `json:"transcript_path"`           // Path to the JSONL transcript
	CWD            string    `json:"cwd,omitempty"`             // Working directory, when the host sends it
	HookEventName  HookEvent `json:"hook_event_name,omitempty"` // Required only for Notification
}

// Common returns the shared fields
func (c CommonInput) Common() CommonInput { return c }

// ToolPayload is a raw JSON object with path lookups
type ToolPayload json.RawMessage

// MarshalJSON emits the payload unchanged, or {} when empty
func (p ToolPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return p, nil
}

// UnmarshalJSON stores a copy of the raw bytes
func (p *ToolPayload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[0:0], data...)
	return nil
}

// Field looks up a value using gjson path syntax (e.g. "command", "edits.0.old_string")
func (p ToolPayload) Field(path string) gjson.Result {
	return gjson.GetBytes(p, path)
}

// String returns the string value at path, or "" if absent or not a string
func (p ToolPayload) String(path string) string {
	r := p.Field(path)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

// PreToolUseInput is passed to PreToolUse hooks
type PreToolUseInput struct {
	CommonInput
	ToolName  string      `json:"tool_name"`
	ToolInput ToolPayload `json:"tool_input"`
}

func (PreToolUseInput) Event() HookEvent { return PreToolUse }

// PostToolUseInput is passed to PostToolUse hooks
type PostToolUseInput struct {
	CommonInput
	ToolName     string      `json:"tool_name"`
	ToolInput    ToolPayload `json:"tool_input"`
	ToolResponse ToolPayload `json:"tool_response"`
}

func (PostToolUseInput) Event() HookEvent { return PostToolUse }

// NotificationInput is passed to Notification hooks. Title is optional.
type NotificationInput struct {
	CommonInput
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
}

func (NotificationInput) Event() HookEvent { return Notification }

// StopInput is passed to Stop hooks
type StopInput struct {
	CommonInput
	StopHookActive bool `json:"stop_hook_active"` // True when a stop hook already continued the session
}

func (StopInput) Event() HookEvent { return Stop }

// SubagentStopInput is passed to SubagentStop hooks
type SubagentStopInput struct {
	CommonInput
	StopHookActive bool `json:"stop_hook_active"`
}

func (SubagentStopInput) Event() HookEvent { return SubagentStop }

// HookOutput is the JSON a hook may print on stdout
type HookOutput struct {
	Decision       string `json:"decision,omitempty"` // "approve", "block", or ""
	Reason         string `json:"reason,omitempty"`
	Continue       *bool  `json:"continue,omitempty"`
	StopReason     string `json:"stopReason,omitempty"`
	SuppressOutput bool   `json:"suppressOutput,omitempty"`
}
