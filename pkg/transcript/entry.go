// Package transcript parses the JSON Lines transcript a host agent writes for
// each session. Every line is parsed on its own, so a corrupt or truncated line
// is reported without losing the entries around it.
package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/mattn/go-runewidth"
)

// EntryType is the "type" discriminator of a transcript line
type EntryType string

const (
	EntrySystem    EntryType = "system"
	EntryUser      EntryType = "user"
	EntryAssistant EntryType = "assistant"
	EntryResult    EntryType = "result"
	EntrySummary   EntryType = "summary"
)

// PreviewWidth is the display width of message previews in descriptions
const PreviewWidth = 50

// Entry is one parsed transcript line
type Entry interface {
	Type() EntryType
	Description() string
}

// Envelope holds the fields shared by conversation entries. Every field is optional.
type Envelope struct {
	Kind        EntryType `json:"type"`
	UUID        string    `json:"uuid,omitempty"`
	ParentUUID  string    `json:"parentUuid,omitempty"`
	SessionID   string    `json:"sessionId,omitempty"`
	Timestamp   string    `json:"timestamp,omitempty"`
	CWD         string    `json:"cwd,omitempty"`
	Version     string    `json:"version,omitempty"`
	GitBranch   string    `json:"gitBranch,omitempty"`
	UserType    string    `json:"userType,omitempty"`
	IsSidechain bool      `json:"isSidechain,omitempty"`
}

// SystemEntry is session metadata, conventionally the first line
type SystemEntry struct {
	Envelope
	Subtype          string   `json:"subtype,omitempty"`
	Model            string   `json:"model,omitempty"`
	Tools            []string `json:"tools,omitempty"`
	Content          string   `json:"content,omitempty"`
	Level            string   `json:"level,omitempty"`
	IsMeta           bool     `json:"isMeta,omitempty"`
	ToolUseID        string   `json:"toolUseID,omitempty"`
	StreamSessionID  string   `json:"session_id,omitempty"`
	WorkingDirectory string   `json:"working_directory,omitempty"`
}

func (SystemEntry) Type() EntryType { return EntrySystem }

func (e SystemEntry) Description() string {
	subtype := e.Subtype
	if subtype == "" {
		subtype = "init"
	}
	return "System: " + subtype
}

// Session returns the session id in either the transcript or the stream spelling
func (e SystemEntry) Session() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	return e.StreamSessionID
}

// UserEntry is a prompt or a batch of tool results sent to the model
type UserEntry struct {
	Envelope
	Message       Message         `json:"message"`
	ToolUseResult json.RawMessage `json:"toolUseResult,omitempty"`
}

func (UserEntry) Type() EntryType { return EntryUser }

func (e UserEntry) Description() string {
	if text := e.Message.Content.Text(); strings.TrimSpace(text) != "" {
		return "User: " + Preview(text, PreviewWidth)
	}
	if n := e.Message.Content.CountToolResults(); n > 0 {
		return fmt.Sprintf("User: %d tool results", n)
	}
	return "User: No content"
}

// AssistantEntry is a model response
type AssistantEntry struct {
	Envelope
	Message           Message `json:"message"`
	RequestID         string  `json:"requestId,omitempty"`
	IsAPIErrorMessage bool    `json:"isApiErrorMessage,omitempty"`
}

func (AssistantEntry) Type() EntryType { return EntryAssistant }

func (e AssistantEntry) Description() string {
	parts := []string{"Assistant"}
	if e.Message.HasThinking() {
		parts = append(parts, "with thinking")
	}
	if n := e.Message.CountToolUses(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d tool uses", n))
	}
	if n := len(e.Message.CodeOutputs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d code outputs", n))
	}
	return strings.Join(parts, ": ")
}

// ResultEntry closes a non-interactive run
type ResultEntry struct {
	Envelope
	Subtype         string  `json:"subtype,omitempty"`
	Status          string  `json:"status,omitempty"`
	IsError         bool    `json:"is_error,omitempty"`
	Duration        float64 `json:"duration,omitempty"`
	DurationMs      int64   `json:"duration_ms,omitempty"`
	DurationAPIMs   int64   `json:"duration_api_ms,omitempty"`
	NumTurns        int     `json:"num_turns,omitempty"`
	FinalMessage    string  `json:"result,omitempty"`
	TotalCostUSD    float64 `json:"total_cost_usd,omitempty"`
	TokenUsage      *Usage  `json:"tokenUsage,omitempty"`
	Usage           *Usage  `json:"usage,omitempty"`
	StreamSessionID string  `json:"session_id,omitempty"`
}

func (ResultEntry) Type() EntryType { return EntryResult }

func (e ResultEntry) Description() string {
	status := e.Status
	if status == "" {
		status = e.Subtype
	}
	if status == "" {
		status = "unknown"
	}
	return "Result: " + status
}

// Tokens returns whichever usage block the line carried
func (e ResultEntry) Tokens() *Usage {
	if e.Usage != nil {
		return e.Usage
	}
	return e.TokenUsage
}

// SummaryEntry is written when the host compacts a conversation
type SummaryEntry struct {
	Kind     EntryType `json:"type"`
	Summary  string    `json:"summary"`
	LeafUUID string    `json:"leafUuid,omitempty"`
}

func (SummaryEntry) Type() EntryType { return EntrySummary }

func (e SummaryEntry) Description() string {
	if e.Summary == "" {
		return "Summary"
	}
	return "Summary: " + Preview(e.Summary, PreviewWidth)
}

// Usage is token accounting for a message or a run
type Usage struct {
	InputTokens              int64  `json:"input_tokens,omitempty"`
	OutputTokens             int64  `json:"output_tokens,omitempty"`
	CacheCreationInputTokens int64  `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int64  `json:"cache_read_input_tokens,omitempty"`
	TotalTokens              int64  `json:"total_tokens,omitempty"`
	ServiceTier              string `json:"service_tier,omitempty"`
}

// Total returns TotalTokens when reported, otherwise input plus output
func (u Usage) Total() int64 {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.InputTokens + u.OutputTokens
}

// Preview collapses whitespace and truncates s to width display cells, adding "..." when cut
func Preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "") + "..."
}

// DebugJSON pretty-prints an entry
func DebugJSON(e Entry) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling %s entry: %w", e.Type(), err)
	}
	return string(data), nil
}
