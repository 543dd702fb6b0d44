package harness

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/osi4iot/hookkit/internal/config"
	"github.com/osi4iot/hookkit/pkg/hooks"
)

// DefaultNotificationMessage is sent when --message is not given
const DefaultNotificationMessage = "Test notification"

var (
	defaultBashInput    = hooks.ToolPayload(`{"command":"echo 'test'"}`)
	defaultToolResponse = hooks.ToolPayload(`{"output":"test\n"}`)
)

// InputOptions describes a hook input assembled from CLI flags or a suite case.
// Zero values pick the harness defaults.
type InputOptions struct {
	SessionID      string
	TranscriptPath string
	CWD            string

	Tool             string
	ToolInput        []string // key=value
	ToolInputJSON    []string // key=<json>
	ToolResponse     []string
	ToolResponseJSON []string

	// Encoded objects sent as-is, bypassing the pair lists and defaults
	ToolInputRaw    hooks.ToolPayload
	ToolResponseRaw hooks.ToolPayload

	Message        string
	Title          string
	StopHookActive bool
}

// DefaultSessionID returns test-session-<unix millis>
func DefaultSessionID() string {
	return fmt.Sprintf("test-session-%d", time.Now().UnixMilli())
}

// BuildInput constructs the input record for kind
func BuildInput(kind hooks.HookEvent, opts InputOptions) (hooks.Input, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown event type: %s", kind)
	}

	common := hooks.CommonInput{
		SessionID:      opts.SessionID,
		TranscriptPath: opts.TranscriptPath,
		CWD:            opts.CWD,
		HookEventName:  kind,
	}
	if common.SessionID == "" {
		common.SessionID = DefaultSessionID()
	}
	if common.TranscriptPath == "" {
		common.TranscriptPath = config.DefaultTranscript
	}
	if common.CWD == "" {
		if cwd, err := os.Getwd(); err == nil {
			common.CWD = cwd
		}
	}

	tool := opts.Tool
	if tool == "" {
		tool = config.DefaultTool
	}

	switch kind {
	case hooks.PreToolUse, hooks.PostToolUse:
		toolInput := opts.ToolInputRaw
		if toolInput == nil {
			var err error
			if toolInput, err = payloadOrDefault(opts.ToolInput, opts.ToolInputJSON, defaultToolInput(tool)); err != nil {
				return nil, fmt.Errorf("invalid tool input: %w", err)
			}
		}
		if kind == hooks.PreToolUse {
			return &hooks.PreToolUseInput{CommonInput: common, ToolName: tool, ToolInput: toolInput}, nil
		}
		toolResponse := opts.ToolResponseRaw
		if toolResponse == nil {
			var err error
			if toolResponse, err = payloadOrDefault(opts.ToolResponse, opts.ToolResponseJSON, defaultToolResponse); err != nil {
				return nil, fmt.Errorf("invalid tool response: %w", err)
			}
		}
		return &hooks.PostToolUseInput{CommonInput: common, ToolName: tool, ToolInput: toolInput, ToolResponse: toolResponse}, nil

	case hooks.Notification:
		message := opts.Message
		if message == "" {
			message = DefaultNotificationMessage
		}
		return &hooks.NotificationInput{CommonInput: common, Message: message, Title: opts.Title}, nil

	case hooks.Stop:
		return &hooks.StopInput{CommonInput: common, StopHookActive: opts.StopHookActive}, nil
	}
	return &hooks.SubagentStopInput{CommonInput: common, StopHookActive: opts.StopHookActive}, nil
}

func defaultToolInput(tool string) hooks.ToolPayload {
	if tool == "Bash" {
		return defaultBashInput
	}
	return hooks.ToolPayload("{}")
}

func payloadOrDefault(pairs, jsonPairs []string, def hooks.ToolPayload) (hooks.ToolPayload, error) {
	if len(pairs) == 0 && len(jsonPairs) == 0 {
		return def, nil
	}
	return ParseKeyValues(pairs, jsonPairs)
}

// ParseKeyValues builds a JSON object from key=value string pairs and
// key=<json> pairs. JSON pairs override string pairs with the same key.
func ParseKeyValues(pairs, jsonPairs []string) (hooks.ToolPayload, error) {
	obj := make(map[string]any, len(pairs)+len(jsonPairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid input format '%s'. Expected 'key=value'", pair)
		}
		obj[key] = value
	}

	for _, pair := range jsonPairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid input format '%s'. Expected 'key=json'", pair)
		}
		if !gjson.Valid(value) {
			return nil, fmt.Errorf("failed to parse JSON for key '%s': %s", key, value)
		}
		obj[key] = json.RawMessage(value)
	}

	data, err := sonic.ConfigStd.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encoding key/value input: %w", err)
	}
	return hooks.ToolPayload(data), nil
}

// BuildInputFromMaps is used by suite cases, whose tool payloads are already
// structured values.
func BuildInputFromMaps(kind hooks.HookEvent, opts InputOptions, toolInput, toolResponse map[string]any) (hooks.Input, error) {
	if toolInput != nil {
		data, err := sonic.ConfigStd.Marshal(toolInput)
		if err != nil {
			return nil, fmt.Errorf("invalid tool input: %w", err)
		}
		opts.ToolInputRaw = hooks.ToolPayload(data)
	}
	if toolResponse != nil {
		data, err := sonic.ConfigStd.Marshal(toolResponse)
		if err != nil {
			return nil, fmt.Errorf("invalid tool response: %w", err)
		}
		opts.ToolResponseRaw = hooks.ToolPayload(data)
	}
	return BuildInput(kind, opts)
}
