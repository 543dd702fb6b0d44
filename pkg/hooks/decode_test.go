package hooks

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePreToolUse(t *testing.T) {
	data := []byte(`{
		"session_id": "abc123",
		"transcript_path": "/tmp/t.jsonl",
		"hook_event_name": "PreToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "rm -rf /", "timeout": 30},
		"permission_mode": "default"
	}`)

	in, err := DecodePreToolUse(data)
	require.NoError(t, err)
	assert.Equal(t, "abc123", in.SessionID)
	assert.Equal(t, "/tmp/t.jsonl", in.TranscriptPath)
	assert.Equal(t, "Bash", in.ToolName)
	assert.Equal(t, "rm -rf /", in.ToolInput.String("command"))
	assert.Equal(t, int64(30), in.ToolInput.Field("timeout").Int())
	assert.Equal(t, "", in.ToolInput.String("timeout"))
	assert.Equal(t, PreToolUse, in.Event())
}

func TestDecodeDispatch(t *testing.T) {
	inputs := map[HookEvent]string{
		PreToolUse:   `{"session_id":"s","transcript_path":"t","tool_name":"Edit","tool_input":{}}`,
		PostToolUse:  `{"session_id":"s","transcript_path":"t","tool_name":"Edit","tool_input":{},"tool_response":{"success":true}}`,
		Notification: `{"session_id":"s","transcript_path":"t","hook_event_name":"Notification","message":"waiting"}`,
		Stop:         `{"session_id":"s","transcript_path":"t","stop_hook_active":true}`,
		SubagentStop: `{"session_id":"s","transcript_path":"t"}`,
	}
	for kind, payload := range inputs {
		t.Run(string(kind), func(t *testing.T) {
			in, err := Decode(kind, []byte(payload))
			require.NoError(t, err)
			assert.Equal(t, kind, in.Event())
			assert.Equal(t, "s", in.Common().SessionID)
		})
	}

	stop, err := DecodeStop([]byte(inputs[Stop]))
	require.NoError(t, err)
	assert.True(t, stop.StopHookActive)

	sub, err := DecodeSubagentStop([]byte(inputs[SubagentStop]))
	require.NoError(t, err)
	assert.False(t, sub.StopHookActive)

	note, err := DecodeNotification([]byte(inputs[Notification]))
	require.NoError(t, err)
	assert.Equal(t, "waiting", note.Message)
	assert.Empty(t, note.Title)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name     string
		kind     HookEvent
		payload  string
		field    string
		expected string
		got      string
	}{
		{
			name:     "missing session id",
			kind:     Stop,
			payload:  `{"transcript_path":"t"}`,
			field:    "session_id",
			expected: "string",
			got:      "missing",
		},
		{
			name:     "numeric transcript path",
			kind:     SubagentStop,
			payload:  `{"session_id":"s","transcript_path":42}`,
			field:    "transcript_path",
			expected: "string",
			got:      "number",
		},
		{
			name:     "missing tool name",
			kind:     PreToolUse,
			payload:  `{"session_id":"s","transcript_path":"t","tool_input":{}}`,
			field:    "tool_name",
			expected: "string",
			got:      "missing",
		},
		{
			name:     "tool input is a string",
			kind:     PreToolUse,
			payload:  `{"session_id":"s","transcript_path":"t","tool_name":"Bash","tool_input":"ls"}`,
			field:    "tool_input",
			expected: "object",
			got:      "string",
		},
		{
			name:     "tool response is an array",
			kind:     PostToolUse,
			payload:  `{"session_id":"s","transcript_path":"t","tool_name":"Bash","tool_input":{},"tool_response":[]}`,
			field:    "tool_response",
			expected: "object",
			got:      "array",
		},
		{
			name:     "stop hook active is a string",
			kind:     Stop,
			payload:  `{"session_id":"s","transcript_path":"t","stop_hook_active":"yes"}`,
			field:    "stop_hook_active",
			expected: "boolean",
			got:      "string",
		},
		{
			name:     "notification without event name",
			kind:     Notification,
			payload:  `{"session_id":"s","transcript_path":"t","message":"m"}`,
			field:    "hook_event_name",
			expected: "string",
			got:      "missing",
		},
		{
			name:     "notification with wrong event name",
			kind:     Notification,
			payload:  `{"session_id":"s","transcript_path":"t","message":"m","hook_event_name":"Stop"}`,
			field:    "hook_event_name",
			expected: `"Notification"`,
			got:      `"Stop"`,
		},
		{
			name:     "null message",
			kind:     Notification,
			payload:  `{"session_id":"s","transcript_path":"t","message":null,"hook_event_name":"Notification"}`,
			field:    "message",
			expected: "string",
			got:      "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.kind, []byte(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))

			var malformed *MalformedInputError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.kind, malformed.Event)
			assert.Equal(t, tt.field, malformed.Field)
			assert.Equal(t, tt.expected, malformed.Expected)
			assert.Equal(t, tt.got, malformed.Got)
			assert.True(t, strings.Contains(err.Error(), tt.field))
		})
	}
}

func TestDecodeNotAnObject(t *testing.T) {
	for _, payload := range []string{``, `[]`, `"text"`, `{"session_id":"s"`, `{} {}`} {
		_, err := Decode(Stop, []byte(payload))
		require.Error(t, err, payload)
		assert.ErrorIs(t, err, ErrMalformedInput)
		assert.Contains(t, err.Error(), "payload must be a JSON object")
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	_, err := DecodeStop([]byte("{\"session_id\":\"s\xff\",\"transcript_path\":\"t\"}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestDecodeDuplicateKeysLastWins(t *testing.T) {
	_, err := DecodeStop([]byte(`{"session_id":"s","transcript_path":"t","session_id":7}`))
	require.Error(t, err)
	var malformed *MalformedInputError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "session_id", malformed.Field)

	in, err := DecodeStop([]byte(`{"session_id":1,"session_id":"s","transcript_path":"t"}`))
	require.NoError(t, err)
	assert.Equal(t, "s", in.SessionID)
}

func TestDecodeOptionalNulls(t *testing.T) {
	in, err := DecodeNotification([]byte(`{"session_id":"s","transcript_path":"t","message":"m","hook_event_name":"Notification","title":null,"cwd":null}`))
	require.NoError(t, err)
	assert.Empty(t, in.Title)
	assert.Empty(t, in.CWD)
}

func TestReadInput(t *testing.T) {
	in, err := ReadInput(strings.NewReader(`{"session_id":"s","transcript_path":"t"}`), Stop)
	require.NoError(t, err)
	assert.Equal(t, Stop, in.Event())

	_, err = ReadInput(strings.NewReader(`{}`), Stop)
	assert.ErrorIs(t, err, ErrMalformedInput)
}
