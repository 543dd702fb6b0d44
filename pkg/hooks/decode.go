package hooks

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

type fieldType int

const (
	typeString fieldType = iota
	typeObject
	typeBool
)

func (t fieldType) String() string {
	switch t {
	case typeObject:
		return "object"
	case typeBool:
		return "boolean"
	}
	return "string"
}

func (t fieldType) matches(r gjson.Result) bool {
	switch t {
	case typeObject:
		return r.IsObject()
	case typeBool:
		return r.IsBool()
	}
	return r.Type == gjson.String
}

type fieldRule struct {
	name     string
	typ      fieldType
	required bool
	equals   string // required literal value for string fields
}

var commonRules = []fieldRule{
	{name: "session_id", typ: typeString, required: true},
	{name: "transcript_path", typ: typeString, required: true},
	{name: "cwd", typ: typeString},
}

var eventRules = map[HookEvent][]fieldRule{
	PreToolUse: {
		{name: "tool_name", typ: typeString, required: true},
		{name: "tool_input", typ: typeObject, required: true},
	},
	PostToolUse: {
		{name: "tool_name", typ: typeString, required: true},
		{name: "tool_input", typ: typeObject, required: true},
		{name: "tool_response", typ: typeObject, required: true},
	},
	Notification: {
		{name: "message", typ: typeString, required: true},
		{name: "hook_event_name", typ: typeString, required: true, equals: string(Notification)},
		{name: "title", typ: typeString},
	},
	Stop: {
		{name: "stop_hook_active", typ: typeBool},
	},
	SubagentStop: {
		{name: "stop_hook_active", typ: typeBool},
	},
}

// Decode parses a hook's stdin payload into the input record for kind.
// Unknown fields are ignored; a missing or mistyped required field is a *MalformedInputError.
func Decode(kind HookEvent, data []byte) (Input, error) {
	switch kind {
	case PreToolUse:
		return DecodePreToolUse(data)
	case PostToolUse:
		return DecodePostToolUse(data)
	case Notification:
		return DecodeNotification(data)
	case Stop:
		return DecodeStop(data)
	case SubagentStop:
		return DecodeSubagentStop(data)
	}
	return nil, fmt.Errorf("decoding input: unknown event %q", kind)
}

func DecodePreToolUse(data []byte) (*PreToolUseInput, error) {
	return decodeAs[PreToolUseInput](PreToolUse, data)
}

func DecodePostToolUse(data []byte) (*PostToolUseInput, error) {
	return decodeAs[PostToolUseInput](PostToolUse, data)
}

func DecodeNotification(data []byte) (*NotificationInput, error) {
	return decodeAs[NotificationInput](Notification, data)
}

func DecodeStop(data []byte) (*StopInput, error) {
	return decodeAs[StopInput](Stop, data)
}

func DecodeSubagentStop(data []byte) (*SubagentStopInput, error) {
	return decodeAs[SubagentStopInput](SubagentStop, data)
}

func decodeAs[T any](kind HookEvent, data []byte) (*T, error) {
	if err := checkFields(kind, data); err != nil {
		return nil, err
	}
	var in T
	if err := sonic.Unmarshal(data, &in); err != nil {
		return nil, &MalformedInputError{Event: kind, Err: err}
	}
	return &in, nil
}

func checkFields(kind HookEvent, data []byte) error {
	if !isSingleObject(data) {
		return &MalformedInputError{Event: kind}
	}
	fields := topLevelFields(gjson.ParseBytes(data))
	rules := append(append([]fieldRule{}, commonRules...), eventRules[kind]...)
	for _, rule := range rules {
		r := fields[rule.name]
		if !r.Exists() || (!rule.required && r.Type == gjson.Null) {
			if rule.required {
				return &MalformedInputError{Event: kind, Field: rule.name, Expected: rule.typ.String(), Got: "missing"}
			}
			continue
		}
		if !rule.typ.matches(r) {
			return &MalformedInputError{Event: kind, Field: rule.name, Expected: rule.typ.String(), Got: jsonTypeName(r)}
		}
		if rule.equals != "" && r.Str != rule.equals {
			return &MalformedInputError{Event: kind, Field: rule.name, Expected: fmt.Sprintf("%q", rule.equals), Got: fmt.Sprintf("%q", r.Str)}
		}
	}
	return nil
}

const jsonWhitespace = " \t\r\n"

// isSingleObject reports whether data, ignoring surrounding whitespace, is
// exactly one JSON object encoded as valid UTF-8
func isSingleObject(data []byte) bool {
	trimmed := bytes.Trim(data, jsonWhitespace)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return utf8.Valid(trimmed) && gjson.ValidBytes(trimmed)
}

// topLevelFields indexes an object's keys. A repeated key keeps its last
// value, matching how the host and sonic read the same bytes.
func topLevelFields(obj gjson.Result) map[string]gjson.Result {
	fields := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		fields[key.Str] = value
		return true
	})
	return fields
}

func jsonTypeName(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.IsBool():
		return "boolean"
	}
	switch r.Type {
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	case gjson.Null:
		return "null"
	}
	return "unknown"
}
