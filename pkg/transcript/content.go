package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// Content block types
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockThinking   = "thinking"
)

var errContentShape = errors.New("content must be a string or an array of blocks")

// Message is the model-facing payload of a user or assistant entry
type Message struct {
	Role        string       `json:"role,omitempty"`
	ID          string       `json:"id,omitempty"`
	Type        string       `json:"type,omitempty"`
	Model       string       `json:"model,omitempty"`
	Content     Content      `json:"content"`
	Thinking    string       `json:"thinking,omitempty"`
	ToolUses    []ToolUse    `json:"toolUses,omitempty"`
	CodeOutputs []CodeOutput `json:"codeOutputs,omitempty"`
	StopReason  string       `json:"stop_reason,omitempty"`
	Usage       *Usage       `json:"usage,omitempty"`
}

// HasThinking reports a thinking field or block
func (m Message) HasThinking() bool {
	return m.Thinking != "" || m.Content.count(BlockThinking) > 0
}

// CountToolUses counts tool_use blocks plus legacy toolUses entries
func (m Message) CountToolUses() int {
	return len(m.ToolUses) + m.Content.count(BlockToolUse)
}

// ToolUse is the flattened tool call form some transcripts carry on the message
type ToolUse struct {
	ToolName   string          `json:"toolName"`
	ToolInput  json.RawMessage `json:"toolInput,omitempty"`
	ToolOutput json.RawMessage `json:"toolOutput,omitempty"`
}

// CodeOutput is an executed code snippet attached to a message
type CodeOutput struct {
	Code     string `json:"code"`
	Output   string `json:"output,omitempty"`
	Language string `json:"language,omitempty"`
}

// Block is one element of array-form content. Fields are populated according to Type;
// unknown block types are kept with only Type set.
type Block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	Signature string          `json:"signature,omitempty"`
}

// ResultText flattens a tool_result block's content, which may be a string or an array of text items
func (b Block) ResultText() string {
	r := gjson.ParseBytes(b.Content)
	if r.Type == gjson.String {
		return r.Str
	}
	var parts []string
	r.ForEach(func(_, item gjson.Result) bool {
		if text := item.Get("text"); text.Type == gjson.String {
			parts = append(parts, text.Str)
		}
		return true
	})
	return strings.Join(parts, "\n")
}

// Content is message content in either string or block-array form
type Content struct {
	text   string
	blocks []Block
	array  bool
}

// TextContent builds string-form content
func TextContent(s string) Content { return Content{text: s} }

// BlockContent builds array-form content
func BlockContent(blocks ...Block) Content { return Content{blocks: blocks, array: true} }

// IsBlocks reports array-form content
func (c Content) IsBlocks() bool { return c.array }

// Blocks returns the content blocks, nil for string content
func (c Content) Blocks() []Block { return c.blocks }

// IsZero reports absent or empty string content
func (c Content) IsZero() bool { return !c.array && c.text == "" }

// Text returns string content, or the text blocks joined by newlines
func (c Content) Text() string {
	if !c.array {
		return c.text
	}
	var parts []string
	for _, b := range c.blocks {
		if b.Type == BlockText {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// CountToolResults counts tool_result blocks
func (c Content) CountToolResults() int { return c.count(BlockToolResult) }

func (c Content) count(blockType string) int {
	n := 0
	for _, b := range c.blocks {
		if b.Type == blockType {
			n++
		}
	}
	return n
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.array {
		blocks := c.blocks
		if blocks == nil {
			blocks = []Block{}
		}
		return sonic.Marshal(blocks)
	}
	return sonic.Marshal(c.text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return errContentShape
	}
	switch trimmed[0] {
	case '"':
		*c = Content{}
		return sonic.Unmarshal(trimmed, &c.text)
	case '[':
		var blocks []Block
		if err := sonic.Unmarshal(trimmed, &blocks); err != nil {
			return err
		}
		*c = Content{blocks: blocks, array: true}
		return nil
	case 'n':
		*c = Content{}
		return nil
	}
	return errContentShape
}
