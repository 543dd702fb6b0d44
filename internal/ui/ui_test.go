package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osi4iot/hookkit/internal/harness"
	"github.com/osi4iot/hookkit/pkg/hooks"
	"github.com/osi4iot/hookkit/pkg/transcript"
)

func plainOutput() (*Output, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewOutput(&buf, ColorNever), &buf
}

func TestColorModeFromFlags(t *testing.T) {
	assert.Equal(t, ColorAlways, ColorModeFromFlags(true, false, "never"))
	assert.Equal(t, ColorNever, ColorModeFromFlags(false, true, "always"))
	assert.Equal(t, ColorNever, ColorModeFromFlags(false, false, "never"))
	assert.Equal(t, ColorAuto, ColorModeFromFlags(false, false, ""))
	assert.Equal(t, ColorAuto, ColorModeFromFlags(false, false, "bogus"))
}

func TestOutputColorModes(t *testing.T) {
	o, buf := plainOutput()
	assert.False(t, o.Colored())
	o.H1("Execution")
	o.JSON([]byte(`{"a":1}`))
	assert.Equal(t, "\n=== Execution ===\n{\n  \"a\": 1\n}\n", buf.String())

	var colored bytes.Buffer
	c := NewOutput(&colored, ColorAlways)
	assert.True(t, c.Colored())
	c.JSON([]byte(`{"a":1}`))
	assert.Contains(t, colored.String(), "\x1b[")

	// a bytes.Buffer is never a terminal
	var auto bytes.Buffer
	assert.False(t, NewOutput(&auto, ColorAuto).Colored())
}

func TestOutputStream(t *testing.T) {
	o, buf := plainOutput()
	o.Stream("line one\nline two\n\n", true)
	assert.Equal(t, "line one\nline two\n", buf.String())

	var colored bytes.Buffer
	c := NewOutput(&colored, ColorAlways)
	c.Stream("line one\nline two", true)
	out := colored.String()
	assert.Contains(t, out, "┃")
	assert.Contains(t, out, "line one")
	assert.Equal(t, 2, strings.Count(out, "┃"), "one border cell per line")
}

func TestOutputInvalidJSON(t *testing.T) {
	o, buf := plainOutput()
	o.JSON([]byte("not json"))
	assert.Equal(t, "not json\n", buf.String())
}

func result(kind hooks.HookEvent, exitCode int, stdout, stderr string) *harness.Result {
	input, _ := harness.BuildInput(kind, harness.InputOptions{SessionID: "s", TranscriptPath: "/t"})
	return &harness.Result{
		Command:   "./hook.sh --flag",
		Input:     input,
		InputJSON: []byte(`{"session_id":"s"}`),
		ExitCode:  exitCode,
		Stdout:    []byte(stdout),
		Stderr:    []byte(stderr),
		Duration:  12 * time.Millisecond,
		Decision:  hooks.Classify(exitCode, []byte(stdout), []byte(stderr), kind),
	}
}

func TestRenderResultApprove(t *testing.T) {
	o, buf := plainOutput()
	RenderResult(o, result(hooks.PreToolUse, 0, `{"decision":"approve","reason":"safe command"}`, ""))

	out := buf.String()
	for _, want := range []string{
		"=== Running Hook ===", "Command: ./hook.sh --flag",
		"=== Input JSON ===", `"session_id": "s"`,
		"=== Execution ===", "Exit Code: 0 ✓", "Duration: 12ms",
		"=== STDOUT ===", "=== Hook Output (Parsed) ===",
		"=== What the Agent/User Would See ===", "Decision: APPROVE",
		"User sees: safe command", "Agent sees: (nothing, tool proceeds)",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "STDERR")
}

func TestRenderResultBlock(t *testing.T) {
	o, buf := plainOutput()
	RenderResult(o, result(hooks.PreToolUse, 2, "", "rm is not allowed\n"))

	out := buf.String()
	assert.Contains(t, out, "Exit Code: 2 ✗")
	assert.Contains(t, out, "=== STDERR ===\nrm is not allowed\n")
	assert.Contains(t, out, "Decision: BLOCK")
	assert.Contains(t, out, "User sees: Tool blocked by hook")
	assert.Contains(t, out, "Agent sees: rm is not allowed")
	assert.NotContains(t, out, "Hook Output")
}

func TestRenderResultRawOutputAndStop(t *testing.T) {
	o, buf := plainOutput()
	RenderResult(o, result(hooks.Stop, 0, "all good", ""))
	out := buf.String()
	assert.Contains(t, out, "=== Hook Output (Raw - Failed to parse) ===")
	assert.Contains(t, out, "Parse error: stdout is not valid JSON")
	assert.Contains(t, out, "Decision: NONE (agent stops normally)")

	o, buf = plainOutput()
	RenderResult(o, result(hooks.Stop, 0, `{"continue":false,"stopReason":"quota reached","suppressOutput":true}`, ""))
	out = buf.String()
	assert.Contains(t, out, "Agent would STOP processing")
	assert.Contains(t, out, "Stop reason shown to user: quota reached")
	assert.Contains(t, out, "Output would be hidden in transcript mode")
}

func TestRenderSuite(t *testing.T) {
	o, buf := plainOutput()
	summary := RenderSuite(o, []harness.CaseResult{
		{Case: harness.Case{Name: "ok"}, Result: &harness.Result{Duration: time.Millisecond}},
		{Case: harness.Case{Name: "bad"}, Failures: []string{"expected control block, got passthrough"}},
		{Case: harness.Case{Name: "skip", Matcher: "Edit"}, Skipped: true},
	})
	assert.Equal(t, harness.Summary{Passed: 1, Failed: 1, Skipped: 1}, summary)

	out := buf.String()
	assert.Contains(t, out, "✓ ok")
	assert.Contains(t, out, "✗ bad\n    expected control block, got passthrough")
	assert.Contains(t, out, "- skip (skipped: matcher Edit)")
	assert.Contains(t, out, "1 passed, 1 failed, 1 skipped")
}

func TestRenderTranscript(t *testing.T) {
	data := []byte(strings.Join([]string{
		`{"type":"user","message":{"role":"user","content":"Fix the **tests**"}}`,
		`{"type":"assistant", oops`,
		`{"type":"summary","summary":"Fixing tests","leafUuid":"x"}`,
	}, "\n"))

	o, buf := plainOutput()
	res := RenderTranscript(o, "session.jsonl", data, TranscriptOptions{})
	require.Len(t, res.Entries, 2)
	require.Len(t, res.Errors, 1)

	out := buf.String()
	assert.Contains(t, out, "Total lines: 3")
	assert.Contains(t, out, "Successfully parsed entries: 2")
	assert.Contains(t, out, "Failed lines: 1")
	assert.Contains(t, out, "Entry 1: User: Fix the **tests**")
	assert.Contains(t, out, "Error at line 2:")
	assert.Contains(t, out, "Entry 2: Summary: Fixing tests")
	assert.Less(t, strings.Index(out, "Entry 1"), strings.Index(out, "Error at line 2"))
	assert.Less(t, strings.Index(out, "Error at line 2"), strings.Index(out, "Entry 2"))

	o, buf = plainOutput()
	RenderTranscript(o, "session.jsonl", data, TranscriptOptions{Markdown: true})
	assert.Contains(t, buf.String(), "tests")
	assert.NotContains(t, buf.String(), `"type": "user"`)
}

func TestRenderLineError(t *testing.T) {
	o, buf := plainOutput()
	res := RenderTranscript(NewOutput(&bytes.Buffer{}, ColorNever), "x", []byte(`{"type":"bogus","n":1}`+"\n"), TranscriptOptions{})
	require.Len(t, res.Errors, 1)

	RenderLineError(o, &res.Errors[0])
	out := buf.String()
	assert.Contains(t, out, "failed to parse transcript at line 1")
	assert.Contains(t, out, "Raw line content:")
	assert.Contains(t, out, "\"n\": 1")
}

func TestBrowserModel(t *testing.T) {
	b := newBrowser("session.jsonl", strings.Repeat("line\n", 100))
	assert.Equal(t, "Loading...", b.View())

	model, _ := b.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	b = model.(*browser)
	require.True(t, b.ready)
	assert.Contains(t, b.View(), "session.jsonl")
	assert.Contains(t, b.View(), "q quit")

	b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	assert.True(t, b.viewport.AtBottom())

	_, cmd := b.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUsageTracker(t *testing.T) {
	ut := NewUsageTracker()
	assert.Empty(t, ut.RenderUsageInfo())

	data := []byte(strings.Join([]string{
		`{"type":"assistant","message":{"role":"assistant","content":"a","usage":{"input_tokens":1200,"output_tokens":350}}}`,
		`{"type":"assistant","message":{"role":"assistant","content":"b","usage":{"input_tokens":800,"output_tokens":50,"cache_read_input_tokens":4000}}}`,
	}, "\n"))

	o, buf := plainOutput()
	RenderTranscript(o, "session.jsonl", data, TranscriptOptions{})
	assert.Contains(t, buf.String(), "Tokens: 2.4K (in 2.0K, out 400, cache read 4.0K, cache write 0) | Requests: 2")

	ut.UpdateUsage(transcript.Usage{InputTokens: 10, OutputTokens: 5})
	assert.Equal(t, "15 (in 10, out 5) | Requests: 1", ut.RenderUsageInfo())

	ut.Add(transcript.ResultEntry{Usage: &transcript.Usage{InputTokens: 2500000, OutputTokens: 1000}})
	stats := ut.GetSessionStats()
	assert.Equal(t, int64(2500000), stats.TotalInputTokens)
	assert.Equal(t, "2.5M (in 2.5M, out 1.0K) | Requests: 1", ut.RenderUsageInfo())
}
