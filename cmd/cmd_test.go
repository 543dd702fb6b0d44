package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osi4iot/hookkit/internal/eventlog"
)

// resetFlags restores every flag to its default so commands can be executed
// repeatedly within one test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command in an isolated directory with no config file
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	resetFlags(rootCmd)
	viper.Reset()
	appConfig = nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestEventCommandReport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	hook := writeScript(t, dir, "guard.sh", `cat > input.json
echo '{"decision":"block","reason":"rm is not allowed"}'`)

	out, _, err := execute(t, "", "pretool", "--sessionid", "s-42", "--cwd", "/work", "--tool-input", "command=rm -rf /tmp/x", "--", hook)
	require.NoError(t, err)

	assert.Contains(t, out, "=== Running Hook ===")
	assert.Contains(t, out, "=== Input JSON ===")
	assert.Contains(t, out, "Exit Code: 0 ✓")
	assert.Contains(t, out, "=== Hook Output (Parsed) ===")
	assert.Contains(t, out, "Decision: BLOCK")
	assert.Contains(t, out, "User sees: Tool blocked by hook")
	assert.Contains(t, out, "Agent sees: rm is not allowed")

	sent, err := os.ReadFile(filepath.Join(dir, "input.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"session_id": "s-42",
		"transcript_path": "/tmp/transcript.json",
		"cwd": "/work",
		"hook_event_name": "PreToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "rm -rf /tmp/x"}
	}`, string(sent))
}

func TestEventCommandExitCodes(t *testing.T) {
	dir := t.TempDir()
	hook := writeScript(t, dir, "keep-going.sh", `echo "tests are failing" >&2; exit 2`)

	out, _, err := execute(t, "", "stop", "--active", "--", hook)
	require.NoError(t, err, "a blocking hook is still a successful test run")
	assert.Contains(t, out, "Exit Code: 2 ✗")
	assert.Contains(t, out, "=== STDERR ===")
	assert.Contains(t, out, "Agent sees: tests are failing")

	_, _, err = execute(t, "", "notification", "--", filepath.Join(dir, "missing-hook"))
	assert.Error(t, err)

	_, _, err = execute(t, "", "posttool")
	assert.Error(t, err, "a hook command is required")
}

func TestLogCommand(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := filepath.Join(dir, "session.jsonl")
	require.NoError(t, os.WriteFile(transcriptPath, []byte(
		`{"type":"user","message":{"role":"user","content":"hi"}}`+"\n"+"broken\n"), 0644))

	logPath := filepath.Join(dir, "events.jsonl")
	copyPath := filepath.Join(dir, "copy.jsonl")
	stdin := `{"session_id":"s1","transcript_path":"` + transcriptPath + `","stop_hook_active":false}`

	out, _, err := execute(t, stdin, "log", "stop", logPath, "--transcript", copyPath)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)

	records, err := eventlog.ReadFile(logPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "stop", records[0].Event)
	assert.JSONEq(t, stdin, string(records[0].Data))

	copied, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(copied), "\n"))

	_, _, err = execute(t, stdin, "log", "bogus", logPath)
	assert.Error(t, err)

	_, _, err = execute(t, stdin, "log", "stop", logPath, "--nats-url", "nats://127.0.0.1:4222")
	assert.ErrorContains(t, err, "must be used together")
}

func TestTranscriptCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.jsonl")
	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(good, []byte(
		`{"type":"summary","summary":"greeting"}`+"\n"+
			`{"type":"user","message":{"role":"user","content":"hello there"}}`+"\n"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte(
		`{"type":"summary","summary":"greeting"}`+"\n"+`{"type":`+"\n"), 0644))

	out, _, err := execute(t, "", "transcript", good)
	require.NoError(t, err)
	assert.Contains(t, out, "=== TRANSCRIPT PARSING SUMMARY ===")
	assert.Contains(t, out, "Successfully parsed entries: 2")
	assert.Contains(t, out, "Entry 2: User: hello there")

	out, _, err = execute(t, "", "transcript", bad)
	require.NoError(t, err, "bad lines are reported, not fatal")
	assert.Contains(t, out, "Failed lines: 1")

	out, _, err = execute(t, "", "transcript", "--strict", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "Raw line content:")

	out, _, err = execute(t, "", "transcript", "--verify", good, bad)
	assert.ErrorContains(t, err, "1 of 2 transcripts failed verification")
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)

	out, stderr, err := execute(t, "", "transcript", "--json", bad)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"summary","summary":"greeting"}`, strings.TrimSpace(out))
	assert.Contains(t, stderr, "line 2")
}

func TestSuiteCommands(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, _, err := execute(t, "", "suite", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created .hookkit/suite.yml")

	_, _, err = execute(t, "", "suite", "init")
	assert.ErrorContains(t, err, "already exists")

	out, _, err = execute(t, "", "suite", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "blocks rm -rf")
	assert.Contains(t, out, "./hooks/stop-guard.sh")

	out, _, err = execute(t, "", "suite", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Suite is valid (3 cases)")

	require.NoError(t, os.MkdirAll("hooks", 0755))
	writeScript(t, dir, "hooks/check-bash.sh", `if grep -q 'rm -rf' ; then echo "rm -rf is not allowed" >&2; exit 2; fi`)
	writeScript(t, dir, "hooks/stop-guard.sh", `cat > /dev/null`)

	out, _, err = execute(t, "", "suite", "run", "--parallel", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "3 passed, 0 failed, 0 skipped")
}

func TestSuiteRunFailures(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	suite := `cases:
  - name: expects approval
    event: pretool
    command: ${var://hook}
    expect:
      control: approve
`
	require.NoError(t, os.WriteFile("suite.yml", []byte(suite), 0644))

	out, _, err := execute(t, "", "suite", "run", "--var", "hook=cat > /dev/null", "suite.yml")
	assert.ErrorContains(t, err, "1 of 1 cases failed")
	assert.Contains(t, out, "✗ expects approval")
	assert.Contains(t, out, "0 passed, 1 failed, 0 skipped")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	hook := writeScript(t, dir, "echo.sh", `cat`)

	require.NoError(t, os.WriteFile(".hookkit.toml", []byte("session = \"from-config\"\ntool = \"Edit\"\n"), 0644))

	out, _, err := execute(t, "", "pretool", "--", hook)
	require.NoError(t, err)
	assert.Contains(t, out, `"from-config"`)
	assert.Contains(t, out, `"Edit"`)

	require.NoError(t, os.WriteFile(".hookkit.toml", []byte("timeout = 9999\n"), 0644))
	_, _, err = execute(t, "", "pretool", "--", hook)
	assert.ErrorContains(t, err, "timeout must be between")
}
