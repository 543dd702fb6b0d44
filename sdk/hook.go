// Package sdk is the runtime for writing hooks in Go.
//
// A hook program reads one event from stdin, decides, and answers on stdout:
//
//	h := sdk.New()
//	in, err := h.PreToolUse()
//	if err != nil {
//		h.Fail(1, err.Error())
//	}
//	if strings.Contains(in.ToolInput.String("command"), "rm -rf") {
//		h.Respond(hooks.PreToolUse, hooks.Block("dangerous command"))
//		return
//	}
//	h.Respond(hooks.PreToolUse, hooks.Approve("command validated"))
package sdk

import (
	"fmt"
	"io"
	"os"

	"github.com/osi4iot/hookkit/pkg/hooks"
	"github.com/osi4iot/hookkit/pkg/transcript"
)

// Hook reads events and writes responses for a single hook invocation
type Hook struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
}

// Option configures a Hook
type Option func(*Hook)

// WithStdin replaces os.Stdin as the event source
func WithStdin(r io.Reader) Option {
	return func(h *Hook) { h.stdin = r }
}

// WithStdout replaces os.Stdout as the response destination
func WithStdout(w io.Writer) Option {
	return func(h *Hook) { h.stdout = w }
}

// WithStderr replaces os.Stderr for exit-code messages
func WithStderr(w io.Writer) Option {
	return func(h *Hook) { h.stderr = w }
}

// WithExit replaces os.Exit. Tests use it to observe exit codes.
func WithExit(exit func(int)) Option {
	return func(h *Hook) { h.exit = exit }
}

// New creates a Hook bound to the process streams unless overridden
func New(opts ...Option) *Hook {
	h := &Hook{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Read decodes the event on stdin as kind
func (h *Hook) Read(kind hooks.HookEvent) (hooks.Input, error) {
	return hooks.ReadInput(h.stdin, kind)
}

// PreToolUse reads a PreToolUse event
func (h *Hook) PreToolUse() (*hooks.PreToolUseInput, error) {
	return read[hooks.PreToolUseInput](h, hooks.PreToolUse)
}

// PostToolUse reads a PostToolUse event
func (h *Hook) PostToolUse() (*hooks.PostToolUseInput, error) {
	return read[hooks.PostToolUseInput](h, hooks.PostToolUse)
}

// Notification reads a Notification event
func (h *Hook) Notification() (*hooks.NotificationInput, error) {
	return read[hooks.NotificationInput](h, hooks.Notification)
}

// Stop reads a Stop event
func (h *Hook) Stop() (*hooks.StopInput, error) {
	return read[hooks.StopInput](h, hooks.Stop)
}

// SubagentStop reads a SubagentStop event
func (h *Hook) SubagentStop() (*hooks.SubagentStopInput, error) {
	return read[hooks.SubagentStopInput](h, hooks.SubagentStop)
}

func read[T any](h *Hook, kind hooks.HookEvent) (*T, error) {
	in, err := h.Read(kind)
	if err != nil {
		return nil, err
	}
	typed, ok := in.(*T)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T for %s", in, kind)
	}
	return typed, nil
}

// Respond writes the JSON response for d. Decisions that kind cannot carry
// are rejected without writing anything.
func (h *Hook) Respond(kind hooks.HookEvent, d hooks.Decision) error {
	return hooks.Respond(h.stdout, kind, d)
}

// RespondExit answers through the exit-code interface instead of JSON: the
// streams from hooks.EncodeExit are written and the process exits with its
// code. Decisions that need structured output return an error.
func (h *Hook) RespondExit(kind hooks.HookEvent, d hooks.Decision) error {
	resp, err := hooks.EncodeExit(kind, d)
	if err != nil {
		return err
	}
	if len(resp.Stdout) > 0 {
		if _, err := h.stdout.Write(resp.Stdout); err != nil {
			return fmt.Errorf("writing stdout: %w", err)
		}
	}
	if len(resp.Stderr) > 0 {
		if _, err := h.stderr.Write(resp.Stderr); err != nil {
			return fmt.Errorf("writing stderr: %w", err)
		}
	}
	h.exit(resp.ExitCode)
	return nil
}

// Transcript parses the session transcript referenced by in
func (h *Hook) Transcript(in hooks.Input) (*transcript.Result, error) {
	path := in.Common().TranscriptPath
	if path == "" {
		return nil, fmt.Errorf("input has no transcript path")
	}
	return transcript.ParseFile(path)
}

// Success exits 0. Stdout is shown to the user in transcript mode.
func (h *Hook) Success() {
	h.exit(hooks.ExitSuccess)
}

// Block writes reason to stderr and exits 2, which the host feeds back to
// the agent. For tool events this blocks the call, for stop events it keeps
// the agent running.
func (h *Hook) Block(reason string) {
	if reason != "" {
		fmt.Fprint(h.stderr, reason)
	}
	h.exit(hooks.ExitBlock)
}

// Fail writes message to stderr and exits with a non-blocking error code.
// Codes 0 and 2 are reserved and return an error instead of exiting.
func (h *Hook) Fail(code int, message string) error {
	code, err := hooks.ExitCode(code)
	if err != nil {
		return err
	}
	if message != "" {
		fmt.Fprint(h.stderr, message)
	}
	h.exit(code)
	return nil
}

// Exit is the package-level form of Fail for hooks that do not hold a Hook.
func Exit(code int) error {
	return New().Fail(code, "")
}
