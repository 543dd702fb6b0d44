package cmd

import (
	"fmt"

	"github.com/osi4iot/hookkit/internal/harness"
	"github.com/osi4iot/hookkit/internal/ui"
	"github.com/osi4iot/hookkit/pkg/hooks"
	"github.com/spf13/cobra"
)

// eventFlags holds the flags shared by the event subcommands. Each command
// gets its own copy.
type eventFlags struct {
	sessionID  string
	transcript string
	cwd        string
	timeout    int

	tool             string
	toolInput        []string
	toolInputJSON    []string
	toolResponse     []string
	toolResponseJSON []string

	message string
	title   string
	active  bool
}

func (f *eventFlags) inputOptions() harness.InputOptions {
	cfg := currentConfig()
	opts := harness.InputOptions{
		SessionID:        f.sessionID,
		TranscriptPath:   f.transcript,
		CWD:              f.cwd,
		Tool:             f.tool,
		ToolInput:        f.toolInput,
		ToolInputJSON:    f.toolInputJSON,
		ToolResponse:     f.toolResponse,
		ToolResponseJSON: f.toolResponseJSON,
		Message:          f.message,
		Title:            f.title,
		StopHookActive:   f.active,
	}
	if opts.SessionID == "" {
		opts.SessionID = cfg.Session
	}
	if opts.TranscriptPath == "" {
		opts.TranscriptPath = cfg.Transcript
	}
	if opts.Tool == "" {
		opts.Tool = cfg.Tool
	}
	return opts
}

var eventHelp = map[hooks.HookEvent]string{
	hooks.PreToolUse:   "Test a PreToolUse hook",
	hooks.PostToolUse:  "Test a PostToolUse hook",
	hooks.Notification: "Test a Notification hook",
	hooks.Stop:         "Test a Stop hook",
	hooks.SubagentStop: "Test a SubagentStop hook",
}

func newEventCommands() []*cobra.Command {
	kinds := []hooks.HookEvent{hooks.PreToolUse, hooks.PostToolUse, hooks.Notification, hooks.Stop, hooks.SubagentStop}
	cmds := make([]*cobra.Command, 0, len(kinds))
	for _, kind := range kinds {
		cmds = append(cmds, newEventCommand(kind))
	}
	return cmds
}

func newEventCommand(kind hooks.HookEvent) *cobra.Command {
	f := &eventFlags{}

	cmd := &cobra.Command{
		Use:   kind.ShortName() + " [flags] -- COMMAND [ARGS...]",
		Short: eventHelp[kind],
		Long: eventHelp[kind] + `.

The hook command is spawned directly with the synthetic event JSON on stdin.
hookkit prints the input, the hook's streams and exit code, and explains the
resulting decision. The exit status is 0 whatever the hook returns; it is
non-zero only when the hook cannot be started.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvent(cmd, kind, f, args)
		},
	}

	flags := cmd.Flags()
	// everything from the hook command on belongs to the hook
	flags.SetInterspersed(false)
	flags.StringVar(&f.sessionID, "sessionid", "", "session id (default test-session-<unix millis>)")
	flags.StringVar(&f.transcript, "transcript", "", "transcript path sent to the hook (default /tmp/transcript.json)")
	flags.StringVar(&f.cwd, "cwd", "", "working directory reported to the hook")
	flags.IntVar(&f.timeout, "timeout", 0, "seconds before the hook is killed (default from config, 60)")

	switch {
	case kind.HasTool():
		flags.StringVar(&f.tool, "tool", "", "tool name (default Bash)")
		flags.StringArrayVar(&f.toolInput, "tool-input", nil, "tool input as key=value (repeatable)")
		flags.StringArrayVar(&f.toolInputJSON, "tool-input-json", nil, "tool input as key=<json> (repeatable)")
		if kind == hooks.PostToolUse {
			flags.StringArrayVar(&f.toolResponse, "tool-response", nil, "tool response as key=value (repeatable)")
			flags.StringArrayVar(&f.toolResponseJSON, "tool-response-json", nil, "tool response as key=<json> (repeatable)")
		}
	case kind == hooks.Notification:
		flags.StringVar(&f.message, "message", harness.DefaultNotificationMessage, "notification message")
		flags.StringVar(&f.title, "title", "", "notification title")
	case kind.IsStop():
		flags.BoolVar(&f.active, "active", false, "set stop_hook_active, as when a stop hook already continued the session")
	}
	return cmd
}

func runEvent(cmd *cobra.Command, kind hooks.HookEvent, f *eventFlags, args []string) error {
	input, err := harness.BuildInput(kind, f.inputOptions())
	if err != nil {
		return err
	}

	executor := harness.NewExecutor(timeoutFor(f.timeout))
	res, err := executor.Run(cmd.Context(), input, args)
	if err != nil {
		return fmt.Errorf("running %s hook: %w", kind, err)
	}

	ui.RenderResult(newOutput(cmd), res)
	return nil
}
