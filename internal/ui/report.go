package ui

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/osi4iot/hookkit/internal/harness"
	"github.com/osi4iot/hookkit/pkg/hooks"
)

// RenderResult prints the full report for one hook run
func RenderResult(o *Output, res *harness.Result) {
	o.H1("Running Hook")
	o.Label("Command", res.Command)

	o.H1("Input JSON")
	o.JSON(res.InputJSON)

	o.H1("Execution")
	o.Write(o.st.label.Render("Exit Code:") + fmt.Sprintf(" %d ", res.ExitCode))
	if res.ExitCode == 0 {
		o.Success("✓")
	} else {
		o.Error("✗")
	}
	o.Newline()
	o.Label("Duration", res.Duration.Round(time.Millisecond).String())
	if res.TimedOut {
		o.Error("Hook timed out and was killed")
		o.Newline()
	}

	if len(res.Stdout) > 0 {
		o.H1("STDOUT")
		o.Stream(string(res.Stdout), false)
	}
	if len(res.Stderr) > 0 {
		o.H1("STDERR")
		o.Stream(string(res.Stderr), res.ExitCode != 0)
	}

	if res.ExitCode == 0 && len(bytes.TrimSpace(res.Stdout)) > 0 {
		if res.Decision.Path == hooks.PathStructuredJSON {
			o.H1("Hook Output (Parsed)")
			o.JSON(res.Stdout)
		} else {
			o.H1("Hook Output (Raw - Failed to parse)")
			o.Block(string(res.Stdout))
			o.Error("Parse error: " + outputProblem(res.Stdout))
			o.Newline()
		}
	}

	RenderDecision(o, res.Event(), res.Decision)
}

func outputProblem(stdout []byte) string {
	if !gjson.ValidBytes(stdout) {
		return "stdout is not valid JSON; treated as plain text"
	}
	return "stdout is not a single JSON object; treated as plain text"
}

// RenderDecision explains what the agent and the user would see
func RenderDecision(o *Output, kind hooks.HookEvent, d hooks.Decision) {
	o.H1("What the Agent/User Would See")

	o.Write("Decision: ")
	switch d.Control {
	case hooks.ControlApprove:
		o.Success("APPROVE")
	case hooks.ControlBlock:
		o.Error("BLOCK")
	default:
		o.Write(o.st.dimmed.Render("NONE (" + normalFlow(kind) + ")"))
	}
	o.Newline()

	switch d.Audience() {
	case hooks.AudienceAgent:
		o.Label("User sees", blockedNotice(kind))
		o.Label("Agent sees", d.Message)
	case hooks.AudienceUser:
		o.Label("User sees", d.Message)
		if d.Control == hooks.ControlApprove {
			o.Dimmed("Agent sees: (nothing, tool proceeds)")
		} else {
			o.Dimmed("Agent sees: (nothing)")
		}
	}

	if d.Terminates() {
		o.Newline()
		o.Error("Agent would STOP processing")
		o.Newline()
		if d.StopReason != "" {
			o.Label("Stop reason shown to user", d.StopReason)
		}
	}

	if d.SuppressOutput {
		o.Newline()
		o.Dimmed("Output would be hidden in transcript mode")
	}
}

func normalFlow(kind hooks.HookEvent) string {
	switch kind {
	case hooks.PreToolUse:
		return "follows normal permission flow"
	case hooks.Stop, hooks.SubagentStop:
		return "agent stops normally"
	}
	return "no effect"
}

func blockedNotice(kind hooks.HookEvent) string {
	switch kind {
	case hooks.PreToolUse:
		return "Tool blocked by hook"
	case hooks.PostToolUse:
		return "Hook reported a problem with the tool result"
	case hooks.Stop, hooks.SubagentStop:
		return "Hook asked the agent to keep going"
	}
	return "Hook blocked"
}

// RenderSuite prints one line per case and a summary
func RenderSuite(o *Output, results []harness.CaseResult) harness.Summary {
	for _, r := range results {
		switch {
		case r.Err != nil:
			o.Error("✗ ")
			o.Write(r.Case.Name + "\n")
			o.Dimmed("    " + r.Err.Error())
		case !r.Passed():
			o.Error("✗ ")
			o.Write(r.Case.Name + "\n")
			for _, f := range r.Failures {
				o.Dimmed("    " + f)
			}
		case r.Skipped:
			o.Write(o.st.dimmed.Render("- "+r.Case.Name+" (skipped: matcher "+r.Case.Matcher+")") + "\n")
		default:
			o.Success("✓ ")
			o.Write(fmt.Sprintf("%s %s\n", r.Case.Name, o.st.dimmed.Render(r.Result.Duration.Round(time.Millisecond).String())))
		}
	}

	summary := harness.Summarize(results)
	o.Newline()
	line := fmt.Sprintf("%d passed, %d failed, %d skipped", summary.Passed, summary.Failed, summary.Skipped)
	if summary.Failed > 0 {
		o.Error(line)
	} else {
		o.Success(line)
	}
	o.Newline()
	return summary
}
