package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osi4iot/hookkit/internal/config"
	"github.com/osi4iot/hookkit/pkg/hooks"
)

// CaseResult is the outcome of one suite case
type CaseResult struct {
	Case     Case
	Result   *Result // nil when the hook did not run
	Err      error   // the hook could not be started
	Skipped  bool    // the matcher excluded the case's tool
	Failures []string
}

// Passed reports whether the case ran (or was skipped) and met every expectation
func (r CaseResult) Passed() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// RunOptions carries settings shared by every case in a run
type RunOptions struct {
	Parallel       int
	SessionID      string
	TranscriptPath string
}

// RunSuite runs the suite's cases with at most opts.Parallel at once.
// Results are returned in case order.
func RunSuite(ctx context.Context, executor *Executor, suite *Suite, opts RunOptions) []CaseResult {
	results := make([]CaseResult, len(suite.Cases))

	parallel := opts.Parallel
	if parallel <= 0 {
		parallel = config.DefaultParallel
	}

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, c := range suite.Cases {
		g.Go(func() error {
			results[i] = runCase(ctx, executor, c, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runCase(ctx context.Context, executor *Executor, c Case, opts RunOptions) CaseResult {
	res := CaseResult{Case: c}

	kind, err := c.Kind()
	if err != nil {
		res.Err = err
		return res
	}

	tool := c.Tool
	if tool == "" {
		tool = config.DefaultTool
	}
	if kind.HasTool() && !matchesPattern(c.Matcher, tool) {
		res.Skipped = true
		res.Failures = checkExpect(c.Expect, hooks.Passthrough(), nil)
		return res
	}

	input, err := BuildInputFromMaps(kind, InputOptions{
		SessionID:      opts.SessionID,
		TranscriptPath: opts.TranscriptPath,
		Tool:           c.Tool,
		Message:        c.Message,
		Title:          c.Title,
		StopHookActive: c.StopHookActive,
	}, c.ToolInput, c.ToolResponse)
	if err != nil {
		res.Err = err
		return res
	}

	caseExecutor := *executor
	if c.Timeout > 0 {
		caseExecutor.Timeout = time.Duration(c.Timeout) * time.Second
	}

	run, err := caseExecutor.RunShell(ctx, input, c.Command)
	if err != nil {
		res.Err = err
		return res
	}
	res.Result = run
	res.Failures = checkExpect(c.Expect, run.Decision, run)
	return res
}

// checkExpect compares a decision with the expectations. run is nil for
// skipped cases.
func checkExpect(e Expect, d hooks.Decision, run *Result) []string {
	var failures []string
	if e.Control != "" && d.Control != e.Control {
		failures = append(failures, fmt.Sprintf("expected control %s, got %s", e.Control, d.Control))
	}
	if e.Continue != nil && d.ContinueSession != *e.Continue {
		failures = append(failures, fmt.Sprintf("expected continue %t, got %t", *e.Continue, d.ContinueSession))
	}
	if e.MessageContains != "" && !strings.Contains(d.Message, e.MessageContains) {
		failures = append(failures, fmt.Sprintf("expected message containing %q, got %q", e.MessageContains, d.Message))
	}
	if e.ExitCode != nil {
		switch {
		case run == nil:
			failures = append(failures, fmt.Sprintf("expected exit code %d, but the hook did not run", *e.ExitCode))
		case run.ExitCode != *e.ExitCode:
			failures = append(failures, fmt.Sprintf("expected exit code %d, got %d", *e.ExitCode, run.ExitCode))
		}
	}
	if run != nil && run.TimedOut {
		failures = append(failures, fmt.Sprintf("hook timed out after %s", run.Duration.Round(time.Millisecond)))
	}
	return failures
}

// Summary counts case outcomes
type Summary struct {
	Passed  int
	Failed  int
	Skipped int
}

// Summarize tallies results. Skipped cases that met their expectations count
// as skipped, not passed.
func Summarize(results []CaseResult) Summary {
	var s Summary
	for _, r := range results {
		switch {
		case !r.Passed():
			s.Failed++
		case r.Skipped:
			s.Skipped++
		default:
			s.Passed++
		}
	}
	return s
}
