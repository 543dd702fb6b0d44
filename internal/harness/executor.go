package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/osi4iot/hookkit/internal/logging"
	"github.com/osi4iot/hookkit/pkg/hooks"
)

// ErrNoCommand is returned when no hook command was given
var ErrNoCommand = errors.New("no hook command specified")

// DefaultTimeout bounds a single hook run when the executor has none set
const DefaultTimeout = 60 * time.Second

// Executor runs hook commands the way an agent host does: input JSON on stdin,
// stdout/stderr/exit code captured and classified.
type Executor struct {
	Timeout time.Duration
	Dir     string   // working directory, defaults to the current one
	Env     []string // extra KEY=VALUE entries added to the inherited environment
}

// NewExecutor creates an executor with the given timeout
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{Timeout: timeout}
}

// Result is everything observed about one hook run
type Result struct {
	Command   string
	Input     hooks.Input
	InputJSON []byte
	ExitCode  int
	Stdout    []byte
	Stderr    []byte
	Duration  time.Duration
	Decision  hooks.Decision
	TimedOut  bool
}

// Event returns the event kind the hook ran for
func (r *Result) Event() hooks.HookEvent { return r.Input.Event() }

// Run executes argv directly, without a shell
func (e *Executor) Run(ctx context.Context, input hooks.Input, argv []string) (*Result, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrNoCommand
	}
	return e.run(ctx, input, strings.Join(argv, " "), argv)
}

// RunShell executes command through sh -c
func (e *Executor) RunShell(ctx context.Context, input hooks.Input, command string) (*Result, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrNoCommand
	}
	return e.run(ctx, input, command, []string{"sh", "-c", command})
}

func (e *Executor) run(ctx context.Context, input hooks.Input, display string, argv []string) (*Result, error) {
	inputJSON, err := sonic.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshaling input: %w", err)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(inputJSON)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	// grandchildren holding the pipes open must not stall Wait past the kill
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Logger.Debug("running hook", "event", input.Event(), "command", display, "timeout", timeout)

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			if ctx.Err() == nil {
				return nil, fmt.Errorf("failed to run hook %q: %w", display, err)
			}
			exitCode = -1
		} else {
			exitCode = exitErr.ExitCode()
		}
	}

	res := &Result{
		Command:   display,
		Input:     input,
		InputJSON: inputJSON,
		ExitCode:  exitCode,
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		Duration:  duration,
		TimedOut:  errors.Is(ctx.Err(), context.DeadlineExceeded),
	}
	res.Decision = hooks.Classify(res.ExitCode, res.Stdout, res.Stderr, input.Event())

	logging.Logger.Debug("hook finished",
		"event", input.Event(),
		"exit_code", exitCode,
		"duration", duration,
		"timed_out", res.TimedOut,
		"control", res.Decision.Control)
	return res, nil
}
