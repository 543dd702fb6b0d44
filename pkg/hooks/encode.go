package hooks

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Response is the exit code and output streams of a hook process
type Response struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Classify interprets the response for kind
func (r Response) Classify(kind HookEvent) Decision {
	return Classify(r.ExitCode, r.Stdout, r.Stderr, kind)
}

// Output converts d into the JSON output shape for kind. Only fields the kind
// accepts are set: the reason travels with a decision, and stopReason only
// accompanies continue=false.
func Output(kind HookEvent, d Decision) (*HookOutput, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("encoding response: unknown event %q", kind)
	}
	if !ControlAllowed(kind, d.Control) {
		return nil, &InvalidDecisionError{Event: kind, Control: d.Control}
	}

	out := &HookOutput{SuppressOutput: d.SuppressOutput}
	if d.Control != ControlPassthrough {
		out.Decision = string(d.Control)
		out.Reason = d.Message
	}
	if !d.ContinueSession {
		stop := false
		out.Continue = &stop
		out.StopReason = d.StopReason
	}
	return out, nil
}

// Encode serializes d as the canonical JSON stdout for kind
func Encode(kind HookEvent, d Decision) ([]byte, error) {
	out, err := Output(kind, d)
	if err != nil {
		return nil, err
	}
	data, err := sonic.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return data, nil
}

// EncodeExit renders d through the exit-code interface: blocks exit 2 with the
// message on stderr, passthrough with a message is an exit-1 warning, anything
// else exits 0 silently. Approve, continue=false and suppressOutput have no
// exit-code form.
func EncodeExit(kind HookEvent, d Decision) (Response, error) {
	if _, err := Output(kind, d); err != nil {
		return Response{}, err
	}
	if d.Control == ControlApprove || !d.ContinueSession || d.SuppressOutput {
		return Response{}, fmt.Errorf("%s %s: %w", kind, d.Control, ErrRequiresStructuredOutput)
	}

	switch {
	case d.Control == ControlBlock:
		return Response{ExitCode: ExitBlock, Stderr: []byte(d.Message)}, nil
	case d.Message != "":
		return Response{ExitCode: ExitWarning, Stderr: []byte(d.Message)}, nil
	}
	return Response{ExitCode: ExitSuccess}, nil
}
