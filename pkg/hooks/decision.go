package hooks

// Path records which output interface a hook used
type Path string

const (
	PathPlainText      Path = "plain_text"
	PathStructuredJSON Path = "structured_json"
)

// Control is the normalized approve/block/passthrough outcome
type Control string

const (
	ControlPassthrough Control = "passthrough"
	ControlApprove     Control = "approve"
	ControlBlock       Control = "block"
)

// Audience is who reads a decision's message
type Audience string

const (
	AudienceNone  Audience = "none"
	AudienceUser  Audience = "user"
	AudienceAgent Audience = "agent"
)

// Decision is the event-independent result of a hook invocation.
// The zero value is not a valid decision; use Passthrough, Approve or Block.
type Decision struct {
	Path            Path    `json:"path"`
	Control         Control `json:"control"`
	Message         string  `json:"message,omitempty"`
	ContinueSession bool    `json:"continue_session"`
	StopReason      string  `json:"stop_reason,omitempty"`
	SuppressOutput  bool    `json:"suppress_output"`
}

// Passthrough defers to the host's normal flow
func Passthrough() Decision {
	return Decision{Path: PathStructuredJSON, Control: ControlPassthrough, ContinueSession: true}
}

// Approve bypasses the host's permission check (PreToolUse only)
func Approve(reason string) Decision {
	d := Passthrough()
	d.Control = ControlApprove
	d.Message = reason
	return d
}

// Block prevents the tool call, reports a failure to the agent, or refuses a stop
func Block(reason string) Decision {
	d := Passthrough()
	d.Control = ControlBlock
	d.Message = reason
	return d
}

// AndStop ends the session after this hook, with reason shown to the user
func (d Decision) AndStop(reason string) Decision {
	d.ContinueSession = false
	d.StopReason = reason
	return d
}

// AndSuppressOutput hides the hook's stdout from the transcript view
func (d Decision) AndSuppressOutput() Decision {
	d.SuppressOutput = true
	return d
}

// Terminates reports whether the session ends after this hook. It takes
// precedence over Control.
func (d Decision) Terminates() bool {
	return !d.ContinueSession
}

// Audience reports who reads Message
func (d Decision) Audience() Audience {
	switch {
	case d.Message == "":
		return AudienceNone
	case d.Control == ControlBlock:
		// blocked tool calls, post-tool failures and refused stops go back to the agent
		return AudienceAgent
	case d.Control == ControlApprove, d.Path == PathPlainText:
		return AudienceUser
	}
	return AudienceNone
}
