// bashguard is a PreToolUse hook that blocks destructive shell commands and
// approves read-only ones.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/osi4iot/hookkit/pkg/hooks"
	"github.com/osi4iot/hookkit/sdk"
)

var (
	blocked  = []string{"rm -rf /", "mkfs", "dd if=", ":(){ :|:& };:", "> /dev/sda"}
	readOnly = []string{"ls", "pwd", "cat", "git status", "git diff", "git log"}
)

func main() {
	h := sdk.New()

	in, err := h.PreToolUse()
	if err != nil {
		h.Fail(1, fmt.Sprintf("bashguard: %v", err))
		return
	}

	if err := h.Respond(hooks.PreToolUse, decide(in)); err != nil {
		fmt.Fprintf(os.Stderr, "bashguard: %v\n", err)
		os.Exit(1)
	}
}

func decide(in *hooks.PreToolUseInput) hooks.Decision {
	if in.ToolName != "Bash" {
		return hooks.Passthrough()
	}

	command := strings.TrimSpace(in.ToolInput.String("command"))
	for _, pattern := range blocked {
		if strings.Contains(command, pattern) {
			return hooks.Block(fmt.Sprintf("command contains %q, which is not allowed", pattern))
		}
	}
	for _, prefix := range readOnly {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return hooks.Approve("read-only command")
		}
	}
	return hooks.Passthrough()
}
