// gofmtstop is a Stop hook that keeps the agent working while Go files it
// edited during the session are not gofmt clean.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/osi4iot/hookkit/pkg/hooks"
	"github.com/osi4iot/hookkit/pkg/transcript"
	"github.com/osi4iot/hookkit/sdk"
)

func main() {
	h := sdk.New()

	in, err := h.Stop()
	if err != nil {
		h.Fail(1, fmt.Sprintf("gofmtstop: %v", err))
		return
	}

	// Already blocked once; let the agent stop to avoid a loop.
	if in.StopHookActive {
		h.Success()
		return
	}

	res, err := h.Transcript(in)
	if err != nil {
		h.Fail(1, fmt.Sprintf("gofmtstop: %v", err))
		return
	}

	files := editedGoFiles(res)
	if len(files) == 0 {
		h.Success()
		return
	}

	out, err := exec.Command("gofmt", append([]string{"-l"}, files...)...).Output()
	if err != nil {
		h.Fail(1, fmt.Sprintf("gofmtstop: gofmt failed: %v", err))
		return
	}
	if unformatted := strings.TrimSpace(string(out)); unformatted != "" {
		d := hooks.Block("run gofmt -w on:\n" + unformatted)
		if err := h.Respond(hooks.Stop, d); err != nil {
			fmt.Fprintf(os.Stderr, "gofmtstop: %v\n", err)
			os.Exit(1)
		}
		return
	}
	h.Success()
}

func editedGoFiles(res *transcript.Result) []string {
	seen := make(map[string]bool)
	var files []string
	for _, entry := range res.Entries {
		asst, ok := entry.(transcript.AssistantEntry)
		if !ok {
			continue
		}
		for _, block := range asst.Message.Content.Blocks() {
			if block.Type != transcript.BlockToolUse {
				continue
			}
			switch block.Name {
			case "Edit", "MultiEdit", "Write":
			default:
				continue
			}
			path := hooks.ToolPayload(block.Input).String("file_path")
			if strings.HasSuffix(path, ".go") && !seen[path] {
				if _, err := os.Stat(path); err == nil {
					seen[path] = true
					files = append(files, path)
				}
			}
		}
	}
	return files
}
