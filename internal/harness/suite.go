package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/osi4iot/hookkit/internal/config"
	"github.com/osi4iot/hookkit/pkg/hooks"
)

// Suite is a list of hook test cases loaded from one or more files
type Suite struct {
	Merge   string   `yaml:"_merge,omitempty" json:"_merge,omitempty" toml:"_merge,omitempty"`
	Cases   []Case   `yaml:"cases" json:"cases" toml:"cases"`
	Sources []string `yaml:"-" json:"-" toml:"-"`
}

// Case runs one hook command against one synthesized event
type Case struct {
	Name           string         `yaml:"name" json:"name" toml:"name"`
	Event          string         `yaml:"event" json:"event" toml:"event"`
	Command        string         `yaml:"command" json:"command" toml:"command"`
	Matcher        string         `yaml:"matcher,omitempty" json:"matcher,omitempty" toml:"matcher,omitempty"`
	Tool           string         `yaml:"tool,omitempty" json:"tool,omitempty" toml:"tool,omitempty"`
	ToolInput      map[string]any `yaml:"tool_input,omitempty" json:"tool_input,omitempty" toml:"tool_input,omitempty"`
	ToolResponse   map[string]any `yaml:"tool_response,omitempty" json:"tool_response,omitempty" toml:"tool_response,omitempty"`
	Message        string         `yaml:"message,omitempty" json:"message,omitempty" toml:"message,omitempty"`
	Title          string         `yaml:"title,omitempty" json:"title,omitempty" toml:"title,omitempty"`
	StopHookActive bool           `yaml:"stop_hook_active,omitempty" json:"stop_hook_active,omitempty" toml:"stop_hook_active,omitempty"`
	Timeout        int            `yaml:"timeout,omitempty" json:"timeout,omitempty" toml:"timeout,omitempty"`
	Expect         Expect         `yaml:"expect,omitempty" json:"expect,omitempty" toml:"expect,omitempty"`
}

// Expect holds the assertions checked against a case's decision
type Expect struct {
	Control         hooks.Control `yaml:"control,omitempty" json:"control,omitempty" toml:"control,omitempty"`
	Continue        *bool         `yaml:"continue,omitempty" json:"continue,omitempty" toml:"continue,omitempty"`
	MessageContains string        `yaml:"message_contains,omitempty" json:"message_contains,omitempty" toml:"message_contains,omitempty"`
	ExitCode        *int          `yaml:"exit_code,omitempty" json:"exit_code,omitempty" toml:"exit_code,omitempty"`
}

// Kind resolves the case's event name (canonical or short form)
func (c Case) Kind() (hooks.HookEvent, error) {
	return hooks.ParseEventName(c.Event)
}

// LoadSuite loads and merges suite files in order. File content goes through
// ${env://VAR} and then ${var://NAME} substitution before parsing.
func LoadSuite(vars map[string]string, paths ...string) (*Suite, error) {
	if len(paths) == 0 {
		paths = []string{config.DefaultSuitePath}
	}

	merged := &Suite{}
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		envSubstituter := &config.EnvSubstituter{}
		substituted, err := envSubstituter.SubstituteEnvVars(string(content))
		if err != nil {
			return nil, fmt.Errorf("substituting env vars in %s: %w", path, err)
		}
		substituted, err = config.NewVarSubstituter(vars).SubstituteVars(substituted)
		if err != nil {
			return nil, fmt.Errorf("substituting suite variables in %s: %w", path, err)
		}

		suite, err := ParseSuite([]byte(substituted), config.ConfigType(path))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		mergeSuites(merged, suite)
		merged.Sources = append(merged.Sources, path)
	}
	return merged, nil
}

// ParseSuite decodes a suite in the given format: yaml, json or toml
func ParseSuite(data []byte, format string) (*Suite, error) {
	var suite Suite
	var err error
	switch format {
	case "json":
		err = sonic.Unmarshal(data, &suite)
	case "toml":
		err = toml.Unmarshal(data, &suite)
	case "yaml", "yml", "":
		err = yaml.Unmarshal(data, &suite)
	default:
		return nil, fmt.Errorf("unsupported suite format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return &suite, nil
}

// mergeSuites folds src into dst. A case replaces an earlier case with the
// same name; "_merge: replace" drops every earlier case.
func mergeSuites(dst, src *Suite) {
	if src.Merge == "replace" {
		dst.Cases = nil
	}
	for _, c := range src.Cases {
		found := false
		for i := range dst.Cases {
			if dst.Cases[i].Name == c.Name {
				dst.Cases[i] = c
				found = true
				break
			}
		}
		if !found {
			dst.Cases = append(dst.Cases, c)
		}
	}
}

// WriteSuite encodes s to path in the format implied by its extension
func WriteSuite(path string, s *Suite) error {
	var data []byte
	var err error
	switch config.ConfigType(path) {
	case "json":
		data, err = sonic.ConfigStd.MarshalIndent(s, "", "  ")
	case "toml":
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(s)
		data = []byte(sb.String())
	default:
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("encoding suite: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ExampleSuite is the starter suite written by `suite init`
func ExampleSuite() *Suite {
	blocked := 2
	return &Suite{
		Cases: []Case{
			{
				Name:      "allows a harmless command",
				Event:     "pretool",
				Command:   "./hooks/check-bash.sh",
				Matcher:   "Bash",
				Tool:      "Bash",
				ToolInput: map[string]any{"command": "ls -la"},
				Expect:    Expect{Control: hooks.ControlPassthrough},
			},
			{
				Name:      "blocks rm -rf",
				Event:     "pretool",
				Command:   "./hooks/check-bash.sh",
				Matcher:   "Bash",
				Tool:      "Bash",
				ToolInput: map[string]any{"command": "rm -rf /"},
				Expect:    Expect{Control: hooks.ControlBlock, MessageContains: "rm -rf", ExitCode: &blocked},
			},
			{
				Name:    "stop hook lets the session end",
				Event:   "stop",
				Command: "./hooks/stop-guard.sh",
				Timeout: 10,
				Expect:  Expect{Control: hooks.ControlPassthrough},
			},
		},
	}
}
