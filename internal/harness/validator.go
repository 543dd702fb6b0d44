package harness

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/osi4iot/hookkit/internal/config"
	"github.com/osi4iot/hookkit/pkg/hooks"
)

// Patterns flagged by CommandWarnings
var (
	commandInjectionPattern    = regexp.MustCompile(`[;&|]|\$\(|` + "`")
	pathTraversalPattern       = regexp.MustCompile(`\.\.\/`)
	commandSubstitutionPattern = regexp.MustCompile(`\$\([^)]+\)|` + "`" + `[^` + "`" + `]+` + "`")
)

// ValidateSuite checks every case and returns the first problem found
func ValidateSuite(suite *Suite) error {
	if suite == nil {
		return fmt.Errorf("nil suite")
	}
	if len(suite.Cases) == 0 {
		return fmt.Errorf("suite has no cases")
	}

	seen := make(map[string]int, len(suite.Cases))
	for i, c := range suite.Cases {
		if c.Name == "" {
			return fmt.Errorf("case %d: missing name", i)
		}
		if prev, ok := seen[c.Name]; ok {
			return fmt.Errorf("case %d: duplicate name %q (first used by case %d)", i, c.Name, prev)
		}
		seen[c.Name] = i

		if err := validateCase(c); err != nil {
			return fmt.Errorf("case %q: %w", c.Name, err)
		}
	}
	return nil
}

func validateCase(c Case) error {
	kind, err := c.Kind()
	if err != nil {
		return err
	}

	if strings.TrimSpace(c.Command) == "" {
		return fmt.Errorf("empty command")
	}

	if c.Matcher != "" {
		if !kind.HasTool() {
			return fmt.Errorf("matcher is only supported for tool events, not %s", kind)
		}
		if _, err := regexp.Compile(c.Matcher); err != nil {
			return fmt.Errorf("invalid regex pattern in matcher: %w", err)
		}
	}

	if !kind.HasTool() && (c.Tool != "" || c.ToolInput != nil || c.ToolResponse != nil) {
		return fmt.Errorf("tool fields are not used by %s", kind)
	}
	if kind != hooks.PostToolUse && c.ToolResponse != nil {
		return fmt.Errorf("tool_response is only used by %s", hooks.PostToolUse)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout: %d", c.Timeout)
	}
	if c.Timeout > config.MaxTimeout {
		return fmt.Errorf("timeout too large: %d (max %d seconds)", c.Timeout, config.MaxTimeout)
	}

	if ctrl := c.Expect.Control; ctrl != "" {
		switch ctrl {
		case hooks.ControlApprove, hooks.ControlBlock, hooks.ControlPassthrough:
		default:
			return fmt.Errorf("invalid expected control: %s (must be approve, block or passthrough)", ctrl)
		}
		if !hooks.ControlAllowed(kind, ctrl) {
			return fmt.Errorf("expected control %s can never be produced by %s hooks", ctrl, kind)
		}
	}
	return nil
}

// CommandWarnings lists risky shell constructs in a suite command. They are
// reported by `suite validate` but never fail validation.
func CommandWarnings(command string) []string {
	var warnings []string
	if commandInjectionPattern.MatchString(command) && containsDangerousPattern(command) {
		warnings = append(warnings, "command chains destructive or many separate commands")
	}
	if pathTraversalPattern.MatchString(command) {
		warnings = append(warnings, "command uses path traversal")
	}
	if commandSubstitutionPattern.MatchString(command) {
		warnings = append(warnings, "command uses command substitution")
	}
	return warnings
}

// containsDangerousPattern checks for specific dangerous command patterns
func containsDangerousPattern(command string) bool {
	dangerousPatterns := []string{"; rm ", "&& rm ", "| rm ", "; dd ", "&& dd ", "| dd "}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(command, pattern) {
			return true
		}
	}

	separatorCount := 0
	for _, sep := range []string{";", "&&", "||", "|"} {
		separatorCount += strings.Count(command, sep)
	}
	return separatorCount > 2
}

// matchesPattern checks if a tool name matches a matcher. An empty matcher
// matches every tool; otherwise exact match first, then regex.
func matchesPattern(pattern, toolName string) bool {
	if pattern == "" || pattern == toolName {
		return true
	}
	matched, err := regexp.MatchString(pattern, toolName)
	return err == nil && matched
}
