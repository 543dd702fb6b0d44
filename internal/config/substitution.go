package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Variable substitution patterns. Plain ${VAR} is left alone so shell
// commands in suite files keep their own expansions.
var (
	envVarPattern   = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)
	suiteVarPattern = regexp.MustCompile(`\$\{var://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)
)

// substitute replaces every match of pattern using lookup, falling back to the
// inline default. Names with neither are collected into a single error.
func substitute(content string, pattern *regexp.Regexp, what string, lookup func(string) (string, bool)) (string, error) {
	var missing []string

	result := pattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := pattern.FindStringSubmatch(match)
		name, hasDefault, defaultValue := groups[1], groups[2] != "", groups[3]

		if value, ok := lookup(name); ok {
			return value
		}
		if hasDefault {
			return defaultValue
		}
		missing = append(missing, fmt.Sprintf("required %s %s not set in %s", what, name, match))
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%s substitution failed: %s", what, strings.Join(missing, ", "))
	}
	return result, nil
}

// EnvSubstituter handles environment variable substitution
type EnvSubstituter struct{}

// SubstituteEnvVars replaces ${env://VAR} and ${env://VAR:-default}. An empty
// variable counts as unset.
func (e *EnvSubstituter) SubstituteEnvVars(content string) (string, error) {
	return substitute(content, envVarPattern, "environment variable", func(name string) (string, bool) {
		value := os.Getenv(name)
		return value, value != ""
	})
}

// VarSubstituter handles suite variables passed with --var
type VarSubstituter struct {
	vars map[string]string
}

// NewVarSubstituter creates a substituter over the given variables
func NewVarSubstituter(vars map[string]string) *VarSubstituter {
	return &VarSubstituter{vars: vars}
}

// SubstituteVars replaces ${var://NAME} and ${var://NAME:-default}
func (v *VarSubstituter) SubstituteVars(content string) (string, error) {
	return substitute(content, suiteVarPattern, "suite variable", func(name string) (string, bool) {
		value, ok := v.vars[name]
		return value, ok
	})
}

// HasEnvVars checks if content contains environment variable patterns
func HasEnvVars(content string) bool {
	return envVarPattern.MatchString(content)
}

// HasVars checks if content contains suite variable patterns
func HasVars(content string) bool {
	return suiteVarPattern.MatchString(content)
}
