package config

import (
	"strings"
	"testing"
)

func TestEnvSubstituter_SubstituteEnvVars(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		envVars     map[string]string
		expected    string
		expectError bool
	}{
		{
			name:     "basic env substitution",
			input:    `timeout: ${env://HOOK_TIMEOUT}`,
			envVars:  map[string]string{"HOOK_TIMEOUT": "30"},
			expected: `timeout: 30`,
		},
		{
			name:     "env with default value used",
			input:    `color: ${env://HOOKKIT_COLOR_MODE:-never}`,
			expected: `color: never`,
		},
		{
			name:     "env with default value overridden",
			input:    `color: ${env://HOOKKIT_COLOR_MODE:-never}`,
			envVars:  map[string]string{"HOOKKIT_COLOR_MODE": "always"},
			expected: `color: always`,
		},
		{
			name:     "empty env counts as unset",
			input:    `subject: ${env://NATS_SUBJECT:-hooks.events}`,
			envVars:  map[string]string{"NATS_SUBJECT": ""},
			expected: `subject: hooks.events`,
		},
		{
			name:     "multiple env vars in same string",
			input:    `url: nats://${env://NATS_HOST:-localhost}:${env://NATS_PORT:-4222}`,
			envVars:  map[string]string{"NATS_HOST": "broker"},
			expected: `url: nats://broker:4222`,
		},
		{
			name:     "shell and suite variables are untouched",
			input:    `command: echo "${HOME}" ${var://name:-x}`,
			expected: `command: echo "${HOME}" ${var://name:-x}`,
		},
		{
			name:        "missing required env var",
			input:       `password: ${env://HOOKKIT_REQUIRED_PASSWORD}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			substituter := &EnvSubstituter{}
			result, err := substituter.SubstituteEnvVars(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if !strings.Contains(err.Error(), "environment variable substitution failed") {
					t.Errorf("Unexpected error message: %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, result)
			}
		})
	}
}

func TestVarSubstituter_SubstituteVars(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		vars        map[string]string
		expected    string
		expectError bool
	}{
		{
			name:     "basic substitution",
			input:    `command: ${var://hook_bin} --strict`,
			vars:     map[string]string{"hook_bin": "./bin/guard"},
			expected: `command: ./bin/guard --strict`,
		},
		{
			name:     "default used",
			input:    `tool: ${var://tool:-Bash}`,
			expected: `tool: Bash`,
		},
		{
			name:     "explicit empty value wins over default",
			input:    `message: "${var://message:-hello}"`,
			vars:     map[string]string{"message": ""},
			expected: `message: ""`,
		},
		{
			name:        "missing variables are all reported",
			input:       `${var://a} ${var://b}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewVarSubstituter(tt.vars).SubstituteVars(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				if !strings.Contains(err.Error(), "a") || !strings.Contains(err.Error(), "${var://b}") {
					t.Errorf("Expected both names in error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, result)
			}
		})
	}
}

func TestHasPatterns(t *testing.T) {
	if !HasEnvVars(`${env://X}`) || HasEnvVars(`${X}`) {
		t.Error("HasEnvVars mismatch")
	}
	if !HasVars(`${var://x:-1}`) || HasVars(`${env://X}`) {
		t.Error("HasVars mismatch")
	}
}
