package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Color modes accepted by --color and the color key
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	DefaultTimeout    = 60
	MaxTimeout        = 600
	DefaultTranscript = "/tmp/transcript.json"
	DefaultTool       = "Bash"
	DefaultParallel   = 4
	DefaultSuitePath  = ".hookkit/suite.yml"
)

// NATSConfig configures the NATS event-log sink
type NATSConfig struct {
	URL      string `json:"url" yaml:"url" mapstructure:"url"`
	Subject  string `json:"subject" yaml:"subject" mapstructure:"subject"`
	User     string `json:"user,omitempty" yaml:"user,omitempty" mapstructure:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
}

// Config represents the application configuration
type Config struct {
	Color      string      `json:"color,omitempty" yaml:"color,omitempty" mapstructure:"color"`
	Timeout    int         `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`
	Session    string      `json:"session,omitempty" yaml:"session,omitempty" mapstructure:"session"`
	Transcript string      `json:"transcript,omitempty" yaml:"transcript,omitempty" mapstructure:"transcript"`
	Tool       string      `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`
	LogFile    string      `json:"log-file,omitempty" yaml:"log-file,omitempty" mapstructure:"log-file"`
	Debug      bool        `json:"debug,omitempty" yaml:"debug,omitempty" mapstructure:"debug"`
	Parallel   int         `json:"parallel,omitempty" yaml:"parallel,omitempty" mapstructure:"parallel"`
	Suite      string      `json:"suite,omitempty" yaml:"suite,omitempty" mapstructure:"suite"`
	NATS       *NATSConfig `json:"nats,omitempty" yaml:"nats,omitempty" mapstructure:"nats"`
}

// Init prepares v for hookkit: HOOKKIT_ environment overrides and defaults
func Init(v *viper.Viper) {
	v.SetEnvPrefix("HOOKKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("color", ColorAuto)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("transcript", DefaultTranscript)
	v.SetDefault("tool", DefaultTool)
	v.SetDefault("parallel", DefaultParallel)
	v.SetDefault("suite", DefaultSuitePath)
	v.SetDefault("debug", false)
	v.SetDefault("log-file", "")
	v.SetDefault("session", "")
}

// ConfigType maps a file extension to a viper config type
func ConfigType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// LoadFile reads a config file, applies environment variable substitution
// and merges the result into v.
func LoadFile(v *viper.Viper, path string) error {
	rawContent, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	substituter := &EnvSubstituter{}
	processedContent, err := substituter.SubstituteEnvVars(string(rawContent))
	if err != nil {
		return fmt.Errorf("config env substitution failed: %w", err)
	}

	v.SetConfigType(ConfigType(path))
	if err := v.ReadConfig(strings.NewReader(processedContent)); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// SearchPaths lists candidate config files in priority order
func SearchPaths() []string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configDir = filepath.Join(home, ".config")
		}
	}

	types := []string{"yml", "yaml", "json", "toml"}
	var paths []string
	if configDir != "" {
		for _, t := range types {
			paths = append(paths, filepath.Join(configDir, "hookkit", "config."+t))
		}
	}
	for _, t := range types {
		paths = append(paths, ".hookkit."+t)
	}
	return paths
}

// FindConfigFile returns the first existing file from SearchPaths
func FindConfigFile() (string, bool) {
	for _, path := range SearchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// Load decodes the settings held by v and validates them
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode '%s'. Valid modes: auto, always, never", c.Color)
	}

	if c.Timeout < 1 || c.Timeout > MaxTimeout {
		return fmt.Errorf("timeout must be between 1 and %d seconds, got %d", MaxTimeout, c.Timeout)
	}

	if c.Parallel < 0 {
		return fmt.Errorf("parallel must not be negative, got %d", c.Parallel)
	}

	if c.NATS != nil && (c.NATS.URL != "" || c.NATS.Subject != "") {
		if c.NATS.URL == "" {
			return fmt.Errorf("nats: url is required when subject is set")
		}
		if c.NATS.Subject == "" {
			return fmt.Errorf("nats: subject is required when url is set")
		}
	}
	return nil
}
