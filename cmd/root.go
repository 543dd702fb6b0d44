package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/osi4iot/hookkit/internal/config"
	"github.com/osi4iot/hookkit/internal/logging"
	"github.com/osi4iot/hookkit/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile string
	colorFlag  bool
	noColor    bool
	debugMode  bool

	// Loaded by loadConfig before any subcommand runs
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hookkit",
	Short: "Test, log and inspect agent hooks",
	Long: `hookkit is a toolkit for agent lifecycle hooks. It runs hook programs
against synthetic events and explains what the agent and the user would see,
records real events to a log, and inspects session transcripts.

Examples:
  # Run a PreToolUse hook with a custom command
  hookkit pretool --tool-input command="rm -rf /tmp/x" -- ./hooks/check-bash.sh

  # Run a Stop hook that already continued once
  hookkit stop --active -- ./hooks/stop-guard.sh

  # Use hookkit itself as a logging hook
  hookkit log pretool ~/.local/state/hooks.jsonl

  # Inspect a transcript
  hookkit transcript ~/.claude/projects/demo/session.jsonl

  # Run a suite of hook expectations
  hookkit suite run`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// GetRootCommand returns the root command with the version set
func GetRootCommand(v string) *cobra.Command {
	rootCmd.Version = v
	return rootCmd
}

// loadConfig resolves the config file, environment and flags into appConfig
// and starts diagnostic logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	config.Init(v)
	v.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	path := configFile
	if path == "" {
		if found, ok := config.FindConfigFile(); ok {
			path = found
		}
	}
	if path != "" {
		if err := config.LoadFile(v, path); err != nil {
			return fmt.Errorf("error reading config file '%s': %w", path, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	appConfig = cfg

	logPath, err := logging.Initialize(cfg.Debug, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open debug log: %v\n", err)
	} else if logPath != "" {
		logging.Logger.Debug("hookkit starting", "command", cmd.CommandPath(), "config", path, "version", rootCmd.Version)
	}
	return nil
}

// currentConfig returns the loaded config, or defaults when a command runs
// without the root pre-run (tests).
func currentConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	return &config.Config{
		Color:      config.ColorAuto,
		Timeout:    config.DefaultTimeout,
		Transcript: config.DefaultTranscript,
		Tool:       config.DefaultTool,
		Parallel:   config.DefaultParallel,
		Suite:      config.DefaultSuitePath,
	}
}

func newOutput(cmd *cobra.Command) *ui.Output {
	mode := ui.ColorModeFromFlags(colorFlag, noColor, currentConfig().Color)
	return ui.NewOutput(cmd.OutOrStdout(), mode)
}

func timeoutFor(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = currentConfig().Timeout
	}
	return time.Duration(seconds) * time.Second
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/hookkit/config.yml or ./.hookkit.yml)")
	rootCmd.PersistentFlags().
		BoolVar(&colorFlag, "color", false, "force colored output")
	rootCmd.PersistentFlags().
		BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().
		BoolVar(&debugMode, "debug", false, "write debug logs to $XDG_STATE_HOME/hookkit")
	rootCmd.MarkFlagsMutuallyExclusive("color", "no-color")

	rootCmd.AddCommand(newEventCommands()...)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(suiteCmd)
}
