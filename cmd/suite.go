package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/osi4iot/hookkit/internal/harness"
	"github.com/osi4iot/hookkit/internal/logging"
	"github.com/osi4iot/hookkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	suiteForce    bool
	suiteVars     map[string]string
	suiteParallel int
	suiteVerbose  bool
)

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "Manage and run hook test suites",
	Long: `A suite is a YAML, JSON or TOML file of hook test cases: an event, a
command run through sh -c, and the decision the hook is expected to produce.
Several files merge in order; a later case replaces an earlier one with the
same name and "_merge: replace" discards everything before it.

Suite files may use ${env://VAR:-default} and ${var://NAME:-default}; the
latter are filled from --var NAME=VALUE.`,
}

var suiteInitCmd = &cobra.Command{
	Use:   "init [FILE]",
	Short: "Generate an example suite",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := currentConfig().Suite
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !suiteForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}

		if err := harness.WriteSuite(path, harness.ExampleSuite()); err != nil {
			return fmt.Errorf("writing example: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s with example cases\n", path)
		return nil
	},
}

var suiteValidateCmd = &cobra.Command{
	Use:   "validate [FILE...]",
	Short: "Validate suite files",
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := loadSuite(args)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := harness.ValidateSuite(suite); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		for _, c := range suite.Cases {
			for _, warning := range harness.CommandWarnings(c.Command) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: case %q: %s\n", c.Name, warning)
			}
		}

		o := newOutput(cmd)
		o.Success(fmt.Sprintf("✓ Suite is valid (%d cases)", len(suite.Cases)))
		o.Newline()
		return nil
	},
}

var suiteListCmd = &cobra.Command{
	Use:   "list [FILE...]",
	Short: "List suite cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := loadSuite(args)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tEVENT\tMATCHER\tCOMMAND\tEXPECT\tTIMEOUT")

		for _, c := range suite.Cases {
			timeout := fmt.Sprintf("%ds", currentConfig().Timeout)
			if c.Timeout > 0 {
				timeout = fmt.Sprintf("%ds", c.Timeout)
			}
			expect := string(c.Expect.Control)
			if expect == "" {
				expect = "-"
			}
			matcher := c.Matcher
			if matcher == "" {
				matcher = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				c.Name, c.Event, matcher, c.Command, expect, timeout)
		}

		return w.Flush()
	},
}

var suiteRunCmd = &cobra.Command{
	Use:   "run [FILE...]",
	Short: "Run suite cases and check their decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := loadSuite(args)
		if err != nil {
			return err
		}
		if err := harness.ValidateSuite(suite); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		cfg := currentConfig()
		parallel := suiteParallel
		if parallel <= 0 {
			parallel = cfg.Parallel
		}
		sessionID := cfg.Session
		if sessionID == "" {
			sessionID = "suite-" + uuid.New().String()
		}

		logging.Logger.Debug("running suite", "sources", suite.Sources, "cases", len(suite.Cases), "parallel", parallel, "session", sessionID)

		executor := harness.NewExecutor(timeoutFor(0))
		results := harness.RunSuite(cmd.Context(), executor, suite, harness.RunOptions{
			Parallel:       parallel,
			SessionID:      sessionID,
			TranscriptPath: cfg.Transcript,
		})

		o := newOutput(cmd)
		if suiteVerbose {
			for _, r := range results {
				if r.Result != nil && !r.Passed() {
					ui.RenderResult(o, r.Result)
					o.Newline()
				}
			}
		}

		summary := ui.RenderSuite(o, results)
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d cases failed", summary.Failed, len(results))
		}
		return nil
	},
}

func loadSuite(paths []string) (*harness.Suite, error) {
	if len(paths) == 0 {
		paths = []string{currentConfig().Suite}
	}
	return harness.LoadSuite(suiteVars, paths...)
}

func init() {
	suiteInitCmd.Flags().BoolVar(&suiteForce, "force", false, "overwrite an existing file")

	for _, c := range []*cobra.Command{suiteValidateCmd, suiteListCmd, suiteRunCmd} {
		c.Flags().StringToStringVar(&suiteVars, "var", nil, "suite variable NAME=VALUE (repeatable)")
	}
	suiteRunCmd.Flags().IntVarP(&suiteParallel, "parallel", "j", 0, "cases run at once (default from config, 4)")
	suiteRunCmd.Flags().BoolVarP(&suiteVerbose, "verbose", "v", false, "print the full report for failing cases")

	suiteCmd.AddCommand(suiteInitCmd)
	suiteCmd.AddCommand(suiteValidateCmd)
	suiteCmd.AddCommand(suiteListCmd)
	suiteCmd.AddCommand(suiteRunCmd)
}
