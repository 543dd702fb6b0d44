package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/osi4iot/hookkit/internal/ui"
	"github.com/osi4iot/hookkit/pkg/transcript"
	"github.com/spf13/cobra"
)

var (
	transcriptStrict   bool
	transcriptVerify   bool
	transcriptJSON     bool
	transcriptBrowse   bool
	transcriptMarkdown bool
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript PATH...",
	Short: "Parse and display session transcripts",
	Long: `Parse JSONL session transcripts and print every entry with a short
description. Lines that fail to parse are reported with their line number and
never stop the rest of the file from being read.

  --strict    stop at the first bad line and show it in detail
  --verify    only check that every line parses
  --json      print each parsed entry as one JSON line
  --browse    open the report in a scrollable pager
  --markdown  render message text instead of entry JSON`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if transcriptVerify {
			return verifyTranscripts(cmd, args)
		}
		if transcriptJSON {
			return transcriptsAsJSON(cmd, args)
		}

		failed := 0
		for _, path := range args {
			n, err := showTranscript(cmd, path)
			if err != nil {
				return err
			}
			failed += n
		}
		if failed > 0 && transcriptStrict {
			return fmt.Errorf("%d transcript lines failed to parse", failed)
		}
		return nil
	},
}

// showTranscript renders one file and returns its number of bad lines
func showTranscript(cmd *cobra.Command, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading transcript: %w", err)
	}

	if transcriptStrict {
		for out := range transcript.Outcomes(data) {
			if out.Err != nil {
				ui.RenderLineError(newOutput(cmd), out.Err)
				return 1, nil
			}
		}
	}

	opts := ui.TranscriptOptions{Markdown: transcriptMarkdown}
	if !transcriptBrowse {
		res := ui.RenderTranscript(newOutput(cmd), path, data, opts)
		return len(res.Errors), nil
	}

	mode := ui.ColorModeFromFlags(colorFlag, noColor, currentConfig().Color)
	if mode == ui.ColorAuto {
		mode = ui.ColorAlways
	}
	var buf bytes.Buffer
	res := ui.RenderTranscript(ui.NewOutput(&buf, mode), path, data, opts)
	if err := ui.Browse(path, buf.String()); err != nil {
		return 0, fmt.Errorf("running pager: %w", err)
	}
	return len(res.Errors), nil
}

func verifyTranscripts(cmd *cobra.Command, paths []string) error {
	o := newOutput(cmd)
	failed := 0
	for _, path := range paths {
		lineErr, err := transcript.VerifyFile(path)
		if err != nil {
			return err
		}
		if lineErr != nil {
			failed++
			o.Error("✗ " + path)
			o.Newline()
			renderVerifyFailure(o, lineErr)
			continue
		}
		o.Success("✓ " + path)
		o.Newline()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transcripts failed verification", failed, len(paths))
	}
	return nil
}

// renderVerifyFailure prints a verification failure under its file name
func renderVerifyFailure(o *ui.Output, lineErr *transcript.LineError) {
	o.Dimmed("  " + lineErr.Error())
}

func transcriptsAsJSON(cmd *cobra.Command, paths []string) error {
	w := bufio.NewWriter(cmd.OutOrStdout())
	defer w.Flush()

	failed := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}
		for out := range transcript.Outcomes(data) {
			if out.Err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, out.Err)
				continue
			}
			line, err := sonic.Marshal(out.Entry)
			if err != nil {
				return fmt.Errorf("encoding entry at line %d: %w", out.LineNumber, err)
			}
			w.Write(line)
			w.WriteByte('\n')
		}
	}
	if failed > 0 && transcriptStrict {
		return fmt.Errorf("%d transcript lines failed to parse", failed)
	}
	return nil
}

func init() {
	flags := transcriptCmd.Flags()
	flags.BoolVar(&transcriptStrict, "strict", false, "fail on the first line that does not parse")
	flags.BoolVar(&transcriptVerify, "verify", false, "only verify that every line parses")
	flags.BoolVar(&transcriptJSON, "json", false, "print parsed entries as JSON lines")
	flags.BoolVar(&transcriptBrowse, "browse", false, "open the report in a pager")
	flags.BoolVar(&transcriptMarkdown, "markdown", false, "render message text as markdown")
	transcriptCmd.MarkFlagsMutuallyExclusive("verify", "json", "browse")
}
