package cmd

import (
	"fmt"
	"os"

	"github.com/osi4iot/hookkit/internal/config"
	"github.com/osi4iot/hookkit/internal/eventlog"
	"github.com/osi4iot/hookkit/pkg/hooks"
	"github.com/spf13/cobra"
)

var (
	logTranscriptOut string
	logNATSURL       string
	logNATSSubject   string
)

var logCmd = &cobra.Command{
	Use:   "log EVENT FILE",
	Short: "Record a hook event read from stdin",
	Long: `Run hookkit as the hook itself: read one event from stdin, append it as a
JSON line to FILE, and answer with a passthrough response so the agent is not
affected. EVENT is one of pretool, posttool, notification, stop, subagentstop.

With --transcript the session transcript is re-encoded into the given file,
one JSON line per parsed entry. With --nats-url and --nats-subject, or a nats
section in the config file, each record is also published to NATS.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := hooks.ParseEventName(args[0])
		if err != nil {
			return err
		}

		sink, err := logSinks(args[1])
		if err != nil {
			return err
		}
		defer func() {
			if err := sink.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: closing event log: %v\n", err)
			}
		}()

		return eventlog.Handle(cmd.Context(), kind, cmd.InOrStdin(), cmd.OutOrStdout(), sink, eventlog.Options{
			TranscriptOut: logTranscriptOut,
		})
	},
}

// logSinks builds the file sink plus a NATS sink when one is configured
func logSinks(path string) (eventlog.Sink, error) {
	sinks := eventlog.MultiSink{eventlog.NewFileSink(path)}

	natsCfg := config.NATSConfig{URL: logNATSURL, Subject: logNATSSubject}
	if cfg := currentConfig().NATS; cfg != nil {
		if natsCfg.URL == "" {
			natsCfg.URL = cfg.URL
		}
		if natsCfg.Subject == "" {
			natsCfg.Subject = cfg.Subject
		}
		natsCfg.User, natsCfg.Password = cfg.User, cfg.Password
	}

	switch {
	case natsCfg.URL == "" && natsCfg.Subject == "":
		return sinks, nil
	case natsCfg.URL == "" || natsCfg.Subject == "":
		return nil, fmt.Errorf("--nats-url and --nats-subject must be used together")
	}

	natsSink, err := eventlog.NewNATSSink(natsCfg)
	if err != nil {
		return nil, err
	}
	return append(sinks, natsSink), nil
}

func init() {
	logCmd.Flags().StringVar(&logTranscriptOut, "transcript", "", "copy the session transcript to this file")
	logCmd.Flags().StringVar(&logNATSURL, "nats-url", "", "also publish records to this NATS server")
	logCmd.Flags().StringVar(&logNATSSubject, "nats-subject", "", "NATS subject for published records")
}
