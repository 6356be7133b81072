package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"iperfctl/internal/history"
	"iperfctl/internal/iperf"
)

func newRunCommand(globals *globalFlags) *cobra.Command {
	var opts iperf.Options
	var binary string
	var jsonOut bool
	var noHistory bool
	var historyDB string

	cmd := &cobra.Command{
		Use:   "run <dest>",
		Short: "Run an iperf3 test against a server and summarize the report",
		Long: `Run a single iperf3 client test against the given destination, capture the
machine-readable report, and print a throughput summary. With --json the full
result envelope (command line, exit code, raw output, and parsed summary) is
printed instead.

Examples:
  iperfctl run 192.0.2.10
  iperfctl run 192.0.2.10 --udp --bitrate 10M
  iperfctl run 192.0.2.10 --streams 5 --reverse --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Dest = strings.TrimSpace(args[0])

			logger, err := globals.newLogger()
			if err != nil {
				return err
			}

			client := iperf.NewClient(iperf.WithBinary(binary))
			startedAt := time.Now().UTC()
			result, err := client.Measure(cmd.Context(), opts)
			if err != nil {
				return err
			}

			logger.Info("iperf3 finished",
				"cmd", result.Command,
				"rc", result.ExitCode,
				"outcome", string(result.Outcome))

			if !noHistory {
				if err := recordRun(cmd.Context(), historyDB, opts.Dest, startedAt, result); err != nil {
					logger.Warn("record history", "error", err)
				}
			}

			if jsonOut {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else if result.Summary != nil {
				renderSummary(cmd.OutOrStdout(), result.Summary)
			}

			return resultError(result)
		},
	}

	cmd.Flags().IntVar(&opts.Time, "time", iperf.DefaultTime, "Seconds to transmit for")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Server port to connect to")
	cmd.Flags().StringVar(&opts.Bind, "bind", "", "Local address to bind to")
	cmd.Flags().BoolVar(&opts.UDP, "udp", false, "Use UDP instead of TCP")
	cmd.Flags().IntVar(&opts.Interval, "interval", 0, "Seconds between throughput reports")
	cmd.Flags().StringVar(&opts.Bitrate, "bitrate", "", "Target bitrate in bits/sec ([KMG], optional /count for burst)")
	cmd.Flags().StringVar(&opts.Length, "length", "", "Read/write buffer length ([KMG])")
	cmd.Flags().IntVar(&opts.Streams, "streams", iperf.DefaultStreams, "Number of parallel streams")
	cmd.Flags().BoolVar(&opts.Reverse, "reverse", false, "Reverse direction (server sends)")
	cmd.Flags().IntVar(&opts.ConnectTimeout, "connect-timeout", iperf.DefaultConnectTimeout, "Connection timeout in seconds")
	cmd.Flags().StringVar(&binary, "binary", "", "Path to the iperf3 binary")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full result envelope as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run in the history database")
	cmd.Flags().StringVar(&historyDB, "history-db", defaultHistoryPath(), "History database path")

	return cmd
}

func recordRun(ctx context.Context, dbPath, dest string, startedAt time.Time, result *iperf.Result) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	_, err = store.Add(ctx, history.RunFromResult(dest, startedAt, result))
	return err
}

func summaryRows(summary *iperf.Summary) [][]string {
	rows := [][]string{
		{"local", fmt.Sprintf("%s:%d", summary.LocalHost, summary.LocalPort)},
		{"remote", fmt.Sprintf("%s:%d", summary.RemoteHost, summary.RemotePort)},
		{"type", summary.Role},
	}
	if summary.TotalSent != "" {
		rows = append(rows, []string{"total_sent", summary.TotalSent})
	}
	if summary.TotalReceived != "" {
		rows = append(rows, []string{"total_received", summary.TotalReceived})
	}
	return rows
}

func renderSummary(w io.Writer, summary *iperf.Summary) {
	rows := summaryRows(summary)
	if isTerminal(w) {
		fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows))
		return
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s=%s\n", row[0], row[1])
	}
}

// resultError maps the measurement outcome to the process exit status.
func resultError(result *iperf.Result) error {
	switch result.Outcome {
	case iperf.OutcomePassed:
		return nil
	case iperf.OutcomeFailed:
		if result.Message != "" {
			return fmt.Errorf("iperf3 test failed: %s", result.Message)
		}
		return fmt.Errorf("iperf3 test failed (rc=%d)", result.ExitCode)
	default:
		return fmt.Errorf("iperf3 exited with unexpected code %d", result.ExitCode)
	}
}
