package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"iperfctl/internal/logging"
)

type globalFlags struct {
	logLevel  string
	logFormat string
}

func (g *globalFlags) newLogger() (*slog.Logger, error) {
	return logging.New(logging.Options{Level: g.logLevel, Format: g.logFormat})
}

func newRootCommand() *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "iperfctl",
		Short:         "Run iperf3 throughput tests and summarize their reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&globals.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&globals.logFormat, "log-format", "console", "Log format (console, json)")

	rootCmd.AddCommand(newRunCommand(globals))
	rootCmd.AddCommand(newHistoryCommand(globals))

	return rootCmd
}

// defaultHistoryPath resolves the per-user history database location.
func defaultHistoryPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "iperfctl-history.db"
	}
	return filepath.Join(cacheDir, "iperfctl", "history.db")
}
