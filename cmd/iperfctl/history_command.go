package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"iperfctl/internal/history"
)

func newHistoryCommand(globals *globalFlags) *cobra.Command {
	var limit int
	var jsonOut bool
	var historyDB string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded measurement runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(historyDB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format(time.DateTime),
					run.Dest,
					string(run.Outcome),
					run.Role,
					run.TotalSent,
					run.TotalReceived,
					run.Message,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Started", "Dest", "Outcome", "Type", "Sent", "Received", "Message"},
				rows,
			))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&historyDB, "history-db", defaultHistoryPath(), "History database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryClearCommand(globals, &historyDB))

	return cmd
}

func newHistoryClearCommand(globals *globalFlags, historyDB *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := globals.newLogger()
			if err != nil {
				return err
			}

			store, err := history.Open(*historyDB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			logger.Info("history cleared", "db", store.Path())
			return nil
		},
	}
}
