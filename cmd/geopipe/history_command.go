package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muzykantov/geo-data-pipeline/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var allDatasets bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled stage outcomes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			opts := history.ListOptions{RunID: runID, Limit: limit}
			if !allDatasets {
				opts.Dataset = cfg.DatasetRef().String()
			}
			entries, err := store.List(commandBaseContext(cmd), opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No journaled runs")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					entry.StartedAt.Local().Format(time.DateTime),
					shortRunID(entry.RunID),
					entry.Dataset,
					entry.Stage,
					string(entry.Outcome),
					formatElapsed(entry.Duration()),
					entry.ErrorKind,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Run", "Dataset", "Stage", "Outcome", "Elapsed", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show rows for this run ID")
	cmd.Flags().BoolVar(&allDatasets, "all", false, "Include every dataset, not just the configured one")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit rows as JSON")

	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal rows older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(commandBaseContext(cmd), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d journal rows\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff, e.g. 720h")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
