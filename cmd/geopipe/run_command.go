package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muzykantov/geo-data-pipeline/internal/preflight"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/stage"
	"github.com/muzykantov/geo-data-pipeline/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var stageName string
	var name string
	var series string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline, skipping stages whose output is already complete",
		Long: "Run resolves Fetch, Extract, and Project in order for the configured dataset.\n" +
			"A stage whose artifact is already complete is skipped, so re-running after a\n" +
			"failure resumes from the failed stage. With --stage only that stage and its\n" +
			"incomplete predecessors are resolved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				target   stage.Kind
				targeted bool
			)
			if stageName != "" {
				kind, err := stage.ParseKind(stageName)
				if err != nil {
					return services.Wrap(services.ErrValidation, "cli", "parse --stage", stageName, err)
				}
				target, targeted = kind, true
			}

			cfg, err := ctx.datasetConfig(name, series)
			if err != nil {
				return err
			}
			if failed, ok := preflight.FirstFailure(preflight.RunAll(commandBaseContext(cmd), cfg, preflight.Options{})); ok {
				return services.Wrap(services.ErrConfiguration, "preflight", failed.Name, failed.Detail, nil)
			}
			logger, err := ctx.loggerFor(cfg)
			if err != nil {
				return err
			}

			driver, closeJournal, err := workflow.FromConfig(cfg, logger)
			if err != nil {
				return err
			}
			defer closeJournal()

			runCtx, stop := signal.NotifyContext(commandBaseContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var report workflow.Report
			if targeted {
				report, err = driver.RunStage(runCtx, target)
			} else {
				report, err = driver.Run(runCtx)
			}
			if jsonOutput {
				if writeErr := writeJSON(cmd, report); writeErr != nil && err == nil {
					err = writeErr
				}
				return err
			}
			printReport(cmd, report)
			return err
		},
	}

	cmd.Flags().StringVar(&stageName, "stage", "", "Resolve only this stage: fetch, extract, or project")
	cmd.Flags().StringVar(&name, "name", "", "Dataset accession (overrides dataset.name)")
	cmd.Flags().StringVar(&series, "series", "", "Series bucket (derived from --name when omitted)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}

func commandBaseContext(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}

func printReport(cmd *cobra.Command, report workflow.Report) {
	if report.RunID == "" {
		return
	}
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Outcomes))
	for _, outcome := range report.Outcomes {
		result := "ran"
		elapsed := formatElapsed(outcome.Elapsed)
		if outcome.Skipped {
			result = "skipped"
			elapsed = "-"
		}
		rows = append(rows, []string{outcome.Kind.Label(), result, elapsed})
	}
	fmt.Fprintf(out, "Run %s (%s)\n", report.RunID, report.Dataset)
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Stage", "Result", "Elapsed"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}
}
