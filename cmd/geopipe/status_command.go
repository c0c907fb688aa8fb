package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muzykantov/geo-data-pipeline/internal/archive"
	"github.com/muzykantov/geo-data-pipeline/internal/preflight"
	"github.com/muzykantov/geo-data-pipeline/internal/stage"
	"github.com/muzykantov/geo-data-pipeline/internal/workflow"
)

type statusReport struct {
	Dataset      string             `json:"dataset" yaml:"dataset"`
	Root         string             `json:"root" yaml:"root"`
	Config       string             `json:"config,omitempty" yaml:"config,omitempty"`
	Stages       []stage.Status     `json:"stages" yaml:"stages"`
	Members      []archive.Member   `json:"members,omitempty" yaml:"members,omitempty"`
	ArchiveError string             `json:"archive_error,omitempty" yaml:"archive_error,omitempty"`
	Checks       []preflight.Result `json:"checks" yaml:"checks"`
}

// inspectArchive lists the fetched container so status can show what
// Extract will produce. A missing archive leaves the report untouched.
func (r *statusReport) inspectArchive(path string) {
	for _, st := range r.Stages {
		if st.Kind == stage.Fetch && !st.Complete {
			return
		}
	}
	members, err := archive.List(path)
	if err != nil {
		r.ArchiveError = err.Error()
		return
	}
	r.Members = members
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var name string
	var series string
	var jsonOutput bool
	var yamlOutput bool
	var checkMirror bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which stages are complete without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}
			cfg, err := ctx.datasetConfig(name, series)
			if err != nil {
				return err
			}
			// Status never journals, so the history store stays closed.
			statusCfg := *cfg
			statusCfg.History.Enabled = false
			driver, _, err := workflow.FromConfig(&statusCfg, nil)
			if err != nil {
				return err
			}

			base := commandBaseContext(cmd)
			stages, err := driver.Status(base)
			if err != nil {
				return err
			}
			report := statusReport{
				Dataset: cfg.DatasetRef().String(),
				Root:    cfg.Paths.DataDir,
				Config:  ctx.configPath,
				Stages:  stages,
				Checks: preflight.RunAll(base, cfg, preflight.Options{
					Network:      checkMirror,
					MinFreeBytes: preflight.DefaultMinFreeBytes,
				}),
			}
			report.inspectArchive(driver.Layout().ArchivePath())

			switch {
			case jsonOutput:
				return writeJSON(cmd, report)
			case yamlOutput:
				return writeYAML(cmd, report)
			}
			renderStatus(cmd.OutOrStdout(), report, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Dataset accession (overrides dataset.name)")
	cmd.Flags().StringVar(&series, "series", "", "Series bucket (derived from --name when omitted)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Emit status as YAML")
	cmd.Flags().BoolVar(&checkMirror, "check-mirror", false, "Probe the archive mirror over the network")
	return cmd
}
