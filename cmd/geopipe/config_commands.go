package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muzykantov/geo-data-pipeline/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration for the default GEO dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			// CreateSample makes the parent directory.
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			sample, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("reload sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			describeDataset(out, sample)
			fmt.Fprintln(out, "Edit [dataset] name and series (or export GEOPIPE_DATASET_NAME) to fetch another series,")
			fmt.Fprintln(out, "and [paths] data_dir (or GEOPIPE_DATA_DIR) to move the storage root.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

// configTarget resolves the init destination, defaulting to the user config
// location.
func configTarget(flagPath string) (string, error) {
	target := strings.TrimSpace(flagPath)
	if target == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return defaultPath, nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

func describeDataset(out io.Writer, cfg *config.Config) {
	fmt.Fprintf(out, "Dataset:     %s\n", cfg.DatasetRef())
	fmt.Fprintf(out, "Archive URL: %s\n", cfg.DatasetRef().ArchiveURL(cfg.Fetch.BaseURL))
	fmt.Fprintf(out, "Data dir:    %s\n", cfg.Paths.DataDir)
	fmt.Fprintf(out, "Log dir:     %s\n", cfg.Paths.LogDir)
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load, normalize and validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			describeDataset(out, cfg)
			fmt.Fprintf(out, "Projection:  %s -> %s%s (dropping %d columns, %d parallel)\n",
				cfg.Projection.SourceTable, cfg.Projection.SourceTable, cfg.Projection.Suffix,
				len(cfg.Projection.DropColumns), cfg.Workflow.MaxParallel)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
