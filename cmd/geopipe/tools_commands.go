package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muzykantov/geo-data-pipeline/internal/projection"
	"github.com/muzykantov/geo-data-pipeline/internal/sectioned"
)

func newProjectCommand(ctx *commandContext) *cobra.Command {
	var suffix string
	var drop []string

	cmd := &cobra.Command{
		Use:   "project <table.tsv>...",
		Short: "Write a trimmed copy of individual tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("suffix") {
				suffix = cfg.Projection.Suffix
			}
			if !cmd.Flags().Changed("drop") {
				drop = cfg.Projection.DropColumns
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				dest, err := projection.ProjectAs(path, suffix, drop)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s -> %s\n", path, dest)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&suffix, "suffix", projection.DefaultSuffix, "Suffix appended to the output table name")
	cmd.Flags().StringSliceVar(&drop, "drop", nil, "Columns to drop (defaults to projection.drop_columns)")
	return cmd
}

func newSplitCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:         "split <sample.txt[.gz]>",
		Short:       "Split one sectioned text file into per-section tables",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if strings.TrimSpace(outDir) == "" {
				outDir = filepath.Dir(source)
			}
			file, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("open %s: %w", source, err)
			}
			defer file.Close()

			var reader io.Reader = file
			if strings.HasSuffix(source, ".gz") {
				gz, err := gzip.NewReader(file)
				if err != nil {
					return fmt.Errorf("decompress %s: %w", source, err)
				}
				defer gz.Close()
				reader = gz
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			written, err := sectioned.Split(reader, outDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range written {
				fmt.Fprintln(out, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to the source directory)")
	return cmd
}
