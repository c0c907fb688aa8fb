package preflight

import (
	"context"

	"github.com/muzykantov/geo-data-pipeline/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"detail" yaml:"detail"`
}

// Options selects the optional checks.
type Options struct {
	// Network adds the archive mirror probe.
	Network bool
	// MinFreeBytes enables the free-space check on the storage root.
	MinFreeBytes uint64
}

// RunAll executes the directory checks for cfg plus whatever opts enables.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if results[0].Passed && opts.MinFreeBytes > 0 {
		results = append(results, CheckFreeSpace("Free space", cfg.Paths.DataDir, opts.MinFreeBytes))
	}
	if opts.Network {
		results = append(results, CheckMirror(ctx, cfg.Fetch.BaseURL, cfg.Fetch.UserAgent))
	}
	return results
}

// FirstFailure returns the first failed result, if any.
func FirstFailure(results []Result) (Result, bool) {
	for _, result := range results {
		if !result.Passed {
			return result, true
		}
	}
	return Result{}, false
}
