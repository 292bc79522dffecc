package preflight

import (
	"context"

	"kartvid/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional results do not fail the overall check.
	Optional bool
	Detail   string
}

// RunAll executes every applicable check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckMaskCatalog(cfg))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.Paths.DebugDir != "" {
		results = append(results, CheckDirectoryAccess("Debug directory", cfg.Paths.DebugDir))
	}
	if cfg.Output.Store {
		results = append(results, CheckDatabase(cfg.Paths.DatabasePath))
	}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, FromStatus(status))
	}
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
