package preflight

import (
	"context"

	"ctxmenu/internal/config"
	"ctxmenu/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local checks for cfg: state and log directories, the
// display, and each required binary. Binaries are only resolved on PATH, never
// started. Network checks and versions are left to the status command.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDisplay(),
	}
	reqs := Requirements(cfg)
	for i := range reqs {
		reqs[i].VersionFlag = ""
	}
	for _, status := range deps.CheckBinaries(ctx, reqs) {
		if status.Optional && !status.Available {
			continue
		}
		detail := status.Path
		if !status.Available {
			detail = status.Detail
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
