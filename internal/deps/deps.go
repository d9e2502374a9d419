package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary ctxmenu relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionFlag, when set, is passed to the resolved binary to report its version.
	VersionFlag string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Version     string
	Detail      string
}

// CheckBinaries resolves each requirement on PATH and, for available
// binaries with a VersionFlag, records the reported version line.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = resolved
		if req.VersionFlag != "" {
			status.Version = Version(ctx, resolved, req.VersionFlag)
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the unavailable non-optional statuses.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
