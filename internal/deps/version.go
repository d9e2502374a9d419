package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Version runs "<command> <flag>" and returns the first output line, or ""
// when the command fails or prints nothing within two seconds.
func Version(ctx context.Context, command, flag string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, command, flag).CombinedOutput() //nolint:gosec
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(line)
}
