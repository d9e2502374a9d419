package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present, VersionFlag: "-version"},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Path != present {
		t.Fatalf("expected resolved path %q, got %q", present, results[0].Path)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" || !results[2].Optional {
		t.Fatalf("unexpected blank command status %#v", results[2])
	}

	missing := MissingRequired(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("unexpected missing set %#v", missing)
	}
}

func TestVersionReturnsFirstLine(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "tool")
	script := []byte("#!/bin/sh\necho 'tool version 6.1.1 Copyright'\necho 'built with gcc'\n")
	if err := os.WriteFile(bin, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if got := Version(context.Background(), bin, "-version"); got != "tool version 6.1.1 Copyright" {
		t.Fatalf("Version = %q", got)
	}
	if got := Version(context.Background(), filepath.Join(t.TempDir(), "missing"), "-version"); got != "" {
		t.Fatalf("expected empty version for missing binary, got %q", got)
	}
}
