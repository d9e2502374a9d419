package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ctxmenu/internal/config"
	"ctxmenu/internal/desktop"
	"ctxmenu/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	binDir     string
}

func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("DEEPL_AUTH_KEY", "")
	cfg := testsupport.NewConfig(t, testsupport.WithSoftwareOnly())

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
log_dir = %q
state_dir = %q

[encoding]
allow_hardware = false
stop_grace_seconds = 1

[desktop]
copy_settle_ms = 0
paste_delay_ms = 0

[logging]
level = "error"
%s`, cfg.Paths.LogDir, cfg.Paths.StateDir, extra)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		binDir:     filepath.Join(base, "bin"),
	}
}

// withToolsPath prepends the stub directory to PATH so the default tool
// names resolve to stubs.
func (e *cliTestEnv) withToolsPath(t *testing.T) {
	t.Helper()
	t.Setenv("PATH", e.binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func useFakeDesktop(t *testing.T, clip *testsupport.FakeClipboard, win *testsupport.FakeWindow) {
	t.Helper()
	prev := newDesktop
	newDesktop = func(*config.Config) (desktop.Clipboard, desktop.Window) { return clip, win }
	t.Cleanup(func() { newDesktop = prev })
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substring string) {
	t.Helper()
	if !strings.Contains(output, substring) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", substring, output)
	}
}
