package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ctxmenu/internal/config"
	"ctxmenu/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDeepL_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "DeepL-Auth-Key good-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"character_count":10,"character_limit":100}`))
	}))
	defer srv.Close()

	result := CheckDeepL(context.Background(), config.Translate{APIKey: "good-key", BaseURL: srv.URL + "/v2/translate"})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "10 of 100") {
		t.Fatalf("expected usage in detail, got %q", result.Detail)
	}
}

func TestCheckDeepL_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result := CheckDeepL(context.Background(), config.Translate{APIKey: "bad-key", BaseURL: srv.URL})
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckDeepL_MissingKey(t *testing.T) {
	result := CheckDeepL(context.Background(), config.Translate{BaseURL: "http://localhost"})
	if result.Passed || !strings.Contains(result.Detail, "missing") {
		t.Fatalf("expected missing key failure, got %+v", result)
	}
}

func TestCheckDisplay(t *testing.T) {
	t.Setenv("DISPLAY", ":1")
	if r := CheckDisplay(); !r.Passed || r.Detail != ":1" {
		t.Fatalf("unexpected display result %+v", r)
	}
	t.Setenv("DISPLAY", "")
	if r := CheckDisplay(); r.Passed {
		t.Fatal("expected failure without DISPLAY")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReportsBinariesAndDirectories(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	bin := t.TempDir()
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	cfg.Tools.FFmpeg = testsupport.WriteExecutable(t, bin, "ffmpeg", "#!/bin/sh\necho 'ffmpeg version 7.0'\n")
	cfg.Tools.FFprobe = filepath.Join(bin, "ffprobe-missing")
	cfg.Tools.Xclip = testsupport.WriteExecutable(t, bin, "xclip", "#!/bin/sh\nexit 0\n")
	cfg.Tools.Xdotool = filepath.Join(bin, "xdotool-missing")

	results := RunAll(context.Background(), cfg)

	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	for _, name := range []string{"State directory", "Log directory", "X11 display", "FFmpeg", "xclip"} {
		if r, ok := byName[name]; !ok || !r.Passed {
			t.Errorf("expected %s to pass, got %+v", name, r)
		}
	}
	if _, ok := byName["FFprobe"]; ok {
		t.Error("missing optional ffprobe should be omitted")
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "xdotool" {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestRunAll_DoesNotStartBinaries(t *testing.T) {
	t.Setenv("DISPLAY", ":0")
	bin := t.TempDir()
	marker := filepath.Join(t.TempDir(), "ran")
	script := "#!/bin/sh\ntouch '" + marker + "'\n"
	cfg := testsupport.NewConfig(t)
	cfg.Tools.FFmpeg = testsupport.WriteExecutable(t, bin, "ffmpeg", script)
	cfg.Tools.FFprobe = testsupport.WriteExecutable(t, bin, "ffprobe", script)
	cfg.Tools.Xclip = testsupport.WriteExecutable(t, bin, "xclip", script)
	cfg.Tools.Xdotool = testsupport.WriteExecutable(t, bin, "xdotool", script)

	for _, r := range RunAll(context.Background(), cfg) {
		if r.Name == "xdotool" && !r.Passed {
			t.Fatalf("xdotool should resolve: %+v", r)
		}
	}
	if testsupport.Exists(marker) {
		t.Fatal("readiness checks executed a binary")
	}
}
