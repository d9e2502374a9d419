package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"ctxmenu/internal/logs"
)

func writeLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatalf("write log: %v", err)
		}
	}
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctxmenu.log")
	writeLog(t, path, "one", "two", "three", "four")

	lines, offset, err := logs.Last(path, 2, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if strings.Join(lines, ",") != "three,four" {
		t.Fatalf("unexpected lines %v", lines)
	}
	info, _ := os.Stat(path)
	if offset != info.Size() {
		t.Fatalf("offset %d, want %d", offset, info.Size())
	}
}

func TestLastAppliesFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctxmenu.log")
	writeLog(t, path,
		"INFO batch started job_id=1a2b3c4d",
		"INFO batch started job_id=ffff0000",
		"WARN file conversion failed job_id=1a2b3c4d",
	)

	lines, _, err := logs.Last(path, 10, logs.Filter{JobID: "1a2b3c4d-0000-4000-8000-000000000000"})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for job, got %v", lines)
	}

	lines, _, err = logs.Last(path, 10, logs.Filter{Contains: "FAILED"})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(lines) != 1 || !strings.Contains(lines[0], "conversion failed") {
		t.Fatalf("unexpected filtered lines %v", lines)
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 5, logs.Filter{})
	if err != nil || len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctxmenu.log")
	writeLog(t, path, "old")
	_, offset, err := logs.Last(path, 1, logs.Filter{})
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, logs.Filter{}, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	writeLog(t, path, "new one", "new two")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(got, ",") != "new one,new two" {
		t.Fatalf("unexpected followed lines %v", got)
	}
}
