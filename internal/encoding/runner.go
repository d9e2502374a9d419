package encoding

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	stderrTailLimit = 8192
	scanBufferSize  = 64 * 1024
	scanBufferMax   = 1024 * 1024
)

type processResult struct {
	exitCode   int
	stderrTail string
	notFound   bool
	err        error
}

// runFFmpeg runs one ffmpeg invocation, feeding every progress time it prints
// to onTime. Context cancellation sends SIGTERM; the process is killed if it
// has not exited after grace.
func runFFmpeg(ctx context.Context, binary string, args []string, grace time.Duration, onTime func(float64)) processResult {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Cancel = func() error {
		return cmd.Process.Signal(unix.SIGTERM)
	}
	cmd.WaitDelay = grace

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return processResult{exitCode: -1, err: err}
	}
	if err := cmd.Start(); err != nil {
		return processResult{
			exitCode: -1,
			notFound: errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist),
			err:      err,
		}
	}

	var tail bytes.Buffer
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, scanBufferSize), scanBufferMax)
	scanner.Split(splitByNewlineOrCR)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		appendLimited(&tail, line+"\n", stderrTailLimit)
		if seconds, ok := ParseProgressTime(line); ok && onTime != nil {
			onTime(seconds)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		appendLimited(&tail, err.Error()+"\n", stderrTailLimit)
	}

	waitErr := cmd.Wait()
	result := processResult{stderrTail: strings.TrimSpace(tail.String()), err: waitErr}
	if waitErr == nil {
		return result
	}
	result.exitCode = -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.exitCode = exitErr.ExitCode()
	}
	return result
}

func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// appendLimited keeps only the newest limit bytes.
func appendLimited(buf *bytes.Buffer, value string, limit int) {
	buf.WriteString(value)
	if buf.Len() <= limit {
		return
	}
	keep := buf.Bytes()[buf.Len()-limit:]
	trimmed := append([]byte(nil), keep...)
	buf.Reset()
	buf.Write(trimmed)
}

// lastLine returns the final non-empty line of a stderr tail.
func lastLine(tail string) string {
	tail = strings.TrimSpace(tail)
	if i := strings.LastIndexByte(tail, '\n'); i >= 0 {
		return tail[i+1:]
	}
	return tail
}
