package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	scanBufferSize = 64 * 1024
	scanMaxLine    = 1024 * 1024
)

// Filter selects log lines. The zero value matches everything.
type Filter struct {
	// JobID keeps lines mentioning the job (full id or its short prefix).
	JobID string
	// Contains keeps lines containing the substring, case-insensitively.
	Contains string
}

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	if id := strings.TrimSpace(f.JobID); id != "" {
		short, _, _ := strings.Cut(id, "-")
		if !strings.Contains(line, id) && !strings.Contains(line, short) {
			return false
		}
	}
	if needle := strings.TrimSpace(f.Contains); needle != "" {
		if !strings.Contains(strings.ToLower(line), strings.ToLower(needle)) {
			return false
		}
	}
	return true
}

// Last returns up to n matching lines from the end of path and the offset
// just past them. A missing file yields no lines and offset 0.
func Last(path string, n int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	ring := make([]string, n)
	count, next := 0, 0
	var offset int64
	err = scanLines(file, func(line string, size int64) {
		offset += size
		if !filter.Match(line) {
			return
		}
		ring[next] = line
		next = (next + 1) % n
		if count < n {
			count++
		}
	})
	if err != nil {
		return nil, 0, err
	}

	lines := make([]string, 0, count)
	start := 0
	if count == n {
		start = next
	}
	for i := range count {
		lines = append(lines, ring[(start+i)%n])
	}
	return lines, offset, nil
}

// Follow calls emit for every matching line appended to path after offset
// until ctx is done. When the file shrinks below offset it is read again
// from the start.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, filter Filter, emit func(string)) error {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() < offset {
		offset = 0
	}
	if info.Size() == offset {
		return offset, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	err = scanLines(file, func(line string, size int64) {
		offset += size
		if filter.Match(line) {
			emit(line)
		}
	})
	return offset, err
}

// scanLines reports each complete line with its size in bytes including the
// newline. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(line string, size int64)) error {
	reader := bufio.NewReaderSize(r, scanBufferSize)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read log file: %w", err)
		}
		size := int64(len(line))
		if len(line) > scanMaxLine {
			line = line[:scanMaxLine]
		}
		fn(strings.TrimRight(line, "\r\n"), size)
	}
}
