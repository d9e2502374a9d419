package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// consoleHandler writes one line per record:
//
//	2026-01-02T03:04:05Z INFO encoding[0f8fad5b]: file converted input="a b.mkv"
//
// The component and job id move into the prefix; the job id is shortened
// to its first uuid group.
type consoleHandler struct {
	out        *syncWriter
	level      slog.Leveler
	withSource bool
	groups     []string
	preset     []field
}

type field struct {
	key   string
	value slog.Value
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(p)
	return err
}

func newConsoleHandler(w io.Writer, level slog.Leveler, withSource bool) slog.Handler {
	return &consoleHandler{out: &syncWriter{w: w}, level: level, withSource: withSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.preset...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.groups, attr)
		return true
	})

	var component, jobID string
	rest := fields[:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent && component == "":
			component = valueText(f.value)
		case f.key == FieldJobID && jobID == "":
			jobID = valueText(f.value)
		case f.key == FieldComponent, f.key == FieldJobID:
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf := make([]byte, 0, 160)
	buf = ts.UTC().AppendFormat(buf, time.RFC3339)
	buf = append(buf, ' ')
	buf = append(buf, levelLabel(record.Level)...)
	buf = append(buf, ' ')
	buf = appendPrefix(buf, component, jobID)

	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf = append(buf, msg...)

	if h.withSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			buf = fmt.Appendf(buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range rest {
		buf = append(buf, ' ')
		buf = append(buf, f.key...)
		buf = append(buf, '=')
		buf = appendValue(buf, f.value)
	}
	buf = append(buf, '\n')
	return h.out.write(buf)
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = append([]field(nil), h.preset...)
	for _, attr := range attrs {
		clone.preset = appendField(clone.preset, h.groups, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func appendPrefix(buf []byte, component, jobID string) []byte {
	switch {
	case component != "" && jobID != "":
		return fmt.Appendf(buf, "%s[%s]: ", component, shortJobID(jobID))
	case component != "":
		return append(append(buf, component...), ": "...)
	case jobID != "":
		return fmt.Appendf(buf, "[%s] ", shortJobID(jobID))
	}
	return buf
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, groups []string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(append([]string(nil), groups...), attr.Key)
		}
		for _, member := range attr.Value.Group() {
			dst = appendField(dst, inner, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(append(append([]string(nil), groups...), attr.Key), ".")
	}
	return append(dst, field{key: key, value: attr.Value})
}

func valueText(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().UTC().AppendFormat(buf, time.RFC3339)
	}
	s := valueText(v)
	if needsQuotes(s) {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func needsQuotes(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}

// shortJobID trims a uuid to its first group.
func shortJobID(id string) string {
	if head, _, ok := strings.Cut(id, "-"); ok && head != "" {
		return head
	}
	return id
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
