package testsupport

import (
	"fmt"
	"sort"
	"strings"
	"testing"
)

// FFmpegStub describes the behaviour of a fake ffmpeg executable.
type FFmpegStub struct {
	// Encoders are listed by "-encoders"; libx264 is always present.
	Encoders []string
	// Times are emitted as time= progress values, separated by carriage returns.
	Times []string
	// FailOn makes conversions of inputs containing this substring exit 1.
	FailOn string
	// RejectOn makes conversions of inputs containing this substring exit 1
	// without touching the output.
	RejectOn string
	// HangOn makes conversions of inputs containing this substring write a
	// partial output and then block until signalled.
	HangOn string
	// LogPath receives one line of arguments per invocation.
	LogPath string
}

// WriteFFmpegStub writes a fake ffmpeg into dir and returns its path.
func WriteFFmpegStub(t testing.TB, dir string, stub FFmpegStub) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	if stub.LogPath != "" {
		fmt.Fprintf(&b, "echo \"$*\" >> %s\n", shellQuote(stub.LogPath))
	}
	b.WriteString("in=\"\"\nout=\"\"\nprev=\"\"\n")
	b.WriteString("for arg in \"$@\"; do\n")
	b.WriteString("  if [ \"$arg\" = \"-encoders\" ]; then\n")
	b.WriteString("    echo 'Encoders:'\n    echo ' V..... = Video'\n    echo ' ------'\n")
	b.WriteString("    echo ' V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)'\n")
	for _, enc := range stub.Encoders {
		fmt.Fprintf(&b, "    echo ' V....D %-20s %s encoder (codec h264)'\n", enc, enc)
	}
	b.WriteString("    exit 0\n  fi\n")
	b.WriteString("  if [ \"$prev\" = \"-i\" ]; then in=\"$arg\"; fi\n")
	b.WriteString("  prev=\"$arg\"\n  out=\"$arg\"\ndone\n")
	if stub.RejectOn != "" {
		fmt.Fprintf(&b, "case \"$in\" in *%s*) echo 'Invalid data found when processing input' >&2; exit 1;; esac\n", stub.RejectOn)
	}
	if stub.FailOn != "" {
		fmt.Fprintf(&b, "case \"$in\" in *%s*) echo 'partial' > \"$out\"; echo 'Conversion failed!' >&2; exit 1;; esac\n", stub.FailOn)
	}
	if stub.HangOn != "" {
		fmt.Fprintf(&b, "case \"$in\" in *%s*) printf 'frame=1 time=00:00:00.50 bitrate=1\\r' >&2; echo 'partial' > \"$out\"; exec sleep 30;; esac\n", stub.HangOn)
	}
	for _, ts := range stub.Times {
		fmt.Fprintf(&b, "printf 'frame=1 fps=0.0 q=-1.0 size=0kB time=%s bitrate=1.0kbits/s speed=1x\\r' >&2\n", ts)
	}
	b.WriteString("echo 'converted' > \"$out\"\nexit 0\n")

	return WriteExecutable(t, dir, "ffmpeg", b.String())
}

// WriteFFprobeStub writes a fake ffprobe that reports the given durations
// keyed by input base name. Unknown inputs exit 1. A value of "" omits the
// duration field.
func WriteFFprobeStub(t testing.TB, dir string, durations map[string]string) string {
	t.Helper()

	names := make([]string, 0, len(durations))
	for name := range durations {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("#!/bin/sh\nfor last; do :; done\n")
	b.WriteString("case \"$(basename \"$last\")\" in\n")
	for _, name := range names {
		value := durations[name]
		format := `{"format":{"format_name":"matroska"},"streams":[]}`
		if value != "" {
			format = fmt.Sprintf(`{"format":{"format_name":"matroska","duration":"%s"},"streams":[{"index":0,"codec_type":"video","codec_name":"h264"}]}`, value)
		}
		fmt.Fprintf(&b, "  %s) echo '%s' ;;\n", shellQuote(name), format)
	}
	b.WriteString("  *) echo \"$last: No such file or directory\" >&2; exit 1 ;;\nesac\n")

	return WriteExecutable(t, dir, "ffprobe", b.String())
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
