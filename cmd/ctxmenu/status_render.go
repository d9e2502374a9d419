package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset        = "\x1b[0m"
	statusLabelWidth = 18
	statusIndent     = "  "
)

// report writes sectioned status output, coloured when out is a terminal.
type report struct {
	out      io.Writer
	colorize bool
}

func newReport(out io.Writer) *report {
	return &report{out: out, colorize: shouldColorize(out)}
}

func (r *report) section(title string) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	fmt.Fprintln(r.out, r.paint(statusInfo, heading))
}

func (r *report) line(label string, kind statusKind, message string) {
	fmt.Fprintln(r.out, renderStatusLine(label, kind, message, r.colorize))
}

func (r *report) text(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *report) gap() {
	fmt.Fprintln(r.out)
}

func (r *report) paint(kind statusKind, s string) string {
	if !r.colorize {
		return s
	}
	return statusStyles[kind].color + s + ansiReset
}

// renderStatusLine formats "  Label:            [KIND] message".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	state := "[" + statusStyles[kind].label + "]"
	if message != "" {
		state += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", state)
	if colorize {
		return statusStyles[kind].color + line + ansiReset
	}
	return line
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func shouldColorize(w io.Writer) bool {
	return os.Getenv("NO_COLOR") == "" && isTerminal(w)
}
