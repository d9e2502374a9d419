// Package logging assembles structured slog loggers and formatting helpers used
// across ctxmenu.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so conversion jobs can tag log
// lines with job IDs, operations, and correlation IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// The popup draws a full-screen TUI, so callers building a logger for it set
// Options.FileOnly and keep stdio free.
package logging
