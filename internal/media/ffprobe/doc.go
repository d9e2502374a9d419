// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns the parsed Result; Result.Duration
// yields a usable duration or reports that none is available so callers can
// substitute a default weight.
package ffprobe
