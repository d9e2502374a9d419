// Package notifications reports batch outcomes and failures via ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers can notify unconditionally. Per-event toggles in config.toml
// suppress individual message kinds.
package notifications
