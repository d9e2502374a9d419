// Package config loads, normalizes, and validates ctxmenu configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DEEPL_AUTH_KEY. The Config type centralizes every knob the popup, the
// conversion engine, and the CLI need, so media extension sets, encoder
// preferences, and tool locations are resolved in one pass and then treated
// as immutable.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lower-cased extension sets, and clear validation errors.
package config
