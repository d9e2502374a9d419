// Package services defines shared utilities consumed by the conversion engine,
// the text actions, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, operation names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is and choose a user-facing hint.
//
// Integrations with remote services live in subpackages (see deepl).
package services
