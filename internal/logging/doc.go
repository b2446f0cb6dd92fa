// Package logging provides structured logging for nexup using Uber's zap.
//
// Logging is silent by default. Set NEXUP_LOG_LEVEL to "debug", "info",
// "warn", or "error" to enable it. Because the interactive TUI owns the
// terminal, log output is always written to a file - NEXUP_LOG_FILE when
// set, otherwise nexup.log under the user cache directory.
//
// The package exposes a zap wrapper with package-level helpers (Info, Debug,
// Warn, Error) plus domain helpers for job lifecycle and detection events.
// Call Sync() before process exit to flush buffered entries.
package logging
