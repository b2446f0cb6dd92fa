// Package tui implements the interactive configuration screen for nexup.
//
// The screen is a single Bubble Tea model with three input states:
//
//   - Navigating: arrow keys move over the field list, flag list, and the
//     Start action; left/right toggles flags; enter opens the field editor
//     or starts the job.
//   - Editing: a centered popup with a text input; enter commits the buffer
//     into the configuration store, esc discards it.
//   - ConfirmingQuit: shown when quit is requested while the updater is
//     still running; 'y' kills the child and exits, anything else cancels.
//
// The model owns all presentation state (theme, mode, status message). The
// job runner never touches the model; it appends lines to the shared log
// buffer and delivers its terminal outcome on a channel. Two long-lived
// commands bridge those into the event loop: waitForLog re-arms itself on
// every buffer wakeup, and waitForDone fires exactly once per job.
//
// Coloring is a fixed six-entry table: theme (dark/light) crossed with mode
// (neutral/working/ok). The mode tracks the job lifecycle so the whole
// screen background signals status at a glance.
//
// # Logging Integration
//
// Like the rest of nexup, this package expects zap logging to be silent
// unless NEXUP_LOG_LEVEL is set, so the alternate screen is never polluted
// by log writes to stderr.
package tui
