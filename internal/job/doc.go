// Package job owns the lifecycle of one updater invocation: building the
// argument vector and environment from the configuration store, spawning
// the script, streaming its merged stdout/stderr line by line into the
// shared log buffer, and recording the terminal outcome.
//
// Argument order is fixed by a table (see args.go), never by flag toggle
// order, so repeated runs with the same configuration are byte-identical
// invocations. Configuration reaches the script twice: as positional
// arguments and as environment variables (fields verbatim, flags as
// "1"/"0"), so the script may read either channel.
//
// The runner performs no internal serialization. Callers must check
// Handle.Running before starting another job; the UI does exactly that.
// Every failure mode - script missing, spawn fault, broken stream, nonzero
// exit - is absorbed here and surfaced as an Outcome plus log text; nothing
// escapes to crash the UI loop.
package job
