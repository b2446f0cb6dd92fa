// Package logbuf implements the bounded, timestamped log line buffer shown
// in the nexup UI. A job's reader goroutine appends while the UI goroutine
// reads, so the buffer is mutex-guarded; capacity is fixed at creation and
// the oldest line is evicted first once full.
package logbuf
