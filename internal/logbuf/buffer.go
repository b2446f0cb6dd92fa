package logbuf

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCapacity is the number of log lines retained before the oldest
// entries are evicted.
const DefaultCapacity = 500

// Buffer is a bounded, timestamped line buffer shared between the UI
// goroutine and a job's reader goroutine. All methods are safe for
// concurrent use; appends preserve arrival order and eviction is strictly
// oldest-first.
type Buffer struct {
	mu       sync.Mutex
	lines    []string
	total    int // lines ever appended, monotonic
	capacity int
	now      func() time.Time
	notify   chan struct{}
}

// New creates a Buffer with the given capacity. Capacity values below 1
// fall back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		now:      time.Now,
		notify:   make(chan struct{}, 1),
	}
}

// Append adds one line, prefixed with a wall-clock HH:MM:SS timestamp.
// When the buffer is at capacity the single oldest line is evicted.
func (b *Buffer) Append(line string) {
	b.mu.Lock()
	stamped := fmt.Sprintf("[%s] %s", b.now().Format("15:04:05"), line)
	b.lines = append(b.lines, stamped)
	b.total++
	if len(b.lines) > b.capacity {
		b.lines = b.lines[len(b.lines)-b.capacity:]
	}
	b.mu.Unlock()

	// Coalesced wakeup for anyone waiting on new lines
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Appendf formats and appends one line.
func (b *Buffer) Appendf(format string, args ...interface{}) {
	b.Append(fmt.Sprintf(format, args...))
}

// Tail returns a copy of the most recent n lines in append order.
// n larger than the buffer returns everything.
func (b *Buffer) Tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(b.lines) {
		n = len(b.lines)
	}
	out := make([]string, n)
	copy(out, b.lines[len(b.lines)-n:])
	return out
}

// Snapshot returns a copy of all retained lines in append order.
func (b *Buffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of retained lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Since returns every retained line appended after the given cursor, plus
// the new cursor value. A zero cursor yields everything retained. Lines
// evicted before the caller catches up are silently skipped; consumers that
// poll faster than eviction never miss anything.
func (b *Buffer) Since(cursor int) ([]string, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	missed := b.total - cursor
	if missed <= 0 {
		return nil, b.total
	}
	if missed > len(b.lines) {
		missed = len(b.lines)
	}
	out := make([]string, missed)
	copy(out, b.lines[len(b.lines)-missed:])
	return out, b.total
}

// Wait returns a channel that receives a value after the next Append.
// Notifications are coalesced: one receive may cover several appends, so
// consumers should re-read the tail rather than count signals.
func (b *Buffer) Wait() <-chan struct{} {
	return b.notify
}
