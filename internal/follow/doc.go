// Package follow implements the optional live log follower: a small HTTP
// server with a single /follow websocket endpoint that replays the current
// log buffer to a connecting client and then streams appended lines.
//
// The follower is read-only - there is no way to drive the UI or the job
// through it - and is off by default; the TUI enables it with
// --follow-addr. When running, the endpoint is announced over mDNS as
// "_nexup._tcp" so bench tooling can locate in-progress QC runs without
// address bookkeeping.
package follow
