package follow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nexsoft/nexup/internal/logbuf"
)

func TestFollowReplaysAndStreams(t *testing.T) {
	buf := logbuf.New(50)
	buf.Append("pre-1")
	buf.Append("pre-2")

	s := NewServer(buf, "test-bench")
	if err := s.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer shutdown(t, s)

	conn := dial(t, s)
	defer func() { _ = conn.Close() }()

	// Replay of the retained buffer comes first, in order
	if got := readLine(t, conn); !strings.HasSuffix(got, "pre-1") {
		t.Errorf("first replayed line = %q, want suffix pre-1", got)
	}
	if got := readLine(t, conn); !strings.HasSuffix(got, "pre-2") {
		t.Errorf("second replayed line = %q, want suffix pre-2", got)
	}

	// Lines appended after connect are streamed
	buf.Append("live-1")
	if got := readLine(t, conn); !strings.HasSuffix(got, "live-1") {
		t.Errorf("streamed line = %q, want suffix live-1", got)
	}
}

func TestFollowMultipleClients(t *testing.T) {
	buf := logbuf.New(50)
	buf.Append("hello")

	s := NewServer(buf, "test-bench")
	if err := s.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer shutdown(t, s)

	connA := dial(t, s)
	defer func() { _ = connA.Close() }()
	connB := dial(t, s)
	defer func() { _ = connB.Close() }()

	// Both clients see the replay and the live line independently
	for name, conn := range map[string]*websocket.Conn{"A": connA, "B": connB} {
		if got := readLine(t, conn); !strings.HasSuffix(got, "hello") {
			t.Errorf("client %s replay = %q, want suffix hello", name, got)
		}
	}

	buf.Append("fanout")
	for name, conn := range map[string]*websocket.Conn{"A": connA, "B": connB} {
		if got := readLine(t, conn); !strings.HasSuffix(got, "fanout") {
			t.Errorf("client %s streamed = %q, want suffix fanout", name, got)
		}
	}
}

func TestServerAddrAfterStart(t *testing.T) {
	s := NewServer(logbuf.New(10), "")

	if got := s.Addr(); got != "" {
		t.Errorf("Addr() before Start = %q, want empty", got)
	}

	if err := s.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer shutdown(t, s)

	if got := s.Addr(); got == "" || strings.HasSuffix(got, ":0") {
		t.Errorf("Addr() after Start = %q, want concrete port", got)
	}
}

// Helper functions

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	url := "ws://" + s.Addr() + "/follow"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	return conn
}

func readLine(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("failed to set read deadline: %v", err)
	}
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Fatalf("message type = %d, want text", msgType)
	}
	return string(data)
}

func shutdown(t *testing.T, s *Server) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
