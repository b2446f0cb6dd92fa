package follow

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
)

// DefaultScanTimeout is how long Discover browses before giving up.
const DefaultScanTimeout = 5 * time.Second

// Endpoint is a running follower found on the local network.
type Endpoint struct {
	Instance     string
	Host         string
	Port         int
	Path         string
	DiscoveredAt time.Time
}

// Addr returns the dialable host:port of the endpoint.
func (e *Endpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Discover browses mDNS for running followers. It returns whatever answered
// within the timeout; an empty slice is not an error.
func Discover(ctx context.Context, timeout time.Duration) ([]*Endpoint, error) {
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("follow: failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	endpoints := make([]*Endpoint, 0)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for entry := range entries {
			if ep := parseServiceEntry(entry); ep != nil {
				endpoints = append(endpoints, ep)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("follow: failed to browse for followers: %w", err)
	}

	<-ctx.Done()
	<-collected

	return endpoints, nil
}

// parseServiceEntry converts a service entry into an Endpoint.
// Returns nil for entries without a usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Endpoint {
	var host string
	for _, addr := range entry.AddrIPv4 {
		host = addr.String()
		break
	}
	if host == "" && len(entry.AddrIPv6) > 0 {
		host = "[" + entry.AddrIPv6[0].String() + "]"
	}
	if host == "" || entry.Port == 0 {
		return nil
	}

	// TXT records are "key=value"; only path matters here
	path := "/follow"
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 && parts[0] == "path" {
			path = parts[1]
		}
	}

	return &Endpoint{
		Instance:     entry.Instance,
		Host:         host,
		Port:         entry.Port,
		Path:         path,
		DiscoveredAt: time.Now(),
	}
}

// Follow dials a follower at host:port and invokes fn for every log line
// until the server closes the connection or the context is cancelled. The
// retained buffer is replayed first, so fn sees the full recent history.
func Follow(ctx context.Context, addr, path string, fn func(line string)) error {
	if path == "" {
		path = "/follow"
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: path}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("follow: failed to connect to %s: %w", u.String(), err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock the read loop on cancellation
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("follow: connection lost: %w", err)
		}
		fn(string(message))
	}
}
