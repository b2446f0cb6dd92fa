package follow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/nexsoft/nexup/internal/logbuf"
	"github.com/nexsoft/nexup/internal/logging"
)

const (
	// ServiceType is the mDNS service type announced for a running follower
	ServiceType = "_nexup._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Poll interval for new log lines
	pollInterval = 250 * time.Millisecond

	// Send pings to peer with this period
	pingPeriod = 30 * time.Second
)

// Server exposes the live log buffer over a read-only websocket endpoint so
// a bench operator can follow an update from another machine. Clients get
// the retained buffer replayed first, then appended lines as they arrive.
// There is no control channel; anything a client sends is discarded.
type Server struct {
	log        *logbuf.Buffer
	instance   string
	httpServer *http.Server
	listener   net.Listener
	mdns       *zeroconf.Server
	upgrader   websocket.Upgrader
}

// NewServer creates a follower for the given log buffer. The instance name
// (typically the product serial number, or the hostname when unknown)
// becomes the mDNS instance label.
func NewServer(log *logbuf.Buffer, instance string) *Server {
	if instance == "" {
		instance = "nexup"
	}
	return &Server{
		log:      log,
		instance: instance,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The follower is read-only bench tooling on a trusted QC LAN
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start binds the listen address and serves the /follow endpoint in the
// background. The announcement over mDNS is best-effort: a bench without
// multicast still gets the endpoint itself.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("follow: failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/follow", s.handleFollow)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("Follow server stopped", zap.Error(err))
		}
	}()

	s.announce()

	logging.Info("Follow server listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound listen address, valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the mDNS announcement and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// announce registers the follower with mDNS so bench tooling can discover
// in-progress QC runs without knowing addresses.
func (s *Server) announce() {
	_, portStr, err := net.SplitHostPort(s.listener.Addr().String())
	if err != nil {
		logging.Warn("Follow mDNS announce skipped", zap.Error(err))
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		logging.Warn("Follow mDNS announce skipped", zap.Error(err))
		return
	}

	txt := []string{"path=/follow"}
	mdns, err := zeroconf.Register(s.instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		logging.Warn("Follow mDNS announce failed", zap.Error(err))
		return
	}
	s.mdns = mdns
}

// handleFollow upgrades the connection and streams log lines until the
// client goes away.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Follow upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	defer func() { _ = conn.Close() }()

	logging.Info("Follow client connected", zap.String("remote_addr", r.RemoteAddr))

	// Discard anything the client sends and notice disconnects promptly
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Replay what the buffer holds, then tail it
	lines, cursor := s.log.Since(0)
	if err := writeLines(conn, lines); err != nil {
		return
	}

	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-poll.C:
			lines, cursor = s.log.Since(cursor)
			if err := writeLines(conn, lines); err != nil {
				logging.Info("Follow client disconnected", zap.String("remote_addr", r.RemoteAddr))
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				logging.Info("Follow client disconnected", zap.String("remote_addr", r.RemoteAddr))
				return
			}
		}
	}
}

func writeLines(conn *websocket.Conn, lines []string) error {
	for _, line := range lines {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return err
		}
	}
	return nil
}
