package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/rtc-signal/internal/logging"
	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

// Coordinator is the subset of *coordinator.Coordinator the transport
// depends on, kept as an interface so server tests can substitute a
// recording fake instead of driving the real state machine.
type Coordinator interface {
	OnOpen(ctx context.Context, peer types.Peer)
	OnMessage(ctx context.Context, sessionID types.SessionID, rawLine string)
	OnClose(ctx context.Context, sessionID types.SessionID)
}

// Server upgrades incoming HTTP requests to WebSocket connections and
// hands each one to the Coordinator as a types.Peer (§4.1).
type Server struct {
	coordinator    Coordinator
	allowedOrigins []string
	pingInterval   time.Duration
	idleTimeout    time.Duration

	mu      sync.Mutex
	clients map[types.SessionID]*Client
}

// NewServer constructs a Server. allowedOrigins is a comma-separated list
// as read from configuration (ALLOWED_ORIGINS).
func NewServer(coordinator Coordinator, allowedOrigins string, pingInterval, idleTimeout time.Duration) *Server {
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return &Server{
		coordinator:    coordinator,
		allowedOrigins: origins,
		pingInterval:   pingInterval,
		idleTimeout:    idleTimeout,
		clients:        make(map[types.SessionID]*Client),
	}
}

// validateOrigin allows same-scheme/host matches against the configured
// allow-list, and allows requests with no Origin header at all (non-
// browser clients, health probes, local testing).
func validateOrigin(r *http.Request, allowedOrigins []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	for _, allowed := range allowedOrigins {
		allowedURL, err := url.Parse(allowed)
		if err != nil {
			continue
		}
		if originURL.Scheme == allowedURL.Scheme && originURL.Host == allowedURL.Host {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and starts the read/write pumps for a new
// session. The session id is minted here, not supplied by the client —
// there is no authentication layer in front of this endpoint (§6).
func (s *Server) ServeWS(c *gin.Context) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return validateOrigin(r, s.allowedOrigins)
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	sessionID := types.SessionID(uuid.NewString())
	client := newClient(conn, sessionID, s.pingInterval, s.idleTimeout)

	s.mu.Lock()
	s.clients[sessionID] = client
	s.mu.Unlock()

	ctx := logging.WithSessionID(context.Background(), string(sessionID))

	s.coordinator.OnOpen(ctx, client)

	go client.writePump(ctx)
	client.readPump(ctx, func(ctx context.Context, line string) {
		s.coordinator.OnMessage(ctx, sessionID, line)
	}, func(ctx context.Context) {
		s.coordinator.OnClose(ctx, sessionID)
		s.mu.Lock()
		delete(s.clients, sessionID)
		s.mu.Unlock()
	})
}

// Shutdown closes every tracked client connection.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, client := range s.clients {
		client.Close("server shutting down")
	}
}
