package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/rtc-signal/internal/logging"
	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

// wsConnection is the subset of *websocket.Conn the Client depends on,
// kept as an interface so tests can substitute a fake without opening a
// real socket.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
}

const outboxCapacity = 32

// Client adapts one WebSocket connection to types.Peer. The wire protocol
// is one verb per line carried in text frames (§4.1/§6) — there is a
// single outbox channel, not the priority/normal split the conferencing
// transport used, because every signaling verb is equally time-sensitive
// and the room only ever has two members.
type Client struct {
	conn wsConnection
	id   types.SessionID

	pingInterval time.Duration
	idleTimeout  time.Duration

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once

	outbox chan []byte
}

func newClient(conn wsConnection, id types.SessionID, pingInterval, idleTimeout time.Duration) *Client {
	return &Client{
		conn:         conn,
		id:           id,
		pingInterval: pingInterval,
		idleTimeout:  idleTimeout,
		outbox:       make(chan []byte, outboxCapacity),
	}
}

// ID satisfies types.Peer.
func (c *Client) ID() types.SessionID { return c.id }

// Send satisfies types.Peer. It is non-blocking: a full outbox is
// reported as an error rather than applying backpressure (§5 — the
// caller is expected to drop the peer on error, not retry). The closed
// check and the channel send happen under the same lock Close uses, so a
// concurrent Close can never close c.outbox out from under an in-flight
// send (the two would otherwise race: Close is reachable from
// Server.Shutdown while a send driven by the coordinator's own mutex is
// in flight on a different goroutine).
func (c *Client) Send(line []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.outbox <- line:
		return nil
	default:
		return errOutboxFull
	}
}

// Close satisfies types.Peer. It is idempotent and safe to call from any
// goroutine; it unblocks writePump, which performs the actual socket
// close.
func (c *Client) Close(reason string) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.outbox)
		c.mu.Unlock()
		logging.Info(context.Background(), "closing client connection", zap.String("sessionId", string(c.id)), zap.String("reason", reason))
	})
}

// readPump blocks reading text frames off the connection and forwards
// each to onLine, until the connection errors or closes. It installs the
// idle-timeout/pong handling and calls onClose exactly once on exit.
func (c *Client) readPump(ctx context.Context, onLine func(ctx context.Context, line string), onClose func(ctx context.Context)) {
	defer onClose(ctx)
	defer c.conn.Close()

	// Any traffic (a pong or a frame) extends the deadline far enough to
	// cover the next ping plus idleTimeout for the peer to answer it.
	extendDeadline := func() {
		c.conn.SetReadDeadline(time.Now().Add(c.pingInterval + c.idleTimeout))
	}
	extendDeadline()
	c.conn.SetPongHandler(func(string) error {
		extendDeadline()
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		extendDeadline()
		if messageType != websocket.TextMessage {
			continue
		}
		onLine(ctx, string(data))
	}
}

// writePump drains the outbox to the connection and sends periodic pings
// to keep the idle timeout from tripping on a quiet-but-healthy link.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()

	const writeWait = 10 * time.Second

	for {
		select {
		case line, ok := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, line); err != nil {
				logging.Warn(ctx, "write failed", zap.String("sessionId", string(c.id)), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type outboxFullError struct{}

func (outboxFullError) Error() string { return "transport: outbox full" }

var errOutboxFull = outboxFullError{}
