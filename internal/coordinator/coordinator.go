// Package coordinator implements the signaling protocol's state machine.
// The Coordinator is the sole mutator of rooms and the sole sender of
// outbound messages (§4.4); it is an explicit value constructed at
// startup and passed to the transport, not a package-level singleton
// (§9 DESIGN NOTES — avoid hidden module state).
package coordinator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/RoseWrightdev/rtc-signal/internal/codec"
	"github.com/RoseWrightdev/rtc-signal/internal/logging"
	"github.com/RoseWrightdev/rtc-signal/internal/metrics"
	"github.com/RoseWrightdev/rtc-signal/internal/room"
	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

// Coordinator serializes every state mutation behind one coarse mutex,
// per §5's option (b): the mutex guards the session table, the room
// registry, and every Room reachable from it. Handlers never block on
// network I/O while holding it — Send on a types.Peer is required to be
// non-blocking.
type Coordinator struct {
	mu       sync.Mutex
	registry *room.Registry
	sessions map[types.SessionID]types.Peer
	// peerRoom is kept separate from the Peer itself so the peer→room
	// edge is a lookup, not an owning pointer — there is no cycle between
	// Peer and Room (§9 DESIGN NOTES).
	peerRoom map[types.SessionID]*room.Room
}

// New constructs a Coordinator around the given Registry.
func New(registry *room.Registry) *Coordinator {
	return &Coordinator{
		registry: registry,
		sessions: make(map[types.SessionID]types.Peer),
		peerRoom: make(map[types.SessionID]*room.Room),
	}
}

// OnOpen registers a newly accepted peer and sends it the unsolicited
// connection-code prompt. The peer is not yet in any room. The lock is
// held for the whole call, not just the registration: send's failure
// path runs dropSessionLocked, which mutates c.sessions/c.peerRoom and
// must never run outside c.mu (§5 — onOpen/onMessage/onClose serialize
// with respect to each other).
func (c *Coordinator) OnOpen(ctx context.Context, peer types.Peer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[peer.ID()] = peer
	metrics.IncConnection()
	logging.Info(ctx, "peer connected")
	c.send(ctx, peer, types.VerbWaitingForConnectionCode, "")
}

// OnMessage parses one inbound line with the codec and dispatches it by
// verb. Unknown verbs and protocol violations are logged; the connection
// is retained in both cases (§7).
func (c *Coordinator) OnMessage(ctx context.Context, sessionID types.SessionID, rawLine string) {
	verb, payload := codec.Parse(rawLine)

	c.mu.Lock()
	defer c.mu.Unlock()

	peer, ok := c.sessions[sessionID]
	if !ok {
		return // session already closed; nothing to do
	}

	switch verb {
	case types.VerbState:
		c.handleStateLocked(ctx, peer)
	case types.VerbConnection:
		c.handleConnectionLocked(ctx, peer, payload)
	case types.VerbStartCall:
		c.handleStartCallLocked(ctx, peer)
	case types.VerbOffer:
		c.handleOfferLocked(ctx, peer, payload)
	case types.VerbAnswer:
		c.handleAnswerLocked(ctx, peer, payload)
	case types.VerbICE:
		c.handleICELocked(ctx, peer, payload)
	default:
		metrics.VerbsRelayed.WithLabelValues("UNKNOWN", "malformed").Inc()
		logging.Warn(ctx, "malformed message", zap.String("line", rawLine))
	}
}

// OnClose removes a session, clears any room membership it held, and
// broadcasts the resulting Impossible state to the peer it leaves behind.
// It is safe to call more than once for the same session; subsequent
// calls are a no-op.
func (c *Coordinator) OnClose(ctx context.Context, sessionID types.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropSessionLocked(ctx, sessionID)
}

// dropSessionLocked is the shared body of OnClose and a drop triggered by
// outbox overflow (§5: a full outbox is backpressure, not retried — the
// peer is dropped via the same path as onClose). It is idempotent: a
// session already removed is a no-op, so a later Transport-driven OnClose
// for the same session is harmless.
func (c *Coordinator) dropSessionLocked(ctx context.Context, sessionID types.SessionID) {
	peer, ok := c.sessions[sessionID]
	if !ok {
		return
	}
	delete(c.sessions, sessionID)
	metrics.DecConnection()
	logging.Info(ctx, "peer disconnected")

	r, inRoom := c.peerRoom[sessionID]
	if !inRoom {
		return
	}
	delete(c.peerRoom, sessionID)
	r.Remove(peer)
	r.State = types.StateImpossible
	metrics.RoomStateTransitions.WithLabelValues(string(types.StateImpossible)).Inc()
	c.broadcastStateLocked(ctx, r)
	metrics.RoomMembers.WithLabelValues(string(r.Code)).Set(float64(len(r.Members)))

	if r.Empty() {
		c.scheduleGCLocked(r.Code)
	}
}

// Shutdown closes every live peer. Used on process shutdown to drain
// connections before the HTTP server stops accepting.
func (c *Coordinator) Shutdown(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, peer := range c.sessions {
		peer.Close("server shutting down")
	}
}

// --- event handlers (run under c.mu) ---

func (c *Coordinator) handleStateLocked(ctx context.Context, peer types.Peer) {
	r, ok := c.peerRoom[peer.ID()]
	if !ok {
		c.send(ctx, peer, types.VerbState, string(types.StateImpossible))
		return
	}
	c.send(ctx, peer, types.VerbState, string(r.State))
}

func (c *Coordinator) handleConnectionLocked(ctx context.Context, peer types.Peer, code string) {
	roomCode := types.RoomCode(code)

	if existing, already := c.peerRoom[peer.ID()]; already {
		if existing.Code == roomCode {
			// Idempotent: re-announcing the room the peer is already in.
			c.send(ctx, peer, types.VerbConnectionResponse, string(types.ConnResultConnected)+" "+code)
			return
		}
		// A peer may belong to at most one room; reject like any other
		// admission failure.
		c.rejectConnectionLocked(ctx, peer, "already in a different room")
		return
	}

	r := c.registry.GetOrCreate(roomCode)
	metrics.ActiveRooms.Set(float64(c.registry.Count()))
	if r.Full() {
		c.rejectConnectionLocked(ctx, peer, "room full")
		return
	}

	c.registry.CancelGC(roomCode) // a join cancels any pending empty-room GC
	r.Add(peer)
	c.peerRoom[peer.ID()] = r

	c.send(ctx, peer, types.VerbConnectionResponse, string(types.ConnResultConnected)+" "+code)

	if r.Full() {
		r.State = types.StateReady
		metrics.RoomStateTransitions.WithLabelValues(string(types.StateReady)).Inc()
	}
	metrics.RoomMembers.WithLabelValues(code).Set(float64(len(r.Members)))
	c.broadcastStateLocked(ctx, r)
}

func (c *Coordinator) rejectConnectionLocked(ctx context.Context, peer types.Peer, reason string) {
	metrics.AdmissionRejections.WithLabelValues(reason).Inc()
	c.send(ctx, peer, types.VerbConnectionResponse, string(types.ConnResultRoomFull))
	peer.Close("cannot accept: " + reason)
}

func (c *Coordinator) handleStartCallLocked(ctx context.Context, peer types.Peer) {
	r, ok := c.peerRoom[peer.ID()]
	if !ok {
		logging.Warn(ctx, "START_CALL from peer with no room")
		return
	}

	if r.State != types.StateActive {
		r.State = types.StateActive
		metrics.RoomStateTransitions.WithLabelValues(string(types.StateActive)).Inc()
		c.broadcastStateLocked(ctx, r)
	}

	for _, other := range r.Others(peer) {
		c.send(ctx, other, types.VerbStartCall, "")
	}
	metrics.VerbsRelayed.WithLabelValues(string(types.VerbStartCall), "relayed").Inc()
}

func (c *Coordinator) handleOfferLocked(ctx context.Context, peer types.Peer, sdp string) {
	r, ok := c.peerRoom[peer.ID()]
	if !ok || r.State != types.StateReady {
		logging.Warn(ctx, "OFFER ignored: wrong state or no room")
		metrics.VerbsRelayed.WithLabelValues(string(types.VerbOffer), "ignored").Inc()
		return
	}

	r.State = types.StateCreating
	metrics.RoomStateTransitions.WithLabelValues(string(types.StateCreating)).Inc()
	c.broadcastStateLocked(ctx, r)

	for _, other := range r.Others(peer) {
		c.send(ctx, other, types.VerbOffer, sdp)
	}
	metrics.VerbsRelayed.WithLabelValues(string(types.VerbOffer), "relayed").Inc()
}

func (c *Coordinator) handleAnswerLocked(ctx context.Context, peer types.Peer, sdp string) {
	r, ok := c.peerRoom[peer.ID()]
	if !ok || r.State != types.StateCreating {
		logging.Warn(ctx, "ANSWER ignored: wrong state or no room")
		metrics.VerbsRelayed.WithLabelValues(string(types.VerbAnswer), "ignored").Inc()
		return
	}

	for _, other := range r.Others(peer) {
		c.send(ctx, other, types.VerbAnswer, sdp)
	}
	metrics.VerbsRelayed.WithLabelValues(string(types.VerbAnswer), "relayed").Inc()

	r.State = types.StateActive
	metrics.RoomStateTransitions.WithLabelValues(string(types.StateActive)).Inc()
	c.broadcastStateLocked(ctx, r)
}

func (c *Coordinator) handleICELocked(ctx context.Context, peer types.Peer, candidate string) {
	r, ok := c.peerRoom[peer.ID()]
	if !ok || !r.Full() {
		logging.Warn(ctx, "ICE ignored: room does not have two members")
		metrics.VerbsRelayed.WithLabelValues(string(types.VerbICE), "ignored").Inc()
		return
	}

	for _, other := range r.Others(peer) {
		c.send(ctx, other, types.VerbICE, candidate)
	}
	metrics.VerbsRelayed.WithLabelValues(string(types.VerbICE), "relayed").Inc()
}

// broadcastStateLocked sends STATE <value> to every current member of r.
func (c *Coordinator) broadcastStateLocked(ctx context.Context, r *room.Room) {
	for _, member := range r.Members {
		c.send(ctx, member, types.VerbState, string(r.State))
	}
}

// scheduleGCLocked arranges for an empty room to be removed after the
// registry's grace period. The callback re-validates emptiness under the
// coordinator lock before removing, since new members may have joined in
// the interim.
func (c *Coordinator) scheduleGCLocked(code types.RoomCode) {
	c.registry.ScheduleGC(code, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.registry.CancelGC(code) // clear this timer's own bookkeeping
		r, ok := c.registry.Lookup(code)
		if !ok {
			return
		}
		if !r.Empty() {
			metrics.RoomGCSweeps.WithLabelValues("cancelled").Inc()
			return
		}
		c.registry.Remove(code)
		metrics.ActiveRooms.Set(float64(c.registry.Count()))
		metrics.RoomGCSweeps.WithLabelValues("removed").Inc()
	})
}

// send formats and enqueues one outbound message, logging (but not
// panicking on) delivery failure — a failed Send is equivalent to the
// peer already being gone.
func (c *Coordinator) send(ctx context.Context, peer types.Peer, verb types.Verb, payload string) {
	if err := peer.Send(codec.Format(verb, payload)); err != nil {
		logging.Warn(ctx, "send failed, dropping peer", zap.String("verb", string(verb)), zap.Error(err))
		peer.Close("outbox overflow")
		c.dropSessionLocked(ctx, peer.ID())
	}
}
