// Package room implements the Room Registry and Room described in the
// signaling protocol: a code-addressed, at-most-two-peer membership slot
// carrying a session state machine.
//
// Neither Room nor Registry is internally synchronized. Both are owned
// exclusively by the coordinator, which serializes all mutation behind one
// coarse mutex (see internal/coordinator) — the same model the teacher
// repo's Hub/Room pair uses for its rooms map and membership list.
package room

import (
	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

// Room holds the two-peer membership slot, the session state, and the
// per-room invariants described by the protocol.
type Room struct {
	Code    types.RoomCode
	Members []types.Peer // ordered by arrival: initiator first, joiner second
	State   types.SessionState
}

func newRoom(code types.RoomCode) *Room {
	return &Room{
		Code:    code,
		Members: nil,
		State:   types.StateImpossible,
	}
}

// Has reports whether p is already a member of this room.
func (r *Room) Has(p types.Peer) bool {
	for _, m := range r.Members {
		if m.ID() == p.ID() {
			return true
		}
	}
	return false
}

// Full reports whether the room already holds two members.
func (r *Room) Full() bool {
	return len(r.Members) >= 2
}

// Empty reports whether the room currently has no members.
func (r *Room) Empty() bool {
	return len(r.Members) == 0
}

// Add appends a peer to the membership list. Callers MUST check Full()
// first; Add does not enforce the two-peer cap itself.
func (r *Room) Add(p types.Peer) {
	r.Members = append(r.Members, p)
}

// Remove drops a peer from the membership list, if present.
func (r *Room) Remove(p types.Peer) {
	for i, m := range r.Members {
		if m.ID() == p.ID() {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return
		}
	}
}

// Others returns every member except p — the relay target set for a
// message originating from p.
func (r *Room) Others(p types.Peer) []types.Peer {
	others := make([]types.Peer, 0, len(r.Members))
	for _, m := range r.Members {
		if m.ID() != p.ID() {
			others = append(others, m)
		}
	}
	return others
}
