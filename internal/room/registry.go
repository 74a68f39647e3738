package room

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

// ErrResourceExhausted is returned by Generate when the code-draw retry
// budget is exhausted, or when a room cap is configured and reached.
var ErrResourceExhausted = errors.New("room: resource exhausted")

// maxGenerateAttempts bounds collision retries during code generation.
const maxGenerateAttempts = 8

// Registry maps room code to Room, generates unused codes, and runs
// empty-room garbage collection. Like Room, it is not internally
// synchronized — see the package doc comment.
type Registry struct {
	rooms   map[types.RoomCode]*Room
	timers  map[types.RoomCode]*time.Timer
	gcGrace time.Duration
	cap     int // 0 = unlimited
}

// NewRegistry creates an empty Registry. gcGrace is the empty-room grace
// period (§4.3); cap is the maximum number of simultaneous rooms (0 means
// unlimited).
func NewRegistry(gcGrace time.Duration, roomCap int) *Registry {
	return &Registry{
		rooms:   make(map[types.RoomCode]*Room),
		timers:  make(map[types.RoomCode]*time.Timer),
		gcGrace: gcGrace,
		cap:     roomCap,
	}
}

// Generate draws an unused code, creates an empty Room under it, inserts
// the room, and returns the code. It retries on collision up to
// maxGenerateAttempts times before giving up.
func (reg *Registry) Generate() (types.RoomCode, error) {
	if reg.cap > 0 && len(reg.rooms) >= reg.cap {
		return "", ErrResourceExhausted
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := drawCode()
		if err != nil {
			return "", err
		}
		if _, exists := reg.rooms[code]; exists {
			continue
		}
		reg.rooms[code] = newRoom(code)
		return code, nil
	}
	return "", ErrResourceExhausted
}

func drawCode() (types.RoomCode, error) {
	alphabet := types.RoomCodeAlphabet
	buf := make([]byte, types.RoomCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return types.RoomCode(buf), nil
}

// Lookup returns the room for code, if any.
func (reg *Registry) Lookup(code types.RoomCode) (*Room, bool) {
	r, ok := reg.rooms[code]
	return r, ok
}

// GetOrCreate returns the room for code, creating and inserting an empty
// one if absent. This is how a joiner who knows a code may implicitly
// create the room (§4.3) — the registry does not distinguish initiator
// from joiner by API.
func (reg *Registry) GetOrCreate(code types.RoomCode) *Room {
	if r, ok := reg.rooms[code]; ok {
		return r
	}
	r := newRoom(code)
	reg.rooms[code] = r
	return r
}

// Remove unconditionally removes a room from the registry.
func (reg *Registry) Remove(code types.RoomCode) {
	delete(reg.rooms, code)
}

// Count returns the number of rooms currently held by the registry.
func (reg *Registry) Count() int {
	return len(reg.rooms)
}

// ScheduleGC arranges for onFire to run after the registry's grace period,
// unless cancelled first via CancelGC. Call sites are expected to pass a
// callback that re-validates the room is still empty before removing it
// (the timer fires without holding the coordinator's lock). Rescheduling
// (calling ScheduleGC again for the same code) replaces any pending timer
// rather than coalescing with it, matching §4.3's "reschedule, do not
// coalesce" rule.
func (reg *Registry) ScheduleGC(code types.RoomCode, onFire func()) {
	reg.CancelGC(code)
	reg.timers[code] = time.AfterFunc(reg.gcGrace, onFire)
}

// CancelGC cancels a pending GC timer for code, if one exists.
func (reg *Registry) CancelGC(code types.RoomCode) {
	if t, ok := reg.timers[code]; ok {
		t.Stop()
		delete(reg.timers, code)
	}
}
