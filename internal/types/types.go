// Package types holds the shared vocabulary of the signaling server: wire
// verbs, session states, and the small interfaces that let the coordinator
// and room packages talk about peers without depending on a transport
// implementation.
package types

// Verb is the tag of a wire message.
type Verb string

const (
	VerbWaitingForConnectionCode Verb = "WAITING_FOR_CONNECTION_CODE"
	VerbState                    Verb = "STATE"
	VerbConnection               Verb = "CONNECTION"
	VerbConnectionResponse       Verb = "CONNECTION_RESPONSE"
	VerbStartCall                Verb = "START_CALL"
	VerbOffer                    Verb = "OFFER"
	VerbAnswer                   Verb = "ANSWER"
	VerbICE                      Verb = "ICE"

	// VerbMalformed is never sent on the wire; it is the codec's result for
	// a line it could not parse into one of the verbs above.
	VerbMalformed Verb = ""
)

// ConnResult is the payload of a CONNECTION_RESPONSE.
type ConnResult string

const (
	ConnResultConnected ConnResult = "CONNECTED"
	ConnResultRoomFull  ConnResult = "ROOM_FULL"
)

// SessionState is a room's session state, advisory to clients and
// broadcast on every transition.
type SessionState string

const (
	StateImpossible SessionState = "Impossible"
	StateReady      SessionState = "Ready"
	StateCreating   SessionState = "Creating"
	StateActive     SessionState = "Active"
)

// RoomCode is a 6-character, visually-unambiguous room identifier.
type RoomCode string

// SessionID is a server-minted opaque identifier for one live connection.
type SessionID string

// RoomCodeAlphabet is the alphabet room codes are drawn from: capital
// letters minus I/O, digits minus 0/1.
const RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomCodeLength is the fixed length of a generated room code.
const RoomCodeLength = 6

// Peer is the coordinator's view of a live connection: a sink that accepts
// outbound lines and a close operation used on admission failure or
// transport error. It intentionally carries no transport detail.
type Peer interface {
	// ID returns this peer's session identifier.
	ID() SessionID
	// Send enqueues a line for delivery. It MUST be non-blocking; a full
	// outbox is a backpressure signal, not something Send retries.
	Send(line []byte) error
	// Close tears down the underlying connection with a reason, used for
	// coordinator-initiated disconnects (e.g. room full, outbox overflow).
	Close(reason string)
}
