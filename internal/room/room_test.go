package room

import (
	"testing"

	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

type fakePeer struct {
	id     types.SessionID
	sent   [][]byte
	closed bool
}

func (f *fakePeer) ID() types.SessionID { return f.id }
func (f *fakePeer) Send(line []byte) error {
	f.sent = append(f.sent, line)
	return nil
}
func (f *fakePeer) Close(reason string) { f.closed = true }

func TestRoom_AddAndCap(t *testing.T) {
	r := newRoom("ABCD23")
	a := &fakePeer{id: "a"}
	b := &fakePeer{id: "b"}

	if !r.Empty() {
		t.Fatal("new room should be empty")
	}
	r.Add(a)
	if r.Full() {
		t.Fatal("room with one member should not be full")
	}
	r.Add(b)
	if !r.Full() {
		t.Fatal("room with two members should be full")
	}
	if len(r.Members) != 2 || r.Members[0] != types.Peer(a) || r.Members[1] != types.Peer(b) {
		t.Fatal("expected initiator first, joiner second")
	}
}

func TestRoom_HasAndOthers(t *testing.T) {
	r := newRoom("ABCD23")
	a := &fakePeer{id: "a"}
	b := &fakePeer{id: "b"}
	r.Add(a)
	r.Add(b)

	if !r.Has(a) || !r.Has(b) {
		t.Fatal("expected both members present")
	}

	others := r.Others(a)
	if len(others) != 1 || others[0].ID() != "b" {
		t.Fatalf("expected Others(a) = [b], got %v", others)
	}
}

func TestRoom_Remove(t *testing.T) {
	r := newRoom("ABCD23")
	a := &fakePeer{id: "a"}
	b := &fakePeer{id: "b"}
	r.Add(a)
	r.Add(b)

	r.Remove(a)
	if r.Has(a) {
		t.Fatal("expected a removed")
	}
	if !r.Has(b) {
		t.Fatal("expected b to remain")
	}
	if r.Empty() {
		t.Fatal("room should still have one member")
	}

	r.Remove(b)
	if !r.Empty() {
		t.Fatal("expected room to be empty after both members leave")
	}
}
