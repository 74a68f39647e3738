package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeConnection implements wsConnection with function fields, following
// the teacher's mock-connection pattern.
type fakeConnection struct {
	mu               sync.Mutex
	ReadMessageFunc  func() (int, []byte, error)
	WriteMessageFunc func(int, []byte) error
	written          []writtenFrame
	closed           bool
}

type writtenFrame struct {
	messageType int
	data        []byte
}

func (f *fakeConnection) ReadMessage() (int, []byte, error) {
	if f.ReadMessageFunc != nil {
		return f.ReadMessageFunc()
	}
	return 0, nil, errors.New("no more messages")
}

func (f *fakeConnection) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, writtenFrame{messageType, append([]byte(nil), data...)})
	if f.WriteMessageFunc != nil {
		return f.WriteMessageFunc(messageType, data)
	}
	return nil
}

func (f *fakeConnection) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConnection) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeConnection) SetWriteDeadline(t time.Time) error { return nil }
func (f *fakeConnection) SetPongHandler(h func(string) error) {}

func (f *fakeConnection) frames() []writtenFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]writtenFrame, len(f.written))
	copy(out, f.written)
	return out
}

func TestClient_SendAndWritePump(t *testing.T) {
	conn := &fakeConnection{}
	c := newClient(conn, "sess-1", time.Hour, time.Hour)

	go c.writePump(context.Background())

	if err := c.Send([]byte("STATE Ready")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		if len(conn.frames()) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for write")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	frames := conn.frames()
	if frames[0].messageType != websocket.TextMessage {
		t.Fatalf("expected text frame, got type %d", frames[0].messageType)
	}
	if string(frames[0].data) != "STATE Ready" {
		t.Fatalf("unexpected frame payload: %q", frames[0].data)
	}

	c.Close("done")
}

func TestClient_OutboxFull_ReturnsError(t *testing.T) {
	conn := &fakeConnection{}
	c := newClient(conn, "sess-1", time.Hour, time.Hour)
	// No writePump running: fill the outbox directly.
	for i := 0; i < outboxCapacity; i++ {
		if err := c.Send([]byte("x")); err != nil {
			t.Fatalf("unexpected error filling outbox at %d: %v", i, err)
		}
	}
	if err := c.Send([]byte("overflow")); err == nil {
		t.Fatal("expected error once outbox is full")
	}
}

func TestClient_ReadPump_ForwardsTextLines(t *testing.T) {
	lines := []string{"CONNECTION ABCD23", "ICE candidate:1"}
	idx := 0
	conn := &fakeConnection{
		ReadMessageFunc: func() (int, []byte, error) {
			if idx >= len(lines) {
				return 0, nil, errors.New("closed")
			}
			l := lines[idx]
			idx++
			return websocket.TextMessage, []byte(l), nil
		},
	}
	c := newClient(conn, "sess-1", time.Hour, time.Hour)

	var got []string
	closed := false
	c.readPump(context.Background(), func(_ context.Context, line string) {
		got = append(got, line)
	}, func(context.Context) {
		closed = true
	})

	if len(got) != len(lines) {
		t.Fatalf("expected %d lines forwarded, got %v", len(lines), got)
	}
	for i, l := range lines {
		if got[i] != l {
			t.Fatalf("line %d: expected %q, got %q", i, l, got[i])
		}
	}
	if !closed {
		t.Fatal("expected onClose to be invoked once the read loop ends")
	}
}

func TestClient_ReadPump_IgnoresBinaryFrames(t *testing.T) {
	calls := 0
	conn := &fakeConnection{
		ReadMessageFunc: func() (int, []byte, error) {
			calls++
			if calls == 1 {
				return websocket.BinaryMessage, []byte{0x01}, nil
			}
			return 0, nil, errors.New("closed")
		},
	}
	c := newClient(conn, "sess-1", time.Hour, time.Hour)

	var got []string
	c.readPump(context.Background(), func(_ context.Context, line string) {
		got = append(got, line)
	}, func(context.Context) {})

	if len(got) != 0 {
		t.Fatalf("expected binary frames to be ignored, got %v", got)
	}
}

func TestClient_Close_Idempotent(t *testing.T) {
	conn := &fakeConnection{}
	c := newClient(conn, "sess-1", time.Hour, time.Hour)
	c.Close("one")
	c.Close("two") // must not panic on double-close
}
