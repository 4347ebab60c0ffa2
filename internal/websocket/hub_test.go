package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func groupSize(h *Hub, userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[userID])
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	client := NewClient(hub, nil, userID)

	hub.Register(client)
	require.Eventually(t, func() bool {
		return groupSize(hub, userID) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool {
		return groupSize(hub, userID) == 0
	}, time.Second, 10*time.Millisecond)
}

// After Stop() the run loop no longer drains either channel. A read pump
// handing off its client, or a handshake racing shutdown, must still return.
func TestHub_StopDoesNotStrandClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	connected := NewClient(hub, nil, uuid.New())
	hub.Register(connected)
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unregister(connected)
		hub.Register(NewClient(hub, nil, uuid.New()))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("register or unregister blocked after hub stop")
	}
}

// Replies to the client are dropped, not blocked on, when its send buffer
// is full.
func TestClient_ReplyNeverBlocks(t *testing.T) {
	client := &Client{send: make(chan []byte), userID: uuid.New()}

	done := make(chan struct{})
	go func() {
		client.sendAck(1, "reply")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sendAck blocked on a full send buffer")
	}
}
