package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/okotkov/chatrelay/internal/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t      *testing.T
	conn   *gorillaWS.Conn
	events chan *websocket.Event
	done   chan struct{}
	once   sync.Once
}

// NewWSClient connects to the given URL or fails the test
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	client, err := DialWS(t, url)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}
	return client
}

// DialWS connects to the given URL and returns the dial error, for tests that
// expect a rejected handshake
func DialWS(t *testing.T, url string) (*WSClient, error) {
	t.Helper()

	dialer := gorillaWS.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	client := &WSClient{
		t:      t,
		conn:   conn,
		events: make(chan *websocket.Event, 100),
		done:   make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client, nil
}

func (c *WSClient) readPump() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var event websocket.Event
		if err := json.Unmarshal(data, &event); err != nil {
			continue
		}

		select {
		case c.events <- &event:
		case <-c.done:
			return
		}
	}
}

// Send writes an event to the connection
func (c *WSClient) Send(event *websocket.Event) {
	c.t.Helper()

	if err := c.conn.WriteJSON(event); err != nil {
		c.t.Fatalf("failed to send websocket event: %v", err)
	}
}

// SendWithPayload marshals the payload and sends an event carrying it
func (c *WSClient) SendWithPayload(eventType websocket.EventType, ackID int64, payload interface{}) {
	c.t.Helper()

	event, err := websocket.NewEvent(eventType, ackID, payload)
	if err != nil {
		c.t.Fatalf("failed to build websocket event: %v", err)
	}
	c.Send(event)
}

// WaitFor blocks until an event of the given type arrives or the timeout
// expires
func (c *WSClient) WaitFor(eventType websocket.EventType, timeout time.Duration) *websocket.Event {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s", eventType)
				return nil
			}
			if event.Type == eventType {
				return event
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for %s", eventType)
			return nil
		}
	}
}

// ExpectNone asserts that no event of the given type arrives within the window
func (c *WSClient) ExpectNone(eventType websocket.EventType, window time.Duration) {
	c.t.Helper()

	deadline := time.After(window)
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				return
			}
			if event.Type == eventType {
				c.t.Fatalf("unexpected %s event", eventType)
			}
		case <-deadline:
			return
		}
	}
}

// Close shuts down the connection
func (c *WSClient) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
