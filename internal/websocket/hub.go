package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/okotkov/chatrelay/internal/service"
)

// Hub tracks connected clients grouped by user id. A group is the set of a
// user's active connections; broadcasting to a user delivers to every
// connection in the group.
type Hub struct {
	chat *service.ChatService

	groups     map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	mu         sync.RWMutex
}

func NewHub(chat *service.ChatService) *Hub {
	return &Hub{
		chat:       chat,
		groups:     make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, group := range h.groups {
				for client := range group {
					client.Close()
				}
			}
			h.groups = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				group, ok := h.groups[client.userID]
				if !ok {
					group = make(map[*Client]bool)
					h.groups[client.userID] = group
				}
				group[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if group, ok := h.groups[client.userID]; ok {
					if _, ok := group[client]; ok {
						delete(group, client)
						client.Close()
						if len(group) == 0 {
							delete(h.groups, client.userID)
						}
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop gracefully shuts down the hub, closing every connected client. It
// blocks until Run() has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

// Register hands a new connection to the run loop. After Stop() nothing
// drains the register channel, so a handshake racing shutdown must not
// block; the client is closed instead of admitted.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister is stop-aware for the same reason: once Run() has exited the
// unregister channel has no reader, and a blocked send here would leak the
// read pump goroutine.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// BroadcastToUsers delivers an event to every active connection of the given
// users, skipping the except connection (the emitter gets the ack instead).
// Delivery is at-most-once: a slow or gone connection silently misses it.
func (h *Hub) BroadcastToUsers(userIDs []uuid.UUID, event *Event, except *Client) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal broadcast event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range userIDs {
		for client := range h.groups[userID] {
			if client == except {
				continue
			}
			select {
			case client.send <- data:
			default:
				// Send buffer full; drop rather than block the broadcaster.
			}
		}
	}
}
