package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	eventTimeout = 10 * time.Second
)

// Client is one authenticated websocket connection bound to a user id.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	userID    uuid.UUID
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
	}
}

// Close shuts the outbound channel; the write pump then closes the socket.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket read error")
			}
			break
		}

		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Warn().Err(err).Msg("failed to unmarshal websocket event")
			continue
		}

		c.handleEvent(&event)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventInit:
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		rooms, err := c.hub.chat.ListRooms(ctx, c.userID)
		if err != nil {
			log.Error().Err(err).Str("userId", c.userID.String()).Msg("init failed")
			c.sendError(event.AckID, "Could not load rooms")
			return
		}
		c.sendAck(event.AckID, InitReply{Rooms: rooms})

	case EventMessageSend:
		var payload MessageSendPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			c.sendError(event.AckID, "Invalid message payload")
			return
		}

		roomID, err := uuid.Parse(payload.TargetRoomID)
		if err != nil {
			c.sendError(event.AckID, "Invalid target room id")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		view, participantIDs, err := c.hub.chat.SendMessage(ctx, c.userID, roomID, payload.Content)
		if err != nil {
			log.Error().Err(err).Str("roomId", roomID.String()).Msg("message send failed")
			c.sendError(event.AckID, "Could not send message")
			return
		}

		if receive, err := NewEvent(EventMessageReceive, 0, view); err == nil {
			c.hub.BroadcastToUsers(participantIDs, receive, c)
		}

		c.sendAck(event.AckID, view)
	}
}

func (c *Client) sendAck(ackID int64, payload interface{}) {
	event, err := NewEvent(EventAck, ackID, payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to build ack event")
		return
	}
	c.enqueue(event)
}

func (c *Client) sendError(ackID int64, message string) {
	event, err := NewEvent(EventError, ackID, ErrorPayload{Error: message})
	if err != nil {
		return
	}
	c.enqueue(event)
}

func (c *Client) enqueue(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Warn().Str("userId", c.userID.String()).Msg("send buffer full, dropping reply")
	}
}
