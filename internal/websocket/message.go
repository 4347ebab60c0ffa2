package websocket

import (
	"encoding/json"

	"github.com/okotkov/chatrelay/internal/service"
)

type EventType string

const (
	// Client to Server
	EventInit        EventType = "init"
	EventMessageSend EventType = "message:send"

	// Server to Client
	EventAck            EventType = "ack"
	EventError          EventType = "error"
	EventMessageReceive EventType = "message:receive"
)

// Event is the wire frame for both directions. Requests carry an AckID the
// server echoes on the reply, standing in for a callback-style acknowledgement.
type Event struct {
	Type    EventType       `json:"type"`
	AckID   int64           `json:"ackId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewEvent(eventType EventType, ackID int64, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:    eventType,
		AckID:   ackID,
		Payload: data,
	}, nil
}

// Client to Server payloads

type MessageSendPayload struct {
	TargetRoomID string `json:"targetRoomId"`
	Content      string `json:"content"`
}

// Server to Client payloads

type InitReply struct {
	Rooms []service.RoomView `json:"rooms"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
