package chat

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Event names carried in the envelope's "event" field.
const (
	EventJoinGroup      = "join-group"
	EventSendMessage    = "send-message"
	EventMessageHistory = "message-history"
	EventReceiveMessage = "receive-message"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventError          = "error"
)

// Error types reported in error events.
const (
	ErrHistoryLoad  = "HISTORY_LOAD_ERROR"
	ErrMessageSend  = "MESSAGE_SEND_ERROR"
	ErrInvalidEvent = "INVALID_EVENT"
)

// inbound is a frame received from a client.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Envelope is a frame sent to a client.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// GroupID accepts a group id sent either as a JSON number or a string.
type GroupID uint

func (g *GroupID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return err
	}
	*g = GroupID(n)
	return nil
}

type JoinGroupPayload struct {
	GroupID GroupID `json:"groupId"`
}

type SendMessagePayload struct {
	GroupID GroupID `json:"groupId"`
	Content string  `json:"content"`
}

// ReceiveMessage is a persisted message plus the connection that sent it.
type ReceiveMessage struct {
	ID           uint      `json:"id"`
	GroupID      uint      `json:"groupId"`
	SenderID     uint      `json:"senderId"`
	Content      string    `json:"content"`
	SendDate     time.Time `json:"sendDate"`
	ConnectionID string    `json:"connectionId"`
}

// Presence announces a connection entering or leaving a room.
type Presence struct {
	GroupID      uint   `json:"groupId"`
	UserID       uint   `json:"userId"`
	ConnectionID string `json:"connectionId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
