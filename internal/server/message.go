package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdemtable/internal/table"
)

// MessageType identifies a gateway message
type MessageType string

// Client → Server
const (
	MessageTypeJoin     MessageType = "join"
	MessageTypeAction   MessageType = "action"
	MessageTypeStart    MessageType = "start"
	MessageTypeReady    MessageType = "ready"
	MessageTypeReveal   MessageType = "reveal"
	MessageTypeDecision MessageType = "decision"
	MessageTypeLeave    MessageType = "leave"
)

// Server → Client
const (
	MessageTypeState              MessageType = "state"
	MessageTypeError              MessageType = "error"
	MessageTypeJoined             MessageType = "joined"
	MessageTypeActionConfirmation MessageType = "action_confirmation"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

type JoinData struct {
	Nickname string `json:"nickname,omitempty"`
}

type ActionData struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type ReadyData struct {
	Ready bool `json:"ready"`
}

type DecisionData struct {
	Decision string `json:"decision"`
}

// Server → Client payloads

type StateData = table.View

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type JoinedData struct {
	TableID string `json:"tableId"`
	UserID  string `json:"userId"`
	Seat    int    `json:"seat"`
}

type ActionConfirmationData struct {
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
	Message string `json:"message"`
	AllIn   bool   `json:"allIn"`
}
