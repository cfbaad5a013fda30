package server

import (
	"encoding/json"
	"time"

	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/table"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message stamped with now.
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Message{Type: messageType, Data: raw, Timestamp: now}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type TableData struct {
	TableID string `json:"tableId"`
}

type AddBotsData struct {
	Count int `json:"count,omitempty"`
}

type ChatData struct {
	Text string `json:"text"`
}

// Server → Client Messages

type AuthResponseData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableListData struct {
	Tables []table.Summary `json:"tables"`
}

type ChatLineData struct {
	TableID string `json:"tableId"`
	Name    string `json:"name"`
	Text    string `json:"text"`
}

// StatusData wraps a table view with its id.
type StatusData struct {
	TableID string    `json:"tableId"`
	View    game.View `json:"view"`
}
