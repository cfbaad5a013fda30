package server

import "github.com/lox/liarsbar/internal/game"

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants. Outcome records are sent with their
// game.OutcomeKind as the message type.
const (
	// Client to server messages
	MessageTypeAuth        MessageType = "auth"
	MessageTypeCreateTable MessageType = "create_table"
	MessageTypeJoinTable   MessageType = "join_table"
	MessageTypeListTables  MessageType = "list_tables"
	MessageTypeAddBots     MessageType = "add_bots"
	MessageTypeStart       MessageType = "start"
	MessageTypeDecision    MessageType = "decision"
	MessageTypeChat        MessageType = "chat"
	MessageTypeStatus      MessageType = "status"
	MessageTypeHand        MessageType = "hand"
	MessageTypeEndTable    MessageType = "end_table"

	// Server to client messages
	MessageTypeError        MessageType = "error"
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeTableCreated MessageType = "table_created"
	MessageTypeTableList    MessageType = "table_list"
	MessageTypeChatLine     MessageType = "chat_line"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// outcomeType is the message type an outcome is broadcast under.
func outcomeType(o game.Outcome) MessageType {
	return MessageType(o.Kind())
}
