package server

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lox/liarsbar/internal/advisor"
	"github.com/lox/liarsbar/internal/table"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once

	playerID   string
	playerName string
	tableID    string
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		server: server,
		logger: server.logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.cancel()
		close(c.send)
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues msg without blocking. A client that cannot keep up is
// disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ctx.Err() != nil {
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection", "player", c.playerName)
		go func() { _ = c.Close() }()
		return ErrConnectionClosed
	}
}

// Player returns the associated player ID
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Table returns the associated table ID
func (c *Connection) Table() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

func (c *Connection) setTable(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = id
}

func (c *Connection) identity() (id, name, tableID string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID, c.playerName, c.tableID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	if msg.Type == MessageTypeAuth {
		var data AuthData
		if !c.decode(msg, &data) {
			return
		}
		c.handleAuth(msg, data)
		return
	}
	if c.Player() == "" {
		c.sendError(msg, "not_authenticated", "Must authenticate first")
		return
	}

	switch msg.Type {
	case MessageTypeCreateTable:
		var data TableData
		if c.decode(msg, &data) {
			c.handleCreateTable(msg, data)
		}
	case MessageTypeJoinTable:
		var data TableData
		if c.decode(msg, &data) {
			c.handleJoinTable(msg, data)
		}
	case MessageTypeListTables:
		c.reply(msg, MessageTypeTableList, TableListData{Tables: c.server.registry.List()})
	case MessageTypeAddBots:
		var data AddBotsData
		if c.decode(msg, &data) {
			c.withTable(msg, func(t *table.Table) error {
				_, err := t.AddBots(max(1, data.Count))
				return err
			})
		}
	case MessageTypeStart:
		c.withTable(msg, func(t *table.Table) error {
			_, err := t.Start()
			return err
		})
	case MessageTypeDecision:
		c.handleDecision(msg)
	case MessageTypeChat:
		var data ChatData
		if c.decode(msg, &data) {
			c.handleChat(msg, data)
		}
	case MessageTypeStatus:
		c.withTable(msg, func(t *table.Table) error {
			c.reply(msg, MessageTypeStatus, StatusData{TableID: t.ID, View: t.Status()})
			return nil
		})
	case MessageTypeHand:
		c.withTable(msg, func(t *table.Table) error {
			h, err := t.Hand(c.Player())
			if err != nil {
				return err
			}
			c.reply(msg, MessageTypeHand, h)
			return nil
		})
	case MessageTypeEndTable:
		_, name, tableID := c.identity()
		if tableID == "" {
			c.sendError(msg, "no_table", "Join a table first")
			return
		}
		if _, err := c.server.registry.End(tableID, "ended by "+name); err != nil {
			c.sendErr(msg, err)
		}
	default:
		c.sendError(msg, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAuth(msg *Message, data AuthData) {
	name := strings.TrimSpace(data.PlayerName)
	if name == "" {
		c.sendError(msg, "invalid_auth", "Player name required")
		return
	}

	c.mu.Lock()
	if c.playerID == "" {
		c.playerID = "p-" + uuid.NewString()[:8]
	}
	c.playerName = name
	id := c.playerID
	c.mu.Unlock()

	c.logger.Info("Player authenticated", "player", name, "id", id)
	c.reply(msg, MessageTypeAuthResponse, AuthResponseData{PlayerID: id, Name: name})
}

// handleCreateTable opens a table and seats the creator.
func (c *Connection) handleCreateTable(msg *Message, data TableData) {
	id, name, _ := c.identity()
	tableID := data.TableID
	if tableID == "" {
		tableID = table.NewID()
	}

	t, err := c.server.registry.Create(tableID, id)
	if err != nil {
		c.sendErr(msg, err)
		return
	}
	c.setTable(tableID)
	c.reply(msg, MessageTypeTableCreated, TableData{TableID: tableID})
	if _, err := t.Join(id, name); err != nil {
		c.sendErr(msg, err)
	}
}

func (c *Connection) handleJoinTable(msg *Message, data TableData) {
	id, name, _ := c.identity()
	t, err := c.server.registry.Get(data.TableID)
	if err != nil {
		c.sendErr(msg, err)
		return
	}
	c.setTable(data.TableID)
	if _, err := t.Join(id, name); err != nil {
		c.sendErr(msg, err)
	}
}

// handleDecision decodes the decision the same way bot replies are decoded,
// so action names are normalised and malformed moves rejected in one place.
func (c *Connection) handleDecision(msg *Message) {
	d, err := advisor.DecodeDecision(msg.Data)
	if err != nil {
		c.sendErr(msg, err)
		return
	}
	c.withTable(msg, func(t *table.Table) error {
		_, err := t.Act(c.Player(), d)
		return err
	})
}

func (c *Connection) handleChat(msg *Message, data ChatData) {
	_, name, tableID := c.identity()
	if tableID == "" {
		c.sendError(msg, "no_table", "Join a table first")
		return
	}
	c.withTable(msg, func(t *table.Table) error {
		t.Chat(name, data.Text)
		return nil
	})
	out, err := NewMessage(MessageTypeChatLine, ChatLineData{TableID: tableID, Name: name, Text: data.Text}, c.server.clock.Now())
	if err == nil {
		c.server.BroadcastToTable(tableID, out)
	}
}

// withTable runs fn against the connection's table and reports its error.
func (c *Connection) withTable(msg *Message, fn func(t *table.Table) error) {
	_, _, tableID := c.identity()
	if tableID == "" {
		c.sendError(msg, "no_table", "Join a table first")
		return
	}
	t, err := c.server.registry.Get(tableID)
	if err == nil {
		err = fn(t)
	}
	if err != nil {
		c.sendErr(msg, err)
	}
}

func (c *Connection) decode(msg *Message, v any) bool {
	if len(msg.Data) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		c.sendError(msg, "invalid_message", "Failed to parse "+msg.Type.String()+" data")
		return false
	}
	return true
}

func (c *Connection) reply(req *Message, t MessageType, data any) {
	msg, err := NewMessage(t, data, c.server.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	msg.RequestID = req.RequestID
	_ = c.SendMessage(msg)
}

func (c *Connection) sendErr(req *Message, err error) {
	code := errorCode(err)
	if code == "integrity_failure" || code == "internal_error" {
		c.logger.Error("Request failed", "type", req.Type, "player", c.Player(), "error", err)
	}
	c.sendError(req, code, err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(req *Message, code, message string) {
	c.reply(req, MessageTypeError, ErrorData{Code: code, Message: message})
}
