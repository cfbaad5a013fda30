// Package server exposes tables over WebSocket. It only carries the game's
// outcome records; all rules live in the game package.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/table"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	clock       quartz.Clock
	mu          sync.RWMutex
	registry    *table.Registry
	done        chan struct{}
	doneOnce    sync.Once
}

// NewServer creates a new WebSocket server. The registry is attached with
// SetRegistry because it needs the server as its notifier.
func NewServer(addr string, clock quartz.Clock, logger *log.Logger) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		clock:       clock,
		done:        make(chan struct{}),
	}
}

// SetRegistry sets the tables served.
func (s *Server) SetRegistry(r *table.Registry) {
	s.registry = r
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tables", s.handleTables)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{Addr: s.addr, Handler: s.Handler()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Run(ctx)
		return nil
	})
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeAll()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Run handles connection lifecycle until ctx is done.
func (s *Server) Run(ctx context.Context) {
	defer s.doneOnce.Do(func() { close(s.done) })
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "player", conn.Player(), "total", total)

		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s)
	select {
	case s.register <- client:
	case <-s.done:
		_ = conn.Close()
		return
	}
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.done:
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleTables lists tables as JSON.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	msg, err := NewMessage(MessageTypeTableList, TableListData{Tables: s.registry.List()}, s.clock.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(msg.Data)
}

// Broadcast implements table.Notifier.
func (s *Server) Broadcast(tableID string, o game.Outcome) {
	msg, err := NewMessage(outcomeType(o), o, o.Timestamp())
	if err != nil {
		s.logger.Error("Failed to encode outcome", "kind", o.Kind(), "error", err)
		return
	}
	s.BroadcastToTable(tableID, msg)
}

// SendHand implements table.Notifier.
func (s *Server) SendHand(tableID string, h game.HandSnapshot) {
	msg, err := NewMessage(MessageTypeHand, h, s.clock.Now())
	if err != nil {
		s.logger.Error("Failed to encode hand", "error", err)
		return
	}
	if err := s.SendToPlayer(h.Player.ID, msg); err != nil {
		s.logger.Debug("Hand not delivered", "table", tableID, "player", h.Player.Name, "error", err)
	}
}

// BroadcastToTable sends a message to all connections at a specific table
func (s *Server) BroadcastToTable(tableID string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.Table() == tableID {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send message to client", "error", err, "player", conn.Player())
			} else {
				count++
			}
		}
	}

	s.logger.Debug("Broadcasted message to table", "table", tableID, "type", msg.Type, "recipients", count)
}

// SendToPlayer sends a message to a specific player
func (s *Server) SendToPlayer(playerID string, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.Player() == playerID {
			return conn.SendMessage(msg)
		}
	}
	return fmt.Errorf("player not connected: %s", playerID)
}
