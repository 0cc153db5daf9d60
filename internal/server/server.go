// Package server is the WebSocket gateway in front of the tables. It holds no
// game logic: client messages become table operations and table snapshots are
// pushed back to each user.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdemtable/internal/table"
)

const shutdownTimeout = 5 * time.Second

type connKey struct {
	table string
	user  string
}

// Server represents the WebSocket gateway
type Server struct {
	manager     *table.Manager
	upgrader    websocket.Upgrader
	logger      *log.Logger
	mu          sync.Mutex
	connections map[connKey]*Connection
}

// NewServer creates a gateway for the tables in manager
func NewServer(manager *table.Manager, logger *log.Logger) *Server {
	return &Server{
		manager: manager,
		upgrader: websocket.Upgrader{
			// Origin checks are left to the fronting proxy
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		connections: make(map[connKey]*Connection),
	}
}

// Handler returns the HTTP routes served by the gateway
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/tables", s.handleTables)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe serves addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down WebSocket server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Connections returns the number of open client connections
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// handleWebSocket upgrades /ws?table=<id>&user=<id>&nick=<name>
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tableID, userID := q.Get("table"), q.Get("user")
	if userID == "" {
		http.Error(w, "user is required", http.StatusBadRequest)
		return
	}
	if tableID == "" {
		tableID = "main"
	}
	tbl, err := s.manager.Get(tableID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	nickname := q.Get("nick")
	if nickname == "" {
		nickname = userID
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(ws, tbl, userID, nickname, s.logger)
	key := connKey{table: tableID, user: userID}

	s.mu.Lock()
	previous := s.connections[key]
	s.connections[key] = client
	total := len(s.connections)
	s.mu.Unlock()

	// A newer socket for the same seat replaces the old one
	if previous != nil {
		s.logger.Info("Replacing existing connection", "user", userID, "table", tableID)
		_ = previous.Replace()
	}
	client.Start()
	s.logger.Info("Client connected", "user", userID, "table", tableID, "total", total)

	go func() {
		<-client.Done()
		s.mu.Lock()
		if s.connections[key] == client {
			delete(s.connections, key)
		}
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "user", userID, "table", tableID, "total", total)
	}()
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.manager.List()); err != nil {
		s.logger.Error("Failed to encode table list", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
