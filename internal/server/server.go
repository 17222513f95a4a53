// Package server implements the settlers game server.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"settlers/internal/config"
	"settlers/internal/database"
	"settlers/internal/eventlog"
	"settlers/internal/protocol"
	"settlers/internal/render"

	"github.com/gorilla/websocket"
)

// Version is reported to clients in the welcome message.
const Version = "0.1.0"

// Server is the main game server.
type Server struct {
	cfg      config.Config
	db       *database.DB
	journal  *eventlog.Journal
	hub      *Hub
	rooms    *Rooms
	renderer *render.Renderer
	upgrader websocket.Upgrader
	server   *http.Server
}

// New creates a new server from cfg. It opens the database and the journal
// but does not listen until Start is called.
func New(cfg config.Config) (*Server, error) {
	db, err := database.New(cfg.Server.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	journal, err := eventlog.Open(cfg.Server.JournalDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		db:       db,
		journal:  journal,
		renderer: render.New(render.DefaultOptions()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.rooms = NewRooms(db)
	s.hub = NewHub(s)
	return s, nil
}

// Handler returns the HTTP routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/{id}/board.png", s.handleBoardImage)

	return mux
}

// Start restores games that were in progress and serves until Stop.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Handler(),
	}

	go s.hub.Run()
	s.restore()

	slog.Info("settlers server listening",
		"addr", s.cfg.Server.Addr,
		"db", s.cfg.Server.DBPath,
		"journal", s.cfg.Server.JournalDir,
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.hub.Stop()
	if err := s.journal.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// restore loads every started game so AI seats resume play after a restart.
func (s *Server) restore() {
	ids, err := s.db.ListActiveGames()
	if err != nil {
		slog.Error("list active games", "error", err)
		return
	}
	handlers := NewHandlers(s.hub)
	for _, id := range ids {
		r, err := s.rooms.Get(id)
		if err != nil {
			slog.Warn("restore game", "game", id, "error", err)
			continue
		}
		go handlers.runAI(r)
	}
	if len(ids) > 0 {
		slog.Info("restored games", "count", len(ids))
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(s.hub, conn, s.cfg.RateLimit)
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// handleListGames returns the public games as JSON.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.db.ListPublicGames()
	if err != nil {
		http.Error(w, "Failed to list games", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.GameListPayload{Games: gameListItems(games)})
}

// handleBoardImage renders the current board of a started game as a PNG.
func (s *Server) handleBoardImage(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	room.mu.Lock()
	err = s.renderer.WritePNG(&buf, room.state.Board, render.Owners(room.state))
	room.mu.Unlock()
	if err != nil {
		slog.Error("render board", "game", room.id, "error", err)
		http.Error(w, "Failed to render board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func gameListItems(games []*database.GameInfo) []protocol.GameListItem {
	items := make([]protocol.GameListItem, len(games))
	for i, g := range games {
		items[i] = protocol.GameListItem{
			ID:          g.ID,
			Name:        g.Name,
			JoinCode:    g.JoinCode,
			Status:      string(g.Status),
			PlayerCount: g.PlayerCount,
			MaxPlayers:  g.MaxPlayers,
		}
	}
	return items
}
