package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"settlers/internal/bot"
	"settlers/internal/database"
	"settlers/internal/game"
)

// room is a started game held in memory. All reads and writes of state go
// through mu, which serializes actions within one game.
type room struct {
	id string

	mu      sync.Mutex
	state   *game.GameState
	engines map[string]*bot.Engine // AI player ID → rule engine

	aiBusy atomic.Bool
}

// Rooms caches live games, loading them from the database on first use.
type Rooms struct {
	db *database.DB

	mu    sync.Mutex
	rooms map[string]*room
}

// NewRooms creates an empty cache backed by db.
func NewRooms(db *database.DB) *Rooms {
	return &Rooms{db: db, rooms: make(map[string]*room)}
}

// Get returns the room for gameID, restoring it from the saved state if it
// is not cached. A game without saved state has not started.
func (rs *Rooms) Get(gameID string) (*room, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r, ok := rs.rooms[gameID]; ok {
		return r, nil
	}

	stateJSON, err := rs.db.GetGameState(gameID)
	if err != nil {
		return nil, err
	}
	if stateJSON == "" {
		return nil, fmt.Errorf("%w: %s has not started", database.ErrGameNotFound, gameID)
	}

	var state game.GameState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", gameID, err)
	}
	state.SetRandom(rand.New(rand.NewSource(time.Now().UnixNano())))

	r, err := newRoom(gameID, &state)
	if err != nil {
		return nil, err
	}
	// Finished games are served from the database and never cached.
	if !state.IsGameOver() {
		rs.rooms[gameID] = r
	}
	return r, nil
}

// Add caches a freshly initialized game.
func (rs *Rooms) Add(gameID string, state *game.GameState) (*room, error) {
	r, err := newRoom(gameID, state)
	if err != nil {
		return nil, err
	}
	rs.mu.Lock()
	rs.rooms[gameID] = r
	rs.mu.Unlock()
	return r, nil
}

// Drop evicts a finished game.
func (rs *Rooms) Drop(gameID string) {
	rs.mu.Lock()
	delete(rs.rooms, gameID)
	rs.mu.Unlock()
}

func newRoom(gameID string, state *game.GameState) (*room, error) {
	r := &room{id: gameID, state: state, engines: make(map[string]*bot.Engine)}
	for _, id := range state.PlayerOrder {
		p := state.Players[id]
		if p == nil || !p.IsAI {
			continue
		}
		eng, err := bot.ForStrategy(p.AIStrategy)
		if err != nil {
			return nil, fmt.Errorf("engine for %s: %w", id, err)
		}
		r.engines[id] = eng
	}
	return r, nil
}

// nextAIMove finds an AI player with something to do. Callers hold r.mu.
func (r *room) nextAIMove() (string, *bot.Move) {
	if r.state.IsGameOver() {
		return "", nil
	}
	for _, id := range r.state.PlayerOrder {
		eng := r.engines[id]
		if eng == nil {
			continue
		}
		if m := eng.Decide(r.state, id); m != nil {
			return id, m
		}
	}
	return "", nil
}
