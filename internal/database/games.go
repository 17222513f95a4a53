package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the current status of a game.
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"  // In lobby, waiting for players
	GameStatusStarted  GameStatus = "started"  // Game in progress
	GameStatusFinished GameStatus = "finished" // Game completed
)

// GameInfo contains basic game information for listings.
type GameInfo struct {
	ID           string     `db:"id"`
	Name         string     `db:"name"`
	JoinCode     string     `db:"join_code"`
	IsPublic     bool       `db:"is_public"`
	Status       GameStatus `db:"status"`
	HostPlayerID string     `db:"host_player_id"`
	PlayerCount  int        `db:"player_count"`
	MaxPlayers   int        `db:"max_players"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Game contains full game data.
type Game struct {
	GameInfo
	Settings     GameSettings `db:"-"`
	SettingsJSON string       `db:"settings_json"`
	Seed         int64        `db:"seed"`
	StartedAt    sql.NullTime `db:"started_at"`
	EndedAt      sql.NullTime `db:"ended_at"`
}

// GameSettings contains configurable game parameters.
type GameSettings struct {
	MaxPlayers    int `json:"max_players"`
	VictoryPoints int `json:"victory_points"`
}

// GamePlayer represents a player seated in a game.
type GamePlayer struct {
	GameID      string    `db:"game_id"`
	PlayerID    string    `db:"player_id"`
	PlayerName  string    `db:"player_name"`
	Slot        int       `db:"slot"`
	Color       string    `db:"color"`
	IsAI        bool      `db:"is_ai"`
	AIStrategy  string    `db:"ai_strategy"`
	IsConnected bool      `db:"is_connected"`
	JoinedAt    time.Time `db:"joined_at"`
}

var (
	// ErrGameNotFound is returned when a game is not found.
	ErrGameNotFound = errors.New("game not found")
	// ErrJoinCodeNotFound is returned when a join code is invalid.
	ErrJoinCodeNotFound = errors.New("invalid join code")
	// ErrGameFull is returned when a game has reached max players.
	ErrGameFull = errors.New("game is full")
	// ErrAlreadyInGame is returned when player is already in the game.
	ErrAlreadyInGame = errors.New("already in game")
	// ErrGameStarted is returned when joining a game that is no longer in the lobby.
	ErrGameStarted = errors.New("game already started")
	// ErrNotInGame is returned when the player is not seated in the game.
	ErrNotInGame = errors.New("player not in game")
)

const gameInfoColumns = `
	g.id, COALESCE(g.join_code, '') AS join_code, g.name, g.is_public, g.status,
	g.host_player_id, g.max_players, g.created_at,
	(SELECT COUNT(*) FROM game_players WHERE game_id = g.id) AS player_count`

// CreateGame creates a new game. The seed fixes the board layout.
func (db *DB) CreateGame(name string, hostPlayerID string, settings GameSettings, isPublic bool, seed int64) (*Game, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	g := &Game{
		GameInfo: GameInfo{
			ID:           uuid.New().String(),
			Name:         name,
			JoinCode:     generateJoinCode(),
			IsPublic:     isPublic,
			Status:       GameStatusWaiting,
			HostPlayerID: hostPlayerID,
			MaxPlayers:   settings.MaxPlayers,
			CreatedAt:    time.Now(),
		},
		Settings:     settings,
		SettingsJSON: string(settingsJSON),
		Seed:         seed,
	}

	_, err = db.conn.NamedExec(`
		INSERT INTO games (id, name, join_code, is_public, status, host_player_id, settings_json, max_players, seed, created_at)
		VALUES (:id, :name, :join_code, :is_public, :status, :host_player_id, :settings_json, :max_players, :seed, :created_at)
	`, g)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGame retrieves a game by ID.
func (db *DB) GetGame(id string) (*Game, error) {
	var g Game
	err := db.conn.Get(&g, `
		SELECT `+gameInfoColumns+`, g.settings_json, g.seed, g.started_at, g.ended_at
		FROM games g WHERE g.id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(g.SettingsJSON), &g.Settings); err != nil {
		return nil, fmt.Errorf("decode settings for game %s: %w", id, err)
	}
	return &g, nil
}

// GetGameByJoinCode retrieves a game by its join code.
func (db *DB) GetGameByJoinCode(code string) (*Game, error) {
	var id string
	err := db.conn.Get(&id, `SELECT id FROM games WHERE join_code = ?`, strings.ToUpper(code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJoinCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return db.GetGame(id)
}

// ListPublicGames returns all public games that are waiting for players.
func (db *DB) ListPublicGames() ([]*GameInfo, error) {
	games := []*GameInfo{}
	err := db.conn.Select(&games, `
		SELECT `+gameInfoColumns+`
		FROM games g
		WHERE g.is_public = TRUE AND g.status = ?
		ORDER BY g.created_at DESC
	`, GameStatusWaiting)
	return games, err
}

// GetPlayerGames returns the unfinished games a player is seated in.
func (db *DB) GetPlayerGames(playerID string) ([]*GameInfo, error) {
	games := []*GameInfo{}
	err := db.conn.Select(&games, `
		SELECT `+gameInfoColumns+`
		FROM games g
		JOIN game_players gp ON gp.game_id = g.id
		WHERE gp.player_id = ? AND g.status != ?
		ORDER BY g.created_at DESC
	`, playerID, GameStatusFinished)
	return games, err
}

// JoinGame seats a player in a waiting game.
func (db *DB) JoinGame(gameID, playerID, color string) error {
	game, err := db.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.Status != GameStatusWaiting {
		return ErrGameStarted
	}

	var exists int
	if err := db.conn.Get(&exists, `SELECT COUNT(*) FROM game_players WHERE game_id = ? AND player_id = ?`, gameID, playerID); err != nil {
		return err
	}
	if exists > 0 {
		return ErrAlreadyInGame
	}
	if game.PlayerCount >= game.MaxPlayers {
		return ErrGameFull
	}

	slot, err := db.nextSlot(gameID)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO game_players (game_id, player_id, slot, color, is_ai, is_connected, joined_at)
		VALUES (?, ?, ?, ?, FALSE, TRUE, ?)
	`, gameID, playerID, slot, color, time.Now())
	return err
}

// AddAIPlayer seats a computer player using the named strategy and returns
// its player ID.
func (db *DB) AddAIPlayer(gameID, color, strategy string) (string, error) {
	game, err := db.GetGame(gameID)
	if err != nil {
		return "", err
	}
	if game.Status != GameStatusWaiting {
		return "", ErrGameStarted
	}
	if game.PlayerCount >= game.MaxPlayers {
		return "", ErrGameFull
	}

	slot, err := db.nextSlot(gameID)
	if err != nil {
		return "", err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// The AI needs a players row for the foreign key
	aiID := fmt.Sprintf("ai-%s", uuid.New().String()[:8])
	now := time.Now()
	if _, err := tx.Exec(`
		INSERT INTO players (id, token, name, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
	`, aiID, uuid.New().String(), fmt.Sprintf("AI (%s)", strategy), now, now); err != nil {
		return "", fmt.Errorf("create AI player: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO game_players (game_id, player_id, slot, color, is_ai, ai_strategy, is_connected, joined_at)
		VALUES (?, ?, ?, ?, TRUE, ?, TRUE, ?)
	`, gameID, aiID, slot, color, strategy, now); err != nil {
		return "", err
	}
	return aiID, tx.Commit()
}

func (db *DB) nextSlot(gameID string) (int, error) {
	var maxSlot sql.NullInt64
	if err := db.conn.Get(&maxSlot, `SELECT MAX(slot) FROM game_players WHERE game_id = ?`, gameID); err != nil {
		return 0, err
	}
	if !maxSlot.Valid {
		return 0, nil
	}
	return int(maxSlot.Int64) + 1, nil
}

// LeaveGame removes a player from a game.
func (db *DB) LeaveGame(gameID, playerID string) error {
	result, err := db.conn.Exec(`DELETE FROM game_players WHERE game_id = ? AND player_id = ?`, gameID, playerID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotInGame
	}
	return nil
}

// GetGamePlayers returns all players in a game ordered by seat.
func (db *DB) GetGamePlayers(gameID string) ([]*GamePlayer, error) {
	players := []*GamePlayer{}
	err := db.conn.Select(&players, `
		SELECT gp.game_id, gp.player_id, COALESCE(p.name, 'AI') AS player_name, gp.slot, gp.color,
		       gp.is_ai, gp.ai_strategy, gp.is_connected, gp.joined_at
		FROM game_players gp
		LEFT JOIN players p ON gp.player_id = p.id
		WHERE gp.game_id = ?
		ORDER BY gp.slot
	`, gameID)
	return players, err
}

// SetPlayerConnected sets a player's connection status.
func (db *DB) SetPlayerConnected(gameID, playerID string, connected bool) error {
	_, err := db.conn.Exec(`
		UPDATE game_players SET is_connected = ? WHERE game_id = ? AND player_id = ?
	`, connected, gameID, playerID)
	return err
}

// StartGame marks a game as started.
func (db *DB) StartGame(gameID string) error {
	_, err := db.conn.Exec(`UPDATE games SET status = ?, started_at = ? WHERE id = ?`, GameStatusStarted, time.Now(), gameID)
	return err
}

// EndGame marks a game as finished.
func (db *DB) EndGame(gameID string) error {
	_, err := db.conn.Exec(`UPDATE games SET status = ?, ended_at = ? WHERE id = ?`, GameStatusFinished, time.Now(), gameID)
	return err
}

// ListActiveGames returns the IDs of games in progress, used to restore
// rooms after a restart.
func (db *DB) ListActiveGames() ([]string, error) {
	ids := []string{}
	err := db.conn.Select(&ids, `SELECT id FROM games WHERE status = ? ORDER BY started_at`, GameStatusStarted)
	return ids, err
}

// SaveGameState saves the current game state.
func (db *DB) SaveGameState(gameID string, stateJSON string, currentPlayerID string, round int, phase string) error {
	_, err := db.conn.Exec(`
		INSERT INTO game_state (game_id, state_json, current_player_id, round, phase, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			state_json = excluded.state_json,
			current_player_id = excluded.current_player_id,
			round = excluded.round,
			phase = excluded.phase,
			updated_at = excluded.updated_at
	`, gameID, stateJSON, currentPlayerID, round, phase, time.Now())
	return err
}

// GetGameState retrieves the current game state, or "" if none was saved.
func (db *DB) GetGameState(gameID string) (string, error) {
	var stateJSON string
	err := db.conn.Get(&stateJSON, `SELECT state_json FROM game_state WHERE game_id = ?`, gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return stateJSON, err
}

// Action is one logged game action.
type Action struct {
	ID         int64          `db:"id"`
	GameID     string         `db:"game_id"`
	PlayerID   string         `db:"player_id"`
	ActionType string         `db:"action_type"`
	ActionJSON string         `db:"action_json"`
	ResultJSON sql.NullString `db:"result_json"`
	CreatedAt  time.Time      `db:"created_at"`
}

// LogAction logs a game action.
func (db *DB) LogAction(gameID, playerID, actionType, actionJSON, resultJSON string) error {
	_, err := db.conn.Exec(`
		INSERT INTO game_actions (game_id, player_id, action_type, action_json, result_json)
		VALUES (?, ?, ?, ?, ?)
	`, gameID, playerID, actionType, actionJSON, resultJSON)
	return err
}

// GetActions returns a game's logged actions in order.
func (db *DB) GetActions(gameID string) ([]*Action, error) {
	actions := []*Action{}
	err := db.conn.Select(&actions, `
		SELECT id, game_id, COALESCE(player_id, '') AS player_id, action_type, action_json, result_json, created_at
		FROM game_actions WHERE game_id = ? ORDER BY id
	`, gameID)
	return actions, err
}

// DeleteGame permanently deletes a game and all associated data.
func (db *DB) DeleteGame(gameID string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"game_history", "game_actions", "game_state", "game_players"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE game_id = ?`, gameID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM games WHERE id = ?`, gameID); err != nil {
		return err
	}
	return tx.Commit()
}

// generateJoinCode creates a human-readable join code.
func generateJoinCode() string {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // No 0, O, 1 or I
	bytes := make([]byte, 8)
	rand.Read(bytes)

	code := make([]byte, 8)
	for i := range code {
		code[i] = chars[bytes[i]%byte(len(chars))]
	}
	// Format as XXXX-XXXX
	return string(code[:4]) + "-" + string(code[4:])
}
