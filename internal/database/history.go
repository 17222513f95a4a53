package database

import "time"

// HistoryEvent represents a single game event in the history log.
type HistoryEvent struct {
	ID         int64     `db:"id" json:"id"`
	GameID     string    `db:"game_id" json:"gameId"`
	Round      int       `db:"round" json:"round"`
	Phase      string    `db:"phase" json:"phase"`
	PlayerID   string    `db:"player_id" json:"playerId"`
	PlayerName string    `db:"player_name" json:"playerName"`
	EventType  string    `db:"event_type" json:"eventType"`
	Message    string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Event types for game history
const (
	EventGameStart  = "game_start"
	EventSettlement = "settlement"
	EventCity       = "city"
	EventRoad       = "road"
	EventRoll       = "roll"
	EventProduction = "production"
	EventDiscard    = "discard"
	EventCardBought = "card_bought"
	EventCardPlayed = "card_played"
	EventTrade      = "trade"
	EventTurnEnd    = "turn_end"
	EventGameEnd    = "game_end"
)

// AddHistoryEvent adds a new event to the game history.
func (db *DB) AddHistoryEvent(gameID string, round int, phase string, playerID, playerName, eventType, message string) error {
	_, err := db.conn.Exec(`
		INSERT INTO game_history (game_id, round, phase, player_id, player_name, event_type, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, gameID, round, phase, playerID, playerName, eventType, message, time.Now())
	return err
}

// GetGameHistory retrieves all history events for a game, ordered chronologically.
func (db *DB) GetGameHistory(gameID string) ([]*HistoryEvent, error) {
	return db.GetGameHistorySince(gameID, 0)
}

// GetGameHistorySince retrieves history events after a given ID.
func (db *DB) GetGameHistorySince(gameID string, afterID int64) ([]*HistoryEvent, error) {
	events := []*HistoryEvent{}
	err := db.conn.Select(&events, `
		SELECT id, game_id, round, phase, player_id, player_name, event_type, message, created_at
		FROM game_history
		WHERE game_id = ? AND id > ?
		ORDER BY id ASC
	`, gameID, afterID)
	return events, err
}
