// Package game contains the board model and rules for a game of settlers.
// It has no I/O and is not safe for concurrent use; callers serialize access
// to a GameState.
package game

import (
	"math/rand"
	"time"
)

// GameState represents the complete state of a game.
type GameState struct {
	ID              string             `json:"id"`
	Settings        Settings           `json:"settings"`
	Round           int                `json:"round"`
	Phase           Phase              `json:"phase"`
	SetupStep       int                `json:"setupStep"`
	CurrentPlayerID string             `json:"currentPlayerId"`
	PlayerOrder     []string           `json:"playerOrder"`
	Players         map[string]*Player `json:"players"`
	Board           *Board             `json:"board"`
	Deck            []CardKind         `json:"deck"`
	LastRoll        [2]int             `json:"lastRoll"`
	Trade           *TradeOffer        `json:"trade,omitempty"`
	WinnerID        string             `json:"winnerId,omitempty"`

	rng *rand.Rand
}

// Settings contains the configurable game parameters.
type Settings struct {
	VictoryPoints int `json:"victoryPoints"`
	MaxPlayers    int `json:"maxPlayers"`
}

// Default game parameters.
const (
	DefaultVictoryPoints = 10
	DefaultMaxPlayers    = 4
	MinPlayers           = 2
)

// DefaultSettings returns the standard rules.
func DefaultSettings() Settings {
	return Settings{VictoryPoints: DefaultVictoryPoints, MaxPlayers: DefaultMaxPlayers}
}

// Phase represents the current phase of a turn.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseRoll
	PhaseDiscard
	PhaseMain
	PhaseGameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhaseRoll:
		return "Roll"
	case PhaseDiscard:
		return "Discard"
	case PhaseMain:
		return "Main"
	case PhaseGameOver:
		return "Game Over"
	default:
		return "Unknown"
	}
}

// SetRandom sets the source used for dice. A state decoded from JSON has
// none until one is set.
func (g *GameState) SetRandom(rng *rand.Rand) {
	g.rng = rng
}

func (g *GameState) random() *rand.Rand {
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g.rng
}

// GetCurrentPlayer returns the player whose turn it is.
func (g *GameState) GetCurrentPlayer() *Player {
	return g.Players[g.CurrentPlayerID]
}

// IsGameOver checks if the game has ended.
func (g *GameState) IsGameOver() bool {
	return g.Phase == PhaseGameOver
}

// GetWinner returns the winning player, or nil if the game is not over.
func (g *GameState) GetWinner() *Player {
	if g.WinnerID == "" {
		return nil
	}
	return g.Players[g.WinnerID]
}

// checkVictory ends the game if p has reached the victory threshold.
func (g *GameState) checkVictory(p *Player) bool {
	target := g.Settings.VictoryPoints
	if target <= 0 {
		target = DefaultVictoryPoints
	}
	if p.Points < target {
		return false
	}
	g.Phase = PhaseGameOver
	g.WinnerID = p.ID
	g.Trade = nil
	return true
}

// CountCities returns the number of cities owned by a player.
func (g *GameState) CountCities(playerID string) int {
	count := 0
	for _, v := range g.Board.Vertices() {
		if v.Owner == playerID && v.City {
			count++
		}
	}
	return count
}

// Standings returns players in turn order.
func (g *GameState) Standings() []*Player {
	out := make([]*Player, 0, len(g.PlayerOrder))
	for _, id := range g.PlayerOrder {
		if p := g.Players[id]; p != nil {
			out = append(out, p)
		}
	}
	return out
}
