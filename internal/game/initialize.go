package game

import (
	"math/rand"

	"github.com/google/uuid"
)

// InitializeGame creates a new game with a freshly built board. The player
// order is shuffled and the game starts in the setup phase.
func InitializeGame(players []*Player, settings Settings, rng *rand.Rand) (*GameState, error) {
	if settings.MaxPlayers <= 0 {
		settings.MaxPlayers = DefaultMaxPlayers
	}
	if settings.VictoryPoints <= 0 {
		settings.VictoryPoints = DefaultVictoryPoints
	}
	if len(players) < MinPlayers {
		return nil, ErrTooFewPlayers
	}
	if len(players) > settings.MaxPlayers {
		return nil, ErrTooManyPlayers
	}

	state := &GameState{
		ID:       uuid.New().String(),
		Settings: settings,
		Round:    0,
		Phase:    PhaseSetup,
		Players:  make(map[string]*Player),
		Board:    NewBoard(rng),
		Deck:     NewDeck(rng),
		rng:      rng,
	}

	// Add players
	state.PlayerOrder = make([]string, len(players))
	for i, p := range players {
		if p.Hand == nil {
			p.Hand = NewHand()
		}
		state.Players[p.ID] = p
		state.PlayerOrder[i] = p.ID
	}

	rng.Shuffle(len(state.PlayerOrder), func(i, j int) {
		state.PlayerOrder[i], state.PlayerOrder[j] = state.PlayerOrder[j], state.PlayerOrder[i]
	})
	state.CurrentPlayerID = state.PlayerOrder[0]

	return state, nil
}
