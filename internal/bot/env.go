package bot

import (
	"strings"

	"settlers/internal/game"
)

// RuleEnv wraps game state for one player and exposes the helpers callable
// from rule conditions.
type RuleEnv struct {
	State    *game.GameState
	PlayerID string
}

func (e RuleEnv) player() *game.Player {
	if e.State == nil {
		return nil
	}
	return e.State.Players[e.PlayerID]
}

// InPhase reports whether the game is in the named phase: setup, roll,
// discard, main or over.
func (e RuleEnv) InPhase(name string) bool {
	if e.State == nil {
		return false
	}
	return phaseName(e.State.Phase) == strings.ToLower(name)
}

func phaseName(p game.Phase) string {
	switch p {
	case game.PhaseSetup:
		return "setup"
	case game.PhaseRoll:
		return "roll"
	case game.PhaseDiscard:
		return "discard"
	case game.PhaseMain:
		return "main"
	case game.PhaseGameOver:
		return "over"
	}
	return ""
}

// MyTurn reports whether this player is the one to move.
func (e RuleEnv) MyTurn() bool {
	return e.State != nil && e.State.CurrentPlayerID == e.PlayerID
}

// SetupWants reports whether setup is waiting on a "settlement" or "road".
func (e RuleEnv) SetupWants(kind string) bool {
	if e.State == nil {
		return false
	}
	switch e.State.SetupExpects() {
	case game.SetupSettlement:
		return kind == "settlement"
	case game.SetupRoad:
		return kind == "road"
	}
	return false
}

// Owed is the player's outstanding discard.
func (e RuleEnv) Owed() int {
	if p := e.player(); p != nil {
		return p.DiscardOwed
	}
	return 0
}

// Points is the player's current score.
func (e RuleEnv) Points() int {
	if p := e.player(); p != nil {
		return p.Points
	}
	return 0
}

// Target is the score that wins the game.
func (e RuleEnv) Target() int {
	if e.State == nil {
		return 0
	}
	return e.State.Settings.VictoryPoints
}

// HandSize is the number of resources the player holds.
func (e RuleEnv) HandSize() int {
	if p := e.player(); p != nil {
		return p.Hand.Total()
	}
	return 0
}

// Has returns how much of a resource the player holds.
func (e RuleEnv) Has(resource string) int {
	p := e.player()
	r, ok := game.ParseResource(resource)
	if p == nil || !ok {
		return 0
	}
	return p.Hand.Get(r)
}

// CanAfford reports whether the player can pay for a road, settlement,
// city or card.
func (e RuleEnv) CanAfford(build string) bool {
	p := e.player()
	cost, ok := buildCost(build)
	if p == nil || !ok {
		return false
	}
	return p.Hand.CanAfford(cost)
}

func buildCost(build string) (game.BuildCost, bool) {
	switch build {
	case "road":
		return game.GetBuildCost(game.BuildRoad), true
	case "settlement":
		return game.GetBuildCost(game.BuildSettlement), true
	case "city":
		return game.GetBuildCost(game.BuildCity), true
	case "card":
		return game.GetBuildCost(game.BuildCard), true
	}
	return game.BuildCost{}, false
}

// FreeRoads is the number of roads granted by road building still unplaced.
func (e RuleEnv) FreeRoads() int {
	if p := e.player(); p != nil {
		return p.FreeRoads
	}
	return 0
}

// HasCard reports whether the player holds a card of the named kind.
func (e RuleEnv) HasCard(name string) bool {
	p := e.player()
	k, err := game.ParseCardKind(name)
	if p == nil || err != nil {
		return false
	}
	return p.HasCard(k)
}

// DeckSize is the number of development cards left to buy.
func (e RuleEnv) DeckSize() int {
	if e.State == nil {
		return 0
	}
	return len(e.State.Deck)
}

// CanBuild reports whether build ("road", "settlement", "city" or "card") is
// both affordable and placeable right now.
func (e RuleEnv) CanBuild(build string) bool {
	if e.State == nil {
		return false
	}
	for _, o := range e.State.GetBuildOptions(e.PlayerID) {
		if o.Type.String() == build {
			return true
		}
	}
	return false
}

// SettlementSpots counts the legal settlement spots.
func (e RuleEnv) SettlementSpots() int {
	if e.State == nil {
		return 0
	}
	return len(e.State.LegalSettlementSpots(e.PlayerID))
}

// ConnectedSpots counts the legal settlement spots reached by the player's
// roads.
func (e RuleEnv) ConnectedSpots() int {
	if e.State == nil {
		return 0
	}
	return len(e.State.ConnectedSettlementSpots(e.PlayerID))
}

// CitySpots counts the player's settlements that can become cities.
func (e RuleEnv) CitySpots() int {
	if e.State == nil {
		return 0
	}
	return len(e.State.LegalCitySpots(e.PlayerID))
}

// RoadSpots counts the connections where the player may build a road.
func (e RuleEnv) RoadSpots() int {
	if e.State == nil {
		return 0
	}
	return len(e.State.LegalRoadSpots(e.PlayerID))
}

// TradeForMe reports whether a pending trade offer is addressed to the player.
func (e RuleEnv) TradeForMe() bool {
	return e.State != nil && e.State.Trade != nil && e.State.Trade.ToPlayerID == e.PlayerID
}

// TradeGain is what the player would receive minus what it would give on the
// pending offer.
func (e RuleEnv) TradeGain() int {
	if !e.TradeForMe() {
		return 0
	}
	return e.State.Trade.Offer.Total() - e.State.Trade.Request.Total()
}

// CanPayTrade reports whether the player holds what the pending offer asks for.
func (e RuleEnv) CanPayTrade() bool {
	p := e.player()
	if p == nil || !e.TradeForMe() {
		return false
	}
	return p.Hand.Contains(e.State.Trade.Request)
}
