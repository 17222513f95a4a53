package bot

import (
	"sort"

	"settlers/internal/game"
	"settlers/internal/protocol"
)

// Strategy names accepted by RulesFor.
const (
	StrategyBuilder   = "builder"
	StrategyDeveloper = "developer"
)

// DefaultStrategy is used when a player has none or an unknown one.
const DefaultStrategy = StrategyBuilder

// Strategies lists the known strategy names.
func Strategies() []string {
	return []string{StrategyBuilder, StrategyDeveloper}
}

// DefaultRules returns the builder strategy: expand with settlements and
// cities, buying cards only when nothing can be built.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Name:         "respond-trade",
			Priority:     1000,
			Category:     "trade",
			Exclusive:    true,
			ConditionSrc: `TradeForMe()`,
			Action:       ActionRespondTrade,
		},
		{
			Name:         "discard",
			Priority:     950,
			Category:     "penalty",
			Exclusive:    true,
			ConditionSrc: `InPhase("discard") && Owed() > 0`,
			Action:       ActionDiscard,
		},
		{
			Name:         "setup-settlement",
			Priority:     900,
			Category:     "setup",
			Exclusive:    true,
			ConditionSrc: `InPhase("setup") && MyTurn() && SetupWants("settlement")`,
			Action:       ActionSetupSettlement,
		},
		{
			Name:         "setup-road",
			Priority:     890,
			Category:     "setup",
			Exclusive:    true,
			ConditionSrc: `InPhase("setup") && MyTurn() && SetupWants("road")`,
			Action:       ActionSetupRoad,
		},
		{
			Name:         "roll",
			Priority:     800,
			Category:     "roll",
			Exclusive:    true,
			ConditionSrc: `InPhase("roll") && MyTurn()`,
			Action:       ActionRoll,
		},
		{
			Name:         "year-of-plenty",
			Priority:     700,
			Category:     "card",
			ConditionSrc: `InPhase("main") && MyTurn() && HasCard("year_of_plenty")`,
			Action:       ActionYearOfPlenty,
		},
		{
			Name:         "monopoly",
			Priority:     690,
			Category:     "card",
			ConditionSrc: `InPhase("main") && MyTurn() && HasCard("monopoly")`,
			Action:       ActionMonopoly,
		},
		{
			Name:         "road-building",
			Priority:     680,
			Category:     "card",
			ConditionSrc: `InPhase("main") && MyTurn() && HasCard("road_building") && FreeRoads() == 0 && RoadSpots() > 1`,
			Action:       ActionPlayCard(game.CardRoadBuilding),
		},
		{
			Name:         "free-road",
			Priority:     650,
			Category:     "build",
			ConditionSrc: `InPhase("main") && MyTurn() && FreeRoads() > 0 && RoadSpots() > 0`,
			Action:       ActionBuildRoad,
		},
		{
			Name:         "build-city",
			Priority:     600,
			Category:     "build",
			ConditionSrc: `InPhase("main") && MyTurn() && CanBuild("city")`,
			Action:       ActionBuildCity,
		},
		{
			Name:         "build-settlement",
			Priority:     550,
			Category:     "build",
			ConditionSrc: `InPhase("main") && MyTurn() && CanBuild("settlement")`,
			Action:       ActionBuildSettlement,
		},
		{
			Name:         "build-road",
			Priority:     500,
			Category:     "build",
			ConditionSrc: `InPhase("main") && MyTurn() && CanAfford("road") && RoadSpots() > 0 && ConnectedSpots() == 0`,
			Action:       ActionBuildRoad,
		},
		{
			Name:         "buy-card",
			Priority:     400,
			Category:     "build",
			ConditionSrc: `InPhase("main") && MyTurn() && CanAfford("card") && DeckSize() > 0 && !CanAfford("settlement")`,
			Action:       ActionBuyCard,
		},
		{
			Name:         "end-turn",
			Priority:     0,
			Category:     "turn",
			Exclusive:    true,
			ConditionSrc: `InPhase("main") && MyTurn()`,
			Action:       ActionEndTurn,
		},
	}
}

// DeveloperRules favour development cards over roads.
func DeveloperRules() []*Rule {
	rules := DefaultRules()
	for _, r := range rules {
		if r.Name == "buy-card" {
			r.Priority = 560
			r.ConditionSrc = `InPhase("main") && MyTurn() && CanAfford("card") && DeckSize() > 0`
		}
	}
	return rules
}

// RulesFor returns the rules for the named strategy.
func RulesFor(strategy string) []*Rule {
	switch strategy {
	case StrategyDeveloper:
		return DeveloperRules()
	default:
		return DefaultRules()
	}
}

// ==================== Actions ====================

// ActionRespondTrade accepts offers that give at least as much as they take.
func ActionRespondTrade(env RuleEnv) *Move {
	accept := env.CanPayTrade() && env.TradeGain() >= 0
	return &Move{Action: protocol.TypeRespondTrade, Accept: accept}
}

// ActionDiscard gives up the owed amount from the largest piles.
func ActionDiscard(env RuleEnv) *Move {
	p := env.player()
	if p == nil || p.DiscardOwed == 0 {
		return nil
	}
	left := *p.Hand
	var out game.Hand
	for i := 0; i < p.DiscardOwed; i++ {
		best := game.ResourceNone
		for _, r := range game.AllResources() {
			if left.Get(r) > 0 && (best == game.ResourceNone || left.Get(r) > left.Get(best)) {
				best = r
			}
		}
		if best == game.ResourceNone {
			break
		}
		left.Remove(best, 1)
		out.Add(best, 1)
	}
	if out.Total() == 0 {
		return nil
	}
	return &Move{Action: protocol.TypeDiscard, Discard: out}
}

// ActionSetupSettlement takes the most productive open spot.
func ActionSetupSettlement(env RuleEnv) *Move {
	v := bestVertex(env.State.Board, env.State.LegalSettlementSpots(env.PlayerID))
	if v == nil {
		return nil
	}
	return &Move{Action: protocol.TypePlaceSettlement, At: v.Coord}
}

// ActionSetupRoad places a free road toward the best open spot.
func ActionSetupRoad(env RuleEnv) *Move {
	e := bestRoad(env.State.Board, env.State.LegalRoadSpots(env.PlayerID))
	if e == nil {
		return nil
	}
	return roadMove(protocol.TypePlaceRoad, env.State.Board, e)
}

// ActionRoll rolls the dice.
func ActionRoll(RuleEnv) *Move {
	return &Move{Action: protocol.TypeRollDice}
}

// ActionBuildCity upgrades the most productive settlement.
func ActionBuildCity(env RuleEnv) *Move {
	v := bestVertex(env.State.Board, env.State.LegalCitySpots(env.PlayerID))
	if v == nil {
		return nil
	}
	return &Move{Action: protocol.TypeBuildCity, At: v.Coord}
}

// ActionBuildSettlement settles the best spot, preferring ones reached by
// the player's roads.
func ActionBuildSettlement(env RuleEnv) *Move {
	spots := env.State.ConnectedSettlementSpots(env.PlayerID)
	if len(spots) == 0 {
		spots = env.State.LegalSettlementSpots(env.PlayerID)
	}
	v := bestVertex(env.State.Board, spots)
	if v == nil {
		return nil
	}
	return &Move{Action: protocol.TypeBuildSettlement, At: v.Coord}
}

// ActionBuildRoad extends toward the best open spot.
func ActionBuildRoad(env RuleEnv) *Move {
	e := bestRoad(env.State.Board, env.State.LegalRoadSpots(env.PlayerID))
	if e == nil {
		return nil
	}
	return roadMove(protocol.TypeBuildRoad, env.State.Board, e)
}

// ActionBuyCard buys a development card.
func ActionBuyCard(RuleEnv) *Move {
	return &Move{Action: protocol.TypeBuyCard}
}

// ActionEndTurn passes play.
func ActionEndTurn(RuleEnv) *Move {
	return &Move{Action: protocol.TypeEndTurn}
}

// ActionPlayCard plays a card that needs no resource choice.
func ActionPlayCard(kind game.CardKind) ActionFunc {
	return func(RuleEnv) *Move {
		return &Move{Action: protocol.TypePlayCard, Card: game.CardPlay{Card: kind}}
	}
}

// ActionYearOfPlenty takes the two resources the player holds least of.
func ActionYearOfPlenty(env RuleEnv) *Move {
	p := env.player()
	if p == nil {
		return nil
	}
	scarce := byCount(p.Hand, true)
	return &Move{Action: protocol.TypePlayCard, Card: game.CardPlay{
		Card:      game.CardYearOfPlenty,
		Resource:  scarce[0],
		Resource2: scarce[1],
	}}
}

// ActionMonopoly names the resource most widely held by the opponents.
func ActionMonopoly(env RuleEnv) *Move {
	holders := make(map[game.ResourceType]int)
	for id, other := range env.State.Players {
		if id == env.PlayerID {
			continue
		}
		for _, r := range game.AllResources() {
			if other.Hand.Get(r) > 0 {
				holders[r]++
			}
		}
	}
	best := game.ResourceNone
	for _, r := range game.AllResources() {
		if holders[r] > 0 && (best == game.ResourceNone || holders[r] > holders[best]) {
			best = r
		}
	}
	if best == game.ResourceNone {
		return nil
	}
	return &Move{Action: protocol.TypePlayCard, Card: game.CardPlay{Card: game.CardMonopoly, Resource: best}}
}

// ==================== Scoring ====================

// pips is the number of two-dice combinations that roll n.
func pips(n int) int {
	if n < 2 || n > 12 || n == 7 {
		return 0
	}
	if n < 7 {
		return n - 1
	}
	return 13 - n
}

// vertexScore rates an intersection by the production of its tiles, with a
// bonus for each distinct resource.
func vertexScore(b *game.Board, v *game.Vertex) int {
	score := 0
	seen := make(map[game.ResourceType]bool)
	for _, t := range b.TilesAt(v.ID) {
		if !t.Resource.IsProducing() {
			continue
		}
		score += pips(t.Number)
		if !seen[t.Resource] {
			seen[t.Resource] = true
			score++
		}
	}
	return score
}

// bestVertex returns the highest scoring vertex, ties broken by lowest ID.
func bestVertex(b *game.Board, spots []*game.Vertex) *game.Vertex {
	var best *game.Vertex
	bestScore := -1
	for _, v := range spots {
		if s := vertexScore(b, v); s > bestScore || (s == bestScore && v.ID < best.ID) {
			best, bestScore = v, s
		}
	}
	return best
}

// roadScore rates a road by the best open settlement spot at or next to
// either end.
func roadScore(b *game.Board, e *game.Edge) int {
	return max(endScore(b, b.VertexAt(e.A)), endScore(b, b.VertexAt(e.B)))
}

func endScore(b *game.Board, v *game.Vertex) int {
	if v.IsOwned() {
		return 0
	}
	if b.CanSettle(v) == nil {
		return 2 * vertexScore(b, v)
	}
	best := 0
	for _, n := range v.Neighbors {
		nv := b.VertexAt(n)
		if b.CanSettle(nv) == nil {
			best = max(best, vertexScore(b, nv))
		}
	}
	return best
}

func bestRoad(b *game.Board, spots []*game.Edge) *game.Edge {
	var best *game.Edge
	bestScore := -1
	for _, e := range spots {
		if s := roadScore(b, e); s > bestScore || (s == bestScore && e.ID < best.ID) {
			best, bestScore = e, s
		}
	}
	return best
}

func roadMove(action protocol.MessageType, b *game.Board, e *game.Edge) *Move {
	return &Move{Action: action, From: b.VertexAt(e.A).Coord, To: b.VertexAt(e.B).Coord}
}

// byCount orders the producing resources by how many the hand holds.
func byCount(h *game.Hand, ascending bool) []game.ResourceType {
	rs := game.AllResources()
	sort.SliceStable(rs, func(i, j int) bool {
		if ascending {
			return h.Get(rs[i]) < h.Get(rs[j])
		}
		return h.Get(rs[i]) > h.Get(rs[j])
	})
	return rs
}
