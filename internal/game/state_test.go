package game

import (
	"encoding/json"
	"errors"
	"testing"
)

// Helper to create a game with n players, still in setup
func newTestGame(t *testing.T, n int) *GameState {
	t.Helper()
	players := make([]*Player, n)
	for i := range players {
		id := string(rune('a' + i))
		players[i] = NewPlayer(id, "Player "+id, AllColors()[i])
	}
	g, err := InitializeGame(players, DefaultSettings(), fixedRNG())
	if err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	return g
}

// playSetup places every setup building at the first legal spot.
func playSetup(t *testing.T, g *GameState) {
	t.Helper()
	for g.Phase == PhaseSetup {
		id := g.CurrentPlayerID
		switch g.SetupExpects() {
		case SetupSettlement:
			spots := g.LegalSettlementSpots(id)
			if len(spots) == 0 {
				t.Fatalf("No settlement spot for %s", id)
			}
			c := spots[0].Coord
			if _, err := g.PlaceInitialSettlement(id, c.Row, c.Col); err != nil {
				t.Fatalf("PlaceInitialSettlement: %v", err)
			}
		case SetupRoad:
			spots := g.LegalRoadSpots(id)
			if len(spots) == 0 {
				t.Fatalf("No road spot for %s", id)
			}
			a := g.Board.VertexAt(spots[0].A).Coord
			b := g.Board.VertexAt(spots[0].B).Coord
			if _, err := g.PlaceInitialRoad(id, a.Row, a.Col, b.Row, b.Col); err != nil {
				t.Fatalf("PlaceInitialRoad: %v", err)
			}
		default:
			t.Fatal("Setup phase with nothing to place")
		}
	}
}

// newMainPhaseGame returns a game past setup with the first player to act.
func newMainPhaseGame(t *testing.T, n int) *GameState {
	t.Helper()
	g := newTestGame(t, n)
	playSetup(t, g)
	g.Phase = PhaseMain
	return g
}

func TestInitializeGame_PlayerLimits(t *testing.T) {
	one := []*Player{NewPlayer("a", "A", ColorRed)}
	if _, err := InitializeGame(one, DefaultSettings(), fixedRNG()); !errors.Is(err, ErrTooFewPlayers) {
		t.Errorf("Expected ErrTooFewPlayers, got %v", err)
	}

	var five []*Player
	for i := 0; i < 5; i++ {
		five = append(five, NewPlayer(string(rune('a'+i)), "P", ColorRed))
	}
	if _, err := InitializeGame(five, DefaultSettings(), fixedRNG()); !errors.Is(err, ErrTooManyPlayers) {
		t.Errorf("Expected ErrTooManyPlayers, got %v", err)
	}
}

func TestSetup_OrderAndStartingResources(t *testing.T) {
	g := newTestGame(t, 3)
	order := append([]string(nil), g.PlayerOrder...)

	// Settlement rounds go in player order twice.
	for i := 0; i < 6; i++ {
		if g.CurrentPlayerID != order[i%3] {
			t.Fatalf("Step %d: expected %s to place, got %s", i, order[i%3], g.CurrentPlayerID)
		}
		if g.SetupExpects() != SetupSettlement {
			t.Fatalf("Step %d: expected a settlement", i)
		}
		c := g.LegalSettlementSpots(g.CurrentPlayerID)[0].Coord
		if _, err := g.PlaceInitialSettlement(g.CurrentPlayerID, c.Row, c.Col); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if g.SetupExpects() != SetupRoad {
		t.Fatal("Expected road rounds after settlements")
	}
	if _, err := g.PlaceInitialSettlement(g.CurrentPlayerID, 3, 3); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction for settlement during road round, got %v", err)
	}

	playSetup(t, g)

	if g.Phase != PhaseRoll || g.Round != 1 || g.CurrentPlayerID != order[0] {
		t.Errorf("Expected first roll by %s in round 1, got phase %s round %d player %s",
			order[0], g.Phase, g.Round, g.CurrentPlayerID)
	}
	for _, p := range g.Players {
		if p.Points != 2 || len(p.Roads) != 2 || len(p.Buildings) != 2 {
			t.Errorf("%s: expected 2 points, 2 roads and 2 buildings, got %d/%d/%d",
				p.ID, p.Points, len(p.Roads), len(p.Buildings))
		}
		want := 0
		for _, v := range p.Buildings {
			for _, tile := range g.Board.TilesAt(v) {
				if tile.Resource.IsProducing() {
					want++
				}
			}
		}
		if p.Hand.Total() != want {
			t.Errorf("%s: expected %d starting resources, got %d", p.ID, want, p.Hand.Total())
		}
	}
}

func TestSetup_WrongPlayer(t *testing.T) {
	g := newTestGame(t, 2)
	other := g.PlayerOrder[1]
	if _, err := g.PlaceInitialSettlement(other, 2, 2); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
}

func TestApplyRoll_SevenForcesDiscard(t *testing.T) {
	g := newTestGame(t, 3)
	playSetup(t, g)

	roller := g.CurrentPlayerID
	heavy := g.PlayerOrder[1]
	for _, id := range g.PlayerOrder {
		g.Players[id].Hand = &Hand{Tree: 1, Clay: 1}
	}
	g.Players[heavy].Hand = &Hand{Tree: 3, Clay: 3, Wool: 3}

	result, err := g.ApplyRoll(roller, 3, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Sum != 7 || result.Discards[heavy] != 4 || len(result.Discards) != 1 {
		t.Fatalf("Unexpected roll result %+v", result)
	}
	if g.Phase != PhaseDiscard {
		t.Fatalf("Expected discard phase, got %s", g.Phase)
	}

	if _, err := g.BuildRoad(roller, 0, 2, 0, 3); !errors.Is(err, ErrDiscardPending) {
		t.Errorf("Expected ErrDiscardPending, got %v", err)
	}
	if err := g.Discard(roller, Hand{Tree: 1}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Player under threshold should not discard, got %v", err)
	}
	if err := g.Discard(heavy, Hand{Tree: 3, Clay: 2}); !errors.Is(err, ErrDiscardTooMany) {
		t.Errorf("Expected ErrDiscardTooMany, got %v", err)
	}
	if err := g.Discard(heavy, Hand{Crop: 1}); !errors.Is(err, ErrInsufficientResources) {
		t.Errorf("Expected ErrInsufficientResources, got %v", err)
	}
	if err := g.Discard(heavy, Hand{Tree: 2}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if g.Phase != PhaseDiscard || g.Players[heavy].DiscardOwed != 2 {
		t.Fatalf("Expected 2 still owed, got %d", g.Players[heavy].DiscardOwed)
	}
	if err := g.Discard(heavy, Hand{Wool: 2}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if g.Phase != PhaseMain {
		t.Errorf("Expected main phase once discards are done, got %s", g.Phase)
	}
	if g.Players[heavy].Hand.Total() != 5 {
		t.Errorf("Expected 5 resources left, got %d", g.Players[heavy].Hand.Total())
	}
}

func TestDiscardQuota(t *testing.T) {
	tests := map[int]int{0: 0, 6: 0, 7: 3, 8: 4, 9: 4, 12: 6}
	for total, want := range tests {
		if got := DiscardQuota(total); got != want {
			t.Errorf("DiscardQuota(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestApplyRoll_Validation(t *testing.T) {
	g := newTestGame(t, 2)
	if _, err := g.ApplyRoll(g.CurrentPlayerID, 1, 1); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction during setup, got %v", err)
	}
	playSetup(t, g)
	if _, err := g.ApplyRoll(g.PlayerOrder[1], 1, 1); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
	if _, err := g.ApplyRoll(g.CurrentPlayerID, 0, 7); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Expected ErrInvalidTarget, got %v", err)
	}
	if _, err := g.RollDice(g.CurrentPlayerID); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if g.LastRoll[0] < 1 || g.LastRoll[1] > 6 {
		t.Errorf("Unexpected dice %v", g.LastRoll)
	}
}

func TestEndTurn_Rotates(t *testing.T) {
	g := newMainPhaseGame(t, 3)
	order := g.PlayerOrder

	for i := 1; i <= 3; i++ {
		if err := g.EndTurn(g.CurrentPlayerID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if g.CurrentPlayerID != order[i%3] || g.Phase != PhaseRoll {
			t.Fatalf("Expected %s to roll next, got %s in %s", order[i%3], g.CurrentPlayerID, g.Phase)
		}
		g.Phase = PhaseMain
	}
	if g.Round != 2 {
		t.Errorf("Expected round 2 after a full rotation, got %d", g.Round)
	}
}

func TestVictory_EndsGame(t *testing.T) {
	g := newMainPhaseGame(t, 2)
	me := g.GetCurrentPlayer()
	me.Points = 9
	me.Hand = &Hand{Wool: 1, Crop: 1, Iron: 1}
	g.Deck = []CardKind{CardVictoryPoint}

	if _, err := g.BuyCard(me.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !g.IsGameOver() || g.GetWinner() != me {
		t.Fatalf("Expected %s to win", me.ID)
	}
	if err := g.EndTurn(me.ID); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
}

func TestBuildSettlement_MainPhase(t *testing.T) {
	g := newMainPhaseGame(t, 2)
	me := g.GetCurrentPlayer()
	me.Hand = &Hand{Tree: 1, Clay: 1, Wool: 1, Crop: 1}

	spots := g.Board.SettlementSpots(me.ID, false)
	c := spots[0].Coord
	if _, err := g.BuildSettlement(g.PlayerOrder[1], c.Row, c.Col); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
	if _, err := g.BuildSettlement(me.ID, c.Row, c.Col); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if me.Points != 3 {
		t.Errorf("Expected 3 points, got %d", me.Points)
	}

	me.Hand = &Hand{Crop: 2, Iron: 3}
	if _, err := g.BuildCity(me.ID, c.Row, c.Col); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if me.Points != 4 || g.CountCities(me.ID) != 1 {
		t.Errorf("Expected 4 points and one city, got %d / %d", me.Points, g.CountCities(me.ID))
	}
}

func TestTrade_ProposeAndAccept(t *testing.T) {
	g := newMainPhaseGame(t, 2)
	me := g.GetCurrentPlayer()
	other := g.Players[g.PlayerOrder[1]]
	me.Hand = &Hand{Tree: 2}
	other.Hand = &Hand{Iron: 1}

	offer := &TradeOffer{FromPlayerID: me.ID, ToPlayerID: other.ID, Offer: Hand{Tree: 1}, Request: Hand{Iron: 1}}
	if err := g.ProposeTrade(offer); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := g.RespondTrade(me.ID, true); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Proposer cannot answer own offer, got %v", err)
	}
	ok, err := g.RespondTrade(other.ID, true)
	if err != nil || !ok {
		t.Fatalf("Expected trade to execute, got %v %v", ok, err)
	}
	if me.Hand.Tree != 1 || me.Hand.Iron != 1 || other.Hand.Tree != 1 || other.Hand.Iron != 0 {
		t.Errorf("Unexpected hands after trade: %+v / %+v", me.Hand, other.Hand)
	}
	if _, err := g.RespondTrade(other.ID, true); !errors.Is(err, ErrNoTradeOffer) {
		t.Errorf("Expected ErrNoTradeOffer, got %v", err)
	}
}

func TestTrade_Validation(t *testing.T) {
	g := newMainPhaseGame(t, 2)
	me := g.GetCurrentPlayer()
	other := g.Players[g.PlayerOrder[1]]
	me.Hand = &Hand{Tree: 1}
	other.Hand = NewHand()

	tests := []struct {
		name  string
		offer TradeOffer
		want  error
	}{
		{"self", TradeOffer{FromPlayerID: me.ID, ToPlayerID: me.ID, Offer: Hand{Tree: 1}}, ErrInvalidTarget},
		{"empty", TradeOffer{FromPlayerID: me.ID, ToPlayerID: other.ID}, ErrInvalidTarget},
		{"negative", TradeOffer{FromPlayerID: me.ID, ToPlayerID: other.ID, Offer: Hand{Tree: -1}}, ErrInvalidTarget},
		{"requester short", TradeOffer{FromPlayerID: me.ID, ToPlayerID: other.ID, Offer: Hand{Tree: 1}, Request: Hand{Iron: 1}}, ErrInsufficientResources},
		{"not your turn", TradeOffer{FromPlayerID: other.ID, ToPlayerID: me.ID, Request: Hand{Tree: 1}}, ErrNotYourTurn},
	}
	for _, tt := range tests {
		offer := tt.offer
		if err := g.ProposeTrade(&offer); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestGameState_JSONRoundTrip(t *testing.T) {
	g := newMainPhaseGame(t, 3)

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if restored.CurrentPlayerID != g.CurrentPlayerID || restored.Phase != g.Phase {
		t.Error("Turn state differs after restore")
	}
	for id, p := range g.Players {
		rp := restored.Players[id]
		if rp.Points != p.Points || *rp.Hand != *p.Hand || len(rp.Roads) != len(p.Roads) {
			t.Errorf("%s differs after restore", id)
		}
	}
	if len(restored.Deck) != len(g.Deck) || restored.Deck[0] != g.Deck[0] {
		t.Error("Deck differs after restore")
	}
	if got := len(restored.LegalRoadSpots(g.CurrentPlayerID)); got != len(g.LegalRoadSpots(g.CurrentPlayerID)) {
		t.Errorf("Road spots differ after restore: %d", got)
	}
}
