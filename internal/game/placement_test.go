package game

import (
	"errors"
	"testing"
)

func richPlayer(id string) *Player {
	p := NewPlayer(id, id, ColorRed)
	p.Hand = &Hand{Tree: 10, Clay: 10, Wool: 10, Crop: 10, Iron: 10}
	return p
}

func TestPlaceSettlement_Success(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := NewPlayer("a", "A", ColorRed)
	p.Hand = &Hand{Tree: 1, Clay: 1, Wool: 1, Crop: 1}

	v, err := b.PlaceSettlement(2, 2, p, false, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.Owner != "a" || !v.Settled || v.City {
		t.Errorf("Unexpected vertex state %+v", v)
	}
	if p.Points != 1 {
		t.Errorf("Expected 1 point, got %d", p.Points)
	}
	if p.Hand.Total() != 0 {
		t.Errorf("Expected settlement cost to be debited, hand is %+v", p.Hand)
	}
	if len(p.Buildings) != 1 || p.Buildings[0] != v.ID {
		t.Errorf("Expected building recorded, got %v", p.Buildings)
	}
}

func TestPlaceSettlement_OutOfBounds(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := richPlayer("a")

	for _, c := range []Coord{{0, 0}, {-1, 3}, {6, 3}, {3, 11}} {
		if _, err := b.PlaceSettlement(c.Row, c.Col, p, false, false); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("%v: expected ErrOutOfBounds, got %v", c, err)
		}
	}
	if p.Points != 0 || p.Hand.Total() != 50 {
		t.Error("Out-of-bounds placement must not change the player")
	}
}

func TestPlaceSettlement_DistanceRule(t *testing.T) {
	b := NewBoard(fixedRNG())
	a := richPlayer("a")
	c := richPlayer("c")

	if _, err := b.PlaceSettlement(2, 2, a, false, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, n := range []Coord{{2, 1}, {2, 3}, {3, 2}} {
		_, err := b.PlaceSettlement(n.Row, n.Col, c, false, false)
		if !errors.Is(err, ErrTooClose) {
			t.Errorf("%v: expected ErrTooClose, got %v", n, err)
		}
		if !errors.Is(err, ErrIllegalPlacement) {
			t.Errorf("%v: expected error to wrap ErrIllegalPlacement", n)
		}
	}

	if _, err := b.PlaceSettlement(2, 2, c, false, false); !errors.Is(err, ErrOccupied) {
		t.Errorf("Expected ErrOccupied, got %v", err)
	}

	// Two steps away is fine.
	if _, err := b.PlaceSettlement(2, 4, c, false, false); err != nil {
		t.Errorf("Expected (2,4) to be legal, got %v", err)
	}
}

func TestPlaceSettlement_InsufficientResourcesLeavesBoard(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := NewPlayer("a", "A", ColorRed)
	p.Hand = &Hand{Tree: 1, Clay: 1, Wool: 1}

	if _, err := b.PlaceSettlement(2, 2, p, false, false); !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("Expected ErrInsufficientResources, got %v", err)
	}
	if b.Vertex(2, 2).IsOwned() {
		t.Error("Vertex should remain unowned")
	}
	if p.Hand.Total() != 3 || p.Points != 0 {
		t.Errorf("Player should be unchanged, got hand %+v points %d", p.Hand, p.Points)
	}
}

func TestPlaceSettlement_City(t *testing.T) {
	b := NewBoard(fixedRNG())
	a := richPlayer("a")
	c := richPlayer("c")

	if _, err := b.PlaceSettlement(2, 2, a, true, false); !errors.Is(err, ErrNotOwner) {
		t.Errorf("City on empty vertex: expected ErrNotOwner, got %v", err)
	}
	if _, err := b.PlaceSettlement(2, 2, a, false, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := b.PlaceSettlement(2, 2, c, true, false); !errors.Is(err, ErrNotOwner) {
		t.Errorf("City on other player's settlement: expected ErrNotOwner, got %v", err)
	}

	before := *a.Hand
	v, err := b.PlaceSettlement(2, 2, a, true, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !v.City || !v.Settled {
		t.Error("Expected a city")
	}
	if a.Points != 2 {
		t.Errorf("Expected 2 points, got %d", a.Points)
	}
	if a.Hand.Crop != before.Crop-2 || a.Hand.Iron != before.Iron-3 {
		t.Errorf("Expected city cost debited, got %+v", a.Hand)
	}
	if len(a.Buildings) != 1 {
		t.Errorf("Upgrade should not add a building, got %v", a.Buildings)
	}

	if _, err := b.PlaceSettlement(2, 2, a, true, false); !errors.Is(err, ErrAlreadyCity) {
		t.Errorf("Expected ErrAlreadyCity, got %v", err)
	}
}

func TestPlaceSettlement_SkipCost(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := NewPlayer("a", "A", ColorRed)

	if _, err := b.PlaceSettlement(2, 2, p, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := b.PlaceSettlement(2, 2, p, true, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Points != 2 {
		t.Errorf("Expected 2 points, got %d", p.Points)
	}
}

func TestPlaceRoad_FromSettlement(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := richPlayer("a")
	if _, err := b.PlaceSettlement(2, 2, p, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	e, err := b.PlaceRoad(3, 2, 2, 2, p, false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if e.RoadOwner != "a" {
		t.Errorf("Expected road owned by a, got %q", e.RoadOwner)
	}
	if p.Hand.Tree != 9 || p.Hand.Clay != 9 {
		t.Errorf("Expected road cost debited, got %+v", p.Hand)
	}
	if len(p.Roads) != 1 || p.Roads[0] != e.ID {
		t.Errorf("Expected road recorded, got %v", p.Roads)
	}

	if _, err := b.PlaceRoad(2, 2, 3, 2, p, false); !errors.Is(err, ErrRoadExists) {
		t.Errorf("Expected ErrRoadExists for reversed endpoints, got %v", err)
	}
}

func TestPlaceRoad_ExtendsNetwork(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := richPlayer("a")
	if _, err := b.PlaceSettlement(2, 2, p, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := b.PlaceRoad(2, 2, 2, 3, p, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// (2,3)-(2,4) touches no settlement but shares (2,3) with the first road.
	if _, err := b.PlaceRoad(2, 3, 2, 4, p, true); err != nil {
		t.Errorf("Expected road to extend the network, got %v", err)
	}
	if _, err := b.PlaceRoad(4, 5, 4, 6, p, true); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestPlaceRoad_Rejections(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := richPlayer("a")
	if _, err := b.PlaceSettlement(2, 2, p, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name           string
		fr, fc, tr, tc int
		want           error
	}{
		{"hole endpoint", 2, 2, 0, 0, ErrOutOfBounds},
		{"off grid", -1, 2, 2, 2, ErrOutOfBounds},
		{"same endpoint", 2, 2, 2, 2, ErrSameEndpoint},
		{"not adjacent", 2, 2, 2, 4, ErrNoConnection},
		{"wrong vertical", 2, 2, 1, 2, ErrNoConnection},
	}
	for _, tt := range tests {
		_, err := b.PlaceRoad(tt.fr, tt.fc, tt.tr, tt.tc, p, false)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
	if p.Hand.Total() != 50 {
		t.Error("Rejected roads must not debit resources")
	}
}

func TestPlaceRoad_GeometryCheckedBeforeCost(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := NewPlayer("a", "A", ColorRed)

	if _, err := b.PlaceRoad(2, 2, 2, 3, p, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected for a broke player off-network, got %v", err)
	}

	if _, err := b.PlaceSettlement(2, 2, p, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := b.PlaceRoad(2, 2, 2, 3, p, false); !errors.Is(err, ErrInsufficientResources) {
		t.Errorf("Expected ErrInsufficientResources, got %v", err)
	}
	if e := b.EdgeBetween(b.Vertex(2, 2).ID, b.Vertex(2, 3).ID); e.HasRoad() {
		t.Error("Edge should remain empty")
	}
}

func TestPlaceRoad_OpponentSettlementDoesNotBlock(t *testing.T) {
	b := NewBoard(fixedRNG())
	a := richPlayer("a")
	c := richPlayer("c")
	if _, err := b.PlaceSettlement(2, 2, a, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := b.PlaceRoad(2, 2, 2, 3, a, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := b.PlaceSettlement(2, 4, c, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := b.PlaceRoad(2, 3, 2, 4, a, true); err != nil {
		t.Errorf("Expected road into opponent settlement to be allowed, got %v", err)
	}
}

func TestSpots(t *testing.T) {
	b := NewBoard(fixedRNG())
	p := richPlayer("a")

	if got := len(b.SettlementSpots("a", false)); got != VertexCount {
		t.Errorf("Expected all %d vertices open, got %d", VertexCount, got)
	}
	if got := len(b.SettlementSpots("a", true)); got != 0 {
		t.Errorf("Expected no connected spots without roads, got %d", got)
	}

	if _, err := b.PlaceSettlement(2, 2, p, false, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := len(b.SettlementSpots("a", false)); got != VertexCount-4 {
		t.Errorf("Expected %d open vertices, got %d", VertexCount-4, got)
	}
	if got := len(b.CitySpots("a")); got != 1 {
		t.Errorf("Expected 1 city spot, got %d", got)
	}
	if got := len(b.RoadSpots("a")); got != 3 {
		t.Errorf("Expected 3 road spots, got %d", got)
	}
}
