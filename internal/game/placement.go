package game

// CanSettle reports whether a new settlement could go on v: it must be
// unowned and no neighbor may be settled.
func (b *Board) CanSettle(v *Vertex) error {
	if v.IsOwned() || v.Settled {
		return ErrOccupied
	}
	for _, n := range v.Neighbors {
		if b.vertices[n].Settled {
			return ErrTooClose
		}
	}
	return nil
}

// CanUpgrade reports whether playerID may turn v into a city.
func (b *Board) CanUpgrade(v *Vertex, playerID string) error {
	if v.Owner != playerID || !v.Settled {
		return ErrNotOwner
	}
	if v.City {
		return ErrAlreadyCity
	}
	return nil
}

// PlaceSettlement builds a settlement (or upgrades to a city when isCity) at
// (row, col) for p. When skipCost is set no resources are debited, as during
// the initial placement rounds. Nothing changes unless every check passes.
func (b *Board) PlaceSettlement(row, col int, p *Player, isCity, skipCost bool) (*Vertex, error) {
	v := b.Vertex(row, col)
	if v == nil {
		return nil, ErrOutOfBounds
	}

	cost := CostSettlement
	if isCity {
		cost = CostCity
		if err := b.CanUpgrade(v, p.ID); err != nil {
			return nil, err
		}
	} else if err := b.CanSettle(v); err != nil {
		return nil, err
	}

	if !skipCost && !p.Hand.Spend(cost) {
		return nil, ErrInsufficientResources
	}

	if isCity {
		v.upgrade()
	} else {
		v.claim(p.ID)
		p.Buildings = append(p.Buildings, v.ID)
	}
	p.Points++
	return v, nil
}

// roadEligibility checks the geometry of a road between a and c for playerID.
func (b *Board) roadEligibility(a, c VertexID, playerID string) (*Edge, error) {
	if a == c {
		return nil, ErrSameEndpoint
	}
	e := b.EdgeBetween(a, c)
	if e == nil {
		return nil, ErrNoConnection
	}
	if e.HasRoad() {
		return nil, ErrRoadExists
	}

	if b.vertices[a].Owner == playerID || b.vertices[c].Owner == playerID {
		return e, nil
	}
	for _, n := range e.Neighbors {
		if b.edges[n].RoadOwner == playerID {
			return e, nil
		}
	}
	return nil, ErrNotConnected
}

// CanBuildRoad reports whether playerID could build on e, ignoring cost.
func (b *Board) CanBuildRoad(e *Edge, playerID string) bool {
	_, err := b.roadEligibility(e.A, e.B, playerID)
	return err == nil
}

// PlaceRoad builds a road for p between (fromRow, fromCol) and (toRow, toCol).
// The road must touch one of p's intersections or extend one of p's roads.
func (b *Board) PlaceRoad(fromRow, fromCol, toRow, toCol int, p *Player, skipCost bool) (*Edge, error) {
	a, ok := LookupVertex(fromRow, fromCol)
	if !ok {
		return nil, ErrOutOfBounds
	}
	c, ok := LookupVertex(toRow, toCol)
	if !ok {
		return nil, ErrOutOfBounds
	}

	e, err := b.roadEligibility(a, c, p.ID)
	if err != nil {
		return nil, err
	}
	if !skipCost && !p.Hand.Spend(CostRoad) {
		return nil, ErrInsufficientResources
	}

	e.build(p.ID)
	p.Roads = append(p.Roads, e.ID)
	return e, nil
}

// SettlementSpots returns every intersection where a new settlement is legal.
// When connected is set, only spots touched by playerID's roads are returned.
func (b *Board) SettlementSpots(playerID string, connected bool) []*Vertex {
	var out []*Vertex
	for _, v := range b.vertices {
		if b.CanSettle(v) != nil {
			continue
		}
		if connected && !b.touchesRoad(v, playerID) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// CitySpots returns playerID's settlements that can become cities.
func (b *Board) CitySpots(playerID string) []*Vertex {
	var out []*Vertex
	for _, v := range b.vertices {
		if b.CanUpgrade(v, playerID) == nil {
			out = append(out, v)
		}
	}
	return out
}

// RoadSpots returns every connection where playerID may build a road.
func (b *Board) RoadSpots(playerID string) []*Edge {
	var out []*Edge
	for _, e := range b.edges {
		if b.CanBuildRoad(e, playerID) {
			out = append(out, e)
		}
	}
	return out
}

func (b *Board) touchesRoad(v *Vertex, playerID string) bool {
	for _, id := range v.Edges {
		if b.edges[id].RoadOwner == playerID {
			return true
		}
	}
	return false
}
