package game

// Yield is an amount of a resource owed to a player by one tile.
type Yield struct {
	PlayerID string       `json:"playerId"`
	Resource ResourceType `json:"resource"`
	Amount   int          `json:"amount"`
	TileID   TileID       `json:"tileId"`
}

// Produce returns the yields for a dice sum. Each tile numbered sum pays one
// resource per adjacent settlement and two per city.
func (b *Board) Produce(sum int) []Yield {
	var out []Yield
	for _, t := range b.tiles {
		if t.Produces(sum) {
			out = b.tileYields(t, out)
		}
	}
	return out
}

// StartingYields returns the yields of every producing tile regardless of
// its number, used once after the initial placements.
func (b *Board) StartingYields() []Yield {
	var out []Yield
	for _, t := range b.tiles {
		if t.Resource.IsProducing() {
			out = b.tileYields(t, out)
		}
	}
	return out
}

func (b *Board) tileYields(t *Tile, out []Yield) []Yield {
	for _, id := range t.Vertices {
		v := b.vertices[id]
		if !v.IsOwned() {
			continue
		}
		out = append(out, Yield{
			PlayerID: v.Owner,
			Resource: t.Resource,
			Amount:   v.Yield(),
			TileID:   t.ID,
		})
	}
	return out
}

// credit applies yields to the players' hands. Yields for unknown players are
// skipped.
func credit(players map[string]*Player, yields []Yield) {
	for _, y := range yields {
		if p := players[y.PlayerID]; p != nil {
			p.Hand.Add(y.Resource, y.Amount)
		}
	}
}

// DistributeForRoll credits every player for a dice sum and returns what was paid.
func (g *GameState) DistributeForRoll(sum int) []Yield {
	yields := g.Board.Produce(sum)
	credit(g.Players, yields)
	return yields
}

// DistributeStartingResources credits every player once for all tiles their
// initial buildings touch.
func (g *GameState) DistributeStartingResources() []Yield {
	yields := g.Board.StartingYields()
	credit(g.Players, yields)
	return yields
}
