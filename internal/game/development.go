package game

// BuildType represents something that can be built during a turn.
type BuildType int

const (
	BuildRoad BuildType = iota
	BuildSettlement
	BuildCity
	BuildCard
)

// String returns the build type name.
func (b BuildType) String() string {
	switch b {
	case BuildRoad:
		return "road"
	case BuildSettlement:
		return "settlement"
	case BuildCity:
		return "city"
	case BuildCard:
		return "card"
	default:
		return "unknown"
	}
}

// GetBuildCost returns the resource cost for a build type.
func GetBuildCost(buildType BuildType) BuildCost {
	switch buildType {
	case BuildRoad:
		return CostRoad
	case BuildSettlement:
		return CostSettlement
	case BuildCity:
		return CostCity
	case BuildCard:
		return CostDevelopmentCard
	}
	return BuildCost{}
}

// BuildSettlement pays for and places a settlement during the main phase.
func (g *GameState) BuildSettlement(playerID string, row, col int) (*Vertex, error) {
	player, err := g.mainPhaseActor(playerID)
	if err != nil {
		return nil, err
	}
	v, err := g.Board.PlaceSettlement(row, col, player, false, false)
	if err != nil {
		return nil, err
	}
	g.checkVictory(player)
	return v, nil
}

// BuildCity pays for and upgrades one of the player's settlements.
func (g *GameState) BuildCity(playerID string, row, col int) (*Vertex, error) {
	player, err := g.mainPhaseActor(playerID)
	if err != nil {
		return nil, err
	}
	v, err := g.Board.PlaceSettlement(row, col, player, true, false)
	if err != nil {
		return nil, err
	}
	g.checkVictory(player)
	return v, nil
}

// BuildRoad builds a road during the main phase. Free roads granted by a
// road building card are used before resources.
func (g *GameState) BuildRoad(playerID string, fromRow, fromCol, toRow, toCol int) (*Edge, error) {
	player, err := g.mainPhaseActor(playerID)
	if err != nil {
		return nil, err
	}
	free := player.FreeRoads > 0
	e, err := g.Board.PlaceRoad(fromRow, fromCol, toRow, toCol, player, free)
	if err != nil {
		return nil, err
	}
	if free {
		player.FreeRoads--
	}
	return e, nil
}

// BuildOption is a build the player can currently afford and place.
type BuildOption struct {
	Type  BuildType `json:"type"`
	Spots int       `json:"spots"`
}

// GetBuildOptions returns what the current player can build right now.
func (g *GameState) GetBuildOptions(playerID string) []BuildOption {
	player, err := g.mainPhaseActor(playerID)
	if err != nil {
		return nil
	}

	var options []BuildOption
	if spots := len(g.LegalRoadSpots(playerID)); spots > 0 && (player.FreeRoads > 0 || player.Hand.CanAfford(CostRoad)) {
		options = append(options, BuildOption{Type: BuildRoad, Spots: spots})
	}
	if spots := len(g.LegalSettlementSpots(playerID)); spots > 0 && player.Hand.CanAfford(CostSettlement) {
		options = append(options, BuildOption{Type: BuildSettlement, Spots: spots})
	}
	if spots := len(g.LegalCitySpots(playerID)); spots > 0 && player.Hand.CanAfford(CostCity) {
		options = append(options, BuildOption{Type: BuildCity, Spots: spots})
	}
	if len(g.Deck) > 0 && player.Hand.CanAfford(CostDevelopmentCard) {
		options = append(options, BuildOption{Type: BuildCard, Spots: len(g.Deck)})
	}
	return options
}

// LegalSettlementSpots returns where playerID may place a settlement now.
func (g *GameState) LegalSettlementSpots(playerID string) []*Vertex {
	return g.Board.SettlementSpots(playerID, false)
}

// ConnectedSettlementSpots returns the legal settlement spots reached by
// playerID's roads.
func (g *GameState) ConnectedSettlementSpots(playerID string) []*Vertex {
	return g.Board.SettlementSpots(playerID, true)
}

// LegalCitySpots returns the player's settlements that can be upgraded.
func (g *GameState) LegalCitySpots(playerID string) []*Vertex {
	return g.Board.CitySpots(playerID)
}

// LegalRoadSpots returns where playerID may place a road now.
func (g *GameState) LegalRoadSpots(playerID string) []*Edge {
	return g.Board.RoadSpots(playerID)
}
