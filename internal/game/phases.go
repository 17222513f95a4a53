package game

// SetupKind is what the current setup step expects to be placed.
type SetupKind int

const (
	SetupSettlement SetupKind = iota
	SetupRoad
	SetupDone
)

// setupRounds is how many settlements (and then roads) each player places
// during setup.
const setupRounds = 2

// SetupExpects returns what the current setup step is waiting for.
func (g *GameState) SetupExpects() SetupKind {
	if g.Phase != PhaseSetup {
		return SetupDone
	}
	n := len(g.PlayerOrder)
	switch {
	case g.SetupStep < setupRounds*n:
		return SetupSettlement
	case g.SetupStep < 2*setupRounds*n:
		return SetupRoad
	}
	return SetupDone
}

func (g *GameState) setupActor(playerID string, want SetupKind) (*Player, error) {
	if g.Phase == PhaseGameOver {
		return nil, ErrGameOver
	}
	if g.Phase != PhaseSetup || g.SetupExpects() != want {
		return nil, ErrInvalidAction
	}
	if g.CurrentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	player := g.Players[playerID]
	if player == nil {
		return nil, ErrInvalidTarget
	}
	return player, nil
}

// PlaceInitialSettlement places a free settlement during setup.
func (g *GameState) PlaceInitialSettlement(playerID string, row, col int) (*Vertex, error) {
	player, err := g.setupActor(playerID, SetupSettlement)
	if err != nil {
		return nil, err
	}
	v, err := g.Board.PlaceSettlement(row, col, player, false, true)
	if err != nil {
		return nil, err
	}
	g.advanceSetup()
	return v, nil
}

// PlaceInitialRoad places a free road during setup.
func (g *GameState) PlaceInitialRoad(playerID string, fromRow, fromCol, toRow, toCol int) (*Edge, error) {
	player, err := g.setupActor(playerID, SetupRoad)
	if err != nil {
		return nil, err
	}
	e, err := g.Board.PlaceRoad(fromRow, fromCol, toRow, toCol, player, true)
	if err != nil {
		return nil, err
	}
	g.advanceSetup()
	return e, nil
}

// advanceSetup moves to the next setup step. After the last road the
// starting resources are handed out and the first turn begins.
func (g *GameState) advanceSetup() {
	g.SetupStep++
	n := len(g.PlayerOrder)
	if g.SetupStep >= 2*setupRounds*n {
		g.DistributeStartingResources()
		g.Phase = PhaseRoll
		g.Round = 1
		g.CurrentPlayerID = g.PlayerOrder[0]
		return
	}
	g.CurrentPlayerID = g.PlayerOrder[g.SetupStep%n]
}

// RollResult describes the outcome of a dice roll.
type RollResult struct {
	Dice     [2]int         `json:"dice"`
	Sum      int            `json:"sum"`
	Yields   []Yield        `json:"yields,omitempty"`
	Discards map[string]int `json:"discards,omitempty"` // Player ID -> amount owed
}

// RollDice rolls two dice for the current player.
func (g *GameState) RollDice(playerID string) (*RollResult, error) {
	rng := g.random()
	return g.ApplyRoll(playerID, rng.Intn(6)+1, rng.Intn(6)+1)
}

// ApplyRoll resolves a roll of the given dice. A seven puts every player
// holding too many resources under a discard obligation; any other sum
// distributes resources.
func (g *GameState) ApplyRoll(playerID string, d1, d2 int) (*RollResult, error) {
	if g.Phase == PhaseGameOver {
		return nil, ErrGameOver
	}
	if g.Phase != PhaseRoll {
		return nil, ErrInvalidAction
	}
	if g.CurrentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return nil, ErrInvalidTarget
	}

	result := &RollResult{Dice: [2]int{d1, d2}, Sum: d1 + d2}
	g.LastRoll = result.Dice
	g.Phase = PhaseMain

	if result.Sum != 7 {
		result.Yields = g.DistributeForRoll(result.Sum)
		return result, nil
	}

	for _, id := range g.PlayerOrder {
		p := g.Players[id]
		if owed := DiscardQuota(p.Hand.Total()); owed > 0 {
			p.DiscardOwed = owed
			if result.Discards == nil {
				result.Discards = make(map[string]int)
			}
			result.Discards[id] = owed
		}
	}
	if len(result.Discards) > 0 {
		g.Phase = PhaseDiscard
	}
	return result, nil
}

// EndTurn passes play to the next player.
func (g *GameState) EndTurn(playerID string) error {
	player, err := g.mainPhaseActor(playerID)
	if err != nil {
		return err
	}
	player.FreeRoads = 0
	g.Trade = nil

	idx := 0
	for i, id := range g.PlayerOrder {
		if id == playerID {
			idx = i
			break
		}
	}
	next := (idx + 1) % len(g.PlayerOrder)
	if next == 0 {
		g.Round++
	}
	g.CurrentPlayerID = g.PlayerOrder[next]
	g.Phase = PhaseRoll
	return nil
}

// mainPhaseActor validates that playerID may act in the main phase.
func (g *GameState) mainPhaseActor(playerID string) (*Player, error) {
	switch g.Phase {
	case PhaseMain:
	case PhaseGameOver:
		return nil, ErrGameOver
	case PhaseDiscard:
		return nil, ErrDiscardPending
	default:
		return nil, ErrInvalidAction
	}
	if g.CurrentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	player := g.Players[playerID]
	if player == nil {
		return nil, ErrInvalidTarget
	}
	return player, nil
}
