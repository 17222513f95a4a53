package game

// PlayerColor represents a player's color.
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorBlue   PlayerColor = "blue"
	ColorOrange PlayerColor = "orange"
	ColorWhite  PlayerColor = "white"
)

// AllColors returns all available player colors.
func AllColors() []PlayerColor {
	return []PlayerColor{
		ColorRed,
		ColorBlue,
		ColorOrange,
		ColorWhite,
	}
}

// Player represents a player in the game.
type Player struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Color       PlayerColor `json:"color"`
	IsAI        bool        `json:"isAI"`
	AIStrategy  string      `json:"aiStrategy,omitempty"`
	Hand        *Hand       `json:"hand"`
	Points      int         `json:"points"`
	Roads       []EdgeID    `json:"roads"`
	Buildings   []VertexID  `json:"buildings"`
	Cards       []CardKind  `json:"cards"`
	FreeRoads   int         `json:"freeRoads,omitempty"`   // Granted by road building
	DiscardOwed int         `json:"discardOwed,omitempty"` // Remaining seven-penalty discard
	IsOnline    bool        `json:"isOnline"`
}

// NewPlayer creates a new player.
func NewPlayer(id, name string, color PlayerColor) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Color:     color,
		Hand:      NewHand(),
		Roads:     []EdgeID{},
		Buildings: []VertexID{},
		Cards:     []CardKind{},
		IsOnline:  true,
	}
}

// NewAIPlayer creates a new AI player using the named bot strategy.
func NewAIPlayer(id, name string, color PlayerColor, strategy string) *Player {
	p := NewPlayer(id, name, color)
	p.IsAI = true
	p.AIStrategy = strategy
	return p
}

// CountCards returns how many cards of a kind the player holds.
func (p *Player) CountCards(kind CardKind) int {
	n := 0
	for _, c := range p.Cards {
		if c == kind {
			n++
		}
	}
	return n
}

// HasCard returns whether the player holds at least one card of a kind.
func (p *Player) HasCard(kind CardKind) bool {
	return p.CountCards(kind) > 0
}

// AddCard gives the player a card and its points. Holding the third knight
// also grants the largest army bonus.
func (p *Player) AddCard(kind CardKind) {
	p.Cards = append(p.Cards, kind)
	p.Points += kind.Points()

	if kind == CardKnight && p.CountCards(CardKnight) >= LargestArmyKnights && !p.HasCard(CardLargestArmy) {
		p.Cards = append(p.Cards, CardLargestArmy)
		p.Points += CardLargestArmy.Points()
	}
}

// RemoveCard takes one card of a kind from the player along with its points.
// Losing a knight below the threshold also loses the largest army bonus.
func (p *Player) RemoveCard(kind CardKind) bool {
	if !p.removeOne(kind) {
		return false
	}
	p.Points -= kind.Points()

	if kind == CardKnight && p.CountCards(CardKnight) < LargestArmyKnights && p.removeOne(CardLargestArmy) {
		p.Points -= CardLargestArmy.Points()
	}
	return true
}

func (p *Player) removeOne(kind CardKind) bool {
	for i, c := range p.Cards {
		if c == kind {
			p.Cards = append(p.Cards[:i], p.Cards[i+1:]...)
			return true
		}
	}
	return false
}
