package game

import (
	"fmt"
	"math/rand"
)

// CardKind is a development card variant.
type CardKind int

const (
	CardKnight CardKind = iota
	CardVictoryPoint
	CardRoadBuilding
	CardMonopoly
	CardYearOfPlenty
	CardLargestArmy // Bonus card, never drawn from the deck
)

// LargestArmyKnights is the number of knights that earns the largest army bonus.
const LargestArmyKnights = 3

// String returns the card name.
func (k CardKind) String() string {
	switch k {
	case CardKnight:
		return "knight"
	case CardVictoryPoint:
		return "victory_point"
	case CardRoadBuilding:
		return "road_building"
	case CardMonopoly:
		return "monopoly"
	case CardYearOfPlenty:
		return "year_of_plenty"
	case CardLargestArmy:
		return "largest_army"
	default:
		return "unknown"
	}
}

// Points returns the victory points the card is worth while held.
func (k CardKind) Points() int {
	switch k {
	case CardVictoryPoint:
		return 1
	case CardLargestArmy:
		return 2
	default:
		return 0
	}
}

// Playable reports whether the card has an effect when played.
func (k CardKind) Playable() bool {
	return k == CardRoadBuilding || k == CardMonopoly || k == CardYearOfPlenty
}

// ParseCardKind converts a card name to its kind.
func ParseCardKind(s string) (CardKind, error) {
	for k := CardKnight; k <= CardLargestArmy; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown card %q", s)
}

// MarshalText encodes the card as its name.
func (k CardKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a card name.
func (k *CardKind) UnmarshalText(b []byte) error {
	parsed, err := ParseCardKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// deckComposition is how many of each card the deck starts with.
var deckComposition = []struct {
	kind  CardKind
	count int
}{
	{CardKnight, 3},
	{CardVictoryPoint, 4},
	{CardYearOfPlenty, 3},
	{CardRoadBuilding, 3},
	{CardMonopoly, 3},
}

// NewDeck returns a shuffled development deck.
func NewDeck(rng *rand.Rand) []CardKind {
	var deck []CardKind
	for _, c := range deckComposition {
		for i := 0; i < c.count; i++ {
			deck = append(deck, c.kind)
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// BuyCard purchases the top card of the deck during the main phase.
func (g *GameState) BuyCard(playerID string) (CardKind, error) {
	player, err := g.mainPhaseActor(playerID)
	if err != nil {
		return 0, err
	}
	if len(g.Deck) == 0 {
		return 0, ErrDeckEmpty
	}
	if !player.Hand.Spend(CostDevelopmentCard) {
		return 0, ErrInsufficientResources
	}

	card := g.Deck[0]
	g.Deck = g.Deck[1:]
	player.AddCard(card)
	g.checkVictory(player)
	return card, nil
}

// CardPlay describes a development card being played.
type CardPlay struct {
	Card      CardKind     `json:"card"`
	Resource  ResourceType `json:"resource,omitempty"`  // Monopoly, first Year of Plenty pick
	Resource2 ResourceType `json:"resource2,omitempty"` // Second Year of Plenty pick
}

// PlayCard plays a development card from the player's hand. The card is
// removed and its effect applied; Monopoly returns the units taken.
func (g *GameState) PlayCard(playerID string, play CardPlay) (int, error) {
	player, err := g.mainPhaseActor(playerID)
	if err != nil {
		return 0, err
	}
	if !play.Card.Playable() {
		return 0, ErrInvalidAction
	}
	if !player.HasCard(play.Card) {
		return 0, ErrNoSuchCard
	}

	switch play.Card {
	case CardMonopoly, CardYearOfPlenty:
		if !play.Resource.IsProducing() {
			return 0, ErrInvalidTarget
		}
		if play.Card == CardYearOfPlenty && !play.Resource2.IsProducing() {
			return 0, ErrInvalidTarget
		}
	}

	player.RemoveCard(play.Card)

	taken := 0
	switch play.Card {
	case CardRoadBuilding:
		player.FreeRoads += 2
	case CardMonopoly:
		for _, id := range g.PlayerOrder {
			other := g.Players[id]
			if id == playerID || other == nil {
				continue
			}
			if other.Hand.Remove(play.Resource, 1) {
				player.Hand.Add(play.Resource, 1)
				taken++
			}
		}
	case CardYearOfPlenty:
		player.Hand.Add(play.Resource, 1)
		player.Hand.Add(play.Resource2, 1)
	}
	return taken, nil
}
