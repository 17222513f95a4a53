package bot

import (
	"fmt"
	"strings"

	"settlers/internal/game"
	"settlers/internal/protocol"
)

// Move is a single action chosen by the engine.
type Move struct {
	Action  protocol.MessageType
	At      game.Coord    // Settlements and cities
	From    game.Coord    // Roads
	To      game.Coord    // Roads
	Discard game.Hand     // Discards
	Card    game.CardPlay // Card plays
	Accept  bool          // Trade responses
	Rule    string        // Name of the rule that chose the move
}

func (m *Move) String() string {
	switch m.Action {
	case protocol.TypePlaceSettlement, protocol.TypeBuildSettlement, protocol.TypeBuildCity:
		return fmt.Sprintf("%s (%d,%d)", m.Action, m.At.Row, m.At.Col)
	case protocol.TypePlaceRoad, protocol.TypeBuildRoad:
		return fmt.Sprintf("%s (%d,%d)-(%d,%d)", m.Action, m.From.Row, m.From.Col, m.To.Row, m.To.Col)
	case protocol.TypePlayCard:
		return fmt.Sprintf("%s %s", m.Action, m.Card.Card)
	}
	return string(m.Action)
}

// Payload returns the protocol payload for the move.
func (m *Move) Payload() interface{} {
	switch m.Action {
	case protocol.TypePlaceSettlement, protocol.TypeBuildSettlement, protocol.TypeBuildCity:
		return protocol.PlaceSettlementPayload{At: point(m.At)}
	case protocol.TypePlaceRoad, protocol.TypeBuildRoad:
		return protocol.PlaceRoadPayload{From: point(m.From), To: point(m.To)}
	case protocol.TypeDiscard:
		return protocol.DiscardPayload{Resources: ResourceCount(m.Discard)}
	case protocol.TypePlayCard:
		p := protocol.PlayCardPayload{Card: m.Card.Card.String()}
		if m.Card.Resource.IsProducing() {
			p.Resource = strings.ToLower(m.Card.Resource.String())
		}
		if m.Card.Resource2.IsProducing() {
			p.Resource2 = strings.ToLower(m.Card.Resource2.String())
		}
		return p
	case protocol.TypeRespondTrade:
		return protocol.RespondTradePayload{Accept: m.Accept}
	}
	return struct{}{}
}

// Message wraps the move in a protocol envelope.
func (m *Move) Message() (*protocol.Message, error) {
	return protocol.NewMessage(m.Action, m.Payload())
}

func point(c game.Coord) protocol.Point {
	return protocol.Point{Row: c.Row, Col: c.Col}
}

// ResourceCount converts a hand to its wire form.
func ResourceCount(h game.Hand) protocol.ResourceCount {
	return protocol.ResourceCount{Tree: h.Tree, Clay: h.Clay, Wool: h.Wool, Crop: h.Crop, Iron: h.Iron}
}
