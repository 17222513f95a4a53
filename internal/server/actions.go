package server

import (
	"errors"
	"fmt"
	"strings"

	"settlers/internal/database"
	"settlers/internal/game"
	"settlers/internal/protocol"
)

// errNotAuthenticated is returned for lobby and game messages sent before
// authenticate.
var errNotAuthenticated = errors.New("not authenticated")

// errNotInGame is returned for game messages from a client with no seat.
var errNotInGame = errors.New("not in a game")

// outcome is what an accepted action produced: the result sent back to the
// actor and the lines added to the game history.
type outcome struct {
	Result interface{}
	Notes  []note
}

type note struct {
	Event   string
	Message string
}

func (o *outcome) add(event, format string, args ...interface{}) {
	o.Notes = append(o.Notes, note{Event: event, Message: fmt.Sprintf(format, args...)})
}

// applyAction decodes a game action and applies it to g for playerID. The
// state is only changed when the returned error is nil.
func applyAction(g *game.GameState, playerID string, msg *protocol.Message) (*outcome, error) {
	out := &outcome{}

	switch msg.Type {
	case protocol.TypePlaceSettlement, protocol.TypeBuildSettlement, protocol.TypeBuildCity:
		var p protocol.PlaceSettlementPayload
		if err := msg.ParsePayload(&p); err != nil {
			return nil, invalidPayload(err)
		}
		var v *game.Vertex
		var err error
		switch msg.Type {
		case protocol.TypePlaceSettlement:
			v, err = g.PlaceInitialSettlement(playerID, p.At.Row, p.At.Col)
		case protocol.TypeBuildSettlement:
			v, err = g.BuildSettlement(playerID, p.At.Row, p.At.Col)
		default:
			v, err = g.BuildCity(playerID, p.At.Row, p.At.Col)
		}
		if err != nil {
			return nil, err
		}
		if msg.Type == protocol.TypeBuildCity {
			out.add(database.EventCity, "built a city at (%d,%d)", p.At.Row, p.At.Col)
		} else {
			out.add(database.EventSettlement, "built a settlement at (%d,%d)", p.At.Row, p.At.Col)
		}
		out.Result = v

	case protocol.TypePlaceRoad, protocol.TypeBuildRoad:
		var p protocol.PlaceRoadPayload
		if err := msg.ParsePayload(&p); err != nil {
			return nil, invalidPayload(err)
		}
		var e *game.Edge
		var err error
		if msg.Type == protocol.TypePlaceRoad {
			e, err = g.PlaceInitialRoad(playerID, p.From.Row, p.From.Col, p.To.Row, p.To.Col)
		} else {
			e, err = g.BuildRoad(playerID, p.From.Row, p.From.Col, p.To.Row, p.To.Col)
		}
		if err != nil {
			return nil, err
		}
		out.add(database.EventRoad, "built a road (%d,%d)-(%d,%d)", p.From.Row, p.From.Col, p.To.Row, p.To.Col)
		if g.Phase == game.PhaseRoll && g.Round == 1 && msg.Type == protocol.TypePlaceRoad {
			out.add(database.EventProduction, "setup finished, starting resources handed out")
		}
		out.Result = e

	case protocol.TypeRollDice:
		res, err := g.RollDice(playerID)
		if err != nil {
			return nil, err
		}
		out.add(database.EventRoll, "rolled %d (%d+%d)", res.Sum, res.Dice[0], res.Dice[1])
		for _, id := range g.PlayerOrder {
			if gains := yieldsFor(res.Yields, id); gains.Total() > 0 {
				out.add(database.EventProduction, "%s received %s", playerName(g, id), describeHand(gains))
			}
		}
		for _, id := range g.PlayerOrder {
			if owed := res.Discards[id]; owed > 0 {
				out.add(database.EventDiscard, "%s must discard %d", playerName(g, id), owed)
			}
		}
		out.Result = res

	case protocol.TypeDiscard:
		var p protocol.DiscardPayload
		if err := msg.ParsePayload(&p); err != nil {
			return nil, invalidPayload(err)
		}
		h := game.Hand(p.Resources)
		if err := g.Discard(playerID, h); err != nil {
			return nil, err
		}
		out.add(database.EventDiscard, "discarded %s", describeHand(&h))

	case protocol.TypeBuyCard:
		card, err := g.BuyCard(playerID)
		if err != nil {
			return nil, err
		}
		out.add(database.EventCardBought, "bought a development card")
		out.Result = struct {
			Card game.CardKind `json:"card"`
		}{card}

	case protocol.TypePlayCard:
		var p protocol.PlayCardPayload
		if err := msg.ParsePayload(&p); err != nil {
			return nil, invalidPayload(err)
		}
		play, err := cardPlay(p)
		if err != nil {
			return nil, err
		}
		taken, err := g.PlayCard(playerID, play)
		if err != nil {
			return nil, err
		}
		out.add(database.EventCardPlayed, "played %s", describePlay(play, taken))
		out.Result = struct {
			Card  game.CardKind `json:"card"`
			Taken int           `json:"taken,omitempty"`
		}{play.Card, taken}

	case protocol.TypeProposeTrade:
		var p protocol.ProposeTradePayload
		if err := msg.ParsePayload(&p); err != nil {
			return nil, invalidPayload(err)
		}
		offer := &game.TradeOffer{
			FromPlayerID: playerID,
			ToPlayerID:   p.TargetPlayer,
			Offer:        game.Hand(p.Offer),
			Request:      game.Hand(p.Request),
		}
		if err := g.ProposeTrade(offer); err != nil {
			return nil, err
		}
		out.add(database.EventTrade, "offered %s to %s for %s",
			describeHand(&offer.Offer), playerName(g, offer.ToPlayerID), describeHand(&offer.Request))

	case protocol.TypeRespondTrade:
		var p protocol.RespondTradePayload
		if err := msg.ParsePayload(&p); err != nil {
			return nil, invalidPayload(err)
		}
		from := ""
		if g.Trade != nil {
			from = g.Trade.FromPlayerID
		}
		accepted, err := g.RespondTrade(playerID, p.Accept)
		if err != nil {
			return nil, err
		}
		if accepted {
			out.add(database.EventTrade, "accepted the trade from %s", playerName(g, from))
		} else {
			out.add(database.EventTrade, "declined the trade from %s", playerName(g, from))
		}
		out.Result = struct {
			Accepted bool `json:"accepted"`
		}{accepted}

	case protocol.TypeEndTurn:
		if err := g.EndTurn(playerID); err != nil {
			return nil, err
		}
		out.add(database.EventTurnEnd, "ended the turn")

	default:
		return nil, fmt.Errorf("%w: unknown message type %q", game.ErrInvalidAction, msg.Type)
	}

	if winner := g.GetWinner(); winner != nil {
		out.add(database.EventGameEnd, "%s wins with %d points", winner.Name, winner.Points)
	}
	return out, nil
}

func invalidPayload(err error) error {
	return fmt.Errorf("%w: bad payload: %v", game.ErrInvalidTarget, err)
}

// cardPlay converts wire names into a card play. Resource names are only
// required by the cards that read them.
func cardPlay(p protocol.PlayCardPayload) (game.CardPlay, error) {
	kind, err := game.ParseCardKind(p.Card)
	if err != nil {
		return game.CardPlay{}, fmt.Errorf("%w: %v", game.ErrInvalidTarget, err)
	}
	play := game.CardPlay{Card: kind}
	if p.Resource != "" {
		r, ok := game.ParseResource(p.Resource)
		if !ok {
			return game.CardPlay{}, fmt.Errorf("%w: unknown resource %q", game.ErrInvalidTarget, p.Resource)
		}
		play.Resource = r
	}
	if p.Resource2 != "" {
		r, ok := game.ParseResource(p.Resource2)
		if !ok {
			return game.CardPlay{}, fmt.Errorf("%w: unknown resource %q", game.ErrInvalidTarget, p.Resource2)
		}
		play.Resource2 = r
	}
	return play, nil
}

func describePlay(play game.CardPlay, taken int) string {
	switch play.Card {
	case game.CardMonopoly:
		return fmt.Sprintf("%s on %s, taking %d", play.Card, play.Resource, taken)
	case game.CardYearOfPlenty:
		return fmt.Sprintf("%s for %s and %s", play.Card, play.Resource, play.Resource2)
	}
	return play.Card.String()
}

func yieldsFor(yields []game.Yield, playerID string) *game.Hand {
	h := game.NewHand()
	for _, y := range yields {
		if y.PlayerID == playerID {
			h.Add(y.Resource, y.Amount)
		}
	}
	return h
}

// describeHand formats non-zero counts as "2 Tree, 1 Iron".
func describeHand(h *game.Hand) string {
	var parts []string
	for _, r := range game.AllResources() {
		if n := h.Get(r); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, r))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}

func playerName(g *game.GameState, playerID string) string {
	if p := g.Players[playerID]; p != nil {
		return p.Name
	}
	return playerID
}

// errorCode maps an error to the code sent to clients.
func errorCode(err error) protocol.ErrorCode {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return protocol.ErrCodeNotYourTurn
	case errors.Is(err, game.ErrInsufficientResources):
		return protocol.ErrCodeInsufficientResources
	case errors.Is(err, game.ErrOutOfBounds):
		return protocol.ErrCodeOutOfBounds
	case errors.Is(err, game.ErrIllegalPlacement):
		return protocol.ErrCodeIllegalPlacement
	case errors.Is(err, game.ErrDiscardPending):
		return protocol.ErrCodeDiscardPending
	case errors.Is(err, game.ErrGameOver):
		return protocol.ErrCodeGameOver
	case errors.Is(err, game.ErrInvalidTarget),
		errors.Is(err, game.ErrNoSuchCard),
		errors.Is(err, game.ErrDiscardTooMany):
		return protocol.ErrCodeInvalidTarget
	case errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrDeckEmpty),
		errors.Is(err, game.ErrNoTradeOffer),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrTooFewPlayers),
		errors.Is(err, game.ErrTooManyPlayers),
		errors.Is(err, database.ErrAlreadyInGame),
		errors.Is(err, database.ErrGameStarted),
		errors.Is(err, database.ErrNotInGame),
		errors.Is(err, errNotInGame):
		return protocol.ErrCodeInvalidAction
	case errors.Is(err, database.ErrGameNotFound), errors.Is(err, database.ErrJoinCodeNotFound):
		return protocol.ErrCodeGameNotFound
	case errors.Is(err, database.ErrGameFull):
		return protocol.ErrCodeLobbyFull
	case errors.Is(err, errNotAuthenticated):
		return protocol.ErrCodeNotAuthenticated
	}
	return protocol.ErrCodeInternalError
}
