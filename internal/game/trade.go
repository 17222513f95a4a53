package game

// TradeOffer represents a trade proposal between two players.
type TradeOffer struct {
	FromPlayerID string `json:"fromPlayerId"`
	ToPlayerID   string `json:"toPlayerId"`
	Offer        Hand   `json:"offer"`
	Request      Hand   `json:"request"`
}

// ValidateTrade checks if a trade offer is valid: both players exist and hold
// what they would give.
func (g *GameState) ValidateTrade(offer *TradeOffer) error {
	fromPlayer, err := g.mainPhaseActor(offer.FromPlayerID)
	if err != nil {
		return err
	}

	toPlayer := g.Players[offer.ToPlayerID]
	if toPlayer == nil {
		return ErrInvalidTarget
	}

	// Can't trade with yourself
	if offer.FromPlayerID == offer.ToPlayerID {
		return ErrInvalidTarget
	}

	if !offer.Offer.IsValid() || !offer.Request.IsValid() {
		return ErrInvalidTarget
	}
	if offer.Offer.Total() == 0 && offer.Request.Total() == 0 {
		return ErrInvalidTarget
	}

	if !fromPlayer.Hand.Contains(offer.Offer) || !toPlayer.Hand.Contains(offer.Request) {
		return ErrInsufficientResources
	}

	return nil
}

// ProposeTrade records an offer from the current player. A new offer replaces
// any pending one.
func (g *GameState) ProposeTrade(offer *TradeOffer) error {
	if err := g.ValidateTrade(offer); err != nil {
		return err
	}
	stored := *offer
	g.Trade = &stored
	return nil
}

// RespondTrade accepts or rejects the pending offer addressed to playerID.
// Returns true if resources changed hands.
func (g *GameState) RespondTrade(playerID string, accept bool) (bool, error) {
	if g.Trade == nil {
		return false, ErrNoTradeOffer
	}
	if g.Trade.ToPlayerID != playerID {
		return false, ErrInvalidTarget
	}

	offer := g.Trade
	g.Trade = nil
	if !accept {
		return false, nil
	}

	if err := g.ValidateTrade(offer); err != nil {
		return false, err
	}
	g.ExecuteTrade(offer)
	return true, nil
}

// ExecuteTrade swaps the offered and requested resources. Callers validate first.
func (g *GameState) ExecuteTrade(offer *TradeOffer) {
	fromPlayer := g.Players[offer.FromPlayerID]
	toPlayer := g.Players[offer.ToPlayerID]

	fromPlayer.Hand.Subtract(offer.Offer)
	toPlayer.Hand.Subtract(offer.Request)
	fromPlayer.Hand.AddHand(offer.Request)
	toPlayer.Hand.AddHand(offer.Offer)
}
