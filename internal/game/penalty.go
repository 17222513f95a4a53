package game

// DiscardThreshold is the hand size at which a seven forces a discard.
const DiscardThreshold = 7

// DiscardQuota returns how many resources a player holding total must give
// up after a seven: half, rounded down, once the threshold is reached.
func DiscardQuota(total int) int {
	if total < DiscardThreshold {
		return 0
	}
	return total / 2
}

// Discard gives up resources toward the player's outstanding quota. A request
// may be partial; it is rejected whole if it exceeds the remaining quota or
// any held balance.
func (g *GameState) Discard(playerID string, h Hand) error {
	if g.Phase == PhaseGameOver {
		return ErrGameOver
	}
	if g.Phase != PhaseDiscard {
		return ErrInvalidAction
	}
	player := g.Players[playerID]
	if player == nil {
		return ErrInvalidTarget
	}
	if player.DiscardOwed == 0 {
		return ErrInvalidAction
	}
	if !h.IsValid() || h.Total() == 0 {
		return ErrInvalidTarget
	}
	if h.Total() > player.DiscardOwed {
		return ErrDiscardTooMany
	}
	if !player.Hand.Contains(h) {
		return ErrInsufficientResources
	}

	player.Hand.Subtract(h)
	player.DiscardOwed -= h.Total()

	if len(g.PendingDiscards()) == 0 {
		g.Phase = PhaseMain
	}
	return nil
}

// PendingDiscards returns the players still owing a discard.
func (g *GameState) PendingDiscards() map[string]int {
	out := make(map[string]int)
	for id, p := range g.Players {
		if p.DiscardOwed > 0 {
			out[id] = p.DiscardOwed
		}
	}
	return out
}
