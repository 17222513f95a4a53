package server

import (
	"log/slog"
	"time"
)

// maxAISteps bounds one burst of computer moves so a rule set that never
// ends its turn cannot spin forever.
const maxAISteps = 2000

// runAI plays computer seats until none of them has a move. At most one
// loop runs per room; a trigger that arrives while it runs is picked up by
// the re-check after the busy flag is cleared.
func (h *Handlers) runAI(r *room) {
	for {
		if !r.aiBusy.CompareAndSwap(false, true) {
			return
		}
		steps := 0
		var err error
		for steps < maxAISteps {
			var moved bool
			if moved, err = h.aiStep(r); !moved || err != nil {
				break
			}
			steps++
			if d := h.hub.server.cfg.Server.AIDelay; d > 0 {
				time.Sleep(d)
			}
		}
		if steps >= maxAISteps {
			slog.Warn("computer players stalled", "game", r.id, "steps", steps)
		}
		r.aiBusy.Store(false)

		if err != nil || steps >= maxAISteps {
			return
		}
		select {
		case <-h.hub.done:
			return
		default:
		}
		r.mu.Lock()
		_, pending := r.nextAIMove()
		r.mu.Unlock()
		if pending == nil {
			return
		}
	}
}

// aiStep applies one computer move. It reports false when no computer seat
// has anything to do or the server is stopping.
func (h *Handlers) aiStep(r *room) (bool, error) {
	select {
	case <-h.hub.done:
		return false, nil
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	playerID, move := r.nextAIMove()
	if move == nil {
		return false, nil
	}

	msg, err := move.Message()
	if err != nil {
		slog.Error("encode computer move", "game", r.id, "player", playerID, "error", err)
		return false, err
	}

	slog.Debug("computer move", "game", r.id, "player", playerID, "move", move.String(), "rule", move.Rule)
	if err := h.performLocked(r, playerID, msg, nil); err != nil {
		slog.Warn("computer move rejected", "game", r.id, "player", playerID,
			"move", move.String(), "rule", move.Rule, "error", err)
		return false, err
	}
	return true, nil
}
