package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"settlers/internal/game"
	"settlers/internal/protocol"
)

// Client plays a game on a remote server over a websocket.
type Client struct {
	Name     string
	Token    string // Reused when reconnecting as the same player
	Engine   *Engine
	PlayerID string

	conn    *websocket.Conn
	last    *game.GameState
	pending bool // A move was sent and its result has not arrived
}

// Dial connects to the server's websocket endpoint.
func Dial(ctx context.Context, url, name string, engine *Engine) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(1 << 20)
	return &Client{Name: name, Engine: engine, conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// Run authenticates, joins the game with joinCode and plays until it ends
// or ctx is cancelled.
func (c *Client) Run(ctx context.Context, joinCode string) error {
	if err := c.send(ctx, protocol.TypeAuthenticate, protocol.AuthenticatePayload{Token: c.Token, Name: c.Name}); err != nil {
		return err
	}

	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("bad message from server", "error", err)
			continue
		}

		done, err := c.handle(ctx, &msg, joinCode)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *Client) handle(ctx context.Context, msg *protocol.Message, joinCode string) (bool, error) {
	switch msg.Type {
	case protocol.TypeAuthResult:
		var p protocol.AuthResultPayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		if !p.Success {
			return false, fmt.Errorf("authentication failed: %s", p.Error)
		}
		c.PlayerID, c.Token = p.PlayerID, p.Token
		slog.Info("authenticated", "player", c.PlayerID, "name", p.Name)
		return false, c.send(ctx, protocol.TypeJoinByCode, protocol.JoinByCodePayload{JoinCode: joinCode})

	case protocol.TypeJoinedGame:
		var p protocol.JoinedGamePayload
		if err := msg.ParsePayload(&p); err != nil {
			return false, err
		}
		slog.Info("joined game", "game", p.GameID, "color", p.Color)

	case protocol.TypeGameState:
		state, err := DecodeState(msg)
		if err != nil {
			return false, err
		}
		return false, c.act(ctx, state)

	case protocol.TypeActionResult:
		c.pending = false
		var p protocol.ActionResultPayload
		if err := msg.ParsePayload(&p); err != nil || p.Success {
			break
		}
		slog.Warn("move rejected", "action", p.Action, "code", p.Code, "error", p.Error)
		// The state is unchanged, so the same move would be chosen again.
		env := RuleEnv{State: c.last, PlayerID: c.PlayerID}
		if p.Action != protocol.TypeEndTurn && env.InPhase("main") && env.MyTurn() {
			c.pending = true
			return false, c.send(ctx, protocol.TypeEndTurn, struct{}{})
		}

	case protocol.TypeGameEnded:
		var p protocol.GameEndedPayload
		_ = msg.ParsePayload(&p)
		slog.Info("game over", "winner", p.WinnerName, "points", p.Points)
		return true, nil

	case protocol.TypeError:
		var p protocol.ErrorPayload
		_ = msg.ParsePayload(&p)
		if p.Code == protocol.ErrCodeGameNotFound {
			return false, errors.New(p.Message)
		}
		slog.Warn("server error", "code", p.Code, "message", p.Message)
	}
	return false, nil
}

func (c *Client) act(ctx context.Context, state *game.GameState) error {
	c.last = state
	if c.pending {
		return nil
	}
	move := c.Engine.Decide(state, c.PlayerID)
	if move == nil {
		return nil
	}
	slog.Debug("playing", "move", move.String(), "rule", move.Rule)
	c.pending = true
	return c.send(ctx, move.Action, move.Payload())
}

func (c *Client) send(ctx context.Context, msgType protocol.MessageType, payload interface{}) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// DecodeState extracts the game state from a game_state message.
func DecodeState(msg *protocol.Message) (*game.GameState, error) {
	var p struct {
		State json.RawMessage `json:"state"`
	}
	if err := msg.ParsePayload(&p); err != nil {
		return nil, err
	}
	var state game.GameState
	if err := json.Unmarshal(p.State, &state); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	return &state, nil
}
