package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"settlers/internal/bot"
	"settlers/internal/database"
	"settlers/internal/eventlog"
	"settlers/internal/game"
	"settlers/internal/protocol"
)

// Handlers processes incoming messages.
type Handlers struct {
	hub *Hub
}

// NewHandlers creates a new handler set.
func NewHandlers(hub *Hub) *Handlers {
	return &Handlers{hub: hub}
}

func (h *Handlers) db() *database.DB { return h.hub.server.db }

// Handle routes a message to the appropriate handler.
func (h *Handlers) Handle(client *Client, msg *protocol.Message) {
	if msg.Type.IsGameAction() {
		h.handleGameAction(client, msg)
		return
	}

	var err error
	switch msg.Type {
	case protocol.TypeAuthenticate:
		err = h.handleAuthenticate(client, msg)
	case protocol.TypeCreateGame:
		err = h.handleCreateGame(client, msg)
	case protocol.TypeJoinGame:
		err = h.handleJoinGame(client, msg)
	case protocol.TypeJoinByCode:
		err = h.handleJoinByCode(client, msg)
	case protocol.TypeLeaveGame:
		err = h.handleLeaveGame(client, msg)
	case protocol.TypeAddAI:
		err = h.handleAddAI(client, msg)
	case protocol.TypeStartGame:
		err = h.handleStartGame(client, msg)
	case protocol.TypeListGames:
		err = h.handleListGames(client, msg)
	case protocol.TypeGetState:
		err = h.handleGetState(client, msg)
	case protocol.TypeGetHistory:
		err = h.handleGetHistory(client, msg)
	case protocol.TypePing:
		reply, _ := protocol.NewMessage(protocol.TypePong, struct{}{})
		reply.ID = msg.ID
		client.Send(reply)
	default:
		err = fmt.Errorf("%w: unknown message type %q", game.ErrInvalidAction, msg.Type)
	}

	if err != nil {
		slog.Debug("request failed", "type", msg.Type, "player", client.PlayerID(), "error", err)
		sendError(client, msg.ID, errorCode(err), err.Error())
	}
}

// handleAuthenticate handles player authentication/registration.
func (h *Handlers) handleAuthenticate(client *Client, msg *protocol.Message) error {
	var payload protocol.AuthenticatePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return invalidPayload(err)
	}

	db := h.db()
	var player *database.Player
	var err error

	if payload.Token != "" {
		player, err = db.GetPlayerByToken(payload.Token)
		if err != nil && !errors.Is(err, database.ErrPlayerNotFound) {
			return err
		}
	}

	if player == nil {
		name := payload.Name
		if name == "" {
			name = "Player"
		}
		player, err = db.CreatePlayer(name)
		if err != nil {
			return err
		}
		slog.Info("created player", "player", player.ID, "name", player.Name)
	} else {
		if payload.Name != "" && payload.Name != player.Name {
			if err := db.UpdatePlayerName(player.ID, payload.Name); err != nil {
				return err
			}
			player.Name = payload.Name
		}
		db.UpdatePlayerLastSeen(player.ID)
		slog.Info("player reconnected", "player", player.ID, "name", player.Name)
	}

	h.hub.SetClientPlayer(client, player.ID, player.Name)

	reply, _ := protocol.NewMessage(protocol.TypeAuthResult, protocol.AuthResultPayload{
		Success:  true,
		PlayerID: player.ID,
		Token:    player.Token,
		Name:     player.Name,
	})
	reply.ID = msg.ID
	client.Send(reply)

	games, err := db.GetPlayerGames(player.ID)
	if err == nil && len(games) > 0 {
		list, _ := protocol.NewMessage(protocol.TypeGameList, protocol.GameListPayload{Games: gameListItems(games)})
		client.Send(list)
	}
	return nil
}

// handleCreateGame creates a lobby and seats the host in it.
func (h *Handlers) handleCreateGame(client *Client, msg *protocol.Message) error {
	if client.PlayerID() == "" {
		return errNotAuthenticated
	}

	var payload protocol.CreateGamePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return invalidPayload(err)
	}

	rules := h.hub.server.cfg.Rules
	settings := database.GameSettings{
		MaxPlayers:    payload.Settings.MaxPlayers,
		VictoryPoints: payload.Settings.VictoryPoints,
	}
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = rules.MaxPlayers
	}
	if settings.VictoryPoints == 0 {
		settings.VictoryPoints = rules.VictoryPoints
	}
	if settings.MaxPlayers < game.MinPlayers || settings.MaxPlayers > len(game.AllColors()) {
		return fmt.Errorf("%w: max players must be between %d and %d",
			game.ErrInvalidTarget, game.MinPlayers, len(game.AllColors()))
	}
	if settings.VictoryPoints < 3 {
		return fmt.Errorf("%w: victory points must be at least 3", game.ErrInvalidTarget)
	}

	seed := payload.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	name := payload.Name
	if name == "" {
		name = client.Name() + "'s game"
	}

	db := h.db()
	g, err := db.CreateGame(name, client.PlayerID(), settings, payload.IsPublic, seed)
	if err != nil {
		return err
	}
	if err := db.JoinGame(g.ID, client.PlayerID(), string(game.ColorRed)); err != nil {
		return err
	}

	h.hub.AddClientToGame(client, g.ID)
	db.SetPlayerConnected(g.ID, client.PlayerID(), true)

	slog.Info("game created", "game", g.ID, "name", g.Name, "host", client.PlayerID())

	reply, _ := protocol.NewMessage(protocol.TypeGameCreated, protocol.GameCreatedPayload{
		GameID:   g.ID,
		JoinCode: g.JoinCode,
	})
	reply.ID = msg.ID
	client.Send(reply)

	h.sendLobbyState(client, g.ID)
	return nil
}

// handleJoinGame handles joining a game by ID.
func (h *Handlers) handleJoinGame(client *Client, msg *protocol.Message) error {
	if client.PlayerID() == "" {
		return errNotAuthenticated
	}

	var payload protocol.JoinGamePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return invalidPayload(err)
	}
	return h.joinGame(client, msg.ID, payload.GameID)
}

// handleJoinByCode handles joining a game by join code.
func (h *Handlers) handleJoinByCode(client *Client, msg *protocol.Message) error {
	if client.PlayerID() == "" {
		return errNotAuthenticated
	}

	var payload protocol.JoinByCodePayload
	if err := msg.ParsePayload(&payload); err != nil {
		return invalidPayload(err)
	}

	g, err := h.db().GetGameByJoinCode(payload.JoinCode)
	if err != nil {
		return err
	}
	return h.joinGame(client, msg.ID, g.ID)
}

// joinGame seats the client, or reattaches it when it already holds a seat.
// Only seated players may watch a started game.
func (h *Handlers) joinGame(client *Client, msgID, gameID string) error {
	db := h.db()

	g, err := db.GetGame(gameID)
	if err != nil {
		return err
	}
	players, err := db.GetGamePlayers(gameID)
	if err != nil {
		return err
	}

	color := ""
	for _, p := range players {
		if p.PlayerID == client.PlayerID() {
			color = p.Color
			break
		}
	}

	if color == "" {
		if g.Status != database.GameStatusWaiting {
			return database.ErrGameStarted
		}
		color = pickColor(players)
		if err := db.JoinGame(gameID, client.PlayerID(), color); err != nil {
			return err
		}
		slog.Info("player joined game", "game", gameID, "player", client.PlayerID(), "color", color)
	}

	h.hub.AddClientToGame(client, gameID)
	db.SetPlayerConnected(gameID, client.PlayerID(), true)

	reply, _ := protocol.NewMessage(protocol.TypeJoinedGame, protocol.JoinedGamePayload{
		GameID: gameID,
		Color:  color,
	})
	reply.ID = msgID
	client.Send(reply)

	if g.Status == database.GameStatusWaiting {
		h.hub.notifyGamePlayers(gameID, protocol.TypePlayerJoined, protocol.PlayerJoinedPayload{
			PlayerID: client.PlayerID(),
			Name:     client.Name(),
		})
		h.broadcastLobbyState(gameID)
		return nil
	}

	slog.Info("player rejoined started game", "game", gameID, "player", client.PlayerID())
	return h.sendState(client, gameID)
}

// handleLeaveGame gives up a lobby seat. Leaving a started game only stops
// updates; the seat is kept for a later rejoin.
func (h *Handlers) handleLeaveGame(client *Client, msg *protocol.Message) error {
	gameID := client.GameID()
	if gameID == "" {
		return errNotInGame
	}

	db := h.db()
	g, err := db.GetGame(gameID)
	if err != nil {
		return err
	}

	h.hub.RemoveClientFromGame(client, gameID)
	if g.Status != database.GameStatusWaiting {
		db.SetPlayerConnected(gameID, client.PlayerID(), false)
	} else {
		if err := db.LeaveGame(gameID, client.PlayerID()); err != nil {
			return err
		}
		h.hub.notifyGamePlayers(gameID, protocol.TypePlayerLeft, protocol.PlayerLeftPayload{
			PlayerID: client.PlayerID(),
		})
		h.broadcastLobbyState(gameID)
	}

	slog.Info("player left game", "game", gameID, "player", client.PlayerID())
	return nil
}

// handleAddAI seats a computer player. Only the host may do this.
func (h *Handlers) handleAddAI(client *Client, msg *protocol.Message) error {
	gameID := client.GameID()
	if gameID == "" {
		return errNotInGame
	}

	db := h.db()
	g, err := db.GetGame(gameID)
	if err != nil {
		return err
	}
	if g.HostPlayerID != client.PlayerID() {
		return fmt.Errorf("%w: only the host can add computer players", game.ErrInvalidAction)
	}

	var payload protocol.AddAIPayload
	if err := msg.ParsePayload(&payload); err != nil {
		return invalidPayload(err)
	}
	strategy := payload.Strategy
	if strategy == "" {
		strategy = bot.DefaultStrategy
	}
	if !knownStrategy(strategy) {
		return fmt.Errorf("%w: unknown strategy %q", game.ErrInvalidTarget, strategy)
	}

	players, err := db.GetGamePlayers(gameID)
	if err != nil {
		return err
	}
	aiID, err := db.AddAIPlayer(gameID, pickColor(players), strategy)
	if err != nil {
		return err
	}
	slog.Info("added computer player", "game", gameID, "player", aiID, "strategy", strategy)

	h.broadcastLobbyState(gameID)
	return nil
}

// handleStartGame deals the board and begins setup. Only the host may start.
func (h *Handlers) handleStartGame(client *Client, msg *protocol.Message) error {
	gameID := client.GameID()
	if gameID == "" {
		return errNotInGame
	}

	db := h.db()
	dbGame, err := db.GetGame(gameID)
	if err != nil {
		return err
	}
	if dbGame.HostPlayerID != client.PlayerID() {
		return fmt.Errorf("%w: only the host can start the game", game.ErrInvalidAction)
	}
	if dbGame.Status != database.GameStatusWaiting {
		return database.ErrGameStarted
	}

	players, err := db.GetGamePlayers(gameID)
	if err != nil {
		return err
	}
	if len(players) < game.MinPlayers {
		return game.ErrTooFewPlayers
	}

	state, err := initializeGameState(gameID, dbGame, players)
	if err != nil {
		return err
	}
	if err := db.StartGame(gameID); err != nil {
		return err
	}
	r, err := h.hub.server.rooms.Add(gameID, state)
	if err != nil {
		return err
	}

	slog.Info("game started", "game", gameID, "players", len(players))

	r.mu.Lock()
	stateMsg, err := h.persist(r, client.PlayerID(), string(protocol.TypeStartGame), nil, nil)
	if err == nil {
		if herr := db.AddHistoryEvent(gameID, state.Round, state.Phase.String(), client.PlayerID(), client.Name(),
			database.EventGameStart, fmt.Sprintf("game started with %d players", len(players))); herr != nil {
			slog.Error("add history", "game", gameID, "event", database.EventGameStart, "error", herr)
		}
		h.hub.notifyGamePlayers(gameID, protocol.TypeGameStarted, protocol.GameStartedPayload{GameID: gameID})
		h.hub.broadcastToGame(gameID, stateMsg)
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}

	go h.runAI(r)
	return nil
}

// handleListGames handles listing public games.
func (h *Handlers) handleListGames(client *Client, msg *protocol.Message) error {
	games, err := h.db().ListPublicGames()
	if err != nil {
		return err
	}

	reply, _ := protocol.NewMessage(protocol.TypeGameList, protocol.GameListPayload{Games: gameListItems(games)})
	reply.ID = msg.ID
	client.Send(reply)
	return nil
}

// handleGetState sends the current state of the client's game.
func (h *Handlers) handleGetState(client *Client, msg *protocol.Message) error {
	if client.GameID() == "" {
		return errNotInGame
	}
	return h.sendState(client, client.GameID())
}

// handleGetHistory sends the history log of the client's game.
func (h *Handlers) handleGetHistory(client *Client, msg *protocol.Message) error {
	gameID := client.GameID()
	if gameID == "" {
		return errNotInGame
	}

	events, err := h.db().GetGameHistory(gameID)
	if err != nil {
		return err
	}
	out := make([]protocol.HistoryEvent, len(events))
	for i, e := range events {
		out[i] = protocol.HistoryEvent{
			ID:         e.ID,
			Round:      e.Round,
			Phase:      e.Phase,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			EventType:  e.EventType,
			Message:    e.Message,
		}
	}

	reply, _ := protocol.NewMessage(protocol.TypeGameHistory, protocol.GameHistoryPayload{Events: out})
	reply.ID = msg.ID
	client.Send(reply)
	return nil
}

// handleGameAction applies an in-game action from a seated human player.
func (h *Handlers) handleGameAction(client *Client, msg *protocol.Message) {
	playerID, gameID := client.PlayerID(), client.GameID()
	var err error
	switch {
	case playerID == "":
		err = errNotAuthenticated
	case gameID == "":
		err = errNotInGame
	}
	if err != nil {
		sendActionResult(client, msg, nil, err)
		return
	}

	r, err := h.hub.server.rooms.Get(gameID)
	if err != nil {
		sendActionResult(client, msg, nil, err)
		return
	}

	if err := h.perform(r, playerID, msg, client); err != nil {
		slog.Debug("action rejected", "game", gameID, "player", playerID, "action", msg.Type, "error", err)
		return
	}
	go h.runAI(r)
}

// perform applies msg for playerID and publishes the result. The actor, when
// connected, sees its action_result before the new game_state.
func (h *Handlers) perform(r *room, playerID string, msg *protocol.Message, actor *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return h.performLocked(r, playerID, msg, actor)
}

func (h *Handlers) performLocked(r *room, playerID string, msg *protocol.Message, actor *Client) error {
	out, err := applyAction(r.state, playerID, msg)
	if err != nil {
		sendActionResult(actor, msg, nil, err)
		return err
	}

	stateMsg, err := h.persist(r, playerID, string(msg.Type), msg.Payload, out)
	if err != nil {
		slog.Error("persist action", "game", r.id, "action", msg.Type, "error", err)
	}
	sendActionResult(actor, msg, out.Result, nil)
	h.hub.broadcastToGame(r.id, stateMsg)

	if r.state.IsGameOver() {
		h.finish(r)
	}
	return nil
}

// persist saves the state, the action log, the journal entry and the history
// notes for an accepted action, and returns the game_state broadcast. Callers
// hold r.mu.
func (h *Handlers) persist(r *room, playerID, action string, payload json.RawMessage, out *outcome) (*protocol.Message, error) {
	g := r.state
	srv := h.hub.server

	stateMsg, err := protocol.NewMessage(protocol.TypeGameState, protocol.GameStatePayload{State: g})
	if err != nil {
		return nil, err
	}
	stateJSON, err := json.Marshal(g)
	if err != nil {
		return stateMsg, err
	}

	var errs []error
	if err := srv.db.SaveGameState(r.id, string(stateJSON), g.CurrentPlayerID, g.Round, g.Phase.String()); err != nil {
		errs = append(errs, fmt.Errorf("save state: %w", err))
	}

	var resultJSON json.RawMessage
	if out != nil && out.Result != nil {
		if resultJSON, err = json.Marshal(out.Result); err != nil {
			errs = append(errs, err)
		}
	}
	if err := srv.db.LogAction(r.id, playerID, action, string(payload), string(resultJSON)); err != nil {
		errs = append(errs, fmt.Errorf("log action: %w", err))
	}
	if err := srv.journal.Append(eventlog.Entry{
		GameID:   r.id,
		Round:    g.Round,
		Phase:    g.Phase.String(),
		PlayerID: playerID,
		Action:   action,
		Payload:  payload,
		Result:   resultJSON,
	}); err != nil {
		errs = append(errs, fmt.Errorf("journal: %w", err))
	}

	if out != nil {
		name := playerName(g, playerID)
		for _, n := range out.Notes {
			if err := srv.db.AddHistoryEvent(r.id, g.Round, g.Phase.String(), playerID, name, n.Event, n.Message); err != nil {
				errs = append(errs, fmt.Errorf("history: %w", err))
				break
			}
		}
	}
	return stateMsg, errors.Join(errs...)
}

// finish closes out a won game. Callers hold r.mu.
func (h *Handlers) finish(r *room) {
	srv := h.hub.server
	winner := r.state.GetWinner()
	if winner == nil {
		return
	}

	if err := srv.db.EndGame(r.id); err != nil {
		slog.Error("end game", "game", r.id, "error", err)
	}
	if err := srv.journal.CloseGame(r.id); err != nil {
		slog.Warn("close journal", "game", r.id, "error", err)
	}
	srv.rooms.Drop(r.id)

	slog.Info("game over", "game", r.id, "winner", winner.ID, "points", winner.Points, "round", r.state.Round)
	var standings []protocol.Standing
	for _, p := range r.state.Standings() {
		standings = append(standings, protocol.Standing{PlayerID: p.ID, Name: p.Name, Points: p.Points})
	}
	h.hub.notifyGamePlayers(r.id, protocol.TypeGameEnded, protocol.GameEndedPayload{
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Points:     winner.Points,
		Standings:  standings,
	})
}

// sendState sends the current game state to one client.
func (h *Handlers) sendState(client *Client, gameID string) error {
	r, err := h.hub.server.rooms.Get(gameID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	msg, err := protocol.NewMessage(protocol.TypeGameState, protocol.GameStatePayload{State: r.state})
	r.mu.Unlock()
	if err != nil {
		return err
	}
	client.Send(msg)
	return nil
}

// sendLobbyState sends the current lobby state to a client.
func (h *Handlers) sendLobbyState(client *Client, gameID string) {
	msg, err := h.lobbyState(gameID)
	if err != nil {
		slog.Warn("lobby state", "game", gameID, "error", err)
		return
	}
	client.Send(msg)
}

func (h *Handlers) broadcastLobbyState(gameID string) {
	msg, err := h.lobbyState(gameID)
	if err != nil {
		slog.Warn("lobby state", "game", gameID, "error", err)
		return
	}
	h.hub.broadcastToGame(gameID, msg)
}

func (h *Handlers) lobbyState(gameID string) (*protocol.Message, error) {
	db := h.db()

	g, err := db.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	players, err := db.GetGamePlayers(gameID)
	if err != nil {
		return nil, err
	}

	lobbyPlayers := make([]protocol.LobbyPlayer, len(players))
	for i, p := range players {
		lobbyPlayers[i] = protocol.LobbyPlayer{
			ID:          p.PlayerID,
			Name:        p.PlayerName,
			Color:       p.Color,
			IsAI:        p.IsAI,
			AIStrategy:  p.AIStrategy,
			IsConnected: p.IsConnected,
		}
	}

	return protocol.NewMessage(protocol.TypeLobbyState, protocol.LobbyStatePayload{
		GameID:   g.ID,
		GameName: g.Name,
		JoinCode: g.JoinCode,
		HostID:   g.HostPlayerID,
		IsPublic: g.IsPublic,
		Settings: protocol.GameSettings{
			MaxPlayers:    g.Settings.MaxPlayers,
			VictoryPoints: g.Settings.VictoryPoints,
		},
		Players: lobbyPlayers,
	})
}

// sendError sends an error response.
func sendError(client *Client, msgID string, code protocol.ErrorCode, message string) {
	msg, _ := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{
		Code:    code,
		Message: message,
	})
	msg.ID = msgID
	client.Send(msg)
}

// sendActionResult answers a game action. A nil client is an AI seat.
func sendActionResult(client *Client, req *protocol.Message, result interface{}, err error) {
	if client == nil {
		return
	}
	payload := protocol.ActionResultPayload{Action: req.Type, Success: err == nil, Result: result}
	if err != nil {
		payload.Code = errorCode(err)
		payload.Error = err.Error()
	}
	msg, _ := protocol.NewMessage(protocol.TypeActionResult, payload)
	msg.ID = req.ID
	client.Send(msg)
}

// pickColor picks the first free seat color.
func pickColor(players []*database.GamePlayer) string {
	used := make(map[string]bool)
	for _, p := range players {
		used[p.Color] = true
	}
	for _, c := range game.AllColors() {
		if !used[string(c)] {
			return string(c)
		}
	}
	return string(game.ColorRed)
}

func knownStrategy(name string) bool {
	for _, s := range bot.Strategies() {
		if s == name {
			return true
		}
	}
	return false
}

// initializeGameState builds the opening state from the lobby seats. The
// stored seed fixes the board, the deck and the seating order.
func initializeGameState(gameID string, dbGame *database.Game, dbPlayers []*database.GamePlayer) (*game.GameState, error) {
	players := make([]*game.Player, 0, len(dbPlayers))
	for _, p := range dbPlayers {
		color := game.PlayerColor(p.Color)
		if p.IsAI {
			players = append(players, game.NewAIPlayer(p.PlayerID, p.PlayerName, color, p.AIStrategy))
		} else {
			players = append(players, game.NewPlayer(p.PlayerID, p.PlayerName, color))
		}
	}

	state, err := game.InitializeGame(players, game.Settings{
		VictoryPoints: dbGame.Settings.VictoryPoints,
		MaxPlayers:    dbGame.Settings.MaxPlayers,
	}, rand.New(rand.NewSource(dbGame.Seed)))
	if err != nil {
		return nil, err
	}
	state.ID = gameID
	return state, nil
}
