package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"settlers/internal/bot"
	"settlers/internal/config"
	"settlers/internal/database"
	"settlers/internal/eventlog"
	"settlers/internal/game"
	"settlers/internal/protocol"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Server.DBPath = filepath.Join(dir, "test.db")
	cfg.Server.JournalDir = filepath.Join(dir, "journal")
	cfg.RateLimit = config.RateLimitConfig{PerSecond: 1000, Burst: 1000}
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	go s.hub.Run()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.hub.Stop()
		s.journal.Close()
		s.db.Close()
	})
	return s, ts
}

type testConn struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *testConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	c := &testConn{t: t, conn: conn}
	c.expect(protocol.TypeWelcome)
	return c
}

func (c *testConn) send(msgType protocol.MessageType, payload interface{}) {
	c.t.Helper()
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		c.t.Fatalf("NewMessage: %v", err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testConn) read() *protocol.Message {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	return &msg
}

// expect reads until a message of type want arrives.
func (c *testConn) expect(want protocol.MessageType) *protocol.Message {
	c.t.Helper()
	for {
		msg := c.read()
		if msg.Type == want {
			return msg
		}
		if msg.Type == protocol.TypeError && want != protocol.TypeError {
			c.t.Fatalf("waiting for %s, got error %s", want, msg.Payload)
		}
	}
}

func (c *testConn) authenticate(name string) protocol.AuthResultPayload {
	c.t.Helper()
	c.send(protocol.TypeAuthenticate, protocol.AuthenticatePayload{Name: name})
	var res protocol.AuthResultPayload
	if err := c.expect(protocol.TypeAuthResult).ParsePayload(&res); err != nil {
		c.t.Fatalf("auth result: %v", err)
	}
	if !res.Success || res.PlayerID == "" || res.Token == "" {
		c.t.Fatalf("Unexpected auth result %+v", res)
	}
	return res
}

// hostWithAI creates a game with one computer seat and starts it.
func (c *testConn) hostWithAI(settings protocol.GameSettings) string {
	c.t.Helper()
	c.send(protocol.TypeCreateGame, protocol.CreateGamePayload{Name: "Test", IsPublic: true, Settings: settings, Seed: 7})
	var created protocol.GameCreatedPayload
	c.expect(protocol.TypeGameCreated).ParsePayload(&created)
	c.expect(protocol.TypeLobbyState)

	c.send(protocol.TypeAddAI, protocol.AddAIPayload{})
	var lobby protocol.LobbyStatePayload
	c.expect(protocol.TypeLobbyState).ParsePayload(&lobby)
	if len(lobby.Players) != 2 || !lobby.Players[1].IsAI || lobby.Players[1].AIStrategy != bot.DefaultStrategy {
		c.t.Fatalf("Unexpected lobby %+v", lobby)
	}

	c.send(protocol.TypeStartGame, struct{}{})
	c.expect(protocol.TypeGameStarted)
	return created.GameID
}

func TestServer_HealthAndList(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %v %v", resp, err)
	}
	resp.Body.Close()

	c := dial(t, ts)
	c.authenticate("Alice")
	c.send(protocol.TypeCreateGame, protocol.CreateGamePayload{Name: "Open", IsPublic: true})
	c.expect(protocol.TypeGameCreated)

	resp, err = http.Get(ts.URL + "/api/games")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	var list protocol.GameListPayload
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Games) != 1 || list.Games[0].Name != "Open" || list.Games[0].MaxPlayers != 4 {
		t.Errorf("Unexpected game list %+v", list)
	}
}

func TestServer_RequiresAuthentication(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := dial(t, ts)

	c.send(protocol.TypeCreateGame, protocol.CreateGamePayload{Name: "x"})
	var e protocol.ErrorPayload
	c.expect(protocol.TypeError).ParsePayload(&e)
	if e.Code != protocol.ErrCodeNotAuthenticated {
		t.Errorf("Expected not_authenticated, got %+v", e)
	}

	c.send(protocol.TypeRollDice, struct{}{})
	var res protocol.ActionResultPayload
	c.expect(protocol.TypeActionResult).ParsePayload(&res)
	if res.Success || res.Code != protocol.ErrCodeNotAuthenticated {
		t.Errorf("Expected rejected roll, got %+v", res)
	}
}

func TestServer_JoinByCode(t *testing.T) {
	_, ts := newTestServer(t, nil)
	host := dial(t, ts)
	host.authenticate("Host")
	host.send(protocol.TypeCreateGame, protocol.CreateGamePayload{Name: "Private"})
	var created protocol.GameCreatedPayload
	host.expect(protocol.TypeGameCreated).ParsePayload(&created)

	guest := dial(t, ts)
	guest.authenticate("Guest")
	guest.send(protocol.TypeJoinByCode, protocol.JoinByCodePayload{JoinCode: "nope"})
	var e protocol.ErrorPayload
	guest.expect(protocol.TypeError).ParsePayload(&e)
	if e.Code != protocol.ErrCodeGameNotFound {
		t.Errorf("Expected game_not_found, got %+v", e)
	}

	guest.send(protocol.TypeJoinByCode, protocol.JoinByCodePayload{JoinCode: created.JoinCode})
	var joined protocol.JoinedGamePayload
	guest.expect(protocol.TypeJoinedGame).ParsePayload(&joined)
	if joined.GameID != created.GameID || joined.Color != string(game.ColorBlue) {
		t.Errorf("Unexpected join %+v", joined)
	}

	var p protocol.PlayerJoinedPayload
	host.expect(protocol.TypePlayerJoined).ParsePayload(&p)
	if p.Name != "Guest" {
		t.Errorf("Expected host to see Guest join, got %+v", p)
	}

	guest.send(protocol.TypeStartGame, struct{}{})
	guest.expect(protocol.TypeError)
}

func TestServer_RateLimited(t *testing.T) {
	_, ts := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{PerSecond: 0.01, Burst: 1}
	})
	c := dial(t, ts)

	c.send(protocol.TypePing, struct{}{})
	c.send(protocol.TypePing, struct{}{})
	c.expect(protocol.TypePong)

	var e protocol.ErrorPayload
	c.expect(protocol.TypeError).ParsePayload(&e)
	if e.Code != protocol.ErrCodeRateLimited {
		t.Errorf("Expected rate_limited, got %+v", e)
	}
}

func TestServer_ActionResultPrecedesState(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := dial(t, ts)
	me := c.authenticate("Human").PlayerID
	gameID := c.hostWithAI(protocol.GameSettings{})

	// The computer seat may open the setup; wait for our placement.
	var state *game.GameState
	for {
		msg := c.expect(protocol.TypeGameState)
		s, err := bot.DecodeState(msg)
		if err != nil {
			t.Fatalf("DecodeState: %v", err)
		}
		if s.CurrentPlayerID == me && s.SetupExpects() == game.SetupSettlement {
			state = s
			break
		}
	}
	if state.ID != gameID {
		t.Fatalf("Expected state for %s, got %s", gameID, state.ID)
	}

	spot := state.Board.SettlementSpots(me, false)[0].Coord
	c.send(protocol.TypePlaceSettlement, protocol.PlaceSettlementPayload{At: protocol.Point{Row: spot.Row, Col: spot.Col}})

	msg := c.read()
	if msg.Type != protocol.TypeActionResult {
		t.Fatalf("Expected action_result first, got %s", msg.Type)
	}
	var res protocol.ActionResultPayload
	msg.ParsePayload(&res)
	if !res.Success || res.Action != protocol.TypePlaceSettlement {
		t.Fatalf("Unexpected result %+v", res)
	}

	after, err := bot.DecodeState(c.expect(protocol.TypeGameState))
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if v := after.Board.Vertex(spot.Row, spot.Col); v == nil || v.Owner != me {
		t.Errorf("Expected settlement at %v for %s", spot, me)
	}

	// Playing out of turn is rejected with a code and changes nothing.
	c.send(protocol.TypeRollDice, struct{}{})
	var rejected protocol.ActionResultPayload
	c.expect(protocol.TypeActionResult).ParsePayload(&rejected)
	if rejected.Success || rejected.Code == "" {
		t.Errorf("Expected rejected roll, got %+v", rejected)
	}

	resp, err := http.Get(ts.URL + "/api/games/" + gameID + "/board.png")
	if err != nil {
		t.Fatalf("board.png: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("board.png status %d", resp.StatusCode)
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Errorf("decode board png: %v", err)
	}

	c.send(protocol.TypeGetHistory, struct{}{})
	var history protocol.GameHistoryPayload
	c.expect(protocol.TypeGameHistory).ParsePayload(&history)
	if len(history.Events) < 2 || history.Events[0].EventType != database.EventGameStart {
		t.Errorf("Unexpected history %+v", history.Events)
	}
}

func TestServer_BoardImageUnknownGame(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/games/missing/board.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestRooms_FinishedGameNotCached(t *testing.T) {
	s, ts := newTestServer(t, nil)

	host, err := s.db.CreatePlayer("Host")
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	dbGame, err := s.db.CreateGame("Done", host.ID, database.GameSettings{MaxPlayers: 2, VictoryPoints: 10}, true, 3)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	players := []*game.Player{
		game.NewPlayer(host.ID, "Host", game.AllColors()[0]),
		game.NewPlayer("guest", "Guest", game.AllColors()[1]),
	}
	state, err := game.InitializeGame(players, game.DefaultSettings(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	state.Phase = game.PhaseGameOver
	state.WinnerID = host.ID
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := s.db.SaveGameState(dbGame.ID, string(data), host.ID, state.Round, state.Phase.String()); err != nil {
		t.Fatalf("SaveGameState: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/games/" + dbGame.ID + "/board.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	s.rooms.mu.Lock()
	_, cached := s.rooms.rooms[dbGame.ID]
	s.rooms.mu.Unlock()
	if cached {
		t.Error("finished game was cached after serving its board")
	}
}

// TestServer_PlaysToTheEnd drives the human seat with the builder rules
// against one computer seat until someone wins.
func TestServer_PlaysToTheEnd(t *testing.T) {
	s, ts := newTestServer(t, nil)
	c := dial(t, ts)
	me := c.authenticate("Human").PlayerID
	gameID := c.hostWithAI(protocol.GameSettings{MaxPlayers: 2, VictoryPoints: 3})

	engine, err := bot.ForStrategy(bot.StrategyBuilder)
	if err != nil {
		t.Fatalf("ForStrategy: %v", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	pending := false
	for time.Now().Before(deadline) {
		msg := c.read()
		switch msg.Type {
		case protocol.TypeGameEnded:
			var end protocol.GameEndedPayload
			msg.ParsePayload(&end)
			if end.WinnerID == "" || end.Points < 3 {
				t.Fatalf("Unexpected end %+v", end)
			}
			if len(end.Standings) != 2 {
				t.Errorf("Expected 2 standings, got %+v", end.Standings)
			}
			g, err := s.db.GetGame(gameID)
			if err != nil || g.Status != database.GameStatusFinished {
				t.Errorf("Expected finished game, got %+v %v", g, err)
			}
			entries, err := eventlog.ReadFile(s.journal.Path(gameID))
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if len(entries) == 0 || entries[0].Action != string(protocol.TypeStartGame) {
				t.Errorf("Unexpected journal %+v", entries)
			}
			return
		case protocol.TypeActionResult:
			// The state that follows reflects the move; decide on that.
			pending = false
			var res protocol.ActionResultPayload
			msg.ParsePayload(&res)
			if !res.Success {
				t.Fatalf("move %s rejected: %s", res.Action, res.Error)
			}
			continue
		case protocol.TypeGameState:
			state, err := bot.DecodeState(msg)
			if err != nil {
				t.Fatalf("DecodeState: %v", err)
			}
			if pending {
				continue
			}
			if move := engine.Decide(state, me); move != nil {
				pending = true
				c.send(move.Action, move.Payload())
			}
		}
	}
	t.Fatal("game did not finish in time")
}

func TestApplyAction_Setup(t *testing.T) {
	players := []*game.Player{
		game.NewPlayer("a", "Ann", game.ColorRed),
		game.NewPlayer("b", "Bob", game.ColorBlue),
	}
	g, err := game.InitializeGame(players, game.DefaultSettings(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	current := g.CurrentPlayerID
	other := "a"
	if current == "a" {
		other = "b"
	}
	spot := g.Board.SettlementSpots(current, false)[0].Coord

	msg, _ := protocol.NewMessage(protocol.TypePlaceSettlement, protocol.PlaceSettlementPayload{
		At: protocol.Point{Row: spot.Row, Col: spot.Col},
	})
	if _, err := applyAction(g, other, msg); errorCode(err) != protocol.ErrCodeNotYourTurn {
		t.Errorf("Expected not_your_turn, got %v", err)
	}

	out, err := applyAction(g, current, msg)
	if err != nil {
		t.Fatalf("applyAction: %v", err)
	}
	if len(out.Notes) != 1 || out.Notes[0].Event != database.EventSettlement {
		t.Errorf("Unexpected notes %+v", out.Notes)
	}
	if v, ok := out.Result.(*game.Vertex); !ok || v.Owner != current {
		t.Errorf("Unexpected result %#v", out.Result)
	}

	bad, _ := protocol.NewMessage(protocol.TypePlaceSettlement, protocol.PlaceSettlementPayload{
		At: protocol.Point{Row: 9, Col: 0},
	})
	if _, err := applyAction(g, g.CurrentPlayerID, bad); errorCode(err) != protocol.ErrCodeOutOfBounds {
		t.Errorf("Expected out_of_bounds, got %v", err)
	}

	junk := &protocol.Message{Type: protocol.TypeDiscard, Payload: json.RawMessage(`"nope"`)}
	if _, err := applyAction(g, current, junk); errorCode(err) != protocol.ErrCodeInvalidTarget {
		t.Errorf("Expected invalid_target for a bad payload, got %v", err)
	}
}

func TestCardPlay(t *testing.T) {
	play, err := cardPlay(protocol.PlayCardPayload{Card: "year_of_plenty", Resource: "crop", Resource2: "Iron"})
	if err != nil {
		t.Fatalf("cardPlay: %v", err)
	}
	if play.Card != game.CardYearOfPlenty || play.Resource != game.ResourceCrop || play.Resource2 != game.ResourceIron {
		t.Errorf("Unexpected play %+v", play)
	}
	if _, err := cardPlay(protocol.PlayCardPayload{Card: "joker"}); !errors.Is(err, game.ErrInvalidTarget) {
		t.Errorf("Expected ErrInvalidTarget, got %v", err)
	}
	if _, err := cardPlay(protocol.PlayCardPayload{Card: "monopoly", Resource: "gold"}); !errors.Is(err, game.ErrInvalidTarget) {
		t.Errorf("Expected ErrInvalidTarget, got %v", err)
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want protocol.ErrorCode
	}{
		{game.ErrNotYourTurn, protocol.ErrCodeNotYourTurn},
		{game.ErrTooClose, protocol.ErrCodeIllegalPlacement},
		{fmt.Errorf("wrapped: %w", game.ErrInsufficientResources), protocol.ErrCodeInsufficientResources},
		{game.ErrDiscardPending, protocol.ErrCodeDiscardPending},
		{game.ErrGameOver, protocol.ErrCodeGameOver},
		{game.ErrNoTradeOffer, protocol.ErrCodeInvalidAction},
		{database.ErrJoinCodeNotFound, protocol.ErrCodeGameNotFound},
		{database.ErrGameFull, protocol.ErrCodeLobbyFull},
		{errNotAuthenticated, protocol.ErrCodeNotAuthenticated},
		{errors.New("disk on fire"), protocol.ErrCodeInternalError},
	}
	for _, tc := range cases {
		if got := errorCode(tc.err); got != tc.want {
			t.Errorf("errorCode(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestDescribeHand(t *testing.T) {
	if got := describeHand(&game.Hand{Tree: 2, Iron: 1}); got != "2 Tree, 1 Iron" {
		t.Errorf("Unexpected description %q", got)
	}
	if got := describeHand(game.NewHand()); got != "nothing" {
		t.Errorf("Unexpected description %q", got)
	}
}
