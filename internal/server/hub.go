package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"settlers/internal/config"
	"settlers/internal/protocol"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Hub maintains the set of active clients and fans messages out to games.
type Hub struct {
	server *Server

	// Registered clients
	clients map[*Client]bool

	// Clients by player ID
	playerClients map[string]*Client

	// Clients in each game
	gameClients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(server *Server) *Hub {
	return &Hub{
		server:        server,
		clients:       make(map[*Client]bool),
		playerClients: make(map[string]*Client),
		gameClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		done:          make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.sendWelcome(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				client.close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Handle routes one inbound message from client.
func (h *Hub) Handle(client *Client, msg *protocol.Message) {
	NewHandlers(h).Handle(client, msg)
}

func (h *Hub) sendWelcome(client *Client) {
	msg, _ := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomePayload{
		ServerVersion: Version,
	})
	client.Send(msg)
}

// handleDisconnect drops a client and tells the rest of its game. Peers are
// notified after the hub lock is released.
func (h *Hub) handleDisconnect(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	playerID, gameID := client.PlayerID(), client.GameID()
	if playerID != "" && h.playerClients[playerID] == client {
		delete(h.playerClients, playerID)
	}
	if gameID != "" {
		if clients, ok := h.gameClients[gameID]; ok {
			delete(clients, client)
		}
	}
	h.mu.Unlock()

	client.close()

	if playerID == "" || gameID == "" {
		return
	}
	if err := h.server.db.SetPlayerConnected(gameID, playerID, false); err != nil {
		slog.Warn("mark player disconnected", "game", gameID, "player", playerID, "error", err)
	}
	h.notifyGamePlayers(gameID, protocol.TypeDisconnect, protocol.DisconnectPayload{
		PlayerID: playerID,
		Reason:   "disconnected",
	})
}

// gameMembers returns a snapshot of the clients watching gameID.
func (h *Hub) gameMembers(gameID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.gameClients[gameID]))
	for client := range h.gameClients[gameID] {
		out = append(out, client)
	}
	return out
}

// notifyGamePlayers sends a message to all players in a game.
func (h *Hub) notifyGamePlayers(gameID string, msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		slog.Error("encode message", "type", msgType, "error", err)
		return
	}
	h.broadcastToGame(gameID, msg)
}

// broadcastToGame sends an already encoded message to a game.
func (h *Hub) broadcastToGame(gameID string, msg *protocol.Message) {
	for _, client := range h.gameMembers(gameID) {
		client.Send(msg)
	}
}

// sendToPlayer sends a message to a specific player.
func (h *Hub) sendToPlayer(playerID string, msgType protocol.MessageType, payload interface{}) {
	h.mu.RLock()
	client := h.playerClients[playerID]
	h.mu.RUnlock()

	if client == nil {
		return
	}

	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return
	}
	client.Send(msg)
}

// AddClientToGame adds a client to a game's client list, leaving any game it
// was watching before.
func (h *Hub) AddClientToGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev := client.GameID(); prev != "" && prev != gameID {
		delete(h.gameClients[prev], client)
	}
	if h.gameClients[gameID] == nil {
		h.gameClients[gameID] = make(map[*Client]bool)
	}
	h.gameClients[gameID][client] = true
	client.setGame(gameID)
}

// RemoveClientFromGame removes a client from a game.
func (h *Hub) RemoveClientFromGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.gameClients[gameID]; ok {
		delete(clients, client)
	}
	if client.GameID() == gameID {
		client.setGame("")
	}
}

// SetClientPlayer associates a client with a player ID.
func (h *Hub) SetClientPlayer(client *Client, playerID, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.setPlayer(playerID, name)
	h.playerClients[playerID] = client
}

// Client represents a connected WebSocket client.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan *protocol.Message
	limiter *rate.Limiter

	mu       sync.RWMutex
	playerID string
	gameID   string
	name     string
	closed   bool
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
)

// NewClient creates a new client. Inbound messages are throttled by a token
// bucket sized from limits.
func NewClient(hub *Hub, conn *websocket.Conn, limits config.RateLimitConfig) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan *protocol.Message, 256),
		limiter: rate.NewLimiter(rate.Limit(limits.PerSecond), limits.Burst),
	}
}

// PlayerID returns the authenticated player, or "".
func (c *Client) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GameID returns the game the client is seated in, or "".
func (c *Client) GameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

// Name returns the player's display name.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Client) setPlayer(playerID, name string) {
	c.mu.Lock()
	c.playerID, c.name = playerID, name
	c.mu.Unlock()
}

func (c *Client) setGame(gameID string) {
	c.mu.Lock()
	c.gameID = gameID
	c.mu.Unlock()
}

// Send queues a message to be sent to the client. A client whose queue is
// full is dropped.
func (c *Client) Send(msg *protocol.Message) {
	if msg == nil {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		slog.Warn("client send queue full", "player", c.playerID)
		go c.hub.Unregister(c)
	}
}

// close shuts the send queue once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads messages from the WebSocket and handles them in order.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "player", c.PlayerID(), "error", err)
			}
			break
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("invalid message", "error", err)
			sendError(c, "", protocol.ErrCodeInvalidAction, "malformed message")
			continue
		}

		if !c.limiter.Allow() {
			sendError(c, msg.ID, protocol.ErrCodeRateLimited, "too many messages")
			continue
		}

		c.hub.Handle(c, &msg)
	}
}

// WritePump writes queued messages and keepalive pings to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				slog.Error("marshal message", "type", msg.Type, "error", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
