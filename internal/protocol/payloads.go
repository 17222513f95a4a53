package protocol

// ==================== System Payloads ====================

// WelcomePayload is sent when a client connects.
type WelcomePayload struct {
	ServerVersion string `json:"server_version"`
}

// ==================== Authentication Payloads ====================

// AuthenticatePayload is sent to authenticate/register a player.
type AuthenticatePayload struct {
	Token string `json:"token,omitempty"` // Existing token for returning players
	Name  string `json:"name"`            // Display name
}

// AuthResultPayload is the response to authentication.
type AuthResultPayload struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"` // Save this for reconnecting
	Name     string `json:"name"`
	Error    string `json:"error,omitempty"`
}

// ==================== Lobby Payloads ====================

// CreateGamePayload is sent to create a new game.
type CreateGamePayload struct {
	Name     string       `json:"name"`
	IsPublic bool         `json:"is_public"`
	Settings GameSettings `json:"settings"`
	Seed     int64        `json:"seed,omitempty"` // Fixes the board layout; random when zero
}

// GameSettings are the configurable game parameters.
type GameSettings struct {
	MaxPlayers    int `json:"max_players"`
	VictoryPoints int `json:"victory_points"`
}

// GameCreatedPayload is the response when a game is created.
type GameCreatedPayload struct {
	GameID   string `json:"game_id"`
	JoinCode string `json:"join_code"`
}

// JoinGamePayload is sent to join a game by ID.
type JoinGamePayload struct {
	GameID string `json:"game_id"`
}

// JoinByCodePayload is sent to join a game by join code.
type JoinByCodePayload struct {
	JoinCode string `json:"join_code"`
}

// JoinedGamePayload is the response when successfully joining a game.
type JoinedGamePayload struct {
	GameID string `json:"game_id"`
	Color  string `json:"color"`
}

// LeaveGamePayload is sent to leave a game.
type LeaveGamePayload struct {
	GameID string `json:"game_id"`
}

// AddAIPayload is sent by the host to seat a computer player.
type AddAIPayload struct {
	Strategy string `json:"strategy,omitempty"`
}

// GameListPayload contains a list of games.
type GameListPayload struct {
	Games []GameListItem `json:"games"`
}

// GameListItem is a summary of a game.
type GameListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	JoinCode    string `json:"join_code,omitempty"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// LobbyStatePayload contains the current lobby state.
type LobbyStatePayload struct {
	GameID   string        `json:"game_id"`
	GameName string        `json:"game_name"`
	JoinCode string        `json:"join_code"`
	HostID   string        `json:"host_id"`
	IsPublic bool          `json:"is_public"`
	Settings GameSettings  `json:"settings"`
	Players  []LobbyPlayer `json:"players"`
}

// LobbyPlayer is a player in the lobby.
type LobbyPlayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsAI        bool   `json:"is_ai"`
	AIStrategy  string `json:"ai_strategy,omitempty"`
	IsConnected bool   `json:"is_connected"`
}

// PlayerJoinedPayload is sent when a player joins.
type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// PlayerLeftPayload is sent when a player leaves.
type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

// DisconnectPayload is sent when a player's connection drops.
type DisconnectPayload struct {
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}

// ==================== Game Flow Payloads ====================

// GameStartedPayload is sent when the game begins.
type GameStartedPayload struct {
	GameID string `json:"game_id"`
}

// ActionResultPayload is the result of a player action.
type ActionResultPayload struct {
	Action  MessageType `json:"action"`
	Success bool        `json:"success"`
	Code    ErrorCode   `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// GameStatePayload contains the full game state.
type GameStatePayload struct {
	State interface{} `json:"state"`
}

// GameHistoryPayload contains game history events.
type GameHistoryPayload struct {
	Events []HistoryEvent `json:"events"`
}

// HistoryEvent is a single event in the game history log.
type HistoryEvent struct {
	ID         int64  `json:"id"`
	Round      int    `json:"round"`
	Phase      string `json:"phase"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	EventType  string `json:"event_type"`
	Message    string `json:"message"`
}

// GameEndedPayload is sent when the game concludes.
type GameEndedPayload struct {
	WinnerID   string     `json:"winner_id"`
	WinnerName string     `json:"winner_name"`
	Points     int        `json:"points"`
	Standings  []Standing `json:"standings"`
}

// Standing is one seat's final score, in turn order.
type Standing struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
}

// ==================== Action Payloads ====================

// Point is a vertex coordinate on the board grid.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PlaceSettlementPayload places or upgrades a building at a vertex. It is
// used by place_settlement, build_settlement and build_city.
type PlaceSettlementPayload struct {
	At Point `json:"at"`
}

// PlaceRoadPayload places a road between two adjacent vertices. It is used
// by place_road and build_road.
type PlaceRoadPayload struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// ResourceCount represents amounts of each resource.
type ResourceCount struct {
	Tree int `json:"tree"`
	Clay int `json:"clay"`
	Wool int `json:"wool"`
	Crop int `json:"crop"`
	Iron int `json:"iron"`
}

// DiscardPayload gives up resources after a seven.
type DiscardPayload struct {
	Resources ResourceCount `json:"resources"`
}

// PlayCardPayload plays a development card. Resource names are only read by
// monopoly (resource) and year of plenty (resource, resource2).
type PlayCardPayload struct {
	Card      string `json:"card"`
	Resource  string `json:"resource,omitempty"`
	Resource2 string `json:"resource2,omitempty"`
}

// ProposeTradePayload proposes a trade.
type ProposeTradePayload struct {
	TargetPlayer string        `json:"target_player"`
	Offer        ResourceCount `json:"offer"`
	Request      ResourceCount `json:"request"`
}

// RespondTradePayload accepts or rejects the pending trade.
type RespondTradePayload struct {
	Accept bool `json:"accept"`
}
