package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    string
	gameCode    string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetGame associates this connection with a game session
func (c *Connection) SetGame(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameCode = code
}

// GetGame returns the associated game code
func (c *Connection) GetGame() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameCode
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeCreateGame:
		var data CreateGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create game data")
			return
		}
		c.handleCreateGame(data)

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypeLeaveGame:
		c.handleLeaveGame()

	case MessageTypeListGames:
		c.handleListGames()

	case MessageTypeStartGame:
		c.handleStartGame()

	case MessageTypeConfirmRole:
		c.handleConfirmRole()

	case MessageTypeNightAction:
		var data NightActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse night action data")
			return
		}
		c.handleNightAction(data)

	case MessageTypeCastVote:
		var data CastVoteData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse cast vote data")
			return
		}
		c.handleCastVote(data)

	case MessageTypeSkipToVote:
		c.handleSkipToVote()

	case MessageTypeRestartGame:
		c.handleRestartGame()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleCreateGame(data CreateGameData) {
	c.logger.Info("Create game request", "playerName", data.PlayerName)

	if data.PlayerName == "" {
		c.sendError("invalid_name", "Player name required")
		return
	}
	if c.GetGame() != "" {
		c.sendError("already_in_game", "Leave the current game first")
		return
	}

	code, player, err := c.gameService.CreateGame(data.PlayerName)
	if err != nil {
		c.sendError("create_failed", err.Error())
		return
	}

	c.SetPlayer(player.ID)
	c.SetGame(code)

	response, _ := NewMessage(MessageTypeGameCreated, GameCreatedData{
		Code:     code,
		PlayerID: player.ID,
		Players:  c.gameService.GamePlayers(code),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	c.logger.Info("Join game request", "code", data.Code, "playerName", data.PlayerName)

	if data.PlayerName == "" {
		c.sendError("invalid_name", "Player name required")
		return
	}
	if c.GetGame() != "" {
		c.sendError("already_in_game", "Leave the current game first")
		return
	}

	code, player, err := c.gameService.JoinGame(data.Code, data.PlayerName)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}

	c.SetPlayer(player.ID)
	c.SetGame(code)

	response, _ := NewMessage(MessageTypeGameJoined, GameJoinedData{
		Code:     code,
		PlayerID: player.ID,
		Players:  c.gameService.GamePlayers(code),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaveGame() {
	code, playerID := c.GetGame(), c.GetPlayer()
	c.logger.Info("Leave game request", "code", code, "player", playerID)

	if code == "" {
		c.sendError("not_in_game", "Not in a game")
		return
	}

	if err := c.gameService.LeaveGame(code, playerID); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}

	c.SetPlayer("")
	c.SetGame("")

	response, _ := NewMessage(MessageTypeGameLeft, map[string]string{"code": code})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListGames() {
	c.logger.Info("List games request", "player", c.GetPlayer())

	response, _ := NewMessage(MessageTypeGameList, GameListData{
		Games: c.gameService.ListGames(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartGame() {
	code, playerID := c.GetGame(), c.GetPlayer()
	c.logger.Info("Start game request", "code", code, "player", playerID)

	if code == "" {
		c.sendError("not_in_game", "Not in a game")
		return
	}

	if err := c.gameService.StartGame(code); err != nil {
		c.sendError("start_failed", err.Error())
		return
	}
	// No response needed - the session will publish events
}

func (c *Connection) handleConfirmRole() {
	code, playerID := c.GetGame(), c.GetPlayer()

	if code == "" {
		c.sendError("not_in_game", "Not in a game")
		return
	}

	if err := c.gameService.ConfirmRole(code, playerID); err != nil {
		c.sendError("confirm_failed", err.Error())
		return
	}
}

func (c *Connection) handleNightAction(data NightActionData) {
	code, playerID := c.GetGame(), c.GetPlayer()
	c.logger.Debug("Night action", "code", code, "player", playerID, "action", data.Action)

	if code == "" {
		c.sendError("not_in_game", "Not in a game")
		return
	}

	act, err := data.DecodeAction()
	if err != nil {
		c.sendError("invalid_action", err.Error())
		return
	}

	if err := c.gameService.NightAction(code, playerID, act); err != nil {
		c.sendError("action_failed", err.Error())
		return
	}
	// The action result reaches the actor as a private event
}

func (c *Connection) handleCastVote(data CastVoteData) {
	code, playerID := c.GetGame(), c.GetPlayer()
	c.logger.Info("Cast vote", "code", code, "player", playerID)

	if code == "" {
		c.sendError("not_in_game", "Not in a game")
		return
	}

	if err := c.gameService.CastVote(code, playerID, data.Target); err != nil {
		c.sendError("vote_failed", err.Error())
		return
	}
}

func (c *Connection) handleSkipToVote() {
	code, playerID := c.GetGame(), c.GetPlayer()
	c.logger.Info("Skip to vote request", "code", code, "player", playerID)

	if code == "" {
		c.sendError("not_in_game", "Not in a game")
		return
	}

	if err := c.gameService.SkipToVote(code, playerID); err != nil {
		c.sendError("skip_failed", err.Error())
		return
	}
}

func (c *Connection) handleRestartGame() {
	code, playerID := c.GetGame(), c.GetPlayer()
	c.logger.Info("Restart game request", "code", code, "player", playerID)

	if code == "" {
		c.sendError("not_in_game", "Not in a game")
		return
	}

	if err := c.gameService.RestartGame(code); err != nil {
		c.sendError("restart_failed", err.Error())
		return
	}
}
