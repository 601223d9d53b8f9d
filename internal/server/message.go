package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/moonhowl/onenight/internal/game"
)

// Message is the base WebSocket message envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateGameData struct {
	PlayerName string `json:"playerName"`
}

type JoinGameData struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

// NightActionData is the wire form of a night-action payload. The Action
// field selects the shape; DecodeAction maps it onto the typed payloads the
// game core validates against.
type NightActionData struct {
	Action  string `json:"action"`
	Target  string `json:"target,omitempty"`
	First   string `json:"first,omitempty"`
	Second  string `json:"second,omitempty"`
	Ground  int    `json:"ground,omitempty"`
	Grounds []int  `json:"grounds,omitempty"`
}

// DecodeAction converts the wire payload into a typed game action. Unknown
// shapes fail here; per-role validation happens in the core.
func (d NightActionData) DecodeAction() (game.Action, error) {
	switch d.Action {
	case "none":
		return game.NoTarget{}, nil
	case "player":
		return game.TargetPlayer{PlayerID: d.Target}, nil
	case "players":
		return game.TargetPlayers{FirstID: d.First, SecondID: d.Second}, nil
	case "ground":
		return game.TargetGround{Ground: d.Ground}, nil
	case "seer":
		return game.SeerPeek{PlayerID: d.Target, Grounds: d.Grounds}, nil
	default:
		return nil, fmt.Errorf("unknown action shape: %q", d.Action)
	}
}

type CastVoteData struct {
	Target string `json:"target"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GameCreatedData struct {
	Code     string           `json:"code"`
	PlayerID string           `json:"playerId"`
	Players  []game.PlayerRef `json:"players"`
}

type GameJoinedData struct {
	Code     string           `json:"code"`
	PlayerID string           `json:"playerId"`
	Players  []game.PlayerRef `json:"players"`
}

type GameInfo struct {
	Code        string `json:"code"`
	Phase       string `json:"phase"`
	PlayerCount int    `json:"playerCount"`
	Joinable    bool   `json:"joinable"`
}

type GameListData struct {
	Games []GameInfo `json:"games"`
}

// Session event payloads

type PlayerJoinedData struct {
	Player      game.PlayerRef `json:"player"`
	PlayerCount int            `json:"playerCount"`
}

type PlayerLeftData struct {
	Player      game.PlayerRef `json:"player"`
	PlayerCount int            `json:"playerCount"`
}

type RoleAssignedData struct {
	Role        game.RoleRef `json:"role"`
	Description string       `json:"description"`
}

type RoleTurnData struct {
	Role game.RoleID `json:"role"`
}

type DiscussionStartedData struct {
	Seconds int `json:"seconds"`
}

type VoteRecordedData struct {
	Player     game.PlayerRef `json:"player"`
	VotesCast  int            `json:"votesCast"`
	VotesTotal int            `json:"votesTotal"`
}

// EventMessage converts a session event into its WebSocket message. The
// message type string is the event type, so the core's vocabulary is the
// protocol's.
func EventMessage(event game.Event) (*Message, error) {
	var data interface{}

	switch e := event.(type) {
	case game.PlayerJoinedEvent:
		data = PlayerJoinedData{Player: e.Player, PlayerCount: e.PlayerCount}
	case game.PlayerLeftEvent:
		data = PlayerLeftData{Player: e.Player, PlayerCount: e.PlayerCount}
	case game.RoleAssignedEvent:
		data = RoleAssignedData{Role: e.Role, Description: e.Role.ID.Description()}
	case game.NightStartedEvent:
		data = struct{}{}
	case game.RoleTurnEvent:
		data = RoleTurnData{Role: e.Role}
	case game.ActionResultEvent:
		data = e.Result
	case game.DiscussionStartedEvent:
		data = DiscussionStartedData{Seconds: int(e.Duration.Seconds())}
	case game.VotingStartedEvent:
		data = struct{}{}
	case game.VoteRecordedEvent:
		data = VoteRecordedData{Player: e.Player, VotesCast: e.VotesCast, VotesTotal: e.VotesTotal}
	case game.GameEndedEvent:
		data = e.Result
	default:
		return nil, fmt.Errorf("no message mapping for event type %s", event.EventType())
	}

	return NewMessage(MessageType(event.EventType()), data)
}
