package server

// MessageType represents a WebSocket message type with type safety.
type MessageType string

// WebSocket message type constants for the client-server protocol. Session
// lifecycle events reuse the event type names from internal/game so clients
// see one vocabulary.
const (
	// Client to server messages
	MessageTypeCreateGame  MessageType = "create_game"
	MessageTypeJoinGame    MessageType = "join_game"
	MessageTypeLeaveGame   MessageType = "leave_game"
	MessageTypeListGames   MessageType = "list_games"
	MessageTypeStartGame   MessageType = "start_game"
	MessageTypeConfirmRole MessageType = "confirm_role"
	MessageTypeNightAction MessageType = "night_action"
	MessageTypeCastVote    MessageType = "cast_vote"
	MessageTypeSkipToVote  MessageType = "skip_to_vote"
	MessageTypeRestartGame MessageType = "restart_game"

	// Server to client messages
	MessageTypeGameCreated MessageType = "game_created"
	MessageTypeGameJoined  MessageType = "game_joined"
	MessageTypeGameLeft    MessageType = "game_left"
	MessageTypeGameList    MessageType = "game_list"
	MessageTypeError       MessageType = "error"
)

// String returns the string representation of the message type.
func (mt MessageType) String() string {
	return string(mt)
}
