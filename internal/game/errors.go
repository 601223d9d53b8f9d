package game

import "errors"

// Sentinel errors returned by session operations. All of them are recoverable
// at the call boundary: the operation has no partial effect and the transport
// layer decides how to surface them to the player.
var (
	ErrDuplicateName        = errors.New("a player with that name is already in the game")
	ErrGameFull             = errors.New("game is full")
	ErrNotEnoughPlayers     = errors.New("not enough players to start")
	ErrInsufficientRolePool = errors.New("role pool smaller than players plus ground")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrInvalidAction        = errors.New("action does not match the player's role")
	ErrInvalidTarget        = errors.New("invalid action target")
	ErrWrongPhase           = errors.New("operation not valid in the current phase")
	ErrDuplicateVote        = errors.New("player has already voted")
)
