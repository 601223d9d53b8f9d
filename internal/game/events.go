package game

import "time"

// EventType represents a session lifecycle event type with type safety.
type EventType string

const (
	EventTypePlayerJoined      EventType = "player_joined"
	EventTypePlayerLeft        EventType = "player_left"
	EventTypeRoleAssigned      EventType = "role_assigned"
	EventTypeNightStarted      EventType = "night_started"
	EventTypeRoleTurn          EventType = "role_turn"
	EventTypeActionResult      EventType = "action_result"
	EventTypeDiscussionStarted EventType = "discussion_started"
	EventTypeVotingStarted     EventType = "voting_started"
	EventTypeVoteRecorded      EventType = "vote_recorded"
	EventTypeGameEnded         EventType = "game_ended"
)

// String returns the string representation of the event type.
func (et EventType) String() string { return string(et) }

// Event is any notification a session emits over its lifecycle. Events with a
// non-empty Recipient are private to that player; all others go to the whole
// room. The session owns the emission; transports only subscribe.
type Event interface {
	EventType() EventType
	Recipient() string
	Timestamp() time.Time
}

// broadcast is embedded by events visible to every player in the session.
type broadcast struct{ at time.Time }

func (b broadcast) Recipient() string    { return "" }
func (b broadcast) Timestamp() time.Time { return b.at }

// PlayerJoinedEvent is published when a player enters the lobby.
type PlayerJoinedEvent struct {
	broadcast
	Player      PlayerRef
	PlayerCount int
}

func (PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }

// PlayerLeftEvent is published when a player leaves or disconnects.
type PlayerLeftEvent struct {
	broadcast
	Player      PlayerRef
	PlayerCount int
}

func (PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }

// RoleAssignedEvent tells one player which role they were dealt.
type RoleAssignedEvent struct {
	at     time.Time
	Player PlayerRef
	Role   RoleRef
}

func (RoleAssignedEvent) EventType() EventType   { return EventTypeRoleAssigned }
func (e RoleAssignedEvent) Recipient() string    { return e.Player.ID }
func (e RoleAssignedEvent) Timestamp() time.Time { return e.at }

// NightStartedEvent is published when all players have seen their roles.
type NightStartedEvent struct {
	broadcast
}

func (NightStartedEvent) EventType() EventType { return EventTypeNightStarted }

// RoleTurnEvent announces which role is currently acting.
type RoleTurnEvent struct {
	broadcast
	Role RoleID
}

func (RoleTurnEvent) EventType() EventType { return EventTypeRoleTurn }

// ActionResultEvent carries the private outcome of a night action back to the
// actor.
type ActionResultEvent struct {
	at     time.Time
	Player PlayerRef
	Result *ActionResult
}

func (ActionResultEvent) EventType() EventType   { return EventTypeActionResult }
func (e ActionResultEvent) Recipient() string    { return e.Player.ID }
func (e ActionResultEvent) Timestamp() time.Time { return e.at }

// DiscussionStartedEvent is published when the night queue is exhausted. The
// countdown itself is owned by the session manager, not the session.
type DiscussionStartedEvent struct {
	broadcast
	Duration time.Duration
}

func (DiscussionStartedEvent) EventType() EventType { return EventTypeDiscussionStarted }

// VotingStartedEvent is published when the discussion ends.
type VotingStartedEvent struct {
	broadcast
}

func (VotingStartedEvent) EventType() EventType { return EventTypeVotingStarted }

// VoteRecordedEvent confirms a vote was accepted. The target stays hidden
// until the game ends.
type VoteRecordedEvent struct {
	broadcast
	Player     PlayerRef
	VotesCast  int
	VotesTotal int
}

func (VoteRecordedEvent) EventType() EventType { return EventTypeVoteRecorded }

// PlayerReveal pairs a player with their dealt and final roles, published
// once the game is over.
type PlayerReveal struct {
	Player   PlayerRef `json:"player"`
	Original RoleRef   `json:"original"`
	Current  RoleRef   `json:"current"`
}

// VoteRecord is one cast vote as revealed at game end.
type VoteRecord struct {
	Voter  PlayerRef `json:"voter"`
	Target string    `json:"target"`
}

// GameEndedEvent carries the final result: winning faction, the full vote
// record and every player's roles revealed.
type GameEndedEvent struct {
	broadcast
	Result *GameResult
}

func (GameEndedEvent) EventType() EventType { return EventTypeGameEnded }

// Subscriber receives session events.
type Subscriber interface {
	OnEvent(event Event)
}

// EventBus fans session events out to subscribers, in subscription order and
// on the caller's goroutine. The session is single-writer so no locking is
// needed here.
type EventBus struct {
	subscribers []Subscriber
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe adds a subscriber to receive events.
func (b *EventBus) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

// Unsubscribe removes a previously added subscriber.
func (b *EventBus) Unsubscribe(s Subscriber) {
	for i, sub := range b.subscribers {
		if sub == s {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers.
func (b *EventBus) Publish(event Event) {
	for _, s := range b.subscribers {
		s.OnEvent(event)
	}
}
