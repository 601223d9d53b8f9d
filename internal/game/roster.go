package game

import (
	"strings"

	"github.com/google/uuid"
)

// unassigned marks a player slot before roles are dealt.
const unassigned = -1

// Player is a participant in a single session. The role slots hold indices
// into the session's role pool: original is fixed when roles are dealt,
// current moves as swap actions reassign ownership.
type Player struct {
	ID        string
	Name      string
	Connected bool

	original int
	current  int
}

// OriginalIdx returns the pool index of the role the player was dealt. It is
// stable for the life of the deal regardless of later swaps.
func (p *Player) OriginalIdx() int { return p.original }

// CurrentIdx returns the pool index of the role the player presently holds.
func (p *Player) CurrentIdx() int { return p.current }

// Assigned reports whether the player has been dealt a role.
func (p *Player) Assigned() bool { return p.original != unassigned }

// Ref returns the player's client-facing identity.
func (p *Player) Ref() PlayerRef {
	return PlayerRef{ID: p.ID, Name: p.Name}
}

// PlayerRef is a player identity as reported to clients.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Roster tracks the ordered player list of one session and owns the
// assign/swap/read operations every role rule is built on.
type Roster struct {
	players []*Player
	max     int
}

// NewRoster creates an empty roster capped at max players.
func NewRoster(max int) *Roster {
	return &Roster{max: max}
}

// Join adds a player with the given display name. Names are unique within a
// session because votes and night actions are reported by name.
func (r *Roster) Join(name string) (*Player, error) {
	if len(r.players) >= r.max {
		return nil, ErrGameFull
	}
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrDuplicateName
		}
	}

	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		Connected: true,
		original:  unassigned,
		current:   unassigned,
	}
	r.players = append(r.players, p)
	return p, nil
}

// Remove deletes a player from the roster. Only meaningful before roles are
// dealt; afterwards players are marked disconnected instead.
func (r *Roster) Remove(id string) error {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return nil
		}
	}
	return ErrPlayerNotFound
}

// ByID returns the player with the given id.
func (r *Roster) ByID(id string) (*Player, error) {
	for _, p := range r.players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

// Players returns the ordered player list.
func (r *Roster) Players() []*Player { return r.players }

// Len returns the number of players in the roster.
func (r *Roster) Len() int { return len(r.players) }

// ConnectedCount returns the number of players still connected.
func (r *Roster) ConnectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Assign deals the role at pool index idx to the player, setting both slots.
// Valid exactly once per deal; ResetRoles clears assignments for a restart.
func (r *Roster) Assign(p *Player, idx int) {
	if p.Assigned() {
		panic("player already assigned a role")
	}
	p.original = idx
	p.current = idx
}

// SetCurrentIdx reassigns which pool entry the player holds. Used by every
// swap-type rule; the original slot never moves.
func (r *Roster) SetCurrentIdx(p *Player, idx int) {
	p.current = idx
}

// ResetRoles clears all role assignments ahead of a fresh deal.
func (r *Roster) ResetRoles() {
	for _, p := range r.players {
		p.original = unassigned
		p.current = unassigned
	}
}
