package game

import (
	"encoding/json"
	"fmt"
)

// Faction is the winning team a role belongs to.
type Faction int

const (
	FactionVillage Faction = iota
	FactionWerewolf
	FactionJoker
)

// String returns the string representation of a faction.
func (f Faction) String() string {
	switch f {
	case FactionVillage:
		return "village"
	case FactionWerewolf:
		return "werewolf"
	case FactionJoker:
		return "joker"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the faction as its string name.
func (f Faction) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON decodes a faction from its string name.
func (f *Faction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, candidate := range []Faction{FactionVillage, FactionWerewolf, FactionJoker} {
		if candidate.String() == s {
			*f = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown faction %q", s)
}

// RoleID is a closed enumeration of every role in the game. Role behaviour is
// dispatched through the static registry below, so an unknown role is a
// programmer error rather than a runtime condition.
type RoleID int

const (
	RoleWerewolf RoleID = iota
	RoleMinion
	RoleDoppelganger
	RoleSeer
	RoleMason
	RoleRobber
	RoleTroublemaker
	RoleDrunk
	RoleInsomniac
	RoleJoker

	numRoles
)

// String returns the wire name of the role.
func (r RoleID) String() string {
	if r < 0 || r >= numRoles {
		return "unknown"
	}
	return registry[r].name
}

// MarshalJSON encodes the role as its string name.
func (r RoleID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a role from its string name.
func (r *RoleID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for id := RoleID(0); id < numRoles; id++ {
		if registry[id].name == s {
			*r = id
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", s)
}

// Faction returns the faction the role belongs to.
func (r RoleID) Faction() Faction {
	return registry[r].faction
}

// DisplayName returns the human-readable role name.
func (r RoleID) DisplayName() string {
	return registry[r].display
}

// Description returns the rules text shown to a player holding the role.
func (r RoleID) Description() string {
	return registry[r].description
}

// Passive reports whether the role's night action is self-contained. An
// active role needs the actor to pick a target, which matters when the
// doppelganger acquires it and must be driven through a follow-up action.
// This classification lives only here; nothing else re-derives it.
func (r RoleID) Passive() bool {
	return registry[r].passive
}

// roleInfo is the static descriptor for one role. Descriptors are never
// mutated; sessions hold role identities by pool index and only reassign
// which identity a player holds.
type roleInfo struct {
	name        string
	display     string
	faction     Faction
	description string
	passive     bool
	resolve     resolveFunc
}

var registry [numRoles]roleInfo

func register(id RoleID, info roleInfo) {
	if registry[id].name != "" {
		panic(fmt.Sprintf("role %d registered twice", id))
	}
	registry[id] = info
}

func init() {
	register(RoleWerewolf, roleInfo{
		name:        "werewolf",
		display:     "Werewolf",
		faction:     FactionWerewolf,
		description: "Wake and see the other werewolves. If you are alone, peek at one ground role.",
		passive:     true,
		resolve:     resolveWerewolf,
	})
	register(RoleMinion, roleInfo{
		name:        "minion",
		display:     "Minion",
		faction:     FactionWerewolf,
		description: "See who the werewolves are. If you are eliminated, the werewolves still win.",
		passive:     true,
		resolve:     resolveMinion,
	})
	register(RoleDoppelganger, roleInfo{
		name:        "doppelganger",
		display:     "Doppelganger",
		faction:     FactionVillage,
		description: "Copy another player's starting role and act as that role.",
		passive:     false,
		resolve:     resolveDoppelganger,
	})
	register(RoleSeer, roleInfo{
		name:        "seer",
		display:     "Seer",
		faction:     FactionVillage,
		description: "Look at one player's role, or at two of the ground roles.",
		passive:     false,
		resolve:     resolveSeer,
	})
	register(RoleMason, roleInfo{
		name:        "mason",
		display:     "Mason",
		faction:     FactionVillage,
		description: "Wake and see the other mason.",
		passive:     true,
		resolve:     resolveMason,
	})
	register(RoleRobber, roleInfo{
		name:        "robber",
		display:     "Robber",
		faction:     FactionVillage,
		description: "Swap your role with another player's and look at your new role.",
		passive:     false,
		resolve:     resolveRobber,
	})
	register(RoleTroublemaker, roleInfo{
		name:        "troublemaker",
		display:     "Troublemaker",
		faction:     FactionVillage,
		description: "Swap the roles of two other players without looking at them.",
		passive:     false,
		resolve:     resolveTroublemaker,
	})
	register(RoleDrunk, roleInfo{
		name:        "drunk",
		display:     "Drunk",
		faction:     FactionVillage,
		description: "Swap your role with a ground role without looking at it.",
		passive:     false,
		resolve:     resolveDrunk,
	})
	register(RoleInsomniac, roleInfo{
		name:        "insomniac",
		display:     "Insomniac",
		faction:     FactionVillage,
		description: "At the end of the night, check whether your role changed.",
		passive:     true,
		resolve:     resolveInsomniac,
	})
	register(RoleJoker, roleInfo{
		name:        "joker",
		display:     "Joker",
		faction:     FactionJoker,
		description: "Peek at one ground role. You win alone if the village eliminates you.",
		passive:     false,
		resolve:     resolveJoker,
	})
}

// RoleRef is a role identity as reported to clients.
type RoleRef struct {
	ID      RoleID  `json:"id"`
	Name    string  `json:"name"`
	Faction Faction `json:"faction"`
}

func refOf(r RoleID) RoleRef {
	return RoleRef{ID: r, Name: r.DisplayName(), Faction: r.Faction()}
}
