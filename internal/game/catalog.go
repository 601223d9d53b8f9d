package game

import "fmt"

// GroundSize is the number of face-down ground roles every session keeps
// beside the players.
const GroundSize = 3

// Distribution holds the number of descriptors of each role that a session
// puts in play for a given player count.
type Distribution map[RoleID]int

// NewDistribution returns the role counts for a game of the given size. Two
// werewolves up to eight players, three from nine on. Every other role appears
// once, except the masons who come as a pair.
func NewDistribution(playerCount int) Distribution {
	wolves := 2
	if playerCount >= 9 {
		wolves = 3
	}

	return Distribution{
		RoleWerewolf:     wolves,
		RoleMinion:       1,
		RoleSeer:         1,
		RoleRobber:       1,
		RoleTroublemaker: 1,
		RoleDrunk:        1,
		RoleInsomniac:    1,
		RoleMason:        2,
		RoleDoppelganger: 1,
		RoleJoker:        1,
	}
}

// Total returns the number of descriptors in the distribution.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// poolOrder is the priority in which roles enter the pool. Sessions truncate
// the pool to playerCount+GroundSize descriptors, so roles earlier in this
// list are always dealt before the optional tail.
var poolOrder = []RoleID{
	RoleWerewolf,
	RoleMinion,
	RoleSeer,
	RoleRobber,
	RoleTroublemaker,
	RoleDrunk,
	RoleInsomniac,
	RoleMason,
	RoleDoppelganger,
	RoleJoker,
}

// BuildPool expands a distribution into the ordered list of role identities
// for a session. Inconsistent counts are a programmer error, not a runtime
// condition, so they panic.
func BuildPool(dist Distribution) []RoleID {
	for id, n := range dist {
		if id < 0 || id >= numRoles {
			panic(fmt.Sprintf("unknown role %d in distribution", id))
		}
		if n < 0 {
			panic(fmt.Sprintf("negative count %d for role %s", n, id))
		}
	}

	pool := make([]RoleID, 0, dist.Total())
	for _, id := range poolOrder {
		for i := 0; i < dist[id]; i++ {
			pool = append(pool, id)
		}
	}
	return pool
}
