package game

// nightOrder is the fixed global ordering of role turns. The joker never
// wakes on its own turn and is absent here; roles not dealt in a given
// session are filtered out when the queue is built.
var nightOrder = []RoleID{
	RoleWerewolf,
	RoleMinion,
	RoleDoppelganger,
	RoleSeer,
	RoleMason,
	RoleRobber,
	RoleTroublemaker,
	RoleDrunk,
	RoleInsomniac,
}

// nightSlot is one stop in the queue: a role plus the players expected to act
// during it. Players act by the role they were dealt, so swaps earlier in the
// night never change who is expected where.
type nightSlot struct {
	role     RoleID
	expected map[string]bool
}

// NightQueue drives the night phase. It advances to the next slot only once
// every expected player in the current slot has fully submitted; this is an
// explicit barrier, not best-effort ordering.
type NightQueue struct {
	slots    []nightSlot
	idx      int
	acted    map[string]bool
	deferred map[string]bool
}

// NewNightQueue builds the queue for the given players. Roles with no holder
// are skipped at construction, which is what makes zero-holder slots advance
// "immediately". Disconnected players owe no turns: a role dealt only to
// absent players gets no slot at all.
func NewNightQueue(players []*Player, roleAt func(idx int) RoleID) *NightQueue {
	holders := make(map[RoleID]map[string]bool)
	for _, p := range players {
		if !p.Connected {
			continue
		}
		role := roleAt(p.OriginalIdx())
		if holders[role] == nil {
			holders[role] = make(map[string]bool)
		}
		holders[role][p.ID] = true
	}

	q := &NightQueue{
		acted:    make(map[string]bool),
		deferred: make(map[string]bool),
	}
	for _, role := range nightOrder {
		if len(holders[role]) == 0 {
			continue
		}
		q.slots = append(q.slots, nightSlot{role: role, expected: holders[role]})
	}
	return q
}

// Current returns the active role. ok is false once the queue is exhausted.
func (q *NightQueue) Current() (role RoleID, ok bool) {
	if q.idx >= len(q.slots) {
		return 0, false
	}
	return q.slots[q.idx].role, true
}

// Expects reports whether the player still owes a submission in the current
// slot, either their first action or a deferred follow-up.
func (q *NightQueue) Expects(playerID string) bool {
	if q.idx >= len(q.slots) {
		return false
	}
	if q.deferred[playerID] {
		return true
	}
	return q.slots[q.idx].expected[playerID] && !q.acted[playerID]
}

// MarkActed records a completed submission for the player.
func (q *NightQueue) MarkActed(playerID string) {
	q.acted[playerID] = true
	delete(q.deferred, playerID)
}

// Defer records that the player's first submission succeeded but a follow-up
// action is still owed. The slot cannot complete while any deferral is open.
func (q *NightQueue) Defer(playerID string) {
	q.deferred[playerID] = true
}

// Deferred reports whether the player owes a follow-up action.
func (q *NightQueue) Deferred(playerID string) bool {
	return q.deferred[playerID]
}

// slotComplete reports whether everyone expected in the current slot is done.
func (q *NightQueue) slotComplete() bool {
	if q.idx >= len(q.slots) {
		return true
	}
	if len(q.deferred) > 0 {
		return false
	}
	for id := range q.slots[q.idx].expected {
		if !q.acted[id] {
			return false
		}
	}
	return true
}

// Advance moves past any completed slots. It returns false once the queue is
// exhausted, which signals the end of the night.
func (q *NightQueue) Advance() bool {
	for q.idx < len(q.slots) && q.slotComplete() {
		q.idx++
	}
	return q.idx < len(q.slots)
}

// Done reports whether every slot has been visited.
func (q *NightQueue) Done() bool {
	return q.idx >= len(q.slots) && len(q.deferred) == 0
}

// Roles returns the roles the queue will visit, in order. Used for turn-order
// reporting and tests.
func (q *NightQueue) Roles() []RoleID {
	roles := make([]RoleID, len(q.slots))
	for i, s := range q.slots {
		roles[i] = s.role
	}
	return roles
}
