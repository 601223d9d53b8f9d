package game

// Action is a typed night-action payload. Each role's resolver accepts
// exactly one payload shape and rejects everything else, so a client can
// never smuggle a seer peek through a drunk swap.
type Action interface {
	isAction()
}

// NoTarget is the payload for roles that act without choosing anything:
// werewolf, minion, mason, insomniac.
type NoTarget struct{}

// TargetPlayer names a single other player: robber, doppelganger.
type TargetPlayer struct {
	PlayerID string
}

// TargetPlayers names two distinct other players: troublemaker.
type TargetPlayers struct {
	FirstID  string
	SecondID string
}

// TargetGround names one of the three ground slots: drunk, joker.
type TargetGround struct {
	Ground int
}

// SeerPeek is the seer's choice: either one player, or two ground slots.
// Exactly one of the two forms must be used.
type SeerPeek struct {
	PlayerID string
	Grounds  []int
}

func (NoTarget) isAction()      {}
func (TargetPlayer) isAction()  {}
func (TargetPlayers) isAction() {}
func (TargetGround) isAction()  {}
func (SeerPeek) isAction()      {}

// SecondAction carries what a client needs to drive the follow-up action of a
// copied active role: the role to act as plus the legal targets.
type SecondAction struct {
	Role    RoleID      `json:"role"`
	Players []PlayerRef `json:"players,omitempty"`
	Grounds []int       `json:"grounds,omitempty"`
}

// ActionResult is the private outcome of one resolved night action. Only the
// fields relevant to the acting role are populated.
type ActionResult struct {
	Role              RoleID        `json:"role"`
	Players           []PlayerRef   `json:"players,omitempty"`
	Roles             []RoleRef     `json:"roles,omitempty"`
	Grounds           []int         `json:"grounds,omitempty"`
	Swapped           bool          `json:"swapped,omitempty"`
	Changed           bool          `json:"changed,omitempty"`
	NeedsSecondAction bool          `json:"needsSecondAction,omitempty"`
	Second            *SecondAction `json:"second,omitempty"`
	Auto              *ActionResult `json:"auto,omitempty"`
}

// resolveFunc applies one role's night rule. Resolvers validate the payload
// and targets fully before touching session state, so a failed action leaves
// no partial mutation behind.
type resolveFunc func(s *Session, actor *Player, act Action) (*ActionResult, error)

// resolveAs dispatches to the registered resolver for the role.
func resolveAs(role RoleID, s *Session, actor *Player, act Action) (*ActionResult, error) {
	return registry[role].resolve(s, actor, act)
}

// resolveWerewolf reveals the other players currently holding the werewolf
// role. A lone wolf gets a peek at one random ground role instead.
func resolveWerewolf(s *Session, actor *Player, act Action) (*ActionResult, error) {
	if _, ok := act.(NoTarget); !ok {
		return nil, ErrInvalidAction
	}

	allies := s.currentHolders(RoleWerewolf, actor)
	res := &ActionResult{Role: RoleWerewolf, Players: refs(allies)}
	if len(allies) == 0 {
		g := s.rng.IntN(GroundSize)
		res.Grounds = []int{g}
		res.Roles = []RoleRef{refOf(s.GroundRole(g))}
	}
	return res, nil
}

// resolveMinion reveals every player currently holding the werewolf role. The
// list may be empty when all the wolves are on the ground.
func resolveMinion(s *Session, actor *Player, act Action) (*ActionResult, error) {
	if _, ok := act.(NoTarget); !ok {
		return nil, ErrInvalidAction
	}

	wolves := s.currentHolders(RoleWerewolf, actor)
	return &ActionResult{Role: RoleMinion, Players: refs(wolves)}, nil
}

// resolveSeer peeks at one other player's current role, or at two distinct
// ground roles.
func resolveSeer(s *Session, actor *Player, act Action) (*ActionResult, error) {
	peek, ok := act.(SeerPeek)
	if !ok {
		return nil, ErrInvalidAction
	}

	switch {
	case peek.PlayerID != "" && len(peek.Grounds) == 0:
		if peek.PlayerID == actor.ID {
			return nil, ErrInvalidTarget
		}
		target, err := s.roster.ByID(peek.PlayerID)
		if err != nil {
			return nil, ErrInvalidTarget
		}
		role := s.RoleAt(target.CurrentIdx())
		return &ActionResult{
			Role:    RoleSeer,
			Players: []PlayerRef{target.Ref()},
			Roles:   []RoleRef{refOf(role)},
		}, nil

	case peek.PlayerID == "" && len(peek.Grounds) == 2:
		a, b := peek.Grounds[0], peek.Grounds[1]
		if a == b || !validGround(a) || !validGround(b) {
			return nil, ErrInvalidTarget
		}
		return &ActionResult{
			Role:    RoleSeer,
			Grounds: []int{a, b},
			Roles:   []RoleRef{refOf(s.GroundRole(a)), refOf(s.GroundRole(b))},
		}, nil

	default:
		return nil, ErrInvalidTarget
	}
}

// resolveMason reveals the other players currently holding the mason role.
// The list may be empty when the second mason is on the ground.
func resolveMason(s *Session, actor *Player, act Action) (*ActionResult, error) {
	if _, ok := act.(NoTarget); !ok {
		return nil, ErrInvalidAction
	}

	peers := s.currentHolders(RoleMason, actor)
	return &ActionResult{Role: RoleMason, Players: refs(peers)}, nil
}

// resolveRobber swaps the actor's current role with the target's, and the
// actor learns what they now hold.
func resolveRobber(s *Session, actor *Player, act Action) (*ActionResult, error) {
	payload, ok := act.(TargetPlayer)
	if !ok {
		return nil, ErrInvalidAction
	}
	if payload.PlayerID == actor.ID {
		return nil, ErrInvalidTarget
	}
	target, err := s.roster.ByID(payload.PlayerID)
	if err != nil {
		return nil, ErrInvalidTarget
	}

	s.swapPlayers(actor, target)
	return &ActionResult{
		Role:    RoleRobber,
		Players: []PlayerRef{target.Ref()},
		Roles:   []RoleRef{refOf(s.RoleAt(actor.CurrentIdx()))},
	}, nil
}

// resolveTroublemaker swaps the current roles of two other players. The actor
// learns nothing beyond which two players were swapped.
func resolveTroublemaker(s *Session, actor *Player, act Action) (*ActionResult, error) {
	payload, ok := act.(TargetPlayers)
	if !ok {
		return nil, ErrInvalidAction
	}
	if payload.FirstID == payload.SecondID {
		return nil, ErrInvalidTarget
	}
	if payload.FirstID == actor.ID || payload.SecondID == actor.ID {
		return nil, ErrInvalidTarget
	}
	first, err := s.roster.ByID(payload.FirstID)
	if err != nil {
		return nil, ErrInvalidTarget
	}
	second, err := s.roster.ByID(payload.SecondID)
	if err != nil {
		return nil, ErrInvalidTarget
	}

	s.swapPlayers(first, second)
	return &ActionResult{
		Role:    RoleTroublemaker,
		Players: []PlayerRef{first.Ref(), second.Ref()},
		Swapped: true,
	}, nil
}

// resolveDrunk swaps the actor's current role with the named ground role,
// blind: the result confirms the swap but names no role.
func resolveDrunk(s *Session, actor *Player, act Action) (*ActionResult, error) {
	payload, ok := act.(TargetGround)
	if !ok {
		return nil, ErrInvalidAction
	}
	if !validGround(payload.Ground) {
		return nil, ErrInvalidTarget
	}

	s.swapWithGround(actor, payload.Ground)
	return &ActionResult{Role: RoleDrunk, Swapped: true}, nil
}

// resolveDoppelganger copies the target's original role onto the actor. A
// passive copy resolves its effect on the spot; an active copy flags that a
// follow-up action is required and returns the legal targets for it.
func resolveDoppelganger(s *Session, actor *Player, act Action) (*ActionResult, error) {
	payload, ok := act.(TargetPlayer)
	if !ok {
		return nil, ErrInvalidAction
	}
	if payload.PlayerID == actor.ID {
		return nil, ErrInvalidTarget
	}
	target, err := s.roster.ByID(payload.PlayerID)
	if err != nil {
		return nil, ErrInvalidTarget
	}

	copied := s.RoleAt(target.OriginalIdx())
	s.copied[actor.ID] = copied

	res := &ActionResult{
		Role:  RoleDoppelganger,
		Roles: []RoleRef{refOf(copied)},
	}
	if copied.Passive() {
		auto, err := resolveAs(copied, s, actor, NoTarget{})
		if err != nil {
			return nil, err
		}
		res.Auto = auto
		return res, nil
	}

	res.NeedsSecondAction = true
	res.Second = &SecondAction{
		Role:    copied,
		Players: refs(s.othersOf(actor)),
		Grounds: groundSlots(),
	}
	return res, nil
}

// resolveInsomniac reports the actor's current role and whether it differs
// from the role they were dealt.
func resolveInsomniac(s *Session, actor *Player, act Action) (*ActionResult, error) {
	if _, ok := act.(NoTarget); !ok {
		return nil, ErrInvalidAction
	}

	current := s.RoleAt(actor.CurrentIdx())
	original := s.RoleAt(actor.OriginalIdx())
	return &ActionResult{
		Role:    RoleInsomniac,
		Roles:   []RoleRef{refOf(current)},
		Changed: current != original,
	}, nil
}

// resolveJoker peeks at one ground role.
func resolveJoker(s *Session, actor *Player, act Action) (*ActionResult, error) {
	payload, ok := act.(TargetGround)
	if !ok {
		return nil, ErrInvalidAction
	}
	if !validGround(payload.Ground) {
		return nil, ErrInvalidTarget
	}

	return &ActionResult{
		Role:    RoleJoker,
		Grounds: []int{payload.Ground},
		Roles:   []RoleRef{refOf(s.GroundRole(payload.Ground))},
	}, nil
}

func validGround(g int) bool {
	return g >= 0 && g < GroundSize
}

func groundSlots() []int {
	slots := make([]int, GroundSize)
	for i := range slots {
		slots[i] = i
	}
	return slots
}

func refs(players []*Player) []PlayerRef {
	out := make([]PlayerRef, len(players))
	for i, p := range players {
		out[i] = p.Ref()
	}
	return out
}
