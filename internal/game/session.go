package game

import (
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseRoleReveal
	PhaseNight
	PhaseDiscussion
	PhaseVoting
	PhaseEnded
)

// String returns the string representation of a phase.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseRoleReveal:
		return "role_reveal"
	case PhaseNight:
		return "night"
	case PhaseDiscussion:
		return "discussion"
	case PhaseVoting:
		return "voting"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the phase as its string name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// Config holds the per-session game settings.
type Config struct {
	MinPlayers     int
	MaxPlayers     int
	DiscussionTime time.Duration
}

// DefaultConfig returns the standard game settings.
func DefaultConfig() Config {
	return Config{
		MinPlayers:     3,
		MaxPlayers:     10,
		DiscussionTime: 5 * time.Minute,
	}
}

// Session is the state machine for one game: roster, role pool, night queue,
// votes and result. Every operation is synchronous and performs no I/O; the
// transport layer guarantees that no two operations on the same session run
// concurrently, so the session itself holds no locks.
type Session struct {
	code   string
	cfg    Config
	logger *log.Logger
	rng    *rand.Rand
	clock  quartz.Clock
	bus    *EventBus

	phase      Phase
	roster     *Roster
	pool       []RoleID
	ground     [GroundSize]int
	queue      *NightQueue
	tally      *VoteTally
	copied     map[string]RoleID
	confirmed  map[string]bool
	result     *GameResult
	finishedAt time.Time
}

// NewSession creates a session in the waiting phase, identified by its join
// code. The clock only stamps events and the finish time; all timers live in
// the session manager.
func NewSession(code string, cfg Config, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Session {
	return &Session{
		code:      code,
		cfg:       cfg,
		logger:    logger.WithPrefix("session").With("code", code),
		rng:       rng,
		clock:     clock,
		bus:       NewEventBus(),
		phase:     PhaseWaiting,
		roster:    NewRoster(cfg.MaxPlayers),
		tally:     NewVoteTally(),
		copied:    make(map[string]RoleID),
		confirmed: make(map[string]bool),
	}
}

// Code returns the session's join code.
func (s *Session) Code() string { return s.code }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Events returns the session's event bus for transports to subscribe to.
func (s *Session) Events() *EventBus { return s.bus }

// Joinable reports whether new players may still enter.
func (s *Session) Joinable() bool {
	return s.phase == PhaseWaiting && s.roster.Len() < s.cfg.MaxPlayers
}

// Players returns the client-facing view of the roster.
func (s *Session) Players() []PlayerRef {
	return refs(s.roster.Players())
}

// PlayerCount returns the number of players in the session.
func (s *Session) PlayerCount() int { return s.roster.Len() }

// Result returns the computed outcome, or nil while the game is running.
func (s *Session) Result() *GameResult { return s.result }

// FinishedAt returns when the session entered the ended phase; zero until
// then. The session manager uses this for TTL-based disposal.
func (s *Session) FinishedAt() time.Time { return s.finishedAt }

// RoleAt returns the role identity at the given pool index.
func (s *Session) RoleAt(idx int) RoleID { return s.pool[idx] }

// GroundRole returns the role identity currently lying in ground slot g.
func (s *Session) GroundRole(g int) RoleID { return s.pool[s.ground[g]] }

// RolePool returns a copy of the role identities in play.
func (s *Session) RolePool() []RoleID {
	pool := make([]RoleID, len(s.pool))
	copy(pool, s.pool)
	return pool
}

// Join adds a player to the lobby.
func (s *Session) Join(name string) (*Player, error) {
	if s.phase != PhaseWaiting {
		return nil, ErrWrongPhase
	}
	p, err := s.roster.Join(name)
	if err != nil {
		return nil, err
	}

	s.logger.Info("player joined", "player", p.Name, "count", s.roster.Len())
	s.publish(PlayerJoinedEvent{broadcast: s.stamp(), Player: p.Ref(), PlayerCount: s.roster.Len()})
	return p, nil
}

// Leave removes a player from the lobby, or marks them disconnected once
// roles are dealt. Disconnected players no longer count toward any barrier,
// so a departure can complete the confirmation round, a night slot or the
// vote.
func (s *Session) Leave(playerID string) error {
	p, err := s.roster.ByID(playerID)
	if err != nil {
		return err
	}

	if s.phase == PhaseWaiting {
		_ = s.roster.Remove(playerID)
	} else {
		p.Connected = false
	}

	s.logger.Info("player left", "player", p.Name, "phase", s.phase)
	s.publish(PlayerLeftEvent{broadcast: s.stamp(), Player: p.Ref(), PlayerCount: s.roster.ConnectedCount()})

	switch s.phase {
	case PhaseRoleReveal:
		s.checkAllConfirmed()
	case PhaseNight:
		// The leaver's turn is forfeit whether it is open now or still
		// pending in a later slot.
		s.queue.MarkActed(p.ID)
		s.advanceNight()
	case PhaseVoting:
		if s.tally.Count() >= s.roster.ConnectedCount() {
			s.finishVoting()
		}
	}
	return nil
}

// Start deals roles and moves the session into the role-reveal phase.
func (s *Session) Start() error {
	if s.phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if s.roster.Len() < s.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}
	return s.deal()
}

// Restart re-deals a finished game with the same roster.
func (s *Session) Restart() error {
	if s.phase != PhaseEnded {
		return ErrWrongPhase
	}

	s.roster.ResetRoles()
	s.tally.Reset()
	s.copied = make(map[string]RoleID)
	s.confirmed = make(map[string]bool)
	s.queue = nil
	s.result = nil
	s.finishedAt = time.Time{}

	s.logger.Info("restarting game", "players", s.roster.Len())
	return s.deal()
}

// deal builds the role pool for the current roster, shuffles it, assigns one
// role per player and parks the remainder as ground roles. The pool is
// validated before any assignment so a failure cannot leave a half-dealt
// game behind.
func (s *Session) deal() error {
	n := s.roster.Len()
	pool := BuildPool(NewDistribution(n))
	if len(pool) < n+GroundSize {
		return ErrInsufficientRolePool
	}
	pool = pool[:n+GroundSize]
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.pool = pool

	for i, p := range s.roster.Players() {
		s.roster.Assign(p, i)
	}
	for g := 0; g < GroundSize; g++ {
		s.ground[g] = n + g
	}

	s.phase = PhaseRoleReveal
	s.logger.Info("roles dealt", "players", n, "pool", len(pool))
	for _, p := range s.roster.Players() {
		s.publish(RoleAssignedEvent{
			at:     s.clock.Now(),
			Player: p.Ref(),
			Role:   refOf(s.RoleAt(p.OriginalIdx())),
		})
	}
	return nil
}

// ConfirmRoleSeen records that the player has looked at their dealt role.
// The night begins once every connected player has confirmed.
func (s *Session) ConfirmRoleSeen(playerID string) error {
	if s.phase != PhaseRoleReveal {
		return ErrWrongPhase
	}
	p, err := s.roster.ByID(playerID)
	if err != nil {
		return err
	}
	s.confirmed[p.ID] = true

	s.checkAllConfirmed()
	return nil
}

func (s *Session) checkAllConfirmed() {
	for _, p := range s.roster.Players() {
		if p.Connected && !s.confirmed[p.ID] {
			return
		}
	}
	s.startNight()
}

func (s *Session) startNight() {
	s.phase = PhaseNight
	s.queue = NewNightQueue(s.roster.Players(), s.RoleAt)

	s.logger.Info("night started", "turns", len(s.queue.Roles()))
	s.publish(NightStartedEvent{broadcast: s.stamp()})

	if role, ok := s.queue.Current(); ok {
		s.publish(RoleTurnEvent{broadcast: s.stamp(), Role: role})
	} else {
		s.endNight()
	}
}

// SubmitNightAction resolves one night action for the player. Out-of-turn
// submissions are rejected before the payload is even inspected; payload and
// target validation happen before any mutation, so a rejected action has no
// partial effect.
func (s *Session) SubmitNightAction(playerID string, act Action) (*ActionResult, error) {
	if s.phase != PhaseNight {
		return nil, ErrWrongPhase
	}
	p, err := s.roster.ByID(playerID)
	if err != nil {
		return nil, err
	}
	if !s.queue.Expects(p.ID) {
		return nil, ErrWrongPhase
	}

	role := s.RoleAt(p.OriginalIdx())
	if s.queue.Deferred(p.ID) {
		// Follow-up action for a copied active role.
		role = s.copied[p.ID]
	}

	result, err := resolveAs(role, s, p, act)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("night action resolved", "player", p.Name, "role", role)
	s.publish(ActionResultEvent{at: s.clock.Now(), Player: p.Ref(), Result: result})

	if result.NeedsSecondAction {
		s.queue.Defer(p.ID)
	} else {
		s.queue.MarkActed(p.ID)
	}
	s.advanceNight()
	return result, nil
}

func (s *Session) advanceNight() {
	prev, _ := s.queue.Current()
	if !s.queue.Advance() {
		s.endNight()
		return
	}
	if cur, _ := s.queue.Current(); cur != prev {
		s.publish(RoleTurnEvent{broadcast: s.stamp(), Role: cur})
	}
}

func (s *Session) endNight() {
	s.phase = PhaseDiscussion
	s.logger.Info("night over, discussion started", "duration", s.cfg.DiscussionTime)
	s.publish(DiscussionStartedEvent{broadcast: s.stamp(), Duration: s.cfg.DiscussionTime})
}

// EndDiscussion moves the session into the voting phase. Called by the
// session manager when the discussion countdown fires.
func (s *Session) EndDiscussion() error {
	if s.phase != PhaseDiscussion {
		return ErrWrongPhase
	}
	s.phase = PhaseVoting
	s.publish(VotingStartedEvent{broadcast: s.stamp()})
	return nil
}

// SkipToVote ends the discussion early on a player's request.
func (s *Session) SkipToVote(requesterID string) error {
	if _, err := s.roster.ByID(requesterID); err != nil {
		return err
	}
	return s.EndDiscussion()
}

// CastVote records one player's vote for a target player, or for
// AbstainTargetID to claim the werewolves are all on the ground. Voting twice
// is rejected rather than overwritten. Results are computed once the vote
// count reaches the connected player count.
func (s *Session) CastVote(playerID, targetID string) error {
	if s.phase != PhaseVoting {
		return ErrWrongPhase
	}
	voter, err := s.roster.ByID(playerID)
	if err != nil {
		return err
	}
	if targetID != AbstainTargetID {
		if _, err := s.roster.ByID(targetID); err != nil {
			return ErrInvalidTarget
		}
	}

	if err := s.tally.Cast(voter.ID, targetID); err != nil {
		return err
	}

	total := s.roster.ConnectedCount()
	s.logger.Info("vote recorded", "voter", voter.Name, "cast", s.tally.Count(), "total", total)
	s.publish(VoteRecordedEvent{
		broadcast:  s.stamp(),
		Player:     voter.Ref(),
		VotesCast:  s.tally.Count(),
		VotesTotal: total,
	})

	if s.tally.Count() >= total {
		s.finishVoting()
	}
	return nil
}

// finishVoting tallies the votes, applies the elimination mapping and moves
// the session into its terminal phase.
func (s *Session) finishVoting() {
	result := &GameResult{
		Votes:  s.tally.Records(s.roster.ByID),
		Reveal: s.reveal(),
	}

	leaders := s.tally.Leaders()
	if len(leaders) == 1 && leaders[0] != AbstainTargetID {
		eliminated, err := s.roster.ByID(leaders[0])
		if err == nil {
			ref := eliminated.Ref()
			result.Eliminated = &ref
			role := s.effectiveRole(eliminated)
			result.Winner = EvaluateWinner(&role)
		}
	} else {
		result.Tied = true
		result.Winner = EvaluateWinner(nil)
	}

	s.result = result
	s.phase = PhaseEnded
	s.finishedAt = s.clock.Now()

	s.logger.Info("game ended", "winner", result.Winner, "tied", result.Tied)
	s.publish(GameEndedEvent{broadcast: s.stamp(), Result: result})
}

// effectiveRole resolves what a player counts as for the win mapping. A
// player who copied a role and still holds the doppelganger card counts as
// the copy; a doppelganger card swapped onto anyone else is just a villager.
func (s *Session) effectiveRole(p *Player) RoleID {
	role := s.RoleAt(p.CurrentIdx())
	if role == RoleDoppelganger {
		if copied, ok := s.copied[p.ID]; ok {
			return copied
		}
	}
	return role
}

func (s *Session) reveal() []PlayerReveal {
	players := s.roster.Players()
	out := make([]PlayerReveal, len(players))
	for i, p := range players {
		out[i] = PlayerReveal{
			Player:   p.Ref(),
			Original: refOf(s.RoleAt(p.OriginalIdx())),
			Current:  refOf(s.RoleAt(p.CurrentIdx())),
		}
	}
	return out
}

// currentHolders returns the players currently holding the given role,
// excluding the given actor.
func (s *Session) currentHolders(role RoleID, exclude *Player) []*Player {
	var holders []*Player
	for _, p := range s.roster.Players() {
		if p == exclude || !p.Assigned() {
			continue
		}
		if s.RoleAt(p.CurrentIdx()) == role {
			holders = append(holders, p)
		}
	}
	return holders
}

// othersOf returns every player except the given one.
func (s *Session) othersOf(actor *Player) []*Player {
	var others []*Player
	for _, p := range s.roster.Players() {
		if p != actor {
			others = append(others, p)
		}
	}
	return others
}

// swapPlayers exchanges the current roles of two players. An index exchange
// is a bijection on the pool, so roles can never be duplicated or lost.
func (s *Session) swapPlayers(a, b *Player) {
	ai, bi := a.CurrentIdx(), b.CurrentIdx()
	s.roster.SetCurrentIdx(a, bi)
	s.roster.SetCurrentIdx(b, ai)
}

// swapWithGround exchanges a player's current role with ground slot g.
func (s *Session) swapWithGround(p *Player, g int) {
	pi := p.CurrentIdx()
	s.roster.SetCurrentIdx(p, s.ground[g])
	s.ground[g] = pi
}

func (s *Session) stamp() broadcast {
	return broadcast{at: s.clock.Now()}
}

func (s *Session) publish(e Event) {
	s.bus.Publish(e)
}
