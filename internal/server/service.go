package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/moonhowl/onenight/internal/game"
	"github.com/moonhowl/onenight/internal/joincode"
	"github.com/moonhowl/onenight/internal/randutil"
)

// managedGame wraps one session with the lock that serialises access to it.
// Sessions are lock-free single-writer state machines; this mutex is what
// makes that safe under concurrent WebSocket handlers.
type managedGame struct {
	mu           sync.Mutex
	session      *game.Session
	discussTimer *quartz.Timer
}

// gameEventSubscriber forwards session events to the connected clients.
// Events with a recipient go to that player only; the rest go to the room.
type gameEventSubscriber struct {
	code   string
	server *Server
	logger *log.Logger
}

// OnEvent implements the game.Subscriber interface
func (es *gameEventSubscriber) OnEvent(event game.Event) {
	msg, err := EventMessage(event)
	if err != nil {
		es.logger.Error("Failed to convert event", "type", event.EventType(), "error", err)
		return
	}

	if recipient := event.Recipient(); recipient != "" {
		if err := es.server.SendToPlayer(recipient, msg); err != nil {
			es.logger.Debug("Failed to deliver private event", "type", event.EventType(), "error", err)
		}
		return
	}
	es.server.BroadcastToGame(es.code, msg)
}

// GameService manages the game sessions: creation by join code, routing of
// player commands, the discussion countdown and disposal of finished games.
type GameService struct {
	games      map[string]*managedGame // join code -> managed session
	server     *Server
	codes      *joincode.Generator
	clock      quartz.Clock
	logger     *log.Logger
	gameConfig game.Config
	sessionTTL time.Duration
	seed       int64
	created    int64
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewGameService creates a game service and starts its background sweep of
// finished sessions. A non-zero seed makes every session's shuffle
// deterministic; zero seeds from the clock.
func NewGameService(server *Server, gameConfig game.Config, sessionTTL time.Duration, seed int64, clock quartz.Clock, logger *log.Logger) *GameService {
	ctx, cancel := context.WithCancel(context.Background())

	gs := &GameService{
		games:      make(map[string]*managedGame),
		server:     server,
		codes:      joincode.NewGenerator(nil),
		clock:      clock,
		logger:     logger.WithPrefix("game-service"),
		gameConfig: gameConfig,
		sessionTTL: sessionTTL,
		seed:       seed,
		ctx:        ctx,
		cancel:     cancel,
	}

	go func() {
		_ = clock.TickerFunc(ctx, time.Minute, func() error {
			gs.sweepFinished()
			return nil
		}, "session-sweep").Wait()
	}()

	return gs
}

// Stop cancels the background sweeper and any pending discussion timers.
func (gs *GameService) Stop() {
	gs.cancel()

	gs.mu.Lock()
	defer gs.mu.Unlock()
	for _, mg := range gs.games {
		mg.mu.Lock()
		if mg.discussTimer != nil {
			mg.discussTimer.Stop()
			mg.discussTimer = nil
		}
		mg.mu.Unlock()
	}
}

// CreateGame creates a new session and joins the creator to it. Returns the
// join code and the creator's player record.
func (gs *GameService) CreateGame(playerName string) (string, *game.Player, error) {
	gs.mu.Lock()

	var code string
	for {
		code = gs.codes.Generate()
		if _, taken := gs.games[code]; !taken {
			break
		}
	}

	gs.created++
	rng := randutil.NewFromTime()
	if gs.seed != 0 {
		rng = randutil.New(gs.seed + gs.created)
	}

	session := game.NewSession(code, gs.gameConfig, rng, gs.clock, gs.logger)
	mg := &managedGame{session: session}
	session.Events().Subscribe(&gameEventSubscriber{
		code:   code,
		server: gs.server,
		logger: gs.logger.With("code", code),
	})
	session.Events().Subscribe(&discussionWatcher{code: code, game: mg, service: gs})

	gs.games[code] = mg
	gs.mu.Unlock()

	gs.logger.Info("Created game", "code", code, "creator", playerName)

	mg.mu.Lock()
	player, err := session.Join(playerName)
	mg.mu.Unlock()
	if err != nil {
		gs.remove(code)
		return "", nil, err
	}
	return code, player, nil
}

// JoinGame adds a player to an existing session by join code. The code is
// normalised first so transcription slips don't bounce players.
func (gs *GameService) JoinGame(code, playerName string) (string, *game.Player, error) {
	code = joincode.Normalize(code)
	if err := joincode.Validate(code); err != nil {
		return "", nil, err
	}

	mg := gs.lookup(code)
	if mg == nil {
		return "", nil, fmt.Errorf("game not found: %s", code)
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()
	player, err := mg.session.Join(playerName)
	if err != nil {
		return "", nil, err
	}
	return code, player, nil
}

// LeaveGame removes a player from a session.
func (gs *GameService) LeaveGame(code, playerID string) error {
	mg := gs.lookup(code)
	if mg == nil {
		return fmt.Errorf("game not found: %s", code)
	}

	mg.mu.Lock()
	err := mg.session.Leave(playerID)
	empty := err == nil && mg.session.Phase() == game.PhaseWaiting && mg.session.PlayerCount() == 0
	mg.mu.Unlock()
	if err != nil {
		return err
	}

	// An empty lobby has nothing left to wait for. Removal takes the
	// service lock, so it happens after the session lock is released.
	if empty {
		gs.remove(code)
	}
	return nil
}

// ListGames returns the joinable view of every session.
func (gs *GameService) ListGames() []GameInfo {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	var games []GameInfo
	for code, mg := range gs.games {
		mg.mu.Lock()
		games = append(games, GameInfo{
			Code:        code,
			Phase:       mg.session.Phase().String(),
			PlayerCount: mg.session.PlayerCount(),
			Joinable:    mg.session.Joinable(),
		})
		mg.mu.Unlock()
	}
	return games
}

// GamePlayers returns the roster of a session, or nil if it doesn't exist.
func (gs *GameService) GamePlayers(code string) []game.PlayerRef {
	mg := gs.lookup(code)
	if mg == nil {
		return nil
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()
	return mg.session.Players()
}

// StartGame deals roles and begins the role-reveal phase.
func (gs *GameService) StartGame(code string) error {
	return gs.withSession(code, func(s *game.Session) error {
		return s.Start()
	})
}

// ConfirmRole records that a player has seen their dealt role.
func (gs *GameService) ConfirmRole(code, playerID string) error {
	return gs.withSession(code, func(s *game.Session) error {
		return s.ConfirmRoleSeen(playerID)
	})
}

// NightAction submits a player's night action.
func (gs *GameService) NightAction(code, playerID string, act game.Action) error {
	return gs.withSession(code, func(s *game.Session) error {
		_, err := s.SubmitNightAction(playerID, act)
		return err
	})
}

// CastVote records a player's vote.
func (gs *GameService) CastVote(code, playerID, targetID string) error {
	return gs.withSession(code, func(s *game.Session) error {
		return s.CastVote(playerID, targetID)
	})
}

// SkipToVote ends the discussion early and cancels its countdown.
func (gs *GameService) SkipToVote(code, playerID string) error {
	mg := gs.lookup(code)
	if mg == nil {
		return fmt.Errorf("game not found: %s", code)
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()
	if err := mg.session.SkipToVote(playerID); err != nil {
		return err
	}
	if mg.discussTimer != nil {
		mg.discussTimer.Stop()
		mg.discussTimer = nil
	}
	return nil
}

// RestartGame re-deals a finished session with the same roster.
func (gs *GameService) RestartGame(code string) error {
	return gs.withSession(code, func(s *game.Session) error {
		return s.Restart()
	})
}

// lookup returns the managed session for a code, or nil.
func (gs *GameService) lookup(code string) *managedGame {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.games[code]
}

// withSession runs fn with the session's lock held.
func (gs *GameService) withSession(code string, fn func(s *game.Session) error) error {
	mg := gs.lookup(code)
	if mg == nil {
		return fmt.Errorf("game not found: %s", code)
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()
	return fn(mg.session)
}

func (gs *GameService) remove(code string) {
	gs.mu.Lock()
	delete(gs.games, code)
	gs.mu.Unlock()
	gs.logger.Info("Removed game", "code", code)
}

// armDiscussionTimer schedules the transition to voting. Called from the
// event subscriber with the session lock already held, so the callback must
// reacquire it. Nothing here may touch gs.mu: the sweeper takes gs.mu before
// the session lock.
func (gs *GameService) armDiscussionTimer(code string, mg *managedGame, d time.Duration) {
	mg.discussTimer = gs.clock.AfterFunc(d, func() {
		mg.mu.Lock()
		defer mg.mu.Unlock()
		mg.discussTimer = nil
		if err := mg.session.EndDiscussion(); err != nil {
			// Someone skipped to the vote before the countdown fired.
			gs.logger.Debug("Discussion countdown no-op", "code", code, "error", err)
		}
	})
}

// sweepFinished disposes of sessions that ended more than sessionTTL ago.
func (gs *GameService) sweepFinished() {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	now := gs.clock.Now()
	for code, mg := range gs.games {
		mg.mu.Lock()
		finished := mg.session.FinishedAt()
		mg.mu.Unlock()
		if !finished.IsZero() && now.Sub(finished) >= gs.sessionTTL {
			delete(gs.games, code)
			gs.logger.Info("Swept finished game", "code", code, "endedAgo", now.Sub(finished))
		}
	}
}

// discussionWatcher arms the discussion countdown when the session announces
// the discussion phase. It runs on the same goroutine as the session
// operation that emitted the event, with the session lock held; it carries
// its managed game directly so no service-map lookup is needed from under
// that lock.
type discussionWatcher struct {
	code    string
	game    *managedGame
	service *GameService
}

// OnEvent implements the game.Subscriber interface
func (dw *discussionWatcher) OnEvent(event game.Event) {
	if e, ok := event.(game.DiscussionStartedEvent); ok {
		dw.service.armDiscussionTimer(dw.code, dw.game, e.Duration)
	}
}
