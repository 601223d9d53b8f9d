package game

import "testing"

func TestWerewolfSeesAllies(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleWerewolf, RoleWerewolf, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	result, err := s.SubmitNightAction(players[0].ID, NoTarget{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Players) != 1 || result.Players[0].ID != players[1].ID {
		t.Errorf("allies: got %+v, want just %s", result.Players, players[1].ID)
	}
	if len(result.Grounds) != 0 {
		t.Errorf("paired wolf got a ground peek: %v", result.Grounds)
	}
}

func TestLoneWerewolfPeeksGround(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleWerewolf, RoleSeer, RoleRobber},
		[]RoleID{RoleMason, RoleDrunk, RoleJoker})

	result, err := s.SubmitNightAction(players[0].ID, NoTarget{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Players) != 0 {
		t.Errorf("lone wolf saw allies: %+v", result.Players)
	}
	if len(result.Grounds) != 1 || len(result.Roles) != 1 {
		t.Fatalf("lone wolf peek: grounds %v roles %v", result.Grounds, result.Roles)
	}
	g := result.Grounds[0]
	if result.Roles[0].ID != s.GroundRole(g) {
		t.Errorf("peeked role: got %v, want %v", result.Roles[0].ID, s.GroundRole(g))
	}
}

func TestMinionSeesWolves(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleMinion, RoleWerewolf, RoleWerewolf},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	// Wolves act first.
	for _, p := range players[1:] {
		if _, err := s.SubmitNightAction(p.ID, NoTarget{}); err != nil {
			t.Fatal(err)
		}
	}

	result, err := s.SubmitNightAction(players[0].ID, NoTarget{})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Players) != 2 {
		t.Errorf("minion saw %d wolves, want 2", len(result.Players))
	}
}

func TestSeerPeeks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		act     func(players []*Player) Action
		wantErr error
	}{
		{
			name: "one player",
			act: func(players []*Player) Action {
				return SeerPeek{PlayerID: players[1].ID}
			},
		},
		{
			name: "two grounds",
			act: func(players []*Player) Action {
				return SeerPeek{Grounds: []int{0, 2}}
			},
		},
		{
			name: "self peek rejected",
			act: func(players []*Player) Action {
				return SeerPeek{PlayerID: players[0].ID}
			},
			wantErr: ErrInvalidTarget,
		},
		{
			name: "single ground rejected",
			act: func(players []*Player) Action {
				return SeerPeek{Grounds: []int{0}}
			},
			wantErr: ErrInvalidTarget,
		},
		{
			name: "duplicate grounds rejected",
			act: func(players []*Player) Action {
				return SeerPeek{Grounds: []int{1, 1}}
			},
			wantErr: ErrInvalidTarget,
		},
		{
			name: "player and grounds together rejected",
			act: func(players []*Player) Action {
				return SeerPeek{PlayerID: players[1].ID, Grounds: []int{0, 1}}
			},
			wantErr: ErrInvalidTarget,
		},
		{
			name: "wrong payload shape rejected",
			act: func(players []*Player) Action {
				return NoTarget{}
			},
			wantErr: ErrInvalidAction,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, players := newFixture(t,
				[]RoleID{RoleSeer, RoleWerewolf, RoleRobber},
				[]RoleID{RoleMason, RoleMason, RoleJoker})

			// Werewolf slot precedes the seer's.
			if _, err := s.SubmitNightAction(players[1].ID, NoTarget{}); err != nil {
				t.Fatal(err)
			}

			result, err := s.SubmitNightAction(players[0].ID, tt.act(players))
			if err != tt.wantErr {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(result.Roles) == 0 {
				t.Error("successful peek revealed no roles")
			}
		})
	}
}

func TestSeerPeekRevealsCurrentRole(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleSeer, RoleWerewolf, RoleRobber},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	if _, err := s.SubmitNightAction(players[1].ID, NoTarget{}); err != nil {
		t.Fatal(err)
	}

	result, err := s.SubmitNightAction(players[0].ID, SeerPeek{PlayerID: players[1].ID})
	if err != nil {
		t.Fatal(err)
	}
	if result.Roles[0].ID != RoleWerewolf {
		t.Errorf("peeked role: got %v, want werewolf", result.Roles[0].ID)
	}
}

func TestRobberSwaps(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleWerewolf, RoleRobber, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	if _, err := s.SubmitNightAction(players[0].ID, NoTarget{}); err != nil {
		t.Fatal(err)
	}
	// Seer slot precedes the robber's.
	if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{Grounds: []int{0, 1}}); err != nil {
		t.Fatal(err)
	}

	result, err := s.SubmitNightAction(players[1].ID, TargetPlayer{PlayerID: players[0].ID})
	if err != nil {
		t.Fatal(err)
	}
	if result.Roles[0].ID != RoleWerewolf {
		t.Errorf("robber learned %v, want werewolf", result.Roles[0].ID)
	}
	if s.RoleAt(players[1].CurrentIdx()) != RoleWerewolf {
		t.Error("robber does not hold the werewolf")
	}
	if s.RoleAt(players[0].CurrentIdx()) != RoleRobber {
		t.Error("target does not hold the robber")
	}
	// Originals never move.
	if s.RoleAt(players[1].OriginalIdx()) != RoleRobber {
		t.Error("robber's original slot moved")
	}

	if _, err := s.SubmitNightAction(players[1].ID, TargetPlayer{PlayerID: players[1].ID}); err != ErrWrongPhase {
		t.Errorf("acting twice: got %v, want ErrWrongPhase", err)
	}
}

func TestRobberRejectsSelf(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleWerewolf, RoleRobber, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	if _, err := s.SubmitNightAction(players[0].ID, NoTarget{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{Grounds: []int{0, 1}}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SubmitNightAction(players[1].ID, TargetPlayer{PlayerID: players[1].ID}); err != ErrInvalidTarget {
		t.Errorf("self rob: got %v, want ErrInvalidTarget", err)
	}
	// A rejected action leaves the turn open.
	if !s.queue.Expects(players[1].ID) {
		t.Error("failed action consumed the turn")
	}
}

func TestTroublemakerSwapsOthers(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleWerewolf, RoleTroublemaker, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	if _, err := s.SubmitNightAction(players[0].ID, NoTarget{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{Grounds: []int{0, 1}}); err != nil {
		t.Fatal(err)
	}

	result, err := s.SubmitNightAction(players[1].ID, TargetPlayers{
		FirstID:  players[0].ID,
		SecondID: players[2].ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Swapped {
		t.Error("swap not confirmed")
	}
	if len(result.Roles) != 0 {
		t.Errorf("troublemaker learned roles: %+v", result.Roles)
	}
	if s.RoleAt(players[0].CurrentIdx()) != RoleSeer {
		t.Error("first target did not receive the seer")
	}
	if s.RoleAt(players[2].CurrentIdx()) != RoleWerewolf {
		t.Error("second target did not receive the werewolf")
	}
}

func TestTroublemakerTargetValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		act  func(players []*Player) Action
	}{
		{"same target twice", func(p []*Player) Action {
			return TargetPlayers{FirstID: p[0].ID, SecondID: p[0].ID}
		}},
		{"includes self", func(p []*Player) Action {
			return TargetPlayers{FirstID: p[1].ID, SecondID: p[0].ID}
		}},
		{"unknown player", func(p []*Player) Action {
			return TargetPlayers{FirstID: p[0].ID, SecondID: "nobody"}
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, players := newFixture(t,
				[]RoleID{RoleWerewolf, RoleTroublemaker, RoleSeer},
				[]RoleID{RoleMason, RoleMason, RoleJoker})

			if _, err := s.SubmitNightAction(players[0].ID, NoTarget{}); err != nil {
				t.Fatal(err)
			}
			if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{Grounds: []int{0, 1}}); err != nil {
				t.Fatal(err)
			}

			if _, err := s.SubmitNightAction(players[1].ID, tt.act(players)); err != ErrInvalidTarget {
				t.Errorf("err: got %v, want ErrInvalidTarget", err)
			}
		})
	}
}

func TestDrunkSwapsBlind(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleWerewolf, RoleDrunk, RoleSeer},
		[]RoleID{RoleMason, RoleTroublemaker, RoleJoker})

	if _, err := s.SubmitNightAction(players[0].ID, NoTarget{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{PlayerID: players[0].ID}); err != nil {
		t.Fatal(err)
	}

	result, err := s.SubmitNightAction(players[1].ID, TargetGround{Ground: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Swapped {
		t.Error("swap not confirmed")
	}
	if len(result.Roles) != 0 {
		t.Errorf("drunk learned roles: %+v", result.Roles)
	}
	if s.RoleAt(players[1].CurrentIdx()) != RoleTroublemaker {
		t.Error("drunk does not hold the ground role")
	}
	if s.GroundRole(1) != RoleDrunk {
		t.Error("ground slot does not hold the drunk")
	}

	if _, err := s.SubmitNightAction(players[1].ID, TargetGround{Ground: 5}); err != ErrWrongPhase {
		t.Errorf("post-action submission: got %v, want ErrWrongPhase", err)
	}
}

func TestInsomniacReportsChange(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleRobber, RoleInsomniac, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{Grounds: []int{0, 1}}); err != nil {
		t.Fatal(err)
	}
	// The robber steals the insomniac's role.
	if _, err := s.SubmitNightAction(players[0].ID, TargetPlayer{PlayerID: players[1].ID}); err != nil {
		t.Fatal(err)
	}

	result, err := s.SubmitNightAction(players[1].ID, NoTarget{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Changed {
		t.Error("insomniac did not notice the swap")
	}
	if result.Roles[0].ID != RoleRobber {
		t.Errorf("insomniac holds %v, want robber", result.Roles[0].ID)
	}
}

func TestInsomniacUnchanged(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleWerewolf, RoleInsomniac, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	if _, err := s.SubmitNightAction(players[0].ID, NoTarget{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{Grounds: []int{0, 1}}); err != nil {
		t.Fatal(err)
	}

	result, err := s.SubmitNightAction(players[1].ID, NoTarget{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("insomniac reported a change that never happened")
	}
	if result.Roles[0].ID != RoleInsomniac {
		t.Errorf("insomniac holds %v, want insomniac", result.Roles[0].ID)
	}
}

func TestDoppelgangerCopiesPassiveRole(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleDoppelganger, RoleMason, RoleMason},
		[]RoleID{RoleWerewolf, RoleSeer, RoleJoker})

	result, err := s.SubmitNightAction(players[0].ID, TargetPlayer{PlayerID: players[1].ID})
	if err != nil {
		t.Fatal(err)
	}
	if result.Roles[0].ID != RoleMason {
		t.Errorf("copied role: got %v, want mason", result.Roles[0].ID)
	}
	if result.NeedsSecondAction {
		t.Error("passive copy demanded a second action")
	}
	if result.Auto == nil {
		t.Fatal("passive copy did not auto-resolve")
	}
	if result.Auto.Role != RoleMason {
		t.Errorf("auto result role: got %v, want mason", result.Auto.Role)
	}
	// The mason peek sees the two real masons.
	if len(result.Auto.Players) != 2 {
		t.Errorf("copied mason saw %d peers, want 2", len(result.Auto.Players))
	}
	if s.copied[players[0].ID] != RoleMason {
		t.Error("copy not recorded")
	}
}

func TestDoppelgangerCopiesActiveRole(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleDoppelganger, RoleRobber, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	result, err := s.SubmitNightAction(players[0].ID, TargetPlayer{PlayerID: players[1].ID})
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsSecondAction || result.Second == nil {
		t.Fatal("active copy did not demand a second action")
	}
	if result.Second.Role != RoleRobber {
		t.Errorf("second action role: got %v, want robber", result.Second.Role)
	}
	if !s.queue.Deferred(players[0].ID) {
		t.Fatal("slot completed with the follow-up still owed")
	}

	// The follow-up resolves as the copied role.
	second, err := s.SubmitNightAction(players[0].ID, TargetPlayer{PlayerID: players[2].ID})
	if err != nil {
		t.Fatal(err)
	}
	if second.Role != RoleRobber {
		t.Errorf("follow-up resolved as %v, want robber", second.Role)
	}
	if s.RoleAt(players[0].CurrentIdx()) != RoleSeer {
		t.Error("copied robber did not take the target's role")
	}
	if s.queue.Deferred(players[0].ID) {
		t.Error("deferral not cleared by the follow-up")
	}
}

func TestDoppelgangerCopiesOriginalNotCurrent(t *testing.T) {
	t.Parallel()

	// The robber acts before the doppelganger here only via fixture ordering
	// manipulation: give the robber a completed swap by hand, then check the
	// doppelganger copies the target's dealt role, not the stolen one.
	s, players := newFixture(t,
		[]RoleID{RoleDoppelganger, RoleMason, RoleMason},
		[]RoleID{RoleWerewolf, RoleSeer, RoleJoker})

	// Hand the target a different current role.
	s.swapWithGround(players[1], 0)

	result, err := s.SubmitNightAction(players[0].ID, TargetPlayer{PlayerID: players[1].ID})
	if err != nil {
		t.Fatal(err)
	}
	if result.Roles[0].ID != RoleMason {
		t.Errorf("copied role: got %v, want the dealt mason", result.Roles[0].ID)
	}
}

func TestDoppelgangerRejectsSelf(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleDoppelganger, RoleMason, RoleMason},
		[]RoleID{RoleWerewolf, RoleSeer, RoleJoker})

	if _, err := s.SubmitNightAction(players[0].ID, TargetPlayer{PlayerID: players[0].ID}); err != ErrInvalidTarget {
		t.Errorf("self copy: got %v, want ErrInvalidTarget", err)
	}
}

func TestJokerGroundPeek(t *testing.T) {
	t.Parallel()

	// The joker never wakes on its own turn; its resolver is reachable only
	// through a doppelganger copy.
	s, players := newFixture(t,
		[]RoleID{RoleDoppelganger, RoleJoker, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleWerewolf})

	result, err := s.SubmitNightAction(players[0].ID, TargetPlayer{PlayerID: players[1].ID})
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsSecondAction {
		t.Fatal("copied joker should need a ground peek")
	}

	second, err := s.SubmitNightAction(players[0].ID, TargetGround{Ground: 2})
	if err != nil {
		t.Fatal(err)
	}
	if second.Roles[0].ID != RoleWerewolf {
		t.Errorf("peeked role: got %v, want werewolf", second.Roles[0].ID)
	}
}

func TestInvalidPayloadShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		roles []RoleID
		act   Action
	}{
		{"werewolf with target", []RoleID{RoleWerewolf, RoleSeer, RoleRobber}, TargetPlayer{PlayerID: "x"}},
		{"robber without target", []RoleID{RoleRobber, RoleWerewolf, RoleSeer}, NoTarget{}},
		{"drunk with player target", []RoleID{RoleDrunk, RoleWerewolf, RoleSeer}, TargetPlayer{PlayerID: "x"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, players := newFixture(t, tt.roles,
				[]RoleID{RoleMason, RoleMason, RoleJoker})

			actor := players[0]
			// Clear earlier slots so the actor's turn is open.
			for {
				role, ok := s.queue.Current()
				if !ok || role == tt.roles[0] {
					break
				}
				for _, p := range players {
					if s.queue.Expects(p.ID) {
						if _, err := s.SubmitNightAction(p.ID, chooseAction(t, role, p, players)); err != nil {
							t.Fatal(err)
						}
						break
					}
				}
			}

			if _, err := s.SubmitNightAction(actor.ID, tt.act); err != ErrInvalidAction {
				t.Errorf("err: got %v, want ErrInvalidAction", err)
			}
		})
	}
}

func TestDrunkInvalidGround(t *testing.T) {
	t.Parallel()

	s, players := newFixture(t,
		[]RoleID{RoleDrunk, RoleWerewolf, RoleSeer},
		[]RoleID{RoleMason, RoleMason, RoleJoker})

	if _, err := s.SubmitNightAction(players[1].ID, NoTarget{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitNightAction(players[2].ID, SeerPeek{Grounds: []int{0, 1}}); err != nil {
		t.Fatal(err)
	}

	for _, g := range []int{-1, GroundSize} {
		if _, err := s.SubmitNightAction(players[0].ID, TargetGround{Ground: g}); err != ErrInvalidTarget {
			t.Errorf("ground %d: got %v, want ErrInvalidTarget", g, err)
		}
	}
}
