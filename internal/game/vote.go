package game

// AbstainTargetID is the sentinel vote target meaning "no player": the voter
// claims every werewolf is on the ground.
const AbstainTargetID = "abstain"

// VoteTally accumulates at most one vote per player. A second vote from the
// same player is rejected, not overwritten.
type VoteTally struct {
	votes  map[string]string
	voters []string
}

// NewVoteTally creates an empty tally.
func NewVoteTally() *VoteTally {
	return &VoteTally{votes: make(map[string]string)}
}

// Cast records voterID's vote for targetID, which is either a player id or
// AbstainTargetID.
func (t *VoteTally) Cast(voterID, targetID string) error {
	if _, ok := t.votes[voterID]; ok {
		return ErrDuplicateVote
	}
	t.votes[voterID] = targetID
	t.voters = append(t.voters, voterID)
	return nil
}

// Count returns the number of votes cast so far.
func (t *VoteTally) Count() int { return len(t.votes) }

// Reset clears the tally for a fresh round.
func (t *VoteTally) Reset() {
	t.votes = make(map[string]string)
	t.voters = nil
}

// Leaders returns the target(s) holding the maximum vote count. Abstentions
// count as votes for the abstain target.
func (t *VoteTally) Leaders() []string {
	counts := make(map[string]int)
	for _, target := range t.votes {
		counts[target]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}

	var leaders []string
	for target, n := range counts {
		if n == max {
			leaders = append(leaders, target)
		}
	}
	return leaders
}

// Records returns every vote in cast order, for the end-of-game reveal.
func (t *VoteTally) Records(lookup func(id string) (*Player, error)) []VoteRecord {
	records := make([]VoteRecord, 0, len(t.voters))
	for _, voterID := range t.voters {
		voter, err := lookup(voterID)
		if err != nil {
			continue
		}
		records = append(records, VoteRecord{Voter: voter.Ref(), Target: t.votes[voterID]})
	}
	return records
}

// GameResult is the computed outcome of a finished game.
type GameResult struct {
	Winner     Faction        `json:"winner"`
	Tied       bool           `json:"tied"`
	Eliminated *PlayerRef     `json:"eliminated,omitempty"`
	Votes      []VoteRecord   `json:"votes"`
	Reveal     []PlayerReveal `json:"reveal"`
}

// EvaluateWinner maps the eliminated player's effective role to the winning
// faction. eliminated is nil when no single player held the most votes, in
// which case the tie policy applies.
//
// The mapping is indirect by design: eliminating the minion is still a
// werewolf win, eliminating the joker hands the game to the joker alone, and
// eliminating anybody harmless means the village failed to find a wolf.
func EvaluateWinner(eliminated *RoleID) Faction {
	if eliminated == nil {
		// Tie policy: when every candidate is tied, including the
		// everyone-abstained case, the village wins by default. This is a
		// deliberate rule carried over from the original game, not a fallback.
		return FactionVillage
	}

	switch {
	case *eliminated == RoleMinion:
		return FactionWerewolf
	case *eliminated == RoleJoker:
		return FactionJoker
	case eliminated.Faction() == FactionWerewolf:
		return FactionVillage
	default:
		return FactionWerewolf
	}
}
