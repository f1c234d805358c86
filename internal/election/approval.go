package election

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/mggg/votekit/internal/ballot"
)

// Limited elects the `seats` candidates with the highest k-approval scores.
// The k-approval score of a candidate counts the voters who rank them among
// their top k choices. The whole election is a single round.
type Limited struct {
	state *State
	seats int
	k     int
	rng   *rand.Rand
	done  bool
}

// NewLimited creates a Limited election.
func NewLimited(profile *ballot.PreferenceProfile, seats, k int, opts ...Option) (*Limited, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("seats must be positive, got %d", seats)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	o := buildOptions(opts)
	return &Limited{
		state: NewInitialState(profile),
		seats: seats,
		k:     k,
		rng:   o.rng,
	}, nil
}

// NewBloc elects the seats candidates with the highest seats-approval scores.
func NewBloc(profile *ballot.PreferenceProfile, seats int, opts ...Option) (*Limited, error) {
	return NewLimited(profile, seats, seats, opts...)
}

// NewSNTV runs a single nontransferable vote election: the seats candidates
// with the highest plurality scores win.
func NewSNTV(profile *ballot.PreferenceProfile, seats int, opts ...Option) (*Limited, error) {
	return NewLimited(profile, seats, 1, opts...)
}

// State returns the latest round state.
func (e *Limited) State() *State {
	return e.state
}

// Done reports whether the single scoring round has run.
func (e *Limited) Done() bool {
	return e.done
}

// Step scores every candidate and decides the election in one round.
func (e *Limited) Step() (*State, error) {
	if e.done {
		return nil, fmt.Errorf("election already decided")
	}

	profile := e.state.Profile
	candidates := profile.Candidates()

	scores := make(map[string]*big.Rat, len(candidates))
	for _, c := range candidates {
		scores[c] = new(big.Rat)
	}

	for _, b := range profile.Ballots() {
		for _, cand := range e.approvals(b) {
			if s, ok := scores[cand]; ok {
				s.Add(s, b.Weight)
			}
		}
	}

	ordered := sortByVotes(candidates, scores)
	seats := e.seats
	if seats > len(ordered) {
		seats = len(ordered)
	}
	elected := append([]string(nil), ordered[:seats]...)

	// Losers are recorded weakest-first.
	rest := ordered[seats:]
	eliminated := make([]string, 0, len(rest))
	for i := len(rest) - 1; i >= 0; i-- {
		eliminated = append(eliminated, rest[i])
	}

	struck := append(append([]string(nil), elected...), eliminated...)
	profileRemaining := profile.RemoveCandidates(struck...)

	e.state = &State{
		Round:      e.state.Round + 1,
		Elected:    elected,
		Eliminated: eliminated,
		Remaining:  nil,
		Profile:    profileRemaining,
		Votes:      scores,
		Previous:   e.state,
	}
	e.done = true
	return e.state, nil
}

// approvals lists the candidates a ballot approves: the first k in ranking
// order. When the cutoff falls inside a tied rank, the remaining approvals
// are drawn at random from that rank.
func (e *Limited) approvals(b ballot.Ballot) []string {
	out := make([]string, 0, e.k)
	for _, rank := range b.Ranking {
		room := e.k - len(out)
		if room <= 0 {
			break
		}
		if len(rank) <= room {
			out = append(out, rank...)
			continue
		}
		picked := e.rng.Perm(len(rank))[:room]
		for _, idx := range picked {
			out = append(out, rank[idx])
		}
	}
	return out
}

// Run executes the single round.
func (e *Limited) Run(ctx context.Context) (*State, error) {
	return runSteps(ctx, e)
}
