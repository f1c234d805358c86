package election

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/mggg/votekit/internal/ballot"
)

// STV runs a single transferable vote election for a number of seats. A
// candidate reaching the Droop quota is elected and their surplus transfers
// to later preferences; when no one reaches quota, the weakest candidate is
// eliminated and their ballots shift up.
type STV struct {
	state    *State
	transfer TransferFunc
	seats    int
	quota    *big.Rat
	rng      *rand.Rand
}

// NewSTV creates an STV election over the profile.
func NewSTV(profile *ballot.PreferenceProfile, seats int, opts ...Option) (*STV, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("seats must be positive, got %d", seats)
	}
	if len(profile.Candidates()) < seats {
		return nil, fmt.Errorf("profile has %d candidates for %d seats", len(profile.Candidates()), seats)
	}
	o := buildOptions(opts)
	return &STV{
		state:    NewInitialState(profile),
		transfer: o.transfer,
		seats:    seats,
		quota:    droopQuota(profile.TotalWeight(), seats),
		rng:      o.rng,
	}, nil
}

// droopQuota is floor(total/(seats+1)) + 1.
func droopQuota(total *big.Rat, seats int) *big.Rat {
	q := new(big.Rat).Quo(total, big.NewRat(int64(seats+1), 1))
	floor := new(big.Int).Quo(q.Num(), q.Denom())
	floor.Add(floor, big.NewInt(1))
	return new(big.Rat).SetInt(floor)
}

// Quota exposes the Droop quota for this election.
func (e *STV) Quota() *big.Rat {
	return new(big.Rat).Set(e.quota)
}

// Seats returns the number of seats being filled.
func (e *STV) Seats() int {
	return e.seats
}

// State returns the latest round state.
func (e *STV) State() *State {
	return e.state
}

// Done reports whether all seats are filled.
func (e *STV) Done() bool {
	return len(e.state.AllWinners()) == e.seats
}

// Step simulates one round.
func (e *STV) Step() (*State, error) {
	if e.Done() {
		return nil, fmt.Errorf("election already decided: %d of %d seats filled", len(e.state.AllWinners()), e.seats)
	}

	candidates := e.state.Profile.Candidates()
	ballots := e.state.Profile.Ballots()
	votes := FirstPreferences(candidates, ballots)
	openSeats := e.seats - len(e.state.AllWinners())

	var elected, eliminated []string

	if len(candidates) == openSeats {
		// Exactly enough candidates left: elect them all in vote order.
		elected = sortByVotes(candidates, votes)
	} else {
		for _, cand := range sortByVotes(candidates, votes) {
			if votes[cand].Cmp(e.quota) >= 0 {
				elected = append(elected, cand)
				ballots = e.transfer(cand, ballots, votes, e.quota)
			}
		}

		if len(elected) == 0 {
			// Nobody reached quota: eliminate the weakest candidate,
			// breaking exact ties at random.
			lowest := lowestVotes(candidates, votes)
			loser := lowest[e.rng.Intn(len(lowest))]
			ballots = removeCandidate(loser, ballots)
			eliminated = append(eliminated, loser)
		}
	}

	removed := make(map[string]struct{}, len(elected)+len(eliminated))
	for _, c := range elected {
		removed[c] = struct{}{}
	}
	for _, c := range eliminated {
		removed[c] = struct{}{}
	}
	var remaining []string
	for _, c := range candidates {
		if _, gone := removed[c]; !gone {
			remaining = append(remaining, c)
		}
	}

	profile, err := ballot.NewProfile(ballots)
	if err != nil {
		return nil, fmt.Errorf("round %d profile: %w", e.state.Round+1, err)
	}

	e.state = &State{
		Round:      e.state.Round + 1,
		Elected:    elected,
		Eliminated: eliminated,
		Remaining:  remaining,
		Profile:    profile,
		Votes:      votes,
		Previous:   e.state,
	}
	return e.state, nil
}

// Run steps the election to completion.
func (e *STV) Run(ctx context.Context) (*State, error) {
	if e.Done() {
		return nil, fmt.Errorf("length of elected set equal to number of seats (%d)", e.seats)
	}
	return runSteps(ctx, e)
}

// lowestVotes returns every candidate holding the minimum tally.
func lowestVotes(candidates []string, votes map[string]*big.Rat) []string {
	var minVal *big.Rat
	for _, c := range candidates {
		if minVal == nil || votes[c].Cmp(minVal) < 0 {
			minVal = votes[c]
		}
	}
	var out []string
	for _, c := range candidates {
		if votes[c].Cmp(minVal) == 0 {
			out = append(out, c)
		}
	}
	return out
}
