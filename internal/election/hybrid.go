package election

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mggg/votekit/internal/ballot"
)

type hybridStage string

const (
	stageSNTV     hybridStage = "sntv"
	stageSTV      hybridStage = "stv"
	stageComplete hybridStage = "complete"
)

// Hybrid first narrows the field with SNTV down to r1Cutoff candidates, then
// runs STV on the reduced profile to fill the seats.
type Hybrid struct {
	state    *State
	transfer TransferFunc
	r1Cutoff int
	seats    int
	stage    hybridStage
	rng      *rand.Rand
}

// NewHybrid creates an SNTV/STV hybrid election.
func NewHybrid(profile *ballot.PreferenceProfile, r1Cutoff, seats int, opts ...Option) (*Hybrid, error) {
	if seats <= 0 {
		return nil, fmt.Errorf("seats must be positive, got %d", seats)
	}
	if r1Cutoff < seats {
		return nil, fmt.Errorf("round-one cutoff %d cannot be below seats %d", r1Cutoff, seats)
	}
	o := buildOptions(opts)
	return &Hybrid{
		state:    NewInitialState(profile),
		transfer: o.transfer,
		r1Cutoff: r1Cutoff,
		seats:    seats,
		stage:    stageSNTV,
		rng:      o.rng,
	}, nil
}

// NewTopTwo eliminates all but the top two plurality vote getters and runs an
// instant runoff between them for a single seat.
func NewTopTwo(profile *ballot.PreferenceProfile, opts ...Option) (*Hybrid, error) {
	return NewHybrid(profile, 2, 1, opts...)
}

// State returns the latest round state.
func (e *Hybrid) State() *State {
	return e.state
}

// Done reports whether both stages have run.
func (e *Hybrid) Done() bool {
	return e.stage == stageComplete
}

// Step advances one stage: the SNTV cut, then the STV runoff.
func (e *Hybrid) Step() (*State, error) {
	switch e.stage {
	case stageSNTV:
		return e.stepSNTV()
	case stageSTV:
		return e.stepSTV()
	default:
		return nil, fmt.Errorf("election already decided")
	}
}

// stepSNTV narrows the field. Nobody is elected here: the SNTV survivors
// carry over as remaining candidates on a reduced profile.
func (e *Hybrid) stepSNTV() (*State, error) {
	cut, err := NewSNTV(e.state.Profile, e.r1Cutoff, WithRand(e.rng))
	if err != nil {
		return nil, fmt.Errorf("sntv stage: %w", err)
	}
	outcome, err := cut.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("sntv stage: %w", err)
	}

	eliminated := append([]string(nil), outcome.Eliminated...)
	reduced := e.state.Profile.RemoveCandidates(eliminated...)

	e.state = &State{
		Round:      e.state.Round + 1,
		Eliminated: eliminated,
		Remaining:  reduced.Candidates(),
		Profile:    reduced,
		Votes:      outcome.Votes,
		Previous:   e.state,
	}
	e.stage = stageSTV
	return e.state, nil
}

// stepSTV decides the seats on the reduced profile.
func (e *Hybrid) stepSTV() (*State, error) {
	runoff, err := NewSTV(e.state.Profile, e.seats, WithTransfer(e.transfer), WithRand(e.rng))
	if err != nil {
		return nil, fmt.Errorf("stv stage: %w", err)
	}
	outcome, err := runoff.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("stv stage: %w", err)
	}

	// Collapse the runoff's history into one hybrid round, eliminations in
	// chronological order.
	recent := outcome.AllEliminated()
	eliminated := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		eliminated = append(eliminated, recent[i])
	}

	e.state = &State{
		Round:      e.state.Round + 1,
		Elected:    outcome.AllWinners(),
		Eliminated: eliminated,
		Remaining:  append([]string(nil), outcome.Remaining...),
		Profile:    outcome.Profile,
		Votes:      outcome.Votes,
		Previous:   e.state,
	}
	e.stage = stageComplete
	return e.state, nil
}

// Run executes both stages.
func (e *Hybrid) Run(ctx context.Context) (*State, error) {
	return runSteps(ctx, e)
}
