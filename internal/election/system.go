package election

import (
	"context"
	"math/rand"
)

// System is a multi-round election method. Step advances one round; Run steps
// until the election is decided and returns the final state.
type System interface {
	Step() (*State, error)
	Run(ctx context.Context) (*State, error)
	Done() bool
	State() *State
}

// options collects knobs shared by the concrete systems.
type options struct {
	transfer TransferFunc
	rng      *rand.Rand
}

// Option configures a system constructor.
type Option func(*options)

// WithTransfer overrides the surplus transfer rule (STV and Hybrid only).
func WithTransfer(fn TransferFunc) Option {
	return func(o *options) { o.transfer = fn }
}

// WithSeed makes random tie-breaking deterministic for the given seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies the random source used for tie-breaking.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func buildOptions(opts []Option) options {
	o := options{
		transfer: FractionalTransfer,
		rng:      rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// runSteps drives a system until it reports done, honouring ctx cancellation.
func runSteps(ctx context.Context, s System) (*State, error) {
	var last *State
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, err := s.Step()
		if err != nil {
			return nil, err
		}
		last = state
	}
	if last == nil {
		last = s.State()
	}
	return last, nil
}
