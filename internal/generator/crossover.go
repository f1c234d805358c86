package generator

import (
	"fmt"
	"math/rand"

	"github.com/mggg/votekit/internal/ballot"
)

// CrossoverParams extends the slate model with crossover behaviour: for each
// slate, the fraction of its voters who cross over toward each other slate.
type CrossoverParams struct {
	SlateParams
	// Candidates maps slate name to the candidates running on that slate.
	Candidates map[string][]string
	// Rates maps slate -> opposing slate -> fraction of the slate's voters
	// casting a crossover ballot toward that slate. Rates for a slate must
	// sum to 1; the entry for the slate itself is the loyal share.
	Rates map[string]map[string]float64
}

func (p CrossoverParams) validate(candidates []string) error {
	if err := p.SlateParams.validate(candidates); err != nil {
		return err
	}
	assigned := make(map[string]string)
	for slate, members := range p.Candidates {
		for _, cand := range members {
			if prev, dup := assigned[cand]; dup {
				return fmt.Errorf("candidates: %q listed for both %q and %q", cand, prev, slate)
			}
			assigned[cand] = slate
		}
	}
	for _, cand := range candidates {
		if _, ok := assigned[cand]; !ok {
			return fmt.Errorf("candidates: %q belongs to no slate", cand)
		}
	}
	for slate := range p.Shares {
		rates, ok := p.Rates[slate]
		if !ok {
			return fmt.Errorf("rates: missing crossover rates for slate %q", slate)
		}
		if err := checkShares(fmt.Sprintf("rates[%s]", slate), rates); err != nil {
			return err
		}
	}
	return nil
}

// AlternatingCrossover models two-slate crossover voting: a crossover voter
// alternates candidates from the opposing slate and their own, starting with
// the opposing slate's favourite.
type AlternatingCrossover struct {
	numBallots   int
	candidates   []string
	ballotLength int
	params       CrossoverParams
	rng          *rand.Rand
}

// NewAlternatingCrossover creates an alternating crossover generator.
// ballotLength 0 means full-length ballots.
func NewAlternatingCrossover(numBallots int, candidates []string, ballotLength int, params CrossoverParams, opts ...Option) (*AlternatingCrossover, error) {
	if numBallots <= 0 {
		return nil, fmt.Errorf("number of ballots must be positive, got %d", numBallots)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidate list is empty")
	}
	if ballotLength < 0 || ballotLength > len(candidates) {
		return nil, fmt.Errorf("ballot length %d out of range [0, %d]", ballotLength, len(candidates))
	}
	if ballotLength == 0 {
		ballotLength = len(candidates)
	}
	if err := params.validate(candidates); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &AlternatingCrossover{
		numBallots:   numBallots,
		candidates:   append([]string(nil), candidates...),
		ballotLength: ballotLength,
		params:       params,
		rng:          o.rng,
	}, nil
}

// Generate draws the profile.
func (g *AlternatingCrossover) Generate() (*ballot.PreferenceProfile, error) {
	pool := make([][]string, 0, g.numBallots)

	for _, slate := range sortedKeys(g.params.Shares) {
		slateBallots := int(float64(g.numBallots) * g.params.Shares[slate])
		support := g.params.Support[slate]
		own := g.params.Candidates[slate]

		for _, opposing := range sortedKeys(g.params.Rates[slate]) {
			count := int(g.params.Rates[slate][opposing] * float64(slateBallots))
			theirs := g.params.Candidates[opposing]

			for i := 0; i < count; i++ {
				ownOrder, err := sampleWithoutReplacement(g.rng, own, support, len(own))
				if err != nil {
					return nil, fmt.Errorf("slate %q: %w", slate, err)
				}

				var names []string
				if opposing == slate {
					names = ownOrder
				} else {
					theirOrder, err := sampleWithoutReplacement(g.rng, theirs, support, len(theirs))
					if err != nil {
						return nil, fmt.Errorf("slate %q crossover to %q: %w", slate, opposing, err)
					}
					names = interleave(theirOrder, ownOrder)
				}
				if len(names) > g.ballotLength {
					names = names[:g.ballotLength]
				}
				pool = append(pool, names)
			}
		}
	}
	return poolToProfile(pool, g.candidates)
}

// interleave alternates elements of a and b, starting with a, appending any
// leftover tail.
func interleave(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}
