package generator

import (
	"fmt"
	"math/rand"

	"github.com/mggg/votekit/internal/ballot"
)

// BradleyTerry samples full rankings from the pairwise-comparison model: the
// probability of an ordering is proportional to the product, over every pair,
// of the chance the higher-placed candidate beats the lower-placed one. Slate
// mixtures are combined by voter share.
//
// The model enumerates every ordering, so the candidate count is capped.
type BradleyTerry struct {
	numBallots int
	candidates []string
	params     SlateParams
	rng        *rand.Rand
}

// NewBradleyTerry creates a Bradley-Terry generator.
func NewBradleyTerry(numBallots int, candidates []string, params SlateParams, opts ...Option) (*BradleyTerry, error) {
	if numBallots <= 0 {
		return nil, fmt.Errorf("number of ballots must be positive, got %d", numBallots)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidate list is empty")
	}
	if len(candidates) > maxPermutationCandidates {
		return nil, fmt.Errorf("bradley-terry supports at most %d candidates, got %d",
			maxPermutationCandidates, len(candidates))
	}
	if err := params.validate(candidates); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &BradleyTerry{
		numBallots: numBallots,
		candidates: append([]string(nil), candidates...),
		params:     params,
		rng:        o.rng,
	}, nil
}

// orderingWeight is the unnormalized Bradley-Terry probability of a full
// ordering, mixed over slates by voter share.
func (g *BradleyTerry) orderingWeight(perm []string) float64 {
	weight := 0.0
	for _, slate := range sortedKeys(g.params.Shares) {
		share := g.params.Shares[slate]
		support := g.params.Support[slate]
		prob := 1.0
		for i := 0; i < len(perm); i++ {
			for j := i + 1; j < len(perm); j++ {
				denom := support[perm[i]] + support[perm[j]]
				if denom == 0 {
					prob = 0
					break
				}
				prob *= support[perm[i]] / denom
			}
			if prob == 0 {
				break
			}
		}
		weight += share * prob
	}
	return weight
}

// Generate draws the profile.
func (g *BradleyTerry) Generate() (*ballot.PreferenceProfile, error) {
	perms := permutations(g.candidates)

	probs := make([]float64, len(perms))
	total := 0.0
	for i, perm := range perms {
		probs[i] = g.orderingWeight(perm)
		total += probs[i]
	}
	if total <= 0 {
		return nil, fmt.Errorf("all orderings have zero probability")
	}
	for i := range probs {
		probs[i] /= total
	}

	pool := make([][]string, 0, g.numBallots)
	for i := 0; i < g.numBallots; i++ {
		pool = append(pool, perms[sampleIndex(g.rng, probs)])
	}
	return poolToProfile(pool, g.candidates)
}
