package generator

import (
	"fmt"
	"math/rand"

	"github.com/mggg/votekit/internal/ballot"
)

// ImpartialCulture draws every ballot as a uniformly random full ranking of
// the candidates.
type ImpartialCulture struct {
	numBallots int
	candidates []string
	rng        *rand.Rand
}

// NewImpartialCulture creates an impartial culture generator.
func NewImpartialCulture(numBallots int, candidates []string, opts ...Option) (*ImpartialCulture, error) {
	if numBallots <= 0 {
		return nil, fmt.Errorf("number of ballots must be positive, got %d", numBallots)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidate list is empty")
	}
	o := buildOptions(opts)
	return &ImpartialCulture{
		numBallots: numBallots,
		candidates: append([]string(nil), candidates...),
		rng:        o.rng,
	}, nil
}

// Generate draws the profile.
func (g *ImpartialCulture) Generate() (*ballot.PreferenceProfile, error) {
	pool := make([][]string, 0, g.numBallots)
	for i := 0; i < g.numBallots; i++ {
		perm := g.rng.Perm(len(g.candidates))
		names := make([]string, len(perm))
		for j, idx := range perm {
			names[j] = g.candidates[idx]
		}
		pool = append(pool, names)
	}
	return poolToProfile(pool, g.candidates)
}

// ImpartialAnonymousCulture first draws a random distribution over all
// rankings (Dirichlet with unit parameters), then draws ballots from it.
type ImpartialAnonymousCulture struct {
	numBallots int
	candidates []string
	rng        *rand.Rand
}

// NewImpartialAnonymousCulture creates an IAC generator. The model enumerates
// every ranking, so the candidate count is capped.
func NewImpartialAnonymousCulture(numBallots int, candidates []string, opts ...Option) (*ImpartialAnonymousCulture, error) {
	if numBallots <= 0 {
		return nil, fmt.Errorf("number of ballots must be positive, got %d", numBallots)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidate list is empty")
	}
	if len(candidates) > maxPermutationCandidates {
		return nil, fmt.Errorf("impartial anonymous culture supports at most %d candidates, got %d",
			maxPermutationCandidates, len(candidates))
	}
	o := buildOptions(opts)
	return &ImpartialAnonymousCulture{
		numBallots: numBallots,
		candidates: append([]string(nil), candidates...),
		rng:        o.rng,
	}, nil
}

// Generate draws the profile. A Dirichlet(1,…,1) sample is obtained by
// normalizing independent unit exponentials.
func (g *ImpartialAnonymousCulture) Generate() (*ballot.PreferenceProfile, error) {
	perms := permutations(g.candidates)

	probs := make([]float64, len(perms))
	total := 0.0
	for i := range probs {
		probs[i] = g.rng.ExpFloat64()
		total += probs[i]
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
