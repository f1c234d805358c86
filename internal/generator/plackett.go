package generator

import (
	"fmt"
	"math/rand"

	"github.com/mggg/votekit/internal/ballot"
)

// SlateParams describes an electorate split into slates (blocs). Each slate
// holds a share of the voters and a preference interval assigning support to
// every candidate.
type SlateParams struct {
	// Shares maps slate name to its fraction of the electorate; must sum to 1.
	Shares map[string]float64
	// Support maps slate name to candidate support weights. Every candidate
	// must appear for every slate; weights are non-negative and not all zero.
	Support map[string]map[string]float64
}

func (p SlateParams) validate(candidates []string) error {
	if err := checkShares("shares", p.Shares); err != nil {
		return err
	}
	for slate := range p.Shares {
		interval, ok := p.Support[slate]
		if !ok {
			return fmt.Errorf("support: missing preference interval for slate %q", slate)
		}
		total := 0.0
		for _, cand := range candidates {
			w, ok := interval[cand]
			if !ok {
				return fmt.Errorf("support: slate %q has no entry for candidate %q", slate, cand)
			}
			if w < 0 {
				return fmt.Errorf("support: slate %q has negative support for %q", slate, cand)
			}
			total += w
		}
		if total <= 0 {
			return fmt.Errorf("support: slate %q supports no candidate", slate)
		}
	}
	return nil
}

// PlackettLuce samples rankings without replacement: at each position the
// next candidate is drawn proportionally to the slate's remaining support.
type PlackettLuce struct {
	numBallots   int
	candidates   []string
	ballotLength int
	params       SlateParams
	rng          *rand.Rand
}

// NewPlackettLuce creates a Plackett-Luce generator. ballotLength 0 means
// full-length ballots.
func NewPlackettLuce(numBallots int, candidates []string, ballotLength int, params SlateParams, opts ...Option) (*PlackettLuce, error) {
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
	return &PlackettLuce{
		numBallots:   numBallots,
		candidates:   append([]string(nil), candidates...),
		ballotLength: ballotLength,
		params:       params,
		rng:          o.rng,
	}, nil
}

// Generate draws the profile slate by slate.
func (g *PlackettLuce) Generate() (*ballot.PreferenceProfile, error) {
	pool := make([][]string, 0, g.numBallots)
	for _, slate := range sortedKeys(g.params.Shares) {
		count := int(float64(g.numBallots) * g.params.Shares[slate])
		support := g.params.Support[slate]
		for i := 0; i < count; i++ {
			names, err := sampleWithoutReplacement(g.rng, g.candidates, support, g.ballotLength)
			if err != nil {
				return nil, fmt.Errorf("slate %q: %w", slate, err)
			}
			pool = append(pool, names)
		}
	}
	return poolToProfile(pool, g.candidates)
}
