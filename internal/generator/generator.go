// Package generator builds synthetic preference profiles from statistical
// models of voter behaviour: impartial cultures, Plackett-Luce and
// Bradley-Terry slate models, spatial voting and slate crossover.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/mggg/votekit/internal/ballot"
)

// Generator produces a preference profile.
type Generator interface {
	Generate() (*ballot.PreferenceProfile, error)
}

// maxPermutationCandidates caps the models that enumerate all candidate
// orderings; beyond this the factorial blowup is not worth supporting.
const maxPermutationCandidates = 8

// Option configures a generator.
type Option func(*options)

type options struct {
	rng *rand.Rand
}

// WithSeed seeds the generator's random source for reproducible profiles.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func buildOptions(opts []Option) options {
	o := options{rng: rand.New(rand.NewSource(1))}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// poolToProfile condenses a pool of generated rankings into a profile, one
// ballot line per distinct ranking with the multiplicity as weight.
func poolToProfile(pool [][]string, candidates []string) (*ballot.PreferenceProfile, error) {
	ballots := make([]ballot.Ballot, 0, len(pool))
	for _, names := range pool {
		ranking := make([]ballot.Rank, len(names))
		for i, n := range names {
			ranking[i] = ballot.NewRank(n)
		}
		ballots = append(ballots, ballot.NewWithWeight(ranking, 1))
	}
	p, err := ballot.NewProfile(ballots, ballot.WithCandidates(candidates...))
	if err != nil {
		return nil, err
	}
	return p.Condense(), nil
}

// permutations enumerates all orderings of the given names.
func permutations(names []string) [][]string {
	if len(names) == 0 {
		return [][]string{{}}
	}
	var out [][]string
	for i, n := range names {
		rest := make([]string, 0, len(names)-1)
		rest = append(rest, names[:i]...)
		rest = append(rest, names[i+1:]...)
		for _, tail := range permutations(rest) {
			perm := append([]string{n}, tail...)
			out = append(out, perm)
		}
	}
	return out
}

// sampleWithoutReplacement draws n distinct items, each draw proportional to
// the item's remaining weight.
func sampleWithoutReplacement(rng *rand.Rand, items []string, weights map[string]float64, n int) ([]string, error) {
	if n > len(items) {
		n = len(items)
	}
	pool := append([]string(nil), items...)
	out := make([]string, 0, n)
	for len(out) < n {
		total := 0.0
		for _, item := range pool {
			w := weights[item]
			if w < 0 {
				return nil, fmt.Errorf("negative weight for %q", item)
			}
			total += w
		}
		if total <= 0 {
			return nil, fmt.Errorf("weights sum to zero with %d picks outstanding", n-len(out))
		}
		r := rng.Float64() * total
		idx := -1
		for i, item := range pool {
			w := weights[item]
			if w <= 0 {
				continue
			}
			idx = i
			r -= w
			if r <= 0 {
				break
			}
		}
		out = append(out, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return out, nil
}

// sampleIndex draws an index according to the given probability weights.
func sampleIndex(rng *rand.Rand, probs []float64) int {
	r := rng.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if r <= cum {
			return i
		}
	}
	return len(probs) - 1
}

// checkShares verifies the per-slate shares form a distribution.
func checkShares(field string, shares map[string]float64) error {
	if len(shares) == 0 {
		return fmt.Errorf("%s: no slates given", field)
	}
	sum := 0.0
	for slate, share := range shares {
		if share < 0 {
			return fmt.Errorf("%s: negative share for slate %q", field, slate)
		}
		sum += share
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%s: shares sum to %g, want 1", field, sum)
	}
	return nil
}

// sortedKeys returns map keys in deterministic order.
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
