package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/mggg/votekit/internal/ballot"
)

// OneDimSpatial places candidates and voters on a line by independent
// standard normal draws; each voter ranks candidates by distance.
type OneDimSpatial struct {
	numBallots int
	candidates []string
	rng        *rand.Rand
}

// NewOneDimSpatial creates a one-dimensional spatial generator.
func NewOneDimSpatial(numBallots int, candidates []string, opts ...Option) (*OneDimSpatial, error) {
	if numBallots <= 0 {
		return nil, fmt.Errorf("number of ballots must be positive, got %d", numBallots)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("candidate list is empty")
	}
	o := buildOptions(opts)
	return &OneDimSpatial{
		numBallots: numBallots,
		candidates: append([]string(nil), candidates...),
		rng:        o.rng,
	}, nil
}

// Generate draws candidate positions once, then one position per voter.
func (g *OneDimSpatial) Generate() (*ballot.PreferenceProfile, error) {
	positions := make(map[string]float64, len(g.candidates))
	for _, c := range g.candidates {
		positions[c] = g.rng.NormFloat64()
	}

	pool := make([][]string, 0, g.numBallots)
	for i := 0; i < g.numBallots; i++ {
		voter := g.rng.NormFloat64()
		order := append([]string(nil), g.candidates...)
		sort.SliceStable(order, func(a, b int) bool {
			da := math.Abs(positions[order[a]] - voter)
			db := math.Abs(positions[order[b]] - voter)
			if da != db {
				return da < db
			}
			return order[a] < order[b]
		})
		pool = append(pool, order)
	}
	return poolToProfile(pool, g.candidates)
}
