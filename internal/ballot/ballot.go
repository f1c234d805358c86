// Package ballot models weighted ranked ballots and preference profiles.
//
// A ballot ranks candidates from most to least preferred; candidates may be
// tied at a position. Weights are exact rationals so that fractional vote
// transfers never accumulate rounding error.
package ballot

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Rank is a set of candidates tied at one position of a ballot. The slice is
// kept sorted so that equal ranks compare equal regardless of input order.
type Rank []string

// NewRank builds a canonical rank from the given candidate names. Duplicate
// names collapse to one entry.
func NewRank(members ...string) Rank {
	seen := make(map[string]struct{}, len(members))
	out := make(Rank, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether the rank includes the named candidate.
func (r Rank) Contains(name string) bool {
	for _, m := range r {
		if m == name {
			return true
		}
	}
	return false
}

// Equal reports whether two ranks hold the same candidates.
func (r Rank) Equal(other Rank) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Tied reports whether more than one candidate shares this position.
func (r Rank) Tied() bool {
	return len(r) > 1
}

func (r Rank) String() string {
	return strings.Join(r, ",")
}

// Ballot is a ranking with a weight. Weight counts how many voters cast this
// exact ranking, and becomes fractional once surplus transfers apply.
type Ballot struct {
	Ranking []Rank
	Weight  *big.Rat
}

// New creates a ballot. A nil weight defaults to 1.
func New(ranking []Rank, weight *big.Rat) Ballot {
	if weight == nil {
		weight = big.NewRat(1, 1)
	}
	return Ballot{Ranking: ranking, Weight: new(big.Rat).Set(weight)}
}

// NewWithWeight creates a ballot with an integer weight.
func NewWithWeight(ranking []Rank, weight int64) Ballot {
	return New(ranking, big.NewRat(weight, 1))
}

// Clone returns a deep copy of the ballot.
func (b Ballot) Clone() Ballot {
	ranking := make([]Rank, len(b.Ranking))
	for i, r := range b.Ranking {
		ranking[i] = append(Rank(nil), r...)
	}
	w := new(big.Rat)
	if b.Weight != nil {
		w.Set(b.Weight)
	}
	return Ballot{Ranking: ranking, Weight: w}
}

// Key returns a canonical encoding of the ranking, used to merge ballots that
// express the same preference order.
func (b Ballot) Key() string {
	parts := make([]string, len(b.Ranking))
	for i, r := range b.Ranking {
		parts[i] = r.String()
	}
	return strings.Join(parts, "|")
}

// Validate checks structural invariants: a non-nil, non-negative weight and no
// candidate appearing at more than one position.
func (b Ballot) Validate() error {
	if b.Weight == nil {
		return fmt.Errorf("ballot weight is nil")
	}
	if b.Weight.Sign() < 0 {
		return fmt.Errorf("ballot weight is negative: %s", b.Weight.RatString())
	}
	seen := make(map[string]struct{})
	for _, rank := range b.Ranking {
		if len(rank) == 0 {
			return fmt.Errorf("ballot contains an empty rank")
		}
		for _, cand := range rank {
			if _, dup := seen[cand]; dup {
				return fmt.Errorf("candidate %q appears more than once on ballot", cand)
			}
			seen[cand] = struct{}{}
		}
	}
	return nil
}

// First returns the top rank of the ballot, or nil for an exhausted ballot.
func (b Ballot) First() Rank {
	if len(b.Ranking) == 0 {
		return nil
	}
	return b.Ranking[0]
}
