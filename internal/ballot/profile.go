package ballot

import (
	"fmt"
	"math/big"
	"sort"
)

// PreferenceProfile is a collection of cast ballots. Profiles are immutable:
// every operation returns a new profile and leaves the receiver untouched.
type PreferenceProfile struct {
	ballots    []Ballot
	candidates []string // explicit candidate list, may be empty
}

// ProfileOption configures NewProfile.
type ProfileOption func(*PreferenceProfile)

// WithCandidates pins an explicit candidate list on the profile. Without it
// the candidate set is derived from the ballots.
func WithCandidates(names ...string) ProfileOption {
	return func(p *PreferenceProfile) {
		p.candidates = append([]string(nil), names...)
	}
}

// NewProfile builds a profile from ballots, validating every ballot and the
// optional explicit candidate list (names must be unique and non-empty).
func NewProfile(ballots []Ballot, opts ...ProfileOption) (*PreferenceProfile, error) {
	p := &PreferenceProfile{}
	for _, opt := range opts {
		opt(p)
	}

	seen := make(map[string]struct{}, len(p.candidates))
	for _, c := range p.candidates {
		if c == "" {
			return nil, fmt.Errorf("candidate name cannot be empty")
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("all candidates must be unique: %q repeated", c)
		}
		seen[c] = struct{}{}
	}

	p.ballots = make([]Ballot, len(ballots))
	for i, b := range ballots {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i, err)
		}
		if len(p.candidates) > 0 {
			for _, rank := range b.Ranking {
				for _, cand := range rank {
					if _, ok := seen[cand]; !ok {
						return nil, fmt.Errorf("ballot %d: candidate %q not in candidate list", i, cand)
					}
				}
			}
		}
		p.ballots[i] = b.Clone()
	}
	return p, nil
}

// MustProfile is a test and fixture helper that panics on invalid input.
func MustProfile(ballots []Ballot, opts ...ProfileOption) *PreferenceProfile {
	p, err := NewProfile(ballots, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Ballots returns a copy of the profile's ballots.
func (p *PreferenceProfile) Ballots() []Ballot {
	out := make([]Ballot, len(p.ballots))
	for i, b := range p.ballots {
		out[i] = b.Clone()
	}
	return out
}

// NumBallots returns how many distinct ballot lines the profile holds.
func (p *PreferenceProfile) NumBallots() int {
	return len(p.ballots)
}

// Candidates returns the explicit candidate list if one was given, otherwise
// the sorted union of all candidates appearing on ballots.
func (p *PreferenceProfile) Candidates() []string {
	if p.candidates != nil {
		return append([]string(nil), p.candidates...)
	}
	set := make(map[string]struct{})
	for _, b := range p.ballots {
		for _, rank := range b.Ranking {
			for _, cand := range rank {
				set[cand] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// TotalWeight sums the ballot weights, i.e. the number of cast ballots when
// weights are whole.
func (p *PreferenceProfile) TotalWeight() *big.Rat {
	total := new(big.Rat)
	for _, b := range p.ballots {
		total.Add(total, b.Weight)
	}
	return total
}

// Condense merges ballots with identical rankings, summing their weights.
// Ballot order follows the first occurrence of each ranking.
func (p *PreferenceProfile) Condense() *PreferenceProfile {
	index := make(map[string]int)
	merged := make([]Ballot, 0, len(p.ballots))
	for _, b := range p.ballots {
		key := b.Key()
		if i, ok := index[key]; ok {
			merged[i].Weight.Add(merged[i].Weight, b.Weight)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, b.Clone())
	}
	out := &PreferenceProfile{ballots: merged}
	if p.candidates != nil {
		out.candidates = append([]string(nil), p.candidates...)
	}
	return out
}

// Distribution maps each canonical ranking to its weight. With standardize
// set, weights are normalized so they sum to one.
func (p *PreferenceProfile) Distribution(standardize bool) map[string]*big.Rat {
	total := p.TotalWeight()
	out := make(map[string]*big.Rat)
	for _, b := range p.ballots {
		key := b.Key()
		w := new(big.Rat).Set(b.Weight)
		if standardize && total.Sign() != 0 {
			w.Quo(w, total)
		}
		if existing, ok := out[key]; ok {
			existing.Add(existing, w)
		} else {
			out[key] = w
		}
	}
	return out
}

// RemoveCandidates returns a profile with the named candidates struck from
// every ranking. Positions left empty are dropped and ballots shift up.
func (p *PreferenceProfile) RemoveCandidates(names ...string) *PreferenceProfile {
	removed := make(map[string]struct{}, len(names))
	for _, n := range names {
		removed[n] = struct{}{}
	}

	ballots := make([]Ballot, 0, len(p.ballots))
	for _, b := range p.ballots {
		ranking := make([]Rank, 0, len(b.Ranking))
		for _, rank := range b.Ranking {
			kept := make(Rank, 0, len(rank))
			for _, cand := range rank {
				if _, gone := removed[cand]; !gone {
					kept = append(kept, cand)
				}
			}
			if len(kept) > 0 {
				ranking = append(ranking, kept)
			}
		}
		ballots = append(ballots, Ballot{Ranking: ranking, Weight: new(big.Rat).Set(b.Weight)})
	}

	out := &PreferenceProfile{ballots: ballots}
	if p.candidates != nil {
		out.candidates = make([]string, 0, len(p.candidates))
		for _, c := range p.candidates {
			if _, gone := removed[c]; !gone {
				out.candidates = append(out.candidates, c)
			}
		}
	}
	return out
}
