package election

import (
	"math/big"
	"sort"

	"github.com/mggg/votekit/internal/ballot"
)

// TransferFunc redistributes the ballots of a freshly elected candidate.
// It receives the winner, the live ballots, the first-preference tallies and
// the quota, and returns the ballots to carry into the rest of the round.
type TransferFunc func(winner string, ballots []ballot.Ballot, votes map[string]*big.Rat, quota *big.Rat) []ballot.Ballot

// FirstPreferences tallies first-place votes for every candidate. Only an
// outright first preference counts; a ballot whose top rank is a tie between
// several candidates counts for none of them.
func FirstPreferences(candidates []string, ballots []ballot.Ballot) map[string]*big.Rat {
	votes := make(map[string]*big.Rat, len(candidates))
	for _, c := range candidates {
		votes[c] = new(big.Rat)
	}
	for _, b := range ballots {
		first := b.First()
		if len(first) != 1 {
			continue
		}
		if w, ok := votes[first[0]]; ok {
			w.Add(w, b.Weight)
		}
	}
	return votes
}

// FractionalTransfer is the classic Gregory-style surplus transfer: ballots
// that put the winner first are reweighted by (votes-quota)/votes, then the
// winner is struck from every ballot.
func FractionalTransfer(winner string, ballots []ballot.Ballot, votes map[string]*big.Rat, quota *big.Rat) []ballot.Ballot {
	winnerVotes := votes[winner]
	ratio := new(big.Rat)
	if winnerVotes != nil && winnerVotes.Sign() != 0 {
		ratio.Sub(winnerVotes, quota)
		ratio.Quo(ratio, winnerVotes)
	}

	out := make([]ballot.Ballot, len(ballots))
	for i, b := range ballots {
		out[i] = b.Clone()
		first := out[i].First()
		if len(first) == 1 && first[0] == winner {
			out[i].Weight.Mul(out[i].Weight, ratio)
		}
	}
	return removeCandidate(winner, out)
}

// removeCandidate strikes a candidate from every ballot, dropping ranks that
// become empty so later preferences shift up.
func removeCandidate(name string, ballots []ballot.Ballot) []ballot.Ballot {
	out := make([]ballot.Ballot, len(ballots))
	for i, b := range ballots {
		ranking := make([]ballot.Rank, 0, len(b.Ranking))
		for _, rank := range b.Ranking {
			kept := make(ballot.Rank, 0, len(rank))
			for _, cand := range rank {
				if cand != name {
					kept = append(kept, cand)
				}
			}
			if len(kept) > 0 {
				ranking = append(ranking, kept)
			}
		}
		out[i] = ballot.Ballot{Ranking: ranking, Weight: new(big.Rat).Set(b.Weight)}
	}
	return out
}

// sortByVotes orders candidates by descending vote weight, breaking ties by
// name so results are stable.
func sortByVotes(candidates []string, votes map[string]*big.Rat) []string {
	out := append([]string(nil), candidates...)
	sort.Slice(out, func(i, j int) bool {
		cmp := votes[out[i]].Cmp(votes[out[j]])
		if cmp != 0 {
			return cmp > 0
		}
		return out[i] < out[j]
	})
	return out
}
