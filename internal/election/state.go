// Package election implements ranked-ballot election systems over preference
// profiles: STV with surplus transfer, k-approval methods (Limited, Bloc,
// SNTV) and the SNTV/STV hybrid with its Top-Two special case.
//
// Every round of an election is captured in a State. States form a chain via
// Previous, so the full history of a run can be inspected after the fact.
package election

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/mggg/votekit/internal/ballot"
)

// CandidateStatus describes where a candidate stands after a round.
type CandidateStatus string

const (
	StatusElected    CandidateStatus = "Elected"
	StatusRemaining  CandidateStatus = "Remaining"
	StatusEliminated CandidateStatus = "Eliminated"
)

// StatusRow is one line of the per-candidate status table.
type StatusRow struct {
	Candidate string
	Status    CandidateStatus
	Round     int
}

// State records the outcome of one election round. Round 0 is the initial
// state holding the untouched profile.
type State struct {
	Round      int
	Elected    []string // elected this round, strongest first
	Eliminated []string // eliminated this round
	Remaining  []string // still in the running after this round
	Profile    *ballot.PreferenceProfile
	Votes      map[string]*big.Rat // first-preference tallies going into this round
	Previous   *State
}

// NewInitialState wraps a profile as round 0 of an election.
func NewInitialState(profile *ballot.PreferenceProfile) *State {
	return &State{
		Round:     0,
		Remaining: profile.Candidates(),
		Profile:   profile,
	}
}

// AllWinners returns every candidate elected so far, in order of election
// (earliest round first).
func (s *State) AllWinners() []string {
	if s == nil {
		return nil
	}
	out := append([]string(nil), s.Previous.AllWinners()...)
	return append(out, s.Elected...)
}

// AllEliminated returns every candidate eliminated so far, most recent first.
func (s *State) AllEliminated() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Eliminated))
	for i := len(s.Eliminated) - 1; i >= 0; i-- {
		out = append(out, s.Eliminated[i])
	}
	return append(out, s.Previous.AllEliminated()...)
}

// Rankings returns the aggregate ranking: winners first, then the candidates
// still remaining (tied as one group, since no order has been established
// among them), then the eliminated in reverse order of elimination.
func (s *State) Rankings() []ballot.Rank {
	var out []ballot.Rank
	for _, w := range s.AllWinners() {
		out = append(out, ballot.NewRank(w))
	}
	if len(s.Remaining) > 0 {
		out = append(out, ballot.NewRank(s.Remaining...))
	}
	for _, e := range s.AllEliminated() {
		out = append(out, ballot.NewRank(e))
	}
	return out
}

// positions maps each candidate to the number of candidates ranked strictly
// above it in the aggregate ranking.
func (s *State) positions() map[string]int {
	out := make(map[string]int)
	offset := 0
	for _, group := range s.Rankings() {
		for _, cand := range group {
			out[cand] = offset
		}
		offset += len(group)
	}
	return out
}

// ChangedPositions compares the aggregate ranking against the previous round
// and returns candidates whose position moved, mapped to (old, new).
func (s *State) ChangedPositions() map[string][2]int {
	if s.Previous == nil {
		return nil
	}
	prev := s.Previous.positions()
	curr := s.positions()

	out := make(map[string][2]int)
	for cand, now := range curr {
		if before, ok := prev[cand]; ok && before != now {
			out[cand] = [2]int{before, now}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// RoundOutcome returns who was elected and eliminated in round n.
func (s *State) RoundOutcome(n int) (elected, eliminated []string, err error) {
	for cur := s; cur != nil; cur = cur.Previous {
		if cur.Round == n {
			return append([]string(nil), cur.Elected...),
				append([]string(nil), cur.Eliminated...),
				nil
		}
	}
	return nil, nil, fmt.Errorf("round %d not found (current round is %d)", n, s.Round)
}

// Status returns one row per candidate seen so far, sorted by candidate name.
// Elected and eliminated candidates carry the round it happened in; remaining
// candidates carry the current round.
func (s *State) Status() []StatusRow {
	rows := make(map[string]StatusRow)
	for cur := s; cur != nil; cur = cur.Previous {
		for _, c := range cur.Elected {
			rows[c] = StatusRow{Candidate: c, Status: StatusElected, Round: cur.Round}
		}
		for _, c := range cur.Eliminated {
			rows[c] = StatusRow{Candidate: c, Status: StatusEliminated, Round: cur.Round}
		}
	}
	for _, c := range s.Remaining {
		if _, done := rows[c]; !done {
			rows[c] = StatusRow{Candidate: c, Status: StatusRemaining, Round: s.Round}
		}
	}

	out := make([]StatusRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Candidate < out[j].Candidate })
	return out
}
