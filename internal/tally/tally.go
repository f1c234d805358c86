// Package tally orchestrates election runs: it tabulates a profile under a
// chosen method, records the per-round history, persists the run and can
// write a report file for offline inspection.
package tally

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mggg/votekit/internal/ballot"
	"github.com/mggg/votekit/internal/election"
	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/metrics"
	"github.com/mggg/votekit/internal/store"
)

// ErrInvalidSpec marks run failures caused by the spec rather than the
// tabulation itself.
var ErrInvalidSpec = errors.New("invalid election spec")

// Spec describes one election run.
type Spec struct {
	Method   election.Method
	Seats    int
	K        int   // limited only: approvals per ballot
	R1Cutoff int   // hybrid only: survivors of the first-round cut
	Seed     int64 // tie-break seed; 0 means the method default
}

// Deps carries the collaborators a run needs. Store is optional; runs are not
// persisted when it is nil. Clock defaults to time.Now.
type Deps struct {
	Logger zerolog.Logger
	Store  *store.Store
	Clock  func() time.Time
}

// RoundResult is the outcome of one tabulation round.
type RoundResult struct {
	Round      int               `json:"round" yaml:"round"`
	Elected    []string          `json:"elected,omitempty" yaml:"elected,omitempty"`
	Eliminated []string          `json:"eliminated,omitempty" yaml:"eliminated,omitempty"`
	Votes      map[string]string `json:"votes,omitempty" yaml:"votes,omitempty"`
}

// Result is the full outcome of an election run.
type Result struct {
	RunID      string               `json:"run_id" yaml:"run_id"`
	Method     election.Method      `json:"method" yaml:"method"`
	Seats      int                  `json:"seats" yaml:"seats"`
	Candidates []string             `json:"candidates" yaml:"candidates"`
	NumBallots int                  `json:"num_ballots" yaml:"num_ballots"`
	Winners    []string             `json:"winners" yaml:"winners"`
	Rounds     []RoundResult        `json:"rounds" yaml:"rounds"`
	Status     []election.StatusRow `json:"status" yaml:"status"`
	StartedAt  time.Time            `json:"started_at" yaml:"started_at"`
	Elapsed    time.Duration        `json:"elapsed" yaml:"elapsed"`
}

// Run tabulates the profile under the requested method. The run gets a fresh
// UUID which is attached to the context for log correlation and used as the
// storage key.
func Run(ctx context.Context, deps Deps, spec Spec, profile *ballot.PreferenceProfile) (*Result, error) {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	runID := uuid.New().String()
	ctx = log.ContextWithRunID(ctx, runID)
	logger := log.WithContext(ctx, deps.Logger)

	started := deps.Clock()
	logger.Info().
		Str(log.FieldEvent, "tally.start").
		Str(log.FieldMethod, string(spec.Method)).
		Int(log.FieldSeats, spec.Seats).
		Int(log.FieldCandidates, len(profile.Candidates())).
		Int(log.FieldBallots, profile.NumBallots()).
		Msg("starting election run")

	var opts []election.Option
	if spec.Seed != 0 {
		opts = append(opts, election.WithSeed(spec.Seed))
	}

	system, err := election.NewSystem(spec.Method, profile, election.Params{
		Seats:    spec.Seats,
		K:        spec.K,
		R1Cutoff: spec.R1Cutoff,
	}, opts...)
	if err != nil {
		metrics.RecordElection(string(spec.Method), "error", 0, 0)
		return nil, fmt.Errorf("build election system: %w: %w", ErrInvalidSpec, err)
	}

	final, err := system.Run(ctx)
	elapsed := deps.Clock().Sub(started)
	if err != nil {
		metrics.RecordElection(string(spec.Method), "error", 0, elapsed)
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "tally.failed").
			Msg("election run failed")
		return nil, fmt.Errorf("run election: %w", err)
	}

	result := &Result{
		RunID:      runID,
		Method:     spec.Method,
		Seats:      spec.Seats,
		Candidates: profile.Candidates(),
		NumBallots: profile.NumBallots(),
		Winners:    final.AllWinners(),
		Rounds:     collectRounds(final),
		Status:     final.Status(),
		StartedAt:  started.UTC(),
		Elapsed:    elapsed,
	}

	metrics.RecordElection(string(spec.Method), "ok", final.Round, elapsed)
	logger.Info().
		Str(log.FieldEvent, "tally.done").
		Int(log.FieldRound, final.Round).
		Strs("winners", result.Winners).
		Dur("elapsed", elapsed).
		Msg("election run decided")

	if deps.Store != nil {
		if err := deps.Store.Save(ctx, toStoreRun(result)); err != nil {
			return nil, fmt.Errorf("persist run %s: %w", runID, err)
		}
		if n, err := deps.Store.Count(ctx); err == nil {
			metrics.SetStoredRuns(n)
		}
	}

	return result, nil
}

// collectRounds walks the state chain oldest-first, skipping the initial
// round 0 state.
func collectRounds(final *election.State) []RoundResult {
	var chain []*election.State
	for s := final; s != nil; s = s.Previous {
		if s.Round == 0 {
			continue
		}
		chain = append(chain, s)
	}

	out := make([]RoundResult, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		rr := RoundResult{
			Round:      s.Round,
			Elected:    append([]string(nil), s.Elected...),
			Eliminated: append([]string(nil), s.Eliminated...),
		}
		if len(s.Votes) > 0 {
			rr.Votes = make(map[string]string, len(s.Votes))
			for cand, v := range s.Votes {
				rr.Votes[cand] = v.RatString()
			}
		}
		out = append(out, rr)
	}
	return out
}

func toStoreRun(r *Result) store.Run {
	rounds := make([]store.Round, len(r.Rounds))
	for i, rr := range r.Rounds {
		rounds[i] = store.Round{
			Round:      rr.Round,
			Elected:    rr.Elected,
			Eliminated: rr.Eliminated,
			Votes:      rr.Votes,
		}
	}
	return store.Run{
		ID:         r.RunID,
		Method:     string(r.Method),
		Seats:      r.Seats,
		Candidates: r.Candidates,
		NumBallots: r.NumBallots,
		Winners:    r.Winners,
		Rounds:     rounds,
		CreatedAt:  r.StartedAt,
	}
}
