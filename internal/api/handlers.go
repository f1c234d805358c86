package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mggg/votekit/internal/ballot"
	"github.com/mggg/votekit/internal/election"
	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/tally"
)

// logError emits one error line carrying the request's correlation fields.
func (s *Server) logError(r *http.Request, err error, msg string) {
	l := log.WithContext(r.Context(), s.logger)
	l.Error().Err(err).Msg(msg)
}

// electionRequest is the body of POST /api/v1/elections.
type electionRequest struct {
	Method   string         `json:"method"`
	Seats    int            `json:"seats"`
	K        int            `json:"k,omitempty"`
	R1Cutoff int            `json:"r1_cutoff,omitempty"`
	Seed     int64          `json:"seed,omitempty"`
	Profile  profileRequest `json:"profile"`
}

type profileRequest struct {
	Candidates []string        `json:"candidates,omitempty"`
	Ballots    []ballotRequest `json:"ballots"`
}

type ballotRequest struct {
	Ranking [][]string  `json:"ranking"`
	Weight  weightValue `json:"weight"`
}

// weightValue accepts a JSON number or a "p/q" string as an exact rational.
type weightValue struct {
	rat *big.Rat
}

func (v *weightValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Not a string: try a bare number.
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("weight must be a number or a \"p/q\" string")
		}
		s = n.String()
	}
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return fmt.Errorf("invalid weight %q", s)
	}
	v.rat = rat
	return nil
}

func (r profileRequest) toProfile() (*ballot.PreferenceProfile, error) {
	if len(r.Ballots) == 0 {
		return nil, fmt.Errorf("profile has no ballots")
	}
	ballots := make([]ballot.Ballot, 0, len(r.Ballots))
	for i, br := range r.Ballots {
		ranking := make([]ballot.Rank, 0, len(br.Ranking))
		for _, names := range br.Ranking {
			ranking = append(ranking, ballot.NewRank(names...))
		}
		b := ballot.New(ranking, br.Weight.rat)
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i, err)
		}
		ballots = append(ballots, b)
	}

	var opts []ballot.ProfileOption
	if len(r.Candidates) > 0 {
		opts = append(opts, ballot.WithCandidates(r.Candidates...))
	}
	return ballot.NewProfile(ballots, opts...)
}

func (s *Server) handleRunElection(w http.ResponseWriter, r *http.Request) {
	var req electionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeBadRequest(w, fmt.Sprintf("decode request: %v", err))
		return
	}

	method := election.Method(req.Method)
	if !method.IsValid() {
		writeBadRequest(w, fmt.Sprintf("unknown election method %q (known: %v)", req.Method, election.Methods()))
		return
	}

	profile, err := req.Profile.toProfile()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.defaultSeed
	}

	result, err := tally.Run(r.Context(), s.deps(), tally.Spec{
		Method:   method,
		Seats:    req.Seats,
		K:        req.K,
		R1Cutoff: req.R1Cutoff,
		Seed:     seed,
	}, profile)
	if err != nil {
		// Spec errors are the caller's fault, tabulation errors are ours.
		if errors.Is(err, tally.ErrInvalidSpec) {
			writeBadRequest(w, err.Error())
			return
		}
		if r.Context().Err() != nil {
			return // client went away
		}
		s.logError(r, err, "election run failed")
		writeInternal(w)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no_store", "run storage is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.logError(r, err, "fetch run failed")
		writeInternal(w)
		return
	}
	if run == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// listResponse is the body of GET /api/v1/elections.
type listResponse struct {
	Runs  []storeRunSummary `json:"runs"`
	Total int               `json:"total"`
}

type storeRunSummary struct {
	ID         string   `json:"id"`
	Method     string   `json:"method"`
	Seats      int      `json:"seats"`
	Winners    []string `json:"winners"`
	NumBallots int      `json:"num_ballots"`
	CreatedAt  string   `json:"created_at"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no_store", "run storage is not configured")
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit <= 0 || limit > 500 {
		writeBadRequest(w, "limit must be between 1 and 500")
		return
	}
	if offset < 0 {
		writeBadRequest(w, "offset cannot be negative")
		return
	}

	method := r.URL.Query().Get("method")
	if method != "" && !election.Method(method).IsValid() {
		writeBadRequest(w, fmt.Sprintf("unknown election method %q", method))
		return
	}

	runs, total, err := s.store.List(r.Context(), method, limit, offset)
	if err != nil {
		s.logError(r, err, "list runs failed")
		writeInternal(w)
		return
	}

	resp := listResponse{Runs: make([]storeRunSummary, 0, len(runs)), Total: total}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, storeRunSummary{
			ID:         run.ID,
			Method:     run.Method,
			Seats:      run.Seats,
			Winners:    run.Winners,
			NumBallots: run.NumBallots,
			CreatedAt:  run.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
