package tally

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mggg/votekit/internal/ballot"
	"github.com/mggg/votekit/internal/election"
	"github.com/mggg/votekit/internal/log"
	"github.com/mggg/votekit/internal/metrics"
	"github.com/mggg/votekit/internal/store"
)

// wardProfile is a two-seat race where A starts over quota and C is weakest.
func wardProfile() *ballot.PreferenceProfile {
	return ballot.MustProfile([]ballot.Ballot{
		ballot.NewWithWeight([]ballot.Rank{ballot.NewRank("A"), ballot.NewRank("B"), ballot.NewRank("C")}, 300),
		ballot.NewWithWeight([]ballot.Rank{ballot.NewRank("B"), ballot.NewRank("A"), ballot.NewRank("C")}, 200),
		ballot.NewWithWeight([]ballot.Rank{ballot.NewRank("C"), ballot.NewRank("B"), ballot.NewRank("A")}, 50),
	}, ballot.WithCandidates("A", "B", "C"))
}

func TestRunSTV(t *testing.T) {
	deps := Deps{Logger: log.WithComponent("tally-test")}

	result, err := Run(context.Background(), deps, Spec{
		Method: election.MethodSTV,
		Seats:  2,
		Seed:   42,
	}, wardProfile())
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err, "run ID should be a UUID")

	assert.Equal(t, election.MethodSTV, result.Method)
	assert.Equal(t, 2, result.Seats)
	assert.Equal(t, []string{"A", "B", "C"}, result.Candidates)
	assert.Equal(t, 3, result.NumBallots)
	assert.Len(t, result.Winners, 2)
	assert.Contains(t, result.Winners, "A")

	require.NotEmpty(t, result.Rounds)
	assert.Equal(t, 1, result.Rounds[0].Round)
	// A (300) and B (200) both clear the quota of 184 in round one.
	assert.Equal(t, []string{"A", "B"}, result.Rounds[0].Elected)
	assert.Equal(t, "300", result.Rounds[0].Votes["A"])
	assert.Len(t, result.Status, 3)
}

func TestRunPersistsToStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	deps := Deps{Logger: log.WithComponent("tally-test"), Store: s}

	result, err := Run(context.Background(), deps, Spec{
		Method: election.MethodSNTV,
		Seats:  1,
	}, wardProfile())
	require.NoError(t, err)

	stored, err := s.Get(context.Background(), result.RunID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "sntv", stored.Method)
	assert.Equal(t, result.Winners, stored.Winners)
	assert.Len(t, stored.Rounds, len(result.Rounds))

	// The gauge tracks the store's run count, one run in a fresh store.
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoredRuns))
}

func TestRunInvalidSpec(t *testing.T) {
	deps := Deps{Logger: log.WithComponent("tally-test")}

	_, err := Run(context.Background(), deps, Spec{
		Method: election.MethodSTV,
		Seats:  0,
	}, wardProfile())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidSpec)
	assert.Contains(t, err.Error(), "build election system")

	_, err = Run(context.Background(), deps, Spec{
		Method: election.Method("borda"),
		Seats:  1,
	}, wardProfile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown election method")
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deps := Deps{Logger: log.WithComponent("tally-test")}
	_, err := Run(ctx, deps, Spec{Method: election.MethodSTV, Seats: 1}, wardProfile())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunUsesInjectedClock(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return now.Add(time.Duration(calls) * time.Second)
	}

	deps := Deps{Logger: log.WithComponent("tally-test"), Clock: clock}
	result, err := Run(context.Background(), deps, Spec{Method: election.MethodBloc, Seats: 1}, wardProfile())
	require.NoError(t, err)

	assert.True(t, result.StartedAt.Equal(now.Add(time.Second)))
	assert.Equal(t, time.Second, result.Elapsed)
}

func TestWriteReportJSON(t *testing.T) {
	deps := Deps{Logger: log.WithComponent("tally-test")}
	result, err := Run(context.Background(), deps, Spec{Method: election.MethodSTV, Seats: 1}, wardProfile())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result.RunID, decoded.RunID)
	assert.Equal(t, result.Winners, decoded.Winners)
}

func TestWriteReportRejectsUnknownFormat(t *testing.T) {
	err := WriteReport(filepath.Join(t.TempDir(), "report.txt"), &Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}
