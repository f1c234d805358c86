package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(id string, created time.Time) Run {
	return Run{
		ID:         id,
		Method:     "stv",
		Seats:      2,
		Candidates: []string{"A", "B", "C"},
		NumBallots: 3,
		Winners:    []string{"A", "B"},
		Rounds: []Round{
			{Round: 1, Elected: []string{"A"}, Votes: map[string]string{"A": "300", "B": "200", "C": "50"}},
			{Round: 2, Elected: []string{"B"}, Eliminated: []string{"C"}, Votes: map[string]string{"B": "224", "C": "74"}},
		},
		CreatedAt: created,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, s.Save(ctx, sampleRun("run-1", created)))

	got, err := s.Get(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "stv", got.Method)
	assert.Equal(t, 2, got.Seats)
	assert.Equal(t, []string{"A", "B"}, got.Winners)
	assert.Equal(t, []string{"A", "B", "C"}, got.Candidates)
	require.Len(t, got.Rounds, 2)
	assert.Equal(t, "224", got.Rounds[1].Votes["B"])
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, sampleRun("run-1", base)))
	require.NoError(t, s.Save(ctx, sampleRun("run-2", base.Add(time.Minute))))

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveDuplicateIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := sampleRun("run-1", time.Now().UTC())
	require.NoError(t, s.Save(ctx, run))
	require.Error(t, s.Save(ctx, run))
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		run := sampleRun(id, base.Add(time.Duration(i)*time.Minute))
		if id == "run-2" {
			run.Method = "bloc"
		}
		require.NoError(t, s.Save(ctx, run))
	}

	runs, total, err := s.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-1", runs[2].ID)
}

func TestListFilterAndPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := sampleRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))
		if i%2 == 1 {
			run.Method = "sntv"
		}
		require.NoError(t, s.Save(ctx, run))
	}

	runs, total, err := s.List(ctx, "sntv", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, runs, 2)
	for _, r := range runs {
		assert.Equal(t, "sntv", r.Method)
	}

	page, total, err := s.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)
}
