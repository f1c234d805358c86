package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mggg/votekit/internal/store"
	"github.com/mggg/votekit/internal/tally"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewServer(st), st
}

const electionBody = `{
	"method": "stv",
	"seats": 2,
	"seed": 42,
	"profile": {
		"candidates": ["A", "B", "C"],
		"ballots": [
			{"ranking": [["A"], ["B"], ["C"]], "weight": 300},
			{"ranking": [["B"], ["A"], ["C"]], "weight": 200},
			{"ranking": [["C"], ["B"], ["A"]], "weight": "50"}
		]
	}
}`

func postElection(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/elections", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestRunElection(t *testing.T) {
	srv, st := testServer(t)

	rec := postElection(t, srv, electionBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result tally.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, []string{"A", "B"}, result.Winners)
	assert.Equal(t, 2, result.Seats)
	require.NotEmpty(t, result.Rounds)

	// The run landed in the store under its ID.
	stored, err := st.Get(context.Background(), result.RunID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "stv", stored.Method)
}

func TestRunElectionBadRequests(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown method",
			body: `{"method": "borda", "seats": 1, "profile": {"ballots": [{"ranking": [["A"]], "weight": 1}]}}`,
			want: "unknown election method",
		},
		{
			name: "invalid seats",
			body: `{"method": "stv", "seats": 0, "profile": {"ballots": [{"ranking": [["A"]], "weight": 1}]}}`,
			want: "seats must be positive",
		},
		{
			name: "no ballots",
			body: `{"method": "stv", "seats": 1, "profile": {"ballots": []}}`,
			want: "no ballots",
		},
		{
			name: "bad weight",
			body: `{"method": "stv", "seats": 1, "profile": {"ballots": [{"ranking": [["A"]], "weight": "heavy"}]}}`,
			want: "invalid weight",
		},
		{
			name: "unknown field",
			body: `{"method": "stv", "seats": 1, "voters": 9, "profile": {"ballots": [{"ranking": [["A"]], "weight": 1}]}}`,
			want: "decode request",
		},
		{
			name: "malformed json",
			body: `{`,
			want: "decode request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postElection(t, srv, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "bad_request", body.Error.Code)
			assert.Contains(t, body.Error.Message, tt.want)
		})
	}
}

func TestGetRun(t *testing.T) {
	srv, _ := testServer(t)

	rec := postElection(t, srv, electionBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result tally.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elections/"+result.RunID, nil)
	getRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(getRec, req)

	require.Equal(t, http.StatusOK, getRec.Code)
	var run store.Run
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &run))
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, result.Winners, run.Winners)
}

func TestGetRunNotFound(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elections/does-not-exist", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error.Code)
}

func TestListRuns(t *testing.T) {
	srv, _ := testServer(t)

	for i := 0; i < 3; i++ {
		rec := postElection(t, srv, electionBody)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/elections?method=stv&limit=2", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Runs, 2)
	assert.Equal(t, "stv", resp.Runs[0].Method)
}

func TestListRunsBadQuery(t *testing.T) {
	srv, _ := testServer(t)

	for _, path := range []string{
		"/api/v1/elections?limit=0",
		"/api/v1/elections?limit=9000",
		"/api/v1/elections?offset=-1",
		"/api/v1/elections?method=borda",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadinessWithoutStore(t *testing.T) {
	srv := NewServer(nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader), "a request ID should be assigned")

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "caller-chosen")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "caller-chosen", rec.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := NewServer(st, WithRateLimit(2))
	router := srv.Router()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Error.Code)
}
