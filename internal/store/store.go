// Package store persists election runs in SQLite so past results can be
// listed and fetched through the API.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// Run is one recorded election run.
type Run struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	Seats      int       `json:"seats"`
	Candidates []string  `json:"candidates"`
	NumBallots int       `json:"num_ballots"`
	Winners    []string  `json:"winners"`
	Rounds     []Round   `json:"rounds"`
	CreatedAt  time.Time `json:"created_at"`
}

// Round is the per-round outcome stored with a run. Vote tallies are kept as
// exact "p/q" strings so no precision is lost in storage.
type Round struct {
	Round      int               `json:"round"`
	Elected    []string          `json:"elected,omitempty"`
	Eliminated []string          `json:"eliminated,omitempty"`
	Votes      map[string]string `json:"votes,omitempty"`
}

// Store provides SQLite persistence for election runs.
type Store struct {
	db *sql.DB
}

// Open initializes the store and runs migrations. WAL mode and busy_timeout
// are set through the DSN so they apply to every pooled connection.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS election_runs (
		id TEXT PRIMARY KEY,
		method TEXT NOT NULL,
		seats INTEGER NOT NULL,
		candidates TEXT NOT NULL,
		num_ballots INTEGER NOT NULL,
		winners TEXT NOT NULL,
		rounds TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_election_runs_method ON election_runs(method);
	CREATE INDEX IF NOT EXISTS idx_election_runs_created ON election_runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a run. The ID must be unique.
func (s *Store) Save(ctx context.Context, run Run) error {
	candidates, err := json.Marshal(run.Candidates)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	winners, err := json.Marshal(run.Winners)
	if err != nil {
		return fmt.Errorf("marshal winners: %w", err)
	}
	rounds, err := json.Marshal(run.Rounds)
	if err != nil {
		return fmt.Errorf("marshal rounds: %w", err)
	}

	query := `
	INSERT INTO election_runs (id, method, seats, candidates, num_ballots, winners, rounds, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.Method,
		run.Seats,
		string(candidates),
		run.NumBallots,
		string(winners),
		string(rounds),
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Count returns the number of persisted runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM election_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// Get retrieves a run by ID. It returns nil when no run matches.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	query := `
	SELECT id, method, seats, candidates, num_ballots, winners, rounds, created_at
	FROM election_runs
	WHERE id = ?
	`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List retrieves runs newest-first, optionally filtered by method.
func (s *Store) List(ctx context.Context, method string, limit, offset int) ([]Run, int, error) {
	where := ""
	args := []any{}
	if method != "" {
		where = "WHERE method = ?"
		args = append(args, method)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM election_runs %s", where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
	SELECT id, method, seats, candidates, num_ballots, winners, rounds, created_at
	FROM election_runs
	%s
	ORDER BY created_at DESC, id
	LIMIT ? OFFSET ?
	`, where)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, *run)
	}
	return runs, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var candidates, winners, rounds, createdAt string

	if err := row.Scan(&run.ID, &run.Method, &run.Seats, &candidates, &run.NumBallots, &winners, &rounds, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(candidates), &run.Candidates); err != nil {
		return nil, fmt.Errorf("decode candidates for %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(winners), &run.Winners); err != nil {
		return nil, fmt.Errorf("decode winners for %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(rounds), &run.Rounds); err != nil {
		return nil, fmt.Errorf("decode rounds for %s: %w", run.ID, err)
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at for %s: %w", run.ID, err)
	}
	run.CreatedAt = t

	return &run, nil
}
