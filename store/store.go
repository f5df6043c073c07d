// Package store keeps a history of solved traces in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/search"
)

const (
	DefaultListLimit = 20
	maxListLimit     = 1000

	writeAttempts = 5
	writeDelay    = 50 * time.Millisecond
)

var ErrNotFound = errors.New("trace not found")

// Entry is one saved solve. Result is nil in listings.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	Label     string
	Algorithm search.Algorithm
	Value     int
	Steps     int
	Tree      string
	Result    *search.Result
}

type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// A single connection keeps :memory: databases coherent and serialises
	// writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create traces table: %w", err)
	}
	log.Debug().Str("path", path).Msg("history-db-opened")
	return s, nil
}

func (s *Store) createTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS traces (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			label      TEXT NOT NULL DEFAULT '',
			algorithm  TEXT NOT NULL,
			value      INTEGER NOT NULL,
			steps      INTEGER NOT NULL,
			tree       TEXT NOT NULL,
			payload    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_traces_created_at ON traces(created_at DESC);
	`
	_, err := s.db.Exec(query)
	return err
}

// Save stores res and returns its new id.
func (s *Store) Save(ctx context.Context, label string, res *search.Result) (int64, error) {
	if res == nil || res.Tree == nil {
		return 0, fmt.Errorf("%w: no result to save", gametree.ErrInvalidArgument)
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}
	query := `
		INSERT INTO traces (created_at, label, algorithm, value, steps, tree, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var id int64
	err = s.retryWrite(ctx, func() error {
		r, err := s.db.ExecContext(ctx, query, time.Now().UnixNano(), label,
			res.Algorithm.String(), res.Value, res.Len(), gametree.Fingerprint(res.Tree), string(payload))
		if err != nil {
			return err
		}
		id, err = r.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to insert trace: %w", err)
	}
	log.Info().Int64("id", id).Str("label", label).Str("algorithm", res.Algorithm.String()).
		Msg("trace-saved")
	return id, nil
}

// Load returns the entry with the given id, including its decoded result.
func (s *Store) Load(ctx context.Context, id int64) (*Entry, error) {
	query := `
		SELECT id, created_at, label, algorithm, value, steps, tree, payload
		FROM traces
		WHERE id = ?
	`
	var payload string
	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id), &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	res := &search.Result{}
	if err := json.Unmarshal([]byte(payload), res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace %d: %w", id, err)
	}
	if err := search.Verify(res); err != nil {
		return nil, fmt.Errorf("trace %d: %w", id, err)
	}
	e.Result = res
	return e, nil
}

// List returns up to limit entries, newest first, without their results.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query := `
		SELECT id, created_at, label, algorithm, value, steps, tree, ''
		FROM traces
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var discard string
		e, err := scanEntry(rows, &discard)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	var n int64
	err := s.retryWrite(ctx, func() error {
		r, err := s.db.ExecContext(ctx, `DELETE FROM traces WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err = r.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// retryWrite runs fn again while another process holds the database lock,
// as happens when the shell and the TUI share a history file.
func (s *Store) retryWrite(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(writeAttempts),
		retry.Delay(writeDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Debug().Err(err).Uint("n", n).Msg("history-db-busy-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner, payload *string) (*Entry, error) {
	var e Entry
	var created int64
	var alg string
	if err := sc.Scan(&e.ID, &created, &e.Label, &alg, &e.Value, &e.Steps, &e.Tree, payload); err != nil {
		return nil, err
	}
	e.CreatedAt = time.Unix(0, created)
	a, err := search.ParseAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	e.Algorithm = a
	return &e, nil
}

func (e Entry) String() string {
	label := e.Label
	if label == "" {
		label = "-"
	}
	return fmt.Sprintf("%4d  %s  %-10s %-10s value %3d  %3d steps  %s",
		e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), label, e.Algorithm, e.Value, e.Steps, e.Tree)
}
