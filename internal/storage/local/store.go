// Package local is a single-file SQLite workout store. Workouts are kept as
// JSON documents keyed by ID, for single-user setups without Postgres.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/liftlog/internal/models"
	_ "modernc.org/sqlite"
)

// sortableTime keeps started_at lexically ordered.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

// Store persists workouts in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS workouts (
		id         TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		body       TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating workouts table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadWorkoutHistory returns every stored workout, oldest first.
func (s *Store) LoadWorkoutHistory(ctx context.Context) ([]models.Workout, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM workouts ORDER BY started_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		var w models.Workout
		if err := json.Unmarshal([]byte(body), &w); err != nil {
			return nil, fmt.Errorf("decoding workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// SaveWorkout inserts or replaces a workout.
func (s *Store) SaveWorkout(ctx context.Context, w models.Workout) error {
	return s.SaveWorkouts(ctx, []models.Workout{w})
}

// SaveWorkouts inserts or replaces a batch of workouts in one transaction.
func (s *Store) SaveWorkouts(ctx context.Context, workouts []models.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, w := range workouts {
		body, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("encoding workout %s: %w", w.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO workouts (id, started_at, body) VALUES (?, ?, ?)`,
			w.ID.String(), w.StartedAt.UTC().Format(sortableTime), string(body))
		if err != nil {
			return fmt.Errorf("saving workout %s: %w", w.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workouts: %w", err)
	}
	return nil
}

// Count returns the number of stored workouts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting workouts: %w", err)
	}
	return n, nil
}
