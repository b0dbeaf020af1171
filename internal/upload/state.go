package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which files have been successfully uploaded to avoid re-sending.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS uploaded_exports (
		path           TEXT PRIMARY KEY,
		hash           TEXT NOT NULL,
		sessions       INTEGER NOT NULL DEFAULT 0,
		workouts_saved INTEGER NOT NULL DEFAULT 0,
		uploaded_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsUploaded reports whether the file at relPath was uploaded with this
// content hash.
func (s *StateDB) IsUploaded(relPath, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM uploaded_exports WHERE path = ? AND hash = ?`,
		relPath, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", relPath, err)
	}
	return count > 0, nil
}

// MarkUploaded records that a file was successfully uploaded.
func (s *StateDB) MarkUploaded(relPath, hash string, sessions, saved int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO uploaded_exports (path, hash, sessions, workouts_saved) VALUES (?, ?, ?, ?)`,
		relPath, hash, sessions, saved,
	)
	if err != nil {
		return fmt.Errorf("marking %s: %w", relPath, err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
