package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/ingest"
)

// ImportLog represents a single import operation's outcome.
type ImportLog struct {
	ID               int64            `json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	Source           string           `json:"source"`
	Status           string           `json:"status"`
	SessionsReceived int              `json:"sessions_received"`
	WorkoutsSaved    int              `json:"workouts_saved"`
	SetsReceived     int              `json:"sets_received"`
	DurationMs       *int             `json:"duration_ms"`
	ErrorMessage     *string          `json:"error_message"`
	Metadata         *json.RawMessage `json:"metadata"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (source, status, sessions_received, workouts_saved,
		 sets_received, duration_ms, error_message, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id`,
		log.Source, log.Status, log.SessionsReceived, log.WorkoutsSaved,
		log.SetsReceived, log.DurationMs, log.ErrorMessage, log.Metadata,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// QueryImportLogs returns the most recent import logs.
func (db *DB) QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, created_at, source, status, sessions_received, workouts_saved,
		 sets_received, duration_ms, error_message, metadata
		 FROM import_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []ImportLog
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.Status,
			&l.SessionsReceived, &l.WorkoutsSaved, &l.SetsReceived,
			&l.DurationMs, &l.ErrorMessage, &l.Metadata); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// ImportLogger writes ingest runs to import_logs. Failures are logged, not
// returned, so an audit outage never fails an import.
type ImportLogger struct {
	db  *DB
	log *slog.Logger
}

// NewImportLogger creates an ImportLogger.
func NewImportLogger(db *DB, log *slog.Logger) *ImportLogger {
	return &ImportLogger{db: db, log: log}
}

// LogIngest implements ingest.Logger.
func (l *ImportLogger) LogIngest(e ingest.LogEntry) {
	ms := int(e.Duration.Milliseconds())
	entry := ImportLog{
		Source:           e.Source,
		Status:           e.Status,
		SessionsReceived: e.Result.SessionsReceived,
		WorkoutsSaved:    e.Result.WorkoutsSaved,
		SetsReceived:     e.Result.SetsReceived,
		DurationMs:       &ms,
	}
	if e.Err != nil {
		msg := e.Err.Error()
		entry.ErrorMessage = &msg
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := l.db.InsertImportLog(ctx, entry); err != nil {
		l.log.Warn("failed to write import log", "source", e.Source, "error", err)
	}
}
