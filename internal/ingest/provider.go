// Package ingest holds types shared by the workout import providers.
package ingest

import "time"

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int    `json:"sessions_received"`
	WorkoutsSaved    int    `json:"workouts_saved"`
	WorkoutsSkipped  int    `json:"workouts_skipped"`
	SetsReceived     int    `json:"sets_received"`
	Message          string `json:"message,omitempty"`
}

// LogEntry describes a finished ingest for an audit log.
type LogEntry struct {
	Source   string
	Status   string
	Result   Result
	Duration time.Duration
	Err      error
}

// Logger records ingest runs. Implementations must not block for long.
type Logger interface {
	LogIngest(entry LogEntry)
}

// Ingest statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
