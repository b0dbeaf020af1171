package mcp

import (
	"context"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/tracker"
)

// DataSource abstracts the progress data behind MCP tools. TrackerSource
// (in-process) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Records(ctx context.Context, exerciseID string) ([]analytics.PersonalRecord, error)
	Stats(ctx context.Context) (analytics.ProgressStats, error)
	// Suggestion returns nil when no suggestion is cached for the exercise.
	Suggestion(ctx context.Context, exerciseID string) (*analytics.ProgressionSuggestion, error)
	Suggestions(ctx context.Context) ([]analytics.ProgressionSuggestion, error)
	PendingRecords(ctx context.Context) ([]analytics.PersonalRecord, error)
	Workouts(ctx context.Context, start, end time.Time, limit int) ([]models.Workout, error)
}

// TrackerSource serves a DataSource from an in-process tracker.
type TrackerSource struct {
	t *tracker.Tracker
}

// Compile-time check: TrackerSource satisfies DataSource.
var _ DataSource = (*TrackerSource)(nil)

// NewTrackerSource wraps t.
func NewTrackerSource(t *tracker.Tracker) *TrackerSource {
	return &TrackerSource{t: t}
}

func (s *TrackerSource) Records(_ context.Context, exerciseID string) ([]analytics.PersonalRecord, error) {
	return s.t.Records(exerciseID), nil
}

func (s *TrackerSource) Stats(context.Context) (analytics.ProgressStats, error) {
	return s.t.Stats(), nil
}

func (s *TrackerSource) Suggestion(_ context.Context, exerciseID string) (*analytics.ProgressionSuggestion, error) {
	sg, ok := s.t.Suggestion(exerciseID)
	if !ok {
		return nil, nil
	}
	return &sg, nil
}

func (s *TrackerSource) Suggestions(context.Context) ([]analytics.ProgressionSuggestion, error) {
	return s.t.Suggestions(), nil
}

func (s *TrackerSource) PendingRecords(context.Context) ([]analytics.PersonalRecord, error) {
	return s.t.PendingRecords(), nil
}

func (s *TrackerSource) Workouts(_ context.Context, start, end time.Time, limit int) ([]models.Workout, error) {
	return s.t.HistoryBetween(start, end, limit), nil
}
