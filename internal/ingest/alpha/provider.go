package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/tracker"
)

// Source names this provider in import logs.
const Source = "alpha_progression"

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	tracker *tracker.Tracker
	audit   ingest.Logger
	log     *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider. audit may be
// nil.
func NewProvider(t *tracker.Tracker, audit ingest.Logger, log *slog.Logger) *Provider {
	return &Provider{tracker: t, audit: audit, log: log}
}

// Ingest parses a CSV export and imports its sessions as finished workouts.
// Re-importing the same export replaces the workouts it saved before.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	start := time.Now()
	result, err := p.ingest(ctx, r)
	if p.audit != nil {
		entry := ingest.LogEntry{Source: Source, Status: ingest.StatusSuccess, Duration: time.Since(start), Err: err}
		if result != nil {
			entry.Result = *result
		}
		if err != nil {
			entry.Status = ingest.StatusError
		}
		p.audit.LogIngest(entry)
	}
	return result, err
}

func (p *Provider) ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	workouts, err := ParseWorkouts(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(workouts)}
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			result.SetsReceived += len(ex.Sets)
		}
	}

	imported, err := p.tracker.ImportWorkouts(ctx, workouts)
	if err != nil {
		return result, fmt.Errorf("importing workouts: %w", err)
	}
	result.WorkoutsSaved = imported.Saved
	result.WorkoutsSkipped = imported.Skipped

	p.log.Info("alpha export imported",
		"sessions", result.SessionsReceived,
		"saved", result.WorkoutsSaved,
		"sets", result.SetsReceived,
	)
	return result, nil
}
