// Package tracker owns the progress session of one workout history. It loads
// and saves workouts through a Store and serialises every call into the
// analytics engine.
package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/analytics"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// ErrWorkoutNotFinished is returned when a workout without a finish time or
// completion flag is submitted as finished.
var ErrWorkoutNotFinished = errors.New("workout is not finished")

// Store is the persistence the tracker reads from and writes to.
type Store interface {
	LoadWorkoutHistory(ctx context.Context) ([]models.Workout, error)
	SaveWorkout(ctx context.Context, w models.Workout) error
}

// BatchStore is implemented by stores that can save many workouts at once.
type BatchStore interface {
	SaveWorkouts(ctx context.Context, workouts []models.Workout) error
}

// ImportResult summarises an import.
type ImportResult struct {
	Received int `json:"received"`
	Saved    int `json:"saved"`
	Skipped  int `json:"skipped"`
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	store   Store
	session *analytics.Session
	history []models.Workout
	metrics *metrics.Manager
	now     func() time.Time
	log     *slog.Logger
}

// New creates a tracker with an empty history. Call Reload to load the store.
func New(store Store, opts analytics.Options, m *metrics.Manager, log *slog.Logger) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		store:   store,
		session: analytics.NewSession(opts),
		metrics: m,
		now:     opts.Now,
		log:     log,
	}
}

// Reload replaces the in-memory history with the store's and rebuilds the
// session. Pending records survive a reload.
func (t *Tracker) Reload(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	history, err := t.store.LoadWorkoutHistory(ctx)
	if err != nil {
		return fmt.Errorf("loading workout history: %w", err)
	}
	sortHistory(history)
	t.history = history
	t.update()
	t.log.Info("history loaded", "workouts", len(history))
	return nil
}

// FinishWorkout saves a finished workout and returns it together with the
// personal records it set. A workout without an ID gets a new one.
func (t *Tracker) FinishWorkout(ctx context.Context, w models.Workout) (models.Workout, []analytics.PersonalRecord, error) {
	if w.FinishedAt == nil && w.Completed {
		now := t.now()
		w.FinishedAt = &now
	}
	if !w.Counted() {
		return models.Workout{}, nil, ErrWorkoutNotFinished
	}
	w = w.Clone()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.SaveWorkout(ctx, w); err != nil {
		return models.Workout{}, nil, fmt.Errorf("saving workout %s: %w", w.ID, err)
	}

	found := t.session.RecordCompletion(w, t.history)
	t.history = mergeHistory(t.history, []models.Workout{w})
	t.update()

	t.metrics.CounterWorkoutsRecorded.Inc()
	for _, r := range found {
		t.metrics.CounterRecordsDetected.WithLabelValues(string(r.Kind)).Inc()
	}
	t.metrics.GaugePendingRecords.Set(float64(len(t.session.PendingPRs())))

	t.log.Info("workout finished", "id", w.ID, "name", w.Name, "new_records", len(found))
	return w.Clone(), found, nil
}

// ImportWorkouts saves historical workouts without raising personal-record
// notifications. Workouts without an ID are skipped.
func (t *Tracker) ImportWorkouts(ctx context.Context, workouts []models.Workout) (ImportResult, error) {
	res := ImportResult{Received: len(workouts)}

	batch := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.ID == uuid.Nil {
			res.Skipped++
			continue
		}
		batch = append(batch, w.Clone())
	}
	if len(batch) == 0 {
		return res, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if bs, ok := t.store.(BatchStore); ok {
		if err := bs.SaveWorkouts(ctx, batch); err != nil {
			return res, fmt.Errorf("saving %d workouts: %w", len(batch), err)
		}
		res.Saved = len(batch)
	} else {
		for _, w := range batch {
			if err := t.store.SaveWorkout(ctx, w); err != nil {
				t.history = mergeHistory(t.history, batch[:res.Saved])
				t.update()
				return res, fmt.Errorf("saving workout %s: %w", w.ID, err)
			}
			res.Saved++
		}
	}

	t.history = mergeHistory(t.history, batch)
	t.update()
	t.metrics.CounterWorkoutsImported.Add(float64(res.Saved))
	t.log.Info("workouts imported", "received", res.Received, "saved", res.Saved, "skipped", res.Skipped)
	return res, nil
}

// update rebuilds the session from t.history. Callers hold t.mu.
func (t *Tracker) update() {
	start := time.Now()
	t.session.Update(t.history)
	t.metrics.HistUpdateDuration.Observe(time.Since(start).Seconds())
	t.metrics.GaugeWorkouts.Set(float64(len(t.history)))
}

// Records returns the current personal records, optionally for one exercise.
func (t *Tracker) Records(exerciseID string) []analytics.PersonalRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	if exerciseID != "" {
		return t.session.RecordIndex().Records(exerciseID)
	}
	return t.session.Records()
}

// Stats returns the latest progress stats.
func (t *Tracker) Stats() analytics.ProgressStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Stats()
}

// Suggestion returns the cached suggestion for an exercise.
func (t *Tracker) Suggestion(exerciseID string) (analytics.ProgressionSuggestion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.SuggestionFor(exerciseID)
}

// Suggestions returns every cached suggestion sorted by exercise ID.
func (t *Tracker) Suggestions() []analytics.ProgressionSuggestion {
	t.mu.Lock()
	cache := t.session.Suggestions()
	t.mu.Unlock()

	out := make([]analytics.ProgressionSuggestion, 0, len(cache))
	for _, sg := range cache {
		out = append(out, sg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseID < out[j].ExerciseID })
	return out
}

// PendingRecords returns the records not yet acknowledged.
func (t *Tracker) PendingRecords() []analytics.PersonalRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.PendingPRs()
}

// AcknowledgeRecords clears the pending records and returns how many there
// were.
func (t *Tracker) AcknowledgeRecords() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.session.PendingPRs())
	t.session.AcknowledgePRs()
	t.metrics.GaugePendingRecords.Set(0)
	return n
}

// History returns up to limit workouts, newest first. A limit of 0 or less
// returns all of them.
func (t *Tracker) History(limit int) []models.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Workout, 0, n)
	for i := len(t.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, t.history[i].Clone())
	}
	return out
}

// HistoryBetween returns up to limit workouts started in [start, end),
// newest first. A limit of 0 or less returns all of them.
func (t *Tracker) HistoryBetween(start, end time.Time, limit int) []models.Workout {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := []models.Workout{}
	for i := len(t.history) - 1; i >= 0; i-- {
		w := t.history[i]
		if w.StartedAt.Before(start) || !w.StartedAt.Before(end) {
			continue
		}
		out = append(out, w.Clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// mergeHistory replaces workouts with matching IDs, appends the rest and
// keeps the result sorted.
func mergeHistory(history, incoming []models.Workout) []models.Workout {
	if len(incoming) == 0 {
		return history
	}
	byID := make(map[uuid.UUID]int, len(history))
	merged := make([]models.Workout, len(history), len(history)+len(incoming))
	copy(merged, history)
	for i, w := range merged {
		byID[w.ID] = i
	}
	for _, w := range incoming {
		if i, ok := byID[w.ID]; ok {
			merged[i] = w
			continue
		}
		byID[w.ID] = len(merged)
		merged = append(merged, w)
	}
	sortHistory(merged)
	return merged
}

func sortHistory(ws []models.Workout) {
	sort.SliceStable(ws, func(i, j int) bool {
		if !ws[i].StartedAt.Equal(ws[j].StartedAt) {
			return ws[i].StartedAt.Before(ws[j].StartedAt)
		}
		return bytes.Compare(ws[i].ID[:], ws[j].ID[:]) < 0
	})
}
