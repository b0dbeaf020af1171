package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

func fixedOptions(now time.Time) Options {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return now }
	return opts
}

func sampleHistory() []models.Workout {
	return []models.Workout{
		session(0, entry("squat", lifted(100, 5), lifted(100, 5)), entry("bench", lifted(70, 8))),
		session(2, entry("deadlift", lifted(140, 5))),
		session(4, entry("squat", lifted(100, 6), lifted(100, 6)), entry("pull-up", bodyweight(8))),
		session(6, entry("bench", lifted(72.5, 8)), entry("squat", lifted(100, 6), lifted(100, 6))),
	}
}

// TestSessionUpdateIdempotent verifies that the same snapshot twice yields
// identical state.
func TestSessionUpdateIdempotent(t *testing.T) {
	s := NewSession(fixedOptions(day0.AddDate(0, 0, 7)))
	history := sampleHistory()

	s.Update(history)
	records, stats, suggestions := s.Records(), s.Stats(), s.Suggestions()

	s.Update(history)
	if !reflect.DeepEqual(records, s.Records()) {
		t.Error("records changed between identical updates")
	}
	if stats != s.Stats() {
		t.Errorf("stats changed: %+v vs %+v", stats, s.Stats())
	}
	if !reflect.DeepEqual(suggestions, s.Suggestions()) {
		t.Error("suggestions changed between identical updates")
	}
	if len(suggestions) != 4 {
		t.Errorf("suggestions = %d, want 4", len(suggestions))
	}
}

// TestSessionSuggestionsBounded verifies that only recently trained exercises
// get a cached suggestion.
func TestSessionSuggestionsBounded(t *testing.T) {
	opts := fixedOptions(day0.AddDate(0, 0, 7))
	opts.SuggestionSessions = 1
	s := NewSession(opts)
	s.Update(sampleHistory())

	if _, ok := s.SuggestionFor("bench"); !ok {
		t.Error("bench should be cached")
	}
	sg, ok := s.SuggestionFor("squat")
	if !ok || sg.Rationale != RationaleIncrease {
		t.Errorf("squat = %+v, %v; want increase", sg, ok)
	}
	for _, id := range []string{"deadlift", "pull-up", "unknown"} {
		if _, ok := s.SuggestionFor(id); ok {
			t.Errorf("%s should not be cached", id)
		}
	}
}

// TestSessionUpdateReplacesCache verifies that a smaller snapshot drops stale
// suggestions and records.
func TestSessionUpdateReplacesCache(t *testing.T) {
	s := NewSession(fixedOptions(day0.AddDate(0, 0, 7)))
	s.Update(sampleHistory())
	if _, ok := s.SuggestionFor("deadlift"); !ok {
		t.Fatal("deadlift should be cached")
	}

	s.Update(sampleHistory()[:1])
	if _, ok := s.SuggestionFor("deadlift"); ok {
		t.Error("deadlift survived a snapshot without it")
	}
	if got := s.RecordIndex().Exercises(); !reflect.DeepEqual(got, []string{"bench", "squat"}) {
		t.Errorf("exercises = %v", got)
	}
}

// TestSessionPendingRecords verifies the completion and acknowledgement
// cycle.
func TestSessionPendingRecords(t *testing.T) {
	s := NewSession(fixedOptions(day0.AddDate(0, 0, 7)))
	history := sampleHistory()
	s.Update(history)

	completed := session(7, entry("deadlift", lifted(150, 5)))
	found := s.RecordCompletion(completed, history)
	if len(found) != 3 {
		t.Fatalf("found = %+v, want 3 deadlift records", found)
	}
	if got := s.PendingPRs(); len(got) != 3 {
		t.Fatalf("pending = %d, want 3", len(got))
	}

	again := session(8, entry("deadlift", lifted(150, 5)))
	if got := s.RecordCompletion(again, append(history, completed)); len(got) != 0 {
		t.Errorf("repeat produced %+v", got)
	}
	if got := s.PendingPRs(); len(got) != 3 {
		t.Errorf("pending = %d after a repeat, want 3", len(got))
	}

	s.AcknowledgePRs()
	if got := s.PendingPRs(); len(got) != 0 {
		t.Errorf("pending = %d after ack, want 0", len(got))
	}
}

// TestSessionDoesNotRetainInput verifies that mutating the caller's history
// after Update leaves the session untouched.
func TestSessionDoesNotRetainInput(t *testing.T) {
	s := NewSession(fixedOptions(day0.AddDate(0, 0, 7)))
	history := sampleHistory()
	s.Update(history)

	*history[1].Exercises[0].Sets[0].Weight = 500

	rec, ok := s.RecordIndex().Best("deadlift", KindMaxWeight)
	if !ok || rec.Value != 140 || *rec.Set.Weight != 140 {
		t.Errorf("deadlift record = %+v", rec)
	}
}

// TestSessionStatsUsesClock verifies that Update evaluates the window at the
// injected time.
func TestSessionStatsUsesClock(t *testing.T) {
	s := NewSession(fixedOptions(day0.AddDate(0, 0, 100)))
	s.Update(sampleHistory())
	if got := s.Stats(); got.RecentWorkouts != 0 || got.TotalWorkouts != 4 {
		t.Errorf("stats = %+v", got)
	}
}
